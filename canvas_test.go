package canvas_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oliver-os/canvas"
	"github.com/oliver-os/canvas/internal/clock"
	"github.com/oliver-os/canvas/pkg/adapters/memory"
	"github.com/oliver-os/canvas/pkg/domain"
)

func sceneObjects() []domain.ObjectConfig {
	return []domain.ObjectConfig{
		{
			ID:          "decor",
			ZIndex:      0,
			Position:    domain.Position{X: 0, Y: 0, Width: 600, Height: 400},
			Interactive: false,
			Visible:     true,
		},
		{
			ID:          "panel-left",
			ZIndex:      1,
			Assets:      domain.AssetSet{ObjectIsolated: "panel-left.png"},
			Position:    domain.Position{X: 0, Y: 0, Width: 80, Height: 300},
			Interactive: true,
			Visible:     true,
		},
		{
			ID:          "panel-right",
			ZIndex:      1,
			Assets:      domain.AssetSet{ObjectIsolated: "panel-right.png"},
			Position:    domain.Position{X: 400, Y: 0, Width: 80, Height: 300},
			Interactive: true,
			Visible:     true,
		},
		{
			ID:          "brain-core",
			ZIndex:      2,
			Assets:      domain.AssetSet{ObjectIsolated: "brain.png"},
			Position:    domain.Position{X: 100, Y: 100, Width: 200, Height: 150},
			Interactive: true,
			Visible:     true,
			Cascade: &domain.Cascade{
				Affects:     []string{"panel-left", "panel-right"},
				DelayMillis: 100,
			},
		},
	}
}

func newTestEngine(t *testing.T, opts ...canvas.Option) (*canvas.Engine, *clock.Fake) {
	t.Helper()

	fetcher := memory.NewFetcher()
	fetcher.Put("brain.png", []byte("brain-bytes"))
	fetcher.Put("panel-left.png", []byte("pl"))
	fetcher.Put("panel-right.png", []byte("pr"))

	loader := memory.NewLoader(sceneObjects())
	loader.AddPreset("reading", domain.Preset{
		"brain-core": {X: 40, Y: 40, Width: 200, Height: 150},
		"panel-left": {X: 0, Y: 120, Width: 80, Height: 300},
		"ghost":      {X: 0, Y: 0, Width: 10, Height: 10},
	})

	clk := clock.NewFake(time.Unix(1000, 0))
	base := []canvas.Option{
		canvas.WithRegistry(loader),
		canvas.WithFetcher(fetcher),
		canvas.WithClock(clk),
	}
	eng, err := canvas.New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	require.NoError(t, eng.LoadRegistry(context.Background()))
	return eng, clk
}

func waitEvent(t *testing.T, ch <-chan domain.Event, eventType domain.EventType) domain.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			require.True(t, ok, "event channel closed")
			if ev.Type == eventType {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", eventType)
		}
	}
}

func TestNew_RequiresFetcher(t *testing.T) {
	_, err := canvas.New()
	assert.Error(t, err)
}

func TestEngine_RegistryAndAssets(t *testing.T) {
	eng, _ := newTestEngine(t)

	failed, err := eng.LoadAssets(context.Background())
	require.NoError(t, err)
	assert.Zero(t, failed)
	assert.Equal(t, 100, eng.Progress())

	res, ok := eng.Asset("brain.png")
	require.True(t, ok)
	assert.Equal(t, 11, res.Size())

	snap := eng.Snapshot()
	require.Len(t, snap.Objects, 4)
	// Ascending z-index, registration order within a tier.
	assert.Equal(t, "decor", snap.Objects[0].ID)
	assert.Equal(t, "panel-left", snap.Objects[1].ID)
	assert.Equal(t, "panel-right", snap.Objects[2].ID)
	assert.Equal(t, "brain-core", snap.Objects[3].ID)
	assert.Equal(t, 100, snap.Objects[3].AssetProgress)
}

func TestEngine_DuplicateRegistration(t *testing.T) {
	eng, _ := newTestEngine(t)

	err := eng.Register(sceneObjects()[0])
	assert.ErrorIs(t, err, domain.ErrDuplicateObject)
}

func TestEngine_ActivationCascade(t *testing.T) {
	eng, clk := newTestEngine(t)

	require.NoError(t, eng.Activate("brain-core"))

	state, err := eng.State("panel-left")
	require.NoError(t, err)
	assert.Equal(t, domain.StateIdle, state)

	clk.Advance(100 * time.Millisecond)
	state, _ = eng.State("panel-left")
	assert.Equal(t, domain.StateActive, state)
	state, _ = eng.State("panel-right")
	assert.Equal(t, domain.StateIdle, state)

	clk.Advance(100 * time.Millisecond)
	state, _ = eng.State("panel-right")
	assert.Equal(t, domain.StateActive, state)

	// Deactivation ripples off synchronously.
	require.NoError(t, eng.Deactivate("brain-core"))
	for _, id := range []string{"brain-core", "panel-left", "panel-right"} {
		state, _ = eng.State(id)
		assert.Equal(t, domain.StateIdle, state, id)
	}
}

func TestEngine_ActivateNonInteractive(t *testing.T) {
	eng, _ := newTestEngine(t)

	err := eng.Activate("decor")
	assert.ErrorIs(t, err, domain.ErrObjectNotInteractive)

	err = eng.Activate("nope")
	assert.ErrorIs(t, err, domain.ErrUnknownObject)
}

func TestEngine_ClickRouting(t *testing.T) {
	eng, _ := newTestEngine(t)

	// Middle third of brain-core toggles activation.
	id, zone, err := eng.Click(200, 150)
	require.NoError(t, err)
	assert.Equal(t, "brain-core", id)
	assert.Equal(t, domain.ZoneMiddle, zone)
	state, _ := eng.State("brain-core")
	assert.Equal(t, domain.StateActive, state)

	selected, ok := eng.Selected()
	require.True(t, ok)
	assert.Equal(t, "brain-core", selected)

	// Left third selects without toggling.
	_, zone, err = eng.Click(120, 150)
	require.NoError(t, err)
	assert.Equal(t, domain.ZoneLeft, zone)
	state, _ = eng.State("brain-core")
	assert.Equal(t, domain.StateActive, state)

	// Overlap resolves to the topmost z-index.
	id, _, err = eng.Click(110, 110)
	require.NoError(t, err)
	assert.Equal(t, "brain-core", id)

	// Empty canvas clears the selection.
	id, zone, err = eng.Click(700, 50)
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Equal(t, domain.ZoneNone, zone)
	_, ok = eng.Selected()
	assert.False(t, ok)
}

func TestEngine_DragLifecycle(t *testing.T) {
	eng, _ := newTestEngine(t)

	err := eng.StartDrag("brain-core", 150, 120)
	assert.ErrorIs(t, err, domain.ErrPositioningDisabled)

	eng.SetPositioningMode(true)
	require.NoError(t, eng.StartDrag("brain-core", 150, 120))
	eng.UpdateDrag(170, 140)

	// The preview shows in the snapshot but nothing is committed yet.
	snap := eng.Snapshot()
	var brain domain.ObjectSnapshot
	for _, obj := range snap.Objects {
		if obj.ID == "brain-core" {
			brain = obj
		}
	}
	assert.True(t, brain.IsDragging)
	assert.Equal(t, float64(120), brain.Position.X)

	committed, err := eng.Position("brain-core")
	require.NoError(t, err)
	assert.Equal(t, float64(100), committed.X)

	require.NoError(t, eng.EndDrag())
	committed, _ = eng.Position("brain-core")
	assert.Equal(t, float64(120), committed.X)
	assert.Equal(t, float64(120), committed.Y)

	assert.True(t, eng.Undo())
	committed, _ = eng.Position("brain-core")
	assert.Equal(t, float64(100), committed.X)
	assert.True(t, eng.Redo())
}

func TestEngine_DragLocked(t *testing.T) {
	eng, _ := newTestEngine(t)
	eng.SetPositioningMode(true)
	eng.SetLocked("brain-core", true)

	err := eng.StartDrag("brain-core", 150, 120)
	assert.ErrorIs(t, err, domain.ErrObjectLocked)
}

func TestEngine_GridSnap(t *testing.T) {
	eng, _ := newTestEngine(t, canvas.WithGridSnap(true, 50))

	require.NoError(t, eng.SetPosition("brain-core", domain.Position{X: 110, Y: 130, Width: 200, Height: 150}))
	pos, err := eng.Position("brain-core")
	require.NoError(t, err)
	assert.Equal(t, float64(100), pos.X)
	assert.Equal(t, float64(150), pos.Y)
}

func TestEngine_Presets(t *testing.T) {
	eng, _ := newTestEngine(t)

	names, err := eng.Presets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"reading"}, names)

	// The ghost entry is skipped; two objects move.
	applied, err := eng.ApplyPreset(context.Background(), "reading")
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	pos, _ := eng.Position("brain-core")
	assert.Equal(t, float64(40), pos.X)

	_, err = eng.ApplyPreset(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrUnknownPreset)

	saved := eng.SavePreset()
	assert.Equal(t, float64(40), saved["brain-core"].X)
}

func TestEngine_HandleAction(t *testing.T) {
	eng, _ := newTestEngine(t)

	require.NoError(t, eng.HandleAction(domain.ActionTogglePositioning))
	assert.True(t, eng.PositioningMode())

	require.NoError(t, eng.HandleAction(domain.ActionToggleGrid))
	assert.True(t, eng.GridEnabled())
	require.NoError(t, eng.HandleAction(domain.ActionToggleGrid))
	assert.False(t, eng.GridEnabled())

	// Escape cancels the live drag and drops the selection.
	require.NoError(t, eng.StartDrag("brain-core", 150, 120))
	require.NoError(t, eng.HandleAction(domain.ActionEscape))
	_, dragging := eng.Dragging()
	assert.False(t, dragging)
	_, selected := eng.Selected()
	assert.False(t, selected)

	assert.Error(t, eng.HandleAction(domain.Action("warp")))
}

func TestEngine_ResetAction(t *testing.T) {
	eng, _ := newTestEngine(t)

	require.NoError(t, eng.Activate("brain-core"))
	require.NoError(t, eng.SetPosition("brain-core", domain.Position{X: 10, Y: 10, Width: 200, Height: 150}))

	require.NoError(t, eng.HandleAction(domain.ActionReset))

	state, _ := eng.State("brain-core")
	assert.Equal(t, domain.StateIdle, state)
	pos, _ := eng.Position("brain-core")
	assert.Equal(t, float64(100), pos.X)
	assert.False(t, eng.Undo(), "reset clears the history")
}

func TestEngine_FailedAssetsAndRetry(t *testing.T) {
	fetcher := memory.NewFetcher()
	loader := memory.NewLoader([]domain.ObjectConfig{{
		ID:          "lone",
		Assets:      domain.AssetSet{ObjectIsolated: "late.png"},
		Position:    domain.Position{X: 0, Y: 0, Width: 10, Height: 10},
		Interactive: true,
		Visible:     true,
	}})

	eng, err := canvas.New(canvas.WithRegistry(loader), canvas.WithFetcher(fetcher))
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	require.NoError(t, eng.LoadRegistry(context.Background()))

	failed, err := eng.LoadAssets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{"late.png"}, eng.FailedAssets())

	// The asset appears; retry re-opens the failed record.
	fetcher.Put("late.png", []byte("here now"))
	require.NoError(t, eng.RetryAsset(context.Background(), "late.png"))
	assert.Empty(t, eng.FailedAssets())
	assert.Equal(t, 100, eng.Progress())
}

func TestEngine_Events(t *testing.T) {
	eng, _ := newTestEngine(t)
	events := eng.Events()

	require.NoError(t, eng.Activate("brain-core"))
	ev := waitEvent(t, events, domain.EventActivated)
	assert.Equal(t, "brain-core", ev.ObjectID)
	assert.Equal(t, []string{"panel-left", "panel-right"}, ev.AffectedIDs)
	assert.NotEmpty(t, ev.ID)

	_, err := eng.LoadAssets(context.Background())
	require.NoError(t, err)
	waitEvent(t, events, domain.EventAssetLoaded)
}

func TestEngine_LifecycleHooks(t *testing.T) {
	var activated []string
	hooks := domain.LifecycleHooks{
		OnActivate: func(_ context.Context, ev *domain.ActivationEvent) {
			activated = append(activated, ev.ObjectID)
		},
	}

	eng, clk := newTestEngine(t, canvas.WithLifecycleHooks(hooks))
	require.NoError(t, eng.Activate("brain-core"))
	clk.Advance(200 * time.Millisecond)

	assert.Equal(t, []string{"brain-core", "panel-left", "panel-right"}, activated)
}

func TestEngine_Close(t *testing.T) {
	eng, _ := newTestEngine(t)
	events := eng.Events()

	require.NoError(t, eng.Close())
	require.NoError(t, eng.Close(), "close is idempotent")

	assert.ErrorIs(t, eng.Activate("brain-core"), domain.ErrEngineClosed)
	assert.ErrorIs(t, eng.SetPosition("brain-core", domain.Position{Width: 1, Height: 1}), domain.ErrEngineClosed)
	assert.ErrorIs(t, eng.StartDrag("brain-core", 0, 0), domain.ErrEngineClosed)
	assert.False(t, eng.Undo())

	select {
	case _, ok := <-events:
		assert.False(t, ok, "event channel should be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("event channel not closed")
	}
}

func TestEngine_DeregisterMidDrag(t *testing.T) {
	eng, _ := newTestEngine(t)
	eng.SetPositioningMode(true)

	require.NoError(t, eng.StartDrag("brain-core", 150, 120))
	eng.Deregister("brain-core")
	require.NoError(t, eng.EndDrag())

	_, err := eng.Position("brain-core")
	assert.ErrorIs(t, err, domain.ErrUnknownObject)
}
