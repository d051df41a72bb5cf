package interaction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oliver-os/canvas/internal/clock"
	"github.com/oliver-os/canvas/pkg/domain"
)

// On the system clock a cascade callback can already be in flight when
// Deactivate cancels it: Stop returns false, the timer record is gone from
// the pending list, and fire runs after Deactivate returns. Such a fire
// must not activate its target.
func TestGraph_FireAfterCancelIsNoOp(t *testing.T) {
	fake := clock.NewFake(time.Unix(1000, 0))
	g := New(fake)
	require.NoError(t, g.Register("brain-core", &domain.Cascade{
		Affects:     []string{"panel-left"},
		DelayMillis: 100,
	}))
	require.NoError(t, g.Register("panel-left", nil))

	require.NoError(t, g.Activate("brain-core"))

	g.mu.Lock()
	require.Len(t, g.timers["brain-core"], 1)
	ct := g.timers["brain-core"][0]
	g.mu.Unlock()

	require.NoError(t, g.Deactivate("brain-core"))

	// The callback that was already past Stop now takes the lock.
	g.fire(ct)

	state, ok := g.State("panel-left")
	require.True(t, ok)
	assert.Equal(t, domain.StateIdle, state)
}

func TestGraph_FireRetiresOnlyItself(t *testing.T) {
	fake := clock.NewFake(time.Unix(1000, 0))
	g := New(fake)
	require.NoError(t, g.Register("brain-core", &domain.Cascade{
		Affects:     []string{"panel-left", "panel-right"},
		DelayMillis: 100,
	}))
	require.NoError(t, g.Register("panel-left", nil))
	require.NoError(t, g.Register("panel-right", nil))

	require.NoError(t, g.Activate("brain-core"))

	fake.Advance(100 * time.Millisecond)

	g.mu.Lock()
	remaining := len(g.timers["brain-core"])
	g.mu.Unlock()
	assert.Equal(t, 1, remaining)

	state, _ := g.State("panel-left")
	assert.Equal(t, domain.StateActive, state)
	state, _ = g.State("panel-right")
	assert.Equal(t, domain.StateIdle, state)
}
