package canvas

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/oliver-os/canvas/internal/assets"
	"github.com/oliver-os/canvas/internal/clock"
	"github.com/oliver-os/canvas/internal/interaction"
	"github.com/oliver-os/canvas/internal/layout"
	"github.com/oliver-os/canvas/internal/logging"
	"github.com/oliver-os/canvas/internal/metrics"
	"github.com/oliver-os/canvas/pkg/domain"
	"github.com/oliver-os/canvas/pkg/ports"
)

// Engine is the high-level entry point for the canvas library. It composes
// the asset cache, the interaction graph, and the position store behind a
// single facade, and owns the event fan-out to hooks, the subscriber
// channel, and the optional external sink.
type Engine struct {
	mu       sync.Mutex
	objects  map[string]domain.ObjectConfig
	order    []string
	selected string
	closed   bool

	loader  ports.RegistryLoader
	presets ports.PresetLoader
	fetcher ports.AssetFetcher
	sink    ports.EventSink
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	clk     clock.Clock
	met     *metrics.Metrics

	cache     *assets.Cache
	scheduler *assets.Scheduler
	graph     *interaction.Graph
	store     *layout.Store
	drag      *layout.Drag

	capacity    int
	concurrency int
	grid        *layout.Grid

	dispatchCh chan domain.Event
	eventCh    chan domain.Event
	done       chan struct{}
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithRegistry injects the registry source used by LoadRegistry. If the
// loader also implements ports.PresetLoader, presets come from it too.
func WithRegistry(l ports.RegistryLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithPresets injects a preset source independent of the registry loader.
func WithPresets(p ports.PresetLoader) Option {
	return func(e *Engine) {
		e.presets = p
	}
}

// WithFetcher injects the asset fetcher backing the cache. Required.
func WithFetcher(f ports.AssetFetcher) Option {
	return func(e *Engine) {
		e.fetcher = f
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithEventSink registers an external sink for engine events. Publishing
// is best-effort; a failing sink is logged and never fails the operation.
func WithEventSink(s ports.EventSink) Option {
	return func(e *Engine) {
		e.sink = s
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock overrides the timer source, used by tests to drive cascade
// timers deterministically.
func WithClock(clk clock.Clock) Option {
	return func(e *Engine) {
		e.clk = clk
	}
}

// WithMetrics registers the engine's Prometheus collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.met = metrics.New(reg)
	}
}

// WithCacheCapacity overrides the loaded-asset bound (default 50).
func WithCacheCapacity(n int) Option {
	return func(e *Engine) {
		e.capacity = n
	}
}

// WithConcurrency overrides the batch load bound (default 5).
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// WithGridSnap sets the initial grid configuration for position commits.
func WithGridSnap(enabled bool, spacing float64) Option {
	return func(e *Engine) {
		e.grid = &layout.Grid{Enabled: enabled, Spacing: spacing}
	}
}

// New initializes a new canvas Engine. An asset fetcher is required; every
// other collaborator has a working default (nop logger, system clock,
// unregistered metrics, no sink).
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		objects:    make(map[string]domain.ObjectConfig),
		dispatchCh: make(chan domain.Event, 128),
		eventCh:    make(chan domain.Event, 64),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.fetcher == nil {
		return nil, fmt.Errorf("an asset fetcher is required: pass WithFetcher")
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.clk == nil {
		e.clk = clock.System()
	}
	if e.met == nil {
		e.met = metrics.NewNop()
	}
	if e.presets == nil {
		if p, ok := e.loader.(ports.PresetLoader); ok {
			e.presets = p
		}
	}

	cacheOpts := []assets.CacheOption{
		assets.WithLogger(e.logger),
		assets.WithHooks(assets.Hooks{OnLoaded: e.assetLoaded, OnFailed: e.assetFailed}),
	}
	if e.capacity > 0 {
		cacheOpts = append(cacheOpts, assets.WithCapacity(e.capacity))
	}
	e.cache = assets.NewCache(e.fetcher, cacheOpts...)

	schedOpts := []assets.SchedulerOption{assets.WithSchedulerLogger(e.logger)}
	if e.concurrency > 0 {
		schedOpts = append(schedOpts, assets.WithConcurrency(e.concurrency))
	}
	e.scheduler = assets.NewScheduler(e.cache, schedOpts...)

	e.graph = interaction.New(e.clk,
		interaction.WithLogger(e.logger),
		interaction.WithNotifier(e.activation),
	)

	storeOpts := []layout.StoreOption{
		layout.WithStoreLogger(e.logger),
		layout.WithStoreNotifier(e.positionSet),
	}
	if e.grid != nil {
		storeOpts = append(storeOpts, layout.WithGrid(*e.grid))
	}
	e.store = layout.NewStore(storeOpts...)
	e.drag = layout.NewDrag(e.store, layout.WithDragLogger(e.logger))

	go e.dispatch()
	return e, nil
}

// LoadRegistry reads the configured registry source and registers every
// object it declares, in file order.
func (e *Engine) LoadRegistry(ctx context.Context) error {
	if e.loader == nil {
		return fmt.Errorf("no registry loader configured: pass WithRegistry")
	}
	objects, err := e.loader.LoadObjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	for _, cfg := range objects {
		if err := e.Register(cfg); err != nil {
			return err
		}
	}
	return nil
}

// Register adds a validated object to the canvas. Registration is not a
// position edit: it creates no undo step.
func (e *Engine) Register(cfg domain.ObjectConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return domain.ErrEngineClosed
	}
	if _, exists := e.objects[cfg.ID]; exists {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrDuplicateObject, cfg.ID)
	}
	e.objects[cfg.ID] = cfg
	e.order = append(e.order, cfg.ID)
	e.mu.Unlock()

	if err := e.graph.Register(cfg.ID, cfg.Cascade); err != nil {
		e.forget(cfg.ID)
		return err
	}
	if err := e.store.Register(cfg.ID, cfg.Position); err != nil {
		e.graph.Deregister(cfg.ID)
		e.forget(cfg.ID)
		return err
	}

	if cfg.Cascade != nil {
		e.mu.Lock()
		for _, target := range cfg.Cascade.Affects {
			if _, known := e.objects[target]; !known {
				e.logger.Warn("cascade target not registered", "source", cfg.ID, "target", target)
			}
		}
		e.mu.Unlock()
	}
	return nil
}

// Deregister removes an object. Pending cascade timers it owns are
// cancelled; timers from other sources targeting it fire as no-ops.
func (e *Engine) Deregister(id string) {
	e.forget(id)
	e.graph.Deregister(id)
	e.store.Deregister(id)
}

// Objects returns the registered descriptors in registration order.
func (e *Engine) Objects() []domain.ObjectConfig {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.ObjectConfig, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.objects[id])
	}
	return out
}

// LoadAssets loads every registered object's assets with bounded
// concurrency. Individual failures never abort the batch; the failed count
// is returned and each failure stays retryable.
func (e *Engine) LoadAssets(ctx context.Context) (failed int, err error) {
	var paths []string
	for _, cfg := range e.Objects() {
		paths = append(paths, cfg.Assets.Paths()...)
	}
	return e.scheduler.LoadAll(ctx, paths)
}

// PreloadCritical loads only the first count objects' assets so the first
// visible frame is ready before the rest of the canvas. count <= 0 uses
// the default of 3.
func (e *Engine) PreloadCritical(ctx context.Context, count int) (int, error) {
	return e.scheduler.PreloadCritical(ctx, e.Objects(), count)
}

// Asset returns the cached resource for a path, if loaded.
func (e *Engine) Asset(path string) (ports.Resource, bool) {
	rec, ok := e.cache.Get(path)
	if !ok || rec.State != assets.StateLoaded {
		return nil, false
	}
	return rec.Resource, true
}

// Progress returns the rounded percentage of scheduled assets loaded.
func (e *Engine) Progress() int {
	return e.scheduler.Progress()
}

// FailedAssets returns the paths whose loads failed. Each is retryable.
func (e *Engine) FailedAssets() []string {
	return e.cache.Failed()
}

// RetryAsset clears a failed record and loads the path again.
func (e *Engine) RetryAsset(ctx context.Context, path string) error {
	if e.isClosed() {
		return domain.ErrEngineClosed
	}
	_, err := e.scheduler.Retry(ctx, path)
	return err
}

// Activate sets an interactive object active and schedules its cascade.
func (e *Engine) Activate(id string) error {
	if err := e.interactive(id); err != nil {
		return err
	}
	return e.graph.Activate(id)
}

// Deactivate sets an object idle and synchronously deactivates its
// cascade targets.
func (e *Engine) Deactivate(id string) error {
	if err := e.interactive(id); err != nil {
		return err
	}
	return e.graph.Deactivate(id)
}

// Toggle flips an object's activation state. It reports whether the
// object is active after the call.
func (e *Engine) Toggle(id string) (bool, error) {
	if err := e.interactive(id); err != nil {
		return false, err
	}
	return e.graph.Toggle(id)
}

// State returns the activation state of an object.
func (e *Engine) State(id string) (domain.ActivationState, error) {
	state, ok := e.graph.State(id)
	if !ok {
		return domain.StateIdle, fmt.Errorf("%w: %s", domain.ErrUnknownObject, id)
	}
	return state, nil
}

// SetHovered updates the hover flag for an object. Unknown IDs are ignored.
func (e *Engine) SetHovered(id string, hovered bool) {
	e.graph.SetHovered(id, hovered)
}

// SetPosition validates, snaps, and commits a position, pushing an undo
// step. On validation failure the prior position stays in effect.
func (e *Engine) SetPosition(id string, pos domain.Position) error {
	if e.isClosed() {
		return domain.ErrEngineClosed
	}
	return e.store.SetPosition(id, pos)
}

// Position returns the committed position of an object.
func (e *Engine) Position(id string) (domain.Position, error) {
	pos, ok := e.store.Position(id)
	if !ok {
		return domain.Position{}, fmt.Errorf("%w: %s", domain.ErrUnknownObject, id)
	}
	return pos, nil
}

// Undo steps position history back one snapshot. No-op at the bottom.
func (e *Engine) Undo() bool {
	if e.isClosed() {
		return false
	}
	moved := e.store.Undo()
	if moved {
		e.met.HistoryMoves.WithLabelValues("undo").Inc()
	}
	return moved
}

// Redo steps position history forward one snapshot. No-op at the top.
func (e *Engine) Redo() bool {
	if e.isClosed() {
		return false
	}
	moved := e.store.Redo()
	if moved {
		e.met.HistoryMoves.WithLabelValues("redo").Inc()
	}
	return moved
}

// ResetAll restores every object to its registry-declared position and
// clears the undo history.
func (e *Engine) ResetAll() {
	e.store.ResetAll()
}

// ApplyPreset loads a named preset and commits each matching entry, one
// undo step per repositioned object. Unknown IDs in the preset are
// skipped. Returns the number of objects repositioned.
func (e *Engine) ApplyPreset(ctx context.Context, name string) (int, error) {
	if e.isClosed() {
		return 0, domain.ErrEngineClosed
	}
	if e.presets == nil {
		return 0, fmt.Errorf("no preset source configured")
	}
	preset, err := e.presets.LoadPreset(ctx, name)
	if err != nil {
		return 0, err
	}
	return e.store.ApplyPreset(preset)
}

// ApplyPresetValue commits a preset value directly, bypassing the loader.
func (e *Engine) ApplyPresetValue(preset domain.Preset) (int, error) {
	if e.isClosed() {
		return 0, domain.ErrEngineClosed
	}
	return e.store.ApplyPreset(preset)
}

// SavePreset captures every committed position as a preset value. The
// engine persists nothing; callers decide what to do with it.
func (e *Engine) SavePreset() domain.Preset {
	return domain.Preset(e.store.All())
}

// Presets returns the preset names the configured source offers.
func (e *Engine) Presets(ctx context.Context) ([]string, error) {
	if e.presets == nil {
		return nil, nil
	}
	return e.presets.ListPresets(ctx)
}

// SetPositioningMode toggles drag editing. Leaving the mode cancels any
// in-progress drag without committing it.
func (e *Engine) SetPositioningMode(enabled bool) {
	e.drag.SetPositioning(enabled)
}

// PositioningMode reports whether drag editing is on.
func (e *Engine) PositioningMode() bool {
	return e.drag.Positioning()
}

// SetGridEnabled toggles grid snapping for subsequent commits.
func (e *Engine) SetGridEnabled(enabled bool) {
	e.store.SetGridEnabled(enabled)
}

// GridEnabled reports whether grid snapping is on.
func (e *Engine) GridEnabled() bool {
	return e.store.Grid().Enabled
}

// SetLocked pins or unpins an object against dragging.
func (e *Engine) SetLocked(id string, locked bool) {
	e.drag.SetLocked(id, locked)
}

// StartDrag opens a drag session for an object at the given pointer
// location and selects it. Starting while another drag is live is ignored
// without error.
func (e *Engine) StartDrag(id string, pointerX, pointerY float64) error {
	if e.isClosed() {
		return domain.ErrEngineClosed
	}
	if err := e.drag.StartDrag(id, pointerX, pointerY); err != nil {
		return err
	}
	if dragging, ok := e.drag.Dragging(); ok && dragging == id {
		e.setSelected(id)
		e.publish(domain.Event{
			ID:        uuid.NewString(),
			Timestamp: e.clk.Now(),
			Type:      domain.EventDragStart,
			ObjectID:  id,
		})
	}
	return nil
}

// UpdateDrag recomputes the live preview from the pointer position.
// Nothing is committed until EndDrag.
func (e *Engine) UpdateDrag(pointerX, pointerY float64) {
	e.drag.UpdateDrag(pointerX, pointerY)
}

// EndDrag commits the live position and closes the session. Safe no-op
// without a session or when the object vanished mid-drag.
func (e *Engine) EndDrag() error {
	id, live := e.drag.Dragging()
	err := e.drag.EndDrag()
	if live {
		e.publish(domain.Event{
			ID:        uuid.NewString(),
			Timestamp: e.clk.Now(),
			Type:      domain.EventDragEnd,
			ObjectID:  id,
		})
	}
	return err
}

// CancelDrag discards the live session without committing.
func (e *Engine) CancelDrag() {
	e.drag.CancelDrag()
}

// Dragging returns the object ID of the live drag session, if any.
func (e *Engine) Dragging() (string, bool) {
	return e.drag.Dragging()
}

// ObjectAt returns the topmost visible object containing the point.
// Ties on z-index resolve to the most recently registered object.
func (e *Engine) ObjectAt(x, y float64) (string, bool) {
	e.mu.Lock()
	ids := append([]string(nil), e.order...)
	cfgs := make(map[string]domain.ObjectConfig, len(ids))
	for _, id := range ids {
		cfgs[id] = e.objects[id]
	}
	e.mu.Unlock()

	bestID := ""
	bestZ := 0
	found := false
	for _, id := range ids {
		cfg := cfgs[id]
		if !cfg.Visible {
			continue
		}
		pos, ok := e.store.Position(id)
		if !ok || !pos.Contains(x, y) {
			continue
		}
		if !found || cfg.ZIndex >= bestZ {
			bestID, bestZ, found = id, cfg.ZIndex, true
		}
	}
	return bestID, found
}

// HitTest resolves which horizontal third of an object's bounding box a
// pointer X coordinate falls in.
func (e *Engine) HitTest(id string, x float64) (domain.ClickZone, error) {
	pos, ok := e.store.Position(id)
	if !ok {
		return domain.ZoneNone, fmt.Errorf("%w: %s", domain.ErrUnknownObject, id)
	}
	return domain.ZoneFor(pos, x), nil
}

// Click routes a pointer press: it resolves the topmost object and its
// click zone, selects the object, and toggles activation on a middle-zone
// click of an interactive object outside positioning mode. A click on
// empty canvas clears the selection.
func (e *Engine) Click(x, y float64) (string, domain.ClickZone, error) {
	if e.isClosed() {
		return "", domain.ZoneNone, domain.ErrEngineClosed
	}

	id, ok := e.ObjectAt(x, y)
	if !ok {
		e.setSelected("")
		return "", domain.ZoneNone, nil
	}

	pos, _ := e.store.Position(id)
	zone := domain.ZoneFor(pos, x)
	e.setSelected(id)

	e.mu.Lock()
	interactive := e.objects[id].Interactive
	e.mu.Unlock()

	if zone == domain.ZoneMiddle && interactive && !e.drag.Positioning() {
		if _, err := e.graph.Toggle(id); err != nil {
			return id, zone, err
		}
	}
	return id, zone, nil
}

// HandleAction dispatches a named input action, typically bound to a
// keyboard shortcut by the host.
func (e *Engine) HandleAction(action domain.Action) error {
	if e.isClosed() {
		return domain.ErrEngineClosed
	}

	switch action {
	case domain.ActionTogglePositioning:
		e.drag.SetPositioning(!e.drag.Positioning())
	case domain.ActionToggleGrid:
		e.store.SetGridEnabled(!e.store.Grid().Enabled)
	case domain.ActionUndo:
		e.Undo()
	case domain.ActionRedo:
		e.Redo()
	case domain.ActionReset:
		e.drag.CancelDrag()
		e.graph.Reset()
		e.store.ResetAll()
		e.setSelected("")
	case domain.ActionEscape:
		e.drag.CancelDrag()
		e.setSelected("")
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	return nil
}

// Select marks an object as selected.
func (e *Engine) Select(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.objects[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownObject, id)
	}
	e.selected = id
	return nil
}

// Selected returns the currently selected object, if any.
func (e *Engine) Selected() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected, e.selected != ""
}

// ClearSelection drops the current selection.
func (e *Engine) ClearSelection() {
	e.setSelected("")
}

// Snapshot returns the full render view: every object ordered by
// ascending z-index plus canvas-level mode flags. During a drag the
// dragged object carries its live preview position.
func (e *Engine) Snapshot() domain.CanvasSnapshot {
	e.mu.Lock()
	ids := append([]string(nil), e.order...)
	cfgs := make(map[string]domain.ObjectConfig, len(ids))
	for _, id := range ids {
		cfgs[id] = e.objects[id]
	}
	selected := e.selected
	e.mu.Unlock()

	sort.SliceStable(ids, func(i, j int) bool {
		return cfgs[ids[i]].ZIndex < cfgs[ids[j]].ZIndex
	})

	draggingID, _ := e.drag.Dragging()

	objs := make([]domain.ObjectSnapshot, 0, len(ids))
	for _, id := range ids {
		cfg := cfgs[id]
		pos, _ := e.store.Position(id)
		if id == draggingID {
			if live, ok := e.drag.LivePosition(id); ok {
				pos = live
			}
		}
		state, _ := e.graph.State(id)
		objs = append(objs, domain.ObjectSnapshot{
			ID:            id,
			ZIndex:        cfg.ZIndex,
			Position:      pos,
			Activation:    state,
			Hovered:       e.graph.Hovered(id),
			AssetProgress: e.scheduler.ProgressFor(cfg.Assets.Paths()),
			IsDragging:    id == draggingID,
			IsSelected:    id == selected,
			Visible:       cfg.Visible,
			Locked:        e.drag.Locked(id),
		})
	}

	return domain.CanvasSnapshot{
		Objects:         objs,
		PositioningMode: e.drag.Positioning(),
		GridEnabled:     e.store.Grid().Enabled,
		AssetProgress:   e.scheduler.Progress(),
	}
}

// Events returns the engine's event stream. The channel is buffered;
// events are dropped, not blocked on, when the subscriber falls behind.
// The channel closes when the engine closes.
func (e *Engine) Events() <-chan domain.Event {
	return e.eventCh
}

// Close tears the engine down: cancels all pending cascade timers,
// discards any live drag, stops the event fan-out, and closes the sink.
// Close is idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.drag.CancelDrag()
	e.graph.Close()
	close(e.done)

	if e.sink != nil {
		if err := e.sink.Close(); err != nil {
			return fmt.Errorf("failed to close event sink: %w", err)
		}
	}
	return nil
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// interactive checks that an object exists and accepts activation calls.
func (e *Engine) interactive(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return domain.ErrEngineClosed
	}
	cfg, ok := e.objects[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownObject, id)
	}
	if !cfg.Interactive {
		return fmt.Errorf("%w: %s", domain.ErrObjectNotInteractive, id)
	}
	return nil
}

func (e *Engine) forget(id string) {
	e.mu.Lock()
	delete(e.objects, id)
	for i, other := range e.order {
		if other == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	if e.selected == id {
		e.selected = ""
	}
	e.mu.Unlock()
}

func (e *Engine) setSelected(id string) {
	e.mu.Lock()
	e.selected = id
	e.mu.Unlock()
}

// activation is the interaction graph's notifier. It runs outside the
// graph lock, including on cascade timer goroutines.
func (e *Engine) activation(ev *domain.ActivationEvent) {
	ctx := context.Background()
	eventType := domain.EventActivated
	if ev.Active {
		e.met.Activations.WithLabelValues("activate").Inc()
		if e.hooks.OnActivate != nil {
			e.hooks.OnActivate(ctx, ev)
		}
	} else {
		eventType = domain.EventDeactivated
		e.met.Activations.WithLabelValues("deactivate").Inc()
		if e.hooks.OnDeactivate != nil {
			e.hooks.OnDeactivate(ctx, ev)
		}
	}
	if ev.Cascaded {
		e.met.CascadeFired.Inc()
	}
	e.met.ActiveObjects.Set(float64(len(e.graph.ActiveIDs())))

	e.publish(domain.Event{
		ID:          uuid.NewString(),
		Timestamp:   ev.Timestamp,
		Type:        eventType,
		ObjectID:    ev.ObjectID,
		AffectedIDs: ev.AffectedIDs,
	})
}

// positionSet is the store's notifier for committed edits.
func (e *Engine) positionSet(ev *domain.PositionEvent) {
	e.met.PositionEdits.Inc()
	if e.hooks.OnPositionSet != nil {
		e.hooks.OnPositionSet(context.Background(), ev)
	}
	e.publish(domain.Event{
		ID:        uuid.NewString(),
		Timestamp: ev.Timestamp,
		Type:      domain.EventPositionSet,
		ObjectID:  ev.ObjectID,
	})
}

func (e *Engine) assetLoaded(path string, res ports.Resource) {
	e.met.AssetLoads.WithLabelValues("loaded").Inc()
	e.met.AssetLoadSize.Observe(float64(res.Size()))
	if e.hooks.OnAssetLoaded != nil {
		e.hooks.OnAssetLoaded(context.Background(), &domain.AssetEvent{
			Timestamp: e.clk.Now(),
			Path:      path,
		})
	}
	e.publish(domain.Event{
		ID:        uuid.NewString(),
		Timestamp: e.clk.Now(),
		Type:      domain.EventAssetLoaded,
		ObjectID:  path,
	})
}

func (e *Engine) assetFailed(path string, cause error) {
	e.met.AssetLoads.WithLabelValues("failed").Inc()
	if e.hooks.OnAssetFailed != nil {
		e.hooks.OnAssetFailed(context.Background(), &domain.AssetEvent{
			Timestamp: e.clk.Now(),
			Path:      path,
			IsError:   true,
			Err:       cause.Error(),
		})
	}
	e.publish(domain.Event{
		ID:        uuid.NewString(),
		Timestamp: e.clk.Now(),
		Type:      domain.EventAssetFailed,
		ObjectID:  path,
	})
}

// publish queues an event for fan-out. It never blocks: when the engine
// is closed or the dispatch buffer is full the event is dropped.
func (e *Engine) publish(ev domain.Event) {
	select {
	case <-e.done:
		return
	default:
	}
	select {
	case e.dispatchCh <- ev:
	default:
		e.logger.Debug("event buffer full, dropped", "type", ev.Type, "object", ev.ObjectID)
	}
}

// dispatch is the single fan-out goroutine: it forwards queued events to
// the external sink and the subscriber channel.
func (e *Engine) dispatch() {
	defer close(e.eventCh)
	for {
		select {
		case <-e.done:
			return
		case ev := <-e.dispatchCh:
			if e.sink != nil {
				if err := e.sink.Publish(context.Background(), ev); err != nil {
					e.logger.Warn("event sink publish failed", "type", ev.Type, "err", err)
				}
			}
			select {
			case e.eventCh <- ev:
			default:
				e.logger.Debug("subscriber behind, event dropped", "type", ev.Type)
			}
		}
	}
}
