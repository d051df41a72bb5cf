// Package interaction drives cascading activation of interdependent
// objects: a per-object idle/active state machine plus a timer-based
// cascade scheduler.
package interaction

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/oliver-os/canvas/internal/clock"
	"github.com/oliver-os/canvas/internal/logging"
	"github.com/oliver-os/canvas/pkg/domain"
)

// Notifier receives activation transitions. Notifications are
// fire-and-forget and invoked outside the graph lock.
type Notifier func(*domain.ActivationEvent)

type object struct {
	cascade *domain.Cascade
	active  bool
	hovered bool
}

// Graph holds per-object activation state and cascade edges, and schedules
// the delayed cascade timers. Safe for concurrent use.
//
// Activation ripples on with a staggered delay per target; deactivation
// ripples off synchronously. The asymmetry is intentional: switching a
// scene on is a slow visual ripple, switching it off is immediate.
type Graph struct {
	mu      sync.Mutex
	clk     clock.Clock
	logger  *slog.Logger
	notify  Notifier
	objects map[string]*object
	timers  map[string][]*cascadeTimer // pending timers keyed by source
}

// Option configures the Graph.
type Option func(*Graph)

// WithLogger configures a logger for the graph.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		g.logger = logger
	}
}

// WithNotifier registers the transition callback.
func WithNotifier(n Notifier) Option {
	return func(g *Graph) {
		g.notify = n
	}
}

// New creates an empty graph driven by the given clock.
func New(clk clock.Clock, opts ...Option) *Graph {
	g := &Graph{
		clk:     clk,
		logger:  logging.NewNop(),
		objects: make(map[string]*object),
		timers:  make(map[string][]*cascadeTimer),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Register adds an object with its optional cascade declaration.
func (g *Graph) Register(id string, cascade *domain.Cascade) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.objects[id]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateObject, id)
	}
	g.objects[id] = &object{cascade: cascade}
	return nil
}

// Deregister removes an object and cancels any timers it owns. Timers from
// other sources targeting the removed object stay pending; firing onto an
// unknown target is a no-op.
func (g *Graph) Deregister(id string) {
	g.mu.Lock()
	g.cancelTimersLocked(id)
	delete(g.objects, id)
	g.mu.Unlock()
}

// State returns the activation state of an object.
func (g *Graph) State(id string) (domain.ActivationState, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	obj, ok := g.objects[id]
	if !ok {
		return domain.StateIdle, false
	}
	if obj.active {
		return domain.StateActive, true
	}
	return domain.StateIdle, true
}

// SetHovered updates the hover flag. Unknown IDs are ignored.
func (g *Graph) SetHovered(id string, hovered bool) {
	g.mu.Lock()
	if obj, ok := g.objects[id]; ok {
		obj.hovered = hovered
	}
	g.mu.Unlock()
}

// Hovered returns the hover flag for an object.
func (g *Graph) Hovered(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	obj, ok := g.objects[id]
	return ok && obj.hovered
}

// Activate sets the object active immediately. If it declares a cascade,
// each target is scheduled to activate at delay*(k+1) in declaration
// order. Re-activating a source replaces its pending timers; it never
// duplicates them.
func (g *Graph) Activate(id string) error {
	g.mu.Lock()
	obj, ok := g.objects[id]
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrUnknownObject, id)
	}

	obj.active = true
	ev := &domain.ActivationEvent{
		Timestamp: g.clk.Now(),
		ObjectID:  id,
		Active:    true,
	}
	if obj.cascade != nil {
		ev.AffectedIDs = append([]string(nil), obj.cascade.Affects...)
		g.cancelTimersLocked(id)
		g.scheduleCascadeLocked(id, obj.cascade)
	}
	g.mu.Unlock()

	g.emit(ev)
	return nil
}

// Deactivate sets the object idle, synchronously deactivates every cascade
// target it declares, and cancels its pending timers. Only timers owned by
// this source are cancelled.
func (g *Graph) Deactivate(id string) error {
	g.mu.Lock()
	obj, ok := g.objects[id]
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrUnknownObject, id)
	}

	obj.active = false
	ev := &domain.ActivationEvent{
		Timestamp: g.clk.Now(),
		ObjectID:  id,
		Active:    false,
	}
	if obj.cascade != nil {
		ev.AffectedIDs = append([]string(nil), obj.cascade.Affects...)
		g.cancelTimersLocked(id)
		for _, target := range obj.cascade.Affects {
			if t, known := g.objects[target]; known {
				t.active = false
			}
		}
	}
	g.mu.Unlock()

	g.emit(ev)
	return nil
}

// Toggle activates an idle object and deactivates an active one. It
// reports whether the object is active after the call.
func (g *Graph) Toggle(id string) (bool, error) {
	g.mu.Lock()
	obj, ok := g.objects[id]
	if !ok {
		g.mu.Unlock()
		return false, fmt.Errorf("%w: %s", domain.ErrUnknownObject, id)
	}
	wasActive := obj.active
	g.mu.Unlock()

	if wasActive {
		return false, g.Deactivate(id)
	}
	return true, g.Activate(id)
}

// Reset sets every object idle and cancels all pending timers. No
// per-object events are emitted; reset is a bulk operation.
func (g *Graph) Reset() {
	g.mu.Lock()
	for source := range g.timers {
		g.cancelTimersLocked(source)
	}
	for _, obj := range g.objects {
		obj.active = false
		obj.hovered = false
	}
	g.mu.Unlock()
}

// ActiveIDs returns the IDs currently active, for diagnostics.
func (g *Graph) ActiveIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var ids []string
	for id, obj := range g.objects {
		if obj.active {
			ids = append(ids, id)
		}
	}
	return ids
}

// Close cancels all pending timers. The graph is still queryable after
// Close; it simply stops rippling.
func (g *Graph) Close() {
	g.mu.Lock()
	for source := range g.timers {
		g.cancelTimersLocked(source)
	}
	g.mu.Unlock()
}

func (g *Graph) emit(ev *domain.ActivationEvent) {
	if g.notify != nil {
		g.notify(ev)
	}
}
