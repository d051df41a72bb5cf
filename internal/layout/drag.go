package layout

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/oliver-os/canvas/internal/logging"
	"github.com/oliver-os/canvas/pkg/domain"
)

// Session is the transient state of one in-progress drag. The live
// position is a preview overlay: it is only committed on EndDrag.
type Session struct {
	ID       string
	ObjectID string

	originPointerX float64
	originPointerY float64
	origin         domain.Position
	live           domain.Position
}

// Drag converts pointer events into position deltas and commits them to
// the store. At most one session is live at a time: starting a drag while
// another is in progress is silently ignored and the original session
// continues. Safe for concurrent use.
type Drag struct {
	mu          sync.Mutex
	store       *Store
	positioning bool
	locked      map[string]bool
	session     *Session
	logger      *slog.Logger
}

// DragOption configures the controller.
type DragOption func(*Drag)

// WithDragLogger configures a logger for the controller.
func WithDragLogger(logger *slog.Logger) DragOption {
	return func(d *Drag) {
		d.logger = logger
	}
}

// NewDrag creates a controller committing into the given store.
func NewDrag(store *Store, opts ...DragOption) *Drag {
	d := &Drag{
		store:  store,
		locked: make(map[string]bool),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetPositioning toggles positioning mode. Leaving the mode cancels any
// in-progress drag without committing it.
func (d *Drag) SetPositioning(enabled bool) {
	d.mu.Lock()
	d.positioning = enabled
	if !enabled {
		d.session = nil
	}
	d.mu.Unlock()
}

// Positioning reports whether positioning mode is on.
func (d *Drag) Positioning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.positioning
}

// SetLocked pins or unpins an object against dragging.
func (d *Drag) SetLocked(id string, locked bool) {
	d.mu.Lock()
	if locked {
		d.locked[id] = true
	} else {
		delete(d.locked, id)
	}
	d.mu.Unlock()
}

// Locked reports whether an object is pinned.
func (d *Drag) Locked(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.locked[id]
}

// StartDrag opens a session for an object at the given pointer location.
// A concurrent drag on a different object is ignored without error; the
// original session continues. Positioning mode off, a locked target, or an
// unknown object are surfaced as errors.
func (d *Drag) StartDrag(id string, pointerX, pointerY float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session != nil {
		// The controller serializes drags to one live session.
		d.logger.Debug("drag ignored, session in progress", "id", id, "active", d.session.ObjectID)
		return nil
	}
	if !d.positioning {
		return domain.ErrPositioningDisabled
	}
	if d.locked[id] {
		return fmt.Errorf("%w: %s", domain.ErrObjectLocked, id)
	}
	origin, ok := d.store.Position(id)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownObject, id)
	}

	d.session = &Session{
		ID:             uuid.NewString(),
		ObjectID:       id,
		originPointerX: pointerX,
		originPointerY: pointerY,
		origin:         origin,
		live:           origin,
	}
	return nil
}

// UpdateDrag recomputes the live preview from the pointer delta. The
// preview is grid-snapped when the store grid is enabled, but nothing is
// committed. No-op without a session.
func (d *Drag) UpdateDrag(pointerX, pointerY float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session == nil {
		return
	}
	live := d.session.origin
	live.X += pointerX - d.session.originPointerX
	live.Y += pointerY - d.session.originPointerY

	if grid := d.store.Grid(); grid.Enabled {
		live = live.Snapped(grid.Spacing)
	}
	d.session.live = live
}

// EndDrag commits the last live position and closes the session. If the
// object was deregistered mid-drag the commit is skipped: EndDrag is
// always a safe no-op.
func (d *Drag) EndDrag() error {
	d.mu.Lock()
	session := d.session
	d.session = nil
	d.mu.Unlock()

	if session == nil {
		return nil
	}
	if _, ok := d.store.Position(session.ObjectID); !ok {
		d.logger.Debug("dragged object vanished, drop commit", "id", session.ObjectID)
		return nil
	}
	return d.store.SetPosition(session.ObjectID, session.live)
}

// CancelDrag discards the session without committing. The last committed
// position stays in effect.
func (d *Drag) CancelDrag() {
	d.mu.Lock()
	d.session = nil
	d.mu.Unlock()
}

// Dragging returns the object ID of the live session, if any.
func (d *Drag) Dragging() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session == nil {
		return "", false
	}
	return d.session.ObjectID, true
}

// LivePosition returns the preview position for the object being dragged.
func (d *Drag) LivePosition(id string) (domain.Position, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session == nil || d.session.ObjectID != id {
		return domain.Position{}, false
	}
	return d.session.live, true
}
