// Package layout manages freeform object positioning: a committed position
// store with linear undo/redo history, grid snapping, and a pointer-driven
// drag controller layered on top.
package layout

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/oliver-os/canvas/internal/logging"
	"github.com/oliver-os/canvas/pkg/domain"
)

// DefaultGridSpacing is the snap grid cell size when none is configured.
const DefaultGridSpacing = 20

// Grid is the store-level snap configuration. A per-update SnapConfig on
// the incoming position takes precedence over it.
type Grid struct {
	Enabled bool
	Spacing float64
}

// Notifier receives committed position edits, outside the store lock.
type Notifier func(*domain.PositionEvent)

// Store owns every committed position plus the undo/redo history.
// Positions mutate only through SetPosition (and the snapshot-restoring
// Undo/Redo/ResetAll), which keeps the history consistent by construction.
// Safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	positions map[string]domain.Position
	original  map[string]domain.Position
	history   []map[string]domain.Position
	cursor    int
	grid      Grid
	notify    Notifier
	logger    *slog.Logger
}

// StoreOption configures the Store.
type StoreOption func(*Store)

// WithGrid sets the initial grid configuration.
func WithGrid(g Grid) StoreOption {
	return func(s *Store) {
		if g.Spacing <= 0 {
			g.Spacing = DefaultGridSpacing
		}
		s.grid = g
	}
}

// WithStoreLogger configures a logger for the store.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithStoreNotifier registers the committed-edit callback.
func WithStoreNotifier(n Notifier) StoreOption {
	return func(s *Store) {
		s.notify = n
	}
}

// NewStore creates an empty position store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		positions: make(map[string]domain.Position),
		original:  make(map[string]domain.Position),
		history:   []map[string]domain.Position{{}},
		grid:      Grid{Spacing: DefaultGridSpacing},
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds an object at its registry-declared position. Registration
// is not an edit: it does not create an undo step.
func (s *Store) Register(id string, pos domain.Position) error {
	if err := pos.Validate(); err != nil {
		return fmt.Errorf("register %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.positions[id]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateObject, id)
	}
	s.positions[id] = pos
	s.original[id] = pos
	// Keep the invariant: history[cursor] mirrors the visible set.
	s.history[s.cursor][id] = pos
	return nil
}

// Deregister removes an object. Stale entries in older history snapshots
// are ignored on restore.
func (s *Store) Deregister(id string) {
	s.mu.Lock()
	delete(s.positions, id)
	delete(s.original, id)
	delete(s.history[s.cursor], id)
	s.mu.Unlock()
}

// Position returns the committed position of an object.
func (s *Store) Position(id string) (domain.Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos, ok := s.positions[id]
	return pos, ok
}

// All returns a copy of every committed position.
func (s *Store) All() map[string]domain.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePositions(s.positions)
}

// SetPosition validates, snaps, and commits a position, pushing a full
// snapshot onto the history stack. Any redo entries beyond the cursor are
// discarded: editing after an undo abandons the redone branch.
func (s *Store) SetPosition(id string, pos domain.Position) error {
	if err := pos.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if _, ok := s.positions[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrUnknownObject, id)
	}

	snapped := s.snapLocked(pos)
	s.positions[id] = snapped

	s.history = append(s.history[:s.cursor+1], clonePositions(s.positions))
	s.cursor = len(s.history) - 1
	s.mu.Unlock()

	s.emit(id, snapped)
	return nil
}

// Undo steps the cursor back one snapshot and restores all positions from
// it. It reports whether anything changed; at the bottom of the stack it
// is a no-op.
func (s *Store) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor == 0 {
		return false
	}
	s.cursor--
	s.restoreLocked(s.history[s.cursor])
	return true
}

// Redo steps the cursor forward one snapshot. No-op at the top.
func (s *Store) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor >= len(s.history)-1 {
		return false
	}
	s.cursor++
	s.restoreLocked(s.history[s.cursor])
	return true
}

// ApplyPreset commits each matching entry through SetPosition, one history
// entry per affected object (a preset is not a single undo step). Unknown
// IDs are skipped. Returns the number of objects repositioned.
func (s *Store) ApplyPreset(preset domain.Preset) (int, error) {
	// Deterministic application order.
	ids := make([]string, 0, len(preset))
	for id := range preset {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	applied := 0
	for _, id := range ids {
		s.mu.Lock()
		_, known := s.positions[id]
		s.mu.Unlock()
		if !known {
			s.logger.Debug("preset references unknown object", "id", id)
			continue
		}
		if err := s.SetPosition(id, preset[id]); err != nil {
			return applied, fmt.Errorf("preset entry %s: %w", id, err)
		}
		applied++
	}
	return applied, nil
}

// ResetAll restores every object to its registry-declared position and
// clears the history.
func (s *Store) ResetAll() {
	s.mu.Lock()
	s.positions = clonePositions(s.original)
	s.history = []map[string]domain.Position{clonePositions(s.positions)}
	s.cursor = 0
	s.mu.Unlock()
}

// SetGridEnabled toggles store-level snapping for subsequent commits.
func (s *Store) SetGridEnabled(enabled bool) {
	s.mu.Lock()
	s.grid.Enabled = enabled
	s.mu.Unlock()
}

// Grid returns the current grid configuration.
func (s *Store) Grid() Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid
}

// HistoryDepth returns (cursor, length) for diagnostics.
func (s *Store) HistoryDepth() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor, len(s.history)
}

// snapLocked applies the effective snap rule: the update's own SnapConfig
// wins, otherwise the store grid applies. Caller holds s.mu.
func (s *Store) snapLocked(pos domain.Position) domain.Position {
	if pos.Snap != nil {
		if !pos.Snap.Enabled {
			return pos
		}
		spacing := pos.Snap.Spacing
		if spacing <= 0 {
			spacing = s.grid.Spacing
		}
		return pos.Snapped(spacing)
	}
	if s.grid.Enabled {
		return pos.Snapped(s.grid.Spacing)
	}
	return pos
}

// restoreLocked replaces current positions from a snapshot, skipping IDs
// that are no longer registered. Caller holds s.mu.
func (s *Store) restoreLocked(snapshot map[string]domain.Position) {
	for id := range s.positions {
		if pos, ok := snapshot[id]; ok {
			s.positions[id] = pos
		}
	}
}

func (s *Store) emit(id string, pos domain.Position) {
	if s.notify != nil {
		s.notify(&domain.PositionEvent{
			Timestamp: time.Now(),
			ObjectID:  id,
			Position:  pos,
		})
	}
}

func clonePositions(in map[string]domain.Position) map[string]domain.Position {
	out := make(map[string]domain.Position, len(in))
	for id, pos := range in {
		out[id] = pos
	}
	return out
}
