// Package http exposes the canvas engine over HTTP: a JSON command and
// query surface plus a server-sent event stream of engine events.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/oliver-os/canvas/internal/logging"
	"github.com/oliver-os/canvas/pkg/domain"
)

// Engine defines the facade surface the HTTP adapter drives.
type Engine interface {
	Snapshot() domain.CanvasSnapshot
	Objects() []domain.ObjectConfig

	Activate(id string) error
	Deactivate(id string) error
	Toggle(id string) (bool, error)

	SetPosition(id string, pos domain.Position) error
	Undo() bool
	Redo() bool
	ResetAll()
	ApplyPreset(ctx context.Context, name string) (int, error)
	Presets(ctx context.Context) ([]string, error)

	Click(x, y float64) (string, domain.ClickZone, error)
	HandleAction(action domain.Action) error
	SetLocked(id string, locked bool)

	LoadAssets(ctx context.Context) (int, error)
	Progress() int
	FailedAssets() []string
	RetryAsset(ctx context.Context, path string) error

	Events() <-chan domain.Event
}

// Server routes HTTP requests onto the engine and fans engine events out
// to SSE subscribers.
type Server struct {
	engine  Engine
	streams *streamManager
	logger  *slog.Logger
}

// NewHandler creates the HTTP handler for the engine. It starts a pump
// goroutine that drains the engine's event channel into the SSE
// subscribers; the pump stops when the engine closes the channel.
func NewHandler(engine Engine, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine:  engine,
		streams: newStreamManager(logger),
		logger:  logger,
	}
	go s.pump()

	r := chi.NewRouter()
	r.Get("/health", s.getHealth)
	r.Get("/snapshot", s.getSnapshot)
	r.Get("/objects", s.getObjects)
	r.Get("/events", s.subscribeEvents)

	r.Post("/objects/{id}/activate", s.postActivate)
	r.Post("/objects/{id}/deactivate", s.postDeactivate)
	r.Post("/objects/{id}/toggle", s.postToggle)
	r.Post("/objects/{id}/position", s.postPosition)
	r.Post("/objects/{id}/lock", s.postLock)

	r.Post("/click", s.postClick)
	r.Post("/action", s.postAction)
	r.Post("/undo", s.postUndo)
	r.Post("/redo", s.postRedo)
	r.Post("/reset", s.postReset)

	r.Get("/presets", s.getPresets)
	r.Post("/presets/{name}/apply", s.postApplyPreset)

	r.Get("/assets/progress", s.getProgress)
	r.Post("/assets/load", s.postLoadAssets)
	r.Post("/assets/retry", s.postRetryAsset)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// pump drains the engine event channel into the broadcaster.
func (s *Server) pump() {
	for ev := range s.engine.Events() {
		if payload, err := json.Marshal(ev); err == nil {
			s.streams.broadcast(string(payload))
		}
	}
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.engine.Snapshot())
}

func (s *Server) getObjects(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.engine.Objects())
}

func (s *Server) postActivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.engine.Activate(id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]any{"id": id, "active": true})
}

func (s *Server) postDeactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.engine.Deactivate(id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]any{"id": id, "active": false})
}

func (s *Server) postToggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	active, err := s.engine.Toggle(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]any{"id": id, "active": active})
}

func (s *Server) postPosition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var pos domain.Position
	if err := json.NewDecoder(r.Body).Decode(&pos); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("position: invalid request body", "err", err)
		return
	}
	if err := s.engine.SetPosition(id, pos); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]any{"id": id, "position": pos})
}

func (s *Server) postLock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		Locked bool `json:"locked"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	s.engine.SetLocked(id, body.Locked)
	s.writeJSON(w, map[string]any{"id": id, "locked": body.Locked})
}

func (s *Server) postClick(w http.ResponseWriter, r *http.Request) {
	var body struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	id, zone, err := s.engine.Click(body.X, body.Y)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]any{"id": id, "zone": zone})
}

func (s *Server) postAction(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Action domain.Action `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.engine.HandleAction(body.Action); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]any{"action": body.Action})
}

func (s *Server) postUndo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]bool{"moved": s.engine.Undo()})
}

func (s *Server) postRedo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]bool{"moved": s.engine.Redo()})
}

func (s *Server) postReset(w http.ResponseWriter, r *http.Request) {
	s.engine.ResetAll()
	s.writeJSON(w, map[string]string{"status": "reset"})
}

func (s *Server) getPresets(w http.ResponseWriter, r *http.Request) {
	names, err := s.engine.Presets(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, names)
}

func (s *Server) postApplyPreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	applied, err := s.engine.ApplyPreset(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]any{"preset": name, "applied": applied})
}

func (s *Server) getProgress(w http.ResponseWriter, r *http.Request) {
	failed := s.engine.FailedAssets()
	if failed == nil {
		failed = []string{}
	}
	s.writeJSON(w, map[string]any{
		"progress": s.engine.Progress(),
		"failed":   failed,
	})
}

func (s *Server) postLoadAssets(w http.ResponseWriter, r *http.Request) {
	failed, err := s.engine.LoadAssets(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]any{"failed": failed, "progress": s.engine.Progress()})
}

func (s *Server) postRetryAsset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Path == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.engine.RetryAsset(r.Context(), body.Path); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]string{"path": body.Path, "status": "loaded"})
}

// subscribeEvents handles the GET /events request (SSE).
func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("subscribeEvents: streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.streams.subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("sse client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// writeError maps domain errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUnknownObject),
		errors.Is(err, domain.ErrUnknownPreset),
		errors.Is(err, domain.ErrAssetNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidPosition),
		errors.Is(err, domain.ErrInvalidConfig):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrObjectNotInteractive),
		errors.Is(err, domain.ErrPositioningDisabled),
		errors.Is(err, domain.ErrObjectLocked),
		errors.Is(err, domain.ErrDuplicateObject):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrAssetLoadFailed):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrEngineClosed):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	http.Error(w, err.Error(), status)
}

// streamManager fans one event feed out to the active SSE connections.
type streamManager struct {
	mu          sync.RWMutex
	subscribers map[chan string]struct{}
	logger      *slog.Logger
}

func newStreamManager(logger *slog.Logger) *streamManager {
	return &streamManager{
		subscribers: make(map[chan string]struct{}),
		logger:      logger,
	}
}

func (sm *streamManager) subscribe() (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 16)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

func (sm *streamManager) broadcast(msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			// Slow client; drop rather than block the pump.
			sm.logger.Warn("sse client buffer full, dropping event")
		}
	}
}
