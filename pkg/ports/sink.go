package ports

import (
	"context"

	"github.com/oliver-os/canvas/pkg/domain"
)

// EventSink receives engine events for external telemetry. Publishing is
// fire-and-forget from the engine's point of view: a failing sink is
// logged, never propagated to the operation that produced the event.
type EventSink interface {
	// Publish delivers one event. Implementations should be fast or
	// buffer internally; the engine publishes from a single dispatch
	// goroutine.
	Publish(ctx context.Context, event domain.Event) error

	// Close releases sink resources.
	Close() error
}
