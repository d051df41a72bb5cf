package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventActivated   EventType = "activated"
	EventDeactivated EventType = "deactivated"
	EventAssetLoaded EventType = "asset_loaded"
	EventAssetFailed EventType = "asset_failed"
	EventPositionSet EventType = "position_set"
	EventDragStart   EventType = "drag_start"
	EventDragEnd     EventType = "drag_end"
)

// Event is a fire-and-forget notification for the rendering layer and
// external telemetry. It is never an acknowledgement.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`

	// ObjectID is the object the event originates from, or the asset path
	// for asset events.
	ObjectID string `json:"object_id"`

	// AffectedIDs lists cascade targets touched by this transition.
	AffectedIDs []string `json:"affected_ids,omitempty"`
}

// ActivationEvent carries activation state transitions to hooks.
type ActivationEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	ObjectID    string    `json:"object_id"`
	AffectedIDs []string  `json:"affected_ids,omitempty"`
	Active      bool      `json:"active"`

	// Cascaded is true when this transition was fired by a cascade timer
	// rather than a direct call.
	Cascaded bool `json:"cascaded,omitempty"`
}

// AssetEvent carries asset load outcomes to hooks.
type AssetEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
	IsError   bool      `json:"is_error,omitempty"`
	Err       string    `json:"err,omitempty"`
}

// PositionEvent carries committed position edits to hooks.
type PositionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	ObjectID  string    `json:"object_id"`
	Position  Position  `json:"position"`
}

// LifecycleHooks defines callbacks for engine observability.
// All callbacks are optional and invoked synchronously.
type LifecycleHooks struct {
	OnActivate    func(context.Context, *ActivationEvent)
	OnDeactivate  func(context.Context, *ActivationEvent)
	OnAssetLoaded func(context.Context, *AssetEvent)
	OnAssetFailed func(context.Context, *AssetEvent)
	OnPositionSet func(context.Context, *PositionEvent)
}
