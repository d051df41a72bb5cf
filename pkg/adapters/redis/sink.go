// Package redis implements ports.EventSink over Redis: events are
// published to a pub/sub channel for live consumers and mirrored into a
// capped recent-events list for late joiners. The engine reads nothing
// back; this is a telemetry surface only.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"github.com/oliver-os/canvas/pkg/domain"
)

// DefaultChannel is the pub/sub channel events publish to.
const DefaultChannel = "canvas:events"

// DefaultHistory caps the recent-events list length.
const DefaultHistory = 100

// Sink publishes engine events to Redis.
type Sink struct {
	client  *backend.Client
	channel string
	history int64
}

// SinkOption configures the Sink.
type SinkOption func(*Sink)

// WithChannel overrides the pub/sub channel name. The recent-events list
// lives at "<channel>:recent".
func WithChannel(name string) SinkOption {
	return func(s *Sink) {
		if name != "" {
			s.channel = name
		}
	}
}

// WithHistory overrides how many recent events are kept.
func WithHistory(n int) SinkOption {
	return func(s *Sink) {
		if n > 0 {
			s.history = int64(n)
		}
	}
}

// NewSink creates a sink over an existing Redis client. The sink takes
// ownership of the client: Close closes it.
func NewSink(client *backend.Client, opts ...SinkOption) *Sink {
	s := &Sink{
		client:  client,
		channel: DefaultChannel,
		history: DefaultHistory,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish delivers one event: a pub/sub publish plus a capped list push.
func (s *Sink) Publish(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Publish(ctx, s.channel, payload)
	pipe.LPush(ctx, s.recentKey(), payload)
	pipe.LTrim(ctx, s.recentKey(), 0, s.history-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Recent returns up to n recent events, newest first.
func (s *Sink) Recent(ctx context.Context, n int64) ([]domain.Event, error) {
	raw, err := s.client.LRange(ctx, s.recentKey(), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read recent events: %w", err)
	}
	events := make([]domain.Event, 0, len(raw))
	for _, item := range raw {
		var ev domain.Event
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			return nil, fmt.Errorf("failed to decode recent event: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// Close releases the underlying client.
func (s *Sink) Close() error {
	return s.client.Close()
}

func (s *Sink) recentKey() string {
	return s.channel + ":recent"
}
