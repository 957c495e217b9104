// Package pubsub carries domain events from the write path to in-process
// projections and, when configured, fans them out over redis so other
// instances can refresh their snapshots.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
	"github.com/angeldelarosa/garagepos-backend/pkg/logger"
)

// Event is the envelope published for every domain change.
type Event struct {
	Type       enums.EventType `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEvent marshals the payload and stamps the envelope.
func NewEvent(eventType enums.EventType, payload any) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal event payload: %w", err)
	}
	return Event{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    body,
	}, nil
}

// Handler consumes one event. Returned errors are aggregated, not fatal.
type Handler func(ctx context.Context, event Event) error

// Publisher sends serialized events to an external channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Bus dispatches events to local handlers and an optional external publisher.
type Bus struct {
	mu       sync.RWMutex
	handlers map[enums.EventType][]Handler

	external Publisher
	channel  string
	logg     *logger.Logger
}

// Option tweaks bus construction.
type Option func(*Bus)

// WithExternal mirrors every event onto the named external channel.
func WithExternal(pub Publisher, channel string) Option {
	return func(b *Bus) {
		b.external = pub
		b.channel = channel
	}
}

// New builds an event bus.
func New(logg *logger.Logger, opts ...Option) *Bus {
	b := &Bus{
		handlers: make(map[enums.EventType][]Handler),
		logg:     logg,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a handler for the event type. Safe for concurrent use.
func (b *Bus) Subscribe(eventType enums.EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish delivers the event to every local handler, then to the external
// publisher. Handler failures do not stop delivery; all errors come back
// aggregated so the caller can log them without losing the write.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event.Type]...)
	b.mu.RUnlock()

	var errs error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("handler for %s: %w", event.Type, err))
		}
	}

	if b.external != nil {
		body, err := json.Marshal(event)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("marshal event: %w", err))
		} else if err := b.external.Publish(ctx, b.channel, body); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("external publish: %w", err))
		}
	}

	if errs != nil && b.logg != nil {
		b.logg.Warn(ctx, fmt.Sprintf("event dispatch incomplete: %v", errs))
	}
	return errs
}

// PublishValue builds the envelope from a payload value and publishes it.
func (b *Bus) PublishValue(ctx context.Context, eventType enums.EventType, payload any) error {
	event, err := NewEvent(eventType, payload)
	if err != nil {
		return err
	}
	return b.Publish(ctx, event)
}
