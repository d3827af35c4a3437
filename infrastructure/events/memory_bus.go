// Package events provides in-process event buses: one for domain events
// emitted by aggregate mutations, one for editor-surface notifications
// such as toolbar toggles.
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"pagecraft-backend/application/ports"
	"pagecraft-backend/domain/events"
)

// Handler consumes a published domain event
type Handler func(ctx context.Context, event events.DomainEvent)

// MemoryBus dispatches domain events to in-process subscribers keyed by
// event type. Publishing never fails and never blocks the mutation path;
// handlers run synchronously on the publisher's goroutine.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

// NewMemoryBus creates an empty in-process domain event bus
func NewMemoryBus(logger *zap.Logger) *MemoryBus {
	return &MemoryBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for an event type
func (b *MemoryBus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish dispatches one event to its subscribers
func (b *MemoryBus) Publish(ctx context.Context, event events.DomainEvent) error {
	b.mu.RLock()
	subscribers := b.handlers[event.GetEventType()]
	b.mu.RUnlock()

	for _, handler := range subscribers {
		handler(ctx, event)
	}

	b.logger.Debug("Event published",
		zap.String("type", event.GetEventType()),
		zap.Int("subscribers", len(subscribers)),
	)
	return nil
}

// PublishBatch dispatches a batch of events in order
func (b *MemoryBus) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	for _, event := range batch {
		if err := b.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// EditorBus is a typed publish/subscribe channel for editor-surface state
// (grid visibility, panel toggles). Subscribers that fall behind drop
// events rather than stalling the publisher.
type EditorBus struct {
	mu   sync.RWMutex
	subs map[string][]chan ports.EditorEvent
}

// NewEditorBus creates an empty editor event bus
func NewEditorBus() *EditorBus {
	return &EditorBus{
		subs: make(map[string][]chan ports.EditorEvent),
	}
}

// PublishEditor fans an editor event out to the topic's subscribers
func (b *EditorBus) PublishEditor(event ports.EditorEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[event.Topic] {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscribeEditor returns a channel of events for the topic and an
// unsubscribe function
func (b *EditorBus) SubscribeEditor(topic string) (<-chan ports.EditorEvent, func()) {
	ch := make(chan ports.EditorEvent, 16)

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], ch)
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		channels := b.subs[topic]
		for i, candidate := range channels {
			if candidate == ch {
				b.subs[topic] = append(channels[:i], channels[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, unsubscribe
}
