package ports

import (
	"context"

	"pagecraft-backend/domain/events"
)

// EventBus publishes domain events after a mutation commits
type EventBus interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, batch []events.DomainEvent) error
}

// EditorEvent is a typed editor-surface notification (grid toggled, panel
// opened, node selected). Passed over an explicit channel instead of
// ambient global state.
type EditorEvent struct {
	Topic   string
	Payload map[string]interface{}
}

// EditorBus carries editor-surface events between toolbar and canvas
type EditorBus interface {
	PublishEditor(event EditorEvent)
	SubscribeEditor(topic string) (<-chan EditorEvent, func())
}
