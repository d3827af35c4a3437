package handlers

import (
	"context"

	"go.uber.org/zap"

	"pagecraft-backend/application/ports"
	"pagecraft-backend/domain/core/aggregates"
)

// publishEvents drains uncommitted events from the canvas and its nodes and
// pushes them through the event bus. Publishing is best effort; the mutation
// has already been persisted by the time this runs.
func publishEvents(ctx context.Context, bus ports.EventBus, canvas *aggregates.Canvas, logger *zap.Logger) {
	pending := canvas.GetUncommittedEvents()
	for _, node := range canvas.Nodes() {
		pending = append(pending, node.GetUncommittedEvents()...)
	}
	if len(pending) == 0 {
		return
	}

	if err := bus.PublishBatch(ctx, pending); err != nil {
		logger.Warn("Failed to publish events",
			zap.Int("count", len(pending)),
			zap.Error(err),
		)
	}

	canvas.MarkEventsAsCommitted()
	for _, node := range canvas.Nodes() {
		node.MarkEventsAsCommitted()
	}
}
