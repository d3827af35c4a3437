package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pagecraft-backend/application/commands"
	"pagecraft-backend/application/ports"
	"pagecraft-backend/domain/core/valueobjects"
)

// DeleteNodeHandler handles node deletion commands
type DeleteNodeHandler struct {
	canvasRepo ports.CanvasRepository
	eventBus   ports.EventBus
	logger     *zap.Logger
}

// NewDeleteNodeHandler creates a new delete node handler
func NewDeleteNodeHandler(
	canvasRepo ports.CanvasRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *DeleteNodeHandler {
	return &DeleteNodeHandler{
		canvasRepo: canvasRepo,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// Handle executes the delete node command, cascading to descendants
func (h *DeleteNodeHandler) Handle(ctx context.Context, cmd *commands.DeleteNodeCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	nodeID, err := valueobjects.NewNodeIDFromString(cmd.NodeID)
	if err != nil {
		return fmt.Errorf("invalid node ID: %w", err)
	}

	canvas, err := h.canvasRepo.GetOrCreateDefault(ctx, cmd.UserID)
	if err != nil {
		return fmt.Errorf("failed to load canvas: %w", err)
	}

	before := canvas.NodeCount()
	if err := canvas.Delete(nodeID); err != nil {
		return err
	}

	if err := h.canvasRepo.Save(ctx, canvas); err != nil {
		return fmt.Errorf("failed to save canvas: %w", err)
	}

	publishEvents(ctx, h.eventBus, canvas, h.logger)

	h.logger.Info("Node deleted",
		zap.String("nodeID", cmd.NodeID),
		zap.Int("cascaded", before-canvas.NodeCount()-1),
		zap.String("userID", cmd.UserID),
	)

	return nil
}
