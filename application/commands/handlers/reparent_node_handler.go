package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pagecraft-backend/application/commands"
	"pagecraft-backend/application/ports"
	"pagecraft-backend/domain/core/valueobjects"
)

// ReparentNodeHandler handles node reparenting commands
type ReparentNodeHandler struct {
	canvasRepo ports.CanvasRepository
	eventBus   ports.EventBus
	logger     *zap.Logger
}

// NewReparentNodeHandler creates a new reparent node handler
func NewReparentNodeHandler(
	canvasRepo ports.CanvasRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *ReparentNodeHandler {
	return &ReparentNodeHandler{
		canvasRepo: canvasRepo,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// Handle executes the reparent node command
func (h *ReparentNodeHandler) Handle(ctx context.Context, cmd *commands.ReparentNodeCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	nodeID, err := valueobjects.NewNodeIDFromString(cmd.NodeID)
	if err != nil {
		return fmt.Errorf("invalid node ID: %w", err)
	}

	newParentID := valueobjects.NodeID{}
	if cmd.NewParentID != "" {
		newParentID, err = valueobjects.NewNodeIDFromString(cmd.NewParentID)
		if err != nil {
			return fmt.Errorf("invalid parent ID: %w", err)
		}
	}

	canvas, err := h.canvasRepo.GetOrCreateDefault(ctx, cmd.UserID)
	if err != nil {
		return fmt.Errorf("failed to load canvas: %w", err)
	}

	if err := canvas.Reparent(nodeID, newParentID); err != nil {
		return err
	}

	if err := h.canvasRepo.Save(ctx, canvas); err != nil {
		return fmt.Errorf("failed to save canvas: %w", err)
	}

	publishEvents(ctx, h.eventBus, canvas, h.logger)

	h.logger.Info("Node reparented",
		zap.String("nodeID", cmd.NodeID),
		zap.String("newParentID", cmd.NewParentID),
		zap.String("userID", cmd.UserID),
	)

	return nil
}
