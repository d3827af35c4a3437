package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pagecraft-backend/application/commands"
	"pagecraft-backend/application/ports"
	"pagecraft-backend/domain/core/valueobjects"
)

// DuplicateNodeHandler handles subtree duplication commands
type DuplicateNodeHandler struct {
	canvasRepo ports.CanvasRepository
	eventBus   ports.EventBus
	logger     *zap.Logger
}

// NewDuplicateNodeHandler creates a new duplicate node handler
func NewDuplicateNodeHandler(
	canvasRepo ports.CanvasRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *DuplicateNodeHandler {
	return &DuplicateNodeHandler{
		canvasRepo: canvasRepo,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// Handle executes the duplicate node command
func (h *DuplicateNodeHandler) Handle(ctx context.Context, cmd *commands.DuplicateNodeCommand) error {
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

	cloneID, err := canvas.DuplicateSubtree(nodeID)
	if err != nil {
		return err
	}

	if err := h.canvasRepo.Save(ctx, canvas); err != nil {
		return fmt.Errorf("failed to save canvas: %w", err)
	}

	publishEvents(ctx, h.eventBus, canvas, h.logger)
	cmd.CreatedNodeID = cloneID.String()

	h.logger.Info("Subtree duplicated",
		zap.String("sourceID", cmd.NodeID),
		zap.String("cloneID", cmd.CreatedNodeID),
		zap.String("userID", cmd.UserID),
	)

	return nil
}
