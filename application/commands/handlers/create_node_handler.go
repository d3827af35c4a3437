package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pagecraft-backend/application/commands"
	"pagecraft-backend/application/ports"
	"pagecraft-backend/domain/catalog"
	"pagecraft-backend/domain/core/entities"
	"pagecraft-backend/domain/core/valueobjects"
)

// CreateNodeHandler handles node creation commands
type CreateNodeHandler struct {
	canvasRepo ports.CanvasRepository
	eventBus   ports.EventBus
	logger     *zap.Logger
}

// NewCreateNodeHandler creates a new create node handler
func NewCreateNodeHandler(
	canvasRepo ports.CanvasRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *CreateNodeHandler {
	return &CreateNodeHandler{
		canvasRepo: canvasRepo,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// Handle executes the create node command
func (h *CreateNodeHandler) Handle(ctx context.Context, cmd *commands.CreateNodeCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	canvas, err := h.canvasRepo.GetOrCreateDefault(ctx, cmd.UserID)
	if err != nil {
		return fmt.Errorf("failed to load canvas: %w", err)
	}

	// Palette drops carry only a kind; fill in catalog defaults so the
	// node renders with something visible.
	attrs := cmd.Attributes
	if len(attrs) == 0 {
		if entry, err := catalog.Lookup(cmd.Kind); err == nil {
			attrs = entry.DefaultAttributes.Clone()
		}
	}

	node, err := entities.NewNodeWithConfig(cmd.Kind, attrs, canvas.Config())
	if err != nil {
		return fmt.Errorf("invalid node: %w", err)
	}

	if cmd.OwnerPageID != "" {
		pageID, err := valueobjects.NewPageIDFromString(cmd.OwnerPageID)
		if err != nil {
			return fmt.Errorf("invalid page ID: %w", err)
		}
		node.AssignToPage(pageID)
	}

	parentID := valueobjects.NodeID{}
	if cmd.ParentID != "" {
		parentID, err = valueobjects.NewNodeIDFromString(cmd.ParentID)
		if err != nil {
			return fmt.Errorf("invalid parent ID: %w", err)
		}
	}

	if err := canvas.Insert(node, parentID); err != nil {
		return err
	}

	if err := h.canvasRepo.Save(ctx, canvas); err != nil {
		return fmt.Errorf("failed to save canvas: %w", err)
	}

	publishEvents(ctx, h.eventBus, canvas, h.logger)
	cmd.CreatedNodeID = node.ID().String()

	h.logger.Info("Node created",
		zap.String("nodeID", cmd.CreatedNodeID),
		zap.String("kind", node.Kind()),
		zap.String("userID", cmd.UserID),
	)

	return nil
}
