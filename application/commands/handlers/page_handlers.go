package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pagecraft-backend/application/commands"
	"pagecraft-backend/application/ports"
	"pagecraft-backend/domain/core/valueobjects"
)

// CreatePageHandler handles page creation commands
type CreatePageHandler struct {
	canvasRepo ports.CanvasRepository
	eventBus   ports.EventBus
	logger     *zap.Logger
}

// NewCreatePageHandler creates a new create page handler
func NewCreatePageHandler(
	canvasRepo ports.CanvasRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *CreatePageHandler {
	return &CreatePageHandler{
		canvasRepo: canvasRepo,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// Handle executes the create page command
func (h *CreatePageHandler) Handle(ctx context.Context, cmd *commands.CreatePageCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	canvas, err := h.canvasRepo.GetOrCreateDefault(ctx, cmd.UserID)
	if err != nil {
		return fmt.Errorf("failed to load canvas: %w", err)
	}

	page, err := canvas.AddPage(cmd.Name, cmd.Route)
	if err != nil {
		return err
	}

	if err := h.canvasRepo.Save(ctx, canvas); err != nil {
		return fmt.Errorf("failed to save canvas: %w", err)
	}

	publishEvents(ctx, h.eventBus, canvas, h.logger)
	cmd.CreatedPageID = page.ID().String()

	h.logger.Info("Page created",
		zap.String("pageID", cmd.CreatedPageID),
		zap.String("route", cmd.Route),
		zap.String("userID", cmd.UserID),
	)

	return nil
}

// RenamePageHandler handles page rename commands
type RenamePageHandler struct {
	canvasRepo ports.CanvasRepository
	eventBus   ports.EventBus
	logger     *zap.Logger
}

// NewRenamePageHandler creates a new rename page handler
func NewRenamePageHandler(
	canvasRepo ports.CanvasRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *RenamePageHandler {
	return &RenamePageHandler{
		canvasRepo: canvasRepo,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// Handle executes the rename page command
func (h *RenamePageHandler) Handle(ctx context.Context, cmd *commands.RenamePageCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	pageID, err := valueobjects.NewPageIDFromString(cmd.PageID)
	if err != nil {
		return fmt.Errorf("invalid page ID: %w", err)
	}

	canvas, err := h.canvasRepo.GetOrCreateDefault(ctx, cmd.UserID)
	if err != nil {
		return fmt.Errorf("failed to load canvas: %w", err)
	}

	page, err := canvas.GetPage(pageID)
	if err != nil {
		return err
	}
	if err := page.Rename(cmd.Name); err != nil {
		return err
	}

	if err := h.canvasRepo.Save(ctx, canvas); err != nil {
		return fmt.Errorf("failed to save canvas: %w", err)
	}

	h.logger.Info("Page renamed",
		zap.String("pageID", cmd.PageID),
		zap.String("userID", cmd.UserID),
	)

	return nil
}

// DeletePageHandler handles page deletion commands
type DeletePageHandler struct {
	canvasRepo ports.CanvasRepository
	eventBus   ports.EventBus
	logger     *zap.Logger
}

// NewDeletePageHandler creates a new delete page handler
func NewDeletePageHandler(
	canvasRepo ports.CanvasRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *DeletePageHandler {
	return &DeletePageHandler{
		canvasRepo: canvasRepo,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// Handle executes the delete page command
func (h *DeletePageHandler) Handle(ctx context.Context, cmd *commands.DeletePageCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	pageID, err := valueobjects.NewPageIDFromString(cmd.PageID)
	if err != nil {
		return fmt.Errorf("invalid page ID: %w", err)
	}

	canvas, err := h.canvasRepo.GetOrCreateDefault(ctx, cmd.UserID)
	if err != nil {
		return fmt.Errorf("failed to load canvas: %w", err)
	}

	if err := canvas.RemovePage(pageID); err != nil {
		return err
	}

	if err := h.canvasRepo.Save(ctx, canvas); err != nil {
		return fmt.Errorf("failed to save canvas: %w", err)
	}

	publishEvents(ctx, h.eventBus, canvas, h.logger)

	h.logger.Info("Page deleted",
		zap.String("pageID", cmd.PageID),
		zap.String("userID", cmd.UserID),
	)

	return nil
}
