package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pagecraft-backend/application/ports"
	"pagecraft-backend/application/queries"
	"pagecraft-backend/domain/core/entities"
	"pagecraft-backend/domain/core/valueobjects"
	"pagecraft-backend/domain/render"
)

// CanvasQueryHandler serves all read-side canvas queries. Queries share a
// repository and never mutate the aggregate, so one handler covers them.
type CanvasQueryHandler struct {
	canvasRepo ports.CanvasRepository
	logger     *zap.Logger
}

// NewCanvasQueryHandler creates a new canvas query handler
func NewCanvasQueryHandler(canvasRepo ports.CanvasRepository, logger *zap.Logger) *CanvasQueryHandler {
	return &CanvasQueryHandler{
		canvasRepo: canvasRepo,
		logger:     logger,
	}
}

// HandleGetCanvas executes the get canvas query
func (h *CanvasQueryHandler) HandleGetCanvas(ctx context.Context, query queries.GetCanvasQuery) (*queries.GetCanvasResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	canvas, err := h.canvasRepo.GetOrCreateDefault(ctx, query.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load canvas: %w", err)
	}

	result := &queries.GetCanvasResult{
		CanvasID: canvas.ID().String(),
		Name:     canvas.Name(),
		Nodes:    make([]queries.NodeView, 0, canvas.NodeCount()),
		Pages:    make([]queries.PageView, 0, len(canvas.Pages())),
		Version:  canvas.Version(),
	}
	for _, node := range canvas.Nodes() {
		result.Nodes = append(result.Nodes, toNodeView(node))
	}
	for _, page := range canvas.Pages() {
		result.Pages = append(result.Pages, toPageView(page))
	}

	return result, nil
}

// HandleVisibleNodes executes the visible nodes query, applying the
// default-page visibility rule for nodes without an explicit owner page
func (h *CanvasQueryHandler) HandleVisibleNodes(ctx context.Context, query queries.VisibleNodesQuery) (*queries.VisibleNodesResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	canvas, err := h.canvasRepo.GetOrCreateDefault(ctx, query.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load canvas: %w", err)
	}

	pageID, err := h.resolvePage(canvas.DefaultPage().ID(), query.PageID)
	if err != nil {
		return nil, err
	}

	visible := canvas.VisibleNodes(pageID)
	roots := canvas.ListRoots(pageID)

	result := &queries.VisibleNodesResult{
		PageID: pageID.String(),
		Nodes:  make([]queries.NodeView, 0, len(visible)),
		Roots:  make([]string, 0, len(roots)),
	}
	for _, node := range visible {
		result.Nodes = append(result.Nodes, toNodeView(node))
	}
	for _, node := range roots {
		result.Roots = append(result.Roots, node.ID().String())
	}

	return result, nil
}

// HandleListChildren executes the list children query
func (h *CanvasQueryHandler) HandleListChildren(ctx context.Context, query queries.ListChildrenQuery) (*queries.ListChildrenResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	nodeID, err := valueobjects.NewNodeIDFromString(query.NodeID)
	if err != nil {
		return nil, fmt.Errorf("invalid node ID: %w", err)
	}

	canvas, err := h.canvasRepo.GetOrCreateDefault(ctx, query.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load canvas: %w", err)
	}

	children, err := canvas.ListChildren(nodeID)
	if err != nil {
		return nil, err
	}

	result := &queries.ListChildrenResult{
		NodeID:   query.NodeID,
		Children: make([]queries.NodeView, 0, len(children)),
	}
	for _, child := range children {
		result.Children = append(result.Children, toNodeView(child))
	}

	return result, nil
}

// HandleRenderTree executes the render tree query
func (h *CanvasQueryHandler) HandleRenderTree(ctx context.Context, query queries.RenderTreeQuery) (*queries.RenderTreeResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	canvas, err := h.canvasRepo.GetOrCreateDefault(ctx, query.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load canvas: %w", err)
	}

	pageID, err := h.resolvePage(canvas.DefaultPage().ID(), query.PageID)
	if err != nil {
		return nil, err
	}

	return &queries.RenderTreeResult{
		PageID: pageID.String(),
		Tree:   render.Walk(canvas, pageID),
	}, nil
}

func (h *CanvasQueryHandler) resolvePage(defaultID valueobjects.PageID, raw string) (valueobjects.PageID, error) {
	if raw == "" {
		return defaultID, nil
	}
	pageID, err := valueobjects.NewPageIDFromString(raw)
	if err != nil {
		return valueobjects.PageID{}, fmt.Errorf("invalid page ID: %w", err)
	}
	return pageID, nil
}

func toNodeView(node *entities.Node) queries.NodeView {
	view := queries.NodeView{
		ID:         node.ID().String(),
		Kind:       node.Kind(),
		Attributes: node.Attributes(),
		Version:    node.Version(),
		CreatedAt:  node.CreatedAt().Format(time.RFC3339),
		UpdatedAt:  node.UpdatedAt().Format(time.RFC3339),
	}
	if !node.ParentID().IsZero() {
		view.ParentID = node.ParentID().String()
	}
	if !node.OwnerPageID().IsZero() {
		view.OwnerPageID = node.OwnerPageID().String()
	}
	return view
}

func toPageView(page *entities.Page) queries.PageView {
	ids := page.NodeIDs()
	view := queries.PageView{
		ID:        page.ID().String(),
		Name:      page.Name(),
		Route:     page.Route(),
		NodeIDs:   make([]string, 0, len(ids)),
		CreatedAt: page.CreatedAt().Format(time.RFC3339),
	}
	for _, id := range ids {
		view.NodeIDs = append(view.NodeIDs, id.String())
	}
	return view
}
