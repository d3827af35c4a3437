package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pagecraft-backend/application/commands"
	"pagecraft-backend/application/commands/bus"
	"pagecraft-backend/application/queries"
	querybus "pagecraft-backend/application/queries/bus"
	"pagecraft-backend/domain/core/valueobjects"
	"pagecraft-backend/pkg/auth"
	"pagecraft-backend/pkg/common"
	"pagecraft-backend/pkg/utils"
)

// maxBodyBytes caps request body size for node endpoints
const maxBodyBytes = 1 << 20

// NodeHandler handles node-related HTTP requests
type NodeHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
) *NodeHandler {
	return &NodeHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// CreateNodeRequest represents the request body for creating a node
type CreateNodeRequest struct {
	Kind        string                  `json:"kind" validate:"required,min=1,max=50"`
	Attributes  valueobjects.Attributes `json:"attributes,omitempty"`
	ParentID    string                  `json:"parentId,omitempty" validate:"omitempty,uuid"`
	OwnerPageID string                  `json:"ownerPageId,omitempty" validate:"omitempty,uuid"`
}

// UpdateNodeRequest represents the request body for updating a node
type UpdateNodeRequest struct {
	Delta valueobjects.Attributes `json:"delta,omitempty"`
	Kind  string                  `json:"kind,omitempty" validate:"omitempty,min=1,max=50"`
}

// ReparentNodeRequest represents the request body for moving a node
type ReparentNodeRequest struct {
	NewParentID string `json:"newParentId,omitempty" validate:"omitempty,uuid"`
}

// CreateNode handles POST /nodes
func (h *NodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	cmd := &commands.CreateNodeCommand{
		UserID:      userCtx.UserID,
		Kind:        req.Kind,
		Attributes:  req.Attributes,
		ParentID:    req.ParentID,
		OwnerPageID: req.OwnerPageID,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]string{
		"id":   cmd.CreatedNodeID,
		"kind": req.Kind,
	})
}

// ListChildren handles GET /nodes/{nodeID}/children
func (h *NodeHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListChildrenQuery{
		UserID: userCtx.UserID,
		NodeID: chi.URLParam(r, "nodeID"),
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// UpdateNode handles PUT /nodes/{nodeID}
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	var req UpdateNodeRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	cmd := &commands.UpdateNodeCommand{
		UserID: userCtx.UserID,
		NodeID: chi.URLParam(r, "nodeID"),
		Delta:  req.Delta,
		Kind:   req.Kind,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"id": cmd.NodeID})
}

// ReparentNode handles PUT /nodes/{nodeID}/parent
func (h *NodeHandler) ReparentNode(w http.ResponseWriter, r *http.Request) {
	var req ReparentNodeRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	cmd := &commands.ReparentNodeCommand{
		UserID:      userCtx.UserID,
		NodeID:      chi.URLParam(r, "nodeID"),
		NewParentID: req.NewParentID,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{
		"id":          cmd.NodeID,
		"newParentId": cmd.NewParentID,
	})
}

// DeleteNode handles DELETE /nodes/{nodeID}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	cmd := &commands.DeleteNodeCommand{
		UserID: userCtx.UserID,
		NodeID: chi.URLParam(r, "nodeID"),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"id": cmd.NodeID})
}

// DuplicateNode handles POST /nodes/{nodeID}/duplicate
func (h *NodeHandler) DuplicateNode(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	cmd := &commands.DuplicateNodeCommand{
		UserID: userCtx.UserID,
		NodeID: chi.URLParam(r, "nodeID"),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]string{
		"sourceId": cmd.NodeID,
		"id":       cmd.CreatedNodeID,
	})
}

// GetCanvas handles GET /canvas
func (h *NodeHandler) GetCanvas(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetCanvasQuery{UserID: userCtx.UserID})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
