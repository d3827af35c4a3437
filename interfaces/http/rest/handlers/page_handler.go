package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pagecraft-backend/application/commands"
	"pagecraft-backend/application/commands/bus"
	"pagecraft-backend/application/queries"
	querybus "pagecraft-backend/application/queries/bus"
	"pagecraft-backend/pkg/auth"
	"pagecraft-backend/pkg/common"
	"pagecraft-backend/pkg/utils"
)

// PageHandler handles page-related HTTP requests
type PageHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewPageHandler creates a new page handler
func NewPageHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
) *PageHandler {
	return &PageHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// CreatePageRequest represents the request body for creating a page
type CreatePageRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Route string `json:"route" validate:"required,routepath"`
}

// RenamePageRequest represents the request body for renaming a page
type RenamePageRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// CreatePage handles POST /pages
func (h *PageHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var req CreatePageRequest
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

	cmd := &commands.CreatePageCommand{
		UserID: userCtx.UserID,
		Name:   req.Name,
		Route:  req.Route,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]string{
		"id":    cmd.CreatedPageID,
		"route": req.Route,
	})
}

// RenamePage handles PUT /pages/{pageID}
func (h *PageHandler) RenamePage(w http.ResponseWriter, r *http.Request) {
	var req RenamePageRequest
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

	cmd := &commands.RenamePageCommand{
		UserID: userCtx.UserID,
		PageID: chi.URLParam(r, "pageID"),
		Name:   req.Name,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"id": cmd.PageID})
}

// DeletePage handles DELETE /pages/{pageID}
func (h *PageHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	cmd := &commands.DeletePageCommand{
		UserID: userCtx.UserID,
		PageID: chi.URLParam(r, "pageID"),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"id": cmd.PageID})
}

// VisibleNodes handles GET /pages/{pageID}/nodes
func (h *PageHandler) VisibleNodes(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.VisibleNodesQuery{
		UserID: userCtx.UserID,
		PageID: chi.URLParam(r, "pageID"),
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// RenderTree handles GET /pages/{pageID}/render
func (h *PageHandler) RenderTree(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.RenderTreeQuery{
		UserID: userCtx.UserID,
		PageID: chi.URLParam(r, "pageID"),
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
