package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"pagecraft-backend/application/services"
	"pagecraft-backend/domain/core/valueobjects"
	"pagecraft-backend/pkg/auth"
	"pagecraft-backend/pkg/common"
	"pagecraft-backend/pkg/utils"
)

// DragHandler completes drag gestures over HTTP. The browser runs the live
// gesture; this endpoint receives the final hover set and resolves the drop
// server-side so the innermost-target and descendant rules live in one place.
type DragHandler struct {
	dragService *services.DragService
	logger      *zap.Logger
}

// NewDragHandler creates a new drag handler
func NewDragHandler(dragService *services.DragService, logger *zap.Logger) *DragHandler {
	return &DragHandler{
		dragService: dragService,
		logger:      logger,
	}
}

// HoverTarget is one drop zone the cursor was over at release time
type HoverTarget struct {
	NodeID string `json:"nodeId" validate:"required,uuid"`
	Depth  int    `json:"depth" validate:"gte=0"`
}

// DropRequest represents the request body for completing a drag
type DropRequest struct {
	SourceNodeID string        `json:"sourceNodeId,omitempty" validate:"omitempty,uuid"`
	PaletteKind  string        `json:"paletteKind,omitempty" validate:"omitempty,min=1,max=50"`
	Hovered      []HoverTarget `json:"hovered,omitempty" validate:"dive"`
	Cancelled    bool          `json:"cancelled,omitempty"`
}

// Drop handles POST /drag/drop
func (h *DragHandler) Drop(w http.ResponseWriter, r *http.Request) {
	var req DropRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	if (req.SourceNodeID == "") == (req.PaletteKind == "") {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "exactly one of sourceNodeId or paletteKind is required")
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	session, err := h.beginSession(req)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	for _, hover := range req.Hovered {
		targetID, err := valueobjects.NewNodeIDFromString(hover.NodeID)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid hover target: "+hover.NodeID)
			return
		}
		session.HoverEnter(targetID, hover.Depth)
	}

	if req.Cancelled {
		session.Cancel()
		common.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"state": string(session.State()),
			"moved": false,
		})
		return
	}

	result, err := h.dragService.Drop(r.Context(), userCtx.UserID, session)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

func (h *DragHandler) beginSession(req DropRequest) (*services.DragSession, error) {
	if req.PaletteKind != "" {
		return h.dragService.BeginPaletteDrag(req.PaletteKind)
	}
	nodeID, err := valueobjects.NewNodeIDFromString(req.SourceNodeID)
	if err != nil {
		return nil, err
	}
	return h.dragService.BeginNodeDrag(nodeID)
}
