package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pagecraft-backend/application/ports"
	"pagecraft-backend/domain/catalog"
	"pagecraft-backend/pkg/common"
	"pagecraft-backend/pkg/utils"
)

// EditorHandler serves the editor-surface event bus and the palette catalog
type EditorHandler struct {
	editorBus ports.EditorBus
	logger    *zap.Logger
}

// NewEditorHandler creates a new editor handler
func NewEditorHandler(editorBus ports.EditorBus, logger *zap.Logger) *EditorHandler {
	return &EditorHandler{
		editorBus: editorBus,
		logger:    logger,
	}
}

// PublishEventRequest represents the request body for publishing an editor event
type PublishEventRequest struct {
	Topic   string                 `json:"topic" validate:"required,min=1,max=100"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// PublishEvent handles POST /editor/events. Toolbar toggles (grid, panels)
// flow through here instead of ambient client-side global state.
func (h *EditorHandler) PublishEvent(w http.ResponseWriter, r *http.Request) {
	var req PublishEventRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	h.editorBus.PublishEditor(ports.EditorEvent{Topic: req.Topic, Payload: req.Payload})
	common.RespondJSON(w, http.StatusAccepted, map[string]string{"topic": req.Topic})
}

// StreamEvents handles GET /editor/events/{topic} as a server-sent event
// stream. The subscription ends when the client disconnects.
func (h *EditorHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "topic")
	flusher, ok := w.(http.Flusher)
	if !ok {
		common.RespondError(w, http.StatusInternalServerError, "INTERNAL", "streaming unsupported")
		return
	}

	events, unsubscribe := h.editorBus.SubscribeEditor(topic)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(event.Payload)
			if err != nil {
				h.logger.Warn("Failed to encode editor event", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Topic, payload)
			flusher.Flush()
		}
	}
}

// Catalog handles GET /catalog, listing the prebuilt palette entries
func (h *EditorHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, catalog.Entries())
}
