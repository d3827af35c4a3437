package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pagecraft-backend/application/consensus"
	"pagecraft-backend/application/intent"
	"pagecraft-backend/application/ports"
	"pagecraft-backend/application/services"
	"pagecraft-backend/domain/core/valueobjects"
	"pagecraft-backend/pkg/auth"
	"pagecraft-backend/pkg/common"
	pkgerrors "pagecraft-backend/pkg/errors"
	"pagecraft-backend/pkg/utils"
)

// AIHandler exposes the AI pipeline: prompt classification, consensus
// dispatch, and applying or materializing the winning response
type AIHandler struct {
	dispatcher *consensus.Dispatcher
	applier    *services.ModificationApplier
	generation *services.GenerationService
	canvasRepo ports.CanvasRepository
	logger     *zap.Logger
}

// NewAIHandler creates a new AI handler. A nil dispatcher means the AI
// pipeline is disabled by configuration.
func NewAIHandler(
	dispatcher *consensus.Dispatcher,
	applier *services.ModificationApplier,
	generation *services.GenerationService,
	canvasRepo ports.CanvasRepository,
	logger *zap.Logger,
) *AIHandler {
	return &AIHandler{
		dispatcher: dispatcher,
		applier:    applier,
		generation: generation,
		canvasRepo: canvasRepo,
		logger:     logger,
	}
}

// ProcessPromptRequest represents the request body for process-prompt
type ProcessPromptRequest struct {
	Prompt        string                  `json:"prompt" validate:"required,min=1,max=4000"`
	ComponentType string                  `json:"componentType,omitempty"`
	ComponentID   string                  `json:"componentId,omitempty" validate:"omitempty,uuid"`
	CurrentStyle  valueobjects.Attributes `json:"currentStyle,omitempty"`
	CurrentProps  valueobjects.Attributes `json:"currentProps,omitempty"`
}

// ProcessPromptResponse represents the response for process-prompt
type ProcessPromptResponse struct {
	Intent             string                 `json:"intent"`
	Changes            *services.ChangeSet    `json:"changes,omitempty"`
	Message            string                 `json:"message"`
	NeedsClarification bool                   `json:"needsClarification,omitempty"`
	Applied            bool                   `json:"applied"`
	NodeIDs            []string               `json:"nodeIds,omitempty"`
	PageID             string                 `json:"pageId,omitempty"`
	Model              string                 `json:"model,omitempty"`
	Score              float64                `json:"score,omitempty"`
	Raw                map[string]interface{} `json:"raw,omitempty"`
}

// ProcessPrompt handles POST /ai/process-prompt. The prompt is classified
// first; the intent decides whether the consensus winner is applied as a
// modification, materialized as new structure, or returned as text.
func (h *AIHandler) ProcessPrompt(w http.ResponseWriter, r *http.Request) {
	if h.dispatcher == nil {
		common.RespondError(w, http.StatusServiceUnavailable, "AI_DISABLED", "AI pipeline is disabled")
		return
	}

	var req ProcessPromptRequest
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

	intentCtx, err := h.buildIntentContext(r.Context(), userCtx.UserID, req.ComponentID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	classified := intent.Classify(req.Prompt, intentCtx)

	switch classified.Kind {
	case intent.KindModify:
		h.handleModify(w, r, userCtx.UserID, req, classified)
	case intent.KindCreatePage:
		h.handleGeneratePage(w, r, userCtx.UserID, req.Prompt, "", "")
	case intent.KindCreateApplication:
		h.handleGenerateApplication(w, r, userCtx.UserID, req.Prompt)
	case intent.KindDebug, intent.KindCode:
		h.handleTextOnly(w, r, req.Prompt, classified.Kind)
	default:
		h.handleGenerateComponent(w, r, userCtx.UserID, req.Prompt, req.ComponentID)
	}
}

func (h *AIHandler) buildIntentContext(ctx context.Context, userID, componentID string) (intent.Context, error) {
	intentCtx := intent.Context{ExistingKinds: make(map[string]valueobjects.NodeID)}

	if componentID != "" {
		nodeID, err := valueobjects.NewNodeIDFromString(componentID)
		if err != nil {
			return intentCtx, pkgerrors.NewValidationError("invalid component ID")
		}
		intentCtx.SelectedNodeID = nodeID
	}

	canvas, err := h.canvasRepo.GetOrCreateDefault(ctx, userID)
	if err != nil {
		return intentCtx, err
	}
	for _, node := range canvas.Nodes() {
		if _, seen := intentCtx.ExistingKinds[node.Kind()]; !seen {
			intentCtx.ExistingKinds[node.Kind()] = node.ID()
		}
	}
	return intentCtx, nil
}

func (h *AIHandler) handleModify(w http.ResponseWriter, r *http.Request, userID string, req ProcessPromptRequest, classified intent.Intent) {
	prompt := buildModificationPrompt(req)
	selection, err := h.dispatcher.Dispatch(r.Context(), prompt)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	parsed, err := h.applier.ParseResponse(selection.Text)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	result, err := h.applier.Apply(r.Context(), userID, classified.TargetNodeID, parsed)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, ProcessPromptResponse{
		Intent:             string(classified.Kind),
		Changes:            parsed.Changes,
		Message:            result.Message,
		NeedsClarification: parsed.NeedsClarification,
		Applied:            result.Applied,
		NodeIDs:            []string{result.NodeID},
		Model:              selection.ModelID,
		Score:              selection.Score,
	})
}

func (h *AIHandler) handleGenerateComponent(w http.ResponseWriter, r *http.Request, userID, description, parentID string) {
	selection, nodes, ok := h.generate(w, r, buildComponentPrompt(description))
	if !ok {
		return
	}

	parent := valueobjects.NodeID{}
	if parentID != "" {
		if id, err := valueobjects.NewNodeIDFromString(parentID); err == nil {
			parent = id
		}
	}

	result, err := h.generation.MaterializeComponent(r.Context(), userID, nodes, parent)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, ProcessPromptResponse{
		Intent:  string(intent.KindCreateComponent),
		Message: "component created",
		Applied: true,
		NodeIDs: result.NodeIDs,
		Model:   selection.ModelID,
		Score:   selection.Score,
	})
}

func (h *AIHandler) handleGeneratePage(w http.ResponseWriter, r *http.Request, userID, description, name, route string) {
	selection, nodes, ok := h.generate(w, r, buildPagePrompt(description))
	if !ok {
		return
	}

	if name == "" {
		name = "Generated Page"
	}
	if route == "" {
		route = "/generated-" + uuid.NewString()[:8]
	}

	result, err := h.generation.MaterializePage(r.Context(), userID, name, route, nodes)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, ProcessPromptResponse{
		Intent:  string(intent.KindCreatePage),
		Message: "page created",
		Applied: true,
		NodeIDs: result.NodeIDs,
		PageID:  result.PageID,
		Model:   selection.ModelID,
		Score:   selection.Score,
	})
}

func (h *AIHandler) handleGenerateApplication(w http.ResponseWriter, r *http.Request, userID, description string) {
	selection, nodes, ok := h.generate(w, r, buildApplicationPrompt(description))
	if !ok {
		return
	}

	// An application's sections land on one generated page; multi-page
	// split stays driven by the model emitting one array per page request
	result, err := h.generation.MaterializePage(r.Context(), userID, "Generated App", "/app-"+uuid.NewString()[:8], nodes)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, ProcessPromptResponse{
		Intent:  string(intent.KindCreateApplication),
		Message: "application scaffolded",
		Applied: true,
		NodeIDs: result.NodeIDs,
		PageID:  result.PageID,
		Model:   selection.ModelID,
		Score:   selection.Score,
	})
}

func (h *AIHandler) handleTextOnly(w http.ResponseWriter, r *http.Request, prompt string, kind intent.Kind) {
	selection, err := h.dispatcher.Dispatch(r.Context(), prompt)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, ProcessPromptResponse{
		Intent:  string(kind),
		Message: selection.Text,
		Model:   selection.ModelID,
		Score:   selection.Score,
	})
}

// generate dispatches a generation prompt and parses the winner into node
// shapes. On failure it writes the error response and returns ok=false.
func (h *AIHandler) generate(w http.ResponseWriter, r *http.Request, prompt string) (*consensus.Selection, []services.GeneratedNode, bool) {
	selection, err := h.dispatcher.Dispatch(r.Context(), prompt)
	if err != nil {
		common.RespondAppError(w, err)
		return nil, nil, false
	}

	nodes, err := h.generation.ParseGeneratedNodes(selection.Text)
	if err != nil {
		common.RespondAppError(w, err)
		return nil, nil, false
	}
	return selection, nodes, true
}

// ProcessActionRequest represents the request body for process-action
type ProcessActionRequest struct {
	ActionMessage string                  `json:"actionMessage" validate:"required,min=1,max=4000"`
	ComponentType string                  `json:"componentType,omitempty"`
	ComponentID   string                  `json:"componentId,omitempty" validate:"omitempty,uuid"`
	CurrentProps  valueobjects.Attributes `json:"currentProps,omitempty"`
	Pages         []string                `json:"pages,omitempty"`
}

// ProcessActionResponse represents the response for process-action
type ProcessActionResponse struct {
	ActionCode        string              `json:"actionCode"`
	Explanation       string              `json:"explanation"`
	Changes           *services.ChangeSet `json:"changes,omitempty"`
	NeedsConfirmation bool                `json:"needsConfirmation"`
	Model             string              `json:"model"`
}

// ProcessAction handles POST /ai/process-action
func (h *AIHandler) ProcessAction(w http.ResponseWriter, r *http.Request) {
	if h.dispatcher == nil {
		common.RespondError(w, http.StatusServiceUnavailable, "AI_DISABLED", "AI pipeline is disabled")
		return
	}

	var req ProcessActionRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	if _, err := auth.GetUserFromContext(r.Context()); err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	selection, err := h.dispatcher.Dispatch(r.Context(), buildActionPrompt(req))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var resp ProcessActionResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(selection.Text)), &resp); err != nil {
		common.RespondAppError(w, pkgerrors.NewMalformedResultError("action response is not valid JSON"))
		return
	}
	resp.Model = selection.ModelID

	common.RespondJSON(w, http.StatusOK, resp)
}

// DebugFixRequest represents the request body for debug-fix
type DebugFixRequest struct {
	ErrorMessage   string `json:"errorMessage" validate:"required,min=1,max=8000"`
	ErrorTraceback string `json:"errorTraceback,omitempty"`
	FilePath       string `json:"filePath,omitempty"`
	ProjectID      string `json:"projectId,omitempty"`
}

// DebugFixResponse represents the response for debug-fix
type DebugFixResponse struct {
	IssueIdentified bool    `json:"issueIdentified"`
	RootCause       string  `json:"rootCause"`
	FixCode         string  `json:"fixCode"`
	FilePath        string  `json:"filePath"`
	Explanation     string  `json:"explanation"`
	Confidence      float64 `json:"confidence"`
	FixApplied      bool    `json:"fixApplied"`
	Model           string  `json:"model"`
}

// DebugFix handles POST /ai/debug-fix. The fix is proposed, never applied;
// applying code changes to a project is outside this service.
func (h *AIHandler) DebugFix(w http.ResponseWriter, r *http.Request) {
	if h.dispatcher == nil {
		common.RespondError(w, http.StatusServiceUnavailable, "AI_DISABLED", "AI pipeline is disabled")
		return
	}

	var req DebugFixRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	if _, err := auth.GetUserFromContext(r.Context()); err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	selection, err := h.dispatcher.Dispatch(r.Context(), buildDebugPrompt(req))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var resp DebugFixResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(selection.Text)), &resp); err != nil {
		common.RespondAppError(w, pkgerrors.NewMalformedResultError("debug response is not valid JSON"))
		return
	}
	resp.FixApplied = false
	resp.Model = selection.ModelID

	common.RespondJSON(w, http.StatusOK, resp)
}

// GenerateRequest represents the request body for the generate endpoints
type GenerateRequest struct {
	Description        string   `json:"description" validate:"required,min=1,max=4000"`
	ExistingComponents []string `json:"existingComponents,omitempty"`
	CSSFramework       string   `json:"cssFramework,omitempty"`
	Frameworks         []string `json:"frameworks,omitempty"`
	PageName           string   `json:"pageName,omitempty"`
	PageRoute          string   `json:"pageRoute,omitempty" validate:"omitempty,routepath"`
	ParentID           string   `json:"parentId,omitempty" validate:"omitempty,uuid"`
}

func (h *AIHandler) parseGenerateRequest(w http.ResponseWriter, r *http.Request) (*GenerateRequest, string, bool) {
	if h.dispatcher == nil {
		common.RespondError(w, http.StatusServiceUnavailable, "AI_DISABLED", "AI pipeline is disabled")
		return nil, "", false
	}

	var req GenerateRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid request body: "+err.Error())
		return nil, "", false
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return nil, "", false
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return nil, "", false
	}
	return &req, userCtx.UserID, true
}

// GenerateComponent handles POST /ai/generate/component
func (h *AIHandler) GenerateComponent(w http.ResponseWriter, r *http.Request) {
	req, userID, ok := h.parseGenerateRequest(w, r)
	if !ok {
		return
	}
	h.handleGenerateComponent(w, r, userID, describeGeneration(req), req.ParentID)
}

// GeneratePage handles POST /ai/generate/page
func (h *AIHandler) GeneratePage(w http.ResponseWriter, r *http.Request) {
	req, userID, ok := h.parseGenerateRequest(w, r)
	if !ok {
		return
	}
	h.handleGeneratePage(w, r, userID, describeGeneration(req), req.PageName, req.PageRoute)
}

// GenerateApplication handles POST /ai/generate/application
func (h *AIHandler) GenerateApplication(w http.ResponseWriter, r *http.Request) {
	req, userID, ok := h.parseGenerateRequest(w, r)
	if !ok {
		return
	}
	h.handleGenerateApplication(w, r, userID, describeGeneration(req))
}

// Prompt templates. The gateway models are instructed to answer with plain
// JSON shapes the services can parse.

func buildModificationPrompt(req ProcessPromptRequest) string {
	var b strings.Builder
	b.WriteString("You modify one UI component. Respond with JSON {\"changes\":{\"style\":{},\"props\":{},\"type\":\"\"},\"message\":\"\",\"needsClarification\":false}.\n")
	if req.ComponentType != "" {
		fmt.Fprintf(&b, "Component type: %s\n", req.ComponentType)
	}
	if len(req.CurrentStyle) > 0 {
		raw, _ := json.Marshal(req.CurrentStyle)
		fmt.Fprintf(&b, "Current style: %s\n", raw)
	}
	if len(req.CurrentProps) > 0 {
		raw, _ := json.Marshal(req.CurrentProps)
		fmt.Fprintf(&b, "Current props: %s\n", raw)
	}
	fmt.Fprintf(&b, "Request: %s", req.Prompt)
	return b.String()
}

func buildComponentPrompt(description string) string {
	return "Generate one UI component as JSON {\"type\":\"...\",\"style\":{},\"props\":{},\"children\":[]}.\nRequest: " + description
}

func buildPagePrompt(description string) string {
	return "Generate a full page as a JSON array of section objects [{\"type\":\"...\",\"style\":{},\"props\":{},\"children\":[]}].\nRequest: " + description
}

func buildApplicationPrompt(description string) string {
	return "Generate an application scaffold as a JSON array of section objects [{\"type\":\"...\",\"style\":{},\"props\":{},\"children\":[]}], covering every screen the request names.\nRequest: " + description
}

func buildActionPrompt(req ProcessActionRequest) string {
	var b strings.Builder
	b.WriteString("You translate an editor action request into JSON {\"actionCode\":\"\",\"explanation\":\"\",\"changes\":{\"style\":{},\"props\":{},\"type\":\"\"},\"needsConfirmation\":false}.\n")
	if req.ComponentType != "" {
		fmt.Fprintf(&b, "Component type: %s\n", req.ComponentType)
	}
	if len(req.Pages) > 0 {
		fmt.Fprintf(&b, "Pages: %s\n", strings.Join(req.Pages, ", "))
	}
	fmt.Fprintf(&b, "Action: %s", req.ActionMessage)
	return b.String()
}

func buildDebugPrompt(req DebugFixRequest) string {
	var b strings.Builder
	b.WriteString("You diagnose a runtime error. Respond with JSON {\"issueIdentified\":true,\"rootCause\":\"\",\"fixCode\":\"\",\"filePath\":\"\",\"explanation\":\"\",\"confidence\":0.0}.\n")
	fmt.Fprintf(&b, "Error: %s\n", req.ErrorMessage)
	if req.ErrorTraceback != "" {
		fmt.Fprintf(&b, "Traceback:\n%s\n", req.ErrorTraceback)
	}
	if req.FilePath != "" {
		fmt.Fprintf(&b, "File: %s\n", req.FilePath)
	}
	return b.String()
}

func describeGeneration(req *GenerateRequest) string {
	var b strings.Builder
	b.WriteString(req.Description)
	if req.CSSFramework != "" {
		fmt.Fprintf(&b, " (css framework: %s)", req.CSSFramework)
	}
	if len(req.ExistingComponents) > 0 {
		fmt.Fprintf(&b, " (existing components: %s)", strings.Join(req.ExistingComponents, ", "))
	}
	if len(req.Frameworks) > 0 {
		fmt.Fprintf(&b, " (frameworks: %s)", strings.Join(req.Frameworks, ", "))
	}
	return b.String()
}
