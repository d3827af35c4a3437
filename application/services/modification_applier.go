package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"pagecraft-backend/application/ports"
	"pagecraft-backend/domain/core/valueobjects"
	pkgerrors "pagecraft-backend/pkg/errors"
)

// ModificationResponse is the change description a model returns for a
// Modify intent
type ModificationResponse struct {
	Changes            *ChangeSet `json:"changes"`
	Message            string     `json:"message"`
	NeedsClarification bool       `json:"needsClarification"`
}

// ChangeSet carries the three recognized delta shapes
type ChangeSet struct {
	Style valueobjects.Attributes `json:"style"`
	Props valueobjects.Attributes `json:"props"`
	Type  string                  `json:"type"`
}

// isEmpty reports whether the change set proposes nothing recognizable
func (c *ChangeSet) isEmpty() bool {
	return c == nil || (len(c.Style) == 0 && len(c.Props) == 0 && c.Type == "")
}

// ApplyResult reports what a modification did
type ApplyResult struct {
	Applied     bool   `json:"applied"`
	NodeID      string `json:"nodeId"`
	Message     string `json:"message"`
	KindChanged bool   `json:"kindChanged"`
}

// ModificationApplier merges model-proposed deltas into a targeted node
// through the canvas's update path, so the key-by-key style merge rule
// applies to model edits exactly as it does to manual ones.
type ModificationApplier struct {
	canvasRepo ports.CanvasRepository
	eventBus   ports.EventBus
	logger     *zap.Logger
}

// NewModificationApplier creates a new modification applier
func NewModificationApplier(canvasRepo ports.CanvasRepository, eventBus ports.EventBus, logger *zap.Logger) *ModificationApplier {
	return &ModificationApplier{
		canvasRepo: canvasRepo,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// ParseResponse decodes a raw model response into a modification. Responses
// that are not JSON objects at all are malformed; a valid envelope with no
// recognizable delta is not an error, it becomes a reported no-op.
func (a *ModificationApplier) ParseResponse(raw string) (*ModificationResponse, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, pkgerrors.NewMalformedResultError("response is not a JSON object")
	}

	var resp ModificationResponse
	if err := json.Unmarshal([]byte(trimmed), &resp); err != nil {
		return nil, pkgerrors.NewMalformedResultError("response is not valid JSON: " + err.Error())
	}
	return &resp, nil
}

// Apply merges the response's deltas into the targeted node. A no-delta
// response returns Applied=false with the model's message, never a silent
// success.
func (a *ModificationApplier) Apply(ctx context.Context, userID string, nodeID valueobjects.NodeID, resp *ModificationResponse) (*ApplyResult, error) {
	if resp == nil {
		return nil, pkgerrors.NewMalformedResultError("empty modification response")
	}

	result := &ApplyResult{NodeID: nodeID.String(), Message: resp.Message}
	if resp.NeedsClarification || resp.Changes.isEmpty() {
		a.logger.Info("Modification proposed no delta",
			zap.String("nodeID", nodeID.String()),
			zap.Bool("needsClarification", resp.NeedsClarification),
		)
		return result, nil
	}

	canvas, err := a.canvasRepo.GetOrCreateDefault(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load canvas: %w", err)
	}

	delta := buildDelta(resp.Changes)
	if len(delta) > 0 {
		if err := canvas.Update(nodeID, delta); err != nil {
			return nil, err
		}
	}
	if resp.Changes.Type != "" {
		if err := canvas.ChangeKind(nodeID, resp.Changes.Type); err != nil {
			return nil, err
		}
		result.KindChanged = true
	}

	if err := a.canvasRepo.Save(ctx, canvas); err != nil {
		return nil, fmt.Errorf("failed to save canvas: %w", err)
	}

	if pending := canvas.GetUncommittedEvents(); len(pending) > 0 {
		if err := a.eventBus.PublishBatch(ctx, pending); err != nil {
			a.logger.Warn("Failed to publish modification events", zap.Error(err))
		}
		canvas.MarkEventsAsCommitted()
	}

	result.Applied = true
	a.logger.Info("Modification applied",
		zap.String("nodeID", nodeID.String()),
		zap.Bool("kindChanged", result.KindChanged),
		zap.String("userID", userID),
	)

	return result, nil
}

// buildDelta folds the style and prop deltas into one attribute delta.
// Style lands under the style key so the merge stays key-by-key; props are
// top-level attribute keys.
func buildDelta(changes *ChangeSet) valueobjects.Attributes {
	delta := valueobjects.Attributes{}
	for key, value := range changes.Props {
		delta[key] = value
	}
	if len(changes.Style) > 0 {
		style := map[string]interface{}{}
		for key, value := range changes.Style {
			style[key] = value
		}
		delta[valueobjects.KeyStyle] = style
	}
	return delta
}
