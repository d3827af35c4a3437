package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"pagecraft-backend/application/ports"
	"pagecraft-backend/domain/core/aggregates"
	"pagecraft-backend/domain/core/entities"
	"pagecraft-backend/domain/core/valueobjects"
	pkgerrors "pagecraft-backend/pkg/errors"
)

// GeneratedNode is the node shape models emit for generation intents. An
// array of these implies a page or application with multiple sections.
type GeneratedNode struct {
	Type     string                  `json:"type"`
	Style    valueobjects.Attributes `json:"style"`
	Props    valueobjects.Attributes `json:"props"`
	Children []GeneratedNode         `json:"children"`
}

// MaterializeResult reports what generation inserted into the canvas
type MaterializeResult struct {
	NodeIDs []string `json:"nodeIds"`
	PageID  string   `json:"pageId,omitempty"`
}

// GenerationService turns model generation output into canvas structure.
// Malformed output is rejected before anything touches the tree.
type GenerationService struct {
	canvasRepo ports.CanvasRepository
	eventBus   ports.EventBus
	logger     *zap.Logger
}

// NewGenerationService creates a new generation service
func NewGenerationService(canvasRepo ports.CanvasRepository, eventBus ports.EventBus, logger *zap.Logger) *GenerationService {
	return &GenerationService{
		canvasRepo: canvasRepo,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// ParseGeneratedNodes decodes a model response into node shapes. Accepts a
// single object with a type, or an array of such objects. Anything else is
// a MalformedResult and must never reach the tree.
func (s *GenerationService) ParseGeneratedNodes(raw string) ([]GeneratedNode, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, pkgerrors.NewMalformedResultError("empty generation response")
	}

	switch trimmed[0] {
	case '{':
		var node GeneratedNode
		if err := json.Unmarshal([]byte(trimmed), &node); err != nil {
			return nil, pkgerrors.NewMalformedResultError("invalid JSON object: " + err.Error())
		}
		if err := validateGenerated(node); err != nil {
			return nil, err
		}
		return []GeneratedNode{node}, nil
	case '[':
		var nodes []GeneratedNode
		if err := json.Unmarshal([]byte(trimmed), &nodes); err != nil {
			return nil, pkgerrors.NewMalformedResultError("invalid JSON array: " + err.Error())
		}
		if len(nodes) == 0 {
			return nil, pkgerrors.NewMalformedResultError("generation array is empty")
		}
		for _, node := range nodes {
			if err := validateGenerated(node); err != nil {
				return nil, err
			}
		}
		return nodes, nil
	default:
		return nil, pkgerrors.NewMalformedResultError("response is neither an object with a type nor an array")
	}
}

func validateGenerated(node GeneratedNode) error {
	if strings.TrimSpace(node.Type) == "" {
		return pkgerrors.NewMalformedResultError("generated node is missing a type")
	}
	for _, child := range node.Children {
		if err := validateGenerated(child); err != nil {
			return err
		}
	}
	return nil
}

// MaterializeComponent inserts generated sections under the given parent,
// or as page roots when parentID is zero
func (s *GenerationService) MaterializeComponent(ctx context.Context, userID string, nodes []GeneratedNode, parentID valueobjects.NodeID) (*MaterializeResult, error) {
	canvas, err := s.canvasRepo.GetOrCreateDefault(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load canvas: %w", err)
	}

	result := &MaterializeResult{}
	for _, gen := range nodes {
		rootID, err := s.insertTree(canvas, gen, parentID, valueobjects.PageID{})
		if err != nil {
			return nil, err
		}
		result.NodeIDs = append(result.NodeIDs, rootID.String())
	}

	return result, s.finish(ctx, canvas, userID, result)
}

// MaterializePage creates a page and inserts the generated sections onto
// it, each section a page root bound to the new page explicitly
func (s *GenerationService) MaterializePage(ctx context.Context, userID, name, route string, nodes []GeneratedNode) (*MaterializeResult, error) {
	canvas, err := s.canvasRepo.GetOrCreateDefault(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load canvas: %w", err)
	}

	page, err := canvas.AddPage(name, route)
	if err != nil {
		return nil, err
	}

	result := &MaterializeResult{PageID: page.ID().String()}
	for _, gen := range nodes {
		rootID, err := s.insertTree(canvas, gen, valueobjects.NodeID{}, page.ID())
		if err != nil {
			return nil, err
		}
		result.NodeIDs = append(result.NodeIDs, rootID.String())
	}

	return result, s.finish(ctx, canvas, userID, result)
}

// insertTree inserts one generated node and recurses into its children,
// parent before child
func (s *GenerationService) insertTree(canvas *aggregates.Canvas, gen GeneratedNode, parentID valueobjects.NodeID, pageID valueobjects.PageID) (valueobjects.NodeID, error) {
	attrs := valueobjects.Attributes{}
	for key, value := range gen.Props {
		attrs[key] = value
	}
	if len(gen.Style) > 0 {
		style := map[string]interface{}{}
		for key, value := range gen.Style {
			style[key] = value
		}
		attrs[valueobjects.KeyStyle] = style
	}

	node, err := entities.NewNodeWithConfig(gen.Type, attrs, canvas.Config())
	if err != nil {
		return valueobjects.NodeID{}, err
	}
	if !pageID.IsZero() {
		node.AssignToPage(pageID)
	}

	if err := canvas.Insert(node, parentID); err != nil {
		return valueobjects.NodeID{}, err
	}

	for _, child := range gen.Children {
		if _, err := s.insertTree(canvas, child, node.ID(), pageID); err != nil {
			return valueobjects.NodeID{}, err
		}
	}

	return node.ID(), nil
}

func (s *GenerationService) finish(ctx context.Context, canvas *aggregates.Canvas, userID string, result *MaterializeResult) error {
	if err := s.canvasRepo.Save(ctx, canvas); err != nil {
		return fmt.Errorf("failed to save canvas: %w", err)
	}

	if pending := canvas.GetUncommittedEvents(); len(pending) > 0 {
		if err := s.eventBus.PublishBatch(ctx, pending); err != nil {
			s.logger.Warn("Failed to publish generation events", zap.Error(err))
		}
		canvas.MarkEventsAsCommitted()
	}

	s.logger.Info("Generation materialized",
		zap.Int("roots", len(result.NodeIDs)),
		zap.String("pageID", result.PageID),
		zap.String("userID", userID),
	)
	return nil
}
