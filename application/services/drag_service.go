package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pagecraft-backend/application/ports"
	"pagecraft-backend/domain/catalog"
	"pagecraft-backend/domain/core/aggregates"
	"pagecraft-backend/domain/core/entities"
	"pagecraft-backend/domain/core/valueobjects"
	pkgerrors "pagecraft-backend/pkg/errors"
)

// DragState tracks the lifecycle of one drag gesture
type DragState string

const (
	DragStateIdle      DragState = "IDLE"
	DragStateDragging  DragState = "DRAGGING"
	DragStateDropped   DragState = "DROPPED"
	DragStateCancelled DragState = "CANCELLED"
)

// DragSession is the short-lived state machine for a single gesture. It is
// scoped to one interaction on one goroutine; cancellation leaves the tree
// untouched because nothing mutates until Drop.
type DragSession struct {
	state  DragState
	nodeID valueobjects.NodeID // zero for palette drags
	kind   string              // set for palette drags
	hovers []hoverEntry
}

type hoverEntry struct {
	target valueobjects.NodeID
	depth  int
}

// State returns the session's current state
func (s *DragSession) State() DragState {
	return s.state
}

// IsPaletteDrag reports whether the gesture drags a new item from the palette
func (s *DragSession) IsPaletteDrag() bool {
	return s.kind != ""
}

// HoverEnter records that the cursor entered a drop zone at the given tree
// depth. Nested zones all report; the deepest one wins at drop time, which
// is how the innermost handler consumes the drop while enclosing handlers
// end up as no-ops.
func (s *DragSession) HoverEnter(target valueobjects.NodeID, depth int) {
	if s.state != DragStateDragging {
		return
	}
	s.hovers = append(s.hovers, hoverEntry{target: target, depth: depth})
}

// HoverLeave records that the cursor left a drop zone
func (s *DragSession) HoverLeave(target valueobjects.NodeID) {
	for i := len(s.hovers) - 1; i >= 0; i-- {
		if s.hovers[i].target.Equals(target) {
			s.hovers = append(s.hovers[:i], s.hovers[i+1:]...)
			return
		}
	}
}

// Cancel ends the gesture without touching the tree
func (s *DragSession) Cancel() {
	if s.state == DragStateDragging {
		s.state = DragStateCancelled
	}
}

// innermost resolves the deepest currently-hovered drop target. The second
// return is false when the cursor is over empty canvas.
func (s *DragSession) innermost() (valueobjects.NodeID, bool) {
	best := -1
	var target valueobjects.NodeID
	for _, h := range s.hovers {
		if h.depth > best {
			best = h.depth
			target = h.target
		}
	}
	return target, best >= 0
}

// DropResult reports what a completed drop did to the tree
type DropResult struct {
	Moved         bool   `json:"moved"`
	Created       bool   `json:"created"`
	NodeID        string `json:"nodeId"`
	NewParentID   string `json:"newParentId,omitempty"`
	IgnoredReason string `json:"ignoredReason,omitempty"`
}

// DragService translates drag gestures into single canvas mutations
type DragService struct {
	canvasRepo ports.CanvasRepository
	eventBus   ports.EventBus
	logger     *zap.Logger
}

// NewDragService creates a new drag service
func NewDragService(canvasRepo ports.CanvasRepository, eventBus ports.EventBus, logger *zap.Logger) *DragService {
	return &DragService{
		canvasRepo: canvasRepo,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// BeginNodeDrag starts a gesture moving an existing node
func (s *DragService) BeginNodeDrag(nodeID valueobjects.NodeID) (*DragSession, error) {
	if nodeID.IsZero() {
		return nil, pkgerrors.NewValidationError("node ID is required")
	}
	return &DragSession{state: DragStateDragging, nodeID: nodeID}, nil
}

// BeginPaletteDrag starts a gesture dragging a new item from the palette
func (s *DragService) BeginPaletteDrag(kind string) (*DragSession, error) {
	if !catalog.Has(kind) {
		return nil, pkgerrors.NewValidationError("unknown palette item: " + kind)
	}
	return &DragSession{state: DragStateDragging, kind: kind}, nil
}

// Drop completes the gesture with exactly one canvas mutation. Dropping a
// node onto itself or one of its own descendants is a silent no-op, not an
// error. Dropping over empty canvas detaches to a page root.
func (s *DragService) Drop(ctx context.Context, userID string, session *DragSession) (*DropResult, error) {
	if session == nil || session.state != DragStateDragging {
		return nil, pkgerrors.NewValidationError("no active drag gesture")
	}

	canvas, err := s.canvasRepo.GetOrCreateDefault(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load canvas: %w", err)
	}

	target, hovered := session.innermost()
	session.state = DragStateDropped

	var result *DropResult
	if session.IsPaletteDrag() {
		result, err = s.dropPaletteItem(canvas, session.kind, target, hovered)
	} else {
		result, err = s.dropExistingNode(canvas, session.nodeID, target, hovered)
	}
	if err != nil {
		return nil, err
	}
	if !result.Moved && !result.Created {
		return result, nil
	}

	if err := s.canvasRepo.Save(ctx, canvas); err != nil {
		return nil, fmt.Errorf("failed to save canvas: %w", err)
	}

	if pending := canvas.GetUncommittedEvents(); len(pending) > 0 {
		if err := s.eventBus.PublishBatch(ctx, pending); err != nil {
			s.logger.Warn("Failed to publish drop events", zap.Error(err))
		}
		canvas.MarkEventsAsCommitted()
	}

	s.logger.Info("Drop applied",
		zap.String("nodeID", result.NodeID),
		zap.String("newParentID", result.NewParentID),
		zap.Bool("created", result.Created),
		zap.String("userID", userID),
	)

	return result, nil
}

func (s *DragService) dropPaletteItem(canvas *aggregates.Canvas, kind string, target valueobjects.NodeID, hovered bool) (*DropResult, error) {
	entry, err := catalog.Lookup(kind)
	if err != nil {
		return nil, err
	}
	node, err := entities.NewNodeWithConfig(entry.Kind, entry.DefaultAttributes.Clone(), canvas.Config())
	if err != nil {
		return nil, err
	}

	parentID := valueobjects.NodeID{}
	if hovered {
		parentID = target
	}
	if err := canvas.Insert(node, parentID); err != nil {
		return nil, err
	}

	result := &DropResult{Created: true, NodeID: node.ID().String()}
	if hovered {
		result.NewParentID = parentID.String()
	}
	return result, nil
}

func (s *DragService) dropExistingNode(canvas *aggregates.Canvas, nodeID, target valueobjects.NodeID, hovered bool) (*DropResult, error) {
	if !canvas.HasNode(nodeID) {
		return nil, pkgerrors.NewNotFoundError("node " + nodeID.String())
	}

	if hovered {
		if nodeID.Equals(target) || canvas.IsAncestor(nodeID, target) {
			return &DropResult{
				NodeID:        nodeID.String(),
				IgnoredReason: "cannot drop a node into its own subtree",
			}, nil
		}
		if err := canvas.Reparent(nodeID, target); err != nil {
			return nil, err
		}
		return &DropResult{Moved: true, NodeID: nodeID.String(), NewParentID: target.String()}, nil
	}

	// Empty-canvas drop detaches into a page root
	if err := canvas.Reparent(nodeID, valueobjects.NodeID{}); err != nil {
		return nil, err
	}
	return &DropResult{Moved: true, NodeID: nodeID.String()}, nil
}
