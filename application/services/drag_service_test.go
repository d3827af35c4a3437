package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pagecraft-backend/domain/core/aggregates"
	"pagecraft-backend/domain/core/entities"
	"pagecraft-backend/domain/core/valueobjects"
	pkgerrors "pagecraft-backend/pkg/errors"
)

const dragTestUser = "drag-user"

func newDragFixture(t *testing.T) (*DragService, *fakeCanvasRepo, *fakeEventBus) {
	t.Helper()
	repo := newFakeCanvasRepo()
	bus := &fakeEventBus{}
	return NewDragService(repo, bus, zap.NewNop()), repo, bus
}

func insertNode(t *testing.T, canvas *aggregates.Canvas, kind string, parentID valueobjects.NodeID) *entities.Node {
	t.Helper()
	node, err := entities.NewNode(kind, valueobjects.Attributes{})
	require.NoError(t, err)
	require.NoError(t, canvas.Insert(node, parentID))
	canvas.MarkEventsAsCommitted()
	node.MarkEventsAsCommitted()
	return node
}

func TestDrop_ReparentsOntoHoveredTarget(t *testing.T) {
	svc, repo, bus := newDragFixture(t)
	canvas := mustCanvas(t, repo, dragTestUser)
	container := insertNode(t, canvas, "div", valueobjects.NodeID{})
	moved := insertNode(t, canvas, "button", valueobjects.NodeID{})

	session, err := svc.BeginNodeDrag(moved.ID())
	require.NoError(t, err)
	session.HoverEnter(container.ID(), 0)

	result, err := svc.Drop(context.Background(), dragTestUser, session)
	require.NoError(t, err)

	assert.True(t, result.Moved)
	assert.Equal(t, container.ID().String(), result.NewParentID)
	assert.True(t, moved.ParentID().Equals(container.ID()))
	assert.Equal(t, 1, repo.saves)
	assert.Greater(t, bus.count(), 0)
	assert.Equal(t, DragStateDropped, session.State())
}

func TestDrop_OntoOwnDescendantIsSilentNoOp(t *testing.T) {
	svc, repo, _ := newDragFixture(t)
	canvas := mustCanvas(t, repo, dragTestUser)
	parent := insertNode(t, canvas, "div", valueobjects.NodeID{})
	child := insertNode(t, canvas, "div", parent.ID())
	grandchild := insertNode(t, canvas, "button", child.ID())

	session, err := svc.BeginNodeDrag(parent.ID())
	require.NoError(t, err)
	session.HoverEnter(grandchild.ID(), 2)

	result, err := svc.Drop(context.Background(), dragTestUser, session)
	require.NoError(t, err)

	assert.False(t, result.Moved)
	assert.NotEmpty(t, result.IgnoredReason)
	assert.True(t, parent.IsRoot(), "the dragged subtree must be untouched")
	assert.True(t, child.ParentID().Equals(parent.ID()))
	assert.Equal(t, 0, repo.saves, "an ignored drop must not persist anything")
}

func TestDrop_OntoSelfIsSilentNoOp(t *testing.T) {
	svc, repo, _ := newDragFixture(t)
	canvas := mustCanvas(t, repo, dragTestUser)
	node := insertNode(t, canvas, "card", valueobjects.NodeID{})

	session, err := svc.BeginNodeDrag(node.ID())
	require.NoError(t, err)
	session.HoverEnter(node.ID(), 0)

	result, err := svc.Drop(context.Background(), dragTestUser, session)
	require.NoError(t, err)

	assert.False(t, result.Moved)
	assert.NotEmpty(t, result.IgnoredReason)
	assert.Equal(t, 0, repo.saves)
}

func TestDrop_InnermostHoveredZoneWins(t *testing.T) {
	svc, repo, _ := newDragFixture(t)
	canvas := mustCanvas(t, repo, dragTestUser)
	outer := insertNode(t, canvas, "div", valueobjects.NodeID{})
	inner := insertNode(t, canvas, "div", outer.ID())
	moved := insertNode(t, canvas, "button", valueobjects.NodeID{})

	session, err := svc.BeginNodeDrag(moved.ID())
	require.NoError(t, err)
	session.HoverEnter(outer.ID(), 0)
	session.HoverEnter(inner.ID(), 1)

	result, err := svc.Drop(context.Background(), dragTestUser, session)
	require.NoError(t, err)

	assert.Equal(t, inner.ID().String(), result.NewParentID)
	assert.True(t, moved.ParentID().Equals(inner.ID()))
}

func TestDrop_HoverLeaveFallsBackToEnclosingZone(t *testing.T) {
	svc, repo, _ := newDragFixture(t)
	canvas := mustCanvas(t, repo, dragTestUser)
	outer := insertNode(t, canvas, "div", valueobjects.NodeID{})
	inner := insertNode(t, canvas, "div", outer.ID())
	moved := insertNode(t, canvas, "button", valueobjects.NodeID{})

	session, err := svc.BeginNodeDrag(moved.ID())
	require.NoError(t, err)
	session.HoverEnter(outer.ID(), 0)
	session.HoverEnter(inner.ID(), 1)
	session.HoverLeave(inner.ID())

	result, err := svc.Drop(context.Background(), dragTestUser, session)
	require.NoError(t, err)

	assert.Equal(t, outer.ID().String(), result.NewParentID)
}

func TestDrop_OverEmptyCanvasDetachesToRoot(t *testing.T) {
	svc, repo, _ := newDragFixture(t)
	canvas := mustCanvas(t, repo, dragTestUser)
	parent := insertNode(t, canvas, "div", valueobjects.NodeID{})
	child := insertNode(t, canvas, "button", parent.ID())

	session, err := svc.BeginNodeDrag(child.ID())
	require.NoError(t, err)

	result, err := svc.Drop(context.Background(), dragTestUser, session)
	require.NoError(t, err)

	assert.True(t, result.Moved)
	assert.Empty(t, result.NewParentID)
	assert.True(t, child.IsRoot())
}

func TestDrop_PaletteItemCreatesNodeWithCatalogDefaults(t *testing.T) {
	svc, repo, _ := newDragFixture(t)
	canvas := mustCanvas(t, repo, dragTestUser)
	container := insertNode(t, canvas, "div", valueobjects.NodeID{})
	before := canvas.NodeCount()

	session, err := svc.BeginPaletteDrag("button")
	require.NoError(t, err)
	session.HoverEnter(container.ID(), 0)

	result, err := svc.Drop(context.Background(), dragTestUser, session)
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.Equal(t, before+1, canvas.NodeCount())

	createdID, err := valueobjects.NewNodeIDFromString(result.NodeID)
	require.NoError(t, err)
	created, err := canvas.GetNode(createdID)
	require.NoError(t, err)
	assert.Equal(t, "button", created.Kind())
	assert.Equal(t, "Click me", created.Attributes().Text())
	assert.True(t, created.ParentID().Equals(container.ID()))
}

func TestBeginPaletteDrag_RejectsUnknownKind(t *testing.T) {
	svc, _, _ := newDragFixture(t)

	_, err := svc.BeginPaletteDrag("hologram")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestDrop_CancelledSessionIsRejected(t *testing.T) {
	svc, repo, _ := newDragFixture(t)
	canvas := mustCanvas(t, repo, dragTestUser)
	node := insertNode(t, canvas, "button", valueobjects.NodeID{})

	session, err := svc.BeginNodeDrag(node.ID())
	require.NoError(t, err)
	session.HoverEnter(node.ID(), 0)
	session.Cancel()

	_, err = svc.Drop(context.Background(), dragTestUser, session)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Equal(t, DragStateCancelled, session.State())
	assert.True(t, node.IsRoot(), "cancel must leave the tree untouched")
}

func TestDrop_UnknownNodeIsNotFound(t *testing.T) {
	svc, repo, _ := newDragFixture(t)
	mustCanvas(t, repo, dragTestUser)

	session, err := svc.BeginNodeDrag(valueobjects.NewNodeID())
	require.NoError(t, err)

	_, err = svc.Drop(context.Background(), dragTestUser, session)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}
