package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pagecraft-backend/domain/core/valueobjects"
	pkgerrors "pagecraft-backend/pkg/errors"
)

const applyTestUser = "apply-user"

func newApplierFixture(t *testing.T) (*ModificationApplier, *fakeCanvasRepo, *fakeEventBus) {
	t.Helper()
	repo := newFakeCanvasRepo()
	bus := &fakeEventBus{}
	return NewModificationApplier(repo, bus, zap.NewNop()), repo, bus
}

func TestParseResponse_RejectsNonJSON(t *testing.T) {
	applier, _, _ := newApplierFixture(t)

	_, err := applier.ParseResponse("Sure! Here is the change you asked for.")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsMalformedResult(err))

	_, err = applier.ParseResponse(`{"changes": {"style":`)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsMalformedResult(err))
}

func TestParseResponse_AcceptsEnvelopeWithWhitespace(t *testing.T) {
	applier, _, _ := newApplierFixture(t)

	resp, err := applier.ParseResponse(`
		{"changes": {"style": {"color": "blue"}}, "message": "done"}`)
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Message)
	assert.Equal(t, "blue", resp.Changes.Style["color"])
}

func TestApply_StyleMergesKeyByKey(t *testing.T) {
	applier, repo, bus := newApplierFixture(t)
	canvas := mustCanvas(t, repo, applyTestUser)
	node := insertNode(t, canvas, "button", valueobjects.NodeID{})
	require.NoError(t, canvas.Update(node.ID(), valueobjects.Attributes{
		valueobjects.KeyStyle: map[string]interface{}{"color": "red", "padding": "4px"},
	}))
	canvas.MarkEventsAsCommitted()
	node.MarkEventsAsCommitted()

	result, err := applier.Apply(context.Background(), applyTestUser, node.ID(), &ModificationResponse{
		Changes: &ChangeSet{Style: valueobjects.Attributes{"color": "blue"}},
		Message: "recolored",
	})
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.False(t, result.KindChanged)

	style := node.Attributes().Style()
	assert.Equal(t, "blue", style["color"])
	assert.Equal(t, "4px", style["padding"], "untouched style keys must survive the merge")
	assert.Equal(t, 1, repo.saves)
	assert.Greater(t, bus.count(), 0)
}

func TestApply_PropsLandAtTopLevel(t *testing.T) {
	applier, repo, _ := newApplierFixture(t)
	canvas := mustCanvas(t, repo, applyTestUser)
	node := insertNode(t, canvas, "button", valueobjects.NodeID{})

	result, err := applier.Apply(context.Background(), applyTestUser, node.ID(), &ModificationResponse{
		Changes: &ChangeSet{Props: valueobjects.Attributes{"text": "Submit"}},
	})
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.Equal(t, "Submit", node.Attributes().Text())
}

func TestApply_TypeChangeSwapsKind(t *testing.T) {
	applier, repo, _ := newApplierFixture(t)
	canvas := mustCanvas(t, repo, applyTestUser)
	node := insertNode(t, canvas, "div", valueobjects.NodeID{})

	result, err := applier.Apply(context.Background(), applyTestUser, node.ID(), &ModificationResponse{
		Changes: &ChangeSet{Type: "card"},
	})
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.True(t, result.KindChanged)
	assert.Equal(t, "card", node.Kind())
}

func TestApply_NoDeltaIsReportedNoOp(t *testing.T) {
	applier, repo, bus := newApplierFixture(t)
	canvas := mustCanvas(t, repo, applyTestUser)
	node := insertNode(t, canvas, "button", valueobjects.NodeID{})

	result, err := applier.Apply(context.Background(), applyTestUser, node.ID(), &ModificationResponse{
		Message: "I could not determine a change",
	})
	require.NoError(t, err)

	assert.False(t, result.Applied)
	assert.Equal(t, "I could not determine a change", result.Message)
	assert.Equal(t, 0, repo.saves)
	assert.Equal(t, 0, bus.count())
}

func TestApply_ClarificationSkipsMutation(t *testing.T) {
	applier, repo, _ := newApplierFixture(t)
	canvas := mustCanvas(t, repo, applyTestUser)
	node := insertNode(t, canvas, "button", valueobjects.NodeID{})

	result, err := applier.Apply(context.Background(), applyTestUser, node.ID(), &ModificationResponse{
		Changes:            &ChangeSet{Style: valueobjects.Attributes{"color": "blue"}},
		Message:            "Which button did you mean?",
		NeedsClarification: true,
	})
	require.NoError(t, err)

	assert.False(t, result.Applied)
	assert.Empty(t, node.Attributes().Style()["color"])
	assert.Equal(t, 0, repo.saves)
}

func TestApply_UnknownTargetNode(t *testing.T) {
	applier, repo, _ := newApplierFixture(t)
	mustCanvas(t, repo, applyTestUser)

	_, err := applier.Apply(context.Background(), applyTestUser, valueobjects.NewNodeID(), &ModificationResponse{
		Changes: &ChangeSet{Props: valueobjects.Attributes{"text": "hi"}},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}
