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

const genTestUser = "gen-user"

func newGenerationFixture(t *testing.T) (*GenerationService, *fakeCanvasRepo, *fakeEventBus) {
	t.Helper()
	repo := newFakeCanvasRepo()
	bus := &fakeEventBus{}
	return NewGenerationService(repo, bus, zap.NewNop()), repo, bus
}

func TestParseGeneratedNodes_SingleObject(t *testing.T) {
	svc, _, _ := newGenerationFixture(t)

	nodes, err := svc.ParseGeneratedNodes(`{"type": "card", "props": {"text": "Hello"}}`)
	require.NoError(t, err)

	require.Len(t, nodes, 1)
	assert.Equal(t, "card", nodes[0].Type)
	assert.Equal(t, "Hello", nodes[0].Props["text"])
}

func TestParseGeneratedNodes_ArrayWithChildren(t *testing.T) {
	svc, _, _ := newGenerationFixture(t)

	nodes, err := svc.ParseGeneratedNodes(`[
		{"type": "navbar"},
		{"type": "div", "children": [{"type": "button", "props": {"text": "Go"}}]}
	]`)
	require.NoError(t, err)

	require.Len(t, nodes, 2)
	require.Len(t, nodes[1].Children, 1)
	assert.Equal(t, "button", nodes[1].Children[0].Type)
}

func TestParseGeneratedNodes_Malformed(t *testing.T) {
	svc, _, _ := newGenerationFixture(t)

	for name, raw := range map[string]string{
		"plain text":         "Here is your component!",
		"empty":              "   ",
		"empty array":        "[]",
		"missing type":       `{"props": {"text": "no type"}}`,
		"child missing type": `{"type": "div", "children": [{"props": {}}]}`,
		"truncated":          `[{"type": "div"}`,
	} {
		_, err := svc.ParseGeneratedNodes(raw)
		require.Error(t, err, "case: %s", name)
		assert.True(t, pkgerrors.IsMalformedResult(err), "case: %s", name)
	}
}

func TestMaterializeComponent_UnderParent(t *testing.T) {
	svc, repo, bus := newGenerationFixture(t)
	canvas := mustCanvas(t, repo, genTestUser)
	container := insertNode(t, canvas, "div", valueobjects.NodeID{})

	nodes, err := svc.ParseGeneratedNodes(`{
		"type": "form",
		"style": {"gap": "12px"},
		"children": [
			{"type": "input", "props": {"placeholder": "Email"}},
			{"type": "button", "props": {"text": "Sign up"}}
		]
	}`)
	require.NoError(t, err)

	result, err := svc.MaterializeComponent(context.Background(), genTestUser, nodes, container.ID())
	require.NoError(t, err)

	require.Len(t, result.NodeIDs, 1)
	assert.Empty(t, result.PageID)

	rootID, err := valueobjects.NewNodeIDFromString(result.NodeIDs[0])
	require.NoError(t, err)
	root, err := canvas.GetNode(rootID)
	require.NoError(t, err)
	assert.Equal(t, "form", root.Kind())
	assert.True(t, root.ParentID().Equals(container.ID()))
	assert.Equal(t, "12px", root.Attributes().Style()["gap"])

	children, err := canvas.ListChildren(rootID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "input", children[0].Kind())
	assert.Equal(t, "button", children[1].Kind())

	assert.Equal(t, 1, repo.saves)
	assert.Greater(t, bus.count(), 0)
}

func TestMaterializeComponent_WithoutParentCreatesRoots(t *testing.T) {
	svc, repo, _ := newGenerationFixture(t)
	canvas := mustCanvas(t, repo, genTestUser)

	nodes, err := svc.ParseGeneratedNodes(`[{"type": "navbar"}, {"type": "card"}]`)
	require.NoError(t, err)

	result, err := svc.MaterializeComponent(context.Background(), genTestUser, nodes, valueobjects.NodeID{})
	require.NoError(t, err)

	require.Len(t, result.NodeIDs, 2)
	for _, raw := range result.NodeIDs {
		id, err := valueobjects.NewNodeIDFromString(raw)
		require.NoError(t, err)
		node, err := canvas.GetNode(id)
		require.NoError(t, err)
		assert.True(t, node.IsRoot())
	}
}

func TestMaterializePage_BindsSectionsToNewPage(t *testing.T) {
	svc, repo, _ := newGenerationFixture(t)
	canvas := mustCanvas(t, repo, genTestUser)
	stray := insertNode(t, canvas, "button", valueobjects.NodeID{})

	nodes, err := svc.ParseGeneratedNodes(`[
		{"type": "navbar"},
		{"type": "div", "children": [{"type": "text"}]}
	]`)
	require.NoError(t, err)

	result, err := svc.MaterializePage(context.Background(), genTestUser, "Landing", "/landing", nodes)
	require.NoError(t, err)

	require.NotEmpty(t, result.PageID)
	page, err := canvas.GetPageByRoute("/landing")
	require.NoError(t, err)
	assert.Equal(t, page.ID().String(), result.PageID)

	require.Len(t, result.NodeIDs, 2)
	for _, raw := range result.NodeIDs {
		id, err := valueobjects.NewNodeIDFromString(raw)
		require.NoError(t, err)
		node, err := canvas.GetNode(id)
		require.NoError(t, err)
		assert.True(t, node.IsRoot())
		assert.True(t, node.OwnerPageID().Equals(page.ID()))
	}

	visible := canvas.VisibleNodes(page.ID())
	ids := make(map[string]bool, len(visible))
	for _, node := range visible {
		ids[node.ID().String()] = true
	}
	assert.True(t, ids[result.NodeIDs[0]])
	assert.False(t, ids[stray.ID().String()], "nodes on other pages stay filtered out")
}

func TestMaterializePage_DuplicateRouteFails(t *testing.T) {
	svc, repo, _ := newGenerationFixture(t)
	canvas := mustCanvas(t, repo, genTestUser)
	_, err := canvas.AddPage("Existing", "/landing")
	require.NoError(t, err)
	canvas.MarkEventsAsCommitted()

	nodes, err := svc.ParseGeneratedNodes(`{"type": "navbar"}`)
	require.NoError(t, err)

	_, err = svc.MaterializePage(context.Background(), genTestUser, "Landing", "/landing", nodes)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
	assert.Equal(t, 0, repo.saves)
}
