package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagecraft-backend/domain/core/aggregates"
	"pagecraft-backend/domain/core/entities"
	"pagecraft-backend/domain/core/valueobjects"
)

func buildCanvas(t *testing.T) (*aggregates.Canvas, *entities.Node, *entities.Node, *entities.Node) {
	t.Helper()
	canvas, err := aggregates.NewCanvas("walker-user", "Walker Canvas")
	require.NoError(t, err)

	insert := func(kind string, parentID valueobjects.NodeID) *entities.Node {
		node, err := entities.NewNode(kind, valueobjects.Attributes{})
		require.NoError(t, err)
		require.NoError(t, canvas.Insert(node, parentID))
		return node
	}

	container := insert("div", valueobjects.NodeID{})
	button := insert("button", container.ID())
	card := insert("card", valueobjects.NodeID{})
	return canvas, container, button, card
}

func TestWalk_NestsChildrenUnderRoots(t *testing.T) {
	canvas, container, button, card := buildCanvas(t)

	forest := Walk(canvas, canvas.DefaultPage().ID())

	require.Len(t, forest, 2)
	assert.Equal(t, container.ID().String(), forest[0].NodeID)
	assert.Equal(t, 0, forest[0].Depth)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, button.ID().String(), forest[0].Children[0].NodeID)
	assert.Equal(t, 1, forest[0].Children[0].Depth)

	assert.Equal(t, card.ID().String(), forest[1].NodeID)
	assert.Empty(t, forest[1].Children)
}

func TestWalk_OtherPageIsEmpty(t *testing.T) {
	canvas, _, _, _ := buildCanvas(t)
	page, err := canvas.AddPage("About", "/about")
	require.NoError(t, err)

	assert.Empty(t, Walk(canvas, page.ID()))
}

func TestFlatten_ParentBeforeChild(t *testing.T) {
	canvas, container, button, card := buildCanvas(t)

	flat := Flatten(Walk(canvas, canvas.DefaultPage().ID()))

	require.Len(t, flat, 3)
	assert.Equal(t, container.ID().String(), flat[0].NodeID)
	assert.Equal(t, button.ID().String(), flat[1].NodeID)
	assert.Equal(t, card.ID().String(), flat[2].NodeID)
}
