package aggregates

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagecraft-backend/domain/core/entities"
	"pagecraft-backend/domain/core/valueobjects"
	pkgerrors "pagecraft-backend/pkg/errors"
)

func newTestCanvas(t *testing.T) *Canvas {
	t.Helper()
	canvas, err := NewCanvas("user-1", "Test Project")
	require.NoError(t, err)
	return canvas
}

func mustNode(t *testing.T, kind string) *entities.Node {
	t.Helper()
	node, err := entities.NewNode(kind, valueobjects.NewAttributes())
	require.NoError(t, err)
	return node
}

func TestNewCanvas_CreatesImplicitFirstPage(t *testing.T) {
	canvas := newTestCanvas(t)

	pages := canvas.Pages()
	require.Len(t, pages, 1)
	assert.Equal(t, "/", pages[0].Route())
	assert.Equal(t, canvas.DefaultPage().ID(), pages[0].ID())
}

func TestCanvas_Insert(t *testing.T) {
	t.Run("root insert", func(t *testing.T) {
		canvas := newTestCanvas(t)
		node := mustNode(t, "div")

		err := canvas.Insert(node, valueobjects.NodeID{})

		require.NoError(t, err)
		assert.True(t, canvas.HasNode(node.ID()))
		assert.True(t, node.IsRoot())
	})

	t.Run("nested insert", func(t *testing.T) {
		canvas := newTestCanvas(t)
		parent := mustNode(t, "div")
		child := mustNode(t, "button")
		require.NoError(t, canvas.Insert(parent, valueobjects.NodeID{}))

		err := canvas.Insert(child, parent.ID())

		require.NoError(t, err)
		assert.Equal(t, parent.ID(), child.ParentID())
	})

	t.Run("missing parent is rejected", func(t *testing.T) {
		canvas := newTestCanvas(t)
		node := mustNode(t, "button")

		err := canvas.Insert(node, valueobjects.NewNodeID())

		assert.True(t, pkgerrors.IsInvalidParent(err))
		assert.False(t, canvas.HasNode(node.ID()))
	})

	t.Run("duplicate insert conflicts", func(t *testing.T) {
		canvas := newTestCanvas(t)
		node := mustNode(t, "div")
		require.NoError(t, canvas.Insert(node, valueobjects.NodeID{}))

		err := canvas.Insert(node, valueobjects.NodeID{})

		assert.True(t, pkgerrors.IsConflict(err))
	})
}

func TestCanvas_Update_MergesStyleKeyByKey(t *testing.T) {
	canvas := newTestCanvas(t)
	node := mustNode(t, "button")
	require.NoError(t, canvas.Insert(node, valueobjects.NodeID{}))

	require.NoError(t, canvas.Update(node.ID(), valueobjects.Attributes{
		"style": map[string]interface{}{"color": "red", "padding": "8px"},
	}))
	require.NoError(t, canvas.Update(node.ID(), valueobjects.Attributes{
		"style": map[string]interface{}{"fontSize": "14px"},
	}))

	style := node.Attributes().Style()
	assert.Equal(t, "red", style["color"], "unrelated style keys must survive a partial update")
	assert.Equal(t, "8px", style["padding"])
	assert.Equal(t, "14px", style["fontSize"])
}

func TestCanvas_Update_UnknownNode(t *testing.T) {
	canvas := newTestCanvas(t)

	err := canvas.Update(valueobjects.NewNodeID(), valueobjects.Attributes{"text": "hi"})

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestCanvas_Reparent(t *testing.T) {
	t.Run("into another container", func(t *testing.T) {
		canvas := newTestCanvas(t)
		a := mustNode(t, "div")
		b := mustNode(t, "div")
		require.NoError(t, canvas.Insert(a, valueobjects.NodeID{}))
		require.NoError(t, canvas.Insert(b, valueobjects.NodeID{}))

		require.NoError(t, canvas.Reparent(b.ID(), a.ID()))

		assert.Equal(t, a.ID(), b.ParentID())
	})

	t.Run("to root", func(t *testing.T) {
		canvas := newTestCanvas(t)
		a := mustNode(t, "div")
		b := mustNode(t, "button")
		require.NoError(t, canvas.Insert(a, valueobjects.NodeID{}))
		require.NoError(t, canvas.Insert(b, a.ID()))

		require.NoError(t, canvas.Reparent(b.ID(), valueobjects.NodeID{}))

		assert.True(t, b.IsRoot())
	})

	t.Run("onto itself is a cycle", func(t *testing.T) {
		canvas := newTestCanvas(t)
		a := mustNode(t, "div")
		require.NoError(t, canvas.Insert(a, valueobjects.NodeID{}))

		err := canvas.Reparent(a.ID(), a.ID())

		assert.True(t, pkgerrors.IsCycleDetected(err))
	})

	t.Run("under own descendant is a cycle", func(t *testing.T) {
		canvas := newTestCanvas(t)
		a := mustNode(t, "div")
		b := mustNode(t, "div")
		c := mustNode(t, "div")
		require.NoError(t, canvas.Insert(a, valueobjects.NodeID{}))
		require.NoError(t, canvas.Insert(b, a.ID()))
		require.NoError(t, canvas.Insert(c, b.ID()))

		err := canvas.Reparent(a.ID(), c.ID())

		assert.True(t, pkgerrors.IsCycleDetected(err))
		assert.True(t, a.IsRoot(), "rejected reparent must leave the tree unchanged")
		require.NoError(t, canvas.Validate())
	})
}

// Random reparent sequences must never produce a node that is its own
// ancestor, no matter how the individual calls succeed or fail.
func TestCanvas_Reparent_RandomSequencesStayAcyclic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	canvas := newTestCanvas(t)

	nodes := make([]*entities.Node, 0, 25)
	for i := 0; i < 25; i++ {
		node := mustNode(t, "div")
		parent := valueobjects.NodeID{}
		if len(nodes) > 0 && rng.Intn(2) == 0 {
			parent = nodes[rng.Intn(len(nodes))].ID()
		}
		require.NoError(t, canvas.Insert(node, parent))
		nodes = append(nodes, node)
	}

	for i := 0; i < 500; i++ {
		src := nodes[rng.Intn(len(nodes))]
		var target valueobjects.NodeID
		if rng.Intn(10) != 0 {
			target = nodes[rng.Intn(len(nodes))].ID()
		}

		err := canvas.Reparent(src.ID(), target)
		if err != nil {
			assert.True(t, pkgerrors.IsCycleDetected(err) || pkgerrors.IsInvalidParent(err))
		}
		require.NoError(t, canvas.Validate(), "iteration %d corrupted the tree", i)
	}
}

func TestCanvas_Delete_CascadesExactlyTheSubtree(t *testing.T) {
	canvas := newTestCanvas(t)
	a := mustNode(t, "div")
	b := mustNode(t, "form")
	c := mustNode(t, "input")
	unrelated := mustNode(t, "button")
	require.NoError(t, canvas.Insert(a, valueobjects.NodeID{}))
	require.NoError(t, canvas.Insert(b, a.ID()))
	require.NoError(t, canvas.Insert(c, b.ID()))
	require.NoError(t, canvas.Insert(unrelated, valueobjects.NodeID{}))

	require.NoError(t, canvas.Delete(a.ID()))

	assert.False(t, canvas.HasNode(a.ID()))
	assert.False(t, canvas.HasNode(b.ID()))
	assert.False(t, canvas.HasNode(c.ID()))
	assert.True(t, canvas.HasNode(unrelated.ID()), "delete must not touch nodes outside the subtree")
	assert.Equal(t, 1, canvas.NodeCount())
}

func TestCanvas_VisibleNodes_DefaultPageRule(t *testing.T) {
	canvas := newTestCanvas(t)
	second, err := canvas.AddPage("About", "/about")
	require.NoError(t, err)

	legacy := mustNode(t, "div") // no explicit owner page
	require.NoError(t, canvas.Insert(legacy, valueobjects.NodeID{}))

	owned := mustNode(t, "card")
	owned.AssignToPage(second.ID())
	require.NoError(t, canvas.Insert(owned, valueobjects.NodeID{}))

	firstPageID := canvas.DefaultPage().ID()

	onFirst := canvas.VisibleNodes(firstPageID)
	require.Len(t, onFirst, 1)
	assert.Equal(t, legacy.ID(), onFirst[0].ID(), "ownerless node binds to the first page")

	onSecond := canvas.VisibleNodes(second.ID())
	require.Len(t, onSecond, 1)
	assert.Equal(t, owned.ID(), onSecond[0].ID())
}

func TestCanvas_ListRoots_ClampsOrphanedSubtrees(t *testing.T) {
	canvas := newTestCanvas(t)
	second, err := canvas.AddPage("About", "/about")
	require.NoError(t, err)

	parent := mustNode(t, "div") // stays on the first page
	require.NoError(t, canvas.Insert(parent, valueobjects.NodeID{}))

	child := mustNode(t, "card")
	child.AssignToPage(second.ID())
	require.NoError(t, canvas.Insert(child, parent.ID()))

	roots := canvas.ListRoots(second.ID())

	require.Len(t, roots, 1)
	assert.Equal(t, child.ID(), roots[0].ID(), "a visible node whose parent is filtered out is clamped to a root")
}

func TestCanvas_RemovePage(t *testing.T) {
	t.Run("last page can never be deleted", func(t *testing.T) {
		canvas := newTestCanvas(t)

		err := canvas.RemovePage(canvas.DefaultPage().ID())

		assert.True(t, pkgerrors.IsConflict(err))
		assert.Len(t, canvas.Pages(), 1)
	})

	t.Run("cascades explicitly owned nodes, spares legacy ones", func(t *testing.T) {
		canvas := newTestCanvas(t)
		second, err := canvas.AddPage("About", "/about")
		require.NoError(t, err)

		legacy := mustNode(t, "div")
		require.NoError(t, canvas.Insert(legacy, valueobjects.NodeID{}))

		owned := mustNode(t, "card")
		owned.AssignToPage(second.ID())
		require.NoError(t, canvas.Insert(owned, valueobjects.NodeID{}))

		require.NoError(t, canvas.RemovePage(second.ID()))

		assert.Len(t, canvas.Pages(), 1)
		assert.False(t, canvas.HasNode(owned.ID()))
		assert.True(t, canvas.HasNode(legacy.ID()))
	})

	t.Run("owned chain under a non-owned parent deletes whole, not halfway", func(t *testing.T) {
		canvas := newTestCanvas(t)
		second, err := canvas.AddPage("About", "/about")
		require.NoError(t, err)

		shared := mustNode(t, "div")
		require.NoError(t, canvas.Insert(shared, valueobjects.NodeID{}))

		form := mustNode(t, "form")
		form.AssignToPage(second.ID())
		require.NoError(t, canvas.Insert(form, shared.ID()))

		field := mustNode(t, "input")
		field.AssignToPage(second.ID())
		require.NoError(t, canvas.Insert(field, form.ID()))

		require.NoError(t, canvas.RemovePage(second.ID()))

		assert.Len(t, canvas.Pages(), 1)
		assert.True(t, canvas.HasNode(shared.ID()))
		assert.False(t, canvas.HasNode(form.ID()))
		assert.False(t, canvas.HasNode(field.ID()))
		require.NoError(t, canvas.Validate())
	})
}

func TestCanvas_DuplicateSubtree(t *testing.T) {
	canvas := newTestCanvas(t)
	form := mustNode(t, "form")
	field := mustNode(t, "input")
	require.NoError(t, canvas.Insert(form, valueobjects.NodeID{}))
	require.NoError(t, canvas.Insert(field, form.ID()))

	cloneID, err := canvas.DuplicateSubtree(form.ID())

	require.NoError(t, err)
	assert.NotEqual(t, form.ID(), cloneID)
	clone, err := canvas.GetNode(cloneID)
	require.NoError(t, err)
	assert.Equal(t, "form", clone.Kind())

	children, err := canvas.ListChildren(cloneID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "input", children[0].Kind())
	assert.Equal(t, 4, canvas.NodeCount())
	require.NoError(t, canvas.Validate())
}

func TestCanvas_ListChildren_InsertionOrder(t *testing.T) {
	canvas := newTestCanvas(t)
	parent := mustNode(t, "div")
	require.NoError(t, canvas.Insert(parent, valueobjects.NodeID{}))

	first := mustNode(t, "button")
	second := mustNode(t, "input")
	require.NoError(t, canvas.Insert(first, parent.ID()))
	require.NoError(t, canvas.Insert(second, parent.ID()))

	children, err := canvas.ListChildren(parent.ID())

	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, first.ID(), children[0].ID())
	assert.Equal(t, second.ID(), children[1].ID())
}
