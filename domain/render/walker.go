// Package render projects the visible node tree to a nested UI descriptor:
// each node becomes a visual primitive, emitted parent before child, ready
// for a client to paint without knowing anything about the domain model.
package render

import (
	"pagecraft-backend/domain/core/aggregates"
	"pagecraft-backend/domain/core/entities"
	"pagecraft-backend/domain/core/valueobjects"
)

// Descriptor is one element of the nested UI descriptor tree
type Descriptor struct {
	NodeID     string                  `json:"nodeId"`
	Kind       string                  `json:"kind"`
	Attributes valueobjects.Attributes `json:"attributes"`
	Depth      int                     `json:"depth"`
	Children   []*Descriptor           `json:"children"`
}

// Walk builds the descriptor forest for the active page. Roots follow the
// canvas's clamping rule; children are attached in insertion order.
func Walk(canvas *aggregates.Canvas, activePageID valueobjects.PageID) []*Descriptor {
	visible := canvas.VisibleNodes(activePageID)

	inSet := make(map[valueobjects.NodeID]bool, len(visible))
	childrenOf := make(map[valueobjects.NodeID][]*entities.Node)
	for _, node := range visible {
		inSet[node.ID()] = true
	}
	for _, node := range visible {
		parent := node.ParentID()
		if !parent.IsZero() && inSet[parent] {
			childrenOf[parent] = append(childrenOf[parent], node)
		}
	}

	descriptors := []*Descriptor{}
	for _, root := range canvas.ListRoots(activePageID) {
		descriptors = append(descriptors, build(root, childrenOf, 0))
	}
	return descriptors
}

// build emits the parent descriptor first, then each child subtree
func build(node *entities.Node, childrenOf map[valueobjects.NodeID][]*entities.Node, depth int) *Descriptor {
	desc := &Descriptor{
		NodeID:     node.ID().String(),
		Kind:       node.Kind(),
		Attributes: node.Attributes(),
		Depth:      depth,
		Children:   []*Descriptor{},
	}
	for _, child := range childrenOf[node.ID()] {
		desc.Children = append(desc.Children, build(child, childrenOf, depth+1))
	}
	return desc
}

// Flatten converts a descriptor forest into a flat draw-list preserving
// parent-before-child order
func Flatten(forest []*Descriptor) []*Descriptor {
	flat := []*Descriptor{}
	stack := make([]*Descriptor, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, forest[i])
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		flat = append(flat, top)
		for i := len(top.Children) - 1; i >= 0; i-- {
			stack = append(stack, top.Children[i])
		}
	}
	return flat
}
