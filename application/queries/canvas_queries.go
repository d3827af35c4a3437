package queries

import (
	"errors"

	"pagecraft-backend/domain/core/valueobjects"
	"pagecraft-backend/domain/render"
)

// NodeView is the read-side projection of a canvas node
type NodeView struct {
	ID          string                  `json:"id"`
	Kind        string                  `json:"kind"`
	Attributes  valueobjects.Attributes `json:"attributes"`
	ParentID    string                  `json:"parentId,omitempty"`
	OwnerPageID string                  `json:"ownerPageId,omitempty"`
	Version     int                     `json:"version"`
	CreatedAt   string                  `json:"createdAt"`
	UpdatedAt   string                  `json:"updatedAt"`
}

// PageView is the read-side projection of a page
type PageView struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Route     string   `json:"route"`
	NodeIDs   []string `json:"nodeIds"`
	CreatedAt string   `json:"createdAt"`
}

// GetCanvasQuery fetches the whole canvas for a user
type GetCanvasQuery struct {
	UserID string
}

// Validate validates the GetCanvasQuery
func (q GetCanvasQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}

// GetCanvasResult represents the full canvas state
type GetCanvasResult struct {
	CanvasID string     `json:"canvasId"`
	Name     string     `json:"name"`
	Nodes    []NodeView `json:"nodes"`
	Pages    []PageView `json:"pages"`
	Version  int        `json:"version"`
}

// VisibleNodesQuery fetches the nodes shown for an active page. An empty
// PageID means the canvas's first page.
type VisibleNodesQuery struct {
	UserID string
	PageID string
}

// Validate validates the VisibleNodesQuery
func (q VisibleNodesQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}

// VisibleNodesResult holds the nodes visible on a page
type VisibleNodesResult struct {
	PageID string     `json:"pageId"`
	Nodes  []NodeView `json:"nodes"`
	Roots  []string   `json:"roots"`
}

// ListChildrenQuery fetches a node's direct children in insertion order
type ListChildrenQuery struct {
	UserID string
	NodeID string
}

// Validate validates the ListChildrenQuery
func (q ListChildrenQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	if q.NodeID == "" {
		return errors.New("node ID is required")
	}
	return nil
}

// ListChildrenResult holds the direct children of a node
type ListChildrenResult struct {
	NodeID   string     `json:"nodeId"`
	Children []NodeView `json:"children"`
}

// RenderTreeQuery builds the renderable descriptor forest for a page
type RenderTreeQuery struct {
	UserID string
	PageID string
}

// Validate validates the RenderTreeQuery
func (q RenderTreeQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}

// RenderTreeResult holds the descriptor forest for a page
type RenderTreeResult struct {
	PageID string               `json:"pageId"`
	Tree   []*render.Descriptor `json:"tree"`
}
