package commands

import (
	"errors"

	"pagecraft-backend/domain/core/valueobjects"
)

// CreateNodeCommand creates a new node on the user's canvas, optionally
// nested under a parent. When Kind names a palette entry and no attributes
// are supplied, the catalog defaults are used.
type CreateNodeCommand struct {
	UserID      string                  `json:"user_id" validate:"required"`
	Kind        string                  `json:"kind" validate:"required,min=1,max=50"`
	Attributes  valueobjects.Attributes `json:"attributes"`
	ParentID    string                  `json:"parent_id" validate:"omitempty,uuid"`
	OwnerPageID string                  `json:"owner_page_id" validate:"omitempty,uuid"`

	// CreatedNodeID is populated by the handler for the caller
	CreatedNodeID string `json:"-"`
}

// Validate validates the command
func (cmd *CreateNodeCommand) Validate() error {
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	if cmd.Kind == "" {
		return errors.New("kind is required")
	}
	return nil
}

// UpdateNodeCommand merges attribute deltas into an existing node
type UpdateNodeCommand struct {
	UserID string                  `json:"user_id" validate:"required"`
	NodeID string                  `json:"node_id" validate:"required,uuid"`
	Delta  valueobjects.Attributes `json:"delta" validate:"required"`
	Kind   string                  `json:"kind" validate:"omitempty,min=1,max=50"`
}

// Validate validates the command
func (cmd *UpdateNodeCommand) Validate() error {
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	if cmd.NodeID == "" {
		return errors.New("node ID is required")
	}
	if len(cmd.Delta) == 0 && cmd.Kind == "" {
		return errors.New("delta or kind is required")
	}
	return nil
}

// ReparentNodeCommand changes a node's structural parent; an empty
// NewParentID detaches the node into a page root
type ReparentNodeCommand struct {
	UserID      string `json:"user_id" validate:"required"`
	NodeID      string `json:"node_id" validate:"required,uuid"`
	NewParentID string `json:"new_parent_id" validate:"omitempty,uuid"`
}

// Validate validates the command
func (cmd *ReparentNodeCommand) Validate() error {
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	if cmd.NodeID == "" {
		return errors.New("node ID is required")
	}
	return nil
}

// DeleteNodeCommand removes a node and cascades to its descendants
type DeleteNodeCommand struct {
	UserID string `json:"user_id" validate:"required"`
	NodeID string `json:"node_id" validate:"required,uuid"`
}

// Validate validates the command
func (cmd *DeleteNodeCommand) Validate() error {
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	if cmd.NodeID == "" {
		return errors.New("node ID is required")
	}
	return nil
}

// DuplicateNodeCommand clones a node and its subtree in place
type DuplicateNodeCommand struct {
	UserID string `json:"user_id" validate:"required"`
	NodeID string `json:"node_id" validate:"required,uuid"`

	// CreatedNodeID is populated by the handler for the caller
	CreatedNodeID string `json:"-"`
}

// Validate validates the command
func (cmd *DuplicateNodeCommand) Validate() error {
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	if cmd.NodeID == "" {
		return errors.New("node ID is required")
	}
	return nil
}
