package commands

import "errors"

// CreatePageCommand adds a page to the user's canvas. Route must be
// slash-prefixed and unique within the canvas.
type CreatePageCommand struct {
	UserID string `json:"user_id" validate:"required"`
	Name   string `json:"name" validate:"required,min=1,max=100"`
	Route  string `json:"route" validate:"required,routepath"`

	// CreatedPageID is populated by the handler for the caller
	CreatedPageID string `json:"-"`
}

// Validate validates the command
func (cmd *CreatePageCommand) Validate() error {
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	if cmd.Name == "" {
		return errors.New("name is required")
	}
	if cmd.Route == "" {
		return errors.New("route is required")
	}
	return nil
}

// RenamePageCommand updates a page's display name
type RenamePageCommand struct {
	UserID string `json:"user_id" validate:"required"`
	PageID string `json:"page_id" validate:"required,uuid"`
	Name   string `json:"name" validate:"required,min=1,max=100"`
}

// Validate validates the command
func (cmd *RenamePageCommand) Validate() error {
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	if cmd.PageID == "" {
		return errors.New("page ID is required")
	}
	if cmd.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// DeletePageCommand removes a page and cascades nodes explicitly bound
// to it. The last remaining page cannot be deleted.
type DeletePageCommand struct {
	UserID string `json:"user_id" validate:"required"`
	PageID string `json:"page_id" validate:"required,uuid"`
}

// Validate validates the command
func (cmd *DeletePageCommand) Validate() error {
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	if cmd.PageID == "" {
		return errors.New("page ID is required")
	}
	return nil
}
