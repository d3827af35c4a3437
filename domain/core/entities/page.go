package entities

import (
	"strings"
	"time"

	"pagecraft-backend/domain/config"
	"pagecraft-backend/domain/core/valueobjects"
	pkgerrors "pagecraft-backend/pkg/errors"
)

// Page is a named, routable canvas. The nodeIDs list is display ordering
// only; the authoritative ownership test is Node.OwnerPageID with the
// first-page fallback.
type Page struct {
	id        valueobjects.PageID
	name      string
	route     string
	nodeIDs   []valueobjects.NodeID
	createdAt time.Time
	updatedAt time.Time
}

// NewPage creates a page with a validated slash-prefixed route
func NewPage(name, route string) (*Page, error) {
	return NewPageWithConfig(name, route, config.DefaultDomainConfig())
}

// NewPageWithConfig creates a page validated against configuration
func NewPageWithConfig(name, route string, cfg *config.DomainConfig) (*Page, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.NewValidationError("page name cannot be empty")
	}
	if len(name) > cfg.MaxPageNameLength {
		return nil, pkgerrors.NewValidationError("page name exceeds maximum length")
	}

	route = strings.TrimSpace(route)
	if !strings.HasPrefix(route, "/") {
		return nil, pkgerrors.NewValidationError("page route must be slash-prefixed")
	}
	if len(route) > cfg.MaxPageRouteLength {
		return nil, pkgerrors.NewValidationError("page route exceeds maximum length")
	}

	now := time.Now()
	return &Page{
		id:        valueobjects.NewPageID(),
		name:      name,
		route:     route,
		nodeIDs:   []valueobjects.NodeID{},
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructPage reconstructs a page from repository data
func ReconstructPage(id valueobjects.PageID, name, route string, nodeIDs []valueobjects.NodeID, createdAt, updatedAt time.Time) (*Page, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("page ID is required")
	}
	if name == "" || !strings.HasPrefix(route, "/") {
		return nil, pkgerrors.NewValidationError("page name and slash-prefixed route are required")
	}

	ids := make([]valueobjects.NodeID, len(nodeIDs))
	copy(ids, nodeIDs)

	return &Page{
		id:        id,
		name:      name,
		route:     route,
		nodeIDs:   ids,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

// ID returns the page's unique identifier
func (p *Page) ID() valueobjects.PageID {
	return p.id
}

// Name returns the page's display name
func (p *Page) Name() string {
	return p.name
}

// Route returns the slash-prefixed path
func (p *Page) Route() string {
	return p.route
}

// NodeIDs returns a copy of the display-order node list
func (p *Page) NodeIDs() []valueobjects.NodeID {
	ids := make([]valueobjects.NodeID, len(p.nodeIDs))
	copy(ids, p.nodeIDs)
	return ids
}

// CreatedAt returns when the page was created
func (p *Page) CreatedAt() time.Time {
	return p.createdAt
}

// UpdatedAt returns when the page was last updated
func (p *Page) UpdatedAt() time.Time {
	return p.updatedAt
}

// Rename changes the display name
func (p *Page) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return pkgerrors.NewValidationError("page name cannot be empty")
	}
	p.name = name
	p.updatedAt = time.Now()
	return nil
}

// AppendNode adds a node id to the display list if not already present
func (p *Page) AppendNode(id valueobjects.NodeID) {
	for _, existing := range p.nodeIDs {
		if existing.Equals(id) {
			return
		}
	}
	p.nodeIDs = append(p.nodeIDs, id)
	p.updatedAt = time.Now()
}

// RemoveNode drops a node id from the display list
func (p *Page) RemoveNode(id valueobjects.NodeID) {
	for i, existing := range p.nodeIDs {
		if existing.Equals(id) {
			p.nodeIDs = append(p.nodeIDs[:i], p.nodeIDs[i+1:]...)
			p.updatedAt = time.Now()
			return
		}
	}
}
