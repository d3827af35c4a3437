package entities

import (
	"strings"
	"time"

	"pagecraft-backend/domain/config"
	"pagecraft-backend/domain/core/valueobjects"
	"pagecraft-backend/domain/events"
	pkgerrors "pagecraft-backend/pkg/errors"
)

// Node is one UI element instance on the canvas.
// This is a rich domain model with encapsulated business logic; structural
// invariants across nodes (acyclicity) live in the Canvas aggregate.
type Node struct {
	id          valueobjects.NodeID
	kind        string
	attributes  valueobjects.Attributes
	ownerPageID valueobjects.PageID // zero value means "belongs to the first page"
	parentID    valueobjects.NodeID // zero value means page root
	createdAt   time.Time
	updatedAt   time.Time
	version     int

	events []events.DomainEvent
}

// NewNode creates a new node with business rule validation
func NewNode(kind string, attributes valueobjects.Attributes) (*Node, error) {
	return NewNodeWithConfig(kind, attributes, config.DefaultDomainConfig())
}

// NewNodeWithConfig creates a new node validated against configuration
func NewNodeWithConfig(kind string, attributes valueobjects.Attributes, cfg *config.DomainConfig) (*Node, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	kind = strings.TrimSpace(strings.ToLower(kind))
	if kind == "" {
		return nil, pkgerrors.NewValidationError("node kind cannot be empty")
	}
	if len(kind) > cfg.MaxKindLength {
		return nil, pkgerrors.NewValidationError("node kind exceeds maximum length")
	}
	if len(attributes) > cfg.MaxAttributesPerNode {
		return nil, pkgerrors.NewValidationError("too many attributes")
	}
	if len(attributes.Text()) > cfg.MaxTextLength {
		return nil, pkgerrors.NewValidationError("text payload exceeds maximum length")
	}

	now := time.Now()
	node := &Node{
		id:         valueobjects.NewNodeID(),
		kind:       kind,
		attributes: attributes.Clone(),
		createdAt:  now,
		updatedAt:  now,
		version:    1,
		events:     []events.DomainEvent{},
	}

	node.addEvent(events.NewNodeInserted(node.id, kind, valueobjects.NodeID{}, now))

	return node, nil
}

// ReconstructNode reconstructs a node from repository data with preserved
// identity and timestamps
func ReconstructNode(
	id valueobjects.NodeID,
	kind string,
	attributes valueobjects.Attributes,
	ownerPageID valueobjects.PageID,
	parentID valueobjects.NodeID,
	createdAt, updatedAt time.Time,
) (*Node, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node ID is required")
	}
	if kind == "" {
		return nil, pkgerrors.NewValidationError("node kind cannot be empty")
	}

	return &Node{
		id:          id,
		kind:        kind,
		attributes:  attributes.Clone(),
		ownerPageID: ownerPageID,
		parentID:    parentID,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		version:     1,
		events:      []events.DomainEvent{},
	}, nil
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// Kind returns the element archetype tag ("div", "button", ...)
func (n *Node) Kind() string {
	return n.kind
}

// Attributes returns a copy of the node's attribute bag
func (n *Node) Attributes() valueobjects.Attributes {
	return n.attributes.Clone()
}

// ParentID returns the structural parent reference; zero for page roots
func (n *Node) ParentID() valueobjects.NodeID {
	return n.parentID
}

// IsRoot reports whether the node has no structural parent
func (n *Node) IsRoot() bool {
	return n.parentID.IsZero()
}

// OwnerPageID returns the page assignment; zero means the node predates
// multi-page support and binds to the first page
func (n *Node) OwnerPageID() valueobjects.PageID {
	return n.ownerPageID
}

// Version returns the node's version counter
func (n *Node) Version() int {
	return n.version
}

// CreatedAt returns when the node was created
func (n *Node) CreatedAt() time.Time {
	return n.createdAt
}

// UpdatedAt returns when the node was last updated
func (n *Node) UpdatedAt() time.Time {
	return n.updatedAt
}

// AssignToPage stamps an explicit page assignment
func (n *Node) AssignToPage(pageID valueobjects.PageID) {
	if n.ownerPageID.Equals(pageID) {
		return
	}
	n.ownerPageID = pageID
	n.updatedAt = time.Now()
}

// UpdateAttributes merges attribute deltas into the node. The style
// sub-mapping is merged key by key, not replaced wholesale.
func (n *Node) UpdateAttributes(delta valueobjects.Attributes) error {
	if len(delta) == 0 {
		return nil
	}

	merged := n.attributes.Merge(delta)
	if merged.Equals(n.attributes) {
		return nil
	}

	n.attributes = merged
	n.updatedAt = time.Now()
	n.version++

	n.addEvent(events.NewNodeAttributesUpdated(n.id, delta.Clone(), n.updatedAt))

	return nil
}

// ChangeKind swaps the element archetype, keeping attributes intact
func (n *Node) ChangeKind(kind string) error {
	kind = strings.TrimSpace(strings.ToLower(kind))
	if kind == "" {
		return pkgerrors.NewValidationError("node kind cannot be empty")
	}
	if kind == n.kind {
		return nil
	}

	oldKind := n.kind
	n.kind = kind
	n.updatedAt = time.Now()
	n.version++

	n.addEvent(events.NewNodeKindChanged(n.id, oldKind, kind, n.updatedAt))

	return nil
}

// SetParent rewires the structural parent reference. Callers must go through
// the Canvas aggregate, which performs the cycle check before calling this.
func (n *Node) SetParent(parentID valueobjects.NodeID) {
	if n.parentID.Equals(parentID) {
		return
	}

	oldParent := n.parentID
	n.parentID = parentID
	n.updatedAt = time.Now()
	n.version++

	n.addEvent(events.NewNodeReparented(n.id, oldParent, parentID, n.updatedAt))
}

// GetUncommittedEvents returns all uncommitted domain events
func (n *Node) GetUncommittedEvents() []events.DomainEvent {
	return n.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (n *Node) MarkEventsAsCommitted() {
	n.events = []events.DomainEvent{}
}

func (n *Node) addEvent(event events.DomainEvent) {
	n.events = append(n.events, event)
}
