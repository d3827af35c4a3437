package events

import (
	"time"

	"pagecraft-backend/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Node events

// NodeInserted is raised when a node is added to the canvas
type NodeInserted struct {
	BaseEvent
	NodeID   valueobjects.NodeID `json:"node_id"`
	Kind     string              `json:"kind"`
	ParentID valueobjects.NodeID `json:"parent_id,omitempty"`
}

// NewNodeInserted creates a NodeInserted event
func NewNodeInserted(nodeID valueobjects.NodeID, kind string, parentID valueobjects.NodeID, timestamp time.Time) NodeInserted {
	return NodeInserted{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "node.inserted",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID:   nodeID,
		Kind:     kind,
		ParentID: parentID,
	}
}

// NodeAttributesUpdated is raised when attribute deltas are merged into a node
type NodeAttributesUpdated struct {
	BaseEvent
	NodeID valueobjects.NodeID     `json:"node_id"`
	Delta  valueobjects.Attributes `json:"delta"`
}

// NewNodeAttributesUpdated creates a NodeAttributesUpdated event
func NewNodeAttributesUpdated(nodeID valueobjects.NodeID, delta valueobjects.Attributes, timestamp time.Time) NodeAttributesUpdated {
	return NodeAttributesUpdated{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "node.attributes_updated",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID: nodeID,
		Delta:  delta,
	}
}

// NodeReparented is raised when a node's structural parent changes
type NodeReparented struct {
	BaseEvent
	NodeID      valueobjects.NodeID `json:"node_id"`
	OldParentID valueobjects.NodeID `json:"old_parent_id,omitempty"`
	NewParentID valueobjects.NodeID `json:"new_parent_id,omitempty"`
}

// NewNodeReparented creates a NodeReparented event
func NewNodeReparented(nodeID, oldParentID, newParentID valueobjects.NodeID, timestamp time.Time) NodeReparented {
	return NodeReparented{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "node.reparented",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID:      nodeID,
		OldParentID: oldParentID,
		NewParentID: newParentID,
	}
}

// NodeKindChanged is raised when a node's element archetype changes
type NodeKindChanged struct {
	BaseEvent
	NodeID  valueobjects.NodeID `json:"node_id"`
	OldKind string              `json:"old_kind"`
	NewKind string              `json:"new_kind"`
}

// NewNodeKindChanged creates a NodeKindChanged event
func NewNodeKindChanged(nodeID valueobjects.NodeID, oldKind, newKind string, timestamp time.Time) NodeKindChanged {
	return NodeKindChanged{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "node.kind_changed",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID:  nodeID,
		OldKind: oldKind,
		NewKind: newKind,
	}
}

// NodeDeleted is raised for the node a delete was requested on and for every
// cascaded descendant
type NodeDeleted struct {
	BaseEvent
	NodeID   valueobjects.NodeID `json:"node_id"`
	Cascaded bool                `json:"cascaded"`
}

// NewNodeDeleted creates a NodeDeleted event
func NewNodeDeleted(nodeID valueobjects.NodeID, cascaded bool, timestamp time.Time) NodeDeleted {
	return NodeDeleted{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "node.deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID:   nodeID,
		Cascaded: cascaded,
	}
}

// Page events

// PageCreated is raised when a page is added to the canvas
type PageCreated struct {
	BaseEvent
	PageID valueobjects.PageID `json:"page_id"`
	Name   string              `json:"name"`
	Route  string              `json:"route"`
}

// NewPageCreated creates a PageCreated event
func NewPageCreated(pageID valueobjects.PageID, name, route string, timestamp time.Time) PageCreated {
	return PageCreated{
		BaseEvent: BaseEvent{
			AggregateID: pageID.String(),
			EventType:   "page.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		PageID: pageID,
		Name:   name,
		Route:  route,
	}
}

// PageDeleted is raised when a page is removed from the canvas
type PageDeleted struct {
	BaseEvent
	PageID valueobjects.PageID `json:"page_id"`
}

// NewPageDeleted creates a PageDeleted event
func NewPageDeleted(pageID valueobjects.PageID, timestamp time.Time) PageDeleted {
	return PageDeleted{
		BaseEvent: BaseEvent{
			AggregateID: pageID.String(),
			EventType:   "page.deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		PageID: pageID,
	}
}
