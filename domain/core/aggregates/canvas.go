package aggregates

import (
	"time"

	"github.com/google/uuid"

	"pagecraft-backend/domain/config"
	"pagecraft-backend/domain/core/entities"
	"pagecraft-backend/domain/core/valueobjects"
	"pagecraft-backend/domain/events"
	pkgerrors "pagecraft-backend/pkg/errors"
)

// CanvasID represents a unique canvas identifier
type CanvasID string

// NewCanvasID creates a new random CanvasID
func NewCanvasID() CanvasID {
	return CanvasID(uuid.New().String())
}

// String returns the string representation
func (id CanvasID) String() string {
	return string(id)
}

// Canvas is the aggregate root for the page being built. It owns every Node
// and Page for the lifetime of an editing session and is the single mutation
// entry point, so the parent relation can be kept acyclic at all times.
type Canvas struct {
	id        CanvasID
	userID    string
	name      string
	nodes     map[valueobjects.NodeID]*entities.Node
	order     []valueobjects.NodeID // insertion order, drives deterministic listings
	pages     []*entities.Page
	cfg       *config.DomainConfig
	createdAt time.Time
	updatedAt time.Time
	version   int
	events    []events.DomainEvent
}

// NewCanvas creates a canvas with its implicit first page ("page 0")
func NewCanvas(userID, name string) (*Canvas, error) {
	return NewCanvasWithConfig(userID, name, config.DefaultDomainConfig())
}

// NewCanvasWithConfig creates a canvas validated against configuration
func NewCanvasWithConfig(userID, name string, cfg *config.DomainConfig) (*Canvas, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID is required")
	}
	if name == "" {
		return nil, pkgerrors.NewValidationError("canvas name is required")
	}
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	firstPage, err := entities.NewPageWithConfig(cfg.DefaultPageName, cfg.DefaultPageRoute, cfg)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	canvas := &Canvas{
		id:        NewCanvasID(),
		userID:    userID,
		name:      name,
		nodes:     make(map[valueobjects.NodeID]*entities.Node),
		order:     []valueobjects.NodeID{},
		pages:     []*entities.Page{firstPage},
		cfg:       cfg,
		createdAt: now,
		updatedAt: now,
		version:   1,
		events:    []events.DomainEvent{},
	}

	canvas.addEvent(events.NewPageCreated(firstPage.ID(), firstPage.Name(), firstPage.Route(), now))

	return canvas, nil
}

// ReconstructCanvas recreates a canvas shell from stored data; nodes and
// pages are loaded through LoadNode/LoadPage by the repository
func ReconstructCanvas(id, userID, name string, cfg *config.DomainConfig, createdAt, updatedAt time.Time) (*Canvas, error) {
	if id == "" || userID == "" || name == "" {
		return nil, pkgerrors.NewValidationError("required fields missing for canvas reconstruction")
	}
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	return &Canvas{
		id:        CanvasID(id),
		userID:    userID,
		name:      name,
		nodes:     make(map[valueobjects.NodeID]*entities.Node),
		order:     []valueobjects.NodeID{},
		pages:     []*entities.Page{},
		cfg:       cfg,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   1,
		events:    []events.DomainEvent{},
	}, nil
}

// ID returns the canvas's unique identifier
func (c *Canvas) ID() CanvasID {
	return c.id
}

// UserID returns the owner's ID
func (c *Canvas) UserID() string {
	return c.userID
}

// Name returns the canvas's name
func (c *Canvas) Name() string {
	return c.name
}

// CreatedAt returns when the canvas was created
func (c *Canvas) CreatedAt() time.Time {
	return c.createdAt
}

// UpdatedAt returns when the canvas was last updated
func (c *Canvas) UpdatedAt() time.Time {
	return c.updatedAt
}

// Version returns the aggregate version counter
func (c *Canvas) Version() int {
	return c.version
}

// Config returns the domain configuration the canvas validates against
func (c *Canvas) Config() *config.DomainConfig {
	return c.cfg
}

// Node access

// GetNode retrieves a node by ID
func (c *Canvas) GetNode(id valueobjects.NodeID) (*entities.Node, error) {
	node, exists := c.nodes[id]
	if !exists {
		return nil, pkgerrors.NewNotFoundError("node " + id.String())
	}
	return node, nil
}

// HasNode checks if a node exists without error
func (c *Canvas) HasNode(id valueobjects.NodeID) bool {
	_, exists := c.nodes[id]
	return exists
}

// Nodes returns all nodes in insertion order
func (c *Canvas) Nodes() []*entities.Node {
	nodes := make([]*entities.Node, 0, len(c.order))
	for _, id := range c.order {
		nodes = append(nodes, c.nodes[id])
	}
	return nodes
}

// NodeCount returns the number of nodes on the canvas
func (c *Canvas) NodeCount() int {
	return len(c.nodes)
}

// Mutations

// Insert appends a new node, optionally nesting it under parentID.
// A zero parentID makes the node a page root.
func (c *Canvas) Insert(node *entities.Node, parentID valueobjects.NodeID) error {
	if node == nil {
		return pkgerrors.NewValidationError("node cannot be nil")
	}
	if _, exists := c.nodes[node.ID()]; exists {
		return pkgerrors.NewConflictError("node already exists on canvas")
	}
	if len(c.nodes) >= c.cfg.MaxNodesPerCanvas {
		return pkgerrors.NewValidationError("maximum nodes reached")
	}

	if !parentID.IsZero() {
		if _, exists := c.nodes[parentID]; !exists {
			return pkgerrors.NewInvalidParentError(parentID.String())
		}
	}

	c.nodes[node.ID()] = node
	c.order = append(c.order, node.ID())
	if !parentID.IsZero() {
		node.SetParent(parentID)
	}

	c.pageForNode(node).AppendNode(node.ID())
	c.touch()

	return nil
}

// Update merges attribute deltas into the targeted node. The style
// sub-mapping is merged key by key.
func (c *Canvas) Update(id valueobjects.NodeID, delta valueobjects.Attributes) error {
	node, exists := c.nodes[id]
	if !exists {
		return pkgerrors.NewNotFoundError("node " + id.String())
	}

	if err := node.UpdateAttributes(delta); err != nil {
		return err
	}
	c.touch()

	return nil
}

// ChangeKind swaps a node's element archetype
func (c *Canvas) ChangeKind(id valueobjects.NodeID, kind string) error {
	node, exists := c.nodes[id]
	if !exists {
		return pkgerrors.NewNotFoundError("node " + id.String())
	}

	if err := node.ChangeKind(kind); err != nil {
		return err
	}
	c.touch()

	return nil
}

// Reparent changes a node's structural parent. A zero newParentID detaches
// the node into a page root. Rejected with CycleDetected if newParentID is
// the node itself or any of its descendants; ancestry is checked by walking
// parent links upward from the candidate parent.
func (c *Canvas) Reparent(id, newParentID valueobjects.NodeID) error {
	node, exists := c.nodes[id]
	if !exists {
		return pkgerrors.NewNotFoundError("node " + id.String())
	}

	if newParentID.IsZero() {
		node.SetParent(valueobjects.NodeID{})
		c.touch()
		return nil
	}

	if _, exists := c.nodes[newParentID]; !exists {
		return pkgerrors.NewInvalidParentError(newParentID.String())
	}

	if id.Equals(newParentID) || c.IsAncestor(id, newParentID) {
		return pkgerrors.NewCycleDetectedError(id.String(), newParentID.String())
	}

	node.SetParent(newParentID)
	c.touch()

	return nil
}

// Delete removes the node and, recursively, every descendant reachable via
// parent links (cascade delete)
func (c *Canvas) Delete(id valueobjects.NodeID) error {
	if _, exists := c.nodes[id]; !exists {
		return pkgerrors.NewNotFoundError("node " + id.String())
	}

	doomed := c.collectSubtree(id)
	now := time.Now()

	for i, victim := range doomed {
		delete(c.nodes, victim)
		c.removeFromOrder(victim)
		for _, page := range c.pages {
			page.RemoveNode(victim)
		}
		c.addEvent(events.NewNodeDeleted(victim, i > 0, now))
	}
	c.touch()

	return nil
}

// DuplicateSubtree clones a node and its whole subtree under the same
// parent, giving every clone a fresh ID
func (c *Canvas) DuplicateSubtree(id valueobjects.NodeID) (valueobjects.NodeID, error) {
	if _, exists := c.nodes[id]; !exists {
		return valueobjects.NodeID{}, pkgerrors.NewNotFoundError("node " + id.String())
	}

	mapping := make(map[valueobjects.NodeID]valueobjects.NodeID)
	for _, victim := range c.collectSubtree(id) {
		src := c.nodes[victim]
		clone, err := entities.NewNodeWithConfig(src.Kind(), src.Attributes(), c.cfg)
		if err != nil {
			return valueobjects.NodeID{}, err
		}
		if !src.OwnerPageID().IsZero() {
			clone.AssignToPage(src.OwnerPageID())
		}

		parent := src.ParentID()
		if victim.Equals(id) {
			// subtree root keeps the original's parent
		} else if mapped, ok := mapping[parent]; ok {
			parent = mapped
		}

		if err := c.Insert(clone, parent); err != nil {
			return valueobjects.NodeID{}, err
		}
		mapping[victim] = clone.ID()
	}

	return mapping[id], nil
}

// IsAncestor reports whether ancestorID is a (transitive) ancestor of
// nodeID, walking parent links upward until a root is reached
func (c *Canvas) IsAncestor(ancestorID, nodeID valueobjects.NodeID) bool {
	current := nodeID
	for steps := 0; steps <= len(c.nodes); steps++ {
		node, exists := c.nodes[current]
		if !exists {
			return false
		}
		parent := node.ParentID()
		if parent.IsZero() {
			return false
		}
		if parent.Equals(ancestorID) {
			return true
		}
		current = parent
	}
	return false
}

// Queries

// ListChildren returns the direct children of a node in insertion order
func (c *Canvas) ListChildren(id valueobjects.NodeID) ([]*entities.Node, error) {
	if _, exists := c.nodes[id]; !exists {
		return nil, pkgerrors.NewNotFoundError("node " + id.String())
	}

	children := []*entities.Node{}
	for _, candidate := range c.order {
		node := c.nodes[candidate]
		if node.ParentID().Equals(id) {
			children = append(children, node)
		}
	}
	return children, nil
}

// VisibleNodes projects the node list down to the nodes visible on the
// active page. A node with an explicit owner page is included iff it matches;
// a node without one is included iff the active page is the first page, the
// legacy rule that keeps pre-multi-page nodes rendering where they always did.
func (c *Canvas) VisibleNodes(activePageID valueobjects.PageID) []*entities.Node {
	defaultPage := c.DefaultPage()

	visible := []*entities.Node{}
	for _, id := range c.order {
		node := c.nodes[id]
		owner := node.OwnerPageID()
		if !owner.IsZero() {
			if owner.Equals(activePageID) {
				visible = append(visible, node)
			}
			continue
		}
		if defaultPage != nil && activePageID.Equals(defaultPage.ID()) {
			visible = append(visible, node)
		}
	}
	return visible
}

// ListRoots returns the rendering roots for a page: visible nodes with no
// parent, or whose parent falls outside the visible set (clamped to roots so
// orphaned subtrees don't disappear silently)
func (c *Canvas) ListRoots(activePageID valueobjects.PageID) []*entities.Node {
	visible := c.VisibleNodes(activePageID)
	inSet := make(map[valueobjects.NodeID]bool, len(visible))
	for _, node := range visible {
		inSet[node.ID()] = true
	}

	roots := []*entities.Node{}
	for _, node := range visible {
		if node.IsRoot() || !inSet[node.ParentID()] {
			roots = append(roots, node)
		}
	}
	return roots
}

// Pages

// Pages returns the ordered page list
func (c *Canvas) Pages() []*entities.Page {
	pages := make([]*entities.Page, len(c.pages))
	copy(pages, c.pages)
	return pages
}

// DefaultPage returns the first page, the implicit home of legacy nodes
func (c *Canvas) DefaultPage() *entities.Page {
	if len(c.pages) == 0 {
		return nil
	}
	return c.pages[0]
}

// GetPage retrieves a page by ID
func (c *Canvas) GetPage(id valueobjects.PageID) (*entities.Page, error) {
	for _, page := range c.pages {
		if page.ID().Equals(id) {
			return page, nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("page " + id.String())
}

// GetPageByRoute retrieves a page by its route
func (c *Canvas) GetPageByRoute(route string) (*entities.Page, error) {
	for _, page := range c.pages {
		if page.Route() == route {
			return page, nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("page with route " + route)
}

// AddPage creates a new page on the canvas
func (c *Canvas) AddPage(name, route string) (*entities.Page, error) {
	if len(c.pages) >= c.cfg.MaxPagesPerCanvas {
		return nil, pkgerrors.NewValidationError("maximum pages reached")
	}
	if c.cfg.RequireUniqueRoutes {
		for _, existing := range c.pages {
			if existing.Route() == route {
				return nil, pkgerrors.NewConflictError("a page with route " + route + " already exists")
			}
		}
	}

	page, err := entities.NewPageWithConfig(name, route, c.cfg)
	if err != nil {
		return nil, err
	}

	c.pages = append(c.pages, page)
	c.touch()
	c.addEvent(events.NewPageCreated(page.ID(), page.Name(), page.Route(), time.Now()))

	return page, nil
}

// RemovePage deletes a page and cascades to the nodes explicitly assigned to
// it. The last remaining page can never be deleted. Nodes without an
// explicit owner are left alone: they follow whichever page is first.
func (c *Canvas) RemovePage(id valueobjects.PageID) error {
	if len(c.pages) <= 1 {
		return pkgerrors.NewConflictError("at least one page must exist")
	}

	index := -1
	for i, page := range c.pages {
		if page.ID().Equals(id) {
			index = i
			break
		}
	}
	if index == -1 {
		return pkgerrors.NewNotFoundError("page " + id.String())
	}

	// Cascade delete the page's explicitly owned roots; descendants follow
	for _, node := range c.Nodes() {
		if !c.HasNode(node.ID()) {
			continue // already cascaded
		}
		if node.OwnerPageID().Equals(id) && node.IsRoot() {
			if err := c.Delete(node.ID()); err != nil {
				return err
			}
		}
	}
	// Sweep any remaining owned nodes whose parents lived elsewhere
	for _, node := range c.Nodes() {
		if !c.HasNode(node.ID()) {
			continue // already cascaded
		}
		if node.OwnerPageID().Equals(id) {
			if err := c.Delete(node.ID()); err != nil {
				return err
			}
		}
	}

	c.pages = append(c.pages[:index], c.pages[index+1:]...)
	c.touch()
	c.addEvent(events.NewPageDeleted(id, time.Now()))

	return nil
}

// Validate ensures canvas invariants: every parent reference resolves and
// no node is its own ancestor
func (c *Canvas) Validate() error {
	for id, node := range c.nodes {
		parent := node.ParentID()
		if parent.IsZero() {
			continue
		}
		if _, exists := c.nodes[parent]; !exists {
			return pkgerrors.NewInvalidParentError(parent.String())
		}
		if c.IsAncestor(id, id) {
			return pkgerrors.NewCycleDetectedError(id.String(), parent.String())
		}
	}
	if len(c.pages) == 0 {
		return pkgerrors.NewConflictError("at least one page must exist")
	}
	return nil
}

// Events

// GetUncommittedEvents returns all uncommitted domain events, including
// events raised on the owned nodes
func (c *Canvas) GetUncommittedEvents() []events.DomainEvent {
	all := make([]events.DomainEvent, len(c.events))
	copy(all, c.events)

	for _, id := range c.order {
		all = append(all, c.nodes[id].GetUncommittedEvents()...)
	}
	return all
}

// MarkEventsAsCommitted clears all uncommitted events
func (c *Canvas) MarkEventsAsCommitted() {
	c.events = []events.DomainEvent{}
	for _, node := range c.nodes {
		node.MarkEventsAsCommitted()
	}
}

// Repository loading hooks

// LoadNode places a reconstructed node into the aggregate without raising
// events; used by repositories only
func (c *Canvas) LoadNode(node *entities.Node) error {
	if node == nil {
		return pkgerrors.NewValidationError("node cannot be nil")
	}
	if _, exists := c.nodes[node.ID()]; exists {
		return pkgerrors.NewConflictError("node already loaded")
	}
	c.nodes[node.ID()] = node
	c.order = append(c.order, node.ID())
	return nil
}

// LoadPage places a reconstructed page into the aggregate without raising
// events; used by repositories only
func (c *Canvas) LoadPage(page *entities.Page) error {
	if page == nil {
		return pkgerrors.NewValidationError("page cannot be nil")
	}
	c.pages = append(c.pages, page)
	return nil
}

// Private helpers

func (c *Canvas) touch() {
	c.updatedAt = time.Now()
	c.version++
}

func (c *Canvas) addEvent(event events.DomainEvent) {
	c.events = append(c.events, event)
}

// collectSubtree returns id plus every node reachable from it via parent
// links, in breadth-first order
func (c *Canvas) collectSubtree(id valueobjects.NodeID) []valueobjects.NodeID {
	result := []valueobjects.NodeID{id}
	queue := []valueobjects.NodeID{id}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, candidate := range c.order {
			node := c.nodes[candidate]
			if node == nil {
				continue
			}
			if node.ParentID().Equals(current) {
				result = append(result, candidate)
				queue = append(queue, candidate)
			}
		}
	}
	return result
}

func (c *Canvas) removeFromOrder(id valueobjects.NodeID) {
	for i, existing := range c.order {
		if existing.Equals(id) {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// pageForNode resolves the display page for a node: its explicit owner if
// set and present, otherwise the first page
func (c *Canvas) pageForNode(node *entities.Node) *entities.Page {
	owner := node.OwnerPageID()
	if !owner.IsZero() {
		for _, page := range c.pages {
			if page.ID().Equals(owner) {
				return page
			}
		}
	}
	return c.DefaultPage()
}
