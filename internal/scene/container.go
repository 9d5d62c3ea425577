package scene

import "sync"

// Container holds the current visual tree and its highlight state.
// The render pipeline is the only writer; selection and the viewer
// read snapshots. The mutex makes the handoff safe when MCP and HTTP
// handlers run on different goroutines.
type Container struct {
	mu         sync.RWMutex
	tree       *Tree
	highlights map[string]struct{}
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{highlights: make(map[string]struct{})}
}

// Install replaces the current tree wholesale and clears all
// highlight markers. The prior tree is discarded, never patched.
func (c *Container) Install(t *Tree) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tree = t
	c.highlights = make(map[string]struct{})
}

// Tree returns the current tree handle, or nil before the first
// successful render.
func (c *Container) Tree() *Tree {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree
}

// SetHighlights clears all previously applied highlight markers and
// applies a marker to exactly the elements whose id exists in the
// current tree. Ids referencing a since-replaced tree are silently
// skipped.
func (c *Container) SetHighlights(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.highlights = make(map[string]struct{}, len(ids))
	if c.tree == nil {
		return
	}
	for _, id := range ids {
		if c.tree.ByID(id) != nil {
			c.highlights[id] = struct{}{}
		}
	}
}

// Highlighted reports whether the element with the given id currently
// carries a highlight marker.
func (c *Container) Highlighted(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.highlights[id]
	return ok
}

// HighlightedIDs returns the ids currently highlighted.
func (c *Container) HighlightedIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.highlights))
	for id := range c.highlights {
		out = append(out, id)
	}
	return out
}
