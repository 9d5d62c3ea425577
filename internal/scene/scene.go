// Package scene models the rendered visual tree: the set of addressable
// elements (nodes, edges, labels, clusters) with stable identifiers and
// bounding boxes, plus the SVG document they came from.
package scene

import "github.com/rendis/vizor/pkg/schema"

// Structural markers attached to elements by the rendering engines.
// Selection queries match against these.
const (
	MarkerNode      = "node"
	MarkerEdgePath  = "edgePath"
	MarkerEdgeLabel = "edgeLabel"
	MarkerCluster   = "cluster"
)

// Element is one addressable piece of the rendered output.
type Element struct {
	ID      string      // stable identifier from the engine
	Markers []string    // structural marker classes
	Bounds  schema.Rect // bounding box in surface coordinates

	// Label sources, probed in order by the selection engine.
	Text      string // embedded text content
	AriaLabel string // accessibility label attribute
	Title     string // embedded title node
}

// HasMarker reports whether the element carries the given marker class.
func (e *Element) HasMarker(marker string) bool {
	for _, m := range e.Markers {
		if m == marker {
			return true
		}
	}
	return false
}

// Tree is the rendered visual tree. Write access belongs exclusively
// to the render pipeline; readers take the handle per call.
type Tree struct {
	Backend  schema.Backend
	Elements []*Element
	SVG      []byte
	Width    float64
	Height   float64
}

// ByID returns the element with the given id, or nil.
func (t *Tree) ByID(id string) *Element {
	for _, e := range t.Elements {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// ByMarker returns all elements carrying the given marker class, in
// tree order.
func (t *Tree) ByMarker(marker string) []*Element {
	var out []*Element
	for _, e := range t.Elements {
		if e.HasMarker(marker) {
			out = append(out, e)
		}
	}
	return out
}

// Bounds returns the rectangle covering the whole tree surface.
func (t *Tree) Bounds() schema.Rect {
	return schema.Rect{X1: 0, Y1: 0, X2: t.Width, Y2: t.Height}
}
