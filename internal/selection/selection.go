// Package selection implements drag-rectangle selection over a
// rendered scene tree: candidate discovery, overlap testing,
// deduplication, labeling, and semantic classification.
package selection

import (
	"strings"

	"github.com/rendis/vizor/internal/scene"
	"github.com/rendis/vizor/pkg/schema"
)

// MinDragPx is the minimum-motion threshold in both axes. Gestures
// below it are treated as clicks, not drags.
const MinDragPx = 5.0

// markerQueries are the structural marker classes probed for
// candidates, in query order.
var markerQueries = []string{
	scene.MarkerNode,
	scene.MarkerEdgePath,
	scene.MarkerEdgeLabel,
	scene.MarkerCluster,
}

// idPrefixQueries are type-specific group-id prefixes that also mark
// an element as selectable even without a structural marker class.
var idPrefixQueries = []string{
	"flowchart-",
	"state-",
	"entity-",
	"actor",
	"classGroup-",
	"L_",
}

// Select computes the set of elements whose bounding box strictly
// overlaps rect on both axes. The result is deduplicated by element
// id, labeled, and classified. A rect below the motion threshold or a
// nil tree yields nil (selection unchanged by the caller).
func Select(rect schema.Rect, tree *scene.Tree) []schema.SelectedElement {
	if tree == nil {
		return nil
	}
	if rect.Width() < MinDragPx || rect.Height() < MinDragPx {
		return nil
	}

	r := rect.Normalized()
	seen := make(map[string]struct{})
	var out []schema.SelectedElement

	for _, el := range candidates(tree) {
		if _, dup := seen[el.ID]; dup {
			continue
		}
		if !el.Bounds.Overlaps(r) {
			continue
		}
		seen[el.ID] = struct{}{}
		out = append(out, schema.SelectedElement{
			ID:    el.ID,
			Label: labelFor(el),
			Kind:  classify(el),
		})
	}

	if out == nil {
		return []schema.SelectedElement{}
	}
	return out
}

// candidates returns the selectable elements in query order. An
// element may appear more than once when matched by several queries;
// Select deduplicates by id.
func candidates(tree *scene.Tree) []*scene.Element {
	var out []*scene.Element
	for _, marker := range markerQueries {
		out = append(out, tree.ByMarker(marker)...)
	}
	for _, el := range tree.Elements {
		for _, prefix := range idPrefixQueries {
			if strings.HasPrefix(el.ID, prefix) {
				out = append(out, el)
				break
			}
		}
	}
	return out
}

// labelFor derives a human-readable label by probing, in order: text
// content, accessibility label, title node, the element id, and
// finally the "unlabeled" sentinel.
func labelFor(el *scene.Element) string {
	if s := strings.TrimSpace(el.Text); s != "" {
		return s
	}
	if s := strings.TrimSpace(el.AriaLabel); s != "" {
		return s
	}
	if s := strings.TrimSpace(el.Title); s != "" {
		return s
	}
	if el.ID != "" {
		return el.ID
	}
	return "unlabeled"
}

// classify maps an element to a semantic kind: structural class-name
// patterns first, id-prefix heuristics second, unknown otherwise.
// edgeLabel is checked before edgePath so labels are not mistaken for
// edges.
func classify(el *scene.Element) schema.ElementKind {
	switch {
	case el.HasMarker(scene.MarkerEdgeLabel):
		return schema.KindLabel
	case el.HasMarker(scene.MarkerEdgePath):
		return schema.KindEdge
	case el.HasMarker(scene.MarkerNode), el.HasMarker(scene.MarkerCluster):
		return schema.KindNode
	}

	switch {
	case strings.HasPrefix(el.ID, "node-"), strings.HasPrefix(el.ID, "flowchart-"),
		strings.HasPrefix(el.ID, "state-"), strings.HasPrefix(el.ID, "entity-"),
		strings.HasPrefix(el.ID, "actor"), strings.HasPrefix(el.ID, "classGroup-"):
		return schema.KindNode
	case strings.HasPrefix(el.ID, "edge-"), strings.HasPrefix(el.ID, "L_"):
		return schema.KindEdge
	case strings.HasPrefix(el.ID, "label-"):
		return schema.KindLabel
	}
	return schema.KindUnknown
}
