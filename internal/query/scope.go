package query

import (
	"github.com/rendis/vizor/internal/scene"
	"github.com/rendis/vizor/pkg/schema"
)

// BuildScope flattens the current tree, selection, and session state
// into the map every engine evaluates against. Four top-level keys:
//
//   - elements:  list of scene elements with id, markers, bounds, label
//   - selection: list of selected elements with id, label, kind
//   - diagram:   metadata of the displayed payload
//   - session:   theme and display mode
//
// All values are plain maps, slices, and scalars, so the same scope
// feeds CEL, jq, and Expr unchanged.
func BuildScope(tree *scene.Tree, payload *schema.DiagramPayload, selection []schema.SelectedElement, theme schema.Theme, mode schema.DisplayMode) map[string]any {
	scope := map[string]any{
		"elements":  elementsScope(tree),
		"selection": selectionScope(selection),
		"diagram":   diagramScope(payload),
		"session": map[string]any{
			"theme":        string(theme),
			"display_mode": string(mode),
		},
	}
	return scope
}

func elementsScope(tree *scene.Tree) []any {
	if tree == nil {
		return []any{}
	}
	out := make([]any, 0, len(tree.Elements))
	for _, el := range tree.Elements {
		markers := make([]any, len(el.Markers))
		for i, m := range el.Markers {
			markers[i] = m
		}
		out = append(out, map[string]any{
			"id":      el.ID,
			"markers": markers,
			"text":    el.Text,
			"bounds": map[string]any{
				"x1": el.Bounds.X1,
				"y1": el.Bounds.Y1,
				"x2": el.Bounds.X2,
				"y2": el.Bounds.Y2,
			},
		})
	}
	return out
}

func selectionScope(selection []schema.SelectedElement) []any {
	out := make([]any, 0, len(selection))
	for _, s := range selection {
		out = append(out, map[string]any{
			"id":    s.ID,
			"label": s.Label,
			"kind":  string(s.Kind),
		})
	}
	return out
}

func diagramScope(payload *schema.DiagramPayload) map[string]any {
	if payload == nil {
		return map[string]any{}
	}
	return map[string]any{
		"id":       payload.ID,
		"type":     string(payload.DiagramType),
		"title":    payload.Title,
		"renderer": string(payload.Backend),
	}
}
