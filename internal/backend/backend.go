// Package backend maps a diagram type to the rendering engine that
// handles it.
package backend

import "github.com/rendis/vizor/pkg/schema"

// primarySupport is the static capability set of the primary engine.
// The primary engine offers richer styling but covers only these
// types; everything else is handled by the general-purpose fallback.
var primarySupport = map[schema.DiagramType]struct{}{
	schema.TypeFlowchart: {},
	schema.TypeState:     {},
	schema.TypeSequence:  {},
	schema.TypeClass:     {},
	schema.TypeER:        {},
}

// Select returns the backend responsible for the given diagram type.
// Pure lookup: the same type always maps to the same backend.
func Select(dt schema.DiagramType) schema.Backend {
	if _, ok := primarySupport[dt]; ok {
		return schema.BackendPrimary
	}
	return schema.BackendFallback
}

// SupportedByPrimary reports whether the primary engine covers dt.
func SupportedByPrimary(dt schema.DiagramType) bool {
	_, ok := primarySupport[dt]
	return ok
}
