// Package renderer holds the adapters around the two rendering
// engines. Both take markup plus a resolved palette and produce a
// scene tree (addressable elements with bounds) together with the SVG
// document. Deep grammar validation happens here: malformed markup
// surfaces as an engine error, never as a crash.
package renderer

import (
	"context"

	"github.com/rendis/vizor/internal/scene"
	"github.com/rendis/vizor/pkg/schema"
)

// Renderer is one rendering engine at its boundary: markup and theme
// in, scene tree out, or an error.
type Renderer interface {
	Name() string
	Render(ctx context.Context, markup string, palette schema.Palette) (*scene.Tree, error)
}

// Registry resolves a backend identifier to its engine.
type Registry struct {
	primary  Renderer
	fallback Renderer
}

// NewRegistry creates a registry over the two engines.
func NewRegistry(primary, fallback Renderer) *Registry {
	return &Registry{primary: primary, fallback: fallback}
}

// For returns the engine for the given backend. BackendNone and
// unknown identifiers resolve to the fallback engine, which covers
// the full grammar.
func (r *Registry) For(b schema.Backend) Renderer {
	if b == schema.BackendPrimary {
		return r.primary
	}
	return r.fallback
}
