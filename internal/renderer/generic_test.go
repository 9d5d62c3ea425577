package renderer

import (
	"context"
	"strings"
	"testing"

	"github.com/rendis/vizor/internal/scene"
	"github.com/rendis/vizor/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPalette = schema.Palette{
	Background: "#ffffff",
	Foreground: "#1a1a2e",
	Line:       "#9aa4b2",
	Accent:     "#3b82f6",
	Muted:      "#6b7280",
	Surface:    "#f4f6f8",
	Border:     "#d0d7de",
}

func TestGenericRenderFullCoverage(t *testing.T) {
	r := NewGenericRenderer()

	// The fallback accepts any gated type, including ones the primary
	// engine has no translation for.
	for _, markup := range []string{
		"gantt\n  title Plan\n  section A\n  task1 : 2024-01-01, 3d",
		"pie title Pets\n  \"Dogs\": 10\n  \"Cats\": 5",
		"xychart-beta\n  title Sales",
		"mindmap\n  root((idea))",
	} {
		tree, err := r.Render(context.Background(), markup, testPalette)
		require.NoError(t, err, "markup %q", markup)
		assert.NotEmpty(t, tree.Elements)
		assert.NotEmpty(t, tree.SVG)
		assert.Equal(t, schema.BackendFallback, tree.Backend)
	}
}

func TestGenericRenderTreeGeometry(t *testing.T) {
	r := NewGenericRenderer()
	tree, err := r.Render(context.Background(), "timeline\n  2020 : founded\n  2021 : launched\n  2022 : acquired", testPalette)
	require.NoError(t, err)

	nodes := tree.ByMarker(scene.MarkerNode)
	require.Len(t, nodes, 3)
	edges := tree.ByMarker(scene.MarkerEdgePath)
	assert.Len(t, edges, 2)

	// Rows stack top to bottom without overlap.
	for i := 1; i < len(nodes); i++ {
		assert.Greater(t, nodes[i].Bounds.Y1, nodes[i-1].Bounds.Y2)
	}

	// All bounds sit inside the surface.
	for _, el := range tree.Elements {
		assert.True(t, el.Bounds.X2 <= tree.Width, "element %s exceeds width", el.ID)
		assert.True(t, el.Bounds.Y2 <= tree.Height, "element %s exceeds height", el.ID)
	}
}

func TestGenericRenderArrowLabels(t *testing.T) {
	r := NewGenericRenderer()
	tree, err := r.Render(context.Background(), "kanban\n  todo --> doing", testPalette)
	require.NoError(t, err)

	nodes := tree.ByMarker(scene.MarkerNode)
	require.Len(t, nodes, 1)
	assert.Equal(t, "todo → doing", nodes[0].Text)
	// The raw statement survives as the accessibility label.
	assert.Equal(t, "todo --> doing", nodes[0].AriaLabel)
}

func TestGenericRenderBareHeader(t *testing.T) {
	r := NewGenericRenderer()
	tree, err := r.Render(context.Background(), "mindmap", testPalette)
	require.NoError(t, err)
	require.Len(t, tree.ByMarker(scene.MarkerNode), 1)
}

func TestGenericRenderThemedSVG(t *testing.T) {
	r := NewGenericRenderer()
	dark := schema.Palette{Background: "#101418", Foreground: "#e6e9ef", Line: "#4a5568",
		Accent: "#60a5fa", Muted: "#9aa4b2", Surface: "#1c2128", Border: "#30363d"}

	tree, err := r.Render(context.Background(), "radar\n  axis a, b, c", dark)
	require.NoError(t, err)

	svg := string(tree.SVG)
	assert.True(t, strings.Contains(svg, dark.Background))
	assert.True(t, strings.Contains(svg, dark.Surface))
	assert.False(t, strings.Contains(svg, testPalette.Background))
}

func TestGenericRenderCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewGenericRenderer().Render(ctx, "pie\n  \"a\": 1", testPalette)
	require.Error(t, err)
}
