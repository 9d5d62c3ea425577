package renderer

import (
	"testing"

	"github.com/rendis/vizor/internal/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// graphvizSample is a trimmed real graphviz SVG document: two nodes
// connected by a labeled edge, root group translated by (4, 184).
const graphvizSample = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<svg xmlns="http://www.w3.org/2000/svg" width="134pt" height="188pt" viewBox="0.00 0.00 134.00 188.00">
<g id="graph0" class="graph" transform="scale(1 1) rotate(0) translate(4 184)">
<title>G</title>
<polygon fill="white" stroke="none" points="-4,4 -4,-184 130,-184 130,4 -4,4"/>
<g id="node1" class="node">
<title>A</title>
<polygon fill="none" stroke="black" points="63,-180 9,-180 9,-144 63,-144 63,-180"/>
<text text-anchor="middle" x="36" y="-157.8" font-size="14.00">Start</text>
</g>
<g id="node2" class="node">
<title>B</title>
<ellipse fill="none" stroke="black" cx="36" cy="-18" rx="27" ry="18"/>
<text text-anchor="middle" x="36" y="-13.8" font-size="14.00">Done</text>
</g>
<g id="edge1" class="edge">
<title>A&#45;&gt;B</title>
<path fill="none" stroke="black" d="M36,-143.7C36,-120.85 36,-78.83 36,-47.79"/>
<polygon fill="black" stroke="black" points="39.5,-47.92 36,-37.92 32.5,-47.92 39.5,-47.92"/>
<text text-anchor="middle" x="47" y="-86.3" font-size="14.00">ok</text>
</g>
</g>
</svg>`

func TestParseGraphvizSVG(t *testing.T) {
	tree, err := parseGraphvizSVG([]byte(graphvizSample))
	require.NoError(t, err)

	assert.Equal(t, 134.0, tree.Width)
	assert.Equal(t, 188.0, tree.Height)

	a := tree.ByID("A")
	require.NotNil(t, a)
	assert.True(t, a.HasMarker(scene.MarkerNode))
	assert.Equal(t, "Start", a.Text)
	// Polygon points (9..63, -180..-144) shifted by translate(4, 184).
	assert.InDelta(t, 13, a.Bounds.X1, 0.01)
	assert.InDelta(t, 67, a.Bounds.X2, 0.01)
	assert.InDelta(t, 4, a.Bounds.Y1, 0.01)
	assert.InDelta(t, 40, a.Bounds.Y2, 0.01)

	b := tree.ByID("B")
	require.NotNil(t, b)
	// Ellipse bounds: cx±rx, cy±ry, shifted.
	assert.InDelta(t, 13, b.Bounds.X1, 0.01)
	assert.InDelta(t, 67, b.Bounds.X2, 0.01)

	edge := tree.ByID("A->B")
	require.NotNil(t, edge)
	assert.True(t, edge.HasMarker(scene.MarkerEdgePath))

	label := tree.ByID("A->B::label")
	require.NotNil(t, label)
	assert.True(t, label.HasMarker(scene.MarkerEdgeLabel))
	assert.Equal(t, "ok", label.Text)
}

func TestParseGraphvizSVGNoElements(t *testing.T) {
	_, err := parseGraphvizSVG([]byte(`<svg viewBox="0 0 10 10"><g class="graph"/></svg>`))
	require.Error(t, err)
}
