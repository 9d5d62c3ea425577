package renderer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/rendis/vizor/internal/classify"
	"github.com/rendis/vizor/internal/scene"
	"github.com/rendis/vizor/pkg/schema"
)

// GraphvizRenderer is the primary engine: graphviz DOT layout with
// themed styling. It covers the types in the primary capability set.
type GraphvizRenderer struct{}

// NewGraphvizRenderer creates the primary engine adapter.
func NewGraphvizRenderer() *GraphvizRenderer {
	return &GraphvizRenderer{}
}

// Name returns the engine identifier.
func (r *GraphvizRenderer) Name() string { return "graphviz" }

// Render lays out the markup with graphviz and parses the SVG output
// into a scene tree. Engine failures are returned verbatim.
func (r *GraphvizRenderer) Render(ctx context.Context, markup string, palette schema.Palette) (*scene.Tree, error) {
	model, err := Extract(classify.Classify(markup), markup)
	if err != nil {
		return nil, err
	}

	svg, err := layoutSVG(ctx, model, palette, graphviz.SVG)
	if err != nil {
		return nil, err
	}

	tree, err := parseGraphvizSVG(svg)
	if err != nil {
		return nil, fmt.Errorf("renderer: parse engine output: %w", err)
	}
	tree.Backend = schema.BackendPrimary
	return tree, nil
}

// RenderPNG renders the markup to PNG bytes for export.
func (r *GraphvizRenderer) RenderPNG(ctx context.Context, markup string, palette schema.Palette) ([]byte, error) {
	model, err := Extract(classify.Classify(markup), markup)
	if err != nil {
		return nil, err
	}
	return layoutSVG(ctx, model, palette, graphviz.PNG)
}

// layoutSVG builds the graphviz graph from the model and renders it
// in the requested format.
func layoutSVG(ctx context.Context, model *GraphModel, palette schema.Palette, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("renderer: create graphviz: %w", err)
	}
	defer gv.Close()

	gv.SetLayout(graphviz.DOT)

	graph, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("renderer: create graph: %w", err)
	}
	defer graph.Close()

	graph.SetRankDir(cgraph.TBRank)
	graph.SetBackgroundColor(palette.Background)
	if model.Title != "" {
		graph.SetLabel(model.Title)
	}

	gvNodes := make(map[string]*cgraph.Node, len(model.Nodes))
	for _, node := range model.Nodes {
		gvNode, nErr := graph.CreateNodeByName(node.ID)
		if nErr != nil {
			return nil, fmt.Errorf("renderer: create node %s: %w", node.ID, nErr)
		}
		gvNode.SetLabel(node.Label)
		applyNodeStyle(gvNode, node, palette)
		gvNodes[node.ID] = gvNode
	}

	for _, edge := range model.Edges {
		fromGV, toGV := gvNodes[edge.From], gvNodes[edge.To]
		if fromGV == nil || toGV == nil {
			continue
		}
		e, eErr := graph.CreateEdgeByName("", fromGV, toGV)
		if eErr != nil {
			continue
		}
		e.SetColor(palette.Line)
		e.SetFontColor(palette.Muted)
		if edge.Label != "" {
			e.SetLabel(edge.Label)
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, format, &buf); err != nil {
		return nil, fmt.Errorf("renderer: render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// applyNodeStyle sets graphviz attributes from the model shape and
// the resolved palette.
func applyNodeStyle(gvNode *cgraph.Node, node *GraphNode, palette schema.Palette) {
	switch node.Shape {
	case ShapeDiamond:
		gvNode.SetShape(cgraph.DiamondShape)
	case ShapeCircle:
		gvNode.SetShape(cgraph.CircleShape)
		gvNode.SetWidth(0.5)
		gvNode.SetHeight(0.5)
	case ShapeRounded:
		gvNode.SetShape(cgraph.BoxShape)
		gvNode.SetStyle(cgraph.RoundedNodeStyle)
	case ShapeRecord:
		gvNode.SetShape(cgraph.BoxShape) // no record shape in go-graphviz v0.2; box is sufficient
	default:
		gvNode.SetShape(cgraph.BoxShape)
	}

	gvNode.SetStyle(cgraph.FilledNodeStyle)
	gvNode.SetFillColor(palette.Surface)
	gvNode.SetFontColor(palette.Foreground)
	gvNode.SetColor(palette.Border)
}
