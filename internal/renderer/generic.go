package renderer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rendis/vizor/internal/classify"
	"github.com/rendis/vizor/internal/scene"
	"github.com/rendis/vizor/pkg/schema"
)

// Fallback layout constants, in surface pixels.
const (
	genericMarginX   = 24.0
	genericMarginY   = 24.0
	genericRowHeight = 56.0
	genericBoxHeight = 36.0
	genericCharWidth = 8.0
	genericMinWidth  = 80.0
)

var genericEdgeRe = regexp.MustCompile(`^(\S+)\s*(?:--+>|-?->>?|--+)\s*(?:\|[^|]*\|\s*)?(\S+?)(?::.*)?$`)

// GenericRenderer is the fallback engine: it accepts the full grammar
// and produces a plain stacked-box rendition. Styling is generic, one
// surface color for every node.
type GenericRenderer struct{}

// NewGenericRenderer creates the fallback engine adapter.
func NewGenericRenderer() *GenericRenderer {
	return &GenericRenderer{}
}

// Name returns the engine identifier.
func (r *GenericRenderer) Name() string { return "generic" }

// Render turns each statement line into a labeled box stacked top to
// bottom, with connector elements for recognizable arrow statements.
// It never rejects markup the syntax gate admitted.
func (r *GenericRenderer) Render(ctx context.Context, markup string, palette schema.Palette) (*scene.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	header := classify.FirstLine(markup)
	lines := bodyLines(markup)
	if len(lines) == 0 {
		// A bare header still renders: the header becomes the only box.
		lines = []string{header}
	}

	tree := &scene.Tree{Backend: schema.BackendFallback}
	var b strings.Builder

	maxWidth := 0.0

	for i, line := range lines {
		id := fmt.Sprintf("node-%d", i+1)
		label := line
		if g := genericEdgeRe.FindStringSubmatch(line); g != nil {
			label = g[1] + " → " + g[2]
		}

		w := float64(len(label)) * genericCharWidth
		if w < genericMinWidth {
			w = genericMinWidth
		}
		top := genericMarginY + float64(i)*genericRowHeight
		bounds := schema.Rect{
			X1: genericMarginX, Y1: top,
			X2: genericMarginX + w, Y2: top + genericBoxHeight,
		}
		if bounds.X2 > maxWidth {
			maxWidth = bounds.X2
		}

		tree.Elements = append(tree.Elements, &scene.Element{
			ID:        id,
			Markers:   []string{scene.MarkerNode},
			Bounds:    bounds,
			Text:      label,
			AriaLabel: line,
		})

		// Connector between consecutive rows.
		if i > 0 {
			prevBottom := genericMarginY + float64(i-1)*genericRowHeight + genericBoxHeight
			tree.Elements = append(tree.Elements, &scene.Element{
				ID:      fmt.Sprintf("edge-%d", i),
				Markers: []string{scene.MarkerEdgePath},
				Bounds: schema.Rect{
					X1: genericMarginX + 38, Y1: prevBottom,
					X2: genericMarginX + 42, Y2: top,
				},
			})
		}
	}

	tree.Width = maxWidth + genericMarginX
	tree.Height = genericMarginY*2 + float64(len(lines)-1)*genericRowHeight + genericBoxHeight

	// Emit the SVG document.
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">`,
		tree.Width, tree.Height, tree.Width, tree.Height)
	fmt.Fprintf(&b, `<rect width="100%%" height="100%%" fill="%s"/>`, palette.Background)
	for _, el := range tree.Elements {
		if el.HasMarker(scene.MarkerEdgePath) {
			fmt.Fprintf(&b, `<line x1="%.0f" y1="%.0f" x2="%.0f" y2="%.0f" stroke="%s" stroke-width="1.5"/>`,
				(el.Bounds.X1+el.Bounds.X2)/2, el.Bounds.Y1, (el.Bounds.X1+el.Bounds.X2)/2, el.Bounds.Y2, palette.Line)
			continue
		}
		fmt.Fprintf(&b, `<g id="%s" class="node" aria-label="%s">`, el.ID, xmlEscape(el.AriaLabel))
		fmt.Fprintf(&b, `<rect x="%.0f" y="%.0f" width="%.0f" height="%.0f" rx="4" fill="%s" stroke="%s"/>`,
			el.Bounds.X1, el.Bounds.Y1, el.Bounds.Width(), el.Bounds.Height(), palette.Surface, palette.Border)
		fmt.Fprintf(&b, `<text x="%.0f" y="%.0f" fill="%s" font-family="sans-serif" font-size="13">%s</text>`,
			el.Bounds.X1+8, el.Bounds.Y1+23, palette.Foreground, xmlEscape(el.Text))
		b.WriteString(`</g>`)
	}
	b.WriteString(`</svg>`)

	tree.SVG = []byte(b.String())
	return tree, nil
}

func xmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
