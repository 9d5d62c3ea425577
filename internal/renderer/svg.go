package renderer

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rendis/vizor/internal/scene"
	"github.com/rendis/vizor/pkg/schema"
)

var (
	floatRe     = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	translateRe = regexp.MustCompile(`translate\(\s*(-?\d+(?:\.\d+)?)[,\s]+(-?\d+(?:\.\d+)?)\s*\)`)
)

// parseGraphvizSVG extracts the addressable elements from graphviz
// SVG output. Graphviz groups every node, edge, and cluster in a <g>
// carrying a class attribute and a <title> child with the stable
// name; geometry lives in polygon/ellipse/path/text children relative
// to the root translate transform.
func parseGraphvizSVG(svg []byte) (*scene.Tree, error) {
	tree := &scene.Tree{SVG: svg}

	dec := xml.NewDecoder(bytes.NewReader(svg))
	dec.Strict = false

	var (
		tx, ty  float64
		cur     *svgGroup
		depth   int
		inTitle bool
		inText  bool
		textX   float64
		textY   float64
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode svg: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "svg":
				if vb := attr(t, "viewBox"); vb != "" {
					nums := floats(vb)
					if len(nums) == 4 {
						tree.Width, tree.Height = nums[2], nums[3]
					}
				}
			case "g":
				class := attr(t, "class")
				if class == "graph" {
					if m := translateRe.FindStringSubmatch(attr(t, "transform")); m != nil {
						tx, _ = strconv.ParseFloat(m[1], 64)
						ty, _ = strconv.ParseFloat(m[2], 64)
					}
					continue
				}
				if cur == nil && (class == "node" || class == "edge" || class == "cluster") {
					cur = &svgGroup{class: class, id: attr(t, "id")}
					depth = 1
					continue
				}
				if cur != nil {
					depth++
				}
			case "title":
				if cur != nil {
					inTitle = true
				}
			case "text":
				if cur != nil {
					inText = true
					textX = parseFloat(attr(t, "x"))
					textY = parseFloat(attr(t, "y"))
					cur.addPoint(textX, textY)
				}
			case "polygon", "polyline":
				if cur != nil {
					cur.addPairs(floats(attr(t, "points")))
				}
			case "path":
				if cur != nil {
					cur.addPairs(floats(attr(t, "d")))
				}
			case "ellipse":
				if cur != nil {
					cx := parseFloat(attr(t, "cx"))
					cy := parseFloat(attr(t, "cy"))
					rx := parseFloat(attr(t, "rx"))
					ry := parseFloat(attr(t, "ry"))
					cur.addPoint(cx-rx, cy-ry)
					cur.addPoint(cx+rx, cy+ry)
				}
			}

		case xml.CharData:
			if cur == nil {
				continue
			}
			if inTitle {
				cur.title += string(t)
			} else if inText {
				cur.text += string(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "title":
				inTitle = false
			case "text":
				inText = false
			case "g":
				if cur == nil {
					continue
				}
				depth--
				if depth > 0 {
					continue
				}
				appendGroup(tree, cur, tx, ty, textX, textY)
				cur = nil
			}
		}
	}

	if len(tree.Elements) == 0 {
		return nil, fmt.Errorf("no addressable elements in engine output")
	}
	return tree, nil
}

// svgGroup accumulates one node/edge/cluster group while decoding.
type svgGroup struct {
	class  string
	id     string
	title  string
	text   string
	minX   float64
	minY   float64
	maxX   float64
	maxY   float64
	hasPts bool
}

func (g *svgGroup) addPoint(x, y float64) {
	if !g.hasPts {
		g.minX, g.maxX, g.minY, g.maxY = x, x, y, y
		g.hasPts = true
		return
	}
	g.minX = math.Min(g.minX, x)
	g.maxX = math.Max(g.maxX, x)
	g.minY = math.Min(g.minY, y)
	g.maxY = math.Max(g.maxY, y)
}

func (g *svgGroup) addPairs(nums []float64) {
	for i := 0; i+1 < len(nums); i += 2 {
		g.addPoint(nums[i], nums[i+1])
	}
}

// appendGroup converts a finished group into scene elements, applying
// the root translate so bounds land in surface coordinates.
func appendGroup(tree *scene.Tree, g *svgGroup, tx, ty, textX, textY float64) {
	if !g.hasPts {
		return
	}

	id := strings.TrimSpace(g.title)
	if id == "" {
		id = g.id
	}

	var marker string
	switch g.class {
	case "node":
		marker = scene.MarkerNode
	case "edge":
		marker = scene.MarkerEdgePath
	case "cluster":
		marker = scene.MarkerCluster
	}

	el := &scene.Element{
		ID:      id,
		Markers: []string{marker},
		Title:   strings.TrimSpace(g.title),
		Text:    strings.TrimSpace(g.text),
		Bounds: schema.Rect{
			X1: g.minX + tx, Y1: g.minY + ty,
			X2: g.maxX + tx, Y2: g.maxY + ty,
		}.Normalized(),
	}
	tree.Elements = append(tree.Elements, el)

	// Edge label text becomes its own addressable element so label
	// selection works independently of the edge path.
	if g.class == "edge" && el.Text != "" {
		w := float64(len(el.Text)) * 7
		tree.Elements = append(tree.Elements, &scene.Element{
			ID:      id + "::label",
			Markers: []string{scene.MarkerEdgeLabel},
			Text:    el.Text,
			Bounds: schema.Rect{
				X1: textX + tx - w/2, Y1: textY + ty - 12,
				X2: textX + tx + w/2, Y2: textY + ty + 4,
			}.Normalized(),
		})
	}
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func floats(s string) []float64 {
	matches := floatRe.FindAllString(s, -1)
	out := make([]float64, 0, len(matches))
	for _, m := range matches {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			out = append(out, v)
		}
	}
	return out
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}
