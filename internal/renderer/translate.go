package renderer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rendis/vizor/pkg/schema"
)

// Coarse statement patterns for the diagram types the primary engine
// covers. This is not a grammar: unmatched lines are skipped, and a
// markup body that yields no statements at all is an engine error.
var (
	flowArrowRe = regexp.MustCompile(`\s*(?:-{2,}>|={2,}>|-\.+->|-{3,})\s*(?:\|([^|]*)\|)?\s*`)
	flowNodeRe  = regexp.MustCompile(`^(\w[\w.]*)\s*(\[\[|\(\(|\(\[|\[|\(|\{)\s*"?([^"\]\)\}]*)"?`)
	flowIDRe    = regexp.MustCompile(`^\w[\w.]*`)
	seqMsgRe    = regexp.MustCompile(`^(\w+)\s*-?->>?[+-]?\s*(\w+)\s*:\s*(.*)$`)
	seqPartRe   = regexp.MustCompile(`^(?:participant|actor)\s+(\w+)(?:\s+as\s+(.+))?$`)
	stateEdgeRe = regexp.MustCompile(`^(\[\*\]|\w[\w.]*)\s*-->\s*(\[\*\]|\w[\w.]*)\s*(?::\s*(.*))?$`)
	classRelRe  = regexp.MustCompile(`^(\w+)\s*(<\|--|\*--|o--|-->|--|\.\.>|\.\.\|>)\s*(\w+)\s*(?::\s*(.*))?$`)
	classDeclRe = regexp.MustCompile(`^class\s+(\w+)`)
	erRelRe     = regexp.MustCompile(`^(\w+)\s*[\|\}][\|o]--[\|o][\|\{]\s*(\w+)\s*:\s*(.*)$`)
)

// Extract builds a GraphModel from markup for the given diagram type.
// Only the types in the primary capability set are understood; the
// caller guarantees dt is one of them.
func Extract(dt schema.DiagramType, markup string) (*GraphModel, error) {
	lines := bodyLines(markup)
	m := &GraphModel{}

	switch dt {
	case schema.TypeFlowchart:
		extractFlowchart(m, lines)
	case schema.TypeSequence:
		extractSequence(m, lines)
	case schema.TypeState:
		extractState(m, lines)
	case schema.TypeClass:
		extractClass(m, lines)
	case schema.TypeER:
		extractER(m, lines)
	default:
		return nil, fmt.Errorf("renderer: diagram type %s not covered by primary engine", dt)
	}

	if len(m.Nodes) == 0 {
		return nil, fmt.Errorf("renderer: no renderable statements in %s markup", dt)
	}
	return m, nil
}

// bodyLines returns the trimmed statement lines after the header line,
// with blanks and comment lines removed.
func bodyLines(markup string) []string {
	var out []string
	seenHeader := false
	for _, raw := range strings.Split(markup, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}
		if !seenHeader {
			seenHeader = true
			continue
		}
		out = append(out, line)
	}
	return out
}

func extractFlowchart(m *GraphModel, lines []string) {
	for _, line := range lines {
		if line == "end" || strings.HasPrefix(line, "subgraph") ||
			strings.HasPrefix(line, "classDef") || strings.HasPrefix(line, "class ") ||
			strings.HasPrefix(line, "style ") || strings.HasPrefix(line, "linkStyle") {
			continue
		}

		// Split on arrow operators so chained statements
		// (A --> B --> C) and decorated endpoints (A[Start]) both work.
		segments := flowArrowRe.Split(line, -1)
		arrows := flowArrowRe.FindAllStringSubmatch(line, -1)

		prev := ""
		for i, seg := range segments {
			id := parseFlowNode(m, strings.TrimSpace(seg))
			if id == "" {
				prev = ""
				continue
			}
			if prev != "" && i-1 < len(arrows) {
				m.Edges = append(m.Edges, GraphEdge{
					From: prev, To: id, Label: strings.TrimSpace(arrows[i-1][1]),
				})
			}
			prev = id
		}
	}
}

// parseFlowNode registers the node described by one statement segment
// and returns its id, or "" when the segment is not a node.
func parseFlowNode(m *GraphModel, seg string) string {
	if seg == "" {
		return ""
	}
	if d := flowNodeRe.FindStringSubmatch(seg); d != nil {
		applyNodeDecl(m, d)
		return d[1]
	}
	if id := flowIDRe.FindString(seg); id != "" {
		m.node(id)
		return id
	}
	return ""
}

func applyNodeDecl(m *GraphModel, match []string) {
	n := m.node(match[1])
	if label := strings.TrimSpace(match[3]); label != "" {
		n.Label = label
	}
	switch match[2] {
	case "{":
		n.Shape = ShapeDiamond
	case "((":
		n.Shape = ShapeCircle
	case "(", "([":
		n.Shape = ShapeRounded
	case "[[":
		n.Shape = ShapeRecord
	default:
		n.Shape = ShapeBox
	}
}

func extractSequence(m *GraphModel, lines []string) {
	for _, line := range lines {
		if g := seqPartRe.FindStringSubmatch(line); g != nil {
			n := m.node(g[1])
			if g[2] != "" {
				n.Label = strings.TrimSpace(g[2])
			}
			continue
		}
		if g := seqMsgRe.FindStringSubmatch(line); g != nil {
			m.node(g[1])
			m.node(g[2])
			m.Edges = append(m.Edges, GraphEdge{From: g[1], To: g[2], Label: strings.TrimSpace(g[3])})
		}
	}
}

func extractState(m *GraphModel, lines []string) {
	for _, line := range lines {
		g := stateEdgeRe.FindStringSubmatch(line)
		if g == nil {
			continue
		}
		from, to := stateID(m, g[1], true), stateID(m, g[2], false)
		m.Edges = append(m.Edges, GraphEdge{From: from, To: to, Label: strings.TrimSpace(g[3])})
	}
}

// stateID resolves the [*] pseudo-state to synthetic start/end nodes.
func stateID(m *GraphModel, token string, isSource bool) string {
	if token == "[*]" {
		id := "__start__"
		if !isSource {
			id = "__end__"
		}
		n := m.node(id)
		n.Label = "*"
		n.Shape = ShapeCircle
		return id
	}
	m.node(token)
	return token
}

func extractClass(m *GraphModel, lines []string) {
	for _, line := range lines {
		if g := classDeclRe.FindStringSubmatch(line); g != nil {
			n := m.node(g[1])
			n.Shape = ShapeRecord
			continue
		}
		if g := classRelRe.FindStringSubmatch(line); g != nil {
			left, op, right := g[1], g[2], g[3]
			label := strings.TrimSpace(g[4])
			if label == "" && op == "<|--" {
				label = "extends"
			}
			m.node(left).Shape = ShapeRecord
			m.node(right).Shape = ShapeRecord
			// "<|--" points from the subclass (right) to the base (left).
			if op == "<|--" || op == "..|>" {
				m.Edges = append(m.Edges, GraphEdge{From: right, To: left, Label: label})
			} else {
				m.Edges = append(m.Edges, GraphEdge{From: left, To: right, Label: label})
			}
		}
	}
}

func extractER(m *GraphModel, lines []string) {
	for _, line := range lines {
		g := erRelRe.FindStringSubmatch(line)
		if g == nil {
			continue
		}
		m.node(g[1]).Shape = ShapeBox
		m.node(g[2]).Shape = ShapeBox
		m.Edges = append(m.Edges, GraphEdge{From: g[1], To: g[2], Label: strings.TrimSpace(g[3])})
	}
}
