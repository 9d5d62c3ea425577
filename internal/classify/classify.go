// Package classify maps raw diagram markup to a diagram type tag and
// performs the coarse pre-render syntax gate. Deep grammar validation
// is left to the rendering engines.
package classify

import (
	"sort"
	"strings"

	"github.com/rendis/vizor/pkg/schema"
)

// keywordEntry binds a lowercase first-line keyword to its type tag.
type keywordEntry struct {
	Keyword string
	Type    schema.DiagramType
}

// keywordTable is the closed set of recognized first-line keywords.
// Declared as data so the support set is independently testable. The
// table is re-sorted longest-keyword-first at init so that the most
// specific keyword always wins on prefix collisions ("gitgraph" vs
// "graph", "statediagram-v2" vs "statediagram").
var keywordTable = []keywordEntry{
	{"flowchart", schema.TypeFlowchart},
	{"graph", schema.TypeFlowchart},
	{"sequencediagram", schema.TypeSequence},
	{"classdiagram", schema.TypeClass},
	{"statediagram-v2", schema.TypeState},
	{"statediagram", schema.TypeState},
	{"erdiagram", schema.TypeER},
	{"journey", schema.TypeJourney},
	{"gantt", schema.TypeGantt},
	{"pie", schema.TypePie},
	{"quadrantchart", schema.TypeQuadrant},
	{"requirementdiagram", schema.TypeRequirement},
	{"gitgraph", schema.TypeGitGraph},
	{"c4context", schema.TypeC4},
	{"c4container", schema.TypeC4},
	{"c4component", schema.TypeC4},
	{"c4dynamic", schema.TypeC4},
	{"c4deployment", schema.TypeC4},
	{"mindmap", schema.TypeMindmap},
	{"timeline", schema.TypeTimeline},
	{"zenuml", schema.TypeZenUML},
	{"sankey-beta", schema.TypeSankey},
	{"sankey", schema.TypeSankey},
	{"xychart", schema.TypeXYChart},
	{"block-beta", schema.TypeBlock},
	{"packet-beta", schema.TypePacket},
	{"kanban", schema.TypeKanban},
	{"architecture-beta", schema.TypeArchitecture},
	{"radar", schema.TypeRadar},
}

func init() {
	// Longest keyword first; ties keep declaration order.
	sort.SliceStable(keywordTable, func(i, j int) bool {
		return len(keywordTable[i].Keyword) > len(keywordTable[j].Keyword)
	})
}

// Keywords returns the recognized keywords in match order.
func Keywords() []string {
	out := make([]string, len(keywordTable))
	for i, e := range keywordTable {
		out[i] = e.Keyword
	}
	return out
}

// Classify returns the diagram type for the given markup. It inspects
// only the first non-blank line, trimmed and lower-cased. Pure and
// total: any input yields a value, unmatched input yields TypeUnknown.
func Classify(markup string) schema.DiagramType {
	line := strings.ToLower(FirstLine(markup))
	if line == "" {
		return schema.TypeUnknown
	}
	for _, e := range keywordTable {
		if strings.HasPrefix(line, e.Keyword) {
			return e.Type
		}
	}
	return schema.TypeUnknown
}

// Check performs the coarse syntax gate. It returns nil when the
// markup is non-empty and its first line matches a known keyword.
// The UNRECOGNIZED_TYPE message echoes the offending first line
// verbatim so the caller can correct it.
func Check(markup string) *schema.VizorError {
	if strings.TrimSpace(markup) == "" {
		return schema.NewError(schema.ErrCodeEmptyMarkup, "Empty diagram markup")
	}
	if Classify(markup) == schema.TypeUnknown {
		return schema.NewErrorf(schema.ErrCodeUnrecognizedType,
			"Unrecognized diagram type: %q", FirstLine(markup))
	}
	return nil
}

// FirstLine returns the first non-blank line of the markup, trimmed.
func FirstLine(markup string) string {
	for _, line := range strings.Split(markup, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
