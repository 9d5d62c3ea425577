package session

import (
	"fmt"
	"strings"

	"github.com/rendis/vizor/pkg/schema"
)

// SelectionContext renders the selection as the text block pushed into
// the agent's context: one "{kind}: {label} ({id})" line per element,
// in selection order. An empty selection yields the empty string, which
// callers translate into removing the context block entirely.
func SelectionContext(selection []schema.SelectedElement) string {
	if len(selection) == 0 {
		return ""
	}
	lines := make([]string, len(selection))
	for i, el := range selection {
		lines[i] = fmt.Sprintf("%s: %s (%s)", el.Kind, el.Label, el.ID)
	}
	return strings.Join(lines, "\n")
}
