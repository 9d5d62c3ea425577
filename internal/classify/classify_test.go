package classify

import (
	"testing"

	"github.com/rendis/vizor/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		markup string
		want   schema.DiagramType
	}{
		{"flowchart", "flowchart TD\n  A-->B", schema.TypeFlowchart},
		{"graph alias", "graph LR\n  A-->B", schema.TypeFlowchart},
		{"gitgraph beats graph", "gitGraph\n  commit", schema.TypeGitGraph},
		{"sequence", "sequenceDiagram\n  A->>B: hi", schema.TypeSequence},
		{"state v2", "stateDiagram-v2\n  [*] --> S1", schema.TypeState},
		{"state v1", "stateDiagram\n  [*] --> S1", schema.TypeState},
		{"class", "classDiagram\n  Animal <|-- Duck", schema.TypeClass},
		{"er", "erDiagram\n  CUSTOMER ||--o{ ORDER : places", schema.TypeER},
		{"xychart beta suffix", "xychart-beta\n  title X", schema.TypeXYChart},
		{"c4 context", "C4Context\n  title System", schema.TypeC4},
		{"c4 deployment", "C4Deployment\n  title Deploy", schema.TypeC4},
		{"pie", "pie title Pets\n  \"Dogs\": 10", schema.TypePie},
		{"leading blank lines", "\n\n  gantt\n  title Plan", schema.TypeGantt},
		{"case insensitive", "FLOWCHART LR\n  A-->B", schema.TypeFlowchart},
		{"unknown", "foobar\nsome text", schema.TypeUnknown},
		{"empty", "", schema.TypeUnknown},
		{"whitespace only", "  \n\t\n", schema.TypeUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.markup))
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	// Same markup always yields the same tag across repeated calls.
	markup := "gitGraph\n  commit"
	first := Classify(markup)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(markup))
	}
}

func TestKeywordOrderLongestFirst(t *testing.T) {
	kws := Keywords()
	require.NotEmpty(t, kws)
	for i := 1; i < len(kws); i++ {
		assert.GreaterOrEqual(t, len(kws[i-1]), len(kws[i]),
			"keyword %q must not precede longer keyword %q", kws[i-1], kws[i])
	}
}

func TestCheck(t *testing.T) {
	t.Run("empty markup", func(t *testing.T) {
		err := Check("")
		require.NotNil(t, err)
		assert.Equal(t, schema.ErrCodeEmptyMarkup, err.Code)
		assert.Equal(t, "Empty diagram markup", err.Message)
	})

	t.Run("whitespace only is empty", func(t *testing.T) {
		err := Check("   \n\t ")
		require.NotNil(t, err)
		assert.Equal(t, schema.ErrCodeEmptyMarkup, err.Code)
	})

	t.Run("unrecognized first line echoed", func(t *testing.T) {
		err := Check("foobar\nsome text")
		require.NotNil(t, err)
		assert.Equal(t, schema.ErrCodeUnrecognizedType, err.Code)
		assert.Contains(t, err.Message, "foobar")
	})

	t.Run("valid markup passes", func(t *testing.T) {
		assert.Nil(t, Check("flowchart TD\n  A-->B"))
		assert.Nil(t, Check("sequenceDiagram\n  A->>B: hi"))
	})

	t.Run("gate iff empty or unknown", func(t *testing.T) {
		// check(m) non-nil exactly when empty-after-trim or unmatched first line.
		for _, m := range []string{"", "  ", "nope", "flowchart x"} {
			got := Check(m)
			wantReject := Classify(m) == schema.TypeUnknown
			if wantReject {
				assert.NotNil(t, got, "markup %q", m)
			} else {
				assert.Nil(t, got, "markup %q", m)
			}
		}
	})
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "flowchart TD", FirstLine("\n\n  flowchart TD  \n A-->B"))
	assert.Equal(t, "", FirstLine(""))
	assert.Equal(t, "", FirstLine("\n \n"))
}
