package query

import (
	"context"

	"github.com/rendis/vizor/pkg/schema"
)

// Runner dispatches a query to the engine for its language.
type Runner struct {
	engines map[string]Engine
}

// NewRunner wires the three engines under their language identifiers.
func NewRunner() (*Runner, error) {
	celEngine, err := NewCELEngine()
	if err != nil {
		return nil, err
	}
	return &Runner{
		engines: map[string]Engine{
			"cel":  celEngine,
			"jq":   NewGoJQEngine(),
			"expr": NewExprEngine(),
		},
	}, nil
}

// Languages lists the supported language identifiers.
func (r *Runner) Languages() []string {
	return []string{"cel", "expr", "jq"}
}

// Run evaluates the expression in the named language against the scope.
func (r *Runner) Run(ctx context.Context, language, expression string, scope map[string]any) (any, error) {
	eng, ok := r.engines[language]
	if !ok {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"unknown query language %q, expected one of cel, expr, jq", language)
	}
	return eng.Evaluate(ctx, expression, scope)
}
