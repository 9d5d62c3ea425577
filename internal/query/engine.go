// Package query lets the agent interrogate the rendered scene with
// expressions instead of screenshots: CEL for predicates, jq for
// reshaping, Expr for general logic. All three engines evaluate
// against the same scope built from the current tree and session.
package query

import "context"

// Engine evaluates one expression language over a query scope.
type Engine interface {
	Name() string
	Evaluate(ctx context.Context, expression string, data map[string]any) (any, error)
}
