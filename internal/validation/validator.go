// Package validation checks incoming tool and API requests against
// JSON Schema Draft 2020-12 before they reach the pipeline. Shallow by
// design: it verifies request shape, never diagram grammar. Markup
// that passes here can still fail inside a rendering engine.
package validation

// Validator checks request payloads for structural correctness.
type Validator interface {
	ValidateRender(req map[string]any) error
	ValidateSelection(req map[string]any) error
	ValidateContext(req map[string]any) error
	ValidateQuery(req map[string]any) error
}
