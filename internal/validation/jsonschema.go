package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rendis/vizor/pkg/schema"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// Request schemas embedded as constants to avoid filesystem dependencies.
// Markup is intentionally allowed to be empty here: the empty-markup
// case has its own error in the classification gate.
const renderSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://vizor.dev/schemas/render.json",
  "type": "object",
  "required": ["markup"],
  "properties": {
    "markup": { "type": "string" },
    "title": { "type": "string" },
    "validate_only": { "type": "boolean" },
    "theme": { "type": "string", "enum": ["light", "dark"] }
  },
  "additionalProperties": false
}`

const selectionSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://vizor.dev/schemas/selection.json",
  "type": "object",
  "required": ["rect"],
  "properties": {
    "rect": {
      "type": "object",
      "required": ["x1", "y1", "x2", "y2"],
      "properties": {
        "x1": { "type": "number" },
        "y1": { "type": "number" },
        "x2": { "type": "number" },
        "y2": { "type": "number" }
      },
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}`

const contextSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://vizor.dev/schemas/context.json",
  "type": "object",
  "properties": {
    "theme": { "type": "string", "enum": ["light", "dark"] },
    "display_mode": { "type": "string", "enum": ["inline", "fullscreen"] },
    "safe_area": {
      "type": "object",
      "properties": {
        "top": { "type": "number", "minimum": 0 },
        "right": { "type": "number", "minimum": 0 },
        "bottom": { "type": "number", "minimum": 0 },
        "left": { "type": "number", "minimum": 0 }
      },
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}`

const querySchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://vizor.dev/schemas/query.json",
  "type": "object",
  "required": ["language", "expression"],
  "properties": {
    "language": { "type": "string", "enum": ["cel", "expr", "jq"] },
    "expression": { "type": "string", "minLength": 1 }
  },
  "additionalProperties": false
}`

// JSONSchemaValidator implements the Validator interface with the four
// request schemas pre-compiled. Safe for concurrent use.
type JSONSchemaValidator struct {
	render    *jsonschema.Schema
	selection *jsonschema.Schema
	context   *jsonschema.Schema
	query     *jsonschema.Schema
}

// NewJSONSchemaValidator compiles all request schemas up front.
func NewJSONSchemaValidator() (*JSONSchemaValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	compile := func(url, raw string) (*jsonschema.Schema, error) {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("unmarshal schema %s: %w", url, err)
		}
		if err := c.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("add schema resource %s: %w", url, err)
		}
		compiled, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", url, err)
		}
		return compiled, nil
	}

	v := &JSONSchemaValidator{}
	var err error
	if v.render, err = compile("https://vizor.dev/schemas/render.json", renderSchemaJSON); err != nil {
		return nil, err
	}
	if v.selection, err = compile("https://vizor.dev/schemas/selection.json", selectionSchemaJSON); err != nil {
		return nil, err
	}
	if v.context, err = compile("https://vizor.dev/schemas/context.json", contextSchemaJSON); err != nil {
		return nil, err
	}
	if v.query, err = compile("https://vizor.dev/schemas/query.json", querySchemaJSON); err != nil {
		return nil, err
	}
	return v, nil
}

// ValidateRender checks a render or validate-only request.
func (v *JSONSchemaValidator) ValidateRender(req map[string]any) error {
	return v.validate(v.render, req, "render request")
}

// ValidateSelection checks a selection request.
func (v *JSONSchemaValidator) ValidateSelection(req map[string]any) error {
	return v.validate(v.selection, req, "selection request")
}

// ValidateContext checks a host-context update request.
func (v *JSONSchemaValidator) ValidateContext(req map[string]any) error {
	return v.validate(v.context, req, "context request")
}

// ValidateQuery checks a scene query request.
func (v *JSONSchemaValidator) ValidateQuery(req map[string]any) error {
	return v.validate(v.query, req, "query request")
}

func (v *JSONSchemaValidator) validate(s *jsonschema.Schema, req map[string]any, what string) error {
	if req == nil {
		return schema.NewErrorf(schema.ErrCodeValidation, "%s is nil", what)
	}

	doc, err := toJSONValue(req)
	if err != nil {
		return schema.NewErrorf(schema.ErrCodeValidation, "failed to serialize %s", what).WithCause(err)
	}

	if err := s.Validate(doc); err != nil {
		return toVizorError(err)
	}
	return nil
}

// toJSONValue round-trips a Go value through JSON encoding/decoding so that
// numeric values become json.Number (required by the jsonschema library).
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
}

// toVizorError converts a jsonschema.ValidationError into a VizorError
// with clear, actionable messages for agent consumption.
func toVizorError(err error) *schema.VizorError {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return schema.NewError(schema.ErrCodeValidation, err.Error())
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		return schema.NewError(schema.ErrCodeValidation, verr.Error())
	}

	if len(violations) == 1 {
		return schema.NewError(schema.ErrCodeValidation, violations[0]).
			WithDetails(map[string]any{"violations": violations})
	}

	msg := fmt.Sprintf("validation failed with %d errors", len(violations))
	return schema.NewError(schema.ErrCodeValidation, msg).
		WithDetails(map[string]any{"violations": violations})
}

// collectViolations walks a ValidationError tree and collects leaf error messages
// with their instance locations for agent-friendly error reporting.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
