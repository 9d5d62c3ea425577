package schema

import "fmt"

// Error codes for structured error reporting.
const (
	ErrCodeEmptyMarkup      = "EMPTY_MARKUP"
	ErrCodeUnrecognizedType = "UNRECOGNIZED_TYPE"
	ErrCodeEngineRender     = "ENGINE_RENDER"
	ErrCodeHostCapability   = "HOST_CAPABILITY"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeExecution        = "EXECUTION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeStore            = "STORE_ERROR"
)

// VizorError is the structured error type for all vizor operations.
type VizorError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	ElementID string         `json:"element_id,omitempty"`
	Cause     error          `json:"-"`
}

func (e *VizorError) Error() string {
	if e.ElementID != "" {
		return fmt.Sprintf("[%s] element %s: %s", e.Code, e.ElementID, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *VizorError) Unwrap() error {
	return e.Cause
}

// NewError creates a new VizorError.
func NewError(code, message string) *VizorError {
	return &VizorError{Code: code, Message: message}
}

// NewErrorf creates a new VizorError with a formatted message.
func NewErrorf(code, format string, args ...any) *VizorError {
	return &VizorError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithElement attaches an element ID to the error.
func (e *VizorError) WithElement(id string) *VizorError {
	e.ElementID = id
	return e
}

// WithCause attaches an underlying cause.
func (e *VizorError) WithCause(err error) *VizorError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *VizorError) WithDetails(details map[string]any) *VizorError {
	e.Details = details
	return e
}
