package docs

import "fmt"

// ValidationError reports a required case field missing before any render
// or write has happened.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required case field %q", e.Field)
}

// RenderError reports a rendering-backend failure for one document. It is
// not retried automatically; the sync engine records it as a per-document
// failure.
type RenderError struct {
	DocType string
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.DocType, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
