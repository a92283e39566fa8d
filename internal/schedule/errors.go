package schedule

import (
	"fmt"
	"strings"
)

// ValidationError reports every schedule spec invariant violated, collected
// rather than short-circuited so the caller sees all problems at once.
// No mutation occurs when validation fails.
type ValidationError struct {
	Violations []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid schedule spec: %s", strings.Join(e.Violations, "; "))
}

// TemplateRenderError indicates that a task title template could not be
// rendered. It is recoverable: the factory falls back to the default
// title format.
type TemplateRenderError struct {
	Template string
	Err      error
}

// Error implements the error interface for TemplateRenderError.
func (e *TemplateRenderError) Error() string {
	return fmt.Sprintf("failed to render task title template %q: %v", e.Template, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TemplateRenderError) Unwrap() error {
	return e.Err
}
