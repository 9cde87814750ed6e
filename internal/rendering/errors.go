package rendering

import "fmt"

// TemplateError reports a page template that failed to parse or execute.
type TemplateError struct {
	Template string
	Cause    error
}

func (e *TemplateError) Error() string {
	if e.Template == "" {
		return fmt.Sprintf("page templates: %v", e.Cause)
	}
	return fmt.Sprintf("page template %q: %v", e.Template, e.Cause)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError means there was nothing to render for a part of the report.
type RenderError struct {
	Part   string
	Reason string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("cannot render %s: %s", e.Part, e.Reason)
}
