package submission

import "fmt"

// Field identifies the input that failed validation.
type Field string

// Validated fields.
const (
	FieldJobDescription Field = "job_description"
	FieldResume         Field = "resume"
)

// ValidationError reports a missing required input. It is handled locally and
// never results in a network call.
type ValidationError struct {
	Field   Field
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// FileError represents a failure reading a resume file from disk.
type FileError struct {
	Path    string
	Message string
	Cause   error
}

func (e *FileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("resume file %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("resume file %s: %s", e.Path, e.Message)
}

func (e *FileError) Unwrap() error {
	return e.Cause
}
