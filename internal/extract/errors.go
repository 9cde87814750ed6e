package extract

import "fmt"

// Error is a user-facing extraction failure. Message is shown as-is in the
// error panel.
type Error struct {
	Filename string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(filename, message string, cause error) *Error {
	return &Error{Filename: filename, Message: message, Cause: cause}
}

func readError(filename, kind string, cause error) *Error {
	return newError(filename, fmt.Sprintf("Could not read %s: %v", kind, cause), cause)
}
