package client

import "fmt"

// User-facing fallback messages.
const (
	MessageAnalysisFailed = "Analysis failed. Please try again."
	MessageUnexpected     = "An unexpected error occurred."
	MessageBadFormat      = "Analysis response did not match the expected format."
)

// RequestError is a failed analysis request: a transport failure, an
// unreadable body, a non-2xx status or a body with success=false. Message is
// what the error panel shows.
type RequestError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *RequestError) Error() string {
	if e.Message == "" && e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// Describe returns a log-friendly description including status and cause.
func (e *RequestError) Describe() string {
	if e.Cause != nil {
		return fmt.Sprintf("analyze request failed (status %d): %s: %v", e.StatusCode, e.Message, e.Cause)
	}
	return fmt.Sprintf("analyze request failed (status %d): %s", e.StatusCode, e.Message)
}
