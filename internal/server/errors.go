package server

import (
	"fmt"
	"net/http"

	"github.com/jonathan/resume-lens/internal/submission"
)

// ErrValidation indicates a submission was rejected before any request
// was sent.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUploadTooLarge indicates the request body exceeded the upload limit.
type ErrUploadTooLarge struct {
	Limit int64
}

func (e *ErrUploadTooLarge) Error() string {
	if e.Limit >= 1<<20 && e.Limit%(1<<20) == 0 {
		return fmt.Sprintf("File too large. Maximum size is %dMB.", e.Limit>>20)
	}
	return fmt.Sprintf("File too large. Maximum size is %s.", submission.FormatBytes(e.Limit))
}

// ErrBadForm indicates the request body is not a readable multipart form.
type ErrBadForm struct {
	Cause error
}

func (e *ErrBadForm) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid form submission: %v", e.Cause)
	}
	return "invalid form submission"
}

func (e *ErrBadForm) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrValidation:
		return http.StatusUnprocessableEntity
	case *ErrUploadTooLarge:
		return http.StatusRequestEntityTooLarge
	case *ErrBadForm:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
