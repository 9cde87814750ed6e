// Package submission captures and validates the job description and resume
// inputs and encodes them as the multipart payload expected by the analyzer.
package submission

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

// Multipart field names understood by POST /api/analyze.
const (
	FieldNameJobDescription = "job_description"
	FieldNameResumeFile     = "resume_file"
	FieldNameResumeText     = "resume_text"
)

// ResumeFile is an uploaded or picked resume document.
type ResumeFile struct {
	Name    string
	Size    int64
	Content []byte
}

// NewResumeFile wraps raw file content.
func NewResumeFile(name string, content []byte) *ResumeFile {
	return &ResumeFile{
		Name:    name,
		Size:    int64(len(content)),
		Content: content,
	}
}

// LoadFile reads a resume document from disk.
func LoadFile(path string) (*ResumeFile, error) {
	if path == "" {
		return nil, &FileError{Path: path, Message: "path is empty"}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Message: "failed to read file", Cause: err}
	}

	return NewResumeFile(filepath.Base(path), content), nil
}

// ContentType sniffs the MIME type of the file content.
func (f *ResumeFile) ContentType() string {
	return mimetype.Detect(f.Content).String()
}

// Input is one submission: a job description plus pasted resume text, a
// resume file, or both.
type Input struct {
	JobDescription string      `validate:"required"`
	ResumeText     string      `validate:"required_without=File"`
	File           *ResumeFile `validate:"omitempty"`
}

var validate = validator.New()

// Normalized returns a copy with both text fields trimmed.
func (in Input) Normalized() Input {
	in.JobDescription = strings.TrimSpace(in.JobDescription)
	in.ResumeText = strings.TrimSpace(in.ResumeText)
	return in
}

// Validate checks the trimmed input. A missing job description is reported
// before a missing resume.
func (in Input) Validate() error {
	n := in.Normalized()
	err := validate.Struct(n)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return fmt.Errorf("failed to validate submission: %w", err)
	}

	switch validationErrors[0].Field() {
	case "JobDescription":
		return &ValidationError{Field: FieldJobDescription, Message: "job description is required"}
	default:
		return &ValidationError{Field: FieldResume, Message: "paste resume text or upload a file"}
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Encode builds the multipart body. Both resume fields are sent when both are
// present; precedence is left to the server.
func (in Input) Encode() (*bytes.Buffer, string, error) {
	n := in.Normalized()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	if err := w.WriteField(FieldNameJobDescription, n.JobDescription); err != nil {
		return nil, "", fmt.Errorf("failed to write %s: %w", FieldNameJobDescription, err)
	}

	if n.File != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			FieldNameResumeFile, quoteEscaper.Replace(n.File.Name)))
		header.Set("Content-Type", n.File.ContentType())

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create %s part: %w", FieldNameResumeFile, err)
		}
		if _, err := part.Write(n.File.Content); err != nil {
			return nil, "", fmt.Errorf("failed to write %s: %w", FieldNameResumeFile, err)
		}
	}

	if n.ResumeText != "" {
		if err := w.WriteField(FieldNameResumeText, n.ResumeText); err != nil {
			return nil, "", fmt.Errorf("failed to write %s: %w", FieldNameResumeText, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return body, w.FormDataContentType(), nil
}
