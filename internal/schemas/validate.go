// Package schemas provides JSON Schema validation for analysis server responses.
package schemas

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jonathan/resume-lens/schemas"
	"github.com/xeipuuv/gojsonschema"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

var (
	responseSchemaOnce sync.Once
	responseSchema     *gojsonschema.Schema
	responseSchemaErr  error
)

func analysisResponseSchema() (*gojsonschema.Schema, error) {
	responseSchemaOnce.Do(func() {
		responseSchema, responseSchemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemas.AnalysisResponse))
		if responseSchemaErr != nil {
			responseSchemaErr = &SchemaLoadError{
				Path:    "analysis_response.schema.json",
				Message: "failed to compile embedded schema",
				Cause:   responseSchemaErr,
			}
		}
	})
	return responseSchema, responseSchemaErr
}

// ValidateAnalysisResponse validates a raw /api/analyze body against the
// embedded response schema.
func ValidateAnalysisResponse(body []byte) error {
	schema, err := analysisResponseSchema()
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("failed to read response document: %w", err)
	}
	return toValidationError(result)
}

// ValidateAnalysisFile validates a saved response document on disk.
func ValidateAnalysisFile(jsonPath string) error {
	absPath, err := filepath.Abs(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to resolve JSON path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("JSON file not found: %s", absPath)
		}
		return fmt.Errorf("failed to read JSON file: %w", err)
	}

	return ValidateAnalysisResponse(data)
}

func toValidationError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
