// Package schemas validates emitted documents against their JSON Schemas.
package schemas

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	rootschemas "github.com/jonathan/job-intel/schemas"
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
	Name    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Name, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Name, e.Message)
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
	analyzeOnce   sync.Once
	analyzeSchema *gojsonschema.Schema
	analyzeErr    error
)

func analyzeResponseSchema() (*gojsonschema.Schema, error) {
	analyzeOnce.Do(func() {
		analyzeSchema, analyzeErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(rootschemas.AnalyzeResponse))
		if analyzeErr != nil {
			analyzeErr = &SchemaLoadError{Name: rootschemas.AnalyzeResponseFile, Message: "invalid schema", Cause: analyzeErr}
		}
	})
	return analyzeSchema, analyzeErr
}

// ValidateAnalyzeResponse marshals v and checks it against the embedded
// analyze response schema.
func ValidateAnalyzeResponse(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	return ValidateAnalyzeResponseJSON(data)
}

// ValidateAnalyzeResponseJSON checks raw JSON against the analyze response schema.
func ValidateAnalyzeResponseJSON(data []byte) error {
	schema, err := analyzeResponseSchema()
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	return toValidationError(result)
}

// ValidateAnalyzeResponseFile checks a saved analyze response on disk.
func ValidateAnalyzeResponseFile(path string) error {
	return ValidateJSONFile(rootschemas.AnalyzeResponse, path)
}

// ValidateJSONFile validates a JSON file on disk against schema content.
func ValidateJSONFile(schemaContent []byte, jsonPath string) error {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("JSON file not found: %s", jsonPath)
		}
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	return ValidateJSONString(string(schemaContent), string(data))
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Name:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}
	return toValidationError(result)
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
