// Package schemas provides JSON Schema validation for structured LLM output.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed parsed_query.schema.json
var parsedQuerySchema string

var (
	parsedQueryOnce     sync.Once
	parsedQueryCompiled *gojsonschema.Schema
	parsedQueryErr      error
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

// ParsedQuerySchema returns the embedded ParsedQuery JSON Schema document.
func ParsedQuerySchema() string {
	return parsedQuerySchema
}

// ValidateParsedQuery validates LLM output against the ParsedQuery schema.
// Malformed JSON is reported as a *ValidationError at the root.
func ValidateParsedQuery(data []byte) error {
	parsedQueryOnce.Do(func() {
		parsedQueryCompiled, parsedQueryErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(parsedQuerySchema))
	})
	if parsedQueryErr != nil {
		return &SchemaLoadError{Path: "parsed_query.schema.json", Message: "invalid embedded schema", Cause: parsedQueryErr}
	}

	result, err := parsedQueryCompiled.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: err.Error()}}}
	}
	return resultError(result)
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}
	return resultError(result)
}

func resultError(result *gojsonschema.Result) error {
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
