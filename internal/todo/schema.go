package todo

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/todo-go/internal/utils"
)

//go:embed todos.schema.json
var schemaJSON []byte

const schemaURL = "https://github.com/nibzard/todo-go/todos.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// Schema returns the embedded JSON Schema for task files.
func Schema() []byte {
	return append([]byte(nil), schemaJSON...)
}

// ValidationResult contains document validation results.
type ValidationResult struct {
	Valid  bool
	Errors []error
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// ValidateDocument checks raw task file bytes against the embedded schema.
// Error paths use dot notation, e.g. "[2].due_date".
func ValidateDocument(data []byte) *ValidationResult {
	result := &ValidationResult{Valid: true, Errors: make([]error, 0)}

	schema, err := loadSchema()
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Errorf("compile schema: %w", err))
		return result
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{Err: fmt.Errorf("parse task file: %w", err)})
		return result
	}

	if err := schema.Validate(doc); err != nil {
		result.Valid = false
		appendSchemaErrors(result, err)
	}
	return result
}

func appendSchemaErrors(result *ValidationResult, err error) {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		result.Errors = append(result.Errors, err)
		return
	}
	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Field: utils.JSONPointerToPath(err.InstanceLocation),
			Err:   errors.New(err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}
