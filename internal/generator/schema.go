package generator

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"uigen/internal/knowledge"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const componentSchemaName = "component_payload.schema.json"

//go:embed component_payload.schema.json
var componentSchemaJSON string

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func componentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(componentSchemaName, strings.NewReader(componentSchemaJSON)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile(componentSchemaName)
	})
	if schemaErr != nil {
		return nil, fmt.Errorf("failed to compile component payload schema: %w", schemaErr)
	}
	return compiledSchema, nil
}

// ParsePayload decodes a writer response and validates it against the
// payload schema, so malformed output is rejected before anything touches
// disk.
func ParsePayload(raw string) (*knowledge.ComponentPayload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("writer returned an empty response")
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("writer response is not valid JSON: %w", err)
	}

	schema, err := componentSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(v); err != nil {
		return nil, fmt.Errorf("writer response failed schema validation: %w", err)
	}

	var payload knowledge.ComponentPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
