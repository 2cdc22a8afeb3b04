package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const recordSchemaJSON = `{
	"type": "object",
	"required": ["hs_code", "description", "reasoning"],
	"properties": {
		"hs_code": {"type": "string", "pattern": "\\S"},
		"description": {"type": "string", "pattern": "\\S"},
		"reasoning": {"type": "string", "pattern": "\\S"},
		"tariff": {"type": ["string", "null"]},
		"classification_steps": {"type": ["string", "null"]}
	}
}`

const clarificationSchemaJSON = `{
	"type": "object",
	"required": ["question", "options"],
	"properties": {
		"question": {"type": "string", "pattern": "\\S"},
		"options": {
			"type": "array",
			"minItems": 2,
			"maxItems": 4,
			"items": {"type": "string", "pattern": "\\S"}
		}
	}
}`

var (
	recordSchema        = mustCompileSchema("record.json", recordSchemaJSON)
	recordListSchema    = mustCompileSchema("records.json", `{"type": "array", "minItems": 1, "items": `+recordSchemaJSON+`}`)
	clarificationSchema = mustCompileSchema("clarification.json", clarificationSchemaJSON)
)

func mustCompileSchema(name, src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return schema
}

// validateAgainst checks data against schema and returns the generic decoded value.
func validateAgainst(schema *jsonschema.Schema, data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return nil, fmt.Errorf("response does not match schema: %w", err)
	}
	return v, nil
}
