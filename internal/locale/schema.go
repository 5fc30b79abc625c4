package locale

import (
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// bundleSchema pins down the challenges namespace. Everything outside it is
// free-form as long as it is strings and objects, which Parse already enforces.
const bundleSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {
    "tree": {
      "type": "object",
      "additionalProperties": {
        "anyOf": [{"type": "string"}, {"$ref": "#/definitions/tree"}]
      }
    },
    "titled": {
      "type": "object",
      "properties": {"title": {"type": "string"}},
      "additionalProperties": {
        "anyOf": [{"type": "string"}, {"$ref": "#/definitions/tree"}]
      }
    },
    "titledSet": {
      "type": "object",
      "additionalProperties": {"$ref": "#/definitions/titled"}
    },
    "challenge": {
      "type": "object",
      "properties": {
        "title": {"type": "string"},
        "pages": {"$ref": "#/definitions/titledSet"},
        "requirements": {"$ref": "#/definitions/titledSet"}
      },
      "additionalProperties": {
        "anyOf": [{"type": "string"}, {"$ref": "#/definitions/tree"}]
      }
    }
  },
  "type": "object",
  "properties": {
    "challenges": {
      "type": "object",
      "additionalProperties": {"$ref": "#/definitions/challenge"}
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(bundleSchema))
})

// Validate checks a decoded message tree against the challenges schema.
func Validate(root *Node) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compiling message schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(root.Interface()))
	if err != nil {
		return fmt.Errorf("validating messages: %w", err)
	}
	if result.Valid() {
		return nil
	}

	se := &SchemaError{}
	for _, re := range result.Errors() {
		se.Problems = append(se.Problems, re.String())
	}
	return se
}
