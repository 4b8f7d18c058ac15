package tables

import (
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "stacker://tables.schema.json"

// documentSchema constrains the structure of a table document. Coverage of
// every kind and rotation is checked afterwards in Go.
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["shapes"],
  "additionalProperties": false,
  "$defs": {
    "kind": {"enum": ["T", "O", "L", "J", "S", "Z", "I"]},
    "rotation": {"enum": ["up", "right", "down", "left"]},
    "offset": {
      "type": "array",
      "minItems": 2,
      "maxItems": 2,
      "items": {"type": "integer"}
    }
  },
  "properties": {
    "shapes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["kind", "rotation", "cells"],
        "additionalProperties": false,
        "properties": {
          "kind": {"$ref": "#/$defs/kind"},
          "rotation": {"$ref": "#/$defs/rotation"},
          "cells": {
            "type": "array",
            "minItems": 1,
            "items": {"$ref": "#/$defs/offset"}
          }
        }
      }
    },
    "kicks": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["kind", "from", "to", "offsets"],
        "additionalProperties": false,
        "properties": {
          "kind": {"$ref": "#/$defs/kind"},
          "from": {"$ref": "#/$defs/rotation"},
          "to": {"$ref": "#/$defs/rotation"},
          "offsets": {"type": "array", "items": {"$ref": "#/$defs/offset"}}
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString(schemaURL, documentSchema)
	})
	return schema, schemaErr
}
