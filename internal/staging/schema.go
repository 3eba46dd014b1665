package staging

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DocumentJSONSchema documents the staged file contract. Commit validates
// staged payloads against it before decoding so hand-edited or enriched
// files fail loudly instead of half-deserializing.
const DocumentJSONSchema = `
{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "StagedDocument",
  "type": "object",
  "required": ["slug", "path", "markdown", "hash", "sections"],
  "properties": {
    "slug": {"type": "string", "minLength": 1},
    "path": {"type": "string", "minLength": 1},
    "markdown": {"type": "string"},
    "hash": {"type": "string", "pattern": "^[0-9a-f]{64}$"},
    "frontmatter": {"type": "object"},
    "sections": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["position", "hash", "blocks"],
        "properties": {
          "position": {"type": "integer", "minimum": 0},
          "hash": {"type": "string", "pattern": "^[0-9a-f]{64}$"},
          "hidden": {"type": "boolean"},
          "tags": {"type": "array", "items": {"type": "string"}},
          "metrics": {"type": "object", "additionalProperties": {"type": "number"}},
          "blocks": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["type", "content", "hash", "position"],
              "properties": {
                "type": {
                  "type": "string",
                  "enum": ["content", "heading", "paragraph", "list", "table", "figure", "footer", "html", "quote"]
                },
                "content": {"type": "string"},
                "hash": {"type": "string", "pattern": "^[0-9a-f]{64}$"},
                "position": {"type": "number"},
                "level": {"type": ["integer", "null"], "minimum": 1, "maximum": 6},
                "tags": {"type": "array", "items": {"type": "string"}},
                "metrics": {"type": "object", "additionalProperties": {"type": "number"}}
              },
              "additionalProperties": false
            }
          }
        },
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false
}
`

var documentSchema = jsonschema.MustCompileString("staged-document.json", DocumentJSONSchema)

// ValidateDocument checks a staged JSON payload against the contract schema.
func ValidateDocument(data []byte) error {
	var payload any
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return fmt.Errorf("staged document is not valid JSON: %w", err)
	}
	if err := documentSchema.Validate(payload); err != nil {
		return fmt.Errorf("staged document schema: %w", err)
	}
	return nil
}
