package registry

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema is the structural contract for the registration document:
// one top-level mcpServers object whose keys are sanitized adapter names
// and whose values carry a command plus argument list.
const documentSchema = `{
  "type": "object",
  "required": ["mcpServers"],
  "additionalProperties": false,
  "properties": {
    "mcpServers": {
      "type": "object",
      "propertyNames": {"pattern": "^[A-Za-z0-9_-]+$"},
      "additionalProperties": {
        "type": "object",
        "required": ["command", "args"],
        "additionalProperties": false,
        "properties": {
          "command": {"type": "string", "minLength": 1},
          "args": {"type": "array", "items": {"type": "string"}},
          "env": {
            "type": "object",
            "additionalProperties": {"type": "string"}
          }
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

// Validate checks a serialized document against the registration schema.
// An invalid document is never written; the caller leaves the file as-is.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validate registration document: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("registration document is invalid: %s", strings.Join(msgs, "; "))
}
