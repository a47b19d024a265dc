package tutor

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const replySchemaURL = "schema://tutor-reply.json"

// ReplySchema is the JSON Schema of a structured tutor reply.
var ReplySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"response": map[string]any{
			"type":        "string",
			"description": "The tutor's reply in the target language.",
		},
		"correction": map[string]any{
			"type":        []any{"object", "null"},
			"description": "Grammar correction for the learner's last message, or null.",
			"properties": map[string]any{
				"original":    map[string]any{"type": "string"},
				"corrected":   map[string]any{"type": "string"},
				"explanation": map[string]any{"type": "string"},
			},
		},
	},
	"required": []any{"response"},
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// replySchema returns the compiled ReplySchema.
func replySchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// Round-trip through JSON so the compiler sees plain decoded values.
		raw, err := json.Marshal(ReplySchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal reply schema: %w", err)
			return
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			compileErr = fmt.Errorf("parse reply schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(replySchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(replySchemaURL)
	})
	return compiledSchema, compileErr
}
