package llm

import (
	"testing"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-lite", "gemini-2.5-flash-lite"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"response": map[string]any{"type": "string", "description": "Reply in the target language."},
			"correction": map[string]any{
				"type": []any{"object", "null"},
				"properties": map[string]any{
					"original":    map[string]any{"type": "string"},
					"suggestion":  map[string]any{"type": "string"},
					"explanation": map[string]any{"type": "string"},
				},
				"required": []any{"original", "suggestion", "explanation"},
			},
			"tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"response", "correction"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 3 {
		t.Fatalf("expected 3 properties, got %d", len(schema.Properties))
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required, got %d", len(schema.Required))
	}

	resp := schema.Properties["response"]
	if resp.Type != "STRING" || resp.Description != "Reply in the target language." {
		t.Fatalf("unexpected response schema: %+v", resp)
	}
	if resp.Nullable != nil {
		t.Fatal("response must not be nullable")
	}

	corr := schema.Properties["correction"]
	if corr.Type != "OBJECT" {
		t.Fatalf("expected OBJECT for correction, got %s", corr.Type)
	}
	if corr.Nullable == nil || !*corr.Nullable {
		t.Fatal("correction should be nullable")
	}
	if len(corr.Properties) != 3 || len(corr.Required) != 3 {
		t.Fatalf("unexpected correction schema: %+v", corr)
	}

	tags := schema.Properties["tags"]
	if tags.Type != "ARRAY" || tags.Items == nil || tags.Items.Type != "STRING" {
		t.Fatalf("unexpected tags schema: %+v", tags)
	}
}

func TestBuildGeminiContents(t *testing.T) {
	contents := buildGeminiContents([]Message{
		{Role: RoleUser, Content: "Start conversation"},
		{Role: RoleAssistant, Content: "Guten Tag!"},
	})
	if len(contents) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(contents))
	}
	if contents[0].Role != "user" || contents[1].Role != "model" {
		t.Fatalf("roles = %q, %q", contents[0].Role, contents[1].Role)
	}
	if contents[1].Parts[0].Text != "Guten Tag!" {
		t.Fatalf("text = %q", contents[1].Parts[0].Text)
	}
}
