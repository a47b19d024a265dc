// Package llm talks to hosted language models on behalf of the local
// tutoring endpoint.
package llm

import "context"

// Provider generates one assistant reply for a conversation.
type Provider interface {
	// Generate sends the conversation and returns the reply text. When the
	// request carries a Validate hook, the text has passed it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes one generation.
type Request struct {
	// System is the tutor persona and rules.
	System string

	// Messages is the conversation so far, oldest first, ending with the
	// learner's newest message.
	Messages []Message

	// JSON asks the provider for a JSON object reply using its native
	// mechanism. Schema, when set, further constrains the object on
	// providers that accept one.
	JSON   bool
	Schema *Schema

	// Validate, when set, checks the reply text. A failure is reported as
	// *ErrInvalidResponse so WithRetry can try once more.
	Validate func(text string) error

	MaxTokens   int
	Temperature float64
}

// Message is a single conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema document.
type Schema struct {
	Name       string
	Definition map[string]any
}

// Response holds the model's reply.
type Response struct {
	Text  string
	Usage Usage
	// Model is the model that actually served the request.
	Model string
	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// checkReply runs the request's Validate hook over text.
func checkReply(req Request, text string) error {
	if req.Validate == nil {
		return nil
	}
	if err := req.Validate(text); err != nil {
		return &ErrInvalidResponse{Text: text, Err: err}
	}
	return nil
}
