package llm

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: "Bonjour !", Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Text: "Très bien."},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Text != "Bonjour !" {
		t.Fatalf("expected %q, got %q", "Bonjour !", resp1.Text)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Text != "Très bien." {
		t.Fatalf("expected %q, got %q", "Très bien.", resp2.Text)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "ok"})
	mock.AddResponse(MockResponse{Text: "again"})

	req := Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}
	_, _ = mock.Generate(context.Background(), req)

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	last, ok := mock.LastCall()
	if !ok || last.System != "sys" {
		t.Fatalf("expected system 'sys', got %q", last.System)
	}

	resp, err := mock.Generate(context.Background(), req)
	if err != nil || resp.Text != "again" {
		t.Fatalf("AddResponse not served: %v %v", resp, err)
	}
}

func TestMockProvider_ValidateHook(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "plain"})
	_, err := mock.Generate(context.Background(), Request{
		Validate: func(string) error { return errors.New("want JSON") },
	})
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) || invalid.Text != "plain" {
		t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
	}
}

func TestEchoProvider(t *testing.T) {
	echo := NewEchoProvider()
	msgs := []Message{{Role: RoleUser, Content: "Wie geht's?"}}

	plain, err := echo.Generate(context.Background(), Request{Messages: msgs})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plain.Text != "(echo) Wie geht's?" {
		t.Fatalf("plain text = %q", plain.Text)
	}

	structured, err := echo.Generate(context.Background(), Request{Messages: msgs, JSON: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(structured.Text), &body); err != nil {
		t.Fatalf("echo JSON: %v", err)
	}
	if body["response"] != "(echo) Wie geht's?" {
		t.Fatalf("response = %v", body["response"])
	}
	if v, ok := body["correction"]; !ok || v != nil {
		t.Fatalf("correction = %v", v)
	}
	if echo.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", echo.CallCount())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, PurposeGreeting)
	if p := PurposeFrom(ctx); p != "greeting" {
		t.Fatalf("expected 'greeting', got %q", p)
	}
}

func TestWithLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mock := NewMockProvider(
		MockResponse{Text: "Hej!", Usage: Usage{InputTokens: 1000, OutputTokens: 1000}},
		MockResponse{Err: &ErrProviderUnavailable{}},
	)
	p := WithLogging(mock, zap.New(core))
	ctx := WithPurpose(context.Background(), PurposeTurn)

	if _, err := p.Generate(ctx, Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected error")
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Message != "model request" || entries[0].ContextMap()["purpose"] != "turn" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
	if entries[1].Level != zapcore.WarnLevel {
		t.Fatalf("failure logged at %s", entries[1].Level)
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4o-mini")
	if c == nil {
		t.Fatal("expected pricing for gpt-4o-mini")
	}
	if got := c.Cost(1_000_000, 1_000_000); math.Abs(got-0.75) > 1e-9 {
		t.Fatalf("cost = %v, want 0.75", got)
	}
	if LookupCost("no-such-model") != nil {
		t.Fatal("expected nil for unknown model")
	}
}

func TestNewProvider_Mock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderMock
	p, err := NewProvider(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", p.ModelID())
	}
	if _, err := NewProvider(context.Background(), Config{Provider: "bogus"}, nil); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: ProviderOpenAI}, true},
		{"openai with key", Config{Provider: ProviderOpenAI, OpenAI: OpenAIConfig{APIKey: "sk-test"}}, false},
		{"gemini with key", Config{Provider: ProviderGemini, Gemini: GeminiConfig{APIKey: "g-test"}}, false},
		{"openrouter without key", Config{Provider: ProviderOpenRouter}, true},
		{"mock needs no key", Config{Provider: ProviderMock}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Set(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Set(ProviderOpenAI, "gpt-4o", "sk-test", "https://gateway.example/v1")

	if cfg.Provider != ProviderOpenAI {
		t.Fatalf("provider = %q", cfg.Provider)
	}
	if cfg.OpenAI.Model != "gpt-4o" || cfg.OpenAI.APIKey != "sk-test" || cfg.OpenAI.BaseURL != "https://gateway.example/v1" {
		t.Fatalf("openai config = %+v", cfg.OpenAI)
	}

	// Empty values keep what is already there.
	cfg.Set("", "", "", "")
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Fatalf("model overwritten: %q", cfg.OpenAI.Model)
	}
}

func TestDiscoverConfig(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}

	if _, ok := DiscoverConfig(); ok {
		t.Fatal("expected no provider without keys")
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OPENROUTER_API_KEY", "sk-or")
	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != ProviderAnthropic || cfg.Anthropic.APIKey != "sk-ant" {
		t.Fatalf("discovered %+v", cfg)
	}
}
