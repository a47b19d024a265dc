package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted by NewProvider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config holds the model provider configuration of the tutoring endpoint.
type Config struct {
	// Provider is one of the Provider* names.
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one generation including retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures retries of transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns the defaults: Gemini Flash, three attempts, 45s.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderGemini,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.5-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 45 * time.Second,
	}
}

// Set overrides the provider and, for that provider, any non-empty model,
// key and base URL.
func (c *Config) Set(provider, model, apiKey, baseURL string) {
	if provider != "" {
		c.Provider = provider
	}
	switch c.Provider {
	case ProviderAnthropic:
		setIf(&c.Anthropic.Model, model)
		setIf(&c.Anthropic.APIKey, apiKey)
	case ProviderOpenAI:
		setIf(&c.OpenAI.Model, model)
		setIf(&c.OpenAI.APIKey, apiKey)
		setIf(&c.OpenAI.BaseURL, baseURL)
	case ProviderGemini:
		setIf(&c.Gemini.Model, model)
		setIf(&c.Gemini.APIKey, apiKey)
	case ProviderOpenRouter:
		setIf(&c.OpenRouter.Model, model)
		setIf(&c.OpenRouter.APIKey, apiKey)
		setIf(&c.OpenRouter.BaseURL, baseURL)
	}
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// DiscoverConfig probes the vendors' standard API key variables in order
// Gemini, OpenAI, Anthropic, OpenRouter and selects the first one set.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	for _, probe := range []struct {
		env      string
		provider string
	}{
		{"GEMINI_API_KEY", ProviderGemini},
		{"OPENAI_API_KEY", ProviderOpenAI},
		{"ANTHROPIC_API_KEY", ProviderAnthropic},
		{"OPENROUTER_API_KEY", ProviderOpenRouter},
	} {
		if k := os.Getenv(probe.env); k != "" {
			cfg.Set(probe.provider, "", k, "")
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the selected provider has an API key.
func (c Config) Validate() error {
	var key string
	switch c.Provider {
	case ProviderAnthropic:
		key = c.Anthropic.APIKey
	case ProviderOpenAI:
		key = c.OpenAI.APIKey
	case ProviderGemini:
		key = c.Gemini.APIKey
	case ProviderOpenRouter:
		key = c.OpenRouter.APIKey
	case ProviderMock:
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("an API key is required for the %s provider (set LINGOBUDDY_LLM_API_KEY)", c.Provider)
	}
	return nil
}
