// Package config loads lingobuddy settings from defaults, a YAML file and
// LINGOBUDDY_* environment variables, in increasing priority. Command-line
// flags are applied on top by the cmd package.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/lingobuddy/internal/api"
	"github.com/abhisek/lingobuddy/internal/llm"
	"github.com/abhisek/lingobuddy/internal/logging"
)

// Config holds all lingobuddy configuration.
type Config struct {
	// Endpoint is the tutoring service URL.
	Endpoint string `yaml:"endpoint"`
	// Timeout bounds one call to the tutoring service.
	Timeout time.Duration `yaml:"timeout"`

	Log     LogConfig     `yaml:"log"`
	CallLog CallLogConfig `yaml:"call_log"`
	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
}

// LogConfig controls the application log.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error or off
	File  string `yaml:"file"`  // empty = default state dir path
}

// CallLogConfig controls the SQLite record of service calls.
type CallLogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ServerConfig configures `lingobuddy serve`.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LLMConfig selects the model behind `lingobuddy serve`. Empty fields fall
// back to API key discovery and the provider defaults.
type LLMConfig struct {
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Endpoint: api.DefaultEndpoint,
		Timeout:  api.DefaultTimeout,
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

// Load builds the configuration. A .env file in the working directory is
// loaded into the environment first. With an empty path the default config
// file is used if it exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath resolves the config file path:
// 1. $XDG_CONFIG_HOME/lingobuddy/config.yaml
// 2. ~/.config/lingobuddy/config.yaml
func DefaultPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "lingobuddy", "config.yaml"), nil
}

func (c *Config) applyEnvOverrides() error {
	c.Endpoint = getEnv("LINGOBUDDY_ENDPOINT", c.Endpoint)
	c.Log.Level = getEnv("LINGOBUDDY_LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnv("LINGOBUDDY_LOG_FILE", c.Log.File)
	c.CallLog.Enabled = getEnvBool("LINGOBUDDY_CALL_LOG", c.CallLog.Enabled)
	c.CallLog.Path = getEnv("LINGOBUDDY_CALL_LOG_PATH", c.CallLog.Path)
	c.Server.Addr = getEnv("LINGOBUDDY_SERVER_ADDR", c.Server.Addr)
	c.LLM.Provider = getEnv("LINGOBUDDY_LLM_PROVIDER", c.LLM.Provider)
	c.LLM.Model = getEnv("LINGOBUDDY_LLM_MODEL", c.LLM.Model)
	c.LLM.APIKey = getEnv("LINGOBUDDY_LLM_API_KEY", c.LLM.APIKey)
	c.LLM.BaseURL = getEnv("LINGOBUDDY_LLM_BASE_URL", c.LLM.BaseURL)

	timeout, err := getEnvDuration("LINGOBUDDY_TIMEOUT", c.Timeout)
	if err != nil {
		return err
	}
	c.Timeout = timeout
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("endpoint must be an http(s) URL, got %q", c.Endpoint)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0")
	}
	if !strings.EqualFold(c.Log.Level, logging.LevelOff) {
		if _, err := logging.ParseLevel(c.Log.Level); err != nil {
			return err
		}
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}
	return nil
}

// ProviderConfig returns the model provider configuration for the local
// tutoring endpoint: discovered vendor keys first, then the llm section.
func (c *Config) ProviderConfig() llm.Config {
	cfg, ok := llm.DiscoverConfig()
	if !ok {
		cfg = llm.DefaultConfig()
	}
	cfg.Set(c.LLM.Provider, c.LLM.Model, c.LLM.APIKey, c.LLM.BaseURL)
	if c.LLM.Timeout > 0 {
		cfg.Timeout = c.LLM.Timeout
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
