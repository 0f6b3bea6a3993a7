// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every variable name, e.g. BOTCRAFT_BACKEND_URL.
const Prefix = "BOTCRAFT"

// Config defines all configurable parameters, sourced from environment
// variables (loaded from .env for local runs).
type Config struct {
	// Execution backend
	BackendURL   string        `envconfig:"BACKEND_URL" default:"http://localhost:8000"`
	ExecutePath  string        `envconfig:"EXECUTE_PATH" default:"/execute-workflow"`
	BackendToken string        `envconfig:"BACKEND_TOKEN"`
	RunTimeout   time.Duration `envconfig:"RUN_TIMEOUT" default:"60s"`

	// ReferenceTypes sends "llm"/"search" instead of "agent"/"tool".
	ReferenceTypes bool `envconfig:"REFERENCE_TYPES"`

	// Server
	Addr           string   `envconfig:"ADDR" default:":8080"`
	MetricsAddr    string   `envconfig:"METRICS_ADDR" default:":2112"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
	LogLevel       string   `envconfig:"LOG_LEVEL" default:"info"`

	// Sessions
	RedisURL   string        `envconfig:"REDIS_URL"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	// EncryptionKey (base64, 32 bytes) seals prompts and addresses at rest.
	EncryptionKey          string   `envconfig:"ENCRYPTION_KEY"`
	EncryptionFallbackKeys []string `envconfig:"ENCRYPTION_FALLBACK_KEYS"`

	// Generation provider
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
}

// Load reads the given dotenv files (default ".env"), then the environment.
// Missing dotenv files are ignored; variables already set are never overridden.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid %s_BACKEND_URL %q", Prefix, c.BackendURL)
	}
	if c.RunTimeout < 0 {
		return fmt.Errorf("%s_RUN_TIMEOUT must not be negative", Prefix)
	}
	return nil
}

// ExecuteURL is the full execution endpoint.
func (c *Config) ExecuteURL() string {
	return strings.TrimRight(c.BackendURL, "/") + "/" + strings.TrimLeft(c.ExecutePath, "/")
}

// Usage prints the supported variables.
func Usage() error {
	var cfg Config
	return envconfig.Usage(Prefix, &cfg)
}
