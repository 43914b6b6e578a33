package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"media-scribe/internal/providers"
)

// Config is the process configuration read from the environment.
type Config struct {
	Provider       string        `env:"TRANSCRIBER_PROVIDER" env-default:"gemini"`
	GeminiAPIKey   string        `env:"GEMINI_API_KEY"`
	OpenAIAPIKey   string        `env:"OPENAI_API_KEY"`
	Model          string        `env:"TRANSCRIBER_MODEL"`
	BaseURL        string        `env:"TRANSCRIBER_BASE_URL"`
	RequestTimeout time.Duration `env:"TRANSCRIBER_TIMEOUT" env-default:"10m"`

	SettingsPath string `env:"SETTINGS_PATH"`
	PreviewDir   string `env:"PREVIEW_DIR"`

	HTTP HTTPConfig
	Log  LogConfig
}

// HTTPConfig configures the standalone HTTP binding.
type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR" env-default:":8080"`
	AllowedOrigins  []string      `env:"HTTP_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
	MaxUploadBytes  int64         `env:"HTTP_MAX_UPLOAD_BYTES" env-default:"524288000"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level     string `env:"LOG_LEVEL" env-default:"info"`
	JSON      bool   `env:"LOG_JSON" env-default:"false"`
	AddSource bool   `env:"LOG_ADD_SOURCE" env-default:"false"`
}

// Load reads an optional .env file from the working directory and then the
// process environment. A missing .env is not an error.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	return &cfg, nil
}

// MustLoad is Load for entry points.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic("failed to read environment variables: " + err.Error())
	}
	return cfg
}

// APIKey returns the credential for the selected provider. Empty means the
// credential is missing; it is never defaulted.
func (c *Config) APIKey() string {
	if c.Provider == providers.ProviderOpenAI {
		return strings.TrimSpace(c.OpenAIAPIKey)
	}
	return strings.TrimSpace(c.GeminiAPIKey)
}

// CredentialEnv names the variable APIKey reads.
func (c *Config) CredentialEnv() string {
	if c.Provider == providers.ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "GEMINI_API_KEY"
}

// ProviderConfig builds the adapter configuration. model overrides the
// environment when non-empty.
func (c *Config) ProviderConfig(model string) providers.Config {
	if strings.TrimSpace(model) == "" {
		model = c.Model
	}
	return providers.Config{
		Provider: c.Provider,
		APIKey:   c.APIKey(),
		Model:    model,
		BaseURL:  c.BaseURL,
		Timeout:  c.RequestTimeout,
	}
}
