package providers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Request is one multimodal transcription call: inline media plus instruction.
type Request struct {
	// Data is the base64 media payload, sent as-is where the API accepts it.
	Data              string
	MimeType          string
	Instruction       string
	IncludeTimestamps bool
}

// Config selects and configures one remote model adapter.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// Model is implemented by every remote adapter in this package.
type Model interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// New builds the adapter named by cfg.Provider.
func New(cfg Config, log *slog.Logger) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderGemini:
		return NewGeminiModel(cfg, log), nil
	case ProviderOpenAI:
		return NewOpenAIModel(cfg, log), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
