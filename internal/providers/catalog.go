package providers

import (
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"media-scribe/internal/domain"
)

var modelCatalog = []domain.ModelOption{
	{
		ID:          "gemini-2.5-flash",
		Name:        "Gemini 2.5 Flash",
		Provider:    ProviderGemini,
		Description: "Fast multimodal model; default.",
	},
	{
		ID:          "gemini-2.5-pro",
		Name:        "Gemini 2.5 Pro",
		Provider:    ProviderGemini,
		Description: "Higher accuracy on noisy or multi-speaker recordings.",
	},
	{
		ID:          "gemini-2.0-flash",
		Name:        "Gemini 2.0 Flash",
		Provider:    ProviderGemini,
		Description: "Previous generation flash model.",
	},
	{
		ID:          openai.Whisper1,
		Name:        "Whisper",
		Provider:    ProviderOpenAI,
		Description: "Speech-to-text with segment timestamps. No speaker labels.",
	},
	{
		ID:          "gpt-4o-transcribe",
		Name:        "GPT-4o Transcribe",
		Provider:    ProviderOpenAI,
		Description: "Higher accuracy, text only.",
	},
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	if normalizeProvider(provider) == ProviderOpenAI {
		return openai.Whisper1
	}
	return DefaultGeminiModel
}

// Catalog returns the models offered for provider with selected marked.
// An empty selected marks the provider default.
func Catalog(provider, selected string) []domain.ModelOption {
	provider = normalizeProvider(provider)
	selected = strings.TrimSpace(selected)
	if selected == "" {
		selected = DefaultModel(provider)
	}

	models := make([]domain.ModelOption, 0, len(modelCatalog))
	for _, m := range modelCatalog {
		if m.Provider != provider {
			continue
		}
		m.Selected = m.ID == selected
		models = append(models, m)
	}
	return models
}

// KnownModel reports whether id is in the catalog for provider.
func KnownModel(provider, id string) bool {
	provider = normalizeProvider(provider)
	for _, m := range modelCatalog {
		if m.Provider == provider && m.ID == id {
			return true
		}
	}
	return false
}

func normalizeProvider(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return ProviderGemini
	}
	return provider
}
