package bootstrap

import "media-scribe/internal/domain"

// GetModels returns the models offered by the configured provider with the
// saved choice marked.
func (a *App) GetModels() []domain.ModelOption {
	return a.Service.Models()
}
