package diagnostics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"media-scribe/internal/domain"
	"media-scribe/internal/providers"
)

// Input describes the runtime configuration being checked.
type Input struct {
	Provider      string
	Model         string
	CredentialEnv string
	HasCredential bool
	PreviewDir    string
	SettingsPath  string
}

// Checker validates credentials, provider selection and required paths.
type Checker struct {
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
	tempDir    func() string
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return &Checker{
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
		tempDir:    os.TempDir,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(in Input) domain.DiagnosticReport {
	previewDir := in.PreviewDir
	if strings.TrimSpace(previewDir) == "" {
		previewDir = c.tempDir()
	}

	items := []domain.DiagnosticItem{
		c.checkCredential(in),
		c.checkProvider(in.Provider, in.Model),
		c.checkWritableDir("preview_dir", "Preview directory", previewDir),
	}
	if in.SettingsPath != "" {
		items = append(items, c.checkWritableDir("settings_dir", "Settings directory", filepath.Dir(in.SettingsPath)))
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkCredential reports whether the API key for the provider is set.
// The key itself never appears in the report.
func (c *Checker) checkCredential(in Input) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "credential",
		Name: "API key",
	}
	if !in.HasCredential {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("%s is not set.", in.CredentialEnv)
		item.Hint = fmt.Sprintf("Export %s or add it to a .env file next to the application, then restart.", in.CredentialEnv)
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("%s is set.", in.CredentialEnv)
	return item
}

// checkProvider validates the configured provider name.
func (c *Checker) checkProvider(provider, model string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "provider",
		Name: "Transcription provider",
	}

	switch provider {
	case "", providers.ProviderGemini, providers.ProviderOpenAI:
	default:
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Unknown provider: %s", provider)
		item.Hint = "Set TRANSCRIBER_PROVIDER to gemini or openai."
		return item
	}

	if provider == "" {
		provider = providers.ProviderGemini
	}
	if strings.TrimSpace(model) == "" {
		model = "provider default"
	}
	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("%s (%s)", provider, model)
	return item
}

// checkWritableDir validates directory existence and write access.
func (c *Checker) checkWritableDir(id, name, dir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   id,
		Name: name,
	}

	if err := c.mkdirAll(dir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create directory: %s", dir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(dir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Directory is not writable: %s", dir)
		item.Hint = "Choose a writable directory or adjust filesystem permissions."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", dir)
	return item
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
	tempDir func() string,
) *Checker {
	return &Checker{
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
		tempDir:    tempDir,
	}
}
