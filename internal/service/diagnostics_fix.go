package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"media-scribe/internal/domain"
)

// FixDiagnostic applies a local remediation for one failed diagnostic item.
// Items that need user action return an error carrying the hint.
func (s *Service) FixDiagnostic(itemID string) (domain.DiagnosticReport, error) {
	id := strings.TrimSpace(itemID)
	if id == "" {
		return domain.DiagnosticReport{}, fmt.Errorf("diagnostic item id is required")
	}

	var fixErr error
	switch id {
	case "preview_dir":
		fixErr = ensureDir(s.previewDir())
	case "settings_dir":
		fixErr = ensureDir(filepath.Dir(s.cfg.SettingsFile()))
	case "credential":
		fixErr = fmt.Errorf("set %s in the environment or a .env file and restart", s.cfg.CredentialEnv())
	case "provider":
		fixErr = fmt.Errorf("set TRANSCRIBER_PROVIDER to gemini or openai and restart")
	default:
		return domain.DiagnosticReport{}, fmt.Errorf("unsupported diagnostic item id: %s", id)
	}

	report, err := s.RefreshDiagnostics()
	if err != nil {
		return domain.DiagnosticReport{}, err
	}
	return report, fixErr
}

func (s *Service) previewDir() string {
	if dir := strings.TrimSpace(s.cfg.PreviewDir); dir != "" {
		return dir
	}
	return os.TempDir()
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
