package diagnostics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"media-scribe/internal/domain"
)

// TestCheckerRunAllPass validates happy-path diagnostics report.
func TestCheckerRunAllPass(t *testing.T) {
	root := t.TempDir()
	checker := NewCheckerForTests(os.MkdirAll, os.CreateTemp, os.Remove, func() string { return root })

	report := checker.Run(Input{
		Provider:      "gemini",
		CredentialEnv: "GEMINI_API_KEY",
		HasCredential: true,
		PreviewDir:    filepath.Join(root, "previews"),
		SettingsPath:  filepath.Join(root, "cfg", "settings.json"),
	})

	if report.HasFailures {
		t.Fatalf("expected no failures, got %+v", report.Items)
	}
	assertStatusByID(t, report, "settings_dir", domain.DiagnosticStatusPass)
}

// TestCheckerRunMissingCredential flags the key without leaking anything.
func TestCheckerRunMissingCredential(t *testing.T) {
	root := t.TempDir()
	checker := NewCheckerForTests(os.MkdirAll, os.CreateTemp, os.Remove, func() string { return root })

	report := checker.Run(Input{
		Provider:      "openai",
		CredentialEnv: "OPENAI_API_KEY",
	})

	if !report.HasFailures {
		t.Fatal("expected failures")
	}
	assertStatusByID(t, report, "credential", domain.DiagnosticStatusFail)
	assertStatusByID(t, report, "preview_dir", domain.DiagnosticStatusPass)
	if failed := report.Failed(); len(failed) != 1 || !strings.Contains(failed[0].Message, "OPENAI_API_KEY") {
		t.Fatalf("failed items = %+v", failed)
	}
}

// TestCheckerRunUnknownProviderAndUnwritableDir validates failure reporting.
func TestCheckerRunUnknownProviderAndUnwritableDir(t *testing.T) {
	checker := NewCheckerForTests(
		func(string, os.FileMode) error { return errors.New("permission denied") },
		os.CreateTemp,
		os.Remove,
		func() string { return "/nowhere" },
	)

	report := checker.Run(Input{
		Provider:      "azure",
		CredentialEnv: "GEMINI_API_KEY",
		HasCredential: true,
	})

	assertStatusByID(t, report, "provider", domain.DiagnosticStatusFail)
	assertStatusByID(t, report, "preview_dir", domain.DiagnosticStatusFail)
}

// assertStatusByID checks status for one diagnostic item by ID.
func assertStatusByID(t *testing.T, report domain.DiagnosticReport, id string, want domain.DiagnosticStatus) {
	t.Helper()
	for _, item := range report.Items {
		if item.ID == id {
			if item.Status != want {
				t.Fatalf("item %s: got %s, want %s", id, item.Status, want)
			}
			return
		}
	}
	t.Fatalf("diagnostic item not found: %s", id)
}
