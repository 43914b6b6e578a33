package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"media-scribe/internal/config"
	"media-scribe/internal/domain"
	"media-scribe/internal/logger"
	"media-scribe/internal/providers"
)

// fakeStore keeps settings in memory.
type fakeStore struct {
	settings domain.Settings
	saved    int
}

func (s *fakeStore) Load() (domain.Settings, error) {
	return s.settings, nil
}

func (s *fakeStore) Save(settings domain.Settings) error {
	s.settings = settings
	s.saved++
	return nil
}

// fakeModel returns a fixed transcript and records the model it was built for.
type fakeModel struct {
	name string
	text string
	err  error
}

func (m *fakeModel) Name() string { return m.name }

func (m *fakeModel) Generate(ctx context.Context, req providers.Request) (string, error) {
	return m.text, m.err
}

func testConfig(t *testing.T, apiKey string) *config.Config {
	t.Helper()
	root := t.TempDir()
	return &config.Config{
		Provider:     providers.ProviderGemini,
		GeminiAPIKey: apiKey,
		PreviewDir:   root,
		SettingsPath: filepath.Join(root, "settings.json"),
	}
}

func newTestService(t *testing.T, cfg *config.Config, store *fakeStore) (*Service, *[]string) {
	t.Helper()
	var built []string
	svc, err := New(cfg, Options{
		Logger:   logger.Discard(),
		Store:    store,
		Registry: prometheus.NewRegistry(),
		NewModel: func(pc providers.Config, _ *slog.Logger) (providers.Model, error) {
			built = append(built, pc.Model)
			return &fakeModel{name: pc.Model, text: "transcript"}, nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc, &built
}

func writeMedia(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write media: %v", err)
	}
	return path
}

// TestServiceSelectAndTranscribe runs a file from disk through the session.
func TestServiceSelectAndTranscribe(t *testing.T) {
	svc, _ := newTestService(t, testConfig(t, "key"), &fakeStore{settings: config.DefaultSettings()})
	path := writeMedia(t, "talk.mp3", []byte("ID3 fake audio"))

	if err := svc.SelectPath(context.Background(), path); err != nil {
		t.Fatalf("select: %v", err)
	}
	snap := svc.Session().Snapshot()
	if !snap.Ready || snap.File.MimeType != "audio/mpeg" || snap.File.PreviewPath == "" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	result, err := svc.Session().StartTranscription(context.Background(), false)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if result.Text != "transcript" {
		t.Fatalf("text = %q", result.Text)
	}
}

// TestServiceMissingCredential surfaces a configuration error on transcribe.
func TestServiceMissingCredential(t *testing.T) {
	svc, _ := newTestService(t, testConfig(t, ""), &fakeStore{settings: config.DefaultSettings()})
	if !svc.Diagnostics().HasFailures {
		t.Fatal("expected credential diagnostic failure")
	}

	if err := svc.SelectPath(context.Background(), writeMedia(t, "a.wav", []byte("RIFF0000WAVEfmt "))); err != nil {
		t.Fatalf("select: %v", err)
	}
	_, err := svc.Session().StartTranscription(context.Background(), false)
	if !domain.IsKind(err, domain.ErrorKindConfiguration) {
		t.Fatalf("err = %v, want configuration", err)
	}
}

// TestServiceSaveSettingsRebuildsClient switches the model used for requests.
func TestServiceSaveSettingsRebuildsClient(t *testing.T) {
	store := &fakeStore{settings: config.DefaultSettings()}
	svc, built := newTestService(t, testConfig(t, "key"), store)

	saved, err := svc.SaveSettings(domain.Settings{Model: " gemini-2.5-pro ", IncludeTimestamps: true})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.Model != "gemini-2.5-pro" || store.saved != 1 {
		t.Fatalf("saved = %+v, count = %d", saved, store.saved)
	}
	if last := (*built)[len(*built)-1]; last != "gemini-2.5-pro" {
		t.Fatalf("client built for %q", last)
	}

	for _, m := range svc.Models() {
		if m.Selected != (m.ID == "gemini-2.5-pro") {
			t.Fatalf("selection wrong for %q", m.ID)
		}
	}
}

// TestServiceSaveSettingsRejectsUnknownModel keeps the previous settings.
func TestServiceSaveSettingsRejectsUnknownModel(t *testing.T) {
	store := &fakeStore{settings: config.DefaultSettings()}
	svc, _ := newTestService(t, testConfig(t, "key"), store)

	_, err := svc.SaveSettings(domain.Settings{Model: "whisper-1"})
	if !domain.IsKind(err, domain.ErrorKindInvalidInput) {
		t.Fatalf("err = %v, want invalid_input", err)
	}
	if store.saved != 0 {
		t.Fatal("settings should not be saved")
	}
}

// TestServiceFixPreviewDir creates a missing preview directory.
func TestServiceFixPreviewDir(t *testing.T) {
	cfg := testConfig(t, "key")
	cfg.PreviewDir = filepath.Join(t.TempDir(), "nested", "previews")
	svc, _ := newTestService(t, cfg, &fakeStore{settings: config.DefaultSettings()})

	if _, err := svc.FixDiagnostic("preview_dir"); err != nil {
		t.Fatalf("fix: %v", err)
	}
	if info, err := os.Stat(cfg.PreviewDir); err != nil || !info.IsDir() {
		t.Fatalf("preview dir missing: %v", err)
	}

	if _, err := svc.FixDiagnostic("credential"); err == nil {
		t.Fatal("credential fix should ask for user action")
	}
	if _, err := svc.FixDiagnostic("nope"); err == nil {
		t.Fatal("expected unsupported id error")
	}
}

// TestLoadMediaFile covers extension mapping and missing files.
func TestLoadMediaFile(t *testing.T) {
	file, err := LoadMediaFile(writeMedia(t, "clip.MOV", []byte{0, 0, 0, 20}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if file.Name != "clip.MOV" || file.MimeType != "video/quicktime" || file.Size != 4 {
		t.Fatalf("file = %+v", file)
	}

	_, err = LoadMediaFile(filepath.Join(t.TempDir(), "gone.mp3"))
	if !domain.IsKind(err, domain.ErrorKindIOFailure) {
		t.Fatalf("err = %v, want io_failure", err)
	}

	_, err = LoadMediaFile(t.TempDir())
	if !domain.IsKind(err, domain.ErrorKindInvalidInput) {
		t.Fatalf("err = %v, want invalid_input", err)
	}
}
