package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"media-scribe/internal/config"
	"media-scribe/internal/diagnostics"
	"media-scribe/internal/domain"
	"media-scribe/internal/logger"
	"media-scribe/internal/metrics"
	"media-scribe/internal/providers"
	"media-scribe/internal/session"
	"media-scribe/internal/transcribe"
)

// ModelFactory builds a remote model adapter.
type ModelFactory func(cfg providers.Config, log *slog.Logger) (providers.Model, error)

// Options overrides collaborators of a Service. Zero values use production
// implementations.
type Options struct {
	Logger   *slog.Logger
	Store    config.Store
	Checker  *diagnostics.Checker
	Previews session.PreviewStore
	Registry *prometheus.Registry
	NewModel ModelFactory
}

// Service owns the session and everything both UI bindings share: settings,
// the transcription client, diagnostics and metrics.
type Service struct {
	cfg      *config.Config
	log      *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	store    config.Store
	checker  *diagnostics.Checker
	newModel ModelFactory
	session  *session.Session

	mu       sync.RWMutex
	settings domain.Settings
	client   *transcribe.Client
	report   domain.DiagnosticReport
}

// New loads persisted settings, builds the transcription client and runs
// startup diagnostics.
func New(cfg *config.Config, opts Options) (*Service, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}
	store := opts.Store
	if store == nil {
		store = config.NewJSONStore(cfg.SettingsFile())
	}
	checker := opts.Checker
	if checker == nil {
		checker = diagnostics.NewChecker()
	}
	previews := opts.Previews
	if previews == nil {
		previews = session.NewTempPreviewStore(cfg.PreviewDir)
	}
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	newModel := opts.NewModel
	if newModel == nil {
		newModel = providers.New
	}

	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	s := &Service{
		cfg:      cfg,
		log:      log,
		registry: registry,
		metrics:  metrics.NewMetrics(registry),
		store:    store,
		checker:  checker,
		newModel: newModel,
		settings: settings,
	}
	s.client = s.buildClient(settings)
	s.session = session.New(session.Options{
		Transcriber: s,
		Previews:    previews,
		Events:      session.NewEventBus(1000),
		Logger:      log,
		Metrics:     s.metrics,
	})
	s.report = s.runChecks(settings)

	if s.report.HasFailures {
		for _, item := range s.report.Failed() {
			log.Warn("diagnostic failed", slog.String("check", item.ID), slog.String("message", item.Message))
		}
	}
	return s, nil
}

// Session returns the shared session.
func (s *Service) Session() *session.Session {
	return s.session
}

// Registry returns the Prometheus registry collectors are registered with.
func (s *Service) Registry() *prometheus.Registry {
	return s.registry
}

// Logger returns the service logger.
func (s *Service) Logger() *slog.Logger {
	return s.log
}

// Run implements session.Transcriber with the client for the current settings.
func (s *Service) Run(ctx context.Context, req domain.TranscriptionRequest) (domain.TranscriptionResult, error) {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()
	return client.Run(ctx, req)
}

// SelectPath reads a media file from disk and prepares it.
func (s *Service) SelectPath(ctx context.Context, path string) error {
	file, err := LoadMediaFile(path)
	if err != nil {
		s.log.Warn("read media file", slog.String("path", path), slog.String("error", err.Error()))
		return err
	}
	return s.session.SelectFile(ctx, file)
}

// Settings reloads persisted settings.
func (s *Service) Settings() (domain.Settings, error) {
	settings, err := s.store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	return settings, nil
}

// SaveSettings validates and persists settings, then rebuilds the client and
// refreshes diagnostics.
func (s *Service) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized, err := s.normalizeSettings(settings)
	if err != nil {
		return domain.Settings{}, err
	}
	if err := s.store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	client := s.buildClient(normalized)
	report := s.runChecks(normalized)

	s.mu.Lock()
	s.settings = normalized
	s.client = client
	s.report = report
	s.mu.Unlock()

	s.log.Info("settings saved", slog.String("model", normalized.Model), slog.Bool("timestamps", normalized.IncludeTimestamps))
	return normalized, nil
}

// Models returns the catalog for the configured provider.
func (s *Service) Models() []domain.ModelOption {
	s.mu.RLock()
	selected := s.settings.Model
	s.mu.RUnlock()
	if selected == "" {
		selected = s.cfg.Model
	}
	return providers.Catalog(s.cfg.Provider, selected)
}

// Diagnostics returns the cached diagnostics report.
func (s *Service) Diagnostics() domain.DiagnosticReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// RefreshDiagnostics reloads settings and reruns all checks.
func (s *Service) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := s.Settings()
	if err != nil {
		return domain.DiagnosticReport{}, err
	}

	report := s.runChecks(settings)
	s.mu.Lock()
	s.report = report
	s.mu.Unlock()
	return report, nil
}

// Close releases the session preview.
func (s *Service) Close() error {
	return s.session.Close()
}

// IncludeTimestampsDefault returns the persisted timestamp preference.
func (s *Service) IncludeTimestampsDefault() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.IncludeTimestamps
}

func (s *Service) buildClient(settings domain.Settings) *transcribe.Client {
	var model transcribe.Model
	m, err := s.newModel(s.cfg.ProviderConfig(settings.Model), s.log)
	if err != nil {
		s.log.Error("build model", slog.String("provider", s.cfg.Provider), slog.String("error", err.Error()))
	} else {
		model = m
	}

	return transcribe.NewClient(transcribe.Options{
		APIKey:  s.cfg.APIKey(),
		Model:   model,
		Logger:  s.log,
		Metrics: s.metrics,
	})
}

func (s *Service) runChecks(settings domain.Settings) domain.DiagnosticReport {
	model := settings.Model
	if model == "" {
		model = s.cfg.Model
	}
	return s.checker.Run(diagnostics.Input{
		Provider:      s.cfg.Provider,
		Model:         model,
		CredentialEnv: s.cfg.CredentialEnv(),
		HasCredential: s.cfg.APIKey() != "",
		PreviewDir:    s.cfg.PreviewDir,
		SettingsPath:  s.cfg.SettingsFile(),
	})
}

// normalizeSettings trims the model and rejects ids outside the catalog.
func (s *Service) normalizeSettings(settings domain.Settings) (domain.Settings, error) {
	settings.Model = strings.TrimSpace(settings.Model)
	if settings.Model != "" && !providers.KnownModel(s.cfg.Provider, settings.Model) {
		return domain.Settings{}, domain.NewError(
			domain.ErrorKindInvalidInput,
			fmt.Sprintf("Unknown model %q for provider %s.", settings.Model, s.cfg.Provider),
			nil,
		)
	}
	return settings, nil
}

// Metrics returns the collectors shared by the session and the bindings.
func (s *Service) Metrics() *metrics.Metrics {
	return s.metrics
}
