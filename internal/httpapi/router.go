package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"media-scribe/internal/domain"
	"media-scribe/internal/logger"
	"media-scribe/internal/metrics"
	"media-scribe/internal/session"
)

// Backend is what the HTTP binding needs from the application service.
type Backend interface {
	Session() *session.Session
	Settings() (domain.Settings, error)
	SaveSettings(domain.Settings) (domain.Settings, error)
	IncludeTimestampsDefault() bool
	Models() []domain.ModelOption
	Diagnostics() domain.DiagnosticReport
	RefreshDiagnostics() (domain.DiagnosticReport, error)
	Registry() *prometheus.Registry
	Metrics() *metrics.Metrics
}

// Options configures the router.
type Options struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	MaxUploadBytes int64
}

// Handler serves the session over HTTP.
type Handler struct {
	backend   Backend
	log       *slog.Logger
	maxUpload int64
	upgrader  websocket.Upgrader
}

// NewRouter builds the chi router for the HTTP binding.
func NewRouter(backend Backend, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 || maxUpload > domain.MaxMediaBytes {
		maxUpload = domain.MaxMediaBytes
	}

	h := &Handler{
		backend:   backend,
		log:       log,
		maxUpload: maxUpload,
		upgrader:  newUpgrader(origins),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(log, backend.Metrics()))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	router.Get("/healthz", h.health)
	router.Handle("/metrics", promhttp.HandlerFor(backend.Registry(), promhttp.HandlerOpts{}))

	router.Route("/api/v1", func(api chi.Router) {
		api.Get("/state", h.state)
		api.Post("/file", h.selectFile)
		api.Post("/transcribe", h.transcribe)
		api.Post("/reset", h.reset)
		api.Get("/events", h.events)
		api.Get("/events/ws", h.eventStream)
		api.Get("/models", h.models)
		api.Route("/settings", func(settings chi.Router) {
			settings.Get("/", h.getSettings)
			settings.Put("/", h.saveSettings)
		})
		api.Route("/diagnostics", func(diag chi.Router) {
			diag.Get("/", h.diagnostics)
			diag.Post("/refresh", h.refreshDiagnostics)
		})
	})

	return router
}
