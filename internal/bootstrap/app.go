package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"media-scribe/internal/config"
	"media-scribe/internal/domain"
	"media-scribe/internal/logger"
	"media-scribe/internal/service"
	"media-scribe/internal/session"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// sessionEventName is the runtime event every session event is pushed on.
const sessionEventName = "session:event"

var mediaDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Audio and video",
		Pattern:     "*.mp3;*.wav;*.m4a;*.aac;*.flac;*.ogg;*.opus;*.mp4;*.mov;*.mkv;*.avi;*.webm;*.mpeg",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

// App exposes the transcription session to the desktop frontend.
type App struct {
	Service *service.Service
	assets  fs.FS
	log     *slog.Logger
	emit    func(ctx context.Context, name string, data ...interface{})

	mu          sync.Mutex
	runtimeCtx  context.Context
	cancel      context.CancelFunc
	runID       uint64
	unsubscribe func()
}

// New builds the application from the environment and persisted settings.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		JSONFormat: cfg.Log.JSON,
		AddSource:  cfg.Log.AddSource,
	})

	svc, err := service.New(cfg, service.Options{Logger: log})
	if err != nil {
		return nil, err
	}

	return newApp(svc, assets), nil
}

func newApp(svc *service.Service, assets fs.FS) *App {
	return &App{
		Service: svc,
		assets:  assets,
		log:     svc.Logger(),
		emit:    wailsruntime.EventsEmit,
	}
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "Media Transcriber",
		Width:       1180,
		Height:      780,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown:  a.Shutdown,
		Bind:        []interface{}{a},
	})
}

// Startup stores the Wails runtime context and starts pushing session events.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
	a.unsubscribe = a.Service.Session().Events().Subscribe(a.pushEvent)
}

// Shutdown stops event pushes, cancels in-flight work and removes the preview.
func (a *App) Shutdown(ctx context.Context) {
	a.mu.Lock()
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.runtimeCtx = nil
	a.mu.Unlock()

	if err := a.Service.Close(); err != nil {
		a.log.Warn("release preview on shutdown", slog.String("error", err.Error()))
	}
}

// PickMediaFile opens a native file dialog and prepares the chosen file.
// Cancelling the dialog leaves the session unchanged.
func (a *App) PickMediaFile() (session.Snapshot, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return session.Snapshot{}, err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select audio or video file",
		Filters: mediaDialogFilter,
	})
	if err != nil {
		return session.Snapshot{}, err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return a.CurrentState(), nil
	}

	return a.SelectMediaFile(path)
}

// SelectMediaFile reads and encodes the file at path, replacing any
// previous selection.
func (a *App) SelectMediaFile(path string) (session.Snapshot, error) {
	err := a.Service.SelectPath(context.Background(), path)
	if err != nil {
		return a.CurrentState(), bindingError(err)
	}
	return a.CurrentState(), nil
}

// StartTranscription begins transcription in the background. Progress and the
// outcome arrive as session events. A call refused by the session has no
// effect on a request already in flight.
func (a *App) StartTranscription(includeTimestamps bool) (session.Snapshot, error) {
	run, err := a.Service.Session().BeginTranscription(includeTimestamps)
	if err != nil {
		return a.CurrentState(), bindingError(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.mu.Lock()
	a.runID++
	id := a.runID
	a.cancel = cancel
	a.mu.Unlock()

	go func() {
		defer cancel()
		defer a.clearRun(id)
		_, err := run(ctx)
		if err != nil && !errors.Is(err, session.ErrSuperseded) {
			a.log.Warn("transcription did not complete", slog.String("error", err.Error()))
		}
	}()

	return a.CurrentState(), nil
}

// clearRun drops the cancel func of run id if no newer run replaced it.
func (a *App) clearRun(id uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runID != id || a.cancel == nil {
		return
	}
	a.cancel()
	a.cancel = nil
}

// ResetSession cancels any in-flight request and clears the session.
func (a *App) ResetSession() session.Snapshot {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.mu.Unlock()

	return a.Service.Session().Reset()
}

// CurrentState returns the session snapshot.
func (a *App) CurrentState() session.Snapshot {
	return a.Service.Session().Snapshot()
}

// SessionEvents returns all events with sequence greater than sinceSeq.
func (a *App) SessionEvents(sinceSeq int64) []session.Event {
	return a.Service.Session().Events().Since(sinceSeq)
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	return a.Service.Settings()
}

// SaveSettings validates and persists settings.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	saved, err := a.Service.SaveSettings(settings)
	if err != nil {
		return domain.Settings{}, bindingError(err)
	}
	return saved, nil
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	return a.Service.Diagnostics()
}

// RefreshDiagnostics reloads settings and reruns readiness checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	return a.Service.RefreshDiagnostics()
}

// FixDiagnostic applies the remediation for one failed diagnostic item.
func (a *App) FixDiagnostic(itemID string) (domain.DiagnosticReport, error) {
	return a.Service.FixDiagnostic(itemID)
}

// OpenPreview opens the selected media in the system player.
func (a *App) OpenPreview() error {
	snap := a.CurrentState()
	if snap.File == nil || snap.File.PreviewPath == "" {
		return fmt.Errorf("no preview is available")
	}
	return openWithSystem(snap.File.PreviewPath)
}

// pushEvent forwards one session event to the frontend.
func (a *App) pushEvent(event session.Event) {
	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil && a.emit != nil {
		a.emit(ctx, sessionEventName, event)
	}
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// bindingError flattens categorized errors to their user message so the
// frontend receives one readable string.
func bindingError(err error) error {
	var e *domain.Error
	if errors.As(err, &e) {
		return errors.New(e.Message)
	}
	return err
}

// openWithSystem launches the platform default handler for path.
func openWithSystem(path string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", filepath.Clean(path))
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch system player: %w", err)
	}
	return nil
}
