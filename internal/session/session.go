package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"media-scribe/internal/domain"
	"media-scribe/internal/encoder"
	"media-scribe/internal/metrics"
)

// ErrBusy is returned when an action arrives while a file is being prepared
// or transcribed. The session state is left unchanged.
var ErrBusy = errors.New("session is busy")

// ErrNoFile is returned when transcription is requested without a prepared file.
var ErrNoFile = errors.New("no prepared file")

// ErrInvalidState is returned for actions the current state does not accept.
var ErrInvalidState = errors.New("action not allowed in current state")

// ErrSuperseded is returned to the caller of an operation whose result was
// discarded because the session was reset while it ran.
var ErrSuperseded = errors.New("operation superseded by reset")

// Transcriber runs one transcription attempt.
type Transcriber interface {
	Run(ctx context.Context, req domain.TranscriptionRequest) (domain.TranscriptionResult, error)
}

// EncodeFunc converts size bytes from r into base64.
type EncodeFunc func(ctx context.Context, r io.Reader, size int64, onProgress encoder.ProgressFunc) (string, error)

// Options wires a Session to its collaborators.
type Options struct {
	Transcriber Transcriber
	Previews    PreviewStore
	Events      *EventBus
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Encode      EncodeFunc
}

// Snapshot is a copy of the session state for bindings.
type Snapshot struct {
	SessionID string                      `json:"sessionId"`
	State     domain.AppState             `json:"state"`
	Ready     bool                        `json:"ready"`
	Error     string                      `json:"error,omitempty"`
	ErrorKind domain.ErrorKind            `json:"errorKind,omitempty"`
	File      *domain.FileInfo            `json:"file,omitempty"`
	Result    *domain.TranscriptionResult `json:"result,omitempty"`
}

// Session sequences selection, encoding and transcription for one user and
// tracks the single active AppState.
type Session struct {
	id          string
	transcriber Transcriber
	previews    PreviewStore
	events      *EventBus
	log         *slog.Logger
	metrics     *metrics.Metrics
	encode      EncodeFunc

	mu         sync.Mutex
	state      domain.AppState
	errMsg     string
	errKind    domain.ErrorKind
	file       *domain.FileInfo
	payload    *domain.EncodedPayload
	result     *domain.TranscriptionResult
	preview    PreviewHandle
	generation uint64
}

// New creates an idle session.
func New(opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	events := opts.Events
	if events == nil {
		events = NewEventBus(1000)
	}
	encode := opts.Encode
	if encode == nil {
		encode = encoder.EncodeReader
	}

	id := uuid.NewString()
	return &Session{
		id:          id,
		transcriber: opts.Transcriber,
		previews:    opts.Previews,
		events:      events,
		log:         log.With(slog.String("session_id", id)),
		metrics:     opts.Metrics,
		encode:      encode,
		state:       domain.AppStateIdle,
	}
}

// ID returns the session identifier carried by every event.
func (s *Session) ID() string {
	return s.id
}

// Events returns the bus the session publishes to.
func (s *Session) Events() *EventBus {
	return s.events
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SelectFile validates and encodes file, replacing any previous selection.
// It is rejected with ErrBusy while another file is being prepared or
// transcribed.
func (s *Session) SelectFile(ctx context.Context, file domain.MediaFile) error {
	s.mu.Lock()
	next, ok := Next(s.state, TriggerFileSelected)
	if !ok || isBusy(s.state) {
		state := s.state
		s.mu.Unlock()
		s.metrics.RecordRejectedAction("select")
		s.log.Warn("file selection rejected", slog.String("state", string(state)))
		return ErrBusy
	}
	s.releasePreviewLocked()
	s.clearLocked()
	s.state = next
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	s.publish(Event{
		Type:    EventTypeStatus,
		State:   domain.AppStatePreparing,
		Message: "Preparing " + file.Name,
	})

	normalized, err := NormalizeMediaFile(file)
	if err != nil {
		return s.finishPrepare(gen, normalized, nil, "", err)
	}

	var handle PreviewHandle
	if s.previews != nil {
		handle, err = s.previews.Acquire(normalized)
		if err != nil {
			s.log.Warn("preview unavailable", slog.String("error", err.Error()))
			handle = nil
		}
	}

	start := time.Now()
	lastPercent := int64(-1)
	data, err := s.encode(ctx, bytes.NewReader(normalized.Data), normalized.Size, func(done, total int64) {
		percent := done * 100 / total
		if percent == lastPercent {
			return
		}
		lastPercent = percent
		s.publish(Event{
			Type:       EventTypeProgress,
			State:      domain.AppStatePreparing,
			BytesDone:  done,
			BytesTotal: total,
		})
	})
	if err != nil {
		if handle != nil {
			_ = handle.Release()
		}
		if domain.KindOf(err) == "" {
			err = domain.NewError(domain.ErrorKindIOFailure, "Failed to read the selected file; please select it again.", err)
		}
		return s.finishPrepare(gen, normalized, nil, "", err)
	}

	s.metrics.RecordPrepared(time.Since(start).Seconds(), normalized.Size)
	return s.finishPrepare(gen, normalized, handle, data, nil)
}

// finishPrepare commits the outcome of a preparation if the session was not
// reset meanwhile; otherwise the outcome is dropped and handle released.
func (s *Session) finishPrepare(gen uint64, file domain.MediaFile, handle PreviewHandle, data string, prepErr error) error {
	trigger := TriggerPrepareSucceeded
	if prepErr != nil {
		trigger = TriggerPrepareFailed
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		if handle != nil {
			_ = handle.Release()
		}
		s.log.Info("discarding preparation result after reset")
		return ErrSuperseded
	}

	next, _ := Next(s.state, trigger)
	s.state = next
	if prepErr != nil {
		s.errMsg = domain.UserMessage(prepErr)
		s.errKind = domain.KindOf(prepErr)
	} else {
		s.preview = handle
		s.file = &domain.FileInfo{
			Name:     file.Name,
			MimeType: file.MimeType,
			Size:     file.Size,
		}
		if handle != nil {
			s.file.PreviewPath = handle.Path()
		}
		s.payload = &domain.EncodedPayload{Data: data, MimeType: file.MimeType}
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if prepErr != nil {
		s.metrics.RecordPrepareFailure()
		s.log.Error("file preparation failed",
			slog.String("kind", string(snap.ErrorKind)),
			slog.String("error", prepErr.Error()))
		s.publish(Event{
			Type:      EventTypeError,
			State:     snap.State,
			Message:   snap.Error,
			ErrorKind: snap.ErrorKind,
		})
		return prepErr
	}

	s.log.Info("file prepared",
		slog.String("name", file.Name),
		slog.String("mime_type", file.MimeType),
		slog.Int64("bytes", file.Size))
	s.publish(Event{
		Type:    EventTypeStatus,
		State:   snap.State,
		Message: "File ready",
		File:    snap.File,
	})
	return nil
}

// StartTranscription sends the prepared payload to the transcriber and waits
// for the outcome. At most one transcription runs at a time.
func (s *Session) StartTranscription(ctx context.Context, includeTimestamps bool) (domain.TranscriptionResult, error) {
	run, err := s.BeginTranscription(includeTimestamps)
	if err != nil {
		return domain.TranscriptionResult{}, err
	}
	return run(ctx)
}

// RunFunc performs an accepted transcription and commits its outcome.
type RunFunc func(ctx context.Context) (domain.TranscriptionResult, error)

// BeginTranscription moves the session to Processing and returns the run
// that completes it. Refusals (ErrBusy, ErrNoFile, ErrInvalidState,
// Configuration) leave the state unchanged and return no run.
func (s *Session) BeginTranscription(includeTimestamps bool) (RunFunc, error) {
	s.mu.Lock()
	if isBusy(s.state) {
		s.mu.Unlock()
		s.metrics.RecordRejectedAction("transcribe")
		return nil, ErrBusy
	}
	if s.payload == nil {
		s.mu.Unlock()
		return nil, ErrNoFile
	}
	next, ok := Next(s.state, TriggerTranscribeRequested)
	if !ok {
		s.mu.Unlock()
		return nil, ErrInvalidState
	}
	if s.transcriber == nil {
		s.mu.Unlock()
		return nil, domain.NewError(
			domain.ErrorKindConfiguration,
			"The transcription service is not configured.",
			nil,
		)
	}

	req := domain.TranscriptionRequest{
		Payload:           *s.payload,
		MimeType:          s.payload.MimeType,
		IncludeTimestamps: includeTimestamps,
	}
	s.state = next
	s.errMsg = ""
	s.errKind = ""
	s.result = nil
	gen := s.generation
	s.mu.Unlock()

	s.publish(Event{
		Type:    EventTypeStatus,
		State:   domain.AppStateProcessing,
		Message: "Transcribing",
	})

	return func(ctx context.Context) (domain.TranscriptionResult, error) {
		return s.runTranscription(ctx, gen, req)
	}, nil
}

func (s *Session) runTranscription(ctx context.Context, gen uint64, req domain.TranscriptionRequest) (domain.TranscriptionResult, error) {
	result, err := s.transcriber.Run(ctx, req)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.log.Info("discarding transcription result after reset")
		return domain.TranscriptionResult{}, ErrSuperseded
	}
	if err != nil {
		s.state, _ = Next(s.state, TriggerTranscribeFailed)
		s.errMsg = domain.UserMessage(err)
		s.errKind = domain.KindOf(err)
		if s.errKind == "" {
			s.errKind = domain.ErrorKindServiceError
		}
	} else {
		s.state, _ = Next(s.state, TriggerTranscribeSucceeded)
		res := result
		s.result = &res
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err != nil {
		s.publish(Event{
			Type:      EventTypeError,
			State:     snap.State,
			Message:   snap.Error,
			ErrorKind: snap.ErrorKind,
		})
		return domain.TranscriptionResult{}, err
	}

	s.publish(Event{
		Type:    EventTypeResult,
		State:   snap.State,
		Message: "Transcription complete",
		Text:    result.Text,
	})
	return result, nil
}

// Reset releases the preview handle, clears all session data and returns to
// Idle. Any in-flight operation will have its result discarded.
func (s *Session) Reset() Snapshot {
	s.mu.Lock()
	s.releasePreviewLocked()
	s.clearLocked()
	s.state, _ = Next(s.state, TriggerReset)
	s.generation++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(Event{
		Type:    EventTypeStatus,
		State:   snap.State,
		Message: "Session reset",
	})
	return snap
}

// Close releases held resources. The session stays usable.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releasePreviewLocked()
}

func (s *Session) releasePreviewLocked() error {
	if s.preview == nil {
		return nil
	}
	err := s.preview.Release()
	if err != nil {
		s.log.Warn("release preview", slog.String("error", err.Error()))
	}
	s.preview = nil
	return err
}

func (s *Session) clearLocked() {
	s.errMsg = ""
	s.errKind = ""
	s.file = nil
	s.payload = nil
	s.result = nil
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID: s.id,
		State:     s.state,
		Ready:     s.payload != nil,
		Error:     s.errMsg,
		ErrorKind: s.errKind,
	}
	if s.file != nil {
		f := *s.file
		snap.File = &f
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}

func (s *Session) publish(event Event) {
	event.SessionID = s.id
	s.events.Publish(event)
}
