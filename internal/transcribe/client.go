package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"media-scribe/internal/domain"
	"media-scribe/internal/metrics"
	"media-scribe/internal/providers"
)

// Model isolates the remote multimodal model behind an interface.
type Model interface {
	Name() string
	Generate(ctx context.Context, req providers.Request) (string, error)
}

// Options configures a Client.
type Options struct {
	// APIKey is only checked for presence; the Model carries it on the wire.
	APIKey  string
	Model   Model
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Client validates transcription inputs, issues one model request and
// normalizes the outcome into a result or a categorized error.
type Client struct {
	apiKey   string
	model    Model
	log      *slog.Logger
	metrics  *metrics.Metrics
	maxBytes int64
	now      func() time.Time
}

// NewClient builds a client from opts.
func NewClient(opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		apiKey:   strings.TrimSpace(opts.APIKey),
		model:    opts.Model,
		log:      log,
		metrics:  opts.Metrics,
		maxBytes: domain.MaxMediaBytes,
		now:      time.Now,
	}
}

// Transcribe sends payload (base64) to the model and returns its transcript.
func (c *Client) Transcribe(ctx context.Context, payload, mimeType string, includeTimestamps bool) (domain.TranscriptionResult, error) {
	return c.Run(ctx, domain.TranscriptionRequest{
		Payload:           domain.EncodedPayload{Data: payload, MimeType: mimeType},
		MimeType:          mimeType,
		IncludeTimestamps: includeTimestamps,
	})
}

// Run executes one transcription attempt. Preconditions are checked before
// any network activity.
func (c *Client) Run(ctx context.Context, req domain.TranscriptionRequest) (domain.TranscriptionResult, error) {
	if err := c.checkPreconditions(req); err != nil {
		c.fail(ctx, err, req, -1)
		return domain.TranscriptionResult{}, err
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = req.Payload.MimeType
	}

	c.metrics.RecordTranscriptionRequest(len(req.Payload.Data))
	start := c.now()

	text, err := c.model.Generate(ctx, providers.Request{
		Data:              req.Payload.Data,
		MimeType:          mimeType,
		Instruction:       BuildInstruction(mimeType, req.IncludeTimestamps),
		IncludeTimestamps: req.IncludeTimestamps,
	})
	elapsed := c.now().Sub(start).Seconds()
	if err != nil {
		mapped := classifyFailure(err)
		c.fail(ctx, mapped, req, elapsed)
		return domain.TranscriptionResult{}, mapped
	}

	text = strings.TrimSpace(text)
	if text == "" {
		empty := domain.NewError(
			domain.ErrorKindEmptyResponse,
			"No transcription was returned. The media may be silent or unrecognized; try again or use a different file.",
			nil,
		)
		c.fail(ctx, empty, req, elapsed)
		return domain.TranscriptionResult{}, empty
	}

	c.metrics.RecordTranscriptionSuccess(elapsed)
	c.log.InfoContext(ctx, "transcription completed",
		slog.String("model", c.model.Name()),
		slog.String("mime_type", mimeType),
		slog.Int("chars", len(text)),
		slog.Float64("seconds", elapsed))

	return domain.TranscriptionResult{
		Text:        text,
		Model:       c.model.Name(),
		GeneratedAt: c.now().UTC(),
	}, nil
}

// checkPreconditions enforces credential, payload presence and the size ceiling.
func (c *Client) checkPreconditions(req domain.TranscriptionRequest) error {
	if c.apiKey == "" || c.model == nil {
		return domain.NewError(
			domain.ErrorKindConfiguration,
			"The transcription service is not configured: an API key is required.",
			nil,
		)
	}
	if req.Payload.Data == "" {
		return domain.NewError(domain.ErrorKindInvalidInput, "No media data was provided.", nil)
	}
	if size := req.Payload.DecodedSize(); size > c.maxBytes {
		return domain.NewError(
			domain.ErrorKindInvalidInput,
			fmt.Sprintf("The file is too large (%d MB); the limit is %d MB.", size/(1024*1024), c.maxBytes/(1024*1024)),
			nil,
		)
	}
	return nil
}

// fail logs a failure and records it; duration < 0 marks a precondition failure.
func (c *Client) fail(ctx context.Context, err error, req domain.TranscriptionRequest, duration float64) {
	kind := domain.KindOf(err)
	c.metrics.RecordTranscriptionFailure(string(kind), duration)
	c.log.ErrorContext(ctx, "transcription failed",
		slog.String("kind", string(kind)),
		slog.String("mime_type", req.MimeType),
		slog.Int("payload_bytes", len(req.Payload.Data)),
		slog.String("error", err.Error()))
}

// rejectionMarkers are substrings of service messages meaning the media itself
// was refused.
var rejectionMarkers = []string{
	"invalid_argument",
	"invalid argument",
	"invalid media",
	"unsupported mime",
	"invalid file format",
}

// classifyFailure converts a transport or service error into a caller-facing kind.
func classifyFailure(err error) *domain.Error {
	if errors.Is(err, context.Canceled) {
		return domain.NewError(domain.ErrorKindServiceError, "The transcription request was cancelled.", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewError(domain.ErrorKindServiceError, "The transcription request timed out.", err)
	}

	lower := strings.ToLower(err.Error())
	for _, marker := range rejectionMarkers {
		if strings.Contains(lower, marker) {
			return domain.NewError(
				domain.ErrorKindMediaRejected,
				"The service could not process this media. Use a standard format (MP3, WAV, MP4) or a smaller file.",
				err,
			)
		}
	}

	return domain.NewError(domain.ErrorKindServiceError, "Transcription failed: "+err.Error(), err)
}
