package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIModel transcribes through the OpenAI audio transcription endpoint.
// The endpoint takes multipart file uploads, so the payload is decoded first.
type OpenAIModel struct {
	client *openai.Client
	model  string
	log    *slog.Logger
}

// NewOpenAIModel builds an OpenAI adapter with an optional base URL override.
func NewOpenAIModel(cfg Config, log *slog.Logger) *OpenAIModel {
	if log == nil {
		log = slog.Default()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = openai.Whisper1
	}

	return &OpenAIModel{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		log:    log,
	}
}

// Name returns the configured model id.
func (o *OpenAIModel) Name() string {
	return o.model
}

// Generate decodes the payload and requests a verbose transcription. When
// timestamps are requested, segments are rendered with [HH:MM:SS] prefixes.
func (o *OpenAIModel) Generate(ctx context.Context, req Request) (string, error) {
	audio, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return "", fmt.Errorf("invalid argument: payload is not valid base64: %w", err)
	}

	o.log.Debug("sending audio transcription request",
		slog.String("model", o.model),
		slog.String("mime_type", req.MimeType),
		slog.Int("bytes", len(audio)))

	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.model,
		FilePath: uploadName(req.MimeType),
		Reader:   bytes.NewReader(audio),
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return "", err
	}

	if !req.IncludeTimestamps || len(resp.Segments) == 0 {
		return resp.Text, nil
	}

	lines := make([]string, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		lines = append(lines, FormatTimestamp(seg.Start)+" "+text)
	}
	return strings.Join(lines, "\n"), nil
}

// FormatTimestamp renders seconds as [HH:MM:SS].
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("[%02d:%02d:%02d]", total/3600, (total%3600)/60, total%60)
}

var uploadExtensions = map[string]string{
	"audio/mpeg":      ".mp3",
	"audio/mp3":       ".mp3",
	"audio/wav":       ".wav",
	"audio/x-wav":     ".wav",
	"audio/wave":      ".wav",
	"audio/mp4":       ".m4a",
	"audio/x-m4a":     ".m4a",
	"audio/m4a":       ".m4a",
	"audio/aac":       ".m4a",
	"audio/ogg":       ".ogg",
	"audio/flac":      ".flac",
	"audio/x-flac":    ".flac",
	"audio/webm":      ".webm",
	"video/webm":      ".webm",
	"video/mp4":       ".mp4",
	"video/mpeg":      ".mpeg",
	"video/quicktime": ".mp4",
}

// uploadName picks a file name whose extension tells the API the format.
func uploadName(mimeType string) string {
	base := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(base, ';'); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	if ext, ok := uploadExtensions[base]; ok {
		return "media" + ext
	}
	return "media.bin"
}
