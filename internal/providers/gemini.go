package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel   = "gemini-2.5-flash"

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 16 << 20
)

// GeminiModel calls the generateContent REST endpoint with inline media.
type GeminiModel struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// APIError is a non-2xx response from the remote model API.
type APIError struct {
	HTTPStatus int    `json:"code"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

// Error formats the API status first so callers can match on it.
func (e *APIError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("http %d: %s", e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("%s: %s (http %d)", e.Status, e.Message, e.HTTPStatus)
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type errorEnvelope struct {
	Error APIError `json:"error"`
}

// NewGeminiModel builds a Gemini adapter; empty fields fall back to defaults.
func NewGeminiModel(cfg Config, log *slog.Logger) *GeminiModel {
	if log == nil {
		log = slog.Default()
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultGeminiModel
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	log.Debug("creating gemini client",
		slog.String("base_url", baseURL),
		slog.String("model", model),
		slog.Bool("api_key_set", cfg.APIKey != ""))

	return &GeminiModel{
		apiKey:     cfg.APIKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Name returns the configured model id.
func (g *GeminiModel) Name() string {
	return g.model
}

// Generate sends one generateContent request and returns the joined text parts.
func (g *GeminiModel) Generate(ctx context.Context, req Request) (string, error) {
	if i := strings.IndexFunc(req.Data, notBase64); i >= 0 {
		return "", &APIError{
			HTTPStatus: http.StatusBadRequest,
			Status:     "INVALID_ARGUMENT",
			Message:    fmt.Sprintf("payload is not valid base64 (offset %d)", i),
		}
	}

	body, size, err := buildGenerateBody(req)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.ContentLength = size
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	g.log.Debug("sending generateContent request",
		slog.String("model", g.model),
		slog.String("mime_type", req.MimeType),
		slog.Int64("body_bytes", size))

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", decodeAPIError(resp.StatusCode, raw)
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(parsed.Candidates) == 0 {
		if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
			g.log.Warn("prompt blocked", slog.String("reason", parsed.PromptFeedback.BlockReason))
		}
		return "", nil
	}

	var b strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String(), nil
}

// buildGenerateBody streams the JSON body around the payload so the base64
// data is never copied into a second buffer. Base64 needs no JSON escaping.
func buildGenerateBody(req Request) (io.Reader, int64, error) {
	mimeType, err := json.Marshal(req.MimeType)
	if err != nil {
		return nil, 0, fmt.Errorf("encode mime type: %w", err)
	}
	instruction, err := json.Marshal(req.Instruction)
	if err != nil {
		return nil, 0, fmt.Errorf("encode instruction: %w", err)
	}

	head := `{"contents":[{"role":"user","parts":[{"inlineData":{"mimeType":` + string(mimeType) + `,"data":"`
	tail := `"}},{"text":` + string(instruction) + `}]}]}`
	size := int64(len(head) + len(req.Data) + len(tail))

	return io.MultiReader(
		strings.NewReader(head),
		strings.NewReader(req.Data),
		strings.NewReader(tail),
	), size, nil
}

func decodeAPIError(httpStatus int, raw []byte) error {
	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		envelope.Error.HTTPStatus = httpStatus
		return &envelope.Error
	}

	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = http.StatusText(httpStatus)
	}
	return &APIError{HTTPStatus: httpStatus, Message: msg}
}

func notBase64(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return false
	case r == '+', r == '/', r == '=':
		return false
	default:
		return true
	}
}
