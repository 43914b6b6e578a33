package providers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"media-scribe/internal/logger"
)

// newWhisperServer fakes the audio transcription endpoint.
func newWhisperServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if _, header, err := r.FormFile("file"); err != nil {
			t.Errorf("file part: %v", err)
		} else if header.Filename != "media.mp3" {
			t.Errorf("file name = %q, want media.mp3", header.Filename)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
}

// TestOpenAIGeneratePlainText checks the transcript text without timestamps.
func TestOpenAIGeneratePlainText(t *testing.T) {
	srv := newWhisperServer(t, `{"text":"Hello world","segments":[{"start":0,"end":1,"text":"Hello world"}]}`)
	defer srv.Close()

	model := NewOpenAIModel(Config{APIKey: "k", BaseURL: srv.URL + "/v1"}, logger.Discard())
	text, err := model.Generate(context.Background(), Request{Data: "SGVsbG8=", MimeType: "audio/mpeg"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "Hello world" {
		t.Fatalf("text = %q", text)
	}
}

// TestOpenAIGenerateTimestampedSegments checks segment rendering with [HH:MM:SS].
func TestOpenAIGenerateTimestampedSegments(t *testing.T) {
	srv := newWhisperServer(t, `{"text":"Hi there","segments":[{"start":0.4,"end":1,"text":" Hi"},{"start":3725.9,"end":3727,"text":" there"}]}`)
	defer srv.Close()

	model := NewOpenAIModel(Config{APIKey: "k", BaseURL: srv.URL + "/v1"}, logger.Discard())
	text, err := model.Generate(context.Background(), Request{
		Data:              "SGVsbG8=",
		MimeType:          "audio/mp3",
		IncludeTimestamps: true,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	want := "[00:00:00] Hi\n[01:02:05] there"
	if text != want {
		t.Fatalf("text = %q, want %q", text, want)
	}
}

// TestOpenAIGenerateRejectsBadPayload checks decode failures never reach the API.
func TestOpenAIGenerateRejectsBadPayload(t *testing.T) {
	model := NewOpenAIModel(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1/v1"}, logger.Discard())
	if _, err := model.Generate(context.Background(), Request{Data: "%%%"}); err == nil {
		t.Fatal("expected decode error")
	}
}

// TestUploadName checks MIME to file name mapping including parameters.
func TestUploadName(t *testing.T) {
	cases := map[string]string{
		"audio/mpeg":              "media.mp3",
		"audio/webm;codecs=opus":  "media.webm",
		"VIDEO/MP4":               "media.mp4",
		"application/x-something": "media.bin",
	}
	for in, want := range cases {
		if got := uploadName(in); got != want {
			t.Fatalf("uploadName(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestFormatTimestamp checks clamping and field widths.
func TestFormatTimestamp(t *testing.T) {
	if got := FormatTimestamp(-3); got != "[00:00:00]" {
		t.Fatalf("negative = %q", got)
	}
	if got := FormatTimestamp(36000 + 61); got != "[10:01:01]" {
		t.Fatalf("ten hours = %q", got)
	}
}
