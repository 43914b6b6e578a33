package domain

import "time"

// MaxMediaBytes is the largest decoded media size accepted anywhere in the flow.
const MaxMediaBytes int64 = 500 * 1024 * 1024

// AppState is the single active state of a transcription session.
type AppState string

const (
	AppStateIdle       AppState = "idle"
	AppStatePreparing  AppState = "preparing"
	AppStateProcessing AppState = "processing"
	AppStateSuccess    AppState = "success"
	AppStateError      AppState = "error"
)

// Settings contains user-selectable runtime preferences.
type Settings struct {
	Model             string `json:"model"`
	IncludeTimestamps bool   `json:"includeTimestamps"`
}

// MediaFile is a user-selected audio or video file held in memory.
type MediaFile struct {
	Name     string
	MimeType string
	Size     int64
	Data     []byte
}


// EncodedPayload is the base64 form of a MediaFile.
type EncodedPayload struct {
	Data     string
	MimeType string
}

// DecodedSize returns the byte size implied by the base64 length.
func (p EncodedPayload) DecodedSize() int64 {
	return DecodedSize(p.Data)
}

// TranscriptionRequest is built fresh for every transcription attempt.
type TranscriptionRequest struct {
	Payload           EncodedPayload
	MimeType          string
	IncludeTimestamps bool
}

// TranscriptionResult is the text returned by the remote model.
type TranscriptionResult struct {
	Text        string    `json:"text"`
	Model       string    `json:"model,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// FileInfo is the JSON-safe view of a selected MediaFile.
type FileInfo struct {
	Name        string `json:"name"`
	MimeType    string `json:"mimeType"`
	Size        int64  `json:"size"`
	PreviewPath string `json:"previewPath,omitempty"`
}

// ModelOption describes one selectable remote transcription model.
type ModelOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	Description string `json:"description,omitempty"`
	Selected    bool   `json:"selected"`
}

// DecodedSize estimates decoded bytes for a base64 string as len*3/4.
func DecodedSize(payload string) int64 {
	return int64(len(payload)) * 3 / 4
}

// IsVideoMime reports whether mimeType starts with "video".
func IsVideoMime(mimeType string) bool {
	return len(mimeType) >= 5 && mimeType[:5] == "video"
}
