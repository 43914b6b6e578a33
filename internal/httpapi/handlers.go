package httpapi

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"media-scribe/internal/domain"
	"media-scribe/internal/logger"
	"media-scribe/internal/service"
	"media-scribe/internal/session"
)

// multipartMemory is how much of an upload is held in memory before
// spilling to a temp file.
const multipartMemory = 32 << 20

type transcribeRequest struct {
	IncludeTimestamps *bool `json:"includeTimestamps"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	_ = WriteJSON(w, http.StatusOK, h.backend.Session().Snapshot())
}

// selectFile prepares the multipart "file" field as the session media.
func (h *Handler) selectFile(w http.ResponseWriter, r *http.Request) {
	sess := h.backend.Session()

	if r.ContentLength > h.maxUpload+multipartMemory {
		h.tooLarge(w, r.ContentLength)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.tooLarge(w, maxErr.Limit)
			return
		}
		writeErrorStatus(w, http.StatusBadRequest, domain.NewError(domain.ErrorKindInvalidInput, "Expected a multipart form with a \"file\" field.", err), nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	part, header, err := r.FormFile("file")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, domain.NewError(domain.ErrorKindInvalidInput, "Expected a multipart form with a \"file\" field.", err), nil)
		return
	}
	defer part.Close()

	if header.Size > h.maxUpload {
		h.tooLarge(w, header.Size)
		return
	}

	data, err := io.ReadAll(part)
	if err != nil {
		logger.ErrorErr(r.Context(), "read upload", err, slog.String("file", header.Filename))
		writeError(w, domain.NewError(domain.ErrorKindIOFailure, "The uploaded file could not be read; please select it again.", err), nil)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		if byName := service.MimeTypeForName(header.Filename); byName != "" {
			mimeType = byName
		}
	}

	err = sess.SelectFile(r.Context(), domain.MediaFile{
		Name:     header.Filename,
		MimeType: mimeType,
		Size:     header.Size,
		Data:     data,
	})
	snap := sess.Snapshot()
	if err != nil {
		writeError(w, err, &snap)
		return
	}
	_ = WriteJSON(w, http.StatusOK, snap)
}

func (h *Handler) tooLarge(w http.ResponseWriter, size int64) {
	err := domain.NewError(
		domain.ErrorKindInvalidInput,
		fmt.Sprintf("The file is too large (%d MB); the limit is %d MB.", size/(1024*1024), h.maxUpload/(1024*1024)),
		nil,
	)
	writeErrorStatus(w, http.StatusRequestEntityTooLarge, err, nil)
}

// transcribe runs one transcription in the request goroutine and returns the
// resulting snapshot.
func (h *Handler) transcribe(w http.ResponseWriter, r *http.Request) {
	var req transcribeRequest
	if err := ParseJSON(r, &req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, domain.NewError(domain.ErrorKindInvalidInput, err.Error(), err), nil)
		return
	}
	includeTimestamps := h.backend.IncludeTimestampsDefault()
	if req.IncludeTimestamps != nil {
		includeTimestamps = *req.IncludeTimestamps
	}

	sess := h.backend.Session()
	_, err := sess.StartTranscription(r.Context(), includeTimestamps)
	snap := sess.Snapshot()
	if err != nil {
		if statusFor(err) >= http.StatusInternalServerError {
			logger.ErrorErr(r.Context(), "transcribe request failed", err, slog.String("kind", string(domain.KindOf(err))))
		}
		writeError(w, err, &snap)
		return
	}
	_ = WriteJSON(w, http.StatusOK, snap)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	_ = WriteJSON(w, http.StatusOK, h.backend.Session().Reset())
}

// events returns buffered events after the "since" sequence.
func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	since, err := parseSince(r)
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, domain.NewError(domain.ErrorKindInvalidInput, "since must be an integer", err), nil)
		return
	}

	events := h.backend.Session().Events().Since(since)
	if events == nil {
		events = []session.Event{}
	}
	_ = WriteJSON(w, http.StatusOK, events)
}

func (h *Handler) models(w http.ResponseWriter, r *http.Request) {
	_ = WriteJSON(w, http.StatusOK, h.backend.Models())
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.backend.Settings()
	if err != nil {
		writeErrorStatus(w, http.StatusInternalServerError, err, nil)
		return
	}
	_ = WriteJSON(w, http.StatusOK, settings)
}

func (h *Handler) saveSettings(w http.ResponseWriter, r *http.Request) {
	var settings domain.Settings
	if err := ParseJSON(r, &settings); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, domain.NewError(domain.ErrorKindInvalidInput, err.Error(), err), nil)
		return
	}

	saved, err := h.backend.SaveSettings(settings)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	_ = WriteJSON(w, http.StatusOK, saved)
}

func (h *Handler) diagnostics(w http.ResponseWriter, r *http.Request) {
	_ = WriteJSON(w, http.StatusOK, h.backend.Diagnostics())
}

func (h *Handler) refreshDiagnostics(w http.ResponseWriter, r *http.Request) {
	report, err := h.backend.RefreshDiagnostics()
	if err != nil {
		writeErrorStatus(w, http.StatusInternalServerError, err, nil)
		return
	}
	_ = WriteJSON(w, http.StatusOK, report)
}

func parseSince(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("since"))
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
