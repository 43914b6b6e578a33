package session

import (
	"strings"
	"testing"

	"media-scribe/internal/domain"
)

func wavHeader() []byte {
	data := make([]byte, 64)
	copy(data[0:], "RIFF")
	copy(data[8:], "WAVEfmt ")
	return data
}

// TestNormalizeKeepsDeclaredMime leaves explicit media types alone.
func TestNormalizeKeepsDeclaredMime(t *testing.T) {
	file, err := NormalizeMediaFile(domain.MediaFile{
		Name:     "talk.mp3",
		MimeType: "Audio/MPEG",
		Data:     []byte("ID3 data"),
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if file.MimeType != "audio/mpeg" {
		t.Fatalf("mime = %q, want audio/mpeg", file.MimeType)
	}
	if file.Size != int64(len("ID3 data")) {
		t.Fatalf("size = %d", file.Size)
	}
}

// TestNormalizeSniffsGenericMime detects the type from content.
func TestNormalizeSniffsGenericMime(t *testing.T) {
	file, err := NormalizeMediaFile(domain.MediaFile{
		Name:     "clip",
		MimeType: "application/octet-stream",
		Data:     wavHeader(),
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !strings.HasPrefix(file.MimeType, "audio/") {
		t.Fatalf("mime = %q, want audio/*", file.MimeType)
	}
}

// TestNormalizeRejectsNonMedia refuses documents and text.
func TestNormalizeRejectsNonMedia(t *testing.T) {
	_, err := NormalizeMediaFile(domain.MediaFile{
		Name: "notes.txt",
		Data: []byte("just some plain text notes"),
	})
	if !domain.IsKind(err, domain.ErrorKindInvalidInput) {
		t.Fatalf("err = %v, want invalid_input", err)
	}
}

// TestNormalizeRejectsEmpty refuses zero-byte files.
func TestNormalizeRejectsEmpty(t *testing.T) {
	_, err := NormalizeMediaFile(domain.MediaFile{Name: "a.mp3", MimeType: "audio/mpeg"})
	if !domain.IsKind(err, domain.ErrorKindInvalidInput) {
		t.Fatalf("err = %v, want invalid_input", err)
	}
}

// TestNormalizeDetectsShortRead flags a declared size the data does not match.
func TestNormalizeDetectsShortRead(t *testing.T) {
	_, err := NormalizeMediaFile(domain.MediaFile{
		Name:     "a.mp3",
		MimeType: "audio/mpeg",
		Size:     100,
		Data:     []byte("short"),
	})
	if !domain.IsKind(err, domain.ErrorKindIOFailure) {
		t.Fatalf("err = %v, want io_failure", err)
	}
	if !strings.Contains(domain.UserMessage(err), "select the file again") {
		t.Fatalf("message = %q", domain.UserMessage(err))
	}
}

// TestNormalizeDefaultsName fills a missing name.
func TestNormalizeDefaultsName(t *testing.T) {
	file, err := NormalizeMediaFile(domain.MediaFile{MimeType: "video/mp4", Data: []byte{1, 2, 3}})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if file.Name != "media" {
		t.Fatalf("name = %q", file.Name)
	}
}
