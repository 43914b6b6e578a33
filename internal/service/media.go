package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"media-scribe/internal/domain"
)

// mediaTypesByExt maps common extensions to MIME types. Unknown extensions
// are left for content sniffing.
var mediaTypesByExt = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/opus",
	".aiff": "audio/aiff",
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".webm": "video/webm",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".3gp":  "video/3gpp",
}

// MimeTypeForName returns the MIME type implied by the file extension, or ""
// when unknown.
func MimeTypeForName(name string) string {
	return mediaTypesByExt[strings.ToLower(filepath.Ext(name))]
}

// LoadMediaFile reads path fully into a MediaFile. Files over the size ceiling
// are rejected before any read.
func LoadMediaFile(path string) (domain.MediaFile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return domain.MediaFile{}, domain.NewError(domain.ErrorKindInvalidInput, "No file was selected.", nil)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.MediaFile{}, domain.NewError(domain.ErrorKindIOFailure, "The selected file no longer exists; please select it again.", err)
		}
		return domain.MediaFile{}, domain.NewError(domain.ErrorKindIOFailure, "The selected file could not be opened; please select it again.", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return domain.MediaFile{}, domain.NewError(domain.ErrorKindIOFailure, "The selected file could not be read; please select it again.", err)
	}
	if info.IsDir() {
		return domain.MediaFile{}, domain.NewError(domain.ErrorKindInvalidInput, "A folder was selected; please select a media file.", nil)
	}
	if info.Size() > domain.MaxMediaBytes {
		return domain.MediaFile{}, domain.NewError(
			domain.ErrorKindInvalidInput,
			fmt.Sprintf("The file is too large (%d MB); the limit is 500 MB.", info.Size()/(1024*1024)),
			nil,
		)
	}

	data := make([]byte, info.Size())
	n, err := io.ReadFull(f, data)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return domain.MediaFile{}, domain.NewError(domain.ErrorKindIOFailure, "The selected file could not be read; please select it again.", err)
	}

	// Size stays at the stat value so a short read is reported downstream.
	return domain.MediaFile{
		Name:     filepath.Base(path),
		MimeType: MimeTypeForName(path),
		Size:     info.Size(),
		Data:     data[:n],
	}, nil
}
