package session

import (
	"fmt"
	"strings"

	"github.com/wailsapp/mimetype"

	"media-scribe/internal/domain"
)

// genericMimeTypes carry no format information and trigger content sniffing.
var genericMimeTypes = map[string]bool{
	"":                         true,
	"application/octet-stream": true,
	"binary/octet-stream":      true,
}

// NormalizeMediaFile fills missing size and MIME type and enforces the
// selection rules: non-empty content, audio or video type, size ceiling.
func NormalizeMediaFile(file domain.MediaFile) (domain.MediaFile, error) {
	if file.Size <= 0 {
		file.Size = int64(len(file.Data))
	}
	if file.Size != int64(len(file.Data)) {
		return domain.MediaFile{}, domain.NewError(
			domain.ErrorKindIOFailure,
			fmt.Sprintf("Only %d of %d bytes of %q could be read; please select the file again.", len(file.Data), file.Size, file.Name),
			nil,
		)
	}
	if file.Size == 0 {
		return domain.MediaFile{}, domain.NewError(domain.ErrorKindInvalidInput, "The selected file is empty.", nil)
	}
	if file.Size > domain.MaxMediaBytes {
		return domain.MediaFile{}, domain.NewError(
			domain.ErrorKindInvalidInput,
			fmt.Sprintf("The file is too large (%d MB); the limit is 500 MB.", file.Size/(1024*1024)),
			nil,
		)
	}

	mimeType := strings.ToLower(strings.TrimSpace(file.MimeType))
	if genericMimeTypes[mimeType] {
		mimeType = mimetype.Detect(file.Data).String()
		if i := strings.IndexByte(mimeType, ';'); i >= 0 {
			mimeType = mimeType[:i]
		}
	}
	if !strings.HasPrefix(mimeType, "audio/") && !strings.HasPrefix(mimeType, "video/") {
		return domain.MediaFile{}, domain.NewError(
			domain.ErrorKindInvalidInput,
			fmt.Sprintf("Unsupported file type %q. Please select an audio or video file.", mimeType),
			nil,
		)
	}
	file.MimeType = mimeType

	if strings.TrimSpace(file.Name) == "" {
		file.Name = "media"
	}
	return file, nil
}
