// Package encoder converts media bytes into the base64 payload embedded in
// transcription requests.
//
// Input is consumed in fixed-size chunks and streamed through a single base64
// writer, so memory stays bounded by the output string and the result is one
// contiguous encoding with standard padding regardless of chunk boundaries.
package encoder

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"media-scribe/internal/domain"
)

// ChunkSize is the number of raw bytes processed per step.
const ChunkSize = 32 * 1024

// ProgressFunc receives processed and total byte counts after every chunk.
type ProgressFunc func(done, total int64)

// Encode returns the base64 encoding of data.
func Encode(data []byte) (string, error) {
	return EncodeReader(context.Background(), bytes.NewReader(data), int64(len(data)), nil)
}

// EncodedLen returns the exact output length for size input bytes.
func EncodedLen(size int64) int64 {
	return (size + 2) / 3 * 4
}

// EncodeReader reads exactly size bytes from r and returns their base64
// encoding. A read failure or a short read yields an IOFailure error and no
// partial output.
func EncodeReader(ctx context.Context, r io.Reader, size int64, onProgress ProgressFunc) (string, error) {
	if size < 0 {
		return "", domain.NewError(domain.ErrorKindInvalidInput, "media size is invalid", nil)
	}
	if size > domain.MaxMediaBytes {
		return "", domain.NewError(
			domain.ErrorKindInvalidInput,
			fmt.Sprintf("file is too large (%d bytes); the limit is 500 MB", size),
			nil,
		)
	}
	if size == 0 {
		return "", nil
	}
	if r == nil {
		return "", domain.NewError(domain.ErrorKindIOFailure, "media data is not readable", nil)
	}

	var out strings.Builder
	out.Grow(int(EncodedLen(size)))
	enc := base64.NewEncoder(base64.StdEncoding, &out)

	buf := make([]byte, ChunkSize)
	var done int64
	for done < size {
		if err := ctx.Err(); err != nil {
			return "", ioFailure("encoding was interrupted", err)
		}

		want := min(int64(ChunkSize), size-done)
		n, err := io.ReadFull(r, buf[:want])
		if n > 0 {
			if _, werr := enc.Write(buf[:n]); werr != nil {
				return "", ioFailure("failed to encode media", werr)
			}
			done += int64(n)
			if onProgress != nil {
				onProgress(done, size)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return "", ioFailure(fmt.Sprintf("media ended early: read %d of %d bytes", done, size), err)
			}
			return "", ioFailure("failed to read media", err)
		}
	}

	if err := enc.Close(); err != nil {
		return "", ioFailure("failed to encode media", err)
	}
	return out.String(), nil
}

func ioFailure(message string, err error) error {
	return domain.NewError(domain.ErrorKindIOFailure, message+"; please select the file again", err)
}
