package session

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"media-scribe/internal/domain"
)

// PreviewHandle is a playable reference to the selected media. It must be
// released when the file is replaced or the session resets.
type PreviewHandle interface {
	Path() string
	Release() error
}

// PreviewStore acquires preview handles for selected files.
type PreviewStore interface {
	Acquire(file domain.MediaFile) (PreviewHandle, error)
}

// TempPreviewStore writes each selected file into its own temporary directory.
type TempPreviewStore struct {
	baseDir   string
	mkdirTemp func(dir, pattern string) (string, error)
	writeFile func(name string, data []byte, perm os.FileMode) error
	removeAll func(path string) error
}

// NewTempPreviewStore creates a store rooted at baseDir ("" uses the OS temp dir).
func NewTempPreviewStore(baseDir string) *TempPreviewStore {
	return &TempPreviewStore{
		baseDir:   baseDir,
		mkdirTemp: os.MkdirTemp,
		writeFile: os.WriteFile,
		removeAll: os.RemoveAll,
	}
}

// Acquire copies the media into a fresh temp directory.
func (s *TempPreviewStore) Acquire(file domain.MediaFile) (PreviewHandle, error) {
	dir, err := s.mkdirTemp(s.baseDir, "media-scribe-preview-*")
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, previewFileName(file.Name))
	if err := s.writeFile(path, file.Data, 0o600); err != nil {
		_ = s.removeAll(dir)
		return nil, err
	}

	return &tempPreview{path: path, dir: dir, removeAll: s.removeAll}, nil
}

// tempPreview removes its directory once, on the first Release.
type tempPreview struct {
	path      string
	dir       string
	removeAll func(path string) error
	once      sync.Once
	err       error
}

func (p *tempPreview) Path() string {
	return p.path
}

func (p *tempPreview) Release() error {
	p.once.Do(func() {
		p.err = p.removeAll(p.dir)
	})
	return p.err
}

// previewFileName strips directories from a user-supplied name.
func previewFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.TrimSpace(base)
	if base == "" || base == "." || base == "/" || base == ".." {
		return "media"
	}
	return base
}

// NewTempPreviewStoreForTests creates a store with injectable filesystem hooks.
func NewTempPreviewStoreForTests(
	baseDir string,
	mkdirTemp func(dir, pattern string) (string, error),
	writeFile func(name string, data []byte, perm os.FileMode) error,
	removeAll func(path string) error,
) *TempPreviewStore {
	return &TempPreviewStore{
		baseDir:   baseDir,
		mkdirTemp: mkdirTemp,
		writeFile: writeFile,
		removeAll: removeAll,
	}
}
