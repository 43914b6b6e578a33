package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"media-scribe/internal/domain"
)

// Store is where user preferences live between runs.
type Store interface {
	Load() (domain.Settings, error)
	Save(domain.Settings) error
}

// JSONStore keeps Settings in one JSON file. API keys never go here; they
// come from the environment.
type JSONStore struct {
	mu   sync.Mutex
	path string
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load overlays the file onto DefaultSettings, so keys missing from an older
// file keep their defaults. A missing file is a first run, not an error.
func (s *JSONStore) Load() (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := DefaultSettings()
	raw, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return settings, nil
	case err != nil:
		return domain.Settings{}, fmt.Errorf("read settings: %w", err)
	}

	if err := json.Unmarshal(raw, &settings); err != nil {
		return domain.Settings{}, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return settings, nil
}

func (s *JSONStore) Path() string {
	return s.path
}

// Save replaces the file atomically: readers see either the old or the new
// settings, never a truncated file.
func (s *JSONStore) Save(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	raw, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("stage settings: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(raw, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}
