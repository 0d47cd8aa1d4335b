// Package bookmarks keeps the user's saved-provider summaries. The
// list is purely local bookkeeping: one JSON array blob on disk, never
// synced to the server.
package bookmarks

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// SavedProvider is the summary stored per bookmarked doctor.
type SavedProvider struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Specialization string  `json:"specialization"`
	Fee            float64 `json:"fee"`
}

// Store persists saved providers under one key in a JSON file.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("bookmarks file path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create bookmarks directory: %w", err)
		}
	}
	return &Store{path: path}, nil
}

// List returns the saved providers. A missing or corrupt file is an
// empty list; bookmarks are not worth crashing over.
func (s *Store) List() ([]SavedProvider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]SavedProvider, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []SavedProvider{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read bookmarks: %w", err)
	}

	var providers []SavedProvider
	if err := json.Unmarshal(data, &providers); err != nil {
		return []SavedProvider{}, nil
	}
	return providers, nil
}

func (s *Store) save(providers []SavedProvider) error {
	data, err := json.Marshal(providers)
	if err != nil {
		return fmt.Errorf("failed to marshal bookmarks: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write bookmarks: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace bookmarks file: %w", err)
	}
	return nil
}

// Save adds a provider; saving an already-bookmarked id replaces its
// summary in place.
func (s *Store) Save(provider SavedProvider) error {
	if provider.ID == "" {
		return fmt.Errorf("provider id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	providers, err := s.load()
	if err != nil {
		return err
	}
	for i := range providers {
		if providers[i].ID == provider.ID {
			providers[i] = provider
			return s.save(providers)
		}
	}
	return s.save(append(providers, provider))
}

// Remove drops a provider by id. Removing an unknown id is a no-op.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	providers, err := s.load()
	if err != nil {
		return err
	}
	kept := providers[:0]
	for _, p := range providers {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	return s.save(kept)
}

// Clear removes every bookmark.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove bookmarks file: %w", err)
	}
	return nil
}
