package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileBackend persists the snapshot as one JSON file, written via a
// temp file and rename so a crash mid-write leaves the previous
// snapshot intact.
type FileBackend struct {
	path string
	mu   sync.Mutex
}

func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("session file path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create session directory: %w", err)
		}
	}
	return &FileBackend{path: path}, nil
}

func (b *FileBackend) Load(ctx context.Context) (map[string]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var snapshot map[string]string
	if err := json.Unmarshal(data, &snapshot); err != nil {
		// A corrupt session file must degrade to logged-out, not
		// crash the caller.
		return map[string]string{}, nil
	}
	if snapshot == nil {
		snapshot = map[string]string{}
	}
	return snapshot, nil
}

func (b *FileBackend) Store(ctx context.Context, snapshot map[string]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

func (b *FileBackend) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Remove(b.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
