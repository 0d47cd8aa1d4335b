package session

import (
	"context"
	"sync"
)

// Storage keys. The persisted state is two string values: the bearer
// token and the JSON-serialized user snapshot.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Backend is the persistence contract behind the session store. A
// Store call replaces the whole snapshot in one write, so a reader can
// never observe a token without its user.
type Backend interface {
	// Load returns the persisted snapshot. An absent session is an
	// empty map, not an error.
	Load(ctx context.Context) (map[string]string, error)
	// Store atomically replaces the snapshot.
	Store(ctx context.Context, snapshot map[string]string) error
	// Clear removes the snapshot. Clearing an absent session is a
	// no-op.
	Clear(ctx context.Context) error
}

// Watcher is implemented by backends that can observe changes made by
// other processes (the storage-event analogue). Each delivery is a
// full snapshot; last write wins.
type Watcher interface {
	Watch(ctx context.Context) (<-chan map[string]string, error)
}

// MemoryBackend keeps the snapshot in process memory. Used by tests
// and by callers that want an ephemeral session.
type MemoryBackend struct {
	mu       sync.Mutex
	snapshot map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{snapshot: map[string]string{}}
}

func (b *MemoryBackend) Load(ctx context.Context) (map[string]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]string, len(b.snapshot))
	for k, v := range b.snapshot {
		out[k] = v
	}
	return out, nil
}

func (b *MemoryBackend) Store(ctx context.Context, snapshot map[string]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshot = make(map[string]string, len(snapshot))
	for k, v := range snapshot {
		b.snapshot[k] = v
	}
	return nil
}

func (b *MemoryBackend) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshot = map[string]string{}
	return nil
}
