package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sudha-nunna/healthcare-project/internal/model"
	"github.com/sudha-nunna/healthcare-project/pkg/logger"
)

// Store holds the current bearer token and user snapshot. It is the
// only mutable shared state in the client: login, signup and logout
// mutate it, everything else observes it. Changes made elsewhere
// (another tab, another process) arrive through the backend watcher or
// HandleExternalChange and fan out to subscribers.
type Store struct {
	backend Backend
	log     *logger.Logger

	mu      sync.RWMutex
	current model.Session

	subMu  sync.Mutex
	subs   map[int]chan model.Session
	nextID int
}

// NewStore loads the persisted snapshot and, when the backend supports
// it, starts watching for external changes until ctx is done. A
// malformed or expired snapshot degrades to logged-out; it never fails
// construction.
func NewStore(ctx context.Context, backend Backend, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}

	s := &Store{
		backend: backend,
		log:     log,
		subs:    map[int]chan model.Session{},
	}

	snapshot, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	s.current = decodeSnapshot(snapshot, log)

	if w, ok := backend.(Watcher); ok {
		events, err := w.Watch(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to watch session backend: %w", err)
		}
		go s.watchLoop(ctx, events)
	}

	return s, nil
}

// decodeSnapshot interprets the two persisted keys. Parse failures are
// swallowed deliberately: a corrupt session must never crash the app,
// it must degrade to logged-out.
func decodeSnapshot(snapshot map[string]string, log *logger.Logger) model.Session {
	token := snapshot[KeyToken]
	rawUser := snapshot[KeyUser]

	if token == "" || rawUser == "" {
		return model.Session{}
	}

	var user model.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		log.Debug("discarding malformed persisted user", "error", err.Error())
		return model.Session{}
	}

	if tokenExpired(token) {
		log.Debug("discarding expired session token")
		return model.Session{}
	}

	return model.Session{Token: token, User: &user}
}

// tokenExpired inspects the token's exp claim without verifying the
// signature; the client has no key and only needs to know whether the
// server would still accept it. Opaque tokens pass through.
func tokenExpired(token string) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

func encodeSnapshot(sess model.Session) (map[string]string, error) {
	if !sess.Active() {
		return map[string]string{}, nil
	}
	rawUser, err := json.Marshal(sess.User)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user: %w", err)
	}
	return map[string]string{
		KeyToken: sess.Token,
		KeyUser:  string(rawUser),
	}, nil
}

// Set persists the token and user as one atomic snapshot write and
// updates in-process state. A partially-set session is rejected so a
// reader can never observe a token without a user.
func (s *Store) Set(ctx context.Context, sess model.Session) error {
	if !sess.Active() {
		return fmt.Errorf("session requires both token and user")
	}

	snapshot, err := encodeSnapshot(sess)
	if err != nil {
		return err
	}
	if err := s.backend.Store(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	s.notify(sess)
	return nil
}

// Clear resets to logged-out and removes the persisted snapshot. It is
// idempotent: clearing an already logged-out store succeeds. No
// server-side revocation is attempted; the tokens are stateless.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	s.mu.Lock()
	s.current = model.Session{}
	s.mu.Unlock()

	s.notify(model.Session{})
	return nil
}

// Current returns the in-process session snapshot.
func (s *Store) Current() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Token returns the current bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// User returns the current user snapshot, or nil when logged out.
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.User
}

// Subscribe returns a channel receiving every session change, local or
// external, and a cancel func. Deliveries are advisory: a slow
// subscriber misses intermediate states, never blocks the store.
func (s *Store) Subscribe() (<-chan model.Session, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan model.Session, 16)
	s.subs[id] = ch

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

func (s *Store) notify(sess model.Session) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- sess:
		default:
		}
	}
}

// HandleExternalChange applies a single-key change observed outside
// this process (the storage-event analogue). A nil newValue means the
// key was removed. Malformed values degrade to logged-out for that
// key, matching load behavior.
func (s *Store) HandleExternalChange(key string, newValue *string) {
	s.mu.Lock()
	switch key {
	case KeyToken:
		if newValue == nil {
			s.current.Token = ""
		} else {
			s.current.Token = *newValue
		}
	case KeyUser:
		if newValue == nil {
			s.current.User = nil
		} else {
			var user model.User
			if err := json.Unmarshal([]byte(*newValue), &user); err != nil {
				s.current.User = nil
			} else {
				s.current.User = &user
			}
		}
	default:
		s.mu.Unlock()
		return
	}
	sess := s.current
	s.mu.Unlock()

	s.notify(sess)
}

func (s *Store) applySnapshot(snapshot map[string]string) {
	sess := decodeSnapshot(snapshot, s.log)

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	s.notify(sess)
}

func (s *Store) watchLoop(ctx context.Context, events <-chan map[string]string) {
	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-events:
			if !ok {
				return
			}
			s.applySnapshot(snapshot)
		}
	}
}
