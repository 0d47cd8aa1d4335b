package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudha-nunna/healthcare-project/internal/model"
)

func testUser() *model.User {
	return &model.User{ID: "u-1", Name: "Asha", Email: "asha@example.com"}
}

func TestSetPersistsBothKeysAtomically(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()

	store, err := NewStore(ctx, backend, nil)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, model.Session{Token: "tok-123", User: testUser()}))

	// A fresh load on the same backend sees both keys or neither.
	reloaded, err := NewStore(ctx, backend, nil)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", reloaded.Token())
	require.NotNil(t, reloaded.User())
	assert.Equal(t, "u-1", reloaded.User().ID)
	assert.True(t, reloaded.Current().Active())
}

func TestSetRejectsPartialSession(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, NewMemoryBackend(), nil)
	require.NoError(t, err)

	assert.Error(t, store.Set(ctx, model.Session{Token: "tok-only"}))
	assert.Error(t, store.Set(ctx, model.Session{User: testUser()}))
	assert.Equal(t, "", store.Token())
}

func TestClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, NewMemoryBackend(), nil)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, model.Session{Token: "tok", User: testUser()}))
	require.NoError(t, store.Clear(ctx))
	assert.False(t, store.Current().Active())

	// Clearing an already logged-out store must not fail.
	require.NoError(t, store.Clear(ctx))
	assert.Nil(t, store.User())
	assert.Equal(t, "", store.Token())
}

func TestMalformedPersistedUserDegradesToLoggedOut(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.Store(ctx, map[string]string{
		KeyToken: "tok",
		KeyUser:  "{not json",
	}))

	store, err := NewStore(ctx, backend, nil)
	require.NoError(t, err)
	assert.False(t, store.Current().Active())
	assert.Equal(t, "", store.Token())
}

func TestExpiredTokenDegradesToLoggedOut(t *testing.T) {
	ctx := context.Background()

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	rawUser, err := json.Marshal(testUser())
	require.NoError(t, err)

	backend := NewMemoryBackend()
	require.NoError(t, backend.Store(ctx, map[string]string{
		KeyToken: expired,
		KeyUser:  string(rawUser),
	}))

	store, err := NewStore(ctx, backend, nil)
	require.NoError(t, err)
	assert.False(t, store.Current().Active())
}

func TestOpaqueTokenIsKept(t *testing.T) {
	ctx := context.Background()
	rawUser, err := json.Marshal(testUser())
	require.NoError(t, err)

	backend := NewMemoryBackend()
	require.NoError(t, backend.Store(ctx, map[string]string{
		KeyToken: "opaque-token",
		KeyUser:  string(rawUser),
	}))

	store, err := NewStore(ctx, backend, nil)
	require.NoError(t, err)
	assert.True(t, store.Current().Active())
}

func TestExternalChangeUpdatesState(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, NewMemoryBackend(), nil)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, model.Session{Token: "tok", User: testUser()}))

	// Another tab changed the user key.
	rawUser, err := json.Marshal(&model.User{ID: "u-2", Name: "Mark", Email: "mark@example.com"})
	require.NoError(t, err)
	newValue := string(rawUser)
	store.HandleExternalChange(KeyUser, &newValue)

	require.NotNil(t, store.User())
	assert.Equal(t, "u-2", store.User().ID)

	// Another tab logged out: key removed.
	store.HandleExternalChange(KeyUser, nil)
	assert.Nil(t, store.User())

	store.HandleExternalChange(KeyToken, nil)
	assert.Equal(t, "", store.Token())
	assert.False(t, store.Current().Active())
}

func TestExternalChangeWithMalformedUser(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, NewMemoryBackend(), nil)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, model.Session{Token: "tok", User: testUser()}))

	bad := "{broken"
	store.HandleExternalChange(KeyUser, &bad)
	assert.Nil(t, store.User())
}

func TestSubscribeReceivesChanges(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, NewMemoryBackend(), nil)
	require.NoError(t, err)

	ch, cancel := store.Subscribe()
	defer cancel()

	require.NoError(t, store.Set(ctx, model.Session{Token: "tok", User: testUser()}))

	select {
	case sess := <-ch:
		assert.True(t, sess.Active())
		assert.Equal(t, "u-1", sess.UserID())
	case <-time.After(time.Second):
		t.Fatal("expected session change notification")
	}

	require.NoError(t, store.Clear(ctx))

	select {
	case sess := <-ch:
		assert.False(t, sess.Active())
	case <-time.After(time.Second):
		t.Fatal("expected logout notification")
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	backend, err := NewFileBackend(path)
	require.NoError(t, err)

	store, err := NewStore(ctx, backend, nil)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, model.Session{Token: "tok", User: testUser()}))

	// Fresh backend + store over the same file, as after a reload.
	backend2, err := NewFileBackend(path)
	require.NoError(t, err)
	reloaded, err := NewStore(ctx, backend2, nil)
	require.NoError(t, err)

	assert.Equal(t, "tok", reloaded.Token())
	require.NotNil(t, reloaded.User())
	assert.Equal(t, "asha@example.com", reloaded.User().Email)
}

func TestFileBackendCorruptFileDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	backend, err := NewFileBackend(path)
	require.NoError(t, err)
	require.NoError(t, backend.Store(ctx, map[string]string{KeyToken: "tok"}))

	// Corrupt the file behind the backend's back.
	require.NoError(t, os.WriteFile(path, []byte("][ garbage"), 0o600))

	snapshot, err := backend.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot)
}
