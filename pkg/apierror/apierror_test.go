package apierror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindPredicates(t *testing.T) {
	assert.True(t, IsTimeout(NewTimeout("slow", nil)))
	assert.True(t, IsNetworkUnreachable(NewNetworkUnreachable("down", nil)))
	assert.True(t, IsHTTPError(NewHTTP(404, "not found")))
	assert.True(t, IsMalformedResponse(NewMalformedResponse("<html>", nil)))
	assert.True(t, IsValidation(NewValidation("missing field", nil)))

	assert.False(t, IsTimeout(NewHTTP(500, "boom")))
	assert.False(t, IsTimeout(errors.New("plain")))
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("list specialists: %w", NewTimeout("slow", nil))
	assert.True(t, IsTimeout(err))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, 404, StatusOf(NewHTTP(404, "not found")))
	assert.Equal(t, 0, StatusOf(errors.New("plain")))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(NewTimeout("slow", nil)))
	assert.True(t, Retryable(NewNetworkUnreachable("down", nil)))
	assert.False(t, Retryable(NewHTTP(500, "boom")))
	assert.False(t, Retryable(NewValidation("missing", nil)))
	assert.False(t, Retryable(errors.New("plain")))
}

func TestErrorMessage(t *testing.T) {
	err := NewHTTP(401, "invalid credentials")
	assert.Equal(t, "http_error: invalid credentials", err.Error())

	wrapped := NewTimeout("too slow", errors.New("deadline exceeded"))
	assert.Contains(t, wrapped.Error(), "too slow")
	assert.Contains(t, wrapped.Error(), "deadline exceeded")
}
