package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpensAfterFailureStreak(t *testing.T) {
	cb := NewCircuitBreaker(Settings{MaxFailures: 3, Timeout: time.Minute})

	for i := 0; i < 2; i++ {
		cb.RecordFailure()
		assert.NoError(t, cb.Allow())
	}

	cb.RecordFailure()
	assert.Equal(t, "open", cb.State())
	assert.ErrorIs(t, cb.Allow(), ErrOpen)
}

func TestSuccessResetsStreak(t *testing.T) {
	cb := NewCircuitBreaker(Settings{MaxFailures: 2, Timeout: time.Minute})

	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()

	assert.Equal(t, "closed", cb.State())
	assert.NoError(t, cb.Allow())
}

func TestHalfOpenAfterCooldown(t *testing.T) {
	cb := NewCircuitBreaker(Settings{MaxFailures: 1, Timeout: 10 * time.Millisecond})

	cb.RecordFailure()
	require.ErrorIs(t, cb.Allow(), ErrOpen)

	time.Sleep(20 * time.Millisecond)

	// Cooldown elapsed: one probe goes through.
	assert.NoError(t, cb.Allow())
	assert.Equal(t, "half-open", cb.State())

	// A failed probe reopens, a successful one closes.
	cb.RecordSuccess()
	assert.Equal(t, "closed", cb.State())
}

func TestFailedProbeReopens(t *testing.T) {
	cb := NewCircuitBreaker(Settings{MaxFailures: 1, Timeout: 10 * time.Millisecond})

	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, cb.Allow())

	cb.RecordFailure()
	assert.Equal(t, "open", cb.State())
}
