package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_AllowsUpToRate(t *testing.T) {
	l := New("test", Policy{Rate: 10, Per: 30 * time.Second})
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		retry := l.Check("user-a", base.Add(time.Duration(i)*time.Second))
		assert.Zero(t, retry, "event %d should be allowed", i+1)
	}

	// The 11th event, 10s into the window, must wait out the remaining 20s.
	retry := l.Check("user-a", base.Add(10*time.Second))
	assert.Equal(t, 20*time.Second, retry)
}

func TestLimiter_WindowReset(t *testing.T) {
	l := New("test", Policy{Rate: 2, Per: 10 * time.Second})
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.Zero(t, l.Check("k", base))
	require.Zero(t, l.Check("k", base.Add(time.Second)))
	require.Positive(t, l.Check("k", base.Add(2*time.Second)))

	// Just past the window end the counter starts over, regardless of how
	// badly the previous window was blown.
	assert.Zero(t, l.Check("k", base.Add(10*time.Second+time.Millisecond)))
	assert.Zero(t, l.Check("k", base.Add(11*time.Second)))
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l := New("test", Policy{Rate: 1, Per: time.Minute})
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.Zero(t, l.Check("user-a", base))
	require.Positive(t, l.Check("user-a", base.Add(time.Second)))

	assert.Zero(t, l.Check("user-b", base.Add(2*time.Second)))
}

func TestLimiter_RetryAfterShrinks(t *testing.T) {
	l := New("test", Policy{Rate: 1, Per: 10 * time.Second})
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.Zero(t, l.Check("k", base))
	assert.Equal(t, 7*time.Second, l.Check("k", base.Add(3*time.Second)))
	assert.Equal(t, time.Second, l.Check("k", base.Add(9*time.Second)))
}

func TestLimiter_EvictIdle(t *testing.T) {
	l := New("test", Policy{Rate: 5, Per: 30 * time.Second})
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	l.Check("stale", base)
	l.Check("fresh", base.Add(2*time.Minute))
	require.Equal(t, 2, l.Len())

	evicted := l.EvictIdle(base.Add(2*time.Minute + time.Second))
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, l.Len())

	// Evicted keys start a fresh window on the next event.
	assert.Zero(t, l.Check("stale", base.Add(3*time.Minute)))
}
