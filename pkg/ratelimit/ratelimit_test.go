package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterAllow(t *testing.T) {
	current := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewLimiter(time.Minute, 2)
	limiter.now = func() time.Time { return current }

	assert.True(t, limiter.Allow("session-a"))
	assert.True(t, limiter.Allow("session-a"))
	assert.False(t, limiter.Allow("session-a"), "third hit inside the window must be refused")
	assert.True(t, limiter.Allow("session-b"), "keys are limited independently")

	current = current.Add(61 * time.Second)
	assert.True(t, limiter.Allow("session-a"), "hits outside the window are forgotten")
}

func TestLimiterRemaining(t *testing.T) {
	current := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewLimiter(time.Minute, 3)
	limiter.now = func() time.Time { return current }

	assert.Equal(t, 3, limiter.Remaining("k"))
	limiter.Allow("k")
	assert.Equal(t, 2, limiter.Remaining("k"))

	current = current.Add(2 * time.Minute)
	assert.Equal(t, 3, limiter.Remaining("k"))
}
