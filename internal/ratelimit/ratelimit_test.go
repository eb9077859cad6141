package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyLimiter_Allow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	kl := New(60, 2) // one token per second
	kl.now = func() time.Time { return now }

	assert.True(t, kl.Allow("1.2.3.4"))
	assert.True(t, kl.Allow("1.2.3.4"))
	assert.False(t, kl.Allow("1.2.3.4"), "burst exhausted")

	assert.True(t, kl.Allow("5.6.7.8"), "other clients have their own bucket")

	now = now.Add(time.Second)
	assert.True(t, kl.Allow("1.2.3.4"), "refilled after a second")
	assert.False(t, kl.Allow("1.2.3.4"))
}

func TestKeyLimiter_SweepsIdleKeys(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	kl := New(60, 1)
	kl.now = func() time.Time { return now }

	kl.Allow("a")
	kl.Allow("b")
	assert.Equal(t, 2, kl.Len())

	now = now.Add(idleTTL + time.Second)
	kl.Allow("c")

	assert.Equal(t, 1, kl.Len())
}
