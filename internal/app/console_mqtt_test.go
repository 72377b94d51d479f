package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrintThrottle(t *testing.T) {
	now := time.Now()
	th := &printThrottle{interval: time.Second}

	assert.True(t, th.allow(now), "first line always prints")
	assert.False(t, th.allow(now.Add(100*time.Millisecond)))
	assert.False(t, th.allow(now.Add(999*time.Millisecond)))
	assert.True(t, th.allow(now.Add(time.Second)))
	assert.False(t, th.allow(now.Add(1500*time.Millisecond)))
}

func TestPrintThrottleDisabled(t *testing.T) {
	now := time.Now()
	th := &printThrottle{}

	// Zero interval means no throttling at all.
	assert.True(t, th.allow(now))
	assert.True(t, th.allow(now))
	assert.True(t, th.allow(now.Add(time.Millisecond)))
}
