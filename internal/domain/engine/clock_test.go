package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRemaining(t *testing.T) {
	d := 30 * time.Second

	assert.Equal(t, d, Remaining(d, t0, t0))
	assert.Equal(t, 20*time.Second, Remaining(d, t0, t0.Add(10*time.Second)))

	for _, eps := range []time.Duration{0, time.Nanosecond, time.Second, time.Hour} {
		assert.Equal(t, time.Duration(0), Remaining(d, t0, t0.Add(d+eps)), "eps=%s", eps)
	}
}

func TestRemaining_UnsetStartIsFullDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, Remaining(5*time.Second, time.Time{}, t0))
	assert.False(t, Expired(5*time.Second, time.Time{}, t0.Add(time.Hour)))
}

func TestRemaining_ClientBehindStart(t *testing.T) {
	assert.Equal(t, 10*time.Second, Remaining(10*time.Second, t0, t0.Add(-2*time.Second)))
}

func TestFastForward(t *testing.T) {
	d, grace := 30*time.Second, 3*time.Second
	now := t0.Add(5 * time.Second)

	start := FastForward(t0, now, d, grace)
	assert.Equal(t, grace, Remaining(d, start, now))

	late := t0.Add(29 * time.Second)
	assert.Equal(t, t0, FastForward(t0, late, d, grace), "already under grace")
}

func TestDeadline(t *testing.T) {
	assert.Equal(t, t0.Add(10*time.Second), Deadline(10*time.Second, t0))
}
