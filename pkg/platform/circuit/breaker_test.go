package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := New("broker", WithFailureThreshold(3), WithSuccessThreshold(2))

	assert.False(t, b.RecordFailure().Opened)
	assert.False(t, b.RecordFailure().Opened)
	b.RecordSuccess()
	assert.False(t, b.RecordFailure().Opened, "a success resets the failure streak")
	assert.False(t, b.RecordFailure().Opened)
	assert.True(t, b.RecordFailure().Opened)
	assert.True(t, b.IsOpen())
	assert.Equal(t, "open", b.State().String())

	assert.False(t, b.RecordFailure().Opened, "already open")
}

func TestBreakerClosesAfterConsecutiveSuccesses(t *testing.T) {
	b := New("broker", WithFailureThreshold(1), WithSuccessThreshold(2))
	b.RecordFailure()
	assert.True(t, b.IsOpen())

	assert.False(t, b.RecordSuccess().Closed)
	b.RecordFailure()
	assert.False(t, b.RecordSuccess().Closed, "a failure resets the success streak")
	assert.True(t, b.RecordSuccess().Closed)
	assert.False(t, b.IsOpen())
	assert.Equal(t, "broker", b.Name())
}

func TestBreakerIgnoresNonPositiveThresholds(t *testing.T) {
	b := New("x", WithFailureThreshold(0), WithSuccessThreshold(-1))
	for range 4 {
		b.RecordFailure()
	}
	assert.False(t, b.IsOpen())
	b.RecordFailure()
	assert.True(t, b.IsOpen())
}
