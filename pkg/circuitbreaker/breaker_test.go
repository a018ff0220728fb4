package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDownstream = errors.New("downstream failure")

func newBreaker(timeout time.Duration) *CircuitBreaker {
	return NewCircuitBreaker("test", Config{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Timeout:          timeout,
	})
}

func failN(t *testing.T, cb *CircuitBreaker, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		err := cb.Execute(context.Background(), func() error { return errDownstream })
		require.Error(t, err)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cb := newBreaker(time.Minute)

	failN(t, cb, 3)
	assert.Equal(t, StateOpen, cb.State())

	err := cb.Execute(context.Background(), func() error { return nil })
	assert.True(t, errors.Is(err, ErrCircuitOpen))
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := newBreaker(time.Minute)

	failN(t, cb, 2)
	require.NoError(t, cb.Execute(context.Background(), func() error { return nil }))
	failN(t, cb, 2)

	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerHalfOpenClosesAfterSuccesses(t *testing.T) {
	cb := newBreaker(10 * time.Millisecond)

	failN(t, cb, 3)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, cb.State())

	require.NoError(t, cb.Execute(context.Background(), func() error { return nil }))
	require.NoError(t, cb.Execute(context.Background(), func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := newBreaker(10 * time.Millisecond)

	failN(t, cb, 3)
	time.Sleep(20 * time.Millisecond)

	failN(t, cb, 1)
	assert.Equal(t, StateOpen, cb.State())
}

func TestBreakerPassesThroughOperationError(t *testing.T) {
	cb := newBreaker(time.Minute)

	err := cb.Execute(context.Background(), func() error { return errDownstream })
	assert.True(t, errors.Is(err, errDownstream))
}
