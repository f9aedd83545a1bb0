package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialDurations(t *testing.T) {
	b := NewExponential(time.Millisecond, 4*time.Millisecond)
	expected := []time.Duration{time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond, 4 * time.Millisecond}
	for _, d := range expected {
		assert.Equal(t, d, b.NextDuration)
		assert.NoError(t, b.Backoff(context.Background()))
	}
	assert.Equal(t, 4, b.Attempts())

	b.Reset()
	assert.Equal(t, time.Millisecond, b.NextDuration)
	assert.Equal(t, 0, b.Attempts())
}

func TestBackoffCancelled(t *testing.T) {
	b := NewConstant(time.Hour)
	c, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, context.Canceled, b.Backoff(c))
	assert.Equal(t, 0, b.Attempts())
}

func TestRetry(t *testing.T) {
	errTransient := errors.New("transient")
	errPermanent := errors.New("permanent")

	cases := []struct {
		name      string
		results   []error
		attempts  int
		expErr    error
		expCalled int
	}{
		{"succeeds first time", []error{nil}, 3, nil, 1},
		{"succeeds after retries", []error{errTransient, errTransient, nil}, 3, nil, 3},
		{"exhausted", []error{errTransient, errTransient, errTransient}, 3, errTransient, 3},
		{"permanent stops early", []error{errPermanent, nil}, 3, errPermanent, 1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			called := 0
			err := NewConstant(time.Microsecond).Retry(context.Background(), c.attempts,
				func(err error) bool { return err != errPermanent },
				func() error {
					res := c.results[called]
					called++
					return res
				})
			assert.Equal(t, c.expErr, err)
			assert.Equal(t, c.expCalled, called)
		})
	}
}
