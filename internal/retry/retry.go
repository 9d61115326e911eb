// Package retry runs bounded retry loops on top of apimachinery's wait.Backoff.
package retry

import (
	"context"
	"errors"
	"math"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// Policy is a bounded exponential backoff. Attempts counts the first call.
type Policy struct {
	Attempts     int           `yaml:"attempts,omitempty"`
	InitialDelay time.Duration `yaml:"initialDelay,omitempty"`
	Factor       float64       `yaml:"factor,omitempty"`
	Jitter       float64       `yaml:"jitter,omitempty"`
	MaxDelay     time.Duration `yaml:"maxDelay,omitempty"`
}

func (p Policy) attempts() int {
	if p.Attempts < 1 {
		return 1
	}
	return p.Attempts
}

func (p Policy) backoff() wait.Backoff {
	return wait.Backoff{
		Duration: p.InitialDelay,
		Factor:   p.Factor,
		Jitter:   p.Jitter,
		Steps:    math.MaxInt32,
		Cap:      p.MaxDelay,
	}
}

type retryableError struct {
	err   error
	after time.Duration
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Retryable marks err as transient.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

// RetryableAfter marks err as transient and asks for at least d before the next attempt.
func RetryableAfter(err error, d time.Duration) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err, after: d}
}

// IsRetryable reports whether err was marked transient.
func IsRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

func retryAfter(err error) time.Duration {
	var re *retryableError
	if errors.As(err, &re) {
		return re.after
	}
	return 0
}

// Do calls fn until it returns nil, returns an error not marked Retryable,
// the attempt budget is spent or ctx is done. It returns the number of calls
// made and the last error. An exhausted budget leaves the error marked, so
// IsRetryable(err) distinguishes exhaustion from a terminal failure.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) error) (int, error) {
	b := p.backoff()
	limit := p.attempts()
	var err error
	for attempt := 1; ; attempt++ {
		err = fn(ctx, attempt)
		if err == nil || !IsRetryable(err) || attempt >= limit {
			return attempt, err
		}
		delay := b.Step()
		if ra := retryAfter(err); ra > delay {
			delay = ra
			if p.MaxDelay > 0 && delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}
		if !sleep(ctx, delay) {
			return attempt, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Cause strips the Retryable marker, returning the error fn produced.
func Cause(err error) error {
	var re *retryableError
	if errors.As(err, &re) {
		return re.err
	}
	return err
}
