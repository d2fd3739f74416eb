package txcore

import (
	"math"
	"math/rand"
	"time"
)

// NoBackoff always returns a zero delay. Useful when the caller wants
// immediate retries, or as a placeholder while a real strategy is wired up.
type NoBackoff struct{}

func (NoBackoff) Delay(attempt int) time.Duration { return 0 }

// ExponentialBackoff implements exponential backoff with jitter:
//
//	delay(attempt) = min(maxDelay, baseDelay * multiplier^attempt) + uniform[0, jitter]
//
// The cap applies only to the deterministic term; jitter is added after
// capping, so the returned delay may exceed maxDelay by up to jitter.
type ExponentialBackoff struct {
	baseDelay  time.Duration
	maxDelay   time.Duration
	multiplier float64
	jitter     time.Duration

	// jitterFunc supplies uniform [0,1) randomness for the jitter term.
	// Defaults to rand.Float64; tests should set a deterministic function.
	jitterFunc func() float64
}

// BackoffOption is a functional option for ExponentialBackoff.
type BackoffOption func(*ExponentialBackoff)

// WithJitterFunc overrides the randomness source used for the jitter term.
// Intended for deterministic tests.
func WithJitterFunc(f func() float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.jitterFunc = f }
}

// NewExponentialBackoff validates its bounds and constructs an
// ExponentialBackoff strategy, or returns an InvalidArgument error.
//
//	baseDelay  >= 0
//	maxDelay   >= baseDelay
//	multiplier > 1.0
//	jitter     >= 0
func NewExponentialBackoff(baseDelay, maxDelay time.Duration, multiplier float64, jitter time.Duration, opts ...BackoffOption) (*ExponentialBackoff, error) {
	if baseDelay < 0 {
		return nil, newInvalidArgument("baseDelay must be >= 0, got %v", baseDelay)
	}
	if maxDelay < baseDelay {
		return nil, newInvalidArgument("maxDelay (%v) must be >= baseDelay (%v)", maxDelay, baseDelay)
	}
	if multiplier <= 1.0 {
		return nil, newInvalidArgument("multiplier must be > 1.0, got %v", multiplier)
	}
	if jitter < 0 {
		return nil, newInvalidArgument("jitter must be >= 0, got %v", jitter)
	}

	b := &ExponentialBackoff{
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
		multiplier: multiplier,
		jitter:     jitter,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Delay computes the capped-then-jittered delay for attempt.
func (b *ExponentialBackoff) Delay(attempt int) time.Duration {
	deterministic := float64(b.baseDelay) * math.Pow(b.multiplier, float64(attempt))
	if deterministic > float64(b.maxDelay) {
		deterministic = float64(b.maxDelay)
	}

	var jitterAmount float64
	if b.jitter > 0 {
		jitterFunc := b.jitterFunc
		if jitterFunc == nil {
			jitterFunc = rand.Float64
		}
		jitterAmount = jitterFunc() * float64(b.jitter)
	}

	return time.Duration(deterministic + jitterAmount)
}

// BaseDelay returns the configured base delay, mainly for tests.
func (b *ExponentialBackoff) BaseDelay() time.Duration { return b.baseDelay }

// MaxDelay returns the configured delay cap, mainly for tests.
func (b *ExponentialBackoff) MaxDelay() time.Duration { return b.maxDelay }

// Multiplier returns the configured growth factor, mainly for tests.
func (b *ExponentialBackoff) Multiplier() float64 { return b.multiplier }

// Jitter returns the configured jitter ceiling, mainly for tests.
func (b *ExponentialBackoff) Jitter() time.Duration { return b.jitter }
