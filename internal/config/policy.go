package config

import (
	"fmt"
	"time"

	"github.com/AEATech/txcore/pkg/txcore"
)

// BuildRetryPolicy parses a RetryConfig into a txcore.RetryPolicy. An empty
// BaseDelay/MaxDelay/Multiplier means "use txcore.NoBackoff" (immediate
// retries up to MaxRetries); otherwise an ExponentialBackoff is built.
func (c RetryConfig) BuildRetryPolicy() (txcore.RetryPolicy, error) {
	if c.BaseDelay == "" && c.MaxDelay == "" && c.Multiplier == 0 {
		return txcore.NewRetryPolicy(c.MaxRetries, txcore.NoBackoff{})
	}

	baseDelay, err := time.ParseDuration(orDefault(c.BaseDelay, "0s"))
	if err != nil {
		return txcore.RetryPolicy{}, fmt.Errorf("parsing retry.base_delay: %w", err)
	}
	maxDelay, err := time.ParseDuration(orDefault(c.MaxDelay, "0s"))
	if err != nil {
		return txcore.RetryPolicy{}, fmt.Errorf("parsing retry.max_delay: %w", err)
	}
	jitter, err := time.ParseDuration(orDefault(c.Jitter, "0s"))
	if err != nil {
		return txcore.RetryPolicy{}, fmt.Errorf("parsing retry.jitter: %w", err)
	}

	backoff, err := txcore.NewExponentialBackoff(baseDelay, maxDelay, c.Multiplier, jitter)
	if err != nil {
		return txcore.RetryPolicy{}, fmt.Errorf("building backoff strategy: %w", err)
	}

	return txcore.NewRetryPolicy(c.MaxRetries, backoff)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// ParseIsolationLevel maps a config string to a txcore.IsolationLevel. An
// empty or unrecognized string maps to txcore.IsolationNone.
func ParseIsolationLevel(s string) txcore.IsolationLevel {
	switch s {
	case "read_uncommitted":
		return txcore.IsolationReadUncommitted
	case "read_committed":
		return txcore.IsolationReadCommitted
	case "repeatable_read":
		return txcore.IsolationRepeatableRead
	case "serializable":
		return txcore.IsolationSerializable
	default:
		return txcore.IsolationNone
	}
}
