// Package ratelimit implements per-client admission control over fixed
// windows. Backends are interchangeable behind Limiter.
package ratelimit

import (
	"context"
	"time"

	"macrolens/internal/config"
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// Reset is the time until the current window ends.
	Reset time.Duration
}

// Limiter admits or rejects a request for key under policy.
type Limiter interface {
	Allow(ctx context.Context, key string, policy config.RatePolicy) (Decision, error)
}

func decide(count int64, policy config.RatePolicy, reset time.Duration) Decision {
	remaining := policy.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= int64(policy.Limit),
		Limit:     policy.Limit,
		Remaining: remaining,
		Reset:     reset,
	}
}
