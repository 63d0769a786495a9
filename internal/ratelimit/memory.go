package ratelimit

import (
	"context"
	"sync"
	"time"

	"macrolens/internal/config"
)

type window struct {
	count   int64
	resetAt time.Time
}

// Memory is a process-local limiter for single-instance deployments and tests.
type Memory struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// NewMemory returns an empty in-memory limiter.
func NewMemory() *Memory {
	return &Memory{windows: make(map[string]*window), now: time.Now}
}

// Allow implements Limiter.
func (l *Memory) Allow(_ context.Context, key string, policy config.RatePolicy) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(policy.Window)}
		l.windows[key] = w
	}
	w.count++
	return decide(w.count, policy, w.resetAt.Sub(now)), nil
}

// Sweep drops expired windows.
func (l *Memory) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for k, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, k)
		}
	}
}
