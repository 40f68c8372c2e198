package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenLimiter enforces a token budget per minute, for APIs that meter
// usage by token count rather than request count.
type TokenLimiter struct {
	mu          sync.Mutex
	maxPerMin   int
	remaining   int
	windowStart time.Time
}

// NewTokenLimiter creates a limiter allowing maxPerMin tokens per minute.
func NewTokenLimiter(maxPerMin int) *TokenLimiter {
	return &TokenLimiter{
		maxPerMin:   maxPerMin,
		remaining:   maxPerMin,
		windowStart: time.Now(),
	}
}

// GetRemaining returns the tokens left in the current window.
func (l *TokenLimiter) GetRemaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refill()
	return l.remaining
}

// Wait blocks until the given number of tokens can be consumed, or the
// context is canceled. Requests larger than the budget are allowed through
// once the window resets, to avoid deadlocking on oversized prompts.
func (l *TokenLimiter) Wait(ctx context.Context, tokens int) error {
	for {
		l.mu.Lock()
		l.refill()
		if l.remaining >= tokens || l.remaining == l.maxPerMin {
			l.remaining -= tokens
			l.mu.Unlock()
			return nil
		}
		wait := time.Until(l.windowStart.Add(time.Minute))
		l.mu.Unlock()

		if wait <= 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (l *TokenLimiter) refill() {
	if time.Since(l.windowStart) >= time.Minute {
		l.remaining = l.maxPerMin
		l.windowStart = time.Now()
	}
}
