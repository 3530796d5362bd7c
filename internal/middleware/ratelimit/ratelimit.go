package ratelimit

import (
	"sync"
	"time"
)

const (
	DefaultWindow        = time.Minute
	DefaultStandardLimit = 3
	DefaultPremiumLimit  = 30
)

// Decision is the outcome of a single rate limit check.
type Decision struct {
	Allowed   bool
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// Config holds the limiter tuning knobs. Zero values fall back to defaults.
type Config struct {
	Window        time.Duration
	StandardLimit int
	PremiumLimit  int

	// Now overrides the clock. Nil means time.Now. It must be set here
	// rather than after construction: the cleanup goroutine reads it.
	Now func() time.Time
}

type entry struct {
	count   int
	resetAt time.Time
}

// RateLimiter bounds requests per user to a fixed-window quota with two
// tiers (standard and premium). State is process-local: each instance
// enforces its own independent quota.
type RateLimiter struct {
	mu       sync.Mutex
	entries  map[string]*entry
	window   time.Duration
	standard int
	premium  int
	now      func() time.Time
}

func NewRateLimiter(cfg Config) *RateLimiter {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.StandardLimit <= 0 {
		cfg.StandardLimit = DefaultStandardLimit
	}
	if cfg.PremiumLimit <= 0 {
		cfg.PremiumLimit = DefaultPremiumLimit
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	rl := &RateLimiter{
		entries:  make(map[string]*entry),
		window:   cfg.Window,
		standard: cfg.StandardLimit,
		premium:  cfg.PremiumLimit,
		now:      cfg.Now,
	}

	go func() {
		ticker := time.NewTicker(rl.window)
		defer ticker.Stop()
		for range ticker.C {
			rl.cleanup()
		}
	}()

	return rl
}

// CheckAndConsume records one request for userID and reports whether it is
// within quota. Rejected requests are not counted against the window.
//
// The limit is recomputed from the premium flag on every call, so an
// entitlement change takes effect mid-window rather than at the next reset.
func (rl *RateLimiter) CheckAndConsume(userID string, premium bool) Decision {
	limit := rl.standard
	if premium {
		limit = rl.premium
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	e, exists := rl.entries[userID]

	// New identity, or the previous window has expired.
	if !exists || !now.Before(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(rl.window)}
		rl.entries[userID] = e
		return Decision{Allowed: true, Remaining: limit - 1, Limit: limit, ResetAt: e.resetAt}
	}

	if e.count >= limit {
		return Decision{Allowed: false, Remaining: 0, Limit: limit, ResetAt: e.resetAt}
	}

	e.count++
	return Decision{Allowed: true, Remaining: limit - e.count, Limit: limit, ResetAt: e.resetAt}
}

// Window returns the configured window length, used as the retry hint for
// rejected requests.
func (rl *RateLimiter) Window() time.Duration {
	return rl.window
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for userID, e := range rl.entries {
		if !now.Before(e.resetAt) {
			delete(rl.entries, userID)
		}
	}
}
