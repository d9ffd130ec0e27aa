package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/mamadbah2/dairyfeed/internal/config"
)

// Registry hands out one token bucket per organization, created lazily on
// first use. Organizations can carry their own rate override; everyone else
// gets the configured default.
type Registry struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	defaults config.RateLimitConfig
}

// NewRegistry creates a limiter registry with the given defaults.
func NewRegistry(defaults config.RateLimitConfig) *Registry {
	return &Registry{
		limiters: make(map[string]*rate.Limiter),
		defaults: defaults,
	}
}

// Allow reports whether the organization may make one more request now.
func (r *Registry) Allow(orgID string) bool {
	return r.limiter(orgID, 0, 0).Allow()
}

// AllowWithOverride is Allow with a per-organization rate taken from the
// tenant record; zero values fall back to the defaults.
func (r *Registry) AllowWithOverride(orgID string, rps float64, burst int) bool {
	return r.limiter(orgID, rps, burst).Allow()
}

func (r *Registry) limiter(orgID string, rps float64, burst int) *rate.Limiter {
	r.mu.RLock()
	lim, exists := r.limiters[orgID]
	r.mu.RUnlock()
	if exists {
		return lim
	}

	if rps <= 0 {
		rps = r.defaults.DefaultRPS
	}
	if burst < 1 {
		burst = r.defaults.DefaultBurst
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if lim, exists = r.limiters[orgID]; exists {
		return lim
	}
	lim = rate.NewLimiter(rate.Limit(rps), burst)
	r.limiters[orgID] = lim
	return lim
}

// Reset drops an organization's bucket, e.g. after its limits change.
func (r *Registry) Reset(orgID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.limiters, orgID)
}
