package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type rateLimitConfig struct {
	rps   rate.Limit
	burst int
}

// TenantRateLimiter manages per-tenant rate limiters.
type TenantRateLimiter struct {
	tenants map[string]*tenantLimiter
	mu      sync.Mutex
	config  rateLimitConfig
	stop    chan struct{}
}

// tenantLimiter tracks the rate limiter and last seen time for a tenant.
type tenantLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewTenantRateLimiter creates a per-tenant rate limiter.
// rps: evaluations per second allowed per tenant.
// burst: maximum burst size.
func NewTenantRateLimiter(rps float64, burst int) *TenantRateLimiter {
	rl := &TenantRateLimiter{
		tenants: make(map[string]*tenantLimiter),
		config: rateLimitConfig{
			rps:   rate.Limit(rps),
			burst: burst,
		},
		stop: make(chan struct{}),
	}
	go rl.cleanupTenants()
	return rl
}

// Allow reports whether the tenant may proceed right now.
func (rl *TenantRateLimiter) Allow(tenantID string) bool {
	return rl.getTenant(tenantID).Allow()
}

func (rl *TenantRateLimiter) getTenant(tenantID string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	t, exists := rl.tenants[tenantID]
	if !exists {
		limiter := rate.NewLimiter(rl.config.rps, rl.config.burst)
		rl.tenants[tenantID] = &tenantLimiter{limiter, time.Now()}
		return limiter
	}

	t.lastSeen = time.Now()
	return t.limiter
}

// cleanupTenants removes stale tenant entries to prevent memory leaks.
// Checks every minute, removes entries idle longer than 10 minutes.
func (rl *TenantRateLimiter) cleanupTenants() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for id, t := range rl.tenants {
				if time.Since(t.lastSeen) > 10*time.Minute {
					delete(rl.tenants, id)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Close stops the background cleanup goroutine.
func (rl *TenantRateLimiter) Close() {
	close(rl.stop)
}
