package bbapi

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// RateLimiter implements a token-bucket rate limiter with exponential
// backoff when the API responds 429.
type RateLimiter struct {
	mu sync.Mutex

	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time

	maxRetries        int
	baseBackoff       time.Duration
	backoffMultiplier float64
	maxBackoff        time.Duration

	consecutiveFailures int
}

// RateLimiterConfig configures a RateLimiter.
type RateLimiterConfig struct {
	RequestsPerHour        int
	BurstSize              int
	MaxRetries             int
	RetryBackoffSeconds    int
	RetryBackoffMultiplier float64
	MaxBackoffSeconds      int
}

// DefaultRateLimiterConfig matches Bitbucket Cloud's documented default
// request budget for authenticated requests.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerHour:        900,
		BurstSize:              10,
		MaxRetries:             5,
		RetryBackoffSeconds:    5,
		RetryBackoffMultiplier: 2.0,
		MaxBackoffSeconds:      300,
	}
}

// NewRateLimiter creates a rate limiter from cfg.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		tokens:            float64(cfg.BurstSize),
		maxTokens:         float64(cfg.BurstSize),
		refillRate:        float64(cfg.RequestsPerHour) / 3600.0,
		lastRefill:        time.Now(),
		maxRetries:        cfg.MaxRetries,
		baseBackoff:       time.Duration(cfg.RetryBackoffSeconds) * time.Second,
		backoffMultiplier: cfg.RetryBackoffMultiplier,
		maxBackoff:        time.Duration(cfg.MaxBackoffSeconds) * time.Second,
	}
}

// Wait blocks until a token is available, then consumes one.
func (r *RateLimiter) Wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	if r.tokens >= 1 {
		r.tokens--
		return
	}

	deficit := 1 - r.tokens
	waitTime := time.Duration(deficit/r.refillRate*1000) * time.Millisecond

	r.mu.Unlock()
	time.Sleep(waitTime)
	r.mu.Lock()

	r.refill()
	r.tokens--
}

// refill adds tokens for elapsed time. Must be called with mu held.
func (r *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.tokens = math.Min(r.maxTokens, r.tokens+elapsed*r.refillRate)
	r.lastRefill = now
}

// OnSuccess resets the consecutive failure counter.
func (r *RateLimiter) OnSuccess() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consecutiveFailures = 0
}

// OnRateLimited records a 429 and returns the backoff to wait, and whether
// a retry is still allowed.
func (r *RateLimiter) OnRateLimited() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.consecutiveFailures++
	if r.consecutiveFailures > r.maxRetries {
		return 0, false
	}

	return r.calculateBackoff(), true
}

// calculateBackoff must be called with mu held.
func (r *RateLimiter) calculateBackoff() time.Duration {
	multiplier := math.Pow(r.backoffMultiplier, float64(r.consecutiveFailures-1))
	backoff := time.Duration(float64(r.baseBackoff) * multiplier)
	if backoff > r.maxBackoff {
		backoff = r.maxBackoff
	}

	jitter := 0.75 + rand.Float64()*0.5
	return time.Duration(float64(backoff) * jitter)
}
