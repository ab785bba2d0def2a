package tercume

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrRateLimitDeadline is returned when the next request slot opens after
// the caller's deadline.
var ErrRateLimitDeadline = errors.New("rate limit slot is past the deadline")

// RateLimitConfig configures the rate limiter.
type RateLimitConfig struct {
	RequestsPerMinute int // sustained rate (default 60)
	BurstSize         int // bucket size (default: RequestsPerMinute)
}

// RateLimiter is a token bucket. Waiters reserve a future token, so callers
// are served in arrival order and the limiter never oversubscribes.
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64 // may go negative while reservations are outstanding
	capacity float64
	perSec   float64
	last     time.Time
	now      func() time.Time
}

// NewRateLimiter creates a rate limiter with a full bucket.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = rpm
	}

	r := &RateLimiter{
		tokens:   float64(burst),
		capacity: float64(burst),
		perSec:   float64(rpm) / 60,
		now:      time.Now,
	}
	r.last = r.now()
	return r
}

// advance refills the bucket up to now. Callers hold mu.
func (r *RateLimiter) advance() {
	now := r.now()
	if elapsed := now.Sub(r.last).Seconds(); elapsed > 0 {
		r.tokens += elapsed * r.perSec
		if r.tokens > r.capacity {
			r.tokens = r.capacity
		}
	}
	r.last = now
}

// reserve takes one token and returns how long the caller must wait for it.
func (r *RateLimiter) reserve() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.advance()
	r.tokens--
	if r.tokens >= 0 {
		return 0
	}
	return time.Duration(-r.tokens / r.perSec * float64(time.Second))
}

// release returns a reserved token that was not used.
func (r *RateLimiter) release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advance()
	r.tokens++
	if r.tokens > r.capacity {
		r.tokens = r.capacity
	}
}

// Wait blocks until the caller's token is available. It fails fast with
// ErrRateLimitDeadline when the token would arrive after ctx's deadline.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	wait := r.reserve()
	if wait == 0 {
		return nil
	}
	if deadline, ok := ctx.Deadline(); ok && r.now().Add(wait).After(deadline) {
		r.release()
		return ErrRateLimitDeadline
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		r.release()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// TryAcquire takes a token only if one is available now.
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.advance()
	if r.tokens < 1 {
		return false
	}
	r.tokens--
	return true
}

// Available returns the number of tokens that can be taken without waiting.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advance()
	if r.tokens < 0 {
		return 0
	}
	return r.tokens
}

// RateLimitedProvider spaces out calls to the wrapped provider.
type RateLimitedProvider struct {
	provider Provider
	limiter  *RateLimiter
}

// NewRateLimitedProvider wraps provider with a limiter built from cfg.
func NewRateLimitedProvider(provider Provider, cfg RateLimitConfig) *RateLimitedProvider {
	return &RateLimitedProvider{provider: provider, limiter: NewRateLimiter(cfg)}
}

// Name returns the wrapped provider's name.
func (p *RateLimitedProvider) Name() string {
	return p.provider.Name()
}

// Translate waits for a slot, then calls the wrapped provider. A slot that
// cannot be had within the tier deadline is reported as a provider failure
// so the chain moves on.
func (p *RateLimitedProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", &ProviderError{
			Provider: p.provider.Name(),
			Message:  "rate limited",
			Cause:    err,
		}
	}
	return p.provider.Translate(ctx, req)
}

// Limiter returns the underlying rate limiter.
func (p *RateLimitedProvider) Limiter() *RateLimiter {
	return p.limiter
}

var _ Provider = (*RateLimitedProvider)(nil)
