package tercume

import (
	"context"
	"errors"
	"net"
	"time"
)

// RetryConfig controls how a provider call is repeated inside its tier.
type RetryConfig struct {
	MaxRetries int           // attempts after the first
	BaseDelay  time.Duration // delay before the first retry, doubled each time
	MaxDelay   time.Duration // upper bound for a single delay

	// OnRetry, when set, is called before each retry sleep.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultRetryConfig returns the retry policy used for the cloud tier.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   4 * time.Second,
	}
}

// delay returns the backoff before retry number attempt (1-based).
func (c RetryConfig) delay(attempt int) time.Duration {
	d := c.BaseDelay << (attempt - 1)
	if d <= 0 || (c.MaxDelay > 0 && d > c.MaxDelay) {
		d = c.MaxDelay
	}
	return d
}

// WithRetry calls fn until it succeeds, returns a non-retryable error or the
// retry budget is spent. A retry whose delay would run past the context
// deadline is not attempted; the last error is returned instead so the
// provider chain can move on to its next tier.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if attempt >= cfg.MaxRetries || !IsRetryable(err) {
			return zero, err
		}

		wait := cfg.delay(attempt + 1)
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < wait {
			return zero, err
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, wait, err)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// IsRetryable reports whether a provider failure is worth repeating.
// Provider errors carry their own verdict; network timeouts are retried;
// context errors and anything else are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// RetryableProvider repeats failed calls of the wrapped provider.
type RetryableProvider struct {
	provider Provider
	config   RetryConfig
}

// NewRetryableProvider wraps provider with the given retry policy.
func NewRetryableProvider(provider Provider, cfg RetryConfig) *RetryableProvider {
	return &RetryableProvider{provider: provider, config: cfg}
}

// Name returns the wrapped provider's name so tier logs stay meaningful.
func (p *RetryableProvider) Name() string {
	return p.provider.Name()
}

// Translate implements Provider.
func (p *RetryableProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	return WithRetry(ctx, p.config, func(ctx context.Context) (string, error) {
		return p.provider.Translate(ctx, req)
	})
}

var _ Provider = (*RetryableProvider)(nil)
