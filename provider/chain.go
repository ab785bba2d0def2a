package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ZaguanLabs/tercume"
)

// Fallback is the terminal tier of a Chain. It must not fail or block.
type Fallback interface {
	Fallback(req TranslateRequest) Translation
}

// Tier is one backend of a Chain with its wall-clock budget.
// A zero Timeout means the tier is bounded only by the caller's context.
type Tier struct {
	Provider Provider
	Timeout  time.Duration
}

// Chain tries each tier in order and falls back to a deterministic tier when
// all of them fail.
type Chain struct {
	tiers    []Tier
	fallback Fallback
	logger   *slog.Logger
}

// NewChain creates a chain. A nil fallback uses the default phrasebook.
func NewChain(fallback Fallback, tiers ...Tier) *Chain {
	if fallback == nil {
		fallback = DefaultPhrasebook()
	}
	kept := make([]Tier, 0, len(tiers))
	for _, t := range tiers {
		if t.Provider != nil {
			kept = append(kept, t)
		}
	}
	return &Chain{
		tiers:    kept,
		fallback: fallback,
		logger:   slog.Default(),
	}
}

// WithLogger sets the logger used for tier failures.
func (c *Chain) WithLogger(logger *slog.Logger) *Chain {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Tiers returns the names of the configured tiers in order.
func (c *Chain) Tiers() []string {
	names := make([]string, len(c.tiers))
	for i, t := range c.tiers {
		names[i] = t.Provider.Name()
	}
	return names
}

// Translate runs the tiers in order. It never fails: the worst case is the
// fallback tier's output.
func (c *Chain) Translate(ctx context.Context, req TranslateRequest) Translation {
	if strings.TrimSpace(req.Text) == "" {
		return Translation{Text: req.Text}
	}

	for _, tier := range c.tiers {
		start := time.Now()
		text, err := c.attempt(ctx, tier, req)
		if err == nil {
			return Translation{Text: text, Provider: tier.Provider.Name()}
		}
		c.logger.Warn("translation tier failed",
			"provider", tier.Provider.Name(),
			"target_lang", req.TargetLang,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
	}

	out := c.fallback.Fallback(req)
	c.logger.Info("fallback tier used", "target_lang", req.TargetLang, "provider", out.Provider)
	return out
}

type attemptResult struct {
	text string
	err  error
}

// attempt runs one tier on its own goroutine. On timeout the goroutine is
// left to finish into a buffered channel and its result is discarded.
func (c *Chain) attempt(ctx context.Context, tier Tier, req TranslateRequest) (string, error) {
	name := tier.Provider.Name()
	tctx, cancel := ctx, context.CancelFunc(func() {})
	if tier.Timeout > 0 {
		tctx, cancel = context.WithTimeout(ctx, tier.Timeout)
	}
	defer cancel()

	done := make(chan attemptResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- attemptResult{err: &tercume.ProviderError{
					Provider: name,
					Message:  fmt.Sprintf("panic: %v", r),
				}}
			}
		}()
		text, err := tier.Provider.Translate(tctx, req)
		done <- attemptResult{text: text, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		if strings.TrimSpace(r.text) == "" {
			return "", &tercume.ProviderError{Provider: name, Message: "empty translation"}
		}
		return r.text, nil
	case <-tctx.Done():
		return "", &tercume.ProviderError{
			Provider:  name,
			Message:   "timed out",
			Cause:     tctx.Err(),
			Retryable: true,
		}
	}
}

var (
	_ tercume.ProviderChain = (*Chain)(nil)
	_ Fallback              = (*Phrasebook)(nil)
)
