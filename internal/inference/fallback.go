package inference

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"leakscan/internal/port"
)

// quotaCooldown is how long a provider with exhausted credits is skipped.
const quotaCooldown = 10 * time.Minute

type failureKind int

const (
	failureOther failureKind = iota
	failureRateLimited
	failureQuota
)

func classify(err error) failureKind {
	switch {
	case IsQuotaExceeded(err):
		return failureQuota
	case IsRateLimited(err):
		return failureRateLimited
	default:
		return failureOther
	}
}

// providerCircuit keeps a provider out of rotation until resetAt.
type providerCircuit struct {
	mu      sync.RWMutex
	resetAt time.Time
	kind    failureKind
}

func (c *providerCircuit) state(now time.Time) (time.Time, failureKind, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, c.kind, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *providerCircuit) trip(resetAt time.Time, kind failureKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
	c.kind = kind
}

// chainOutcome collects why each provider in a chain could not answer.
type chainOutcome struct {
	rateLimited   int
	quota         int
	earliestReset time.Time
	failures      []error
}

func (o *chainOutcome) record(kind failureKind, resetAt time.Time, err error) {
	switch kind {
	case failureRateLimited:
		o.rateLimited++
		if o.earliestReset.IsZero() || resetAt.Before(o.earliestReset) {
			o.earliestReset = resetAt
		}
	case failureQuota:
		o.quota++
	default:
		o.failures = append(o.failures, err)
	}
}

// err reports the chain failure. Plain failures win since they need fixing;
// otherwise a rate limit is reported over exhausted credits because waiting
// can clear it.
func (o *chainOutcome) err() error {
	switch {
	case len(o.failures) > 0:
		return fmt.Errorf("all providers failed: %w", errors.Join(o.failures...))
	case o.rateLimited > 0:
		retryAfter := time.Until(o.earliestReset)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return NewRateLimitError("all", errors.New("all providers rate limited"), int(retryAfter.Seconds()))
	case o.quota > 0:
		return &QuotaExceededError{Provider: "all", Err: errors.New("all providers out of credits")}
	default:
		return errors.New("no inference providers configured")
	}
}

// FallbackProvider tries the providers of one pipeline stage in order,
// skipping those that are rate limited or out of credits. It implements
// port.InferenceProvider.
type FallbackProvider struct {
	providers []port.InferenceProvider
	circuits  []*providerCircuit
	names     []string
}

// NewFallbackProvider creates a FallbackProvider from an ordered list of providers and their names.
func NewFallbackProvider(providers []port.InferenceProvider, names []string) *FallbackProvider {
	circuits := make([]*providerCircuit, len(providers))
	for i := range circuits {
		circuits[i] = &providerCircuit{}
	}
	return &FallbackProvider{
		providers: providers,
		circuits:  circuits,
		names:     names,
	}
}

// Model returns the model of the first provider in the chain.
func (f *FallbackProvider) Model() string {
	if len(f.providers) == 0 {
		return ""
	}
	return f.providers[0].Model()
}

func (f *FallbackProvider) Complete(ctx context.Context, req port.CompletionRequest) (*port.Completion, error) {
	now := time.Now()
	var outcome chainOutcome

	for i, p := range f.providers {
		if resetAt, kind, open := f.circuits[i].state(now); open {
			zap.L().Info("inference.FallbackProvider.Complete: skipping provider, circuit open",
				zap.String("provider", f.names[i]), zap.Time("reset_at", resetAt))
			outcome.record(kind, resetAt, nil)
			continue
		}

		out, err := p.Complete(ctx, req)
		if err == nil {
			return out, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", f.names[i], ctxErr)
		}

		zap.L().Warn("inference.FallbackProvider.Complete: provider failed",
			zap.String("provider", f.names[i]), zap.Error(err))

		kind := classify(err)
		var resetAt time.Time
		var rlErr *RateLimitError
		switch {
		case kind == failureQuota:
			resetAt = now.Add(quotaCooldown)
			f.circuits[i].trip(resetAt, kind)
		case errors.As(err, &rlErr):
			resetAt = now.Add(rlErr.RetryAfter)
			f.circuits[i].trip(resetAt, kind)
		}
		outcome.record(kind, resetAt, fmt.Errorf("%s: %w", f.names[i], err))
	}

	return nil, outcome.err()
}
