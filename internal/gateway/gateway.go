package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"BrewPress/internal/domain"
	"BrewPress/internal/ports"
)

const (
	defaultCooldown    = 30 * time.Second
	defaultBackoffBase = 60 * time.Second
	maxRetries         = 3
)

// Gateway throttles prompt/response calls against the generative model. It
// sleeps a fixed cooldown after every successful answer and retries
// rate-limited calls with doubling backoff before giving up.
type Gateway struct {
	generator   ports.Generator
	cooldown    time.Duration
	backoffBase time.Duration
	sleep       func(time.Duration)
	logger      *slog.Logger
}

// Option tweaks gateway timing, mainly so tests never block.
type Option func(*Gateway)

// WithCooldown overrides the post-success cooldown.
func WithCooldown(d time.Duration) Option {
	return func(g *Gateway) { g.cooldown = d }
}

// WithBackoffBase overrides the first rate-limit wait.
func WithBackoffBase(d time.Duration) Option {
	return func(g *Gateway) { g.backoffBase = d }
}

// WithSleep replaces the blocking sleep implementation.
func WithSleep(sleep func(time.Duration)) Option {
	return func(g *Gateway) { g.sleep = sleep }
}

// New wires a generator behind the throttling policy.
func New(generator ports.Generator, logger *slog.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		generator:   generator,
		cooldown:    defaultCooldown,
		backoffBase: defaultBackoffBase,
		sleep:       time.Sleep,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Analyze runs one prompt through the model. The cooldown after a successful
// answer is unconditional: it is the run's pacing against the provider's
// quota, not per-call backoff.
func (g *Gateway) Analyze(ctx context.Context, prompt string) (string, error) {
	if g.generator == nil {
		return "", fmt.Errorf("gateway has no generator: %w", domain.ErrAI)
	}

	for attempt := 0; ; attempt++ {
		answer, err := g.generator.Generate(ctx, prompt)
		if err == nil {
			g.sleep(g.cooldown)
			return answer, nil
		}

		if !errors.Is(err, domain.ErrRateLimited) {
			return "", fmt.Errorf("generate: %w: %w", domain.ErrAI, err)
		}

		if attempt >= maxRetries {
			return "", fmt.Errorf("generate after %d retries: %w", maxRetries, err)
		}

		wait := g.backoffBase << attempt
		g.debug("rate limited, backing off", "attempt", attempt+1, "wait", wait)
		g.sleep(wait)
	}
}

func (g *Gateway) debug(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Debug(msg, args...)
	}
}
