package gateway

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"BrewPress/internal/domain"
)

type scriptedGenerator struct {
	answers []string
	errs    []error
	calls   int
}

func (s *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.answers) {
		return s.answers[i], nil
	}
	return "", errors.New("script exhausted")
}

func rateLimitErr() error {
	return fmt.Errorf("429 from provider: %w", domain.ErrRateLimited)
}

func TestAnalyzeCooldownAfterSuccess(t *testing.T) {
	t.Parallel()

	var slept []time.Duration
	gen := &scriptedGenerator{answers: []string{"ok"}}
	g := New(gen, nil, WithSleep(func(d time.Duration) { slept = append(slept, d) }))

	answer, err := g.Analyze(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if answer != "ok" {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if len(slept) != 1 || slept[0] != defaultCooldown {
		t.Fatalf("expected single %v cooldown, got %v", defaultCooldown, slept)
	}
}

func TestAnalyzeRateLimitBackoffSequence(t *testing.T) {
	t.Parallel()

	var slept []time.Duration
	gen := &scriptedGenerator{
		errs:    []error{rateLimitErr(), rateLimitErr(), rateLimitErr(), nil},
		answers: []string{"", "", "", "late answer"},
	}
	g := New(gen, nil, WithSleep(func(d time.Duration) { slept = append(slept, d) }))

	answer, err := g.Analyze(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if answer != "late answer" {
		t.Fatalf("unexpected answer: %q", answer)
	}

	want := []time.Duration{60 * time.Second, 120 * time.Second, 240 * time.Second, defaultCooldown}
	if len(slept) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), slept)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Fatalf("sleep %d: expected %v, got %v", i, want[i], slept[i])
		}
	}
}

func TestAnalyzeRateLimitExhaustion(t *testing.T) {
	t.Parallel()

	gen := &scriptedGenerator{
		errs: []error{rateLimitErr(), rateLimitErr(), rateLimitErr(), rateLimitErr()},
	}
	g := New(gen, nil, WithSleep(func(time.Duration) {}))

	_, err := g.Analyze(context.Background(), "prompt")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected rate-limit failure, got %v", err)
	}
	if gen.calls != 4 {
		t.Fatalf("expected 1 call + 3 retries, got %d calls", gen.calls)
	}
}

func TestAnalyzeNonRateLimitNeverRetries(t *testing.T) {
	t.Parallel()

	var slept []time.Duration
	gen := &scriptedGenerator{errs: []error{errors.New("model unavailable")}}
	g := New(gen, nil, WithSleep(func(d time.Duration) { slept = append(slept, d) }))

	_, err := g.Analyze(context.Background(), "prompt")
	if !errors.Is(err, domain.ErrAI) {
		t.Fatalf("expected AI failure kind, got %v", err)
	}
	if errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("non-rate-limit failure misclassified: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("expected single call, got %d", gen.calls)
	}
	if len(slept) != 0 {
		t.Fatalf("expected no sleeps, got %v", slept)
	}
}
