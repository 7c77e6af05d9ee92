package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPollInterval = time.Minute
	maxPollAttempts     = 30
)

var countExpr = regexp.MustCompile(`\d+`)

// Coordinator triggers the site's bulk feed import and waits for it to
// drain before the enrichment batch starts.
type Coordinator struct {
	triggerURL string
	statusURL  string
	client     *http.Client
	interval   time.Duration
	sleep      func(time.Duration)
	logger     *slog.Logger
}

// Option adjusts coordinator timing for tests.
type Option func(*Coordinator)

// WithPollInterval overrides the one-minute poll cadence.
func WithPollInterval(d time.Duration) Option {
	return func(c *Coordinator) { c.interval = d }
}

// WithSleep replaces the blocking sleep between polls.
func WithSleep(sleep func(time.Duration)) Option {
	return func(c *Coordinator) { c.sleep = sleep }
}

// NewCoordinator wires the trigger and status endpoints.
func NewCoordinator(triggerURL, statusURL string, logger *slog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		triggerURL: triggerURL,
		statusURL:  statusURL,
		client:     &http.Client{Timeout: 30 * time.Second},
		interval:   defaultPollInterval,
		sleep:      time.Sleep,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ImportAndWait fires the import trigger and polls until the import reports
// completion. A failed trigger returns false immediately; a poll loop that
// never confirms completion is only a soft timeout — the batch may still run,
// so the result is true after a warning.
func (c *Coordinator) ImportAndWait(ctx context.Context) bool {
	if !c.trigger(ctx) {
		return false
	}

	for attempt := 1; attempt <= maxPollAttempts; attempt++ {
		c.sleep(c.interval)

		done, err := c.pollOnce(ctx)
		if err != nil {
			c.warn("import status poll failed", "attempt", attempt, "error", err)
			continue
		}
		if done {
			c.info("import complete", "attempts", attempt)
			return true
		}
	}

	c.warn("import did not confirm completion, proceeding anyway", "attempts", maxPollAttempts)
	return true
}

func (c *Coordinator) trigger(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.triggerURL, nil)
	if err != nil {
		c.warn("import trigger request invalid", "error", err)
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.warn("import trigger failed", "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.warn("import trigger rejected", "status", resp.Status)
		return false
	}
	return true
}

// pollOnce reads the status endpoint, which answers either a JSON
// {status, message} pair or free text carrying a remaining-item count.
func (c *Coordinator) pollOnce(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statusURL, nil)
	if err != nil {
		return false, fmt.Errorf("build status request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("poll status: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return false, fmt.Errorf("read status body: %w", err)
	}

	return importFinished(body), nil
}

func importFinished(body []byte) bool {
	var status struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &status); err == nil && (status.Status != "" || status.Message != "") {
		return strings.Contains(strings.ToLower(status.Message), "complete")
	}

	if match := countExpr.FindString(string(body)); match != "" {
		remaining, err := strconv.Atoi(match)
		return err == nil && remaining == 0
	}
	return false
}

func (c *Coordinator) info(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *Coordinator) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
