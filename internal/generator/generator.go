package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/wayfarerhq/wayfarer/common/llm"
	"github.com/wayfarerhq/wayfarer/common/logger"
	"github.com/wayfarerhq/wayfarer/internal/model"
)

const (
	defaultMaxAttempts = 3
	defaultBaseBackoff = time.Second
	defaultTimeout     = 60 * time.Second
	defaultMaxTokens   = 3000

	// maxBackoff caps the exponential wait between attempts.
	maxBackoff = 32 * time.Second

	// maxInvalidRetries bounds regeneration after the model returned output
	// that decoded but failed itinerary validation.
	maxInvalidRetries = 1

	// maxTimeoutRetries bounds retries after a per-call deadline expired.
	maxTimeoutRetries = 1
)

// Generation failures are classified so callers can report why a job failed
// and the retry loop can budget attempts per class.
var (
	ErrRateLimited     = errors.New("model rate limited")
	ErrUpstream        = errors.New("model upstream error")
	ErrTimeout         = errors.New("model call timed out")
	ErrInvalidResponse = errors.New("model returned an invalid itinerary")
)

// Generator produces a complete day-by-day itinerary for a destination.
type Generator interface {
	Generate(ctx context.Context, destination string, durationDays int) ([]model.Day, error)
}

type Config struct {
	MaxAttempts int           // total attempt budget across all failure classes
	BaseBackoff time.Duration // wait before the first retry, doubled each retry
	Timeout     time.Duration // per-call deadline
	MaxTokens   int
}

type generator struct {
	llm llm.Client
	cfg Config
}

func New(llmClient llm.Client, cfg Config) Generator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = defaultBaseBackoff
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	return &generator{
		llm: llmClient,
		cfg: cfg,
	}
}

// Generate asks the model for an itinerary and retries failed attempts with
// exponential backoff. Rate limits, server errors and network failures may
// consume the full attempt budget; an invalid itinerary or a timed-out call
// is retried at most once. The returned error wraps one of the package's
// classification errors.
func (g *generator) Generate(ctx context.Context, destination string, durationDays int) ([]model.Day, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component:   "wayfarer.generator",
		Destination: logger.Ptr(destination),
	})

	start := time.Now()

	slog.DebugContext(ctx, "requesting itinerary from model",
		"model", g.llm.Model(),
		"days", durationDays)

	var (
		lastErr        error
		invalidRetries int
		timeoutRetries int
	)

	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		attemptCtx := logger.WithLogFields(ctx, logger.LogFields{Attempt: logger.Ptr(attempt)})

		if attempt > 1 {
			wait := backoffFor(attempt-1, g.cfg.BaseBackoff)
			slog.InfoContext(attemptCtx, "retrying generation", "wait_ms", wait.Milliseconds())

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		days, err := g.generateOnce(attemptCtx, destination, durationDays)
		if err == nil {
			slog.InfoContext(attemptCtx, "itinerary generated",
				"days", len(days),
				"duration_ms", time.Since(start).Milliseconds())
			return days, nil
		}
		lastErr = err

		switch {
		case errors.Is(err, ErrInvalidResponse):
			invalidRetries++
			if invalidRetries > maxInvalidRetries {
				slog.ErrorContext(attemptCtx, "model output invalid after retry", "error", err)
				return nil, err
			}
		case errors.Is(err, ErrTimeout):
			timeoutRetries++
			if timeoutRetries > maxTimeoutRetries {
				slog.ErrorContext(attemptCtx, "model call timed out after retry", "error", err)
				return nil, err
			}
		case errors.Is(err, ErrRateLimited):
			// Consumes the overall budget.
		case errors.Is(err, ErrUpstream):
			if code := llm.StatusCode(err); code >= 400 && code < 500 {
				slog.ErrorContext(attemptCtx, "model rejected the request",
					"status_code", code,
					"error", err)
				return nil, err
			}
		default:
			// Context cancellation and anything unclassified is terminal.
			return nil, err
		}

		slog.WarnContext(attemptCtx, "generation attempt failed", "error", err)
	}

	slog.ErrorContext(ctx, "generation attempts exhausted",
		"attempts", g.cfg.MaxAttempts,
		"error", lastErr)

	return nil, lastErr
}

func (g *generator) generateOnce(ctx context.Context, destination string, durationDays int) ([]model.Day, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	var out itineraryOutput
	if _, err := g.llm.Chat(callCtx, llm.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt(destination, durationDays),
		SchemaName:   "travel_itinerary",
		Schema:       itinerarySchema,
		MaxTokens:    g.cfg.MaxTokens,
		Temperature:  llm.Temp(promptTemperature),
	}, &out); err != nil {
		return nil, classify(err)
	}

	days := out.days()
	if err := validateItinerary(days, durationDays); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return days, nil
}

// classify maps transport, API and decode failures onto the generation error
// taxonomy. The original cause stays in the chain so the retry loop can still
// inspect API status codes.
func classify(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case errors.Is(err, llm.ErrMalformedOutput):
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	if code := llm.StatusCode(err); code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	} else if code != 0 {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	// No API response at all: network-level failure.
	return fmt.Errorf("%w: %w", ErrUpstream, err)
}

// backoffFor returns the wait before the given retry (1-based), doubling from
// base and capped at maxBackoff.
func backoffFor(retry int, base time.Duration) time.Duration {
	wait := time.Duration(math.Pow(2, float64(retry-1))) * base
	if wait > maxBackoff {
		wait = maxBackoff
	}
	return wait
}
