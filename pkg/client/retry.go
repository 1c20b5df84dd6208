package client

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for retry operations.
var (
	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nbastats_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	retryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nbastats_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"error_class"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nbastats_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

// RetryConfig holds the configuration for retry logic.
type RetryConfig struct {
	// MaxRetries is the number of re-attempts after the initial request,
	// so MaxRetries 3 means up to 4 attempts in total.
	MaxRetries int

	// InitialBackoff bounds the first backoff window.
	InitialBackoff time.Duration

	// MaxBackoff caps the backoff window growth.
	MaxBackoff time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     10 * time.Second,
	}
}

// backoffDelay computes the full-jitter delay for a 0-based attempt:
// a uniform draw from [0, min(MaxBackoff, InitialBackoff*2^attempt)].
func backoffDelay(cfg RetryConfig, attempt int) time.Duration {
	ceiling := float64(cfg.InitialBackoff) * math.Pow(2, float64(attempt))
	if max := float64(cfg.MaxBackoff); ceiling > max {
		ceiling = max
	}
	return time.Duration(rand.Float64() * ceiling)
}

// attemptFunc runs one attempt. It returns a server-requested wait floor
// (nonzero only after a 429 with a Retry-After hint) and the attempt's
// error, if any.
type attemptFunc func(attempt int) (floor time.Duration, err error)

// retryWithBackoff executes fn until it succeeds, fails fatally, or the
// retry budget is exhausted. Backoff is exponential with full jitter;
// a server-supplied Retry-After floor raises the wait but never shortens
// the computed backoff. The context cancels both pending attempts and
// backoff sleeps.
func (c *Client) retryWithBackoff(ctx context.Context, endpoint string, cfg RetryConfig, fn attemptFunc) error {
	maxAttempts := cfg.MaxRetries + 1
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		floor, err := fn(attempt)
		if err == nil {
			if attempt > 0 {
				c.logger.Info().
					Str("endpoint", endpoint).
					Int("attempt", attempt+1).
					Msg("Request succeeded after retry")
			}
			return nil
		}

		lastErr = err
		if errors.Is(err, ErrContextCancelled) {
			return err
		}
		class := errorClassOf(err)

		if !shouldRetry(class) {
			// Fatal error: propagate immediately without consuming a retry.
			return err
		}

		if attempt == maxAttempts-1 {
			break
		}

		delay := backoffDelay(cfg, attempt)
		if floor > delay {
			delay = floor
		}

		retriesTotal.WithLabelValues(string(class)).Inc()
		retryBackoffSeconds.WithLabelValues(string(class)).Observe(delay.Seconds())

		c.logger.Debug().
			Str("endpoint", endpoint).
			Str("error_class", string(class)).
			Int("attempt", attempt+1).
			Dur("backoff", delay).
			Msg("Retrying request after backoff")

		select {
		case <-ctx.Done():
			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("attempt", attempt+1).
				Msg("Context cancelled during retry backoff")
			return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		case <-time.After(delay):
		}
	}

	class := errorClassOf(lastErr)
	retryExhaustedTotal.WithLabelValues(string(class)).Inc()
	c.logger.Warn().
		Str("endpoint", endpoint).
		Str("error_class", string(class)).
		Int("max_attempts", maxAttempts).
		Msg("Retry attempts exhausted")

	// The last error is surfaced unchanged underneath the sentinel.
	return fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, maxAttempts, lastErr)
}

// errorClassOf extracts the class from an APIError; anything else was a
// transport-level failure.
func errorClassOf(err error) ErrorClass {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Class
	}
	return ErrorClassNetwork
}
