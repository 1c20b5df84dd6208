// Package client provides the core NBA Stats API HTTP client with
// retries, rate-limit awareness, and error classification.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/courtdata/fastbreak-go/pkg/api"
	"github.com/courtdata/fastbreak-go/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for stats client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nbastats_requests_total",
		Help: "Total stats API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nbastats_request_duration_seconds",
		Help:    "Stats API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nbastats_errors_total",
		Help: "Total stats API errors by class",
	}, []string{"class"})
)

// Config holds the client configuration. Every knob is independently
// overridable; zero values fall back to the defaults below.
type Config struct {
	// BaseURL is the stats API host (default api.BaseURL).
	BaseURL string

	// Timeout is the per-request timeout (default 30s). Ignored when an
	// external HTTPClient is supplied.
	Timeout time.Duration

	// Retry policy (defaults: 3 retries, 1s initial, 10s max backoff).
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// MaxConcurrency bounds in-flight requests in GetMany (default 10).
	MaxConcurrency int

	// HTTPClient is an optional externally-owned client. When set, the
	// client never tears it down on Close.
	HTTPClient *http.Client

	// Redis optionally shares rate-limit cooldown state across
	// processes. Nil keeps the state in process memory.
	Redis *redis.Client

	// Headers are sent with every request (default api.DefaultHeaders;
	// the stats API rejects requests without a browser-like header set).
	Headers map[string]string
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	retry := DefaultRetryConfig()
	return Config{
		BaseURL:        api.BaseURL,
		Timeout:        30 * time.Second,
		MaxRetries:     retry.MaxRetries,
		InitialBackoff: retry.InitialBackoff,
		MaxBackoff:     retry.MaxBackoff,
		MaxConcurrency: 10,
		Headers:        api.DefaultHeaders,
	}
}

// Client is the stats API client. It is safe for concurrent use; the
// underlying connection pool is shared by all workers.
type Client struct {
	config      Config
	rateLimiter *ratelimit.Tracker
	logger      zerolog.Logger

	mu     sync.Mutex
	http   *http.Client
	owns   bool
	closed bool
}

// New creates a stats API client.
func New(cfg Config) (*Client, error) {
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max_retries must be >= 0 (got %d)", cfg.MaxRetries)
	}
	if cfg.MaxConcurrency < 0 {
		return nil, fmt.Errorf("max_concurrency must be >= 0 (got %d)", cfg.MaxConcurrency)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = api.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultRetryConfig().InitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = DefaultRetryConfig().MaxBackoff
	}
	if cfg.MaxConcurrency == 0 {
		cfg.MaxConcurrency = 10
	}
	if cfg.Headers == nil {
		cfg.Headers = api.DefaultHeaders
	}

	logger := log.With().Str("component", "stats-client").Logger()

	c := &Client{
		config:      cfg,
		rateLimiter: ratelimit.NewTracker(cfg.Redis, logger),
		logger:      logger,
	}
	if cfg.HTTPClient != nil {
		c.http = cfg.HTTPClient
		c.owns = false
	}
	return c, nil
}

// httpClient returns the shared connection pool, creating an owned one
// lazily on first use.
func (c *Client) httpClient() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.http == nil {
		c.http = &http.Client{Timeout: c.config.Timeout}
		c.owns = true
	}
	return c.http
}

// Close releases the owned connection pool. It is idempotent, and an
// externally supplied pool is never torn down.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.owns && c.http != nil {
		c.http.CloseIdleConnections()
	}
	return nil
}

// RateLimiter exposes the cooldown tracker (for observability).
func (c *Client) RateLimiter() *ratelimit.Tracker {
	return c.rateLimiter
}

// Get executes one logical request to completion: a validated body or a
// terminal error, transparently retrying transient failures per the
// configured policy.
func (c *Client) Get(ctx context.Context, ep api.Endpoint) ([]byte, error) {
	endpoint := ep.Path()
	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	retryCfg := RetryConfig{
		MaxRetries:     c.config.MaxRetries,
		InitialBackoff: c.config.InitialBackoff,
		MaxBackoff:     c.config.MaxBackoff,
	}

	var body []byte
	err := c.retryWithBackoff(ctx, endpoint, retryCfg, func(attempt int) (time.Duration, error) {
		// Honor a cooldown another worker may have recorded. Waiting here
		// instead of failing keeps one 429 from cascading into many.
		if wait := c.rateLimiter.CooldownRemaining(ctx); wait > 0 {
			c.logger.Debug().
				Str("endpoint", endpoint).
				Dur("wait", wait).
				Msg("Waiting out rate limit cooldown")
			select {
			case <-ctx.Done():
				return 0, fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
			case <-time.After(wait):
			}
		}

		c.logger.Debug().
			Str("endpoint", endpoint).
			Str("query", ep.Query()).
			Int("attempt", attempt+1).
			Msg("Executing stats request")

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.URL(c.config.BaseURL), nil)
		if err != nil {
			return 0, &APIError{Endpoint: endpoint, Class: ErrorClassClient, Attempts: attempt + 1, Err: err}
		}
		for key, value := range c.config.Headers {
			req.Header.Set(key, value)
		}

		resp, err := c.httpClient().Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return 0, fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
			}
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return 0, &APIError{Endpoint: endpoint, Class: ErrorClassNetwork, Attempts: attempt + 1, Err: err}
		}
		defer resp.Body.Close()

		requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode == http.StatusTooManyRequests {
			// The server's hint becomes a floor for the next backoff.
			floor := c.rateLimiter.ObserveRateLimit(ctx, resp.Header)
			errorsTotal.WithLabelValues(string(ErrorClassRateLimit)).Inc()
			return floor, &APIError{
				Endpoint:   endpoint,
				StatusCode: resp.StatusCode,
				Class:      ErrorClassRateLimit,
				Attempts:   attempt + 1,
				Message:    resp.Status,
			}
		}

		if resp.StatusCode >= 400 {
			class := classifyStatus(resp.StatusCode)
			errorsTotal.WithLabelValues(string(class)).Inc()
			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("error_class", string(class)).
				Msg("Stats request error")
			return 0, &APIError{
				Endpoint:   endpoint,
				StatusCode: resp.StatusCode,
				Class:      class,
				Attempts:   attempt + 1,
				Message:    resp.Status,
			}
		}

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			return 0, &APIError{Endpoint: endpoint, Class: ErrorClassNetwork, Attempts: attempt + 1, Err: err}
		}
		body = b
		return 0, nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("bytes", len(body)).
		Msg("Request complete")
	return body, nil
}

// GetJSON performs Get and decodes the body into v. Decode failures are
// fatal: they indicate an API contract change, not a transient condition.
func (c *Client) GetJSON(ctx context.Context, ep api.Endpoint, v any) error {
	body, err := c.Get(ctx, ep)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		c.logger.Error().
			Str("endpoint", ep.Path()).
			Err(err).
			Msg("Failed to decode response")
		return &APIError{Endpoint: ep.Path(), Class: ErrorClassDecode, Attempts: 1, Err: err}
	}
	return nil
}

// GetPayload performs Get and decodes into an untyped payload, the input
// form the tabular normalizer consumes.
func (c *Client) GetPayload(ctx context.Context, ep api.Endpoint) (any, error) {
	var payload any
	if err := c.GetJSON(ctx, ep, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Fetch performs Get and decodes the body into a value of type T.
func Fetch[T any](ctx context.Context, c *Client, ep api.Endpoint) (T, error) {
	var out T
	if err := c.GetJSON(ctx, ep, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
