package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit tracking.
var (
	rateLimitHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nbastats_rate_limit_hits_total",
		Help: "Total number of HTTP 429 responses observed",
	})

	rateLimitCooldownSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nbastats_rate_limit_cooldown_seconds",
		Help: "Length of the most recent server-requested cooldown window",
	})
)

// Tracker records 429 cooldown windows. With a Redis client the window is
// shared across processes; without one it is kept in process memory. Both
// modes are safe for concurrent use.
type Tracker struct {
	redis  *redis.Client // nil for in-process tracking
	logger zerolog.Logger

	mu    sync.Mutex
	local State
}

// NewTracker creates a tracker. redisClient may be nil.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		logger: logger,
	}
}

// ObserveRateLimit records a 429 response and returns the cooldown the
// server asked for (DefaultCooldown when no usable Retry-After header is
// present). The returned duration is a floor for the caller's backoff,
// never a license to retry sooner than its own schedule.
func (t *Tracker) ObserveRateLimit(ctx context.Context, headers http.Header) time.Duration {
	value := headers.Get("Retry-After")
	cooldown := ParseRetryAfter(value)
	if value == "" {
		// No hint at all: assume a short window rather than hammering on.
		cooldown = DefaultCooldown
	}
	if cooldown <= 0 {
		t.mu.Lock()
		t.local.LastHit = time.Now()
		t.mu.Unlock()
		rateLimitHitsTotal.Inc()
		return 0
	}

	now := time.Now()
	until := now.Add(cooldown)

	t.mu.Lock()
	t.local.LastHit = now
	if until.After(t.local.CooldownUntil) {
		t.local.CooldownUntil = until
	}
	t.mu.Unlock()

	rateLimitHitsTotal.Inc()
	rateLimitCooldownSeconds.Set(cooldown.Seconds())

	if t.redis != nil {
		// Millisecond precision keeps the shared window aligned with the
		// local one; whole seconds would shave up to 1s off the readback.
		pipe := t.redis.Pipeline()
		pipe.Set(ctx, RedisKeyCooldownUntil, until.UnixMilli(), cooldown)
		pipe.Set(ctx, RedisKeyLastHit, now.UnixMilli(), 0)
		if _, err := pipe.Exec(ctx); err != nil {
			t.logger.Warn().Err(err).Msg("Failed to share rate limit cooldown via Redis")
		}
	}

	t.logger.Warn().
		Dur("cooldown", cooldown).
		Time("until", until).
		Msg("Rate limit hit - cooldown recorded")

	return cooldown
}

// CooldownRemaining returns the time left in the active cooldown window,
// or 0 when none is active. The Redis-shared window wins when it is
// longer than the local one, so a 429 seen by a sibling process still
// slows this one down.
func (t *Tracker) CooldownRemaining(ctx context.Context) time.Duration {
	t.mu.Lock()
	remaining := t.local.Remaining()
	t.mu.Unlock()

	if t.redis == nil {
		return remaining
	}

	untilMilli, err := t.redis.Get(ctx, RedisKeyCooldownUntil).Int64()
	if err != nil {
		if err != redis.Nil {
			t.logger.Warn().Err(err).Msg("Failed to read shared cooldown from Redis")
		}
		return remaining
	}

	shared := time.Until(time.UnixMilli(untilMilli))
	if shared > remaining {
		return shared
	}
	return remaining
}

// State returns a snapshot of the local throttling state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.local
}

// ParseRetryAfter parses a Retry-After header value, which is either a
// delay in seconds or an HTTP date. Returns 0 when the value is empty or
// unparseable.
func ParseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		d := time.Until(at)
		if d < 0 {
			return 0
		}
		return d
	}
	return 0
}
