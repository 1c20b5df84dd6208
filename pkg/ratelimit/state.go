// Package ratelimit tracks stats API throttling. The API signals
// throttling with HTTP 429 and an optional Retry-After header; the
// tracker records the resulting cooldown window so every worker in the
// process (and, with Redis, every process sharing the state) backs off
// together instead of each discovering the 429 on its own.
package ratelimit

import (
	"time"
)

// Redis keys for shared cooldown state.
const (
	RedisKeyCooldownUntil = "nbastats:rate_limit:cooldown_until"
	RedisKeyLastHit       = "nbastats:rate_limit:last_hit"
)

// DefaultCooldown is applied when a 429 arrives without a usable
// Retry-After header.
const DefaultCooldown = 5 * time.Second

// State is the current throttling state.
type State struct {
	// CooldownUntil is the instant the server asked us to stay quiet
	// until. Zero when no cooldown is active.
	CooldownUntil time.Time `json:"cooldown_until"`

	// LastHit is when the most recent 429 was observed.
	LastHit time.Time `json:"last_hit"`
}

// InCooldown reports whether a server-requested cooldown is still
// running.
func (s *State) InCooldown() bool {
	return time.Now().Before(s.CooldownUntil)
}

// Remaining returns the time left in the cooldown window, or 0 when the
// window has passed.
func (s *State) Remaining() time.Duration {
	d := time.Until(s.CooldownUntil)
	if d < 0 {
		return 0
	}
	return d
}
