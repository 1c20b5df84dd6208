package ratelimit

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard).Level(zerolog.Disabled)
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"seconds", "30", 30 * time.Second},
		{"zero seconds", "0", 0},
		{"negative seconds", "-5", 0},
		{"empty", "", 0},
		{"garbage", "soon", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseRetryAfter(tt.value); got != tt.want {
				t.Errorf("ParseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseRetryAfter_HTTPDate(t *testing.T) {
	value := time.Now().Add(45 * time.Second).UTC().Format(http.TimeFormat)

	got := ParseRetryAfter(value)
	if got < 40*time.Second || got > 46*time.Second {
		t.Errorf("ParseRetryAfter(date) = %v, want roughly 45s", got)
	}
}

func TestParseRetryAfter_PastHTTPDate(t *testing.T) {
	value := time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat)

	if got := ParseRetryAfter(value); got != 0 {
		t.Errorf("ParseRetryAfter(past date) = %v, want 0", got)
	}
}

func TestTracker_ObserveRateLimit(t *testing.T) {
	tracker := NewTracker(nil, testLogger())
	ctx := context.Background()

	headers := http.Header{}
	headers.Set("Retry-After", "10")

	cooldown := tracker.ObserveRateLimit(ctx, headers)
	if cooldown != 10*time.Second {
		t.Errorf("ObserveRateLimit() = %v, want 10s", cooldown)
	}

	remaining := tracker.CooldownRemaining(ctx)
	if remaining <= 9*time.Second || remaining > 10*time.Second {
		t.Errorf("CooldownRemaining() = %v, want roughly 10s", remaining)
	}

	state := tracker.State()
	if state.LastHit.IsZero() {
		t.Error("LastHit not recorded")
	}
}

func TestTracker_ObserveRateLimit_DefaultCooldown(t *testing.T) {
	tracker := NewTracker(nil, testLogger())

	cooldown := tracker.ObserveRateLimit(context.Background(), http.Header{})
	if cooldown != DefaultCooldown {
		t.Errorf("ObserveRateLimit() without header = %v, want %v", cooldown, DefaultCooldown)
	}
}

func TestTracker_ObserveRateLimit_ExplicitZero(t *testing.T) {
	tracker := NewTracker(nil, testLogger())
	ctx := context.Background()

	headers := http.Header{}
	headers.Set("Retry-After", "0")

	// An explicit zero hint records the hit but opens no window.
	if cooldown := tracker.ObserveRateLimit(ctx, headers); cooldown != 0 {
		t.Errorf("ObserveRateLimit() = %v, want 0 for explicit zero hint", cooldown)
	}
	if got := tracker.CooldownRemaining(ctx); got != 0 {
		t.Errorf("CooldownRemaining() = %v, want 0", got)
	}
	if tracker.State().LastHit.IsZero() {
		t.Error("LastHit not recorded for zero hint")
	}
}

func TestTracker_ObserveRateLimit_KeepsLongerWindow(t *testing.T) {
	tracker := NewTracker(nil, testLogger())
	ctx := context.Background()

	long := http.Header{}
	long.Set("Retry-After", "30")
	tracker.ObserveRateLimit(ctx, long)

	// A shorter hint arriving later must not shrink the active window.
	short := http.Header{}
	short.Set("Retry-After", "1")
	tracker.ObserveRateLimit(ctx, short)

	remaining := tracker.CooldownRemaining(ctx)
	if remaining < 25*time.Second {
		t.Errorf("CooldownRemaining() = %v, want the longer window to survive", remaining)
	}
}

func TestTracker_CooldownRemaining_NoHits(t *testing.T) {
	tracker := NewTracker(nil, testLogger())

	if got := tracker.CooldownRemaining(context.Background()); got != 0 {
		t.Errorf("CooldownRemaining() = %v, want 0 before any 429", got)
	}
}
