package chatapi

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"
)

func TestRateTracker_ObservesExhaustedWindowOnly(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker := newRateTracker()
	tracker.now = func() time.Time { return now }

	header := http.Header{}
	header.Set("X-RateLimit-Remaining", "3")
	header.Set("X-RateLimit-Reset", "2")
	tracker.observe("/users/1/messages", header)
	if len(tracker.nextAllowed) != 0 {
		t.Fatal("window with remaining quota must not defer calls")
	}

	header.Set("X-RateLimit-Remaining", "0")
	tracker.observe("/users/1/messages", header)
	until, ok := tracker.nextAllowed["/users/1/messages"]
	if !ok {
		t.Fatal("exhausted window must be recorded")
	}
	if want := now.Add(2 * time.Second); !until.Equal(want) {
		t.Fatalf("expected window reopen at %v, got %v", want, until)
	}
}

func TestRateTracker_WaitClearsExpiredWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker := newRateTracker()
	tracker.now = func() time.Time { return now }
	tracker.nextAllowed["/users/1/messages"] = now.Add(-time.Second)

	if err := tracker.wait(context.Background(), "/users/1/messages"); err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if len(tracker.nextAllowed) != 0 {
		t.Fatal("expired window must be cleared")
	}
}

func TestRateTracker_WaitHonorsContext(t *testing.T) {
	t.Parallel()

	tracker := newRateTracker()
	tracker.nextAllowed["/users/1/messages"] = time.Now().Add(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := tracker.wait(ctx, "/users/1/messages"); err == nil {
		t.Fatal("expected context deadline error while waiting out the window")
	}
}

func TestParseReset_EpochAndDelta(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if got := parseReset("5", now); !got.Equal(now.Add(5 * time.Second)) {
		t.Fatalf("expected delta seconds from now, got %v", got)
	}

	epoch := strconv.FormatInt(now.Unix(), 10)
	if got := parseReset(epoch, now); !got.Equal(now) {
		t.Fatalf("expected epoch header to parse to %v, got %v", now, got)
	}

	if got := parseReset("", now); !got.IsZero() {
		t.Fatalf("expected zero time for empty header, got %v", got)
	}
	if got := parseReset("garbage", now); !got.IsZero() {
		t.Fatalf("expected zero time for malformed header, got %v", got)
	}
}
