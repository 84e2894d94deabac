package chatapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// rateTracker remembers, per endpoint path, when the platform allows the next
// request. It is fed from X-RateLimit-Remaining / X-RateLimit-Reset response
// headers so the client waits out exhausted windows instead of burning a 429.
type rateTracker struct {
	mu          sync.Mutex
	nextAllowed map[string]time.Time
	now         func() time.Time
}

func newRateTracker() *rateTracker {
	return &rateTracker{
		nextAllowed: make(map[string]time.Time),
		now:         time.Now,
	}
}

// wait blocks until the endpoint's window reopens, bounded by ctx.
func (t *rateTracker) wait(ctx context.Context, path string) error {
	t.mu.Lock()
	until, ok := t.nextAllowed[path]
	t.mu.Unlock()
	if !ok {
		return nil
	}

	delay := until.Sub(t.now())
	if delay <= 0 {
		t.mu.Lock()
		delete(t.nextAllowed, path)
		t.mu.Unlock()
		return nil
	}

	return sleepCtx(ctx, delay)
}

// observe records the endpoint's window from response headers. Only an
// exhausted window (remaining == 0) defers the next call.
func (t *rateTracker) observe(path string, header http.Header) {
	remaining := strings.TrimSpace(header.Get("X-RateLimit-Remaining"))
	if remaining == "" || remaining != "0" {
		return
	}

	reset := parseReset(header.Get("X-RateLimit-Reset"), t.now())
	if reset.IsZero() {
		return
	}

	t.mu.Lock()
	t.nextAllowed[path] = reset
	t.mu.Unlock()
}

// parseReset accepts either an epoch timestamp or a seconds-from-now delta,
// both of which appear in the wild.
func parseReset(value string, now time.Time) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || seconds <= 0 {
		return time.Time{}
	}

	if seconds > 1e6 {
		return time.Unix(0, int64(seconds*float64(time.Second)))
	}
	return now.Add(time.Duration(seconds * float64(time.Second)))
}
