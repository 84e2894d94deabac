package chatapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/footylabs/clubledger/internal/platform/logging"
	"github.com/footylabs/clubledger/internal/platform/resilience"
)

func newTestClient(srv *httptest.Server, maxRetries int) *Client {
	return NewClient(Config{
		HTTPClient:     srv.Client(),
		BaseURL:        srv.URL,
		Token:          "test-token",
		MaxRetries:     maxRetries,
		BackoffBase:    time.Millisecond,
		Logger:         logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: false},
	})
}

func TestNewClient_DefaultTransportIsTraced(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{
		BaseURL: "https://chat.example.com",
		Token:   "test-token",
		Logger:  logging.NewNop(),
	})

	if _, ok := client.httpClient.Transport.(*otelhttp.Transport); !ok {
		t.Fatalf("expected otelhttp transport, got %T", client.httpClient.Transport)
	}
}

func TestClientSendDirect_PostsMessageWithAuth(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/users/42/messages" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("authorization"); got != "Bot test-token" {
			t.Fatalf("unexpected authorization header: %s", got)
		}

		var req map[string]string
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		if req["content"] != "kickoff soon" {
			t.Fatalf("unexpected content: %s", req["content"])
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(srv, 1)
	if err := client.SendDirect(context.Background(), 42, "kickoff soon"); err != nil {
		t.Fatalf("send direct failed: %v", err)
	}
}

func TestClientSendDirect_ForbiddenMapsToRecipientBlocked(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := newTestClient(srv, 3)
	err := client.SendDirect(context.Background(), 42, "kickoff soon")
	if !errors.Is(err, ErrRecipientBlocked) {
		t.Fatalf("expected ErrRecipientBlocked, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("403 must not be retried, got %d calls", got)
	}
}

func TestClientSendDirect_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(srv, 3)
	if err := client.SendDirect(context.Background(), 42, "kickoff soon"); err != nil {
		t.Fatalf("expected retries to recover, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 calls, got %d", got)
	}
}

func TestClientSendDirect_ExhaustedRetriesSurfaceError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(srv, 2)
	err := client.SendDirect(context.Background(), 42, "kickoff soon")
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if errors.Is(err, ErrRecipientBlocked) {
		t.Fatalf("5xx must not map to blocked recipient: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected initial call plus 2 retries, got %d", got)
	}
}

func TestClientSendDirect_HonorsRetryAfterOn429(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	var firstRetryAt atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0.05")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		firstRetryAt.Store(time.Now().UnixNano())
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(srv, 2)
	start := time.Now()
	if err := client.SendDirect(context.Background(), 42, "kickoff soon"); err != nil {
		t.Fatalf("send direct failed: %v", err)
	}
	if elapsed := time.Duration(firstRetryAt.Load() - start.UnixNano()); elapsed < 50*time.Millisecond {
		t.Fatalf("expected retry delayed by Retry-After, waited only %v", elapsed)
	}
}

func TestClientGroupMembers_ParsesAndFiltersIDs(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/groups/7/members" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"members":[{"id":101},{"id":0},{"id":102}]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, 1)
	members, err := client.GroupMembers(context.Background(), 7)
	if err != nil {
		t.Fatalf("group members failed: %v", err)
	}
	if len(members) != 2 || members[0] != 101 || members[1] != 102 {
		t.Fatalf("unexpected members: %v", members)
	}
}

func TestClientConnect_RecoversFromTransientGateway(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gateway/session" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"session_id":"sess-1"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, 0)
	client.bootstrapRetries = 3

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
}

func TestClientConnect_ExhaustionIsUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(srv, 0)
	client.bootstrapRetries = 1

	err := client.Connect(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestClientDoJSON_OpenCircuitShortCircuits(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(Config{
		HTTPClient:  srv.Client(),
		BaseURL:     srv.URL,
		Token:       "test-token",
		MaxRetries:  1,
		BackoffBase: time.Millisecond,
		Logger:      logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	if err := client.SendDirect(context.Background(), 42, "kickoff soon"); err == nil {
		t.Fatal("expected first send to fail")
	}
	before := calls.Load()

	err := client.SendDirect(context.Background(), 42, "kickoff soon")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable from open circuit, got %v", err)
	}
	if calls.Load() != before {
		t.Fatal("open circuit must not hit the network")
	}
}
