package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/footylabs/clubledger/internal/config"
	"github.com/footylabs/clubledger/internal/platform/logging"
)

func TestInitLogShipper_SendsErrorLog(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	requestCount := 0
	var lastAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requestCount++
		lastAuth = r.Header.Get("Authorization")
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Config{
		LogShipEnabled:  true,
		LogShipEndpoint: server.URL,
		LogShipToken:    "secret-token",
		LogShipTimeout:  2 * time.Second,
		LogShipMinLevel: logging.LevelError,
		ServiceName:     "clubledger-bot",
		AppEnv:          config.EnvDev,
	}

	logger, shutdown, err := InitLogShipper(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("init log shipper: %v", err)
	}

	logger.ErrorContext(context.Background(), "delivery failed", "component", "chatapi")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown logger: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if requestCount == 0 {
		t.Fatalf("expected log sink to receive at least 1 request")
	}
	if lastAuth != "Bearer secret-token" {
		t.Fatalf("unexpected authorization header: %q", lastAuth)
	}
}

func TestInitLogShipper_RespectsMinLevel(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	requestCount := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		requestCount++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Config{
		LogShipEnabled:  true,
		LogShipEndpoint: server.URL,
		LogShipTimeout:  2 * time.Second,
		LogShipMinLevel: logging.LevelError,
		ServiceName:     "clubledger-bot",
		AppEnv:          config.EnvDev,
	}

	logger, shutdown, err := InitLogShipper(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("init log shipper: %v", err)
	}

	logger.InfoContext(context.Background(), "info log should not be shipped")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown logger: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if requestCount != 0 {
		t.Fatalf("expected no request for info log, got %d", requestCount)
	}
}

func TestInitLogShipper_DisabledReturnsBaseLogger(t *testing.T) {
	t.Parallel()

	base := logging.NewNop()
	logger, shutdown, err := InitLogShipper(config.Config{LogShipEnabled: false}, base)
	if err != nil {
		t.Fatalf("init log shipper: %v", err)
	}
	if logger != base {
		t.Fatal("expected the base logger back when shipping is disabled")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown no-op failed: %v", err)
	}
}
