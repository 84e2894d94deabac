package observability

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/footylabs/clubledger/internal/config"
	"github.com/footylabs/clubledger/internal/platform/logging"
)

// InitLogShipper tees the process logger to stdout and an optional HTTP log
// sink. Shipping runs on a background queue so logging never blocks on the
// network.
func InitLogShipper(cfg config.Config, baseLogger *logging.Logger) (*logging.Logger, func(context.Context) error, error) {
	if baseLogger == nil {
		baseLogger = logging.NewJSON(cfg.LogLevel)
	}

	if !cfg.LogShipEnabled {
		baseLogger.Info("log shipper disabled", "reason", "LOGSHIP_ENABLED=false")
		return baseLogger, func(context.Context) error { return nil }, nil
	}

	endpoint := normalizeLogShipEndpoint(cfg.LogShipEndpoint)
	if endpoint == "" {
		return nil, nil, fmt.Errorf("log shipper endpoint cannot be empty")
	}

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	stdoutCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(os.Stdout),
		cfg.LogLevel,
	)

	syncer := newLogShipSyncer(endpoint, strings.TrimSpace(cfg.LogShipToken), cfg.LogShipTimeout)

	shipCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(syncer),
		cfg.LogShipMinLevel,
	)

	zapLogger := zap.New(
		zapcore.NewTee(stdoutCore, shipCore),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)

	logger := logging.FromZap(zapLogger)
	logger.Info("log shipper enabled",
		"endpoint", endpoint,
		"min_level", cfg.LogShipMinLevel.String(),
		"service_name", cfg.ServiceName,
	)

	return logger, func(ctx context.Context) error {
		drainCtx := ctx
		if drainCtx == nil {
			drainCtx = context.Background()
		}
		if _, hasDeadline := drainCtx.Deadline(); !hasDeadline {
			withTimeout, cancel := context.WithTimeout(drainCtx, 5*time.Second)
			defer cancel()
			drainCtx = withTimeout
		}
		if err := syncer.Close(drainCtx); err != nil {
			return fmt.Errorf("drain log ship queue: %w", err)
		}
		if err := logger.Sync(); err != nil && !isIgnorableLoggerSyncError(err) {
			return err
		}
		return nil
	}, nil
}

func normalizeLogShipEndpoint(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}
	return "https://" + value
}

type logShipSyncer struct {
	endpoint  string
	token     string
	timeout   time.Duration
	client    *fasthttp.Client
	queue     chan *bytebufferpool.ByteBuffer
	queueMu   sync.RWMutex
	closeOnce sync.Once
	closed    atomic.Bool
	wg        sync.WaitGroup
	dropped   atomic.Uint64
}

func newLogShipSyncer(endpoint, token string, timeout time.Duration) *logShipSyncer {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	s := &logShipSyncer{
		endpoint: endpoint,
		token:    token,
		timeout:  timeout,
		client: &fasthttp.Client{
			MaxConnsPerHost: 8,
			ReadTimeout:     timeout,
			WriteTimeout:    timeout,
		},
		queue: make(chan *bytebufferpool.ByteBuffer, 1024),
	}
	s.wg.Add(1)
	go s.run()

	return s
}

func (s *logShipSyncer) Write(p []byte) (int, error) {
	payload := strings.TrimSpace(string(p))
	if payload == "" {
		return len(p), nil
	}

	s.queueMu.RLock()
	defer s.queueMu.RUnlock()
	if s.closed.Load() {
		return len(p), nil
	}

	// Copy into a pooled buffer because zap reuses internal buffers after
	// Write returns.
	buf := bytebufferpool.Get()
	buf.SetString(payload)

	select {
	case s.queue <- buf:
	default:
		bytebufferpool.Put(buf)
		dropped := s.dropped.Add(1)
		if dropped == 1 || dropped%100 == 0 {
			fmt.Fprintf(os.Stderr, "log ship queue full; dropped logs=%d\n", dropped)
		}
	}

	return len(p), nil
}

func (s *logShipSyncer) run() {
	defer s.wg.Done()

	for buf := range s.queue {
		s.send(buf.B)
		bytebufferpool.Put(buf)
	}
}

func (s *logShipSyncer) send(payload []byte) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	req.SetBody(payload)

	if err := s.client.DoTimeout(req, resp, s.timeout); err != nil {
		fmt.Fprintf(os.Stderr, "log ship send failed: %v\n", err)
		return
	}
	if resp.StatusCode() >= fasthttp.StatusMultipleChoices {
		fmt.Fprintf(os.Stderr, "log ship send got non-2xx status=%d\n", resp.StatusCode())
	}
}

func (s *logShipSyncer) Close(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.closeOnce.Do(func() {
		s.queueMu.Lock()
		s.closed.Store(true)
		close(s.queue)
		s.queueMu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *logShipSyncer) Sync() error {
	return nil
}

func isIgnorableLoggerSyncError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "bad file descriptor") || strings.Contains(msg, "invalid argument")
}
