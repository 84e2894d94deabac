// Package chatapi is the outbound client for the community chat platform.
// Every call goes through one pooled transport with a per-endpoint rate
// tracker, bounded retry and an optional circuit breaker.
package chatapi

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/footylabs/clubledger/internal/platform/logging"
	"github.com/footylabs/clubledger/internal/platform/resilience"
)

const (
	defaultTimeout        = 30 * time.Second
	defaultConnectTimeout = 10 * time.Second
	defaultMaxRetries     = 3
	defaultBackoffBase    = time.Second
	defaultBootstrapTries = 5
	maxBackoff            = 30 * time.Second
)

var (
	// ErrRecipientBlocked marks a recipient that rejects direct messages.
	// Callers skip these without retrying.
	ErrRecipientBlocked = stderrors.New("recipient blocks direct messages")

	// ErrUnavailable covers an open circuit or exhausted retries.
	ErrUnavailable = stderrors.New("chat platform unavailable")

	errChatTransient = crerr.New("chatapi transient failure")
)

type Config struct {
	HTTPClient       *http.Client
	BaseURL          string
	Token            string
	Timeout          time.Duration
	ConnectTimeout   time.Duration
	MaxRetries       int
	BackoffBase      time.Duration
	BootstrapRetries int
	Logger           *logging.Logger
	CircuitBreaker   resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient       *http.Client
	baseURL          string
	token            string
	maxRetries       int
	backoffBase      time.Duration
	bootstrapRetries int
	logger           *logging.Logger
	breaker          *resilience.CircuitBreaker
	circuitEnabled   bool
	flight           resilience.SingleFlight
	limits           *rateTracker
}

func NewClient(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// Outbound spans line up with the traced DB calls under one trace.
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: otelhttp.NewTransport(&http.Transport{
				MaxIdleConns:    100,
				MaxConnsPerHost: 30,
				IdleConnTimeout: 30 * time.Second,
				DialContext: (&net.Dialer{
					Timeout: connectTimeout,
				}).DialContext,
			}),
		}
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	backoffBase := cfg.BackoffBase
	if backoffBase <= 0 {
		backoffBase = defaultBackoffBase
	}
	bootstrapRetries := cfg.BootstrapRetries
	if bootstrapRetries <= 0 {
		bootstrapRetries = defaultBootstrapTries
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:       httpClient,
		baseURL:          strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:            strings.TrimSpace(cfg.Token),
		maxRetries:       maxRetries,
		backoffBase:      backoffBase,
		bootstrapRetries: bootstrapRetries,
		logger:           logger,
		breaker:          resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled:   breakerCfg.Enabled,
		limits:           newRateTracker(),
	}
}

// Connect establishes the long-lived delivery session. Bootstrap failures are
// retried with a growing delay; exhaustion means the process cannot deliver
// anything and the caller is expected to exit.
func (c *Client) Connect(ctx context.Context) error {
	var lastErr error
	for attempt := 0; attempt < c.bootstrapRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * 2 * time.Second
			if delay > maxBackoff {
				delay = maxBackoff
			}
			c.logger.WarnContext(ctx, "chat session bootstrap retry",
				"attempt", attempt+1,
				"delay", delay.String(),
				"error", lastErr,
			)
			if err := sleepCtx(ctx, delay); err != nil {
				return err
			}
		}

		var session sessionEnvelope
		if err := c.doJSON(ctx, http.MethodGet, "/gateway/session", nil, &session); err != nil {
			lastErr = err
			continue
		}

		c.logger.InfoContext(ctx, "chat session established", "session_id", session.SessionID)
		return nil
	}

	return fmt.Errorf("%w: bootstrap failed after %d attempts: %v", ErrUnavailable, c.bootstrapRetries, lastErr)
}

// GroupMembers returns the member ids of a notification group. Concurrent
// lookups for the same group share one request.
func (c *Client) GroupMembers(ctx context.Context, groupID int64) ([]int64, error) {
	if groupID <= 0 {
		return nil, fmt.Errorf("group id must be greater than zero")
	}

	path := fmt.Sprintf("/groups/%d/members", groupID)
	out, err, _ := c.flight.Do(path, func() (any, error) {
		var envelope groupMembersEnvelope
		if err := c.doJSON(ctx, http.MethodGet, path, nil, &envelope); err != nil {
			return nil, err
		}

		members := make([]int64, 0, len(envelope.Members))
		for _, member := range envelope.Members {
			if member.ID > 0 {
				members = append(members, member.ID)
			}
		}
		return members, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch group members group_id=%d: %w", groupID, err)
	}

	members, ok := out.([]int64)
	if !ok {
		return nil, fmt.Errorf("unexpected group members payload type %T", out)
	}

	return members, nil
}

// SendDirect delivers one direct message. A 403 from the platform means the
// recipient blocks DMs and maps to ErrRecipientBlocked.
func (c *Client) SendDirect(ctx context.Context, recipientID int64, content string) error {
	if recipientID <= 0 {
		return fmt.Errorf("recipient id must be greater than zero")
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("message content is required")
	}

	path := fmt.Sprintf("/users/%d/messages", recipientID)
	err := c.doJSON(ctx, http.MethodPost, path, directMessage{Content: content}, nil)
	if err != nil {
		var status *statusError
		if stderrors.As(err, &status) && status.code == http.StatusForbidden {
			return fmt.Errorf("recipient_id=%d: %w", recipientID, ErrRecipientBlocked)
		}
		return fmt.Errorf("send direct message recipient_id=%d: %w", recipientID, err)
	}

	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "chatapi circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: circuit open", ErrUnavailable)
		}
	}

	var payload []byte
	if body != nil {
		encoded, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request payload: %w", err)
		}
		payload = encoded
	}

	raw, reqErr := c.executeRequest(ctx, method, path, payload)
	if c.circuitEnabled {
		if reqErr != nil && stderrors.Is(reqErr, errChatTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if reqErr != nil {
		return reqErr
	}

	if target != nil && len(raw) > 0 {
		if err := sonic.Unmarshal(raw, target); err != nil {
			return fmt.Errorf("decode platform payload: %w", err)
		}
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	fullURL := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limits.wait(ctx, path); err != nil {
			return nil, err
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("authorization", "Bot "+c.token)
		if payload != nil {
			req.Header.Set("content-type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errChatTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
			_ = resp.Body.Close()
			c.limits.observe(path, resp.Header)

			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errChatTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusTooManyRequests:
				delay := retryAfter(resp.Header)
				if delay <= 0 {
					delay = c.backoff(attempt)
				}
				lastErr = fmt.Errorf("%w: rate limited status=429", errChatTransient)
				if attempt == c.maxRetries {
					break
				}
				if err := sleepCtx(ctx, delay); err != nil {
					return nil, err
				}
				continue
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: platform status=%d body=%s", errChatTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, &statusError{code: resp.StatusCode, body: abbreviateBody(raw)}
			}
		}

		if attempt == c.maxRetries {
			break
		}
		if err := sleepCtx(ctx, c.backoff(attempt)); err != nil {
			return nil, err
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("platform request failed")
	}
	c.logger.WarnContext(ctx, "chatapi request failed", "method", method, "path", path, "error", lastErr)
	return nil, lastErr
}

// backoff grows the base delay exponentially per attempt with jitter, capped.
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.backoffBase << uint(attempt)
	if delay > maxBackoff {
		delay = maxBackoff
	}
	return delay + time.Duration(rand.Int63n(int64(delay/2)+1))
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("platform status=%d body=%s", e.code, e.body)
}

type directMessage struct {
	Content string `json:"content"`
}

type sessionEnvelope struct {
	SessionID string `json:"session_id"`
}

type groupMembersEnvelope struct {
	Members []groupMember `json:"members"`
}

type groupMember struct {
	ID int64 `json:"id"`
}

func isRetryableStatus(code int) bool {
	return code == http.StatusRequestTimeout || code >= http.StatusInternalServerError
}

func retryAfter(header http.Header) time.Duration {
	value := strings.TrimSpace(header.Get("Retry-After"))
	if value == "" {
		return 0
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

func sleepCtx(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" || token == "" {
		return value
	}
	return strings.ReplaceAll(value, token, "REDACTED")
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
