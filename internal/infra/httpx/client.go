// Package httpx is the outbound HTTP client used for every upstream provider.
//
// Each call gets a per-attempt timeout and bounded exponential backoff for
// transient failures. Calls can optionally be paced with a token bucket and
// guarded by a circuit breaker.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/Jayesh25-trade/CineVibe/pkg/metrics"
)

// Config tunes one upstream client.
type Config struct {
	// Name labels logs and metrics, e.g. "tmdb" or "openai".
	Name      string
	Timeout   time.Duration
	Attempts  uint
	BaseDelay time.Duration
	MaxJitter time.Duration
	// RequestsPerSecond paces outbound calls when positive.
	RequestsPerSecond float64
	Burst             int
	Breaker           BreakerConfig
}

// BreakerConfig controls the optional circuit breaker.
type BreakerConfig struct {
	Enabled     bool
	Failures    uint32
	OpenTimeout time.Duration
}

// DefaultConfig mirrors the production retry policy: 4 attempts, 300ms base
// delay doubling per retry, up to 100ms of jitter.
func DefaultConfig(name string, timeout time.Duration) Config {
	return Config{
		Name:      name,
		Timeout:   timeout,
		Attempts:  4,
		BaseDelay: 300 * time.Millisecond,
		MaxJitter: 100 * time.Millisecond,
	}
}

// Request describes one logical call. Body is sent verbatim on every attempt.
type Request struct {
	Method string
	URL    string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Client executes requests with timeout, retry and pooling.
type Client struct {
	cfg     Config
	http    *http.Client
	pacer   *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
	timer   retry.Timer
	logger  *slog.Logger
}

// New builds a client over transport. A nil transport gets a private pool.
func New(cfg Config, transport http.RoundTripper, logger *slog.Logger) *Client {
	if cfg.Name == "" {
		cfg.Name = "upstream"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 1
	}
	if transport == nil {
		transport = NewTransport(false)
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Transport: transport},
		logger: logger.With("component", "httpx."+cfg.Name),
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.pacer = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	if cfg.Breaker.Enabled {
		c.breaker = newBreaker(cfg, c.logger)
	}
	return c
}

func newBreaker(cfg Config, logger *slog.Logger) *gobreaker.CircuitBreaker[[]byte] {
	failures := cfg.Breaker.Failures
	if failures == 0 {
		failures = 5
	}
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.Breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// client errors say nothing about upstream health
		IsSuccessful: func(err error) bool {
			return err == nil || !IsRetryable(err)
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "upstream", name, "from", from.String(), "to", to.String())
		},
	})
}

// Get issues a GET with query parameters.
func (c *Client) Get(ctx context.Context, rawURL string, query url.Values, header http.Header) ([]byte, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, URL: rawURL, Query: query, Header: header})
}

// PostJSON encodes payload and POSTs it.
func (c *Client) PostJSON(ctx context.Context, rawURL string, payload any, header http.Header) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", c.cfg.Name, err)
	}
	h := header.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set("Content-Type", "application/json")
	return c.Do(ctx, Request{Method: http.MethodPost, URL: rawURL, Header: h, Body: body})
}

// Do runs req, retrying transient failures, and returns the response body.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	start := time.Now()
	body, err := c.execute(ctx, req)
	metrics.UpstreamDuration.WithLabelValues(c.cfg.Name).Observe(time.Since(start).Seconds())
	switch {
	case err == nil:
		metrics.UpstreamRequests.WithLabelValues(c.cfg.Name, "ok").Inc()
	case errors.Is(err, ErrCircuitOpen):
		metrics.UpstreamRequests.WithLabelValues(c.cfg.Name, "open").Inc()
	default:
		metrics.UpstreamRequests.WithLabelValues(c.cfg.Name, "error").Inc()
	}
	return body, err
}

func (c *Client) execute(ctx context.Context, req Request) ([]byte, error) {
	if c.breaker == nil {
		return c.withRetry(ctx, req)
	}
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.withRetry(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s: %v", ErrCircuitOpen, c.cfg.Name, err)
	}
	return body, err
}

func (c *Client) withRetry(ctx context.Context, req Request) ([]byte, error) {
	var attempt uint
	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(c.cfg.Attempts),
		retry.DelayType(c.backoff),
		retry.RetryIf(IsRetryable),
		retry.LastErrorOnly(true),
	}
	if c.timer != nil {
		opts = append(opts, retry.WithTimer(c.timer))
	}
	return retry.DoWithData(func() ([]byte, error) {
		attempt++
		if attempt > 1 {
			metrics.UpstreamRetries.WithLabelValues(c.cfg.Name).Inc()
		}
		body, err := c.attempt(ctx, req)
		if err != nil && IsRetryable(err) && attempt < c.cfg.Attempts {
			c.logger.Warn("upstream attempt failed, retrying", "attempt", attempt, "method", req.Method, "url", redact(req.URL), "error", err)
		}
		return body, err
	}, opts...)
}

// backoff waits BaseDelay*2^(n-1) plus up to MaxJitter before retry n.
func (c *Client) backoff(n uint, _ error, _ *retry.Config) time.Duration {
	if n == 0 {
		n = 1
	}
	d := c.cfg.BaseDelay << (n - 1)
	if c.cfg.MaxJitter > 0 {
		d += randomJitter(c.cfg.MaxJitter)
	}
	return d
}

func randomJitter(limit time.Duration) time.Duration {
	return time.Duration(rand.Int64N(int64(limit)))
}

func (c *Client) attempt(ctx context.Context, req Request) ([]byte, error) {
	if c.pacer != nil {
		if err := c.pacer.Wait(ctx); err != nil {
			return nil, err
		}
	}
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := c.newRequest(attemptCtx, req)
	if err != nil {
		return nil, err
	}
	safeURL := redact(req.URL)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, c.classify(ctx, attemptCtx, req.Method, safeURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Method: req.Method, URL: safeURL, StatusCode: resp.StatusCode, Body: string(payload)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.classify(ctx, attemptCtx, req.Method, safeURL, err)
	}
	return body, nil
}

func (c *Client) classify(parent, attemptCtx context.Context, method, safeURL string, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s %s after %s", ErrTimeout, method, safeURL, c.cfg.Timeout)
	}
	return &NetworkError{Method: method, URL: safeURL, Err: err}
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("parse %s url: %w", c.cfg.Name, err)
	}
	if len(req.Query) > 0 {
		q := u.Query()
		for k, vs := range req.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", c.cfg.Name, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
	return httpReq, nil
}

// redact drops the query string so credentials passed as parameters never
// reach logs or error messages.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	u.User = nil
	return u.String()
}
