package discourse

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"golang.org/x/time/rate"

	"github.com/notblackorwhite/vc-auto-poster/internal/domain"
	apperrors "github.com/notblackorwhite/vc-auto-poster/internal/errors"
)

const (
	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 4 << 20
	maxErrorSnippet  = 256

	breakerFailures = 5
	breakerDelay    = time.Minute
)

// Observer receives per-request telemetry. result is "" on success and the
// error category otherwise.
type Observer interface {
	ForumRequest(endpoint, result string, took time.Duration)
	BreakerStateChanged(state string)
}

type Options struct {
	Timeout time.Duration
	// RequestsPerSecond caps outgoing requests. Zero means unlimited.
	RequestsPerSecond float64
	UserAgent         string
	Observer          Observer
	// HTTPClient overrides the default client, mostly for tests.
	HTTPClient *http.Client
}

// Client is a Discourse API client authenticated with an API key.
type Client struct {
	baseURL   *url.URL
	endpoint  domain.Endpoint
	http      *http.Client
	limiter   *rate.Limiter
	breaker   circuitbreaker.CircuitBreaker[any]
	observer  Observer
	userAgent string
}

var _ domain.Forum = (*Client)(nil)

// New creates a client for endpoint. The URL must be absolute http(s).
func New(endpoint domain.Endpoint, opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(endpoint.URL, "/"))
	if err != nil {
		return nil, apperrors.ConfigError("invalid forum url", err).WithContext("url", endpoint.URL)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, apperrors.ConfigError("forum url must be absolute http(s)", nil).WithContext("url", endpoint.URL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	c := &Client{
		baseURL:   base,
		endpoint:  endpoint,
		http:      httpClient,
		limiter:   rate.NewLimiter(limit, 1),
		observer:  observer,
		userAgent: opts.UserAgent,
	}
	c.breaker = circuitbreaker.Builder[any]().
		WithFailureThreshold(breakerFailures).
		WithDelay(breakerDelay).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "discourse",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			c.observer.BreakerStateChanged(e.NewState.String())
		}).
		Build()

	return c, nil
}

// do sends one request and returns the response body of a 2xx reply.
// Failures are classified: 429 is rate limited, 5xx and network errors are
// transport errors, any other status is a rejection.
func (c *Client) do(ctx context.Context, name, method, path string, body []byte) ([]byte, error) {
	start := time.Now()
	data, err := c.send(ctx, method, path, body)
	c.observer.ForumRequest(name, string(apperrors.TypeOf(err)), time.Since(start))
	return data, err
}

func (c *Client) send(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperrors.TransportError("rate limiter wait", err)
	}

	if !c.breaker.TryAcquirePermit() {
		return nil, apperrors.TransportError("forum circuit open", circuitbreaker.ErrOpen)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		c.breaker.RecordSuccess()
		return nil, apperrors.InternalError("failed to create request", err)
	}
	req.Header.Set("Api-Key", c.endpoint.APIKey)
	req.Header.Set("Api-Username", c.endpoint.APIUsername)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.breaker.RecordError(err)
		return nil, apperrors.TransportError("request failed", err).WithContext("path", path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.breaker.RecordError(err)
		return nil, apperrors.TransportError("failed to read response", err).WithContext("path", path)
	}

	if err := statusError(resp.StatusCode, data); err != nil {
		if apperrors.IsTransient(err) {
			c.breaker.RecordError(err)
		} else {
			c.breaker.RecordSuccess()
		}
		return nil, err.WithContext("path", path).WithContext("status", resp.StatusCode)
	}

	c.breaker.RecordSuccess()
	return data, nil
}

func statusError(status int, body []byte) *apperrors.Error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests:
		return apperrors.RateLimitedError("forum rate limit reached")
	case status >= 500:
		return apperrors.TransportError(fmt.Sprintf("forum returned status %d", status), nil)
	default:
		return apperrors.RejectedError(fmt.Sprintf("forum returned status %d: %s", status, snippet(body)))
	}
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorSnippet {
		return s[:maxErrorSnippet] + "..."
	}
	return s
}

type nopObserver struct{}

func (nopObserver) ForumRequest(string, string, time.Duration) {}
func (nopObserver) BreakerStateChanged(string)                 {}
