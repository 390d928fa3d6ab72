package activities

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"rosterboard/internal/adapters/http/perf"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 4 << 20

// DefaultTimeout bounds a single call to the activities service.
const DefaultTimeout = 10 * time.Second

// HTTPClient talks to the activities service over HTTP+JSON.
type HTTPClient struct {
	baseURL   string
	http      *http.Client
	collector *perf.Collector
}

// Compile-time check that *HTTPClient satisfies Client.
var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the service rooted at baseURL.
// PRE: baseURL is an absolute http(s) URL; collector may be nil
// POST: Returns a ready-to-use client
func NewHTTPClient(baseURL string, timeout time.Duration, collector *perf.Collector) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: timeout},
		collector: collector,
	}
}

// FetchActivities retrieves the activity directory, bypassing intermediate caches.
// PRE: ctx is valid
// POST: Returns a JSON body, or an error wrapping ErrTransport
func (c *HTTPClient) FetchActivities(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/activities", nil)
	if err != nil {
		return nil, fmt.Errorf("build activities request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")

	body, status, err := c.do(req, "GET /activities")
	if err != nil {
		return nil, err
	}
	// An error status fails the load even with a JSON body; that body is not a roster.
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: GET /activities returned status %d", ErrTransport, status)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: GET /activities returned a non-JSON body", ErrTransport)
	}
	return body, nil
}

// Signup enrolls email in activity.
// PRE: activity and email are non-empty
// POST: Returns the service reply, or an error wrapping ErrTransport
func (c *HTTPClient) Signup(ctx context.Context, activity, email string) (Reply, error) {
	return c.mutate(ctx, activity, "signup", email)
}

// Unregister removes the participant identified by key from activity.
// PRE: activity and key are non-empty
// POST: Returns the service reply, or an error wrapping ErrTransport
func (c *HTTPClient) Unregister(ctx context.Context, activity, key string) (Reply, error) {
	return c.mutate(ctx, activity, "unregister", key)
}

// mutationURL builds /activities/{activity}/{action}?email={email} with both
// the path segment and the query value escaped.
func (c *HTTPClient) mutationURL(activity, action, email string) string {
	q := url.Values{"email": {email}}
	return c.baseURL + "/activities/" + url.PathEscape(activity) + "/" + action + "?" + q.Encode()
}

func (c *HTTPClient) mutate(ctx context.Context, activity, action, email string) (Reply, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.mutationURL(activity, action, email), nil)
	if err != nil {
		return Reply{}, fmt.Errorf("build %s request: %w", action, err)
	}
	req.Header.Set("Accept", "application/json")

	body, status, err := c.do(req, "POST "+action)
	if err != nil {
		return Reply{}, err
	}
	if !gjson.ValidBytes(body) {
		return Reply{}, fmt.Errorf("%w: %s returned a non-JSON body (status %d)", ErrTransport, action, status)
	}

	parsed := gjson.ParseBytes(body)
	return Reply{
		Status:  status,
		Message: parsed.Get("message").String(),
		Detail:  parsed.Get("detail").String(),
	}, nil
}

// do sends req, reads the body and records timing under op.
func (c *HTTPClient) do(req *http.Request, op string) ([]byte, int, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.record(op, 0, start)
		slog.Warn("upstream_event", "event", "request_failed", "op", op, "error", err)
		return nil, 0, fmt.Errorf("%w: %s: %v", ErrTransport, op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.record(op, resp.StatusCode, start)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read %s body: %v", ErrTransport, op, err)
	}
	return body, resp.StatusCode, nil
}

func (c *HTTPClient) record(op string, status int, start time.Time) {
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	slog.Debug("upstream_call", "op", op, "status", status, "duration_ms", durationMs)
	if c.collector != nil {
		c.collector.Record(perf.Entry{
			Kind:       perf.KindUpstream,
			Path:       op,
			StatusCode: status,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}
