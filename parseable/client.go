// Package parseable is an HTTP client for Parseable-compatible
// log-analytics servers. It owns connection, TLS and auth concerns and
// exposes one method per server operation. It performs no caching and
// no retries; see the repository package for the caching layer.
package parseable

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultTimeout = 30 * time.Second

// Client talks to one server at a time. Configure may be called again
// at any point to retarget it; operations invoked before the first
// successful Configure fail with ErrNotConfigured.
type Client struct {
	mu         sync.RWMutex
	resty      *resty.Client
	configured bool

	logger zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger used for per-request debug logging.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient returns an unconfigured client.
func NewClient(opts ...Option) *Client {
	c := &Client{logger: zerolog.Nop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Configure points the client at a server. A failed validation leaves
// the client unconfigured; subsequent calls return ErrNotConfigured.
func (c *Client) Configure(cfg ServerConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := cfg.Validate(); err != nil {
		c.resty = nil
		c.configured = false
		return fmt.Errorf("invalid server config: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	r := resty.New()
	r.SetBaseURL(strings.TrimRight(cfg.URL, "/"))
	r.SetBasicAuth(cfg.Username, cfg.Password)
	r.SetTimeout(timeout)
	r.SetHeader("Accept", "application/json")
	if cfg.SkipTLSVerify {
		r.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	logger := c.logger
	r.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader("X-Request-Id", uuid.NewString())
		return nil
	})
	r.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug().
			Str("method", resp.Request.Method).
			Str("url", resp.Request.URL).
			Int("status", resp.StatusCode()).
			Dur("duration", resp.Time()).
			Msg("http request")
		return nil
	})

	c.resty = r
	c.configured = true
	return nil
}

// IsConfigured reports whether Configure has succeeded.
func (c *Client) IsConfigured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.configured
}

// RestyClient exposes the underlying resty client, nil when
// unconfigured. Used by tests to attach transport mocks.
func (c *Client) RestyClient() *resty.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resty
}

func (c *Client) client() (*resty.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.configured || c.resty == nil {
		return nil, ErrNotConfigured
	}
	return c.resty, nil
}

// do issues a request and decodes a 2xx JSON body into out (skipped
// when out is nil). All failures come back as *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	r, err := c.client()
	if err != nil {
		return err
	}

	req := r.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json")
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return networkErr(err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return statusErr(resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return malformedErr(err)
	}
	return nil
}

// text issues a request and returns the raw body of a 2xx response.
func (c *Client) text(ctx context.Context, method, path string) (string, error) {
	r, err := c.client()
	if err != nil {
		return "", err
	}

	resp, err := r.R().SetContext(ctx).Execute(method, path)
	if err != nil {
		return "", networkErr(err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return "", statusErr(resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return strings.TrimSpace(resp.String()), nil
}

// Ping checks server liveness and returns its confirmation text.
func (c *Client) Ping(ctx context.Context) (string, error) {
	return c.text(ctx, http.MethodGet, "/api/v1/liveness")
}

// ListStreams returns every stream on the server.
func (c *Client) ListStreams(ctx context.Context) ([]StreamDescriptor, error) {
	var out []StreamDescriptor
	if err := c.do(ctx, http.MethodGet, "/api/v1/logstream", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSchema returns the column schema of one stream.
func (c *Client) GetSchema(ctx context.Context, stream string) (*Schema, error) {
	var out Schema
	if err := c.do(ctx, http.MethodGet, streamPath(stream, "schema"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetStats returns ingestion and storage statistics of one stream.
func (c *Client) GetStats(ctx context.Context, stream string) (*StreamStats, error) {
	var out StreamStats
	if err := c.do(ctx, http.MethodGet, streamPath(stream, "stats"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAbout returns the server's self-description.
func (c *Client) GetAbout(ctx context.Context) (*AboutInfo, error) {
	var out AboutInfo
	if err := c.do(ctx, http.MethodGet, "/api/v1/about", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetStreamInfo returns per-stream metadata.
func (c *Client) GetStreamInfo(ctx context.Context, stream string) (*StreamInfo, error) {
	var out StreamInfo
	if err := c.do(ctx, http.MethodGet, streamPath(stream, "info"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRetention returns the retention rules configured for one stream.
func (c *Client) GetRetention(ctx context.Context, stream string) ([]RetentionRule, error) {
	var out []RetentionRule
	if err := c.do(ctx, http.MethodGet, streamPath(stream, "retention"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type queryRequest struct {
	Query     string `json:"query"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Query runs a SQL statement over the given time window. Time bounds
// travel beside the statement, never inside it.
func (c *Client) Query(ctx context.Context, sql string, start, end time.Time) ([]LogRecord, error) {
	body := queryRequest{
		Query:     sql,
		StartTime: start.UTC().Format(time.RFC3339),
		EndTime:   end.UTC().Format(time.RFC3339),
	}
	var out []LogRecord
	if err := c.do(ctx, http.MethodPost, "/api/v1/query", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteStream removes a stream and returns the server's confirmation.
func (c *Client) DeleteStream(ctx context.Context, stream string) (string, error) {
	return c.text(ctx, http.MethodDelete, streamPath(stream, ""))
}

// ListAlerts returns the alerts configured on the server.
func (c *Client) ListAlerts(ctx context.Context) ([]Alert, error) {
	var out struct {
		Alerts []Alert `json:"alerts"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/alerts", nil, &out); err != nil {
		return nil, err
	}
	return out.Alerts, nil
}

// ListUsers returns the server's user accounts.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.do(ctx, http.MethodGet, "/api/v1/user", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func streamPath(stream, suffix string) string {
	p := "/api/v1/logstream/" + stream
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}
