package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Gateway modes. Direct targets the exchange backend's absolute origin
// and injects a bearer header. Proxy targets a same-origin path and
// relies on the browser sending the session cookie, which page code
// cannot read, so no header is attached.
const (
	ModeDirect = "direct"
	ModeProxy  = "proxy"
)

// Config holds gateway configuration
type Config struct {
	BaseURL      string
	ProxyPath    string
	Mode         string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// TokenSource supplies the bearer token attached in direct mode.
type TokenSource interface {
	Token() (string, bool)
}

// Client wraps outbound calls to the exchange backend with base-URL
// selection, header injection, timeout, and bounded retry with backoff.
type Client struct {
	cfg            Config
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func()
}

// Option configures a Client
type Option func(*Client)

// WithTokenSource sets the token source consulted in direct mode.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithOnUnauthorized sets the side effect fired when a call comes back
// 401: clear stored tokens and send the user back to login. It runs
// once per failing call, independent of which call triggered it.
func WithOnUnauthorized(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a gateway client
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Mode == "" {
		cfg.Mode = ModeDirect
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}

	c := &Client{
		cfg:  cfg,
		http: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues an idempotent GET with the client's default retry bound.
func (c *Client) Get(ctx context.Context, path string, query map[string][]string) Result {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query, Retries: -1, Idempotent: true})
}

// Post issues a POST. Posts are not retried.
func (c *Client) Post(ctx context.Context, path string, body interface{}) Result {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put issues a PUT. Puts are not retried.
func (c *Client) Put(ctx context.Context, path string, body interface{}) Result {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete issues a DELETE. Deletes are not retried.
func (c *Client) Delete(ctx context.Context, path string) Result {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

// Do issues the request, retrying idempotent calls up to the retry
// bound with exponential backoff (1s, 2s, 4s, ...). An authentication
// failure or a cancellation is surfaced immediately: retrying a
// bad-credentials failure cannot succeed.
func (c *Client) Do(ctx context.Context, req Request) Result {
	retries := req.Retries
	if retries < 0 {
		retries = c.cfg.MaxRetries
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.cfg.Timeout
	}

	var res Result
	for attempt := 0; ; attempt++ {
		res = c.once(ctx, req, timeout)
		if res.OK() {
			return res
		}

		if res.Status == http.StatusUnauthorized {
			c.handleUnauthorized()
			return res
		}
		if ctx.Err() != nil || res.Err.Code == CodeCancelled {
			return res
		}
		if !req.Idempotent || attempt >= retries || !retryable(res) {
			return res
		}

		backoff := c.cfg.RetryBackoff << uint(attempt)
		select {
		case <-ctx.Done():
			return Result{Status: res.Status, Err: &Error{Code: CodeCancelled, Message: "call cancelled"}}
		case <-time.After(backoff):
		}
	}
}

// retryable reports whether a failed attempt is worth repeating:
// transport faults, timeouts, 5xx and 429. Client errors are not.
func retryable(res Result) bool {
	if res.Status == 0 {
		return res.Err.Code == CodeNetworkError || res.Err.Code == CodeTimeout
	}
	return res.Status >= 500 || res.Status == http.StatusTooManyRequests
}

func (c *Client) handleUnauthorized() {
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

// base returns the request origin for the configured mode: the
// same-origin proxy path, or the backend's absolute origin.
func (c *Client) base() string {
	if c.cfg.Mode == ModeProxy {
		return c.cfg.ProxyPath
	}
	return c.cfg.BaseURL
}

// bearer returns the token to attach, or empty. Proxy mode never
// attaches one: the session cookie travels with the request instead.
func (c *Client) bearer(req Request) string {
	if c.cfg.Mode != ModeDirect {
		return ""
	}
	if req.Bearer != "" {
		return req.Bearer
	}
	if c.tokens != nil {
		if tok, ok := c.tokens.Token(); ok {
			return tok
		}
	}
	return ""
}

// once performs a single bounded attempt and converts every failure
// into a structured result.
func (c *Client) once(parent context.Context, req Request, timeout time.Duration) Result {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	var bodyReader io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return Result{Err: &Error{Code: CodeEncodeError, Message: err.Error()}}
		}
		bodyReader = bytes.NewReader(encoded)
	}

	target := c.base() + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bodyReader)
	if err != nil {
		return Result{Err: &Error{Code: CodeNetworkError, Message: err.Error()}}
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.New().String())
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Header {
		httpReq.Header.Set(k, v)
	}
	if tok := c.bearer(req); tok != "" {
		httpReq.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		switch {
		case parent.Err() != nil && errors.Is(parent.Err(), context.Canceled):
			return Result{Err: &Error{Code: CodeCancelled, Message: "call cancelled"}}
		case errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded:
			return Result{Err: &Error{Code: CodeTimeout, Message: "backend call timed out"}}
		default:
			return Result{Err: &Error{Code: CodeNetworkError, Message: err.Error()}}
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Status: resp.StatusCode, Err: &Error{Code: CodeNetworkError, Message: err.Error()}}
	}

	return decodeResult(resp.StatusCode, raw)
}

// decodeResult maps a wire response onto the discriminated result type.
func decodeResult(status int, raw []byte) Result {
	var env envelope
	parsed := json.Unmarshal(raw, &env) == nil

	if status >= 200 && status < 300 {
		if parsed && env.Status == "error" && env.Error != nil {
			return Result{Status: status, Err: env.Error}
		}
		if parsed && env.Status == "success" {
			return Result{Status: status, Body: env.Body}
		}
		// Not enveloped; forward the raw body.
		return Result{Status: status, Body: raw}
	}

	if parsed && env.Error != nil {
		return Result{Status: status, Err: env.Error}
	}
	if status == http.StatusUnauthorized {
		return Result{Status: status, Err: &Error{Code: CodeUnauthenticated, Message: "authentication required"}}
	}
	return Result{Status: status, Err: &Error{Code: "HTTP_" + strconv.Itoa(status), Message: http.StatusText(status)}}
}
