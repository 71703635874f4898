// Package api talks to the Monevo REST backend. It owns the transport
// concerns every call shares: bearer-token injection, JSON encoding,
// error normalization, and the global reaction to HTTP 401, which
// clears the stored session, fires the expiry handler, and
// short-circuits the call.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"monevo/internal/log"
	"monevo/internal/session"
)

// Client is the HTTP transport helper.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions session.Store
	logger   *log.Logger

	// onExpired runs after a 401 has cleared the stored session. It is
	// set once at wiring time, before any call is made.
	onExpired func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithExpiryHandler registers the hook invoked when the backend rejects
// the session token.
func WithExpiryHandler(fn func()) Option {
	return func(c *Client) { c.onExpired = fn }
}

// SetExpiryHandler installs the hook after construction. The client and
// the state layer reference each other, so one of them has to be wired
// second.
func (c *Client) SetExpiryHandler(fn func()) {
	c.onExpired = fn
}

// New creates a client for the given base URL. The session store is
// read at request-signing time, so a login performed after New is
// picked up without rebuilding the client.
func New(baseURL string, sessions session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 15 * time.Second},
		sessions: sessions,
		logger:   log.New(log.DefaultConfig()).WithComponent(log.ComponentTransport),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GoogleLoginURL is the browser entry point for the OAuth flow. The
// backend redirects back with a token or error query parameter.
func (c *Client) GoogleLoginURL() string {
	return c.baseURL + "/auth/google/login"
}

// request describes one outbound call.
type request struct {
	method string
	path   string
	query  url.Values
	body   any

	// token overrides the stored token; used during the OAuth callback
	// when identity must be confirmed before the token is persisted.
	token string

	// anonymous calls skip token injection and 401 short-circuiting
	// (a wrong password on login is a validation error, not expiry).
	anonymous bool
}

// do executes the request and decodes a 2xx JSON body into out (out may
// be nil for empty responses).
func (c *Client) do(ctx context.Context, r request, out any) error {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	token := r.token
	if token == "" && !r.anonymous {
		s, err := c.sessions.Load()
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		token = s.Token
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "request failed",
			log.FieldMethod, r.method,
			log.FieldPath, r.path,
			log.FieldRequestID, requestID,
			log.FieldError, err)
		return connectionError(err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "request completed",
		log.FieldMethod, r.method,
		log.FieldPath, r.path,
		log.FieldRequestID, requestID,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode == http.StatusUnauthorized && !r.anonymous {
		c.expireSession(ctx)
		return ErrSessionExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFrom(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.WarnContext(ctx, "unparseable response body",
			log.FieldPath, r.path,
			log.FieldRequestID, requestID,
			log.FieldError, err)
		return connectionError(err)
	}
	return nil
}

// expireSession runs the cross-cutting 401 path exactly as the web
// client did: purge durable storage first, then notify, so the handler
// always observes an anonymous session.
func (c *Client) expireSession(ctx context.Context) {
	if err := c.sessions.Clear(); err != nil {
		c.logger.ErrorContext(ctx, "failed to clear expired session", log.FieldError, err)
	}
	if c.onExpired != nil {
		c.onExpired()
	}
}

// errorFrom normalizes a non-2xx response. Backends in front of this
// client answer with {"detail": "..."}; anything else is surfaced as
// raw text, and an unreadable body degrades to a generic status line.
func (c *Client) errorFrom(resp *http.Response) *Error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(raw) > 0 {
		var payload struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(raw, &payload) == nil && payload.Detail != "" {
			return &Error{StatusCode: resp.StatusCode, Detail: payload.Detail}
		}
		if text := strings.TrimSpace(string(raw)); text != "" && !strings.HasPrefix(text, "{") {
			return &Error{StatusCode: resp.StatusCode, Detail: text}
		}
	}
	return &Error{StatusCode: resp.StatusCode, Detail: fmt.Sprintf("request failed with status %d", resp.StatusCode)}
}
