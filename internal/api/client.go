// Package api is the gateway to the Codex backend's auth surface. Every call
// goes out with a JSON content type and the refresh cookie attached, and every
// non-2xx answer comes back as a typed *Error. No retries: a failed attempt is
// surfaced immediately and retry policy stays with the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/codex-web/auth-front/internal/log"
	"github.com/codex-web/auth-front/internal/provider"
)

// Client issues the backend auth calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client at construction.
type Option func(*Client)

// WithTimeout bounds each request. The default is no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client. The caller owns the
// cookie jar in that case.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a gateway for the backend at baseURL. The client carries
// a cookie jar so the backend's refresh cookie rides along on every call.
func NewClient(baseURL string, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Jar: jar},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: "/auth/login", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its first session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: "/auth/register", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// OAuthURL fetches the provider authorization URL to redirect the user to.
func (c *Client) OAuthURL(ctx context.Context, p provider.Provider) (*OAuthURLResponse, error) {
	var out OAuthURLResponse
	if err := c.do(ctx, call{method: http.MethodGet, path: p.URLPath()}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExchangeCallback trades the provider's authorization code for a session.
// The state parameter is forwarded verbatim; validating it is the backend's
// responsibility.
func (c *Client) ExchangeCallback(ctx context.Context, p provider.Provider, code, state string) (*AuthResponse, error) {
	query := url.Values{}
	query.Set("code", code)
	query.Set("state", state)

	var out AuthResponse
	if err := c.do(ctx, call{method: http.MethodGet, path: p.CallbackPath(), query: query}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh obtains a new access token using the refresh cookie.
func (c *Client) Refresh(ctx context.Context) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: "/auth/refresh"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the backend session.
func (c *Client) Logout(ctx context.Context) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: "/auth/logout"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentUser fetches the profile behind the given access token.
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*User, error) {
	var out User
	if err := c.do(ctx, call{method: http.MethodGet, path: "/user", bearer: accessToken}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type call struct {
	method string
	path   string
	query  url.Values
	body   any
	bearer string
}

func (c *Client) do(ctx context.Context, req call, out any) error {
	var payload io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return networkError(fmt.Errorf("encoding request: %w", err))
		}
		payload = bytes.NewReader(data)
	}

	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, payload)
	if err != nil {
		return networkError(fmt.Errorf("building request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.bearer)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return networkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body ErrorBody
		if err := json.Unmarshal(data, &body); err != nil {
			return parseError(err)
		}
		log.LogDebugWithFields("api", "Request failed", map[string]any{
			"method": req.method,
			"path":   req.path,
			"status": resp.StatusCode,
		})
		return httpError(resp.StatusCode, &body)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return parseError(err)
	}
	return nil
}
