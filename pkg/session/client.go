// Package session provides an API client that caches the current session:
// it holds the access token, carries the refresh cookie in a jar and
// transparently renews the session with a single refresh-and-retry when the
// server rejects the bearer token.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"
)

// ErrAnonymous is returned when an operation needs a session and none is
// active.
var ErrAnonymous = fmt.Errorf("session: not authenticated")

// User is the authenticated principal as returned by the API.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// APIError mirrors the error object in API response envelopes.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error"`
}

type loginData struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	User        *User  `json:"user"`
}

// Client is a session-caching API client. All methods are safe for
// concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      TokenStore

	mu          sync.Mutex
	accessToken string
	user        *User
}

// Option customises the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client. A cookie jar is
// installed when the provided client has none, since the refresh token only
// travels as a cookie.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the API at baseURL (including the API prefix,
// e.g. "http://localhost:3001/api").
func New(baseURL string, store TokenStore, opts ...Option) (*Client, error) {
	if store == nil {
		store = NewMemoryStore()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("session: init cookie jar: %w", err)
		}
		c.httpClient.Jar = jar
	}
	return c, nil
}

// Bootstrap restores a previous session. When a persisted access token
// exists it fetches the current principal; if that fails it attempts exactly
// one refresh. On any failure the client ends up anonymous with all session
// state discarded.
func (c *Client) Bootstrap(ctx context.Context) (*User, error) {
	token, err := c.store.Load()
	if err != nil || token == "" {
		return nil, ErrAnonymous
	}
	c.setSession(token, nil)

	user, err := c.fetchMe(ctx, token)
	if err == nil {
		c.setSession(token, user)
		return user, nil
	}
	if !isUnauthorized(err) {
		return nil, err
	}

	newToken, err := c.refresh(ctx)
	if err != nil {
		c.reset()
		return nil, ErrAnonymous
	}
	user, err = c.fetchMe(ctx, newToken)
	if err != nil {
		c.reset()
		return nil, ErrAnonymous
	}
	c.setSession(newToken, user)
	return user, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, email, password, name string) (*User, error) {
	payload := map[string]string{"email": email, "password": password, "name": name}
	var user User
	if err := c.postJSON(ctx, "/auth/register", payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates and activates the session. The refresh cookie lands in
// the jar; the access token is cached and persisted.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	payload := map[string]string{"email": email, "password": password}
	var data loginData
	if err := c.postJSON(ctx, "/auth/login", payload, &data); err != nil {
		return nil, err
	}
	c.setSession(data.AccessToken, data.User)
	if err := c.store.Save(data.AccessToken); err != nil {
		return nil, fmt.Errorf("session: persist token: %w", err)
	}
	return data.User, nil
}

// Logout invalidates the session server-side and discards all local state.
// It never fails on server rejection; logout is idempotent.
func (c *Client) Logout(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/logout", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err == nil {
		resp.Body.Close()
	}
	c.reset()
	return nil
}

// Me returns the cached principal, fetching it when absent.
func (c *Client) Me(ctx context.Context) (*User, error) {
	c.mu.Lock()
	token, user := c.accessToken, c.user
	c.mu.Unlock()
	if token == "" {
		return nil, ErrAnonymous
	}
	if user != nil {
		return user, nil
	}

	resp, err := c.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, "/auth/me", nil)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	fetched := &User{}
	if err := decodeEnvelope(resp, fetched); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.user = fetched
	c.mu.Unlock()
	return fetched, nil
}

// Do executes an authenticated request built by build. On a 401 it performs
// exactly one refresh and retries the request exactly once with the new
// token; when that fails too the session is discarded and the failure is
// surfaced.
func (c *Client) Do(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	c.mu.Lock()
	token := c.accessToken
	c.mu.Unlock()
	if token == "" {
		return nil, ErrAnonymous
	}

	resp, err := c.send(ctx, build, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	newToken, err := c.refresh(ctx)
	if err != nil {
		c.reset()
		return nil, err
	}

	resp, err = c.send(ctx, build, newToken)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		c.reset()
		return nil, &APIError{Code: "UNAUTHORIZED", Message: "session rejected after refresh", Status: http.StatusUnauthorized}
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, build func(ctx context.Context) (*http.Request, error), token string) (*http.Response, error) {
	req, err := build(ctx)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.httpClient.Do(req)
}

// refresh exchanges the cookie-jar refresh token for a new access token and
// caches it.
func (c *Client) refresh(ctx context.Context) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/refresh", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var data loginData
	if err := decodeEnvelope(resp, &data); err != nil {
		return "", err
	}

	c.mu.Lock()
	c.accessToken = data.AccessToken
	c.mu.Unlock()
	if err := c.store.Save(data.AccessToken); err != nil {
		return "", fmt.Errorf("session: persist token: %w", err)
	}
	return data.AccessToken, nil
}

func (c *Client) fetchMe(ctx context.Context, token string) (*User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	user := &User{}
	if err := decodeEnvelope(resp, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, dest interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp, dest)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
}

func (c *Client) setSession(token string, user *User) {
	c.mu.Lock()
	c.accessToken = token
	c.user = user
	c.mu.Unlock()
}

// reset discards all session state, local and persisted.
func (c *Client) reset() {
	c.mu.Lock()
	c.accessToken = ""
	c.user = nil
	c.mu.Unlock()
	c.store.Clear() //nolint:errcheck
}

func decodeEnvelope(resp *http.Response, dest interface{}) error {
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("session: decode response: %w", err)
	}
	if env.Error != nil {
		if env.Error.Status == 0 {
			env.Error.Status = resp.StatusCode
		}
		return env.Error
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{Code: "UNEXPECTED", Message: fmt.Sprintf("status %d", resp.StatusCode), Status: resp.StatusCode}
	}
	if dest == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, dest)
}

func isUnauthorized(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusUnauthorized
}
