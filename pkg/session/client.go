// Package session is the Go client for the CMS API. It owns the session
// lifecycle on behalf of the caller: cookies, CSRF tokens, and transparent
// refresh of an expired access token.
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

const (
	csrfHeader = "X-CSRF-Token"

	loginPath   = "/api/v1/auth/login"
	refreshPath = "/api/v1/auth/refresh"
	logoutPath  = "/api/v1/auth/logout"
	sessionPath = "/api/v1/auth/session"
	csrfPath    = "/api/v1/auth/csrf"

	adminLoginPath   = "/api/v1/admin/auth/login"
	adminSessionPath = "/api/v1/admin/auth/session"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

func (e *apiError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Client is safe for concurrent use. When several requests hit an expired
// access token at once, exactly one refresh goes to the server; the rest
// wait for its outcome and then retry their original request once.
type Client struct {
	baseURL string
	http    *http.Client

	csrfMu    sync.Mutex
	csrfToken string

	refreshMu  sync.Mutex
	refreshCh  chan struct{}
	refreshErr error
}

func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Login establishes the user session. The server responds with HttpOnly
// cookies; the client never sees the raw tokens.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := c.doOnce(ctx, http.MethodPost, loginPath, body, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp, nil)
}

// Logout revokes the refresh token and drops the local CSRF token.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.doOnce(ctx, http.MethodPost, logoutPath, nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.csrfMu.Lock()
	c.csrfToken = ""
	c.csrfMu.Unlock()

	return decodeEnvelope(resp, nil)
}

// Authenticated reports whether the server still honors the session.
func (c *Client) Authenticated(ctx context.Context) (bool, error) {
	var data struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := c.GetJSON(ctx, sessionPath, &data); err != nil {
		return false, err
	}
	return data.Authenticated, nil
}

func (c *Client) AdminLogin(ctx context.Context, email, password string) error {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := c.doOnce(ctx, http.MethodPost, adminLoginPath, body, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp, nil)
}

// EnsureAdminSession checks the admin session without erroring on an
// invalid cookie; callers branch to the login flow on false.
func (c *Client) EnsureAdminSession(ctx context.Context) (bool, error) {
	var data struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := c.GetJSON(ctx, adminSessionPath, &data); err != nil {
		return false, err
	}
	return data.Authenticated, nil
}

// CSRFToken returns the cached double-submit token, fetching a fresh one
// from the server when none is held or force is set.
func (c *Client) CSRFToken(ctx context.Context, force bool) (string, error) {
	c.csrfMu.Lock()
	defer c.csrfMu.Unlock()

	if c.csrfToken != "" && !force {
		return c.csrfToken, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+csrfPath, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var data struct {
		CSRFToken string `json:"csrf_token"`
	}
	if err := decodeEnvelope(resp, &data); err != nil {
		return "", err
	}

	c.csrfToken = data.CSRFToken
	return c.csrfToken, nil
}

func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp, out)
}

func (c *Client) PostJSON(ctx context.Context, path string, in any, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodPost, path, body, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp, out)
}

func (c *Client) PutJSON(ctx context.Context, path string, in any, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodPut, path, body, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	resp, err := c.do(ctx, http.MethodDelete, path, nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp, nil)
}

// do performs the request and, on a 401, refreshes the session and retries
// exactly once. A second 401 is returned as-is; there is no retry loop.
func (c *Client) do(ctx context.Context, method, path string, body []byte, csrf bool) (*http.Response, error) {
	resp, err := c.doOnce(ctx, method, path, body, csrf)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || isAuthPath(path) {
		return resp, nil
	}

	if refreshErr := c.refreshSession(ctx); refreshErr != nil {
		// Refresh failed: the caller gets the original 401 untouched,
		// with no replay of the request.
		return resp, nil
	}

	// Drain so the connection is reusable before the retry.
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return c.doOnce(ctx, method, path, body, csrf)
}

func (c *Client) doOnce(ctx context.Context, method, path string, body []byte, csrf bool) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if csrf {
		token, err := c.CSRFToken(ctx, false)
		if err != nil {
			return nil, err
		}
		req.Header.Set(csrfHeader, token)
	}

	return c.http.Do(req)
}

// refreshSession deduplicates concurrent refreshes: the first caller posts
// to the refresh endpoint, everyone else waits on its result.
func (c *Client) refreshSession(ctx context.Context) error {
	c.refreshMu.Lock()
	if c.refreshCh != nil {
		ch := c.refreshCh
		c.refreshMu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}

		c.refreshMu.Lock()
		err := c.refreshErr
		c.refreshMu.Unlock()
		return err
	}

	ch := make(chan struct{})
	c.refreshCh = ch
	c.refreshMu.Unlock()

	err := c.postRefresh(ctx)

	c.refreshMu.Lock()
	c.refreshErr = err
	c.refreshCh = nil
	c.refreshMu.Unlock()
	close(ch)

	return err
}

func (c *Client) postRefresh(ctx context.Context) error {
	resp, err := c.doOnce(ctx, http.MethodPost, refreshPath, nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp, nil)
}

func isAuthPath(path string) bool {
	return strings.HasPrefix(path, "/api/v1/auth/") || strings.HasPrefix(path, "/api/v1/admin/auth/")
}

func decodeEnvelope(resp *http.Response, out any) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("unexpected response (status %d)", resp.StatusCode)
	}

	if !envelope.Success {
		if envelope.Error != nil {
			return envelope.Error
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if out == nil || len(envelope.Data) == 0 {
		return nil
	}

	return json.Unmarshal(envelope.Data, out)
}
