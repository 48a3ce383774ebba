// Package openlist implements a minimal client for the OpenList file-listing
// API (login and lookup-by-path, the two endpoints playback resolution needs).
package openlist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client talks to one OpenList server. Tokens are cached and refreshed when
// the server reports them expired.
type Client struct {
	baseURL  string
	username string
	password string
	httpc    *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// FileInfo is the subset of the fs/get payload playback resolution uses.
type FileInfo struct {
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	IsDir  bool   `json:"is_dir"`
	RawURL string `json:"raw_url"`
	Sign   string `json:"sign,omitempty"`
}

// StatusError reports a non-success OpenList response code with the server's
// message, so callers can log the upstream context.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openlist: code %d: %s", e.Code, e.Message)
}

// New creates a client for the given server. httpc may be nil.
func New(baseURL, username, password string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		httpc:    httpc,
	}
}

// ensureToken logs in when no unexpired token is cached.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-1*time.Minute)) {
		return c.token, nil
	}

	body, _ := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("openlist login: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("openlist login failed: %s", resp.Status)
	}

	var data struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("openlist login: %w", err)
	}
	if data.Code != http.StatusOK || data.Data.Token == "" {
		return "", &StatusError{Code: data.Code, Message: data.Message}
	}

	c.token = data.Data.Token
	// OpenList tokens live 48h by default; refresh well before that.
	c.tokenExpiry = time.Now().Add(24 * time.Hour)
	return c.token, nil
}

// FsGet looks up the file at the given remote path and returns its metadata,
// including the direct raw URL. A non-200 response code or a missing raw URL
// is returned as a *StatusError.
func (c *Client) FsGet(ctx context.Context, path string) (*FileInfo, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	body, _ := json.Marshal(map[string]string{"path": path})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/fs/get", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openlist fs/get: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Message: resp.Status}
	}

	var data struct {
		Code    int      `json:"code"`
		Message string   `json:"message"`
		Data    FileInfo `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("openlist fs/get: %w", err)
	}
	if data.Code != http.StatusOK {
		return nil, &StatusError{Code: data.Code, Message: data.Message}
	}
	if data.Data.RawURL == "" {
		return nil, &StatusError{Code: data.Code, Message: "no raw_url in response"}
	}
	return &data.Data, nil
}
