// Package remote is a thin client for the remote user API
// (jsonplaceholder-compatible). Every call is a single request: there is
// no retry and no backoff. Callers turn the outcome into one of the
// fixed status messages with Message.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aanand-mishra/local-crud/internal/config"
	"github.com/aanand-mishra/local-crud/internal/types"
)

// DefaultBaseURL is the public placeholder API.
const DefaultBaseURL = "https://jsonplaceholder.typicode.com"

// Op names one of the three remote operations.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// ErrMissingFields is returned before any request is made when a required
// input is empty.
var ErrMissingFields = errors.New("remote: missing required fields")

// CallError describes a failed request. StatusCode is zero when no
// response was received.
type CallError struct {
	Op         Op
	StatusCode int
	Err        error
}

func (e *CallError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// Client talks to the remote API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// New creates a Client for baseURL; an empty baseURL means DefaultBaseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("remote.New: invalid base URL: %w", err)
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewFromConfig builds a Client from the remote section of cfg.
func NewFromConfig(cfg *config.Config) (*Client, error) {
	timeout := cfg.Remote.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return New(cfg.Remote.BaseURL, WithHTTPClient(&http.Client{Timeout: timeout}))
}

// CreateUser sends POST /users. Both name and email are required.
func (c *Client) CreateUser(ctx context.Context, name, email string) (types.RemoteUser, error) {
	if name == "" || email == "" {
		return types.RemoteUser{}, ErrMissingFields
	}
	var out types.RemoteUser
	err := c.do(ctx, OpCreate, http.MethodPost, "/users", types.RemoteUser{Name: name, Email: email}, &out)
	return out, err
}

// UpdateUser sends PUT /users/{id}. id, name and email are required.
func (c *Client) UpdateUser(ctx context.Context, id, name, email string) (types.RemoteUser, error) {
	if id == "" || name == "" || email == "" {
		return types.RemoteUser{}, ErrMissingFields
	}
	var out types.RemoteUser
	err := c.do(ctx, OpUpdate, http.MethodPut, "/users/"+url.PathEscape(id), types.RemoteUser{Name: name, Email: email}, &out)
	return out, err
}

// DeleteUser sends DELETE /users/{id}.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingFields
	}
	return c.do(ctx, OpDelete, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, op Op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &CallError{Op: op, Err: err}
		}
		reader = bytes.NewReader(data)
	}

	endpoint := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return &CallError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	slog.Debug("remote request", slog.String("method", method), slog.String("url", endpoint.String()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("remote request failed", slog.String("op", string(op)), slog.String("error", err.Error()))
		return &CallError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Error("remote request rejected",
			slog.String("op", string(op)),
			slog.Int("status", resp.StatusCode))
		return &CallError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(snippet))),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &CallError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// Message returns the user-facing status line for the outcome of op on
// user id. Any failure collapses to one generic message per operation.
func Message(op Op, id string, err error) string {
	if errors.Is(err, ErrMissingFields) {
		switch op {
		case OpCreate:
			return "Both field are required"
		case OpUpdate:
			return "Please fill out all fields"
		default:
			return "Please enter a user ID"
		}
	}

	switch op {
	case OpCreate:
		if err != nil {
			return "Error submitting user"
		}
		return "user submitted sucessfully"
	case OpUpdate:
		if err != nil {
			return "Error updating user"
		}
		return "User updated successfully!"
	default:
		if err != nil {
			return "Error deleting user"
		}
		return fmt.Sprintf("User ID %s deleted succrssfully", id)
	}
}
