// Package api implements the HTTP boundary to the conversation backend.
// Every call attaches the bearer credential when one is available and maps
// failures onto the domain error taxonomy: a non-2xx answer becomes a
// BackendError, anything that prevents a usable answer a TransportError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"trident/internal/auth"
	"trident/internal/domain"
)

const (
	// DefaultTimeout bounds every backend call unless overridden
	DefaultTimeout = 30 * time.Second

	// maxErrorBody caps how much of a non-JSON error body is echoed
	// into error messages
	maxErrorBody = 4096
)

// Doer is the request surface the services depend on
type Doer interface {
	// Get performs a GET against path and returns the decoded envelope
	Get(ctx context.Context, path string) (*Envelope, error)

	// Post sends payload as JSON
	Post(ctx context.Context, path string, payload any) (*Envelope, error)

	// PostMultipart sends a prebuilt multipart body with its boundary
	// content type
	PostMultipart(ctx context.Context, path, contentType string, body io.Reader) (*Envelope, error)

	// Delete performs a DELETE against path
	Delete(ctx context.Context, path string) (*Envelope, error)
}

// Client is the concrete HTTP client for the backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     auth.TokenProvider
	logger     *slog.Logger
}

// NewClient creates a backend client with the default timeout
func NewClient(baseURL string, tokens auth.TokenProvider, logger *slog.Logger) *Client {
	return NewClientWithConfig(baseURL, tokens, DefaultTimeout, logger)
}

// NewClientWithConfig creates a backend client with a custom timeout
func NewClientWithConfig(baseURL string, tokens auth.TokenProvider, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		logger:     logger,
	}
}

// Get implements Doer
func (c *Client) Get(ctx context.Context, path string) (*Envelope, error) {
	return c.do(ctx, http.MethodGet, path, "", nil)
}

// Post implements Doer
func (c *Client) Post(ctx context.Context, path string, payload any) (*Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(body))
}

// PostMultipart implements Doer
func (c *Client) PostMultipart(ctx context.Context, path, contentType string, body io.Reader) (*Envelope, error) {
	return c.do(ctx, http.MethodPost, path, contentType, body)
}

// Delete implements Doer
func (c *Client) Delete(ctx context.Context, path string) (*Envelope, error) {
	return c.do(ctx, http.MethodDelete, path, "", nil)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (*Envelope, error) {
	op := method + " " + path

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	if token, ok := c.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("backend call failed",
			"op", op,
			"request_id", requestID,
			"error", err,
		)
		return nil, &domain.TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }() // Error ignored: response consumed

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("backend call completed",
		"op", op,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &domain.BackendError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &domain.TransportError{Op: op, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return &env, nil
}

// errorMessage extracts a human-readable message from an error body. The
// backend answers either its usual envelope or a bare {"detail": ...}
// object; anything else is echoed raw, truncated.
func errorMessage(raw []byte) string {
	var body struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Detail != "" {
			return body.Detail
		}
		if body.Message != "" {
			return body.Message
		}
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	return msg
}
