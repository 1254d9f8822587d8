// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sglang provides the HTTP client for communicating with an SGLang
// server over its OpenAI-compatible API.
package sglang

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the SGLang client.
type ClientError struct {
	Type    ErrorType
	Message string
	Status  int    // HTTP status code for ErrTypeHTTPStatus errors
	Body    string // Raw response body for ErrTypeHTTPStatus errors
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotReachable
	ErrTypeTimeout
	ErrTypeHTTPStatus
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrNotReachable = &ClientError{Type: ErrTypeNotReachable, Message: "server is not reachable"}
	ErrTimeout      = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// IsNotReachable checks if an error indicates the server is unreachable.
func IsNotReachable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotReachable
	}
	return errors.Is(err, ErrNotReachable)
}

// HTTPStatusError extracts the status/body details from a non-2xx error.
// Returns nil if the error is not an HTTP status error.
func HTTPStatusError(err error) *ClientError {
	var clientErr *ClientError
	if errors.As(err, &clientErr) && clientErr.Type == ErrTypeHTTPStatus {
		return clientErr
	}
	return nil
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the SGLang client.
type ClientConfig struct {
	// BaseURL is the server base URL (default: http://localhost:30000)
	BaseURL string

	// HealthTimeout bounds health checks and model listing (default: 5s)
	HealthTimeout time.Duration

	// ChatTimeout bounds chat completion requests (default: 120s)
	ChatTimeout time.Duration

	// DefaultModel to use if a request does not name one
	DefaultModel string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:       "http://localhost:30000",
		HealthTimeout: 5 * time.Second,
		ChatTimeout:   120 * time.Second,
		DefaultModel:  "meta-llama/Meta-Llama-3-70B-Instruct",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the SGLang OpenAI-compatible API.
// It provides methods for health checks, model enumeration, and chat
// completions. A single failed attempt is surfaced immediately; the client
// never retries.
//
// Example:
//
//	client := sglang.NewClient()
//	if err := client.HealthCheck(ctx); err != nil {
//	    log.Fatal("server not available:", err)
//	}
//	resp, err := client.ChatCompletion(ctx, req)
type Client struct {
	config     *ClientConfig
	httpClient *http.Client // bounded by HealthTimeout
	chatClient *http.Client // bounded by ChatTimeout
}

// NewClient creates a new SGLang client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new SGLang client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:30000"
	}
	if config.HealthTimeout == 0 {
		config.HealthTimeout = 5 * time.Second
	}
	if config.ChatTimeout == 0 {
		config.ChatTimeout = 120 * time.Second
	}
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.HealthTimeout,
		},
		chatClient: &http.Client{
			Timeout: config.ChatTimeout,
		},
	}
}

// BaseURL returns the configured server base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// GetDefaultModel returns the configured default model.
func (c *Client) GetDefaultModel() string {
	return c.config.DefaultModel
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// HealthCheck verifies that the server is reachable and healthy.
// Any network failure is returned as a typed error, never propagated raw.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/health", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeoutErr(err) {
			return ErrTimeout
		}
		return &ClientError{Type: ErrTypeNotReachable, Message: "server is not reachable", Cause: err}
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "unexpected status from health endpoint: " + resp.Status,
		}
	}

	return nil
}

// =============================================================================
// MODEL OPERATIONS
// =============================================================================

// ListModels retrieves the models served by the endpoint, in server order.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/v1/models", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeoutErr(err) {
			return nil, ErrTimeout
		}
		return nil, &ClientError{Type: ErrTypeNotReachable, Message: "server is not reachable", Cause: err}
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "failed to list models: " + resp.Status,
		}
	}

	var result listModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	return result.Data, nil
}

// =============================================================================
// CHAT COMPLETIONS
// =============================================================================

// ChatCompletion sends a chat completion request and returns the complete
// response. The stream flag is passed through to the server, but the result
// is always awaited as a single body, never consumed incrementally.
func (c *Client) ChatCompletion(ctx context.Context, chatReq ChatRequest) (*ChatResponse, error) {
	if chatReq.Model == "" {
		chatReq.Model = c.config.DefaultModel
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.chatClient.Do(req)
	if err != nil {
		if isTimeoutErr(err) {
			return nil, ErrTimeout
		}
		return nil, &ClientError{Type: ErrTypeConnection, Message: "chat request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Surface the status and raw body to the caller
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, &ClientError{
			Type:    ErrTypeHTTPStatus,
			Message: "server returned " + resp.Status,
			Status:  resp.StatusCode,
			Body:    string(raw),
		}
	}

	var result ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	if len(result.Choices) == 0 {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "response contained no choices"}
	}

	return &result, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// maxErrorBodySize caps how much of an error body is read back for display.
const maxErrorBodySize = 64 * 1024

// isTimeoutErr reports whether a transport error was caused by a deadline.
func isTimeoutErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

// drainAndClose drains and closes a response body so the connection can be
// reused.
func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, r)
	r.Close()
}
