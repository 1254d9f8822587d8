// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package hub provides a minimal HuggingFace Hub API client.
//
// The validator uses it as an optional collaborator: it can confirm that an
// access token authenticates and that a hub-hosted model is accessible. Every
// caller treats failures here as advisory; nothing in this package is on a
// required path.
package hub

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Configuration constants for the Hub API.
const (
	// DefaultBaseURL is the base URL for the HuggingFace Hub API.
	DefaultBaseURL = "https://huggingface.co"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 10 * time.Second
)

// knownNamespaces are the hub organization prefixes the validator treats as
// remote model references rather than local paths.
var knownNamespaces = []string{
	"meta-llama/",
	"mistralai/",
	"huggingface/",
}

// Error variables for common Hub errors.
var (
	// ErrNotConfigured indicates the access token is not set.
	ErrNotConfigured = errors.New("HuggingFace token not configured")

	// ErrAuthFailed indicates the token was rejected.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrModelNotFound indicates the requested model does not exist or is
	// not visible to this token.
	ErrModelNotFound = errors.New("model not found")
)

// APIError represents an error response from the Hub API.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("hub error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("hub error (HTTP %d)", e.Status)
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// Account describes the identity behind an access token.
type Account struct {
	Name     string `json:"name"`
	Fullname string `json:"fullname"`
	Type     string `json:"type"`
}

// GatedFlag handles the hub's "gated" field, which is either a boolean or a
// mode string such as "auto" or "manual".
type GatedFlag bool

// UnmarshalJSON accepts both boolean and string encodings.
func (g *GatedFlag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*g = GatedFlag(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*g = s != "" && s != "false"
	return nil
}

// Model describes a hub-hosted model.
type Model struct {
	ID      string    `json:"id"`
	Private bool      `json:"private"`
	Gated   GatedFlag `json:"gated"`
}

// errorResponse is the hub's error body shape.
type errorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is a client for the HuggingFace Hub API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Hub client with the given access token.
// If the token is empty the client is still created, but requests fail with
// ErrNotConfigured.
func NewClient(token string) *Client {
	return &Client{
		token:   strings.TrimSpace(token),
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// WithBaseURL sets a custom base URL for the API.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimSuffix(url, "/")
	return c
}

// WithTimeout sets the request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// IsConfigured returns true if the client has an access token.
func (c *Client) IsConfigured() bool {
	return c.token != ""
}

// TokenFingerprint returns a short SHA-256 fingerprint of the token for
// logging. The token itself is never exposed.
func (c *Client) TokenFingerprint() string {
	if c.token == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(c.token))
	return hex.EncodeToString(h[:4])
}

// =============================================================================
// OPERATIONS
// =============================================================================

// WhoAmI resolves the account behind the configured token.
func (c *Client) WhoAmI(ctx context.Context) (*Account, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	var account Account
	if err := c.get(ctx, "/api/whoami-v2", &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// ModelInfo looks up a hub-hosted model by its namespaced identifier.
// Works without a token for public models; gated and private models need one.
func (c *Client) ModelInfo(ctx context.Context, modelID string) (*Model, error) {
	var model Model
	if err := c.get(ctx, "/api/models/"+modelID, &model); err != nil {
		return nil, err
	}
	return &model, nil
}

// get performs an authenticated GET and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("hub request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		io.Copy(io.Discard, resp.Body)
		return ErrAuthFailed
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return ErrModelNotFound
	case resp.StatusCode != http.StatusOK:
		var apiErr errorResponse
		msg := ""
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil {
			msg = apiErr.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode hub response: %w", err)
	}
	return nil
}

// =============================================================================
// MODEL ID CLASSIFICATION
// =============================================================================

// IsHubModelID reports whether a model path looks like a namespaced hub
// reference rather than a local filesystem path.
func IsHubModelID(path string) bool {
	for _, ns := range knownNamespaces {
		if strings.HasPrefix(path, ns) {
			return true
		}
	}
	return false
}
