// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// DefaultURL is the answering endpoint of a locally started backend.
const DefaultURL = "http://localhost:8000/chat"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// ClientConfig holds configuration options for the answering client.
type ClientConfig struct {
	// URL is the full endpoint (default: http://localhost:8000/chat)
	URL string

	// Timeout bounds one request. 0 means no client-side timeout.
	Timeout time.Duration

	// EmptyIsFailure turns a 2xx response with "answer": "" into a KindDecode error.
	EmptyIsFailure bool

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		URL:            DefaultURL,
		EmptyIsFailure: true,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client calls the answering service over HTTP. It is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a client with the default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client with a custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		config:     &cfg,
		httpClient: httpClient,
	}
}

// URL returns the endpoint this client posts to.
func (c *Client) URL() string {
	return c.config.URL
}

// Answer posts query and returns the answer text.
func (c *Client) Answer(ctx context.Context, query string) (string, error) {
	body, err := json.Marshal(Request{Query: query})
	if err != nil {
		return "", &Error{Kind: KindTransport, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: KindTransport, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{Kind: KindTransport, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &Error{Kind: KindTransport, Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &Error{Kind: KindServer, Message: "answer request failed", Status: resp.StatusCode}
	}

	var result Response
	if err := json.Unmarshal(data, &result); err != nil {
		return "", &Error{Kind: KindDecode, Message: "failed to decode response", Cause: err}
	}
	if result.Answer == nil {
		return "", &Error{Kind: KindDecode, Message: "response has no answer field"}
	}
	if *result.Answer == "" && c.config.EmptyIsFailure {
		return "", &Error{Kind: KindDecode, Message: "response answer is empty"}
	}

	return *result.Answer, nil
}
