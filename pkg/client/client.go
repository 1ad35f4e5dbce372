// Package client talks to a running answercache server over HTTP.
package client

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

	"github.com/pario-ai/answercache/pkg/models"
)

// Client calls the answercache HTTP API.
type Client struct {
	base string
	http *http.Client
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("answercache: %d %s", e.StatusCode, e.Message)
}

// New returns a Client for the server at baseURL, e.g. "http://localhost:8000".
func New(baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL: %q", baseURL)
	}
	return &Client{
		base: strings.TrimRight(u.String(), "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Answer submits a query and returns the server's result.
func (c *Client) Answer(ctx context.Context, query string) (models.QueryResult, error) {
	body, err := json.Marshal(models.QueryRequest{Query: &query})
	if err != nil {
		return models.QueryResult{}, err
	}
	var res models.QueryResult
	if err := c.do(ctx, http.MethodPost, "/", body, &res); err != nil {
		return models.QueryResult{}, err
	}
	return res, nil
}

// Analytics fetches the current analytics report.
func (c *Client) Analytics(ctx context.Context) (models.AnalyticsReport, error) {
	var rep models.AnalyticsReport
	if err := c.do(ctx, http.MethodGet, "/analytics", nil, &rep); err != nil {
		return models.AnalyticsReport{}, err
	}
	return rep, nil
}

// Prune asks the server to run an expiry and capacity pass.
func (c *Client) Prune(ctx context.Context) (models.PruneResult, error) {
	var res models.PruneResult
	if err := c.do(ctx, http.MethodPost, "/admin/prune", nil, &res); err != nil {
		return models.PruneResult{}, err
	}
	return res, nil
}

// Clear empties the server's cache.
func (c *Client) Clear(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/admin/cache", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return strings.TrimSpace(string(body))
}
