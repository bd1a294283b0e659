package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/wh131462/stillalive/internal/logging"
	"github.com/wh131462/stillalive/internal/protocol"
)

const (
	pushPath  = "/api/sync/push"
	pullPath  = "/api/sync/pull"
	probePath = "/api/sync/status"

	defaultRetryBase = 200 * time.Millisecond
)

// HTTPClient is the JSON-over-HTTP implementation of API.
type HTTPClient struct {
	baseURL    string
	token      string
	client     *http.Client
	maxRetries uint64
	logger     logging.Logger
}

// NewHTTPClient returns a client for the authority at baseURL. Requests are
// authenticated with a bearer token and retried with fibonacci backoff on
// network errors and 5xx responses.
func NewHTTPClient(baseURL, token string, timeout time.Duration, maxRetries int, logger logging.Logger) *HTTPClient {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &HTTPClient{
		baseURL:    baseURL,
		token:      token,
		client:     &http.Client{Timeout: timeout},
		maxRetries: uint64(maxRetries),
		logger:     logger,
	}
}

// Push implements API.
func (c *HTTPClient) Push(ctx context.Context, req *protocol.PushRequest) (*protocol.PushResponse, error) {
	var resp protocol.PushResponse
	if err := c.postJSON(ctx, pushPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Pull implements API.
func (c *HTTPClient) Pull(ctx context.Context, req *protocol.PullRequest) (*protocol.PullResponse, error) {
	var resp protocol.PullResponse
	if err := c.postJSON(ctx, pullPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Probe implements API. It issues a single request without retries so the
// sync manager gets a quick reachability answer.
func (c *HTTPClient) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+probePath, nil)
	if err != nil {
		return err
	}
	c.authorize(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("probe: server returned %s", resp.Status)
	}
	return nil
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, in any, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewFibonacci(defaultRetryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		c.authorize(req)

		resp, err := c.client.Do(req)
		if err != nil {
			c.logger.Warn(ctx, "request failed, will retry", "path", path, "error", err)
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			io.Copy(io.Discard, resp.Body)
			c.logger.Warn(ctx, "server error, will retry", "path", path, "status", resp.StatusCode)
			return retry.RetryableError(fmt.Errorf("server returned %s", resp.Status))
		}
		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return fmt.Errorf("server returned %s: %s", resp.Status, bytes.TrimSpace(msg))
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	})
}

func (c *HTTPClient) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
