// Package composio is a minimal client for the Composio tool execution API.
package composio

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

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://backend.composio.dev/api/v3"

	DefaultListTimeout    = 30 * time.Second
	DefaultExecuteTimeout = 45 * time.Second

	DefaultRateLimit = 5
)

// Client talks to the Composio REST API. Every call is rate limited and
// individually time bounded.
type Client struct {
	baseURL        string
	apiKey         string
	httpClient     *http.Client
	limiter        *rate.Limiter
	logger         *zap.Logger
	listTimeout    time.Duration
	executeTimeout time.Duration
}

// ClientOption configures the Client.
type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets requests per second. Non-positive values keep the default.
func WithRateLimit(requestsPerSecond float64) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			burst := int(requestsPerSecond)
			if burst < 1 {
				burst = 1
			}
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
		}
	}
}

func WithTimeouts(list, execute time.Duration) ClientOption {
	return func(c *Client) {
		if list > 0 {
			c.listTimeout = list
		}
		if execute > 0 {
			c.executeTimeout = execute
		}
	}
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:        DefaultBaseURL,
		apiKey:         apiKey,
		httpClient:     &http.Client{},
		limiter:        rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:         zap.NewNop(),
		listTimeout:    DefaultListTimeout,
		executeTimeout: DefaultExecuteTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// APIError represents a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("composio API error: %s (status %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Connection is a connected toolkit account.
type Connection struct {
	ID      string
	Toolkit string
}

// ListConnections returns connected accounts for the given toolkits.
func (c *Client) ListConnections(ctx context.Context, toolkits []string) ([]Connection, error) {
	params := url.Values{}
	for _, t := range toolkits {
		params.Add("toolkit_slugs", t)
	}
	var body any
	if err := c.do(ctx, http.MethodGet, "/connected_accounts", params, nil, c.listTimeout, &body); err != nil {
		return nil, err
	}
	root, ok := body.(map[string]any)
	if !ok {
		return nil, nil
	}
	items, _ := root["items"].([]any)
	conns := make([]Connection, 0, len(items))
	for _, raw := range items {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		conn := Connection{ID: stringField(m["id"])}
		switch tk := m["toolkit"].(type) {
		case map[string]any:
			conn.Toolkit = stringField(tk["slug"])
		default:
			conn.Toolkit = stringField(tk)
		}
		if conn.ID == "" || conn.Toolkit == "" {
			continue
		}
		conns = append(conns, conn)
	}
	return conns, nil
}

type executeRequest struct {
	ConnectedAccountID string         `json:"connected_account_id"`
	Arguments          map[string]any `json:"arguments,omitempty"`
}

// Execute runs a tool and returns its payload: the "data" object when the
// response wraps one, otherwise the whole decoded body.
func (c *Client) Execute(ctx context.Context, slug, accountID string, args map[string]any) (any, error) {
	var body any
	req := executeRequest{ConnectedAccountID: accountID, Arguments: args}
	if err := c.do(ctx, http.MethodPost, "/tools/execute/"+url.PathEscape(slug), nil, req, c.executeTimeout, &body); err != nil {
		return nil, err
	}
	if root, ok := body.(map[string]any); ok {
		if data, ok := root["data"].(map[string]any); ok {
			return data, nil
		}
		if len(root) == 0 {
			return nil, nil
		}
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload any, timeout time.Duration, result any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("composio request", zap.String("method", method), zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg)), Endpoint: path}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func stringField(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	}
	return ""
}
