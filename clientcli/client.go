package clientcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 30 * time.Second

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Client performs operations against a dbmanager admin API.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()
	cfg.Endpoint = strings.TrimSuffix(cfg.Endpoint, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Drivers returns the protocol to driver mapping.
func (c *Client) Drivers(ctx context.Context) (map[string]string, error) {
	var body driversBody
	if err := c.do(ctx, http.MethodGet, "/drivers", nil, &body); err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	return body.Drivers, nil
}

// RegisterDriver maps protocol to driver on the server.
func (c *Client) RegisterDriver(ctx context.Context, protocol, driver string) error {
	if err := c.do(ctx, http.MethodPut, "/drivers/"+url.PathEscape(protocol), driverBody{Driver: driver}, nil); err != nil {
		return fmt.Errorf("register driver %s: %w", protocol, err)
	}
	return nil
}

// UnregisterDriver removes the driver for protocol on the server.
func (c *Client) UnregisterDriver(ctx context.Context, protocol string) error {
	if err := c.do(ctx, http.MethodDelete, "/drivers/"+url.PathEscape(protocol), nil, nil); err != nil {
		return fmt.Errorf("unregister driver %s: %w", protocol, err)
	}
	return nil
}

// Connections returns the registered connections with redacted DSNs.
func (c *Client) Connections(ctx context.Context) (*ConnectionList, error) {
	var list ConnectionList
	if err := c.do(ctx, http.MethodGet, "/connections", nil, &list); err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	return &list, nil
}

// RegisterConnection registers dsn under name. The DSN is parsed by the
// server.
func (c *Client) RegisterConnection(ctx context.Context, name, dsn string) error {
	if err := c.do(ctx, http.MethodPut, "/connections/"+url.PathEscape(name), connectionBody{DSN: dsn}, nil); err != nil {
		return fmt.Errorf("register connection %s: %w", name, err)
	}
	return nil
}

// UnregisterConnection removes the named connection.
func (c *Client) UnregisterConnection(ctx context.Context, name string) error {
	if err := c.do(ctx, http.MethodDelete, "/connections/"+url.PathEscape(name), nil, nil); err != nil {
		return fmt.Errorf("unregister connection %s: %w", name, err)
	}
	return nil
}

// DefaultConnection returns the default connection name, or "" when none is
// set.
func (c *Client) DefaultConnection(ctx context.Context) (string, error) {
	var body defaultBody
	err := c.do(ctx, http.MethodGet, "/default", nil, &body)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get default connection: %w", err)
	}
	return body.Name, nil
}

// SetDefaultConnection makes name the default connection.
func (c *Client) SetDefaultConnection(ctx context.Context, name string) error {
	if err := c.do(ctx, http.MethodPut, "/default", defaultBody{Name: name}, nil); err != nil {
		return fmt.Errorf("set default connection %s: %w", name, err)
	}
	return nil
}

// Definer reports whether the server has schema support for protocol.
func (c *Client) Definer(ctx context.Context, protocol string) (*DefinerInfo, error) {
	var info DefinerInfo
	if err := c.do(ctx, http.MethodGet, "/definers/"+url.PathEscape(protocol), nil, &info); err != nil {
		return nil, fmt.Errorf("check definer %s: %w", protocol, err)
	}
	return &info, nil
}

// do sends a JSON request and decodes a JSON response into out when out is
// non-nil. Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.Endpoint+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return parseServerError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parseServerError extracts error code and message from server response.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode}

	var se serverError
	if err := json.Unmarshal(body, &se); err == nil && se.Error != "" {
		apiErr.Code = se.Error
		apiErr.Message = se.Message
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}
