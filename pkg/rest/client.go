// Package rest is the typed client for the storefront REST API: account
// registration and login, product catalog reads, and order submission.
package rest

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

	"github.com/cexll/storefront-go/pkg/catalog"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxBodyBytes = int64(1 << 20) // 1 MiB
)

// ErrInvalidBaseURL indicates the configured API base URL is empty or
// unparsable.
var ErrInvalidBaseURL = errors.New("rest: invalid base url")

type operationKey struct{}

func operationFromContext(ctx context.Context) string {
	if op, ok := ctx.Value(operationKey{}).(string); ok && op != "" {
		return op
	}
	return "request"
}

// Client talks to the storefront API. Construct it with New; the zero value
// is not usable.
type Client struct {
	baseURL      *url.URL
	httpClient   *http.Client
	transport    RoundTripFunc
	maxBodyBytes int64
}

// Option customizes a Client.
type Option func(*clientConfig)

type clientConfig struct {
	httpClient   *http.Client
	timeout      time.Duration
	tokenSource  TokenSource
	interceptors []Interceptor
	maxBodyBytes int64
}

// WithHTTPClient swaps the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(cfg *clientConfig) {
		if hc != nil {
			cfg.httpClient = hc
		}
	}
}

// WithTimeout bounds each request. Ignored when WithHTTPClient supplies a
// client of its own.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) {
		if d > 0 {
			cfg.timeout = d
		}
	}
}

// WithTokenSource attaches bearer credentials to every request.
func WithTokenSource(source TokenSource) Option {
	return func(cfg *clientConfig) { cfg.tokenSource = source }
}

// WithInterceptor appends a custom interceptor to the chain.
func WithInterceptor(in Interceptor) Option {
	return func(cfg *clientConfig) {
		if in != nil {
			cfg.interceptors = append(cfg.interceptors, in)
		}
	}
}

// New builds a client rooted at baseURL, e.g. "http://localhost:8000/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, ErrInvalidBaseURL
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	cfg := &clientConfig{timeout: defaultTimeout, maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(cfg)
	}
	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.timeout}
	}

	interceptors := []Interceptor{telemetryInterceptor(), requestIDInterceptor()}
	if cfg.tokenSource != nil {
		interceptors = append(interceptors, authInterceptor(cfg.tokenSource))
	}
	interceptors = append(interceptors, cfg.interceptors...)

	c := &Client{
		baseURL:      parsed,
		httpClient:   httpClient,
		maxBodyBytes: cfg.maxBodyBytes,
	}
	c.transport = chain(httpClient.Do, interceptors)
	return c, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, reg Registration) (RegisterResult, error) {
	var result RegisterResult
	err := c.do(ctx, "register", http.MethodPost, "/users/register", nil, reg, &result)
	return result, err
}

// Login exchanges email/password credentials for a session.
func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResult, error) {
	var result AuthResult
	err := c.do(ctx, "login", http.MethodPost, "/users/login", nil, creds, &result)
	return result, err
}

// GoogleLogin exchanges a Google ID token for a session. The response shape
// matches Login.
func (c *Client) GoogleLogin(ctx context.Context, idToken string) (AuthResult, error) {
	var result AuthResult
	body := map[string]string{"token": idToken}
	err := c.do(ctx, "google_login", http.MethodPost, "/users/google-login", nil, body, &result)
	return result, err
}

// Profile fetches the account profile for userID.
func (c *Client) Profile(ctx context.Context, userID catalog.ID) (Profile, error) {
	var result Profile
	err := c.do(ctx, "get_profile", http.MethodGet, "/users/profile/"+url.PathEscape(userID.String()), nil, nil, &result)
	return result, err
}

// UpdateProfile replaces the editable profile fields for userID. Email is
// immutable server-side regardless of the submitted value.
func (c *Client) UpdateProfile(ctx context.Context, userID catalog.ID, profile Profile) error {
	return c.do(ctx, "update_profile", http.MethodPut, "/users/profile/"+url.PathEscape(userID.String()), nil, profile, nil)
}

// Products lists the catalog, optionally filtered to one category.
func (c *Client) Products(ctx context.Context, category string) ([]catalog.Product, error) {
	var query url.Values
	if strings.TrimSpace(category) != "" {
		query = url.Values{"category": []string{category}}
	}
	var result []catalog.Product
	err := c.do(ctx, "list_products", http.MethodGet, "/products", query, nil, &result)
	return result, err
}

// Categories lists the known category names.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var result []string
	err := c.do(ctx, "list_categories", http.MethodGet, "/categories", nil, nil, &result)
	return result, err
}

// CreateOrder submits an order built from the current cart.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (OrderSummary, error) {
	var result OrderSummary
	err := c.do(ctx, "create_order", http.MethodPost, "/orders", nil, req, &result)
	return result, err
}

// UserOrders lists the order history for userID, newest first.
func (c *Client) UserOrders(ctx context.Context, userID catalog.ID) ([]Order, error) {
	var result []Order
	err := c.do(ctx, "list_orders", http.MethodGet, "/orders/user/"+url.PathEscape(userID.String()), nil, nil, &result)
	return result, err
}

// Order fetches a single order with its line items.
func (c *Client) Order(ctx context.Context, orderID catalog.ID) (Order, error) {
	var result Order
	err := c.do(ctx, "get_order", http.MethodGet, "/orders/"+url.PathEscape(orderID.String()), nil, nil, &result)
	return result, err
}

// CancelOrder cancels a pending order. The API rejects orders in any other
// status and its message is surfaced verbatim.
func (c *Client) CancelOrder(ctx context.Context, orderID catalog.ID) error {
	return c.do(ctx, "cancel_order", http.MethodPut, "/orders/"+url.PathEscape(orderID.String())+"/cancel", nil, nil, nil)
}

func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, body, out any) error {
	target := *c.baseURL
	target.Path = strings.TrimRight(target.Path, "/") + path
	if query != nil {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("rest: encode %s request: %w", operation, err)
		}
		reader = bytes.NewReader(payload)
	}

	ctx = context.WithValue(ctx, operationKey{}, operation)
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("rest: build %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.transport(req)
	if err != nil {
		return fmt.Errorf("rest: %s: %w", operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		return fmt.Errorf("rest: read %s response: %w", operation, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data, resp.StatusCode)}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("rest: decode %s response: %w", operation, err)
	}
	return nil
}

// errorMessage extracts the server's {"error": "..."} text, falling back to
// a generic message when the body carries none.
func errorMessage(body []byte, status int) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := strings.TrimSpace(payload.Error); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("request failed with status %d", status)
}
