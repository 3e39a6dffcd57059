// Package client is a typed HTTP client for the sales order API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sales-order-backend/internal/models"
	"sales-order-backend/internal/query"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	backoffs   []time.Duration
	maxRetries int

	Orders      *Resource[models.OrderCreateRequest, models.OrderUpdateRequest, models.OrderDto]
	Windows     *Resource[models.WindowCreateRequest, models.WindowUpdateRequest, models.WindowDto]
	SubElements *Resource[models.SubElementCreateRequest, models.SubElementUpdateRequest, models.SubElementDto]
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackoff sets the waits between attempts; the attempt count becomes
// len(backoffs)+1.
func WithBackoff(backoffs ...time.Duration) Option {
	return func(c *Client) {
		c.backoffs = backoffs
		c.maxRetries = len(backoffs) + 1
	}
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:8080/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		backoffs:   []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Orders = &Resource[models.OrderCreateRequest, models.OrderUpdateRequest, models.OrderDto]{client: c, path: "/Orders"}
	c.Windows = &Resource[models.WindowCreateRequest, models.WindowUpdateRequest, models.WindowDto]{client: c, path: "/Windows"}
	c.SubElements = &Resource[models.SubElementCreateRequest, models.SubElementUpdateRequest, models.SubElementDto]{client: c, path: "/SubElements"}
	return c
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
	// Fields is set for validation failures.
	Fields map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("api error: status %d: %s %v", e.StatusCode, e.Message, e.Fields)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// retryable reports whether another attempt may succeed: transport failures
// and 5xx answers are retried, everything else is final.
func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// RetryWithBackoff runs fn up to maxRetries times, sleeping between attempts.
// It stops early on success, on a non-retryable error, or when ctx is done.
func (c *Client) RetryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}

		lastErr = err
		if i == maxRetries-1 || i >= len(c.backoffs) {
			continue
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		case <-time.After(c.backoffs[i]):
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

type envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Message *string         `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}
		return decode(resp.StatusCode, raw, out)
	}

	// POST is not idempotent; a retried create could insert twice.
	if method == http.MethodPost {
		return attempt()
	}
	return c.RetryWithBackoff(ctx, attempt, c.maxRetries)
}

func decode(status int, raw []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if status >= 300 {
			return &APIError{StatusCode: status, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("failed to decode response: %w, body: %s", err, string(raw))
	}

	if status >= 300 || !env.Success {
		apiErr := &APIError{StatusCode: status}
		if env.Message != nil {
			apiErr.Message = *env.Message
		}
		if len(env.Result) > 0 && env.Result[0] == '{' {
			_ = json.Unmarshal(env.Result, &apiErr.Fields)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}
	return nil
}

// Resource is one collection of the API. C and U are the create and update
// payloads, D the DTO the server answers with.
type Resource[C any, U any, D any] struct {
	client *Client
	path   string
}

func (r *Resource[C, U, D]) List(ctx context.Context, d query.Descriptor) (models.PageResult[D], error) {
	var page models.PageResult[D]
	err := r.client.do(ctx, http.MethodGet, r.path+"?"+encodeDescriptor(d), nil, &page)
	return page, err
}

func (r *Resource[C, U, D]) Get(ctx context.Context, id int64) (D, error) {
	var dto D
	err := r.client.do(ctx, http.MethodGet, r.itemPath(id), nil, &dto)
	return dto, err
}

func (r *Resource[C, U, D]) Create(ctx context.Context, req C) (D, error) {
	var dto D
	err := r.client.do(ctx, http.MethodPost, r.path, req, &dto)
	return dto, err
}

func (r *Resource[C, U, D]) Update(ctx context.Context, id int64, req U) (D, error) {
	var dto D
	err := r.client.do(ctx, http.MethodPut, r.itemPath(id), req, &dto)
	return dto, err
}

func (r *Resource[C, U, D]) Delete(ctx context.Context, id int64) (D, error) {
	var dto D
	err := r.client.do(ctx, http.MethodDelete, r.itemPath(id), nil, &dto)
	return dto, err
}

func (r *Resource[C, U, D]) itemPath(id int64) string {
	return r.path + "/" + strconv.FormatInt(id, 10)
}

func encodeDescriptor(d query.Descriptor) string {
	v := url.Values{}
	if d.SearchTerm != "" {
		v.Set("searchTerm", d.SearchTerm)
	}
	if d.SortField != "" {
		v.Set("sortField", d.SortField)
	}
	if d.SortOrder != "" {
		v.Set("sortOrder", d.SortOrder)
	}
	if d.Page > 0 {
		v.Set("page", strconv.Itoa(d.Page))
	}
	if d.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(d.PageSize))
	}
	if d.OrderID != nil {
		v.Set("orderId", strconv.FormatInt(*d.OrderID, 10))
	}
	if d.WindowID != nil {
		v.Set("windowId", strconv.FormatInt(*d.WindowID, 10))
	}
	return v.Encode()
}
