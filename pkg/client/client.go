// Package client provides a Go client for the kontocheck API.
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

	"github.com/google/uuid"
)

// Client is a kontocheck API client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// New creates a new kontocheck client
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Request asks for one account number to be validated.
type Request struct {
	Method  string `json:"method"`
	Account string `json:"account"`
	Bank    string `json:"bank,omitempty"`
}

// Result is the outcome of one validation. Alternative is nil for
// methods without alternatives.
type Result struct {
	Method      string `json:"method"`
	Account     string `json:"account"`
	Bank        string `json:"bank,omitempty"`
	Valid       bool   `json:"valid"`
	Outcome     string `json:"outcome"`
	Alternative *int   `json:"alternative,omitempty"`
	Exception   bool   `json:"exception"`
}

// BatchResult holds either a Result or the error for that item.
type BatchResult struct {
	*Result
	Error *APIError `json:"error,omitempty"`
}

// Method describes a registered check-digit method.
type Method struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
}

// Check is a validation log entry.
type Check struct {
	ID          string    `json:"id"`
	Method      string    `json:"method"`
	Account     string    `json:"account"`
	Valid       bool      `json:"valid"`
	Outcome     string    `json:"outcome"`
	Alternative *int      `json:"alternative,omitempty"`
	KeyID       string    `json:"keyId,omitempty"`
	RequestID   string    `json:"requestId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ListChecksOptions filters and pages the validation log.
type ListChecksOptions struct {
	Method string
	Limit  int
	Cursor string
}

// ListChecksResponse is one page of the validation log
type ListChecksResponse struct {
	Data       []Check    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Pagination contains pagination info
type Pagination struct {
	Limit      int    `json:"limit"`
	HasMore    bool   `json:"hasMore"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// APIError represents an API error response
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsNotFound reports whether err is an API error with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Validate validates one account number
func (c *Client) Validate(ctx context.Context, req Request) (*Result, error) {
	var resp Result
	if err := c.post(ctx, "/api/v1/validate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ValidateBatch validates several account numbers in one request. Results
// are in request order.
func (c *Client) ValidateBatch(ctx context.Context, reqs []Request) ([]BatchResult, error) {
	var resp struct {
		Results []BatchResult `json:"results"`
	}
	body := struct {
		Items []Request `json:"items"`
	}{Items: reqs}
	if err := c.post(ctx, "/api/v1/validate/batch", body, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// ListMethods lists the registered methods
func (c *Client) ListMethods(ctx context.Context) ([]Method, error) {
	var resp struct {
		Data []Method `json:"data"`
	}
	if err := c.get(ctx, "/api/v1/methods", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetMethod describes one method
func (c *Client) GetMethod(ctx context.Context, code string) (*Method, error) {
	var resp Method
	if err := c.get(ctx, "/api/v1/methods/"+url.PathEscape(code), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListChecks returns a page of the validation log, newest first
func (c *Client) ListChecks(ctx context.Context, opts ListChecksOptions) (*ListChecksResponse, error) {
	q := url.Values{}
	if opts.Method != "" {
		q.Set("method", opts.Method)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		q.Set("cursor", opts.Cursor)
	}
	path := "/api/v1/checks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListChecksResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ping checks that the server is up
func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, "/health", nil)
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	return c.do(req, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.parseError(resp)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
}

func (c *Client) parseError(resp *http.Response) error {
	var errResp struct {
		Error APIError `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Error.Code == "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       "HTTP_" + strconv.Itoa(resp.StatusCode),
			Message:    resp.Status,
		}
	}
	errResp.Error.StatusCode = resp.StatusCode
	return &errResp.Error
}
