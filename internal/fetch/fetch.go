// Package fetch implements the client side of the per-category data endpoint.
// One call issues one request: there is no retry, timeout or caching beyond
// what the caller's context imposes.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/seenimoa/disciplineviz/pkg/models"
)

// DataPath is the path of the per-category data endpoint.
const DataPath = "/api/data"

// DefaultUserAgent is the user agent sent with every request.
const DefaultUserAgent = "disciplineviz/1.0"

// NetworkError is returned when the endpoint cannot be reached or answers
// with a non-2xx status. StatusCode is 0 for transport failures.
type NetworkError struct {
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("network error: %v", e.Err)
	}
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError is returned when the response body is not a JSON array of
// records.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Message collapses a fetch error into the single user-facing string shown
// in the error banner.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "Failed to fetch data"
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Error()
	}
	return err.Error()
}

// Fetcher retrieves the records of one category.
type Fetcher interface {
	Fetch(ctx context.Context, category models.Category) ([]models.Record, error)
}

// Client fetches category records from a data endpoint over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a client for the endpoint rooted at baseURL
// (e.g. "http://localhost:8080").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No Timeout: a fetch is bounded only by the caller's context.
		httpClient: &http.Client{},
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the endpoint root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// URL returns the request URL for category.
func (c *Client) URL(category models.Category) string {
	return c.baseURL + DataPath + "?category=" + url.QueryEscape(string(category))
}

// Fetch requests the records of category. Records are returned in the
// order the endpoint sent them.
func (c *Client) Fetch(ctx context.Context, category models.Category) ([]models.Record, error) {
	body, err := c.doGet(ctx, c.URL(category))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("read body: %w", err)}
	}
	// The whole body must be one JSON array; trailing text is malformed.
	var recs []models.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, &ParseError{Err: err}
	}
	if recs == nil {
		recs = []models.Record{}
	}
	return recs, nil
}

// doGet performs a GET request and returns the body of a 2xx response.
// The caller is responsible for closing the returned ReadCloser.
func (c *Client) doGet(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("GET %s: %w", rawURL, err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &NetworkError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       strings.TrimSpace(string(body)),
		}
	}

	return resp.Body, nil
}
