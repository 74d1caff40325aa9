// Package graphql talks to a GraphQL endpoint over fasthttp and walks
// cursor-paginated queries.
package graphql

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
)

// EndpointPath is appended to the base URL.
const EndpointPath = "/v3/graphql"

type (
	// Request is the POST body of one GraphQL call.
	Request struct {
		Query     string    `json:"query"`
		Variables Variables `json:"variables"`
	}

	// Variables are the pagination and filter variables shared by all queries.
	Variables struct {
		Limit  int    `json:"limit"`
		After  *int64 `json:"after,omitempty"`
		Filter any    `json:"filter"`
	}

	// PageInfo is reported under extensions.pageInfo.
	PageInfo struct {
		HasNextPage bool  `json:"hasNextPage"`
		LastID      int64 `json:"lastId"`
		TotalCount  int   `json:"totalCount"`
	}

	// Error is one entry of the top-level errors list.
	Error struct {
		Message    string         `json:"message"`
		Path       []any          `json:"path,omitempty"`
		Extensions map[string]any `json:"extensions,omitempty"`
	}

	// Response is a decoded GraphQL response; data is kept raw per entity.
	Response struct {
		Data       map[string]json.RawMessage `json:"data"`
		Extensions struct {
			PageInfo PageInfo `json:"pageInfo"`
		} `json:"extensions"`
		Errors []Error `json:"errors"`
	}
)

// Records returns the raw items listed under entity. A missing or null
// entity yields no records.
func (r *Response) Records(entity string) ([]json.RawMessage, error) {
	raw, ok := r.Data[entity]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", entity, err)
	}
	return items, nil
}

// Fetcher executes one GraphQL request.
//
//go:generate mockgen -destination=mocks/mock_fetcher.go -source=client.go Fetcher
type Fetcher interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// Client is a Fetcher backed by fasthttp.
type Client struct {
	http     *fasthttp.Client
	endpoint string
	token    string
	timeout  time.Duration
}

var _ Fetcher = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithTimeout bounds every request. Zero disables the client-side bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithDial replaces the dialer, e.g. with an in-memory listener.
func WithDial(dial func(addr string) (net.Conn, error)) Option {
	return func(c *Client) { c.http.Dial = dial }
}

// NewClient returns a client for baseURL authenticated with a Bearer token.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		http: &fasthttp.Client{
			Name:                "goszakup-report",
			MaxIdleConnDuration: 90 * time.Second,
			ReadBufferSize:      64 * 1024,
		},
		endpoint: strings.TrimRight(baseURL, "/") + EndpointPath,
		token:    token,
		timeout:  60 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do posts req and decodes the response. When the response carries an
// errors list the decoded response is returned together with an *APIError.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{Err: err}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(httpReq)
	httpResp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(httpResp)

	httpReq.SetRequestURI(c.endpoint)
	httpReq.Header.SetMethod(fasthttp.MethodPost)
	httpReq.Header.SetContentType("application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.SetBody(body)

	if err := c.http.DoDeadline(httpReq, httpResp, c.deadline(ctx)); err != nil {
		return nil, &TransportError{Err: err}
	}

	status := httpResp.StatusCode()
	var resp Response
	decodeErr := json.Unmarshal(httpResp.Body(), &resp)
	if decodeErr != nil || (status >= 300 && resp.Errors == nil) {
		te := &TransportError{StatusCode: status, Body: snippet(httpResp.Body())}
		if decodeErr != nil {
			te.Err = fmt.Errorf("decode response: %w", decodeErr)
		}
		return nil, te
	}
	if resp.Errors != nil {
		return &resp, &APIError{Errors: resp.Errors}
	}
	return &resp, nil
}

func (c *Client) deadline(ctx context.Context) time.Time {
	var d time.Time
	if c.timeout > 0 {
		d = time.Now().Add(c.timeout)
	}
	if ctxDeadline, ok := ctx.Deadline(); ok && (d.IsZero() || ctxDeadline.Before(d)) {
		d = ctxDeadline
	}
	if d.IsZero() {
		// fasthttp needs a deadline; a day is effectively unbounded here.
		d = time.Now().Add(24 * time.Hour)
	}
	return d
}

func snippet(b []byte) string {
	const max = 512
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
