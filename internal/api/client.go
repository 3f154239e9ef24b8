// Package api is the HTTP client for the admin REST API.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/rileyhilliard/adminctl/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// HTTPClient is the subset of *http.Client the API client needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   string
	// Timeout applies when HTTPClient is nil. Zero means no timeout.
	Timeout time.Duration
	// RateLimit is the steady request rate per second. Zero disables limiting.
	RateLimit float64
	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient HTTPClient
	UserAgent  string
	Logger     *zerolog.Logger
}

// Client talks to the admin API. It is safe for concurrent use.
type Client struct {
	http      HTTPClient
	log       zerolog.Logger
	baseURL   string
	token     string
	userAgent string
	limiter   *rate.Limiter
}

// NewClient builds a Client from opts.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimSuffix(opts.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", opts.BaseURL)
	}

	c := &Client{
		http:      opts.HTTPClient,
		baseURL:   base,
		token:     opts.Token,
		userAgent: opts.UserAgent,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: opts.Timeout}
	}
	if c.userAgent == "" {
		c.userAgent = "adminctl"
	}
	if opts.Logger != nil {
		c.log = *opts.Logger
	} else {
		c.log = logger.Zerolog("api")
	}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c, nil
}

// BaseURL returns the URL every endpoint path is joined to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) endpoint(segments ...string) (string, error) {
	return url.JoinPath(c.baseURL, segments...)
}

// do sends a request and decodes a 2xx JSON body into out. Failures are
// wrapped with ErrUnavailable or ErrRequest; cancellation is returned as
// the context's own error.
func (c *Client) do(ctx context.Context, method string, query url.Values, body, out any, segments ...string) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("rate limit: %w: %w", err, ErrUnavailable)
		}
	}

	reqURL, err := c.endpoint(segments...)
	if err != nil {
		return fmt.Errorf("failed building request url: %w: %w", err, ErrRequest)
	}
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed encoding request body: %w: %w", err, ErrRequest)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("failed creating request: %w: %w", err, ErrRequest)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", err, ErrUnavailable)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: res.StatusCode, Status: res.Status}
		var eb errorBody
		if raw, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10)); len(raw) > 0 {
			if json.Unmarshal(raw, &eb) == nil {
				statusErr.Message = eb.Error
				if statusErr.Message == "" {
					statusErr.Message = eb.Message
				}
			}
		}

		c.log.Trace().
			Str("method", method).
			Str("request_url", reqURL).
			Int("response_status", res.StatusCode).
			Msg("Request failed")

		return fmt.Errorf("%w: %w", statusErr, classify(res.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(res.Body, maxResponseBytes)).Decode(out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("failed decoding response: %w: %w", err, ErrUnavailable)
	}
	return nil
}

// classify maps a non-2xx status to a sentinel.
func classify(status int) error {
	switch {
	case status == http.StatusRequestTimeout,
		status == http.StatusTooManyRequests,
		status >= 500:
		return ErrUnavailable
	default:
		return ErrRequest
	}
}

func unsuccessful(msg string) error {
	if msg == "" {
		msg = "unsuccessful response"
	}
	return fmt.Errorf("%s: %w", msg, ErrUnavailable)
}

// Metrics fetches the current dashboard metrics snapshot.
func (c *Client) Metrics(ctx context.Context) (*MetricsSnapshot, error) {
	var env metricsEnvelope
	if err := c.do(ctx, http.MethodGet, nil, nil, &env, "metrics"); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("metrics: %w", unsuccessful(env.Error))
	}
	if env.Data == nil || env.Data.Metrics == nil {
		return nil, fmt.Errorf("metrics: response missing data: %w", ErrUnavailable)
	}

	snapshot := env.Data.Metrics
	if len(snapshot.RecentActivity) > MaxRecentActivity {
		snapshot.RecentActivity = snapshot.RecentActivity[:MaxRecentActivity]
	}
	return snapshot, nil
}

// ListUsers fetches one page of users.
func (c *Client) ListUsers(ctx context.Context, p Pagination, f Filters) (*Page[User], error) {
	return list[User](ctx, c, ResourceUsers, p, f)
}

// ListOrganizations fetches one page of organizations.
func (c *Client) ListOrganizations(ctx context.Context, p Pagination, f Filters) (*Page[Organization], error) {
	return list[Organization](ctx, c, ResourceOrganizations, p, f)
}

func listQuery(p Pagination, f Filters) url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	if p.Order != "" {
		q.Set("order", p.Order)
	}
	for k, v := range f {
		if k != "" && v != "" {
			q.Set(k, v)
		}
	}
	return q
}

func list[T any](ctx context.Context, c *Client, resource string, p Pagination, f Filters) (*Page[T], error) {
	var env listEnvelope[T]
	if err := c.do(ctx, http.MethodGet, listQuery(p, f), nil, &env, resource); err != nil {
		return nil, fmt.Errorf("list %s: %w", resource, err)
	}
	if !env.Success {
		return nil, fmt.Errorf("list %s: %w", resource, unsuccessful(env.Error))
	}

	page := &Page[T]{
		Items: env.Data,
		Total: len(env.Data),
		Page:  p.Page,
		Limit: p.Limit,
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	if env.Metadata != nil {
		page.Total = env.Metadata.Total
		if env.Metadata.Page > 0 {
			page.Page = env.Metadata.Page
		}
		if env.Metadata.Limit > 0 {
			page.Limit = env.Metadata.Limit
		}
	}
	return page, nil
}

func (c *Client) mutate(ctx context.Context, method string, body any, segments ...string) (*BulkResult, error) {
	var env mutationEnvelope
	if err := c.do(ctx, method, nil, body, &env, segments...); err != nil {
		return nil, err
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "unsuccessful response"
		}
		return nil, fmt.Errorf("%s: %w", msg, ErrRequest)
	}
	if env.Data == nil {
		return &BulkResult{}, nil
	}
	return env.Data, nil
}

// Update applies arbitrary field changes to one resource.
func (c *Client) Update(ctx context.Context, resource, id string, fields map[string]any) error {
	if id == "" {
		return fmt.Errorf("update %s: id is required: %w", resource, ErrRequest)
	}
	if _, err := c.mutate(ctx, http.MethodPatch, fields, resource, id); err != nil {
		return fmt.Errorf("update %s %s: %w", resource, id, err)
	}
	return nil
}

// Suspend suspends one resource. reason is optional.
func (c *Client) Suspend(ctx context.Context, resource, id, reason string) error {
	body := map[string]any{"suspend": true}
	if reason != "" {
		body["reason"] = reason
	}
	return c.Update(ctx, resource, id, body)
}

// Activate reactivates one resource.
func (c *Client) Activate(ctx context.Context, resource, id string) error {
	return c.Update(ctx, resource, id, map[string]any{"activate": true})
}

// Delete removes one resource.
func (c *Client) Delete(ctx context.Context, resource, id string) error {
	if id == "" {
		return fmt.Errorf("delete %s: id is required: %w", resource, ErrRequest)
	}
	if _, err := c.mutate(ctx, http.MethodDelete, nil, resource, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", resource, id, err)
	}
	return nil
}

// BulkIDKey returns the request field that carries ids for resource.
func BulkIDKey(resource string) string {
	if resource == ResourceOrganizations {
		return "organizationIds"
	}
	return "userIds"
}

// Bulk applies action to every id. extra is merged into the request body.
func (c *Client) Bulk(ctx context.Context, resource, action string, ids []string, extra map[string]any) (*BulkResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("bulk %s: no ids given: %w", action, ErrRequest)
	}
	body := make(map[string]any, len(extra)+2)
	for k, v := range extra {
		body[k] = v
	}
	body["action"] = action
	body[BulkIDKey(resource)] = ids

	result, err := c.mutate(ctx, http.MethodPost, body, resource, "bulk")
	if err != nil {
		return nil, fmt.Errorf("bulk %s %s: %w", action, resource, err)
	}
	return result, nil
}
