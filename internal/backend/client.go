package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nao1215/flixsearch/internal/model"
	"github.com/nao1215/flixsearch/internal/transport"
	"golang.org/x/time/rate"
)

// DefaultMaxBodySize caps the size of a search response body.
const DefaultMaxBodySize int64 = 10 * 1024 * 1024

// Client queries h5ai servers.
type Client struct {
	// client performs the HTTP requests. Its Timeout bounds a single query.
	client *http.Client

	// userAgent is set on every request that does not carry one already.
	userAgent string

	// maxBodySize limits how much of a response is read.
	maxBodySize int64

	// limiter throttles outbound requests over all servers.
	limiter *rate.Limiter

	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client, usually built by transport.NewHTTPClient.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.client = c
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size in bytes.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithRateLimit limits outbound requests to rps per second.
// Zero or a negative value disables the limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
		}
	}
}

// WithLogger sets the logger used for failed queries.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		client:      &http.Client{Timeout: transport.DefaultTimeout},
		userAgent:   transport.DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		limiter:     rate.NewLimiter(rate.Inf, 0),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Search sends the search request for pattern to server and returns the
// allowed files in the order the server listed them.
func (c *Client) Search(ctx context.Context, server model.Server, pattern string) ([]*model.ResultItem, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(model.NewSearchRequest(server, pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, server.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range server.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, c.maxBodySize)
	}

	return parseSearchResponse(server, body)
}

// Query runs Search and contains every failure in the returned Outcome.
// Failures are logged at WARN with the server name.
func (c *Client) Query(ctx context.Context, server model.Server, pattern string) (outcome model.Outcome) {
	start := time.Now()
	outcome = model.Outcome{Server: server.Name, Items: []*model.ResultItem{}}

	defer func() {
		if r := recover(); r != nil {
			outcome.Items = []*model.ResultItem{}
			outcome.Err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
		outcome.Elapsed = time.Since(start)

		if outcome.Err != nil {
			c.logger.Warn("server query failed",
				"server", server.Name,
				"elapsed", outcome.Elapsed,
				"error", outcome.Err,
			)
			return
		}
		c.logger.Debug("server query completed",
			"server", server.Name,
			"items", len(outcome.Items),
			"elapsed", outcome.Elapsed,
		)
	}()

	items, err := c.Search(ctx, server, pattern)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Items = items
	return outcome
}
