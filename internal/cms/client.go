// Package cms talks to the headless WordPress GraphQL endpoint that owns
// the blog content.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/kaushiktak19/blog-website/internal/logger"
	"github.com/kaushiktak19/blog-website/internal/metrics"
)

var (
	ErrUnexpectedStatus = errors.New("cms: unexpected status")
	ErrGraphQL          = errors.New("cms: graphql error")
)

const maxResponseBytes = 32 << 20

type Client struct {
	endpoint   string
	httpClient *http.Client
	pageSize   int
	maxRetries uint
	backoff    func() backoff.BackOff
}

type Option func(*Client)

func WithPageSize(n int) Option {
	return func(cl *Client) {
		if n > 0 {
			cl.pageSize = n
		}
	}
}

// WithRetries sets how many attempts a request gets in total.
func WithRetries(n int) Option {
	return func(cl *Client) {
		if n > 0 {
			cl.maxRetries = uint(n)
		}
	}
}

// WithBackOff replaces the exponential retry policy, mostly for tests.
func WithBackOff(f func() backoff.BackOff) Option {
	return func(cl *Client) { cl.backoff = f }
}

func NewClient(endpoint string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		pageSize:   100,
		maxRetries: 3,
		backoff:    newRetryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newRetryBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.Multiplier = 2
	return bo
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// do runs one GraphQL operation and decodes its data into out. Transport
// failures and 5xx responses are retried; everything else is returned as
// is.
func (c *Client) do(ctx context.Context, operation, query string, vars map[string]any, out any) error {
	started := time.Now()
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", operation, err)
	}

	attempt := 0
	data, err := backoff.Retry(ctx, func() (json.RawMessage, error) {
		attempt++
		data, err := c.send(ctx, body)
		if err != nil && attempt > 1 {
			logger.Debug("cms request failed", "operation", operation, "attempt", attempt, "error", err)
		}
		return data, err
	}, backoff.WithBackOff(c.backoff()), backoff.WithMaxTries(c.maxRetries))
	metrics.ObserveCMS(operation, started, err)
	if err != nil {
		return fmt.Errorf("cms %s: %w", operation, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return nil, statusErr
		}
		return nil, backoff.Permanent(statusErr)
	}

	var decoded graphQLResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode envelope: %w", err))
	}
	if len(decoded.Errors) > 0 {
		msgs := make([]string, 0, len(decoded.Errors))
		for _, e := range decoded.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(msgs, "; ")))
	}
	return decoded.Data, nil
}
