// Package bbapi is a minimal Bitbucket Cloud API client: HTTP Basic auth,
// token-bucket rate limiting with backoff, and the wire shapes this
// repository's Orchestrator needs (pull requests, activity, repositories).
package bbapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/andy-wilson/gatekeeper/internal/pager"
)

const (
	// BaseURL is the Bitbucket Cloud API v2 base URL.
	BaseURL = "https://api.bitbucket.org/2.0"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second
)

// Client is a Bitbucket Cloud API client with built-in rate limiting.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	username    string
	password    string
	rateLimiter *RateLimiter
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) { client.httpClient = c }
}

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(url string) ClientOption {
	return func(client *Client) { client.baseURL = url }
}

// NewClient creates a new Bitbucket API client.
func NewClient(username, password string, rl RateLimiterConfig, opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		baseURL:     BaseURL,
		username:    username,
		password:    password,
		rateLimiter: NewRateLimiter(rl),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the client's configured API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Error represents a Bitbucket API error response body.
type Error struct {
	Type  string `json:"type"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// APIError is returned when the API responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bitbucket API error (status %d): %s", e.StatusCode, e.Message)
}

// Get performs a GET request to a path relative to the base URL.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	return c.doURL(ctx, http.MethodGet, c.baseURL+path, nil)
}

// wirePage is the envelope every Bitbucket paginated endpoint returns.
type wirePage[T any] struct {
	Values []T    `json:"values"`
	Next   string `json:"next"`
}

// fetchPage decodes one page of T at an absolute URL.
// It is a standalone function, not a method, because Go methods cannot
// carry their own type parameters.
func fetchPage[T any](ctx context.Context, c *Client, url string) (pager.Page[T], error) {
	body, err := c.doURL(ctx, http.MethodGet, url, nil)
	if err != nil {
		return pager.Page[T]{}, err
	}

	var wp wirePage[T]
	if err := json.Unmarshal(body, &wp); err != nil {
		return pager.Page[T]{}, fmt.Errorf("decoding page: %w", err)
	}

	return pager.Page[T]{Values: wp.Values, Next: wp.Next}, nil
}

// getAllPages walks every page of a paginated endpoint starting at path
// (relative to the base URL) and returns the concatenated values.
func getAllPages[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	return getAllPagesFromURL[T](ctx, c, c.baseURL+path)
}

// getAllPagesFromURL is like getAllPages but takes an absolute first-page
// URL, for endpoints reached via a hypermedia link rather than a path this
// client constructs itself (e.g. a pull request's activity link).
func getAllPagesFromURL[T any](ctx context.Context, c *Client, url string) ([]T, error) {
	return pager.FetchAll(url, func(u string) (pager.Page[T], error) {
		return fetchPage[T](ctx, c, u)
	})
}

// doURL performs an HTTP request against an absolute URL, applying rate
// limiting and 429 retry/backoff.
func (c *Client) doURL(ctx context.Context, method, fullURL string, body io.Reader) ([]byte, error) {
	for {
		c.rateLimiter.Wait()

		req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.SetBasicAuth(c.username, c.password)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing request to %s: %w", fullURL, err)
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response from %s: %w", fullURL, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			backoff, shouldRetry := c.rateLimiter.OnRateLimited()
			if !shouldRetry {
				return nil, &APIError{StatusCode: resp.StatusCode, Message: "rate limit exceeded, max retries reached"}
			}
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if seconds, err := strconv.Atoi(retryAfter); err == nil {
					backoff = time.Duration(seconds) * time.Second
				}
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}

		if resp.StatusCode >= 400 {
			var apiErr Error
			if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
				return nil, &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error.Message}
			}
			return nil, &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
		}

		c.rateLimiter.OnSuccess()
		return respBody, nil
	}
}
