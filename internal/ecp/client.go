package ecp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/muurk/rokuctl/internal/logging"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 5 * time.Second

	// DefaultMaxRetries is the default number of retries. A search with
	// launch=true is not idempotent, so nothing is retried unless asked.
	DefaultMaxRetries = 0

	// DefaultRetryDelay is the default delay between retry attempts
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 5 * time.Second

	// maxErrorBody caps how much of an error response is kept
	maxErrorBody = 512
)

// Client sends External Control Protocol commands to a Roku
type Client struct {
	// BaseURL is the device location (e.g., "http://192.168.1.50:8060/")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// MaxRetries is the maximum number of retry attempts for failed requests
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay for exponential backoff
	MaxRetryDelay time.Duration

	// UseExponentialBackoff doubles the delay after each attempt
	UseExponentialBackoff bool
}

// NewClient creates a client for a resolved device location
func NewClient(location string) *Client {
	return &Client{
		BaseURL:               location,
		HTTPClient:            &http.Client{Timeout: DefaultTimeout},
		MaxRetries:            DefaultMaxRetries,
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true,
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetRetry configures retry behavior
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

// SearchRequest is a search/browse command
type SearchRequest struct {
	// Keyword is the title to search for
	Keyword string

	// ProviderID restricts the search to one channel (e.g., "12"). Optional.
	ProviderID string

	// Launch starts playback of the best match
	Launch bool

	// MatchAny accepts any content type for the keyword
	MatchAny bool
}

// NewSearchRequest creates a request that launches the best match
func NewSearchRequest(keyword, providerID string) SearchRequest {
	return SearchRequest{
		Keyword:    keyword,
		ProviderID: providerID,
		Launch:     true,
		MatchAny:   true,
	}
}

// Validate checks the request before it is sent
func (r SearchRequest) Validate() error {
	if strings.TrimSpace(r.Keyword) == "" {
		return NewValidationError("keyword must not be empty")
	}
	for _, ch := range r.ProviderID {
		if ch < '0' || ch > '9' {
			return NewValidationError(fmt.Sprintf("provider id %q must be numeric", r.ProviderID))
		}
	}
	return nil
}

// Encode returns the query string. Spaces in the keyword are sent as %20.
func (r SearchRequest) Encode() string {
	var b strings.Builder
	b.WriteString("keyword=")
	b.WriteString(escape(strings.TrimSpace(r.Keyword)))
	if r.ProviderID != "" {
		b.WriteString("&provider-id=")
		b.WriteString(escape(r.ProviderID))
	}
	if r.Launch {
		b.WriteString("&launch=true")
	}
	if r.MatchAny {
		b.WriteString("&match-any=true")
	}
	return b.String()
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Endpoint joins a path onto the device location
func (c *Client) Endpoint(path string) string {
	base := c.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + strings.TrimPrefix(path, "/")
}

// SearchURL returns the full search/browse URL for a request
func (c *Client) SearchURL(req SearchRequest) string {
	return c.Endpoint("search/browse") + "?" + req.Encode()
}

// Search asks the device to search for req.Keyword and, with Launch set,
// start playing the best match
func (c *Client) Search(ctx context.Context, req SearchRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodPost, c.SearchURL(req))
	return err
}

// Ping checks that the location answers. The device serves its UPnP
// description at the location root.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, c.Endpoint(""))
	return err
}

// do performs a request with retries
func (c *Client) do(ctx context.Context, method, target string) ([]byte, error) {
	if c.BaseURL == "" {
		return nil, NewValidationError("no device location")
	}

	var lastErr error
	currentDelay := c.RetryDelay

	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(currentDelay):
			case <-ctx.Done():
				return nil, NewNetworkError("request cancelled", ctx.Err())
			}

			if c.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > c.MaxRetryDelay {
					currentDelay = c.MaxRetryDelay
				}
			}
		}

		body, err := c.attempt(ctx, method, target, attempt+1)
		if err == nil {
			return body, nil
		}

		lastErr = err

		if !IsRetryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

// attempt performs a single request
func (c *Client) attempt(ctx context.Context, method, target string, n int) ([]byte, error) {
	var body io.Reader
	if method == http.MethodPost {
		// Devices want a form body even when it is empty
		body = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid request URL %q: %v", target, err))
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	logging.LogHTTPRequest(method, target, n)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, NewNetworkError(method+" request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewNetworkError("failed to read response body", err)
	}

	logging.LogHTTPResponse(target, resp.StatusCode, data)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		msg := fmt.Sprintf("unexpected status code: %d", resp.StatusCode)
		if text := strings.TrimSpace(string(data)); text != "" {
			msg += ": " + text
		}
		return nil, NewHTTPError(resp.StatusCode, msg)
	}

	return data, nil
}
