package fred

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.stlouisfed.org/fred"

// Client performs raw calls against the FRED REST API. The API key is held
// here and appended only at request time, so it never appears in the
// credential-free request paths used as cache keys.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithAPIKey sets the FRED API key sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// NewClient creates a new FRED API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CategoryChildrenPath returns the credential-free request path for the
// child categories of a category.
func CategoryChildrenPath(categoryID int64) string {
	return fmt.Sprintf("category/children?category_id=%d", categoryID)
}

// CategorySeriesPath returns the credential-free request path for the series
// under a category, capped at limit items.
func CategorySeriesPath(categoryID int64, limit int) string {
	return fmt.Sprintf("category/series?category_id=%d&limit=%d", categoryID, limit)
}

// Get performs a GET for the given request path and returns the response
// body as text. The path must not contain the API key; the key and the JSON
// file type are appended here.
func (c *Client) Get(ctx context.Context, path string) (string, error) {
	url := c.baseURL + "/" + path + "&file_type=json"
	if c.apiKey != "" {
		url += "&api_key=" + c.apiKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response for %s: %w", path, err)
	}
	return string(body), nil
}
