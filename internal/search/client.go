// Package search resolves free text to candidate image URLs using
// DuckDuckGo image search.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/lepinkainen/eikon/internal/errors"
)

const defaultBaseURL = "https://duckduckgo.com"

// vqdPattern matches the request token embedded in the search page. The
// image endpoint rejects requests without it.
var vqdPattern = regexp.MustCompile(`vqd=['"]?([\d-]+)`)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client queries DuckDuckGo image search. Searches are a two-step
// exchange: the regular search page hands out a vqd token, which the
// image endpoint then requires alongside the query.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	userAgent  string
}

// NewClient creates a new image search client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithBaseURL sets a custom base URL for the search provider.
func WithBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithUserAgent sets the User-Agent header sent with search requests.
func WithUserAgent(userAgent string) Option {
	return func(client *Client) {
		if userAgent != "" {
			client.userAgent = userAgent
		}
	}
}

type imageResult struct {
	Image string `json:"image"`
}

type imageResponse struct {
	Results []imageResult `json:"results"`
}

// FirstImage returns the image URL of the first search result for the
// query, or an empty string when the provider has no results. The query
// is cleaned before searching and moderate safe search is always
// requested.
func (c *Client) FirstImage(ctx context.Context, query string) (string, error) {
	clean := CleanQuery(query)
	slog.Info("Searching for image", "query", clean)

	vqd, err := c.fetchVQD(ctx, clean)
	if err != nil {
		return "", err
	}

	results, err := c.fetchResults(ctx, clean, vqd)
	if err != nil {
		return "", err
	}

	for _, result := range results {
		if result.Image != "" {
			slog.Info("Found image", "query", clean, "url", result.Image)
			return result.Image, nil
		}
	}

	slog.Warn("No image found", "query", clean)
	return "", nil
}

// fetchVQD loads the search page to obtain the request token.
func (c *Client) fetchVQD(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		return "", err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.NewNetworkError(fmt.Sprintf("search page request failed: %v", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.NewNetworkStatusError("unexpected search page status", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", errors.NewNetworkError(fmt.Sprintf("failed to read search page: %v", err))
	}

	match := vqdPattern.FindSubmatch(body)
	if match == nil {
		return "", errors.NewNetworkError("no vqd token in search page")
	}

	return string(match[1]), nil
}

// fetchResults calls the image endpoint and returns the raw result list.
func (c *Client) fetchResults(ctx context.Context, query, vqd string) ([]imageResult, error) {
	params := url.Values{}
	params.Set("l", "us-en")
	params.Set("o", "json")
	params.Set("q", query)
	params.Set("vqd", vqd)
	params.Set("f", ",,,")
	params.Set("p", "1") // moderate safe search

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/i.js?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	req.Header.Set("Referer", c.baseURL+"/")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError(fmt.Sprintf("image search request failed: %v", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewNetworkStatusError("unexpected image search status", resp.StatusCode)
	}

	var payload imageResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.NewNetworkError(fmt.Sprintf("failed to decode image results: %v", err))
	}

	return payload.Results, nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

// SearchURL returns the web address of the image search for a query,
// suitable for the run report.
func SearchURL(query string) string {
	return fmt.Sprintf("%s/?q=%s&t=h_&iar=images&iax=images&ia=images", defaultBaseURL, url.QueryEscape(query))
}
