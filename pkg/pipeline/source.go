// Package pipeline ingests paginated JSON from a REST endpoint into DuckDB.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Defaults for the page-number paginator.
const (
	DefaultPageParam = "page"
	DefaultBasePage  = 1
)

// Config declares one REST resource to load.
type Config struct {
	BaseURL   string
	Table     string
	PageParam string // query parameter carrying the page number
	BasePage  int    // first page to request
}

// withDefaults fills unset paginator fields.
func (c Config) withDefaults() Config {
	if c.PageParam == "" {
		c.PageParam = DefaultPageParam
	}
	if c.BasePage == 0 {
		c.BasePage = DefaultBasePage
	}
	return c
}

// Client fetches pages of JSON objects from the configured endpoint.
type Client struct {
	baseURL    string
	pageParam  string
	httpClient *http.Client
}

// NewClient creates a page-fetching client. A nil httpClient falls back
// to http.DefaultClient.
func NewClient(baseURL, pageParam string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		pageParam:  pageParam,
		httpClient: httpClient,
	}
}

// FetchPage requests one page and decodes it as a JSON array of
// objects. An empty array is the caller's stop signal. Any transport,
// status, or decode failure aborts the load; there are no retries.
func (c *Client) FetchPage(ctx context.Context, page int) ([]map[string]any, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set(c.pageParam, strconv.Itoa(page))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("page %d returned status %s", page, resp.Status)
	}

	var rows []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode page %d: %w", page, err)
	}
	return rows, nil
}
