// Package portal talks to the MySchool content portal's global search index
// and implements the candidate fallback strategy on top of it.
package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/corpix/uarand"
	"github.com/klauspost/compress/gzip"

	"github.com/myschoolct/portal-assistant/internal/errors"
)

// maxResponseBytes caps how much of a search response is read.
const maxResponseBytes = 4 << 20

// Searcher runs one query against the search index.
type Searcher interface {
	Search(ctx context.Context, term string, size int) ([]Result, error)
}

// Client is an HTTP client for the portal's global search endpoint.
type Client struct {
	httpClient *http.Client
	apiURL     string
}

// NewClient creates a client for apiURL (e.g. https://portal.myschoolct.com/api/rest/search/global).
func NewClient(apiURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		apiURL: apiURL,
	}
}

// SearchURL builds {apiURL}?query={term}&size={size}.
func (c *Client) SearchURL(term string, size int) (string, error) {
	u, err := url.Parse(c.apiURL)
	if err != nil {
		return "", fmt.Errorf("parse portal api url: %w", err)
	}
	q := u.Query()
	q.Set("query", term)
	q.Set("size", strconv.Itoa(size))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Search performs one GET against the index. Non-2xx responses and
// undecodable bodies are returned as *errors.UpstreamError.
func (c *Client) Search(ctx context.Context, term string, size int) ([]Result, error) {
	target, err := c.SearchURL(term, size)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", uarand.GetRandom())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewUpstreamError("portal", target, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, errors.NewUpstreamError("portal", target, resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	// Accept-Encoding is set explicitly, so the transport leaves gzip to us.
	var body io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, errors.NewUpstreamError("portal", target, resp.StatusCode, fmt.Errorf("failed to decompress gzip: %w", err))
		}
		defer func() { _ = gz.Close() }()
		body = gz
	}

	var payload searchResponse
	if err := json.NewDecoder(io.LimitReader(body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, errors.NewUpstreamError("portal", target, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}

	for i := range payload.Results {
		payload.Results[i].Title = CleanText(payload.Results[i].Title)
	}
	return payload.Results, nil
}
