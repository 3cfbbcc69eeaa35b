// Package gsearch wraps the Google Custom Search API for the two discovery
// passes: finding Reddit threads for a query, and finding product or
// reference links for extracted terms. An unconfigured client degrades to
// retailer search links instead of failing the request.
package gsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"server/internal/providers/reddit"
)

const (
	defaultTimeout = 15 * time.Second
	apiMaxResults  = 10
)

// productDomains are the e-commerce and review sites product links are
// filtered to.
var productDomains = map[string]struct{}{
	"amazon.com":       {},
	"bestbuy.com":      {},
	"target.com":       {},
	"walmart.com":      {},
	"newegg.com":       {},
	"ebay.com":         {},
	"wirecutter.com":   {},
	"cnet.com":         {},
	"techradar.com":    {},
	"pcmag.com":        {},
	"tomsguide.com":    {},
	"tomshardware.com": {},
}

type Options struct {
	APIKey     string
	EngineID   string
	BaseURL    string
	HTTPClient *http.Client
}

type Client struct {
	apiKey   string
	engineID string
	baseURL  string
	client   *http.Client
}

// Result is one raw search hit.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/customsearch/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		apiKey:   opts.APIKey,
		engineID: opts.EngineID,
		baseURL:  baseURL,
		client:   client,
	}
}

// Configured reports whether API credentials are present.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.engineID != ""
}

// RedditPosts returns Reddit post URLs for a query, scoped with
// site:reddit.com and filtered to canonical post links. Without credentials
// it returns nothing so callers can fall back.
func (c *Client) RedditPosts(ctx context.Context, query string, n int) ([]string, error) {
	if !c.Configured() {
		return nil, nil
	}
	items, err := c.search(ctx, query+" site:reddit.com", n, "items(title,link)")
	if err != nil {
		return nil, err
	}
	var urls []string
	for _, item := range items {
		if reddit.PostURLPattern.MatchString(item.Link) {
			urls = append(urls, item.Link)
		}
	}
	return urls, nil
}

// WebResults returns raw hits for a term, used for per-term link curation.
func (c *Client) WebResults(ctx context.Context, term string, n int) ([]Result, error) {
	if !c.Configured() {
		return nil, nil
	}
	return c.search(ctx, term, n, "items(title,link,snippet)")
}

// ProductLinks finds shopping and review links for a term, one per domain,
// restricted to the known retail set. When the API is unavailable or comes
// back empty, retailer search URLs stand in.
func (c *Client) ProductLinks(ctx context.Context, term string, max int) []string {
	if !c.Configured() {
		return FallbackLinks(term)
	}
	items, err := c.search(ctx, term+" buy review store price", max*2, "items(title,link,snippet)")
	if err != nil {
		return FallbackLinks(term)
	}

	var links []string
	seen := map[string]struct{}{}
	for _, item := range items {
		domain := hostDomain(item.Link)
		if _, ok := productDomains[domain]; !ok {
			continue
		}
		if _, dup := seen[domain]; dup {
			continue
		}
		seen[domain] = struct{}{}
		links = append(links, item.Link)
		if len(links) >= max {
			break
		}
	}
	if len(links) == 0 {
		return FallbackLinks(term)
	}
	return links
}

// FallbackLinks builds retailer search URLs for a term.
func FallbackLinks(term string) []string {
	encoded := url.QueryEscape(term)
	return []string{
		"https://www.amazon.com/s?k=" + encoded,
		"https://www.bestbuy.com/site/searchpage.jsp?st=" + encoded,
		"https://www.target.com/s?searchTerm=" + encoded,
	}
}

func (c *Client) search(ctx context.Context, query string, n int, fields string) ([]Result, error) {
	if n > apiMaxResults {
		n = apiMaxResults
	}
	if n <= 0 {
		n = 1
	}
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(n))
	params.Set("fields", fields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gsearch: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gsearch: unexpected status %d", resp.StatusCode)
	}

	var out struct {
		Items []Result `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("gsearch: decode response: %w", err)
	}
	return out.Items, nil
}

func hostDomain(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
