package gsearch

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestRedditPostsFiltersToPostURLs(t *testing.T) {
	var gotQuery string
	client := New(Options{
		APIKey:   "key",
		EngineID: "cx",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			gotQuery = r.URL.Query().Get("q")
			return jsonResponse(200, `{"items":[
				{"title":"thread","link":"https://www.reddit.com/r/BuyItForLife/comments/abc/post/"},
				{"title":"wiki","link":"https://www.reddit.com/r/BuyItForLife/wiki/index"},
				{"title":"other","link":"https://example.com/reddit"}
			]}`), nil
		})},
	})

	urls, err := client.RedditPosts(context.Background(), "best t-shirts", 5)
	if err != nil {
		t.Fatalf("RedditPosts: %v", err)
	}
	if gotQuery != "best t-shirts site:reddit.com" {
		t.Fatalf("query = %q", gotQuery)
	}
	if len(urls) != 1 || !strings.Contains(urls[0], "/comments/abc/") {
		t.Fatalf("urls = %v", urls)
	}
}

func TestRedditPostsUnconfigured(t *testing.T) {
	client := New(Options{})
	urls, err := client.RedditPosts(context.Background(), "anything", 5)
	if err != nil || urls != nil {
		t.Fatalf("unconfigured client should return nothing, got %v/%v", urls, err)
	}
}

func TestProductLinksFiltersAndDedupes(t *testing.T) {
	client := New(Options{
		APIKey:   "key",
		EngineID: "cx",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(200, `{"items":[
				{"title":"a","link":"https://www.amazon.com/dp/B01"},
				{"title":"a2","link":"https://www.amazon.com/dp/B02"},
				{"title":"spam","link":"https://sketchy.example/deal"},
				{"title":"b","link":"https://www.bestbuy.com/site/p/123"}
			]}`), nil
		})},
	})

	links := client.ProductLinks(context.Background(), "rocket skates", 3)
	if len(links) != 2 {
		t.Fatalf("links = %v, want one amazon and one bestbuy", links)
	}
	if !strings.Contains(links[0], "amazon.com") || !strings.Contains(links[1], "bestbuy.com") {
		t.Fatalf("links = %v", links)
	}
}

func TestProductLinksFallbackWhenUnconfigured(t *testing.T) {
	client := New(Options{})
	links := client.ProductLinks(context.Background(), "rocket skates", 3)
	if len(links) != 3 {
		t.Fatalf("fallback links = %v", links)
	}
	if !strings.Contains(links[0], "amazon.com/s?k=rocket+skates") {
		t.Fatalf("fallback link = %q", links[0])
	}
}

func TestProductLinksFallbackOnAPIError(t *testing.T) {
	client := New(Options{
		APIKey:   "key",
		EngineID: "cx",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(500, `{}`), nil
		})},
	})

	links := client.ProductLinks(context.Background(), "rocket skates", 3)
	if len(links) != 3 || !strings.Contains(links[0], "amazon.com/s?k=") {
		t.Fatalf("expected fallback links, got %v", links)
	}
}

func TestWebResults(t *testing.T) {
	client := New(Options{
		APIKey:   "key",
		EngineID: "cx",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if got := r.URL.Query().Get("num"); got != "5" {
				t.Fatalf("num = %q, want 5", got)
			}
			return jsonResponse(200, `{"items":[{"title":"t","link":"https://example.com","snippet":"s"}]}`), nil
		})},
	})

	results, err := client.WebResults(context.Background(), "acme rockets", 5)
	if err != nil {
		t.Fatalf("WebResults: %v", err)
	}
	if len(results) != 1 || results[0].Link != "https://example.com" {
		t.Fatalf("results = %+v", results)
	}
}
