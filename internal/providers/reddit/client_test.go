package reddit

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

const sampleListing = `[
  {"data": {"children": [{"kind": "t3", "data": {
    "id": "abc123",
    "title": "Best t-shirts that last?",
    "selftext": "Looking for durable shirts.",
    "subreddit": "BuyItForLife",
    "author": "shirtfan",
    "url": "https://www.reddit.com/r/BuyItForLife/comments/abc123/best_tshirts/",
    "permalink": "/r/BuyItForLife/comments/abc123/best_tshirts/",
    "score": 412,
    "num_comments": 87,
    "upvote_ratio": 0.97,
    "created_utc": 1717000000
  }}]}},
  {"data": {"children": [
    {"kind": "t1", "data": {"author": "a", "body": "low effort", "score": 2}},
    {"kind": "t1", "data": {"author": "b", "body": "Uniqlo U tees", "score": 150}},
    {"kind": "more", "data": {"count": 12}},
    {"kind": "t1", "data": {"author": "c", "body": "Hanes beefy", "score": 48}}
  ]}}
]`

func TestJSONAPIURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{
			in:   "https://www.reddit.com/r/BuyItForLife/comments/abc123/best_tshirts/",
			want: "https://www.reddit.com/r/BuyItForLife/comments/abc123.json",
		},
		{
			in:   "https://reddit.com/r/gadgets/comments/xyz789",
			want: "https://reddit.com/r/gadgets/comments/xyz789.json",
		},
		{in: "https://www.reddit.com/r/gadgets/", wantErr: true},
		{in: "https://example.com/r/gadgets/comments/abc", wantErr: true},
	}
	for _, tc := range tests {
		got, err := jsonAPIURL(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("jsonAPIURL(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("jsonAPIURL(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("jsonAPIURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPostFromURL(t *testing.T) {
	var gotURL, gotUA string
	client := New(Options{
		UserAgent: "test-agent/1.0",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			gotURL = r.URL.String()
			gotUA = r.Header.Get("User-Agent")
			return &http.Response{
				StatusCode: 200,
				Body:       io.NopCloser(strings.NewReader(sampleListing)),
			}, nil
		})},
	})

	post, err := client.PostFromURL(context.Background(), "https://www.reddit.com/r/BuyItForLife/comments/abc123/best_tshirts/")
	if err != nil {
		t.Fatalf("PostFromURL: %v", err)
	}
	if gotURL != "https://www.reddit.com/r/BuyItForLife/comments/abc123.json" {
		t.Fatalf("fetched %q", gotURL)
	}
	if gotUA != "test-agent/1.0" {
		t.Fatalf("user agent = %q", gotUA)
	}
	if post.ID != "abc123" || post.Subreddit != "BuyItForLife" || post.Score != 412 {
		t.Fatalf("post = %+v", post)
	}
	if len(post.Comments) != 3 {
		t.Fatalf("comments = %d, want 3 (more-children skipped)", len(post.Comments))
	}
	if post.Comments[0].Body != "Uniqlo U tees" {
		t.Fatalf("comments not sorted by score: %+v", post.Comments)
	}
}

func TestPostFromURLRejectsNonPostURL(t *testing.T) {
	client := New(Options{})
	if _, err := client.PostFromURL(context.Background(), "https://www.reddit.com/r/gadgets/"); err == nil {
		t.Fatalf("expected error for non-post url")
	}
}

func TestPostFromURLUpstreamError(t *testing.T) {
	client := New(Options{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: 429, Body: io.NopCloser(strings.NewReader(""))}, nil
		})},
	})
	if _, err := client.PostFromURL(context.Background(), "https://www.reddit.com/r/a/comments/b/"); err == nil {
		t.Fatalf("expected error on upstream 429")
	}
}
