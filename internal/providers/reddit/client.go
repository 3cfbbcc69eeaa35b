// Package reddit fetches post data through Reddit's public JSON API, which
// needs no OAuth credentials, only a descriptive User-Agent.
package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"server/internal/domain"
)

const defaultTimeout = 10 * time.Second

// PostURLPattern recognizes canonical Reddit post URLs.
var PostURLPattern = regexp.MustCompile(`^https://(?:www\.)?reddit\.com/r/[^/]+/comments/`)

type Options struct {
	UserAgent  string
	HTTPClient *http.Client
}

type Client struct {
	userAgent string
	client    *http.Client
}

func New(opts Options) *Client {
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = "reddit-summarizer/1.0"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{userAgent: ua, client: client}
}

type listing struct {
	Data struct {
		Children []struct {
			Kind string          `json:"kind"`
			Data json.RawMessage `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type postData struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	CreatedUTC  float64 `json:"created_utc"`
}

type commentData struct {
	Author string `json:"author"`
	Body   string `json:"body"`
	Score  int    `json:"score"`
}

// PostFromURL resolves a reddit.com post URL to its data plus the
// highest-scored top-level comments.
func (c *Client) PostFromURL(ctx context.Context, url string) (domain.Post, error) {
	jsonURL, err := jsonAPIURL(url)
	if err != nil {
		return domain.Post{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jsonURL, nil)
	if err != nil {
		return domain.Post{}, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Post{}, fmt.Errorf("reddit: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return domain.Post{}, fmt.Errorf("reddit: unexpected status %d", resp.StatusCode)
	}

	// The JSON API answers with two listings: the post, then its comments.
	var listings []listing
	if err := json.NewDecoder(resp.Body).Decode(&listings); err != nil {
		return domain.Post{}, fmt.Errorf("reddit: decode response: %w", err)
	}
	if len(listings) == 0 || len(listings[0].Data.Children) == 0 {
		return domain.Post{}, errors.New("reddit: empty listing")
	}

	var pd postData
	if err := json.Unmarshal(listings[0].Data.Children[0].Data, &pd); err != nil {
		return domain.Post{}, fmt.Errorf("reddit: decode post: %w", err)
	}
	if pd.Author == "" {
		pd.Author = "[deleted]"
	}

	post := domain.Post{
		ID:          pd.ID,
		Title:       pd.Title,
		SelfText:    pd.SelfText,
		Subreddit:   pd.Subreddit,
		Author:      pd.Author,
		URL:         pd.URL,
		Permalink:   pd.Permalink,
		Score:       pd.Score,
		NumComments: pd.NumComments,
		UpvoteRatio: pd.UpvoteRatio,
		CreatedUTC:  pd.CreatedUTC,
	}
	if len(listings) > 1 {
		post.Comments = topComments(listings[1], 10)
	}
	return post, nil
}

func topComments(l listing, limit int) []domain.Comment {
	var comments []domain.Comment
	for _, child := range l.Data.Children {
		if child.Kind != "t1" {
			continue
		}
		var cd commentData
		if err := json.Unmarshal(child.Data, &cd); err != nil || cd.Body == "" {
			continue
		}
		comments = append(comments, domain.Comment{Author: cd.Author, Body: cd.Body, Score: cd.Score})
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].Score > comments[j].Score
	})
	if len(comments) > limit {
		comments = comments[:limit]
	}
	return comments
}

// jsonAPIURL rewrites a post URL to its .json endpoint:
// https://www.reddit.com/r/sub/comments/id/title/ becomes
// https://www.reddit.com/r/sub/comments/id.json
func jsonAPIURL(url string) (string, error) {
	if !PostURLPattern.MatchString(url) {
		return "", fmt.Errorf("reddit: not a post url: %q", url)
	}
	base, rest, _ := strings.Cut(url, "/comments/")
	postID, _, _ := strings.Cut(rest, "/")
	if postID == "" {
		return "", fmt.Errorf("reddit: missing post id in %q", url)
	}
	return base + "/comments/" + postID + ".json", nil
}
