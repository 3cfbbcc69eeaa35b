package domain

import "time"

// Post is a Reddit submission retrieved through the public JSON API.
type Post struct {
	ID          string
	Title       string
	SelfText    string
	Subreddit   string
	Author      string
	URL         string
	Permalink   string
	Score       int
	NumComments int
	UpvoteRatio float64
	CreatedUTC  float64
	Comments    []Comment
}

// AgeDays returns the post age in days relative to now.
func (p Post) AgeDays(now time.Time) float64 {
	return (float64(now.UTC().Unix()) - p.CreatedUTC) / (24 * 3600)
}

// Comment is a single Reddit comment attached to a post.
type Comment struct {
	ID          string
	Body        string
	Author      string
	Score       int
	CreatedUTC  float64
	IsSubmitter bool
}

// Source describes a post cited by a summary, as returned to clients.
type Source struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Subreddit   string  `json:"subreddit"`
	Upvotes     int     `json:"upvotes"`
	NumComments int     `json:"num_comments"`
	UpvoteRatio float64 `json:"upvote_ratio"`
}

// HistoryEntry is one persisted search for a signed-in user.
type HistoryEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Query     string    `json:"query"`
	Model     string    `json:"model"`
	Summary   string    `json:"summary"`
	Sources   []Source  `json:"sources"`
	CreatedAt time.Time `json:"created_at"`
}
