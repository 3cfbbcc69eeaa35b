// Package summarize orchestrates a search: thread discovery, post retrieval,
// local analysis, AI summarization, and the link enhancement passes.
package summarize

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"server/internal/analysis"
	"server/internal/domain"
	"server/internal/enhance"
	"server/internal/providers/gsearch"
)

const (
	DefaultMaxPosts = 3
	maxTermsToLink  = 3
	maxLinksPerTerm = 2
	resultsPerTerm  = 5

	curatedRelevance  = 0.9
	fallbackRelevance = 0.5
)

// RedditFetcher resolves a post URL to its content.
type RedditFetcher interface {
	PostFromURL(ctx context.Context, url string) (domain.Post, error)
}

// Searcher is the discovery surface of the Custom Search client.
type Searcher interface {
	RedditPosts(ctx context.Context, query string, n int) ([]string, error)
	WebResults(ctx context.Context, term string, n int) ([]gsearch.Result, error)
	ProductLinks(ctx context.Context, term string, max int) []string
}

// Generator produces text from a prompt, retrying transient failures.
type Generator interface {
	GenerateWithRetry(ctx context.Context, model, prompt string, maxTokens int) (string, error)
}

// Service runs the full search pipeline.
type Service struct {
	Reddit RedditFetcher
	Search Searcher
	AI     Generator
	Logger zerolog.Logger
	Now    func() time.Time
}

// Result is the payload of a completed search.
type Result struct {
	Summary        string                         `json:"summary"`
	Sources        []domain.Source                `json:"sources"`
	Analysis       analysis.Report                `json:"analysis"`
	EnhancedLinks  map[string][]enhance.Candidate `json:"enhanced_links"`
	ExtractedTerms []string                       `json:"extracted_search_terms"`
}

// Run executes a search for the query with the chosen model. Failures before
// the summary exists are fatal; failures in the enhancement passes only
// degrade the result.
func (s *Service) Run(ctx context.Context, query, model string, maxPosts int) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidQuery
	}
	if maxPosts <= 0 {
		maxPosts = DefaultMaxPosts
	}

	urls, err := s.Search.RedditPosts(ctx, query, maxPosts)
	if err != nil {
		s.Logger.Warn().Err(err).Str("query", query).Msg("reddit discovery failed")
	}
	if len(urls) == 0 {
		return nil, domain.ErrNoPostsFound
	}

	var posts []domain.Post
	for _, url := range urls {
		post, err := s.Reddit.PostFromURL(ctx, url)
		if err != nil {
			s.Logger.Warn().Err(err).Str("url", url).Msg("post fetch failed")
			continue
		}
		posts = append(posts, post)
		if len(posts) >= maxPosts {
			break
		}
	}
	if len(posts) == 0 {
		return nil, domain.ErrNoPostsFound
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	report := analysis.Analyze(posts, now())

	summary, err := s.AI.GenerateWithRetry(ctx, model, summaryPrompt(query, report, posts), summaryMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}

	terms := s.extractTerms(ctx, model, query, summary)
	termLinks := s.linkTerms(ctx, model, terms)

	enhanced := make(map[string][]enhance.Candidate, len(termLinks))
	for _, tl := range termLinks {
		enhanced[tl.Term] = tl.Candidates
	}

	sources := make([]domain.Source, 0, len(posts))
	for _, p := range posts {
		sources = append(sources, domain.Source{
			Title:       p.Title,
			URL:         p.URL,
			Subreddit:   p.Subreddit,
			Upvotes:     p.Score,
			NumComments: p.NumComments,
			UpvoteRatio: p.UpvoteRatio,
		})
	}

	return &Result{
		Summary:        enhance.Enhance(summary, termLinks),
		Sources:        sources,
		Analysis:       report,
		EnhancedLinks:  enhanced,
		ExtractedTerms: terms,
	}, nil
}

// extractTerms asks the model for search terms, falling back to query
// keywords when the model call fails.
func (s *Service) extractTerms(ctx context.Context, model, query, summary string) []string {
	raw, err := s.AI.GenerateWithRetry(ctx, model, termExtractionPrompt(summary), termsMaxTokens)
	if err != nil {
		s.Logger.Warn().Err(err).Msg("term extraction failed, using query keywords")
		return keywordTerms(query, maxTermsToLink)
	}
	var terms []string
	for _, part := range strings.Split(raw, ",") {
		if term := strings.TrimSpace(part); term != "" {
			terms = append(terms, term)
		}
		if len(terms) >= 5 {
			break
		}
	}
	if len(terms) == 0 {
		return keywordTerms(query, maxTermsToLink)
	}
	return terms
}

// linkTerms finds and curates candidate links for the first few terms. Terms
// keep their extraction order so earlier terms claim text spans first.
func (s *Service) linkTerms(ctx context.Context, model string, terms []string) []enhance.TermLinks {
	var out []enhance.TermLinks
	for i, term := range terms {
		if i >= maxTermsToLink {
			break
		}
		results, err := s.Search.WebResults(ctx, term, resultsPerTerm)
		if err != nil {
			s.Logger.Warn().Err(err).Str("term", term).Msg("web search failed")
		}
		if len(results) == 0 {
			candidates := fallbackCandidates(s.Search.ProductLinks(ctx, term, maxLinksPerTerm))
			if len(candidates) > 0 {
				out = append(out, enhance.TermLinks{Term: term, Candidates: candidates})
			}
			continue
		}
		out = append(out, enhance.TermLinks{Term: term, Candidates: s.curate(ctx, model, term, results)})
	}
	return out
}

// curate asks the model to pick the best hits; when that fails the first
// results stand in at a lower relevance.
func (s *Service) curate(ctx context.Context, model, term string, results []gsearch.Result) []enhance.Candidate {
	numbered := make([]numberedResult, len(results))
	for i, r := range results {
		numbered[i] = numberedResult{n: i + 1, title: r.Title, link: r.Link, snippet: r.Snippet}
	}

	selection, err := s.AI.GenerateWithRetry(ctx, model, curationPrompt(term, numbered), curationMaxTokens)
	if err != nil {
		s.Logger.Warn().Err(err).Str("term", term).Msg("link curation failed")
		return defaultCandidates(results)
	}

	var picked []enhance.Candidate
	for _, token := range strings.Split(selection, ",") {
		idx, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil || idx < 1 || idx > len(results) {
			continue
		}
		r := results[idx-1]
		picked = append(picked, enhance.Candidate{
			URL:            r.Link,
			Title:          r.Title,
			Snippet:        clip(r.Snippet, 200),
			RelevanceScore: curatedRelevance,
		})
		if len(picked) >= maxLinksPerTerm {
			break
		}
	}
	if len(picked) == 0 {
		return defaultCandidates(results)
	}
	return picked
}

func defaultCandidates(results []gsearch.Result) []enhance.Candidate {
	limit := len(results)
	if limit > maxLinksPerTerm {
		limit = maxLinksPerTerm
	}
	candidates := make([]enhance.Candidate, 0, limit)
	for _, r := range results[:limit] {
		candidates = append(candidates, enhance.Candidate{
			URL:            r.Link,
			Title:          r.Title,
			Snippet:        clip(r.Snippet, 200),
			RelevanceScore: fallbackRelevance,
		})
	}
	return candidates
}

func fallbackCandidates(links []string) []enhance.Candidate {
	candidates := make([]enhance.Candidate, 0, len(links))
	for _, link := range links {
		candidates = append(candidates, enhance.Candidate{URL: link, RelevanceScore: fallbackRelevance})
	}
	return candidates
}
