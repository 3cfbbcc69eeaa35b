package summarize

import (
	"fmt"
	"strings"

	"server/internal/analysis"
	"server/internal/domain"
)

const (
	maxPromptChars    = 8000
	maxSelfTextChars  = 1000
	maxCommentChars   = 200
	commentsPerPost   = 5
	summaryMaxTokens  = 1500
	termsMaxTokens    = 100
	curationMaxTokens = 50
)

func summaryPrompt(query string, report analysis.Report, posts []domain.Post) string {
	var content strings.Builder
	for _, p := range posts {
		fmt.Fprintf(&content, "Title: %s (%d upvotes, %d comments)\n", p.Title, p.Score, p.NumComments)
		if p.SelfText != "" {
			fmt.Fprintf(&content, "Post: %s\n", clip(p.SelfText, maxSelfTextChars))
		}
		content.WriteString("Top Comments:\n")
		limit := len(p.Comments)
		if limit > commentsPerPost {
			limit = commentsPerPost
		}
		for _, c := range p.Comments[:limit] {
			fmt.Fprintf(&content, "Comment (%d): %s\n", c.Score, clip(c.Body, maxCommentChars))
		}
		content.WriteString("\n")
	}

	fullText := content.String()
	if len(fullText) > maxPromptChars {
		fullText = fullText[:maxPromptChars] + "...\n[Text truncated to stay within API limits]"
	}

	return fmt.Sprintf(`Please analyze the following Reddit data about '%s' and provide a comprehensive summary.

=== DATA ANALYSIS ===
Post Metrics:
- Total posts analyzed: %d
- Average upvotes: %v
- Total engagement: %d upvotes, %d comments

Based on this analysis and the content below, provide:
1. **SUMMARY**: Main findings and recommendations
2. **TOP RECOMMENDATIONS**: Specific products/brands with community consensus
3. **COMMUNITY CONSENSUS**: What the Reddit community agrees on

=== RAW CONTENT ===
%s`, query,
		report.PostMetrics.TotalPosts,
		report.PostMetrics.AvgScore,
		report.PostMetrics.TotalUpvotes,
		report.PostMetrics.TotalComments,
		fullText)
}

func termExtractionPrompt(summary string) string {
	return fmt.Sprintf(`Based on this Reddit discussion summary, extract 3-5 specific and useful search terms that would help someone learn more about the topic. Focus on:
- Product names, brand names, model numbers
- Specific locations, restaurants, services
- Technical terms, concepts, or methodologies
- Specific titles (books, movies, games, etc.)

Summary: %s

Return only a comma-separated list of terms, no explanations:`, summary)
}

func curationPrompt(term string, results []numberedResult) string {
	var listing strings.Builder
	for _, r := range results {
		fmt.Fprintf(&listing, "%d. %s - %s - %s\n", r.n, r.title, r.link, clip(r.snippet, 100))
	}
	return fmt.Sprintf(`From these search results for "%s", select the 2 most helpful and relevant links. Consider:
- Authoritative sources (official sites, reputable publications)
- Practical value (reviews, guides, comparisons)
- Avoid spam, low-quality, or overly promotional content

Search results:
%s
Return only the numbers (e.g., "1,3") of the best links:`, term, listing.String())
}

type numberedResult struct {
	n       int
	title   string
	link    string
	snippet string
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// queryStopWords filters the keyword fallback when AI term extraction fails.
var queryStopWords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "a": {}, "an": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "what": {},
	"how": {}, "where": {}, "when": {}, "why": {}, "who": {},
}

func keywordTerms(query string, max int) []string {
	var terms []string
	for _, word := range strings.Fields(strings.ToLower(query)) {
		word = strings.Trim(word, ".,!?\"'()[]")
		if len(word) <= 2 {
			continue
		}
		if _, stop := queryStopWords[word]; stop {
			continue
		}
		terms = append(terms, word)
		if len(terms) >= max {
			break
		}
	}
	return terms
}
