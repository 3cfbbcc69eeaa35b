// Package analysis derives engagement, content, temporal, community, and
// sentiment metrics from a batch of retrieved Reddit posts. All computation
// is local; the result rides along with the summary in search responses.
package analysis

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"server/internal/domain"
)

const maxCommentsPerPost = 10

// Report is the full analysis block returned alongside a summary.
type Report struct {
	PostMetrics         PostMetrics         `json:"post_metrics"`
	EngagementAnalysis  EngagementAnalysis  `json:"engagement_analysis"`
	ContentAnalysis     ContentAnalysis     `json:"content_analysis"`
	TemporalAnalysis    TemporalAnalysis    `json:"temporal_analysis"`
	CommunityAnalysis   CommunityAnalysis   `json:"community_analysis"`
	SentimentIndicators SentimentIndicators `json:"sentiment_indicators"`
}

type PostMetrics struct {
	TotalPosts     int     `json:"total_posts"`
	AvgScore       float64 `json:"avg_score"`
	MedianScore    float64 `json:"median_score"`
	MaxScore       int     `json:"max_score"`
	TotalUpvotes   int     `json:"total_upvotes"`
	AvgComments    float64 `json:"avg_comments"`
	TotalComments  int     `json:"total_comments"`
	AvgUpvoteRatio float64 `json:"avg_upvote_ratio"`
	AvgPostAgeDays float64 `json:"avg_post_age_days"`
}

type EngagementAnalysis struct {
	TotalCommentsAnalyzed int     `json:"total_comments_analyzed"`
	AvgCommentScore       float64 `json:"avg_comment_score"`
	MedianCommentScore    float64 `json:"median_comment_score"`
	HighlyUpvotedComments int     `json:"highly_upvoted_comments"`
	EngagementRate        float64 `json:"engagement_rate"`
	AvgCommentsPerPost    float64 `json:"comments_per_post"`
}

// BrandMention counts occurrences of one recognized brand, with its display
// name canonicalized for presentation.
type BrandMention struct {
	Brand string `json:"brand"`
	Count int    `json:"count"`
}

type PriceAnalysis struct {
	PricesFound int     `json:"prices_found"`
	AvgPrice    float64 `json:"avg_price"`
	MedianPrice float64 `json:"median_price"`
	MinPrice    float64 `json:"min_price"`
	MaxPrice    float64 `json:"max_price"`
	PriceRange  string  `json:"price_range"`
}

type ContentAnalysis struct {
	TopBrands          []BrandMention `json:"top_brands"`
	TotalBrandMentions int            `json:"total_brand_mentions"`
	UniqueBrands       int            `json:"unique_brands"`
	PriceAnalysis      *PriceAnalysis `json:"price_analysis,omitempty"`
}

// PostRecency records the recency weighting applied to one post.
type PostRecency struct {
	ID            string  `json:"id"`
	AgeDays       float64 `json:"age_days"`
	RecencyScore  float64 `json:"recency_score"`
	WeightedScore float64 `json:"weighted_score"`
	AgeCategory   string  `json:"age_category"`
}

type TemporalAnalysis struct {
	RecentPosts30d           int           `json:"recent_posts_30d"`
	OldPostsOverYear         int           `json:"old_posts_1y_plus"`
	AvgRecentScore           float64       `json:"avg_recent_score"`
	FreshnessScore           float64       `json:"freshness_score"`
	RecencyWeightedFreshness float64       `json:"recency_weighted_freshness"`
	PostRecency              []PostRecency `json:"post_recency_data"`
	DataAgeWarning           bool          `json:"data_age_warning"`
}

type CommunityAnalysis struct {
	SubredditsInvolved []string `json:"subreddits_involved"`
	PrimarySubreddit   string   `json:"primary_subreddit"`
	CommunityDiversity int      `json:"community_diversity"`
}

type SentimentIndicators struct {
	PositiveWordCount int     `json:"positive_word_count"`
	NegativeWordCount int     `json:"negative_word_count"`
	SentimentRatio    float64 `json:"sentiment_ratio"`
	OverallSentiment  string  `json:"overall_sentiment"`
}

var brandPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(uniqlo|nike|adidas|gap|h&m|zara|target|walmart|amazon|costco)\b`),
	regexp.MustCompile(`\b(everlane|patagonia|levi'?s?|wrangler|carhartt|dickies)\b`),
	regexp.MustCompile(`\b(supreme|palace|off-white|gucci|prada|louis vuitton)\b`),
	regexp.MustCompile(`\b(next level|bella canvas|hanes|fruit of the loom|gildan)\b`),
}

var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$(\d+(?:\.\d{2})?)`),
	regexp.MustCompile(`(\d+(?:\.\d{2})?) dollars?`),
	regexp.MustCompile(`(\d+(?:\.\d{2})?) bucks?`),
}

var positiveWords = []string{"great", "excellent", "amazing", "perfect", "best", "love", "awesome", "fantastic", "recommend", "good"}
var negativeWords = []string{"terrible", "awful", "worst", "hate", "bad", "horrible", "disappointing", "cheap", "poor", "avoid"}

var brandCaser = cases.Title(language.English)

// RecencyScore maps a post's age in days to a 0-1 weight. Fresher
// discussions carry more weight in freshness scoring.
func RecencyScore(ageDays float64) float64 {
	switch {
	case ageDays <= 30:
		return 1.0
	case ageDays <= 90:
		return 0.8
	case ageDays <= 365:
		return 0.6
	case ageDays <= 730:
		return 0.4
	default:
		return 0.1
	}
}

// Analyze computes the full report for a batch of posts. An empty batch
// yields a zero report rather than an error.
func Analyze(posts []domain.Post, now time.Time) Report {
	var report Report
	if len(posts) == 0 {
		return report
	}

	var (
		scores        []float64
		commentCounts []float64
		upvoteRatios  []float64
		ages          []float64
		commentScores []float64
		allText       string
		prices        []float64
	)
	brandCounts := map[string]int{}
	totalBrandMentions := 0
	subredditCounts := map[string]int{}

	for _, p := range posts {
		age := p.AgeDays(now)
		scores = append(scores, float64(p.Score))
		commentCounts = append(commentCounts, float64(p.NumComments))
		upvoteRatios = append(upvoteRatios, p.UpvoteRatio)
		ages = append(ages, age)
		subredditCounts[p.Subreddit]++

		text := toLower(p.Title + " " + p.SelfText)
		allText += text + " "
		totalBrandMentions += countBrands(text, brandCounts)
		prices = append(prices, extractPrices(text)...)

		limit := len(p.Comments)
		if limit > maxCommentsPerPost {
			limit = maxCommentsPerPost
		}
		for _, c := range p.Comments[:limit] {
			commentScores = append(commentScores, float64(c.Score))
			body := toLower(c.Body)
			allText += body + " "
			totalBrandMentions += countBrands(body, brandCounts)
			prices = append(prices, extractPrices(body)...)
		}
	}

	totalUpvotes := int(sum(scores))
	totalComments := int(sum(commentCounts))

	report.PostMetrics = PostMetrics{
		TotalPosts:     len(posts),
		AvgScore:       round1(mean(scores)),
		MedianScore:    round1(median(scores)),
		MaxScore:       int(maxOf(scores)),
		TotalUpvotes:   totalUpvotes,
		AvgComments:    round1(mean(commentCounts)),
		TotalComments:  totalComments,
		AvgUpvoteRatio: round2(mean(upvoteRatios)),
		AvgPostAgeDays: round1(mean(ages)),
	}

	highlyUpvoted := 0
	for _, s := range commentScores {
		if s >= 10 {
			highlyUpvoted++
		}
	}
	engagementRate := 0.0
	if totalUpvotes > 0 {
		engagementRate = round2(float64(totalComments) / float64(totalUpvotes) * 100)
	}
	report.EngagementAnalysis = EngagementAnalysis{
		TotalCommentsAnalyzed: len(commentScores),
		AvgCommentScore:       round1(mean(commentScores)),
		MedianCommentScore:    round1(median(commentScores)),
		HighlyUpvotedComments: highlyUpvoted,
		EngagementRate:        engagementRate,
		AvgCommentsPerPost:    round1(mean(commentCounts)),
	}

	report.ContentAnalysis = contentAnalysis(brandCounts, totalBrandMentions, prices)
	report.TemporalAnalysis = temporalAnalysis(posts, now)
	report.CommunityAnalysis = communityAnalysis(subredditCounts)
	report.SentimentIndicators = sentimentIndicators(allText)

	return report
}

func countBrands(text string, counts map[string]int) int {
	total := 0
	for _, pat := range brandPatterns {
		for _, m := range pat.FindAllStringSubmatch(text, -1) {
			counts[m[1]]++
			total++
		}
	}
	return total
}

func extractPrices(text string) []float64 {
	var prices []float64
	for _, pat := range pricePatterns {
		for _, m := range pat.FindAllStringSubmatch(text, -1) {
			price, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			if price >= 1 && price <= 1000 {
				prices = append(prices, price)
			}
		}
	}
	return prices
}

func contentAnalysis(brandCounts map[string]int, total int, prices []float64) ContentAnalysis {
	brands := make([]BrandMention, 0, len(brandCounts))
	for brand, count := range brandCounts {
		brands = append(brands, BrandMention{Brand: brandCaser.String(brand), Count: count})
	}
	sort.Slice(brands, func(i, j int) bool {
		if brands[i].Count != brands[j].Count {
			return brands[i].Count > brands[j].Count
		}
		return brands[i].Brand < brands[j].Brand
	})
	if len(brands) > 10 {
		brands = brands[:10]
	}

	ca := ContentAnalysis{
		TopBrands:          brands,
		TotalBrandMentions: total,
		UniqueBrands:       len(brandCounts),
	}
	if len(prices) > 0 {
		ca.PriceAnalysis = &PriceAnalysis{
			PricesFound: len(prices),
			AvgPrice:    round2(mean(prices)),
			MedianPrice: round2(median(prices)),
			MinPrice:    minOf(prices),
			MaxPrice:    maxOf(prices),
			PriceRange:  fmt.Sprintf("$%.2f - $%.2f", minOf(prices), maxOf(prices)),
		}
	}
	return ca
}

func temporalAnalysis(posts []domain.Post, now time.Time) TemporalAnalysis {
	var (
		recentScores  []float64
		recent, old   int
		weightedScore float64
		totalWeight   float64
		recency       []PostRecency
	)
	for _, p := range posts {
		age := p.AgeDays(now)
		if age <= 30 {
			recent++
			recentScores = append(recentScores, float64(p.Score))
		}
		if age > 365 {
			old++
		}
		score := RecencyScore(age)
		weight := float64(p.Score) * score
		weightedScore += weight
		totalWeight += float64(p.Score)

		category := "historical"
		if age <= 365 {
			category = "recent"
		}
		recency = append(recency, PostRecency{
			ID:            p.ID,
			AgeDays:       round1(age),
			RecencyScore:  score,
			WeightedScore: round1(weight),
			AgeCategory:   category,
		})
	}

	weightedFreshness := 0.0
	if totalWeight > 0 {
		weightedFreshness = weightedScore / totalWeight * 100
	}
	return TemporalAnalysis{
		RecentPosts30d:           recent,
		OldPostsOverYear:         old,
		AvgRecentScore:           round1(mean(recentScores)),
		FreshnessScore:           round1(float64(recent) / float64(len(posts)) * 100),
		RecencyWeightedFreshness: round1(weightedFreshness),
		PostRecency:              recency,
		DataAgeWarning:           weightedFreshness < 30,
	}
}

func communityAnalysis(counts map[string]int) CommunityAnalysis {
	subs := make([]string, 0, len(counts))
	for sub := range counts {
		subs = append(subs, sub)
	}
	sort.Strings(subs)

	primary := ""
	best := 0
	for _, sub := range subs {
		if counts[sub] > best {
			primary = sub
			best = counts[sub]
		}
	}
	return CommunityAnalysis{
		SubredditsInvolved: subs,
		PrimarySubreddit:   primary,
		CommunityDiversity: len(counts),
	}
}

func sentimentIndicators(text string) SentimentIndicators {
	positive := 0
	for _, w := range positiveWords {
		positive += countOccurrences(text, w)
	}
	negative := 0
	for _, w := range negativeWords {
		negative += countOccurrences(text, w)
	}

	overall := "neutral"
	if positive > negative {
		overall = "positive"
	} else if negative > positive {
		overall = "negative"
	}
	denom := negative
	if denom == 0 {
		denom = 1
	}
	return SentimentIndicators{
		PositiveWordCount: positive,
		NegativeWordCount: negative,
		SentimentRatio:    round2(float64(positive) / float64(denom)),
		OverallSentiment:  overall,
	}
}
