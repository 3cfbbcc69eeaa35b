package summarize

import (
	"math"
	"strings"

	"server/internal/usage"
)

// ModelPricing is the per-million-token price for one model.
type ModelPricing struct {
	Input  float64
	Output float64
}

// Per-million-token pricing as of 2024.
var modelPricing = map[string]ModelPricing{
	"claude-3-5-haiku-20241022":  {Input: 0.25, Output: 1.25},
	"claude-3-5-sonnet-20241022": {Input: 3.00, Output: 15.00},
	"claude-3-opus-20240229":     {Input: 15.00, Output: 75.00},
	"gemini-1.5-flash":           {Input: 0.075, Output: 0.30},
	"gemini-1.5-pro":             {Input: 3.50, Output: 10.50},
}

// TokenEstimate is the expected token spend for a search.
type TokenEstimate struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Total  int `json:"total"`
}

// CostEstimate is the expected dollar spend for a search.
type CostEstimate struct {
	RedditAPI   float64 `json:"reddit_api"`
	ModelInput  float64 `json:"model_input"`
	ModelOutput float64 `json:"model_output"`
	Total       float64 `json:"total"`
}

// Estimate is the response of the cost endpoint.
type Estimate struct {
	Tokens   TokenEstimate `json:"estimated_tokens"`
	Costs    CostEstimate  `json:"costs"`
	Model    string        `json:"model"`
	Provider string        `json:"provider"`
	Posts    int           `json:"posts"`
}

// EstimateCost predicts the token and dollar cost of a search over maxPosts
// posts with the given model. Unknown models price as the provider's default.
func EstimateCost(model string, maxPosts int) Estimate {
	if model == "" {
		model = usage.DefaultModel
	}
	if maxPosts <= 0 {
		maxPosts = DefaultMaxPosts
	}

	provider := "claude"
	fallback := "claude-3-5-sonnet-20241022"
	if strings.HasPrefix(model, "gemini-") {
		provider = "gemini"
		fallback = "gemini-1.5-flash"
	}
	pricing, ok := modelPricing[model]
	if !ok {
		pricing = modelPricing[fallback]
	}

	// Each post contributes roughly a title plus five clipped comments.
	inputTokens := maxPosts*(300+5*50) + 500
	outputTokens := 400

	inputCost := float64(inputTokens) / 1_000_000 * pricing.Input
	outputCost := float64(outputTokens) / 1_000_000 * pricing.Output

	return Estimate{
		Tokens: TokenEstimate{
			Input:  inputTokens,
			Output: outputTokens,
			Total:  inputTokens + outputTokens,
		},
		Costs: CostEstimate{
			RedditAPI:   0,
			ModelInput:  round4(inputCost),
			ModelOutput: round4(outputCost),
			Total:       round4(inputCost + outputCost),
		},
		Model:    model,
		Provider: provider,
		Posts:    maxPosts,
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
