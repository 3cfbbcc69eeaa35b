package usage

import "server/internal/domain"

// ModelFree is the only model exposed to anonymous and free callers.
const ModelFree = "gemini-1.5-flash"

// DefaultModel is what a search falls back to when no model is requested.
const DefaultModel = ModelFree

var freeModels = []string{ModelFree}

var paidModels = []string{
	ModelFree,
	"gemini-1.5-pro",
	"claude-3-5-haiku-20241022",
	"claude-3-5-sonnet-20241022",
	"claude-3-opus-20240229",
}

// AllModels lists every model the service knows how to call, regardless of
// tier. Requests naming anything else are rejected outright.
func AllModels() []string {
	out := make([]string, len(paidModels))
	copy(out, paidModels)
	return out
}

// AllowedModels returns the model IDs a tier may select. Anonymous and free
// tiers see the same single entry under current policy; paid sees the full
// set. Unknown tiers see nothing.
func AllowedModels(tier domain.Tier) []string {
	var src []string
	switch tier {
	case domain.TierAnonymous, domain.TierFree:
		src = freeModels
	case domain.TierPaid:
		src = paidModels
	default:
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// IsModelAllowed reports whether a tier may use the given model. Pure lookup,
// no error cases.
func IsModelAllowed(model string, tier domain.Tier) bool {
	for _, m := range AllowedModels(tier) {
		if m == model {
			return true
		}
	}
	return false
}

// IsKnownModel reports whether the model exists at all.
func IsKnownModel(model string) bool {
	for _, m := range paidModels {
		if m == model {
			return true
		}
	}
	return false
}
