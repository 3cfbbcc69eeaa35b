package usage

import (
	"testing"

	"server/internal/domain"
)

func TestAllowedModelsTierMonotonic(t *testing.T) {
	anon := AllowedModels(domain.TierAnonymous)
	free := AllowedModels(domain.TierFree)
	paid := AllowedModels(domain.TierPaid)

	if len(anon) != len(free) {
		t.Fatalf("anonymous and free allow-lists differ: %v vs %v", anon, free)
	}
	for i := range anon {
		if anon[i] != free[i] {
			t.Fatalf("anonymous and free allow-lists differ at %d: %q vs %q", i, anon[i], free[i])
		}
	}

	paidSet := make(map[string]struct{}, len(paid))
	for _, m := range paid {
		paidSet[m] = struct{}{}
	}
	for _, m := range free {
		if _, ok := paidSet[m]; !ok {
			t.Fatalf("free model %q missing from paid allow-list", m)
		}
	}
	if len(paid) <= len(free) {
		t.Fatalf("paid allow-list should be a strict superset, got %d vs %d", len(paid), len(free))
	}
}

func TestIsModelAllowed(t *testing.T) {
	tests := []struct {
		name  string
		model string
		tier  domain.Tier
		want  bool
	}{
		{"anonymous free model", ModelFree, domain.TierAnonymous, true},
		{"anonymous premium model", "claude-3-opus-20240229", domain.TierAnonymous, false},
		{"free premium model", "gemini-1.5-pro", domain.TierFree, false},
		{"paid premium model", "claude-3-5-sonnet-20241022", domain.TierPaid, true},
		{"paid free model", ModelFree, domain.TierPaid, true},
		{"unknown model", "gpt-4o", domain.TierPaid, false},
		{"unknown tier", ModelFree, domain.Tier("supporter"), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsModelAllowed(tc.model, tc.tier); got != tc.want {
				t.Fatalf("IsModelAllowed(%q, %q) = %v, want %v", tc.model, tc.tier, got, tc.want)
			}
		})
	}
}

func TestIsKnownModel(t *testing.T) {
	if !IsKnownModel("gemini-1.5-pro") {
		t.Fatalf("gemini-1.5-pro should be known")
	}
	if IsKnownModel("llama-3") {
		t.Fatalf("llama-3 should not be known")
	}
}
