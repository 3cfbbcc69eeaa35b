package domain

// UnlimitedSearches marks a tier with no daily search cap.
const UnlimitedSearches = 0

// UsageStatus reports whether a caller may run another search. It is derived
// fresh on every check and never stored.
type UsageStatus struct {
	CanSearch       bool `json:"can_search"`
	SearchCount     int  `json:"search_count"`
	Limit           int  `json:"limit"` // UnlimitedSearches means no cap
	IsAuthenticated bool `json:"is_authenticated"`
	RequiresSignIn  bool `json:"requires_sign_in"`
}

// Unlimited reports whether the status carries no cap.
func (s UsageStatus) Unlimited() bool {
	return s.Limit == UnlimitedSearches
}
