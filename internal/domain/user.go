package domain

import "time"

// Tier enumerates access levels gating model choice and search quota.
type Tier string

const (
	TierAnonymous Tier = "anonymous"
	TierFree      Tier = "free"
	TierPaid      Tier = "paid"
)

// TierFromPlan maps a stored plan value to a tier. Unknown values count as
// free so a bad write can never grant paid access.
func TierFromPlan(plan string) Tier {
	if Tier(plan) == TierPaid {
		return TierPaid
	}
	return TierFree
}

// User represents an authenticated account within the platform.
type User struct {
	ID        string
	GoogleSub string
	Email     string
	Name      string
	Picture   string
	Plan      Tier
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPaid reports whether the user carries an active paid plan.
func (u User) IsPaid() bool {
	return u.Plan == TierPaid
}

// Identity captures who is calling: an anonymous device or a signed-in user.
// A zero UserID means anonymous. Tier is derived from identity plus the
// subscription state held in the users table, never from ambient session
// state.
type Identity struct {
	UserID string
	Tier   Tier
}

// IsAuthenticated reports whether the identity belongs to a signed-in user.
func (i Identity) IsAuthenticated() bool {
	return i.UserID != ""
}

// Anonymous is the identity used for callers with no account.
func Anonymous() Identity {
	return Identity{Tier: TierAnonymous}
}
