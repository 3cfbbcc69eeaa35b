package usage

import (
	"context"
	"fmt"
	"time"

	"server/internal/domain"
)

// CounterStore is the persisted counter contract the gate runs against.
// Production adapters back it with PostgreSQL (authenticated callers) or a
// device cookie (anonymous callers); tests use an in-memory map.
type CounterStore interface {
	// Get returns the current counter value, or ok=false when absent/expired.
	Get(ctx context.Context, key string) (n int, ok bool, err error)
	// Set overwrites the counter. A zero ttl keeps the store's default.
	Set(ctx context.Context, key string, n int, ttl time.Duration) error
	// IncrementOrCreate atomically bumps the counter, creating it at 1.
	IncrementOrCreate(ctx context.Context, key string) (int, error)
	// Delete removes the counter. Absent counters are not an error.
	Delete(ctx context.Context, key string) error
}

// Limits holds the per-tier daily search caps. domain.UnlimitedSearches (0)
// disables the cap for a tier.
type Limits map[domain.Tier]int

// DefaultLimits mirrors current policy: one free search per anonymous device,
// no cap once signed in.
func DefaultLimits() Limits {
	return Limits{
		domain.TierAnonymous: 1,
		domain.TierFree:      domain.UnlimitedSearches,
		domain.TierPaid:      domain.UnlimitedSearches,
	}
}

// DefaultAnonymousWindow is how long an anonymous counter lives before it
// silently resets.
const DefaultAnonymousWindow = 30 * 24 * time.Hour

// AnonymousCounterKey is the key anonymous counters live under. Device
// scoping comes from the cookie store itself, so the key is fixed.
const AnonymousCounterKey = "searches"

// Gate decides whether a caller may run another search. It only compares
// counts against limits; the counters themselves never enforce anything.
type Gate struct {
	limits Limits
	window time.Duration
	now    func() time.Time
}

// Option adjusts gate construction.
type Option func(*Gate)

// WithLimits overrides the per-tier caps.
func WithLimits(l Limits) Option {
	return func(g *Gate) {
		if len(l) > 0 {
			g.limits = l
		}
	}
}

// WithAnonymousWindow overrides the anonymous counter lifetime.
func WithAnonymousWindow(d time.Duration) Option {
	return func(g *Gate) {
		if d > 0 {
			g.window = d
		}
	}
}

// WithClock overrides time for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGate builds a gate with default policy unless options say otherwise.
func NewGate(opts ...Option) *Gate {
	g := &Gate{
		limits: DefaultLimits(),
		window: DefaultAnonymousWindow,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CounterKey returns the store key for an identity: the fixed device key for
// anonymous callers, a per-user per-UTC-day key for signed-in ones.
func (g *Gate) CounterKey(id domain.Identity) string {
	if !id.IsAuthenticated() {
		return AnonymousCounterKey
	}
	return fmt.Sprintf("user:%s:%s", id.UserID, g.now().UTC().Format("2006-01-02"))
}

// Limit returns the configured cap for a tier.
func (g *Gate) Limit(tier domain.Tier) int {
	return g.limits[tier]
}

// CheckStatus reads the caller's counter and derives a fresh UsageStatus.
// Store failures surface as domain.ErrStoreUnavailable; the gate never
// guesses and never silently grants access on error.
func (g *Gate) CheckStatus(ctx context.Context, id domain.Identity, store CounterStore) (domain.UsageStatus, error) {
	count, _, err := store.Get(ctx, g.CounterKey(id))
	if err != nil {
		return domain.UsageStatus{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	limit := g.limits[id.Tier]
	canSearch := limit == domain.UnlimitedSearches || count < limit

	return domain.UsageStatus{
		CanSearch:       canSearch,
		SearchCount:     count,
		Limit:           limit,
		IsAuthenticated: id.IsAuthenticated(),
		RequiresSignIn:  !id.IsAuthenticated() && !canSearch,
	}, nil
}

// RecordSearch increments the caller's counter and returns the new value.
// Anonymous counters are a plain read-modify-write with the configured
// lifetime (last write wins; single-tab assumption). Authenticated counters
// go through the store's atomic increment so concurrent tabs or devices
// cannot lose updates. Callers should invoke this only after a search has
// verifiably succeeded.
func (g *Gate) RecordSearch(ctx context.Context, id domain.Identity, store CounterStore) (int, error) {
	key := g.CounterKey(id)

	if id.IsAuthenticated() {
		n, err := store.IncrementOrCreate(ctx, key)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		return n, nil
	}

	count, _, err := store.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	count++
	if err := store.Set(ctx, key, count, g.window); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return count, nil
}

// ResetAnonymous deletes the anonymous counter, the explicit user action
// that starts a fresh window.
func (g *Gate) ResetAnonymous(ctx context.Context, store CounterStore) error {
	if err := store.Delete(ctx, AnonymousCounterKey); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}
