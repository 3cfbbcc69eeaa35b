package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"server/internal/adapter/counter"
	"server/internal/domain"
	"server/internal/infra"
	"server/internal/middleware"
	"server/internal/summarize"
	"server/internal/usage"
)

type fakeVerifier struct {
	claims map[string]any
	err    error
}

func (f fakeVerifier) VerifyIDToken(context.Context, string) (map[string]any, error) {
	return f.claims, f.err
}

type fakeUsers struct {
	users    map[string]*domain.User
	upserted *domain.User
	deleted  []string
}

func (f *fakeUsers) UpsertGoogleUser(_ context.Context, sub, email, name, picture string) (*domain.User, error) {
	u := &domain.User{ID: "user-1", GoogleSub: sub, Email: email, Name: name, Picture: picture, Plan: domain.TierFree}
	f.upserted = u
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeHistory struct {
	entries  []domain.HistoryEntry
	inserted []domain.HistoryEntry
	purged   []string
}

func (f *fakeHistory) Insert(_ context.Context, entry *domain.HistoryEntry) error {
	entry.ID = "h-1"
	entry.CreatedAt = time.Now()
	f.inserted = append(f.inserted, *entry)
	return nil
}

func (f *fakeHistory) ListByUser(_ context.Context, userID string, _ int) ([]domain.HistoryEntry, error) {
	var out []domain.HistoryEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeHistory) DeleteEntry(_ context.Context, id, userID string) error {
	for _, e := range f.entries {
		if e.ID == id && e.UserID == userID {
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeHistory) DeleteForUser(_ context.Context, userID string) error {
	f.purged = append(f.purged, userID)
	return nil
}

type fakeSearcher struct {
	result *summarize.Result
	err    error
	calls  int
}

func (f *fakeSearcher) Run(context.Context, string, string, int) (*summarize.Result, error) {
	f.calls++
	return f.result, f.err
}

type erroringStore struct{}

func (erroringStore) Get(context.Context, string) (int, bool, error) {
	return 0, false, errors.New("store down")
}
func (erroringStore) Set(context.Context, string, int, time.Duration) error {
	return errors.New("store down")
}
func (erroringStore) IncrementOrCreate(context.Context, string) (int, error) {
	return 0, errors.New("store down")
}
func (erroringStore) Delete(context.Context, string) error { return errors.New("store down") }

func newTestApp() *App {
	return &App{
		Config: &infra.Config{
			AnonWindow:   30 * 24 * time.Hour,
			HistoryLimit: 50,
		},
		Logger:    zerolog.Nop(),
		JWTSecret: "test-secret",
		Users:     &fakeUsers{users: map[string]*domain.User{}},
		History:   &fakeHistory{},
		Gate:      usage.NewGate(),
		Counters:  counter.NewMemory(),
		Searcher:  &fakeSearcher{result: &summarize.Result{Summary: "done"}},
	}
}

func asUser(r *http.Request, userID, plan string) *http.Request {
	return r.WithContext(middleware.ContextWithUser(r.Context(), userID, plan))
}

func TestUsageStatusAnonymousFresh(t *testing.T) {
	app := newTestApp()
	req := httptest.NewRequest(http.MethodGet, "/v1/usage", nil)
	rec := httptest.NewRecorder()

	app.UsageStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"can_search":true`) || !strings.Contains(body, `"search_count":0`) {
		t.Fatalf("body = %s", body)
	}
}

func TestSearchAnonymousLifecycle(t *testing.T) {
	app := newTestApp()

	// First search is allowed and bumps the cookie counter.
	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{"query":"rocket skates"}`))
	rec := httptest.NewRecorder()
	app.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("first search status = %d, body=%s", rec.Code, rec.Body.String())
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != "1" {
		t.Fatalf("cookie after first search = %+v", cookies)
	}

	// Second search with the incremented cookie hits the limit.
	req = httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{"query":"rocket skates"}`))
	req.AddCookie(&http.Cookie{Name: counter.DefaultCookieName, Value: "1"})
	rec = httptest.NewRecorder()
	app.Search(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("second search status = %d, want 403", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "sign_in_required") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestSearchUnknownModel(t *testing.T) {
	app := newTestApp()
	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{"query":"q","model":"gpt-4o"}`))
	rec := httptest.NewRecorder()
	app.Search(rec, req)

	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "invalid_model") {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestSearchModelNotAllowedForFreeTier(t *testing.T) {
	app := newTestApp()
	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{"query":"q","model":"claude-3-opus-20240229"}`))
	req = asUser(req, "user-1", "free")
	rec := httptest.NewRecorder()
	app.Search(rec, req)

	if rec.Code != http.StatusForbidden || !strings.Contains(rec.Body.String(), "model_not_allowed") {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestSearchPaidTierGetsClaude(t *testing.T) {
	app := newTestApp()
	searcher := app.Searcher.(*fakeSearcher)

	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{"query":"q","model":"claude-3-opus-20240229"}`))
	req = asUser(req, "user-1", "paid")
	rec := httptest.NewRecorder()
	app.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if searcher.calls != 1 {
		t.Fatalf("pipeline calls = %d, want 1", searcher.calls)
	}
}

func TestSearchStoreUnavailableFailsClosed(t *testing.T) {
	app := newTestApp()
	app.Counters = erroringStore{}
	searcher := app.Searcher.(*fakeSearcher)

	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{"query":"q"}`))
	req = asUser(req, "user-1", "free")
	rec := httptest.NewRecorder()
	app.Search(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if searcher.calls != 0 {
		t.Fatalf("pipeline must not run when the store is down")
	}
}

func TestSearchNoPostsFound(t *testing.T) {
	app := newTestApp()
	app.Searcher = &fakeSearcher{err: domain.ErrNoPostsFound}

	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{"query":"q"}`))
	rec := httptest.NewRecorder()
	app.Search(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	// A failed search never burns quota.
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("failed search must not touch the counter cookie")
	}
}

func TestSearchProviderFailure(t *testing.T) {
	app := newTestApp()
	app.Searcher = &fakeSearcher{err: domain.ErrProviderFailure}

	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{"query":"q"}`))
	rec := httptest.NewRecorder()
	app.Search(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestSearchAuthenticatedRecordsUsageAndHistory(t *testing.T) {
	app := newTestApp()
	history := app.History.(*fakeHistory)

	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{"query":"rocket skates"}`))
	req = asUser(req, "user-1", "free")
	rec := httptest.NewRecorder()
	app.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(history.inserted) != 1 || history.inserted[0].Query != "rocket skates" {
		t.Fatalf("history = %+v", history.inserted)
	}

	key := app.Gate.CounterKey(domain.Identity{UserID: "user-1", Tier: domain.TierFree})
	if n, ok, _ := app.Counters.Get(context.Background(), key); !ok || n != 1 {
		t.Fatalf("counter = %d/%v, want 1/true", n, ok)
	}
}

func TestUsageResetAnonymousOnly(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodDelete, "/v1/usage", nil)
	req.AddCookie(&http.Cookie{Name: counter.DefaultCookieName, Value: "1"})
	rec := httptest.NewRecorder()
	app.UsageReset(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/usage", nil)
	req = asUser(req, "user-1", "free")
	rec = httptest.NewRecorder()
	app.UsageReset(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("authenticated reset status = %d, want 403", rec.Code)
	}
}

func TestModelsPerTier(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	rec := httptest.NewRecorder()
	app.Models(rec, req)
	if !strings.Contains(rec.Body.String(), `"tier":"anonymous"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "claude-3-opus-20240229") {
		t.Fatalf("anonymous tier must not see paid models")
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	req = asUser(req, "user-1", "paid")
	rec = httptest.NewRecorder()
	app.Models(rec, req)
	if !strings.Contains(rec.Body.String(), "claude-3-opus-20240229") {
		t.Fatalf("paid tier should see claude models: %s", rec.Body.String())
	}
}

func TestAuthGoogleVerify(t *testing.T) {
	app := newTestApp()
	app.Verifier = fakeVerifier{claims: map[string]any{
		"sub": "g-sub", "email": "a@b.c", "name": "Ada", "picture": "p",
	}}

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/google", strings.NewReader(`{"id_token":"tok"}`))
	rec := httptest.NewRecorder()
	app.AuthGoogleVerify(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"token":"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if app.Users.(*fakeUsers).upserted.GoogleSub != "g-sub" {
		t.Fatalf("user not upserted")
	}
}

func TestAuthGoogleVerifyRejectsBadToken(t *testing.T) {
	app := newTestApp()
	app.Verifier = fakeVerifier{err: errors.New("bad token")}

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/google", strings.NewReader(`{"id_token":"tok"}`))
	rec := httptest.NewRecorder()
	app.AuthGoogleVerify(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestMe(t *testing.T) {
	app := newTestApp()
	app.Users.(*fakeUsers).users["user-1"] = &domain.User{ID: "user-1", Email: "a@b.c", Plan: domain.TierPaid}

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req = asUser(req, "user-1", "free") // stale claim; the users table wins
	rec := httptest.NewRecorder()
	app.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"tier":"paid"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req = asUser(req, "ghost", "free")
	rec = httptest.NewRecorder()
	app.Me(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing user status = %d, want 404", rec.Code)
	}
}

func TestHistoryListAndDelete(t *testing.T) {
	app := newTestApp()
	app.History.(*fakeHistory).entries = []domain.HistoryEntry{
		{ID: "h-1", UserID: "user-1", Query: "skates"},
		{ID: "h-2", UserID: "other", Query: "boots"},
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/history", nil)
	req = asUser(req, "user-1", "free")
	rec := httptest.NewRecorder()
	app.HistoryList(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "skates") || strings.Contains(rec.Body.String(), "boots") {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestAccountDelete(t *testing.T) {
	app := newTestApp()
	users := app.Users.(*fakeUsers)
	history := app.History.(*fakeHistory)

	req := httptest.NewRequest(http.MethodDelete, "/v1/account", nil)
	req = asUser(req, "user-1", "free")
	rec := httptest.NewRecorder()
	app.AccountDelete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(users.deleted) != 1 || users.deleted[0] != "user-1" {
		t.Fatalf("deleted users = %v", users.deleted)
	}
	if len(history.purged) != 1 || history.purged[0] != "user-1" {
		t.Fatalf("purged history = %v", history.purged)
	}
}

func TestEstimateCostHandler(t *testing.T) {
	app := newTestApp()
	req := httptest.NewRequest(http.MethodPost, "/v1/estimate-cost", strings.NewReader(`{"model":"gemini-1.5-flash","max_posts":3}`))
	rec := httptest.NewRecorder()
	app.EstimateCost(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"provider":"gemini"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}
