package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"server/internal/adapter/counter"
	"server/internal/domain"
	"server/internal/infra"
	"server/internal/middleware"
	"server/internal/summarize"
	"server/internal/usage"
)

// GoogleVerifier validates Google ID tokens.
type GoogleVerifier interface {
	VerifyIDToken(ctx context.Context, token string) (map[string]any, error)
}

// UserStore is the user persistence surface the handlers need.
type UserStore interface {
	UpsertGoogleUser(ctx context.Context, googleSub, email, name, picture string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

// HistoryStore is the search history persistence surface.
type HistoryStore interface {
	Insert(ctx context.Context, entry *domain.HistoryEntry) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.HistoryEntry, error)
	DeleteEntry(ctx context.Context, id, userID string) error
	DeleteForUser(ctx context.Context, userID string) error
}

// SearchRunner runs the summarize pipeline.
type SearchRunner interface {
	Run(ctx context.Context, query, model string, maxPosts int) (*summarize.Result, error)
}

// App carries the dependencies shared by all handlers.
type App struct {
	Config    *infra.Config
	Logger    zerolog.Logger
	JWTSecret string
	Verifier  GoogleVerifier
	Users     UserStore
	History   HistoryStore
	Gate      *usage.Gate
	Counters  usage.CounterStore // authenticated counters
	Searcher  SearchRunner
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}

// identity derives the caller's identity from the verified JWT claims. The
// tier rides in the token; a stale plan claim lasts at most the token's
// 24-hour lifetime.
func (a *App) identity(r *http.Request) domain.Identity {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return domain.Anonymous()
	}
	return domain.Identity{
		UserID: userID,
		Tier:   domain.TierFromPlan(middleware.PlanFromContext(r.Context())),
	}
}

// counterStore picks the store the gate runs against: the shared PostgreSQL
// counters for signed-in callers, a per-exchange cookie store for anonymous
// ones.
func (a *App) counterStore(w http.ResponseWriter, r *http.Request, id domain.Identity) usage.CounterStore {
	if id.IsAuthenticated() {
		return a.Counters
	}
	return counter.NewCookie(w, r, counter.DefaultCookieName, a.Config.AnonWindow)
}
