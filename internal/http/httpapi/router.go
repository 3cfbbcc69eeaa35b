package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/http/handlers"
	"server/internal/infra/geoip"
	"server/internal/middleware"
)

// NewRouter wires the v1 API. Auth is optional everywhere so the gate can
// tell anonymous from signed-in callers; routes that only make sense with an
// account sit behind RequireAuth.
func NewRouter(app *handlers.App, resolver geoip.CountryResolver) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		middleware.RequestID,
		chimw.Recoverer,
		middleware.Logger(app.Logger, resolver),
		middleware.CORS(app.Config.CORSAllowedOrigins),
		middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute),
		middleware.AuthJWT(app.JWTSecret),
	)

	r.Get("/v1/healthz", app.Health)
	r.Post("/v1/auth/google", app.AuthGoogleVerify)

	r.Get("/v1/usage", app.UsageStatus)
	r.Delete("/v1/usage", app.UsageReset)
	r.Get("/v1/models", app.Models)
	r.Post("/v1/search", app.Search)
	r.Post("/v1/estimate-cost", app.EstimateCost)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/v1/me", app.Me)
		r.Get("/v1/history", app.HistoryList)
		r.Delete("/v1/history/{id}", app.HistoryDelete)
		r.Delete("/v1/account", app.AccountDelete)
	})

	return r
}
