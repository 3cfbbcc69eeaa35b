package handlers

import (
	"net/http"

	"server/internal/usage"
)

// UsageStatus reports whether the caller may run another search, anonymous
// or signed in.
func (a *App) UsageStatus(w http.ResponseWriter, r *http.Request) {
	id := a.identity(r)
	store := a.counterStore(w, r, id)

	status, err := a.Gate.CheckStatus(r.Context(), id, store)
	if err != nil {
		a.error(w, http.StatusServiceUnavailable, "store_unavailable", "usage store unavailable")
		return
	}
	a.json(w, http.StatusOK, status)
}

// UsageReset clears the anonymous device counter. Signed-in counters are
// never reset through the API.
func (a *App) UsageReset(w http.ResponseWriter, r *http.Request) {
	id := a.identity(r)
	if id.IsAuthenticated() {
		a.error(w, http.StatusForbidden, "forbidden", "authenticated usage cannot be reset")
		return
	}
	store := a.counterStore(w, r, id)
	if err := a.Gate.ResetAnonymous(r.Context(), store); err != nil {
		a.error(w, http.StatusServiceUnavailable, "store_unavailable", "usage store unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type modelsResponse struct {
	Tier    string   `json:"tier"`
	Models  []string `json:"models"`
	Default string   `json:"default"`
}

// Models lists the model IDs the caller's tier may use.
func (a *App) Models(w http.ResponseWriter, r *http.Request) {
	id := a.identity(r)
	a.json(w, http.StatusOK, modelsResponse{
		Tier:    string(id.Tier),
		Models:  usage.AllowedModels(id.Tier),
		Default: usage.DefaultModel,
	})
}
