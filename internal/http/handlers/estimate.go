package handlers

import (
	"encoding/json"
	"net/http"

	"server/internal/summarize"
)

type estimateRequest struct {
	Model    string `json:"model"`
	MaxPosts int    `json:"max_posts"`
}

// EstimateCost predicts the token and dollar cost of a search without
// running one.
func (a *App) EstimateCost(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	a.json(w, http.StatusOK, summarize.EstimateCost(req.Model, req.MaxPosts))
}
