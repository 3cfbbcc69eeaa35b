package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"server/internal/domain"
	"server/internal/summarize"
	"server/internal/usage"
)

type searchRequest struct {
	Query    string `json:"query"`
	Model    string `json:"model"`
	MaxPosts int    `json:"max_posts"`
}

type searchResponse struct {
	*summarize.Result
	Usage domain.UsageStatus `json:"usage"`
}

// Search runs the gate checks, the summarize pipeline, and records usage
// only after the pipeline succeeded.
func (a *App) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "query required")
		return
	}
	if req.Model == "" {
		req.Model = usage.DefaultModel
	}

	id := a.identity(r)
	if !usage.IsKnownModel(req.Model) {
		a.error(w, http.StatusBadRequest, "invalid_model", "unknown model "+req.Model)
		return
	}
	if !usage.IsModelAllowed(req.Model, id.Tier) {
		a.error(w, http.StatusForbidden, "model_not_allowed", "model requires an upgraded plan")
		return
	}

	store := a.counterStore(w, r, id)
	status, err := a.Gate.CheckStatus(r.Context(), id, store)
	if err != nil {
		a.error(w, http.StatusServiceUnavailable, "store_unavailable", "usage store unavailable")
		return
	}
	if !status.CanSearch {
		if status.RequiresSignIn {
			a.error(w, http.StatusForbidden, "sign_in_required", "free search used, sign in to continue")
			return
		}
		a.error(w, http.StatusTooManyRequests, "quota_exceeded", "daily search limit reached")
		return
	}

	result, err := a.Searcher.Run(r.Context(), req.Query, req.Model, req.MaxPosts)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidQuery):
			a.error(w, http.StatusBadRequest, "bad_request", "query required")
		case errors.Is(err, domain.ErrNoPostsFound):
			a.error(w, http.StatusNotFound, "no_posts_found", "no Reddit posts found for the given query")
		case errors.Is(err, domain.ErrProviderFailure):
			a.Logger.Error().Err(err).Str("model", req.Model).Msg("ai provider failed")
			a.error(w, http.StatusBadGateway, "provider_failure", "summary generation failed")
		default:
			a.Logger.Error().Err(err).Msg("search pipeline failed")
			a.error(w, http.StatusInternalServerError, "internal", "search failed")
		}
		return
	}

	// The search succeeded; only now does it count against the quota.
	count, err := a.Gate.RecordSearch(r.Context(), id, store)
	if err != nil {
		a.Logger.Error().Err(err).Msg("failed to record usage")
	} else {
		status.SearchCount = count
		status.CanSearch = status.Unlimited() || count < status.Limit
		status.RequiresSignIn = !status.IsAuthenticated && !status.CanSearch
	}

	if id.IsAuthenticated() {
		entry := domain.HistoryEntry{
			UserID:  id.UserID,
			Query:   req.Query,
			Model:   req.Model,
			Summary: result.Summary,
			Sources: result.Sources,
		}
		if err := a.History.Insert(r.Context(), &entry); err != nil {
			a.Logger.Error().Err(err).Msg("failed to persist history")
		}
	}

	a.json(w, http.StatusOK, searchResponse{Result: result, Usage: status})
}
