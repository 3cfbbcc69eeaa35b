package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
)

type historyResponse struct {
	History []domain.HistoryEntry `json:"history"`
}

// HistoryList returns the caller's recent searches, newest first.
func (a *App) HistoryList(w http.ResponseWriter, r *http.Request) {
	id := a.identity(r)
	entries, err := a.History.ListByUser(r.Context(), id.UserID, a.Config.HistoryLimit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list history failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load history")
		return
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	a.json(w, http.StatusOK, historyResponse{History: entries})
}

// HistoryDelete removes one entry owned by the caller.
func (a *App) HistoryDelete(w http.ResponseWriter, r *http.Request) {
	id := a.identity(r)
	entryID := chi.URLParam(r, "id")
	if entryID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "entry id required")
		return
	}
	if err := a.History.DeleteEntry(r.Context(), entryID, id.UserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "history entry not found")
			return
		}
		a.Logger.Error().Err(err).Msg("delete history entry failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
