package handlers

import (
	"net/http"
)

// AccountDelete removes the caller's account along with their history and
// usage counters.
func (a *App) AccountDelete(w http.ResponseWriter, r *http.Request) {
	id := a.identity(r)

	if err := a.History.DeleteForUser(r.Context(), id.UserID); err != nil {
		a.Logger.Error().Err(err).Msg("delete history failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete account data")
		return
	}
	if err := a.Counters.Delete(r.Context(), a.Gate.CounterKey(id)); err != nil {
		a.Logger.Error().Err(err).Msg("delete usage counter failed")
	}
	if err := a.Users.Delete(r.Context(), id.UserID); err != nil {
		a.Logger.Error().Err(err).Msg("delete user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete account")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
