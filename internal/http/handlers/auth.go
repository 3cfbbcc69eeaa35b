package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"server/internal/domain"
	"server/internal/middleware"
)

const (
	tokenLifetime = 24 * time.Hour
	jwtIssuer     = "reddit-summarizer"
	jwtAudience   = "web"
)

type googleVerifyRequest struct {
	IDToken string `json:"id_token"`
}

type googleVerifyResponse struct {
	Token string         `json:"token"`
	User  userProfileDTO `json:"user"`
}

type userProfileDTO struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Plan    string `json:"plan"`
	Tier    string `json:"tier"`
}

func profileDTO(u *domain.User) userProfileDTO {
	return userProfileDTO{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Picture: u.Picture,
		Plan:    string(u.Plan),
		Tier:    string(domain.TierFromPlan(string(u.Plan))),
	}
}

// AuthGoogleVerify trades a Google ID token for a service JWT, creating the
// user row on first sign-in.
func (a *App) AuthGoogleVerify(w http.ResponseWriter, r *http.Request) {
	var req googleVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.IDToken == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "id_token required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	claims, err := a.Verifier.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("google verify failed")
		a.error(w, http.StatusUnauthorized, "unauthorized", "invalid google token")
		return
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)
	if sub == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "token missing subject")
		return
	}

	user, err := a.Users.UpsertGoogleUser(r.Context(), sub, email, name, picture)
	if err != nil {
		a.Logger.Error().Err(err).Msg("upsert user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to persist user")
		return
	}

	token, err := middleware.SignJWT(a.JWTSecret, middleware.TokenClaims{
		Sub:      user.ID,
		Plan:     string(user.Plan),
		Exp:      time.Now().Add(tokenLifetime).Unix(),
		Issuer:   jwtIssuer,
		Audience: jwtAudience,
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign jwt failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}

	a.json(w, http.StatusOK, googleVerifyResponse{Token: token, User: profileDTO(user)})
}

type meResponse struct {
	User  userProfileDTO     `json:"user"`
	Usage domain.UsageStatus `json:"usage"`
}

// Me returns the caller's profile plus today's usage.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	id := a.identity(r)
	user, err := a.Users.GetByID(r.Context(), id.UserID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "user not found")
		return
	}

	// The users table is authoritative; the token's plan claim may lag a
	// subscription change.
	id.Tier = domain.TierFromPlan(string(user.Plan))
	status, err := a.Gate.CheckStatus(r.Context(), id, a.Counters)
	if err != nil {
		a.error(w, http.StatusServiceUnavailable, "store_unavailable", "usage store unavailable")
		return
	}

	a.json(w, http.StatusOK, meResponse{User: profileDTO(user), Usage: status})
}
