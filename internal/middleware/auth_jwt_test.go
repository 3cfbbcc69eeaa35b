package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	claims := TokenClaims{
		Sub:  "user-1",
		Plan: "paid",
		Exp:  time.Now().Add(time.Hour).Unix(),
	}
	token, err := SignJWT("secret", claims)
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}

	got, err := VerifyJWT("secret", token)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}
	if got.Sub != "user-1" || got.Plan != "paid" {
		t.Fatalf("claims = %+v", got)
	}

	if _, err := VerifyJWT("other-secret", token); err == nil {
		t.Fatalf("expected verification failure with wrong secret")
	}
}

func TestVerifyJWTExpired(t *testing.T) {
	token, _ := SignJWT("secret", TokenClaims{Sub: "u", Exp: time.Now().Add(-time.Minute).Unix()})
	if _, err := VerifyJWT("secret", token); err == nil {
		t.Fatalf("expected expired token error")
	}
}

func TestAuthJWTAnonymousPassthrough(t *testing.T) {
	var sawUser string
	handler := AuthJWT("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawUser = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/usage", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if sawUser != "" {
		t.Fatalf("anonymous request should carry no user id, got %q", sawUser)
	}
}

func TestAuthJWTRejectsBadToken(t *testing.T) {
	handler := AuthJWT("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthJWTAttachesIdentity(t *testing.T) {
	token, _ := SignJWT("secret", TokenClaims{Sub: "user-9", Plan: "free", Exp: time.Now().Add(time.Hour).Unix()})

	var gotUser, gotPlan string
	handler := AuthJWT("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotPlan = PlanFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotUser != "user-9" || gotPlan != "free" {
		t.Fatalf("identity = %q/%q, want user-9/free", gotUser, gotPlan)
	}
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/history", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	req = req.WithContext(ContextWithUser(req.Context(), "user-1", "free"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
