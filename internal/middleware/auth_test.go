package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rgalloway/tally/internal/auth"
	"github.com/rgalloway/tally/internal/database"
	"github.com/rgalloway/tally/internal/store"
)

func setupAuthTest(t *testing.T) (*auth.Tokens, *store.SessionStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	user, err := store.NewUserStore(db).Create("alice@example.com", "Alice", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return auth.NewTokens("test-secret", time.Hour), store.NewSessionStore(db), user.ID
}

func authedHandler(t *testing.T, gotUser *int64) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotUser = auth.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthValidToken(t *testing.T) {
	tokens, sessions, userID := setupAuthTest(t)

	token, tokenID, expiresAt, err := tokens.Issue(userID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := sessions.Create(tokenID, userID, expiresAt); err != nil {
		t.Fatalf("create session: %v", err)
	}

	var gotUser int64
	handler := RequireAuth(tokens, sessions)(authedHandler(t, &gotUser))

	req := httptest.NewRequest("GET", "/api/habits", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUser != userID {
		t.Errorf("context user = %d, want %d", gotUser, userID)
	}
}

func TestRequireAuthMissingHeader(t *testing.T) {
	tokens, sessions, _ := setupAuthTest(t)

	var gotUser int64
	handler := RequireAuth(tokens, sessions)(authedHandler(t, &gotUser))

	req := httptest.NewRequest("GET", "/api/habits", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthBadToken(t *testing.T) {
	tokens, sessions, _ := setupAuthTest(t)

	var gotUser int64
	handler := RequireAuth(tokens, sessions)(authedHandler(t, &gotUser))

	req := httptest.NewRequest("GET", "/api/habits", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthRevokedSession(t *testing.T) {
	tokens, sessions, userID := setupAuthTest(t)

	token, tokenID, expiresAt, err := tokens.Issue(userID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := sessions.Create(tokenID, userID, expiresAt); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := sessions.DeleteByTokenID(tokenID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	var gotUser int64
	handler := RequireAuth(tokens, sessions)(authedHandler(t, &gotUser))

	req := httptest.NewRequest("GET", "/api/habits", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// Signature still verifies, but the session is gone.
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
