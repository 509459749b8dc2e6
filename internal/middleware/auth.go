package middleware

import (
	"net/http"
	"strings"

	"github.com/rgalloway/tally/internal/auth"
	"github.com/rgalloway/tally/internal/store"
)

// RequireAuth validates the Authorization bearer token, checks that its
// jti is still a live session, and populates AuthContext. A valid
// signature alone is not enough: logout deletes the session row.
func RequireAuth(tokens *auth.Tokens, sessions *store.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, "missing authorization token")
				return
			}

			userID, tokenID, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			sess, err := sessions.GetByTokenID(tokenID)
			if err != nil || sess == nil || sess.UserID != userID {
				unauthorized(w, "invalid token")
				return
			}

			ctx := auth.WithAuth(r.Context(), auth.AuthContext{UserID: userID, TokenID: tokenID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error": "` + msg + `"}`))
}
