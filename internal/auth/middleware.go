package auth

import (
	"context"
	"net/http"
)

type ctxKey int

const userIDKey ctxKey = 0

// RequireUser gates routes that need a signed-in account. Unauthenticated
// requests are redirected to the login page with a flash message.
func (s *Sessions) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.UserID(r)
		if !ok {
			s.FlashError(w, r, "Please log in to view that page")
			http.Redirect(w, r, "/users/login", http.StatusFound)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the user id placed by RequireUser.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDKey).(uint)
	return id, ok
}
