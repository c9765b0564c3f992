package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/projexhq/projex-server/internal/domain"
	"github.com/projexhq/projex-server/internal/http/response"
	"github.com/projexhq/projex-server/internal/service"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

// AuthMiddleware resolves the bearer access token to an active user and
// stores it on the request context.
func AuthMiddleware(auth service.AuthServiceInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.CurrentUser(r.Context(), BearerToken(r))
			if err != nil {
				response.FromError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken returns the token of an "Authorization: Bearer" header, or "".
func BearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(auth[7:])
}

func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(UserContextKey).(*domain.User)
	return u, ok && u != nil
}
