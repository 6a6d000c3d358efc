package middleware

import (
	"context"
	"net/http"
	"strings"

	"pedidos-api/internal/entities"
	"pedidos-api/internal/service"
	"pedidos-api/pkg/utils"
)

// TokenCookie is the httpOnly cookie set on login and read back here.
const TokenCookie = "token"

type TokenVerifier interface {
	Verify(token string) (service.TokenPayload, error)
}

type userKey struct{}

// Auth gates a route subtree behind a valid token. The cookie takes
// precedence over the Authorization header.
func Auth(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				utils.WriteDomainError(w, entities.ErrMissingToken)
				return
			}

			payload, err := verifier.Verify(token)
			if err != nil {
				utils.WriteDomainError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userKey{}, payload)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the identity attached by Auth.
func UserFromContext(ctx context.Context) (service.TokenPayload, bool) {
	payload, ok := ctx.Value(userKey{}).(service.TokenPayload)
	return payload, ok
}

func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
