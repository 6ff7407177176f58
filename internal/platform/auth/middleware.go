package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/paperloft/api/internal/platform/httpx"
)

const bearerPrefix = "bearer "

// RequireAdmin rejects requests without a valid admin session token in the
// Authorization header.
func RequireAdmin(authenticator *AdminAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				httpx.WriteError(ctx, w, httpx.NewError("unauthorized", "missing bearer token", http.StatusUnauthorized))
				return
			}

			identity, err := authenticator.Verify(ctx, token)
			if err != nil {
				message := "invalid session token"
				if errors.Is(err, ErrTokenExpired) {
					message = "session token expired"
				}
				httpx.WriteError(ctx, w, httpx.NewError("unauthorized", message, http.StatusUnauthorized))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
		})
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
