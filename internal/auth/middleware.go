package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/kaddachi/tasktrack-be/internal/models"
	"github.com/kaddachi/tasktrack-be/internal/services"
)

type contextKey string

// CallerKey is the context key under which the resolved caller is stored.
const CallerKey = contextKey("caller")

// Middleware returns a middleware that requires a valid bearer access token
// and stores the resolved caller identity in the request context.
func Middleware(tokens services.TokenServiceProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				http.Error(w, "Missing auth token", http.StatusUnauthorized)
				return
			}

			caller, err := tokens.VerifyAccess(tokenStr)
			if err != nil {
				http.Error(w, "Invalid auth token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), CallerKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerFrom extracts the caller stored by Middleware.
func CallerFrom(ctx context.Context) (models.Caller, bool) {
	caller, ok := ctx.Value(CallerKey).(models.Caller)
	return caller, ok
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
