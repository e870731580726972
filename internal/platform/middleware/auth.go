package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"easel/internal/board/models"
	"easel/pkg/requestcontext"
)

// TokenValidator validates a bearer token and returns the caller it
// represents.
type TokenValidator interface {
	ValidateToken(tokenString string) (*models.Caller, error)
}

type contextKeyCaller struct{}

// ContextKeyCaller is exported for tests that build contexts directly.
var ContextKeyCaller = contextKeyCaller{}

// GetCaller retrieves the authenticated caller from the context; nil for
// anonymous requests.
func GetCaller(ctx context.Context) *models.Caller {
	caller, ok := ctx.Value(ContextKeyCaller).(*models.Caller)
	if !ok {
		return nil
	}
	return caller
}

// WithCaller injects a caller into the context.
func WithCaller(ctx context.Context, caller *models.Caller) context.Context {
	return context.WithValue(ctx, ContextKeyCaller, caller)
}

// Authenticate resolves an optional Authorization header into a caller.
// Anonymous requests pass through with no caller; a present but invalid
// token is rejected so a client cannot silently lose its identity.
func Authenticate(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			caller, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
