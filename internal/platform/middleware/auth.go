package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"escolar/internal/tenant/models"
	"escolar/pkg/requestcontext"
)

// PrincipalResolver turns a bearer token into an authenticated principal.
// Resolution fails closed: any error rejects the request before a store
// handle can be bound.
type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) (models.Principal, error)
}

type contextKeyPrincipal struct{}

// ContextKeyPrincipal is exported for tests that build contexts directly.
var ContextKeyPrincipal = contextKeyPrincipal{}

// PrincipalFrom retrieves the authenticated principal from the context.
// The second return is false when no auth middleware ran.
func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(ContextKeyPrincipal).(models.Principal)
	return p, ok
}

// WithPrincipal injects a principal into a context. Useful for service unit
// tests that don't run the full HTTP middleware chain.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipal, p)
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireAuth authenticates the request and attaches the resolved principal.
// Requests without a valid bearer token never reach the handler.
func RequireAuth(resolver PrincipalResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing bearer token")
				return
			}

			principal, err := resolver.Resolve(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
		})
	}
}
