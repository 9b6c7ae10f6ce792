package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"enrollsvc/internal/identity"
	"enrollsvc/internal/transport/http/shared"
	dErrors "enrollsvc/pkg/domain-errors"
)

type contextKeyActor struct{}

// ContextKeyActor is exported for use in handler tests.
var ContextKeyActor = contextKeyActor{}

// GetActor retrieves the authenticated actor from the context.
func GetActor(ctx context.Context) (identity.Actor, bool) {
	actor, ok := ctx.Value(ContextKeyActor).(identity.Actor)
	return actor, ok
}

// WithActor returns a context carrying the actor. Test helper and middleware
// share it so handler tests can skip the full chain.
func WithActor(ctx context.Context, actor identity.Actor) context.Context {
	return context.WithValue(ctx, ContextKeyActor, actor)
}

// RequireAuth rejects requests without a well-formed bearer token before any
// downstream call, then delegates validation and stores the resulting actor
// in the request context.
func RequireAuth(validator identity.TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized - missing bearer token",
					"request_id", GetRequestID(ctx),
				)
				shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "No token provided"))
				return
			}

			actor, err := validator.Validate(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized - token validation failed",
					"request_id", GetRequestID(ctx),
					"error", err,
				)
				shared.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(ctx, actor)))
		})
	}
}
