package auth

import (
	"context"
	"net/http"

	"ticketly/internal/models"
	"ticketly/internal/utils"
)

type contextKey string

const actorKey contextKey = "actor"

// Verifier resolves a bearer token to the acting user.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (models.Actor, error)
}

// Middleware authenticates every request and stores the resolved actor
// in the request context. Requests without a valid token get a 401.
func Middleware(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("authorization required", err.Error()))
				return
			}

			actor, err := verifier.Verify(r.Context(), rawToken)
			if err != nil {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("invalid token", err.Error()))
				return
			}

			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose actor does not hold the admin role.
// It must run after Middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok || !actor.IsAdmin() {
			utils.WriteJSON(w, http.StatusForbidden, utils.ErrorResponse("access denied", "admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ActorFromContext returns the authenticated actor stored by Middleware.
func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(models.Actor)
	return actor, ok
}

// WithActor injects an actor into a context. Used by handler tests.
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}
