package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/warp/leave-service/leave"
)

type ctxKey int

const actorKey ctxKey = iota

// ActorFrom returns the authenticated actor stored by Authenticate.
func ActorFrom(ctx context.Context) (leave.Actor, bool) {
	a, ok := ctx.Value(actorKey).(leave.Actor)
	return a, ok
}

func withActor(ctx context.Context, a leave.Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// Authenticate verifies the bearer token and loads the actor. The role
// comes from the database, not the token.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			h.fail(w, r, leave.NewError(leave.ErrUnauthenticated, "Not authorized to access this route", nil))
			return
		}

		claims, err := h.Tokens.Parse(token)
		if err != nil {
			h.fail(w, r, leave.NewError(leave.ErrUnauthenticated, "Not authorized to access this route", err))
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			h.fail(w, r, leave.NewError(leave.ErrUnauthenticated, "Not authorized to access this route", err))
			return
		}

		actor, err := h.Service.ResolveActor(r.Context(), userID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withActor(r.Context(), actor)))
	})
}

// RequireRole rejects actors whose role is not listed. Must run after
// Authenticate.
func (h *Handler) RequireRole(roles ...leave.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok {
				h.fail(w, r, leave.NewError(leave.ErrUnauthenticated, "Not authorized to access this route", nil))
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			h.fail(w, r, leave.NewError(leave.ErrForbidden,
				"User role "+actor.Role.String()+" is not authorized to access this route", nil))
		})
	}
}

// actor is for handlers mounted behind Authenticate.
func actor(r *http.Request) leave.Actor {
	a, _ := ActorFrom(r.Context())
	return a
}
