package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/chris/wallet-payout-engine/pkg/api"
	"github.com/chris/wallet-payout-engine/pkg/models"
)

// Headers set by the API gateway after authentication.
const (
	ActorIDHeader   = "X-Actor-Id"
	ActorRoleHeader = "X-Actor-Role"
)

// Actor is the authenticated caller.
type Actor struct {
	ID   string
	Role models.Role
}

// IsAdmin reports whether the actor may run operator actions.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

type actorKey struct{}

// WithActor stores the actor in ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the actor stored by Actors.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// Actors reads the actor headers into the request context. Requests without
// an actor id pass through unauthenticated.
func Actors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(ActorIDHeader))
		if id != "" {
			role := models.Role(strings.ToLower(strings.TrimSpace(r.Header.Get(ActorRoleHeader))))
			r = r.WithContext(WithActor(r.Context(), Actor{ID: id, Role: role}))
		}
		next.ServeHTTP(w, r)
	})
}

func forbidden(w http.ResponseWriter, status int, msg string) {
	api.WriteJSON(w, status, api.Error{Error: msg, Kind: "authorization_error", Code: "forbidden"})
}

// RequireActor returns the caller or answers 401.
func RequireActor(w http.ResponseWriter, r *http.Request) (Actor, bool) {
	a, ok := ActorFrom(r.Context())
	if !ok {
		forbidden(w, http.StatusUnauthorized, "Missing actor")
		return Actor{}, false
	}
	return a, true
}

// RequireAdmin returns the caller if it is an admin, otherwise answers 401/403.
func RequireAdmin(w http.ResponseWriter, r *http.Request) (Actor, bool) {
	a, ok := RequireActor(w, r)
	if !ok {
		return Actor{}, false
	}
	if !a.IsAdmin() {
		forbidden(w, http.StatusForbidden, "Admin access required")
		return Actor{}, false
	}
	return a, true
}

// RequireSelfOrAdmin lets a user read their own records and admins read any.
func RequireSelfOrAdmin(w http.ResponseWriter, r *http.Request, userID string) (Actor, bool) {
	a, ok := RequireActor(w, r)
	if !ok {
		return Actor{}, false
	}
	if a.ID != userID && !a.IsAdmin() {
		forbidden(w, http.StatusForbidden, "Access denied")
		return Actor{}, false
	}
	return a, true
}
