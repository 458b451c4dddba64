package auth

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/smartfactory/pkg/httpx"
	"github.com/ghuser/smartfactory/pkg/logger"
)

const sessionName = "smartfactory_session"
const sessionActorKey = "username"

// actorHeader is the unauthenticated fallback used when no session middleware
// is mounted (development, worker-to-API calls). The value is treated as an
// opaque identifier and never authenticated here.
const actorHeader = "X-Actor"

// RequireAuth is a chi middleware that enforces authentication via session cookies.
// It reads the session cookie, extracts the username, and injects it into the
// request context as the acting identity. Returns 401 Unauthorized if the
// session is missing, invalid, or lacks a username.
//
// After this middleware, handlers can safely call auth.ActorFromCtx(r.Context()).
func RequireAuth(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, sessionName)
			if err != nil {
				log.WarnContext(r.Context(), "invalid session cookie", "error", err)
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}

			actor, ok := session.Values[sessionActorKey].(string)
			if !ok || actor == "" {
				log.WarnContext(r.Context(), "session missing username")
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}

			ctx := WithActor(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromRequest resolves the acting identity for audit attribution.
// Order: session context (RequireAuth), then the X-Actor header, then
// FallbackActor. Mutating handlers always have a non-empty actor.
func ActorFromRequest(r *http.Request) string {
	if actor, err := ActorFromCtx(r.Context()); err == nil {
		return actor
	}
	if h := r.Header.Get(actorHeader); h != "" {
		return h
	}
	return FallbackActor
}
