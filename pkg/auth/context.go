package auth

import (
	"context"
	"errors"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const actorKey contextKey = "actor"

// FallbackActor is attributed to mutations when no authenticated identity
// is available (CLI tooling, tests, unauthenticated dev setups).
const FallbackActor = "unknown"

// ErrActorNotFound is returned when no actor exists in the request context.
// Handlers should return 401 when this error occurs.
var ErrActorNotFound = errors.New("actor not found in context")

// ActorFromCtx extracts the authenticated actor from the request context.
// Returns ErrActorNotFound if no actor is set (unauthenticated request).
func ActorFromCtx(ctx context.Context) (string, error) {
	actor, ok := ctx.Value(actorKey).(string)
	if !ok || actor == "" {
		return "", ErrActorNotFound
	}
	return actor, nil
}

// WithActor returns a new context with the given actor attached.
// Used by authentication middleware after validating the session.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}
