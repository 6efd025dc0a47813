// Package actorctx carries the authenticated actor identity through
// request context. Authentication itself happens upstream; this package
// only transports what the auth layer resolved.
package actorctx

import "context"

type contextKey struct{}

// WithActorID returns a context carrying the acting operator's identifier.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, contextKey{}, actorID)
}

// ActorIDFromContext extracts the acting operator's identifier, if present.
func ActorIDFromContext(ctx context.Context) (string, bool) {
	actorID, ok := ctx.Value(contextKey{}).(string)
	return actorID, ok && actorID != ""
}
