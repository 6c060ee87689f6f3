// Package actorctx carries the acting user and request id on a context.Context
// so code below the HTTP layer can log them without importing gin.
package actorctx

import "context"

type ctxKey int

const (
	keyActor ctxKey = iota
	keyRequestID
)

type Actor struct {
	UserID int64
	Email  string
}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, keyActor, a)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(keyActor).(Actor)
	return a, ok && a.UserID != 0
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

func RequestIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRequestID).(string)
	return v, ok && v != ""
}
