package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type actorKeyType struct{}

var actorKey actorKeyType

// Actor is the authenticated person behind a request. The handlers pass its
// PersonID explicitly into every service operation; no operation resolves the
// caller from ambient state.
type Actor struct {
	PersonID uuid.UUID
	Token    *jwt.Token
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	val := ctx.Value(actorKey)
	if val == nil {
		return Actor{}, false
	}
	return val.(Actor), true
}

func MustHaveActor(ctx context.Context) Actor {
	actor, found := ActorFromContext(ctx)
	if !found {
		zap.S().Named("auth").Panic("failed to find actor in context")
	}
	return actor
}

func NewActorContext(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}
