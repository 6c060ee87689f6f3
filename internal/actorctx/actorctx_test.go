package actorctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActorRoundTrip(t *testing.T) {
	_, ok := ActorFrom(context.Background())
	assert.False(t, ok)

	ctx := WithActor(context.Background(), Actor{UserID: 4, Email: "a@x.com"})
	a, ok := ActorFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(4), a.UserID)
	assert.Equal(t, "a@x.com", a.Email)
}

func TestRequestID(t *testing.T) {
	_, ok := RequestIDFrom(WithRequestID(context.Background(), ""))
	assert.False(t, ok)

	id, ok := RequestIDFrom(WithRequestID(context.Background(), "req-1"))
	assert.True(t, ok)
	assert.Equal(t, "req-1", id)
}
