package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/finanzcord/finanzcord/internal/actorctx"
	"github.com/finanzcord/finanzcord/internal/config"
	"github.com/finanzcord/finanzcord/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

const defaultTimeout = 3 * time.Second

// pathID reads a positive integer path parameter, answering 400 otherwise.
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondBadRequest(ctx, name+" must be a positive integer", gin.H{"field": name})
		return 0, false
	}
	return id, true
}

// pathInt reads a non-negative integer no larger than max.
func pathInt(ctx *gin.Context, name string, max int) (int, bool) {
	n, err := strconv.Atoi(ctx.Param(name))
	if err != nil || n < 0 || n > max {
		RespondBadRequest(ctx, name+" must be an integer between 0 and "+strconv.Itoa(max), gin.H{"field": name})
		return 0, false
	}
	return n, true
}

// caller returns the resolved user. Routes are always behind ResolveUser, so a
// miss is a wiring bug.
func caller(ctx *gin.Context) (actorctx.Actor, bool) {
	a, ok := middlewares.CurrentUser(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return actorctx.Actor{}, false
	}
	return a, true
}

func withTimeout(ctx *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = defaultTimeout
	}
	return config.WithTimeout(ctx.Request.Context(), d)
}
