package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/finanzcord/finanzcord/internal/domain/access"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondUnauthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, "forbidden", message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// ownedMessages are the client-facing texts for one resource.
type ownedMessages struct {
	notFound  string
	forbidden string
}

// respondStoreError maps store outcomes to responses. Anything unexpected is
// logged with the request context and answered with an opaque 500.
func respondStoreError(ctx *gin.Context, err error, msgs ownedMessages, action string) {
	switch {
	case errors.Is(err, access.ErrNotFound):
		RespondNotFound(ctx, msgs.notFound)
	case errors.Is(err, access.ErrForbidden):
		RespondForbidden(ctx, msgs.forbidden)
	default:
		logStoreError(ctx, err, action)
		RespondInternal(ctx, "Could not "+action)
	}
}

func logStoreError(ctx *gin.Context, err error, action string) {
	level := slog.LevelError
	if errors.Is(err, context.Canceled) {
		// client went away
		level = slog.LevelWarn
	}
	slog.Default().Log(ctx.Request.Context(), level, "store call failed", "action", action, "err", err)
}
