package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz fails while the database is unreachable.
func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.db == nil {
		ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}

	cctx, cancel := withTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.db.Ping(cctx); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "db": "down"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready", "db": "up"})
}
