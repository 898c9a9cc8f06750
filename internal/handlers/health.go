package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Check(c *gin.Context) {
	status, dbState := http.StatusOK, "ok"

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			status, dbState = http.StatusServiceUnavailable, "unavailable"
		}
	}

	c.JSON(status, gin.H{
		"status":    http.StatusText(status),
		"message":   "Docket API is running",
		"database":  dbState,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
