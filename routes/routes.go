// Package routes exposes the bot's small HTTP surface: liveness and
// readiness probes for the deployment, served next to long polling.
package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is implemented by every session store backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

var startedAt = time.Now()

// SetupRoutes wires up the probe endpoints.
func SetupRoutes(r *gin.Engine, store Pinger) {
	r.GET("/health", healthHandler(store))
}

// GET /health
func healthHandler(store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		sessions := "ok"
		if err := store.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			sessions = err.Error()
		}

		c.JSON(status, gin.H{
			"status":         http.StatusText(status),
			"uptime_seconds": int(time.Since(startedAt).Seconds()),
			"session_store":  sessions,
		})
	}
}
