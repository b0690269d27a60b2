package api

import (
	"context"
	"net/http"

	"tendertriage/orchestrator"

	"github.com/gin-gonic/gin"
)

// RegisterFeedRoutes registers feed-related endpoints.
func RegisterFeedRoutes(r *gin.Engine) {
	g := r.Group("/api/feeds")
	g.POST("/refresh", handleFeedRefresh)
}

// handleFeedRefresh triggers the orchestrator to fetch, triage, and optionally archive.
// It runs asynchronously and returns 202 Accepted immediately.
func handleFeedRefresh(c *gin.Context) {
	go func() {
		_ = orchestrator.RunOnce(context.Background())
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "refresh started"})
}
