package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is the readiness view of the persistence gateway.
type Pinger interface {
	Enabled() bool
	Ping(ctx context.Context) error
}

type HealthController struct {
	database Pinger
}

func NewHealthController(database Pinger) *HealthController {
	return &HealthController{database: database}
}

// Health is a liveness probe with no dependency checks.
func (hc *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the optional database answers.
func (hc *HealthController) Ready(c *gin.Context) {
	if hc.database == nil || !hc.database.Enabled() {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "persistence": "disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := hc.database.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":      "error",
			"persistence": "error",
			"detail":      err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "persistence": "ok"})
}
