package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	logger "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Logger"
)

// ReadinessCheck reports whether a backing dependency is reachable.
type ReadinessCheck func(ctx context.Context) error

// HealthController handles liveness and readiness probes.
type HealthController struct {
	checks map[string]ReadinessCheck
	logger *logger.Logger
}

// NewHealthController creates a new health controller
func NewHealthController(logger *logger.Logger, checks map[string]ReadinessCheck) *HealthController {
	return &HealthController{
		checks: checks,
		logger: logger.WithComponent("health"),
	}
}

// RegisterRoutes registers the health routes with Gin
func (c *HealthController) RegisterRoutes(router *gin.Engine) {
	router.GET("/health/live", c.HealthLive)
	router.GET("/health/ready", c.HealthReady)
}

func (c *HealthController) HealthLive(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func (c *HealthController) HealthReady(ctx *gin.Context) {
	checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	results := gin.H{}
	ready := true
	for name, check := range c.checks {
		if err := check(checkCtx); err != nil {
			c.logger.WithField("check", name).WithError(err).Warn("readiness check failed")
			results[name] = false
			ready = false
		} else {
			results[name] = true
		}
	}

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}

	ctx.JSON(status, gin.H{
		"status": state,
		"checks": results,
	})
}
