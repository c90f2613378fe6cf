package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ApiService/middleware"
	ingestion "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Ingestion"
	logger "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Logger"
)

// SamplingController exposes operator control over the sampling loop.
type SamplingController struct {
	scheduler      *ingestion.SamplingScheduler
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewSamplingController creates a new sampling controller
func NewSamplingController(scheduler *ingestion.SamplingScheduler, logger *logger.Logger, authMiddleware *middleware.AuthMiddleware) *SamplingController {
	return &SamplingController{
		scheduler:      scheduler,
		logger:         logger.WithComponent("sampling"),
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers the sampling routes with Gin
func (c *SamplingController) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/sampling", c.authMiddleware.Authenticate(), c.authMiddleware.RequireAdmin())
	{
		api.POST("/restart", c.Restart)
	}
}

// Restart stops the running sampling loop and starts a new one with
// the interval from the current configuration.
func (c *SamplingController) Restart(ctx *gin.Context) {
	if c.scheduler == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "sampling is disabled on this instance"})
		return
	}

	interval := c.scheduler.Restart(ctx.Request.Context())
	c.logger.WithField("interval", interval.String()).Info("sampling restarted by operator")

	ctx.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "sampling restarted",
		"interval_ms": interval.Milliseconds(),
	})
}
