package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ApiService/middleware"
	ingestion "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Ingestion"
	logger "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Logger"
	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
)

// InternalController handles internal API endpoints for service-to-service communication
type InternalController struct {
	ingestor *ingestion.ReadingIngestor
	logger   *logger.Logger
}

// NewInternalController creates a new internal controller
func NewInternalController(ingestor *ingestion.ReadingIngestor, logger *logger.Logger) *InternalController {
	return &InternalController{
		ingestor: ingestor,
		logger:   logger.WithComponent("internal"),
	}
}

// InternalReadingRequest is the payload the MQTT bridge forwards.
type InternalReadingRequest struct {
	SensorID  string    `json:"sensor_id" binding:"required"`
	RawValue  *float64  `json:"raw_value" binding:"required"`
	Timestamp time.Time `json:"timestamp"`
}

// InternalReadingResponse reports the ingestion outcome to the bridge.
type InternalReadingResponse struct {
	Success bool   `json:"success"`
	Durable bool   `json:"durable"`
	Error   string `json:"error,omitempty"`
}

// CreateReading ingests a reading forwarded by the bridge.
func (c *InternalController) CreateReading(ctx *gin.Context) {
	var req InternalReadingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, InternalReadingResponse{
			Success: false,
			Error:   "Invalid request: " + err.Error(),
		})
		return
	}

	result, err := c.ingestor.Ingest(ctx.Request.Context(), req.SensorID, *req.RawValue, req.Timestamp)
	if err != nil {
		if cismodels.IsValidation(err) {
			ctx.JSON(http.StatusBadRequest, InternalReadingResponse{
				Success: false,
				Error:   err.Error(),
			})
			return
		}
		if errors.Is(err, cismodels.ErrStorageUnavailable) {
			// Derived but not stored. 202 tells the bridge the reading
			// was accepted, so it must not retry and duplicate it.
			ctx.JSON(http.StatusAccepted, InternalReadingResponse{
				Success: true,
				Durable: false,
				Error:   err.Error(),
			})
			return
		}
		c.logger.WithError(err).Error("internal reading ingestion failed")
		ctx.JSON(http.StatusInternalServerError, InternalReadingResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	c.logger.WithField("sensor_id", result.Reading.SensorID).Debug("bridge reading ingested")
	ctx.JSON(http.StatusCreated, InternalReadingResponse{
		Success: true,
		Durable: true,
	})
}

// RegisterRoutes registers the internal routes with Gin
func (c *InternalController) RegisterRoutes(router *gin.Engine) {
	internal := router.Group("/internal", middleware.ServiceAuthMiddleware())
	{
		internal.POST("/readings", c.CreateReading)
	}
}
