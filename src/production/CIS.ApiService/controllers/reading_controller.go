package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ApiService/implementation/export"
	"gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ApiService/middleware"
	ingestion "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Ingestion"
	logger "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Logger"
	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
	interfaces "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Repository/Interfaces"
)

// ReadingController handles level readings: ingestion from devices,
// the dashboard's current-level poll, history queries and exports.
type ReadingController struct {
	readingRepo    interfaces.ReadingRepository
	ingestor       *ingestion.ReadingIngestor
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewReadingController creates a new reading controller
func NewReadingController(readingRepo interfaces.ReadingRepository, ingestor *ingestion.ReadingIngestor, logger *logger.Logger, authMiddleware *middleware.AuthMiddleware) *ReadingController {
	return &ReadingController{
		readingRepo:    readingRepo,
		ingestor:       ingestor,
		logger:         logger.WithComponent("readings"),
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers the reading routes with Gin
func (c *ReadingController) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api", c.authMiddleware.Authenticate())
	{
		api.POST("/readings", c.CreateReading)
		api.GET("/level", c.GetLevel)
		api.GET("/records", c.GetRecords)
		api.GET("/records/export", c.ExportRecords)
	}
}

// CreateReadingRequest is the device push payload.
type CreateReadingRequest struct {
	SensorID  string    `json:"sensor_id"`
	RawValue  *float64  `json:"raw_value"`
	Timestamp time.Time `json:"timestamp"`
}

// CreateReading ingests one pushed reading.
func (c *ReadingController) CreateReading(ctx *gin.Context) {
	var req CreateReadingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.RawValue == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "raw_value is required"})
		return
	}

	result, err := c.ingestor.Ingest(ctx.Request.Context(), req.SensorID, *req.RawValue, req.Timestamp)
	if err != nil {
		if cismodels.IsValidation(err) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, cismodels.ErrStorageUnavailable) {
			// The derived reading still goes back to the caller, but
			// flagged so nobody mistakes it for stored history.
			ctx.JSON(http.StatusAccepted, gin.H{
				"reading": result.Reading,
				"durable": false,
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"reading": result.Reading,
		"durable": true,
	})
}

// GetLevel returns the most recent reading, for the dashboard poll.
func (c *ReadingController) GetLevel(ctx *gin.Context) {
	latest, err := c.readingRepo.GetLatest(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, cismodels.ErrNotFound) {
			ctx.JSON(http.StatusOK, gin.H{
				"status":  string(cismodels.StatusNoData),
				"message": "no readings recorded yet",
			})
			return
		}
		c.logger.WithError(err).Error("failed to load latest reading")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load latest reading"})
		return
	}

	ctx.JSON(http.StatusOK, latest)
}

// GetRecords queries reading history with filters, sorting and
// pagination.
func (c *ReadingController) GetRecords(ctx *gin.Context) {
	params, err := queryParamsFromRequest(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := c.readingRepo.Query(ctx.Request.Context(), *params)
	if err != nil {
		c.logger.WithError(err).Error("records query failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "records query failed"})
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// ExportRecords streams the filtered history as a CSV or JSON download.
func (c *ReadingController) ExportRecords(ctx *gin.Context) {
	params, err := queryParamsFromRequest(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	readings, err := c.readingRepo.QueryAll(ctx.Request.Context(), *params)
	if err != nil {
		c.logger.WithError(err).Error("export query failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "export query failed"})
		return
	}

	format := ctx.DefaultQuery("format", export.FormatCSV)
	var columns []string
	if raw := ctx.Query("columns"); raw != "" {
		columns = strings.Split(raw, ",")
	}

	doc, err := export.Export(readings, format, columns)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	ctx.Data(http.StatusOK, doc.ContentType, doc.Body)
}

// queryParamsFromRequest parses the record-query string parameters
// shared by /api/records and /api/records/export. Date filters accept
// plain dates ("2025-03-10") or RFC 3339 timestamps; either way the
// repository widens them to whole days.
func queryParamsFromRequest(ctx *gin.Context) (*interfaces.ReadingQueryParams, error) {
	params := interfaces.ReadingQueryParams{
		SensorID:  ctx.Query("sensor"),
		Status:    ctx.Query("estado"),
		SortBy:    ctx.Query("sortBy"),
		SortOrder: ctx.Query("sortOrder"),
	}

	if raw := ctx.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New("page must be an integer")
		}
		params.Page = page
	}
	if raw := ctx.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New("limit must be an integer")
		}
		params.PageSize = limit
	}

	if raw := ctx.Query("fechaInicio"); raw != "" {
		from, err := parseDateParam(raw)
		if err != nil {
			return nil, errors.New("fechaInicio must be a date (YYYY-MM-DD)")
		}
		params.DateFrom = from
	}
	if raw := ctx.Query("fechaFin"); raw != "" {
		to, err := parseDateParam(raw)
		if err != nil {
			return nil, errors.New("fechaFin must be a date (YYYY-MM-DD)")
		}
		params.DateTo = to
	}

	params.Normalize()
	return &params, nil
}

func parseDateParam(raw string) (*time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
