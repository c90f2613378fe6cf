package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ApiService/middleware"
	configstore "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ConfigStore"
	ingestion "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Ingestion"
	logger "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Logger"
	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
)

// ConfigurationController serves the versioned cistern configuration.
type ConfigurationController struct {
	store          *configstore.Store
	scheduler      *ingestion.SamplingScheduler
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewConfigurationController creates a new configuration controller.
// scheduler may be nil when sampling is disabled.
func NewConfigurationController(store *configstore.Store, scheduler *ingestion.SamplingScheduler, logger *logger.Logger, authMiddleware *middleware.AuthMiddleware) *ConfigurationController {
	return &ConfigurationController{
		store:          store,
		scheduler:      scheduler,
		logger:         logger.WithComponent("configuration"),
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers the configuration routes with Gin
func (c *ConfigurationController) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/configuration", c.authMiddleware.Authenticate())
	{
		api.GET("", c.GetConfiguration)
		api.GET("/history", c.GetHistory)
		api.GET("/dashboard", c.GetDashboardConfiguration)
	}

	adminOnly := api.Group("", c.authMiddleware.RequireAdmin())
	{
		adminOnly.POST("", c.SaveConfiguration)
	}
}

// GetConfiguration returns the current configuration version.
func (c *ConfigurationController) GetConfiguration(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.store.Current(ctx.Request.Context()))
}

// GetHistory lists stored configuration versions, newest first. An
// optional limit caps how many come back.
func (c *ConfigurationController) GetHistory(ctx *gin.Context) {
	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	history, err := c.store.History(ctx.Request.Context(), limit)
	if err != nil {
		c.logger.WithError(err).Error("configuration history query failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "configuration history unavailable"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": history, "total": len(history)})
}

// GetDashboardConfiguration returns the display subset the dashboard
// header shows: identity and thresholds, without sensor bookkeeping.
func (c *ConfigurationController) GetDashboardConfiguration(ctx *gin.Context) {
	cfg := c.store.Current(ctx.Request.Context())

	ctx.JSON(http.StatusOK, gin.H{
		"name":               cfg.Name,
		"location":           cfg.Location,
		"capacity_liters":    cfg.CapacityLiters,
		"alert_threshold":    cfg.AlertThreshold,
		"critical_threshold": cfg.CriticalThreshold,
	})
}

// SaveConfigurationRequest carries the fields an admin may change.
// Missing fields keep their current values.
type SaveConfigurationRequest struct {
	Name               *string    `json:"name"`
	CapacityLiters     *int64     `json:"capacity_liters"`
	Location           *string    `json:"location"`
	Material           *string    `json:"material"`
	SensorModel        *string    `json:"sensor_model"`
	SensorID           *string    `json:"sensor_id"`
	SensorInstalledAt  *time.Time `json:"sensor_installed_at"`
	SensorPrecision    *string    `json:"sensor_precision"`
	SamplingIntervalMs *int       `json:"sampling_interval_ms"`
	AlertThreshold     *float64   `json:"alert_threshold"`
	CriticalThreshold  *float64   `json:"critical_threshold"`
	RestartSampling    bool       `json:"restart_sampling"`
}

func (r SaveConfigurationRequest) validate() error {
	if r.CapacityLiters != nil && *r.CapacityLiters <= 0 {
		return &cismodels.ValidationError{Field: "capacity_liters", Reason: "must be positive"}
	}
	if r.SamplingIntervalMs != nil && *r.SamplingIntervalMs <= 0 {
		return &cismodels.ValidationError{Field: "sampling_interval_ms", Reason: "must be positive"}
	}
	if r.AlertThreshold != nil && (*r.AlertThreshold < 0 || *r.AlertThreshold > 100) {
		return &cismodels.ValidationError{Field: "alert_threshold", Reason: "must be within [0, 100]"}
	}
	if r.CriticalThreshold != nil && (*r.CriticalThreshold < 0 || *r.CriticalThreshold > 100) {
		return &cismodels.ValidationError{Field: "critical_threshold", Reason: "must be within [0, 100]"}
	}
	return nil
}

// SaveConfiguration appends a new configuration version. When storage
// is down the version is kept locally and the response says so instead
// of failing or silently succeeding.
func (c *ConfigurationController) SaveConfiguration(ctx *gin.Context) {
	var req SaveConfigurationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.validate(); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := cismodels.ConfigurationUpdate{
		Name:               req.Name,
		CapacityLiters:     req.CapacityLiters,
		Location:           req.Location,
		Material:           req.Material,
		SensorModel:        req.SensorModel,
		SensorID:           req.SensorID,
		SensorInstalledAt:  req.SensorInstalledAt,
		SensorPrecision:    req.SensorPrecision,
		SamplingIntervalMs: req.SamplingIntervalMs,
		AlertThreshold:     req.AlertThreshold,
		CriticalThreshold:  req.CriticalThreshold,
	}

	result := c.store.Save(ctx.Request.Context(), update)

	message := "configuration saved"
	if !result.Durable {
		message = "configuration saved locally; storage unavailable, version not persisted"
	}

	if req.RestartSampling && c.scheduler != nil {
		interval := c.scheduler.Restart(ctx.Request.Context())
		c.logger.WithField("interval", interval.String()).Info("sampling restarted after configuration save")
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":       true,
		"durable":       result.Durable,
		"message":       message,
		"configuration": result.Config,
	})
}
