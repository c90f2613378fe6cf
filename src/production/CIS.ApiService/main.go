package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ApiService/controllers"
	configstore "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ConfigStore"
	container "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Container"
	ingestion "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Ingestion"

	// Auth imports
	authService "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ApiService/implementation/auth"
	jwt "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ApiService/implementation/jwt"
	rbac "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ApiService/implementation/rbac"
	authMiddleware "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ApiService/middleware"
	api_models "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models/api"
)

func main() {
	// Initialize dependency injection container
	ctr, err := container.NewApiContainer()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize container: %v", err))
	}
	defer ctr.Shutdown(context.Background())

	logger := ctr.GetLogger()
	logger.Info("Starting Cistern API Service")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Connect storage and build repositories for the configured driver
	repos, err := ctr.GetRepositories(ctx)
	if err != nil {
		logger.FatalWithError(err, "Failed to initialize storage")
	}

	// Get configuration
	config := ctr.GetConfig()

	// Initialize JWT service for token validation
	jwtConfig := api_models.Config{
		SecretKey:            config.Auth.JWTSecretKey,
		AccessTokenDuration:  config.Auth.AccessTokenDuration,
		RefreshTokenDuration: config.Auth.RefreshTokenDuration,
		Issuer:               config.Auth.JWTIssuer,
	}
	jwtService := jwt.NewService(jwtConfig)

	// Initialize RBAC service
	rbacService := rbac.NewService()

	// Create auth middleware
	middlewareConfig := authMiddleware.Config{
		AccessTokenHeader: "Authorization",
		AccessTokenCookie: "access_token",
	}
	authMiddlewareInstance := authMiddleware.NewAuthMiddleware(jwtService, rbacService, middlewareConfig)

	// Initialize auth services
	authServiceInstance := authService.NewAuthService(repos.Users, jwtService, rbacService, logger)

	// Seed the admin account so a fresh deployment can log in
	adminInitializer := authService.NewAdminInitializerService(
		repos.Users,
		logger,
		authService.AdminConfig{
			Username: config.Auth.Admin.Username,
			Email:    config.Auth.Admin.Email,
			Password: config.Auth.Admin.Password,
		},
	)
	if err := adminInitializer.InitializeAdminUser(ctx); err != nil {
		logger.FatalWithError(err, "Failed to initialize admin user")
	}

	// Configuration store and ingestion pipeline
	configStore := configstore.New(repos.Configurations, logger)
	ingestor := ingestion.NewReadingIngestor(repos.Readings, configStore, logger)

	var scheduler *ingestion.SamplingScheduler
	if config.Sampling.Enabled {
		scheduler = ingestion.NewSamplingScheduler(ingestor, configStore, config.Sampling.Sensors, logger)
		scheduler.Start(context.Background())
		ctr.AddCleanupFunc(func() error {
			scheduler.Stop()
			return nil
		})
	} else {
		logger.Info("Sampling disabled, readings only arrive via API and bridge")
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Configure CORS from config
	corsConfig := cors.Config{
		AllowOrigins:     config.CORS.AllowedOrigins,
		AllowMethods:     config.CORS.AllowedMethods,
		AllowHeaders:     config.CORS.AllowedHeaders,
		ExposeHeaders:    config.CORS.ExposedHeaders,
		AllowCredentials: config.CORS.AllowCredentials,
		MaxAge:           time.Duration(config.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))

	// Create controllers and register routes
	authController := controllers.NewAuthController(authServiceInstance)
	readingController := controllers.NewReadingController(repos.Readings, ingestor, logger, authMiddlewareInstance)
	configurationController := controllers.NewConfigurationController(configStore, scheduler, logger, authMiddlewareInstance)
	samplingController := controllers.NewSamplingController(scheduler, logger, authMiddlewareInstance)
	internalController := controllers.NewInternalController(ingestor, logger)
	healthController := controllers.NewHealthController(logger, map[string]controllers.ReadinessCheck{
		"storage": ctr.StorageReadinessCheck(),
	})

	// Register all routes
	authController.RegisterRoutes(router, authMiddlewareInstance)
	readingController.RegisterRoutes(router)
	configurationController.RegisterRoutes(router)
	samplingController.RegisterRoutes(router)
	internalController.RegisterRoutes(router)
	healthController.RegisterRoutes(router)

	// Get port from configuration
	port := config.Server.Port

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		IdleTimeout:  config.Server.IdleTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("HTTP server starting on port " + port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithError(err, "Failed to start HTTP server")
		}
	}()

	logger.Info("Cistern API service running... press Ctrl+C to stop")

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithError(err, "Server forced to shutdown")
	}
}
