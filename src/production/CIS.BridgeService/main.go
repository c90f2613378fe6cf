package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.BridgeService/bridge"
	"gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.BridgeService/client"
	config "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Config"
	logger "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Logger"
)

func main() {
	// LoadBridgeLogging also pulls in .env when present
	loggingCfg := config.LoadBridgeLogging()
	log := logger.NewLogger(&loggingCfg)
	log.Info("Starting Cistern MQTT Bridge Service")

	cfg := bridge.LoadFromEnv()

	// Create API client
	apiClient := client.NewAPIClient(cfg.ApiServiceURL, cfg.InternalAPISecret)

	// Create and start the bridge
	br := bridge.New(cfg, apiClient, log)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := br.Start(ctx); err != nil {
		log.FatalWithError(err, "Failed to start MQTT bridge")
	}
	defer br.Stop()

	// Start health check server
	go startHealthServer(cfg.HealthPort, log, br, apiClient)

	log.Info("Cistern bridge running... press Ctrl+C to stop")

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("Shutting down...")
	cancel()
}

// startHealthServer starts a simple HTTP server for health checks
func startHealthServer(port string, log *logger.Logger, br *bridge.Bridge, apiClient *client.APIClient) {
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		mqttStatus := "disconnected"
		if br.IsConnected() {
			mqttStatus = "connected"
		}

		apiStatus := "disconnected"
		if err := apiClient.Health(ctx); err == nil {
			apiStatus = "connected"
		}

		status := "healthy"
		if mqttStatus != "connected" || apiStatus != "connected" {
			status = "unhealthy"
		}

		w.Header().Set("Content-Type", "application/json")
		if status == "healthy" {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		circuitBreakerStatus := apiClient.GetCircuitBreakerStatus()

		fmt.Fprintf(w, `{
			"status": "%s",
			"timestamp": "%s",
			"services": {
				"mqtt": "%s",
				"api_service": "%s"
			},
			"circuit_breaker": {
				"state": "%s",
				"failure_count": %d
			}
		}`, status, time.Now().UTC().Format(time.RFC3339), mqttStatus, apiStatus,
			circuitBreakerStatus["state"], circuitBreakerStatus["failure_count"])
	})

	log.Info("Health server starting on port " + port)

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.FatalWithError(err, "Failed to start health server")
	}
}
