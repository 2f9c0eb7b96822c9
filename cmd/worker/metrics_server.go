package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rental-notify/internal/domain/entity"
	"rental-notify/internal/infra/provider"
)

// HealthResponse represents a simple health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ChannelHealthResponse reports which delivery channels have a configured
// gateway adapter.
type ChannelHealthResponse struct {
	Channels []ChannelStatus `json:"channels"`
}

// ChannelStatus represents the status of a single delivery channel.
type ChannelStatus struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// startMetricsServer starts the Prometheus metrics HTTP server.
// It runs in a separate goroutine and supports graceful shutdown via context.
//
// The server exposes:
//   - GET /metrics - Prometheus metrics endpoint
//   - GET /health - Simple liveness probe (always returns 200 OK)
//   - GET /health/channels - Per-channel adapter configuration status
//
// METRICS_PORT selects the port (default: 9090). When ctx is canceled the
// server shuts down within 5 seconds; shutdown errors are logged but do
// not block process termination.
func startMetricsServer(ctx context.Context, logger *slog.Logger, registry *provider.Registry) *http.Server {
	port := getMetricsPort()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/health/channels", channelHealthHandler(registry))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		logger.Info("metrics server shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
		} else {
			logger.Info("metrics server stopped")
		}
	}()

	return server
}

// getMetricsPort retrieves the metrics server port from environment variable.
// Defaults to 9090 if not set or invalid.
func getMetricsPort() int {
	portStr := os.Getenv("METRICS_PORT")
	if portStr == "" {
		return 9090
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return 9090
	}

	return port
}

// healthHandler handles GET /health requests (liveness probe).
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{Status: "healthy"})
}

// channelHealthHandler creates a handler for GET /health/channels.
// Channels without an adapter still deliver (the registry falls back to a
// noop adapter that fails the send into the ledger), so this is a config
// inspection endpoint, not a readiness gate.
func channelHealthHandler(registry *provider.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all := entity.AllChannels()
		channels := make([]ChannelStatus, 0, len(all))
		for _, ch := range all {
			if ch == entity.ChannelInApp {
				// In-app rows are written straight to the database.
				channels = append(channels, ChannelStatus{Name: string(ch), Enabled: true})
				continue
			}
			channels = append(channels, ChannelStatus{
				Name:    string(ch),
				Enabled: registry.Has(ch),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(ChannelHealthResponse{Channels: channels})
	}
}
