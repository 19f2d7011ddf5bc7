package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/telegeo/gateway/internal/api/http"
	"github.com/telegeo/gateway/internal/config"
	"github.com/telegeo/gateway/internal/metrics"
	"github.com/telegeo/gateway/internal/providers"
	"github.com/telegeo/gateway/internal/store"
)

const (
	envLocal = "local"
	envDev   = "development"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := setupLogger(cfg.Env)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// The store is an explicit capability: when the database cannot be
	// opened the gateway still serves the adapter routes, and every db
	// route answers with a store-unavailable error.
	users, err := store.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("failed to open user database, db routes will be unavailable", "path", cfg.DBPath, "error", err)
		users = nil
	} else {
		defer users.Close()
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	client := providers.NewClient(httpClient, logger, appMetrics)

	app := httpapi.New(httpapi.Deps{
		Log:       logger,
		Geocoder:  providers.NewNominatim(client, cfg.NominatimBaseURL),
		Pollution: providers.NewOpenWeather(client, cfg.AirPollutionBaseURL, cfg.OWMTileBaseURL, cfg.OpenWeatherAPIKey),
		Weather:   providers.NewWeatherAPI(client, cfg.WeatherAPIBaseURL, cfg.WeatherAPIKey),
		Maps:      providers.NewGeoapify(client, cfg.GeoapifyTileBaseURL, cfg.PlacesBaseURL, cfg.GeoapifyAPIKey),
		Users:     users,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go startMonitoringServer(ctx, logger, reg, users, cfg.MetricsPort)

	go func() {
		logger.Info("gateway listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("server stopped", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received, stopping gateway")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
	}
	logger.Info("gateway stopped gracefully")
}

// startMonitoringServer serves /healthz and /metrics on a separate port.
func startMonitoringServer(
	ctx context.Context,
	logger *slog.Logger,
	reg *prometheus.Registry,
	users *store.UserStore,
	port int,
) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, _ *http.Request) {
		status, body := http.StatusOK, "OK"
		if users == nil {
			status, body = http.StatusServiceUnavailable, "DB not connected"
		} else if err := users.Ping(ctx); err != nil {
			status, body = http.StatusServiceUnavailable, "DB ping failed"
		}
		writer.WriteHeader(status)
		if _, err := writer.Write([]byte(body)); err != nil {
			logger.ErrorContext(ctx, "failed to write health reply", "error", err)
		}
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	logger.InfoContext(ctx, "starting monitoring server", "port", port)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		logger.ErrorContext(ctx, "monitoring server failed", "error", err)
	}
}

// setupLogger initializes the logger based on the environment.
func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: true,
		}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	default:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
}
