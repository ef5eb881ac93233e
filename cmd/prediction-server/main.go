// cmd/prediction-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"work-advisor/internal/api"
	"work-advisor/internal/common/config"
	"work-advisor/internal/common/database"
	"work-advisor/internal/common/logger"
	"work-advisor/internal/common/observability"
	"work-advisor/internal/prediction/gateway"
	"work-advisor/internal/prediction/orchestrator"
	"work-advisor/internal/prediction/snapshot"
	"work-advisor/pkg/registry"

	"github.com/gin-gonic/gin"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	log.Info("Starting prediction server...", map[string]interface{}{
		"version": cfg.App.Version,
		"env":     cfg.App.Environment,
		"storage": cfg.Storage.Driver,
	})

	obs := observability.New(observability.Options{
		ServiceName:   cfg.Observability.ServiceName,
		TraceSampling: cfg.Observability.TraceSampling,
		Logger:        log,
	})
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init snapshot storage with retry ---
	var kv database.KeyValue
	err = retryWithBackoff(func() error {
		var err error
		kv, err = database.OpenKeyValue(ctx, cfg)
		return err
	}, 5, 2*time.Second, log, "Snapshot storage initialization")
	if err != nil {
		log.Error("snapshot storage unavailable", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer kv.Close()
	log.Info("Snapshot storage connected", map[string]interface{}{"driver": cfg.Storage.Driver})

	catalog, err := registry.LoadCatalog(cfg.Regions.CatalogPath)
	if err != nil {
		log.Error("region catalog load failed", map[string]interface{}{
			"path":  cfg.Regions.CatalogPath,
			"error": err.Error(),
		})
		os.Exit(1)
	}
	log.Info("Region catalog loaded", map[string]interface{}{"regions": len(catalog.Regions)})

	gw := gateway.New(&gateway.Config{
		EndpointURL: cfg.Prediction.EndpointURL,
		APIKey:      cfg.Prediction.APIKey,
		Timeout:     config.GetDuration(cfg.Prediction.Timeout),
	}, log)
	runner := orchestrator.New(gw, &orchestrator.Config{Observability: obs}, log)
	store := snapshot.NewStore(kv, &snapshot.Config{Key: cfg.Storage.SnapshotKey}, log)

	gin.SetMode(cfg.Server.GinMode)
	router := api.NewRouter(api.Dependencies{
		Runner:    runner,
		Snapshots: store,
		Catalog:   catalog,
		Ready:     kv.Ping,
		Metrics:   cfg.Observability.MetricsEnabled,
		Logger:    log,
		Service:   cfg.App.Name,
		Version:   cfg.App.Version,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutdown signal received, stopping server...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	runner.Cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down HTTP server", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Prediction server stopped gracefully", nil)
}
