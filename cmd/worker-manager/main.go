// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"mock-data-forge/internal/common/camunda"
	"mock-data-forge/internal/common/config"
	"mock-data-forge/internal/common/logger"
	"mock-data-forge/internal/common/observability"
	"mock-data-forge/internal/generator"
	gmd "mock-data-forge/internal/workers/generate-mock-data"
	"mock-data-forge/pkg/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...", zap.String("version", cfg.App.Version))

	if err := cfg.RequireCamunda(); err != nil {
		zapLog.Fatal("invalid configuration", zap.Error(err))
	}

	obs, err := observability.New("worker-manager", prometheus.DefaultRegisterer)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer func() { _ = obs.Shutdown(context.Background()) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe client, retried until the gateway answers ---
	zeebe, err := camunda.NewClientWithConfig(ctx, camunda.ConfigFrom(cfg.Camunda), log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Workers ---
	genCfg := generator.ConfigFrom(cfg.Generator)
	gen := generator.New(genCfg, generator.NewSource(cfg.Generator.Seed), log)

	reg, err := registry.LoadRegistry(cfg.Camunda.RegistryPath)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.String("path", cfg.Camunda.RegistryPath), zap.Error(err))
	}
	opts := []gmd.Option{gmd.WithObservability(obs)}
	if activity, ok := reg.Find(gmd.TaskType); ok {
		v, err := activity.InputValidator()
		if err != nil {
			zapLog.Fatal("invalid activity input schema", zap.Error(err))
		}
		opts = append(opts, gmd.WithInputValidator(v))
	} else {
		zapLog.Warn("task type missing from activity registry", zap.String("taskType", gmd.TaskType))
	}

	handler := gmd.NewHandler(gmd.ConfigFrom(cfg), gen, log, opts...)
	w := camunda.StartWorker(zeebe.GetClient(), gmd.TaskType, config.GetWorkerConfig(cfg, gmd.TaskType), handler.Handle, log)

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(rw http.ResponseWriter, r *http.Request) {
		writeStatus(rw, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(rw http.ResponseWriter, r *http.Request) {
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			writeStatus(rw, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(rw, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())

	healthSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Camunda.HealthPort),
		Handler: mux,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.Int("port", cfg.Camunda.HealthPort))
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	w.Stop()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
