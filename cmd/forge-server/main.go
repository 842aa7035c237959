// Command forge-server serves the generator over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"mock-data-forge/internal/common/config"
	"mock-data-forge/internal/common/logger"
	"mock-data-forge/internal/common/observability"
	"mock-data-forge/internal/generator"
	"mock-data-forge/internal/server"
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

	obs, err := observability.New(cfg.App.Name, prometheus.DefaultRegisterer)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer func() { _ = obs.Shutdown(context.Background()) }()

	genCfg := generator.ConfigFrom(cfg.Generator)
	src := generator.NewSource(cfg.Generator.Seed)
	gen := generator.New(genCfg, src, log)

	zapLog.Info("Starting forge server",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.Uint64("seed", src.Seed()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, gen, log, server.WithObservability(obs))
	if err := srv.Run(ctx); err != nil {
		zapLog.Error("server stopped with error", zap.Error(err))
		stop()
		os.Exit(1)
	}
	zapLog.Info("Forge server stopped gracefully")
}
