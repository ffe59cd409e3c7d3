package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/arclight-labs/rca-engine/internal/apiserver"
	"github.com/arclight-labs/rca-engine/internal/config"
	"github.com/arclight-labs/rca-engine/internal/lifecycle"
	"github.com/arclight-labs/rca-engine/internal/logging"
	"github.com/arclight-labs/rca-engine/internal/pipeline"
	"github.com/arclight-labs/rca-engine/internal/telemetry"
	"github.com/arclight-labs/rca-engine/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the investigation HTTP surface (POST /invocations, /health, /status, /ping)",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		HandleError(err, "Configuration error")
	}

	if err := setupLog(logLevelFlags); err != nil {
		HandleError(err, "Failed to setup logging")
	}
	logger := logging.Get("serve")
	logger.Info("starting rca-engine", logging.F("version", Version), logging.F("apiPort", cfg.APIPort))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tracingCfg := telemetry.Config{
		Enabled:     cfg.TracingEnabled,
		Endpoint:    cfg.TracingEndpoint,
		TLSInsecure: cfg.TracingTLSInsecure,
	}
	if err := telemetry.Init(ctx, tracingCfg); err != nil {
		logger.Warn("telemetry init failed, continuing without tracing", logging.F("error", err.Error()))
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", logging.F("error", err.Error()))
		}
	}()

	registry := tools.NewDefaultRegistry()

	llm, err := buildLLMProvider(ctx, cfg)
	if err != nil {
		HandleError(err, "LLM provider error")
	}

	metrics := telemetry.NewMetrics(prometheus.NewRegistry())

	p := pipeline.New(cfg, registry, llm, metrics)
	srv := apiserver.New(cfg, p)

	manager := lifecycle.NewManager()
	if err := manager.Register(srv); err != nil {
		HandleError(err, "Failed to register API server")
	}

	if err := manager.Start(ctx); err != nil {
		HandleError(err, "Failed to start API server")
	}
	logger.Info("listening", logging.F("addr", srv.Addr()))

	<-ctx.Done()
	logger.Info("shutdown signal received")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := manager.Stop(stopCtx); err != nil {
		logger.Error("error during shutdown", logging.F("error", err.Error()))
	}
}
