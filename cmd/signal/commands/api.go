package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wltsai/stockpulse/internal/api"
	"github.com/wltsai/stockpulse/internal/api/handlers"
	"github.com/wltsai/stockpulse/internal/metrics"
	"github.com/wltsai/stockpulse/pkg/config"
	"github.com/wltsai/stockpulse/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the REST API server.

Endpoints:
  GET /health                  - Health check
  GET /api/analyze             - Batch analysis (JSON document)
  GET /api/analyze/stream      - Incremental analysis (SSE)
  GET /api/analyze/ws          - Incremental analysis (websocket)

Example:
  go run ./cmd/signal api
  go run ./cmd/signal api --port 8090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log := logger.New(cfg)

	p, cleanup, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	analyzeHandler := handlers.NewAnalyzeHandler(p, log)
	router := api.NewRouter(analyzeHandler, log)
	server := api.New(cfg, log, router)

	// Metrics server on its own port
	var metricsServer *metrics.Server
	if cfg.MetricsEnabled {
		metricsServer = metrics.NewServer(cfg.MetricsPort, log)
		go func() {
			if err := metricsServer.Start(); err != nil {
				log.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	// Start server in a goroutine so we can wait for signals
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	return server.Shutdown(shutdownCtx)
}
