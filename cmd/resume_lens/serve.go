package main

import (
	"fmt"

	"github.com/jonathan/resume-lens/internal/client"
	"github.com/jonathan/resume-lens/internal/config"
	"github.com/jonathan/resume-lens/internal/logging"
	"github.com/jonathan/resume-lens/internal/metrics"
	"github.com/jonathan/resume-lens/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort     int
	serveEndpoint string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web front-end",
	Long:  `Start an HTTP server that serves the analysis form and forwards submissions to the analysis endpoint.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveEndpoint, "endpoint", "", "Analysis endpoint URL (defaults to config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(func(c *config.Config) {
		if cmd.Flags().Changed("port") {
			c.Port = servePort
		}
		if serveEndpoint != "" {
			c.Endpoint = serveEndpoint
		}
	})
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewRecorder(reg)

	analyzer := client.New(cfg.Endpoint, &client.Options{
		Timeout:        cfg.RequestTimeout,
		StrictSchema:   cfg.StrictSchema,
		ExtractLocally: cfg.ExtractLocally,
		Logger:         logger,
		Metrics:        recorder,
	})

	srv, err := server.New(server.Options{
		Config:   *cfg,
		Analyzer: analyzer,
		Logger:   logger,
		Gatherer: reg,
		Metrics:  recorder,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("forwarding analyses", zap.String("endpoint", cfg.Endpoint))
	return srv.Start(cmd.Context())
}
