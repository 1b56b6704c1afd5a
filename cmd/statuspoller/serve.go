package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/statuspoller"
	"github.com/jpalmerr/statuspoller/config"
	"github.com/jpalmerr/statuspoller/internal/server"
	"github.com/jpalmerr/statuspoller/internal/sysinfo"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
)

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// serveCmd runs the poller and the live page server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Poll the status endpoint and serve the live page",
	Long: `Poll the status endpoint and serve the live page.

The server will:
  - Load the env file (if given) and configuration
  - Start the local status endpoint if source.enabled is set
  - Inject the status fragment into the host page and poll the JSON snapshot
  - Serve the live page and poll status on the configured port

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  statuspoller serve -c config.yaml
  statuspoller serve -c /etc/statuspoller/config.yaml --env-file /etc/statuspoller/.env`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	serveCmd.Flags().String("env-file", "", "path to a dotenv file loaded before the config")
	_ = serveCmd.MarkFlagRequired("config")
}

// loadConfig loads the optional env file, then the config file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if envFile, _ := cmd.Flags().GetString("env-file"); envFile != "" {
		if err := config.LoadEnvFile(envFile); err != nil {
			return nil, err
		}
	}

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// startSource serves the local status endpoint until ctx is cancelled.
func startSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	collector := sysinfo.NewCollector(cfg.Source.DiskPath, cfg.Source.MaxProcesses)
	handler := sysinfo.NewRouter(cfg.Source.Path, collector, logger)

	if err := server.Serve(ctx, cfg.Source.Port, handler, logger); err != nil {
		return fmt.Errorf("failed to start status source: %w", err)
	}

	logger.Info("status source started",
		"url", cfg.SourceURL(),
		"disk_path", cfg.Source.DiskPath,
		"max_processes", cfg.Source.MaxProcesses,
	)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger.Info("config loaded",
		"fragment_url", cfg.FragmentURL,
		"json_url", cfg.JSONURL,
		"source", cfg.Source.Enabled,
	)

	doc, err := config.BuildDocument(cfg)
	if err != nil {
		return fmt.Errorf("failed to build page: %w", err)
	}

	sp, err := statuspoller.New(doc, config.BuildOptions(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("failed to create status poller: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Source.Enabled {
		if err := startSource(ctx, cfg, logger); err != nil {
			return err
		}
	}

	// start poller - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- sp.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
