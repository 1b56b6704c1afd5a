package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// sourceCmd serves only the local status endpoint.
var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Serve the local status endpoint",
	Long: `Serve this host's CPU, memory, disk and process figures as the status
fragment and JSON snapshot a poller reads. The source block of the config
file sets the port, path, disk and process limit. The rest of the file must
still validate.

Example:
  statuspoller source -c config.yaml
  curl 'http://localhost:8081/cgi-bin/system?json=1'`,
	RunE: runSource,
}

func init() {
	rootCmd.AddCommand(sourceCmd)

	sourceCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	sourceCmd.Flags().String("env-file", "", "path to a dotenv file loaded before the config")
	_ = sourceCmd.MarkFlagRequired("config")
}

func runSource(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := startSource(ctx, cfg, logger); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("status source stopped")
	return nil
}
