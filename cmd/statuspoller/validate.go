package main

import (
	"fmt"

	"github.com/jpalmerr/statuspoller/config"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without starting anything.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a statuspoller configuration file without starting the server.

This command parses the YAML, expands environment variables, applies
defaults, and validates all fields. It's useful for CI/CD pipelines or
pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  statuspoller validate -c config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	pageSource := "embedded"
	if cfg.Page != "" {
		pageSource = cfg.Page
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Port:          %d\n", cfg.Port)
	fmt.Printf("  Fragment URL:  %s\n", cfg.FragmentURL)
	fmt.Printf("  JSON URL:      %s\n", cfg.JSONURL)
	fmt.Printf("  Page:          %s\n", pageSource)
	if cfg.Source.Enabled {
		fmt.Printf("  Source:        %s (disk %s, top %d processes)\n",
			cfg.SourceURL(), cfg.Source.DiskPath, cfg.Source.MaxProcesses)
	} else {
		fmt.Printf("  Source:        disabled\n")
	}

	return nil
}
