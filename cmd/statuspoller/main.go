// Package main is the entry point for the statuspoller CLI.
//
// The poller can be embedded as a library or run as a standalone binary with
// YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	statuspoller serve -c config.yaml    # Poll and serve the live page
//	statuspoller source -c config.yaml   # Serve only the local status endpoint
//	statuspoller validate -c config.yaml # Validate configuration
//	statuspoller version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "statuspoller",
	Short: "Keep a status page's system indicators current",
	Long: `statuspoller injects a server-rendered status fragment into a page once,
then polls a JSON snapshot every two seconds and rewrites the page's CPU,
memory, disk and process indicators in place.

Quick start:
  1. Create a config file (statuspoller.yaml)
  2. Run: statuspoller serve -c statuspoller.yaml
  3. Open http://localhost:8080 in your browser

Example config:
  port: 8080
  source:
    enabled: true
    port: 8081`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this statuspoller binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("statuspoller %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
