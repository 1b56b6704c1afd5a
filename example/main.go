package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jpalmerr/statuspoller"
	"github.com/jpalmerr/statuspoller/dashboard"
	"github.com/jpalmerr/statuspoller/internal/server"
	"github.com/jpalmerr/statuspoller/internal/sysinfo"
	"github.com/jpalmerr/statuspoller/page"
)

func main() {
	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.Default()

	// mock status source on :9999 (see mock_source.go)
	source := sysinfo.NewRouter(sysinfo.DefaultPath, newMockSource(), logger)
	if err := server.Serve(ctx, 9999, source, logger); err != nil {
		slog.Error("failed to start mock source", "error", err)
		os.Exit(1)
	}

	html, err := dashboard.Page("Status Poller Demo")
	if err != nil {
		slog.Error("failed to render host page", "error", err)
		os.Exit(1)
	}
	doc, err := page.ParseString(html)
	if err != nil {
		slog.Error("failed to parse host page", "error", err)
		os.Exit(1)
	}

	sp, err := statuspoller.New(doc,
		statuspoller.WithFragmentURL("http://localhost:9999"+sysinfo.DefaultPath),
		statuspoller.WithJSONURL("http://localhost:9999"+sysinfo.DefaultPath+"?json=1"),
		statuspoller.WithPort(8080),
		statuspoller.WithOutcomeCallback(func(out statuspoller.Outcome) {
			if out.Err != nil {
				slog.Warn("poll failed", "cycle_id", out.CycleID, "error", out.Err)
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create status poller", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  Status Poller Demo")
	fmt.Println()
	fmt.Println("  Open http://localhost:8080 in your browser")
	fmt.Println("  Mock source: http://localhost:9999" + sysinfo.DefaultPath + "?json=1")
	fmt.Println()
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	if err := sp.Start(ctx); err != nil {
		slog.Error("status poller error", "error", err)
		os.Exit(1)
	}
}
