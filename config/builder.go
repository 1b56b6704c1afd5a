package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jpalmerr/statuspoller"
	"github.com/jpalmerr/statuspoller/dashboard"
	"github.com/jpalmerr/statuspoller/page"
)

// BuildOptions converts parsed configuration into poller options.
func BuildOptions(cfg *Config, logger *slog.Logger) []statuspoller.Option {
	opts := []statuspoller.Option{
		statuspoller.WithFragmentURL(cfg.FragmentURL),
		statuspoller.WithJSONURL(cfg.JSONURL),
		statuspoller.WithElementIDs(BuildElementIDs(cfg.Elements)),
		statuspoller.WithRequestTimeout(cfg.RequestTimeout.Duration()),
		statuspoller.WithPort(cfg.Port),
	}
	if logger != nil {
		opts = append(opts, statuspoller.WithLogger(logger))
	}
	return opts
}

// BuildElementIDs overlays configured ids on [statuspoller.DefaultElementIDs].
func BuildElementIDs(ec ElementsConfig) statuspoller.ElementIDs {
	ids := statuspoller.DefaultElementIDs()

	overlay := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	overlay(&ids.Container, ec.Container)
	overlay(&ids.FallbackContainer, ec.FallbackContainer)
	overlay(&ids.Timestamp, ec.Timestamp)
	overlay(&ids.CPUText, ec.CPUText)
	overlay(&ids.CPUFill, ec.CPUFill)
	overlay(&ids.MemText, ec.MemText)
	overlay(&ids.MemFill, ec.MemFill)
	overlay(&ids.DiskText, ec.DiskText)
	overlay(&ids.DiskFill, ec.DiskFill)
	overlay(&ids.ProcessRows, ec.ProcessRows)
	overlay(&ids.LastUpdated, ec.LastUpdated)
	overlay(&ids.StatusText, ec.StatusText)

	return ids
}

// BuildDocument loads the configured host page, or the embedded one if
// no page is configured.
func BuildDocument(cfg *Config) (*page.Document, error) {
	if cfg.Page == "" {
		html, err := dashboard.Page(cfg.Title)
		if err != nil {
			return nil, err
		}
		return page.ParseString(html)
	}

	f, err := os.Open(cfg.Page)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer f.Close()

	doc, err := page.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page %s: %w", cfg.Page, err)
	}
	return doc, nil
}
