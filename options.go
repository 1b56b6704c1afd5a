package statuspoller

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// spConfig holds mutable state during StatusPoller construction.
type spConfig struct {
	fragmentURL      string
	jsonURL          string
	ids              ElementIDs
	pollInterval     time.Duration
	requestTimeout   time.Duration
	port             int
	logger           *slog.Logger
	now              func() time.Time
	outcomeCallbacks []func(Outcome)
}

// Option is a function that configures a [StatusPoller] during construction.
//
// Options return an error if validation fails.
type Option func(*spConfig) error

// WithFragmentURL sets the endpoint that returns the initial HTML fragment.
// Required. The URL must be absolute with an http or https scheme.
func WithFragmentURL(rawURL string) Option {
	return func(cfg *spConfig) error {
		if err := validateURL(rawURL); err != nil {
			return fmt.Errorf("fragment URL: %w", err)
		}
		cfg.fragmentURL = rawURL
		return nil
	}
}

// WithJSONURL sets the endpoint that returns the JSON status snapshot.
// Required. The URL must be absolute with an http or https scheme.
func WithJSONURL(rawURL string) Option {
	return func(cfg *spConfig) error {
		if err := validateURL(rawURL); err != nil {
			return fmt.Errorf("JSON URL: %w", err)
		}
		cfg.jsonURL = rawURL
		return nil
	}
}

// WithElementIDs replaces the element id table. See [DefaultElementIDs].
func WithElementIDs(ids ElementIDs) Option {
	return func(cfg *spConfig) error {
		cfg.ids = ids
		return nil
	}
}

// WithPollInterval sets the time between JSON polls. Defaults to 2 seconds.
//
// The interval is fixed for the poller's lifetime.
//
// Returns an error if the duration is zero or negative.
func WithPollInterval(d time.Duration) Option {
	return func(cfg *spConfig) error {
		if d <= 0 {
			return errors.New("poll interval must be positive")
		}
		cfg.pollInterval = d
		return nil
	}
}

// WithRequestTimeout bounds each HTTP request. Zero, the default, applies
// no timeout beyond the transport's own behaviour.
//
// Returns an error if the duration is negative.
func WithRequestTimeout(d time.Duration) Option {
	return func(cfg *spConfig) error {
		if d < 0 {
			return errors.New("request timeout cannot be negative")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithPort makes [StatusPoller.Start] serve the live page and poll outcome
// API on the given port. Without it, Start only polls.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *spConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithLogger sets a custom [slog.Logger]. If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *spConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithClock overrides the time source used for the last-updated field.
//
// Returns an error if now is nil.
func WithClock(now func() time.Time) Option {
	return func(cfg *spConfig) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		cfg.now = now
		return nil
	}
}

// WithOutcomeCallback registers a function called after every JSON poll cycle,
// once the document has been updated.
//
// Callbacks run synchronously on the polling goroutine in registration order
// and must not block. Panics are recovered and logged.
//
// Nil callbacks are silently ignored.
func WithOutcomeCallback(cb func(Outcome)) Option {
	return func(cfg *spConfig) error {
		if cb == nil {
			return nil
		}
		cfg.outcomeCallbacks = append(cfg.outcomeCallbacks, cb)
		return nil
	}
}

func validateURL(rawURL string) error {
	if rawURL == "" {
		return errors.New("URL cannot be empty")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("URL must have a host")
	}
	return nil
}
