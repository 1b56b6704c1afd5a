// Package config provides YAML configuration parsing for the statuspoller CLI.
//
// This package enables running the poller as a standalone binary with a
// configuration file, as an alternative to wiring it up in code.
//
// Example configuration:
//
//	title: Rack Status
//	port: 8080
//	request_timeout: 5s
//
//	# poll a remote status endpoint
//	fragment_url: https://rack.example.com/cgi-bin/system
//	json_url: https://rack.example.com/cgi-bin/system?json=1
//
//	# or serve one from this host and poll it
//	source:
//	  enabled: true
//	  port: 8081
//	  disk_path: /
//	  max_processes: 10
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort         = 8080
	defaultSourcePort   = 8081
	defaultSourcePath   = "/cgi-bin/system"
	defaultDiskPath     = "/"
	defaultMaxProcesses = 10
)

// Config is the root configuration structure.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the host page title. Ignored when Page is set.
	Title string `yaml:"title"`

	// Port serves the live page and poll status API. Defaults to 8080.
	Port int `yaml:"port"`

	// FragmentURL returns the initial HTML fragment.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	FragmentURL string `yaml:"fragment_url"`

	// JSONURL returns the status snapshot. Defaults to FragmentURL with json=1.
	JSONURL string `yaml:"json_url"`

	// Page is an optional path to a host page. The embedded page is used if empty.
	Page string `yaml:"page"`

	// RequestTimeout bounds each request. Zero means no timeout.
	RequestTimeout Duration `yaml:"request_timeout"`

	// Elements overrides individual element ids.
	Elements ElementsConfig `yaml:"elements"`

	// Source runs a local status endpoint alongside the poller.
	Source SourceConfig `yaml:"source"`
}

// ElementsConfig overrides element ids. Empty fields keep the default.
type ElementsConfig struct {
	Container         string `yaml:"container"`
	FallbackContainer string `yaml:"fallback_container"`
	Timestamp         string `yaml:"timestamp"`
	CPUText           string `yaml:"cpu_text"`
	CPUFill           string `yaml:"cpu_fill"`
	MemText           string `yaml:"mem_text"`
	MemFill           string `yaml:"mem_fill"`
	DiskText          string `yaml:"disk_text"`
	DiskFill          string `yaml:"disk_fill"`
	ProcessRows       string `yaml:"process_rows"`
	LastUpdated       string `yaml:"last_updated"`
	StatusText        string `yaml:"status_text"`
}

// SourceConfig configures the local status endpoint.
type SourceConfig struct {
	// Enabled starts the endpoint. When set, fragment_url and json_url
	// default to it.
	Enabled bool `yaml:"enabled"`

	// Port defaults to 8081.
	Port int `yaml:"port"`

	// Path defaults to /cgi-bin/system.
	Path string `yaml:"path"`

	// DiskPath is the filesystem whose usage is reported. Defaults to /.
	DiskPath string `yaml:"disk_path"`

	// MaxProcesses caps the process table. Defaults to 10.
	MaxProcesses int `yaml:"max_processes"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment. Variables already set are not overridden. An empty path is a no-op.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before parsing.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in Title, FragmentURL, JSONURL, Page
// and Source.DiskPath. Defaults are applied for Port (8080) and the source block.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Source.Port == 0 {
		c.Source.Port = defaultSourcePort
	}
	if c.Source.Path == "" {
		c.Source.Path = defaultSourcePath
	}
	if c.Source.DiskPath == "" {
		c.Source.DiskPath = defaultDiskPath
	}
	if c.Source.MaxProcesses == 0 {
		c.Source.MaxProcesses = defaultMaxProcesses
	}
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	for _, field := range []struct {
		name string
		val  *string
	}{
		{"title", &c.Title},
		{"fragment_url", &c.FragmentURL},
		{"json_url", &c.JSONURL},
		{"page", &c.Page},
		{"source.disk_path", &c.Source.DiskPath},
	} {
		expanded, err := expandEnvVars(*field.val)
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.val = expanded
	}

	if err := validatePort("port", c.Port); err != nil {
		return err
	}
	if c.RequestTimeout.Duration() < 0 {
		return fmt.Errorf("request_timeout cannot be negative, got %s", c.RequestTimeout.Duration())
	}

	if c.Source.Enabled {
		if err := validatePort("source.port", c.Source.Port); err != nil {
			return err
		}
		if c.Source.Port == c.Port {
			return fmt.Errorf("source.port must differ from port (%d)", c.Port)
		}
		if !strings.HasPrefix(c.Source.Path, "/") {
			return fmt.Errorf("source.path must start with /, got %q", c.Source.Path)
		}
		if c.Source.MaxProcesses < 0 {
			return fmt.Errorf("source.max_processes cannot be negative, got %d", c.Source.MaxProcesses)
		}
		if c.FragmentURL == "" {
			c.FragmentURL = c.SourceURL()
		}
	}

	if c.FragmentURL == "" {
		return errors.New("fragment_url is required unless source.enabled is set")
	}
	if err := validateURL("fragment_url", c.FragmentURL); err != nil {
		return err
	}

	if c.JSONURL == "" {
		c.JSONURL = withJSONQuery(c.FragmentURL)
	}
	if err := validateURL("json_url", c.JSONURL); err != nil {
		return err
	}

	return nil
}

// SourceURL is the fragment URL of the local status endpoint.
func (c *Config) SourceURL() string {
	return fmt.Sprintf("http://localhost:%d%s", c.Source.Port, c.Source.Path)
}

func withJSONQuery(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("json", "1")
	u.RawQuery = q.Encode()
	return u.String()
}

func validatePort(field string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", field, port)
	}
	return nil
}

func validateURL(field, rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s: invalid url: %w", field, err)
	}
	if parsedURL.Scheme == "" {
		return fmt.Errorf("%s: url must have a scheme (http:// or https://)", field)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s: url scheme must be http or https, got %q", field, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s: url must have a host", field)
	}
	return nil
}
