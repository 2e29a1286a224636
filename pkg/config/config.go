// Package config resolves the flomo-mcp configuration. Values come from, in
// order of precedence, explicit flags, environment variables, and an optional
// YAML file. The result is resolved once at startup and never mutated.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/germanamz/flomo-mcp/pkg/notetool"
)

// Environment variable names.
const (
	EnvAPIURL   = "FLOMO_API_URL"
	EnvLinkHost = "FLOMO_LINK_HOST"
	EnvTimeout  = "FLOMO_TIMEOUT"
	EnvHTTPAddr = "FLOMO_HTTP_ADDR"
	EnvLogLevel = "FLOMO_LOG_LEVEL"
)

// Config is the resolved configuration.
type Config struct {
	APIURL   string        // Webhook URL. Empty means unconfigured.
	LinkHost string        // Host for memo links.
	Timeout  time.Duration // Per-call deadline (0 = none).
	HTTPAddr string        // Serve over HTTP when set, stdio otherwise.
	LogLevel slog.Level
}

// File is the on-disk YAML representation.
type File struct {
	APIURL   string `yaml:"api_url"`
	LinkHost string `yaml:"link_host"`
	Timeout  string `yaml:"timeout"` // Duration string (e.g. "10s").
	HTTPAddr string `yaml:"http_addr"`
	LogLevel string `yaml:"log_level"`
}

// Flags holds values given explicitly on the command line. Empty fields are
// treated as unset.
type Flags struct {
	APIURL   string
	HTTPAddr string
	Verbose  bool
}

// LoadFile reads a YAML file. Environment variables referenced as ${VAR} or
// $VAR are expanded before parsing.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return File{}, fmt.Errorf("config: load: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var f File
	if err := yaml.Unmarshal([]byte(expanded), &f); err != nil {
		return File{}, fmt.Errorf("config: parse: %w", err)
	}

	return f, nil
}

// Resolve merges flags, environment (via getenv) and the file at path into a
// Config. An empty path skips the file. A nil getenv uses os.Getenv.
func Resolve(flags Flags, path string, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	var f File
	if path != "" {
		var err error
		if f, err = LoadFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		APIURL:   first(flags.APIURL, getenv(EnvAPIURL), f.APIURL),
		LinkHost: first(getenv(EnvLinkHost), f.LinkHost, notetool.DefaultLinkHost),
		HTTPAddr: first(flags.HTTPAddr, getenv(EnvHTTPAddr), f.HTTPAddr),
	}

	if raw := first(getenv(EnvTimeout), f.Timeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid timeout %q: %w", raw, err)
		}
		cfg.Timeout = d
	}

	if flags.Verbose {
		cfg.LogLevel = slog.LevelDebug
	} else if raw := first(getenv(EnvLogLevel), f.LogLevel); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			return Config{}, fmt.Errorf("config: invalid log level %q: %w", raw, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration for values that can never work. An
// empty APIURL is valid; it is reported when a note is written.
func (c Config) Validate() error {
	if c.APIURL != "" {
		u, err := url.Parse(c.APIURL)
		if err != nil {
			return fmt.Errorf("config: invalid api url: %w", err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config: invalid api url %q: want an absolute http(s) url", c.APIURL)
		}
	}

	if c.LinkHost == "" || strings.ContainsAny(c.LinkHost, "/?#") {
		return fmt.Errorf("config: invalid link host %q", c.LinkHost)
	}

	if c.Timeout < 0 {
		return errors.New("config: timeout must not be negative")
	}

	return nil
}

// first returns the first non-empty value.
func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
