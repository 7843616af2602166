// Package config provides meshctl configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (MESHCTL_* runtime override)
//  2. Config file (~/.meshctl/config.yaml)
//  3. Default values
//
// The interesting knobs all belong to the outbound request gateway: timeout
// bounds, the response size cap, redirect limits, and where audit events go.
// Sensitive data never appears in this file's logs.
//
// Error handling uses sentinel errors so callers can branch with
// errors.Is(); wrap with fmt.Errorf("%w: details", ErrXxx).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidTimeout indicates a timeout outside the supported range.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrInvalidResponseSize indicates a non-positive response size cap.
	ErrInvalidResponseSize = errors.New("invalid max response size")

	// ErrInvalidRedirectLimit indicates a redirect limit outside 1..20.
	ErrInvalidRedirectLimit = errors.New("invalid redirect limit")

	// ErrInvalidAuditPath indicates an audit file sink without a path.
	ErrInvalidAuditPath = errors.New("invalid audit log path")
)

// Timeout bounds accepted from configuration. These mirror the gateway's own
// clamp; validating here surfaces typos at startup instead of silently
// clamping at request time.
const (
	minConfigTimeout = 1 * time.Second
	maxConfigTimeout = 60 * time.Second
)

// AuditConfig controls the audit sink.
type AuditConfig struct {
	// Enabled turns on per-call completion events. Security rejections are
	// always audited regardless of this flag.
	Enabled bool `mapstructure:"enabled" json:"enabled"`

	// LogPath, when set, appends events to a JSONL file instead of the
	// process log.
	LogPath string `mapstructure:"log_path" json:"log_path"`
}

// Config stores meshctl configuration.
type Config struct {
	// Logging
	LogLevel string `mapstructure:"log_level" json:"log_level"` // "debug", "info", "warn", "error"
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`

	// Outbound request gateway
	RequestTimeout  time.Duration `mapstructure:"request_timeout" json:"request_timeout"`
	MaxResponseSize int64         `mapstructure:"max_response_size" json:"max_response_size"`
	MaxRedirects    int           `mapstructure:"max_redirects" json:"max_redirects"`
	UserAgent       string        `mapstructure:"user_agent" json:"user_agent"`

	Audit AuditConfig `mapstructure:"audit" json:"audit"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}
	configDir := filepath.Join(home, ".meshctl")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvPrefix("MESHCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)

	v.SetDefault("request_timeout", "30s")
	v.SetDefault("max_response_size", int64(10*1024*1024))
	v.SetDefault("max_redirects", 5)
	v.SetDefault("user_agent", "")

	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.log_path", "")
}

// Validate checks configured values against the gateway's supported ranges.
func (c *Config) Validate() error {
	if c.RequestTimeout < minConfigTimeout || c.RequestTimeout > maxConfigTimeout {
		return fmt.Errorf("%w: %s (supported range %s..%s)",
			ErrInvalidTimeout, c.RequestTimeout, minConfigTimeout, maxConfigTimeout)
	}
	if c.MaxResponseSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidResponseSize, c.MaxResponseSize)
	}
	// The gateway treats a zero redirect limit as "use the default", so a
	// configured 0 would silently become 5. Reject it instead.
	if c.MaxRedirects < 1 || c.MaxRedirects > 20 {
		return fmt.Errorf("%w: %d (supported range 1..20)", ErrInvalidRedirectLimit, c.MaxRedirects)
	}
	return nil
}

// SlogLevel maps the configured log level string to a slog.Level.
// Unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
