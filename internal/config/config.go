// Package config loads the session configuration once at startup.
//
// Values are resolved in this order: process environment (including an
// optional .env file), an optional waypoint.yaml, then built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EmbeddedAPIKey is the fallback GraphHopper key used when GRAPHHOPPER_KEY is
// unset. It is empty unless injected at build time:
//
//	go build -ldflags "-X github.com/waypointcli/waypoint/internal/config.EmbeddedAPIKey=..."
var EmbeddedAPIKey = ""

// Configuration errors.
var (
	// ErrMissingAPIKey indicates neither GRAPHHOPPER_KEY nor an embedded key is available.
	ErrMissingAPIKey = errors.New("GRAPHHOPPER_KEY is not set and no embedded key is available")
	// ErrInvalidValue indicates a configuration value could not be parsed.
	ErrInvalidValue = errors.New("invalid configuration value")
)

const (
	keyAPIKey       = "graphhopper_key"
	keyBaseURL      = "graphhopper_base_url"
	keyHTTPTimeout  = "http_timeout"
	keyReportDir    = "report_dir"
	keyLogLevel     = "log_level"
	keyEnvironment  = "app_env"
	keyOTelEnabled  = "otel_enabled"
	keyOTelEndpoint = "otel_exporter_otlp_endpoint"

	// DefaultBaseURL is the GraphHopper API base URL.
	DefaultBaseURL = "https://graphhopper.com/api/1"

	// placeholderKey is the value shipped in sample configs; it never authenticates.
	placeholderKey = "YOUR_API_KEY"
)

// Config is the immutable session configuration.
type Config struct {
	APIKey      string
	BaseURL     string
	HTTPTimeout time.Duration
	ReportDir   string
	LogLevel    zerolog.Level
	Environment string
	Telemetry   TelemetryConfig

	// Source records where the API key came from ("env", "file" or "embedded").
	Source string
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
}

// Load reads .env and waypoint.yaml from dir (both optional) and resolves the
// configuration. An empty dir means the working directory.
func Load(dir string) (Config, error) {
	if dir == "" {
		dir = "."
	}

	// A missing .env is normal; variables may be set directly.
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	v := viper.New()
	v.SetConfigName("waypoint")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading waypoint.yaml: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper resolves a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		APIKey:      strings.TrimSpace(v.GetString(keyAPIKey)),
		BaseURL:     strings.TrimSuffix(v.GetString(keyBaseURL), "/"),
		HTTPTimeout: v.GetDuration(keyHTTPTimeout),
		ReportDir:   v.GetString(keyReportDir),
		Environment: v.GetString(keyEnvironment),
		Telemetry: TelemetryConfig{
			Enabled:      v.GetBool(keyOTelEnabled),
			OTLPEndpoint: v.GetString(keyOTelEndpoint),
		},
		Source: keySource(v),
	}

	if cfg.APIKey == "" || cfg.APIKey == placeholderKey {
		return Config{}, ErrMissingAPIKey
	}

	if cfg.HTTPTimeout <= 0 {
		return Config{}, fmt.Errorf("%w: HTTP_TIMEOUT %q", ErrInvalidValue, v.GetString(keyHTTPTimeout))
	}

	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString(keyLogLevel)))
	if err != nil {
		return Config{}, fmt.Errorf("%w: LOG_LEVEL: %v", ErrInvalidValue, err)
	}
	cfg.LogLevel = level

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyAPIKey, EmbeddedAPIKey)
	v.SetDefault(keyBaseURL, DefaultBaseURL)
	v.SetDefault(keyHTTPTimeout, 15*time.Second)
	v.SetDefault(keyReportDir, ".")
	v.SetDefault(keyLogLevel, "warn")
	v.SetDefault(keyEnvironment, "development")
	v.SetDefault(keyOTelEnabled, false)
	v.SetDefault(keyOTelEndpoint, "localhost:4317")
}

func keySource(v *viper.Viper) string {
	if value, ok := os.LookupEnv(strings.ToUpper(keyAPIKey)); ok && strings.TrimSpace(value) != "" {
		return "env"
	}
	if v.InConfig(keyAPIKey) {
		return "file"
	}
	return "embedded"
}
