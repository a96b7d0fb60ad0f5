// Package models - Service configuration and operational settings.
// This file defines the configuration structures for all gateway components.
//
// Configuration Philosophy:
// - Hierarchical configuration with logical grouping (server, quota, classifier, etc.)
// - Environment-friendly defaults that work out of the box
// - Comprehensive validation to catch misconfigurations early
// - Security-first approach: the upstream credential is optional and its
//   absence disables media classification rather than failing startup
package models

import (
	"errors"
	"fmt"
	"time"
)

// History storage type constants
const (
	HistoryTypeMemory   = "memory"
	HistoryTypeSQLite   = "sqlite"
	HistoryTypePostgres = "postgres"
)

// Config is the root configuration structure containing all service settings.
type Config struct {
	Server        ServerConfig        `yaml:"server" json:"server"`               // HTTP server configuration
	Quota         QuotaConfig         `yaml:"quota" json:"quota"`                 // Per-client daily quota
	Classifier    ClassifierConfig    `yaml:"classifier" json:"classifier"`       // Remote media classification service
	History       HistoryConfig       `yaml:"history" json:"history"`             // Classification result storage
	Logging       LoggingConfig       `yaml:"logging" json:"logging"`             // Logging and output configuration
	Metrics       MetricsConfig       `yaml:"metrics" json:"metrics"`             // Monitoring and metrics
	Observability ObservabilityConfig `yaml:"observability" json:"observability"` // Tracing configuration
}

type ServerConfig struct {
	Port         int           `yaml:"port" json:"port"`
	Host         string        `yaml:"host" json:"host"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	TLSEnabled   bool          `yaml:"tls_enabled" json:"tls_enabled"`
	TLSCertFile  string        `yaml:"tls_cert_file" json:"tls_cert_file"`
	TLSKeyFile   string        `yaml:"tls_key_file" json:"tls_key_file"`
	CORS         CORSConfig    `yaml:"cors" json:"cors"`
}

type CORSConfig struct {
	Enabled        bool     `yaml:"enabled" json:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" json:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" json:"allowed_headers"`
	MaxAge         int      `yaml:"max_age" json:"max_age"`
}

// QuotaConfig controls the per-client daily request quota. The window is
// bounded by UTC midnights; CleanupInterval is the cadence of the
// background eviction of expired records.
type QuotaConfig struct {
	Enabled         bool          `yaml:"enabled" json:"enabled"`
	DailyLimit      int           `yaml:"daily_limit" json:"daily_limit"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" json:"cleanup_interval"`
}

// ClassifierConfig describes the remote media-analysis endpoint. An empty
// APIKey disables the media check feature entirely; requests receive a
// "feature unavailable" response instead of an upstream call.
type ClassifierConfig struct {
	Endpoint   string        `yaml:"endpoint" json:"endpoint"`
	APIKey     string        `yaml:"api_key" json:"-"` // never serialized
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`
	MaxWorkers int           `yaml:"max_workers" json:"max_workers"`
}

// Enabled reports whether media classification is available.
func (cc *ClassifierConfig) Enabled() bool {
	return cc.APIKey != ""
}

// HistoryConfig controls persistence of classification outcomes. Quota
// state itself is always volatile and in-memory; only classification
// results are stored. CacheTTL bounds how long a stored result may be
// served in place of a fresh upstream call.
type HistoryConfig struct {
	Enabled  bool          `yaml:"enabled" json:"enabled"`
	Type     string        `yaml:"type" json:"type"`
	DSN      string        `yaml:"dsn" json:"dsn"`
	CacheTTL time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
}

type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	Format   string `yaml:"format" json:"format"`
	Output   string `yaml:"output" json:"output"`
	FilePath string `yaml:"file_path" json:"file_path"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
	Port    int    `yaml:"port" json:"port"`
}

type ObservabilityConfig struct {
	ServiceName string        `yaml:"service_name" json:"service_name"`
	Tracing     TracingConfig `yaml:"tracing" json:"tracing"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	Exporter     string  `yaml:"exporter" json:"exporter"` // "stdout" or "otlp"
	OTLPEndpoint string  `yaml:"otlp_endpoint" json:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate" json:"sample_rate"`
}

// NewDefaultConfig creates a configuration with production-ready defaults.
//
// Default Values Rationale:
// - Port 8080: Standard non-privileged HTTP port
// - Daily limit 25: Free-tier allowance of the reference deployment
// - 30-second classifier timeout: upstream model calls routinely take
//   several seconds; anything beyond 30s is treated as unavailable
// - 8 classifier workers: bounded independently of HTTP concurrency so a
//   burst of media checks cannot starve other request types
// - Memory history storage: works without external dependencies
// - Permissive CORS: the primary client is a browser extension
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
			TLSEnabled:   false,
			CORS: CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"*"},
				MaxAge:         86400,
			},
		},
		Quota: QuotaConfig{
			Enabled:         true,
			DailyLimit:      25,
			CleanupInterval: 10 * time.Minute,
		},
		Classifier: ClassifierConfig{
			Endpoint:   "https://api.thehive.ai/api/v2/task/sync",
			Timeout:    30 * time.Second,
			MaxWorkers: 8,
		},
		History: HistoryConfig{
			Enabled:  true,
			Type:     HistoryTypeMemory,
			CacheTTL: 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
			Port:    9090,
		},
		Observability: ObservabilityConfig{
			ServiceName: "truthlens",
			Tracing: TracingConfig{
				Enabled:    false,
				Exporter:   "stdout",
				SampleRate: 1.0,
			},
		},
	}
}

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	if err := c.Quota.Validate(); err != nil {
		return fmt.Errorf("invalid quota config: %w", err)
	}

	if err := c.Classifier.Validate(); err != nil {
		return fmt.Errorf("invalid classifier config: %w", err)
	}

	if err := c.History.Validate(); err != nil {
		return fmt.Errorf("invalid history config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("invalid metrics config: %w", err)
	}

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	return nil
}

func (sc *ServerConfig) Validate() error {
	if sc.Port <= 0 || sc.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	if sc.Host == "" {
		return errors.New("host cannot be empty")
	}

	if sc.ReadTimeout < 0 {
		return errors.New("read timeout cannot be negative")
	}

	if sc.WriteTimeout < 0 {
		return errors.New("write timeout cannot be negative")
	}

	if sc.IdleTimeout < 0 {
		return errors.New("idle timeout cannot be negative")
	}

	if sc.TLSEnabled {
		if sc.TLSCertFile == "" {
			return errors.New("TLS cert file is required when TLS is enabled")
		}
		if sc.TLSKeyFile == "" {
			return errors.New("TLS key file is required when TLS is enabled")
		}
	}

	return nil
}

func (qc *QuotaConfig) Validate() error {
	if !qc.Enabled {
		return nil
	}

	if qc.DailyLimit <= 0 {
		return errors.New("daily limit must be positive")
	}

	if qc.CleanupInterval <= 0 {
		return errors.New("cleanup interval must be positive")
	}

	return nil
}

func (cc *ClassifierConfig) Validate() error {
	if cc.Endpoint == "" {
		return errors.New("classifier endpoint cannot be empty")
	}

	if cc.Timeout <= 0 {
		return errors.New("classifier timeout must be positive")
	}

	if cc.MaxWorkers <= 0 {
		return errors.New("classifier max workers must be positive")
	}

	return nil
}

func (hc *HistoryConfig) Validate() error {
	if !hc.Enabled {
		return nil
	}

	validTypes := []string{HistoryTypeMemory, HistoryTypeSQLite, HistoryTypePostgres}
	found := false
	for _, vt := range validTypes {
		if hc.Type == vt {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("invalid history storage type: %s", hc.Type)
	}

	if (hc.Type == HistoryTypeSQLite || hc.Type == HistoryTypePostgres) && hc.DSN == "" {
		return errors.New("DSN is required for database history storage")
	}

	if hc.CacheTTL < 0 {
		return errors.New("cache TTL cannot be negative")
	}

	return nil
}

func (lc *LoggingConfig) Validate() error {
	validLevels := []string{"debug", "info", "warn", "error"}
	found := false
	for _, vl := range validLevels {
		if lc.Level == vl {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("invalid log level: %s", lc.Level)
	}

	validFormats := []string{"json", "text"}
	found = false
	for _, vf := range validFormats {
		if lc.Format == vf {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("invalid log format: %s", lc.Format)
	}

	validOutputs := []string{"stdout", "stderr", "file"}
	found = false
	for _, vo := range validOutputs {
		if lc.Output == vo {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("invalid log output: %s", lc.Output)
	}

	if lc.Output == "file" && lc.FilePath == "" {
		return errors.New("file path is required when output is file")
	}

	return nil
}

func (mc *MetricsConfig) Validate() error {
	if !mc.Enabled {
		return nil
	}

	if mc.Path == "" {
		return errors.New("metrics path cannot be empty")
	}

	if mc.Port <= 0 || mc.Port > 65535 {
		return errors.New("metrics port must be between 1 and 65535")
	}

	return nil
}

func (oc *ObservabilityConfig) Validate() error {
	if oc.ServiceName == "" {
		return errors.New("service name cannot be empty")
	}

	if oc.Tracing.Enabled {
		if oc.Tracing.Exporter != "stdout" && oc.Tracing.Exporter != "otlp" {
			return fmt.Errorf("invalid trace exporter: %s", oc.Tracing.Exporter)
		}
		if oc.Tracing.Exporter == "otlp" && oc.Tracing.OTLPEndpoint == "" {
			return errors.New("OTLP endpoint is required for the otlp exporter")
		}
		if oc.Tracing.SampleRate < 0 || oc.Tracing.SampleRate > 1 {
			return errors.New("sample rate must be between 0 and 1")
		}
	}

	return nil
}
