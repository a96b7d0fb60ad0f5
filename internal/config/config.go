package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"truthlens/internal/models"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from file and environment variables
func Load(configPath string) (*models.Config, error) {
	// Start with default configuration
	config := models.NewDefaultConfig()

	// Load from file if provided and exists
	if configPath != "" {
		if err := loadFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Override with environment variables
	loadFromEnvironment(config)

	// Validate the final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(config *models.Config, filePath string) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", filePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return nil
}

// loadFromEnvironment loads configuration from environment variables
func loadFromEnvironment(config *models.Config) {
	// Server configuration
	if port := os.Getenv("TRUTHLENS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if host := os.Getenv("TRUTHLENS_HOST"); host != "" {
		config.Server.Host = host
	}

	if timeout := os.Getenv("TRUTHLENS_READ_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Server.ReadTimeout = d
		}
	}

	if timeout := os.Getenv("TRUTHLENS_WRITE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Server.WriteTimeout = d
		}
	}

	if timeout := os.Getenv("TRUTHLENS_IDLE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Server.IdleTimeout = d
		}
	}

	if tls := os.Getenv("TRUTHLENS_TLS_ENABLED"); tls != "" {
		config.Server.TLSEnabled = strings.ToLower(tls) == "true"
	}

	if certFile := os.Getenv("TRUTHLENS_TLS_CERT_FILE"); certFile != "" {
		config.Server.TLSCertFile = certFile
	}

	if keyFile := os.Getenv("TRUTHLENS_TLS_KEY_FILE"); keyFile != "" {
		config.Server.TLSKeyFile = keyFile
	}

	// Quota configuration
	if enabled := os.Getenv("TRUTHLENS_QUOTA_ENABLED"); enabled != "" {
		config.Quota.Enabled = strings.ToLower(enabled) == "true"
	}

	if limit := os.Getenv("TRUTHLENS_QUOTA_DAILY_LIMIT"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			config.Quota.DailyLimit = l
		}
	}

	if cleanup := os.Getenv("TRUTHLENS_QUOTA_CLEANUP_INTERVAL"); cleanup != "" {
		if d, err := time.ParseDuration(cleanup); err == nil {
			config.Quota.CleanupInterval = d
		}
	}

	// Classifier configuration
	if endpoint := os.Getenv("TRUTHLENS_CLASSIFIER_ENDPOINT"); endpoint != "" {
		config.Classifier.Endpoint = endpoint
	}

	if apiKey := os.Getenv("TRUTHLENS_CLASSIFIER_API_KEY"); apiKey != "" {
		config.Classifier.APIKey = apiKey
	}

	if timeout := os.Getenv("TRUTHLENS_CLASSIFIER_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Classifier.Timeout = d
		}
	}

	if workers := os.Getenv("TRUTHLENS_CLASSIFIER_MAX_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil {
			config.Classifier.MaxWorkers = n
		}
	}

	// History configuration
	if enabled := os.Getenv("TRUTHLENS_HISTORY_ENABLED"); enabled != "" {
		config.History.Enabled = strings.ToLower(enabled) == "true"
	}

	if historyType := os.Getenv("TRUTHLENS_HISTORY_TYPE"); historyType != "" {
		config.History.Type = historyType
	}

	if dsn := os.Getenv("TRUTHLENS_HISTORY_DSN"); dsn != "" {
		config.History.DSN = dsn
	}

	if ttl := os.Getenv("TRUTHLENS_HISTORY_CACHE_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			config.History.CacheTTL = d
		}
	}

	// Logging configuration
	if level := os.Getenv("TRUTHLENS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if format := os.Getenv("TRUTHLENS_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}

	if output := os.Getenv("TRUTHLENS_LOG_OUTPUT"); output != "" {
		config.Logging.Output = output
	}

	if filePath := os.Getenv("TRUTHLENS_LOG_FILE_PATH"); filePath != "" {
		config.Logging.FilePath = filePath
	}

	// Metrics configuration
	if metrics := os.Getenv("TRUTHLENS_METRICS_ENABLED"); metrics != "" {
		config.Metrics.Enabled = strings.ToLower(metrics) == "true"
	}

	if path := os.Getenv("TRUTHLENS_METRICS_PATH"); path != "" {
		config.Metrics.Path = path
	}

	if port := os.Getenv("TRUTHLENS_METRICS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Metrics.Port = p
		}
	}

	// Observability configuration
	if name := os.Getenv("TRUTHLENS_SERVICE_NAME"); name != "" {
		config.Observability.ServiceName = name
	}

	if tracing := os.Getenv("TRUTHLENS_TRACING_ENABLED"); tracing != "" {
		config.Observability.Tracing.Enabled = strings.ToLower(tracing) == "true"
	}

	if exporter := os.Getenv("TRUTHLENS_TRACING_EXPORTER"); exporter != "" {
		config.Observability.Tracing.Exporter = exporter
	}

	if endpoint := os.Getenv("TRUTHLENS_OTLP_ENDPOINT"); endpoint != "" {
		config.Observability.Tracing.OTLPEndpoint = endpoint
	}
}

// SaveExample saves an example configuration file
func SaveExample(filePath string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Get default config with some example values
	config := models.NewDefaultConfig()
	config.Classifier.APIKey = "your-classifier-api-key-here"
	config.History.Type = models.HistoryTypeSQLite
	config.History.DSN = "./data/truthlens.db"

	// Marshal to YAML
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// Write to file
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
