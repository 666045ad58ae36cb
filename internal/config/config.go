package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"docmill/internal/models"

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
	if port := os.Getenv("DOCMILL_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if host := os.Getenv("DOCMILL_HOST"); host != "" {
		config.Server.Host = host
	}

	if timeout := os.Getenv("DOCMILL_READ_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Server.ReadTimeout = d
		}
	}

	if timeout := os.Getenv("DOCMILL_WRITE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Server.WriteTimeout = d
		}
	}

	if timeout := os.Getenv("DOCMILL_IDLE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Server.IdleTimeout = d
		}
	}

	if maxUpload := os.Getenv("DOCMILL_MAX_UPLOAD_BYTES"); maxUpload != "" {
		if n, err := strconv.ParseInt(maxUpload, 10, 64); err == nil {
			config.Server.MaxUploadBytes = n
		}
	}

	if hops := os.Getenv("DOCMILL_TRUSTED_PROXY_HOPS"); hops != "" {
		if n, err := strconv.Atoi(hops); err == nil {
			config.Server.TrustedProxyHops = n
		}
	}

	// External tool configuration
	if binary := os.Getenv("DOCMILL_TOOL_BINARY"); binary != "" {
		config.Tool.Binary = binary
	}

	if timeout := os.Getenv("DOCMILL_TOOL_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Tool.Timeout = d
		}
	}

	if workDir := os.Getenv("DOCMILL_TOOL_WORK_DIR"); workDir != "" {
		config.Tool.WorkDir = workDir
	}

	if minVersion := os.Getenv("DOCMILL_TOOL_MIN_VERSION"); minVersion != "" {
		config.Tool.MinVersion = minVersion
	}

	// Admission configuration
	if enabled := os.Getenv("DOCMILL_ADMISSION_ENABLED"); enabled != "" {
		config.Admission.Enabled = strings.ToLower(enabled) == "true"
	}

	if window := os.Getenv("DOCMILL_ADMISSION_WINDOW"); window != "" {
		if d, err := time.ParseDuration(window); err == nil {
			config.Admission.Window = d
		}
	}

	if max := os.Getenv("DOCMILL_GLOBAL_MAX_REQUESTS"); max != "" {
		if n, err := strconv.Atoi(max); err == nil {
			config.Admission.GlobalMaxRequests = n
		}
	}

	if max := os.Getenv("DOCMILL_HEAVY_MAX_REQUESTS"); max != "" {
		if n, err := strconv.Atoi(max); err == nil {
			config.Admission.HeavyMaxRequests = n
		}
	}

	if max := os.Getenv("DOCMILL_MAX_CONCURRENT_JOBS"); max != "" {
		if n, err := strconv.Atoi(max); err == nil {
			config.Admission.MaxConcurrentJobs = n
		}
	}

	if retry := os.Getenv("DOCMILL_CAPACITY_RETRY_AFTER"); retry != "" {
		if d, err := time.ParseDuration(retry); err == nil {
			config.Admission.CapacityRetryAfter = d
		}
	}

	// History configuration
	if historyType := os.Getenv("DOCMILL_HISTORY_TYPE"); historyType != "" {
		config.History.Type = historyType
	}

	if dsn := os.Getenv("DOCMILL_HISTORY_DSN"); dsn != "" {
		config.History.DSN = dsn
	}

	if limit := os.Getenv("DOCMILL_HISTORY_RECENT_LIMIT"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			config.History.RecentLimit = n
		}
	}

	// Logging configuration
	if level := os.Getenv("DOCMILL_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if format := os.Getenv("DOCMILL_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}

	if output := os.Getenv("DOCMILL_LOG_OUTPUT"); output != "" {
		config.Logging.Output = output
	}

	if filePath := os.Getenv("DOCMILL_LOG_FILE_PATH"); filePath != "" {
		config.Logging.FilePath = filePath
	}

	// Metrics configuration
	if metrics := os.Getenv("DOCMILL_METRICS_ENABLED"); metrics != "" {
		config.Metrics.Enabled = strings.ToLower(metrics) == "true"
	}

	if path := os.Getenv("DOCMILL_METRICS_PATH"); path != "" {
		config.Metrics.Path = path
	}

	if port := os.Getenv("DOCMILL_METRICS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Metrics.Port = p
		}
	}

	// Observability configuration
	if name := os.Getenv("DOCMILL_SERVICE_NAME"); name != "" {
		config.Observability.ServiceName = name
	}

	if tracing := os.Getenv("DOCMILL_TRACING_ENABLED"); tracing != "" {
		config.Observability.Tracing.Enabled = strings.ToLower(tracing) == "true"
	}

	if exporter := os.Getenv("DOCMILL_TRACING_EXPORTER"); exporter != "" {
		config.Observability.Tracing.Exporter = exporter
	}

	if endpoint := os.Getenv("DOCMILL_OTLP_ENDPOINT"); endpoint != "" {
		config.Observability.Tracing.OTLPEndpoint = endpoint
	}

	if rate := os.Getenv("DOCMILL_TRACING_SAMPLE_RATE"); rate != "" {
		if f, err := strconv.ParseFloat(rate, 64); err == nil {
			config.Observability.Tracing.SampleRate = f
		}
	}
}
