// Package models - Service configuration and operational settings.
// This file defines configuration structures for all service components.
//
// Configuration Philosophy:
// - Hierarchical configuration with logical grouping (server, tool, admission, etc.)
// - Environment-friendly defaults that work out of the box
// - Comprehensive validation to catch misconfigurations early
// - Admission limits enabled by default so an unconfigured deployment
//   still survives bursty load
package models

import (
	"errors"
	"fmt"
	"time"
)

// History backend type constants
const (
	HistoryTypeMemory   = "memory"
	HistoryTypeSQLite   = "sqlite"
	HistoryTypePostgres = "postgres"
)

// Config is the root configuration structure containing all service settings.
//
// Configuration Structure:
// - Server: HTTP server and network settings
// - Tool: external document-processing tool invocation
// - Admission: rate limiting and concurrency caps
// - History: job outcome persistence
// - Logging: structured logging and output configuration
// - Metrics: monitoring and observability
type Config struct {
	Server        ServerConfig        `yaml:"server" json:"server"`
	Tool          ToolConfig          `yaml:"tool" json:"tool"`
	Admission     AdmissionConfig     `yaml:"admission" json:"admission"`
	History       HistoryConfig       `yaml:"history" json:"history"`
	Logging       LoggingConfig       `yaml:"logging" json:"logging"`
	Metrics       MetricsConfig       `yaml:"metrics" json:"metrics"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

type ServerConfig struct {
	Port         int           `yaml:"port" json:"port"`
	Host         string        `yaml:"host" json:"host"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" json:"idle_timeout"`

	// MaxUploadBytes bounds the size of a single uploaded document.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" json:"max_upload_bytes"`

	// TrustedProxyHops is the number of reverse-proxy hops in front of the
	// service. It selects which X-Forwarded-For entry identifies the client.
	// 0 means the direct peer address is used.
	TrustedProxyHops int `yaml:"trusted_proxy_hops" json:"trusted_proxy_hops"`
}

// ToolConfig describes the external document-processing tool. The service
// only depends on its argument contract, exit status and diagnostic output.
type ToolConfig struct {
	Binary     string        `yaml:"binary" json:"binary"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`
	WorkDir    string        `yaml:"work_dir" json:"work_dir"`
	MinVersion string        `yaml:"min_version" json:"min_version"`
}

// AdmissionConfig holds the layered admission-control limits: a loose global
// rate limit for every request, a strict rate limit for heavy routes, and a
// process-wide cap on concurrently executing jobs.
type AdmissionConfig struct {
	Enabled            bool          `yaml:"enabled" json:"enabled"`
	Window             time.Duration `yaml:"window" json:"window"`
	GlobalMaxRequests  int           `yaml:"global_max_requests" json:"global_max_requests"`
	HeavyMaxRequests   int           `yaml:"heavy_max_requests" json:"heavy_max_requests"`
	MaxConcurrentJobs  int           `yaml:"max_concurrent_jobs" json:"max_concurrent_jobs"`
	CapacityRetryAfter time.Duration `yaml:"capacity_retry_after" json:"capacity_retry_after"`
}

type HistoryConfig struct {
	Type string `yaml:"type" json:"type"`
	DSN  string `yaml:"dsn" json:"dsn"`

	// RecentLimit is the number of records returned by the recent-jobs endpoint.
	RecentLimit int `yaml:"recent_limit" json:"recent_limit"`
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
	Exporter     string  `yaml:"exporter" json:"exporter"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" json:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate" json:"sample_rate"`
}

// NewDefaultConfig creates a configuration with production-ready defaults.
//
// Default Values Rationale:
// - Port 8080: standard non-privileged HTTP port
// - 120 requests/min global, 10 heavy: loose enough for browsing, strict
//   enough that a single client cannot monopolize the tool
// - 4 concurrent jobs: the external tool is CPU and memory hungry
// - Memory history: no external dependencies required to start
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:             8080,
			Host:             "0.0.0.0",
			ReadTimeout:      60 * time.Second,
			WriteTimeout:     120 * time.Second,
			IdleTimeout:      60 * time.Second,
			MaxUploadBytes:   100 << 20, // 100 MiB
			TrustedProxyHops: 0,
		},
		Tool: ToolConfig{
			Binary:  "doctool",
			Timeout: 2 * time.Minute,
			WorkDir: "", // empty means os.TempDir()
		},
		Admission: AdmissionConfig{
			Enabled:            true,
			Window:             time.Minute,
			GlobalMaxRequests:  120,
			HeavyMaxRequests:   10,
			MaxConcurrentJobs:  4,
			CapacityRetryAfter: 5 * time.Second,
		},
		History: HistoryConfig{
			Type:        HistoryTypeMemory,
			RecentLimit: 50,
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
			ServiceName: "docmill",
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

	if err := c.Tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool config: %w", err)
	}

	if err := c.Admission.Validate(); err != nil {
		return fmt.Errorf("invalid admission config: %w", err)
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

	if sc.MaxUploadBytes <= 0 {
		return errors.New("max upload bytes must be positive")
	}

	if sc.TrustedProxyHops < 0 {
		return errors.New("trusted proxy hops cannot be negative")
	}

	return nil
}

func (tc *ToolConfig) Validate() error {
	if tc.Binary == "" {
		return errors.New("tool binary cannot be empty")
	}

	if tc.Timeout <= 0 {
		return errors.New("tool timeout must be positive")
	}

	return nil
}

func (ac *AdmissionConfig) Validate() error {
	if !ac.Enabled {
		return nil
	}

	if ac.Window <= 0 {
		return errors.New("window must be positive")
	}

	if ac.GlobalMaxRequests <= 0 {
		return errors.New("global max requests must be positive")
	}

	if ac.HeavyMaxRequests <= 0 {
		return errors.New("heavy max requests must be positive")
	}

	if ac.MaxConcurrentJobs <= 0 {
		return errors.New("max concurrent jobs must be positive")
	}

	if ac.CapacityRetryAfter <= 0 {
		return errors.New("capacity retry after must be positive")
	}

	return nil
}

func (hc *HistoryConfig) Validate() error {
	switch hc.Type {
	case HistoryTypeMemory:
		// No additional configuration required.
	case HistoryTypeSQLite, HistoryTypePostgres:
		if hc.DSN == "" {
			return fmt.Errorf("DSN is required for %s history", hc.Type)
		}
	default:
		return fmt.Errorf("invalid history type: %s", hc.Type)
	}

	if hc.RecentLimit < 0 {
		return errors.New("recent limit cannot be negative")
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

	if mc.Port <= 0 || mc.Port > 65535 {
		return errors.New("metrics port must be between 1 and 65535")
	}

	if mc.Path == "" {
		return errors.New("metrics path cannot be empty")
	}

	return nil
}
