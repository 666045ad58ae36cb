package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"docmill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "test_config.yaml")

	configContent := `
server:
  port: 9000
  host: "localhost"
  read_timeout: 30s
  write_timeout: 60s
  idle_timeout: 90s
  max_upload_bytes: 1048576
  trusted_proxy_hops: 1

tool:
  binary: "/usr/local/bin/doctool"
  timeout: 90s
  work_dir: "/tmp/docmill"
  min_version: "2.1.0"

admission:
  enabled: true
  window: 30s
  global_max_requests: 200
  heavy_max_requests: 5
  max_concurrent_jobs: 2
  capacity_retry_after: 3s

history:
  type: "memory"
  recent_limit: 25

logging:
  level: "debug"
  format: "json"
  output: "stdout"

metrics:
  enabled: true
  path: "/metrics"
  port: 9091
`

	err := os.WriteFile(configFile, []byte(configContent), 0644)
	require.NoError(t, err)

	config, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, 9000, config.Server.Port)
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, int64(1048576), config.Server.MaxUploadBytes)
	assert.Equal(t, 1, config.Server.TrustedProxyHops)

	assert.Equal(t, "/usr/local/bin/doctool", config.Tool.Binary)
	assert.Equal(t, 90*time.Second, config.Tool.Timeout)
	assert.Equal(t, "2.1.0", config.Tool.MinVersion)

	assert.Equal(t, 30*time.Second, config.Admission.Window)
	assert.Equal(t, 200, config.Admission.GlobalMaxRequests)
	assert.Equal(t, 5, config.Admission.HeavyMaxRequests)
	assert.Equal(t, 2, config.Admission.MaxConcurrentJobs)
	assert.Equal(t, 3*time.Second, config.Admission.CapacityRetryAfter)

	assert.Equal(t, models.HistoryTypeMemory, config.History.Type)
	assert.Equal(t, 25, config.History.RecentLimit)

	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, 9091, config.Metrics.Port)
}

func TestLoad_WithoutConfigFile(t *testing.T) {
	config, err := Load("")
	require.NoError(t, err)

	// Defaults should survive validation
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "doctool", config.Tool.Binary)
	assert.True(t, config.Admission.Enabled)
	assert.Equal(t, time.Minute, config.Admission.Window)
	assert.Equal(t, 120, config.Admission.GlobalMaxRequests)
	assert.Equal(t, 10, config.Admission.HeavyMaxRequests)
	assert.Equal(t, 4, config.Admission.MaxConcurrentJobs)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "bad.yaml")

	err := os.WriteFile(configFile, []byte("server: [not a map"), 0644)
	require.NoError(t, err)

	_, err = Load(configFile)
	assert.Error(t, err)
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "invalid.yaml")

	// Negative concurrency cap must fail validation
	configContent := `
admission:
  enabled: true
  window: 60s
  global_max_requests: 100
  heavy_max_requests: 10
  max_concurrent_jobs: -1
  capacity_retry_after: 5s
`
	err := os.WriteFile(configFile, []byte(configContent), 0644)
	require.NoError(t, err)

	_, err = Load(configFile)
	assert.Error(t, err)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DOCMILL_PORT", "7070")
	t.Setenv("DOCMILL_TOOL_BINARY", "/opt/doctool")
	t.Setenv("DOCMILL_ADMISSION_WINDOW", "15s")
	t.Setenv("DOCMILL_HEAVY_MAX_REQUESTS", "3")
	t.Setenv("DOCMILL_MAX_CONCURRENT_JOBS", "8")
	t.Setenv("DOCMILL_HISTORY_TYPE", "memory")
	t.Setenv("DOCMILL_LOG_LEVEL", "warn")

	config, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "/opt/doctool", config.Tool.Binary)
	assert.Equal(t, 15*time.Second, config.Admission.Window)
	assert.Equal(t, 3, config.Admission.HeavyMaxRequests)
	assert.Equal(t, 8, config.Admission.MaxConcurrentJobs)
	assert.Equal(t, "warn", config.Logging.Level)
}

func TestLoad_EnvironmentIgnoresInvalidValues(t *testing.T) {
	t.Setenv("DOCMILL_PORT", "not-a-number")
	t.Setenv("DOCMILL_ADMISSION_WINDOW", "soon")

	config, err := Load("")
	require.NoError(t, err)

	// Invalid env values are ignored, defaults retained
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, time.Minute, config.Admission.Window)
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "config.yaml")

	configContent := `
server:
  port: 9000
`
	err := os.WriteFile(configFile, []byte(configContent), 0644)
	require.NoError(t, err)

	t.Setenv("DOCMILL_PORT", "9500")

	config, err := Load(configFile)
	require.NoError(t, err)

	// Environment wins over file
	assert.Equal(t, 9500, config.Server.Port)
}
