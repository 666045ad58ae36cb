package job

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docmill/internal/gate"
	"docmill/internal/models"
)

func probeRunner(t *testing.T, binary, minVersion string) *Runner {
	t.Helper()
	return NewRunner(models.ToolConfig{
		Binary:     binary,
		Timeout:    10 * time.Second,
		MinVersion: minVersion,
	}, gate.New(1), time.Second)
}

func TestProbe_DetectsVersion(t *testing.T) {
	tool := writeTool(t, `echo "doctool 2.3.1 (build 77)"`)
	r := probeRunner(t, tool, "")

	ver, err := r.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2.3.1", ver)
}

func TestProbe_MeetsMinimum(t *testing.T) {
	tool := writeTool(t, `echo "doctool v2.3.1"`)
	r := probeRunner(t, tool, "2.0.0")

	ver, err := r.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2.3.1", ver)
}

func TestProbe_BelowMinimum(t *testing.T) {
	tool := writeTool(t, `echo "doctool 1.9.0"`)
	r := probeRunner(t, tool, "2.0.0")

	ver, err := r.Probe(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "1.9.0", ver)
}

func TestProbe_NoRecognizableVersion(t *testing.T) {
	tool := writeTool(t, `echo "doctool development build"`)
	r := probeRunner(t, tool, "2.0.0")

	// No version token found: tolerated rather than refused
	ver, err := r.Probe(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ver)
}

func TestProbe_MissingBinary(t *testing.T) {
	r := probeRunner(t, filepath.Join(t.TempDir(), "absent"), "")

	_, err := r.Probe(context.Background())
	assert.Error(t, err)
}

func TestFirstVersionToken(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "doctool 2.3.1", expected: "2.3.1"},
		{name: "v prefix", input: "doctool v10.0.2", expected: "10.0.2"},
		{name: "multiline", input: "doctool\nversion 1.2.3\n", expected: "1.2.3"},
		{name: "none", input: "no digits here", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, firstVersionToken(tt.input))
		})
	}
}
