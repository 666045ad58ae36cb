package job

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docmill/internal/models"
)

func TestCompressionProfile(t *testing.T) {
	tests := []struct {
		quality   string
		profile   string
		expectErr bool
	}{
		{quality: "", profile: "ebook"},
		{quality: "balanced", profile: "ebook"},
		{quality: "low", profile: "screen"},
		{quality: "high", profile: "prepress"},
		{quality: "maximum", expectErr: true},
	}

	for _, tt := range tests {
		t.Run("quality="+tt.quality, func(t *testing.T) {
			profile, err := compressionProfile(tt.quality)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.profile, profile)
		})
	}
}

func TestBuildInvocation_Convert(t *testing.T) {
	inv, err := buildInvocation(models.OperationConvert,
		Params{TargetFormat: "docx"},
		[]string{"/work/in/input-0.pdf"}, "/work/out")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"convert", "--to", "docx",
		"--output", filepath.Join("/work/out", "output.docx"),
		"/work/in/input-0.pdf",
	}, inv.Args)
	assert.Equal(t, filepath.Join("/work/out", "output.docx"), inv.OutputGlob)
}

func TestBuildInvocation_Compress(t *testing.T) {
	inv, err := buildInvocation(models.OperationCompress,
		Params{Quality: "low"},
		[]string{"/work/in/input-0.pdf"}, "/work/out")
	require.NoError(t, err)

	assert.Contains(t, inv.Args, "--profile")
	assert.Contains(t, inv.Args, "screen")
}

func TestBuildInvocation_Extract(t *testing.T) {
	inv, err := buildInvocation(models.OperationExtract,
		Params{ExtractMode: "images"},
		[]string{"/work/in/input-0.pdf"}, "/work/out")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"extract", "--mode", "images", "--output-dir", "/work/out",
		"/work/in/input-0.pdf",
	}, inv.Args)
	assert.Equal(t, filepath.Join("/work/out", "extracted-*"), inv.OutputGlob)
}

func TestBuildInvocation_UnlockWithPassword(t *testing.T) {
	inv, err := buildInvocation(models.OperationUnlock,
		Params{Password: "hunter2"},
		[]string{"/work/in/input-0.pdf"}, "/work/out")
	require.NoError(t, err)

	assert.Contains(t, inv.Args, "--password")
	assert.Contains(t, inv.Args, "hunter2")
	assert.Equal(t, "/work/in/input-0.pdf", inv.Args[len(inv.Args)-1])
}

func TestBuildInvocation_UnlockWithoutPassword(t *testing.T) {
	// Unlock without a credential is still attempted; the classifier turns
	// the tool's complaint into a credential-required outcome.
	inv, err := buildInvocation(models.OperationUnlock,
		Params{},
		[]string{"/work/in/input-0.pdf"}, "/work/out")
	require.NoError(t, err)

	assert.NotContains(t, inv.Args, "--password")
}

func TestBuildInvocation_MergePreservesInputOrder(t *testing.T) {
	inputs := []string{"/work/in/input-0.pdf", "/work/in/input-1.pdf", "/work/in/input-2.pdf"}
	inv, err := buildInvocation(models.OperationMerge, Params{}, inputs, "/work/out")
	require.NoError(t, err)

	assert.Equal(t, inputs, inv.Args[len(inv.Args)-3:])
}

func TestBuildInvocation_Deterministic(t *testing.T) {
	// Identical declared inputs must always produce identical invocations.
	for i := 0; i < 3; i++ {
		a, err := buildInvocation(models.OperationCompress, Params{Quality: "high"},
			[]string{"/in.pdf"}, "/out")
		require.NoError(t, err)
		b, err := buildInvocation(models.OperationCompress, Params{Quality: "high"},
			[]string{"/in.pdf"}, "/out")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestBuildInvocation_UnknownQuality(t *testing.T) {
	_, err := buildInvocation(models.OperationCompress, Params{Quality: "ultra"},
		[]string{"/in.pdf"}, "/out")
	assert.Error(t, err)
}

func TestBuildInvocation_UnknownOperation(t *testing.T) {
	_, err := buildInvocation(models.Operation("rotate"), Params{}, []string{"/in.pdf"}, "/out")
	assert.Error(t, err)
}
