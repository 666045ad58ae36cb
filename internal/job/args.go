package job

import (
	"fmt"
	"path/filepath"

	"docmill/internal/models"
)

// Invocation is the computed external-tool call for one staged job: the
// argument list passed to the binary and the glob matching its expected
// output artifacts. Both are pure functions of the request parameters and
// the staging paths.
type Invocation struct {
	Args       []string
	OutputGlob string
}

// compressionProfile maps the declared quality to the tool's profile name.
// Defaults to balanced when unset.
func compressionProfile(quality string) (string, error) {
	switch quality {
	case "", "balanced":
		return "ebook", nil
	case "low":
		return "screen", nil
	case "high":
		return "prepress", nil
	default:
		return "", fmt.Errorf("unknown compression quality %q", quality)
	}
}

// extractMode validates the extraction mode. Defaults to images when unset.
func extractMode(mode string) (string, error) {
	switch mode {
	case "", "images":
		return "images", nil
	case "text":
		return "text", nil
	default:
		return "", fmt.Errorf("unknown extract mode %q", mode)
	}
}

// buildInvocation computes the tool arguments for a staged job. inputPaths
// are the staged copies of the uploads in request order; outDir is the
// job-private directory the tool writes artifacts into.
func buildInvocation(op models.Operation, params Params, inputPaths []string, outDir string) (Invocation, error) {
	switch op {
	case models.OperationConvert:
		out := filepath.Join(outDir, "output."+params.TargetFormat)
		return Invocation{
			Args:       []string{"convert", "--to", params.TargetFormat, "--output", out, inputPaths[0]},
			OutputGlob: out,
		}, nil

	case models.OperationCompress:
		profile, err := compressionProfile(params.Quality)
		if err != nil {
			return Invocation{}, err
		}
		out := filepath.Join(outDir, "output.pdf")
		return Invocation{
			Args:       []string{"compress", "--profile", profile, "--output", out, inputPaths[0]},
			OutputGlob: out,
		}, nil

	case models.OperationExtract:
		mode, err := extractMode(params.ExtractMode)
		if err != nil {
			return Invocation{}, err
		}
		return Invocation{
			Args:       []string{"extract", "--mode", mode, "--output-dir", outDir, inputPaths[0]},
			OutputGlob: filepath.Join(outDir, "extracted-*"),
		}, nil

	case models.OperationUnlock:
		out := filepath.Join(outDir, "output.pdf")
		args := []string{"unlock", "--output", out}
		if params.Password != "" {
			args = append(args, "--password", params.Password)
		}
		args = append(args, inputPaths[0])
		return Invocation{
			Args:       args,
			OutputGlob: out,
		}, nil

	case models.OperationMerge:
		out := filepath.Join(outDir, "output.pdf")
		args := append([]string{"merge", "--output", out}, inputPaths...)
		return Invocation{
			Args:       args,
			OutputGlob: out,
		}, nil
	}

	return Invocation{}, fmt.Errorf("unknown operation %q", op)
}
