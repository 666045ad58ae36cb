package job

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Probe runs the external tool with --version and checks the reported
// version against the configured minimum. A missing or unrunnable binary is
// an error; an older-than-required version is reported so the caller can
// decide whether to warn or refuse to start. Returns the detected version
// string (empty when the output carries no recognizable version).
func (r *Runner) Probe(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, r.cfg.Binary, "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("tool %q is not runnable: %w", r.cfg.Binary, err)
	}

	detected := firstVersionToken(string(out))
	if detected == "" || r.cfg.MinVersion == "" {
		return detected, nil
	}

	min, err := semver.NewVersion(r.cfg.MinVersion)
	if err != nil {
		return detected, fmt.Errorf("invalid min_version %q: %w", r.cfg.MinVersion, err)
	}
	got, err := semver.NewVersion(detected)
	if err != nil {
		return detected, nil
	}

	if got.LessThan(min) {
		return detected, fmt.Errorf("tool version %s is older than required %s", detected, min)
	}

	return detected, nil
}

// firstVersionToken scans whitespace-separated tokens for the first one that
// parses as a semantic version, tolerating a leading "v".
func firstVersionToken(s string) string {
	for _, token := range strings.Fields(s) {
		trimmed := strings.TrimPrefix(token, "v")
		if _, err := semver.NewVersion(trimmed); err == nil {
			return trimmed
		}
	}
	return ""
}
