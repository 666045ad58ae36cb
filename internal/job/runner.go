// Package job orchestrates one heavy document-processing job: stage the
// uploaded input, build the external-tool invocation, execute it, classify
// the result and guarantee that the concurrency-gate slot and all transient
// filesystem state are released exactly once regardless of outcome.
package job

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"docmill/internal/gate"
	"docmill/internal/models"

	"github.com/google/uuid"
)

// Artifact is one output file produced by the external tool.
type Artifact struct {
	Name string
	Path string
	Size int64
}

// Result is the terminal state of one job. The artifact paths stay valid
// until Release is called; Release is idempotent and also returns the
// concurrency-gate slot.
type Result struct {
	ID        string
	Outcome   Outcome
	Artifacts []Artifact
	Stdout    string
	Stderr    string
	Duration  time.Duration

	job *jobContext
}

// Release frees the gate slot and deletes the job's staging directory.
// Safe to call from both the normal-completion path and a client-disconnect
// callback; only the first call has any effect.
func (r *Result) Release() {
	if r.job != nil {
		r.job.release()
	}
}

// ServiceError maps a non-success outcome to its client-facing error.
// Returns nil for OutcomeSucceeded.
func (r *Result) ServiceError() *ServiceError {
	switch r.Outcome {
	case OutcomeCredentialRequired:
		return NewCredentialRequiredError()
	case OutcomeFailed:
		detail := strings.TrimSpace(r.Stderr)
		if detail == "" {
			detail = "tool reported no diagnostics"
		}
		return NewToolFailedError(errors.New(detail))
	case OutcomeEmpty:
		return NewEmptyResultError("the operation produced no output for this document")
	}
	return nil
}

// jobContext owns a job's transient resources. The released flag guarantees
// the gate slot and the temp directory are given back exactly once even when
// a completion path and a disconnect event both fire.
type jobContext struct {
	mu          sync.Mutex
	released    bool
	dir         string
	releaseSlot func()
}

func (j *jobContext) release() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.released {
		return
	}
	j.released = true

	if j.releaseSlot != nil {
		j.releaseSlot()
	}
	if j.dir != "" {
		if err := os.RemoveAll(j.dir); err != nil {
			slog.Warn("Failed to remove job staging directory", "dir", j.dir, "error", err)
		}
	}
}

// Runner executes heavy jobs against the configured external tool.
type Runner struct {
	cfg            models.ToolConfig
	gate           *gate.Gate
	retryAfterSecs int
}

// NewRunner creates a job runner bound to a concurrency gate. The
// capacityRetryAfter hint is surfaced verbatim on gate denials.
func NewRunner(cfg models.ToolConfig, g *gate.Gate, capacityRetryAfter time.Duration) *Runner {
	secs := int(capacityRetryAfter.Seconds())
	if secs < 1 {
		secs = 1
	}
	return &Runner{cfg: cfg, gate: g, retryAfterSecs: secs}
}

// Run executes one job through its full lifecycle. Requests without a
// payload are rejected before the gate is engaged, so a malformed upload
// never consumes a processing slot. On a returned Result the caller owns
// cleanup via Result.Release; on a returned error all resources have
// already been released.
func (r *Runner) Run(ctx context.Context, req *Request) (*Result, error) {
	if serr := req.Validate(); serr != nil {
		return nil, serr
	}

	releaseSlot, ok := r.gate.TryAcquire()
	if !ok {
		return nil, NewCapacityError(r.retryAfterSecs)
	}

	jc := &jobContext{releaseSlot: releaseSlot}

	// Disconnect release path: cancellation of the request context frees
	// the slot and staging state even if no completion path runs.
	stop := context.AfterFunc(ctx, jc.release)
	defer stop()

	handoff := false
	defer func() {
		if !handoff {
			jc.release()
		}
	}()

	id := uuid.New().String()
	start := time.Now()

	dir, err := r.stage(jc, id, req)
	if err != nil {
		return nil, NewInternalError("failed to stage input", err)
	}

	inputPaths := make([]string, len(req.Inputs))
	for i := range req.Inputs {
		inputPaths[i] = stagedInputPath(dir, i, req.Inputs[i].Filename)
	}
	outDir := filepath.Join(dir, "out")

	inv, err := buildInvocation(req.Operation, req.Params, inputPaths, outDir)
	if err != nil {
		return nil, NewInvalidParameterError(err.Error())
	}

	execCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, r.cfg.Binary, inv.Args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Captures both start failures (missing binary, bad environment) and
	// non-zero exits; the classifier treats them alike.
	runErr := cmd.Run()

	matches, globErr := filepath.Glob(inv.OutputGlob)
	if globErr != nil {
		return nil, NewInternalError("failed to inspect output artifacts", globErr)
	}

	outcome := Classify(runErr, stdout.String(), stderr.String(), len(matches))

	result := &Result{
		ID:       id,
		Outcome:  outcome,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
		job:      jc,
	}
	for _, m := range matches {
		info, statErr := os.Stat(m)
		if statErr != nil {
			continue
		}
		result.Artifacts = append(result.Artifacts, Artifact{
			Name: filepath.Base(m),
			Path: m,
			Size: info.Size(),
		})
	}

	slog.Info("Job completed",
		"job_id", id,
		"operation", req.Operation,
		"outcome", outcome,
		"artifacts", len(result.Artifacts),
		"duration_ms", result.Duration.Milliseconds(),
	)

	handoff = true
	return result, nil
}

// stage writes the uploaded documents into a job-private directory and
// prepares the output directory the tool writes into.
func (r *Runner) stage(jc *jobContext, id string, req *Request) (string, error) {
	base := r.cfg.WorkDir
	if base == "" {
		base = os.TempDir()
	}

	dir := filepath.Join(base, "docmill-"+id)
	if err := os.MkdirAll(filepath.Join(dir, "in"), 0o700); err != nil {
		return "", err
	}
	jc.dir = dir

	if err := os.MkdirAll(filepath.Join(dir, "out"), 0o700); err != nil {
		return "", err
	}

	for i, in := range req.Inputs {
		path := stagedInputPath(dir, i, in.Filename)
		if err := os.WriteFile(path, in.Data, 0o600); err != nil {
			return "", err
		}
	}

	return dir, nil
}

// stagedInputPath names staged copies by position, keeping only the upload's
// extension. Client-supplied filenames never reach the filesystem.
func stagedInputPath(dir string, index int, filename string) string {
	ext := filepath.Ext(filename)
	return filepath.Join(dir, "in", "input-"+strconv.Itoa(index)+ext)
}
