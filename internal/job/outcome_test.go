package job

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_CredentialMarkerBeatsExitFailure(t *testing.T) {
	// The tool exits non-zero when a password is missing; that case must be
	// distinguished from a generic failure.
	exitErr := errors.New("exit status 1")

	outcome := Classify(exitErr, "", "Error: this document requires a PASSWORD to open", 0)
	assert.Equal(t, OutcomeCredentialRequired, outcome)
}

func TestClassify_CredentialMarkerOnStdout(t *testing.T) {
	outcome := Classify(nil, "input file is encrypted", "", 1)
	assert.Equal(t, OutcomeCredentialRequired, outcome)
}

func TestClassify_CredentialMarkerCaseInsensitive(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "upper", text: "PASSWORD required"},
		{name: "mixed", text: "wrong Passphrase supplied"},
		{name: "lower", text: "file is encrypted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Classify(errors.New("exit status 2"), "", tt.text, 0)
			assert.Equal(t, OutcomeCredentialRequired, outcome)
		})
	}
}

func TestClassify_FailureWithoutMarker(t *testing.T) {
	outcome := Classify(errors.New("exit status 1"), "", "malformed xref table", 0)
	assert.Equal(t, OutcomeFailed, outcome)
}

func TestClassify_StartFailureIsFailure(t *testing.T) {
	// The subprocess may fail to start at all; there is no diagnostic text.
	outcome := Classify(errors.New("exec: no such file or directory"), "", "", 0)
	assert.Equal(t, OutcomeFailed, outcome)
}

func TestClassify_EmptyResult(t *testing.T) {
	// Clean exit, zero artifacts where at least one was expected: a semantic
	// mismatch, not a crash.
	outcome := Classify(nil, "processed 12 pages, found 0 images", "", 0)
	assert.Equal(t, OutcomeEmpty, outcome)
}

func TestClassify_Success(t *testing.T) {
	outcome := Classify(nil, "done", "", 1)
	assert.Equal(t, OutcomeSucceeded, outcome)
}

func TestClassify_SuccessWithManyArtifacts(t *testing.T) {
	outcome := Classify(nil, "", "", 42)
	assert.Equal(t, OutcomeSucceeded, outcome)
}

func TestClassify_KnownFalsePositive(t *testing.T) {
	// Documented trade-off: unrelated diagnostics containing a marker word
	// classify as credential failures.
	outcome := Classify(nil, "warning: field name 'password' is unused", "", 1)
	assert.Equal(t, OutcomeCredentialRequired, outcome)
}
