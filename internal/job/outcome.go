package job

import "strings"

// Outcome is the terminal classification of one external-tool invocation.
type Outcome string

const (
	OutcomeSucceeded          Outcome = "succeeded"
	OutcomeCredentialRequired Outcome = "credential_required"
	OutcomeFailed             Outcome = "failed"
	OutcomeEmpty              Outcome = "empty_result"
)

// credentialMarkers are scanned case-insensitively in the tool's combined
// diagnostic output. The bare "password" marker is deliberately broad: the
// tool emits no structured error codes, so any diagnostic mentioning a
// password is treated as a credential failure. This can misclassify
// unrelated diagnostics containing the word, which we accept over showing a
// generic error for a locked document.
var credentialMarkers = []string{
	"password",
	"passphrase",
	"encrypted",
}

// Classify maps a captured subprocess result to an outcome. It is a pure
// function of the exit error, the diagnostic text and the number of produced
// artifacts, so it can be tested against captured fixtures without running
// any subprocess.
//
// The credential check takes priority over a generic exit failure: the tool
// exits non-zero when a required password is absent or wrong, and that case
// must prompt the client for a credential rather than show a generic error.
func Classify(exitErr error, stdout, stderr string, artifactCount int) Outcome {
	diag := strings.ToLower(stdout + "\n" + stderr)
	for _, marker := range credentialMarkers {
		if strings.Contains(diag, marker) {
			return OutcomeCredentialRequired
		}
	}

	if exitErr != nil {
		return OutcomeFailed
	}

	if artifactCount == 0 {
		// Clean exit but nothing produced where at least one artifact was
		// expected: the operation was inapplicable to the input, not a crash.
		return OutcomeEmpty
	}

	return OutcomeSucceeded
}
