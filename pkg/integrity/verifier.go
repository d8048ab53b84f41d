package integrity

import (
	"fmt"

	"github.com/glorpus-work/ggufy/pkg/errors"
)

// Status is the outcome of a verification.
type Status string

// Verification outcomes. Only StatusVerified means the file is known good;
// every other status is advisory.
const (
	StatusVerified Status = "verified"
	StatusSkipped  Status = "skipped"
	StatusMismatch Status = "mismatch"
	StatusFailed   Status = "failed"
)

// Report describes one verification. Err is set for StatusMismatch
// (wrapping ErrIntegrityMismatch) and StatusFailed.
type Report struct {
	Status   Status
	Expected Digest
	Actual   string
	Reason   string
	Err      error
}

// Warning returns a human readable warning, or "" for a verified file.
func (r Report) Warning() string {
	switch r.Status {
	case StatusSkipped:
		return "integrity not verified: " + r.Reason
	case StatusMismatch:
		return fmt.Sprintf("integrity mismatch: expected %s, got %s; the file may be corrupt, re-download with --force", r.Expected.Value, r.Actual)
	case StatusFailed:
		return "integrity check failed: " + r.Reason
	default:
		return ""
	}
}

// Verifier checks files against expected digests.
type Verifier struct{}

// New returns a Verifier.
func New() *Verifier { return &Verifier{} }

// Verify hashes path and compares it with expected. It never returns an
// error: a missing digest, a mismatch and an I/O failure are all reported
// in the Report so the caller can keep using the file.
func (v *Verifier) Verify(path string, expected Digest) Report {
	if expected.IsZero() {
		return Report{Status: StatusSkipped, Reason: "server supplied no recognised digest"}
	}

	actual, err := Compute(path, expected.Algorithm)
	if err != nil {
		return Report{Status: StatusFailed, Expected: expected, Reason: err.Error(), Err: err}
	}
	if actual != expected.Value {
		return Report{
			Status:   StatusMismatch,
			Expected: expected,
			Actual:   actual,
			Err:      fmt.Errorf("%s: %w", path, errors.ErrIntegrityMismatch),
		}
	}
	return Report{Status: StatusVerified, Expected: expected, Actual: actual}
}
