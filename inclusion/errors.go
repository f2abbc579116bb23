package inclusion

import "errors"

// Errors returned by the input builder (C1) and the guest verifier (C3).
// These are always fatal to the proof they concern: none of them are
// retried by the caller, and none are ever written to a job's Completed
// state.
var (
	// ErrMissingBlobIndex is returned when the DA node supplied a blob
	// without a populated share index.
	ErrMissingBlobIndex = errors.New("inclusion: blob has no index")

	// ErrKeccakHashConversion is returned when a computed hash does not fit
	// the expected 32-byte array. Defensive; should not occur in practice.
	ErrKeccakHashConversion = errors.New("inclusion: keccak hash is not 32 bytes")

	// ErrRowRootVerificationFailed is returned when the reconstructed
	// row-root tree does not match the header's data root, or the
	// self-verified range proof fails.
	ErrRowRootVerificationFailed = errors.New("inclusion: row root verification failed")
)

// ShareConversionError wraps a failure converting blob bytes to shares.
type ShareConversionError struct {
	Reason string
}

func (e *ShareConversionError) Error() string {
	return "inclusion: share conversion failed: " + e.Reason
}
