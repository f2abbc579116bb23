// Package prover abstracts over the zero-knowledge prover backend that turns
// a ProofInput into a succeeded proof. The guest program itself lives in
// package guest; a Backend is whatever drives that guest to completion,
// whether a local CPU execution or a remote proving cluster.
package prover

import (
	"context"
	"errors"

	"github.com/eqlabs/eq-service/inclusion"
)

// Status is the lifecycle state of a submitted proving request.
type Status int

const (
	StatusUnknown Status = iota
	StatusPending
	StatusComplete
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusComplete:
		return "complete"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Backend errors.
var (
	ErrBackendExists   = errors.New("prover: backend already registered")
	ErrBackendNotFound = errors.New("prover: backend not found")
	ErrRequestNotFound = errors.New("prover: request id not found")
)

// Result is the terminal outcome of a completed proving request.
type Result struct {
	Output *inclusion.ProofOutput
	Proof  []byte
}

// Backend submits proving work and reports on its progress. Submit must
// return quickly; the actual proof generation happens asynchronously and is
// observed through Poll. Implementations must be safe for concurrent use.
type Backend interface {
	// Submit starts proving input and returns an opaque request id used to
	// poll for the result later.
	Submit(ctx context.Context, input *inclusion.ProofInput) (requestID string, err error)

	// Poll reports the current status of a previously submitted request. If
	// status is StatusComplete, result is non-nil. If StatusFailed, err
	// carries the failure reason.
	Poll(ctx context.Context, requestID string) (status Status, result *Result, err error)
}
