package service

import "fmt"

// InvalidArgument reports a malformed GetKeccakInclusion request: a
// namespace or commitment of the wrong length. A height the DA node cannot
// serve is not reported here; it surfaces as an RpcError. Callers should map
// this to the gRPC INVALID_ARGUMENT code and must not retry without changing
// the request.
type InvalidArgument struct {
	Field  string
	Reason string
}

func (e *InvalidArgument) Error() string {
	return fmt.Sprintf("service: invalid argument %q: %s", e.Field, e.Reason)
}

// GeneralError wraps an unexpected internal failure (store corruption,
// prover backend misbehavior) that the caller cannot act on beyond retrying.
// Maps to the gRPC INTERNAL code.
type GeneralError struct {
	Op  string
	Err error
}

func (e *GeneralError) Error() string {
	return fmt.Sprintf("service: %s: %v", e.Op, e.Err)
}

func (e *GeneralError) Unwrap() error { return e.Err }

// ProverError wraps a failure reported by a prover.Backend while generating
// a proof for an accepted request. Unlike InvalidArgument, the request
// itself was well-formed; the failure lives in job state, not the RPC.
type ProverError struct {
	RequestID string
	Reason    string
}

func (e *ProverError) Error() string {
	return fmt.Sprintf("service: prover request %s failed: %s", e.RequestID, e.Reason)
}

// RpcError wraps a daclient failure encountered while assembling a proof
// input. It is retryable: no job record is written for the failed fetch, so
// a repeated request for the same job re-attempts it.
type RpcError struct {
	Op  string
	Err error
}

func (e *RpcError) Error() string {
	return fmt.Sprintf("service: da rpc %s: %v", e.Op, e.Err)
}

func (e *RpcError) Unwrap() error { return e.Err }
