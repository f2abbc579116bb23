// Package eqpb defines the wire messages and service descriptor for the
// Inclusion gRPC service. Message types are plain Go structs rather than
// protoc-gen-go output: this build has no protoc toolchain available, so
// requests and responses are carried over a custom codec (see codec.go)
// registered with google.golang.org/grpc's own encoding registry, while the
// server/client/ServiceDesc machinery is the real grpc-go stack. The
// eqservice.proto file alongside this one documents the wire contract for
// anyone who does run protoc against it later; the two must be kept in
// sync by hand.
package eqpb

// Status is the lifecycle state of a GetKeccakInclusion request.
type Status int32

const (
	StatusUnspecified Status = 0
	StatusWaiting     Status = 1
	StatusComplete    Status = 2
	StatusFailed      Status = 3
)

// GetKeccakInclusionRequest identifies the blob to prove inclusion for.
type GetKeccakInclusionRequest struct {
	Height     uint64 `json:"height"`
	Namespace  []byte `json:"namespace"`
	Commitment []byte `json:"commitment"`
}

// GetKeccakInclusionResponse reports a job's current status. Exactly one of
// ProofID, Proof, ErrorMessage is populated, matching Status.
type GetKeccakInclusionResponse struct {
	Status       Status `json:"status"`
	ProofID      string `json:"proof_id,omitempty"`
	Proof        []byte `json:"proof,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}
