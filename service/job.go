package service

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eqlabs/eq-service/inclusion"
	"github.com/eqlabs/eq-service/nmt"
)

// jobKeyPrefix namespaces job records within the shared store.
const jobKeyPrefix = "job:"

// Job identifies a single GetKeccakInclusion request by the triple the RPC
// is keyed on. Two requests with the same Job are the same unit of work:
// the service answers the second from whatever state the first produced.
type Job struct {
	Height     uint64
	Namespace  nmt.ID
	Commitment inclusion.Commitment
}

// Key returns the deterministic, lexicographically stable store key for j.
// Height is big-endian so that prefix scans over job: also iterate in
// ascending height order.
func (j Job) Key() []byte {
	key := make([]byte, 0, len(jobKeyPrefix)+8+nmt.IDSize+32)
	key = append(key, jobKeyPrefix...)
	var h [8]byte
	binary.BigEndian.PutUint64(h[:], j.Height)
	key = append(key, h[:]...)
	key = append(key, j.Namespace[:]...)
	key = append(key, j.Commitment[:]...)
	return key
}

// JobState is the lifecycle state of a Job, mirroring the prover.Status
// values a Job's underlying prover request passes through, plus the
// terminal states persisted once that request completes or fails.
type JobState int

const (
	JobStatePending JobState = iota
	JobStateCompleted
	JobStateFailed
)

func (s JobState) String() string {
	switch s {
	case JobStatePending:
		return "pending"
	case JobStateCompleted:
		return "completed"
	case JobStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// JobRecord is the persisted state of a Job. Exactly one of the
// state-specific fields is meaningful, selected by State:
//   - JobStatePending:   RequestID is the prover.Backend handle to poll.
//   - JobStateCompleted: Proof and Output hold the finished result.
//   - JobStateFailed:    Reason records that the prover backend failed it.
//
// A record only ever moves forward: Pending -> {Completed, Failed}. Once
// terminal it is never overwritten, so restart recovery and idempotent
// re-requests always observe a consistent answer.
type JobRecord struct {
	State JobState

	RequestID string `json:",omitempty"`
	// SubmittedAt is the unix-nanosecond time the request was handed to the
	// prover backend. It is stamped once, by PendingRecord, and carried
	// forward unchanged by reconciler sweeps that find the job still
	// pending, so the terminal transition can report true submit-to-finish
	// latency regardless of how many sweeps it took to get there.
	SubmittedAt int64 `json:",omitempty"`

	Proof  []byte                `json:",omitempty"`
	Output inclusion.ProofOutput `json:",omitempty"`

	Reason string `json:",omitempty"`
}

// Encode serializes r for storage. JSON is used rather than a binary codec
// since job records are small, written once or twice in their lifetime, and
// never on a hot path; grepping the raw leveldb files during development
// also stays readable.
func (r JobRecord) Encode() ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("service: encode job record: %w", err)
	}
	return b, nil
}

// DecodeJobRecord parses the bytes produced by Encode.
func DecodeJobRecord(b []byte) (JobRecord, error) {
	var r JobRecord
	if err := json.Unmarshal(b, &r); err != nil {
		return JobRecord{}, fmt.Errorf("service: decode job record: %w", err)
	}
	return r, nil
}

// PendingRecord builds the record written immediately after a prover.Backend
// accepts a request.
func PendingRecord(requestID string) JobRecord {
	return JobRecord{State: JobStatePending, RequestID: requestID, SubmittedAt: time.Now().UnixNano()}
}

// CompletedRecord builds the terminal record for a successfully proved job.
func CompletedRecord(proof []byte, output inclusion.ProofOutput) JobRecord {
	return JobRecord{State: JobStateCompleted, Proof: proof, Output: output}
}

// FailedRecord builds the terminal record for a job the prover could not
// complete.
func FailedRecord(reason string) JobRecord {
	return JobRecord{State: JobStateFailed, Reason: reason}
}
