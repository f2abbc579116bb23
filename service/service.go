// Package service implements the proof service (C5): the gRPC entry point
// that turns a GetKeccakInclusion call into a DA fetch, a ProofInput, a
// submission to a prover.Backend, and a persisted job record a caller can
// poll to completion; plus the lifecycle manager and rate limiter that
// carry it, adapted from the same ambient machinery the rest of this
// module uses.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/eqlabs/eq-service/daclient"
	"github.com/eqlabs/eq-service/eqpb"
	"github.com/eqlabs/eq-service/inclusion"
	"github.com/eqlabs/eq-service/log"
	"github.com/eqlabs/eq-service/metrics"
	"github.com/eqlabs/eq-service/nmt"
	"github.com/eqlabs/eq-service/prover"
	"github.com/eqlabs/eq-service/store"
)

// Config holds the values InclusionService needs beyond its collaborators.
type Config struct {
	// ProverBackend names the prover.Backend, registered in the Registry
	// passed to New, that new jobs are submitted to.
	ProverBackend string

	RateLimit *RPCRateLimitConfig
}

// DefaultConfig returns sensible defaults: the "mock" backend and the
// default rate limit profile.
func DefaultConfig() Config {
	return Config{
		ProverBackend: "mock",
		RateLimit:     DefaultRPCRateLimitConfig(),
	}
}

// InclusionService implements eqpb.InclusionServer. It owns no verification
// logic itself: it wires the DA client (C4), the input builder (C1), a
// prover.Backend, and job persistence together behind one idempotent RPC.
type InclusionService struct {
	cfg     Config
	da      daclient.Client
	store   store.Store
	backend prover.Backend
	limiter *RPCRateLimiter
	log     *log.Logger

	// jobLocksMu guards jobLocks, the get-or-create map of per-job-key
	// mutexes. jobLocks itself serializes the load-check-submit sequence in
	// GetKeccakInclusion so two concurrent requests for the same job key
	// never both miss the store and submit duplicate prover work.
	jobLocksMu sync.Mutex
	jobLocks   map[string]*sync.Mutex
}

// New constructs an InclusionService. cfg.ProverBackend must already be
// registered in backends.
func New(cfg Config, da daclient.Client, st store.Store, backends *prover.Registry) (*InclusionService, error) {
	backend, err := backends.Get(cfg.ProverBackend)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	return &InclusionService{
		cfg:      cfg,
		da:       da,
		store:    st,
		backend:  backend,
		limiter:  NewRPCRateLimiter(cfg.RateLimit),
		log:      log.Module("service"),
		jobLocks: make(map[string]*sync.Mutex),
	}, nil
}

// Name implements the lifecycle Service interface; InclusionService itself
// does no start/stop work beyond what the caller's grpc.Server lifecycle
// already manages, so Start/Stop are no-ops.
func (s *InclusionService) Name() string { return "inclusion" }
func (s *InclusionService) Start() error { return nil }
func (s *InclusionService) Stop() error  { return nil }

func callerKey(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return "unknown"
}

// lockJob acquires the mutex for key, creating it on first use, and returns
// a function that releases it. Holding this lock across loadRecord and
// submit is what makes GetKeccakInclusion single-writer per job key: a
// second caller for the same key blocks until the first has persisted its
// record, then observes it via loadRecord instead of resubmitting.
func (s *InclusionService) lockJob(key string) func() {
	s.jobLocksMu.Lock()
	l, ok := s.jobLocks[key]
	if !ok {
		l = &sync.Mutex{}
		s.jobLocks[key] = l
	}
	s.jobLocksMu.Unlock()

	l.Lock()
	return l.Unlock
}

// GetKeccakInclusion is the single RPC this service exposes. It is
// idempotent on (height, namespace, commitment): a second call for the same
// triple never resubmits work, it only reports the job's current state.
func (s *InclusionService) GetKeccakInclusion(ctx context.Context, req *eqpb.GetKeccakInclusionRequest) (*eqpb.GetKeccakInclusionResponse, error) {
	if !s.limiter.Allow(callerKey(ctx), "GetKeccakInclusion") {
		return nil, status.Error(codes.ResourceExhausted, "rate limit exceeded")
	}

	job, err := parseJob(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	metrics.InclusionRequests.Inc()
	timer := metrics.NewTimer(metrics.InclusionRequestLatency)
	defer timer.Stop()

	unlock := s.lockJob(string(job.Key()))
	defer unlock()

	if rec, ok, err := s.loadRecord(job); err != nil {
		metrics.InclusionRequestErrors.Inc()
		return nil, status.Error(codes.Internal, (&GeneralError{Op: "load job", Err: err}).Error())
	} else if ok {
		return responseFromRecord(rec), nil
	}

	resp, err := s.submit(ctx, job)
	if err != nil {
		metrics.InclusionRequestErrors.Inc()
	}
	return resp, err
}

func parseJob(req *eqpb.GetKeccakInclusionRequest) (Job, error) {
	if len(req.Namespace) != nmt.IDSize {
		return Job{}, &InvalidArgument{Field: "namespace", Reason: fmt.Sprintf("must be %d bytes", nmt.IDSize)}
	}
	if len(req.Commitment) != 32 {
		return Job{}, &InvalidArgument{Field: "commitment", Reason: "must be 32 bytes"}
	}
	var job Job
	job.Height = req.Height
	copy(job.Namespace[:], req.Namespace)
	copy(job.Commitment[:], req.Commitment)
	return job, nil
}

func (s *InclusionService) loadRecord(job Job) (JobRecord, bool, error) {
	raw, err := s.store.Get(job.Key())
	if err == store.ErrNotFound {
		return JobRecord{}, false, nil
	}
	if err != nil {
		return JobRecord{}, false, err
	}
	rec, err := DecodeJobRecord(raw)
	if err != nil {
		return JobRecord{}, false, err
	}
	return rec, true, nil
}

func (s *InclusionService) putRecord(job Job, rec JobRecord) error {
	raw, err := rec.Encode()
	if err != nil {
		return err
	}
	return s.store.Put(job.Key(), raw)
}

// submit fetches the blob, header, and namespace proofs for job from the DA
// node, assembles a ProofInput, hands it to the prover backend, and
// persists the resulting Pending record.
func (s *InclusionService) submit(ctx context.Context, job Job) (*eqpb.GetKeccakInclusionResponse, error) {
	header, err := s.da.HeaderGetByHeight(ctx, job.Height)
	if err != nil {
		return nil, status.Error(codes.Internal, (&RpcError{Op: "header.GetByHeight", Err: err}).Error())
	}
	blob, err := s.da.BlobGet(ctx, job.Height, job.Namespace, job.Commitment)
	if err != nil {
		return nil, status.Error(codes.Internal, (&RpcError{Op: "blob.Get", Err: err}).Error())
	}
	proofs, err := s.da.BlobGetProof(ctx, job.Height, job.Namespace, job.Commitment)
	if err != nil {
		return nil, status.Error(codes.Internal, (&RpcError{Op: "blob.GetProof", Err: err}).Error())
	}

	input, err := inclusion.BuildProofInput(blob, header, proofs)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	submittedAt := time.Now()
	requestID, err := s.backend.Submit(ctx, input)
	if err != nil {
		return nil, status.Error(codes.Internal, (&GeneralError{Op: "submit prover request", Err: err}).Error())
	}
	metrics.ProverSubmissions.Inc()

	// Some backends (MockBackend, a fast local CPU prover) resolve inside
	// Submit itself; poll once immediately so a caller sees the terminal
	// state in the same round trip instead of waiting for the next
	// reconciler sweep. A genuinely slow backend just reports StatusPending
	// here and the reconciler picks it up later.
	rec := s.recordFromPoll(ctx, requestID)
	if err := s.putRecord(job, rec); err != nil {
		return nil, status.Error(codes.Internal, (&GeneralError{Op: "persist job", Err: err}).Error())
	}
	if rec.State != JobStatePending {
		// Terminal on the first poll: count the job as pending first so
		// recordJobMetrics' decrement leaves the gauge balanced.
		metrics.JobsPending.Inc()
	}
	recordJobMetrics(rec, submittedAt.UnixNano())

	s.log.Info("submitted inclusion proof request", "height", job.Height, "request_id", requestID, "state", rec.State.String())
	return responseFromRecord(rec), nil
}

// recordJobMetrics updates the job-state counters, the pending gauge, and
// the submit-to-terminal latency histogram for the state a poll just
// produced. submittedAt is the unix-nanosecond time the request was first
// handed to the backend; shared by submit's first poll and the reconciler's
// later sweeps so latency reflects the whole lifetime of the job, not just
// the most recent poll.
func recordJobMetrics(rec JobRecord, submittedAt int64) {
	switch rec.State {
	case JobStateCompleted:
		metrics.JobsCompleted.Inc()
		metrics.JobsPending.Dec()
		metrics.ProverLatency.Observe(float64(time.Since(time.Unix(0, submittedAt)).Milliseconds()))
	case JobStateFailed:
		metrics.JobsFailed.Inc()
		metrics.JobsPending.Dec()
		metrics.ProverLatency.Observe(float64(time.Since(time.Unix(0, submittedAt)).Milliseconds()))
	default:
		metrics.JobsPending.Inc()
	}
}

// recordFromPoll polls requestID once and returns the JobRecord it implies.
// A poll error or a still-pending status both fall back to PendingRecord:
// the reconciler will keep retrying on its own schedule either way. A
// StatusFailed poll carries its reason in err and yields a FailedRecord.
func (s *InclusionService) recordFromPoll(ctx context.Context, requestID string) JobRecord {
	metrics.ProverPolls.Inc()
	st, result, err := s.backend.Poll(ctx, requestID)
	if err != nil && st != prover.StatusFailed {
		return PendingRecord(requestID)
	}
	switch st {
	case prover.StatusComplete:
		return CompletedRecord(result.Proof, *result.Output)
	case prover.StatusFailed:
		return FailedRecord("prover backend reported failure")
	default:
		return PendingRecord(requestID)
	}
}

func responseFromRecord(rec JobRecord) *eqpb.GetKeccakInclusionResponse {
	switch rec.State {
	case JobStateCompleted:
		return &eqpb.GetKeccakInclusionResponse{Status: eqpb.StatusComplete, Proof: rec.Proof}
	case JobStateFailed:
		return &eqpb.GetKeccakInclusionResponse{Status: eqpb.StatusFailed, ErrorMessage: rec.Reason}
	default:
		return &eqpb.GetKeccakInclusionResponse{Status: eqpb.StatusWaiting, ProofID: rec.RequestID}
	}
}
