package service

import (
	"context"
	"time"

	"github.com/eqlabs/eq-service/log"
	"github.com/eqlabs/eq-service/metrics"
	"github.com/eqlabs/eq-service/prover"
	"github.com/eqlabs/eq-service/store"
)

// Reconciler sweeps the store for jobs still in JobStatePending and polls
// their prover.Backend request for completion, writing the terminal
// JobRecord once one is reached. Running this sweep on startup (see
// RecoverPending) is what makes in-flight requests survive a process
// restart: the backend request id was already persisted before the crash,
// so the reconciler simply resumes polling it rather than resubmitting.
type Reconciler struct {
	store   store.Store
	backend prover.Backend
	log     *log.Logger
}

// NewReconciler builds a Reconciler over the given store and backend. The
// backend must be the same one jobs were originally submitted to: request
// ids are backend-specific opaque strings.
func NewReconciler(st store.Store, backend prover.Backend) *Reconciler {
	return &Reconciler{store: st, backend: backend, log: log.Module("reconciler")}
}

// Name, Start, Stop implement the lifecycle Service interface. Start kicks
// off RecoverPending so restart recovery happens before the gRPC server
// starts accepting traffic; Run should be launched separately as a
// long-lived background loop.
func (r *Reconciler) Name() string { return "reconciler" }

func (r *Reconciler) Start() error {
	ctx := context.Background()
	n, err := r.RecoverPending(ctx)
	if err != nil {
		return err
	}
	r.log.Info("recovered pending jobs on startup", "count", n)
	return nil
}

func (r *Reconciler) Stop() error { return nil }

// RecoverPending sweeps every job currently in JobStatePending and polls
// its backend request once, advancing it to Completed or Failed if the
// backend has already finished the work. Jobs still genuinely pending are
// left untouched for the next Run tick.
func (r *Reconciler) RecoverPending(ctx context.Context) (int, error) {
	it := r.store.NewIterator([]byte(jobKeyPrefix))
	defer it.Release()

	var keys [][]byte
	var recs []JobRecord
	for it.Next() {
		rec, err := DecodeJobRecord(it.Value())
		if err != nil {
			r.log.Warn("skipping unreadable job record", "key", string(it.Key()), "error", err)
			continue
		}
		if rec.State != JobStatePending {
			continue
		}
		keys = append(keys, append([]byte(nil), it.Key()...))
		recs = append(recs, rec)
	}
	if err := it.Error(); err != nil {
		return 0, err
	}

	count := 0
	for i, key := range keys {
		if err := r.pollOne(ctx, key, recs[i]); err != nil {
			r.log.Warn("reconcile poll failed", "key", string(key), "error", err)
			continue
		}
		count++
	}
	return count, nil
}

// pollOne polls a single pending job's backend request and persists the
// terminal record if the backend has reached one. A still-Pending result
// is a no-op: the record is already correct.
func (r *Reconciler) pollOne(ctx context.Context, key []byte, rec JobRecord) error {
	metrics.ProverPolls.Inc()
	st, result, err := r.backend.Poll(ctx, rec.RequestID)
	// A StatusFailed poll carries the failure reason in err; only other
	// errors are poll failures.
	if err != nil && st != prover.StatusFailed {
		return err
	}

	var next JobRecord
	switch st {
	case prover.StatusComplete:
		next = CompletedRecord(result.Proof, *result.Output)
	case prover.StatusFailed:
		next = FailedRecord("prover backend reported failure")
	default:
		return nil
	}
	recordJobMetrics(next, rec.SubmittedAt)

	raw, err := next.Encode()
	if err != nil {
		return err
	}
	return r.store.Put(key, raw)
}

// Run polls outstanding jobs on a fixed interval until ctx is canceled. It
// is meant to be launched in its own goroutine alongside the gRPC server.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.RecoverPending(ctx); err != nil {
				r.log.Warn("reconcile sweep failed", "error", err)
			}
		}
	}
}
