package service

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/eqlabs/eq-service/daclient"
	"github.com/eqlabs/eq-service/eqpb"
	"github.com/eqlabs/eq-service/inclusion"
	"github.com/eqlabs/eq-service/merkle"
	"github.com/eqlabs/eq-service/nmt"
	"github.com/eqlabs/eq-service/prover"
	"github.com/eqlabs/eq-service/store"
)

// buildServiceFixture populates a daclient.MockClient with a single-share
// blob occupying row 0 of an 8x8 EDS, and returns the request identifying
// it, mirroring inclusion.BuildProofInput's own test fixture.
func buildServiceFixture(t *testing.T) (*daclient.MockClient, *eqpb.GetKeccakInclusionRequest) {
	t.Helper()

	const edsSize = 8
	const odsSize = edsSize / 2
	const height = 100

	var ns nmt.ID
	ns[0] = 0x42
	data := []byte("service fixture blob data")
	idx := uint64(1)
	commitment := inclusion.Commitment{1, 2, 3}

	blob := &inclusion.Blob{Namespace: ns, Data: data, Index: &idx, AppVersion: 3, Commitment: commitment}
	shares, err := blob.ToShares()
	if err != nil {
		t.Fatalf("ToShares: %v", err)
	}

	row0 := make([][]byte, odsSize)
	row0[0] = shares[0]
	for i := 1; i < odsSize; i++ {
		row0[i] = bytes.Repeat([]byte{byte(i)}, inclusion.ShareSize)
	}
	rowRoots := make([]nmt.Hash, edsSize)
	colRoots := make([]nmt.Hash, edsSize)
	rowRoots[0] = nmt.RowRoot(row0, ns)
	for i := 1; i < edsSize; i++ {
		filler := make([][]byte, odsSize)
		for j := range filler {
			filler[j] = bytes.Repeat([]byte{byte(i*31 + j)}, inclusion.ShareSize)
		}
		rowRoots[i] = nmt.RowRoot(filler, ns)
	}
	for i := 0; i < edsSize; i++ {
		colRoots[i] = rowRoots[0]
	}

	tree := merkle.NewTree()
	for _, r := range rowRoots {
		tree.Push(r.Bytes())
	}
	for _, c := range colRoots {
		tree.Push(c.Bytes())
	}
	var dataHash [32]byte
	copy(dataHash[:], tree.Root())

	header := &inclusion.ExtendedHeader{
		Height:   height,
		DataHash: dataHash,
		DAH:      inclusion.DataAvailabilityHeader{RowRoots: rowRoots, ColumnRoots: colRoots},
	}
	nmtProof := nmt.BuildProof(row0, ns, 0, 1)

	da := daclient.NewMockClient()
	da.PutHeader(height, header)
	da.PutBlob(height, ns, commitment, blob, []*nmt.Proof{nmtProof})

	req := &eqpb.GetKeccakInclusionRequest{
		Height:     height,
		Namespace:  ns[:],
		Commitment: commitment[:],
	}
	return da, req
}

func newTestService(t *testing.T, da daclient.Client) (*InclusionService, store.Store) {
	t.Helper()
	st := store.NewMemStore()
	backends := prover.NewRegistry()
	if err := backends.Register("mock", prover.NewMockBackend()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	cfg := DefaultConfig()
	svc, err := New(cfg, da, st, backends)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc, st
}

func TestGetKeccakInclusionSubmitsAndCompletes(t *testing.T) {
	da, req := buildServiceFixture(t)
	svc, _ := newTestService(t, da)

	resp, err := svc.GetKeccakInclusion(context.Background(), req)
	if err != nil {
		t.Fatalf("GetKeccakInclusion: %v", err)
	}
	// MockBackend resolves synchronously, so even the first call already
	// observes a terminal state.
	if resp.Status != eqpb.StatusComplete {
		t.Fatalf("Status = %v, want StatusComplete", resp.Status)
	}
	if len(resp.Proof) == 0 {
		t.Fatal("expected non-empty proof")
	}
}

func TestGetKeccakInclusionIsIdempotent(t *testing.T) {
	da, req := buildServiceFixture(t)
	svc, _ := newTestService(t, da)

	first, err := svc.GetKeccakInclusion(context.Background(), req)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := svc.GetKeccakInclusion(context.Background(), req)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !bytes.Equal(first.Proof, second.Proof) {
		t.Fatal("repeated calls for the same job produced different proofs")
	}
}

// countingBackend wraps prover.MockBackend and counts Submit calls, so tests
// can assert how many distinct prover requests a scenario actually minted.
type countingBackend struct {
	*prover.MockBackend
	mu      sync.Mutex
	submits int
}

func (b *countingBackend) Submit(ctx context.Context, input *inclusion.ProofInput) (string, error) {
	b.mu.Lock()
	b.submits++
	b.mu.Unlock()
	return b.MockBackend.Submit(ctx, input)
}

// TestGetKeccakInclusionConcurrentCallsSubmitOnce exercises two concurrent
// GetKeccakInclusion calls for the identical job key. Without per-job-key
// synchronization both would miss loadRecord and each submit their own
// prover request; the per-job-key lock must instead make the second caller
// wait for the first to persist, then observe its result.
func TestGetKeccakInclusionConcurrentCallsSubmitOnce(t *testing.T) {
	da, req := buildServiceFixture(t)

	backend := &countingBackend{MockBackend: prover.NewMockBackend()}
	backends := prover.NewRegistry()
	if err := backends.Register("mock", backend); err != nil {
		t.Fatalf("Register: %v", err)
	}
	svc, err := New(DefaultConfig(), da, store.NewMemStore(), backends)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	const n = 8
	var wg sync.WaitGroup
	resps := make([]*eqpb.GetKeccakInclusionResponse, n)
	errs := make([]error, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			resps[i], errs[i] = svc.GetKeccakInclusion(context.Background(), req)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	for i := 1; i < n; i++ {
		if !bytes.Equal(resps[0].Proof, resps[i].Proof) {
			t.Fatalf("call %d returned a different proof than call 0", i)
		}
	}

	backend.mu.Lock()
	submits := backend.submits
	backend.mu.Unlock()
	if submits != 1 {
		t.Fatalf("backend.Submit called %d times, want exactly 1", submits)
	}
}

func TestGetKeccakInclusionRejectsBadNamespace(t *testing.T) {
	da, req := buildServiceFixture(t)
	svc, _ := newTestService(t, da)

	req.Namespace = []byte{1, 2, 3}
	if _, err := svc.GetKeccakInclusion(context.Background(), req); err == nil {
		t.Fatal("expected error for malformed namespace")
	}
}

func TestGetKeccakInclusionRejectsBadCommitment(t *testing.T) {
	da, req := buildServiceFixture(t)
	svc, _ := newTestService(t, da)

	req.Commitment = []byte{1, 2, 3}
	if _, err := svc.GetKeccakInclusion(context.Background(), req); err == nil {
		t.Fatal("expected error for malformed commitment")
	}
}

func TestGetKeccakInclusionUnknownBlobIsInternalError(t *testing.T) {
	da, req := buildServiceFixture(t)
	svc, _ := newTestService(t, da)

	req.Height = 999 // no header registered at this height
	if _, err := svc.GetKeccakInclusion(context.Background(), req); err == nil {
		t.Fatal("expected error for unknown height")
	}
}
