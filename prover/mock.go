package prover

import (
	"context"
	"fmt"
	"sync"

	"github.com/eqlabs/eq-service/guest"
	"github.com/eqlabs/eq-service/inclusion"
)

// MockBackend is a prover backend for tests and local development: it runs
// the guest verifier synchronously inside Submit and reports the result on
// the first Poll, without any external process.
type MockBackend struct {
	mu       sync.Mutex
	requests map[string]*mockRequest
	next     int
}

type mockRequest struct {
	result *Result
	err    error
}

// NewMockBackend returns an empty MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{requests: make(map[string]*mockRequest)}
}

// Submit runs the guest verifier against input immediately and stores the
// outcome under a freshly minted request id.
func (m *MockBackend) Submit(_ context.Context, input *inclusion.ProofInput) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.next++
	id := fmt.Sprintf("mock-%d", m.next)

	out, err := guest.Verify(input)
	if err != nil {
		m.requests[id] = &mockRequest{err: err}
		return id, nil
	}
	m.requests[id] = &mockRequest{result: &Result{Output: out, Proof: mockProofBytes(out)}}
	return id, nil
}

// Poll returns the outcome recorded by Submit; MockBackend never reports
// StatusPending since Submit runs synchronously.
func (m *MockBackend) Poll(_ context.Context, requestID string) (Status, *Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[requestID]
	if !ok {
		return StatusUnknown, nil, ErrRequestNotFound
	}
	if req.err != nil {
		return StatusFailed, nil, req.err
	}
	return StatusComplete, req.result, nil
}

func mockProofBytes(out *inclusion.ProofOutput) []byte {
	b := make([]byte, 0, 64)
	b = append(b, out.KeccakHash[:]...)
	b = append(b, out.DataRoot[:]...)
	return b
}
