package daclient

import (
	"context"
	"fmt"
	"sync"

	"github.com/eqlabs/eq-service/inclusion"
	"github.com/eqlabs/eq-service/nmt"
)

// MockClient is a Client backed by an in-memory fixture table, for tests
// and for running the service without a live DA light node.
type MockClient struct {
	mu      sync.RWMutex
	headers map[uint64]*inclusion.ExtendedHeader
	blobs   map[mockKey]*inclusion.Blob
	proofs  map[mockKey][]*nmt.Proof
}

type mockKey struct {
	height     uint64
	namespace  nmt.ID
	commitment inclusion.Commitment
}

// NewMockClient returns an empty MockClient.
func NewMockClient() *MockClient {
	return &MockClient{
		headers: make(map[uint64]*inclusion.ExtendedHeader),
		blobs:   make(map[mockKey]*inclusion.Blob),
		proofs:  make(map[mockKey][]*nmt.Proof),
	}
}

// PutHeader registers a header to be returned for HeaderGetByHeight.
func (m *MockClient) PutHeader(height uint64, h *inclusion.ExtendedHeader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.headers[height] = h
}

// PutBlob registers a blob and its nmt proofs to be returned for BlobGet and
// BlobGetProof.
func (m *MockClient) PutBlob(height uint64, namespace nmt.ID, commitment inclusion.Commitment, b *inclusion.Blob, proofs []*nmt.Proof) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := mockKey{height, namespace, commitment}
	m.blobs[key] = b
	m.proofs[key] = proofs
}

func (m *MockClient) HeaderGetByHeight(_ context.Context, height uint64) (*inclusion.ExtendedHeader, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.headers[height]
	if !ok {
		return nil, &RpcError{Method: "header.GetByHeight", Err: fmt.Errorf("no header at height %d", height)}
	}
	return h, nil
}

func (m *MockClient) BlobGet(_ context.Context, height uint64, namespace nmt.ID, commitment inclusion.Commitment) (*inclusion.Blob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[mockKey{height, namespace, commitment}]
	if !ok {
		return nil, &RpcError{Method: "blob.Get", Err: fmt.Errorf("no blob for key")}
	}
	return b, nil
}

func (m *MockClient) BlobGetProof(_ context.Context, height uint64, namespace nmt.ID, commitment inclusion.Commitment) ([]*nmt.Proof, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.proofs[mockKey{height, namespace, commitment}]
	if !ok {
		return nil, &RpcError{Method: "blob.GetProof", Err: fmt.Errorf("no proof for key")}
	}
	return p, nil
}

func (m *MockClient) Close() error { return nil }
