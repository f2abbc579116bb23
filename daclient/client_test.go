package daclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"testing"

	"github.com/eqlabs/eq-service/inclusion"
	"github.com/eqlabs/eq-service/nmt"
)

func b64Of(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// fakeConn is a wsConn that echoes a canned result for every request it
// receives, simulating a DA node without a real socket.
type fakeConn struct {
	mu      sync.Mutex
	results map[string]json.RawMessage
	reads   chan []byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{results: make(map[string]json.RawMessage), reads: make(chan []byte, 8)}
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	req := v.(jsonrpcRequest)
	f.mu.Lock()
	result := f.results[req.Method]
	f.mu.Unlock()
	resp := jsonrpcResponse{ID: req.ID, Result: result}
	b, _ := json.Marshal(resp)
	f.reads <- b
	return nil
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	b := <-f.reads
	return 1, b, nil
}

func (f *fakeConn) Close() error { return nil }

func TestWSClientHeaderGetByHeight(t *testing.T) {
	conn := newFakeConn()
	var dataHash [32]byte
	dataHash[0] = 0xab

	wire := wireExtendedHeader{
		Height:   42,
		DataHash: b64Of(dataHash[:]),
		DAH:      wireDAH{},
	}
	// fill the other required hash fields with zero hashes so decoding succeeds
	zero := b64Of(make([]byte, 32))
	wire.LastCommitHash, wire.ValidatorsHash, wire.NextValidatorsHash = zero, zero, zero
	wire.ConsensusHash, wire.AppHash, wire.LastResultsHash, wire.EvidenceHash = zero, zero, zero, zero

	b, _ := json.Marshal(wire)
	conn.results["header.GetByHeight"] = b

	client := newWSClient(conn)
	defer client.Close()

	h, err := client.HeaderGetByHeight(context.Background(), 42)
	if err != nil {
		t.Fatalf("HeaderGetByHeight: %v", err)
	}
	if h.Height != 42 {
		t.Fatalf("height = %d, want 42", h.Height)
	}
	if h.DataHash != dataHash {
		t.Fatal("data hash mismatch")
	}
}

func TestMockClientRoundTrip(t *testing.T) {
	m := NewMockClient()
	var ns nmt.ID
	ns[0] = 1
	commitment := inclusion.Commitment{2}
	idx := uint64(5)
	blob := &inclusion.Blob{Namespace: ns, Data: []byte("x"), Index: &idx}

	m.PutHeader(10, &inclusion.ExtendedHeader{Height: 10})
	m.PutBlob(10, ns, commitment, blob, nil)

	got, err := m.BlobGet(context.Background(), 10, ns, commitment)
	if err != nil {
		t.Fatalf("BlobGet: %v", err)
	}
	if string(got.Data) != "x" {
		t.Fatal("blob data mismatch")
	}

	if _, err := m.BlobGet(context.Background(), 999, ns, commitment); err == nil {
		t.Fatal("expected error for unknown key")
	}
}
