// Package daclient implements the DA RPC client adapter (C4): a persistent
// JSON-RPC-over-WebSocket connection to a Celestia-style light node,
// exposing the three calls the rest of the system needs.
package daclient

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/eqlabs/eq-service/inclusion"
	"github.com/eqlabs/eq-service/log"
	"github.com/eqlabs/eq-service/metrics"
	"github.com/eqlabs/eq-service/nmt"
)

// AuthTokenEnvVar is the environment variable holding the bearer token
// presented to the DA node.
const AuthTokenEnvVar = "CELESTIA_NODE_AUTH_TOKEN"

// Client is the capability set the rest of the system consumes from the DA
// node: header, blob, and blob-proof lookups by height.
type Client interface {
	HeaderGetByHeight(ctx context.Context, height uint64) (*inclusion.ExtendedHeader, error)
	BlobGet(ctx context.Context, height uint64, namespace nmt.ID, commitment inclusion.Commitment) (*inclusion.Blob, error)
	BlobGetProof(ctx context.Context, height uint64, namespace nmt.ID, commitment inclusion.Commitment) ([]*nmt.Proof, error)
	Close() error
}

// RpcError wraps any transport- or node-level failure, all retryable from
// the reconciler's point of view.
type RpcError struct {
	Method string
	Err    error
}

func (e *RpcError) Error() string {
	return fmt.Sprintf("daclient: %s: %v", e.Method, e.Err)
}

func (e *RpcError) Unwrap() error { return e.Err }

type jsonrpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type jsonrpcResponse struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *jsonrpcError   `json:"error"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// wsConn is the subset of *websocket.Conn the client depends on, so tests
// can substitute a fake transport.
type wsConn interface {
	WriteJSON(v interface{}) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// WSClient is the production Client implementation: one persistent
// WebSocket connection, shared across goroutines, serialized by a single
// writer and demultiplexed to callers by JSON-RPC request id.
type WSClient struct {
	conn   wsConn
	nextID atomic.Uint64

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[uint64]chan jsonrpcResponse

	log *log.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// Dial opens a persistent WebSocket connection to addr (e.g.
// "ws://localhost:26658"), authenticating with the bearer token from
// CELESTIA_NODE_AUTH_TOKEN if set.
func Dial(ctx context.Context, addr string) (*WSClient, error) {
	header := make(map[string][]string)
	if tok := os.Getenv(AuthTokenEnvVar); tok != "" {
		header["Authorization"] = []string{"Bearer " + tok}
	}
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, addr, header)
	if err != nil {
		return nil, &RpcError{Method: "dial", Err: err}
	}
	return newWSClient(conn), nil
}

func newWSClient(conn wsConn) *WSClient {
	c := &WSClient{
		conn:    conn,
		pending: make(map[uint64]chan jsonrpcResponse),
		log:     log.Module("daclient"),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *WSClient) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.log.Warn("read loop exiting", "error", err)
			close(c.done)
			return
		}
		var resp jsonrpcResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			c.log.Warn("malformed response", "error", err)
			continue
		}
		c.pendingMu.Lock()
		ch, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.pendingMu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

func (c *WSClient) call(ctx context.Context, method string, params []interface{}, out interface{}) (err error) {
	metrics.DARpcCalls.Inc()
	timer := metrics.NewTimer(metrics.DARpcLatency)
	defer func() {
		timer.Stop()
		if err != nil {
			metrics.DARpcErrors.Inc()
		}
	}()

	id := c.nextID.Add(1)
	ch := make(chan jsonrpcResponse, 1)

	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()

	c.writeMu.Lock()
	err = c.conn.WriteJSON(jsonrpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params})
	c.writeMu.Unlock()
	if err != nil {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return &RpcError{Method: method, Err: err}
	}

	select {
	case <-ctx.Done():
		return &RpcError{Method: method, Err: ctx.Err()}
	case <-c.done:
		return &RpcError{Method: method, Err: fmt.Errorf("connection closed")}
	case resp := <-ch:
		if resp.Error != nil {
			return &RpcError{Method: method, Err: fmt.Errorf("%s", resp.Error.Message)}
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return &RpcError{Method: method, Err: err}
		}
		return nil
	}
}

func (c *WSClient) HeaderGetByHeight(ctx context.Context, height uint64) (*inclusion.ExtendedHeader, error) {
	var wire wireExtendedHeader
	if err := c.call(ctx, "header.GetByHeight", []interface{}{height}, &wire); err != nil {
		return nil, err
	}
	return wire.toHeader()
}

func (c *WSClient) BlobGet(ctx context.Context, height uint64, namespace nmt.ID, commitment inclusion.Commitment) (*inclusion.Blob, error) {
	var wire wireBlob
	params := []interface{}{height, namespaceB64(namespace), commitmentB64(commitment)}
	if err := c.call(ctx, "blob.Get", params, &wire); err != nil {
		return nil, err
	}
	return wire.toBlob(namespace, commitment)
}

func (c *WSClient) BlobGetProof(ctx context.Context, height uint64, namespace nmt.ID, commitment inclusion.Commitment) ([]*nmt.Proof, error) {
	var wire []wireNMTProof
	params := []interface{}{height, namespaceB64(namespace), commitmentB64(commitment)}
	if err := c.call(ctx, "blob.GetProof", params, &wire); err != nil {
		return nil, err
	}
	proofs := make([]*nmt.Proof, len(wire))
	for i, w := range wire {
		proofs[i] = w.toProof()
	}
	return proofs, nil
}

func (c *WSClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}
