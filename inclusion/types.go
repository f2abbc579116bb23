// Package inclusion implements the input-builder (C1) half of the
// inclusion-proof pipeline: the data model shared with the guest verifier,
// blob-to-share conversion, row-span arithmetic, and ProofInput assembly.
package inclusion

import (
	"encoding/hex"
	"fmt"

	"github.com/eqlabs/eq-service/merkle"
	"github.com/eqlabs/eq-service/nmt"
)

// ShareSize is the fixed size, in bytes, of one EDS share.
const ShareSize = 512

// Commitment is the 32-byte digest identifying a blob within (height, namespace).
type Commitment [32]byte

// ParseCommitment decodes a hex string into a Commitment, rejecting any
// length other than 32 bytes. This is the one place raw, caller-supplied
// commitment bytes are accepted.
func ParseCommitment(s string) (Commitment, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Commitment{}, fmt.Errorf("inclusion: invalid commitment hex: %w", err)
	}
	if len(b) != 32 {
		return Commitment{}, fmt.Errorf("inclusion: commitment must be 32 bytes, got %d", len(b))
	}
	var c Commitment
	copy(c[:], b)
	return c, nil
}

// Blob is a data-availability blob: an opaque payload tagged with a
// namespace, an EDS share index, and its app version, from which an
// ordered sequence of shares is deterministically derived.
type Blob struct {
	Namespace  nmt.ID
	Data       []byte
	Index      *uint64 // nil means "no index populated"
	AppVersion uint64
	Commitment Commitment
}

// DataAvailabilityHeader exposes the EDS's row and column roots.
type DataAvailabilityHeader struct {
	RowRoots    []nmt.Hash
	ColumnRoots []nmt.Hash
}

// EDSSize returns the EDS side length (always even).
func (dah DataAvailabilityHeader) EDSSize() int {
	return len(dah.RowRoots)
}

// ExtendedHeader is a block header plus its data-availability header. Field
// order matches the 14-leaf encoding headertree.Build expects, with
// DataHash at index 6.
type ExtendedHeader struct {
	VersionBlock       uint64
	VersionApp         uint64
	ChainID            string
	Height             uint64
	Time               int64 // unix nanoseconds
	LastBlockID        []byte
	LastCommitHash     [32]byte
	DataHash           [32]byte
	ValidatorsHash     [32]byte
	NextValidatorsHash [32]byte
	ConsensusHash      [32]byte
	AppHash            [32]byte
	LastResultsHash    [32]byte
	EvidenceHash       [32]byte
	ProposerAddress    []byte

	DAH DataAvailabilityHeader
}

// ProofInput is the serialized, stable input handed to the guest verifier.
type ProofInput struct {
	BlobData          []byte
	BlobIndex         uint64
	BlobNamespace     nmt.ID
	AppVersion        uint64
	NMTMultiproofs    []*nmt.Proof
	RowRootMultiproof *merkle.RangeProof
	RowRoots          []nmt.Hash
	DataRoot          [32]byte
	KeccakHash        [32]byte
}

// ProofOutput is the pair of public values the guest commits.
type ProofOutput struct {
	KeccakHash [32]byte
	DataRoot   [32]byte
}
