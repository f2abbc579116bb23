// Package guest implements the deterministic re-verification chain (C3)
// that a zkVM guest program commits to. Verify is a pure function: no I/O,
// no clock, no randomness, branching only on its input, so it can run
// identically inside a zkVM guest and as a plain Go function in the
// standalone prover runner and in tests.
package guest

import (
	"errors"

	eqcrypto "github.com/eqlabs/eq-service/crypto"
	"github.com/eqlabs/eq-service/inclusion"
)

// ErrNMTVerificationFailed means a per-row namespace multiproof did not
// verify against its row root.
var ErrNMTVerificationFailed = errors.New("guest: nmt multiproof verification failed")

// ErrShareCoverageMismatch means the nmt multiproofs did not partition the
// blob's shares exactly (gap, overlap, or short cover).
var ErrShareCoverageMismatch = errors.New("guest: nmt multiproofs do not exactly cover the blob's shares")

// ErrRowRootRangeVerificationFailed means the row-root range proof did not
// verify against the claimed data root.
var ErrRowRootRangeVerificationFailed = errors.New("guest: row root range proof verification failed")

// ErrKeccakMismatch means keccak256(blob data) did not match the claimed
// keccak hash.
var ErrKeccakMismatch = errors.New("guest: keccak hash mismatch")

// Verify re-executes the full inclusion verification chain against in and
// returns the committed public outputs, or the first invariant violation it
// finds. Any returned error means no proof should be produced for in.
func Verify(in *inclusion.ProofInput) (*inclusion.ProofOutput, error) {
	blob := &inclusion.Blob{
		Namespace:  in.BlobNamespace,
		Data:       in.BlobData,
		Index:      &in.BlobIndex,
		AppVersion: in.AppVersion,
	}

	shares, err := blob.ToShares()
	if err != nil {
		return nil, err
	}

	cursor := 0
	for i, proof := range in.NMTMultiproofs {
		if i >= len(in.RowRoots) {
			return nil, ErrShareCoverageMismatch
		}
		length := proof.EndIdx - proof.StartIdx
		if length < 0 || cursor+length > len(shares) {
			return nil, ErrShareCoverageMismatch
		}
		slice := shares[cursor : cursor+length]
		if !proof.VerifyRange(in.RowRoots[i], slice, in.BlobNamespace) {
			return nil, ErrNMTVerificationFailed
		}
		cursor += length
	}
	if cursor != len(shares) {
		return nil, ErrShareCoverageMismatch
	}

	leaves := make([][]byte, len(in.RowRoots))
	for i, r := range in.RowRoots {
		leaves[i] = r.Bytes()
	}
	if in.RowRootMultiproof == nil || !in.RowRootMultiproof.VerifyRange(in.DataRoot[:], leaves) {
		return nil, ErrRowRootRangeVerificationFailed
	}

	h := eqcrypto.Keccak256Array(in.BlobData)
	if h != in.KeccakHash {
		return nil, ErrKeccakMismatch
	}

	return &inclusion.ProofOutput{
		KeccakHash: h,
		DataRoot:   in.DataRoot,
	}, nil
}
