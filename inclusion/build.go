package inclusion

import (
	eqcrypto "github.com/eqlabs/eq-service/crypto"
	"github.com/eqlabs/eq-service/merkle"
	"github.com/eqlabs/eq-service/nmt"
)

// BuildProofInput assembles a ProofInput from a blob, its extended header,
// and the per-row namespace multiproofs a DA light node already returned
// for it (one per row the blob spans, in row-major order). This is C1.
func BuildProofInput(blob *Blob, header *ExtendedHeader, nmtProofs []*nmt.Proof) (*ProofInput, error) {
	edsRowRoots := header.DAH.RowRoots
	edsColumnRoots := header.DAH.ColumnRoots
	edsSize := len(edsRowRoots)

	if blob.Index == nil {
		return nil, ErrMissingBlobIndex
	}
	blobIndex := *blob.Index

	shares, err := blob.ToShares()
	if err != nil {
		return nil, err
	}
	blobSize := len(shares)
	if blobSize < 1 {
		blobSize = 1
	}

	span := computeRowSpan(blobIndex, blobSize, edsSize)

	tree := merkle.NewTree()
	for _, r := range edsRowRoots {
		tree.Push(r.Bytes())
	}
	for _, c := range edsColumnRoots {
		tree.Push(c.Bytes())
	}
	root := tree.Root()
	if !bytesEqual32(root, header.DataHash) {
		return nil, ErrRowRootVerificationFailed
	}

	rangeProof, err := tree.BuildRangeProof(span.FirstRowIndex, span.LastRowIndex+1)
	if err != nil {
		return nil, ErrRowRootVerificationFailed
	}

	coveredRows := edsRowRoots[span.FirstRowIndex : span.LastRowIndex+1]
	coveredLeaves := make([][]byte, len(coveredRows))
	for i, r := range coveredRows {
		coveredLeaves[i] = r.Bytes()
	}
	if !rangeProof.VerifyRange(header.DataHash[:], coveredLeaves) {
		return nil, ErrRowRootVerificationFailed
	}

	keccakHash := eqcrypto.Keccak256(blob.Data)
	if len(keccakHash) != 32 {
		return nil, ErrKeccakHashConversion
	}
	var keccakArr [32]byte
	copy(keccakArr[:], keccakHash)

	return &ProofInput{
		BlobData:          blob.Data,
		BlobIndex:         blobIndex,
		BlobNamespace:     blob.Namespace,
		AppVersion:        blob.AppVersion,
		NMTMultiproofs:    nmtProofs,
		RowRootMultiproof: rangeProof,
		RowRoots:          append([]nmt.Hash(nil), coveredRows...),
		DataRoot:          header.DataHash,
		KeccakHash:        keccakArr,
	}, nil
}

func bytesEqual32(b []byte, a [32]byte) bool {
	if len(b) != 32 {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
