package nmt

import (
	"crypto/sha256"
)

const (
	leafPrefix  = 0x00
	innerPrefix = 0x01
)

func leafDigest(ns ID, data []byte) Hash {
	h := sha256.New()
	h.Write([]byte{leafPrefix})
	h.Write(ns[:])
	h.Write(data)
	var d [32]byte
	copy(d[:], h.Sum(nil))
	return Hash{Min: ns, Max: ns, Digest: d}
}

func innerDigest(left, right Hash) Hash {
	h := sha256.New()
	h.Write([]byte{innerPrefix})
	h.Write(left.Bytes())
	h.Write(right.Bytes())
	var d [32]byte
	copy(d[:], h.Sum(nil))
	return Hash{Min: minID(left.Min, right.Min), Max: maxID(left.Max, right.Max), Digest: d}
}

func largestPowerOfTwoLessThan(n int) int {
	k := 1
	for k*2 < n {
		k *= 2
	}
	return k
}

func subtreeDigest(leaves []Hash) Hash {
	if len(leaves) == 1 {
		return leaves[0]
	}
	k := largestPowerOfTwoLessThan(len(leaves))
	return innerDigest(subtreeDigest(leaves[:k]), subtreeDigest(leaves[k:]))
}

// SiblingNode is one namespaced-hash sibling in a Proof's authentication path.
type SiblingNode struct {
	Hash Hash
	Left bool
}

// Proof is a namespace multiproof over a contiguous, half-open range of
// shares within a single EDS row.
type Proof struct {
	StartIdx int
	EndIdx   int
	Total    int
	Siblings []SiblingNode
}

// VerifyRange checks that shares[StartIdx:EndIdx], all tagged with namespace,
// authenticate to rowRoot under this proof.
func (p *Proof) VerifyRange(rowRoot Hash, shares [][]byte, namespace ID) bool {
	if len(shares) != p.EndIdx-p.StartIdx {
		return false
	}
	leaves := make([]Hash, len(shares))
	for i, s := range shares {
		leaves[i] = leafDigest(namespace, s)
	}
	queue := append([]SiblingNode(nil), p.Siblings...)
	got, ok := verifyRangeRec(&queue, leaves, 0, p.Total, p.StartIdx, p.EndIdx)
	if !ok || len(queue) != 0 {
		return false
	}
	return got.Digest == rowRoot.Digest && got.Min == rowRoot.Min && got.Max == rowRoot.Max
}

func verifyRangeRec(queue *[]SiblingNode, provided []Hash, lo, hi, start, end int) (Hash, bool) {
	if start <= lo && hi <= end {
		return subtreeDigest(provided[lo-start : hi-start]), true
	}
	if hi-lo <= 1 {
		return Hash{}, false
	}
	k := largestPowerOfTwoLessThan(hi - lo)
	mid := lo + k

	var left, right Hash
	var ok bool
	if start < mid {
		left, ok = verifyRangeRec(queue, provided, lo, mid, start, end)
		if !ok {
			return Hash{}, false
		}
	} else {
		left, ok = popSibling(queue, true)
		if !ok {
			return Hash{}, false
		}
	}
	if end > mid {
		right, ok = verifyRangeRec(queue, provided, mid, hi, start, end)
		if !ok {
			return Hash{}, false
		}
	} else {
		right, ok = popSibling(queue, false)
		if !ok {
			return Hash{}, false
		}
	}
	return innerDigest(left, right), true
}

func popSibling(queue *[]SiblingNode, left bool) (Hash, bool) {
	if len(*queue) == 0 {
		return Hash{}, false
	}
	n := (*queue)[0]
	*queue = (*queue)[1:]
	if n.Left != left {
		return Hash{}, false
	}
	return n.Hash, true
}

// BuildProof constructs a Proof for the half-open share range [start, end)
// within a single row of shares tagged with namespace. It is used by tests
// and by the mock DA client; a real light node returns equivalent proofs
// over the wire.
func BuildProof(shares [][]byte, namespace ID, start, end int) *Proof {
	leaves := make([]Hash, len(shares))
	for i, s := range shares {
		leaves[i] = leafDigest(namespace, s)
	}
	return &Proof{
		StartIdx: start,
		EndIdx:   end,
		Total:    len(shares),
		Siblings: buildSiblings(leaves, 0, len(leaves), start, end),
	}
}

func buildSiblings(all []Hash, lo, hi, start, end int) []SiblingNode {
	if start <= lo && hi <= end {
		return nil
	}
	if hi-lo <= 1 {
		return nil
	}
	k := largestPowerOfTwoLessThan(hi - lo)
	mid := lo + k

	var nodes []SiblingNode
	if start < mid {
		nodes = append(nodes, buildSiblings(all, lo, mid, start, end)...)
	} else {
		nodes = append(nodes, SiblingNode{Hash: subtreeDigest(all[lo:mid]), Left: true})
	}
	if end > mid {
		nodes = append(nodes, buildSiblings(all, mid, hi, start, end)...)
	} else {
		nodes = append(nodes, SiblingNode{Hash: subtreeDigest(all[mid:hi]), Left: false})
	}
	return nodes
}

// RowRoot computes the namespaced root over an entire row of shares, all
// tagged with the same namespace. Used by tests to construct fixtures.
func RowRoot(shares [][]byte, namespace ID) Hash {
	leaves := make([]Hash, len(shares))
	for i, s := range shares {
		leaves[i] = leafDigest(namespace, s)
	}
	return subtreeDigest(leaves)
}
