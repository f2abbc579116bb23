// Package nmt implements the namespaced-hash type and namespace multiproof
// verification used by the row-root tree leaves and the per-row inclusion
// checks the guest verifier performs.
package nmt

// IDSize is the width, in bytes, of a namespace identifier.
const IDSize = 29

// ID is a fixed-width namespace identifier.
type ID [IDSize]byte

// Compare returns -1, 0 or 1 as a is less than, equal to, or greater than b.
func (a ID) Compare(b ID) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func minID(a, b ID) ID {
	if a.Compare(b) <= 0 {
		return a
	}
	return b
}

func maxID(a, b ID) ID {
	if a.Compare(b) >= 0 {
		return a
	}
	return b
}

// Hash is a namespaced hash: a 32-byte digest tagged with the namespace
// range of the leaves under it, serialized as min(29) || max(29) || digest(32).
type Hash struct {
	Min    ID
	Max    ID
	Digest [32]byte
}

// Bytes returns the 90-byte row-root-tree leaf encoding of h.
func (h Hash) Bytes() []byte {
	out := make([]byte, 0, 90)
	out = append(out, h.Min[:]...)
	out = append(out, h.Max[:]...)
	out = append(out, h.Digest[:]...)
	return out
}

// HashFromBytes parses the 90-byte encoding produced by Bytes.
func HashFromBytes(b []byte) (Hash, bool) {
	if len(b) != 90 {
		return Hash{}, false
	}
	var h Hash
	copy(h.Min[:], b[0:29])
	copy(h.Max[:], b[29:58])
	copy(h.Digest[:], b[58:90])
	return h, true
}
