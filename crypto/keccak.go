// Package crypto provides the hash primitives used to bind a blob's bytes
// to the public output of an inclusion proof.
package crypto

import "golang.org/x/crypto/sha3"

// Keccak256 calculates the Keccak-256 hash of the concatenation of data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Array is Keccak256 with the result fixed to a 32-byte array, the
// shape the inclusion pipeline commits as a public output.
func Keccak256Array(data ...[]byte) [32]byte {
	var out [32]byte
	copy(out[:], Keccak256(data...))
	return out
}
