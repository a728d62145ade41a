// Package determinism provides primitives for guaranteeing deterministic output.
// Anything that iterates a map or identifies an input goes through here.
package determinism

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"slices"
)

// ContentHash is a SHA-256 hash for content identity
type ContentHash [32]byte

// ComputeHash computes a content hash from bytes
func ComputeHash(data []byte) ContentHash {
	return sha256.Sum256(data)
}

// Hex returns the full hash as a hex string
func (h ContentHash) Hex() string {
	return hex.EncodeToString(h[:])
}

// String implements Stringer with a short prefix for logs
func (h ContentHash) String() string {
	return h.Hex()[:16] + "..."
}

// SortedKeys returns the keys of m in ascending order
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
