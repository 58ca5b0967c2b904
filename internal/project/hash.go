package project

import (
	"crypto/sha256"
)

// Digest is a SHA-256 hash, the same size as source.File.Hash.
type Digest [32]byte

// Combine hashes content followed by each of parts, in order.
func Combine(content Digest, parts ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range parts {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
