// Package hashing provides the fixed-output hash primitives used by the
// reserves tree and the BIP340-style tagged hash built on top of them.
package hashing

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Digest is the output of a HashAlgorithm. Its length is fixed per algorithm.
type Digest []byte

// Hex renders the digest as a lowercase 0x-prefixed hex string
func (d Digest) Hex() string {
	return hexutil.Encode(d)
}

// String implements fmt.Stringer
func (d Digest) String() string {
	return d.Hex()
}

// Equal reports whether both digests hold the same bytes
func (d Digest) Equal(other Digest) bool {
	return bytes.Equal(d, other)
}

// Clone returns a copy that does not share the backing array
func (d Digest) Clone() Digest {
	if d == nil {
		return nil
	}
	out := make(Digest, len(d))
	copy(out, d)
	return out
}

// HashAlgorithm is a fixed-output hash primitive.
type HashAlgorithm interface {
	// Name is the registry name of the algorithm
	Name() string
	// Size is the digest length in bytes
	Size() int
	// Sum hashes the concatenation of all inputs
	Sum(data ...[]byte) Digest
}

// TaggedHash computes H(H(tag) || H(tag) || data).
func TaggedHash(alg HashAlgorithm, tag, data []byte) Digest {
	inner := alg.Sum(tag)
	return alg.Sum(inner, inner, data)
}

// DecodeDigest parses a 0x-prefixed hex string and checks it has the length
// the algorithm produces.
func DecodeDigest(alg HashAlgorithm, s string) (Digest, error) {
	raw, err := hexutil.Decode(s)
	if err != nil {
		return nil, err
	}
	if len(raw) != alg.Size() {
		return nil, &DigestLengthError{Algorithm: alg.Name(), Want: alg.Size(), Got: len(raw)}
	}
	return Digest(raw), nil
}
