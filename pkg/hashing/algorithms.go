package hashing

import (
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/crypto"
	merkletree "github.com/wealdtech/go-merkletree/v2"
	"github.com/wealdtech/go-merkletree/v2/blake2b"
	wsha3 "github.com/wealdtech/go-merkletree/v2/sha3"
	"golang.org/x/crypto/sha3"
)

// Registered algorithm names
const (
	SHA256     = "sha256"
	Keccak256  = "keccak256"
	SHA3_256   = "sha3-256"
	SHA3_512   = "sha3-512"
	BLAKE2b256 = "blake2b-256"
)

// DefaultAlgorithm is the algorithm the reserves service uses unless configured otherwise
const DefaultAlgorithm = SHA256

func init() {
	Register(SHA256, func() HashAlgorithm { return sha256Algorithm{} })
	Register(Keccak256, func() HashAlgorithm { return keccak256Algorithm{} })
	Register(SHA3_256, func() HashAlgorithm { return sha3Algorithm{} })
	Register(SHA3_512, func() HashAlgorithm { return NewHashTypeAlgorithm(SHA3_512, wsha3.New512()) })
	Register(BLAKE2b256, func() HashAlgorithm { return NewHashTypeAlgorithm(BLAKE2b256, blake2b.New()) })
}

type sha256Algorithm struct{}

func (sha256Algorithm) Name() string { return SHA256 }
func (sha256Algorithm) Size() int    { return sha256.Size }

func (sha256Algorithm) Sum(data ...[]byte) Digest {
	h := sha256.New()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// keccak256Algorithm matches Solidity's keccak256 so roots can be checked on-chain
type keccak256Algorithm struct{}

func (keccak256Algorithm) Name() string { return Keccak256 }
func (keccak256Algorithm) Size() int    { return 32 }

func (keccak256Algorithm) Sum(data ...[]byte) Digest {
	return crypto.Keccak256(data...)
}

type sha3Algorithm struct{}

func (sha3Algorithm) Name() string { return SHA3_256 }
func (sha3Algorithm) Size() int    { return 32 }

func (sha3Algorithm) Sum(data ...[]byte) Digest {
	h := sha3.New256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// HashTypeAlgorithm adapts a go-merkletree HashType to HashAlgorithm.
type HashTypeAlgorithm struct {
	name     string
	hashType merkletree.HashType
}

// NewHashTypeAlgorithm wraps hashType under the given registry name
func NewHashTypeAlgorithm(name string, hashType merkletree.HashType) *HashTypeAlgorithm {
	return &HashTypeAlgorithm{name: name, hashType: hashType}
}

func (h *HashTypeAlgorithm) Name() string { return h.name }
func (h *HashTypeAlgorithm) Size() int    { return h.hashType.HashLength() }

func (h *HashTypeAlgorithm) Sum(data ...[]byte) Digest {
	return h.hashType.Hash(data...)
}
