package merkle

import (
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/hashing"
)

// Tree is a binary merkle tree built once from an ordered list of values.
// Leaves are tagged with leafTag and interior nodes with branchTag so a leaf
// digest can never be mistaken for a branch digest.
type Tree struct {
	// layers[0] holds the leaf digests, layers[len-1] holds only the root.
	// Layer lengths are the real node counts; an unpaired tail node is hashed
	// with itself but never stored twice.
	layers [][]hashing.Digest

	leafTag   []byte
	branchTag []byte
	alg       hashing.HashAlgorithm

	// firstIndex maps a leaf digest to the first leaf position holding it
	firstIndex map[string]int
}

// Side records where the sibling sits relative to the node on the proof path.
type Side uint8

const (
	// Left means the sibling is the left child; the path node is the right child
	Left Side = 0
	// Right means the sibling is the right child; the path node is the left child
	Right Side = 1
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// ProofItem is one sibling digest on the path from a leaf to the root
type ProofItem struct {
	Side    Side
	Sibling hashing.Digest
}

// Proof is an inclusion proof for a single leaf.
type Proof struct {
	// LeafIndex is the position of the proven leaf in the leaf layer
	LeafIndex int

	// LeafCount is the number of leaves in the tree the proof was cut from.
	// Verifiers need it to replay the steps where the path node was unpaired.
	LeafCount int

	// Items are ordered leaf to root. The root layer and self-paired steps
	// contribute no item.
	Items []ProofItem
}
