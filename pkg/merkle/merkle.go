// Package merkle builds tagged-hash merkle trees and derives inclusion proofs.
package merkle

import (
	"errors"
	"fmt"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/hashing"
)

// ErrEmptyTree is returned when a tree is built from no values
var ErrEmptyTree = errors.New("cannot build merkle tree from empty value list")

// Build creates a merkle tree from values, in the given order.
//
// Each value becomes a leaf TaggedHash(leafTag, value). Consecutive pairs are
// combined with TaggedHash(branchTag, left || right) until a single root is
// left. If a layer has an odd number of nodes, the last node is paired with
// itself.
func Build(values [][]byte, leafTag, branchTag []byte, alg hashing.HashAlgorithm) (*Tree, error) {
	if len(values) == 0 {
		return nil, ErrEmptyTree
	}
	if alg == nil {
		return nil, fmt.Errorf("hash algorithm is required")
	}

	leaves := make([]hashing.Digest, len(values))
	firstIndex := make(map[string]int, len(values))
	for i, v := range values {
		leaves[i] = hashing.TaggedHash(alg, leafTag, v)
		if _, seen := firstIndex[string(leaves[i])]; !seen {
			firstIndex[string(leaves[i])] = i
		}
	}

	layers := make([][]hashing.Digest, 0, depthFor(len(leaves)))
	current := leaves
	for len(current) > 1 {
		layers = append(layers, current)

		next := make([]hashing.Digest, 0, (len(current)+1)/2)
		for i := 0; i < len(current); i += 2 {
			left := current[i]
			right := left
			if i+1 < len(current) {
				right = current[i+1]
			}
			next = append(next, hashPair(alg, branchTag, left, right))
		}
		current = next
	}
	layers = append(layers, current)

	return &Tree{
		layers:     layers,
		leafTag:    append([]byte(nil), leafTag...),
		branchTag:  append([]byte(nil), branchTag...),
		alg:        alg,
		firstIndex: firstIndex,
	}, nil
}

// Root returns the root digest
func (t *Tree) Root() hashing.Digest {
	return t.layers[len(t.layers)-1][0].Clone()
}

// LeafCount returns the number of leaves
func (t *Tree) LeafCount() int {
	return len(t.layers[0])
}

// Depth returns the number of layers, leaf layer and root layer included
func (t *Tree) Depth() int {
	return len(t.layers)
}

// Layer returns a copy of the digests at depth d (0 is the leaf layer)
func (t *Tree) Layer(d int) ([]hashing.Digest, error) {
	if d < 0 || d >= len(t.layers) {
		return nil, fmt.Errorf("layer %d out of bounds (tree has %d layers)", d, len(t.layers))
	}
	out := make([]hashing.Digest, len(t.layers[d]))
	for i, digest := range t.layers[d] {
		out[i] = digest.Clone()
	}
	return out, nil
}

// Algorithm returns the hash algorithm the tree was built with
func (t *Tree) Algorithm() hashing.HashAlgorithm {
	return t.alg
}

// LeafTag returns a copy of the leaf domain tag
func (t *Tree) LeafTag() []byte {
	return append([]byte(nil), t.leafTag...)
}

// BranchTag returns a copy of the branch domain tag
func (t *Tree) BranchTag() []byte {
	return append([]byte(nil), t.branchTag...)
}

// Proof returns the inclusion proof for value, or false when no leaf holds it.
// If the same value was committed more than once, the proof is for its first
// position.
func (t *Tree) Proof(value []byte) (*Proof, bool) {
	leaf := hashing.TaggedHash(t.alg, t.leafTag, value)
	index, ok := t.firstIndex[string(leaf)]
	if !ok {
		return nil, false
	}
	proof, err := t.ProofAt(index)
	if err != nil {
		return nil, false
	}
	return proof, true
}

// ProofAt returns the inclusion proof for the leaf at leafIndex
func (t *Tree) ProofAt(leafIndex int) (*Proof, error) {
	if leafIndex < 0 || leafIndex >= t.LeafCount() {
		return nil, fmt.Errorf("leaf index %d out of bounds (tree has %d leaves)", leafIndex, t.LeafCount())
	}
	return t.buildProof(leafIndex), nil
}

func (t *Tree) buildProof(leafIndex int) *Proof {
	items := make([]ProofItem, 0, len(t.layers)-1)
	index := leafIndex

	for _, layer := range t.layers[:len(t.layers)-1] {
		switch {
		case index%2 == 1:
			items = append(items, ProofItem{Side: Left, Sibling: layer[index-1].Clone()})
		case index == len(layer)-1:
			// unpaired tail node, hashed with itself
		default:
			items = append(items, ProofItem{Side: Right, Sibling: layer[index+1].Clone()})
		}
		index /= 2
	}

	return &Proof{
		LeafIndex: leafIndex,
		LeafCount: t.LeafCount(),
		Items:     items,
	}
}

// VerifyProof replays proof from value's leaf digest and reports whether it
// arrives at root. Steps where the path node had no sibling are recomputed as
// TaggedHash(branchTag, node || node), which requires proof.LeafCount.
func VerifyProof(alg hashing.HashAlgorithm, leafTag, branchTag, value []byte, proof *Proof, root hashing.Digest) bool {
	if alg == nil || proof == nil {
		return false
	}
	if proof.LeafCount < 1 || proof.LeafIndex < 0 || proof.LeafIndex >= proof.LeafCount {
		return false
	}

	current := hashing.TaggedHash(alg, leafTag, value)
	index := proof.LeafIndex
	next := 0

	for width := proof.LeafCount; width > 1; width = (width + 1) / 2 {
		switch {
		case index%2 == 1:
			if next >= len(proof.Items) || proof.Items[next].Side != Left {
				return false
			}
			current = hashPair(alg, branchTag, proof.Items[next].Sibling, current)
			next++
		case index == width-1:
			current = hashPair(alg, branchTag, current, current)
		default:
			if next >= len(proof.Items) || proof.Items[next].Side != Right {
				return false
			}
			current = hashPair(alg, branchTag, current, proof.Items[next].Sibling)
			next++
		}
		index /= 2
	}

	if next != len(proof.Items) {
		return false
	}
	return current.Equal(root)
}

// hashPair computes TaggedHash(branchTag, left || right)
func hashPair(alg hashing.HashAlgorithm, branchTag []byte, left, right hashing.Digest) hashing.Digest {
	data := make([]byte, 0, len(left)+len(right))
	data = append(data, left...)
	data = append(data, right...)
	return hashing.TaggedHash(alg, branchTag, data)
}

// depthFor returns the number of layers a tree over n leaves has
func depthFor(n int) int {
	depth := 1
	for n > 1 {
		n = (n + 1) / 2
		depth++
	}
	return depth
}
