// Package codec converts roots and proofs between their in-memory form and
// the representations served over HTTP.
package codec

import (
	"fmt"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/hashing"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/merkle"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/types"
	"github.com/pkg/errors"
)

// EncodeRoot renders a root as "0x" followed by lowercase hex
func EncodeRoot(root hashing.Digest) string {
	return root.Hex()
}

// DecodeRoot parses a hex root and checks its length against alg
func DecodeRoot(alg hashing.HashAlgorithm, s string) (hashing.Digest, error) {
	d, err := hashing.DecodeDigest(alg, s)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode root")
	}
	return d, nil
}

// EncodeProofItems converts proof items into their wire form
func EncodeProofItems(items []merkle.ProofItem) []types.ProofItem {
	out := make([]types.ProofItem, len(items))
	for i, item := range items {
		out[i] = types.ProofItem{
			Side:    uint8(item.Side),
			Sibling: item.Sibling.Hex(),
		}
	}
	return out
}

// DecodeProofItems validates and converts wire proof items
func DecodeProofItems(alg hashing.HashAlgorithm, items []types.ProofItem) ([]merkle.ProofItem, error) {
	out := make([]merkle.ProofItem, len(items))
	for i, item := range items {
		side := merkle.Side(item.Side)
		if side != merkle.Left && side != merkle.Right {
			return nil, fmt.Errorf("proof item %d: invalid side %d", i, item.Side)
		}
		sibling, err := hashing.DecodeDigest(alg, item.Sibling)
		if err != nil {
			return nil, errors.Wrapf(err, "proof item %d", i)
		}
		out[i] = merkle.ProofItem{Side: side, Sibling: sibling}
	}
	return out, nil
}

// EncodeProof builds the response body for an account proof
func EncodeProof(balance uint64, proof *merkle.Proof) *types.ProofResponse {
	return &types.ProofResponse{
		Balance:   balance,
		Proof:     EncodeProofItems(proof.Items),
		LeafIndex: proof.LeafIndex,
		LeafCount: proof.LeafCount,
	}
}

// DecodeProof converts a proof response back into a balance and proof
func DecodeProof(alg hashing.HashAlgorithm, resp *types.ProofResponse) (uint64, *merkle.Proof, error) {
	if resp == nil {
		return 0, nil, fmt.Errorf("proof response is nil")
	}
	if resp.LeafCount <= 0 || resp.LeafIndex < 0 || resp.LeafIndex >= resp.LeafCount {
		return 0, nil, fmt.Errorf("leaf index %d out of range for %d leaves", resp.LeafIndex, resp.LeafCount)
	}
	items, err := DecodeProofItems(alg, resp.Proof)
	if err != nil {
		return 0, nil, err
	}
	return resp.Balance, &merkle.Proof{
		LeafIndex: resp.LeafIndex,
		LeafCount: resp.LeafCount,
		Items:     items,
	}, nil
}
