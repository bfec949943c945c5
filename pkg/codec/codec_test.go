package codec

import (
	"testing"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/hashing"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/merkle"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestTree(t *testing.T) *merkle.Tree {
	t.Helper()
	values := [][]byte{[]byte("aaa"), []byte("bbb"), []byte("ccc"), []byte("ddd"), []byte("eee")}
	tree, err := merkle.Build(values, []byte("Bitcoin_Transaction"), []byte("Bitcoin_Transaction"), hashing.MustLookup(hashing.SHA256))
	require.NoError(t, err)
	return tree
}

func TestRoot_RoundTrip(t *testing.T) {
	tree := buildTestTree(t)
	alg := tree.Algorithm()

	encoded := EncodeRoot(tree.Root())
	assert.Equal(t, "0x4aa906745f72053498ecc74f79813370a4fe04f85e09421df2d5ef760dfa94b5", encoded)

	decoded, err := DecodeRoot(alg, encoded)
	require.NoError(t, err)
	assert.True(t, decoded.Equal(tree.Root()))
}

func TestDecodeRoot_Invalid(t *testing.T) {
	alg := hashing.MustLookup(hashing.SHA256)

	_, err := DecodeRoot(alg, "4aa9")
	assert.Error(t, err)

	_, err = DecodeRoot(alg, "0xzz")
	assert.Error(t, err)

	_, err = DecodeRoot(alg, "0x4aa9")
	assert.Error(t, err)
}

func TestProof_RoundTrip(t *testing.T) {
	tree := buildTestTree(t)
	alg := tree.Algorithm()

	proof, ok := tree.Proof([]byte("aaa"))
	require.True(t, ok)

	resp := EncodeProof(42, proof)
	require.Len(t, resp.Proof, 3)
	for _, item := range resp.Proof {
		assert.Equal(t, uint8(1), item.Side)
		assert.Len(t, item.Sibling, 2+2*alg.Size())
	}

	balance, decoded, err := DecodeProof(alg, resp)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), balance)
	assert.Equal(t, proof.LeafIndex, decoded.LeafIndex)
	assert.Equal(t, proof.LeafCount, decoded.LeafCount)
	require.Len(t, decoded.Items, len(proof.Items))
	for i := range proof.Items {
		assert.Equal(t, proof.Items[i].Side, decoded.Items[i].Side)
		assert.True(t, proof.Items[i].Sibling.Equal(decoded.Items[i].Sibling))
	}

	assert.True(t, merkle.VerifyProof(alg, tree.LeafTag(), tree.BranchTag(), []byte("aaa"), decoded, tree.Root()))
}

func TestDecodeProof_Invalid(t *testing.T) {
	alg := hashing.MustLookup(hashing.SHA256)
	valid := "0x" + "00000000000000000000000000000000000000000000000000000000000000ff"

	testCases := []struct {
		name string
		resp *types.ProofResponse
	}{
		{"Nil response", nil},
		{"Zero leaf count", &types.ProofResponse{LeafCount: 0}},
		{"Index out of range", &types.ProofResponse{LeafIndex: 3, LeafCount: 3}},
		{"Negative index", &types.ProofResponse{LeafIndex: -1, LeafCount: 3}},
		{"Bad side", &types.ProofResponse{LeafCount: 2, Proof: []types.ProofItem{{Side: 2, Sibling: valid}}}},
		{"Short digest", &types.ProofResponse{LeafCount: 2, Proof: []types.ProofItem{{Side: 1, Sibling: "0x00"}}}},
		{"Non-hex digest", &types.ProofResponse{LeafCount: 2, Proof: []types.ProofItem{{Side: 1, Sibling: "nothex"}}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := DecodeProof(alg, tc.resp)
			assert.Error(t, err)
		})
	}
}

func TestCBORCodec_ProofResponse(t *testing.T) {
	c, err := NewCBORCodec()
	require.NoError(t, err)

	tree := buildTestTree(t)
	proof, err := tree.ProofAt(4)
	require.NoError(t, err)
	resp := EncodeProof(5555, proof)

	data, err := c.Marshal(resp)
	require.NoError(t, err)

	again, err := c.Marshal(resp)
	require.NoError(t, err)
	assert.Equal(t, data, again, "encoding must be deterministic")

	var decoded types.ProofResponse
	require.NoError(t, c.Unmarshal(data, &decoded))
	assert.Equal(t, resp.Balance, decoded.Balance)
	assert.Equal(t, resp.LeafIndex, decoded.LeafIndex)
	assert.Equal(t, resp.LeafCount, decoded.LeafCount)
	require.Len(t, decoded.Proof, 1)
	assert.Equal(t, uint8(0), decoded.Proof[0].Side)
	assert.Equal(t, resp.Proof[0].Sibling, decoded.Proof[0].Sibling)
}

func TestCBORCodec_ProofItemIsArray(t *testing.T) {
	c, err := NewCBORCodec()
	require.NoError(t, err)

	data, err := c.Marshal(types.ProofItem{Side: 1, Sibling: "0x01"})
	require.NoError(t, err)
	// 0x82: array of two elements
	assert.Equal(t, byte(0x82), data[0])
}
