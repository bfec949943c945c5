package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProofItem_JSON(t *testing.T) {
	item := ProofItem{Side: 1, Sibling: "0xabcd"}

	data, err := json.Marshal(item)
	require.NoError(t, err)
	require.JSONEq(t, `[1, "0xabcd"]`, string(data))

	var decoded ProofItem
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, item.Side, decoded.Side)
	require.Equal(t, item.Sibling, decoded.Sibling)
}

func TestProofItem_JSONInvalid(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{"Object", `{"side": 1}`},
		{"Too short", `[1]`},
		{"Too long", `[1, "0x00", 3]`},
		{"Side not a number", `["left", "0x00"]`},
		{"Digest not a string", `[0, 12]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var item ProofItem
			require.Error(t, json.Unmarshal([]byte(tc.data), &item))
		})
	}
}

func TestProofResponse_JSONShape(t *testing.T) {
	resp := ProofResponse{
		Balance:   1111,
		Proof:     []ProofItem{{Side: 1, Sibling: "0x01"}, {Side: 0, Sibling: "0x02"}},
		LeafIndex: 0,
		LeafCount: 8,
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	require.JSONEq(t, `{"balance":1111,"proof":[[1,"0x01"],[0,"0x02"]],"leaf_index":0,"leaf_count":8}`, string(data))
}
