package records

import (
	"testing"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/reserves"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalRecord(t *testing.T) {
	data, err := MarshalRecord(&reserves.Record{ID: 7, Balance: 7777})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"balance":7777}`, string(data))

	_, err = MarshalRecord(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil Record")
}

func TestUnmarshalRecord(t *testing.T) {
	r, err := UnmarshalRecord([]byte(`{"id":18446744073709551615,"balance":1}`))
	require.NoError(t, err)
	assert.Equal(t, uint64(18446744073709551615), r.ID)
	assert.Equal(t, uint64(1), r.Balance)

	_, err = UnmarshalRecord(nil)
	assert.Error(t, err)

	_, err = UnmarshalRecord([]byte(`{"id":-1}`))
	assert.Error(t, err)

	_, err = UnmarshalRecord([]byte(`not json`))
	assert.Error(t, err)
}

func TestCopyRecords(t *testing.T) {
	in := []reserves.Record{{ID: 1, Balance: 1}, {ID: 2, Balance: 2}}
	out := CopyRecords(in)
	out[0].Balance = 99
	assert.Equal(t, uint64(1), in[0].Balance)
}
