package hashing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaggedHash_KnownVectors(t *testing.T) {
	alg := MustLookup(SHA256)

	testCases := []struct {
		name string
		tag  string
		data string
		want string
	}{
		{"Empty tag and data", "", "", "0x2dba5dbc339e7316aea2683faf839c1b7b1ee2313db792112588118df066aa35"},
		{"TapLeaf", "TapLeaf", "abc", "0x83a56308a9c56f467e8df293da5ae5fdbc85b871952a83c4bf0575ee948ec230"},
		{"Leaf aaa", "Bitcoin_Transaction", "aaa", "0xd2d838724571ff750eb7f498a667c32f522efae2b403eae6f678207ac6f978de"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := TaggedHash(alg, []byte(tc.tag), []byte(tc.data))
			require.Len(t, got, alg.Size())
			assert.Equal(t, tc.want, got.Hex())
		})
	}
}

func TestTaggedHash_DomainSeparation(t *testing.T) {
	alg := MustLookup(SHA256)
	data := []byte("payload")

	leaf := TaggedHash(alg, []byte("leaf"), data)
	branch := TaggedHash(alg, []byte("branch"), data)
	require.False(t, leaf.Equal(branch))

	// the tag prefix must not collapse into a plain hash of the payload
	require.False(t, leaf.Equal(alg.Sum(data)))
}

func TestTaggedHash_Deterministic(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			alg := MustLookup(name)
			a := TaggedHash(alg, []byte("tag"), []byte("data"))
			b := TaggedHash(alg, []byte("tag"), []byte("data"))
			require.Equal(t, a, b)
			require.Len(t, a, alg.Size())
		})
	}
}

func TestAlgorithms_Sizes(t *testing.T) {
	expected := map[string]int{
		SHA256:     32,
		Keccak256:  32,
		SHA3_256:   32,
		SHA3_512:   64,
		BLAKE2b256: 32,
	}
	for name, size := range expected {
		alg, err := Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, name, alg.Name())
		assert.Equal(t, size, alg.Size(), "size of %s", name)
		assert.Len(t, alg.Sum([]byte("x")), size)
	}
}

func TestAlgorithms_SumConcatenates(t *testing.T) {
	for _, name := range Names() {
		alg := MustLookup(name)
		require.Equal(t, alg.Sum([]byte("abcdef")), alg.Sum([]byte("abc"), []byte("def")), name)
	}
}

func TestKeccak256_MatchesEthereum(t *testing.T) {
	alg := MustLookup(Keccak256)
	require.Equal(t, "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", alg.Sum().Hex())
}

func TestRegistry(t *testing.T) {
	t.Run("Unknown algorithm", func(t *testing.T) {
		alg, err := Lookup("md4")
		require.Error(t, err)
		require.Nil(t, alg)
		require.True(t, errors.Is(err, ErrUnknownAlgorithm))
	})

	t.Run("Duplicate registration panics", func(t *testing.T) {
		require.Panics(t, func() {
			Register(SHA256, func() HashAlgorithm { return sha256Algorithm{} })
		})
	})

	t.Run("Names sorted", func(t *testing.T) {
		names := Names()
		require.Contains(t, names, DefaultAlgorithm)
		for i := 1; i < len(names); i++ {
			require.Less(t, names[i-1], names[i])
		}
	})
}

func TestDecodeDigest(t *testing.T) {
	alg := MustLookup(SHA256)
	d := TaggedHash(alg, []byte("t"), []byte("d"))

	decoded, err := DecodeDigest(alg, d.Hex())
	require.NoError(t, err)
	require.True(t, decoded.Equal(d))

	_, err = DecodeDigest(alg, "0x1234")
	var lenErr *DigestLengthError
	require.ErrorAs(t, err, &lenErr)
	require.Equal(t, 32, lenErr.Want)
	require.Equal(t, 2, lenErr.Got)

	_, err = DecodeDigest(alg, "not-hex")
	require.Error(t, err)
}

func TestDigest_Clone(t *testing.T) {
	d := Digest{1, 2, 3}
	c := d.Clone()
	c[0] = 9
	require.Equal(t, byte(1), d[0])
	require.Nil(t, Digest(nil).Clone())
}
