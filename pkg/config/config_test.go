package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultReservesServerConfig(t *testing.T) {
	cfg := NewDefaultReservesServerConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "sha256", cfg.HashAlgorithm)
	assert.Equal(t, "ProofOfReserve_Leaf", cfg.LeafTag)
	assert.Equal(t, "ProofOfReserve_Branch", cfg.BranchTag)
	assert.Equal(t, "open", cfg.LeafEncoding)
	assert.Equal(t, SourceType_Demo, cfg.Source.Type)
	assert.False(t, cfg.TagsEqual())
	assert.Equal(t, ":3000", cfg.Address())
}

func TestReservesServerConfig_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		mutate    func(c *ReservesServerConfig)
		wantField string
	}{
		{"Port zero", func(c *ReservesServerConfig) { c.Port = 0 }, "port"},
		{"Port too large", func(c *ReservesServerConfig) { c.Port = 70000 }, "port"},
		{"Unknown algorithm", func(c *ReservesServerConfig) { c.HashAlgorithm = "md5" }, "hashAlgorithm"},
		{"Empty leaf tag", func(c *ReservesServerConfig) { c.LeafTag = "" }, "leafTag"},
		{"Empty branch tag", func(c *ReservesServerConfig) { c.BranchTag = "" }, "branchTag"},
		{"Unknown leaf encoding", func(c *ReservesServerConfig) { c.LeafEncoding = "quoted" }, "leafEncoding"},
		{"Unknown source", func(c *ReservesServerConfig) { c.Source.Type = "s3" }, "source.type"},
		{"File source without path", func(c *ReservesServerConfig) { c.Source.Type = SourceType_File }, "source.recordsFile"},
		{"Badger source without path", func(c *ReservesServerConfig) { c.Source.Type = SourceType_Badger }, "source.badgerPath"},
		{"Redis source without address", func(c *ReservesServerConfig) { c.Source.Type = SourceType_Redis }, "source.redis.address"},
		{"Redis db out of range", func(c *ReservesServerConfig) {
			c.Source.Type = SourceType_Redis
			c.Source.Redis = &RedisConfig{Address: "localhost:6379", DB: 16}
		}, "source.redis.db"},
		{"Signed root without issuer", func(c *ReservesServerConfig) {
			c.SignedRoot = true
			c.Issuer = ""
		}, "issuer"},
		{"Negative rate limit", func(c *ReservesServerConfig) { c.RateLimit = -1 }, "rateLimit"},
		{"Rate limit without burst", func(c *ReservesServerConfig) {
			c.RateLimit = 10
			c.RateBurst = 0
		}, "rateBurst"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultReservesServerConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantField)
		})
	}
}

func TestReservesServerConfig_ValidateAggregatesErrors(t *testing.T) {
	cfg := NewDefaultReservesServerConfig()
	cfg.Port = 0
	cfg.LeafTag = ""
	cfg.HashAlgorithm = "md5"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
	assert.Contains(t, err.Error(), "leafTag")
	assert.Contains(t, err.Error(), "hashAlgorithm")
}

func TestReservesServerConfig_ValidSources(t *testing.T) {
	testCases := []struct {
		name   string
		source SourceConfig
	}{
		{"Demo", SourceConfig{Type: SourceType_Demo}},
		{"File", SourceConfig{Type: SourceType_File, RecordsFile: "records.csv"}},
		{"Badger", SourceConfig{Type: SourceType_Badger, BadgerPath: "/tmp/reserves"}},
		{"Redis", SourceConfig{Type: SourceType_Redis, Redis: &RedisConfig{Address: "localhost:6379"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultReservesServerConfig()
			cfg.Source = tc.source
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestReservesServerConfig_EqualTagsAllowed(t *testing.T) {
	cfg := NewDefaultReservesServerConfig()
	cfg.LeafTag = "Bitcoin_Transaction"
	cfg.BranchTag = "Bitcoin_Transaction"

	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.TagsEqual())
}

func TestReservesClientConfig_Validate(t *testing.T) {
	valid := ReservesClientConfig{
		ServerURL:     "http://localhost:3000",
		HashAlgorithm: "sha256",
		LeafTag:       DefaultLeafTag,
		BranchTag:     DefaultBranchTag,
	}
	require.NoError(t, valid.Validate())

	noURL := valid
	noURL.ServerURL = ""
	assert.Error(t, noURL.Validate())

	badScheme := valid
	badScheme.ServerURL = "ftp://localhost"
	assert.Error(t, badScheme.Validate())

	badAlg := valid
	badAlg.HashAlgorithm = "crc32"
	assert.Error(t, badAlg.Validate())
}

func TestGetSupportedSourceTypesString(t *testing.T) {
	assert.Equal(t, "demo, file, badger, redis", GetSupportedSourceTypesString())
}
