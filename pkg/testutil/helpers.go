package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/attestation"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/config"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/hashing"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/logger"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/records/memory"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/reserves"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// DemoRootOpen is the root of the demo accounts with default tags, sha256
// and the open leaf encoding.
const DemoRootOpen = "0x71d764d10a96143f444d0268b77f256237700bba7b336fe4add38c35443d9b78"

// DemoRootClosed is the same commitment with the closed leaf encoding.
const DemoRootClosed = "0xb1231de33da17c23cebd80c104b88198e0914b0463d0e14db163605b904a7ba3"

// NewTestLogger returns a non-debug logger
func NewTestLogger(t *testing.T) *zap.Logger {
	t.Helper()
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	require.NoError(t, err)
	return l
}

// DemoOptions returns the default tree parameters for the given encoding
func DemoOptions(encoding reserves.LeafEncoding) reserves.Options {
	return reserves.Options{
		LeafTag:      []byte(config.DefaultLeafTag),
		BranchTag:    []byte(config.DefaultBranchTag),
		Algorithm:    hashing.MustLookup(hashing.SHA256),
		LeafEncoding: encoding,
	}
}

// NewDemoDatabase builds the eight account demo database
func NewDemoDatabase(t *testing.T, encoding reserves.LeafEncoding) *reserves.Database {
	t.Helper()
	db, err := reserves.New(memory.DemoRecords(), DemoOptions(encoding))
	require.NoError(t, err)
	return db
}

// NewTestSigner returns a signer over a freshly generated key
func NewTestSigner(t *testing.T, issuer string) *attestation.RootSigner {
	t.Helper()
	key, err := attestation.GenerateKey()
	require.NoError(t, err)
	signer, err := attestation.NewRootSigner(key, issuer, zap.NewNop())
	require.NoError(t, err)
	return signer
}

// WriteRecordsFile writes content to name inside a per-test directory
func WriteRecordsFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
