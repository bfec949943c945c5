package testutil

import (
	"net/http/httptest"
	"testing"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/attestation"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/reserves"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/server"
	"github.com/stretchr/testify/require"
)

// TestServer is a proof service running on a local httptest listener
type TestServer struct {
	Server *httptest.Server
	URL    string
	DB     *reserves.Database
	Signer *attestation.RootSigner
}

// TestServerOptions configures NewTestServer
type TestServerOptions struct {
	DB         *reserves.Database
	SignedRoot bool
	Config     server.Config
}

// NewTestServer starts a proof service for the demo database, or opts.DB
// when set. The listener is closed when the test ends.
func NewTestServer(t *testing.T, opts *TestServerOptions) *TestServer {
	t.Helper()
	if opts == nil {
		opts = &TestServerOptions{}
	}

	db := opts.DB
	if db == nil {
		db = NewDemoDatabase(t, reserves.DefaultLeafEncoding)
	}

	var signer *attestation.RootSigner
	if opts.SignedRoot {
		signer = NewTestSigner(t, "test-issuer")
	}

	s, err := server.NewServer(opts.Config, db, signer, NewTestLogger(t))
	require.NoError(t, err)

	ts := httptest.NewServer(s.GetHandler())
	t.Cleanup(ts.Close)

	return &TestServer{
		Server: ts,
		URL:    ts.URL,
		DB:     db,
		Signer: signer,
	}
}
