package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/attestation"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/codec"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/hashing"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/merkle"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/reserves"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/types"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"go.uber.org/zap"
)

const (
	DefaultTimeout     = 10 * time.Second
	DefaultJWKSRefresh = 15 * time.Minute
	maxErrorBodyBytes  = 4096
	jwksPath           = "/.well-known/jwks.json"
)

// ErrNotFound is returned when the server has no record for the account
var ErrNotFound = errors.New("account not found")

// ClientConfig holds the configuration for the reserves client
type ClientConfig struct {
	ServerURL  string
	HTTPClient *http.Client
	Logger     *zap.Logger
	// JWKSRefreshInterval controls how often the cached signing keys are refreshed
	JWKSRefreshInterval time.Duration
}

// Client talks to a proof service
type Client struct {
	baseURL      string
	httpClient   *http.Client
	logger       *zap.Logger
	jwksInterval time.Duration

	jwksMu     sync.Mutex
	jwksSet    jwk.Set
	jwksCancel context.CancelFunc
}

// VerifyParams are the tree parameters a proof is replayed with
type VerifyParams struct {
	Algorithm    hashing.HashAlgorithm
	LeafTag      []byte
	BranchTag    []byte
	LeafEncoding reserves.LeafEncoding
}

// AccountVerification is the outcome of VerifyAccount
type AccountVerification struct {
	ID        uint64
	Balance   uint64
	Root      string
	LeafIndex int
	LeafCount int
	Valid     bool
}

func NewClient(config *ClientConfig) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.ServerURL == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	if config.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	parsed, err := url.Parse(config.ServerURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", config.ServerURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	interval := config.JWKSRefreshInterval
	if interval <= 0 {
		interval = DefaultJWKSRefresh
	}

	return &Client{
		baseURL:      strings.TrimRight(config.ServerURL, "/"),
		httpClient:   httpClient,
		logger:       config.Logger,
		jwksInterval: interval,
	}, nil
}

// Close stops the background JWKS refresher, if one was started
func (c *Client) Close() {
	c.jwksMu.Lock()
	defer c.jwksMu.Unlock()
	if c.jwksCancel != nil {
		c.jwksCancel()
		c.jwksCancel = nil
		c.jwksSet = nil
	}
}

// GetRoot returns the served root as "0x" hex
func (c *Client) GetRoot(ctx context.Context) (string, error) {
	var root string
	if err := c.getJSON(ctx, "/root", &root); err != nil {
		return "", err
	}
	return root, nil
}

// GetProof fetches the balance and proof for an account
func (c *Client) GetProof(ctx context.Context, id uint64) (*types.ProofResponse, error) {
	var resp types.ProofResponse
	if err := c.getJSON(ctx, "/proof/"+strconv.FormatUint(id, 10), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetSummary(ctx context.Context) (*types.SummaryResponse, error) {
	var resp types.SummaryResponse
	if err := c.getJSON(ctx, "/summary", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSignedRoot returns the compact JWT over the served root
func (c *Client) GetSignedRoot(ctx context.Context) (string, error) {
	var resp types.SignedRootResponse
	if err := c.getJSON(ctx, "/root/signed", &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// VerifyAccount fetches the root and the account proof, then replays the
// proof locally. A proof that does not verify is reported with Valid=false
// and no error.
func (c *Client) VerifyAccount(ctx context.Context, id uint64, params *VerifyParams) (*AccountVerification, error) {
	if params == nil || params.Algorithm == nil {
		return nil, fmt.Errorf("verify params with a hash algorithm are required")
	}
	encoding := params.LeafEncoding
	if encoding == "" {
		encoding = reserves.DefaultLeafEncoding
	}

	rootHex, err := c.GetRoot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch root: %w", err)
	}
	root, err := codec.DecodeRoot(params.Algorithm, rootHex)
	if err != nil {
		return nil, err
	}

	resp, err := c.GetProof(ctx, id)
	if err != nil {
		return nil, err
	}
	balance, proof, err := codec.DecodeProof(params.Algorithm, resp)
	if err != nil {
		return nil, fmt.Errorf("malformed proof: %w", err)
	}

	valid := merkle.VerifyProof(params.Algorithm, params.LeafTag, params.BranchTag, encoding.Serialize(id, balance), proof, root)
	c.logger.Sugar().Infow("Verified account proof",
		"id", id,
		"balance", balance,
		"root", rootHex,
		"valid", valid,
	)

	return &AccountVerification{
		ID:        id,
		Balance:   balance,
		Root:      rootHex,
		LeafIndex: proof.LeafIndex,
		LeafCount: proof.LeafCount,
		Valid:     valid,
	}, nil
}

// VerifySignedRoot checks the signed root against the server's published
// keys and confirms it commits to the root currently served.
func (c *Client) VerifySignedRoot(ctx context.Context) (*attestation.RootClaims, error) {
	keySet, err := c.keySet(ctx)
	if err != nil {
		return nil, err
	}

	token, err := c.GetSignedRoot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch signed root: %w", err)
	}
	claims, err := attestation.VerifyRootToken(token, keySet)
	if err != nil {
		return nil, err
	}

	root, err := c.GetRoot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch root: %w", err)
	}
	if !strings.EqualFold(claims.Root, root) {
		return nil, fmt.Errorf("signed root %s does not match served root %s", claims.Root, root)
	}

	c.logger.Sugar().Infow("Verified signed root", "root", root, "issuer", claims.Issuer, "issued_at", claims.IssuedAt)
	return claims, nil
}

// keySet lazily registers the server's JWKS in a refreshing cache
func (c *Client) keySet(ctx context.Context) (jwk.Set, error) {
	c.jwksMu.Lock()
	defer c.jwksMu.Unlock()

	if c.jwksSet != nil {
		return c.jwksSet, nil
	}

	cacheCtx, cancel := context.WithCancel(context.Background())
	set, err := NewJWKCache(cacheCtx, ctx, c.baseURL+jwksPath, c.jwksInterval)
	if err != nil {
		cancel()
		return nil, err
	}
	c.jwksSet = set
	c.jwksCancel = cancel
	return set, nil
}

// NewJWKCache registers jwkURL in a cache that lives as long as cacheCtx and
// fetches it once using fetchCtx.
func NewJWKCache(cacheCtx, fetchCtx context.Context, jwkURL string, refreshInterval time.Duration) (jwk.Set, error) {
	cache, err := jwk.NewCache(cacheCtx, httprc.NewClient())
	if err != nil {
		return nil, fmt.Errorf("failed to create jwk cache: %w", err)
	}

	if err := cache.Register(fetchCtx, jwkURL, jwk.WithConstantInterval(refreshInterval)); err != nil {
		return nil, fmt.Errorf("failed to register jwk location: %w", err)
	}

	if _, err := cache.Refresh(fetchCtx, jwkURL); err != nil {
		return nil, fmt.Errorf("failed to fetch on startup: %w", err)
	}

	return cache.CachedSet(jwkURL)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		c.logger.Sugar().Debugw("Server returned error",
			"path", path,
			"status_code", resp.StatusCode,
			"body", strings.TrimSpace(string(body)),
		)
		if resp.StatusCode == http.StatusNotFound && strings.HasPrefix(path, "/proof/") {
			return fmt.Errorf("%w: %s", ErrNotFound, strings.TrimSpace(string(body)))
		}
		return fmt.Errorf("server returned %d for %s: %s", resp.StatusCode, path, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
