// Package attestation signs the committed reserves root so clients can
// check that the root they were served is the one the operator published.
package attestation

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"time"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/reserves"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Private claim names carried by a signed root token
const (
	ClaimRoot          = "root"
	ClaimHashAlgorithm = "hash_algorithm"
	ClaimLeafCount     = "leaf_count"
	ClaimTotalBalance  = "total_balance"
	ClaimLeafEncoding  = "leaf_encoding"
)

// RootSigner issues ES256 tokens over a reserves root.
type RootSigner struct {
	privateKey jwk.Key
	publicSet  jwk.Set
	keyID      string
	issuer     string
	logger     *zap.Logger
	now        func() time.Time
}

// NewRootSigner wraps an ECDSA P-256 key. The key id is derived from the
// SHA-256 of the DER encoded public key.
func NewRootSigner(key *ecdsa.PrivateKey, issuer string, logger *zap.Logger) (*RootSigner, error) {
	if key == nil {
		return nil, fmt.Errorf("signing key cannot be nil")
	}
	if key.Curve != elliptic.P256() {
		return nil, fmt.Errorf("signing key must be on P-256, got %s", key.Curve.Params().Name)
	}
	if issuer == "" {
		return nil, fmt.Errorf("issuer cannot be empty")
	}

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal public key")
	}
	digest := sha256.Sum256(der)
	keyID := base64.RawURLEncoding.EncodeToString(digest[:])

	publicKey, err := jwk.Import(&key.PublicKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to import public key")
	}

	if err := publicKey.Set(jwk.KeyIDKey, keyID); err != nil {
		return nil, err
	}
	if err := publicKey.Set(jwk.AlgorithmKey, jwa.ES256()); err != nil {
		return nil, err
	}
	if err := publicKey.Set(jwk.KeyUsageKey, "sig"); err != nil {
		return nil, err
	}
	publicSet := jwk.NewSet()
	if err := publicSet.AddKey(publicKey); err != nil {
		return nil, err
	}

	privateKey, err := jwk.Import(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to import private key")
	}
	if err := privateKey.Set(jwk.KeyIDKey, keyID); err != nil {
		return nil, err
	}
	if err := privateKey.Set(jwk.AlgorithmKey, jwa.ES256()); err != nil {
		return nil, err
	}

	return &RootSigner{
		privateKey: privateKey,
		publicSet:  publicSet,
		keyID:      keyID,
		issuer:     issuer,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// LoadRootSigner reads a PEM encoded key from path, or generates an
// ephemeral key when path is empty.
func LoadRootSigner(path string, issuer string, logger *zap.Logger) (*RootSigner, error) {
	var key *ecdsa.PrivateKey
	if path == "" {
		generated, err := GenerateKey()
		if err != nil {
			return nil, err
		}
		logger.Sugar().Warnw("No signing key configured, using an ephemeral key; signed roots will not verify after restart")
		key = generated
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read signing key %s", path)
		}
		key, err = ParsePrivateKeyPEM(data)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse signing key %s", path)
		}
	}

	signer, err := NewRootSigner(key, issuer, logger)
	if err != nil {
		return nil, err
	}
	logger.Sugar().Infow("Root signer initialized", "kid", signer.KeyID(), "issuer", issuer)
	return signer, nil
}

// GenerateKey creates a new P-256 signing key
func GenerateKey() (*ecdsa.PrivateKey, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate signing key")
	}
	return key, nil
}

// ParsePrivateKeyPEM accepts "EC PRIVATE KEY" (SEC 1) and "PRIVATE KEY"
// (PKCS #8) blocks.
func ParsePrivateKeyPEM(data []byte) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}

	switch block.Type {
	case "EC PRIVATE KEY":
		return x509.ParseECPrivateKey(block.Bytes)
	case "PRIVATE KEY":
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		key, ok := parsed.(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("PKCS #8 key is %T, expected ECDSA", parsed)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("unsupported PEM block type %q", block.Type)
	}
}

// EncodePrivateKeyPEM renders key as an "EC PRIVATE KEY" PEM block
func EncodePrivateKeyPEM(key *ecdsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal signing key")
	}
	return pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}), nil
}

func (s *RootSigner) KeyID() string {
	return s.keyID
}

func (s *RootSigner) Issuer() string {
	return s.issuer
}

// PublicJWKS returns the set holding the verification key
func (s *RootSigner) PublicJWKS() jwk.Set {
	return s.publicSet
}

// SignRoot returns a compact JWT committing to db's root and totals
func (s *RootSigner) SignRoot(db *reserves.Database) (string, error) {
	if db == nil {
		return "", fmt.Errorf("database cannot be nil")
	}

	token := jwt.New()
	claims := map[string]any{
		jwt.IssuerKey:      s.issuer,
		jwt.IssuedAtKey:    s.now(),
		ClaimRoot:          db.Root().Hex(),
		ClaimHashAlgorithm: db.Algorithm().Name(),
		ClaimLeafCount:     db.LeafCount(),
		ClaimTotalBalance:  db.TotalBalance().String(),
		ClaimLeafEncoding:  string(db.LeafEncoding()),
	}
	for key, value := range claims {
		if err := token.Set(key, value); err != nil {
			return "", errors.Wrapf(err, "failed to set claim %s", key)
		}
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.ES256(), s.privateKey))
	if err != nil {
		return "", errors.Wrap(err, "failed to sign root token")
	}

	s.logger.Sugar().Debugw("Signed reserves root", "root", db.Root().Hex(), "kid", s.keyID)
	return string(signed), nil
}
