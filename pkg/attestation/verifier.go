package attestation

import (
	"encoding/json"
	"fmt"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// RootClaims is the decoded body of a signed root token
type RootClaims struct {
	Issuer        string `json:"iss"`
	IssuedAt      int64  `json:"iat"`
	Root          string `json:"root"`
	HashAlgorithm string `json:"hash_algorithm"`
	LeafCount     int    `json:"leaf_count"`
	TotalBalance  string `json:"total_balance"`
	LeafEncoding  string `json:"leaf_encoding"`
}

// VerifyRootToken checks the token signature against keySet, validates the
// registered claims and returns the root claims.
func VerifyRootToken(tokenString string, keySet jwk.Set) (*RootClaims, error) {
	if keySet == nil {
		return nil, fmt.Errorf("key set cannot be nil")
	}

	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKeySet(keySet),
		jwt.WithValidate(true),
	)
	if err != nil {
		return nil, fmt.Errorf("token parsing/verification failed: %w", err)
	}

	tokenBytes, err := json.Marshal(token)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token to JSON: %w", err)
	}
	claims := &RootClaims{}
	if err := json.Unmarshal(tokenBytes, claims); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token JSON to RootClaims: %w", err)
	}

	if claims.Root == "" {
		return nil, fmt.Errorf("root claim not found in token")
	}
	if claims.HashAlgorithm == "" {
		return nil, fmt.Errorf("hash_algorithm claim not found in token")
	}
	return claims, nil
}
