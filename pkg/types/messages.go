package types

// ProofResponse is returned by GET /proof/{id}
type ProofResponse struct {
	Balance   uint64      `json:"balance" cbor:"balance"`
	Proof     []ProofItem `json:"proof" cbor:"proof"`
	LeafIndex int         `json:"leaf_index" cbor:"leaf_index"`
	LeafCount int         `json:"leaf_count" cbor:"leaf_count"`
}

// SummaryResponse is returned by GET /summary
type SummaryResponse struct {
	Root          string `json:"root" cbor:"root"`
	LeafCount     int    `json:"leaf_count" cbor:"leaf_count"`
	TotalBalance  string `json:"total_balance" cbor:"total_balance"` // decimal, may exceed uint64
	HashAlgorithm string `json:"hash_algorithm" cbor:"hash_algorithm"`
	LeafEncoding  string `json:"leaf_encoding" cbor:"leaf_encoding"`
	LeafTag       string `json:"leaf_tag" cbor:"leaf_tag"`
	BranchTag     string `json:"branch_tag" cbor:"branch_tag"`
}

// SignedRootResponse is returned by GET /root/signed
type SignedRootResponse struct {
	Token string `json:"token" cbor:"token"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status string `json:"status" cbor:"status"`
}
