// Package reserves binds an immutable account→balance store to the merkle
// tree committing to it.
package reserves

import (
	"errors"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/hashing"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/merkle"
)

var (
	// ErrAccountNotFound is returned when an account has no balance in the store
	ErrAccountNotFound = errors.New("account not found")

	// ErrDuplicateAccount is returned when the same account id appears twice in the input
	ErrDuplicateAccount = errors.New("duplicate account id")

	// ErrInternalInconsistency means the store holds a balance the tree does
	// not commit to. Store and tree were built from different inputs.
	ErrInternalInconsistency = errors.New("balance present in store but missing from merkle tree")
)

// Options configures how a Database commits its records
type Options struct {
	LeafTag      []byte
	BranchTag    []byte
	Algorithm    hashing.HashAlgorithm
	LeafEncoding LeafEncoding
	Logger       *zap.Logger
}

// Database is the proof-of-reserves record store. It is built once and is
// safe for concurrent readers without locking.
type Database struct {
	balances map[uint64]uint64
	tree     *merkle.Tree
	encoding LeafEncoding
	total    *big.Int
	logger   *zap.Logger
}

// New commits records, in the given order, to a merkle tree and indexes their
// balances by account id.
func New(records []Record, opts Options) (*Database, error) {
	if opts.Algorithm == nil {
		opts.Algorithm = hashing.MustLookup(hashing.DefaultAlgorithm)
	}
	if opts.LeafEncoding == "" {
		opts.LeafEncoding = DefaultLeafEncoding
	}
	if _, err := ParseLeafEncoding(string(opts.LeafEncoding)); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	balances := make(map[uint64]uint64, len(records))
	values := make([][]byte, len(records))
	total := new(big.Int)

	for i, r := range records {
		if _, exists := balances[r.ID]; exists {
			return nil, fmt.Errorf("%w: %d (position %d)", ErrDuplicateAccount, r.ID, i)
		}
		balances[r.ID] = r.Balance
		values[i] = opts.LeafEncoding.Serialize(r.ID, r.Balance)
		total.Add(total, new(big.Int).SetUint64(r.Balance))
	}

	tree, err := merkle.Build(values, opts.LeafTag, opts.BranchTag, opts.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("failed to build reserves tree: %w", err)
	}

	opts.Logger.Sugar().Infow("Reserves database built",
		"accounts", len(records),
		"root", tree.Root().Hex(),
		"depth", tree.Depth(),
		"hash_algorithm", opts.Algorithm.Name(),
		"leaf_encoding", opts.LeafEncoding,
		"total_balance", total.String(),
	)

	return &Database{
		balances: balances,
		tree:     tree,
		encoding: opts.LeafEncoding,
		total:    total,
		logger:   opts.Logger,
	}, nil
}

// Balance returns the balance of an account
func (db *Database) Balance(id uint64) (uint64, bool) {
	balance, ok := db.balances[id]
	return balance, ok
}

// Root returns the published commitment
func (db *Database) Root() hashing.Digest {
	return db.tree.Root()
}

// LeafCount returns the number of committed accounts
func (db *Database) LeafCount() int {
	return db.tree.LeafCount()
}

// TotalBalance returns the sum of all committed balances
func (db *Database) TotalBalance() *big.Int {
	return new(big.Int).Set(db.total)
}

// Algorithm returns the hash algorithm of the underlying tree
func (db *Database) Algorithm() hashing.HashAlgorithm {
	return db.tree.Algorithm()
}

// LeafEncoding returns the record encoding the leaves were built with
func (db *Database) LeafEncoding() LeafEncoding {
	return db.encoding
}

// LeafTag returns the leaf domain tag
func (db *Database) LeafTag() []byte {
	return db.tree.LeafTag()
}

// BranchTag returns the branch domain tag
func (db *Database) BranchTag() []byte {
	return db.tree.BranchTag()
}

// Proof returns the inclusion proof and balance for an account.
func (db *Database) Proof(id uint64) (*merkle.Proof, uint64, error) {
	balance, ok := db.balances[id]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %d", ErrAccountNotFound, id)
	}

	proof, ok := db.tree.Proof(db.encoding.Serialize(id, balance))
	if !ok {
		db.logger.Sugar().Errorw("Stored balance has no leaf in the reserves tree",
			"account_id", id,
			"balance", balance,
			"root", db.tree.Root().Hex(),
		)
		return nil, 0, fmt.Errorf("%w: account %d", ErrInternalInconsistency, id)
	}

	return proof, balance, nil
}

// Verify checks a proof for (id, balance) against root using this database's
// tags, algorithm and leaf encoding
func (db *Database) Verify(id, balance uint64, proof *merkle.Proof, root hashing.Digest) bool {
	return merkle.VerifyProof(db.tree.Algorithm(), db.tree.LeafTag(), db.tree.BranchTag(),
		db.encoding.Serialize(id, balance), proof, root)
}
