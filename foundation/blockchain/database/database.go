// Package database handles all the lower level support for maintaining the
// chain of blocks and the pool of pending transactions.
package database

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
)

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Storage interface {
	Write(block Block) error
	ReadAll() ([]Block, error)
	Reset(chain []Block) error
	Close() error
}

// Config represents the configuration required to open a database.
type Config struct {
	Storage    Storage
	Difficulty uint
	EvHandler  func(v string, args ...any)
}

// Database manages the chain of blocks and the pending transactions. A
// single mutex covers both so a chain replacement can never interleave
// with a block being created.
type Database struct {
	mu sync.Mutex

	difficulty uint
	chain      []Block
	mempool    *mempool.Mempool[Tx]
	storage    Storage
	evHandler  func(v string, args ...any)
}

// New constructs a database and loads the chain from storage. When storage
// is empty a genesis block is created and written.
func New(cfg Config) (*Database, error) {
	if cfg.Storage == nil {
		return nil, errors.New("storage is required")
	}

	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	blocks, err := cfg.Storage.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading blocks: %w", err)
	}

	switch len(blocks) {
	case 0:
		genesis := Genesis()
		if err := cfg.Storage.Write(genesis); err != nil {
			return nil, fmt.Errorf("writing genesis: %w", err)
		}
		blocks = []Block{genesis}
		ev("database: New: created genesis block: hash[%s]", genesis.Hash())

	default:
		if !blocks[0].IsGenesis() {
			return nil, fmt.Errorf("first stored block is not a genesis block: index[%d]", blocks[0].Index)
		}

		if err := ValidateChain(blocks, cfg.Difficulty); err != nil {
			return nil, fmt.Errorf("stored chain is invalid: %w", err)
		}
		ev("database: New: loaded chain: blocks[%d]", len(blocks))
	}

	db := Database{
		difficulty: cfg.Difficulty,
		chain:      blocks,
		mempool:    mempool.New[Tx](),
		storage:    cfg.Storage,
		evHandler:  ev,
	}

	return &db, nil
}

// Close closes the underlying storage.
func (db *Database) Close() error {
	return db.storage.Close()
}

// Difficulty returns the puzzle difficulty the chain is validated against.
func (db *Database) Difficulty() uint {
	return db.difficulty
}

// =============================================================================

// CreateBlock appends a new block built from the specified proof and previous
// hash. Every pending transaction is moved into the block.
func (db *Database) CreateBlock(proof int64, previousHash string) (Block, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.createBlock(proof, previousHash)
}

// CreateBlockOnTip is like CreateBlock but fails with ErrChainChanged if the
// previous hash no longer matches the latest block. The proof was found
// against that block, so it would be invalid on any other.
func (db *Database) CreateBlockOnTip(proof int64, previousHash string) (Block, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if len(db.chain) == 0 {
		return Block{}, ErrEmptyChain
	}

	if tip := db.chain[len(db.chain)-1]; tip.Hash() != previousHash {
		return Block{}, ErrChainChanged
	}

	return db.createBlock(proof, previousHash)
}

// createBlock does the work for the create calls. The lock must be held.
func (db *Database) createBlock(proof int64, previousHash string) (Block, error) {
	block := Block{
		Index:        uint64(len(db.chain)) + 1,
		PreviousHash: previousHash,
		Proof:        proof,
		TimeStamp:    uint64(time.Now().UTC().Unix()),
		Transactions: db.mempool.Copy(),
	}

	if err := db.storage.Write(block); err != nil {
		return Block{}, fmt.Errorf("writing block: %w", err)
	}

	db.mempool.Truncate()
	db.chain = append(db.chain, block)

	db.evHandler("database: createBlock: blk[%d]: trans[%d]: hash[%s]", block.Index, len(block.Transactions), block.Hash())

	return block.clone(), nil
}

// AddTransaction adds the transaction to the pending pool and returns the
// index of the block that will contain it.
func (db *Database) AddTransaction(tx Tx) (uint64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if len(db.chain) == 0 {
		return 0, ErrEmptyChain
	}

	db.mempool.Add(tx)

	return db.chain[len(db.chain)-1].Index + 1, nil
}

// ReplaceChain swaps the chain for the specified one. The pending pool is
// left alone.
func (db *Database) ReplaceChain(chain []Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.replaceChain(chain)
}

// ReplaceChainIfLonger swaps the chain only if the specified chain is still
// strictly longer than the current one. It reports if the swap happened.
func (db *Database) ReplaceChainIfLonger(chain []Block) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if len(chain) <= len(db.chain) {
		return false, nil
	}

	if err := db.replaceChain(chain); err != nil {
		return false, err
	}

	return true, nil
}

// replaceChain does the work for the replace calls. The lock must be held.
func (db *Database) replaceChain(chain []Block) error {
	if len(chain) == 0 {
		return ErrEmptyChain
	}

	cpy := make([]Block, len(chain))
	for i, block := range chain {
		cpy[i] = block.clone()
	}

	if err := db.storage.Reset(cpy); err != nil {
		return fmt.Errorf("resetting storage: %w", err)
	}

	db.chain = cpy

	db.evHandler("database: replaceChain: blocks[%d]: tip[%s]", len(cpy), cpy[len(cpy)-1].Hash())

	return nil
}

// =============================================================================

// LatestBlock returns the last block in the chain.
func (db *Database) LatestBlock() (Block, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if len(db.chain) == 0 {
		return Block{}, ErrEmptyChain
	}

	return db.chain[len(db.chain)-1].clone(), nil
}

// Length returns the number of blocks in the chain.
func (db *Database) Length() int {
	db.mu.Lock()
	defer db.mu.Unlock()

	return len(db.chain)
}

// Copy returns a copy of the chain.
func (db *Database) Copy() []Block {
	db.mu.Lock()
	defer db.mu.Unlock()

	cpy := make([]Block, len(db.chain))
	for i, block := range db.chain {
		cpy[i] = block.clone()
	}

	return cpy
}

// PendingTransactions returns a copy of the pending pool in submission order.
func (db *Database) PendingTransactions() []Tx {
	return db.mempool.Copy()
}

// PendingCount returns the number of transactions waiting to be mined.
func (db *Database) PendingCount() int {
	return db.mempool.Count()
}
