package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
)

// Set of values used to construct and identify the genesis block.
const (
	GenesisIndex        uint64 = 1
	GenesisPreviousHash string = "0"
	GenesisProof        int64  = 1
)

// Set of error variables for chain handling.
var (
	ErrEmptyChain   = errors.New("chain has no genesis block")
	ErrChainChanged = errors.New("chain tip changed while the block was being mined")
)

// =============================================================================

// Block represents a group of transactions batched together and sealed by
// a proof of work. Fields are declared in key order so the JSON encoding
// used for hashing is the same as a sorted-key encoding.
type Block struct {
	Index        uint64 `json:"index"`         // Position in the chain, starting at 1.
	PreviousHash string `json:"previous_hash"` // Hash of the previous block in the chain.
	Proof        int64  `json:"proof"`         // Nonce that solves the puzzle against the previous proof.
	TimeStamp    uint64 `json:"timestamp"`     // Time the block was created (unix seconds).
	Transactions []Tx   `json:"transactions"`  // Transactions drained from the pending pool.
}

// Genesis constructs the first block of a chain.
func Genesis() Block {
	return Block{
		Index:        GenesisIndex,
		PreviousHash: GenesisPreviousHash,
		Proof:        GenesisProof,
		TimeStamp:    uint64(time.Now().UTC().Unix()),
		Transactions: []Tx{},
	}
}

// IsGenesis reports if the block carries the genesis sentinel values.
func (b Block) IsGenesis() bool {
	return b.Index == GenesisIndex && b.PreviousHash == GenesisPreviousHash && b.Proof == GenesisProof
}

// Hash returns the unique hash for the Block.
func (b Block) Hash() string {

	// A nil list encodes as null and an empty list as [], so normalize to
	// keep blocks that round trip through JSON hashing the same.
	if b.Transactions == nil {
		b.Transactions = []Tx{}
	}

	return digest.Hash(b)
}

// clone returns a copy of the block that shares no memory with the original.
func (b Block) clone() Block {
	txs := make([]Tx, len(b.Transactions))
	copy(txs, b.Transactions)
	b.Transactions = txs

	return b
}

// =============================================================================

// ChainData represents the chain as it is exchanged between nodes.
type ChainData struct {
	Chain  []Block `json:"chain"`
	Length int     `json:"length"`
}

// NewChainData constructs the value to send over the network.
func NewChainData(chain []Block) ChainData {
	return ChainData{
		Chain:  chain,
		Length: len(chain),
	}
}

// =============================================================================

// ValidateChain walks the chain and validates every block against its
// parent. It stops at the first violation. An empty or genesis only chain
// is valid. Nothing is modified, so it's safe to use on data from peers.
func ValidateChain(chain []Block, difficulty uint) error {
	for i := 1; i < len(chain); i++ {
		if err := ValidateBlock(chain[i-1], chain[i], difficulty); err != nil {
			return err
		}
	}

	return nil
}

// IsValid is a convenience function over ValidateChain.
func IsValid(chain []Block, difficulty uint) bool {
	return ValidateChain(chain, difficulty) == nil
}

// ValidateBlock takes a block and validates it against its parent.
func ValidateBlock(previousBlock Block, block Block, difficulty uint) error {
	if !pow.IsSolved(block.Proof, previousBlock.Proof, difficulty) {
		return fmt.Errorf("block[%d]: proof %d does not solve the puzzle for parent proof %d", block.Index, block.Proof, previousBlock.Proof)
	}

	if hash := previousBlock.Hash(); block.PreviousHash != hash {
		return fmt.Errorf("block[%d]: parent block hash doesn't match, got %s, exp %s", block.Index, block.PreviousHash, hash)
	}

	if block.Index != previousBlock.Index+1 {
		return fmt.Errorf("block[%d]: this block is not the next index, exp %d", block.Index, previousBlock.Index+1)
	}

	return nil
}
