package state

import (
	"context"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
)

// MineNewBlock solves the puzzle against the latest block and creates the
// next block with every pending transaction. The search runs without any
// lock held. If the chain changes before the block is written,
// database.ErrChainChanged is returned.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, time.Duration, error) {
	s.evHandler("state: MineNewBlock: MINING: started")
	defer s.evHandler("state: MineNewBlock: MINING: completed")

	tip, err := s.db.LatestBlock()
	if err != nil {
		return database.Block{}, 0, err
	}
	previousHash := tip.Hash()

	s.evHandler("state: MineNewBlock: MINING: perform POW: prevBlk[%d]: prevProof[%d]: difficulty[%d]", tip.Index, tip.Proof, s.difficulty)

	t := time.Now()
	proof, err := pow.SolveParallel(ctx, tip.Proof, s.difficulty, s.miningWorkers)
	duration := time.Since(t)
	if err != nil {
		s.evHandler("state: MineNewBlock: MINING: CANCELLED: %s", err)
		return database.Block{}, duration, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, duration, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: SOLVED: proof[%d]: duration[%v]", proof, duration)

	block, err := s.db.CreateBlockOnTip(proof, previousHash)
	if err != nil {
		return database.Block{}, duration, err
	}

	s.evHandler("ledger: block mined: blk[%d]: trans[%d]: proof[%d]", block.Index, len(block.Transactions), block.Proof)

	return block, duration, nil
}
