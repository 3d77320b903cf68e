package database_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/memory"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// difficulty keeps mining in these tests short.
const difficulty = 2

func newDatabase(t *testing.T) *database.Database {
	strg, err := memory.New()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct storage: %v", failed, err)
	}

	db, err := database.New(database.Config{Storage: strg, Difficulty: difficulty})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to open the database: %v", failed, err)
	}

	return db
}

func mine(t *testing.T, db *database.Database) database.Block {
	tip, err := db.LatestBlock()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to get the latest block: %v", failed, err)
	}

	proof, err := pow.Solve(context.Background(), tip.Proof, difficulty)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to solve the puzzle: %v", failed, err)
	}

	block, err := db.CreateBlock(proof, tip.Hash())
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create a block: %v", failed, err)
	}

	return block
}

// =============================================================================

func Test_Genesis(t *testing.T) {
	t.Log("Given the need to start a chain with a genesis block.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen opening an empty database.", testID)
		{
			db := newDatabase(t)

			if db.Length() != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould have a single block: got %d", failed, testID, db.Length())
			}
			t.Logf("\t%s\tTest %d:\tShould have a single block.", success, testID)

			genesis, err := db.LatestBlock()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to get the tip: %v", failed, testID, err)
			}

			if genesis.Index != 1 || genesis.PreviousHash != "0" || genesis.Proof != 1 || !genesis.IsGenesis() {
				t.Logf("\t%s\tTest %d:\tgot: %+v", failed, testID, genesis)
				t.Fatalf("\t%s\tTest %d:\tShould have the genesis sentinel values.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have the genesis sentinel values.", success, testID)

			if !database.IsValid(db.Copy(), difficulty) || !database.IsValid(nil, difficulty) {
				t.Fatalf("\t%s\tTest %d:\tShould treat empty and genesis only chains as valid.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould treat empty and genesis only chains as valid.", success, testID)
		}
	}
}

func Test_CreateBlock(t *testing.T) {
	type table struct {
		name string
		txs  []database.Tx
	}

	tt := []table{
		{name: "empty", txs: nil},
		{
			name: "basic",
			txs: []database.Tx{
				database.NewTx("bill", "jill", 10),
				database.NewTx("jill", "kate", 2.5),
				database.NewTx("kate", "bill", 100),
			},
		},
	}

	t.Log("Given the need to move pending transactions into blocks.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling %d transactions.", testID, len(tst.txs))
			{
				f := func(t *testing.T) {
					db := newDatabase(t)

					for _, tx := range tst.txs {
						index, err := db.AddTransaction(tx)
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to add a transaction: %v", failed, testID, err)
						}

						if index != 2 {
							t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, index)
							t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, 2)
							t.Fatalf("\t%s\tTest %d:\tShould get the index of the next block.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould be able to add transactions.", success, testID)

					block := mine(t, db)

					if len(block.Transactions) != len(tst.txs) {
						t.Fatalf("\t%s\tTest %d:\tShould get every pending transaction in the block: got %d", failed, testID, len(block.Transactions))
					}
					for i, tx := range block.Transactions {
						if tx != tst.txs[i] {
							t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, tx)
							t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.txs[i])
							t.Fatalf("\t%s\tTest %d:\tShould keep the submission order.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould get every pending transaction in submission order.", success, testID)

					if n := len(db.PendingTransactions()); n != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould have an empty pool after the block: got %d", failed, testID, n)
					}
					t.Logf("\t%s\tTest %d:\tShould have an empty pool after the block.", success, testID)

					mine(t, db)
					mine(t, db)

					for i, block := range db.Copy() {
						if block.Index != uint64(i)+1 {
							t.Fatalf("\t%s\tTest %d:\tShould have contiguous indexes: block %d has index %d", failed, testID, i, block.Index)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould have contiguous indexes.", success, testID)

					if err := database.ValidateChain(db.Copy(), difficulty); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould have a valid chain: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould have a valid chain.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_Tamper(t *testing.T) {
	type table struct {
		name   string
		mutate func(chain []database.Block)
	}

	tt := []table{
		{name: "amount", mutate: func(chain []database.Block) { chain[1].Transactions[0].Amount = 1_000 }},
		{name: "receiver", mutate: func(chain []database.Block) { chain[2].Transactions[0].Receiver = "eve" }},
		{name: "proof", mutate: func(chain []database.Block) { chain[2].Proof++ }},
		{name: "previous-hash", mutate: func(chain []database.Block) { chain[3].PreviousHash = chain[1].Hash() }},
		{name: "index", mutate: func(chain []database.Block) { chain[1].Index = 7 }},
	}

	t.Log("Given the need to detect a tampered chain.")
	{
		db := newDatabase(t)
		for range 3 {
			db.AddTransaction(database.NewTx("bill", "jill", 10))
			mine(t, db)
		}

		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen changing the %s of a block.", testID, tst.name)
			{
				f := func(t *testing.T) {
					chain := db.Copy()
					if !database.IsValid(chain, difficulty) {
						t.Fatalf("\t%s\tTest %d:\tShould start with a valid chain.", failed, testID)
					}

					tst.mutate(chain)

					if database.IsValid(chain, difficulty) {
						t.Fatalf("\t%s\tTest %d:\tShould find the chain invalid.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould find the chain invalid.", success, testID)

					if !database.IsValid(db.Copy(), difficulty) {
						t.Fatalf("\t%s\tTest %d:\tShould not change the database chain through a copy.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould not change the database chain through a copy.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_Replace(t *testing.T) {
	t.Log("Given the need to replace the chain.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a block was mined against an old tip.", testID)
		{
			db := newDatabase(t)
			tip, _ := db.LatestBlock()

			proof, err := pow.Solve(context.Background(), tip.Proof, difficulty)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to solve the puzzle: %v", failed, testID, err)
			}

			mine(t, db)

			if _, err := db.CreateBlockOnTip(proof, tip.Hash()); !errors.Is(err, database.ErrChainChanged) {
				t.Fatalf("\t%s\tTest %d:\tShould get ErrChainChanged: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get ErrChainChanged.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen comparing chain lengths.", testID)
		{
			local := newDatabase(t)
			mine(t, local)

			remote := newDatabase(t)
			mine(t, remote)

			replaced, err := local.ReplaceChainIfLonger(remote.Copy())
			if err != nil || replaced {
				t.Fatalf("\t%s\tTest %d:\tShould not replace with an equal length chain: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould not replace with an equal length chain.", success, testID)

			mine(t, remote)

			replaced, err = local.ReplaceChainIfLonger(remote.Copy())
			if err != nil || !replaced {
				t.Fatalf("\t%s\tTest %d:\tShould replace with a longer chain: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould replace with a longer chain.", success, testID)

			lTip, _ := local.LatestBlock()
			rTip, _ := remote.LatestBlock()
			if lTip.Hash() != rTip.Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould have the remote tip.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have the remote tip.", success, testID)

			if err := local.ReplaceChain(nil); !errors.Is(err, database.ErrEmptyChain) {
				t.Fatalf("\t%s\tTest %d:\tShould not replace with an empty chain: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould not replace with an empty chain.", success, testID)
		}
	}
}

func Test_Concurrency(t *testing.T) {
	const txs = 300
	const blocks = 20

	t.Log("Given the need to share the chain and pending pool between goroutines.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen submissions race mining and chain replacement.", testID)
		{
			db := newDatabase(t)

			var wg sync.WaitGroup
			wg.Add(3)

			errs := make(chan error, txs+blocks*2)

			go func() {
				defer wg.Done()
				for i := range txs {
					if _, err := db.AddTransaction(database.NewTx("bill", "jill", float64(i))); err != nil {
						errs <- err
					}
				}
			}()

			go func() {
				defer wg.Done()
				for range blocks {
					tip, err := db.LatestBlock()
					if err != nil {
						errs <- err
						return
					}

					proof, err := pow.Solve(context.Background(), tip.Proof, difficulty)
					if err != nil {
						errs <- err
						return
					}

					if _, err := db.CreateBlockOnTip(proof, tip.Hash()); err != nil {
						errs <- err
					}

					// Only this goroutine mints, so the copy is still current.
					chain := db.Copy()
					if _, err := db.ReplaceChainIfLonger(chain); err != nil {
						errs <- err
					}
					if err := db.ReplaceChain(chain); err != nil {
						errs <- err
					}
				}
			}()

			go func() {
				defer wg.Done()
				for range blocks * 10 {
					db.Length()
					db.Copy()
					db.PendingTransactions()
				}
			}()

			wg.Wait()
			close(errs)

			for err := range errs {
				t.Fatalf("\t%s\tTest %d:\tShould not get an error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould not get an error.", success, testID)

			chain := db.Copy()
			if len(chain) != blocks+1 {
				t.Fatalf("\t%s\tTest %d:\tShould have %d blocks: got %d", failed, testID, blocks+1, len(chain))
			}
			t.Logf("\t%s\tTest %d:\tShould have %d blocks.", success, testID, blocks+1)

			seen := make(map[float64]int)
			for _, block := range chain {
				for _, tx := range block.Transactions {
					seen[tx.Amount]++
				}
			}
			for _, tx := range db.PendingTransactions() {
				seen[tx.Amount]++
			}

			for i := range txs {
				if seen[float64(i)] != 1 {
					t.Fatalf("\t%s\tTest %d:\tShould find transaction %d exactly once: got %d", failed, testID, i, seen[float64(i)])
				}
			}
			if len(seen) != txs {
				t.Fatalf("\t%s\tTest %d:\tShould only find the submitted transactions: got %d", failed, testID, len(seen))
			}
			t.Logf("\t%s\tTest %d:\tShould find every transaction exactly once.", success, testID)

			if err := database.ValidateChain(chain, difficulty); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould have a valid chain: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould have a valid chain.", success, testID)
		}
	}
}
