package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/powledger/foundation/blockchain/worker"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// fetcher is a fake PeerFetcher that reports the same chain for every peer.
type fetcher struct {
	chain []database.Block
}

func (f fetcher) Fetch(ctx context.Context, pr peer.Peer) (database.ChainData, error) {
	if f.chain == nil {
		return database.ChainData{}, errors.New("no chain")
	}
	return database.NewChainData(f.chain), nil
}

func newState(t *testing.T, f state.PeerFetcher) *state.State {
	strg, err := memory.New()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct storage: %v", failed, err)
	}

	st, err := state.New(state.Config{
		Host:          "localhost:9080",
		Storage:       strg,
		Difficulty:    2,
		MiningWorkers: 2,
		Fetcher:       f,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct state: %v", failed, err)
	}

	return st
}

// waitForLength polls the chain until it reaches the length or time runs out.
func waitForLength(st *state.State, length int) bool {
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if len(st.RetrieveChain()) >= length {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// =============================================================================

func Test_AutoMine(t *testing.T) {
	t.Log("Given the need to mine pending transactions in the background.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen auto mining is turned on.", testID)
		{
			st := newState(t, fetcher{})
			worker.Run(st, worker.Config{ConsensusInterval: time.Hour, AutoMine: true}, nil)
			defer st.Shutdown()

			if _, err := st.SubmitTransaction(database.NewTx("bill", "jill", 10)); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to submit a transaction: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to submit a transaction.", success, testID)

			if !waitForLength(st, 2) {
				t.Fatalf("\t%s\tTest %d:\tShould mine a block for the transaction.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould mine a block for the transaction.", success, testID)

			if n := st.QueryMempoolLength(); n != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould have an empty pending pool: got %d", failed, testID, n)
			}
			t.Logf("\t%s\tTest %d:\tShould have an empty pending pool.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen auto mining is turned off.", testID)
		{
			st := newState(t, fetcher{})
			worker.Run(st, worker.Config{ConsensusInterval: time.Hour}, nil)

			if _, err := st.SubmitTransaction(database.NewTx("bill", "jill", 10)); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to submit a transaction: %v", failed, testID, err)
			}

			time.Sleep(100 * time.Millisecond)
			st.Shutdown()

			if n := len(st.RetrieveChain()); n != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould not mine a block: got %d blocks", failed, testID, n)
			}
			t.Logf("\t%s\tTest %d:\tShould not mine a block.", success, testID)

			if n := st.QueryMempoolLength(); n != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould keep the transaction pending: got %d", failed, testID, n)
			}
			t.Logf("\t%s\tTest %d:\tShould keep the transaction pending.", success, testID)
		}
	}
}

func Test_Consensus(t *testing.T) {
	t.Log("Given the need to adopt a longer chain from the network.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a peer has a longer valid chain.", testID)
		{
			remote := newState(t, fetcher{})
			for i := range 3 {
				if _, err := remote.SubmitTransaction(database.NewTx("bill", "jill", float64(i))); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to submit a transaction: %v", failed, testID, err)
				}
				if _, _, err := remote.MineNewBlock(context.Background()); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to mine a block: %v", failed, testID, err)
				}
			}
			chain := remote.RetrieveChain()

			st := newState(t, fetcher{chain: chain})
			if err := st.AddKnownPeers([]string{"http://peer1:8080"}); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to add a peer: %v", failed, testID, err)
			}

			worker.Run(st, worker.Config{ConsensusInterval: time.Hour}, nil)
			defer st.Shutdown()

			if !waitForLength(st, len(chain)) {
				t.Fatalf("\t%s\tTest %d:\tShould replace the local chain on startup.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould replace the local chain on startup.", success, testID)

			latest, err := st.RetrieveLatestBlock()
			if err != nil || latest.Hash() != chain[len(chain)-1].Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould have the peer's tip: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould have the peer's tip.", success, testID)
		}
	}
}
