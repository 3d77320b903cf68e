package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
)

// Resolve asks every known peer for its chain and replaces the local chain
// with the longest valid one, if that chain is strictly longer. Equal length
// chains never win, so the local chain is kept on a tie. A peer that can't
// be reached or reports an invalid chain is skipped. Resolve reports if the
// local chain was replaced.
func (s *State) Resolve(ctx context.Context) (bool, error) {
	s.evHandler("state: Resolve: started")
	defer s.evHandler("state: Resolve: completed")

	peers := s.RetrieveKnownPeers()
	maxLength := s.db.Length()

	// Fetch all the peer chains at the same time. The results keep the
	// peer order so the first seen chain wins between equal candidates.
	type result struct {
		peer peer.Peer
		data database.ChainData
		err  error
	}
	results := make([]result, len(peers))

	var wg sync.WaitGroup
	wg.Add(len(peers))

	for i, pr := range peers {
		go func() {
			defer wg.Done()

			data, err := s.fetcher.Fetch(ctx, pr)
			results[i] = result{peer: pr, data: data, err: err}
		}()
	}

	wg.Wait()

	var winner []database.Block
	for _, res := range results {
		if res.err != nil {
			s.evHandler("state: Resolve: fetch: %s: WARNING: %s", res.peer, res.err)
			continue
		}

		s.evHandler("state: Resolve: peer[%s]: length[%d]: local[%d]", res.peer, res.data.Length, maxLength)

		if res.data.Length <= maxLength {
			continue
		}

		if err := s.validateCandidate(res.data); err != nil {
			s.evHandler("state: Resolve: peer[%s]: invalid chain: %s", res.peer, err)
			continue
		}

		maxLength = res.data.Length
		winner = res.data.Chain
	}

	if winner == nil {
		s.evHandler("state: Resolve: local chain is the longest: length[%d]", s.db.Length())
		return false, nil
	}

	// A mining operation in flight is working against the old tip.
	s.signalCancelMining()

	// The local chain may have grown while the peers were being asked, so
	// the length is checked again under the database lock.
	replaced, err := s.db.ReplaceChainIfLonger(winner)
	if err != nil {
		return false, fmt.Errorf("replacing chain: %w", err)
	}

	if replaced {
		s.evHandler("ledger: chain replaced: length[%d]", len(winner))
		s.signalStartMining()
	}

	return replaced, nil
}

// validateCandidate checks a chain reported by a peer.
func (s *State) validateCandidate(data database.ChainData) error {
	if data.Length != len(data.Chain) {
		return fmt.Errorf("reported length %d does not match chain length %d", data.Length, len(data.Chain))
	}

	if len(data.Chain) == 0 {
		return database.ErrEmptyChain
	}

	if !data.Chain[0].IsGenesis() {
		return errors.New("first block is not a genesis block")
	}

	return database.ValidateChain(data.Chain, s.difficulty)
}
