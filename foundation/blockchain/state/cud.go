package state

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
)

// SubmitTransaction adds a new transaction to the pending pool and returns
// the index of the block that will contain it.
func (s *State) SubmitTransaction(tx database.Tx) (uint64, error) {
	index, err := s.db.AddTransaction(tx)
	if err != nil {
		return 0, err
	}

	s.evHandler("ledger: transaction added: tx[%s]: blk[%d]", tx, index)

	s.signalStartMining()

	return index, nil
}

// AddKnownPeer provides the ability to add a new peer.
func (s *State) AddKnownPeer(peer peer.Peer) bool {
	return s.knownPeers.Add(peer)
}

// AddKnownPeers normalizes each address and adds it to the set of known
// peers. If any address can't be parsed nothing is added.
func (s *State) AddKnownPeers(addresses []string) error {
	peers := make([]peer.Peer, len(addresses))
	for i, address := range addresses {
		pr, err := peer.Parse(address)
		if err != nil {
			return fmt.Errorf("address %q: %w", address, err)
		}
		peers[i] = pr
	}

	for _, pr := range peers {
		if s.knownPeers.Add(pr) {
			s.evHandler("state: AddKnownPeers: adding peer-node %s", pr)
		}
	}

	return nil
}
