// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
)

// EventHandler defines a function that is called when events
// occur in the processing of the blockchain.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining and consensus in the background.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
	SignalResolve()
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Host          string
	Storage       database.Storage
	Difficulty    uint
	MiningWorkers int
	KnownPeers    *peer.PeerSet
	Fetcher       PeerFetcher
	EvHandler     EventHandler
}

// State manages the blockchain database.
type State struct {
	host          string
	difficulty    uint
	miningWorkers int
	evHandler     EventHandler

	knownPeers *peer.PeerSet
	fetcher    PeerFetcher
	db         *database.Database

	Worker Worker
}

// New constructs a new blockchain for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.Fetcher == nil {
		return nil, errors.New("peer fetcher is required")
	}

	difficulty := cfg.Difficulty
	if difficulty == 0 {
		difficulty = pow.DefaultDifficulty
	}

	workers := cfg.MiningWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	// Open the database which loads the chain from storage or creates
	// the genesis block.
	db, err := database.New(database.Config{
		Storage:    cfg.Storage,
		Difficulty: difficulty,
		EvHandler:  ev,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	state := State{
		host:          cfg.Host,
		difficulty:    difficulty,
		miningWorkers: workers,
		evHandler:     ev,

		knownPeers: knownPeers,
		fetcher:    cfg.Fetcher,
		db:         db,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return s.db.Close()
}

// =============================================================================

// signalCancelMining asks the worker, if one is registered, to stop any
// mining operation in flight.
func (s *State) signalCancelMining() {
	if s.Worker != nil {
		s.Worker.SignalCancelMining()
	}
}

// signalStartMining asks the worker, if one is registered, to start mining.
func (s *State) signalStartMining() {
	if s.Worker != nil {
		s.Worker.SignalStartMining()
	}
}
