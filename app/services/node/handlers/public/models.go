package public

import (
	"github.com/ardanlabs/powledger/business/sys/validate"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// NewTx is what a client submits to add a transaction to the pending pool.
// The fields are pointers so a missing field can be told apart from a zero
// value.
type NewTx struct {
	Sender   *string  `json:"sender" validate:"required"`
	Receiver *string  `json:"receiver" validate:"required"`
	Amount   *float64 `json:"amount" validate:"required"`
}

// Validate checks the data in the model is considered clean.
func (ntx NewTx) Validate() error {
	return validate.Check(ntx)
}

// toTx converts a validated NewTx into a database transaction.
func (ntx NewTx) toTx() database.Tx {
	return database.NewTx(*ntx.Sender, *ntx.Receiver, *ntx.Amount)
}

// NewPeers is what a client submits to register peer nodes.
type NewPeers struct {
	Nodes []string `json:"nodes" validate:"required"`
}

// Validate checks the data in the model is considered clean.
func (np NewPeers) Validate() error {
	return validate.Check(np)
}

// =============================================================================

type minedBlock struct {
	Message      string        `json:"message"`
	Index        uint64        `json:"index"`
	TimeStamp    uint64        `json:"timestamp"`
	Proof        int64         `json:"proof"`
	PreviousHash string        `json:"previous_hash"`
	Transactions []database.Tx `json:"transactions"`
}

type validity struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type txAdded struct {
	Index   uint64 `json:"index"`
	Message string `json:"message"`
}

type peersAdded struct {
	Message string   `json:"message"`
	Nodes   []string `json:"nodes"`
}

type consensus struct {
	Replaced bool             `json:"replaced"`
	Message  string           `json:"message"`
	Chain    []database.Block `json:"chain"`
}
