package database

import (
	"fmt"
)

// Tx is the transactional information between two parties. Fields are
// declared in key order so the hash of a block matches a sorted-key encoding.
type Tx struct {
	Amount   float64 `json:"amount"`   // Value being moved between the parties.
	Receiver string  `json:"receiver"` // Party receiving the amount.
	Sender   string  `json:"sender"`   // Party sending the amount.
}

// NewTx constructs a new transaction.
func NewTx(sender string, receiver string, amount float64) Tx {
	return Tx{
		Amount:   amount,
		Receiver: receiver,
		Sender:   sender,
	}
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%v", tx.Sender, tx.Receiver, tx.Amount)
}
