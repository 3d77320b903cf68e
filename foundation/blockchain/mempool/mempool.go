// Package mempool maintains the pool of transactions waiting to be
// included in a block.
package mempool

import (
	"sync"
)

// Mempool represents an ordered cache of pending transactions. The order
// of submission is the order transactions are drained into a block.
type Mempool[T any] struct {
	pool []T
	mu   sync.RWMutex
}

// New constructs a new, empty mempool.
func New[T any]() *Mempool[T] {
	return &Mempool[T]{}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool[T]) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add appends a transaction to the end of the pool and returns the
// new size of the pool.
func (mp *Mempool[T]) Add(tx T) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// Copy returns a list of the current transactions in submission order.
func (mp *Mempool[T]) Copy() []T {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	cpy := make([]T, len(mp.pool))
	copy(cpy, mp.pool)

	return cpy
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool[T]) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = nil
}
