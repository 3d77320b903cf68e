// Package pow implements the proof of work puzzle used to seal blocks. A
// proof is a nonce whose relation to the previous block's proof produces a
// hash with a required number of leading zeros.
package pow

import (
	"context"
	"math/big"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
)

// DefaultDifficulty is the number of leading zero hex digits a solution
// must produce. Five digits is roughly 20 bits of search space.
const DefaultDifficulty uint = 5

// MaxDifficulty is the number of hex digits in a hash.
const MaxDifficulty uint = 64

// batchSize is the number of nonces searched per round by SolveParallel.
const batchSize = 20_000

// cancelCheck is how often the search loops look at the context.
const cancelCheck = 4_096

// =============================================================================

// Solve performs a linear scan starting at nonce 1 and returns the first
// nonce that solves the puzzle for the specified previous proof. The scan
// only stops early if the context is cancelled.
func Solve(ctx context.Context, previousProof int64, difficulty uint) (int64, error) {
	for nonce := int64(1); ; nonce++ {
		if nonce%cancelCheck == 0 && ctx.Err() != nil {
			return 0, ctx.Err()
		}

		if IsSolved(nonce, previousProof, difficulty) {
			return nonce, nil
		}
	}
}

// SolveParallel partitions the search across the specified number of
// goroutines. Each round scans a batch of nonces and the smallest solution
// in the batch wins, so the result is always the nonce Solve returns.
func SolveParallel(ctx context.Context, previousProof int64, difficulty uint, workers int) (int64, error) {
	if workers <= 1 {
		return Solve(ctx, previousProof, difficulty)
	}

	step := int64(workers)
	for start := int64(1); ; start += batchSize {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}

		end := start + batchSize
		found := make([]int64, workers)

		var wg sync.WaitGroup
		wg.Add(workers)

		for w := range workers {
			go func() {
				defer wg.Done()

				var checked int
				for nonce := start + int64(w); nonce < end; nonce += step {
					checked++
					if checked%cancelCheck == 0 && ctx.Err() != nil {
						return
					}

					if IsSolved(nonce, previousProof, difficulty) {
						found[w] = nonce
						return
					}
				}
			}()
		}

		wg.Wait()

		var best int64
		for _, nonce := range found {
			if nonce > 0 && (best == 0 || nonce < best) {
				best = nonce
			}
		}

		if best > 0 {
			return best, nil
		}
	}
}

// IsSolved checks the nonce against the previous proof to make sure it
// complies with the POW rules. The hash of nonce² - previous² needs to
// start with a difficulty number of 0's.
func IsSolved(nonce int64, previousProof int64, difficulty uint) bool {
	const match = "0000000000000000000000000000000000000000000000000000000000000000"

	if difficulty > MaxDifficulty {
		return false
	}

	hash := digest.Hex(digest.RawHash(Operation(nonce, previousProof)))
	if len(hash) != len(match) {
		return false
	}

	return hash[:difficulty] == match[:difficulty]
}

// Operation returns the decimal string of nonce² - previous² which is the
// value that gets hashed. Big integers keep the squares from overflowing.
func Operation(nonce int64, previousProof int64) string {
	n := big.NewInt(nonce)
	n.Mul(n, n)

	p := big.NewInt(previousProof)
	p.Mul(p, p)

	return n.Sub(n, p).String()
}
