// Package digest provides the hashing support for blocks and the
// proof of work puzzle.
package digest

import (
	"crypto/sha256"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ZeroHash represents a hash code of zeros. It is returned when a value
// can't be encoded.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// Hash returns a unique string for the value. The value is encoded as JSON
// before hashing, so types hashed here declare their fields in key order to
// get the same bytes a sorted-key encoder would produce.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	return hash(data)
}

// RawHash returns the hash for the specified string.
func RawHash(s string) string {
	return hash([]byte(s))
}

// Hex returns the hash without the 0x prefix.
func Hex(hash string) string {
	if len(hash) >= 2 && hash[0] == '0' && (hash[1] == 'x' || hash[1] == 'X') {
		return hash[2:]
	}
	return hash
}

func hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hexutil.Encode(sum[:])
}
