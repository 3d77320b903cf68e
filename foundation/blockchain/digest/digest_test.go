package digest_test

import (
	"strings"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type record struct {
	Amount   float64 `json:"amount"`
	Receiver string  `json:"receiver"`
	Sender   string  `json:"sender"`
}

func Test_Hash(t *testing.T) {
	t.Log("Given the need to hash values deterministically.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen handling two equal records.", testID)
		{
			r1 := record{Amount: 10, Receiver: "bill", Sender: "jill"}
			r2 := record{Amount: 10, Receiver: "bill", Sender: "jill"}

			h1 := digest.Hash(r1)
			if h1 != digest.Hash(r2) {
				t.Fatalf("\t%s\tTest %d:\tShould get the same hash for equal values.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get the same hash for equal values.", success, testID)

			if !strings.HasPrefix(h1, "0x") || len(h1) != 66 {
				t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, h1)
				t.Fatalf("\t%s\tTest %d:\tShould get a 0x prefixed 32 byte hex hash.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get a 0x prefixed 32 byte hex hash.", success, testID)

			r2.Amount = 10.5
			if h1 == digest.Hash(r2) {
				t.Fatalf("\t%s\tTest %d:\tShould get a new hash after a change.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get a new hash after a change.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen hashing a known string.", testID)
		{
			const exp = "0x5feceb66ffc86f38d952786c6d696c79c2dbc239dd4e91b46729d73a27fb57e9"

			got := digest.RawHash("0")
			if got != exp {
				t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, got)
				t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, exp)
				t.Fatalf("\t%s\tTest %d:\tShould match the sha256 of the string.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould match the sha256 of the string.", success, testID)

			if digest.Hex(got) != exp[2:] {
				t.Fatalf("\t%s\tTest %d:\tShould strip the 0x prefix.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould strip the 0x prefix.", success, testID)
		}
	}
}
