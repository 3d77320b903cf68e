package memory_test

import (
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/memory"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Order(t *testing.T) {
	t.Log("Given the need to keep blocks in chain order.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen writing blocks to memory.", testID)
		{
			strg, err := memory.New()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct storage: %v", failed, testID, err)
			}

			if err := strg.Write(database.Block{Index: 2}); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould not accept a block out of order.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not accept a block out of order.", success, testID)

			if err := strg.Write(database.Genesis()); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould accept the genesis block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould accept the genesis block.", success, testID)

			if err := strg.Reset([]database.Block{{Index: 1}, {Index: 3}}); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould not reset to a chain with a gap.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not reset to a chain with a gap.", success, testID)

			if err := strg.Reset([]database.Block{{Index: 1}, {Index: 2}}); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould reset to a contiguous chain: %v", failed, testID, err)
			}

			blocks, err := strg.ReadAll()
			if err != nil || len(blocks) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould read back the reset chain: %d, %v", failed, testID, len(blocks), err)
			}
			t.Logf("\t%s\tTest %d:\tShould read back the reset chain.", success, testID)
		}
	}
}
