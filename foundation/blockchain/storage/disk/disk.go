// Package disk implements the ability to read and write blocks to disk,
// one JSON file per block.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Disk represents the serialization implementation for reading and storing
// blocks in their own separate files on disk. This implements the
// database.Storage interface.
type Disk struct {
	dbPath string
}

// New constructs a Disk value for use. If a reset was interrupted after the
// live folder was moved aside, the backup is put back in place.
func New(dbPath string) (*Disk, error) {
	dbPath = filepath.Clean(dbPath)

	if _, err := os.Stat(dbPath); errors.Is(err, fs.ErrNotExist) {
		if _, err := os.Stat(backupPath(dbPath)); err == nil {
			if err := os.Rename(backupPath(dbPath), dbPath); err != nil {
				return nil, fmt.Errorf("restoring backup: %w", err)
			}
		}
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	return &Disk{dbPath: dbPath}, nil
}

// Close in this implementation has nothing to do since a new file is
// written to disk for each new block and then immediately closed.
func (d *Disk) Close() error {
	return nil
}

// Write takes the specified database block and stores it on disk in a
// file labeled with the block index.
func (d *Disk) Write(block database.Block) error {
	return write(d.dbPath, block)
}

// GetBlock searches the blockchain on disk to locate and return the
// contents of the specified block by index.
func (d *Disk) GetBlock(index uint64) (database.Block, error) {
	f, err := os.Open(getPath(d.dbPath, index))
	if err != nil {
		return database.Block{}, err
	}
	defer f.Close()

	var block database.Block
	if err := json.NewDecoder(f).Decode(&block); err != nil {
		return database.Block{}, fmt.Errorf("decoding block %d: %w", index, err)
	}

	return block, nil
}

// ReadAll walks the files starting with block 1 until a block file is
// missing and returns the blocks in chain order.
func (d *Disk) ReadAll() ([]database.Block, error) {
	var blocks []database.Block

	for index := uint64(1); ; index++ {
		block, err := d.GetBlock(index)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return blocks, nil
			}
			return nil, err
		}

		blocks = append(blocks, block)
	}
}

// Reset replaces the blocks on disk with the specified chain. The new chain
// is written to a side folder first. The live folder is moved to a backup
// before the new one takes its place, so a chain is on disk at every step.
func (d *Disk) Reset(chain []database.Block) error {
	tmpPath := d.dbPath + ".tmp"
	bakPath := backupPath(d.dbPath)

	if err := os.RemoveAll(tmpPath); err != nil {
		return err
	}

	if err := os.MkdirAll(tmpPath, 0755); err != nil {
		return err
	}

	for _, block := range chain {
		if err := write(tmpPath, block); err != nil {
			os.RemoveAll(tmpPath)
			return err
		}
	}

	if err := os.RemoveAll(bakPath); err != nil {
		return err
	}

	if err := os.Rename(d.dbPath, bakPath); err != nil {
		os.RemoveAll(tmpPath)
		return fmt.Errorf("moving chain to backup: %w", err)
	}

	if err := os.Rename(tmpPath, d.dbPath); err != nil {
		if rerr := os.Rename(bakPath, d.dbPath); rerr != nil {
			return fmt.Errorf("restoring backup: %w: %w", rerr, err)
		}
		return fmt.Errorf("swapping in new chain: %w", err)
	}

	return os.RemoveAll(bakPath)
}

// =============================================================================

// write marshals the block in a human readable format and writes it
// to the specified folder.
func write(folder string, block database.Block) error {
	data, err := json.MarshalIndent(block, "", "  ")
	if err != nil {
		return err
	}

	f, err := os.OpenFile(getPath(folder, block.Index), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return err
	}

	return nil
}

// getPath forms the path to the specified block.
func getPath(folder string, index uint64) string {
	name := strconv.FormatUint(index, 10)
	return filepath.Join(folder, fmt.Sprintf("%s.json", name))
}

// backupPath forms the path the live folder is moved to during a reset.
func backupPath(dbPath string) string {
	return dbPath + ".bak"
}
