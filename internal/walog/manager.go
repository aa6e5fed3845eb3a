// Package walog implements the write-ahead log: an append-only sequence of
// byte records, each stamped with a log sequence number (LSN), written
// back-to-front within fixed-size blocks so the newest record in a block
// sits next to the boundary and the oldest sits at its end.
package walog

import (
	"fmt"
	"sync"

	"ferrodb/internal/file"
)

// Manager appends records to the log and flushes them to disk on demand.
// The recovery manager relies on Flush being called before a dirty page
// that depends on a log record is written back, so that the undo
// information always reaches disk first.
type Manager struct {
	fm           *file.Manager
	logfile      string
	logpage      *file.Page
	currentBlock file.BlockID
	latestLSN    int
	lastSavedLSN int

	mu sync.Mutex
}

// NewManager opens logfile, creating its first block if the file is empty
// or loading the last existing block otherwise.
func NewManager(fm *file.Manager, logfile string) (*Manager, error) {
	lm := &Manager{
		fm:      fm,
		logfile: logfile,
		logpage: file.NewPage(fm.BlockSize()),
	}

	size, err := fm.BlockCount(logfile)
	if err != nil {
		return nil, fmt.Errorf("walog: cannot size %s: %w", logfile, err)
	}

	if size == 0 {
		blk, err := lm.appendNewBlock()
		if err != nil {
			return nil, err
		}
		lm.currentBlock = blk
	} else {
		lm.currentBlock = file.NewBlockID(logfile, size-1)
		if err := fm.Read(lm.currentBlock, lm.logpage); err != nil {
			return nil, fmt.Errorf("walog: cannot read last block of %s: %w", logfile, err)
		}
	}

	return lm, nil
}

// Append writes rec to the log and returns its LSN. The record is not
// guaranteed durable until Flush is called with an LSN at least this large.
func (lm *Manager) Append(rec []byte) (int, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	boundary := int(lm.logpage.GetInt(0))
	recsize := len(rec)
	bytesNeeded := recsize + 4

	if boundary-bytesNeeded < 4 {
		if err := lm.flush(); err != nil {
			return 0, err
		}
		blk, err := lm.appendNewBlock()
		if err != nil {
			return 0, err
		}
		lm.currentBlock = blk
		boundary = int(lm.logpage.GetInt(0))
	}

	recpos := boundary - bytesNeeded
	lm.logpage.SetBytes(recpos, rec)
	lm.logpage.SetInt(0, int32(recpos))

	lm.latestLSN++
	return lm.latestLSN, nil
}

func (lm *Manager) appendNewBlock() (file.BlockID, error) {
	blk, err := lm.fm.Append(lm.logfile)
	if err != nil {
		return file.BlockID{}, fmt.Errorf("walog: cannot append block to %s: %w", lm.logfile, err)
	}
	lm.logpage.SetInt(0, int32(lm.fm.BlockSize()))
	if err := lm.fm.Write(blk, lm.logpage); err != nil {
		return file.BlockID{}, fmt.Errorf("walog: cannot initialize block %s: %w", blk, err)
	}
	return blk, nil
}

// Flush forces every record up to and including lsn to disk.
func (lm *Manager) Flush(lsn int) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if lsn >= lm.lastSavedLSN {
		return lm.flush()
	}
	return nil
}

func (lm *Manager) flush() error {
	if err := lm.fm.Write(lm.currentBlock, lm.logpage); err != nil {
		return fmt.Errorf("walog: cannot flush %s: %w", lm.currentBlock, err)
	}
	lm.lastSavedLSN = lm.latestLSN
	return nil
}

// Iterator flushes pending records and returns an Iterator that walks the
// log from the most recent record back to the oldest.
func (lm *Manager) Iterator() (*Iterator, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if err := lm.flush(); err != nil {
		return nil, err
	}
	return newIterator(lm.fm, lm.currentBlock)
}
