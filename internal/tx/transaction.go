package tx

import (
	"fmt"
	"sync/atomic"

	"ferrodb/internal/buffer"
	"ferrodb/internal/file"
	"ferrodb/internal/walog"

	"github.com/rs/zerolog"
)

// EndOfFile is the block number used for a dummy block that represents the
// end-of-file position of a table, so Size and Append can be locked like
// any other block.
const EndOfFile = -1

var nextTxNum atomic.Int64

func nextTxNumber() int {
	return int(nextTxNum.Add(1))
}

// Transaction is the unit of work against the database: every read and
// write goes through one, which acquires the necessary lock, routes the
// access through the buffer pool, and (for writes) logs enough to undo the
// change later. A Transaction is not safe for concurrent use by multiple
// goroutines; each goroutine/client should own its own Transaction.
type Transaction struct {
	fm  *file.Manager
	lm  *walog.Manager
	bm  *buffer.Manager
	rm  *RecoveryManager
	cm  *ConcurrencyManager
	buf *bufferList

	txnum int
	log   zerolog.Logger
}

// NewTransaction begins a new transaction, logging its start record
// immediately.
func NewTransaction(fm *file.Manager, lm *walog.Manager, bm *buffer.Manager, lt *LockTable, log zerolog.Logger) (*Transaction, error) {
	txnum := nextTxNumber()
	tx := &Transaction{
		fm:    fm,
		lm:    lm,
		bm:    bm,
		cm:    NewConcurrencyManager(lt),
		buf:   newBufferList(bm),
		txnum: txnum,
		log:   log.With().Int("tx_num", txnum).Logger(),
	}

	rm, err := newRecoveryManager(tx, txnum, lm, bm)
	if err != nil {
		return nil, err
	}
	tx.rm = rm

	tx.log.Debug().Msg("transaction started")
	return tx, nil
}

// TxNumber returns this transaction's identifier.
func (tx *Transaction) TxNumber() int { return tx.txnum }

// Commit makes every change durable, releases every lock the transaction
// holds, and unpins its buffers.
func (tx *Transaction) Commit() error {
	if err := tx.rm.Commit(); err != nil {
		return err
	}
	tx.cm.Release()
	tx.buf.unpinAll()
	tx.log.Debug().Msg("transaction committed")
	return nil
}

// Rollback undoes every change the transaction made, releases its locks,
// and unpins its buffers. A transaction cannot be used after Rollback.
func (tx *Transaction) Rollback() error {
	if err := tx.rm.Rollback(); err != nil {
		return err
	}
	tx.cm.Release()
	tx.buf.unpinAll()
	tx.log.Debug().Msg("transaction rolled back")
	return nil
}

// Recover performs crash recovery using this transaction's recovery
// manager. It is meant to be invoked once, by a dedicated bootstrap
// transaction, before any client transaction begins.
func (tx *Transaction) Recover() error {
	if err := tx.bm.FlushAll(tx.txnum); err != nil {
		return err
	}
	return tx.rm.Recover()
}

// Pin ensures blk is resident in the buffer pool and marks it as in use by
// this transaction.
func (tx *Transaction) Pin(blk file.BlockID) error {
	return tx.buf.pin(blk)
}

// Unpin indicates this transaction no longer needs blk.
func (tx *Transaction) Unpin(blk file.BlockID) {
	tx.buf.unpin(blk)
}

// GetInt returns the int32 stored at offset in blk, after acquiring a
// shared lock.
func (tx *Transaction) GetInt(blk file.BlockID, offset int) (int32, error) {
	if err := tx.cm.SLock(blk); err != nil {
		return 0, err
	}
	buf, ok := tx.buf.getBuffer(blk)
	if !ok {
		return 0, fmt.Errorf("tx: block %s is not pinned by this transaction", blk)
	}
	return buf.Contents().GetInt(offset), nil
}

// GetString returns the string stored at offset in blk, after acquiring a
// shared lock.
func (tx *Transaction) GetString(blk file.BlockID, offset int) (string, error) {
	if err := tx.cm.SLock(blk); err != nil {
		return "", err
	}
	buf, ok := tx.buf.getBuffer(blk)
	if !ok {
		return "", fmt.Errorf("tx: block %s is not pinned by this transaction", blk)
	}
	return buf.Contents().GetString(offset), nil
}

// SetInt writes val at offset in blk, after acquiring an exclusive lock. If
// okToLog is true, the prior value is logged first so it can be undone.
func (tx *Transaction) SetInt(blk file.BlockID, offset int, val int, okToLog bool) error {
	if err := tx.cm.XLock(blk); err != nil {
		return err
	}
	buf, ok := tx.buf.getBuffer(blk)
	if !ok {
		return fmt.Errorf("tx: block %s is not pinned by this transaction", blk)
	}

	lsn := -1
	if okToLog {
		var err error
		lsn, err = tx.rm.SetInt(buf, offset)
		if err != nil {
			return err
		}
	}
	buf.Contents().SetInt(offset, int32(val))
	buf.SetModified(tx.txnum, lsn)
	return nil
}

// SetString writes val at offset in blk, after acquiring an exclusive
// lock. If okToLog is true, the prior value is logged first.
func (tx *Transaction) SetString(blk file.BlockID, offset int, val string, okToLog bool) error {
	if err := tx.cm.XLock(blk); err != nil {
		return err
	}
	buf, ok := tx.buf.getBuffer(blk)
	if !ok {
		return fmt.Errorf("tx: block %s is not pinned by this transaction", blk)
	}

	lsn := -1
	if okToLog {
		var err error
		lsn, err = tx.rm.SetString(buf, offset)
		if err != nil {
			return err
		}
	}
	buf.Contents().SetString(offset, val)
	buf.SetModified(tx.txnum, lsn)
	return nil
}

// Size returns the number of blocks in filename, after acquiring a shared
// lock on its end-of-file marker to prevent a concurrent Append.
func (tx *Transaction) Size(filename string) (int, error) {
	dummy := file.NewBlockID(filename, EndOfFile)
	if err := tx.cm.SLock(dummy); err != nil {
		return 0, err
	}
	return tx.fm.BlockCount(filename)
}

// Append allocates a new block at the end of filename, after acquiring an
// exclusive lock on its end-of-file marker.
func (tx *Transaction) Append(filename string) (file.BlockID, error) {
	dummy := file.NewBlockID(filename, EndOfFile)
	if err := tx.cm.XLock(dummy); err != nil {
		return file.BlockID{}, err
	}
	return tx.fm.Append(filename)
}

// BlockSize returns the engine-wide block size.
func (tx *Transaction) BlockSize() int { return tx.fm.BlockSize() }

// AvailableBuffers returns the number of unpinned buffers in the pool.
func (tx *Transaction) AvailableBuffers() int { return tx.bm.Available() }
