package tx

import (
	"fmt"

	"ferrodb/internal/buffer"
	"ferrodb/internal/walog"
)

// RecoveryManager writes the log records that back a transaction's commit,
// rollback, and crash recovery, and drives the undo-only algorithms that
// read them back.
type RecoveryManager struct {
	lm    *walog.Manager
	bm    *buffer.Manager
	tx    *Transaction
	txnum int
}

// newRecoveryManager writes the transaction's start record and returns a
// manager ready to log its subsequent changes.
func newRecoveryManager(tx *Transaction, txnum int, lm *walog.Manager, bm *buffer.Manager) (*RecoveryManager, error) {
	if _, err := writeStartRecord(lm, txnum); err != nil {
		return nil, fmt.Errorf("tx: cannot write start record: %w", err)
	}
	return &RecoveryManager{lm: lm, bm: bm, tx: tx, txnum: txnum}, nil
}

// Commit flushes every buffer this transaction dirtied, writes a commit
// record, and forces the log up to that record before returning.
func (rm *RecoveryManager) Commit() error {
	if err := rm.bm.FlushAll(rm.txnum); err != nil {
		return err
	}
	lsn, err := writeCommitRecord(rm.lm, rm.txnum)
	if err != nil {
		return fmt.Errorf("tx: cannot write commit record: %w", err)
	}
	return rm.lm.Flush(lsn)
}

// Rollback undoes every change this transaction made, flushes the
// resulting buffers, and writes a durable rollback record.
func (rm *RecoveryManager) Rollback() error {
	if err := rm.doRollback(); err != nil {
		return err
	}
	if err := rm.bm.FlushAll(rm.txnum); err != nil {
		return err
	}
	lsn, err := writeRollbackRecord(rm.lm, rm.txnum)
	if err != nil {
		return fmt.Errorf("tx: cannot write rollback record: %w", err)
	}
	return rm.lm.Flush(lsn)
}

// Recover performs undo-only crash recovery: every transaction that never
// reached a commit or rollback record is undone, then a checkpoint is
// written so a future recovery need not repeat this scan.
func (rm *RecoveryManager) Recover() error {
	if err := rm.doRecover(); err != nil {
		return err
	}
	if err := rm.bm.FlushAll(rm.txnum); err != nil {
		return err
	}
	lsn, err := writeCheckpointRecord(rm.lm)
	if err != nil {
		return fmt.Errorf("tx: cannot write checkpoint record: %w", err)
	}
	return rm.lm.Flush(lsn)
}

// SetInt logs the value buf held at offset before it is overwritten, and
// returns the LSN of that record.
func (rm *RecoveryManager) SetInt(buf *buffer.Buffer, offset int) (int, error) {
	oldval := buf.Contents().GetInt(offset)
	blk, _ := buf.Block()
	lsn, err := writeSetIntRecord(rm.lm, rm.txnum, blk, offset, oldval)
	if err != nil {
		return 0, fmt.Errorf("tx: cannot write set-int record: %w", err)
	}
	return lsn, nil
}

// SetString logs the value buf held at offset before it is overwritten.
func (rm *RecoveryManager) SetString(buf *buffer.Buffer, offset int) (int, error) {
	oldval := buf.Contents().GetString(offset)
	blk, _ := buf.Block()
	lsn, err := writeSetStringRecord(rm.lm, rm.txnum, blk, offset, oldval)
	if err != nil {
		return 0, fmt.Errorf("tx: cannot write set-string record: %w", err)
	}
	return lsn, nil
}

// doRollback scans the log backwards undoing every record belonging to
// this transaction, stopping as soon as it reaches that transaction's
// start record.
func (rm *RecoveryManager) doRollback() error {
	it, err := rm.lm.Iterator()
	if err != nil {
		return err
	}
	for it.HasNext() {
		bytes, err := it.Next()
		if err != nil {
			return err
		}
		rec := parseLogRecord(bytes)
		if rec == nil || rec.txNumber() != rm.txnum {
			continue
		}
		if rec.op() == startRec {
			return nil
		}
		if err := rec.undo(rm.tx); err != nil {
			return err
		}
	}
	return nil
}

// doRecover scans the log backwards from its end, undoing every record
// belonging to a transaction that never reached a commit or rollback
// record, until it reaches a checkpoint (or the start of the log).
func (rm *RecoveryManager) doRecover() error {
	finished := make(map[int]struct{})

	it, err := rm.lm.Iterator()
	if err != nil {
		return err
	}
	for it.HasNext() {
		bytes, err := it.Next()
		if err != nil {
			return err
		}
		rec := parseLogRecord(bytes)
		if rec == nil {
			continue
		}
		switch rec.op() {
		case checkpointRec:
			return nil
		case commitRec, rollbackRec:
			finished[rec.txNumber()] = struct{}{}
		default:
			if _, done := finished[rec.txNumber()]; !done {
				if err := rec.undo(rm.tx); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
