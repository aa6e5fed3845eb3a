// Package buffer implements the buffer pool: a fixed set of in-memory page
// frames shared by every transaction, pinned while in use and written back
// to disk no earlier than the write-ahead log record that justifies the
// write.
package buffer

import (
	"fmt"

	"ferrodb/internal/file"
	"ferrodb/internal/walog"
)

// Buffer wraps one page-sized frame together with the bookkeeping needed to
// know which disk block it holds, how many clients currently have it
// pinned, and whether it needs to be written back before reuse.
type Buffer struct {
	fm    *file.Manager
	lm    *walog.Manager
	page  *file.Page
	block file.BlockID
	bound bool // whether block holds a valid assignment

	pins  int
	txnum int // -1 means not modified by any transaction
	lsn   int // -1 means no log record backs the modification
}

func newBuffer(fm *file.Manager, lm *walog.Manager) *Buffer {
	return &Buffer{
		fm:    fm,
		lm:    lm,
		page:  file.NewPage(fm.BlockSize()),
		txnum: -1,
		lsn:   -1,
	}
}

// Contents returns the in-memory page. Callers must hold the pin that was
// returned alongside this buffer for as long as they read or write it.
func (b *Buffer) Contents() *file.Page { return b.page }

// Block returns the disk block currently assigned to this buffer. The
// second result is false if no block has ever been assigned.
func (b *Buffer) Block() (file.BlockID, bool) { return b.block, b.bound }

// SetModified records that txnum changed this buffer's contents, justified
// by the log record at lsn. lsn of -1 means the change needs no log record
// (a transaction write made with logging turned off, such as formatting a
// new block or restoring an old value during undo); the buffer's recorded
// lsn is then left unchanged.
func (b *Buffer) SetModified(txnum, lsn int) {
	b.txnum = txnum
	if lsn >= 0 {
		b.lsn = lsn
	}
}

// IsPinned reports whether any client currently holds this buffer.
func (b *Buffer) IsPinned() bool { return b.pins > 0 }

// ModifyingTx returns the transaction number that last modified this
// buffer, or -1 if it is clean.
func (b *Buffer) ModifyingTx() int { return b.txnum }

func (b *Buffer) assignToBlock(blk file.BlockID) error {
	if err := b.flush(); err != nil {
		return err
	}
	b.block = blk
	b.bound = true
	if err := b.fm.Read(blk, b.page); err != nil {
		return fmt.Errorf("buffer: cannot load block %s: %w", blk, err)
	}
	b.pins = 0
	return nil
}

func (b *Buffer) flush() error {
	if b.txnum < 0 {
		return nil
	}
	if err := b.lm.Flush(b.lsn); err != nil {
		return fmt.Errorf("buffer: cannot flush log before writing block %s: %w", b.block, err)
	}
	if err := b.fm.Write(b.block, b.page); err != nil {
		return fmt.Errorf("buffer: cannot write block %s: %w", b.block, err)
	}
	b.txnum = -1
	return nil
}

func (b *Buffer) pin() { b.pins++ }

func (b *Buffer) unpin() { b.pins-- }
