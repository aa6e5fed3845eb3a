// Package btree implements the B+Tree secondary index: a directory file
// whose root always lives at block 0, and a leaf file whose pages chain
// into overflow blocks when many records share one key. Page layout,
// split rules, and the overflow-chain discipline follow spec §4.10.
package btree

import (
	"math"

	"ferrodb/internal/file"
	"ferrodb/internal/record"
	"ferrodb/internal/tx"
)

// noOverflow is the flag value of a leaf page that has no overflow chain.
const noOverflow = -1

// page wraps one directory or leaf block, exposing the shared record
// layout both page types use: a 4-byte flag, a 4-byte record count, then
// fixed-stride record slots starting at byte 8. Directory slots hold
// (dataval, block); leaf slots hold (dataval, block, id).
type page struct {
	tx     *tx.Transaction
	block  file.BlockID
	layout *record.Layout
}

func newPage(t *tx.Transaction, block file.BlockID, layout *record.Layout) (*page, error) {
	if err := t.Pin(block); err != nil {
		return nil, err
	}
	return &page{tx: t, block: block, layout: layout}, nil
}

// format initializes a freshly appended block as an empty page carrying
// flag, without logging: the block did not exist a moment ago, so there
// is nothing for rollback to restore.
func format(t *tx.Transaction, block file.BlockID, layout *record.Layout, flag int32) error {
	if err := t.SetInt(block, 0, int(flag), false); err != nil {
		return err
	}
	if err := t.SetInt(block, 4, 0, false); err != nil {
		return err
	}
	slotSize := layout.SlotSize()
	schema := layout.Schema()
	for pos := 8; pos+slotSize <= t.BlockSize(); pos += slotSize {
		for _, fieldName := range schema.Fields() {
			off := pos + layout.Offset(fieldName)
			if schema.Type(fieldName) == record.Integer {
				if err := t.SetInt(block, off, 0, false); err != nil {
					return err
				}
			} else {
				if err := t.SetString(block, off, "", false); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (p *page) close() {
	p.tx.Unpin(p.block)
}

func (p *page) flag() (int32, error) {
	return p.tx.GetInt(p.block, 0)
}

func (p *page) setFlag(val int32) error {
	return p.tx.SetInt(p.block, 0, int(val), true)
}

func (p *page) numRecs() (int, error) {
	n, err := p.tx.GetInt(p.block, 4)
	return int(n), err
}

func (p *page) setNumRecs(n int) error {
	return p.tx.SetInt(p.block, 4, n, true)
}

func (p *page) isFull() (bool, error) {
	n, err := p.numRecs()
	if err != nil {
		return false, err
	}
	return p.slotPos(n+1) >= p.tx.BlockSize(), nil
}

// appendNew creates and formats a new block in this page's file, ready to
// receive records, and returns its identifier.
func (p *page) appendNew(flag int32) (file.BlockID, error) {
	blk, err := p.tx.Append(p.block.Filename)
	if err != nil {
		return file.BlockID{}, err
	}
	if err := p.tx.Pin(blk); err != nil {
		return file.BlockID{}, err
	}
	defer p.tx.Unpin(blk)
	if err := format(p.tx, blk, p.layout, flag); err != nil {
		return file.BlockID{}, err
	}
	return blk, nil
}

// split moves every record from splitPos onward into a fresh block
// flagged flag, and returns that block's identifier.
func (p *page) split(splitPos int, flag int32) (file.BlockID, error) {
	newBlock, err := p.appendNew(flag)
	if err != nil {
		return file.BlockID{}, err
	}
	newPage, err := newPage(p.tx, newBlock, p.layout)
	if err != nil {
		return file.BlockID{}, err
	}
	if err := p.transferRecs(splitPos, newPage); err != nil {
		newPage.close()
		return file.BlockID{}, err
	}
	if err := newPage.setFlag(flag); err != nil {
		newPage.close()
		return file.BlockID{}, err
	}
	newPage.close()
	return newBlock, nil
}

// dataVal returns the indexed value at slot: the B-Tree search key for a
// directory record, the indexed field's value for a leaf record.
func (p *page) dataVal(slot int) (record.Constant, error) {
	return p.getVal(slot, "dataval")
}

// findSlotBefore returns the rightmost slot whose dataval is strictly
// less than searchKey, or -1 if no such slot exists.
func (p *page) findSlotBefore(searchKey record.Constant) (int, error) {
	n, err := p.numRecs()
	if err != nil {
		return 0, err
	}
	slot := 0
	for slot < n {
		val, err := p.dataVal(slot)
		if err != nil {
			return 0, err
		}
		if val.CompareTo(searchKey) >= 0 {
			break
		}
		slot++
	}
	return slot - 1, nil
}

func (p *page) childNum(slot int) (int, error) {
	return p.getInt(slot, "block")
}

func (p *page) insertDir(slot int, val record.Constant, blockNum int) error {
	if err := p.insert(slot); err != nil {
		return err
	}
	if err := p.setVal(slot, "dataval", val); err != nil {
		return err
	}
	return p.setInt(slot, "block", blockNum)
}

func (p *page) dataRID(slot int) (record.RID, error) {
	blk, err := p.getInt(slot, "block")
	if err != nil {
		return record.RID{}, err
	}
	id, err := p.getInt(slot, "id")
	if err != nil {
		return record.RID{}, err
	}
	return record.NewRID(blk, id), nil
}

func (p *page) insertLeaf(slot int, val record.Constant, rid record.RID) error {
	if err := p.insert(slot); err != nil {
		return err
	}
	if err := p.setVal(slot, "dataval", val); err != nil {
		return err
	}
	if err := p.setInt(slot, "block", rid.BlockNumber); err != nil {
		return err
	}
	return p.setInt(slot, "id", rid.Slot)
}

// delete removes the record at slot, sliding every later record left.
func (p *page) delete(slot int) error {
	n, err := p.numRecs()
	if err != nil {
		return err
	}
	for i := slot + 1; i < n; i++ {
		if err := p.copyRec(i, i-1); err != nil {
			return err
		}
	}
	return p.setNumRecs(n - 1)
}

func (p *page) getInt(slot int, fieldName string) (int, error) {
	v, err := p.tx.GetInt(p.block, p.fieldPos(slot, fieldName))
	return int(v), err
}

func (p *page) getString(slot int, fieldName string) (string, error) {
	return p.tx.GetString(p.block, p.fieldPos(slot, fieldName))
}

func (p *page) getVal(slot int, fieldName string) (record.Constant, error) {
	if p.layout.Schema().Type(fieldName) == record.Integer {
		v, err := p.getInt(slot, fieldName)
		if err != nil {
			return record.Constant{}, err
		}
		return record.NewIntConstant(int32(v)), nil
	}
	v, err := p.getString(slot, fieldName)
	if err != nil {
		return record.Constant{}, err
	}
	return record.NewStringConstant(v), nil
}

func (p *page) setInt(slot int, fieldName string, val int) error {
	return p.tx.SetInt(p.block, p.fieldPos(slot, fieldName), val, true)
}

func (p *page) setString(slot int, fieldName string, val string) error {
	return p.tx.SetString(p.block, p.fieldPos(slot, fieldName), val, true)
}

func (p *page) setVal(slot int, fieldName string, val record.Constant) error {
	if p.layout.Schema().Type(fieldName) == record.Integer {
		v, _ := val.AsInt()
		return p.setInt(slot, fieldName, int(v))
	}
	v, _ := val.AsString()
	return p.setString(slot, fieldName, v)
}

// insert shifts every record at or after slot one position to the right
// and bumps the record count, making room for a new record at slot.
func (p *page) insert(slot int) error {
	n, err := p.numRecs()
	if err != nil {
		return err
	}
	for i := n; i > slot; i-- {
		if err := p.copyRec(i-1, i); err != nil {
			return err
		}
	}
	return p.setNumRecs(n + 1)
}

func (p *page) copyRec(from, to int) error {
	for _, fieldName := range p.layout.Schema().Fields() {
		val, err := p.getVal(from, fieldName)
		if err != nil {
			return err
		}
		if err := p.setVal(to, fieldName, val); err != nil {
			return err
		}
	}
	return nil
}

// transferRecs moves every record at or after slot into dest, preserving
// order, leaving this page with only the records before slot.
func (p *page) transferRecs(slot int, dest *page) error {
	destSlot := 0
	for {
		n, err := p.numRecs()
		if err != nil {
			return err
		}
		if slot >= n {
			return nil
		}
		if err := dest.insert(destSlot); err != nil {
			return err
		}
		for _, fieldName := range p.layout.Schema().Fields() {
			val, err := p.getVal(slot, fieldName)
			if err != nil {
				return err
			}
			if err := dest.setVal(destSlot, fieldName, val); err != nil {
				return err
			}
		}
		if err := p.delete(slot); err != nil {
			return err
		}
		destSlot++
	}
}

func (p *page) fieldPos(slot int, fieldName string) int {
	return p.slotPos(slot) + p.layout.Offset(fieldName)
}

func (p *page) slotPos(slot int) int {
	return 8 + slot*p.layout.SlotSize()
}

// minConstant returns the sentinel minimum value for typ, used to seed
// the root directory's first entry so every search key routes right.
func minConstant(typ record.FieldType) record.Constant {
	if typ == record.Integer {
		return record.NewIntConstant(math.MinInt32)
	}
	return record.NewStringConstant("")
}
