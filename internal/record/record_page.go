package record

import (
	"ferrodb/internal/file"
	"ferrodb/internal/tx"
)

// Slot flags.
const (
	slotEmpty int32 = 0
	slotUsed  int32 = 1
)

// RecordPage interprets one block as a sequence of fixed-size slots, each
// holding a flag (empty/used) and the fields described by layout. It is the
// building block TableScan iterates over.
type RecordPage struct {
	tx     *tx.Transaction
	block  file.BlockID
	layout *Layout
}

// NewRecordPage pins block and returns a RecordPage over it.
func NewRecordPage(t *tx.Transaction, block file.BlockID, layout *Layout) (*RecordPage, error) {
	if err := t.Pin(block); err != nil {
		return nil, err
	}
	return &RecordPage{tx: t, block: block, layout: layout}, nil
}

// Block returns the block this page is reading.
func (rp *RecordPage) Block() file.BlockID {
	return rp.block
}

// GetInt returns the int32 stored in fieldName at slot.
func (rp *RecordPage) GetInt(slot int, fieldName string) (int32, error) {
	return rp.tx.GetInt(rp.block, rp.fieldPos(slot, fieldName))
}

// GetString returns the string stored in fieldName at slot.
func (rp *RecordPage) GetString(slot int, fieldName string) (string, error) {
	return rp.tx.GetString(rp.block, rp.fieldPos(slot, fieldName))
}

// SetInt writes val to fieldName at slot.
func (rp *RecordPage) SetInt(slot int, fieldName string, val int32) error {
	return rp.tx.SetInt(rp.block, rp.fieldPos(slot, fieldName), int(val), true)
}

// SetString writes val to fieldName at slot.
func (rp *RecordPage) SetString(slot int, fieldName string, val string) error {
	return rp.tx.SetString(rp.block, rp.fieldPos(slot, fieldName), val, true)
}

// Delete marks slot as empty.
func (rp *RecordPage) Delete(slot int) error {
	return rp.setFlag(slot, slotEmpty)
}

// Format zero-initializes every slot in the block as empty. It is used
// only when a block is first allocated, so it bypasses undo logging the
// same way the original block allocation does.
func (rp *RecordPage) Format() error {
	slot := 0
	for rp.isValidSlot(slot) {
		if err := rp.tx.SetInt(rp.block, rp.offset(slot), int(slotEmpty), false); err != nil {
			return err
		}
		schema := rp.layout.Schema()
		for _, fieldName := range schema.Fields() {
			fieldPos := rp.fieldPos(slot, fieldName)
			if schema.Type(fieldName) == Integer {
				if err := rp.tx.SetInt(rp.block, fieldPos, 0, false); err != nil {
					return err
				}
			} else {
				if err := rp.tx.SetString(rp.block, fieldPos, "", false); err != nil {
					return err
				}
			}
		}
		slot++
	}
	return nil
}

// NextAfter returns the next used slot after slot, or -1 if there is none.
func (rp *RecordPage) NextAfter(slot int) (int, error) {
	return rp.searchAfter(slot, slotUsed)
}

// InsertAfter returns the next empty slot after slot, marking it used, or
// -1 if there is none.
func (rp *RecordPage) InsertAfter(slot int) (int, error) {
	newSlot, err := rp.searchAfter(slot, slotEmpty)
	if err != nil || newSlot < 0 {
		return newSlot, err
	}
	if err := rp.setFlag(newSlot, slotUsed); err != nil {
		return -1, err
	}
	return newSlot, nil
}

func (rp *RecordPage) searchAfter(slot int, flag int32) (int, error) {
	slot++
	for rp.isValidSlot(slot) {
		f, err := rp.tx.GetInt(rp.block, rp.offset(slot))
		if err != nil {
			return -1, err
		}
		if f == flag {
			return slot, nil
		}
		slot++
	}
	return -1, nil
}

func (rp *RecordPage) setFlag(slot int, flag int32) error {
	return rp.tx.SetInt(rp.block, rp.offset(slot), int(flag), true)
}

func (rp *RecordPage) fieldPos(slot int, fieldName string) int {
	return rp.offset(slot) + rp.layout.Offset(fieldName)
}

func (rp *RecordPage) offset(slot int) int {
	return slot * rp.layout.SlotSize()
}

func (rp *RecordPage) isValidSlot(slot int) bool {
	return rp.offset(slot+1) <= rp.tx.BlockSize()
}
