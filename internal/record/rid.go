package record

import "fmt"

// RID identifies a record's physical location: the block it lives in and
// its slot within that block's record page.
type RID struct {
	BlockNumber int
	Slot        int
}

// NewRID returns the RID for the given block and slot.
func NewRID(blockNumber, slot int) RID {
	return RID{BlockNumber: blockNumber, Slot: slot}
}

// String renders the RID for logging and debugging.
func (r RID) String() string {
	return fmt.Sprintf("[%d, %d]", r.BlockNumber, r.Slot)
}
