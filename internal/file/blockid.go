// Package file implements the disk/page layer: fixed-size blocks addressed
// by (file name, block number), and the in-memory Page image of one block.
package file

import "fmt"

// BlockID identifies one block of one file. It is a value type: two BlockIDs
// with the same file name and number are interchangeable, including as map
// keys.
type BlockID struct {
	Filename string
	Number   int
}

// NewBlockID returns the identifier for block number blk of file name.
func NewBlockID(name string, blk int) BlockID {
	return BlockID{Filename: name, Number: blk}
}

func (b BlockID) String() string {
	return fmt.Sprintf("[file %s, block %d]", b.Filename, b.Number)
}
