package file

import (
	"encoding/binary"
	"unicode/utf8"
)

// Page is the in-memory image of one block: a fixed-size byte buffer with
// typed accessors. All integers are 4-byte big-endian; strings are a 4-byte
// big-endian length prefix followed by UTF-8 bytes. Bounds violations are
// programming errors and panic, the same way an out-of-range slice index
// panics in Go.
type Page struct {
	contents []byte
}

// NewPage allocates a zero-filled page of the given block size.
func NewPage(blockSize int) *Page {
	return &Page{contents: make([]byte, blockSize)}
}

// NewPageFromBytes wraps an existing buffer (used for log records, which are
// built up in a scratch buffer before being appended to the log).
func NewPageFromBytes(b []byte) *Page {
	return &Page{contents: b}
}

// GetInt reads a big-endian int32 at offset.
func (p *Page) GetInt(offset int) int32 {
	return int32(binary.BigEndian.Uint32(p.contents[offset : offset+4]))
}

// SetInt writes a big-endian int32 at offset.
func (p *Page) SetInt(offset int, n int32) {
	binary.BigEndian.PutUint32(p.contents[offset:offset+4], uint32(n))
}

// GetBytes reads a length-prefixed byte slice at offset. The returned slice
// is a copy; mutating it does not affect the page.
func (p *Page) GetBytes(offset int) []byte {
	length := int(binary.BigEndian.Uint32(p.contents[offset : offset+4]))
	b := make([]byte, length)
	copy(b, p.contents[offset+4:offset+4+length])
	return b
}

// SetBytes writes a 4-byte length prefix followed by b at offset.
func (p *Page) SetBytes(offset int, b []byte) {
	binary.BigEndian.PutUint32(p.contents[offset:offset+4], uint32(len(b)))
	copy(p.contents[offset+4:offset+4+len(b)], b)
}

// GetString reads a length-prefixed UTF-8 string at offset.
func (p *Page) GetString(offset int) string {
	return string(p.GetBytes(offset))
}

// SetString writes s as a length-prefixed UTF-8 string at offset.
func (p *Page) SetString(offset int, s string) {
	p.SetBytes(offset, []byte(s))
}

// MaxLength returns the worst-case encoded size, in bytes, of a string of up
// to strlen Unicode characters: a 4-byte length prefix plus up to
// utf8.UTFMax bytes per character. Layout uses this to size varchar fields.
func MaxLength(strlen int) int {
	return 4 + strlen*utf8.UTFMax
}

// Contents exposes the raw backing buffer, used by FileManager to read/write
// whole blocks and by the log manager to size records against the page.
func (p *Page) Contents() []byte {
	return p.contents
}

// Size returns the block size this page was allocated with.
func (p *Page) Size() int {
	return len(p.contents)
}
