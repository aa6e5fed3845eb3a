package record

import "ferrodb/internal/file"

// Layout derives the physical byte offset of every field, and the total
// slot size, from a Schema. Every record slot begins with a 4-byte
// empty/used flag, followed by each field's bytes in schema order.
type Layout struct {
	schema   *Schema
	offsets  map[string]int
	slotSize int
}

// NewLayout computes a fresh layout from a schema, as happens the first
// time a table is created.
func NewLayout(schema *Schema) *Layout {
	offsets := make(map[string]int)
	pos := 4 // leave room for the empty/used flag
	for _, fieldName := range schema.Fields() {
		offsets[fieldName] = pos
		pos += lengthInBytes(schema, fieldName)
	}
	return &Layout{schema: schema, offsets: offsets, slotSize: pos}
}

// NewLayoutWithOffsets reconstructs a layout from offsets and a slot size
// already recorded in the catalog, avoiding recomputation on every table
// open.
func NewLayoutWithOffsets(schema *Schema, offsets map[string]int, slotSize int) *Layout {
	return &Layout{schema: schema, offsets: offsets, slotSize: slotSize}
}

func lengthInBytes(schema *Schema, fieldName string) int {
	if schema.Type(fieldName) == Integer {
		return 4
	}
	return file.MaxLength(schema.Length(fieldName))
}

// Schema returns the layout's underlying schema.
func (l *Layout) Schema() *Schema {
	return l.schema
}

// Offset returns the byte offset of fieldName within a slot, or -1 if the
// field is not part of this layout.
func (l *Layout) Offset(fieldName string) int {
	if off, ok := l.offsets[fieldName]; ok {
		return off
	}
	return -1
}

// SlotSize returns the total size in bytes of one record slot.
func (l *Layout) SlotSize() int {
	return l.slotSize
}
