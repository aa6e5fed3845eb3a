package query

import (
	"fmt"

	"ferrodb/internal/record"
)

// ProjectScan restricts another scan's visible fields to a fixed list.
// It is always read-only, even when the underlying scan supports
// updates: projecting away a field makes the record's identity
// ambiguous for write operations.
type ProjectScan struct {
	s      Scan
	fields map[string]struct{}
}

// NewProjectScan wraps s, exposing only the named fields.
func NewProjectScan(s Scan, fieldList []string) *ProjectScan {
	fields := make(map[string]struct{}, len(fieldList))
	for _, f := range fieldList {
		fields[f] = struct{}{}
	}
	return &ProjectScan{s: s, fields: fields}
}

// BeforeFirst repositions the scan before its first record.
func (ps *ProjectScan) BeforeFirst() error {
	return ps.s.BeforeFirst()
}

// Next advances to the next record.
func (ps *ProjectScan) Next() (bool, error) {
	return ps.s.Next()
}

// GetInt returns the current record's value for fieldName.
func (ps *ProjectScan) GetInt(fieldName string) (int32, error) {
	if !ps.HasField(fieldName) {
		return 0, fmt.Errorf("query: field %q is not part of this projection", fieldName)
	}
	return ps.s.GetInt(fieldName)
}

// GetString returns the current record's value for fieldName.
func (ps *ProjectScan) GetString(fieldName string) (string, error) {
	if !ps.HasField(fieldName) {
		return "", fmt.Errorf("query: field %q is not part of this projection", fieldName)
	}
	return ps.s.GetString(fieldName)
}

// GetVal returns the current record's value for fieldName as a Constant.
func (ps *ProjectScan) GetVal(fieldName string) (record.Constant, error) {
	if !ps.HasField(fieldName) {
		return record.Constant{}, fmt.Errorf("query: field %q is not part of this projection", fieldName)
	}
	return ps.s.GetVal(fieldName)
}

// HasField reports whether fieldName is part of this projection.
func (ps *ProjectScan) HasField(fieldName string) bool {
	_, ok := ps.fields[fieldName]
	return ok
}

// Close releases the underlying scan.
func (ps *ProjectScan) Close() {
	ps.s.Close()
}
