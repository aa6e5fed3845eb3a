// Package query implements the relational scan layer: composable
// read/write cursors (Scan, UpdateScan), the expression/term/predicate
// types a WHERE clause compiles to, and the two scans (SelectScan,
// ProjectScan) that every other scan in the engine wraps.
package query

import "ferrodb/internal/record"

// Scan is a read-only cursor over a stream of records. Every higher-level
// scan (selection, projection, an index lookup) implements Scan by
// wrapping one or more other Scans.
type Scan interface {
	// BeforeFirst positions the scan before its first record.
	BeforeFirst() error

	// Next advances to the next record. It returns false once the scan is
	// exhausted.
	Next() (bool, error)

	// GetInt returns the current record's value for fieldName.
	GetInt(fieldName string) (int32, error)

	// GetString returns the current record's value for fieldName.
	GetString(fieldName string) (string, error)

	// GetVal returns the current record's value for fieldName as a
	// Constant.
	GetVal(fieldName string) (record.Constant, error)

	// HasField reports whether fieldName is visible through this scan.
	HasField(fieldName string) bool

	// Close releases any resources (pinned pages, nested scans) this scan
	// is holding.
	Close()
}

// UpdateScan is a Scan that can also modify the underlying data. Only
// scans built directly on a single table support it.
type UpdateScan interface {
	Scan

	// SetInt writes val to fieldName in the current record.
	SetInt(fieldName string, val int32) error

	// SetString writes val to fieldName in the current record.
	SetString(fieldName string, val string) error

	// SetVal writes val to fieldName in the current record.
	SetVal(fieldName string, val record.Constant) error

	// Insert positions the scan on a newly allocated record.
	Insert() error

	// Delete marks the current record as deleted.
	Delete() error

	// RID returns the identity of the current record.
	RID() record.RID

	// MoveToRID repositions the scan directly onto the record identified
	// by rid.
	MoveToRID(rid record.RID) error
}

// Plan is the minimal set of cost estimates a query plan must expose for
// use by Predicate's reduction-factor calculations. internal/plan defines
// the richer Plan interface (adding Open/Schema) that every concrete plan
// satisfies; any such plan also satisfies this one structurally, with no
// import needed in either direction.
type Plan interface {
	// BlocksAccessed estimates the number of block accesses this plan's
	// output would require to read in full.
	BlocksAccessed() int

	// RecordsOutput estimates the number of records this plan produces.
	RecordsOutput() int

	// DistinctValues estimates the number of distinct values fieldName
	// takes on across this plan's output.
	DistinctValues(fieldName string) int
}
