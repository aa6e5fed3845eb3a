// Package plan builds and costs query execution plans: trees of Plan
// nodes that, when Open is called on the root, produce the query.Scan
// that actually walks the data.
package plan

import (
	"ferrodb/internal/query"
	"ferrodb/internal/record"
)

// Plan is one node of a query plan: it knows how to produce a scan and
// how to estimate that scan's cost without running it. Every Plan also
// satisfies query.Plan structurally, since query.Plan's method set is a
// subset of this one.
type Plan interface {
	// Open produces the scan this plan describes.
	Open() (query.Scan, error)

	// BlocksAccessed estimates the number of block accesses this plan's
	// output would require to read in full.
	BlocksAccessed() int

	// RecordsOutput estimates the number of records this plan produces.
	RecordsOutput() int

	// DistinctValues estimates the number of distinct values fieldName
	// takes on across this plan's output.
	DistinctValues(fieldName string) int

	// Schema returns the schema of the records this plan produces.
	Schema() *record.Schema
}
