package plan

import (
	"fmt"

	"ferrodb/internal/index/iscan"
	"ferrodb/internal/metadata"
	"ferrodb/internal/query"
	"ferrodb/internal/record"
)

// IndexSelectPlan retrieves exactly the records of a table plan whose
// indexed field equals a fixed value, using an index lookup in place of
// a full table scan.
type IndexSelectPlan struct {
	p   Plan
	ii  *metadata.IndexInfo
	val record.Constant
}

// NewIndexSelectPlan returns a plan over p restricted to the records ii
// reports for val. p must open into a *record.TableScan, since an index
// entry's RID only makes sense against the table it was built from.
func NewIndexSelectPlan(p Plan, ii *metadata.IndexInfo, val record.Constant) *IndexSelectPlan {
	return &IndexSelectPlan{p: p, ii: ii, val: val}
}

// Open produces an IndexSelectScan over the underlying table scan.
func (isp *IndexSelectPlan) Open() (query.Scan, error) {
	s, err := isp.p.Open()
	if err != nil {
		return nil, err
	}
	ts, ok := s.(*record.TableScan)
	if !ok {
		return nil, fmt.Errorf("plan: index select requires a table scan, got %T", s)
	}
	idx, err := isp.ii.Open()
	if err != nil {
		return nil, err
	}
	return iscan.NewIndexSelectScan(idx, ts, isp.val)
}

// BlocksAccessed estimates the cost of the index lookup itself plus
// reading the records it returns.
func (isp *IndexSelectPlan) BlocksAccessed() int {
	return isp.ii.BlocksAccessed() + isp.RecordsOutput()
}

// RecordsOutput estimates the number of records the index lookup
// returns.
func (isp *IndexSelectPlan) RecordsOutput() int {
	return isp.ii.RecordsOutput()
}

// DistinctValues estimates the number of distinct values fieldName takes
// on across the lookup's output.
func (isp *IndexSelectPlan) DistinctValues(fieldName string) int {
	return isp.ii.DistinctValues(fieldName)
}

// Schema returns the underlying table plan's schema.
func (isp *IndexSelectPlan) Schema() *record.Schema {
	return isp.p.Schema()
}
