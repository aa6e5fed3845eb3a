package plan

import (
	"ferrodb/internal/query"
	"ferrodb/internal/record"
)

// SelectPlan restricts another plan's output to records satisfying a
// predicate.
type SelectPlan struct {
	p    Plan
	pred *query.Predicate
}

// NewSelectPlan returns a plan wrapping p, filtered by pred.
func NewSelectPlan(p Plan, pred *query.Predicate) *SelectPlan {
	return &SelectPlan{p: p, pred: pred}
}

// Open produces a SelectScan wrapping the underlying plan's scan.
func (sp *SelectPlan) Open() (query.Scan, error) {
	s, err := sp.p.Open()
	if err != nil {
		return nil, err
	}
	return query.NewSelectScan(s, sp.pred), nil
}

// BlocksAccessed estimates the number of block accesses the underlying
// plan costs: filtering happens record-at-a-time on an already-read
// block, so it adds no further accesses.
func (sp *SelectPlan) BlocksAccessed() int {
	return sp.p.BlocksAccessed()
}

// RecordsOutput estimates the number of records surviving the predicate.
func (sp *SelectPlan) RecordsOutput() int {
	return sp.p.RecordsOutput() / sp.pred.ReductionFactor(sp.p)
}

// DistinctValues estimates the number of distinct values fieldName takes
// on across the filtered output.
func (sp *SelectPlan) DistinctValues(fieldName string) int {
	if _, ok := sp.pred.EquatesWithConstant(fieldName); ok {
		return 1
	}
	if other, ok := sp.pred.EquatesWithField(fieldName); ok {
		return min(sp.p.DistinctValues(fieldName), sp.p.DistinctValues(other))
	}
	return sp.p.DistinctValues(fieldName)
}

// Schema returns the underlying plan's schema: selection never changes
// which fields are visible.
func (sp *SelectPlan) Schema() *record.Schema {
	return sp.p.Schema()
}
