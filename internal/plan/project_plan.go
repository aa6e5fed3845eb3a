package plan

import (
	"ferrodb/internal/query"
	"ferrodb/internal/record"
)

// ProjectPlan restricts another plan's output to a fixed list of fields.
type ProjectPlan struct {
	p      Plan
	schema *record.Schema
}

// NewProjectPlan returns a plan wrapping p, exposing only fieldList.
func NewProjectPlan(p Plan, fieldList []string) *ProjectPlan {
	schema := record.NewSchema()
	for _, f := range fieldList {
		schema.Add(f, p.Schema())
	}
	return &ProjectPlan{p: p, schema: schema}
}

// Open produces a ProjectScan wrapping the underlying plan's scan.
func (pp *ProjectPlan) Open() (query.Scan, error) {
	s, err := pp.p.Open()
	if err != nil {
		return nil, err
	}
	return query.NewProjectScan(s, pp.schema.Fields()), nil
}

// BlocksAccessed estimates the number of block accesses the underlying
// plan costs: projection happens record-at-a-time, adding no further
// accesses.
func (pp *ProjectPlan) BlocksAccessed() int {
	return pp.p.BlocksAccessed()
}

// RecordsOutput estimates the number of records the underlying plan
// produces: projection never drops records.
func (pp *ProjectPlan) RecordsOutput() int {
	return pp.p.RecordsOutput()
}

// DistinctValues estimates the number of distinct values fieldName takes
// on.
func (pp *ProjectPlan) DistinctValues(fieldName string) int {
	return pp.p.DistinctValues(fieldName)
}

// Schema returns the projected schema.
func (pp *ProjectPlan) Schema() *record.Schema {
	return pp.schema
}
