package plan

import (
	"ferrodb/internal/metadata"
	"ferrodb/internal/query"
	"ferrodb/internal/record"
	"ferrodb/internal/tx"
)

// TablePlan is a leaf plan: scanning one table in full, via TableScan.
type TablePlan struct {
	tx      *tx.Transaction
	tblName string
	layout  *record.Layout
	si      metadata.StatInfo
}

// NewTablePlan returns a plan for scanning tblName in full.
func NewTablePlan(t *tx.Transaction, tblName string, mdm *metadata.Manager) (*TablePlan, error) {
	layout, err := mdm.GetLayout(tblName, t)
	if err != nil {
		return nil, err
	}
	si, err := mdm.GetStatInfo(tblName, layout, t)
	if err != nil {
		return nil, err
	}
	return &TablePlan{tx: t, tblName: tblName, layout: layout, si: si}, nil
}

// Open produces a TableScan over the table.
func (tp *TablePlan) Open() (query.Scan, error) {
	return record.NewTableScan(tp.tx, tp.tblName, tp.layout)
}

// BlocksAccessed estimates the number of block accesses a full scan
// costs.
func (tp *TablePlan) BlocksAccessed() int {
	return tp.si.BlocksAccessed()
}

// RecordsOutput estimates the number of records the table holds.
func (tp *TablePlan) RecordsOutput() int {
	return tp.si.RecordsOutput()
}

// DistinctValues estimates the number of distinct values fieldName takes
// on.
func (tp *TablePlan) DistinctValues(fieldName string) int {
	return tp.si.DistinctValues(fieldName)
}

// Schema returns the table's schema.
func (tp *TablePlan) Schema() *record.Schema {
	return tp.layout.Schema()
}
