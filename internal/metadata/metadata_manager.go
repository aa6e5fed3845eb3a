package metadata

import (
	"ferrodb/internal/record"
	"ferrodb/internal/tx"
)

// Manager is the single entry point the query planner and parser use to
// reach the catalog: table schemas, views, indexes, and the statistics
// plans are costed against.
type Manager struct {
	TableMgr *TableMgr
	ViewMgr  *ViewMgr
	StatMgr  *StatMgr
	IndexMgr *IndexMgr
}

// NewManager bootstraps the catalog, creating every catalog table when
// isNew is true.
func NewManager(isNew bool, t *tx.Transaction) (*Manager, error) {
	tblMgr, err := NewTableMgr(isNew, t)
	if err != nil {
		return nil, err
	}
	viewMgr, err := NewViewMgr(isNew, tblMgr, t)
	if err != nil {
		return nil, err
	}
	statMgr, err := NewStatMgr(tblMgr, t)
	if err != nil {
		return nil, err
	}
	idxMgr, err := NewIndexMgr(isNew, tblMgr, statMgr, t)
	if err != nil {
		return nil, err
	}
	return &Manager{TableMgr: tblMgr, ViewMgr: viewMgr, StatMgr: statMgr, IndexMgr: idxMgr}, nil
}

// CreateTable records a new table's schema.
func (m *Manager) CreateTable(tblName string, schema *record.Schema, t *tx.Transaction) error {
	return m.TableMgr.CreateTable(tblName, schema, t)
}

// GetLayout returns a table's physical layout.
func (m *Manager) GetLayout(tblName string, t *tx.Transaction) (*record.Layout, error) {
	return m.TableMgr.GetLayout(tblName, t)
}

// CreateView records a new view's defining query.
func (m *Manager) CreateView(viewName, viewDef string, t *tx.Transaction) error {
	return m.ViewMgr.CreateView(viewName, viewDef, t)
}

// GetViewDef returns a view's defining query.
func (m *Manager) GetViewDef(viewName string, t *tx.Transaction) (string, bool, error) {
	return m.ViewMgr.GetViewDef(viewName, t)
}

// CreateIndex records a new index.
func (m *Manager) CreateIndex(idxName, tblName, fldName string, t *tx.Transaction) error {
	return m.IndexMgr.CreateIndex(idxName, tblName, fldName, t)
}

// GetIndexInfo returns every index defined on a table.
func (m *Manager) GetIndexInfo(tblName string, t *tx.Transaction) (map[string]*IndexInfo, error) {
	return m.IndexMgr.GetIndexInfo(tblName, t)
}

// GetStatInfo returns a table's cost statistics.
func (m *Manager) GetStatInfo(tblName string, layout *record.Layout, t *tx.Transaction) (StatInfo, error) {
	return m.StatMgr.GetStatInfo(tblName, layout, t)
}
