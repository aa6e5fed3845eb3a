package metadata

import (
	"ferrodb/internal/record"
	"ferrodb/internal/tx"
)

// IndexMgr creates and looks up secondary indexes, backed by idxcat (one
// row per index, naming the table and field it indexes).
type IndexMgr struct {
	layout  *record.Layout
	tblMgr  *TableMgr
	statMgr *StatMgr
}

// NewIndexMgr returns an IndexMgr, creating idxcat itself when isNew is
// true.
func NewIndexMgr(isNew bool, tblMgr *TableMgr, statMgr *StatMgr, t *tx.Transaction) (*IndexMgr, error) {
	if isNew {
		schema := record.NewSchema()
		schema.AddStringField("indexname", MaxName)
		schema.AddStringField("tablename", MaxName)
		schema.AddStringField("fieldname", MaxName)
		if err := tblMgr.CreateTable("idxcat", schema, t); err != nil {
			return nil, err
		}
	}
	layout, err := tblMgr.GetLayout("idxcat", t)
	if err != nil {
		return nil, err
	}
	return &IndexMgr{layout: layout, tblMgr: tblMgr, statMgr: statMgr}, nil
}

// CreateIndex records a new index named idxName on tblName.fldName.
func (im *IndexMgr) CreateIndex(idxName, tblName, fldName string, t *tx.Transaction) error {
	ts, err := record.NewTableScan(t, "idxcat", im.layout)
	if err != nil {
		return err
	}
	defer ts.Close()
	if err := ts.Insert(); err != nil {
		return err
	}
	if err := ts.SetString("indexname", idxName); err != nil {
		return err
	}
	if err := ts.SetString("tablename", tblName); err != nil {
		return err
	}
	return ts.SetString("fieldname", fldName)
}

// GetIndexInfo returns every index defined on tblName, keyed by the
// field each one indexes.
func (im *IndexMgr) GetIndexInfo(tblName string, t *tx.Transaction) (map[string]*IndexInfo, error) {
	result := make(map[string]*IndexInfo)

	ts, err := record.NewTableScan(t, "idxcat", im.layout)
	if err != nil {
		return nil, err
	}
	defer ts.Close()
	for {
		ok, err := ts.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		name, err := ts.GetString("tablename")
		if err != nil {
			return nil, err
		}
		if name != tblName {
			continue
		}
		idxName, err := ts.GetString("indexname")
		if err != nil {
			return nil, err
		}
		fldName, err := ts.GetString("fieldname")
		if err != nil {
			return nil, err
		}
		tblLayout, err := im.tblMgr.GetLayout(tblName, t)
		if err != nil {
			return nil, err
		}
		si, err := im.statMgr.GetStatInfo(tblName, tblLayout, t)
		if err != nil {
			return nil, err
		}
		result[fldName] = newIndexInfo(idxName, fldName, tblLayout.Schema(), t, si)
	}
	return result, nil
}
