package metadata

import (
	"ferrodb/internal/record"
	"ferrodb/internal/tx"
)

// maxViewDef is the maximum number of characters a stored view
// definition may occupy. It is sized so that one viewcat slot (4-byte
// flag, viewname, viewdef: 4 + 68 + 324 = 396 bytes) fits a 400-byte
// block. No SQL surface currently produces CREATE VIEW statements;
// ViewMgr exists so the catalog table is in place the day one does.
const maxViewDef = 80

// ViewMgr creates and looks up view definitions, backed by viewcat (one
// row per view, storing its defining query as text).
type ViewMgr struct {
	tblMgr *TableMgr
	layout *record.Layout
}

// NewViewMgr returns a ViewMgr, creating viewcat itself when isNew is
// true.
func NewViewMgr(isNew bool, tblMgr *TableMgr, t *tx.Transaction) (*ViewMgr, error) {
	if isNew {
		schema := record.NewSchema()
		schema.AddStringField("viewname", MaxName)
		schema.AddStringField("viewdef", maxViewDef)
		if err := tblMgr.CreateTable("viewcat", schema, t); err != nil {
			return nil, err
		}
	}
	layout, err := tblMgr.GetLayout("viewcat", t)
	if err != nil {
		return nil, err
	}
	return &ViewMgr{tblMgr: tblMgr, layout: layout}, nil
}

// CreateView records viewName's defining query.
func (vm *ViewMgr) CreateView(viewName, viewDef string, t *tx.Transaction) error {
	ts, err := record.NewTableScan(t, "viewcat", vm.layout)
	if err != nil {
		return err
	}
	defer ts.Close()
	if err := ts.Insert(); err != nil {
		return err
	}
	if err := ts.SetString("viewname", viewName); err != nil {
		return err
	}
	return ts.SetString("viewdef", viewDef)
}

// GetViewDef returns viewName's defining query, and true, or ("", false)
// if no such view exists.
func (vm *ViewMgr) GetViewDef(viewName string, t *tx.Transaction) (string, bool, error) {
	ts, err := record.NewTableScan(t, "viewcat", vm.layout)
	if err != nil {
		return "", false, err
	}
	defer ts.Close()
	for {
		ok, err := ts.Next()
		if err != nil {
			return "", false, err
		}
		if !ok {
			return "", false, nil
		}
		name, err := ts.GetString("viewname")
		if err != nil {
			return "", false, err
		}
		if name == viewName {
			def, err := ts.GetString("viewdef")
			if err != nil {
				return "", false, err
			}
			return def, true, nil
		}
	}
}
