package plan

import (
	"fmt"

	"ferrodb/internal/index"
	"ferrodb/internal/metadata"
	"ferrodb/internal/parse"
	"ferrodb/internal/query"
	"ferrodb/internal/tx"
)

// IndexUpdatePlanner executes the same statements as BasicUpdatePlanner,
// additionally keeping every affected index in sync with the table.
type IndexUpdatePlanner struct {
	mdm *metadata.Manager
}

// NewIndexUpdatePlanner returns an update planner backed by mdm's
// catalog.
func NewIndexUpdatePlanner(mdm *metadata.Manager) *IndexUpdatePlanner {
	return &IndexUpdatePlanner{mdm: mdm}
}

func (up *IndexUpdatePlanner) openTableUpdateScan(tblName string, t *tx.Transaction) (query.UpdateScan, error) {
	p, err := NewTablePlan(t, tblName, up.mdm)
	if err != nil {
		return nil, err
	}
	s, err := p.Open()
	if err != nil {
		return nil, err
	}
	us, ok := s.(query.UpdateScan)
	if !ok {
		s.Close()
		return nil, fmt.Errorf("plan: table scan for %q does not support updates", tblName)
	}
	return us, nil
}

// ExecuteInsert appends one new record, inserting a matching entry into
// every index defined on an inserted field.
func (up *IndexUpdatePlanner) ExecuteInsert(data parse.InsertData, t *tx.Transaction) (int, error) {
	us, err := up.openTableUpdateScan(data.TableName, t)
	if err != nil {
		return 0, err
	}
	defer us.Close()

	indexes, err := up.mdm.GetIndexInfo(data.TableName, t)
	if err != nil {
		return 0, err
	}

	if err := us.Insert(); err != nil {
		return 0, err
	}
	rid := us.RID()

	for i, fld := range data.Fields {
		val := data.Values[i]
		if err := us.SetVal(fld, val); err != nil {
			return 0, err
		}
		if ii, ok := indexes[fld]; ok {
			idx, err := ii.Open()
			if err != nil {
				return 0, err
			}
			if err := idx.Insert(val, rid); err != nil {
				idx.Close()
				return 0, err
			}
			idx.Close()
		}
	}
	return 1, nil
}

// ExecuteDelete removes every record of data.TableName satisfying
// data.Pred, removing its entries from every index along the way.
func (up *IndexUpdatePlanner) ExecuteDelete(data parse.DeleteData, t *tx.Transaction) (int, error) {
	tp, err := NewTablePlan(t, data.TableName, up.mdm)
	if err != nil {
		return 0, err
	}
	indexes, err := up.mdm.GetIndexInfo(data.TableName, t)
	if err != nil {
		return 0, err
	}

	sp := NewSelectPlan(tp, data.Pred)
	s, err := sp.Open()
	if err != nil {
		return 0, err
	}
	us, ok := s.(query.UpdateScan)
	if !ok {
		s.Close()
		return 0, fmt.Errorf("plan: table scan for %q does not support updates", data.TableName)
	}
	defer us.Close()

	count := 0
	for {
		ok, err := us.Next()
		if err != nil {
			return count, err
		}
		if !ok {
			break
		}
		rid := us.RID()
		for fldName, ii := range indexes {
			val, err := us.GetVal(fldName)
			if err != nil {
				return count, err
			}
			idx, err := ii.Open()
			if err != nil {
				return count, err
			}
			if err := idx.Delete(val, rid); err != nil {
				idx.Close()
				return count, err
			}
			idx.Close()
		}
		if err := us.Delete(); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// ExecuteModify updates data.FieldName in every record of data.TableName
// satisfying data.Pred, moving its index entry (if any) to match.
func (up *IndexUpdatePlanner) ExecuteModify(data parse.ModifyData, t *tx.Transaction) (int, error) {
	tp, err := NewTablePlan(t, data.TableName, up.mdm)
	if err != nil {
		return 0, err
	}
	indexes, err := up.mdm.GetIndexInfo(data.TableName, t)
	if err != nil {
		return 0, err
	}
	ii, hasIndex := indexes[data.FieldName]

	sp := NewSelectPlan(tp, data.Pred)
	s, err := sp.Open()
	if err != nil {
		return 0, err
	}
	us, ok := s.(query.UpdateScan)
	if !ok {
		s.Close()
		return 0, fmt.Errorf("plan: table scan for %q does not support updates", data.TableName)
	}
	defer us.Close()

	var idx index.Index
	if hasIndex {
		idx, err = ii.Open()
		if err != nil {
			return 0, err
		}
		defer idx.Close()
	}

	count := 0
	for {
		ok, err := us.Next()
		if err != nil {
			return count, err
		}
		if !ok {
			break
		}
		newVal, err := data.NewValue.Evaluate(us)
		if err != nil {
			return count, err
		}
		if hasIndex {
			oldVal, err := us.GetVal(data.FieldName)
			if err != nil {
				return count, err
			}
			rid := us.RID()
			if err := idx.Delete(oldVal, rid); err != nil {
				return count, err
			}
			if err := idx.Insert(newVal, rid); err != nil {
				return count, err
			}
		}
		if err := us.SetVal(data.FieldName, newVal); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// ExecuteCreateTable records a new table's schema.
func (up *IndexUpdatePlanner) ExecuteCreateTable(data parse.CreateTableData, t *tx.Transaction) error {
	return up.mdm.CreateTable(data.TableName, data.Schema, t)
}

// ExecuteCreateIndex records a new index and builds it over every
// existing record of the indexed table.
func (up *IndexUpdatePlanner) ExecuteCreateIndex(data parse.CreateIndexData, t *tx.Transaction) error {
	if err := up.mdm.CreateIndex(data.IndexName, data.TableName, data.FieldName, t); err != nil {
		return err
	}

	indexes, err := up.mdm.GetIndexInfo(data.TableName, t)
	if err != nil {
		return err
	}
	ii, ok := indexes[data.FieldName]
	if !ok {
		return fmt.Errorf("plan: index %q was not recorded for field %q", data.IndexName, data.FieldName)
	}
	idx, err := ii.Open()
	if err != nil {
		return err
	}
	defer idx.Close()

	tp, err := NewTablePlan(t, data.TableName, up.mdm)
	if err != nil {
		return err
	}
	s, err := tp.Open()
	if err != nil {
		return err
	}
	defer s.Close()

	for {
		ok, err := s.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		val, err := s.GetVal(data.FieldName)
		if err != nil {
			return err
		}
		us, ok := s.(query.UpdateScan)
		if !ok {
			return fmt.Errorf("plan: table scan for %q does not support updates", data.TableName)
		}
		if err := idx.Insert(val, us.RID()); err != nil {
			return err
		}
	}
}
