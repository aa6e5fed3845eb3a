package plan

import (
	"fmt"

	"ferrodb/internal/metadata"
	"ferrodb/internal/parse"
	"ferrodb/internal/query"
	"ferrodb/internal/tx"
)

// BasicUpdatePlanner executes INSERT, DELETE, UPDATE, and CREATE
// TABLE/INDEX statements directly against the underlying table, with no
// index maintenance. IndexUpdatePlanner is a separate implementation of the
// same operations that also maintains indexes; it does not use this type.
type BasicUpdatePlanner struct {
	mdm *metadata.Manager
}

// NewBasicUpdatePlanner returns an update planner backed by mdm's
// catalog.
func NewBasicUpdatePlanner(mdm *metadata.Manager) *BasicUpdatePlanner {
	return &BasicUpdatePlanner{mdm: mdm}
}

func (up *BasicUpdatePlanner) openTableUpdateScan(tblName string, t *tx.Transaction) (query.UpdateScan, error) {
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

// ExecuteInsert appends one new record to data.TableName.
func (up *BasicUpdatePlanner) ExecuteInsert(data parse.InsertData, t *tx.Transaction) (int, error) {
	us, err := up.openTableUpdateScan(data.TableName, t)
	if err != nil {
		return 0, err
	}
	defer us.Close()

	if err := us.Insert(); err != nil {
		return 0, err
	}
	for i, fld := range data.Fields {
		if err := us.SetVal(fld, data.Values[i]); err != nil {
			return 0, err
		}
	}
	return 1, nil
}

// ExecuteDelete removes every record of data.TableName satisfying
// data.Pred, and returns how many were removed.
func (up *BasicUpdatePlanner) ExecuteDelete(data parse.DeleteData, t *tx.Transaction) (int, error) {
	tp, err := NewTablePlan(t, data.TableName, up.mdm)
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
		if err := us.Delete(); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// ExecuteModify updates data.FieldName in every record of data.TableName
// satisfying data.Pred, and returns how many were changed.
func (up *BasicUpdatePlanner) ExecuteModify(data parse.ModifyData, t *tx.Transaction) (int, error) {
	tp, err := NewTablePlan(t, data.TableName, up.mdm)
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
		val, err := data.NewValue.Evaluate(us)
		if err != nil {
			return count, err
		}
		if err := us.SetVal(data.FieldName, val); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// ExecuteCreateTable records a new table's schema.
func (up *BasicUpdatePlanner) ExecuteCreateTable(data parse.CreateTableData, t *tx.Transaction) error {
	return up.mdm.CreateTable(data.TableName, data.Schema, t)
}

// ExecuteCreateIndex records a new index. BasicUpdatePlanner does not
// build it over the table's existing records; IndexUpdatePlanner does.
func (up *BasicUpdatePlanner) ExecuteCreateIndex(data parse.CreateIndexData, t *tx.Transaction) error {
	return up.mdm.CreateIndex(data.IndexName, data.TableName, data.FieldName, t)
}
