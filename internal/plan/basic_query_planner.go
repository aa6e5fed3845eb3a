package plan

import (
	"fmt"

	"ferrodb/internal/metadata"
	"ferrodb/internal/parse"
	"ferrodb/internal/tx"
)

// BasicQueryPlanner builds a query plan directly from parsed query data,
// without any cost-based rewriting: a table scan, filtered by the
// predicate, projected down to the selected fields.
//
// Only single-table queries are supported; there is no join operator.
type BasicQueryPlanner struct {
	mdm *metadata.Manager
}

// NewBasicQueryPlanner returns a planner backed by mdm's catalog.
func NewBasicQueryPlanner(mdm *metadata.Manager) *BasicQueryPlanner {
	return &BasicQueryPlanner{mdm: mdm}
}

// CreatePlan builds the plan for a parsed SELECT statement.
func (qp *BasicQueryPlanner) CreatePlan(data parse.QueryData, t *tx.Transaction) (Plan, error) {
	if len(data.Tables) != 1 {
		return nil, fmt.Errorf("plan: select supports exactly one table, got %d", len(data.Tables))
	}

	var p Plan
	p, err := NewTablePlan(t, data.Tables[0], qp.mdm)
	if err != nil {
		return nil, err
	}

	p = NewSelectPlan(p, data.Pred)

	fields := data.Fields
	if fields == nil {
		fields = p.Schema().Fields()
	}
	p = NewProjectPlan(p, fields)
	return p, nil
}
