package plan

import (
	"fmt"

	"ferrodb/internal/parse"
	"ferrodb/internal/tx"
)

// QueryPlanner turns parsed SELECT statement data into an executable
// Plan. BasicQueryPlanner is the only implementation.
type QueryPlanner interface {
	CreatePlan(data parse.QueryData, t *tx.Transaction) (Plan, error)
}

// UpdatePlanner executes parsed INSERT/DELETE/UPDATE/CREATE TABLE/CREATE
// INDEX statement data against the database. BasicUpdatePlanner and
// IndexUpdatePlanner are the two implementations; IndexUpdatePlanner
// additionally maintains indexes.
type UpdatePlanner interface {
	ExecuteInsert(data parse.InsertData, t *tx.Transaction) (int, error)
	ExecuteDelete(data parse.DeleteData, t *tx.Transaction) (int, error)
	ExecuteModify(data parse.ModifyData, t *tx.Transaction) (int, error)
	ExecuteCreateTable(data parse.CreateTableData, t *tx.Transaction) error
	ExecuteCreateIndex(data parse.CreateIndexData, t *tx.Transaction) error
}

// Planner is the single entry point for running SQL text against the
// database: it parses the statement, then dispatches to the query or
// update planner as appropriate.
type Planner struct {
	qp QueryPlanner
	up UpdatePlanner
}

// NewPlanner returns a Planner backed by qp and up.
func NewPlanner(qp QueryPlanner, up UpdatePlanner) *Planner {
	return &Planner{qp: qp, up: up}
}

// CreateQueryPlan parses and plans a SELECT statement.
func (pl *Planner) CreateQueryPlan(queryStr string, t *tx.Transaction) (Plan, error) {
	p, err := parse.NewParser(queryStr)
	if err != nil {
		return nil, err
	}
	data, err := p.Query()
	if err != nil {
		return nil, err
	}
	return pl.qp.CreatePlan(data, t)
}

// ExecuteUpdate parses and runs an INSERT, DELETE, UPDATE, or CREATE
// TABLE/INDEX statement, returning the number of records affected (zero
// for the CREATE statements).
func (pl *Planner) ExecuteUpdate(cmd string, t *tx.Transaction) (int, error) {
	p, err := parse.NewParser(cmd)
	if err != nil {
		return 0, err
	}
	data, err := p.UpdateCmd()
	if err != nil {
		return 0, err
	}
	switch v := data.(type) {
	case parse.InsertData:
		return pl.up.ExecuteInsert(v, t)
	case parse.DeleteData:
		return pl.up.ExecuteDelete(v, t)
	case parse.ModifyData:
		return pl.up.ExecuteModify(v, t)
	case parse.CreateTableData:
		return 0, pl.up.ExecuteCreateTable(v, t)
	case parse.CreateIndexData:
		return 0, pl.up.ExecuteCreateIndex(v, t)
	default:
		return 0, fmt.Errorf("plan: unrecognized statement type %T", v)
	}
}
