package parse

import (
	"ferrodb/internal/query"
	"ferrodb/internal/record"
)

// QueryData is a parsed SELECT statement.
type QueryData struct {
	Fields []string
	Tables []string
	Pred   *query.Predicate
}

// InsertData is a parsed INSERT statement.
type InsertData struct {
	TableName string
	Fields    []string
	Values    []record.Constant
}

// ModifyData is a parsed UPDATE statement.
type ModifyData struct {
	TableName string
	FieldName string
	NewValue  query.Expression
	Pred      *query.Predicate
}

// DeleteData is a parsed DELETE statement.
type DeleteData struct {
	TableName string
	Pred      *query.Predicate
}

// CreateTableData is a parsed CREATE TABLE statement.
type CreateTableData struct {
	TableName string
	Schema    *record.Schema
}

// CreateIndexData is a parsed CREATE INDEX statement.
type CreateIndexData struct {
	IndexName string
	TableName string
	FieldName string
}
