package parse

import (
	"ferrodb/internal/query"
	"ferrodb/internal/record"
)

// Parser turns one SQL statement into its corresponding *Data type via
// recursive descent over a lexer. A Parser is used once, for a single
// statement, and discarded.
type Parser struct {
	lex *lexer
}

// NewParser returns a Parser ready to parse input.
func NewParser(input string) (*Parser, error) {
	lex, err := newLexer(input)
	if err != nil {
		return nil, err
	}
	return &Parser{lex: lex}, nil
}

func (p *Parser) field() (string, error) {
	return p.lex.eatID()
}

func (p *Parser) constant() (record.Constant, error) {
	if p.lex.matchStringConstant() {
		s, err := p.lex.eatStringConstant()
		if err != nil {
			return record.Constant{}, err
		}
		return record.NewStringConstant(s), nil
	}
	n, err := p.lex.eatIntConstant()
	if err != nil {
		return record.Constant{}, err
	}
	return record.NewIntConstant(n), nil
}

func (p *Parser) expression() (query.Expression, error) {
	if p.lex.matchID() {
		fld, err := p.field()
		if err != nil {
			return query.Expression{}, err
		}
		return query.NewFieldNameExpression(fld), nil
	}
	c, err := p.constant()
	if err != nil {
		return query.Expression{}, err
	}
	return query.NewConstantExpression(c), nil
}

func (p *Parser) term() (query.Term, error) {
	lhs, err := p.expression()
	if err != nil {
		return query.Term{}, err
	}
	if err := p.lex.eatDelim("="); err != nil {
		return query.Term{}, err
	}
	rhs, err := p.expression()
	if err != nil {
		return query.Term{}, err
	}
	return query.NewTerm(lhs, rhs), nil
}

func (p *Parser) predicate() (*query.Predicate, error) {
	t, err := p.term()
	if err != nil {
		return nil, err
	}
	pred := query.NewPredicateFromTerm(t)
	if p.lex.matchKeyword("and") {
		if err := p.lex.eatKeyword("and"); err != nil {
			return nil, err
		}
		rest, err := p.predicate()
		if err != nil {
			return nil, err
		}
		pred.ConjoinWith(rest)
	}
	return pred, nil
}

// Query parses a SELECT statement.
func (p *Parser) Query() (QueryData, error) {
	if err := p.lex.eatKeyword("select"); err != nil {
		return QueryData{}, err
	}
	fields, err := p.selectList()
	if err != nil {
		return QueryData{}, err
	}
	if err := p.lex.eatKeyword("from"); err != nil {
		return QueryData{}, err
	}
	tables, err := p.idList()
	if err != nil {
		return QueryData{}, err
	}
	pred := query.NewPredicate()
	if p.lex.matchKeyword("where") {
		if err := p.lex.eatKeyword("where"); err != nil {
			return QueryData{}, err
		}
		pred, err = p.predicate()
		if err != nil {
			return QueryData{}, err
		}
	}
	return QueryData{Fields: fields, Tables: tables, Pred: pred}, nil
}

func (p *Parser) selectList() ([]string, error) {
	if p.lex.matchDelim("*") {
		if err := p.lex.eatDelim("*"); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return p.idList()
}

func (p *Parser) idList() ([]string, error) {
	first, err := p.lex.eatID()
	if err != nil {
		return nil, err
	}
	list := []string{first}
	for p.lex.matchDelim(",") {
		if err := p.lex.eatDelim(","); err != nil {
			return nil, err
		}
		next, err := p.lex.eatID()
		if err != nil {
			return nil, err
		}
		list = append(list, next)
	}
	return list, nil
}

func (p *Parser) constList() ([]record.Constant, error) {
	first, err := p.constant()
	if err != nil {
		return nil, err
	}
	list := []record.Constant{first}
	for p.lex.matchDelim(",") {
		if err := p.lex.eatDelim(","); err != nil {
			return nil, err
		}
		next, err := p.constant()
		if err != nil {
			return nil, err
		}
		list = append(list, next)
	}
	return list, nil
}

// UpdateCmd parses one non-query statement: INSERT, DELETE, UPDATE, or
// CREATE TABLE/INDEX. It returns one of InsertData, DeleteData,
// ModifyData, CreateTableData, or CreateIndexData.
func (p *Parser) UpdateCmd() (any, error) {
	switch {
	case p.lex.matchKeyword("insert"):
		return p.insert()
	case p.lex.matchKeyword("delete"):
		return p.delete()
	case p.lex.matchKeyword("update"):
		return p.modify()
	case p.lex.matchKeyword("create"):
		return p.create()
	default:
		return nil, syntaxErrorf(p.lex.pos, "expected insert, delete, update, or create, found %q", p.lex.cur.text)
	}
}

func (p *Parser) insert() (InsertData, error) {
	if err := p.lex.eatKeyword("insert"); err != nil {
		return InsertData{}, err
	}
	if err := p.lex.eatKeyword("into"); err != nil {
		return InsertData{}, err
	}
	tbl, err := p.lex.eatID()
	if err != nil {
		return InsertData{}, err
	}
	if err := p.lex.eatDelim("("); err != nil {
		return InsertData{}, err
	}
	fields, err := p.idList()
	if err != nil {
		return InsertData{}, err
	}
	if err := p.lex.eatDelim(")"); err != nil {
		return InsertData{}, err
	}
	if err := p.lex.eatKeyword("values"); err != nil {
		return InsertData{}, err
	}
	if err := p.lex.eatDelim("("); err != nil {
		return InsertData{}, err
	}
	values, err := p.constList()
	if err != nil {
		return InsertData{}, err
	}
	if err := p.lex.eatDelim(")"); err != nil {
		return InsertData{}, err
	}
	if len(fields) != len(values) {
		return InsertData{}, syntaxErrorf(p.lex.pos, "insert names %d fields but supplies %d values", len(fields), len(values))
	}
	return InsertData{TableName: tbl, Fields: fields, Values: values}, nil
}

func (p *Parser) delete() (DeleteData, error) {
	if err := p.lex.eatKeyword("delete"); err != nil {
		return DeleteData{}, err
	}
	if err := p.lex.eatKeyword("from"); err != nil {
		return DeleteData{}, err
	}
	tbl, err := p.lex.eatID()
	if err != nil {
		return DeleteData{}, err
	}
	pred := query.NewPredicate()
	if p.lex.matchKeyword("where") {
		if err := p.lex.eatKeyword("where"); err != nil {
			return DeleteData{}, err
		}
		pred, err = p.predicate()
		if err != nil {
			return DeleteData{}, err
		}
	}
	return DeleteData{TableName: tbl, Pred: pred}, nil
}

func (p *Parser) modify() (ModifyData, error) {
	if err := p.lex.eatKeyword("update"); err != nil {
		return ModifyData{}, err
	}
	tbl, err := p.lex.eatID()
	if err != nil {
		return ModifyData{}, err
	}
	if err := p.lex.eatKeyword("set"); err != nil {
		return ModifyData{}, err
	}
	fld, err := p.lex.eatID()
	if err != nil {
		return ModifyData{}, err
	}
	if err := p.lex.eatDelim("="); err != nil {
		return ModifyData{}, err
	}
	newVal, err := p.expression()
	if err != nil {
		return ModifyData{}, err
	}
	pred := query.NewPredicate()
	if p.lex.matchKeyword("where") {
		if err := p.lex.eatKeyword("where"); err != nil {
			return ModifyData{}, err
		}
		pred, err = p.predicate()
		if err != nil {
			return ModifyData{}, err
		}
	}
	return ModifyData{TableName: tbl, FieldName: fld, NewValue: newVal, Pred: pred}, nil
}

func (p *Parser) create() (any, error) {
	if err := p.lex.eatKeyword("create"); err != nil {
		return nil, err
	}
	switch {
	case p.lex.matchKeyword("table"):
		return p.createTable()
	case p.lex.matchKeyword("index"):
		return p.createIndex()
	default:
		return nil, syntaxErrorf(p.lex.pos, "expected table or index after create, found %q", p.lex.cur.text)
	}
}

func (p *Parser) createTable() (CreateTableData, error) {
	if err := p.lex.eatKeyword("table"); err != nil {
		return CreateTableData{}, err
	}
	tbl, err := p.lex.eatID()
	if err != nil {
		return CreateTableData{}, err
	}
	if err := p.lex.eatDelim("("); err != nil {
		return CreateTableData{}, err
	}
	schema, err := p.fieldDefs()
	if err != nil {
		return CreateTableData{}, err
	}
	if err := p.lex.eatDelim(")"); err != nil {
		return CreateTableData{}, err
	}
	return CreateTableData{TableName: tbl, Schema: schema}, nil
}

func (p *Parser) fieldDefs() (*record.Schema, error) {
	schema := record.NewSchema()
	if err := p.fieldDef(schema); err != nil {
		return nil, err
	}
	for p.lex.matchDelim(",") {
		if err := p.lex.eatDelim(","); err != nil {
			return nil, err
		}
		if err := p.fieldDef(schema); err != nil {
			return nil, err
		}
	}
	return schema, nil
}

func (p *Parser) fieldDef(schema *record.Schema) error {
	fld, err := p.lex.eatID()
	if err != nil {
		return err
	}
	switch {
	case p.lex.matchKeyword("int"):
		if err := p.lex.eatKeyword("int"); err != nil {
			return err
		}
		schema.AddIntField(fld)
		return nil
	case p.lex.matchKeyword("varchar"):
		if err := p.lex.eatKeyword("varchar"); err != nil {
			return err
		}
		if err := p.lex.eatDelim("("); err != nil {
			return err
		}
		length, err := p.lex.eatIntConstant()
		if err != nil {
			return err
		}
		if err := p.lex.eatDelim(")"); err != nil {
			return err
		}
		schema.AddStringField(fld, int(length))
		return nil
	default:
		return syntaxErrorf(p.lex.pos, "expected int or varchar, found %q", p.lex.cur.text)
	}
}

func (p *Parser) createIndex() (CreateIndexData, error) {
	if err := p.lex.eatKeyword("index"); err != nil {
		return CreateIndexData{}, err
	}
	idx, err := p.lex.eatID()
	if err != nil {
		return CreateIndexData{}, err
	}
	if err := p.lex.eatKeyword("on"); err != nil {
		return CreateIndexData{}, err
	}
	tbl, err := p.lex.eatID()
	if err != nil {
		return CreateIndexData{}, err
	}
	if err := p.lex.eatDelim("("); err != nil {
		return CreateIndexData{}, err
	}
	fld, err := p.lex.eatID()
	if err != nil {
		return CreateIndexData{}, err
	}
	if err := p.lex.eatDelim(")"); err != nil {
		return CreateIndexData{}, err
	}
	return CreateIndexData{IndexName: idx, TableName: tbl, FieldName: fld}, nil
}
