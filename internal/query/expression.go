package query

import "ferrodb/internal/record"

// Expression is either a literal Constant or a field name to be resolved
// against a scan's current record. Exactly one of the two is set.
type Expression struct {
	val       record.Constant
	fieldName string
	isField   bool
}

// NewConstantExpression returns an expression wrapping a literal value.
func NewConstantExpression(val record.Constant) Expression {
	return Expression{val: val}
}

// NewFieldNameExpression returns an expression that resolves to
// fieldName's value in whatever scan it is evaluated against.
func NewFieldNameExpression(fieldName string) Expression {
	return Expression{fieldName: fieldName, isField: true}
}

// IsFieldName reports whether this expression names a field rather than
// wrapping a literal.
func (e Expression) IsFieldName() bool {
	return e.isField
}

// AsConstant returns the expression's literal value. It is only
// meaningful when IsFieldName is false.
func (e Expression) AsConstant() record.Constant {
	return e.val
}

// FieldName returns the field this expression names. It is only
// meaningful when IsFieldName is true.
func (e Expression) FieldName() string {
	return e.fieldName
}

// Evaluate resolves the expression against s's current record.
func (e Expression) Evaluate(s Scan) (record.Constant, error) {
	if e.isField {
		return s.GetVal(e.fieldName)
	}
	return e.val, nil
}

// AppliesTo reports whether every field this expression names is part of
// schema. A constant expression always applies.
func (e Expression) AppliesTo(schema *record.Schema) bool {
	if e.isField {
		return schema.HasField(e.fieldName)
	}
	return true
}

// String renders the expression for display in query plans and error
// messages.
func (e Expression) String() string {
	if e.isField {
		return e.fieldName
	}
	return e.val.String()
}
