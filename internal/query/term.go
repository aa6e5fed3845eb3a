package query

import (
	"fmt"

	"ferrodb/internal/record"
)

// Term is a single equality comparison between two expressions, e.g.
// "a = b" or "a = 17". A Predicate is a conjunction of Terms.
type Term struct {
	lhs, rhs Expression
}

// NewTerm returns the term lhs = rhs.
func NewTerm(lhs, rhs Expression) Term {
	return Term{lhs: lhs, rhs: rhs}
}

// IsSatisfied reports whether this term holds for s's current record.
func (t Term) IsSatisfied(s Scan) (bool, error) {
	lval, err := t.lhs.Evaluate(s)
	if err != nil {
		return false, err
	}
	rval, err := t.rhs.Evaluate(s)
	if err != nil {
		return false, err
	}
	return rval.Equals(lval), nil
}

// ReductionFactor estimates how many of plan's output records satisfy
// this term, returning a divisor: 1/n of the records are expected to
// match.
func (t Term) ReductionFactor(plan Plan) int {
	var lhsName, rhsName string
	if t.lhs.IsFieldName() && t.rhs.IsFieldName() {
		lhsName = t.lhs.FieldName()
		rhsName = t.rhs.FieldName()
		lv := plan.DistinctValues(lhsName)
		rv := plan.DistinctValues(rhsName)
		if lv > rv {
			return lv
		}
		return rv
	}
	if t.lhs.IsFieldName() {
		lhsName = t.lhs.FieldName()
		return plan.DistinctValues(lhsName)
	}
	if t.rhs.IsFieldName() {
		rhsName = t.rhs.FieldName()
		return plan.DistinctValues(rhsName)
	}
	if t.lhs.AsConstant().Equals(t.rhs.AsConstant()) {
		return 1
	}
	return 1 << 30 // effectively infinite: a constant-vs-constant mismatch matches nothing
}

// EquatesWithConstant returns the constant that fieldName is equated to
// by this term, and true, if this term has the form fieldName = <const>
// (in either order).
func (t Term) EquatesWithConstant(fieldName string) (record.Constant, bool) {
	if t.lhs.IsFieldName() && t.lhs.FieldName() == fieldName && !t.rhs.IsFieldName() {
		return t.rhs.AsConstant(), true
	}
	if t.rhs.IsFieldName() && t.rhs.FieldName() == fieldName && !t.lhs.IsFieldName() {
		return t.lhs.AsConstant(), true
	}
	return record.Constant{}, false
}

// EquatesWithField returns the other field that fieldName is equated to
// by this term, and true, if this term has the form fieldName = <field>
// (in either order).
func (t Term) EquatesWithField(fieldName string) (string, bool) {
	if t.lhs.IsFieldName() && t.lhs.FieldName() == fieldName && t.rhs.IsFieldName() {
		return t.rhs.FieldName(), true
	}
	if t.rhs.IsFieldName() && t.rhs.FieldName() == fieldName && t.lhs.IsFieldName() {
		return t.lhs.FieldName(), true
	}
	return "", false
}

// AppliesTo reports whether every field this term names is part of
// schema.
func (t Term) AppliesTo(schema *record.Schema) bool {
	return t.lhs.AppliesTo(schema) && t.rhs.AppliesTo(schema)
}

// String renders the term for display in query plans and error messages.
func (t Term) String() string {
	return fmt.Sprintf("%s=%s", t.lhs, t.rhs)
}
