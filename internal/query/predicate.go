package query

import (
	"strings"

	"ferrodb/internal/record"
)

// Predicate is a conjunction of Terms: it is satisfied exactly when every
// term it holds is satisfied. A zero-value Predicate (no terms) is
// satisfied by every record, as required by a WHERE-less query.
type Predicate struct {
	terms []Term
}

// NewPredicate returns an empty predicate, satisfied unconditionally.
func NewPredicate() *Predicate {
	return &Predicate{}
}

// NewPredicateFromTerm returns a predicate consisting of a single term.
func NewPredicateFromTerm(t Term) *Predicate {
	return &Predicate{terms: []Term{t}}
}

// ConjoinWith ANDs other's terms into this predicate.
func (p *Predicate) ConjoinWith(other *Predicate) {
	p.terms = append(p.terms, other.terms...)
}

// IsSatisfied reports whether every term holds for s's current record.
func (p *Predicate) IsSatisfied(s Scan) (bool, error) {
	for _, t := range p.terms {
		ok, err := t.IsSatisfied(s)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// ReductionFactor estimates the combined selectivity of this predicate,
// as the product of each term's individual reduction factor.
func (p *Predicate) ReductionFactor(plan Plan) int {
	factor := 1
	for _, t := range p.terms {
		factor *= t.ReductionFactor(plan)
	}
	return factor
}

// SelectSubPred returns the subset of this predicate's terms that apply
// entirely to schema, or nil if none do.
func (p *Predicate) SelectSubPred(schema *record.Schema) *Predicate {
	var sub Predicate
	for _, t := range p.terms {
		if t.AppliesTo(schema) {
			sub.terms = append(sub.terms, t)
		}
	}
	if len(sub.terms) == 0 {
		return nil
	}
	return &sub
}

// EquatesWithConstant returns the constant that fieldName is equated to
// by some term of this predicate, and true, if one exists.
func (p *Predicate) EquatesWithConstant(fieldName string) (record.Constant, bool) {
	for _, t := range p.terms {
		if val, ok := t.EquatesWithConstant(fieldName); ok {
			return val, true
		}
	}
	return record.Constant{}, false
}

// EquatesWithField returns the other field that fieldName is equated to
// by some term of this predicate, and true, if one exists.
func (p *Predicate) EquatesWithField(fieldName string) (string, bool) {
	for _, t := range p.terms {
		if other, ok := t.EquatesWithField(fieldName); ok {
			return other, true
		}
	}
	return "", false
}

// String renders the predicate for display in query plans.
func (p *Predicate) String() string {
	parts := make([]string, len(p.terms))
	for i, t := range p.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " and ")
}
