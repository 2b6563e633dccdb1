package rules

import "github.com/dmitrymomot/gridkit/pkg/gridmodel"

// Default rule priorities. Higher priorities evaluate first; rules with equal
// priority evaluate in registration order.
const (
	PriorityType     = 200
	PriorityRequired = 100
	PriorityNormal   = 50
)

// CheckFunc is a rule predicate evaluated against the cell value and its
// whole row. Returning false fails the rule.
type CheckFunc func(value gridmodel.Value, row *gridmodel.Row) bool

// ConditionFunc gates whether a rule applies to a row at all.
type ConditionFunc func(row *gridmodel.Row) bool

// Rule is one validation rule attached to a single column. Name is the
// de-duplication key within that column.
type Rule struct {
	Column   string
	Name     string
	Priority int
	Message  string
	Check    CheckFunc

	// AppliesTo gates rule applicability per row; nil means always.
	AppliesTo ConditionFunc
}

func (r Rule) applies(row *gridmodel.Row) bool {
	return r.AppliesTo == nil || r.AppliesTo(row)
}

// When returns a copy of the rule gated by the given apply-condition.
func (r Rule) When(cond ConditionFunc) Rule {
	r.AppliesTo = cond
	return r
}

// WithMessage returns a copy of the rule with the display message replaced.
func (r Rule) WithMessage(msg string) Rule {
	if msg != "" {
		r.Message = msg
	}
	return r
}

// WithPriority returns a copy of the rule with the priority replaced.
func (r Rule) WithPriority(p int) Rule {
	r.Priority = p
	return r
}
