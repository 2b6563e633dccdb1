package rules

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/dmitrymomot/gridkit/pkg/gridmodel"
)

// Required validates that the cell holds a non-blank value. This is the only
// builder that fails on blank input.
func Required(column string) Rule {
	return Rule{
		Column:   column,
		Name:     column + "_required",
		Priority: PriorityRequired,
		Message:  "is required",
		Check: func(v gridmodel.Value, _ *gridmodel.Row) bool {
			return !v.IsBlank()
		},
	}
}

// Typed validates that the cell value converts to the given kind. The grid
// registers one per typed column so a conversion failure shows up as a
// validation error instead of defaulting silently.
func Typed(column string, kind gridmodel.Kind) Rule {
	return Rule{
		Column:   column,
		Name:     column + "_type",
		Priority: PriorityType,
		Message:  fmt.Sprintf("must be a valid %s", kind),
		Check: func(v gridmodel.Value, _ *gridmodel.Row) bool {
			return v.ConvertibleTo(kind)
		},
	}
}

// Range validates that a numeric value falls within [min, max]. Blank and
// non-numeric values pass; the latter are Typed's problem.
func Range(column string, min, max float64) Rule {
	return Rule{
		Column:   column,
		Name:     column + "_range",
		Priority: PriorityNormal,
		Message:  fmt.Sprintf("must be between %v and %v", min, max),
		Check: func(v gridmodel.Value, _ *gridmodel.Row) bool {
			if v.IsBlank() {
				return true
			}
			f, err := v.AsFloat()
			if err != nil {
				return true
			}
			return f >= min && f <= max
		},
	}
}

// MinLen validates a minimum trimmed string length.
func MinLen(column string, n int) Rule {
	return Rule{
		Column:   column,
		Name:     column + "_min_len",
		Priority: PriorityNormal,
		Message:  fmt.Sprintf("must be at least %d characters", n),
		Check: func(v gridmodel.Value, _ *gridmodel.Row) bool {
			if v.IsBlank() {
				return true
			}
			return len([]rune(strings.TrimSpace(v.Format()))) >= n
		},
	}
}

// MaxLen validates a maximum trimmed string length.
func MaxLen(column string, n int) Rule {
	return Rule{
		Column:   column,
		Name:     column + "_max_len",
		Priority: PriorityNormal,
		Message:  fmt.Sprintf("must be at most %d characters", n),
		Check: func(v gridmodel.Value, _ *gridmodel.Row) bool {
			if v.IsBlank() {
				return true
			}
			return len([]rune(strings.TrimSpace(v.Format()))) <= n
		},
	}
}

// Match validates the rendered value against a regular expression. The
// pattern must compile; an invalid pattern is a programmer error and panics
// at construction.
func Match(column, pattern string) Rule {
	re := regexp.MustCompile(pattern)
	return Rule{
		Column:   column,
		Name:     column + "_match",
		Priority: PriorityNormal,
		Message:  fmt.Sprintf("must match %s", pattern),
		Check: func(v gridmodel.Value, _ *gridmodel.Row) bool {
			if v.IsBlank() {
				return true
			}
			return re.MatchString(strings.TrimSpace(v.Format()))
		},
	}
}

// OneOf validates membership in a fixed choice list.
func OneOf(column string, choices ...string) Rule {
	return Rule{
		Column:   column,
		Name:     column + "_one_of",
		Priority: PriorityNormal,
		Message:  fmt.Sprintf("must be one of: %s", strings.Join(choices, ", ")),
		Check: func(v gridmodel.Value, _ *gridmodel.Row) bool {
			if v.IsBlank() {
				return true
			}
			return slices.Contains(choices, strings.TrimSpace(v.Format()))
		},
	}
}

// Custom builds a rule from an arbitrary predicate.
func Custom(column, name, message string, check CheckFunc) Rule {
	return Rule{
		Column:   column,
		Name:     name,
		Priority: PriorityNormal,
		Message:  message,
		Check:    check,
	}
}
