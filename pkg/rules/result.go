package rules

import "strings"

// Result is the outcome of validating one cell.
type Result struct {
	Column   string
	RowIndex int
	Valid    bool
	Messages []string
}

// Message joins the failure messages into the display form written onto the
// cell.
func (r Result) Message() string {
	return strings.Join(r.Messages, "; ")
}

// Combine aggregates several results: invalid if any is invalid, with all
// failure messages concatenated in input order. Column and RowIndex are
// taken from the first result.
func Combine(results ...Result) Result {
	if len(results) == 0 {
		return Result{Valid: true}
	}

	combined := Result{
		Column:   results[0].Column,
		RowIndex: results[0].RowIndex,
		Valid:    true,
	}
	for _, r := range results {
		if !r.Valid {
			combined.Valid = false
		}
		combined.Messages = append(combined.Messages, r.Messages...)
	}
	return combined
}
