// Package gridmodel defines the data model for a validating data grid:
// columns, rows, cells, and the tagged Value variant that cell contents are
// stored as.
//
// The model is a plain state container with derived invariants recomputed on
// write. A row knows whether it is empty (every non-special cell blank) and
// whether any of its cells carries a validation error; both flags are
// refreshed synchronously whenever a cell value or error state changes, so
// consumers can bind to them directly.
//
// Two reserved column names are treated as "special": the row-action column
// and the validation-alerts column. Special columns are excluded from
// emptiness, validation, and export semantics; the alerts cell mirrors the
// row's error summary for display.
//
// # Usage
//
//	columns := []gridmodel.Column{
//	    {Name: "Name", Kind: gridmodel.KindString},
//	    {Name: "Age", Kind: gridmodel.KindInt},
//	    gridmodel.ActionColumn(),
//	    gridmodel.AlertColumn(),
//	}
//
//	row := gridmodel.NewRow(0, columns)
//	_ = row.SetValue("Age", gridmodel.IntValue(42))
//	row.IsEmpty() // false
//
// All Cell and Row methods are safe for concurrent use.
package gridmodel
