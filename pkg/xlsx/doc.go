// Package xlsx moves grid data in and out of Excel workbooks.
//
// Load reads the first sheet of a workbook: the first row supplies column
// names (blank headers are auto-named "Column_N") and every following row
// becomes one record keyed by those names. Save writes the inverse layout.
//
// The package deals in plain string records; parsing values against column
// types is the grid's job.
package xlsx
