// Package clipboard converts between 2-D string grids and the tab-delimited
// text format Excel uses on the clipboard, with an HTML-table mirror for
// rich-paste targets.
//
// Rows are separated by "\n" (carriage returns are normalized away) and
// columns by "\t". Trailing blank lines are dropped before parsing and the
// column count is taken from the widest row; shorter rows are padded with
// empty strings so the result is always rectangular. A payload with no tab
// and a single line parses as a 1x1 grid.
//
// For any rectangular grid of strings free of embedded tabs and newlines,
// Parse(Format(grid)) reproduces the grid exactly.
package clipboard
