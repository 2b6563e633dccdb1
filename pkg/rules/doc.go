// Package rules provides the rule-based validation engine for the grid.
//
// A Rule couples a column name with a predicate over the cell value and its
// whole row, an optional apply-condition gating whether the rule runs at all
// for a given row, a display message, and a priority. Rules are registered
// with an Engine which keeps an ordered table per column; adding a rule with
// a name that already exists under the same column replaces the earlier one.
//
// Validation deliberately mutates cell error state: views bind to the cell's
// error flag and message, so the engine writes results onto the cell as well
// as returning them.
//
// Rule builders follow the null-bypass convention: blank values pass every
// rule except Required, so optional fields only get checked once something
// was entered.
//
// # Usage
//
//	engine := rules.NewEngine()
//	_ = engine.AddRule(rules.Required("Name"))
//	_ = engine.AddRule(rules.Range("Age", 18, 65))
//
//	results := engine.ValidateRow(ctx, row)
//
// Bulk validation runs rows in fixed-size batches with every row inside a
// batch validated concurrently; see Engine.ValidateRows.
package rules
