// Package throttle coalesces rapid cell edits into at most one validation
// run per cell while bounding how many validations execute at once.
//
// Each scheduled validation is keyed by the cell's row index and column name.
// Scheduling a validation for a key that already has one pending cancels the
// earlier one, so only the last edit inside the debounce window is validated.
// After the debounce delay elapses uncancelled, the operation acquires a slot
// from an admission gate sized to Config.MaxConcurrent, validates, refreshes
// the row aggregate, and releases the slot unconditionally.
//
// Cancellation is cooperative and never an error: superseded or torn-down
// operations abandon silently at the next suspension point (debounce wait or
// gate acquisition).
//
// # Usage
//
//	sched, err := throttle.NewScheduler(throttle.DefaultConfig(), engine)
//	if err != nil { ... }
//	defer sched.Close()
//
//	row.OnChange(func(cell *gridmodel.Cell, row *gridmodel.Row) {
//	    sched.Schedule(context.Background(), cell, row, throttle.DelayTyping)
//	})
package throttle
