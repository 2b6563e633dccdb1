// Package gridkit implements the core of a reusable, validating data grid:
// a spreadsheet-like row/column model with per-column validation rules,
// throttled real-time validation feedback, and Excel-compatible copy/paste.
//
// The Grid orchestrator owns the rows and columns, wires cell changes into a
// debouncing scheduler, and exposes the bulk operations a host UI calls:
// initialize, load, export, validate-all, paste, row cleanup, and teardown.
// Rendering, focus handling, and the rest of the toolkit surface are the
// host's business; gridkit only maintains state the host can bind to.
//
// The heavy lifting lives in the sub-packages:
//
//   - pkg/gridmodel  — columns, rows, cells, and the tagged cell Value
//   - pkg/rules      — the rule table and validation engine
//   - pkg/throttle   — per-cell debounce plus bounded-concurrency admission
//   - pkg/notify     — the error-notification event hub
//   - pkg/clipboard  — the tab-delimited Excel clipboard codec
//   - pkg/xlsx       — workbook import/export
//
// # Usage
//
//	grid := gridkit.New()
//	defer grid.Dispose()
//
//	err := grid.Initialize(ctx,
//	    []gridmodel.Column{
//	        {Name: "Name", Kind: gridmodel.KindString},
//	        {Name: "Age", Kind: gridmodel.KindInt},
//	    },
//	    []rules.Rule{
//	        rules.Required("Name"),
//	        rules.Range("Age", 18, 65),
//	    },
//	    100,
//	)
//
// Operation failures that are not programmer errors are delivered through
// the event channel returned by Grid.Events rather than as return values;
// precondition violations (use before Initialize, use after Dispose) fail
// fast with a sentinel error.
package gridkit
