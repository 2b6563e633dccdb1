package gridmodel

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ChangeHandler is invoked after a cell value changes through SetValue.
// Handlers run on the caller's goroutine after the row's derived state has
// been refreshed.
type ChangeHandler func(cell *Cell, row *Row)

// Row is an ordered list of cells, one per column including the special
// columns, plus derived emptiness and validation aggregates. The aggregates
// are recomputed synchronously on every value or error-state change.
type Row struct {
	mu        sync.RWMutex
	id        uuid.UUID
	index     int
	columns   []Column
	cells     []*Cell
	byName    map[string]*Cell
	empty     bool
	hasErrors bool
	summary   string
	onChange  ChangeHandler
}

// NewRow builds an empty row with one cell per column.
func NewRow(index int, columns []Column) *Row {
	r := &Row{
		id:      uuid.New(),
		index:   index,
		columns: columns,
		cells:   make([]*Cell, 0, len(columns)),
		byName:  make(map[string]*Cell, len(columns)),
		empty:   true,
	}
	for _, col := range columns {
		c := newCell(col.Name)
		r.cells = append(r.cells, c)
		r.byName[col.Name] = c
	}
	return r
}

// ID returns the row's stable identity, independent of its index.
func (r *Row) ID() uuid.UUID { return r.id }

// Index returns the row's current position in the grid.
func (r *Row) Index() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index
}

// SetIndex updates the row's position. Only the orchestrator reindexes rows.
func (r *Row) SetIndex(i int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index = i
}

// Columns returns the column schema the row was built against.
func (r *Row) Columns() []Column { return r.columns }

// Cell looks up a cell by column name.
func (r *Row) Cell(column string) (*Cell, bool) {
	c, ok := r.byName[column]
	return c, ok
}

// Cells returns the row's cells in column order.
func (r *Row) Cells() []*Cell {
	out := make([]*Cell, len(r.cells))
	copy(out, r.cells)
	return out
}

// OnChange registers the handler fired after SetValue. Passing nil detaches.
func (r *Row) OnChange(fn ChangeHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

// SetValue writes a value into the named cell, recomputes emptiness, and
// fires the change handler.
func (r *Row) SetValue(column string, v Value) error {
	return r.set(column, v, true)
}

// LoadValue writes a value without firing the change handler. Bulk loaders
// use it so eager validation is not competing with throttled validation.
func (r *Row) LoadValue(column string, v Value) error {
	return r.set(column, v, false)
}

func (r *Row) set(column string, v Value, fire bool) error {
	cell, ok := r.byName[column]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}

	r.mu.Lock()
	cell.setValue(v)
	r.recomputeEmptyLocked()
	handler := r.onChange
	r.mu.Unlock()

	if fire && handler != nil {
		handler(cell, r)
	}
	return nil
}

// IsEmpty reports whether every non-special cell is blank.
func (r *Row) IsEmpty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.empty
}

// HasValidationErrors reports the OR of all cell error flags as of the last
// UpdateValidationStatus call.
func (r *Row) HasValidationErrors() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hasErrors
}

// ErrorSummary returns the concatenated per-cell error messages as of the
// last UpdateValidationStatus call.
func (r *Row) ErrorSummary() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.summary
}

// UpdateValidationStatus OR-reduces cell error flags into the row aggregate
// and rebuilds the error summary as "{column}: {message}" entries joined by
// "; ". The alerts cell mirrors the summary for display.
func (r *Row) UpdateValidationStatus() {
	var parts []string
	for _, c := range r.cells {
		if IsSpecialColumn(c.Column()) {
			continue
		}
		if c.HasError() {
			parts = append(parts, fmt.Sprintf("%s: %s", c.Column(), c.ErrorMessage()))
		}
	}
	summary := strings.Join(parts, "; ")

	r.mu.Lock()
	r.hasErrors = len(parts) > 0
	r.summary = summary
	if alerts, ok := r.byName[AlertColumnName]; ok {
		if summary == "" {
			alerts.setValue(NullValue())
		} else {
			alerts.setValue(StringValue(summary))
		}
	}
	r.mu.Unlock()
}

// ClearErrors resets every non-special cell's validation state and refreshes
// the row aggregate.
func (r *Row) ClearErrors() {
	for _, c := range r.cells {
		if IsSpecialColumn(c.Column()) {
			continue
		}
		c.ClearError()
	}
	r.UpdateValidationStatus()
}

// Record returns the row's non-special column values keyed by column name.
func (r *Row) Record() map[string]Value {
	out := make(map[string]Value, len(r.cells))
	for _, c := range r.cells {
		if IsSpecialColumn(c.Column()) {
			continue
		}
		out[c.Column()] = c.Value()
	}
	return out
}

// recomputeEmptyLocked derives the emptiness flag; callers hold r.mu.
func (r *Row) recomputeEmptyLocked() {
	for _, c := range r.cells {
		if IsSpecialColumn(c.Column()) {
			continue
		}
		if !c.Value().IsBlank() {
			r.empty = false
			return
		}
	}
	r.empty = true
}
