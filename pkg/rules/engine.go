package rules

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/gridkit/pkg/gridmodel"
)

// batchSize is how many rows validate concurrently during bulk validation.
const batchSize = 10

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for rule-evaluation faults.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// Engine owns the rule table, keyed by column name to an ordered rule list.
// All methods are safe for concurrent use.
type Engine struct {
	mu    sync.RWMutex
	table map[string][]Rule
	log   *slog.Logger
}

// NewEngine creates an empty validation engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		table: make(map[string][]Rule),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddRule registers a rule under its column. A rule whose name already exists
// under the same column is replaced (remove-then-append), so re-registering
// moves it to the end of the insertion order.
func (e *Engine) AddRule(rule Rule) error {
	if strings.TrimSpace(rule.Column) == "" {
		return ErrEmptyColumn
	}
	if strings.TrimSpace(rule.Name) == "" {
		return ErrEmptyName
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	list := e.table[rule.Column]
	list = slices.DeleteFunc(list, func(r Rule) bool { return r.Name == rule.Name })
	e.table[rule.Column] = append(list, rule)
	return nil
}

// AddRules registers several rules, stopping at the first failure.
func (e *Engine) AddRules(rules ...Rule) error {
	for _, r := range rules {
		if err := e.AddRule(r); err != nil {
			return fmt.Errorf("add rule %q: %w", r.Name, err)
		}
	}
	return nil
}

// RemoveRule deletes a rule by column and name, reporting whether it existed.
func (e *Engine) RemoveRule(column, name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	list, ok := e.table[column]
	if !ok {
		return false
	}
	next := slices.DeleteFunc(list, func(r Rule) bool { return r.Name == name })
	if len(next) == len(list) {
		return false
	}
	if len(next) == 0 {
		delete(e.table, column)
	} else {
		e.table[column] = next
	}
	return true
}

// ClearRules drops all rules for the given columns, or the whole table when
// called without arguments.
func (e *Engine) ClearRules(columns ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(columns) == 0 {
		clear(e.table)
		return
	}
	for _, col := range columns {
		delete(e.table, col)
	}
}

// Rules returns a copy of the rule list registered for a column, in
// insertion order.
func (e *Engine) Rules(column string) []Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.table[column])
}

// HasRules reports whether any rule is registered for the column.
func (e *Engine) HasRules(column string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.table[column]) > 0
}

// RuleCount returns the total number of registered rules across all columns.
func (e *Engine) RuleCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	n := 0
	for _, list := range e.table {
		n += len(list)
	}
	return n
}

// ValidateCell validates one cell against the applicable rules for its
// column and writes the outcome onto the cell. Cells of empty rows pass
// without running rules; their error state is cleared.
func (e *Engine) ValidateCell(ctx context.Context, cell *gridmodel.Cell, row *gridmodel.Row) Result {
	result := Result{Column: cell.Column(), RowIndex: row.Index(), Valid: true}

	if row.IsEmpty() {
		cell.ClearError()
		return result
	}

	applicable := e.applicableRules(cell.Column(), row)
	value := cell.Value()

	for _, rule := range applicable {
		if ctx.Err() != nil {
			break
		}
		ok, evalErr := e.evaluate(rule, value, row)
		if evalErr != nil {
			e.log.ErrorContext(ctx, "rule evaluation failed",
				slog.String("rule", rule.Name),
				slog.String("column", rule.Column),
				slog.Int("row", result.RowIndex),
				slog.Any("error", evalErr))
			result.Messages = append(result.Messages, fmt.Sprintf("rule %q could not be evaluated", rule.Name))
			continue
		}
		if !ok {
			result.Messages = append(result.Messages, rule.Message)
		}
	}

	result.Valid = len(result.Messages) == 0
	if result.Valid {
		cell.ClearError()
	} else {
		cell.SetError(result.Message())
	}
	return result
}

// ValidateRow validates every non-special cell with registered rules and
// refreshes the row aggregate. Empty rows short-circuit: all error state is
// cleared and no results are produced.
func (e *Engine) ValidateRow(ctx context.Context, row *gridmodel.Row) []Result {
	if row.IsEmpty() {
		row.ClearErrors()
		return nil
	}

	var results []Result
	for _, cell := range row.Cells() {
		if gridmodel.IsSpecialColumn(cell.Column()) || !e.HasRules(cell.Column()) {
			continue
		}
		results = append(results, e.ValidateCell(ctx, cell, row))
	}
	row.UpdateValidationStatus()
	return results
}

// ValidateRows validates all non-empty rows in batches of ten. Rows within a
// batch validate concurrently; each batch completes before the next starts.
// A row that panics mid-validation is logged and contributes no results
// without aborting its batch. Results are flattened in input order.
func (e *Engine) ValidateRows(ctx context.Context, rows []*gridmodel.Row) []Result {
	var nonEmpty []*gridmodel.Row
	for _, row := range rows {
		if row != nil && !row.IsEmpty() {
			nonEmpty = append(nonEmpty, row)
		}
	}

	var all []Result
	for start := 0; start < len(nonEmpty); start += batchSize {
		if ctx.Err() != nil {
			break
		}

		end := min(start+batchSize, len(nonEmpty))
		batch := nonEmpty[start:end]
		batchResults := make([][]Result, len(batch))

		var g errgroup.Group
		for i, row := range batch {
			i, row := i, row
			g.Go(func() error {
				defer func() {
					if r := recover(); r != nil {
						e.log.ErrorContext(ctx, "row validation panicked",
							slog.Int("row", row.Index()),
							slog.Any("panic", r))
					}
				}()
				batchResults[i] = e.ValidateRow(ctx, row)
				return nil
			})
		}
		_ = g.Wait()

		for _, rs := range batchResults {
			all = append(all, rs...)
		}
	}
	return all
}

// applicableRules selects the column's rules whose apply-condition holds for
// the row, ordered by descending priority; registration order breaks ties.
func (e *Engine) applicableRules(column string, row *gridmodel.Row) []Rule {
	e.mu.RLock()
	applicable := slices.Clone(e.table[column])
	e.mu.RUnlock()

	applicable = slices.DeleteFunc(applicable, func(r Rule) bool {
		return !e.conditionHolds(r, row)
	})
	slices.SortStableFunc(applicable, func(a, b Rule) int {
		return b.Priority - a.Priority
	})
	return applicable
}

// conditionHolds evaluates the apply-condition, treating a panic as
// not-applicable.
func (e *Engine) conditionHolds(rule Rule, row *gridmodel.Row) (holds bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("rule apply-condition panicked",
				slog.String("rule", rule.Name),
				slog.Any("panic", r))
			holds = false
		}
	}()
	return rule.applies(row)
}

// evaluate runs a rule predicate, converting a panic into an error so one
// broken rule never takes the engine down.
func (e *Engine) evaluate(rule Rule, value gridmodel.Value, row *gridmodel.Row) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = fmt.Errorf("rule %q panicked: %v", rule.Name, r)
		}
	}()
	if rule.Check == nil {
		return true, nil
	}
	return rule.Check(value, row), nil
}
