package gridkit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/gridkit/pkg/gridmodel"
	"github.com/dmitrymomot/gridkit/pkg/notify"
	"github.com/dmitrymomot/gridkit/pkg/rules"
	"github.com/dmitrymomot/gridkit/pkg/throttle"
)

// Initial row counts are clamped to this range.
const (
	minInitialRows = 1
	maxInitialRows = 10000
)

// emptyRowBuffer is the number of spare empty rows kept below the data after
// a load, capped at a fifth of the configured initial row count.
func emptyRowBuffer(initialRows int) int {
	return min(10, initialRows/5)
}

// Grid is the orchestrator: it owns the row and column collections, the rule
// engine, and the throttling scheduler, and exposes the operations a host UI
// shell calls. All methods are safe for concurrent use, though bulk
// operations are expected to run between interactive edits, not during them.
type Grid struct {
	log         *slog.Logger
	cfg         throttle.Config
	eventBuffer int

	mu          sync.RWMutex
	initialized bool
	disposed    bool
	columns     []gridmodel.Column
	rows        []*gridmodel.Row
	initialRows int
	engine      *rules.Engine
	sched       *throttle.Scheduler
	hub         *notify.Hub
	disposeOnce sync.Once

	// Selection cursor over editable (non-special) columns.
	hasSelection         bool
	curRow, curCol       int
	extentRow, extentCol int
	selectedCells        []*gridmodel.Cell
}

// New builds an uninitialized grid. Call Initialize before anything else.
func New(opts ...Option) *Grid {
	g := &Grid{
		log:         slog.Default(),
		cfg:         throttle.DefaultConfig(),
		eventBuffer: 16,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.hub = notify.NewHub(g.eventBuffer)
	return g
}

// Events returns a channel of operation faults. Usable before Initialize and
// until Dispose.
func (g *Grid) Events(ctx context.Context) <-chan notify.Event {
	return g.hub.Subscribe(ctx)
}

// Initialize sets up columns, rules, throttling, and the initial empty rows.
// Column name collisions are disambiguated by appending "_N"; the two
// special columns are always appended, action column first. initialRowCount
// is clamped to [1, 10000]. Re-initialization is refused.
func (g *Grid) Initialize(ctx context.Context, columns []gridmodel.Column, ruleset []rules.Rule, initialRowCount int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.disposed {
		return ErrDisposed
	}
	if g.initialized {
		return ErrAlreadyInitialized
	}
	if err := g.cfg.Validate(); err != nil {
		return err
	}

	cols := normalizeColumns(columns)

	engine := rules.NewEngine(rules.WithLogger(g.log))
	for _, col := range cols {
		if col.IsSpecial() || col.Kind == gridmodel.KindString || col.Kind == gridmodel.KindNull {
			continue
		}
		// Typed columns get a conversion check so a bad value surfaces as a
		// validation failure instead of a silent default.
		if err := engine.AddRule(rules.Typed(col.Name, col.Kind)); err != nil {
			return err
		}
	}
	if err := engine.AddRules(ruleset...); err != nil {
		return err
	}

	sched, err := throttle.NewScheduler(g.cfg, engine,
		throttle.WithLogger(g.log),
		throttle.WithEvents(g.hub))
	if err != nil {
		return err
	}

	n := min(max(initialRowCount, minInitialRows), maxInitialRows)

	g.columns = cols
	g.engine = engine
	g.sched = sched
	g.initialRows = n
	g.rows = make([]*gridmodel.Row, 0, n)
	for i := 0; i < n; i++ {
		g.rows = append(g.rows, g.newRow(i))
	}
	g.hasSelection = false
	g.initialized = true

	g.log.InfoContext(ctx, "grid initialized",
		slog.Int("columns", len(cols)),
		slog.Int("rows", n),
		slog.Int("rules", engine.RuleCount()))
	return nil
}

// Initialized reports whether Initialize completed.
func (g *Grid) Initialized() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.initialized
}

// Columns returns the grid's column schema, special columns included.
func (g *Grid) Columns() []gridmodel.Column {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]gridmodel.Column, len(g.columns))
	copy(out, g.columns)
	return out
}

// DataColumns returns the non-special column names in order.
func (g *Grid) DataColumns() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []string
	for _, col := range g.columns {
		if !col.IsSpecial() {
			out = append(out, col.Name)
		}
	}
	return out
}

// RowCount returns the total number of rows, empty ones included.
func (g *Grid) RowCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rows)
}

// DataRowCount returns the number of non-empty rows.
func (g *Grid) DataRowCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, row := range g.rows {
		if !row.IsEmpty() {
			n++
		}
	}
	return n
}

// Row returns the row at the given index.
func (g *Grid) Row(i int) (*gridmodel.Row, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if i < 0 || i >= len(g.rows) {
		return nil, false
	}
	return g.rows[i], true
}

// Rules exposes the rule engine for runtime rule management.
func (g *Grid) Rules() *rules.Engine {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.engine
}

// SetCellValue writes a value into a cell on the interactive path: the
// change is validated after the typing debounce window.
func (g *Grid) SetCellValue(ctx context.Context, rowIndex int, column string, value gridmodel.Value) error {
	g.mu.RLock()
	if err := g.guardLocked(); err != nil {
		g.mu.RUnlock()
		return err
	}
	if rowIndex < 0 || rowIndex >= len(g.rows) {
		g.mu.RUnlock()
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, rowIndex)
	}
	col, ok := g.columnByName(column)
	if !ok {
		g.mu.RUnlock()
		return fmt.Errorf("%w: %q", gridmodel.ErrUnknownColumn, column)
	}
	if col.IsSpecial() || col.ReadOnly {
		g.mu.RUnlock()
		return fmt.Errorf("%w: %q", ErrReadOnlyColumn, column)
	}
	row := g.rows[rowIndex]
	g.mu.RUnlock()

	return row.SetValue(column, value)
}

// SetCellText parses raw text against the column's declared type and writes
// the result. Text that fails to parse is stored as-is so the column's type
// rule reports it.
func (g *Grid) SetCellText(ctx context.Context, rowIndex int, column string, raw string) error {
	g.mu.RLock()
	col, ok := g.columnByName(column)
	g.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", gridmodel.ErrUnknownColumn, column)
	}
	return g.SetCellValue(ctx, rowIndex, column, parseOrRaw(raw, col.Kind))
}

// LoadData replaces the grid contents with the given records (column name to
// raw text). Non-empty rows validate eagerly, not through the scheduler, and
// the row set is padded with empty rows so loading never shrinks the
// configured minimum buffer.
func (g *Grid) LoadData(ctx context.Context, records []map[string]string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.guardLocked(); err != nil {
		return err
	}

	loaded := make([]*gridmodel.Row, 0, len(records))
	for i, rec := range records {
		row := g.newRow(i)
		for _, col := range g.columns {
			if col.IsSpecial() {
				continue
			}
			raw, ok := rec[col.Name]
			if !ok {
				continue
			}
			if err := row.LoadValue(col.Name, parseOrRaw(raw, col.Kind)); err != nil {
				return err
			}
		}
		loaded = append(loaded, row)
	}

	g.engine.ValidateRows(ctx, loaded)
	if ctx.Err() != nil {
		// Partial validation is not fatal: rows keep their state and the
		// host learns about the interruption through the event channel.
		g.hub.Publish(notify.Event{Op: "load_data", Err: ctx.Err()})
	}

	target := max(g.initialRows, len(loaded)+emptyRowBuffer(g.initialRows))
	for i := len(loaded); i < target; i++ {
		loaded = append(loaded, g.newRow(i))
	}

	g.rows = loaded
	g.hasSelection = false
	g.selectedCells = nil

	g.log.InfoContext(ctx, "data loaded",
		slog.Int("records", len(records)),
		slog.Int("rows", len(loaded)))
	return nil
}

// ExportData returns one record per non-empty row, restricted to non-special
// columns.
func (g *Grid) ExportData(ctx context.Context) ([]map[string]gridmodel.Value, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if err := g.guardLocked(); err != nil {
		return nil, err
	}

	var out []map[string]gridmodel.Value
	for _, row := range g.rows {
		if row.IsEmpty() {
			continue
		}
		out = append(out, row.Record())
	}
	return out, nil
}

// ExportRecords is ExportData rendered to strings, convenient for workbook
// and clipboard output.
func (g *Grid) ExportRecords(ctx context.Context) ([]string, []map[string]string, error) {
	records, err := g.ExportData(ctx)
	if err != nil {
		return nil, nil, err
	}
	headers := g.DataColumns()

	out := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		m := make(map[string]string, len(rec))
		for name, v := range rec {
			m[name] = v.Format()
		}
		out = append(out, m)
	}
	return headers, out, nil
}

// ValidateAll eagerly validates every non-empty row and returns the
// per-cell results.
func (g *Grid) ValidateAll(ctx context.Context) ([]rules.Result, error) {
	g.mu.RLock()
	if err := g.guardLocked(); err != nil {
		g.mu.RUnlock()
		return nil, err
	}
	rowsCopy := make([]*gridmodel.Row, len(g.rows))
	copy(rowsCopy, g.rows)
	engine := g.engine
	g.mu.RUnlock()

	return engine.ValidateRows(ctx, rowsCopy), nil
}

// ClearAllData discards every row and rebuilds the configured number of
// empty ones.
func (g *Grid) ClearAllData(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.guardLocked(); err != nil {
		return err
	}

	rows := make([]*gridmodel.Row, 0, g.initialRows)
	for i := 0; i < g.initialRows; i++ {
		rows = append(rows, g.newRow(i))
	}
	g.rows = rows
	g.hasSelection = false
	g.selectedCells = nil
	return nil
}

// RemoveEmptyRows drops all empty rows, then tops the grid back up with
// empty rows so there is always room to keep typing.
func (g *Grid) RemoveEmptyRows() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.guardLocked(); err != nil {
		return err
	}

	kept := g.rows[:0:0]
	for _, row := range g.rows {
		if !row.IsEmpty() {
			kept = append(kept, row)
		}
	}

	spare := max(emptyRowBuffer(g.initialRows), g.initialRows-len(kept))
	for i := 0; i < spare; i++ {
		kept = append(kept, g.newRow(0))
	}
	g.rows = kept
	g.reindexLocked()
	return nil
}

// RemoveRowsByCondition removes every non-empty row whose value in the given
// column satisfies the predicate, returning the number removed.
func (g *Grid) RemoveRowsByCondition(column string, pred func(gridmodel.Value) bool) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.guardLocked(); err != nil {
		return 0, err
	}

	removed := 0
	kept := g.rows[:0:0]
	for _, row := range g.rows {
		if !row.IsEmpty() {
			if cell, ok := row.Cell(column); ok && pred(cell.Value()) {
				removed++
				continue
			}
		}
		kept = append(kept, row)
	}
	g.rows = kept
	g.reindexLocked()
	return removed, nil
}

// RemoveRowsByCustomRules removes every non-empty row that fails any of the
// supplied rules, short-circuiting at the first failing rule per row. Rules
// keep their usual conventions, so blank values pass unless a rule says
// otherwise.
func (g *Grid) RemoveRowsByCustomRules(ruleset []rules.Rule) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.guardLocked(); err != nil {
		return 0, err
	}

	removed := 0
	kept := g.rows[:0:0]
	for _, row := range g.rows {
		if !row.IsEmpty() && g.rowFailsAny(row, ruleset) {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	g.rows = kept
	g.reindexLocked()
	return removed, nil
}

// Dispose cancels all pending validation, closes the event hub, and detaches
// the grid from its rows. It is idempotent; every other operation fails with
// ErrDisposed afterwards.
func (g *Grid) Dispose() error {
	g.disposeOnce.Do(func() {
		g.mu.Lock()
		g.disposed = true
		sched := g.sched
		for _, row := range g.rows {
			row.OnChange(nil)
		}
		g.mu.Unlock()

		if sched != nil {
			_ = sched.Close()
		}
		_ = g.hub.Close()
	})
	return nil
}

// guardLocked enforces the lifecycle preconditions; callers hold g.mu.
func (g *Grid) guardLocked() error {
	if g.disposed {
		return ErrDisposed
	}
	if !g.initialized {
		return ErrNotInitialized
	}
	return nil
}

// newRow builds a row wired into the scheduler; callers hold g.mu.
func (g *Grid) newRow(index int) *gridmodel.Row {
	row := gridmodel.NewRow(index, g.columns)
	sched := g.sched
	row.OnChange(func(cell *gridmodel.Cell, r *gridmodel.Row) {
		sched.Schedule(context.Background(), cell, r, throttle.DelayTyping)
	})
	return row
}

func (g *Grid) reindexLocked() {
	for i, row := range g.rows {
		row.SetIndex(i)
	}
}

func (g *Grid) columnByName(name string) (gridmodel.Column, bool) {
	for _, col := range g.columns {
		if col.Name == name {
			return col, true
		}
	}
	return gridmodel.Column{}, false
}

// rowFailsAny reports whether the row fails at least one applicable rule.
// A panicking rule is logged and treated as not failing.
func (g *Grid) rowFailsAny(row *gridmodel.Row, ruleset []rules.Rule) bool {
	for _, rule := range ruleset {
		cell, ok := row.Cell(rule.Column)
		if !ok || rule.Check == nil {
			continue
		}
		if rule.AppliesTo != nil && !rule.AppliesTo(row) {
			continue
		}
		if g.ruleFails(rule, cell.Value(), row) {
			return true
		}
	}
	return false
}

func (g *Grid) ruleFails(rule rules.Rule, value gridmodel.Value, row *gridmodel.Row) (fails bool) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("row-removal rule panicked",
				slog.String("rule", rule.Name),
				slog.Any("panic", r))
			fails = false
		}
	}()
	return !rule.Check(value, row)
}

// normalizeColumns dedupes column names with a "_N" suffix and appends the
// two special columns in fixed order, dropping any caller-supplied copies.
func normalizeColumns(columns []gridmodel.Column) []gridmodel.Column {
	seen := make(map[string]struct{}, len(columns)+2)
	out := make([]gridmodel.Column, 0, len(columns)+2)

	for _, col := range columns {
		if col.IsSpecial() {
			continue
		}
		name := col.Name
		for n := 1; ; n++ {
			if _, dup := seen[name]; !dup {
				break
			}
			name = fmt.Sprintf("%s_%d", col.Name, n)
		}
		seen[name] = struct{}{}
		col.Name = name
		out = append(out, col)
	}

	return append(out, gridmodel.ActionColumn(), gridmodel.AlertColumn())
}

// parseOrRaw parses text against a kind, falling back to the raw string so a
// type rule can flag it.
func parseOrRaw(raw string, kind gridmodel.Kind) gridmodel.Value {
	v, err := gridmodel.ParseValue(raw, kind)
	if err != nil {
		return gridmodel.StringValue(raw)
	}
	return v
}
