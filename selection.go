package gridkit

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/gridkit/pkg/clipboard"
	"github.com/dmitrymomot/gridkit/pkg/gridmodel"
	"github.com/dmitrymomot/gridkit/pkg/throttle"
)

// editableColumnsLocked returns the non-special columns in order; callers
// hold g.mu.
func (g *Grid) editableColumnsLocked() []gridmodel.Column {
	var out []gridmodel.Column
	for _, col := range g.columns {
		if !col.IsSpecial() {
			out = append(out, col)
		}
	}
	return out
}

// SelectCell moves the cursor to the given row and editable-column index and
// collapses the selection to that single cell.
func (g *Grid) SelectCell(row, col int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.selectRangeLocked(row, col, row, col)
}

// SelectRange selects the rectangle spanned by two corners, given as row and
// editable-column indices. The cursor lands on the first corner.
func (g *Grid) SelectRange(row1, col1, row2, col2 int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.selectRangeLocked(row1, col1, row2, col2)
}

func (g *Grid) selectRangeLocked(row1, col1, row2, col2 int) error {
	if err := g.guardLocked(); err != nil {
		return err
	}

	editable := g.editableColumnsLocked()
	for _, r := range []int{row1, row2} {
		if r < 0 || r >= len(g.rows) {
			return fmt.Errorf("%w: %d", ErrRowOutOfRange, r)
		}
	}
	for _, c := range []int{col1, col2} {
		if c < 0 || c >= len(editable) {
			return fmt.Errorf("%w: %d", ErrColumnOutOfRange, c)
		}
	}

	for _, cell := range g.selectedCells {
		cell.SetSelected(false)
	}
	g.selectedCells = g.selectedCells[:0]

	rLo, rHi := min(row1, row2), max(row1, row2)
	cLo, cHi := min(col1, col2), max(col1, col2)
	for r := rLo; r <= rHi; r++ {
		for c := cLo; c <= cHi; c++ {
			if cell, ok := g.rows[r].Cell(editable[c].Name); ok {
				cell.SetSelected(true)
				g.selectedCells = append(g.selectedCells, cell)
			}
		}
	}

	g.curRow, g.curCol = row1, col1
	g.extentRow, g.extentCol = row2, col2
	g.hasSelection = true
	return nil
}

// CurrentCell returns the cell under the cursor.
func (g *Grid) CurrentCell() (*gridmodel.Cell, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.currentCellLocked()
}

func (g *Grid) currentCellLocked() (*gridmodel.Cell, error) {
	if err := g.guardLocked(); err != nil {
		return nil, err
	}
	if !g.hasSelection {
		return nil, ErrNoSelection
	}
	editable := g.editableColumnsLocked()
	cell, ok := g.rows[g.curRow].Cell(editable[g.curCol].Name)
	if !ok {
		return nil, ErrNoSelection
	}
	return cell, nil
}

// MoveNext advances the cursor one cell to the right, wrapping to the start
// of the next row; at the last cell it stays put.
func (g *Grid) MoveNext() error {
	return g.moveCursor(func(row, col, rows, cols int) (int, int) {
		col++
		if col >= cols {
			if row+1 < rows {
				return row + 1, 0
			}
			return row, cols - 1
		}
		return row, col
	})
}

// MovePrevious moves the cursor one cell to the left, wrapping to the end of
// the previous row; at the first cell it stays put.
func (g *Grid) MovePrevious() error {
	return g.moveCursor(func(row, col, rows, cols int) (int, int) {
		col--
		if col < 0 {
			if row > 0 {
				return row - 1, cols - 1
			}
			return 0, 0
		}
		return row, col
	})
}

// MoveDown moves the cursor one row down in the same column, clamped at the
// last row.
func (g *Grid) MoveDown() error {
	return g.moveCursor(func(row, col, rows, cols int) (int, int) {
		return min(row+1, rows-1), col
	})
}

// MoveUp moves the cursor one row up in the same column, clamped at the
// first row.
func (g *Grid) MoveUp() error {
	return g.moveCursor(func(row, col, rows, cols int) (int, int) {
		return max(row-1, 0), col
	})
}

// MoveTo places the cursor on explicit coordinates.
func (g *Grid) MoveTo(row, col int) error {
	return g.SelectCell(row, col)
}

func (g *Grid) moveCursor(step func(row, col, rows, cols int) (int, int)) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.guardLocked(); err != nil {
		return err
	}
	if !g.hasSelection {
		return g.selectRangeLocked(0, 0, 0, 0)
	}
	cols := len(g.editableColumnsLocked())
	row, col := step(g.curRow, g.curCol, len(g.rows), cols)
	return g.selectRangeLocked(row, col, row, col)
}

// BeginEdit snapshots the current cell's value as the edit baseline.
func (g *Grid) BeginEdit() error {
	cell, err := g.CurrentCell()
	if err != nil {
		return err
	}
	cell.StartEditing()
	return nil
}

// CommitEdit adopts the current cell's value and schedules its validation.
func (g *Grid) CommitEdit(ctx context.Context) error {
	g.mu.RLock()
	cell, err := g.currentCellLocked()
	if err != nil {
		g.mu.RUnlock()
		return err
	}
	row := g.rows[g.curRow]
	sched := g.sched
	g.mu.RUnlock()

	cell.CommitEdit()
	sched.Schedule(ctx, cell, row, throttle.DelayTyping)
	return nil
}

// CancelEdit reverts the current cell to its edit baseline and refreshes the
// row aggregate.
func (g *Grid) CancelEdit() error {
	g.mu.RLock()
	cell, err := g.currentCellLocked()
	if err != nil {
		g.mu.RUnlock()
		return err
	}
	row := g.rows[g.curRow]
	g.mu.RUnlock()

	if cell.CancelEdit() {
		row.UpdateValidationStatus()
	}
	return nil
}

// ClearCurrentCell blanks the cell under the cursor through the normal
// validated write path.
func (g *Grid) ClearCurrentCell(ctx context.Context) error {
	g.mu.RLock()
	cell, err := g.currentCellLocked()
	if err != nil {
		g.mu.RUnlock()
		return err
	}
	row := g.rows[g.curRow]
	g.mu.RUnlock()

	return row.SetValue(cell.Column(), gridmodel.NullValue())
}

// CopySelectedCells renders the selected rectangle as an Excel-compatible
// clipboard payload.
func (g *Grid) CopySelectedCells() (clipboard.Payload, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if err := g.guardLocked(); err != nil {
		return clipboard.Payload{}, err
	}
	if !g.hasSelection {
		return clipboard.Payload{}, ErrNoSelection
	}

	editable := g.editableColumnsLocked()
	rLo, rHi := min(g.curRow, g.extentRow), max(g.curRow, g.extentRow)
	cLo, cHi := min(g.curCol, g.extentCol), max(g.curCol, g.extentCol)

	grid := make([][]string, 0, rHi-rLo+1)
	for r := rLo; r <= rHi; r++ {
		line := make([]string, 0, cHi-cLo+1)
		for c := cLo; c <= cHi; c++ {
			cell, ok := g.rows[r].Cell(editable[c].Name)
			if !ok {
				line = append(line, "")
				continue
			}
			line = append(line, cell.Value().Format())
		}
		grid = append(grid, line)
	}
	return clipboard.Render(grid), nil
}

// PasteFromClipboard writes tab-delimited clipboard text into the grid
// starting at the given row and editable-column index. The row set grows as
// needed; special and read-only targets and columns beyond the editable
// range are skipped. Each written cell is validated after the paste debounce
// window.
func (g *Grid) PasteFromClipboard(ctx context.Context, text string, atRow, atCol int) error {
	parsed := clipboard.Parse(text)
	if len(parsed) == 0 {
		return nil
	}
	if atRow < 0 {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, atRow)
	}
	if atCol < 0 {
		return fmt.Errorf("%w: %d", ErrColumnOutOfRange, atCol)
	}

	g.mu.Lock()
	if err := g.guardLocked(); err != nil {
		g.mu.Unlock()
		return err
	}

	for len(g.rows) < atRow+len(parsed) {
		g.rows = append(g.rows, g.newRow(len(g.rows)))
	}

	editable := g.editableColumnsLocked()
	type write struct {
		row  *gridmodel.Row
		cell *gridmodel.Cell
	}
	var writes []write

	for i, line := range parsed {
		row := g.rows[atRow+i]
		for j, raw := range line {
			colIdx := atCol + j
			if colIdx >= len(editable) {
				break
			}
			col := editable[colIdx]
			if col.ReadOnly {
				continue
			}
			if err := row.LoadValue(col.Name, parseOrRaw(raw, col.Kind)); err != nil {
				g.mu.Unlock()
				return err
			}
			if cell, ok := row.Cell(col.Name); ok {
				writes = append(writes, write{row: row, cell: cell})
			}
		}
	}
	sched := g.sched
	g.mu.Unlock()

	for _, w := range writes {
		sched.Schedule(ctx, w.cell, w.row, throttle.DelayPaste)
	}
	return nil
}
