package gridmodel

import "sync"

// Cell holds one value belonging to exactly one row and one column, together
// with its validation state and transient editing flags. Cells are created by
// their owning Row; validation components mutate the error state directly,
// which is intentional since views bind to it.
type Cell struct {
	mu        sync.RWMutex
	column    string
	value     Value
	editStart Value
	editing   bool
	selected  bool
	hasError  bool
	errorMsg  string
}

func newCell(column string) *Cell {
	return &Cell{column: column}
}

// Column returns the owning column's name.
func (c *Cell) Column() string { return c.column }

// Value returns the current value.
func (c *Cell) Value() Value {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

func (c *Cell) setValue(v Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
}

// StartEditing snapshots the current value as the edit baseline. Calling it
// while already editing keeps the original snapshot.
func (c *Cell) StartEditing() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.editing {
		c.editStart = c.value
		c.editing = true
	}
}

// CommitEdit adopts the current value as the new baseline and ends editing.
func (c *Cell) CommitEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editStart = c.value
	c.editing = false
}

// CancelEdit reverts to the edit-start snapshot when the value changed during
// the edit and clears any validation error the reverted edit produced.
// It reports whether a revert happened.
func (c *Cell) CancelEdit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	reverted := false
	if c.editing && !c.value.Equal(c.editStart) {
		c.value = c.editStart
		c.hasError = false
		c.errorMsg = ""
		reverted = true
	}
	c.editing = false
	return reverted
}

// Editing reports whether the cell is currently being edited.
func (c *Cell) Editing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.editing
}

// SetSelected sets the transient selection flag.
func (c *Cell) SetSelected(selected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = selected
}

// Selected reports the transient selection flag.
func (c *Cell) Selected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

// HasUnsavedChanges is true only while editing and the current value differs
// from the edit-start snapshot (trimmed comparison for strings).
func (c *Cell) HasUnsavedChanges() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.editing && !c.value.Equal(c.editStart)
}

// SetError marks the cell invalid with the given display message.
func (c *Cell) SetError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hasError = true
	c.errorMsg = msg
}

// ClearError resets the cell's validation state.
func (c *Cell) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hasError = false
	c.errorMsg = ""
}

// HasError reports whether the cell currently carries a validation error.
func (c *Cell) HasError() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hasError
}

// ErrorMessage returns the current validation error text, empty when valid.
func (c *Cell) ErrorMessage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errorMsg
}
