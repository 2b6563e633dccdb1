package gridmodel

// Reserved column names. Both are excluded from emptiness, validation, and
// export semantics.
const (
	// ActionColumnName is the row-delete action column.
	ActionColumnName = "Actions"
	// AlertColumnName is the validation-summary column; its cell mirrors the
	// row's error summary.
	AlertColumnName = "Alerts"
)

// Column describes one grid column. Name must be unique within a grid
// instance; the orchestrator disambiguates collisions by appending "_N".
type Column struct {
	Name     string
	Kind     Kind
	MinWidth float64
	MaxWidth float64
	ReadOnly bool
}

// IsSpecial reports whether the column is one of the two reserved columns.
func (c Column) IsSpecial() bool {
	return IsSpecialColumn(c.Name)
}

// IsSpecialColumn reports whether name is one of the two reserved column
// names.
func IsSpecialColumn(name string) bool {
	return name == ActionColumnName || name == AlertColumnName
}

// ActionColumn returns the canonical row-action column.
func ActionColumn() Column {
	return Column{Name: ActionColumnName, Kind: KindString, MinWidth: 40, MaxWidth: 60, ReadOnly: true}
}

// AlertColumn returns the canonical validation-summary column.
func AlertColumn() Column {
	return Column{Name: AlertColumnName, Kind: KindString, MinWidth: 120, MaxWidth: 400, ReadOnly: true}
}
