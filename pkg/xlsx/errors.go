package xlsx

import "errors"

var (
	ErrNoSheets      = errors.New("xlsx: workbook has no sheets")
	ErrEmptyWorkbook = errors.New("xlsx: workbook has no rows")
)
