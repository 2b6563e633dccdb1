package gridmodel

import "errors"

var (
	ErrTypeMismatch  = errors.New("gridmodel: value does not match the requested type")
	ErrUnknownColumn = errors.New("gridmodel: unknown column")
)
