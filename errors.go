package gridkit

import "errors"

var (
	ErrNotInitialized     = errors.New("gridkit: grid is not initialized")
	ErrAlreadyInitialized = errors.New("gridkit: grid is already initialized")
	ErrDisposed           = errors.New("gridkit: grid is disposed")
	ErrRowOutOfRange      = errors.New("gridkit: row index out of range")
	ErrColumnOutOfRange   = errors.New("gridkit: column index out of range")
	ErrReadOnlyColumn     = errors.New("gridkit: column is read-only")
	ErrNoSelection        = errors.New("gridkit: no cell is selected")
)
