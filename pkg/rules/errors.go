package rules

import "errors"

var (
	ErrEmptyColumn = errors.New("rules: rule column name must not be empty")
	ErrEmptyName   = errors.New("rules: rule name must not be empty")
)
