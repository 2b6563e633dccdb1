package throttle

import "errors"

var (
	ErrNegativeDelay      = errors.New("throttle: delays must not be negative")
	ErrInvalidConcurrency = errors.New("throttle: max concurrency must be at least 1")
	ErrNilValidator       = errors.New("throttle: validator must not be nil")
	ErrClosed             = errors.New("throttle: scheduler is closed")
)
