package workpool

import (
	"errors"
	"fmt"
)

// ErrPoolFull reports back-pressure: too many jobs are already unfinished.
var ErrPoolFull = errors.New("work pool full")

// ErrPoolClosed reports that Stop has been called.
var ErrPoolClosed = errors.New("work pool closed")

// PoolFullError carries the counts at rejection and matches ErrPoolFull.
type PoolFullError struct {
	Pending int
	Limit   int
}

func (e *PoolFullError) Error() string {
	return fmt.Sprintf("work pool full (pending=%d limit=%d)", e.Pending, e.Limit)
}

func (e *PoolFullError) Is(target error) bool { return target == ErrPoolFull }

// PanicError is handed to the ErrorHandler when a job panics.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("job panic: %v", e.Value)
}
