// Package job adapts plain closures to the workpool.Job interface.
package job

import (
	"context"
	"errors"
	"fmt"
)

// ErrNilJobFunc is returned when a Func is nil.
var ErrNilJobFunc = errors.New("nil job func")

// Func lets connection work be handed to the pool as a closure.
type Func func(context.Context) error

// Run implements workpool.Job.
func (f Func) Run(ctx context.Context) error {
	if f == nil {
		return fmt.Errorf("job: %w", ErrNilJobFunc)
	}
	return f(ctx)
}

// New creates a job from a closure.
func New(fn func(context.Context) error) Func {
	return Func(fn)
}

// Task is a Func with a finish step run after the pool releases its slot.
type Task struct {
	Func
	finish func()
}

// Finish implements workpool.Finisher.
func (t Task) Finish() {
	if t.finish != nil {
		t.finish()
	}
}

// Detached wraps fn so it runs with ctx's values but without its
// cancellation, returning the original ctx to fn. The pool skips jobs whose
// submission context is done; a detached job is always run so that fn can
// observe the cancellation itself. finish may be nil.
func Detached(ctx context.Context, fn func(context.Context) error, finish func()) (context.Context, Task) {
	return context.WithoutCancel(ctx), Task{
		Func:   Func(func(context.Context) error { return fn(ctx) }),
		finish: finish,
	}
}
