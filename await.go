package wmata

import (
	"context"
	"encoding/json"
	"fmt"
)

// Await runs call with a callback and blocks until that callback fires or
// ctx is done. Synchronous errors from call are returned as is.
//
//	lines, err := wmata.Await(ctx, func(cb wmata.Callback) error {
//		return c.RailLines(ctx, cb)
//	})
func Await(ctx context.Context, call func(Callback) error) (any, error) {
	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)
	if err := call(func(err error, result any) {
		done <- outcome{result: result, err: err}
	}); err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case o := <-done:
		return o.result, o.err
	}
}

// Decode copies a parsed result into v, which should be a pointer to one of
// the response types or any JSON-compatible value.
func Decode(result any, v any) error {
	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
