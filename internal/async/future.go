// Package async runs deferred work whose lifetime is bound to a context.
package async

import (
	"context"
	"time"
)

// Future is the eventual result of work scheduled with After.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// After runs fn once d has elapsed, unless ctx is cancelled first. When ctx
// ends before the delay fires, fn is never called and the future resolves
// with ctx.Err().
func After[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		if d > 0 {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				f.err = ctx.Err()
				return
			}
		}
		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}
		f.val, f.err = fn(ctx)
	}()
	return f
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the result is available or ctx ends. Giving up on the wait
// does not cancel the work itself.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
