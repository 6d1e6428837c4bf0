package series

import (
	"context"
	"sync"
)

// Future is a pending or resolved fetch of one instant's shape. It resolves
// exactly once and may be awaited by any number of goroutines.
type Future struct {
	done  chan struct{}
	once  sync.Once
	shape *Shape
	err   error
}

// NewFuture creates an unresolved future
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// ResolvedFuture creates a future already holding a shape
func ResolvedFuture(shape *Shape) *Future {
	f := NewFuture()
	f.Resolve(shape, nil)
	return f
}

// FailedFuture creates a future already holding an error
func FailedFuture(err error) *Future {
	f := NewFuture()
	f.Resolve(nil, err)
	return f
}

// Go runs fetch on its own goroutine and resolves the future with its result
func Go(fetch func() (*Shape, error)) *Future {
	f := NewFuture()
	go func() {
		f.Resolve(fetch())
	}()
	return f
}

// Resolve stores the result. Only the first call has any effect.
func (f *Future) Resolve(shape *Shape, err error) {
	f.once.Do(func() {
		f.shape = shape
		f.err = err
		close(f.done)
	})
}

// Done is closed once the future resolves
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Resolved reports whether the future has a result
func (f *Future) Resolved() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Failed reports whether the future resolved with an error
func (f *Future) Failed() bool {
	return f.Resolved() && f.err != nil
}

// Await blocks until the future resolves or ctx ends. Leaving early stops
// the wait, not the fetch. Every caller receives its own copy of the shape.
func (f *Future) Await(ctx context.Context) (*Shape, error) {
	select {
	case <-f.done:
		if f.err != nil {
			return nil, f.err
		}
		return f.shape.Clone(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
