package canvas

import (
	"context"
	"sync"
)

type outcome[T any] struct {
	val T
	err error
}

// Future is the result of an export. It settles exactly once.
type Future[T any] struct {
	done chan struct{}
	res  outcome[T]
}

// resolved returns a settled Future.
func resolved[T any](v T, err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), res: outcome[T]{v, err}}
	close(f.done)
	return f
}

// promise returns a pending Future and the function that settles it. Only
// the first call to settle has any effect.
func promise[T any]() (*Future[T], func(T, error)) {
	f := &Future[T]{done: make(chan struct{})}
	ch := make(chan outcome[T], 1)
	var once sync.Once
	settle := func(v T, err error) {
		once.Do(func() { ch <- outcome[T]{v, err} })
	}
	go func() {
		f.res = <-ch
		close(f.done)
	}()
	return f, settle
}

// Done is closed when the Future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the Future settles or ctx is done. Cancelling ctx
// stops the wait, not the export.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.res.val, f.res.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Wait blocks until the Future settles.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.res.val, f.res.err
}

// then returns a Future settled with fn applied to f's value.
func then[T, U any](f *Future[T], fn func(T) U) *Future[U] {
	select {
	case <-f.done:
		if f.res.err != nil {
			var zero U
			return resolved(zero, f.res.err)
		}
		return resolved(fn(f.res.val), nil)
	default:
	}
	g, settle := promise[U]()
	go func() {
		v, err := f.Wait()
		if err != nil {
			var zero U
			settle(zero, err)
			return
		}
		settle(fn(v), nil)
	}()
	return g
}
