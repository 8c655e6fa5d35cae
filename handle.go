package canvas

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gogpu/canvas/engine"
)

// handleBox holds the one engine handle of a wrapper. It is shared only
// between the wrapper and its cleanup, never between wrappers.
type handleBox struct {
	h      engine.Handle
	once   sync.Once
	closed atomic.Bool
}

func (b *handleBox) release() {
	b.once.Do(func() {
		b.closed.Store(true)
		b.h.Release()
		Logger().Debug("canvas: handle released", "handle", fmt.Sprintf("%T", b.h))
	})
}

// resource is embedded by every type that owns an engine handle.
type resource struct {
	eng engine.Engine
	box *handleBox
}

// alloc invokes a named engine constructor. factory names the public
// function callers should use, for the error message.
func alloc(eng engine.Engine, kind engine.Kind, variant, factory string, args ...any) (resource, error) {
	h, err := eng.Alloc(kind, variant, args...)
	if err != nil {
		return resource{}, fmt.Errorf("%w (use %s instead): %w", ErrNotConstructor, factory, err)
	}
	return rehydrate(eng, h), nil
}

// rehydrate wraps a handle the engine just minted. The caller becomes its
// only owner.
func rehydrate(eng engine.Engine, h engine.Handle) resource {
	return resource{eng: eng, box: &handleBox{h: h}}
}

// track releases the handle when owner becomes unreachable without Close.
func track[T any](owner *T, r resource) {
	if r.box != nil {
		runtime.AddCleanup(owner, (*handleBox).release, r.box)
	}
}

// invoke calls op on the owned handle and returns the engine's result
// verbatim. factory is reported when the wrapper was never constructed.
func (r *resource) invoke(factory string, op engine.Op, args ...any) (any, error) {
	if r.box == nil {
		return nil, fmt.Errorf("%w (use %s instead)", ErrNotConstructor, factory)
	}
	if r.box.closed.Load() {
		return nil, ErrClosed
	}
	return r.eng.Call(r.box.h, op, args...)
}

// handle returns the owned handle, or nil.
func (r *resource) handle() engine.Handle {
	if r.box == nil {
		return nil
	}
	return r.box.h
}

func (r *resource) alive() bool {
	return r.box != nil && !r.box.closed.Load()
}

// Close releases the engine handle. It is safe to call more than once.
func (r *resource) Close() error {
	if r.box != nil {
		r.box.release()
	}
	return nil
}

// as converts an engine result to T.
func as[T any](v any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("canvas: engine returned %T, want %T", v, zero)
	}
	return t, nil
}
