// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package enginetest provides an in-memory engine for tests of code built
// on the engine boundary. It records every call and keeps property values
// so that setters and getters round-trip.
package enginetest

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gogpu/canvas/engine"
)

// Handle is the fake engine's handle.
type Handle struct {
	ID      int
	Kind    engine.Kind
	Variant string
	Args    []any

	released atomic.Int32
	mu       sync.Mutex
	props    map[string]any
}

// Release implements engine.Handle.
func (h *Handle) Release() { h.released.Add(1) }

// Released returns how many times Release was called.
func (h *Handle) Released() int { return int(h.released.Load()) }

// Prop returns a stored property.
func (h *Handle) Prop(name string) (any, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.props[name]
	return v, ok
}

func (h *Handle) set(name string, v any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.props == nil {
		h.props = make(map[string]any)
	}
	h.props[name] = v
}

// Call is one recorded engine.Call.
type Call struct {
	Handle *Handle
	Op     engine.Op
	Args   []any
}

// Export is one recorded export.
type Export struct {
	Canvas *Handle
	Pages  []*Handle
	Req    engine.Request
	Async  bool
}

// Engine is a fake engine.Engine that also implements engine.Exporter and
// engine.Snapshotter.
type Engine struct {
	// AllocErr, when set, is returned by Alloc for matching kinds.
	AllocErr map[engine.Kind]error

	// CallHook runs before the default behavior. Returning handled=true
	// skips the default.
	CallHook func(h *Handle, op engine.Op, args []any) (result any, err error, handled bool)

	// ExportErr is returned by every export.
	ExportErr error

	mu      sync.Mutex
	next    int
	handles []*Handle
	calls   []Call
	exports []Export
	wg      sync.WaitGroup
}

// New returns an empty fake engine.
func New() *Engine {
	return &Engine{}
}

// Alloc implements engine.Engine.
func (e *Engine) Alloc(kind engine.Kind, variant string, args ...any) (engine.Handle, error) {
	if err := e.AllocErr[kind]; err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next++
	h := &Handle{ID: e.next, Kind: kind, Variant: variant, Args: args}
	e.handles = append(e.handles, h)
	return h, nil
}

// Handles returns every handle allocated so far.
func (e *Engine) Handles() []*Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Handle(nil), e.handles...)
}

// Calls returns recorded calls, optionally filtered by op.
func (e *Engine) Calls(ops ...engine.Op) []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(ops) == 0 {
		return append([]Call(nil), e.calls...)
	}
	var out []Call
	for _, c := range e.calls {
		for _, op := range ops {
			if c.Op == op {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Exports returns recorded exports.
func (e *Engine) Exports() []Export {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Export(nil), e.exports...)
}

// Wait blocks until every ExportAsync callback has run.
func (e *Engine) Wait() { e.wg.Wait() }

// Call implements engine.Engine.
func (e *Engine) Call(h engine.Handle, op engine.Op, args ...any) (any, error) {
	fh, ok := h.(*Handle)
	if !ok || fh == nil {
		return nil, engine.ErrBadHandle
	}
	e.mu.Lock()
	e.calls = append(e.calls, Call{Handle: fh, Op: op, Args: args})
	e.mu.Unlock()

	if e.CallHook != nil {
		if res, err, handled := e.CallHook(fh, op, args); handled {
			return res, err
		}
	}

	switch op {
	case engine.OpSet:
		fh.set(args[0].(string), args[1])
		return nil, nil
	case engine.OpGet:
		v, _ := fh.Prop(args[0].(string))
		return v, nil
	case engine.OpSetTransform:
		fh.set("transform", args[0])
		return nil, nil
	case engine.OpResetTransform:
		fh.set("transform", [6]float64{1, 0, 0, 0, 1, 0})
		return nil, nil
	case engine.OpGetTransform:
		m, ok := fh.Prop("transform")
		if !ok {
			m = [6]float64{1, 0, 0, 0, 1, 0}
		}
		v := m.([6]float64)
		return append(v[:], 0, 0, 1), nil
	case engine.OpPathOp, engine.OpSimplify:
		if op == engine.OpPathOp {
			if _, ok := args[0].(*Handle); !ok {
				return nil, engine.ErrBadHandle
			}
		}
		return e.Alloc(engine.KindPath, string(op), args...)
	case engine.OpBounds:
		return engine.Rect{}, nil
	case engine.OpSVG:
		return "", nil
	case engine.OpContains, engine.OpIsPointInPath, engine.OpIsPointInStroke:
		return false, nil
	case engine.OpMeasureText:
		s := args[0].(string)
		return engine.TextMetrics{
			Width: float64(len(s)) * 10,
			Lines: []engine.TextLine{{Width: float64(len(s)) * 10, EndIndex: len(s)}},
		}, nil
	case engine.OpGetImageData:
		w, hgt := int(args[2].(float64)), int(args[3].(float64))
		return engine.Pixels{Width: w, Height: hgt, Data: make([]byte, w*hgt*4)}, nil
	case engine.OpSetData:
		data := args[0].([]byte)
		if len(data) == 0 || strings.HasPrefix(string(data), "bad") {
			return nil, errors.New("enginetest: could not decode image data")
		}
		fh.set("data", data)
		return engine.ImageInfo{Width: len(data), Height: 1, Format: "png"}, nil
	case engine.OpFontUse:
		alias, _ := args[0].(string)
		paths, _ := args[1].([]string)
		out := make([]engine.FontInfo, 0, len(paths))
		for _, p := range paths {
			fam := alias
			if fam == "" {
				fam = "Fake"
			}
			out = append(out, engine.FontInfo{Family: fam, Weight: 400, Style: "normal", Width: "normal", File: p})
		}
		return out, nil
	case engine.OpFontFamilies:
		return []string{}, nil
	case engine.OpFontHas:
		return false, nil
	case engine.OpFontFamily:
		return (*engine.FontFamily)(nil), nil
	}
	return nil, nil
}

// Export implements engine.Exporter. The payload names the format and the
// ids of the exported pages, so tests can tell which pages were chosen.
func (e *Engine) Export(canvas engine.Handle, pages []engine.Handle, req engine.Request) ([]byte, error) {
	return e.export(canvas, pages, req, false)
}

// ExportAsync implements engine.Exporter.
func (e *Engine) ExportAsync(canvas engine.Handle, pages []engine.Handle, req engine.Request, done func([]byte, error)) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		done(e.export(canvas, pages, req, true))
	}()
}

func (e *Engine) export(canvas engine.Handle, pages []engine.Handle, req engine.Request, async bool) ([]byte, error) {
	rec := Export{Req: req, Async: async}
	rec.Canvas, _ = canvas.(*Handle)
	ids := make([]string, len(pages))
	for i, p := range pages {
		fh, _ := p.(*Handle)
		rec.Pages = append(rec.Pages, fh)
		if fh != nil {
			ids[i] = fmt.Sprint(fh.ID)
		}
	}
	e.mu.Lock()
	e.exports = append(e.exports, rec)
	e.mu.Unlock()

	if e.ExportErr != nil {
		return nil, e.ExportErr
	}
	if req.Pattern != "" {
		return nil, nil
	}
	return []byte(req.Format + ":" + strings.Join(ids, ",")), nil
}

// Snapshot implements engine.Snapshotter with a 1x1 image.
func (e *Engine) Snapshot(page engine.Handle) (image.Image, error) {
	if _, ok := page.(*Handle); !ok {
		return nil, engine.ErrBadHandle
	}
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.White)
	return img, nil
}

var (
	_ engine.Engine      = (*Engine)(nil)
	_ engine.Exporter    = (*Engine)(nil)
	_ engine.Snapshotter = (*Engine)(nil)
)
