// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"errors"
	"image"
	"image/color"
	"slices"
	"testing"

	"github.com/gogpu/canvas/engine"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

// newTestPage returns an engine, its canvas handle and a w x h page.
func newTestPage(t *testing.T, w, h int, opts ...Option) (*Engine, engine.Handle, engine.Handle) {
	t.Helper()
	e := newTestEngine(t, opts...)
	c, err := e.Alloc(engine.KindCanvas, "new")
	if err != nil {
		t.Fatalf("Alloc canvas: %v", err)
	}
	p, err := e.Alloc(engine.KindContext, "new", c, w, h)
	if err != nil {
		t.Fatalf("Alloc context: %v", err)
	}
	return e, c, p
}

// call runs op and fails the test on error.
func call(t *testing.T, e *Engine, h engine.Handle, op engine.Op, args ...any) any {
	t.Helper()
	v, err := e.Call(h, op, args...)
	if err != nil {
		t.Fatalf("%s: %v", op, err)
	}
	return v
}

// pixel returns the premultiplied color at (x, y).
func pixel(t *testing.T, e *Engine, page engine.Handle, x, y int) color.RGBA {
	t.Helper()
	img, err := e.Snapshot(page)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	return img.(*image.RGBA).RGBAAt(x, y)
}

func near(a, b uint8, tol int) bool {
	d := int(a) - int(b)
	return d <= tol && d >= -tol
}

func nearColor(got, want color.RGBA, tol int) bool {
	return near(got.R, want.R, tol) && near(got.G, want.G, tol) && near(got.B, want.B, tol) && near(got.A, want.A, tol)
}

func TestRegistered(t *testing.T) {
	if !slices.Contains(engine.Available(), "software") {
		t.Fatalf("Available() = %v, missing software", engine.Available())
	}
	e, err := engine.Get("software")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	d, _ := Default()
	if e != engine.Engine(d) {
		t.Error("registered engine is not the shared default")
	}
}

func TestAllocVariants(t *testing.T) {
	e := newTestEngine(t)
	c, err := e.Alloc(engine.KindCanvas, "new")
	if err != nil {
		t.Fatal(err)
	}
	src, err := e.Alloc(engine.KindPath, "new")
	if err != nil {
		t.Fatal(err)
	}
	page, err := e.Alloc(engine.KindContext, "new", c, 4, 4)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		kind    engine.Kind
		variant string
		args    []any
		wantErr error
	}{
		{engine.KindCanvas, "new", nil, nil},
		{engine.KindGradient, "linear", []any{0.0, 0.0, 10.0, 0.0}, nil},
		{engine.KindGradient, "radial", []any{0, 0, 1, 0, 0, 10}, nil},
		{engine.KindGradient, "radial", []any{0, 0, -1, 0, 0, 10}, ErrArgs},
		{engine.KindGradient, "conic", []any{0.5, 5, 5}, nil},
		{engine.KindGradient, "linear", []any{0, 0, 10}, ErrArgs},
		{engine.KindGradient, "diamond", nil, engine.ErrUnknownVariant},
		{engine.KindPath, "new", nil, nil},
		{engine.KindPath, "from_svg", []any{"M0 0 L10 0 L10 10 Z"}, nil},
		{engine.KindPath, "from_svg", []any{"10 10"}, ErrArgs},
		{engine.KindPath, "from_path", []any{src}, nil},
		{engine.KindPath, "from_path", []any{"nope"}, ErrArgs},
		{engine.KindPattern, "from_canvas", []any{page, "repeat"}, nil},
		{engine.KindImage, "new", nil, nil},
		{engine.KindFontLibrary, "new", nil, nil},
		{engine.KindContext, "new", []any{c, "wide", 4}, ErrArgs},
		{engine.KindCanvas, "clone", nil, engine.ErrUnknownVariant},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String()+"."+tt.variant, func(t *testing.T) {
			h, err := e.Alloc(tt.kind, tt.variant, tt.args...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Alloc: %v", err)
			}
			if h == nil {
				t.Fatal("Alloc returned a nil handle")
			}
		})
	}
}

func TestCallReleasedHandle(t *testing.T) {
	e, c, p := newTestPage(t, 8, 8)
	p.Release()
	if _, err := e.Call(p, engine.OpFillRect, 0, 0, 1, 1); !errors.Is(err, engine.ErrBadHandle) {
		t.Errorf("call on released page: err = %v, want ErrBadHandle", err)
	}
	if _, err := e.Snapshot(p); !errors.Is(err, engine.ErrBadHandle) {
		t.Errorf("snapshot of released page: err = %v, want ErrBadHandle", err)
	}
	if _, err := e.Export(c, []engine.Handle{p}, engine.Request{Format: "png"}); !errors.Is(err, engine.ErrBadHandle) {
		t.Errorf("export of released page: err = %v, want ErrBadHandle", err)
	}
}

func TestCallErrors(t *testing.T) {
	e, c, p := newTestPage(t, 8, 8)
	tests := []struct {
		name    string
		h       engine.Handle
		op      engine.Op
		args    []any
		wantErr error
	}{
		{"missing argument", p, engine.OpMoveTo, []any{1.0}, ErrArgs},
		{"wrong type", p, engine.OpLineTo, []any{"x", 1.0}, ErrArgs},
		{"unknown op on page", p, engine.OpAddColorStop, []any{0.0, "red"}, engine.ErrUnknownOp},
		{"unknown op on canvas", c, engine.OpFill, nil, engine.ErrUnknownOp},
		{"unknown property", p, engine.OpGet, []any{"colour"}, engine.ErrUnknownOp},
		{"bad style type", p, engine.OpSet, []any{"fillStyle", 42}, ErrArgs},
		{"nil handle", nil, engine.OpFill, nil, engine.ErrBadHandle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Call(tt.h, tt.op, tt.args...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	e := newTestEngine(t)
	h, err := e.Alloc(engine.KindPath, "new")
	if err != nil {
		t.Fatal(err)
	}
	h.Release()
	h.Release()
	if _, err := e.Call(h, engine.OpSVG); !errors.Is(err, engine.ErrBadHandle) {
		t.Errorf("err = %v, want ErrBadHandle", err)
	}
}
