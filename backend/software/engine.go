// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/canvas/engine"
)

// Errors returned by the software engine.
var (
	// ErrArgs is returned when an operation receives arguments of the
	// wrong number or type.
	ErrArgs = errors.New("software: bad arguments")

	// ErrColor is returned for a CSS color the engine cannot parse.
	ErrColor = errors.New("software: invalid color")

	// ErrDecode is returned when image bytes are in no supported format.
	ErrDecode = errors.New("software: could not decode image data")

	// ErrUnsupported is returned for operations the engine recognizes but
	// cannot perform.
	ErrUnsupported = errors.New("software: unsupported")
)

func init() {
	engine.Register("software", func() (engine.Engine, error) {
		return Default()
	})
}

var (
	defaultOnce sync.Once
	defaultEng  *Engine
	defaultErr  error
)

// Default returns the process-wide engine, creating it on first use. Every
// canvas that selects "software" shares its font library.
func Default() (*Engine, error) {
	defaultOnce.Do(func() {
		defaultEng, defaultErr = New()
	})
	return defaultEng, defaultErr
}

// Engine renders canvases on the CPU.
type Engine struct {
	fonts  *fontLibrary
	record bool
}

var (
	_ engine.Engine      = (*Engine)(nil)
	_ engine.Exporter    = (*Engine)(nil)
	_ engine.Snapshotter = (*Engine)(nil)
)

// Option configures an Engine.
type Option func(*Engine) error

// WithoutRecording skips the vector display list. Pages then cost only
// their pixels, and PDF or SVG export fails with ErrUnsupported.
func WithoutRecording() Option {
	return func(e *Engine) error {
		e.record = false
		return nil
	}
}

// WithFallbackFont replaces the built-in Go Regular face used when no
// registered family matches a font request.
func WithFallbackFont(data []byte) Option {
	return func(e *Engine) error {
		return e.fonts.setFallback(data)
	}
}

// New creates an engine with its own font library. Most programs use
// Default through the engine registry instead.
func New(opts ...Option) (*Engine, error) {
	fonts, err := newFontLibrary()
	if err != nil {
		return nil, err
	}
	e := &Engine{fonts: fonts, record: true}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// base is embedded by every handle type.
type base struct {
	released atomic.Bool
}

// Release implements engine.Handle.
func (b *base) Release() { b.released.Store(true) }

func (b *base) dead() bool { return b.released.Load() }

// canvasHandle anchors the pages of one document.
type canvasHandle struct {
	base
	eng *Engine
}

// Alloc implements engine.Engine.
func (e *Engine) Alloc(kind engine.Kind, variant string, list ...any) (engine.Handle, error) {
	a := newArgs(engine.Op(kind.String()+"."+variant), list)
	var (
		h   engine.Handle
		err error
	)
	switch kind {
	case engine.KindCanvas:
		if variant != "new" {
			break
		}
		return &canvasHandle{eng: e}, nil
	case engine.KindContext:
		if variant != "new" {
			break
		}
		_ = a.any()
		w, hgt := a.int(), a.int()
		if a.err != nil {
			return nil, a.err
		}
		return newPage(e, w, hgt), nil
	case engine.KindGradient:
		h, err = newGradient(variant, a)
		if err != nil || h != nil {
			return h, err
		}
	case engine.KindPattern:
		if variant != "from_image" && variant != "from_canvas" {
			break
		}
		src := a.any()
		rep := a.str()
		if a.err != nil {
			return nil, a.err
		}
		return e.newPattern(src, rep)
	case engine.KindPath:
		h, err = newPathVariant(variant, a)
		if err != nil || h != nil {
			return h, err
		}
	case engine.KindImage:
		if variant == "new" {
			return &imageHandle{}, nil
		}
	case engine.KindFontLibrary:
		if variant == "new" {
			return &fontsHandle{lib: e.fonts}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s %q", engine.ErrUnknownVariant, kind, variant)
}

// callable is implemented by every handle type that accepts operations.
type callable interface {
	engine.Handle
	dead() bool
	call(e *Engine, op engine.Op, a *args) (any, error)
}

// Call implements engine.Engine.
func (e *Engine) Call(h engine.Handle, op engine.Op, list ...any) (any, error) {
	c, ok := h.(callable)
	if !ok || c.dead() {
		return nil, engine.ErrBadHandle
	}
	a := newArgs(op, list)
	v, err := c.call(e, op, a)
	if err != nil {
		return nil, err
	}
	if a.err != nil {
		return nil, a.err
	}
	return v, nil
}

func (c *canvasHandle) call(_ *Engine, op engine.Op, _ *args) (any, error) {
	return nil, unknownOp(c, op)
}

func unknownOp(h engine.Handle, op engine.Op) error {
	return fmt.Errorf("%w: %T %s", engine.ErrUnknownOp, h, op)
}
