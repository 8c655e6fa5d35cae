// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"fmt"
	"sync"

	"github.com/gogpu/gg"

	"github.com/gogpu/canvas/engine"
	"github.com/gogpu/canvas/vector"
)

// pathHandle is a standalone path in user space.
type pathHandle struct {
	base
	mu sync.Mutex
	b  *builder
}

// newPathVariant returns a nil handle for an unknown variant.
func newPathVariant(variant string, a *args) (engine.Handle, error) {
	h := &pathHandle{b: newBuilder()}
	switch variant {
	case "new":
	case "from_svg":
		d := a.str()
		if a.err != nil {
			return nil, a.err
		}
		p, err := parseSVGPath(d)
		if err != nil {
			return nil, err
		}
		h.setPath(p)
	case "from_path":
		v := a.any()
		src, ok := v.(*pathHandle)
		if !ok || src.dead() {
			return nil, fmt.Errorf("%w: from_path needs a live path, got %T", ErrArgs, v)
		}
		h.setPath(src.snapshot())
	default:
		return nil, nil
	}
	return h, nil
}

func (h *pathHandle) snapshot() *gg.Path {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.b.path.Clone()
}

// setPath replaces the contents and moves the current point to the end
// of p.
func (h *pathHandle) setPath(p *gg.Path) {
	h.b.path = p
	h.b.has = p.HasCurrentPoint()
	if h.b.has {
		h.b.cur = p.CurrentPoint()
		h.b.start = h.b.cur
	}
}

func (h *pathHandle) call(_ *Engine, op engine.Op, a *args) (any, error) {
	// Operands are copied before h is locked so a path may combine with
	// itself.
	switch op {
	case engine.OpAddPath:
		v := a.any()
		m := a.matrix()
		other, ok := v.(*pathHandle)
		if !ok || other.dead() {
			return nil, fmt.Errorf("%w: addPath needs a live path, got %T", ErrArgs, v)
		}
		if a.err != nil {
			return nil, a.err
		}
		src := other.snapshot()
		if !finiteMatrix(basisMatrix(m)) {
			return nil, nil
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		p := h.b.path
		appendPath(p, src, basisMatrix(m))
		h.setPath(p)
		return nil, nil
	case engine.OpPathOp:
		v := a.any()
		kind := a.str()
		other, ok := v.(*pathHandle)
		if !ok || other.dead() {
			return nil, fmt.Errorf("%w: %s needs a live path, got %T", ErrArgs, kind, v)
		}
		if a.err != nil {
			return nil, a.err
		}
		combined, err := combine(h.snapshot(), other.snapshot(), kind)
		if err != nil {
			return nil, err
		}
		out := &pathHandle{b: newBuilder()}
		out.setPath(combined)
		return engine.Handle(out), nil
	case engine.OpSimplify:
		out := &pathHandle{b: newBuilder()}
		out.setPath(simplify(h.snapshot()))
		return engine.Handle(out), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if ok, err := h.b.build(gg.Identity(), op, a); ok {
		return nil, err
	}
	switch op {
	case engine.OpBounds:
		if h.b.path.NumVerbs() == 0 {
			return engine.Rect{}, nil
		}
		bb := h.b.path.BoundingBox()
		return engine.Rect{Left: bb.Min.X, Top: bb.Min.Y, Right: bb.Max.X, Bottom: bb.Max.Y}, nil
	case engine.OpContains:
		x, y := a.float(), a.float()
		if a.err != nil {
			return nil, a.err
		}
		return insidePath(h.b.path, gg.Pt(x, y), gg.FillRuleNonZero), nil
	case engine.OpSVG:
		return vector.PathData(h.b.path), nil
	}
	return nil, unknownOp(h, op)
}
