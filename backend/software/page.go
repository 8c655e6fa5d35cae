// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"fmt"
	"image"
	"math"
	"slices"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/recording"
	"github.com/gogpu/gg/text"

	"github.com/gogpu/canvas/engine"
)

// state is the canvas drawing state saved by Save and restored by Restore.
type state struct {
	ctm       gg.Matrix
	fill      paint
	stroke    paint
	alpha     float64
	composite string

	lineWidth  float64
	lineCap    string
	lineJoin   string
	miterLimit float64
	dash       []float64
	dashOffset float64

	font         fontSpec
	textAlign    string
	textBaseline string
	direction    string

	shadowBlur  float64
	shadowColor gg.RGBA
	shadowX     float64
	shadowY     float64

	smoothing bool
	filter    string

	clip *mask
}

func defaultState() state {
	black := gg.RGBA{A: 1}
	return state{
		ctm:          gg.Identity(),
		fill:         solidPaint("#000000", black),
		stroke:       solidPaint("#000000", black),
		alpha:        1,
		composite:    "source-over",
		lineWidth:    1,
		lineCap:      "butt",
		lineJoin:     "miter",
		miterLimit:   10,
		font:         defaultFont(),
		textAlign:    "start",
		textBaseline: "alphabetic",
		direction:    "inherit",
		shadowColor:  gg.Transparent,
		smoothing:    true,
		filter:       "none",
	}
}

func (s state) clone() state {
	s.dash = slices.Clone(s.dash)
	return s
}

// textRun is a text draw kept beside the display list so vector export can
// emit real text with its face, or fall back to the outline.
type textRun struct {
	face    text.Face
	outline *gg.Path
	// upright is false when the transform rotates or skews the text.
	upright bool
}

// page is a drawing context: pixels, drawing state and a vector display list
// in device space.
type page struct {
	base
	eng *Engine

	mu    sync.Mutex
	w, h  int
	surf  *surface
	ras   *rasterizer
	rec   *recording.Recorder
	texts []textRun
	st    state
	stack []state
	b     *builder
}

func newPage(e *Engine, w, h int) *page {
	p := &page{eng: e}
	p.resize(max(w, 0), max(h, 0))
	return p
}

// resize discards pixels, display list and drawing state.
func (p *page) resize(w, h int) {
	p.w, p.h = w, h
	p.surf = newSurface(w, h)
	p.ras = newRasterizer(w, h)
	p.rec = nil
	if p.eng.record {
		p.rec = recording.NewRecorder(w, h)
	}
	p.texts = nil
	p.st = defaultState()
	p.stack = nil
	p.b = newBuilder()
}

func (p *page) call(_ *Engine, op engine.Op, a *args) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ok, err := p.b.build(p.st.ctm, op, a); ok {
		return nil, err
	}
	switch op {
	case engine.OpGet:
		name := a.str()
		if a.err != nil {
			return nil, a.err
		}
		return p.get(name)
	case engine.OpSet:
		name, v := a.str(), a.any()
		if a.err != nil {
			return nil, a.err
		}
		return nil, p.set(name, v)
	case engine.OpSave:
		p.stack = append(p.stack, p.st.clone())
		if p.rec != nil {
			p.rec.Save()
		}
	case engine.OpRestore:
		if len(p.stack) == 0 {
			return nil, nil
		}
		p.st = p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]
		if p.rec != nil {
			p.rec.Restore()
		}
	case engine.OpReset:
		p.resize(p.w, p.h)
	case engine.OpResetSize:
		w, h := a.int(), a.int()
		if a.err != nil {
			return nil, a.err
		}
		p.resize(max(w, 0), max(h, 0))
	case engine.OpBeginPath:
		p.b.reset()
	default:
		if ok, err := p.transform(op, a); ok {
			return p.transformResult(op), err
		}
		return p.draw(op, a)
	}
	return nil, nil
}

// transform runs the transform ops. Non-finite arguments leave the
// transform unchanged.
func (p *page) transform(op engine.Op, a *args) (bool, error) {
	var m gg.Matrix
	switch op {
	case engine.OpTransform, engine.OpSetTransform:
		v := a.matrix()
		if a.err != nil {
			return true, a.err
		}
		m = basisMatrix(v)
	case engine.OpTranslate:
		m = gg.Translate(a.float(), a.float())
	case engine.OpScale:
		m = gg.Scale(a.float(), a.float())
	case engine.OpRotate:
		m = gg.Rotate(a.float())
	case engine.OpResetTransform:
		p.st.ctm = gg.Identity()
		return true, nil
	case engine.OpGetTransform:
		return true, nil
	default:
		return false, nil
	}
	if a.err != nil {
		return true, a.err
	}
	if !finiteMatrix(m) {
		return true, nil
	}
	if op == engine.OpSetTransform {
		p.st.ctm = m
	} else {
		p.st.ctm = p.st.ctm.Multiply(m)
	}
	return true, nil
}

func (p *page) transformResult(op engine.Op) any {
	if op == engine.OpGetTransform {
		return basisOf(p.st.ctm)
	}
	return nil
}

func finiteMatrix(m gg.Matrix) bool {
	for _, v := range []float64{m.A, m.B, m.C, m.D, m.E, m.F} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (p *page) get(name string) (any, error) {
	st := &p.st
	switch name {
	case "fillStyle":
		return st.fill.value(), nil
	case "strokeStyle":
		return st.stroke.value(), nil
	case "globalAlpha":
		return st.alpha, nil
	case "globalCompositeOperation":
		return st.composite, nil
	case "lineWidth":
		return st.lineWidth, nil
	case "lineCap":
		return st.lineCap, nil
	case "lineJoin":
		return st.lineJoin, nil
	case "miterLimit":
		return st.miterLimit, nil
	case "lineDash":
		return append([]float64{}, st.dash...), nil
	case "lineDashOffset":
		return st.dashOffset, nil
	case "font":
		return st.font.css, nil
	case "textAlign":
		return st.textAlign, nil
	case "textBaseline":
		return st.textBaseline, nil
	case "direction":
		return st.direction, nil
	case "shadowBlur":
		return st.shadowBlur, nil
	case "shadowColor":
		return formatColor(st.shadowColor), nil
	case "shadowOffsetX":
		return st.shadowX, nil
	case "shadowOffsetY":
		return st.shadowY, nil
	case "imageSmoothingEnabled":
		return st.smoothing, nil
	case "filter":
		return st.filter, nil
	}
	return nil, fmt.Errorf("%w: property %q", engine.ErrUnknownOp, name)
}

var keywords = map[string][]string{
	"lineCap":      {"butt", "round", "square"},
	"lineJoin":     {"miter", "round", "bevel"},
	"textAlign":    {"start", "end", "left", "right", "center"},
	"textBaseline": {"top", "hanging", "middle", "alphabetic", "ideographic", "bottom"},
	"direction":    {"ltr", "rtl", "inherit"},
}

// set assigns a property. Values of the right type but out of range are
// ignored, as canvas contexts do.
func (p *page) set(name string, v any) error {
	st := &p.st
	a := newArgs(engine.OpSet, []any{v})
	switch name {
	case "fillStyle", "strokeStyle":
		pt, ok, err := p.paintOf(v)
		if err != nil || !ok {
			return err
		}
		if name == "fillStyle" {
			st.fill = pt
		} else {
			st.stroke = pt
		}
	case "globalCompositeOperation":
		if s := a.str(); a.err == nil {
			if _, ok := compositeOps[s]; ok {
				st.composite = s
			}
		}
	case "lineCap", "lineJoin", "textAlign", "textBaseline", "direction":
		s := a.str()
		if a.err != nil || !slices.Contains(keywords[name], s) {
			break
		}
		switch name {
		case "lineCap":
			st.lineCap = s
		case "lineJoin":
			st.lineJoin = s
		case "textAlign":
			st.textAlign = s
		case "textBaseline":
			st.textBaseline = s
		case "direction":
			st.direction = s
		}
	case "font":
		if s := a.str(); a.err == nil {
			if f, ok := parseFont(s, st.font.size); ok {
				st.font = f
			}
		}
	case "shadowColor":
		if s := a.str(); a.err == nil {
			if c, err := parseColor(s); err == nil {
				st.shadowColor = c
			}
		}
	case "filter":
		if s := a.str(); a.err == nil {
			st.filter = s
		}
	case "imageSmoothingEnabled":
		if b := a.bool(); a.err == nil {
			st.smoothing = b
		}
	case "lineDash":
		if d := a.floats(); a.err == nil && validDash(d) {
			st.dash = slices.Clone(d)
			if len(d)%2 == 1 {
				st.dash = append(st.dash, d...)
			}
		}
	default:
		f := a.float()
		if a.err != nil {
			return a.err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		switch name {
		case "globalAlpha":
			if f >= 0 && f <= 1 {
				st.alpha = f
			}
		case "lineWidth":
			if f > 0 {
				st.lineWidth = f
			}
		case "miterLimit":
			if f > 0 {
				st.miterLimit = f
			}
		case "lineDashOffset":
			st.dashOffset = f
		case "shadowBlur":
			if f >= 0 {
				st.shadowBlur = f
			}
		case "shadowOffsetX":
			st.shadowX = f
		case "shadowOffsetY":
			st.shadowY = f
		default:
			return fmt.Errorf("%w: property %q", engine.ErrUnknownOp, name)
		}
	}
	return a.err
}

func validDash(d []float64) bool {
	for _, v := range d {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// paintOf converts a style value. It reports false for a color string the
// page should ignore.
func (p *page) paintOf(v any) (paint, bool, error) {
	switch s := v.(type) {
	case string:
		c, err := parseColor(s)
		if err != nil {
			Logger().Debug("software: ignoring style", "value", s)
			return paint{}, false, nil
		}
		return solidPaint(s, c), true, nil
	case *gradient:
		if s.dead() {
			return paint{}, false, engine.ErrBadHandle
		}
		return paint{grad: s}, true, nil
	case *pattern:
		if s.dead() {
			return paint{}, false, engine.ErrBadHandle
		}
		return paint{pat: s}, true, nil
	}
	return paint{}, false, fmt.Errorf("%w: style is %T", ErrArgs, v)
}

// snapshot copies the page pixels.
func (p *page) snapshot() *image.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.surf.image()
}
