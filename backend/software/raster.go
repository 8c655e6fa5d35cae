// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"image"
	"math"

	"github.com/gogpu/gg"
)

// mask is an 8-bit coverage map the size of the page. Only pixels inside
// bounds may be non-zero.
type mask struct {
	w, h   int
	a      []uint8
	bounds image.Rectangle
}

func (m *mask) at(x, y int) float64 {
	if m == nil {
		return 1
	}
	return float64(m.a[y*m.w+x]) / 255
}

// intersect multiplies m by other and returns the result as a new mask.
// A nil operand covers everything.
func (m *mask) intersect(other *mask) *mask {
	if m == nil {
		return other
	}
	if other == nil {
		return m
	}
	out := &mask{w: m.w, h: m.h, a: make([]uint8, len(m.a)), bounds: m.bounds.Intersect(other.bounds)}
	for y := out.bounds.Min.Y; y < out.bounds.Max.Y; y++ {
		for x := out.bounds.Min.X; x < out.bounds.Max.X; x++ {
			i := y*m.w + x
			out.a[i] = uint8((uint16(m.a[i])*uint16(other.a[i]) + 127) / 255)
		}
	}
	return out
}

// strokeStyle is a stroke in device units.
type strokeStyle struct {
	width      float64
	cap        gg.LineCap
	join       gg.LineJoin
	miterLimit float64
	dash       []float64
	dashOffset float64
}

// rasterizer turns device-space paths into coverage masks by painting them
// opaque white into a scratch context and reading back alpha.
type rasterizer struct {
	w, h int
	dc   *gg.Context
}

func newRasterizer(w, h int) *rasterizer {
	return &rasterizer{w: w, h: h, dc: gg.NewContext(max(w, 1), max(h, 1))}
}

// bounds is the device rectangle that may receive coverage for p, grown by
// pad on every side.
func (r *rasterizer) bounds(p *gg.Path, pad float64) image.Rectangle {
	bb := p.BoundingBox()
	rect := image.Rect(
		int(math.Floor(bb.Min.X-pad))-1, int(math.Floor(bb.Min.Y-pad))-1,
		int(math.Ceil(bb.Max.X+pad))+1, int(math.Ceil(bb.Max.Y+pad))+1,
	)
	return rect.Intersect(image.Rect(0, 0, r.w, r.h))
}

func (r *rasterizer) fill(p *gg.Path, rule gg.FillRule) *mask {
	dc := r.dc
	dc.Clear()
	dc.ClearPath()
	dc.SetFillBrush(gg.Solid(gg.White))
	dc.SetFillRule(rule)
	emit(dc, p)
	if err := dc.Fill(); err != nil {
		Logger().Debug("software: fill rasterization failed", "err", err)
	}
	return r.read(r.bounds(p, 0))
}

func (r *rasterizer) stroke(p *gg.Path, s strokeStyle) *mask {
	dc := r.dc
	dc.Clear()
	dc.ClearPath()
	dc.SetStrokeBrush(gg.Solid(gg.White))
	st := gg.Stroke{Width: s.width, Cap: s.cap, Join: s.join, MiterLimit: s.miterLimit}
	if len(s.dash) > 0 {
		if d := gg.NewDash(s.dash...); d != nil {
			st.Dash = d.WithOffset(s.dashOffset)
		}
	}
	dc.SetStroke(st)
	emit(dc, p)
	if err := dc.Stroke(); err != nil {
		Logger().Debug("software: stroke rasterization failed", "err", err)
	}
	pad := s.width / 2
	if s.join == gg.LineJoinMiter {
		pad *= math.Max(1, s.miterLimit)
	}
	if s.cap == gg.LineCapSquare {
		pad = math.Max(pad, s.width*math.Sqrt2/2)
	}
	return r.read(r.bounds(p, pad))
}

func (r *rasterizer) read(bounds image.Rectangle) *mask {
	m := &mask{w: r.w, h: r.h, a: make([]uint8, r.w*r.h), bounds: bounds}
	if r.w == 0 || r.h == 0 {
		return m
	}
	_ = r.dc.FlushGPU()
	px := r.dc.ResizeTarget().Data()
	stride := r.dc.Width()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			m.a[y*r.w+x] = px[(y*stride+x)*4+3]
		}
	}
	return m
}

// rect returns the coverage of an axis-aligned device rectangle.
func (r *rasterizer) rect(x0, y0, x1, y1 float64) *mask {
	p := gg.NewPath()
	p.MoveTo(x0, y0)
	p.LineTo(x1, y0)
	p.LineTo(x1, y1)
	p.LineTo(x0, y1)
	p.Close()
	return r.fill(p, gg.FillRuleNonZero)
}

// shift moves a mask by (dx, dy) whole pixels.
func (m *mask) shift(dx, dy int) *mask {
	out := &mask{w: m.w, h: m.h, a: make([]uint8, len(m.a))}
	out.bounds = m.bounds.Add(image.Pt(dx, dy)).Intersect(image.Rect(0, 0, m.w, m.h))
	for y := out.bounds.Min.Y; y < out.bounds.Max.Y; y++ {
		for x := out.bounds.Min.X; x < out.bounds.Max.X; x++ {
			out.a[y*m.w+x] = m.a[(y-dy)*m.w+(x-dx)]
		}
	}
	return out
}

// blur approximates a gaussian of the given sigma with three box passes.
func (m *mask) blur(sigma float64) *mask {
	if sigma < 0.5 {
		return m
	}
	radius := int(math.Round(sigma * math.Sqrt(3)))
	grow := 3 * radius
	out := &mask{w: m.w, h: m.h, a: append([]uint8(nil), m.a...)}
	out.bounds = image.Rect(m.bounds.Min.X-grow, m.bounds.Min.Y-grow, m.bounds.Max.X+grow, m.bounds.Max.Y+grow).
		Intersect(image.Rect(0, 0, m.w, m.h))
	tmp := make([]uint8, len(m.a))
	for range 3 {
		boxPass(out.a, tmp, m.w, out.bounds, radius, true)
		boxPass(tmp, out.a, m.w, out.bounds, radius, false)
	}
	return out
}

func boxPass(src, dst []uint8, stride int, b image.Rectangle, r int, horizontal bool) {
	n := 2*r + 1
	if horizontal {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			sum := 0
			for x := b.Min.X - r; x <= b.Min.X+r; x++ {
				sum += sample(src, stride, b, x, y)
			}
			for x := b.Min.X; x < b.Max.X; x++ {
				dst[y*stride+x] = uint8(sum / n)
				sum += sample(src, stride, b, x+r+1, y) - sample(src, stride, b, x-r, y)
			}
		}
		return
	}
	for x := b.Min.X; x < b.Max.X; x++ {
		sum := 0
		for y := b.Min.Y - r; y <= b.Min.Y+r; y++ {
			sum += sample(src, stride, b, x, y)
		}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			dst[y*stride+x] = uint8(sum / n)
			sum += sample(src, stride, b, x, y+r+1) - sample(src, stride, b, x, y-r)
		}
	}
}

func sample(a []uint8, stride int, b image.Rectangle, x, y int) int {
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return 0
	}
	return int(a[y*stride+x])
}
