// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"fmt"
	"image"
	"math"
	"slices"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/recording"
	"golang.org/x/image/draw"

	"github.com/gogpu/canvas/engine"
)

// draw runs the drawing and pixel ops. The caller holds p.mu.
func (p *page) draw(op engine.Op, a *args) (any, error) {
	switch op {
	case engine.OpFill, engine.OpClip:
		v := a.any()
		rule := fillRule(a.optStr("nonzero"))
		path, err := p.target(v)
		if err != nil || a.err != nil {
			return nil, firstErr(a.err, err)
		}
		if op == engine.OpFill {
			p.fillPath(path, rule)
		} else {
			p.clipPath(path, rule)
		}
	case engine.OpStroke:
		path, err := p.target(a.any())
		if err != nil {
			return nil, err
		}
		p.strokePath(path)
	case engine.OpIsPointInPath:
		v := a.any()
		x, y := a.float(), a.float()
		rule := fillRule(a.optStr("nonzero"))
		path, err := p.target(v)
		if err != nil || a.err != nil {
			return nil, firstErr(a.err, err)
		}
		return insidePath(path, gg.Pt(x, y), rule), nil
	case engine.OpIsPointInStroke:
		v := a.any()
		x, y := a.float(), a.float()
		path, err := p.target(v)
		if err != nil || a.err != nil {
			return nil, firstErr(a.err, err)
		}
		return nearStroke(path, gg.Pt(x, y), p.st.lineWidth*scaleFactor(p.st.ctm)), nil
	case engine.OpFillRect, engine.OpStrokeRect, engine.OpClearRect:
		x, y, w, h := a.float(), a.float(), a.float(), a.float()
		if a.err != nil {
			return nil, a.err
		}
		rb := newBuilder()
		rb.rect(p.st.ctm, x, y, w, h)
		switch op {
		case engine.OpFillRect:
			p.fillPath(rb.path, gg.FillRuleNonZero)
		case engine.OpStrokeRect:
			p.strokePath(rb.path)
		default:
			p.clearPath(rb.path)
		}
	case engine.OpFillText, engine.OpStrokeText:
		s, x, y := a.str(), a.float(), a.float()
		maxWidth := a.optFloat(0)
		if a.err != nil {
			return nil, a.err
		}
		p.drawText(s, x, y, maxWidth, op == engine.OpStrokeText)
	case engine.OpMeasureText:
		s := a.str()
		maxWidth := a.optFloat(0)
		if a.err != nil {
			return nil, a.err
		}
		return p.measureText(s, maxWidth), nil
	case engine.OpDrawImage:
		src := a.any()
		coords := a.floats()
		if a.err != nil {
			return nil, a.err
		}
		return nil, p.drawImage(src, coords)
	case engine.OpGetImageData:
		x, y, w, h := a.float(), a.float(), a.float(), a.float()
		if a.err != nil {
			return nil, a.err
		}
		return p.getImageData(x, y, w, h)
	case engine.OpPutImageData:
		v := a.any()
		pix, ok := v.(engine.Pixels)
		if !ok {
			a.fail(v, "engine.Pixels")
		}
		dx, dy := a.float(), a.float()
		var dirty []float64
		if a.i < len(a.list) {
			dirty = a.floats()
		}
		if a.err != nil {
			return nil, a.err
		}
		return nil, p.putImageData(pix, dx, dy, dirty)
	default:
		return nil, unknownOp(p, op)
	}
	return nil, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func fillRule(s string) gg.FillRule {
	if s == "evenodd" {
		return gg.FillRuleEvenOdd
	}
	return gg.FillRuleNonZero
}

// target resolves the path argument of fill, stroke, clip and the hit
// tests to device space. nil selects the current path.
func (p *page) target(v any) (*gg.Path, error) {
	switch h := v.(type) {
	case nil:
		return p.b.path, nil
	case *pathHandle:
		if h.dead() {
			return nil, engine.ErrBadHandle
		}
		dev := gg.NewPath()
		appendPath(dev, h.snapshot(), p.st.ctm)
		return dev, nil
	}
	return nil, fmt.Errorf("%w: path is %T", ErrArgs, v)
}

func premul(c gg.RGBA) px {
	return px{c.R * c.A, c.G * c.A, c.B * c.A, c.A}
}

// source returns the device-space color of a paint under the current
// transform and global alpha.
func (p *page) source(pt paint) source {
	if pt.grad == nil && pt.pat == nil {
		return solidSource(premul(withAlpha(pt.color, p.st.alpha)))
	}
	b := pt.brush(p.st.ctm, p.st.alpha)
	return func(x, y float64) px { return premul(b.ColorAt(x, y)) }
}

func (p *page) shadowed() bool {
	st := &p.st
	return st.shadowColor.A > 0 && (st.shadowBlur > 0 || st.shadowX != 0 || st.shadowY != 0)
}

// paintWith draws the shadow of cover, if any, then composites src
// through cover.
func (p *page) paintWith(cover *mask, src source) {
	st := &p.st
	op := compositeOps[st.composite]
	if p.shadowed() {
		sm := cover.shift(int(math.Round(st.shadowX)), int(math.Round(st.shadowY))).blur(st.shadowBlur / 2)
		p.surf.draw(solidSource(premul(withAlpha(st.shadowColor, st.alpha))), sm, st.clip, op)
	}
	p.surf.draw(src, cover, st.clip, op)
}

func (p *page) paintCover(cover *mask, pt paint) {
	p.paintWith(cover, p.source(pt))
}

func (p *page) fillPath(dev *gg.Path, rule gg.FillRule) {
	p.paintCover(p.ras.fill(dev, rule), p.st.fill)
	if p.rec == nil {
		return
	}
	if p.st.fill.pat != nil && p.recordPatternFill(dev, rule) {
		return
	}
	p.rec.SetFillStyle(p.st.fill.recordBrush(p.st.ctm, p.st.alpha))
	p.rec.SetFillRuleGG(rule)
	emit(p.rec, dev)
	p.rec.Fill()
}

// recordPatternFill records a pattern fill as image tiles clipped to the
// path. It reports false when the pattern is rotated or skewed on the page.
func (p *page) recordPatternFill(dev *gg.Path, rule gg.FillRule) bool {
	pat := p.st.fill.pat
	m := p.st.ctm.Multiply(pat.transform())
	b := pat.img.Bounds()
	if m.B != 0 || m.D != 0 || m.A <= 0 || m.E <= 0 || b.Empty() {
		return false
	}
	tw, th := float64(b.Dx())*m.A, float64(b.Dy())*m.E
	bb := dev.BoundingBox()
	i0, i1 := 0, 0
	j0, j1 := 0, 0
	if pat.repeat == "repeat" || pat.repeat == "repeat-x" {
		i0 = int(math.Floor((bb.Min.X - m.C) / tw))
		i1 = int(math.Floor((bb.Max.X - m.C) / tw))
	}
	if pat.repeat == "repeat" || pat.repeat == "repeat-y" {
		j0 = int(math.Floor((bb.Min.Y - m.F) / th))
		j1 = int(math.Floor((bb.Max.Y - m.F) / th))
	}
	const maxTiles = 4096
	if (i1-i0+1)*(j1-j0+1) > maxTiles {
		return false
	}
	img := pat.img
	if p.st.alpha < 1 {
		img = fadeImage(img, p.st.alpha)
	}
	r := p.rec
	r.Save()
	r.SetFillRuleGG(rule)
	emit(r, dev)
	r.Clip()
	for j := j0; j <= j1; j++ {
		for i := i0; i <= i1; i++ {
			r.DrawImageScaled(img, m.C+float64(i)*tw, m.F+float64(j)*th, tw, th)
		}
	}
	r.Restore()
	return true
}

// fadeImage returns a copy of img with its alpha scaled by a.
func fadeImage(img image.Image, a float64) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	for i := range out.Pix {
		out.Pix[i] = uint8(math.Round(float64(out.Pix[i]) * a))
	}
	return out
}

// currentStroke converts the line settings to device units.
func (p *page) currentStroke() strokeStyle {
	st := &p.st
	k := scaleFactor(st.ctm)
	s := strokeStyle{
		width:      st.lineWidth * k,
		cap:        lineCap(st.lineCap),
		join:       lineJoin(st.lineJoin),
		miterLimit: st.miterLimit,
		dashOffset: st.dashOffset * k,
	}
	sum := 0.0
	for _, d := range st.dash {
		sum += d
	}
	if sum > 0 {
		s.dash = make([]float64, len(st.dash))
		for i, d := range st.dash {
			s.dash[i] = d * k
		}
	}
	return s
}

func lineCap(s string) gg.LineCap {
	switch s {
	case "round":
		return gg.LineCapRound
	case "square":
		return gg.LineCapSquare
	}
	return gg.LineCapButt
}

func lineJoin(s string) gg.LineJoin {
	switch s {
	case "round":
		return gg.LineJoinRound
	case "bevel":
		return gg.LineJoinBevel
	}
	return gg.LineJoinMiter
}

func (p *page) strokePath(dev *gg.Path) {
	s := p.currentStroke()
	if s.width <= 0 {
		return
	}
	p.paintCover(p.ras.stroke(dev, s), p.st.stroke)
	if p.rec == nil {
		return
	}
	r := p.rec
	r.SetStrokeStyle(p.st.stroke.recordBrush(p.st.ctm, p.st.alpha))
	r.SetLineWidth(s.width)
	r.SetLineCapGG(s.cap)
	r.SetLineJoinGG(s.join)
	r.SetMiterLimit(s.miterLimit)
	if len(s.dash) > 0 {
		r.SetDash(s.dash...)
		r.SetDashOffset(s.dashOffset)
	} else {
		r.ClearDash()
	}
	emit(r, dev)
	r.Stroke()
}

func (p *page) clipPath(dev *gg.Path, rule gg.FillRule) {
	p.st.clip = p.st.clip.intersect(p.ras.fill(dev, rule))
	if p.rec != nil {
		p.rec.SetFillRuleGG(rule)
		emit(p.rec, dev)
		p.rec.Clip()
	}
}

var clearOp = compositeOp{fn: porterDuff(zero, zero)}

// clearPath erases the pixels under dev. A clear of the whole unclipped
// page also drops the display list recorded so far.
func (p *page) clearPath(dev *gg.Path) {
	p.surf.draw(solidSource(px{}), p.ras.fill(dev, gg.FillRuleNonZero), p.st.clip, clearOp)
	if p.rec == nil || p.st.clip != nil || len(p.stack) > 0 {
		return
	}
	m := p.st.ctm
	bb := dev.BoundingBox()
	if m.B == 0 && m.D == 0 && bb.Min.X <= 0 && bb.Min.Y <= 0 && bb.Max.X >= float64(p.w) && bb.Max.Y >= float64(p.h) {
		p.rec = recording.NewRecorder(p.w, p.h)
		p.texts = nil
	}
}

// sourceImage resolves a drawImage or pattern source. A page drawing
// itself reads its own surface without locking again.
func (p *page) sourceImage(v any) (image.Image, error) {
	if src, ok := v.(*page); ok && src == p {
		return p.surf.image(), nil
	}
	return sourceImage(v)
}

func sourceImage(v any) (image.Image, error) {
	switch h := v.(type) {
	case *page:
		if h.dead() {
			return nil, engine.ErrBadHandle
		}
		return h.snapshot(), nil
	case *imageHandle:
		if h.dead() {
			return nil, engine.ErrBadHandle
		}
		img := h.image()
		if img == nil {
			return nil, fmt.Errorf("%w: image has no data", ErrArgs)
		}
		return img, nil
	}
	return nil, fmt.Errorf("%w: image source is %T", ErrArgs, v)
}

// drawImage draws src with 2 (dx, dy), 4 (dx, dy, dw, dh) or 8 (source
// rectangle then destination rectangle) coordinates.
func (p *page) drawImage(v any, c []float64) error {
	img, err := p.sourceImage(v)
	if err != nil {
		return err
	}
	b := img.Bounds()
	iw, ih := float64(b.Dx()), float64(b.Dy())
	var sx, sy, sw, sh, dx, dy, dw, dh float64
	switch len(c) {
	case 2:
		sw, sh, dx, dy, dw, dh = iw, ih, c[0], c[1], iw, ih
	case 4:
		sw, sh, dx, dy, dw, dh = iw, ih, c[0], c[1], c[2], c[3]
	case 8:
		sx, sy, sw, sh, dx, dy, dw, dh = c[0], c[1], c[2], c[3], c[4], c[5], c[6], c[7]
	default:
		return fmt.Errorf("%w: drawImage takes 2, 4 or 8 coordinates, got %d", ErrArgs, len(c))
	}
	sx, sw = normSpan(sx, sw)
	sy, sh = normSpan(sy, sh)
	dx, dw = normSpan(dx, dw)
	dy, dh = normSpan(dy, dh)
	if sw == 0 || sh == 0 || dw == 0 || dh == 0 {
		return nil
	}

	// Clip the source rectangle to the image and shrink the destination
	// by the same proportion.
	x0, y0 := math.Max(sx, 0), math.Max(sy, 0)
	x1, y1 := math.Min(sx+sw, iw), math.Min(sy+sh, ih)
	if x1 <= x0 || y1 <= y0 {
		return nil
	}
	fx, fy := dw/sw, dh/sh
	dx += (x0 - sx) * fx
	dy += (y0 - sy) * fy
	dw, dh = (x1-x0)*fx, (y1-y0)*fy
	sx, sy, sw, sh = x0, y0, x1-x0, y1-y0

	st := &p.st
	quad := newBuilder()
	quad.rect(st.ctm, dx, dy, dw, dh)
	m := st.ctm.Multiply(gg.Translate(dx, dy)).Multiply(gg.Scale(dw/sw, dh/sh)).Multiply(gg.Translate(-sx, -sy))
	inv := m.Invert()
	smp := newSampler(img, sx, sy, sw, sh, st.smoothing)
	alpha := st.alpha
	p.paintWith(p.ras.fill(quad.path, gg.FillRuleNonZero), func(x, y float64) px {
		u := inv.TransformPoint(gg.Pt(x, y))
		col := smp.at(u.X, u.Y)
		for i := range col {
			col[i] *= alpha
		}
		return col
	})

	if p.rec != nil {
		crop := smp.img.SubImage(image.Rect(int(sx), int(sy), int(math.Ceil(sx+sw)), int(math.Ceil(sy+sh))))
		if alpha < 1 {
			crop = fadeImage(crop, alpha)
		}
		bb := quad.path.BoundingBox()
		p.rec.DrawImageScaled(crop, bb.Min.X, bb.Min.Y, bb.Max.X-bb.Min.X, bb.Max.Y-bb.Min.Y)
	}
	return nil
}

func normSpan(o, l float64) (float64, float64) {
	if l < 0 {
		return o + l, -l
	}
	return o, l
}

// sampler reads premultiplied colors from a source rectangle of an image.
type sampler struct {
	img            *image.RGBA
	x0, y0, x1, y1 float64
	smooth         bool
}

func newSampler(img image.Image, sx, sy, sw, sh float64, smooth bool) *sampler {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		b := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	return &sampler{img: rgba, x0: sx, y0: sy, x1: sx + sw, y1: sy + sh, smooth: smooth}
}

func (s *sampler) pixel(x, y int) px {
	x = min(max(x, int(s.x0)), int(math.Ceil(s.x1))-1)
	y = min(max(y, int(s.y0)), int(math.Ceil(s.y1))-1)
	i := s.img.PixOffset(x, y)
	c := s.img.Pix[i : i+4 : i+4]
	return px{float64(c[0]) / 255, float64(c[1]) / 255, float64(c[2]) / 255, float64(c[3]) / 255}
}

// at samples image coordinates (u, v), nearest or bilinear, clamping to
// the source rectangle.
func (s *sampler) at(u, v float64) px {
	if !s.smooth {
		return s.pixel(int(math.Floor(u)), int(math.Floor(v)))
	}
	u, v = u-0.5, v-0.5
	x, y := math.Floor(u), math.Floor(v)
	fx, fy := u-x, v-y
	ix, iy := int(x), int(y)
	c00, c10 := s.pixel(ix, iy), s.pixel(ix+1, iy)
	c01, c11 := s.pixel(ix, iy+1), s.pixel(ix+1, iy+1)
	var out px
	for i := range out {
		top := c00[i]*(1-fx) + c10[i]*fx
		bot := c01[i]*(1-fx) + c11[i]*fx
		out[i] = top*(1-fy) + bot*fy
	}
	return out
}

// getImageData reads an unpremultiplied copy of a device rectangle.
// Pixels outside the page read as transparent black.
func (p *page) getImageData(x, y, w, h float64) (engine.Pixels, error) {
	x, w = normSpan(x, w)
	y, h = normSpan(y, h)
	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	iw, ih := int(math.Ceil(x+w))-x0, int(math.Ceil(y+h))-y0
	if iw <= 0 || ih <= 0 {
		return engine.Pixels{}, fmt.Errorf("%w: getImageData size %gx%g", ErrArgs, w, h)
	}
	out := engine.Pixels{Width: iw, Height: ih, Data: make([]byte, iw*ih*4)}
	for j := range ih {
		sy := y0 + j
		if sy < 0 || sy >= p.h {
			continue
		}
		for i := range iw {
			sx := x0 + i
			if sx < 0 || sx >= p.w {
				continue
			}
			src := p.surf.pix[(sy*p.w+sx)*4:]
			dst := out.Data[(j*iw+i)*4:]
			a := src[3]
			if a == 0 {
				continue
			}
			for k := range 3 {
				dst[k] = uint8(min(255, (int(src[k])*255+int(a)/2)/int(a)))
			}
			dst[3] = a
		}
	}
	return out, nil
}

// putImageData writes pixels directly, ignoring transform, clip, alpha
// and compositing. dirty optionally limits the copied region of pix.
func (p *page) putImageData(pix engine.Pixels, dx, dy float64, dirty []float64) error {
	if pix.Width < 0 || pix.Height < 0 || len(pix.Data) < pix.Width*pix.Height*4 {
		return fmt.Errorf("%w: image data is %d bytes for %dx%d", ErrArgs, len(pix.Data), pix.Width, pix.Height)
	}
	x0, y0, x1, y1 := 0, 0, pix.Width, pix.Height
	if len(dirty) == 4 {
		rx, rw := normSpan(dirty[0], dirty[2])
		ry, rh := normSpan(dirty[1], dirty[3])
		x0 = max(x0, int(math.Floor(rx)))
		y0 = max(y0, int(math.Floor(ry)))
		x1 = min(x1, int(math.Floor(rx+rw)))
		y1 = min(y1, int(math.Floor(ry+rh)))
	}
	if x1 <= x0 || y1 <= y0 {
		return nil
	}
	ox, oy := int(math.Floor(dx)), int(math.Floor(dy))
	for y := y0; y < y1; y++ {
		ty := oy + y
		if ty < 0 || ty >= p.h {
			continue
		}
		for x := x0; x < x1; x++ {
			tx := ox + x
			if tx < 0 || tx >= p.w {
				continue
			}
			src := pix.Data[(y*pix.Width+x)*4:]
			dst := p.surf.pix[(ty*p.w+tx)*4:]
			a := int(src[3])
			for k := range 3 {
				dst[k] = uint8((int(src[k])*a + 127) / 255)
			}
			dst[3] = src[3]
		}
	}

	if p.rec != nil {
		w := x1 - x0
		img := &image.NRGBA{
			Pix:    slices.Clone(pix.Data[(y0*pix.Width+x0)*4:]),
			Stride: pix.Width * 4,
			Rect:   image.Rect(0, 0, w, y1-y0),
		}
		p.rec.DrawImageScaled(img, float64(ox+x0), float64(oy+y0), float64(w), float64(y1-y0))
	}
	return nil
}
