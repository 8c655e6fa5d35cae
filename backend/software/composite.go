// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"image"
	"math"

	"github.com/gogpu/gg"
)

// px is a premultiplied RGBA pixel with components in [0, 1].
type px [4]float64

// compositeOp blends a premultiplied source over a premultiplied backdrop.
type compositeOp struct {
	// unbounded ops also affect backdrop pixels the source does not cover.
	unbounded bool
	fn        func(s, d px) px
}

// porterDuff builds an operator from the source and backdrop fractions.
func porterDuff(fa, fb func(as, ab float64) float64) func(s, d px) px {
	return func(s, d px) px {
		a, b := fa(s[3], d[3]), fb(s[3], d[3])
		return px{s[0]*a + d[0]*b, s[1]*a + d[1]*b, s[2]*a + d[2]*b, s[3]*a + d[3]*b}
	}
}

func one(_, _ float64) float64        { return 1 }
func zero(_, _ float64) float64       { return 0 }
func alphaB(_, ab float64) float64    { return ab }
func alphaS(as, _ float64) float64    { return as }
func invAlphaB(_, ab float64) float64 { return 1 - ab }
func invAlphaS(as, _ float64) float64 { return 1 - as }

// separable builds a blend-mode operator composited with source-over.
func separable(blend func(cb, cs float64) float64) func(s, d px) px {
	return func(s, d px) px {
		as, ab := s[3], d[3]
		var out px
		for i := range 3 {
			cs, cb := unpremul(s[i], as), unpremul(d[i], ab)
			out[i] = s[i]*(1-ab) + d[i]*(1-as) + as*ab*blend(cb, cs)
		}
		out[3] = as + ab*(1-as)
		return out
	}
}

// nonSeparable builds a blend-mode operator that mixes whole colors.
func nonSeparable(blend func(cb, cs [3]float64) [3]float64) func(s, d px) px {
	return func(s, d px) px {
		as, ab := s[3], d[3]
		cs := [3]float64{unpremul(s[0], as), unpremul(s[1], as), unpremul(s[2], as)}
		cb := [3]float64{unpremul(d[0], ab), unpremul(d[1], ab), unpremul(d[2], ab)}
		mix := blend(cb, cs)
		var out px
		for i := range 3 {
			out[i] = s[i]*(1-ab) + d[i]*(1-as) + as*ab*mix[i]
		}
		out[3] = as + ab*(1-as)
		return out
	}
}

func unpremul(c, a float64) float64 {
	if a == 0 {
		return 0
	}
	return c / a
}

var compositeOps = map[string]compositeOp{
	"source-over":      {fn: porterDuff(one, invAlphaS)},
	"source-in":        {unbounded: true, fn: porterDuff(alphaB, zero)},
	"source-out":       {unbounded: true, fn: porterDuff(invAlphaB, zero)},
	"source-atop":      {fn: porterDuff(alphaB, invAlphaS)},
	"destination-over": {fn: porterDuff(invAlphaB, one)},
	"destination-in":   {unbounded: true, fn: porterDuff(zero, alphaS)},
	"destination-out":  {fn: porterDuff(zero, invAlphaS)},
	"destination-atop": {unbounded: true, fn: porterDuff(invAlphaB, alphaS)},
	"copy":             {unbounded: true, fn: porterDuff(one, zero)},
	"xor":              {fn: porterDuff(invAlphaB, invAlphaS)},
	"lighter": {fn: func(s, d px) px {
		return px{math.Min(1, s[0]+d[0]), math.Min(1, s[1]+d[1]), math.Min(1, s[2]+d[2]), math.Min(1, s[3]+d[3])}
	}},
	"multiply": {fn: separable(func(cb, cs float64) float64 { return cb * cs })},
	"screen":   {fn: separable(screen)},
	"overlay":  {fn: separable(func(cb, cs float64) float64 { return hardLight(cs, cb) })},
	"darken":   {fn: separable(math.Min)},
	"lighten":  {fn: separable(math.Max)},
	"color-dodge": {fn: separable(func(cb, cs float64) float64 {
		switch {
		case cb == 0:
			return 0
		case cs >= 1:
			return 1
		}
		return math.Min(1, cb/(1-cs))
	})},
	"color-burn": {fn: separable(func(cb, cs float64) float64 {
		switch {
		case cb >= 1:
			return 1
		case cs <= 0:
			return 0
		}
		return 1 - math.Min(1, (1-cb)/cs)
	})},
	"hard-light": {fn: separable(func(cb, cs float64) float64 { return hardLight(cb, cs) })},
	"soft-light": {fn: separable(softLight)},
	"difference": {fn: separable(func(cb, cs float64) float64 { return math.Abs(cb - cs) })},
	"exclusion":  {fn: separable(func(cb, cs float64) float64 { return cb + cs - 2*cb*cs })},
	"hue": {fn: nonSeparable(func(cb, cs [3]float64) [3]float64 {
		return setLum(setSat(cs, sat(cb)), lum(cb))
	})},
	"saturation": {fn: nonSeparable(func(cb, cs [3]float64) [3]float64 {
		return setLum(setSat(cb, sat(cs)), lum(cb))
	})},
	"color": {fn: nonSeparable(func(cb, cs [3]float64) [3]float64 {
		return setLum(cs, lum(cb))
	})},
	"luminosity": {fn: nonSeparable(func(cb, cs [3]float64) [3]float64 {
		return setLum(cb, lum(cs))
	})},
}

func screen(cb, cs float64) float64 { return cb + cs - cb*cs }

func hardLight(cb, cs float64) float64 {
	if cs <= 0.5 {
		return cb * 2 * cs
	}
	return screen(cb, 2*cs-1)
}

func softLight(cb, cs float64) float64 {
	if cs <= 0.5 {
		return cb - (1-2*cs)*cb*(1-cb)
	}
	var d float64
	if cb <= 0.25 {
		d = ((16*cb-12)*cb + 4) * cb
	} else {
		d = math.Sqrt(cb)
	}
	return cb + (2*cs-1)*(d-cb)
}

func lum(c [3]float64) float64 { return 0.3*c[0] + 0.59*c[1] + 0.11*c[2] }

func clipColor(c [3]float64) [3]float64 {
	l := lum(c)
	n := math.Min(c[0], math.Min(c[1], c[2]))
	x := math.Max(c[0], math.Max(c[1], c[2]))
	for i := range c {
		if n < 0 {
			c[i] = l + (c[i]-l)*l/(l-n)
		}
		if x > 1 {
			c[i] = l + (c[i]-l)*(1-l)/(x-l)
		}
	}
	return c
}

func setLum(c [3]float64, l float64) [3]float64 {
	d := l - lum(c)
	return clipColor([3]float64{c[0] + d, c[1] + d, c[2] + d})
}

func sat(c [3]float64) float64 {
	return math.Max(c[0], math.Max(c[1], c[2])) - math.Min(c[0], math.Min(c[1], c[2]))
}

func setSat(c [3]float64, s float64) [3]float64 {
	lo, hi := 0, 0
	for i := range c {
		if c[i] < c[lo] {
			lo = i
		}
		if c[i] > c[hi] {
			hi = i
		}
	}
	if lo == hi {
		return [3]float64{}
	}
	mid := 3 - lo - hi
	var out [3]float64
	out[mid] = (c[mid] - c[lo]) * s / (c[hi] - c[lo])
	out[hi] = s
	return out
}

// surface is a page's premultiplied RGBA pixel buffer.
type surface struct {
	w, h int
	pm   *gg.Pixmap
	pix  []uint8
}

func newSurface(w, h int) *surface {
	pm := gg.NewPixmap(w, h)
	return &surface{w: w, h: h, pm: pm, pix: pm.Data()}
}

func (s *surface) image() *image.RGBA { return s.pm.ToImage() }

func (s *surface) get(x, y int) px {
	i := (y*s.w + x) * 4
	return px{float64(s.pix[i]) / 255, float64(s.pix[i+1]) / 255, float64(s.pix[i+2]) / 255, float64(s.pix[i+3]) / 255}
}

func (s *surface) set(x, y int, c px) {
	i := (y*s.w + x) * 4
	for k := range 4 {
		s.pix[i+k] = uint8(math.Round(math.Max(0, math.Min(1, c[k])) * 255))
	}
}

// source yields the premultiplied paint color at a device pixel center.
type source func(x, y float64) px

func solidSource(c px) source {
	return func(_, _ float64) px { return c }
}

// draw composites src through coverage and clip. Bounded operators only
// touch covered pixels; unbounded ones repaint everything inside the clip.
func (s *surface) draw(src source, cover, clip *mask, op compositeOp) {
	area := cover.bounds
	if op.unbounded {
		area = rectOf(s.w, s.h)
	}
	if clip != nil {
		area = area.Intersect(clip.bounds)
	}
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			k := clip.at(x, y)
			c := cover.at(x, y)
			if k == 0 || (c == 0 && !op.unbounded) {
				continue
			}
			var sp px
			if c > 0 {
				sp = src(float64(x)+0.5, float64(y)+0.5)
			}
			d := s.get(x, y)
			if op.unbounded {
				for i := range sp {
					sp[i] *= c
				}
			} else {
				k *= c
			}
			out := op.fn(sp, d)
			for i := range out {
				out[i] = d[i] + (out[i]-d[i])*k
			}
			s.set(x, y, out)
		}
	}
}

func rectOf(w, h int) image.Rectangle { return image.Rect(0, 0, w, h) }
