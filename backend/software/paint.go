// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/recording"

	"github.com/gogpu/canvas/engine"
)

type colorStop struct {
	offset float64
	color  gg.RGBA
}

// gradient holds a canvas gradient in user space. The gg brush is built
// when a page fills with it, under that page's transform.
type gradient struct {
	base
	kind string

	mu     sync.Mutex
	x0, y0 float64
	r0     float64
	x1, y1 float64
	r1     float64
	angle  float64
	stops  []colorStop
}

// newGradient returns a nil handle for an unknown variant.
func newGradient(variant string, a *args) (engine.Handle, error) {
	g := &gradient{kind: variant}
	switch variant {
	case "linear":
		g.x0, g.y0, g.x1, g.y1 = a.float(), a.float(), a.float(), a.float()
	case "radial":
		g.x0, g.y0, g.r0 = a.float(), a.float(), a.float()
		g.x1, g.y1, g.r1 = a.float(), a.float(), a.float()
		if a.err == nil && (g.r0 < 0 || g.r1 < 0) {
			return nil, fmt.Errorf("%w: negative radius", ErrArgs)
		}
	case "conic":
		g.angle, g.x0, g.y0 = a.float(), a.float(), a.float()
	default:
		return nil, nil
	}
	if a.err != nil {
		return nil, a.err
	}
	return g, nil
}

func (g *gradient) call(_ *Engine, op engine.Op, a *args) (any, error) {
	if op != engine.OpAddColorStop {
		return nil, unknownOp(g, op)
	}
	offset, css := a.float(), a.str()
	if a.err != nil {
		return nil, a.err
	}
	c, err := parseColor(css)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stops = append(g.stops, colorStop{offset: offset, color: c})
	return nil, nil
}

// userBrush builds the gg brush in user space.
func (g *gradient) userBrush() gg.Brush {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.kind {
	case "radial":
		b := gg.NewRadialGradientBrush(g.x1, g.y1, g.r0, g.r1).SetFocus(g.x0, g.y0)
		for _, s := range g.stops {
			b.AddColorStop(s.offset, s.color)
		}
		return b
	case "conic":
		b := gg.NewSweepGradientBrush(g.x0, g.y0, g.angle)
		for _, s := range g.stops {
			b.AddColorStop(s.offset, s.color)
		}
		return b
	default:
		b := gg.NewLinearGradientBrush(g.x0, g.y0, g.x1, g.y1)
		for _, s := range g.stops {
			b.AddColorStop(s.offset, s.color)
		}
		return b
	}
}

// recordBrush maps the gradient geometry to device space for the display
// list. Radii scale by the transform's mean scale factor.
func (g *gradient) recordBrush(m gg.Matrix, alpha float64) recording.Brush {
	g.mu.Lock()
	defer g.mu.Unlock()
	stops := make([]recording.GradientStop, len(g.stops))
	for i, s := range g.stops {
		stops[i] = recording.GradientStop{Offset: s.offset, Color: withAlpha(s.color, alpha)}
	}
	p0 := m.TransformPoint(gg.Pt(g.x0, g.y0))
	switch g.kind {
	case "radial":
		p1 := m.TransformPoint(gg.Pt(g.x1, g.y1))
		k := scaleFactor(m)
		return recording.RadialGradientBrush{
			Center: p1, Focus: p0,
			StartRadius: g.r0 * k, EndRadius: g.r1 * k,
			Stops: stops,
		}
	case "conic":
		rot := math.Atan2(m.D, m.A)
		return recording.SweepGradientBrush{
			Center:     p0,
			StartAngle: g.angle + rot,
			EndAngle:   g.angle + rot + 2*math.Pi,
			Stops:      stops,
		}
	default:
		return recording.LinearGradientBrush{
			Start: p0,
			End:   m.TransformPoint(gg.Pt(g.x1, g.y1)),
			Stops: stops,
		}
	}
}

// pattern tiles a snapshot of an image or page.
type pattern struct {
	base
	img    image.Image
	repeat string

	mu sync.Mutex
	m  gg.Matrix
}

func (e *Engine) newPattern(src any, repeat string) (engine.Handle, error) {
	img, err := sourceImage(src)
	if err != nil {
		return nil, err
	}
	switch repeat {
	case "", "repeat":
		repeat = "repeat"
	case "repeat-x", "repeat-y", "no-repeat":
	default:
		return nil, fmt.Errorf("%w: repetition %q", ErrArgs, repeat)
	}
	return &pattern{img: img, repeat: repeat, m: gg.Identity()}, nil
}

func (p *pattern) call(_ *Engine, op engine.Op, a *args) (any, error) {
	if op != engine.OpSetTransform {
		return nil, unknownOp(p, op)
	}
	m := a.matrix()
	if a.err != nil {
		return nil, a.err
	}
	p.mu.Lock()
	p.m = basisMatrix(m)
	p.mu.Unlock()
	return nil, nil
}

func (p *pattern) transform() gg.Matrix {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.m
}

// colorAt samples the tile at pattern-space (x, y) with nearest filtering.
func (p *pattern) colorAt(x, y float64) gg.RGBA {
	b := p.img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return gg.Transparent
	}
	ix, iy := int(math.Floor(x)), int(math.Floor(y))
	repX := p.repeat == "repeat" || p.repeat == "repeat-x"
	repY := p.repeat == "repeat" || p.repeat == "repeat-y"
	if repX {
		ix = mod(ix, w)
	} else if ix < 0 || ix >= w {
		return gg.Transparent
	}
	if repY {
		iy = mod(iy, h)
	} else if iy < 0 || iy >= h {
		return gg.Transparent
	}
	return gg.FromColor(p.img.At(b.Min.X+ix, b.Min.Y+iy))
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}

// paint is a fill or stroke style: exactly one of css, grad and pat is set.
type paint struct {
	css   string
	color gg.RGBA
	grad  *gradient
	pat   *pattern
}

func solidPaint(css string, c gg.RGBA) paint {
	return paint{css: css, color: c}
}

// value is what OpGet reports: the normalized color or the style handle.
func (p paint) value() any {
	switch {
	case p.grad != nil:
		return engine.Handle(p.grad)
	case p.pat != nil:
		return engine.Handle(p.pat)
	}
	return formatColor(p.color)
}

// brush returns a device-space gg brush for a page transform m.
func (p paint) brush(m gg.Matrix, alpha float64) gg.Brush {
	switch {
	case p.grad != nil:
		user := p.grad.userBrush()
		if m.IsIdentity() && alpha == 1 {
			return user
		}
		inv := m.Invert()
		return gg.NewCustomBrush(func(x, y float64) gg.RGBA {
			u := inv.TransformPoint(gg.Pt(x, y))
			return withAlpha(user.ColorAt(u.X, u.Y), alpha)
		})
	case p.pat != nil:
		inv := m.Multiply(p.pat.transform()).Invert()
		pat := p.pat
		return gg.NewCustomBrush(func(x, y float64) gg.RGBA {
			u := inv.TransformPoint(gg.Pt(x, y))
			return withAlpha(pat.colorAt(u.X, u.Y), alpha)
		})
	}
	return gg.Solid(withAlpha(p.color, alpha))
}

// recordBrush is the display-list equivalent of brush. Patterns are drawn
// as clipped tiles instead; here they degrade to their mean color.
func (p paint) recordBrush(m gg.Matrix, alpha float64) recording.Brush {
	switch {
	case p.grad != nil:
		return p.grad.recordBrush(m, alpha)
	case p.pat != nil:
		return recording.SolidBrush{Color: withAlpha(meanColor(p.pat.img), alpha)}
	}
	return recording.SolidBrush{Color: withAlpha(p.color, alpha)}
}

// meanColor averages a coarse grid of samples.
func meanColor(img image.Image) gg.RGBA {
	b := img.Bounds()
	if b.Empty() {
		return gg.Transparent
	}
	const grid = 8
	var sum gg.RGBA
	n := 0.0
	for j := 0; j < grid; j++ {
		for i := 0; i < grid; i++ {
			x := b.Min.X + (2*i+1)*b.Dx()/(2*grid)
			y := b.Min.Y + (2*j+1)*b.Dy()/(2*grid)
			c := gg.FromColor(color.NRGBAModel.Convert(img.At(x, y)))
			sum.R += c.R
			sum.G += c.G
			sum.B += c.B
			sum.A += c.A
			n++
		}
	}
	return gg.RGBA2(sum.R/n, sum.G/n, sum.B/n, sum.A/n)
}

// basisMatrix converts engine basis [a, c, e, b, d, f] to gg's layout,
// which stores the same terms in the same order.
func basisMatrix(v [6]float64) gg.Matrix {
	return gg.Matrix{A: v[0], B: v[1], C: v[2], D: v[3], E: v[4], F: v[5]}
}

func basisOf(m gg.Matrix) []float64 {
	return []float64{m.A, m.B, m.C, m.D, m.E, m.F}
}
