// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/gogpu/canvas/engine"
)

// builder appends canvas path commands to a gg.Path, mapping every point
// through m. Pages build in device space with m set to the current
// transform; standalone paths build with the identity.
type builder struct {
	path *gg.Path

	// Current point and subpath start, in the user space of the command
	// that set them.
	cur, start gg.Point
	has        bool
}

func newBuilder() *builder {
	return &builder{path: gg.NewPath()}
}

func (b *builder) reset() {
	b.path = gg.NewPath()
	b.has = false
}

func (b *builder) moveTo(m gg.Matrix, x, y float64) {
	p := m.TransformPoint(gg.Pt(x, y))
	b.path.MoveTo(p.X, p.Y)
	b.cur, b.start, b.has = gg.Pt(x, y), gg.Pt(x, y), true
}

// ensure starts a subpath at (x, y) when there is no current point.
func (b *builder) ensure(m gg.Matrix, x, y float64) {
	if !b.has {
		b.moveTo(m, x, y)
	}
}

func (b *builder) lineTo(m gg.Matrix, x, y float64) {
	if !b.has {
		b.moveTo(m, x, y)
		return
	}
	p := m.TransformPoint(gg.Pt(x, y))
	b.path.LineTo(p.X, p.Y)
	b.cur = gg.Pt(x, y)
}

func (b *builder) quadTo(m gg.Matrix, cx, cy, x, y float64) {
	b.ensure(m, cx, cy)
	c := m.TransformPoint(gg.Pt(cx, cy))
	p := m.TransformPoint(gg.Pt(x, y))
	b.path.QuadraticTo(c.X, c.Y, p.X, p.Y)
	b.cur = gg.Pt(x, y)
}

func (b *builder) cubicTo(m gg.Matrix, c1x, c1y, c2x, c2y, x, y float64) {
	b.ensure(m, c1x, c1y)
	c1 := m.TransformPoint(gg.Pt(c1x, c1y))
	c2 := m.TransformPoint(gg.Pt(c2x, c2y))
	p := m.TransformPoint(gg.Pt(x, y))
	b.path.CubicTo(c1.X, c1.Y, c2.X, c2.Y, p.X, p.Y)
	b.cur = gg.Pt(x, y)
}

func (b *builder) closePath() {
	if !b.has {
		return
	}
	b.path.Close()
	b.cur = b.start
}

func (b *builder) rect(m gg.Matrix, x, y, w, h float64) {
	b.moveTo(m, x, y)
	b.lineTo(m, x+w, y)
	b.lineTo(m, x+w, y+h)
	b.lineTo(m, x, y+h)
	b.closePath()
	b.moveTo(m, x, y)
}

// ellipse appends an elliptical arc. Angles follow the canvas convention:
// radians, clockwise in a y-down space unless ccw is set.
func (b *builder) ellipse(m gg.Matrix, cx, cy, rx, ry, rot, a0, a1 float64, ccw bool) {
	if rx < 0 || ry < 0 {
		return
	}
	sweep := arcSweep(a0, a1, ccw)

	// The arc lives in its own frame: translate, rotate, scale to radii.
	local := gg.Translate(cx, cy).Multiply(gg.Rotate(rot)).Multiply(gg.Scale(rx, ry))
	em := m.Multiply(local)
	startUser := local.TransformPoint(gg.Pt(math.Cos(a0), math.Sin(a0)))
	if b.has {
		b.lineTo(m, startUser.X, startUser.Y)
	} else {
		b.moveTo(m, startUser.X, startUser.Y)
	}
	if sweep == 0 {
		return
	}

	n := int(math.Ceil(math.Abs(sweep) / (math.Pi / 2)))
	step := sweep / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4)
	a := a0
	for i := 0; i < n; i++ {
		cos0, sin0 := math.Cos(a), math.Sin(a)
		cos1, sin1 := math.Cos(a+step), math.Sin(a+step)
		c1 := em.TransformPoint(gg.Pt(cos0-k*sin0, sin0+k*cos0))
		c2 := em.TransformPoint(gg.Pt(cos1+k*sin1, sin1-k*cos1))
		p := em.TransformPoint(gg.Pt(cos1, sin1))
		b.path.CubicTo(c1.X, c1.Y, c2.X, c2.Y, p.X, p.Y)
		a += step
	}
	b.cur = local.TransformPoint(gg.Pt(math.Cos(a0+sweep), math.Sin(a0+sweep)))
}

// arcSweep returns the signed sweep from a0 to a1, clamped to one turn.
func arcSweep(a0, a1 float64, ccw bool) float64 {
	const tau = 2 * math.Pi
	d := a1 - a0
	if !ccw {
		if d >= tau {
			return tau
		}
		d = math.Mod(d, tau)
		if d < 0 {
			d += tau
		}
		return d
	}
	if -d >= tau {
		return -tau
	}
	d = math.Mod(d, tau)
	if d > 0 {
		d -= tau
	}
	return d
}

// arcTo appends a line and a circular arc tangent to the lines from the
// current point through (x1, y1) to (x2, y2).
func (b *builder) arcTo(m gg.Matrix, x1, y1, x2, y2, r float64) {
	if r < 0 {
		return
	}
	if !b.has {
		b.moveTo(m, x1, y1)
	}
	p0 := b.cur
	d1x, d1y := p0.X-x1, p0.Y-y1
	d2x, d2y := x2-x1, y2-y1
	l1, l2 := math.Hypot(d1x, d1y), math.Hypot(d2x, d2y)
	cross := d1x*d2y - d1y*d2x
	if r == 0 || l1 == 0 || l2 == 0 || math.Abs(cross) < 1e-9 {
		b.lineTo(m, x1, y1)
		return
	}
	cosT := (d1x*d2x + d1y*d2y) / (l1 * l2)
	theta := math.Acos(math.Max(-1, math.Min(1, cosT)))
	dist := r / math.Tan(theta/2)
	t1 := gg.Pt(x1+d1x/l1*dist, y1+d1y/l1*dist)
	t2 := gg.Pt(x1+d2x/l2*dist, y1+d2y/l2*dist)

	// The center sits on the bisector, r away from both tangent points.
	nx, ny := -d1y/l1, d1x/l1
	if nx*d2x+ny*d2y < 0 {
		nx, ny = -nx, -ny
	}
	c := gg.Pt(t1.X+nx*r, t1.Y+ny*r)
	a0 := math.Atan2(t1.Y-c.Y, t1.X-c.X)
	a1 := math.Atan2(t2.Y-c.Y, t2.X-c.X)
	b.lineTo(m, t1.X, t1.Y)
	b.ellipse(m, c.X, c.Y, r, r, 0, a0, a1, cross > 0)
}

// roundRect appends a rounded rectangle. radii are CSS-ordered corner
// radii, scaled down together when adjacent corners would overlap.
func (b *builder) roundRect(m gg.Matrix, x, y, w, h float64, radii [4]float64) {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	tl, tr, br, bl := radii[0], radii[1], radii[2], radii[3]
	scale := 1.0
	for _, pair := range [][3]float64{{tl, tr, w}, {bl, br, w}, {tl, bl, h}, {tr, br, h}} {
		if s := pair[0] + pair[1]; s > pair[2] && s > 0 {
			scale = math.Min(scale, pair[2]/s)
		}
	}
	tl, tr, br, bl = tl*scale, tr*scale, br*scale, bl*scale

	const q = math.Pi / 2
	b.moveTo(m, x+tl, y)
	b.lineTo(m, x+w-tr, y)
	b.ellipse(m, x+w-tr, y+tr, tr, tr, 0, -q, 0, false)
	b.lineTo(m, x+w, y+h-br)
	b.ellipse(m, x+w-br, y+h-br, br, br, 0, 0, q, false)
	b.lineTo(m, x+bl, y+h)
	b.ellipse(m, x+bl, y+h-bl, bl, bl, 0, q, 2*q, false)
	b.lineTo(m, x, y+tl)
	b.ellipse(m, x+tl, y+tl, tl, tl, 0, 2*q, 3*q, false)
	b.closePath()
	b.moveTo(m, x, y)
}

// build runs one path construction op. It reports false for ops that do not
// build paths.
func (b *builder) build(m gg.Matrix, op engine.Op, a *args) (bool, error) {
	switch op {
	case engine.OpMoveTo:
		x, y := a.float(), a.float()
		if a.err == nil {
			b.moveTo(m, x, y)
		}
	case engine.OpLineTo:
		x, y := a.float(), a.float()
		if a.err == nil {
			b.lineTo(m, x, y)
		}
	case engine.OpBezierCurveTo:
		c1x, c1y, c2x, c2y, x, y := a.float(), a.float(), a.float(), a.float(), a.float(), a.float()
		if a.err == nil {
			b.cubicTo(m, c1x, c1y, c2x, c2y, x, y)
		}
	case engine.OpQuadraticCurveTo:
		cx, cy, x, y := a.float(), a.float(), a.float(), a.float()
		if a.err == nil {
			b.quadTo(m, cx, cy, x, y)
		}
	case engine.OpArc:
		x, y, r, a0, a1 := a.float(), a.float(), a.float(), a.float(), a.float()
		ccw := a.bool()
		if a.err == nil {
			b.ellipse(m, x, y, r, r, 0, a0, a1, ccw)
		}
	case engine.OpArcTo:
		x1, y1, x2, y2, r := a.float(), a.float(), a.float(), a.float(), a.float()
		if a.err == nil {
			b.arcTo(m, x1, y1, x2, y2, r)
		}
	case engine.OpEllipse:
		x, y, rx, ry, rot, a0, a1 := a.float(), a.float(), a.float(), a.float(), a.float(), a.float(), a.float()
		ccw := a.bool()
		if a.err == nil {
			b.ellipse(m, x, y, rx, ry, rot, a0, a1, ccw)
		}
	case engine.OpRect:
		x, y, w, h := a.float(), a.float(), a.float(), a.float()
		if a.err == nil {
			b.rect(m, x, y, w, h)
		}
	case engine.OpRoundRect:
		x, y, w, h := a.float(), a.float(), a.float(), a.float()
		var radii [4]float64
		switch v := a.any().(type) {
		case [4]float64:
			radii = v
		case []float64:
			copy(radii[:], v)
		case nil:
		default:
			a.fail(v, "[4]float64")
		}
		if a.err == nil {
			b.roundRect(m, x, y, w, h, radii)
		}
	case engine.OpClosePath:
		b.closePath()
	default:
		return false, nil
	}
	return true, a.err
}

// scaleFactor is the mean linear scale of m, used to map user-space lengths
// such as line widths to device space.
func scaleFactor(m gg.Matrix) float64 {
	return math.Sqrt(math.Abs(m.A*m.E - m.B*m.D))
}

// pathSink receives path commands. gg.Context and recording.Recorder both
// satisfy it.
type pathSink interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadraticTo(cx, cy, x, y float64)
	CubicTo(c1x, c1y, c2x, c2y, x, y float64)
	ClosePath()
}

// emit replays p into dst.
func emit(dst pathSink, p *gg.Path) {
	p.Iterate(func(verb gg.PathVerb, c []float64) {
		switch verb {
		case gg.MoveTo:
			dst.MoveTo(c[0], c[1])
		case gg.LineTo:
			dst.LineTo(c[0], c[1])
		case gg.QuadTo:
			dst.QuadraticTo(c[0], c[1], c[2], c[3])
		case gg.CubicTo:
			dst.CubicTo(c[0], c[1], c[2], c[3], c[4], c[5])
		case gg.Close:
			dst.ClosePath()
		}
	})
}

// appendPath adds the elements of src to dst, mapped through m.
func appendPath(dst, src *gg.Path, m gg.Matrix) {
	emit(&transformSink{p: dst, m: m}, src)
}

type transformSink struct {
	p *gg.Path
	m gg.Matrix
}

func (s *transformSink) pt(x, y float64) gg.Point { return s.m.TransformPoint(gg.Pt(x, y)) }

func (s *transformSink) MoveTo(x, y float64) {
	p := s.pt(x, y)
	s.p.MoveTo(p.X, p.Y)
}

func (s *transformSink) LineTo(x, y float64) {
	p := s.pt(x, y)
	s.p.LineTo(p.X, p.Y)
}

func (s *transformSink) QuadraticTo(cx, cy, x, y float64) {
	c, p := s.pt(cx, cy), s.pt(x, y)
	s.p.QuadraticTo(c.X, c.Y, p.X, p.Y)
}

func (s *transformSink) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	c1, c2, p := s.pt(c1x, c1y), s.pt(c2x, c2y), s.pt(x, y)
	s.p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, p.X, p.Y)
}

func (s *transformSink) ClosePath() { s.p.Close() }

// polylines flattens p into one point list per subpath. Closed subpaths
// repeat their first point at the end.
func polylines(p *gg.Path) [][]gg.Point {
	const steps = 16
	var (
		out        [][]gg.Point
		cur        []gg.Point
		last, from gg.Point
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, cur)
		}
		cur = nil
	}
	p.Iterate(func(verb gg.PathVerb, c []float64) {
		if verb != gg.MoveTo && verb != gg.Close && cur == nil {
			cur = []gg.Point{last}
		}
		switch verb {
		case gg.MoveTo:
			flush()
			last = gg.Pt(c[0], c[1])
			from = last
			cur = []gg.Point{last}
		case gg.LineTo:
			last = gg.Pt(c[0], c[1])
			cur = append(cur, last)
		case gg.QuadTo:
			for i := 1; i <= steps; i++ {
				t := float64(i) / steps
				u := 1 - t
				cur = append(cur, gg.Pt(
					u*u*last.X+2*u*t*c[0]+t*t*c[2],
					u*u*last.Y+2*u*t*c[1]+t*t*c[3]))
			}
			last = gg.Pt(c[2], c[3])
		case gg.CubicTo:
			for i := 1; i <= steps; i++ {
				t := float64(i) / steps
				u := 1 - t
				a, b, cc, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
				cur = append(cur, gg.Pt(
					a*last.X+b*c[0]+cc*c[2]+d*c[4],
					a*last.Y+b*c[1]+cc*c[3]+d*c[5]))
			}
			last = gg.Pt(c[4], c[5])
		case gg.Close:
			if cur != nil {
				cur = append(cur, from)
			}
			flush()
			last = from
		}
	})
	flush()
	return out
}

// nearStroke reports whether pt lies within half of width of any segment
// of p.
func nearStroke(p *gg.Path, pt gg.Point, width float64) bool {
	r := width / 2
	for _, line := range polylines(p) {
		if len(line) == 1 && math.Hypot(pt.X-line[0].X, pt.Y-line[0].Y) <= r {
			return true
		}
		for i := 1; i < len(line); i++ {
			if segmentDist(pt, line[i-1], line[i]) <= r {
				return true
			}
		}
	}
	return false
}

func segmentDist(p, a, b gg.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := math.Max(0, math.Min(1, ((p.X-a.X)*dx+(p.Y-a.Y)*dy)/l2))
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}

// insidePath applies a fill rule to the winding number of pt.
func insidePath(p *gg.Path, pt gg.Point, rule gg.FillRule) bool {
	w := p.Winding(pt)
	if rule == gg.FillRuleEvenOdd {
		return w%2 != 0
	}
	return w != 0
}
