// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"
	tdcanvas "github.com/tdewolff/canvas"

	"github.com/gogpu/canvas/engine"
)

// parseSVGPath reads SVG path data into a user-space path.
func parseSVGPath(d string) (*gg.Path, error) {
	s, err := tdcanvas.ParseSVGPath(d)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid SVG path data: %v", ErrArgs, err)
	}
	return fromShape(s), nil
}

// combine applies a boolean path operation to two paths filled with the
// non-zero rule.
func combine(a, b *gg.Path, kind string) (*gg.Path, error) {
	sa, sb := toShape(a), toShape(b)
	var out *tdcanvas.Path
	switch kind {
	case engine.PathUnion:
		out = sa.Or(sb)
	case engine.PathIntersect:
		out = sa.And(sb)
	case engine.PathDifference:
		out = sa.Not(sb)
	case engine.PathXor:
		out = sa.Xor(sb)
	case engine.PathComplement:
		out = sb.Not(sa)
	default:
		return nil, fmt.Errorf("%w: path operation %q", ErrUnsupported, kind)
	}
	return fromShape(out), nil
}

// simplify removes self-intersections and overlapping subpaths, keeping
// the region p covers under the non-zero rule.
func simplify(p *gg.Path) *gg.Path {
	return fromShape(toShape(p).Settle(tdcanvas.NonZero))
}

// toShape converts p for the boolean operations.
func toShape(p *gg.Path) *tdcanvas.Path {
	out := &tdcanvas.Path{}
	p.Iterate(func(verb gg.PathVerb, c []float64) {
		switch verb {
		case gg.MoveTo:
			out.MoveTo(c[0], c[1])
		case gg.LineTo:
			out.LineTo(c[0], c[1])
		case gg.QuadTo:
			out.QuadTo(c[0], c[1], c[2], c[3])
		case gg.CubicTo:
			out.CubeTo(c[0], c[1], c[2], c[3], c[4], c[5])
		case gg.Close:
			out.Close()
		}
	})
	return out
}

// fromShape converts s back to a gg path. Elliptical arcs become cubic
// segments.
func fromShape(s *tdcanvas.Path) *gg.Path {
	b := newBuilder()
	m := gg.Identity()
	sc := s.Scanner()
	for sc.Scan() {
		end := sc.End()
		switch sc.Cmd() {
		case tdcanvas.MoveToCmd:
			b.moveTo(m, end.X, end.Y)
		case tdcanvas.LineToCmd:
			b.lineTo(m, end.X, end.Y)
		case tdcanvas.QuadToCmd:
			c := sc.CP1()
			b.quadTo(m, c.X, c.Y, end.X, end.Y)
		case tdcanvas.CubeToCmd:
			c1, c2 := sc.CP1(), sc.CP2()
			b.cubicTo(m, c1.X, c1.Y, c2.X, c2.Y, end.X, end.Y)
		case tdcanvas.ArcToCmd:
			start := sc.Start()
			rx, ry, rot, large, sweep := sc.Arc()
			b.ensure(m, start.X, start.Y)
			svgArc(b, gg.Pt(start.X, start.Y), gg.Pt(end.X, end.Y), rx, ry, rot, large, sweep)
		case tdcanvas.CloseCmd:
			b.closePath()
		}
	}
	return b.path
}

// svgArc converts an endpoint-parameterized elliptical arc to a center
// parameterization and appends it.
func svgArc(b *builder, p1, p2 gg.Point, rx, ry, deg float64, large, sweep bool) {
	m := gg.Identity()
	if p1 == p2 {
		return
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		b.lineTo(m, p2.X, p2.Y)
		return
	}
	phi := deg * math.Pi / 180
	cos, sin := math.Cos(phi), math.Sin(phi)
	hx, hy := (p1.X-p2.X)/2, (p1.Y-p2.Y)/2
	x1 := cos*hx + sin*hy
	y1 := -sin*hx + cos*hy
	if l := x1*x1/(rx*rx) + y1*y1/(ry*ry); l > 1 {
		rx *= math.Sqrt(l)
		ry *= math.Sqrt(l)
	}
	num := rx*rx*ry*ry - rx*rx*y1*y1 - ry*ry*x1*x1
	den := rx*rx*y1*y1 + ry*ry*x1*x1
	coef := math.Sqrt(math.Max(0, num/den))
	if large == sweep {
		coef = -coef
	}
	cxp, cyp := coef*rx*y1/ry, -coef*ry*x1/rx
	cx := cos*cxp - sin*cyp + (p1.X+p2.X)/2
	cy := sin*cxp + cos*cyp + (p1.Y+p2.Y)/2

	angle := func(ux, uy, vx, vy float64) float64 {
		return math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
	}
	t1 := angle(1, 0, (x1-cxp)/rx, (y1-cyp)/ry)
	dt := angle((x1-cxp)/rx, (y1-cyp)/ry, (-x1-cxp)/rx, (-y1-cyp)/ry)
	if !sweep && dt > 0 {
		dt -= 2 * math.Pi
	} else if sweep && dt < 0 {
		dt += 2 * math.Pi
	}
	b.ellipse(m, cx, cy, rx, ry, phi, t1, t1+dt, dt < 0)
	b.cur = p2
}
