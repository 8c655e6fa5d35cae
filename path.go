package canvas

import (
	"fmt"

	"github.com/gogpu/canvas/engine"
)

const pathFactory = "NewPath, PathFromSVG or Path.Clone"

// Rect is an axis-aligned rectangle.
type Rect = engine.Rect

// Path is a reusable vector path, drawable with Page.FillPath and friends.
//
// Boolean operations and Simplify never modify their operands; each returns
// a new Path.
type Path struct {
	resource
}

func newPath(eng engine.Engine, variant string, args ...any) (*Path, error) {
	eng, err := resolveEngine(eng)
	if err != nil {
		return nil, err
	}
	res, err := alloc(eng, engine.KindPath, variant, pathFactory, args...)
	if err != nil {
		return nil, err
	}
	return wrapPath(res), nil
}

func wrapPath(res resource) *Path {
	p := &Path{resource: res}
	track(p, p.resource)
	return p
}

// NewPath returns an empty path. A nil engine selects engine.Default.
func NewPath(eng engine.Engine) (*Path, error) {
	return newPath(eng, "new")
}

// PathFromSVG parses SVG path data such as "M0 0 L10 10 Z".
func PathFromSVG(eng engine.Engine, d string) (*Path, error) {
	return newPath(eng, "from_svg", d)
}

// Clone returns an independent copy of p.
func (p *Path) Clone() (*Path, error) {
	if !p.alive() {
		return nil, fmt.Errorf("%w (use %s instead)", ErrNotConstructor, pathFactory)
	}
	return newPath(p.eng, "from_path", p.handle())
}

func (p *Path) do(op engine.Op, args ...any) error {
	_, err := p.invoke(pathFactory, op, args...)
	return err
}

// MoveTo starts a subpath.
func (p *Path) MoveTo(x, y float64) error { return p.do(engine.OpMoveTo, x, y) }

// LineTo adds a line.
func (p *Path) LineTo(x, y float64) error { return p.do(engine.OpLineTo, x, y) }

// BezierCurveTo adds a cubic Bézier curve.
func (p *Path) BezierCurveTo(cp1x, cp1y, cp2x, cp2y, x, y float64) error {
	return p.do(engine.OpBezierCurveTo, cp1x, cp1y, cp2x, cp2y, x, y)
}

// QuadraticCurveTo adds a quadratic Bézier curve.
func (p *Path) QuadraticCurveTo(cpx, cpy, x, y float64) error {
	return p.do(engine.OpQuadraticCurveTo, cpx, cpy, x, y)
}

// Arc adds a circular arc.
func (p *Path) Arc(x, y, radius, startAngle, endAngle float64, ccw bool) error {
	if radius < 0 {
		return fmt.Errorf("%w: negative radius %g", ErrInvalidArgument, radius)
	}
	return p.do(engine.OpArc, x, y, radius, startAngle, endAngle, ccw)
}

// ArcTo adds an arc tangent to two lines.
func (p *Path) ArcTo(x1, y1, x2, y2, radius float64) error {
	if radius < 0 {
		return fmt.Errorf("%w: negative radius %g", ErrInvalidArgument, radius)
	}
	return p.do(engine.OpArcTo, x1, y1, x2, y2, radius)
}

// Ellipse adds an elliptical arc.
func (p *Path) Ellipse(x, y, rx, ry, rotation, startAngle, endAngle float64, ccw bool) error {
	if rx < 0 || ry < 0 {
		return fmt.Errorf("%w: negative radius", ErrInvalidArgument)
	}
	return p.do(engine.OpEllipse, x, y, rx, ry, rotation, startAngle, endAngle, ccw)
}

// Rect adds a rectangle.
func (p *Path) Rect(x, y, w, h float64) error { return p.do(engine.OpRect, x, y, w, h) }

// RoundRect adds a rounded rectangle.
func (p *Path) RoundRect(x, y, w, h float64, radii ...float64) error {
	r, err := cornerRadii(radii)
	if err != nil {
		return err
	}
	return p.do(engine.OpRoundRect, x, y, w, h, r)
}

// ClosePath closes the current subpath.
func (p *Path) ClosePath() error { return p.do(engine.OpClosePath) }

// AddPath appends other, transformed by m when m is non-nil.
func (p *Path) AddPath(other *Path, m *Matrix) error {
	if other == nil || !other.alive() {
		return fmt.Errorf("%w: addPath needs a live path", ErrInvalidArgument)
	}
	basis := ToEngineBasis(Identity())
	if m != nil {
		basis = ToEngineBasis(*m)
	}
	return p.do(engine.OpAddPath, other.handle(), basis)
}

// Bounds returns the tight bounding box.
func (p *Path) Bounds() (Rect, error) {
	return as[Rect](p.invoke(pathFactory, engine.OpBounds))
}

// Contains reports whether (x, y) is inside the path (non-zero rule).
func (p *Path) Contains(x, y float64) (bool, error) {
	return as[bool](p.invoke(pathFactory, engine.OpContains, x, y))
}

// SVG returns the path as SVG path data.
func (p *Path) SVG() (string, error) {
	return as[string](p.invoke(pathFactory, engine.OpSVG))
}

// op runs a boolean operation and wraps the handle the engine mints.
func (p *Path) op(other *Path, kind string) (*Path, error) {
	if other == nil || !other.alive() {
		return nil, fmt.Errorf("%w: %s needs a live path", ErrInvalidArgument, kind)
	}
	h, err := as[engine.Handle](p.invoke(pathFactory, engine.OpPathOp, other.handle(), kind))
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, fmt.Errorf("canvas: engine returned no path")
	}
	return wrapPath(rehydrate(p.eng, h)), nil
}

// Union returns the area covered by either path.
func (p *Path) Union(other *Path) (*Path, error) { return p.op(other, engine.PathUnion) }

// Intersect returns the area covered by both paths.
func (p *Path) Intersect(other *Path) (*Path, error) { return p.op(other, engine.PathIntersect) }

// Difference returns p minus other.
func (p *Path) Difference(other *Path) (*Path, error) { return p.op(other, engine.PathDifference) }

// Xor returns the area covered by exactly one path.
func (p *Path) Xor(other *Path) (*Path, error) { return p.op(other, engine.PathXor) }

// Complement returns other minus p.
func (p *Path) Complement(other *Path) (*Path, error) { return p.op(other, engine.PathComplement) }

// Simplify returns a copy with overlapping contours merged.
func (p *Path) Simplify() (*Path, error) {
	h, err := as[engine.Handle](p.invoke(pathFactory, engine.OpSimplify))
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, fmt.Errorf("canvas: engine returned no path")
	}
	return wrapPath(rehydrate(p.eng, h)), nil
}
