package canvas

import (
	"fmt"
	"math"

	"github.com/gogpu/canvas/engine"
)

// FillRule selects how path interiors are computed.
type FillRule string

// Fill rules.
const (
	NonZero FillRule = "nonzero"
	EvenOdd FillRule = "evenodd"
)

func ruleOf(rule []FillRule) string {
	if len(rule) == 0 || rule[0] == "" {
		return string(NonZero)
	}
	return string(rule[0])
}

// pathArg converts an optional *Path to the engine argument: its handle, or
// nil for the page's current path.
func pathArg(path *Path) (any, error) {
	if path == nil {
		return nil, nil
	}
	if !path.alive() {
		return nil, fmt.Errorf("%w (use %s instead)", ErrNotConstructor, pathFactory)
	}
	return path.handle(), nil
}

// BeginPath starts a new current path.
func (p *Page) BeginPath() error { return p.do(engine.OpBeginPath) }

// MoveTo starts a subpath at (x, y).
func (p *Page) MoveTo(x, y float64) error { return p.do(engine.OpMoveTo, x, y) }

// LineTo adds a line to (x, y).
func (p *Page) LineTo(x, y float64) error { return p.do(engine.OpLineTo, x, y) }

// BezierCurveTo adds a cubic Bézier curve.
func (p *Page) BezierCurveTo(cp1x, cp1y, cp2x, cp2y, x, y float64) error {
	return p.do(engine.OpBezierCurveTo, cp1x, cp1y, cp2x, cp2y, x, y)
}

// QuadraticCurveTo adds a quadratic Bézier curve.
func (p *Page) QuadraticCurveTo(cpx, cpy, x, y float64) error {
	return p.do(engine.OpQuadraticCurveTo, cpx, cpy, x, y)
}

// Arc adds a circular arc. Angles are in radians.
func (p *Page) Arc(x, y, radius, startAngle, endAngle float64, ccw bool) error {
	if radius < 0 {
		return fmt.Errorf("%w: negative radius %g", ErrInvalidArgument, radius)
	}
	return p.do(engine.OpArc, x, y, radius, startAngle, endAngle, ccw)
}

// ArcTo adds an arc tangent to two lines.
func (p *Page) ArcTo(x1, y1, x2, y2, radius float64) error {
	if radius < 0 {
		return fmt.Errorf("%w: negative radius %g", ErrInvalidArgument, radius)
	}
	return p.do(engine.OpArcTo, x1, y1, x2, y2, radius)
}

// Ellipse adds an elliptical arc.
func (p *Page) Ellipse(x, y, rx, ry, rotation, startAngle, endAngle float64, ccw bool) error {
	if rx < 0 || ry < 0 {
		return fmt.Errorf("%w: negative radius", ErrInvalidArgument)
	}
	return p.do(engine.OpEllipse, x, y, rx, ry, rotation, startAngle, endAngle, ccw)
}

// Rect adds a closed rectangle subpath.
func (p *Page) Rect(x, y, w, h float64) error { return p.do(engine.OpRect, x, y, w, h) }

// RoundRect adds a rounded rectangle. radii holds 1 to 4 corner radii in
// CSS order; none means square corners.
func (p *Page) RoundRect(x, y, w, h float64, radii ...float64) error {
	r, err := cornerRadii(radii)
	if err != nil {
		return err
	}
	return p.do(engine.OpRoundRect, x, y, w, h, r)
}

// cornerRadii expands CSS shorthand to [top-left, top-right, bottom-right,
// bottom-left].
func cornerRadii(radii []float64) ([4]float64, error) {
	for _, r := range radii {
		if r < 0 || math.IsNaN(r) {
			return [4]float64{}, fmt.Errorf("%w: corner radius %g", ErrInvalidArgument, r)
		}
	}
	switch len(radii) {
	case 0:
		return [4]float64{}, nil
	case 1:
		return [4]float64{radii[0], radii[0], radii[0], radii[0]}, nil
	case 2:
		return [4]float64{radii[0], radii[1], radii[0], radii[1]}, nil
	case 3:
		return [4]float64{radii[0], radii[1], radii[2], radii[1]}, nil
	case 4:
		return [4]float64{radii[0], radii[1], radii[2], radii[3]}, nil
	default:
		return [4]float64{}, fmt.Errorf("%w: %d corner radii", ErrInvalidArgument, len(radii))
	}
}

// ClosePath closes the current subpath.
func (p *Page) ClosePath() error { return p.do(engine.OpClosePath) }

// Fill fills the current path.
func (p *Page) Fill(rule ...FillRule) error {
	return p.do(engine.OpFill, nil, ruleOf(rule))
}

// FillPath fills path without touching the current path.
func (p *Page) FillPath(path *Path, rule ...FillRule) error {
	a, err := pathArg(path)
	if err != nil {
		return err
	}
	return p.do(engine.OpFill, a, ruleOf(rule))
}

// Stroke strokes the current path.
func (p *Page) Stroke() error { return p.do(engine.OpStroke, nil) }

// StrokePath strokes path without touching the current path.
func (p *Page) StrokePath(path *Path) error {
	a, err := pathArg(path)
	if err != nil {
		return err
	}
	return p.do(engine.OpStroke, a)
}

// Clip intersects the clip region with the current path.
func (p *Page) Clip(rule ...FillRule) error {
	return p.do(engine.OpClip, nil, ruleOf(rule))
}

// ClipPath intersects the clip region with path.
func (p *Page) ClipPath(path *Path, rule ...FillRule) error {
	a, err := pathArg(path)
	if err != nil {
		return err
	}
	return p.do(engine.OpClip, a, ruleOf(rule))
}

// IsPointInPath reports whether (x, y) is inside path, or inside the current
// path when path is nil.
func (p *Page) IsPointInPath(path *Path, x, y float64, rule ...FillRule) (bool, error) {
	a, err := pathArg(path)
	if err != nil {
		return false, err
	}
	return as[bool](p.call(engine.OpIsPointInPath, a, x, y, ruleOf(rule)))
}

// IsPointInStroke reports whether (x, y) is on the stroke of path, or of the
// current path when path is nil.
func (p *Page) IsPointInStroke(path *Path, x, y float64) (bool, error) {
	a, err := pathArg(path)
	if err != nil {
		return false, err
	}
	return as[bool](p.call(engine.OpIsPointInStroke, a, x, y))
}

// FillRect fills a rectangle.
func (p *Page) FillRect(x, y, w, h float64) error { return p.do(engine.OpFillRect, x, y, w, h) }

// StrokeRect strokes a rectangle.
func (p *Page) StrokeRect(x, y, w, h float64) error {
	return p.do(engine.OpStrokeRect, x, y, w, h)
}

// ClearRect erases a rectangle to transparent black.
func (p *Page) ClearRect(x, y, w, h float64) error {
	return p.do(engine.OpClearRect, x, y, w, h)
}

func maxWidthArg(maxWidth []float64) float64 {
	if len(maxWidth) == 0 || maxWidth[0] <= 0 || math.IsNaN(maxWidth[0]) {
		return 0
	}
	return maxWidth[0]
}

// FillText draws text at (x, y). An optional maxWidth condenses the text to
// fit.
func (p *Page) FillText(text string, x, y float64, maxWidth ...float64) error {
	return p.do(engine.OpFillText, text, x, y, maxWidthArg(maxWidth))
}

// StrokeText outlines text at (x, y).
func (p *Page) StrokeText(text string, x, y float64, maxWidth ...float64) error {
	return p.do(engine.OpStrokeText, text, x, y, maxWidthArg(maxWidth))
}

// TextMetrics describes measured text. See engine.TextMetrics.
type TextMetrics = engine.TextMetrics

// TextLine is one line of measured text.
type TextLine = engine.TextLine

// MeasureText measures text in the current font.
func (p *Page) MeasureText(text string, maxWidth ...float64) (TextMetrics, error) {
	return as[TextMetrics](p.call(engine.OpMeasureText, text, maxWidthArg(maxWidth)))
}

// ImageSource is anything that can be drawn by DrawImage or used in a
// pattern: *Image, *Canvas (its current page) and *Page.
type ImageSource interface {
	imageHandle() (engine.Handle, error)
}

// DrawImage draws src. coords takes one of the DOM forms:
//
//	dx, dy
//	dx, dy, dw, dh
//	sx, sy, sw, sh, dx, dy, dw, dh
func (p *Page) DrawImage(src ImageSource, coords ...float64) error {
	switch len(coords) {
	case 2, 4, 8:
	default:
		return fmt.Errorf("%w: drawImage takes 2, 4 or 8 coordinates, got %d", ErrInvalidArgument, len(coords))
	}
	if src == nil {
		return fmt.Errorf("%w: nil image source", ErrInvalidArgument)
	}
	h, err := src.imageHandle()
	if err != nil {
		return err
	}
	return p.do(engine.OpDrawImage, h, coords)
}

// DrawCanvas draws the current page of c with the same coordinate forms
// as DrawImage.
func (p *Page) DrawCanvas(c *Canvas, coords ...float64) error {
	if c == nil {
		return fmt.Errorf("%w: nil canvas", ErrInvalidArgument)
	}
	return p.DrawImage(c, coords...)
}

// CreateImageData returns blank pixels the size of the given rectangle.
func (p *Page) CreateImageData(w, h int) (*ImageData, error) {
	return NewImageData(w, h)
}

// GetImageData copies pixels out of the page.
func (p *Page) GetImageData(x, y float64, w, h int) (*ImageData, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArgument, imageDataDims)
	}
	px, err := as[engine.Pixels](p.call(engine.OpGetImageData, x, y, float64(w), float64(h)))
	if err != nil {
		return nil, err
	}
	return &ImageData{Width: px.Width, Height: px.Height, Data: px.Data, ColorSpace: "srgb"}, nil
}

// PutImageData copies pixels into the page at (dx, dy). An optional dirty
// rectangle (x, y, w, h) limits the copied region.
func (p *Page) PutImageData(img *ImageData, dx, dy float64, dirty ...float64) error {
	if img == nil {
		return fmt.Errorf("%w: nil image data", ErrInvalidArgument)
	}
	if len(dirty) != 0 && len(dirty) != 4 {
		return fmt.Errorf("%w: dirty rectangle needs 4 values", ErrInvalidArgument)
	}
	px := engine.Pixels{Width: img.Width, Height: img.Height, Data: img.Data}
	return p.do(engine.OpPutImageData, px, dx, dy, dirty)
}
