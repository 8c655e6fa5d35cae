package canvas

import (
	"fmt"

	"github.com/gogpu/canvas/engine"
)

const pageFactory = "Canvas.GetContext"

// Page is one drawing surface of a Canvas, with an HTML Canvas 2D style API.
//
// Pages are created by Canvas.GetContext and Canvas.NewPage only. A Page
// built any other way returns ErrNotConstructor from every method.
//
// A Page is not safe for concurrent use.
type Page struct {
	resource

	owner *Canvas
	index int

	// The engine keeps only the paint a shader produces. These keep the
	// Gradient or Pattern (and the handle it owns) alive while in use.
	fillShader   Style
	strokeShader Style
}

func (p *Page) call(op engine.Op, args ...any) (any, error) {
	return p.invoke(pageFactory, op, args...)
}

func (p *Page) do(op engine.Op, args ...any) error {
	_, err := p.invoke(pageFactory, op, args...)
	return err
}

// Canvas returns the canvas that owns the page.
func (p *Page) Canvas() *Canvas {
	if p.owner == nil {
		return nil
	}
	if p.owner.pageAt(p.index) != p {
		return nil
	}
	return p.owner
}

// ResetSize discards the page's drawing state and resizes its surface to the
// canvas's current dimensions.
func (p *Page) ResetSize() error {
	c := p.Canvas()
	if c == nil {
		return fmt.Errorf("%w (use %s instead)", ErrNotConstructor, pageFactory)
	}
	return p.do(engine.OpResetSize, c.Width(), c.Height())
}

// imageHandle lets a page be drawn into another page.
func (p *Page) imageHandle() (engine.Handle, error) {
	if !p.alive() {
		return nil, ErrClosed
	}
	return p.handle(), nil
}

// Style is a fill or stroke paint: a Color, *Gradient or *Pattern.
type Style interface {
	paint() (any, error)
}

// Color is a CSS color string, such as "red", "#ff000080" or
// "rgba(255, 0, 0, 0.5)".
type Color string

func (c Color) paint() (any, error) { return string(c), nil }

// SetFillStyle sets the fill paint.
func (p *Page) SetFillStyle(s Style) error {
	return p.setStyle("fillStyle", s, &p.fillShader)
}

// FillStyle returns the fill paint.
func (p *Page) FillStyle() (Style, error) {
	return p.getStyle("fillStyle", p.fillShader)
}

// SetStrokeStyle sets the stroke paint.
func (p *Page) SetStrokeStyle(s Style) error {
	return p.setStyle("strokeStyle", s, &p.strokeShader)
}

// StrokeStyle returns the stroke paint.
func (p *Page) StrokeStyle() (Style, error) {
	return p.getStyle("strokeStyle", p.strokeShader)
}

func (p *Page) setStyle(prop string, s Style, cache *Style) error {
	if s == nil {
		return fmt.Errorf("%w: nil %s", ErrInvalidArgument, prop)
	}
	v, err := s.paint()
	if err != nil {
		return err
	}
	if err := p.do(engine.OpSet, prop, v); err != nil {
		return err
	}
	if _, ok := s.(Color); ok {
		*cache = nil
	} else {
		*cache = s
	}
	return nil
}

// getStyle reports the engine's color, or the cached shader when the engine
// holds a non-color paint.
func (p *Page) getStyle(prop string, cached Style) (Style, error) {
	v, err := p.call(engine.OpGet, prop)
	if err != nil {
		return nil, err
	}
	if s, ok := v.(string); ok {
		return Color(s), nil
	}
	return cached, nil
}

// Save pushes the drawing state.
func (p *Page) Save() error { return p.do(engine.OpSave) }

// Restore pops the drawing state.
func (p *Page) Restore() error { return p.do(engine.OpRestore) }

// Reset clears the page and restores the default drawing state.
func (p *Page) Reset() error {
	if err := p.do(engine.OpReset); err != nil {
		return err
	}
	p.fillShader, p.strokeShader = nil, nil
	return nil
}

// Transform multiplies the current transform by m.
func (p *Page) Transform(m Matrix) error {
	return p.do(engine.OpTransform, ToEngineBasis(m))
}

// SetTransform replaces the current transform.
func (p *Page) SetTransform(m Matrix) error {
	return p.do(engine.OpSetTransform, ToEngineBasis(m))
}

// GetTransform returns the current transform.
func (p *Page) GetTransform() (Matrix, error) {
	v, err := as[[]float64](p.call(engine.OpGetTransform))
	if err != nil {
		return Matrix{}, err
	}
	if len(v) < 6 {
		return Identity(), nil
	}
	return FromEngineBasis(v), nil
}

// ResetTransform sets the identity transform.
func (p *Page) ResetTransform() error { return p.do(engine.OpResetTransform) }

// Translate moves the origin.
func (p *Page) Translate(x, y float64) error { return p.do(engine.OpTranslate, x, y) }

// Scale scales the axes.
func (p *Page) Scale(x, y float64) error { return p.do(engine.OpScale, x, y) }

// Rotate rotates by angle radians.
func (p *Page) Rotate(angle float64) error { return p.do(engine.OpRotate, angle) }

// CreateLinearGradient returns a gradient along the line (x0,y0)-(x1,y1).
func (p *Page) CreateLinearGradient(x0, y0, x1, y1 float64) (*Gradient, error) {
	return newGradient(p.eng, "linear", x0, y0, x1, y1)
}

// CreateRadialGradient returns a gradient between two circles.
func (p *Page) CreateRadialGradient(x0, y0, r0, x1, y1, r1 float64) (*Gradient, error) {
	return newGradient(p.eng, "radial", x0, y0, r0, x1, y1, r1)
}

// CreateConicGradient returns a sweep gradient around (x, y) starting at
// startAngle radians.
func (p *Page) CreateConicGradient(startAngle, x, y float64) (*Gradient, error) {
	return newGradient(p.eng, "conic", startAngle, x, y)
}

// CreatePattern returns a pattern repeating src. repetition is "repeat",
// "repeat-x", "repeat-y" or "no-repeat"; "" means "repeat".
func (p *Page) CreatePattern(src ImageSource, repetition string) (*Pattern, error) {
	if p.box == nil {
		return nil, fmt.Errorf("%w (use %s instead)", ErrNotConstructor, pageFactory)
	}
	return newPattern(p.eng, src, repetition)
}
