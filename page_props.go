package canvas

import (
	"fmt"
	"math"

	"github.com/gogpu/canvas/engine"
)

// Property forwarding. Values are validated by the engine, which ignores
// unsupported values as browsers do.

func getProp[T any](p *Page, name string) (T, error) {
	return as[T](p.call(engine.OpGet, name))
}

func (p *Page) setProp(name string, v any) error {
	return p.do(engine.OpSet, name, v)
}

func (p *Page) setFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return p.setProp(name, v)
}

// GlobalAlpha returns the opacity applied to all drawing.
func (p *Page) GlobalAlpha() (float64, error) { return getProp[float64](p, "globalAlpha") }

// SetGlobalAlpha sets the opacity applied to all drawing, 0 to 1.
func (p *Page) SetGlobalAlpha(a float64) error {
	if a < 0 || a > 1 {
		return nil
	}
	return p.setFinite("globalAlpha", a)
}

// GlobalCompositeOperation returns the blend mode.
func (p *Page) GlobalCompositeOperation() (string, error) {
	return getProp[string](p, "globalCompositeOperation")
}

// SetGlobalCompositeOperation sets the blend mode, e.g. "source-over" or
// "multiply".
func (p *Page) SetGlobalCompositeOperation(op string) error {
	return p.setProp("globalCompositeOperation", op)
}

// LineWidth returns the stroke width.
func (p *Page) LineWidth() (float64, error) { return getProp[float64](p, "lineWidth") }

// SetLineWidth sets the stroke width. Non-positive values are ignored.
func (p *Page) SetLineWidth(w float64) error {
	if w <= 0 {
		return nil
	}
	return p.setFinite("lineWidth", w)
}

// LineCap returns "butt", "round" or "square".
func (p *Page) LineCap() (string, error) { return getProp[string](p, "lineCap") }

// SetLineCap sets the line cap.
func (p *Page) SetLineCap(v string) error { return p.setProp("lineCap", v) }

// LineJoin returns "miter", "round" or "bevel".
func (p *Page) LineJoin() (string, error) { return getProp[string](p, "lineJoin") }

// SetLineJoin sets the line join.
func (p *Page) SetLineJoin(v string) error { return p.setProp("lineJoin", v) }

// MiterLimit returns the miter limit.
func (p *Page) MiterLimit() (float64, error) { return getProp[float64](p, "miterLimit") }

// SetMiterLimit sets the miter limit. Non-positive values are ignored.
func (p *Page) SetMiterLimit(v float64) error {
	if v <= 0 {
		return nil
	}
	return p.setFinite("miterLimit", v)
}

// LineDash returns the dash pattern.
func (p *Page) LineDash() ([]float64, error) { return getProp[[]float64](p, "lineDash") }

// SetLineDash sets the dash pattern. A pattern with a negative or non-finite
// entry is ignored; an odd-length pattern is repeated to even length.
func (p *Page) SetLineDash(segments ...float64) error {
	for _, s := range segments {
		if s < 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return nil
		}
	}
	dash := append([]float64(nil), segments...)
	if len(dash)%2 == 1 {
		dash = append(dash, segments...)
	}
	return p.setProp("lineDash", dash)
}

// LineDashOffset returns the dash phase.
func (p *Page) LineDashOffset() (float64, error) { return getProp[float64](p, "lineDashOffset") }

// SetLineDashOffset sets the dash phase.
func (p *Page) SetLineDashOffset(v float64) error { return p.setFinite("lineDashOffset", v) }

// Font returns the CSS font shorthand.
func (p *Page) Font() (string, error) { return getProp[string](p, "font") }

// SetFont sets the font from CSS shorthand, e.g. "bold 16px Inter".
func (p *Page) SetFont(font string) error { return p.setProp("font", font) }

// TextAlign returns the horizontal text anchor.
func (p *Page) TextAlign() (string, error) { return getProp[string](p, "textAlign") }

// SetTextAlign sets "start", "end", "left", "right" or "center".
func (p *Page) SetTextAlign(v string) error { return p.setProp("textAlign", v) }

// TextBaseline returns the vertical text anchor.
func (p *Page) TextBaseline() (string, error) { return getProp[string](p, "textBaseline") }

// SetTextBaseline sets "alphabetic", "top", "hanging", "middle",
// "ideographic" or "bottom".
func (p *Page) SetTextBaseline(v string) error { return p.setProp("textBaseline", v) }

// Direction returns the text direction.
func (p *Page) Direction() (string, error) { return getProp[string](p, "direction") }

// SetDirection sets "ltr", "rtl" or "inherit".
func (p *Page) SetDirection(v string) error { return p.setProp("direction", v) }

// ShadowBlur returns the shadow blur radius.
func (p *Page) ShadowBlur() (float64, error) { return getProp[float64](p, "shadowBlur") }

// SetShadowBlur sets the shadow blur radius. Negative values are ignored.
func (p *Page) SetShadowBlur(v float64) error {
	if v < 0 {
		return nil
	}
	return p.setFinite("shadowBlur", v)
}

// ShadowColor returns the shadow color.
func (p *Page) ShadowColor() (Color, error) {
	s, err := getProp[string](p, "shadowColor")
	return Color(s), err
}

// SetShadowColor sets the shadow color.
func (p *Page) SetShadowColor(c Color) error { return p.setProp("shadowColor", string(c)) }

// ShadowOffset returns the shadow offset.
func (p *Page) ShadowOffset() (x, y float64, err error) {
	if x, err = getProp[float64](p, "shadowOffsetX"); err != nil {
		return 0, 0, err
	}
	y, err = getProp[float64](p, "shadowOffsetY")
	return x, y, err
}

// SetShadowOffset sets the shadow offset.
func (p *Page) SetShadowOffset(x, y float64) error {
	if err := p.setFinite("shadowOffsetX", x); err != nil {
		return err
	}
	return p.setFinite("shadowOffsetY", y)
}

// ImageSmoothingEnabled reports whether scaled images are filtered.
func (p *Page) ImageSmoothingEnabled() (bool, error) {
	return getProp[bool](p, "imageSmoothingEnabled")
}

// SetImageSmoothingEnabled toggles scaled image filtering.
func (p *Page) SetImageSmoothingEnabled(v bool) error {
	return p.setProp("imageSmoothingEnabled", v)
}

// Filter returns the CSS filter string.
func (p *Page) Filter() (string, error) { return getProp[string](p, "filter") }

// SetFilter sets a CSS filter string such as "blur(4px)".
func (p *Page) SetFilter(v string) error { return p.setProp("filter", v) }

// String identifies the page by its position in the canvas.
func (p *Page) String() string {
	if c := p.Canvas(); c != nil {
		return fmt.Sprintf("Page(%d of %d)", p.index+1, c.PageCount())
	}
	return "Page(detached)"
}
