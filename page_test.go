package canvas

import (
	"errors"
	"testing"

	"github.com/gogpu/canvas/engine"
	"github.com/gogpu/canvas/engine/enginetest"
)

func newTestPage(t *testing.T) (*Page, *enginetest.Engine) {
	t.Helper()
	c, eng := newTestCanvas(t)
	p, err := c.GetContext("2d")
	if err != nil {
		t.Fatalf("GetContext() = %v", err)
	}
	return p, eng
}

func TestZeroPageIsNotConstructed(t *testing.T) {
	var p Page
	if err := p.FillRect(0, 0, 1, 1); !errors.Is(err, ErrNotConstructor) {
		t.Errorf("FillRect on zero Page = %v, want ErrNotConstructor", err)
	}
	if _, err := p.GetTransform(); !errors.Is(err, ErrNotConstructor) {
		t.Errorf("GetTransform on zero Page = %v, want ErrNotConstructor", err)
	}
	if _, err := p.CreateLinearGradient(0, 0, 1, 1); !errors.Is(err, ErrNotConstructor) {
		t.Errorf("CreateLinearGradient on zero Page = %v, want ErrNotConstructor", err)
	}
}

func TestPageTransformUsesEngineBasis(t *testing.T) {
	p, eng := newTestPage(t)
	m := Matrix{A: 1, B: 2, C: 3, D: 4, E: 5, F: 6}
	if err := p.SetTransform(m); err != nil {
		t.Fatalf("SetTransform() = %v", err)
	}
	calls := eng.Calls(engine.OpSetTransform)
	if got := calls[0].Args[0]; got != [6]float64{1, 3, 5, 2, 4, 6} {
		t.Errorf("engine received %v", got)
	}
	got, err := p.GetTransform()
	if err != nil {
		t.Fatalf("GetTransform() = %v", err)
	}
	if got != m {
		t.Errorf("GetTransform() = %+v, want %+v", got, m)
	}

	if err := p.ResetTransform(); err != nil {
		t.Fatal(err)
	}
	if got, _ := p.GetTransform(); !got.IsIdentity() {
		t.Errorf("GetTransform() after reset = %+v", got)
	}
}

func TestPageStyleCache(t *testing.T) {
	p, _ := newTestPage(t)

	g, err := p.CreateLinearGradient(0, 0, 10, 0)
	if err != nil {
		t.Fatalf("CreateLinearGradient() = %v", err)
	}
	if err := p.SetFillStyle(g); err != nil {
		t.Fatalf("SetFillStyle(gradient) = %v", err)
	}
	if s, _ := p.FillStyle(); s != Style(g) {
		t.Errorf("FillStyle() = %v, want the gradient", s)
	}

	if err := p.SetFillStyle(Color("red")); err != nil {
		t.Fatal(err)
	}
	if s, _ := p.FillStyle(); s != Style(Color("red")) {
		t.Errorf("FillStyle() = %v, want red", s)
	}
	if p.fillShader != nil {
		t.Error("setting a color did not drop the cached shader")
	}

	if err := p.SetStrokeStyle(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetStrokeStyle(nil) = %v", err)
	}
}

func TestGradientColorStop(t *testing.T) {
	p, eng := newTestPage(t)
	g, err := p.CreateRadialGradient(0, 0, 1, 0, 0, 10)
	if err != nil {
		t.Fatalf("CreateRadialGradient() = %v", err)
	}
	if g.Kind() != "radial" {
		t.Errorf("Kind() = %q", g.Kind())
	}

	for _, off := range []float64{-0.1, 1.5} {
		if err := g.AddColorStop(off, "red"); !errors.Is(err, ErrColorStop) {
			t.Errorf("AddColorStop(%g) = %v, want ErrColorStop", off, err)
		}
	}
	if err := g.AddColorStop(0.5, "blue"); err != nil {
		t.Fatalf("AddColorStop(0.5) = %v", err)
	}
	calls := eng.Calls(engine.OpAddColorStop)
	if len(calls) != 1 || calls[0].Args[0] != 0.5 || calls[0].Args[1] != "blue" {
		t.Errorf("color stop calls = %+v", calls)
	}
}

func TestPatternVariants(t *testing.T) {
	p, eng := newTestPage(t)
	img, err := NewImage(eng)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.CreatePattern(img, ""); err != nil {
		t.Fatalf("CreatePattern(image) = %v", err)
	}
	if _, err := p.CreatePattern(p.Canvas(), "repeat-x"); err != nil {
		t.Fatalf("CreatePattern(canvas) = %v", err)
	}
	if _, err := p.CreatePattern(img, "diagonal"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("CreatePattern(diagonal) = %v", err)
	}

	var variants []string
	for _, h := range eng.Handles() {
		if h.Kind == engine.KindPattern {
			variants = append(variants, h.Variant+"/"+h.Args[1].(string))
		}
	}
	if len(variants) != 2 || variants[0] != "from_image/repeat" || variants[1] != "from_canvas/repeat-x" {
		t.Errorf("pattern allocations = %v", variants)
	}
}

func TestPageDrawArguments(t *testing.T) {
	p, eng := newTestPage(t)

	if err := p.DrawImage(p.Canvas(), 1, 2, 3); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("DrawImage with 3 coords = %v", err)
	}
	if err := p.DrawImage(p.Canvas(), 1, 2); err != nil {
		t.Errorf("DrawImage() = %v", err)
	}
	if err := p.DrawCanvas(p.Canvas(), 0, 0, 4, 4); err != nil {
		t.Errorf("DrawCanvas() = %v", err)
	}
	if err := p.DrawCanvas(nil, 0, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("DrawCanvas(nil) = %v", err)
	}
	if err := p.RoundRect(0, 0, 10, 10, -1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("RoundRect with negative radius = %v", err)
	}
	if err := p.SetLineDash(1, 2, 3); err != nil {
		t.Fatal(err)
	}
	dash, _ := p.LineDash()
	if len(dash) != 6 {
		t.Errorf("LineDash() = %v, want the odd pattern repeated", dash)
	}
	if err := p.SetLineWidth(-3); err != nil {
		t.Fatal(err)
	}
	if _, ok := eng.Handles()[1].Prop("lineWidth"); ok {
		t.Error("negative line width reached the engine")
	}

	m, err := p.MeasureText("abc")
	if err != nil || m.Width != 30 {
		t.Errorf("MeasureText() = %+v, %v", m, err)
	}

	data, err := p.GetImageData(0, 0, 2, 3)
	if err != nil {
		t.Fatalf("GetImageData() = %v", err)
	}
	if data.Width != 2 || data.Height != 3 || len(data.Data) != 24 {
		t.Errorf("GetImageData() = %dx%d (%d bytes)", data.Width, data.Height, len(data.Data))
	}
	if err := p.PutImageData(data, 0, 0, 1, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("PutImageData with 2 dirty values = %v", err)
	}
}

func TestImageData(t *testing.T) {
	if _, err := NewImageData(0, 5); err == nil {
		t.Error("NewImageData(0, 5) succeeded")
	}
	d, err := ImageDataFrom(make([]byte, 32), 2, 0)
	if err != nil {
		t.Fatalf("ImageDataFrom() = %v", err)
	}
	if d.Height != 4 {
		t.Errorf("derived height = %d, want 4", d.Height)
	}
	if _, err := ImageDataFrom(make([]byte, 30), 2, 0); err == nil {
		t.Error("ImageDataFrom accepted a short buffer")
	}
}
