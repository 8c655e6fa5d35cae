package canvas

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/canvas/engine"
	"github.com/gogpu/canvas/engine/enginetest"
)

func newTestCanvas(t *testing.T, opts ...Option) (*Canvas, *enginetest.Engine) {
	t.Helper()
	eng := enginetest.New()
	c, err := New(200, 100, append([]Option{WithEngine(eng)}, opts...)...)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	return c, eng
}

func TestNewCanvas(t *testing.T) {
	c, eng := newTestCanvas(t)

	hs := eng.Handles()
	if len(hs) != 2 {
		t.Fatalf("allocated %d handles, want canvas + page", len(hs))
	}
	if hs[0].Kind != engine.KindCanvas || hs[0].Args[0] != 200 || hs[0].Args[1] != 100 {
		t.Errorf("canvas handle = %+v", hs[0])
	}
	if hs[1].Kind != engine.KindContext || hs[1].Args[0] != engine.Handle(hs[0]) {
		t.Errorf("page handle = %+v, want it bound to the canvas", hs[1])
	}
	if c.PageCount() != 1 {
		t.Errorf("PageCount() = %d, want 1", c.PageCount())
	}
}

func TestNewCanvasSanitizesSize(t *testing.T) {
	tests := []struct {
		name   string
		w, h   float64
		ww, wh int
	}{
		{"nan", math.NaN(), math.NaN(), 300, 150},
		{"negative", -1, -20, 300, 150},
		{"infinite", math.Inf(1), 10, 300, 10},
		{"fractional", 10.9, 20.2, 10, 20},
		{"zero", 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.w, tt.h, WithEngine(enginetest.New()))
			if err != nil {
				t.Fatalf("New() = %v", err)
			}
			if c.Width() != tt.ww || c.Height() != tt.wh {
				t.Errorf("size = %dx%d, want %dx%d", c.Width(), c.Height(), tt.ww, tt.wh)
			}
		})
	}
}

func TestCanvasPages(t *testing.T) {
	c, _ := newTestCanvas(t)
	first, err := c.GetContext("2d")
	if err != nil {
		t.Fatalf("GetContext() = %v", err)
	}
	second, err := c.NewPage()
	if err != nil {
		t.Fatalf("NewPage() = %v", err)
	}

	pages := c.Pages()
	if len(pages) != 2 || pages[0] != first || pages[1] != second {
		t.Fatalf("Pages() = %v, want oldest first", pages)
	}
	if cur, _ := c.GetContext("2d"); cur != second {
		t.Error("GetContext() did not return the newest page")
	}
	if first.Canvas() != c || second.Canvas() != c {
		t.Error("Page.Canvas() did not resolve to the owner")
	}

	if _, err := c.GetContext("webgl"); !errors.Is(err, ErrUnsupportedContext) {
		t.Errorf("GetContext(webgl) = %v, want ErrUnsupportedContext", err)
	}
}

func TestCanvasResizeResetsCurrentPage(t *testing.T) {
	c, eng := newTestCanvas(t)
	if err := c.SetWidth(640); err != nil {
		t.Fatalf("SetWidth() = %v", err)
	}
	calls := eng.Calls(engine.OpResetSize)
	if len(calls) != 1 {
		t.Fatalf("ResetSize calls = %d, want 1", len(calls))
	}
	if calls[0].Args[0] != 640 || calls[0].Args[1] != 100 {
		t.Errorf("ResetSize args = %v, want the stored size", calls[0].Args)
	}

	p, err := c.NewPage(30, 40)
	if err != nil {
		t.Fatalf("NewPage() = %v", err)
	}
	calls = eng.Calls(engine.OpResetSize)
	last := calls[len(calls)-1]
	if last.Handle != p.handle() || last.Args[0] != 30 || last.Args[1] != 40 {
		t.Errorf("NewPage(30, 40) reset = %+v", last)
	}
}

func TestCanvasCloseReleasesOnce(t *testing.T) {
	c, eng := newTestCanvas(t)
	if _, err := c.NewPage(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close() = %v", err)
	}
	for _, h := range eng.Handles() {
		if h.Released() != 1 {
			t.Errorf("handle %d (%s) released %d times, want 1", h.ID, h.Kind, h.Released())
		}
	}
	if _, err := c.NewPage(); !errors.Is(err, ErrClosed) {
		t.Errorf("NewPage() after Close = %v, want ErrClosed", err)
	}
	if _, err := c.PNG(); !errors.Is(err, ErrClosed) {
		t.Errorf("PNG() after Close = %v, want ErrClosed", err)
	}
}

func TestAllocFailureNamesFactory(t *testing.T) {
	eng := enginetest.New()
	eng.AllocErr = map[engine.Kind]error{engine.KindCanvas: engine.ErrUnknownVariant}
	_, err := New(10, 10, WithEngine(eng))
	if !errors.Is(err, ErrNotConstructor) || !errors.Is(err, engine.ErrUnknownVariant) {
		t.Errorf("New() = %v, want ErrNotConstructor wrapping the engine error", err)
	}
}
