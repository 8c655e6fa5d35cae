package canvas

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/canvas/engine"
	"github.com/gogpu/canvas/engine/enginetest"
)

func newTestWindow(t *testing.T, script func(engine.DispatchFunc, engine.AnimateFunc), opts ...WindowOption) (*Window, *enginetest.Display) {
	t.Helper()
	c, _ := newTestCanvas(t)
	d := &enginetest.Display{Script: script}
	w, err := NewWindow(0, 0, append([]WindowOption{WithCanvas(c), WithDisplay(d)}, opts...)...)
	if err != nil {
		t.Fatalf("NewWindow() = %v", err)
	}
	return w, d
}

func keydown(key string, mods gpucontext.Modifiers) engine.Payload {
	return engine.Payload{Key: &engine.Key{Event: "keydown", Key: key, Modifiers: mods}}
}

func TestWindowDefaults(t *testing.T) {
	w, _ := newTestWindow(t, nil)
	if w.Title() != "" || w.Background() != DefaultBackground || w.Cursor() != "default" || w.FPS() != 60 {
		t.Errorf("defaults: title %q, background %q, cursor %q, fps %v", w.Title(), w.Background(), w.Cursor(), w.FPS())
	}
	if w.Width() != 200 || w.Height() != 100 {
		t.Errorf("size = %dx%d, want the canvas size", w.Width(), w.Height())
	}
	if w.Page() != 1 {
		t.Errorf("Page() = %d, want 1", w.Page())
	}
}

func TestWindowSetterValidation(t *testing.T) {
	w, _ := newTestWindow(t, nil)
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"x nan", w.SetX(math.NaN()), "expected an integer"},
		{"width zero", w.SetWidth(0), "expected a positive integer"},
		{"height negative", w.SetHeight(-4), "expected a positive integer"},
		{"fps nan", w.SetFPS(math.NaN()), "expected a positive integer"},
		{"cursor", w.SetCursor("sparkles"), "invalid CSS cursor value"},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, ErrInvalidArgument) {
			t.Errorf("%s: err = %v, want ErrInvalidArgument", tt.name, tt.err)
			continue
		}
		if !strings.Contains(tt.err.Error(), tt.msg) {
			t.Errorf("%s: err = %q, want it to mention %q", tt.name, tt.err, tt.msg)
		}
	}

	if err := w.SetX(10.7); err != nil || w.X() != 10 {
		t.Errorf("SetX(10.7) = %v, X() = %d", err, w.X())
	}
	if err := w.SetCursor("pointer"); err != nil || w.Cursor() != "pointer" {
		t.Errorf("SetCursor(pointer) = %v", err)
	}
}

func TestWindowSetPage(t *testing.T) {
	w, _ := newTestWindow(t, nil)
	c := w.Canvas()
	for range 2 {
		if _, err := c.NewPage(); err != nil {
			t.Fatal(err)
		}
	}
	tests := []struct{ set, want int }{
		{1, 1},
		{3, 3},
		{4, 3},
		{-1, 3},
		{-3, 1},
		{-4, 1},
		{0, 1},
		{2, 2},
	}
	for _, tt := range tests {
		w.SetPage(tt.set)
		if w.Page() != tt.want {
			t.Errorf("SetPage(%d): Page() = %d, want %d", tt.set, w.Page(), tt.want)
		}
	}

	if err := w.SetCanvas(c); err != nil {
		t.Fatal(err)
	}
	if w.Page() != 3 {
		t.Errorf("SetCanvas reset page to %d, want 3", w.Page())
	}
}

func TestWindowDisplayLifecycle(t *testing.T) {
	var during engine.State
	w, d := newTestWindow(t, func(dispatch engine.DispatchFunc, _ engine.AnimateFunc) {
		during = dispatch(engine.Payload{})
	}, WithTitle("hello"), WithBackground("white"))

	if err := w.Display(); err != nil {
		t.Fatalf("Display() = %v", err)
	}
	if !during.Active || during.Title != "hello" {
		t.Errorf("state during display = %+v", during)
	}
	if during.Page != w.Ctx().handle() {
		t.Error("state page is not the displayed page")
	}
	if d.Background != "white" || d.Page != w.Ctx().handle() {
		t.Errorf("display got background %q page %v", d.Background, d.Page)
	}
	if w.Active() {
		t.Error("window still active after Display returned")
	}
}

func TestWindowBackgroundLockedWhileOpen(t *testing.T) {
	var err error
	var w *Window
	w, _ = newTestWindow(t, func(engine.DispatchFunc, engine.AnimateFunc) {
		err = w.SetBackground("red")
	})
	if e := w.Display(); e != nil {
		t.Fatal(e)
	}
	if !errors.Is(err, ErrWindowActive) {
		t.Errorf("SetBackground while open = %v, want ErrWindowActive", err)
	}
	if e := w.SetBackground("red"); e != nil {
		t.Errorf("SetBackground after close = %v", e)
	}
}

func TestWindowDisplayReentry(t *testing.T) {
	var w *Window
	var inner error
	w, d := newTestWindow(t, func(engine.DispatchFunc, engine.AnimateFunc) {
		inner = w.Display()
	})
	if err := w.Display(); err != nil {
		t.Fatal(err)
	}
	if inner != nil || d.Opened != 1 {
		t.Errorf("nested Display() = %v, opened %d times", inner, d.Opened)
	}
}

func TestWindowDisplayConcurrent(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	w, d := newTestWindow(t, func(engine.DispatchFunc, engine.AnimateFunc) {
		close(started)
		<-release
	})
	done := make(chan error, 1)
	go func() { done <- w.Display() }()
	<-started
	if err := w.Display(); err != nil {
		t.Errorf("second Display() = %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if d.Opened != 1 {
		t.Errorf("display opened %d times, want 1", d.Opened)
	}
}

func TestWindowDisplayWithoutHost(t *testing.T) {
	c, _ := newTestCanvas(t)
	w, err := NewWindow(0, 0, WithCanvas(c))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Display(); !errors.Is(err, engine.ErrNotAvailable) {
		t.Fatalf("Display() = %v, want ErrNotAvailable", err)
	}
	if w.Active() {
		t.Error("window left active after the host lookup failed")
	}
}

func TestDefaultKeyBindings(t *testing.T) {
	tests := []struct {
		name       string
		payload    engine.Payload
		fullscreen bool
		prevent    bool
		active     bool
		wantFull   bool
	}{
		{"ctrl-c closes", keydown("c", gpucontext.ModControl), false, false, false, false},
		{"ctrl-c prevented", keydown("c", gpucontext.ModControl), false, true, true, false},
		{"meta-q closes", keydown("q", gpucontext.ModSuper), false, false, false, false},
		{"meta-w closes", keydown("W", gpucontext.ModSuper), false, false, false, false},
		{"plain q ignored", keydown("q", 0), false, false, true, false},
		{"escape leaves fullscreen", keydown("Escape", 0), true, false, true, false},
		{"escape closes", keydown("Escape", 0), false, false, false, false},
		{"meta-f toggles", keydown("f", gpucontext.ModSuper), false, false, true, true},
		{"meta-f toggles back", keydown("f", gpucontext.ModSuper), true, false, true, false},
		{"keyup ignored", engine.Payload{Key: &engine.Key{Event: "keyup", Key: "Escape"}}, false, false, true, false},
		{"repeat ignored", engine.Payload{Key: &engine.Key{Event: "keydown", Key: "Escape", Repeat: true}}, false, false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got engine.State
			w, _ := newTestWindow(t, func(dispatch engine.DispatchFunc, _ engine.AnimateFunc) {
				got = dispatch(tt.payload)
			}, WithFullscreen(tt.fullscreen))
			var seen int
			w.OnKey(func(e *KeyEvent) {
				seen++
				if tt.prevent {
					e.PreventDefault()
				}
			})
			if err := w.Display(); err != nil {
				t.Fatal(err)
			}
			if seen != 1 {
				t.Errorf("key listener ran %d times", seen)
			}
			if got.Active != tt.active || got.Fullscreen != tt.wantFull {
				t.Errorf("state = active %v fullscreen %v, want %v %v", got.Active, got.Fullscreen, tt.active, tt.wantFull)
			}
		})
	}
}

func TestWindowDispatchEvents(t *testing.T) {
	full := true
	var got engine.State
	w, _ := newTestWindow(t, func(dispatch engine.DispatchFunc, _ engine.AnimateFunc) {
		got = dispatch(engine.Payload{
			Position:   &engine.Position{X: 5, Y: 6},
			Size:       &engine.Size{Width: 320, Height: 240},
			Fullscreen: &full,
			Input:      &engine.Input{Char: 'é', Modifiers: gpucontext.ModShift},
			Mouse: &engine.Mouse{
				Events: []string{"mousedown", "mouseup", "click"},
				X:      1.5, Y: 2.5,
				Button: gpucontext.ButtonLeft,
			},
			Wheel: &engine.Wheel{DeltaX: 1, DeltaY: -3},
		})
	})

	var kinds []EventKind
	record := func(e Event) { kinds = append(kinds, e.Kind()) }
	for _, k := range []EventKind{EventMove, EventResize, EventFullscreen, EventInput, EventMouseDown, EventMouseUp, EventClick, EventWheel} {
		w.On(k, record)
	}
	var input InputEvent
	w.On(EventInput, func(e Event) { input = e.(InputEvent) })
	var wheel WheelEvent
	w.On(EventWheel, func(e Event) { wheel = e.(WheelEvent) })

	if err := w.Display(); err != nil {
		t.Fatal(err)
	}

	want := []EventKind{EventMove, EventResize, EventFullscreen, EventInput, EventMouseDown, EventMouseUp, EventClick, EventWheel}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, kinds[i], want[i])
		}
	}
	if input.Data != "é" || input.CodePoint != 'é' || !input.Shift {
		t.Errorf("input = %+v", input)
	}
	if wheel.DeltaY != -3 || wheel.DeltaZ != 0 {
		t.Errorf("wheel = %+v", wheel)
	}
	if got.X != 5 || got.Y != 6 || got.Width != 320 || got.Height != 240 || !got.Fullscreen {
		t.Errorf("state = %+v", got)
	}
	if w.Width() != 320 || !w.Fullscreen() {
		t.Error("dispatch did not update the window")
	}
}

func TestWindowAnimate(t *testing.T) {
	var states []engine.FrameState
	w, _ := newTestWindow(t, func(_ engine.DispatchFunc, animate engine.AnimateFunc) {
		for range 3 {
			states = append(states, animate())
		}
	})
	var frames []int
	w.OnFrame(func(e FrameEvent) {
		frames = append(frames, e.Frame)
		if e.Frame == 2 {
			w.Close()
		}
	})

	if err := w.Display(); err != nil {
		t.Fatal(err)
	}
	if len(frames) != 3 || frames[0] != 0 || frames[2] != 2 {
		t.Errorf("frames = %v, want 0 1 2", frames)
	}
	if w.Frame() != 3 {
		t.Errorf("Frame() = %d, want 3", w.Frame())
	}
	if states[0].FPS != 60 || !states[0].Active {
		t.Errorf("first frame state = %+v, want looping at 60fps", states[0])
	}
	if states[2].Active {
		t.Error("Close from a frame listener did not deactivate the window")
	}
}

func TestWindowLoopDerivation(t *testing.T) {
	var fps float64
	script := func(dispatch engine.DispatchFunc, _ engine.AnimateFunc) {
		fps = dispatch(engine.Payload{}).FPS
	}

	w, _ := newTestWindow(t, script)
	if err := w.Display(); err != nil {
		t.Fatal(err)
	}
	if fps != 0 {
		t.Errorf("FPS without frame listeners = %v, want 0", fps)
	}

	w, _ = newTestWindow(t, script, WithFPS(24))
	w.Loop(true)
	if err := w.Display(); err != nil {
		t.Fatal(err)
	}
	if fps != 24 {
		t.Errorf("FPS with Loop(true) = %v, want 24", fps)
	}

	w, _ = newTestWindow(t, script)
	w.OnFrame(func(FrameEvent) {})
	w.Loop(false)
	if err := w.Display(); err != nil {
		t.Fatal(err)
	}
	if fps != 0 {
		t.Errorf("FPS with Loop(false) = %v, want 0", fps)
	}
}

func TestWindowListenerOff(t *testing.T) {
	w, _ := newTestWindow(t, nil)
	off := w.On(EventMove, func(Event) {})
	w.On(EventMove, func(Event) {})
	if n := w.ListenerCount(EventMove); n != 2 {
		t.Fatalf("ListenerCount = %d", n)
	}
	off()
	off()
	if n := w.ListenerCount(EventMove); n != 1 {
		t.Errorf("ListenerCount after off = %d, want 1", n)
	}
}

func TestWindowDisplayError(t *testing.T) {
	boom := errors.New("no screen")
	c, _ := newTestCanvas(t)
	w, err := NewWindow(0, 0, WithCanvas(c), WithDisplay(&enginetest.Display{Err: boom}))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Display(); !errors.Is(err, boom) {
		t.Errorf("Display() = %v, want the display error", err)
	}
	if w.Active() {
		t.Error("window active after a failed Display")
	}
}

func TestCursorShape(t *testing.T) {
	if s, ok := CursorShape("ew-resize"); !ok || s != gpucontext.CursorResizeEW {
		t.Errorf("CursorShape(ew-resize) = %v, %v", s, ok)
	}
	if _, ok := CursorShape("bogus"); ok {
		t.Error("CursorShape accepted an unknown keyword")
	}
}
