package canvas

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/gogpu/canvas/engine"
)

// Window defaults.
const (
	DefaultBackground = "rgba(16,16,16,0.75)"
	DefaultCursor     = "default"
	DefaultFPS        = 60
)

// WindowOption configures a Window during creation.
type WindowOption func(*Window) error

// WithCanvas displays c instead of a new canvas.
func WithCanvas(c *Canvas) WindowOption {
	return func(w *Window) error { return w.SetCanvas(c) }
}

// WithTitle sets the title bar text.
func WithTitle(title string) WindowOption {
	return func(w *Window) error { w.SetTitle(title); return nil }
}

// WithPosition places the window's top-left corner.
func WithPosition(x, y float64) WindowOption {
	return func(w *Window) error {
		if err := w.SetX(x); err != nil {
			return err
		}
		return w.SetY(y)
	}
}

// WithFullscreen opens the window in full screen.
func WithFullscreen(on bool) WindowOption {
	return func(w *Window) error { w.SetFullscreen(on); return nil }
}

// WithBackground sets the color painted behind the page.
func WithBackground(color string) WindowOption {
	return func(w *Window) error { return w.SetBackground(color) }
}

// WithFPS sets the animation rate.
func WithFPS(fps float64) WindowOption {
	return func(w *Window) error { return w.SetFPS(fps) }
}

// WithCursor sets the CSS cursor keyword.
func WithCursor(css string) WindowOption {
	return func(w *Window) error { return w.SetCursor(css) }
}

// WithPage selects the displayed page. See [Window.SetPage].
func WithPage(page int) WindowOption {
	return func(w *Window) error { w.initPage = &page; return nil }
}

// WithDisplay sets the native display. Without it the window uses
// engine.DefaultDisplay for the canvas engine.
func WithDisplay(d engine.Display) WindowOption {
	return func(w *Window) error { w.display = d; return nil }
}

// Window shows one page of a canvas in a native window and delivers input
// events to registered listeners.
//
// Display blocks the calling goroutine until the window closes. Listeners
// run on that goroutine and may call any Window or Canvas method.
type Window struct {
	mu sync.Mutex

	canvas     *Canvas
	page       int
	title      string
	x, y       int
	width      int
	height     int
	fullscreen bool
	background string
	cursor     string
	fps        float64
	loop       *bool
	looping    bool
	frame      int
	active     bool
	display    engine.Display
	initPage   *int

	events emitter
}

// NewWindow creates a window of width x height. Without WithCanvas a new
// canvas of the same size is created with the default engine. A zero or
// invalid size falls back to the canvas size.
func NewWindow(width, height float64, opts ...WindowOption) (*Window, error) {
	w := &Window{
		background: DefaultBackground,
		cursor:     DefaultCursor,
		fps:        DefaultFPS,
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	if w.canvas == nil {
		c, err := New(width, height)
		if err != nil {
			return nil, err
		}
		if err := w.SetCanvas(c); err != nil {
			return nil, err
		}
	}
	w.width = sanitizeSize(width, w.canvas.Width())
	w.height = sanitizeSize(height, w.canvas.Height())
	if w.width == 0 {
		w.width = w.canvas.Width()
	}
	if w.height == 0 {
		w.height = w.canvas.Height()
	}
	if w.initPage != nil {
		w.SetPage(*w.initPage)
	}
	return w, nil
}

// On registers fn for kind and returns a function that removes it.
func (w *Window) On(kind EventKind, fn func(Event)) (off func()) {
	return w.events.on(kind, fn)
}

// OnKey registers fn for keydown and keyup events.
func (w *Window) OnKey(fn func(*KeyEvent)) (off func()) {
	h := func(e Event) { fn(e.(*KeyEvent)) }
	offDown := w.events.on(EventKeyDown, h)
	offUp := w.events.on(EventKeyUp, h)
	return func() { offDown(); offUp() }
}

// OnFrame registers fn for animation frames.
func (w *Window) OnFrame(fn func(FrameEvent)) (off func()) {
	return w.events.on(EventFrame, func(e Event) { fn(e.(FrameEvent)) })
}

// ListenerCount returns the number of listeners for kind.
func (w *Window) ListenerCount(kind EventKind) int {
	return w.events.count(kind)
}

// Canvas returns the displayed canvas.
func (w *Window) Canvas() *Canvas {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canvas
}

// SetCanvas displays c starting at its newest page.
func (w *Window) SetCanvas(c *Canvas) error {
	if c == nil {
		return fmt.Errorf("%w: nil canvas", ErrInvalidArgument)
	}
	w.mu.Lock()
	w.canvas = c
	w.page = c.PageCount()
	w.mu.Unlock()
	return nil
}

// Ctx returns the displayed page.
func (w *Window) Ctx() *Page {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.currentPage()
}

func (w *Window) currentPage() *Page {
	if w.canvas == nil {
		return nil
	}
	return w.canvas.pageAt(w.page - 1)
}

// Page returns the displayed page number, 1-based.
func (w *Window) Page() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.page
}

// SetPage selects the displayed page. Negative numbers count back from the
// newest page. Numbers that do not name a page are ignored.
func (w *Window) SetPage(page int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.canvas == nil {
		return
	}
	n := w.canvas.PageCount()
	if page < 0 {
		page += n + 1
	}
	if page >= 1 && page <= n {
		w.page = page
	}
}

// Title returns the title bar text.
func (w *Window) Title() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.title
}

// SetTitle sets the title bar text.
func (w *Window) SetTitle(title string) {
	w.mu.Lock()
	w.title = title
	w.mu.Unlock()
}

func integer(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: expected an integer (got %g)", ErrInvalidArgument, v)
	}
	return int(math.Floor(v)), nil
}

func positiveInteger(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Floor(v) < 1 {
		return 0, fmt.Errorf("%w: expected a positive integer (got %g)", ErrInvalidArgument, v)
	}
	return int(math.Floor(v)), nil
}

// X returns the window's left edge.
func (w *Window) X() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.x
}

// SetX moves the window horizontally. v is floored.
func (w *Window) SetX(v float64) error {
	x, err := integer(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.x = x
	w.mu.Unlock()
	return nil
}

// Y returns the window's top edge.
func (w *Window) Y() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.y
}

// SetY moves the window vertically. v is floored.
func (w *Window) SetY(v float64) error {
	y, err := integer(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.y = y
	w.mu.Unlock()
	return nil
}

// Width returns the window content width.
func (w *Window) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

// SetWidth resizes the window. v is floored and must be at least 1.
func (w *Window) SetWidth(v float64) error {
	n, err := positiveInteger(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.width = n
	w.mu.Unlock()
	return nil
}

// Height returns the window content height.
func (w *Window) Height() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.height
}

// SetHeight resizes the window. v is floored and must be at least 1.
func (w *Window) SetHeight(v float64) error {
	n, err := positiveInteger(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.height = n
	w.mu.Unlock()
	return nil
}

// FPS returns the animation rate.
func (w *Window) FPS() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fps
}

// SetFPS sets the animation rate. v is floored and must be at least 1.
func (w *Window) SetFPS(v float64) error {
	n, err := positiveInteger(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.fps = float64(n)
	w.mu.Unlock()
	return nil
}

// Fullscreen reports whether the window fills the screen.
func (w *Window) Fullscreen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fullscreen
}

// SetFullscreen enters or leaves full screen.
func (w *Window) SetFullscreen(on bool) {
	w.mu.Lock()
	w.fullscreen = on
	w.mu.Unlock()
}

// Cursor returns the CSS cursor keyword.
func (w *Window) Cursor() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cursor
}

// SetCursor sets the pointer shape from a CSS cursor keyword.
func (w *Window) SetCursor(css string) error {
	if _, ok := CursorShape(css); !ok {
		return fmt.Errorf("%w: invalid CSS cursor value %q", ErrInvalidArgument, css)
	}
	w.mu.Lock()
	w.cursor = css
	w.mu.Unlock()
	return nil
}

// Background returns the color painted behind the page.
func (w *Window) Background() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.background
}

// SetBackground sets the color painted behind the page. It fails while the
// window is open.
func (w *Window) SetBackground(color string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active {
		return fmt.Errorf("%w: background cannot be changed while the window is open", ErrWindowActive)
	}
	w.background = color
	return nil
}

// Loop forces continuous animation on or off. Without it the window
// animates when it has frame listeners at the time Display is called.
func (w *Window) Loop(on bool) *Window {
	w.mu.Lock()
	w.loop = &on
	w.mu.Unlock()
	return w
}

// Frame returns the number of frames animated so far.
func (w *Window) Frame() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frame
}

// Active reports whether the window is open.
func (w *Window) Active() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// Close asks the open window to close after the current batch of events.
func (w *Window) Close() {
	w.mu.Lock()
	w.active = false
	w.mu.Unlock()
}

// Display opens the window and blocks until it closes. It returns
// immediately if the window is already open.
func (w *Window) Display() error {
	w.mu.Lock()
	if w.active {
		w.mu.Unlock()
		return nil
	}
	if w.loop != nil {
		w.looping = *w.loop
	} else {
		w.looping = w.events.count(EventFrame) > 0
	}
	disp := w.display
	c := w.canvas
	p := w.currentPage()
	bg := w.background
	title := w.title
	if p != nil {
		w.active = true
	}
	w.mu.Unlock()

	if p == nil {
		return fmt.Errorf("%w: window has no page", ErrInvalidArgument)
	}
	if disp == nil {
		var err error
		if disp, err = engine.DefaultDisplay(c.Engine()); err != nil {
			w.mu.Lock()
			w.active = false
			w.mu.Unlock()
			return err
		}
	}

	log := Logger().With("title", title)
	log.Info("canvas: window opened")
	err := disp.Display(p.handle(), bg, w.dispatch, w.animate)

	w.mu.Lock()
	w.active = false
	frames := w.frame
	w.mu.Unlock()
	if err != nil {
		log.Warn("canvas: window failed", "err", err)
		return err
	}
	log.Info("canvas: window closed", "frames", frames)
	return nil
}

// dispatch applies one batch of native events and returns the state the
// host should show next. Listeners run without the lock held.
func (w *Window) dispatch(p engine.Payload) engine.State {
	if p.Position != nil {
		w.mu.Lock()
		w.x, w.y = p.Position.X, p.Position.Y
		w.mu.Unlock()
		w.events.emit(MoveEvent{X: p.Position.X, Y: p.Position.Y})
	}
	if p.Size != nil {
		w.mu.Lock()
		w.width, w.height = p.Size.Width, p.Size.Height
		w.mu.Unlock()
		w.events.emit(ResizeEvent{Width: p.Size.Width, Height: p.Size.Height})
	}
	if p.Fullscreen != nil {
		w.SetFullscreen(*p.Fullscreen)
		w.events.emit(FullscreenEvent{Fullscreen: *p.Fullscreen})
	}
	if p.Input != nil {
		w.events.emit(InputEvent{
			Data:      string(p.Input.Char),
			CodePoint: p.Input.Char,
			Modifiers: modifiersOf(p.Input.Modifiers),
		})
	}
	if p.Key != nil {
		ev := &KeyEvent{
			Type:      EventKind(p.Key.Event),
			Key:       p.Key.Key,
			Code:      p.Key.Code,
			Repeat:    p.Key.Repeat,
			Modifiers: modifiersOf(p.Key.Modifiers),
		}
		w.events.emit(ev)
		if ev.Type == EventKeyDown && !ev.Repeat && !ev.prevented {
			w.keyDefaults(ev)
		}
	}
	if p.Mouse != nil {
		for _, name := range p.Mouse.Events {
			w.events.emit(MouseEvent{
				Type:      EventKind(name),
				X:         p.Mouse.X,
				Y:         p.Mouse.Y,
				Button:    p.Mouse.Button,
				Modifiers: modifiersOf(p.Mouse.Modifiers),
			})
		}
	}
	if p.Wheel != nil {
		w.events.emit(WheelEvent{DeltaX: p.Wheel.DeltaX, DeltaY: p.Wheel.DeltaY})
	}
	return w.state()
}

// keyDefaults applies the built-in bindings: Cmd-Q, Cmd-W and Ctrl-C close,
// Escape leaves full screen or closes, Cmd-F toggles full screen.
func (w *Window) keyDefaults(ev *KeyEvent) {
	key := strings.ToUpper(ev.Key)
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case ev.Meta && (key == "Q" || key == "W"), ev.Ctrl && key == "C":
		w.active = false
	case ev.Key == "Escape":
		if w.fullscreen {
			w.fullscreen = false
		} else {
			w.active = false
		}
	case ev.Meta && key == "F":
		w.fullscreen = !w.fullscreen
	}
}

func (w *Window) state() engine.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := engine.State{
		Title:      w.title,
		Active:     w.active,
		Fullscreen: w.fullscreen,
		Width:      w.width,
		Height:     w.height,
		X:          w.x,
		Y:          w.y,
	}
	if w.looping {
		s.FPS = w.fps
	}
	if p := w.currentPage(); p != nil {
		s.Page = p.handle()
	}
	s.Cursor, _ = CursorShape(w.cursor)
	return s
}

// animate emits one frame event and returns the state to draw.
func (w *Window) animate() engine.FrameState {
	w.mu.Lock()
	ev := FrameEvent{Frame: w.frame}
	w.frame++
	w.mu.Unlock()

	w.events.emit(ev)

	s := w.state()
	return engine.FrameState{Page: s.Page, Active: s.Active, FPS: s.FPS}
}
