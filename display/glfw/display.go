// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package glfw presents canvas pages in native windows using GLFW and
// OpenGL 3.3.
//
// Importing the package registers the "glfw" display host, which
// canvas.Window uses when its engine has no display of its own:
//
//	import _ "github.com/gogpu/canvas/display/glfw"
//
// The host snapshots the page through engine.Snapshotter after every event
// batch and animation frame, and draws it scaled to fit the window.
// Display must be called from the main goroutine on macOS.
package glfw

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"time"

	"github.com/go-gl/gl/v3.3-core/gl"
	glfw3 "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gg"

	"github.com/gogpu/canvas/backend/software"
	"github.com/gogpu/canvas/engine"
)

// idleRefresh is how often a window that is not animating repaints.
const idleRefresh = time.Second / 30

// ErrActive is returned when a host is asked to open a second window.
var ErrActive = errors.New("glfw: window already open")

func init() {
	engine.RegisterDisplay("glfw", func(e engine.Engine) (engine.Display, error) {
		return New(e)
	})
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the host logger. The default is the software engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.log = l
		}
	}
}

// WithVSync toggles waiting for the monitor refresh on buffer swaps.
func WithVSync(on bool) Option {
	return func(h *Host) { h.vsync = on }
}

// Host is an engine.Display backed by a GLFW window.
type Host struct {
	snap  engine.Snapshotter
	log   *slog.Logger
	vsync bool

	open bool
}

var _ engine.Display = (*Host)(nil)

// New returns a host for pages of e. The engine must implement
// engine.Snapshotter.
func New(e engine.Engine, opts ...Option) (*Host, error) {
	snap, ok := e.(engine.Snapshotter)
	if !ok {
		return nil, fmt.Errorf("%w: engine %T cannot snapshot pages", engine.ErrNotAvailable, e)
	}
	h := &Host{snap: snap, log: software.Logger(), vsync: true}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// window is the state of one open window.
type window struct {
	win     *glfw3.Window
	r       *renderer
	cur     *cursors
	q       *queue
	bg      gg.RGBA
	page    engine.Handle
	pageW   int
	pageH   int
	applied engine.State
	// windowed is the frame restored when leaving full screen.
	windowed [4]int
}

// Display implements engine.Display. It locks the calling goroutine to its
// OS thread until the window closes.
func (h *Host) Display(page engine.Handle, background string, dispatch engine.DispatchFunc, animate engine.AnimateFunc) error {
	if h.open {
		return ErrActive
	}
	h.open = true
	defer func() { h.open = false }()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	bg, err := software.ParseColor(background)
	if err != nil {
		h.log.Debug("glfw: unreadable background, using black", "background", background)
		bg = gg.Black
	}

	img, err := h.snap.Snapshot(page)
	if err != nil {
		return err
	}

	if err := glfw3.Init(); err != nil {
		return fmt.Errorf("glfw: init: %w", err)
	}
	defer glfw3.Terminate()

	// GL 3.2+ core profile (Mac requires forward-compatible flag).
	glfw3.WindowHint(glfw3.ContextVersionMajor, 3)
	glfw3.WindowHint(glfw3.ContextVersionMinor, 3)
	glfw3.WindowHint(glfw3.OpenGLProfile, glfw3.OpenGLCoreProfile)
	glfw3.WindowHint(glfw3.OpenGLForwardCompatible, glfw3.True)
	glfw3.WindowHint(glfw3.Visible, glfw3.False)

	first := dispatch(engine.Payload{})
	if !first.Active {
		return nil
	}
	w, ht := first.Width, first.Height
	if w <= 0 || ht <= 0 {
		w, ht = img.Bounds().Dx(), img.Bounds().Dy()
	}
	win, err := glfw3.CreateWindow(max(w, 1), max(ht, 1), first.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("glfw: create window: %w", err)
	}
	defer win.Destroy()
	win.MakeContextCurrent()
	if h.vsync {
		glfw3.SwapInterval(1)
	} else {
		glfw3.SwapInterval(0)
	}
	if err := gl.Init(); err != nil {
		return fmt.Errorf("glfw: gl init: %w", err)
	}
	h.log.Debug("glfw: window created", "gl", gl.GoStr(gl.GetString(gl.VERSION)), "width", w, "height", ht)

	r, err := newRenderer()
	if err != nil {
		return err
	}
	defer r.delete()

	ww := &window{win: win, r: r, cur: newCursors(win), q: newQueue(), bg: bg}
	defer ww.cur.destroy()
	ww.setPage(page, img)
	ww.listen()

	ww.applied = engine.State{Width: w, Height: ht, Title: first.Title}
	ww.apply(first)
	win.Show()

	st := first
	next := time.Now()
	for st.Active {
		wait := idleRefresh
		if st.FPS > 0 {
			wait = max(time.Until(next), 0)
		}
		glfw3.WaitEventsTimeout(wait.Seconds())

		if win.ShouldClose() {
			break
		}
		st = drain(ww.q, dispatch, ww.apply)
		if st.Active && st.FPS > 0 && !time.Now().Before(next) {
			fs := animate()
			st.Page, st.Active, st.FPS = fs.Page, fs.Active, fs.FPS
			next = time.Now().Add(time.Duration(float64(time.Second) / max(fs.FPS, 1)))
		}
		if !st.Active {
			break
		}
		if err := h.present(ww, st.Page); err != nil {
			return err
		}
	}
	return nil
}

// drain dispatches the payloads queued in q and applies each resulting
// state. With nothing queued it still dispatches an empty payload, so
// changes made from other goroutines (Close, title, cursor) reach the
// window.
func drain(q *queue, dispatch engine.DispatchFunc, apply func(engine.State)) engine.State {
	pending := q.take()
	if len(pending) == 0 {
		pending = []engine.Payload{{}}
	}
	var st engine.State
	for _, p := range pending {
		st = dispatch(p)
		apply(st)
		if !st.Active {
			break
		}
	}
	return st
}

// present snapshots page and swaps it onto the screen.
func (h *Host) present(ww *window, page engine.Handle) error {
	if page == nil {
		page = ww.page
	}
	img, err := h.snap.Snapshot(page)
	if err != nil {
		if errors.Is(err, engine.ErrBadHandle) {
			h.log.Warn("glfw: page released while shown", "err", err)
			return nil
		}
		return err
	}
	ww.setPage(page, img)
	fw, fh := ww.win.GetFramebufferSize()
	ww.r.draw(fw, fh, fit(ww.pageW, ww.pageH, fw, fh), ww.bg)
	ww.win.SwapBuffers()
	return nil
}

func (ww *window) setPage(page engine.Handle, img image.Image) {
	ww.page = page
	ww.pageW, ww.pageH = img.Bounds().Dx(), img.Bounds().Dy()
	ww.r.upload(img)
}

// listen routes GLFW callbacks into the event queue. Pointer positions are
// converted to page coordinates.
func (ww *window) listen() {
	win := ww.win
	win.SetPosCallback(func(_ *glfw3.Window, x, y int) {
		ww.applied.X, ww.applied.Y = x, y
		ww.q.moved(x, y)
	})
	win.SetSizeCallback(func(_ *glfw3.Window, w, h int) {
		ww.applied.Width, ww.applied.Height = w, h
		ww.q.resized(w, h)
	})
	win.SetKeyCallback(func(_ *glfw3.Window, key glfw3.Key, _ int, action glfw3.Action, mods glfw3.ModifierKey) {
		ww.q.key(key, action, mods)
	})
	win.SetCharCallback(func(_ *glfw3.Window, r rune) { ww.q.char(r) })
	win.SetCursorPosCallback(func(_ *glfw3.Window, x, y float64) {
		px, py := ww.pagePoint(x, y)
		ww.q.cursor(px, py)
	})
	win.SetMouseButtonCallback(func(w *glfw3.Window, b glfw3.MouseButton, action glfw3.Action, mods glfw3.ModifierKey) {
		px, py := ww.pagePoint(w.GetCursorPos())
		ww.q.mouse(b, action, mods, px, py)
	})
	win.SetScrollCallback(func(_ *glfw3.Window, xoff, yoff float64) { ww.q.scroll(xoff, yoff) })
}

func (ww *window) pagePoint(x, y float64) (float64, float64) {
	w, h := ww.win.GetSize()
	return fit(ww.pageW, ww.pageH, w, h).toPage(x, y, ww.pageW, ww.pageH)
}

// apply brings the native window in line with st.
func (ww *window) apply(st engine.State) {
	win, prev := ww.win, ww.applied
	if st.Title != prev.Title {
		win.SetTitle(st.Title)
	}
	if st.Fullscreen != prev.Fullscreen {
		ww.setFullscreen(st.Fullscreen)
	} else if !st.Fullscreen {
		if st.Width > 0 && st.Height > 0 && (st.Width != prev.Width || st.Height != prev.Height) {
			win.SetSize(st.Width, st.Height)
		}
		if st.X != prev.X || st.Y != prev.Y {
			win.SetPos(st.X, st.Y)
		}
	}
	ww.cur.set(st.Cursor)
	ww.applied = st
}

func (ww *window) setFullscreen(on bool) {
	win := ww.win
	if on {
		mon := glfw3.GetPrimaryMonitor()
		if mon == nil {
			return
		}
		x, y := win.GetPos()
		w, h := win.GetSize()
		ww.windowed = [4]int{x, y, w, h}
		mode := mon.GetVideoMode()
		win.SetMonitor(mon, 0, 0, mode.Width, mode.Height, mode.RefreshRate)
		return
	}
	f := ww.windowed
	if f[2] == 0 || f[3] == 0 {
		f[2], f[3] = ww.pageW, ww.pageH
	}
	win.SetMonitor(nil, f[0], f[1], f[2], f[3], 0)
}
