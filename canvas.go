package canvas

import (
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/canvas/engine"
)

// Default canvas dimensions, used when a size is missing or invalid.
const (
	DefaultWidth  = 300
	DefaultHeight = 150
)

// Canvas is a multi-page drawing document.
//
// A Canvas always has at least one page. Pages are only ever added; the
// newest page is the current one returned by GetContext.
//
// Canvas methods may be called from the window loop goroutine while a
// Window displays the canvas; page lists are read through snapshots.
type Canvas struct {
	resource

	mu     sync.RWMutex
	width  int
	height int
	// arena holds pages in creation order. A page's index into arena never
	// changes, so pages resolve their canvas through it.
	arena  []*Page
	async  bool
	dests  map[string]Destination
	closed bool
}

// New creates a canvas with one page. A NaN, infinite or negative width or
// height falls back to 300x150.
func New(width, height float64, opts ...Option) (*Canvas, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	eng, err := resolveEngine(o.engine)
	if err != nil {
		return nil, err
	}

	w, h := sanitizeSize(width, DefaultWidth), sanitizeSize(height, DefaultHeight)
	res, err := alloc(eng, engine.KindCanvas, "new", "canvas.New", w, h)
	if err != nil {
		return nil, err
	}
	c := &Canvas{
		resource: res,
		width:    w,
		height:   h,
		async:    o.async,
		dests:    o.destinations,
	}
	track(c, c.resource)

	if _, err := c.addPage(); err != nil {
		c.resource.Close()
		return nil, err
	}
	return c, nil
}

func sanitizeSize(v float64, fallback int) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fallback
	}
	return int(math.Floor(v))
}

// Engine returns the engine the canvas draws with.
func (c *Canvas) Engine() engine.Engine {
	return c.eng
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.width
}

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.height
}

// SetWidth sets the width, falling back to 300 for invalid values, and
// resets the current page.
func (c *Canvas) SetWidth(w float64) error {
	c.mu.Lock()
	c.width = sanitizeSize(w, DefaultWidth)
	c.mu.Unlock()
	return c.resetCurrent()
}

// SetHeight sets the height, falling back to 150 for invalid values, and
// resets the current page.
func (c *Canvas) SetHeight(h float64) error {
	c.mu.Lock()
	c.height = sanitizeSize(h, DefaultHeight)
	c.mu.Unlock()
	return c.resetCurrent()
}

// SetSize sets both dimensions and resets the current page once.
func (c *Canvas) SetSize(w, h float64) error {
	c.mu.Lock()
	c.width = sanitizeSize(w, DefaultWidth)
	c.height = sanitizeSize(h, DefaultHeight)
	c.mu.Unlock()
	return c.resetCurrent()
}

// resetCurrent tells the current page about the stored size. It runs after
// the size is stored so the page sees the new dimensions.
func (c *Canvas) resetCurrent() error {
	p := c.current()
	if p == nil {
		return nil
	}
	return p.ResetSize()
}

// Async reports whether exports run in the background.
func (c *Canvas) Async() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.async
}

// SetAsync selects background (true) or blocking (false) export.
func (c *Canvas) SetAsync(async bool) {
	c.mu.Lock()
	c.async = async
	c.mu.Unlock()
}

// GetContext returns the current page. Only the "2d" context type exists.
func (c *Canvas) GetContext(kind string) (*Page, error) {
	if kind != "2d" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedContext, kind)
	}
	if p := c.current(); p != nil {
		return p, nil
	}
	return c.addPage()
}

// NewPage adds a page and makes it current. With two dimensions the canvas
// is resized to width x height after the page is added.
func (c *Canvas) NewPage(dims ...float64) (*Page, error) {
	p, err := c.addPage()
	if err != nil {
		return nil, err
	}
	if len(dims) >= 2 {
		if err := c.SetSize(dims[0], dims[1]); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (c *Canvas) addPage() (*Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	res, err := alloc(c.eng, engine.KindContext, "new", "Canvas.GetContext", c.handle(), c.width, c.height)
	if err != nil {
		return nil, err
	}
	p := &Page{resource: res, owner: c, index: len(c.arena)}
	track(p, p.resource)
	c.arena = append(c.arena, p)
	return p, nil
}

// Pages returns the pages oldest first. The slice is a copy.
func (c *Canvas) Pages() []*Page {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Page(nil), c.arena...)
}

// PageCount returns the number of pages.
func (c *Canvas) PageCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.arena)
}

// current returns the newest page.
func (c *Canvas) current() *Page {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.arena) == 0 {
		return nil
	}
	return c.arena[len(c.arena)-1]
}

// newestFirst returns the page handles in internal order, newest first.
func (c *Canvas) newestFirst() []engine.Handle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]engine.Handle, len(c.arena))
	for i, p := range c.arena {
		out[len(c.arena)-1-i] = p.handle()
	}
	return out
}

func (c *Canvas) pageAt(index int) *Page {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if index < 0 || index >= len(c.arena) {
		return nil
	}
	return c.arena[index]
}

// imageHandle draws the current page when a canvas is used as an image.
func (c *Canvas) imageHandle() (engine.Handle, error) {
	p := c.current()
	if p == nil || !p.alive() {
		return nil, ErrClosed
	}
	return p.handle(), nil
}

// Close releases every page and the canvas. It is safe to call more than
// once.
func (c *Canvas) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	pages := c.arena
	c.mu.Unlock()

	for _, p := range pages {
		p.resource.Close()
	}
	return c.resource.Close()
}

// PNG exports the current page as PNG.
func (c *Canvas) PNG() (*Future[[]byte], error) {
	return c.ToBuffer(ExportOptions{Format: "png"})
}

// JPG exports the current page as JPEG.
func (c *Canvas) JPG() (*Future[[]byte], error) {
	return c.ToBuffer(ExportOptions{Format: "jpg"})
}

// PDF exports every page as one PDF document.
func (c *Canvas) PDF() (*Future[[]byte], error) {
	return c.ToBuffer(ExportOptions{Format: "pdf"})
}

// SVG exports the current page as SVG.
func (c *Canvas) SVG() (*Future[[]byte], error) {
	return c.ToBuffer(ExportOptions{Format: "svg"})
}
