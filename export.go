package canvas

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/gogpu/canvas/engine"
)

// ExportOptions controls ToBuffer, ToDataURL and SaveAs.
type ExportOptions struct {
	// Format is "png", "jpg" (or "jpeg"), "pdf" or "svg". Empty means the
	// filename extension for SaveAs and "png" otherwise.
	Format string

	// Page selects a single page: 1 is the oldest, -1 the newest. Nil
	// exports the newest page, or every page for PDF output and for
	// filenames with a "{}" placeholder.
	Page *int

	// Quality is 0-100 for lossy formats. Nil means 100.
	Quality *int

	// Density scales raster output; 2 renders at twice the pixel size.
	// Zero means 1.
	Density float64

	// Outline converts text to paths in vector output.
	Outline bool

	// Matte is a color painted behind transparent pixels.
	Matte Color
}

// Int returns a pointer to v, for ExportOptions.Page and Quality.
func Int(v int) *int { return &v }

// exportPlan is a validated export request.
type exportPlan struct {
	req   engine.Request
	pages []engine.Handle
	mime  string
}

// normalize validates opts against the live document. filename is empty
// for in-memory export. Both sync and async exports go through here, so
// they fail identically on bad input.
func (c *Canvas) normalize(filename string, opts ExportOptions) (exportPlan, error) {
	var plan exportPlan

	format, err := resolveFormat(filename, opts.Format)
	if err != nil {
		return plan, err
	}

	// Internal order is newest first; documents read oldest first.
	newest := c.newestFirst()
	n := len(newest)
	docOrder := make([]engine.Handle, n)
	for i, h := range newest {
		docOrder[n-1-i] = h
	}

	var (
		pageNum  int
		explicit = opts.Page != nil
	)
	if explicit {
		idx, err := resolvePage(*opts.Page, n)
		if err != nil {
			return plan, err
		}
		pageNum = idx + 1
	}

	quality := 100
	if opts.Quality != nil {
		quality = *opts.Quality
		if quality < 0 || quality > 100 {
			return plan, fmt.Errorf("%w: %d (expected 0-100)", ErrQuality, quality)
		}
	}
	density := opts.Density
	if density == 0 {
		density = 1
	}
	if density < 0 || math.IsNaN(density) || math.IsInf(density, 0) {
		return plan, fmt.Errorf("%w: density %g", ErrInvalidArgument, opts.Density)
	}

	seq, padding := false, 0
	if filename != "" {
		seq, padding = engine.SequenceToken(filename)
	}

	switch {
	case explicit:
		plan.pages = []engine.Handle{docOrder[pageNum-1]}
	case seq || format == FormatPDF:
		plan.pages = docOrder
	default:
		plan.pages = []engine.Handle{newest[0]}
	}

	if padding < 0 {
		padding = len(strconv.Itoa(len(plan.pages)))
	}
	plan.req = engine.Request{
		Format:  format,
		Quality: quality,
		Density: density,
		Outline: opts.Outline,
		Matte:   string(opts.Matte),
		Pattern: filename,
	}
	if seq {
		expand := engine.Request{Pattern: filename, Sequence: true, Padding: padding}
		switch {
		case explicit:
			plan.req.Pattern = expand.Path(pageNum)
		case format == FormatPDF:
			plan.req.Pattern = expand.Path(1)
		default:
			plan.req.Sequence = true
			plan.req.Padding = padding
		}
	}
	plan.mime = MimeType(format)
	return plan, nil
}

func resolveFormat(filename, explicit string) (string, error) {
	var format string
	switch {
	case explicit != "":
		format = canonicalFormat(explicit)
	case filename != "":
		ext := path.Ext(stripScheme(filename))
		if ext == "" {
			return "", fmt.Errorf("%w: cannot determine image format (use a filename extension or 'format' argument)", ErrFormat)
		}
		format = canonicalFormat(ext)
	default:
		format = FormatPNG
	}
	if !exportable(format) {
		return "", fmt.Errorf(`%w: unsupported file format %q (expected "png", "jpg", "pdf", or "svg")`, ErrFormat, format)
	}
	return format, nil
}

// resolvePage maps a 1-based or negative page number to an index into the
// oldest-first page list.
func resolvePage(page, count int) (int, error) {
	idx := -1
	switch {
	case page > 0:
		idx = page - 1
	case page < 0:
		idx = count + page
	}
	if idx < 0 || idx >= count {
		if count == 1 {
			return 0, fmt.Errorf("%w: canvas only has a 'page 1' (%d is out of bounds)", ErrPageRange, page)
		}
		return 0, fmt.Errorf("%w: canvas has pages 1–%d (%d is out of bounds)", ErrPageRange, count, page)
	}
	return idx, nil
}

func stripScheme(name string) string {
	if _, rest, ok := strings.Cut(name, "://"); ok {
		return rest
	}
	return name
}

// ToBuffer encodes pages in memory.
func (c *Canvas) ToBuffer(opts ExportOptions) (*Future[[]byte], error) {
	plan, err := c.normalize("", opts)
	if err != nil {
		return nil, err
	}
	return c.dispatch(plan)
}

// ToDataURL encodes pages as a "data:<mime>;base64,..." URL.
func (c *Canvas) ToDataURL(opts ExportOptions) (*Future[string], error) {
	plan, err := c.normalize("", opts)
	if err != nil {
		return nil, err
	}
	f, err := c.dispatch(plan)
	if err != nil {
		return nil, err
	}
	return then(f, func(b []byte) string {
		return "data:" + plan.mime + ";base64," + base64.StdEncoding.EncodeToString(b)
	}), nil
}

// SaveAs writes pages to filename. A "{}" placeholder in the name, such as
// "page-{}.png" or "frame-{000}.png", writes one numbered file per page.
// Digits inside the braces set the zero padding; a bare "{}" pads to the
// width of the page count, so twelve pages are numbered 01 to 12.
// Names whose scheme was registered with WithDestination are written there
// instead of the file system.
func (c *Canvas) SaveAs(filename string, opts ExportOptions) (*Future[struct{}], error) {
	if filename == "" {
		return nil, fmt.Errorf("%w: empty filename", ErrInvalidArgument)
	}
	plan, err := c.normalize(filename, opts)
	if err != nil {
		return nil, err
	}
	if d := c.destination(filename); d != nil {
		return c.saveTo(d, plan)
	}
	f, err := c.dispatch(plan)
	if err != nil {
		return nil, err
	}
	return then(f, func([]byte) struct{} { return struct{}{} }), nil
}

func (c *Canvas) exporter() (engine.Exporter, error) {
	ex, ok := c.eng.(engine.Exporter)
	if !ok {
		return nil, fmt.Errorf("%w: engine %T cannot export", ErrNoEngine, c.eng)
	}
	if !c.alive() {
		return nil, ErrClosed
	}
	return ex, nil
}

// dispatch hands a validated plan to the engine. Synchronous canvases block
// and return engine errors directly; asynchronous ones return a pending
// Future that the engine's completion callback settles.
func (c *Canvas) dispatch(plan exportPlan) (*Future[[]byte], error) {
	ex, err := c.exporter()
	if err != nil {
		return nil, err
	}
	if !c.Async() {
		b, err := ex.Export(c.handle(), plan.pages, plan.req)
		if err != nil {
			return nil, err
		}
		return resolved(b, nil), nil
	}

	job := ulid.Make().String()
	log := Logger().With("job", job, "format", plan.req.Format, "pages", len(plan.pages))
	log.Debug("canvas: export dispatched")
	f, settle := promise[[]byte]()
	ex.ExportAsync(c.handle(), plan.pages, plan.req, func(b []byte, err error) {
		if err != nil {
			log.Debug("canvas: export failed", "err", err)
		} else {
			log.Debug("canvas: export finished", "bytes", len(b))
		}
		settle(b, err)
	})
	return f, nil
}

func (c *Canvas) destination(filename string) Destination {
	scheme, _, ok := strings.Cut(filename, "://")
	if !ok {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dests[scheme]
}

// saveTo encodes in memory and writes each file through d.
func (c *Canvas) saveTo(d Destination, plan exportPlan) (*Future[struct{}], error) {
	ex, err := c.exporter()
	if err != nil {
		return nil, err
	}
	run := func() error {
		ctx := context.Background()
		mem := plan.req
		mem.Pattern, mem.Sequence = "", false
		if !plan.req.Sequence {
			b, err := ex.Export(c.handle(), plan.pages, mem)
			if err != nil {
				return err
			}
			return d.Put(ctx, plan.req.Pattern, plan.mime, b)
		}
		for i, page := range plan.pages {
			b, err := ex.Export(c.handle(), []engine.Handle{page}, mem)
			if err != nil {
				return err
			}
			if err := d.Put(ctx, plan.req.Path(i+1), plan.mime, b); err != nil {
				return err
			}
		}
		return nil
	}

	if !c.Async() {
		if err := run(); err != nil {
			return nil, err
		}
		return resolved(struct{}{}, nil), nil
	}
	f, settle := promise[struct{}]()
	go func() { settle(struct{}{}, run()) }()
	return f, nil
}
