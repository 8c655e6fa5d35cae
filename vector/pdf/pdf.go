// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package pdf writes recordings as PDF documents.
//
// Importing the package registers the writer as the "pdf" recording
// backend. Every Begin starts a new page, so several recordings played
// into one writer produce a multi-page document. One canvas pixel maps to
// one PDF point.
//
// Supported: paths, rectangles, solid colors with alpha, linear and radial
// gradients (pad extension only; stop alpha is averaged), nested
// clipping, images with transparency, and text. Text is drawn from the
// face's glyph outlines with an invisible text layer on top so the page
// stays searchable. Sweep gradients and pattern brushes fall back to their
// mean color.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/recording"
	"github.com/gogpu/gg/text"

	"github.com/gogpu/canvas/vector"
)

func init() {
	recording.Register("pdf", func() recording.Backend {
		return New()
	})
}

// ErrNoPages is returned by WriteTo before the first Begin.
var ErrNoPages = errors.New("pdf: document has no pages")

// Writer is a multi-page PDF recording backend.
type Writer struct {
	pages []*page
	cur   *page
}

var (
	_ recording.Backend       = (*Writer)(nil)
	_ recording.WriterBackend = (*Writer)(nil)
)

// New returns an empty document.
func New() *Writer {
	return &Writer{}
}

// alpha is one ExtGState entry.
type alpha struct{ fill, stroke float64 }

// xImage is an image XObject waiting to be written.
type xImage struct {
	img    *image.NRGBA
	smooth bool
}

// page holds one page's content stream and the resources it names.
type page struct {
	width, height int
	content       contentStream

	gstates  []alpha
	patterns []string
	images   []xImage
	font     bool

	// clips counts clip q levels opened at each Save level.
	clips []int
}

// Begin starts a new page. The content stream flips the y axis so
// recorded device coordinates can be written unchanged.
func (w *Writer) Begin(width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("pdf: invalid page size %dx%d", width, height)
	}
	p := &page{width: max(width, 1), height: max(height, 1), clips: []int{0}}
	p.content.concat(1, 0, 0, -1, 0, float64(p.height))
	w.pages = append(w.pages, p)
	w.cur = p
	return nil
}

// End closes any open state on the current page.
func (w *Writer) End() error {
	if w.cur == nil {
		return ErrNoPages
	}
	for len(w.cur.clips) > 1 {
		w.Restore()
	}
	w.ClearClip()
	w.cur = nil
	return nil
}

// Save writes q and starts a clip scope.
func (w *Writer) Save() {
	if w.cur == nil {
		return
	}
	w.cur.content.saveState()
	w.cur.clips = append(w.cur.clips, 0)
}

// Restore undoes the clips of the current scope and writes Q.
func (w *Writer) Restore() {
	if w.cur == nil || len(w.cur.clips) == 1 {
		return
	}
	w.ClearClip()
	w.cur.clips = w.cur.clips[:len(w.cur.clips)-1]
	w.cur.content.restoreState()
}

// SetTransform is a no-op: recorded geometry is already in device space.
func (w *Writer) SetTransform(recording.Matrix) {}

// SetClip intersects the clip with path. Each clip opens a q level that
// ClearClip or Restore closes.
func (w *Writer) SetClip(path *gg.Path, rule recording.FillRule) {
	if w.cur == nil || path == nil {
		return
	}
	cs := &w.cur.content
	cs.saveState()
	cs.path(path)
	cs.clip(rule == recording.FillRuleEvenOdd)
	w.cur.clips[len(w.cur.clips)-1]++
}

// ClearClip closes the clip levels of the current scope.
func (w *Writer) ClearClip() {
	if w.cur == nil {
		return
	}
	n := &w.cur.clips[len(w.cur.clips)-1]
	for ; *n > 0; *n-- {
		w.cur.content.restoreState()
	}
}

// FillPath fills path with brush.
func (w *Writer) FillPath(path *gg.Path, brush recording.Brush, rule recording.FillRule) {
	if w.cur == nil || path == nil || path.NumVerbs() == 0 {
		return
	}
	cs := &w.cur.content
	cs.saveState()
	if w.cur.paint(brush, false) {
		cs.path(path)
		cs.fill(rule == recording.FillRuleEvenOdd)
	}
	cs.restoreState()
}

// StrokePath strokes path with brush.
func (w *Writer) StrokePath(path *gg.Path, brush recording.Brush, stroke recording.Stroke) {
	if w.cur == nil || path == nil || path.NumVerbs() == 0 || stroke.Width <= 0 {
		return
	}
	cs := &w.cur.content
	cs.saveState()
	if w.cur.paint(brush, true) {
		cs.lineWidth(stroke.Width)
		if stroke.Cap != recording.LineCapButt {
			cs.lineCap(int(stroke.Cap))
		}
		if stroke.Join != recording.LineJoinMiter {
			cs.lineJoin(int(stroke.Join))
		}
		if stroke.MiterLimit > 0 {
			cs.miterLimit(stroke.MiterLimit)
		}
		if len(stroke.DashPattern) > 0 {
			cs.dash(stroke.DashPattern, stroke.DashOffset)
		}
		cs.path(path)
		cs.stroke()
	}
	cs.restoreState()
}

// FillRect fills rect with brush.
func (w *Writer) FillRect(rect recording.Rect, brush recording.Brush) {
	if w.cur == nil || rect.IsEmpty() {
		return
	}
	cs := &w.cur.content
	cs.saveState()
	if w.cur.paint(brush, false) {
		cs.rect(rect.MinX, rect.MinY, rect.Width(), rect.Height())
		cs.fill(false)
	}
	cs.restoreState()
}

// DrawImage draws the src part of img stretched over dst.
func (w *Writer) DrawImage(img image.Image, src, dst recording.Rect, opts recording.ImageOptions) {
	if w.cur == nil || img == nil || dst.IsEmpty() {
		return
	}
	crop := vector.Crop(img, src)
	if crop.Bounds().Empty() {
		return
	}
	p := w.cur
	p.images = append(p.images, xImage{img: crop, smooth: opts.Interpolation != recording.InterpolationNearest})
	cs := &p.content
	cs.saveState()
	if opts.Alpha > 0 && opts.Alpha < 1 {
		cs.graphicsState(p.gstate(alpha{fill: opts.Alpha, stroke: 1}))
	}
	// The unit square's top row is y=1; the page is already y-down.
	cs.concat(dst.Width(), 0, 0, -dst.Height(), dst.MinX, dst.MaxY)
	cs.xObject(fmt.Sprintf("Im%d", len(p.images)))
	cs.restoreState()
}

// DrawText fills the glyph outlines of s and lays invisible text over
// them. Without a face the text is set visibly in Helvetica.
func (w *Writer) DrawText(s string, x, y float64, face text.Face, brush recording.Brush) {
	if w.cur == nil || s == "" {
		return
	}
	p := w.cur
	p.font = true
	cs := &p.content
	if face == nil {
		cs.saveState()
		if p.paint(brush, false) {
			cs.text("F1", 10, 0, [6]float64{1, 0, 0, -1, x, y}, s)
		}
		cs.restoreState()
		return
	}
	w.FillPath(vector.GlyphPath(face, s, x, y), brush, recording.FillRuleNonZero)

	size := face.Size()
	if size <= 0 {
		return
	}
	// Helvetica averages about half an em per glyph; stretch to the
	// shaped advance so selections line up.
	scale := 1.0
	if n := len([]rune(s)); n > 0 {
		scale = face.Advance(s) / (0.5 * size * float64(n))
	}
	cs.saveState()
	cs.text("F1", size, 3, [6]float64{scale, 0, 0, -1, x, y}, s)
	cs.restoreState()
}

// paint sets the fill or stroke paint for brush. It reports false when the
// brush paints nothing.
func (p *page) paint(brush recording.Brush, stroke bool) bool {
	cs := &p.content
	setColor := func(c gg.RGBA) bool {
		if c.A <= 0 {
			return false
		}
		if c.A < 1 {
			a := alpha{fill: 1, stroke: 1}
			if stroke {
				a.stroke = c.A
			} else {
				a.fill = c.A
			}
			cs.graphicsState(p.gstate(a))
		}
		if stroke {
			cs.strokeRGB(c)
		} else {
			cs.fillRGB(c)
		}
		return true
	}
	var shading string
	var stops []recording.GradientStop
	switch b := brush.(type) {
	case recording.SolidBrush:
		return setColor(b.Color)
	case recording.SweepGradientBrush:
		return setColor(vector.MeanColor(b.Stops))
	case recording.LinearGradientBrush:
		stops = vector.Stops(b.Stops)
		shading = fmt.Sprintf("/ShadingType 2 /Coords [%s]", nums(b.Start.X, b.Start.Y, b.End.X, b.End.Y))
	case recording.RadialGradientBrush:
		stops = vector.Stops(b.Stops)
		shading = fmt.Sprintf("/ShadingType 3 /Coords [%s]",
			nums(b.Focus.X, b.Focus.Y, b.StartRadius, b.Center.X, b.Center.Y, b.EndRadius))
	default:
		return false
	}
	if len(stops) == 0 {
		return false
	}
	mean := vector.MeanColor(stops)
	if mean.A <= 0 {
		return false
	}
	if mean.A < 1 {
		a := alpha{fill: 1, stroke: 1}
		if stroke {
			a.stroke = mean.A
		} else {
			a.fill = mean.A
		}
		cs.graphicsState(p.gstate(a))
	}
	p.patterns = append(p.patterns, fmt.Sprintf(
		"<< /Type /Pattern /PatternType 2 /Matrix [1 0 0 -1 0 %d] /Shading << %s /ColorSpace /DeviceRGB /Function %s /Extend [true true] >> >>",
		p.height, shading, function(stops)))
	name := fmt.Sprintf("P%d", len(p.patterns))
	if stroke {
		cs.strokePattern(name)
	} else {
		cs.fillPattern(name)
	}
	return true
}

// gstate returns the resource name of an ExtGState with alpha a.
func (p *page) gstate(a alpha) string {
	for i, g := range p.gstates {
		if g == a {
			return fmt.Sprintf("GS%d", i+1)
		}
	}
	p.gstates = append(p.gstates, a)
	return fmt.Sprintf("GS%d", len(p.gstates))
}

// function returns an inline color function over normalized stops.
func function(stops []recording.GradientStop) string {
	rgb := func(c gg.RGBA) string { return nums(unit(c.R), unit(c.G), unit(c.B)) }
	pair := func(a, b gg.RGBA) string {
		return fmt.Sprintf("<< /FunctionType 2 /Domain [0 1] /C0 [%s] /C1 [%s] /N 1 >>", rgb(a), rgb(b))
	}
	if len(stops) == 1 {
		return pair(stops[0].Color, stops[0].Color)
	}
	if len(stops) == 2 {
		return pair(stops[0].Color, stops[1].Color)
	}
	var fns, bounds, encode []string
	for i := 1; i < len(stops); i++ {
		fns = append(fns, pair(stops[i-1].Color, stops[i].Color))
		encode = append(encode, "0 1")
		if i < len(stops)-1 {
			bounds = append(bounds, nums(stops[i].Offset))
		}
	}
	return fmt.Sprintf("<< /FunctionType 3 /Domain [0 1] /Functions [%s] /Bounds [%s] /Encode [%s] >>",
		strings.Join(fns, " "), strings.Join(bounds, " "), strings.Join(encode, " "))
}

// WriteTo writes the document. It should be called after End.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	if len(w.pages) == 0 {
		return 0, ErrNoPages
	}
	var d document
	catalog := d.alloc()
	pages := d.alloc()
	font := 0
	for _, p := range w.pages {
		if p.font {
			font = d.alloc()
			d.set(font, []byte("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>"))
			break
		}
	}

	kids := make([]string, 0, len(w.pages))
	for _, p := range w.pages {
		ref, err := d.page(p, pages, font)
		if err != nil {
			return 0, err
		}
		kids = append(kids, fmt.Sprintf("%d 0 R", ref))
	}
	d.set(catalog, fmt.Appendf(nil, "<< /Type /Catalog /Pages %d 0 R >>", pages))
	d.set(pages, fmt.Appendf(nil, "<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids)))
	info := d.alloc()
	d.set(info, []byte("<< /Producer (gogpu canvas) >>"))
	return d.writeTo(out, catalog, info)
}

// document numbers objects and writes the file with its xref table.
type document struct {
	objs [][]byte
}

func (d *document) alloc() int {
	d.objs = append(d.objs, nil)
	return len(d.objs)
}

func (d *document) set(ref int, body []byte) { d.objs[ref-1] = body }

func (d *document) add(body []byte) int {
	ref := d.alloc()
	d.set(ref, body)
	return ref
}

func (d *document) stream(dict string, data []byte) int {
	var b bytes.Buffer
	fmt.Fprintf(&b, "<< %s /Length %d >>\nstream\n", dict, len(data))
	b.Write(data)
	b.WriteString("\nendstream")
	return d.add(b.Bytes())
}

// page writes p's content and resources and returns the page object.
func (d *document) page(p *page, parent, font int) (int, error) {
	data, err := p.content.compressed()
	if err != nil {
		return 0, err
	}
	contents := d.stream("/Filter /FlateDecode", data)

	var res strings.Builder
	res.WriteString("<<")
	if p.font && font != 0 {
		fmt.Fprintf(&res, " /Font << /F1 %d 0 R >>", font)
	}
	if len(p.gstates) > 0 {
		res.WriteString(" /ExtGState <<")
		for i, g := range p.gstates {
			fmt.Fprintf(&res, " /GS%d << /Type /ExtGState /ca %s /CA %s >>", i+1, nums(g.fill), nums(g.stroke))
		}
		res.WriteString(" >>")
	}
	if len(p.patterns) > 0 {
		res.WriteString(" /Pattern <<")
		for i, pat := range p.patterns {
			fmt.Fprintf(&res, " /P%d %d 0 R", i+1, d.add([]byte(pat)))
		}
		res.WriteString(" >>")
	}
	if len(p.images) > 0 {
		res.WriteString(" /XObject <<")
		for i, im := range p.images {
			ref, err := d.image(im)
			if err != nil {
				return 0, err
			}
			fmt.Fprintf(&res, " /Im%d %d 0 R", i+1, ref)
		}
		res.WriteString(" >>")
	}
	res.WriteString(" >>")

	return d.add(fmt.Appendf(nil,
		"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 %d %d] /Resources %s /Contents %d 0 R >>",
		parent, p.width, p.height, res.String(), contents)), nil
}

// image writes im as an RGB XObject with a soft mask for its alpha.
func (d *document) image(im xImage) (int, error) {
	b := im.img.Bounds()
	rgb := make([]byte, 0, b.Dx()*b.Dy()*3)
	a := make([]byte, 0, b.Dx()*b.Dy())
	for i := 0; i+3 < len(im.img.Pix); i += 4 {
		rgb = append(rgb, im.img.Pix[i], im.img.Pix[i+1], im.img.Pix[i+2])
		a = append(a, im.img.Pix[i+3])
	}
	interp := ""
	if im.smooth {
		interp = " /Interpolate true"
	}
	smask := ""
	if !vector.Opaque(im.img) {
		data, err := deflate(a)
		if err != nil {
			return 0, err
		}
		ref := d.stream(fmt.Sprintf(
			"/Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /DeviceGray /BitsPerComponent 8 /Filter /FlateDecode%s",
			b.Dx(), b.Dy(), interp), data)
		smask = fmt.Sprintf(" /SMask %d 0 R", ref)
	}
	data, err := deflate(rgb)
	if err != nil {
		return 0, err
	}
	return d.stream(fmt.Sprintf(
		"/Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter /FlateDecode%s%s",
		b.Dx(), b.Dy(), interp, smask), data), nil
}

func (d *document) writeTo(out io.Writer, root, info int) (int64, error) {
	var b bytes.Buffer
	b.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
	offsets := make([]int, len(d.objs))
	for i, body := range d.objs {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n", i+1)
		b.Write(body)
		b.WriteString("\nendobj\n")
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(d.objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root %d 0 R /Info %d 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(d.objs)+1, root, info, xref)
	return b.WriteTo(out)
}
