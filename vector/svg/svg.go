// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package svg writes recordings as SVG documents.
//
// Importing the package registers the writer as the "svg" recording
// backend. One document holds one page; calling Begin again starts over.
//
// Supported: paths, rectangles, solid colors, linear and radial gradients,
// nested clipping, embedded images and text. Sweep gradients and pattern
// brushes fall back to their mean color.
package svg

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/recording"
	"github.com/gogpu/gg/text"

	"github.com/gogpu/canvas/vector"
)

func init() {
	recording.Register("svg", func() recording.Backend {
		return New()
	})
}

// Writer is an SVG recording backend.
type Writer struct {
	width, height int

	defs bytes.Buffer
	body bytes.Buffer
	ids  int

	// groups counts clip groups opened at each Save level.
	groups []int
}

var (
	_ recording.Backend       = (*Writer)(nil)
	_ recording.WriterBackend = (*Writer)(nil)
)

// New returns an empty writer. Begin must be called before drawing.
func New() *Writer {
	return &Writer{groups: []int{0}}
}

// Begin starts a new document of the given size.
func (w *Writer) Begin(width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("svg: invalid size %dx%d", width, height)
	}
	w.width, w.height = width, height
	w.defs.Reset()
	w.body.Reset()
	w.ids = 0
	w.groups = []int{0}
	return nil
}

// End closes any open groups.
func (w *Writer) End() error {
	for len(w.groups) > 1 {
		w.Restore()
	}
	w.ClearClip()
	return nil
}

// Save starts a new clip scope.
func (w *Writer) Save() {
	w.groups = append(w.groups, 0)
}

// Restore closes the clip groups opened since the matching Save.
func (w *Writer) Restore() {
	if len(w.groups) == 1 {
		return
	}
	w.ClearClip()
	w.groups = w.groups[:len(w.groups)-1]
}

// SetTransform is a no-op: recorded geometry is already in device space.
func (w *Writer) SetTransform(recording.Matrix) {}

// SetClip intersects the clip with path until the enclosing Restore.
func (w *Writer) SetClip(path *gg.Path, rule recording.FillRule) {
	if path == nil {
		return
	}
	id := w.id("clip")
	fmt.Fprintf(&w.defs, `<clipPath id="%s"><path d="%s"%s/></clipPath>`+"\n",
		id, vector.PathData(path), clipRule(rule))
	fmt.Fprintf(&w.body, `<g clip-path="url(#%s)">`+"\n", id)
	w.groups[len(w.groups)-1]++
}

// ClearClip closes the clip groups of the current scope.
func (w *Writer) ClearClip() {
	n := &w.groups[len(w.groups)-1]
	for ; *n > 0; *n-- {
		w.body.WriteString("</g>\n")
	}
}

// FillPath fills path with brush.
func (w *Writer) FillPath(path *gg.Path, brush recording.Brush, rule recording.FillRule) {
	if path == nil || path.NumVerbs() == 0 {
		return
	}
	fill := w.paint(brush, "fill")
	if fill == "" {
		return
	}
	fmt.Fprintf(&w.body, `<path d="%s"%s%s/>`+"\n", vector.PathData(path), fill, fillRule(rule))
}

// StrokePath strokes path with brush.
func (w *Writer) StrokePath(path *gg.Path, brush recording.Brush, stroke recording.Stroke) {
	if path == nil || path.NumVerbs() == 0 || stroke.Width <= 0 {
		return
	}
	paint := w.paint(brush, "stroke")
	if paint == "" {
		return
	}
	var sb strings.Builder
	sb.WriteString(` fill="none"`)
	sb.WriteString(paint)
	attr(&sb, "stroke-width", vector.Num(stroke.Width))
	switch stroke.Cap {
	case recording.LineCapRound:
		attr(&sb, "stroke-linecap", "round")
	case recording.LineCapSquare:
		attr(&sb, "stroke-linecap", "square")
	}
	switch stroke.Join {
	case recording.LineJoinRound:
		attr(&sb, "stroke-linejoin", "round")
	case recording.LineJoinBevel:
		attr(&sb, "stroke-linejoin", "bevel")
	default:
		if stroke.MiterLimit > 0 && stroke.MiterLimit != 4 {
			attr(&sb, "stroke-miterlimit", vector.Num(stroke.MiterLimit))
		}
	}
	if len(stroke.DashPattern) > 0 {
		dash := make([]string, len(stroke.DashPattern))
		for i, d := range stroke.DashPattern {
			dash[i] = vector.Num(d)
		}
		attr(&sb, "stroke-dasharray", strings.Join(dash, " "))
		if stroke.DashOffset != 0 {
			attr(&sb, "stroke-dashoffset", vector.Num(stroke.DashOffset))
		}
	}
	fmt.Fprintf(&w.body, `<path d="%s"%s/>`+"\n", vector.PathData(path), sb.String())
}

// FillRect fills rect with brush.
func (w *Writer) FillRect(rect recording.Rect, brush recording.Brush) {
	if rect.IsEmpty() {
		return
	}
	fill := w.paint(brush, "fill")
	if fill == "" {
		return
	}
	fmt.Fprintf(&w.body, `<rect x="%s" y="%s" width="%s" height="%s"%s/>`+"\n",
		vector.Num(rect.MinX), vector.Num(rect.MinY),
		vector.Num(rect.Width()), vector.Num(rect.Height()), fill)
}

// DrawImage embeds the src part of img as a PNG stretched over dst.
func (w *Writer) DrawImage(img image.Image, src, dst recording.Rect, opts recording.ImageOptions) {
	if img == nil || dst.IsEmpty() {
		return
	}
	crop := vector.Crop(img, src)
	if crop.Bounds().Empty() {
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, crop); err != nil {
		return
	}
	var sb strings.Builder
	if opts.Interpolation == recording.InterpolationNearest {
		attr(&sb, "image-rendering", "pixelated")
	}
	if opts.Alpha > 0 && opts.Alpha < 1 {
		attr(&sb, "opacity", vector.Num(opts.Alpha))
	}
	fmt.Fprintf(&w.body,
		`<image x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="none"%s href="data:image/png;base64,%s"/>`+"\n",
		vector.Num(dst.MinX), vector.Num(dst.MinY), vector.Num(dst.Width()), vector.Num(dst.Height()),
		sb.String(), base64.StdEncoding.EncodeToString(buf.Bytes()))
}

// DrawText writes s as a text element with its baseline origin at (x, y).
func (w *Writer) DrawText(s string, x, y float64, face text.Face, brush recording.Brush) {
	if s == "" {
		return
	}
	fill := w.paint(brush, "fill")
	if fill == "" {
		return
	}
	var sb strings.Builder
	if face != nil {
		if src := face.Source(); src != nil {
			attr(&sb, "font-family", src.Name())
		}
		attr(&sb, "font-size", vector.Num(face.Size()))
	}
	fmt.Fprintf(&w.body, `<text x="%s" y="%s"%s%s xml:space="preserve">`,
		vector.Num(x), vector.Num(y), sb.String(), fill)
	_ = xml.EscapeText(&w.body, []byte(s))
	w.body.WriteString("</text>\n")
}

// WriteTo writes the document. It should be called after End.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	var doc bytes.Buffer
	doc.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&doc,
		`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		w.width, w.height, w.width, w.height)
	if w.defs.Len() > 0 {
		doc.WriteString("<defs>\n")
		doc.Write(w.defs.Bytes())
		doc.WriteString("</defs>\n")
	}
	doc.Write(w.body.Bytes())
	doc.WriteString("</svg>\n")
	return doc.WriteTo(out)
}

func (w *Writer) id(prefix string) string {
	w.ids++
	return fmt.Sprintf("%s%d", prefix, w.ids)
}

// paint returns the attributes painting with brush as the fill or stroke
// property, or "" when nothing would be visible.
func (w *Writer) paint(brush recording.Brush, prop string) string {
	switch b := brush.(type) {
	case recording.SolidBrush:
		return paintAttr(prop, b.Color)
	case recording.LinearGradientBrush:
		id := w.id("grad")
		fmt.Fprintf(&w.defs,
			`<linearGradient id="%s" gradientUnits="userSpaceOnUse" x1="%s" y1="%s" x2="%s" y2="%s"%s>`,
			id, vector.Num(b.Start.X), vector.Num(b.Start.Y), vector.Num(b.End.X), vector.Num(b.End.Y), spread(b.Extend))
		w.stops(b.Stops)
		w.defs.WriteString("</linearGradient>\n")
		return fmt.Sprintf(` %s="url(#%s)"`, prop, id)
	case recording.RadialGradientBrush:
		id := w.id("grad")
		fmt.Fprintf(&w.defs,
			`<radialGradient id="%s" gradientUnits="userSpaceOnUse" cx="%s" cy="%s" r="%s" fx="%s" fy="%s" fr="%s"%s>`,
			id, vector.Num(b.Center.X), vector.Num(b.Center.Y), vector.Num(b.EndRadius),
			vector.Num(b.Focus.X), vector.Num(b.Focus.Y), vector.Num(b.StartRadius), spread(b.Extend))
		w.stops(b.Stops)
		w.defs.WriteString("</radialGradient>\n")
		return fmt.Sprintf(` %s="url(#%s)"`, prop, id)
	case recording.SweepGradientBrush:
		return paintAttr(prop, vector.MeanColor(b.Stops))
	}
	return ""
}

func (w *Writer) stops(stops []recording.GradientStop) {
	for _, s := range vector.Stops(stops) {
		fmt.Fprintf(&w.defs, `<stop offset="%s" stop-color="%s"`, vector.Num(s.Offset), rgb(s.Color))
		if s.Color.A < 1 {
			fmt.Fprintf(&w.defs, ` stop-opacity="%s"`, vector.Num(s.Color.A))
		}
		w.defs.WriteString("/>")
	}
}

func paintAttr(prop string, c gg.RGBA) string {
	if c.A <= 0 {
		return ""
	}
	s := fmt.Sprintf(` %s="%s"`, prop, rgb(c))
	if c.A < 1 {
		s += fmt.Sprintf(` %s-opacity="%s"`, prop, vector.Num(c.A))
	}
	return s
}

func rgb(c gg.RGBA) string {
	to8 := func(v float64) int { return int(min(max(v, 0), 1)*255 + 0.5) }
	return fmt.Sprintf("#%02x%02x%02x", to8(c.R), to8(c.G), to8(c.B))
}

func spread(m recording.ExtendMode) string {
	switch m {
	case recording.ExtendRepeat:
		return ` spreadMethod="repeat"`
	case recording.ExtendReflect:
		return ` spreadMethod="reflect"`
	}
	return ""
}

func fillRule(r recording.FillRule) string {
	if r == recording.FillRuleEvenOdd {
		return ` fill-rule="evenodd"`
	}
	return ""
}

func clipRule(r recording.FillRule) string {
	if r == recording.FillRuleEvenOdd {
		return ` clip-rule="evenodd"`
	}
	return ""
}

func attr(sb *strings.Builder, name, value string) {
	sb.WriteByte(' ')
	sb.WriteString(name)
	sb.WriteString(`="`)
	_ = xml.EscapeText(sb, []byte(value))
	sb.WriteByte('"')
}
