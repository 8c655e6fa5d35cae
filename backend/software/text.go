// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/gogpu/canvas/engine"
	"github.com/gogpu/canvas/vector"
)

// textLayout places one line of text relative to its anchor point.
type textLayout struct {
	src     *text.FontSource
	face    text.Face
	size    float64
	width   float64
	hscale  float64
	dx, dy  float64
	metrics text.Metrics
}

// layoutText applies the current font, alignment and baseline. A positive
// maxWidth compresses the line horizontally to fit.
func (p *page) layoutText(s string, maxWidth float64) textLayout {
	st := &p.st
	src := p.eng.fonts.match(st.font)
	l := textLayout{src: src, size: st.font.size, hscale: 1}
	l.face = src.Face(l.size)
	l.metrics = l.face.Metrics()
	l.width = l.face.Advance(s)
	if maxWidth > 0 && l.width > maxWidth {
		l.hscale = maxWidth / l.width
	}

	w := l.width * l.hscale
	align := st.textAlign
	rtl := st.direction == "rtl"
	switch {
	case align == "start" && rtl, align == "end" && !rtl:
		align = "right"
	case align == "start", align == "end":
		align = "left"
	}
	switch align {
	case "right":
		l.dx = -w
	case "center":
		l.dx = -w / 2
	}

	asc, desc := l.metrics.Ascent, l.metrics.Descent
	switch st.textBaseline {
	case "top":
		l.dy = asc
	case "hanging":
		l.dy = asc * 0.8
	case "middle":
		l.dy = (asc - desc) / 2
	case "ideographic", "bottom":
		l.dy = -desc
	}
	return l
}

// local maps the line's pen space to user space at anchor (x, y).
func (l textLayout) local(x, y float64) gg.Matrix {
	return gg.Translate(x+l.dx, y+l.dy).Multiply(gg.Scale(l.hscale, 1))
}

// outline returns the glyph outlines of s in pen space: origin on the
// baseline at the start of the line, y pointing down.
func (l textLayout) outline(s string) *gg.Path {
	return vector.GlyphPath(l.face, s, 0, 0)
}

// drawText fills or strokes s at (x, y). A negative or NaN maxWidth draws
// nothing; zero means no limit.
func (p *page) drawText(s string, x, y, maxWidth float64, stroke bool) {
	if maxWidth < 0 || math.IsNaN(maxWidth) || s == "" {
		return
	}
	l := p.layoutText(s, maxWidth)
	tm := p.st.ctm.Multiply(l.local(x, y))
	dev := gg.NewPath()
	appendPath(dev, l.outline(s), tm)

	if stroke {
		p.strokePath(dev)
		return
	}
	p.paintCover(p.ras.fill(dev, gg.FillRuleNonZero), p.st.fill)
	if p.rec == nil {
		return
	}
	k := scaleFactor(tm)
	o := tm.TransformPoint(gg.Pt(0, 0))
	p.rec.SetFillStyle(p.st.fill.recordBrush(p.st.ctm, p.st.alpha))
	p.rec.SetFontSize(l.size * k)
	p.rec.SetFontFamily(l.src.Name())
	p.rec.DrawString(s, o.X, o.Y)
	p.texts = append(p.texts, textRun{
		face:    l.src.Face(l.size * k),
		outline: dev,
		upright: tm.B == 0 && tm.D == 0 && tm.A > 0 && math.Abs(tm.A-tm.E) < 1e-9,
	})
}

// measureText reports metrics in user space relative to the anchor.
func (p *page) measureText(s string, maxWidth float64) engine.TextMetrics {
	l := p.layoutText(s, maxWidth)
	asc, desc := l.metrics.Ascent, l.metrics.Descent
	m := engine.TextMetrics{
		Width:                  l.width * l.hscale,
		FontBoundingBoxAscent:  asc - l.dy,
		FontBoundingBoxDescent: desc + l.dy,
		HangingBaseline:        asc*0.8 - l.dy,
		AlphabeticBaseline:     -l.dy,
		IdeographicBaseline:    -desc - l.dy,
	}
	if em := asc + desc; em > 0 {
		m.EmHeightAscent = l.size*asc/em - l.dy
		m.EmHeightDescent = l.size*desc/em + l.dy
	}
	if out := l.outline(s); out.NumVerbs() > 0 {
		bb := out.BoundingBox()
		m.ActualBoundingBoxLeft = -(bb.Min.X*l.hscale + l.dx)
		m.ActualBoundingBoxRight = bb.Max.X*l.hscale + l.dx
		m.ActualBoundingBoxAscent = -(bb.Min.Y + l.dy)
		m.ActualBoundingBoxDescent = bb.Max.Y + l.dy
	}
	m.Lines = []engine.TextLine{{
		X:          l.dx,
		Y:          l.dy - asc,
		Width:      m.Width,
		Height:     asc + desc,
		Baseline:   l.dy,
		StartIndex: 0,
		EndIndex:   len(s),
	}}
	return m
}
