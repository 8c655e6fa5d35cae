// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pdf

import (
	"bytes"
	"compress/zlib"
	"strings"

	"github.com/gogpu/gg"

	"github.com/gogpu/canvas/vector"
)

// contentStream builds a page content stream, one operator per line.
type contentStream struct {
	buf bytes.Buffer
}

// writeOp writes an operator with optional operands.
func (cs *contentStream) writeOp(operands string, operator string) {
	if operands != "" {
		cs.buf.WriteString(operands)
		cs.buf.WriteByte(' ')
	}
	cs.buf.WriteString(operator)
	cs.buf.WriteByte('\n')
}

func nums(vs ...float64) string {
	s := make([]string, len(vs))
	for i, v := range vs {
		s[i] = vector.Num(v)
	}
	return strings.Join(s, " ")
}

// saveState writes q.
func (cs *contentStream) saveState() { cs.writeOp("", "q") }

// restoreState writes Q.
func (cs *contentStream) restoreState() { cs.writeOp("", "Q") }

// concat multiplies the CTM (cm).
func (cs *contentStream) concat(a, b, c, d, e, f float64) {
	cs.writeOp(nums(a, b, c, d, e, f), "cm")
}

// path appends the segments of p. Quadratic curves are raised to cubics.
func (cs *contentStream) path(p *gg.Path) {
	var cur, start gg.Point
	p.Iterate(func(verb gg.PathVerb, c []float64) {
		switch verb {
		case gg.MoveTo:
			cs.writeOp(nums(c[0], c[1]), "m")
			cur = gg.Pt(c[0], c[1])
			start = cur
		case gg.LineTo:
			cs.writeOp(nums(c[0], c[1]), "l")
			cur = gg.Pt(c[0], c[1])
		case gg.QuadTo:
			c1x := cur.X + 2.0/3*(c[0]-cur.X)
			c1y := cur.Y + 2.0/3*(c[1]-cur.Y)
			c2x := c[2] + 2.0/3*(c[0]-c[2])
			c2y := c[3] + 2.0/3*(c[1]-c[3])
			cs.writeOp(nums(c1x, c1y, c2x, c2y, c[2], c[3]), "c")
			cur = gg.Pt(c[2], c[3])
		case gg.CubicTo:
			cs.writeOp(nums(c...), "c")
			cur = gg.Pt(c[4], c[5])
		case gg.Close:
			cs.writeOp("", "h")
			cur = start
		}
	})
}

// rect appends a rectangle (re).
func (cs *contentStream) rect(x, y, w, h float64) {
	cs.writeOp(nums(x, y, w, h), "re")
}

// fill paints the path with the non-zero (f) or even-odd (f*) rule.
func (cs *contentStream) fill(evenOdd bool) {
	if evenOdd {
		cs.writeOp("", "f*")
		return
	}
	cs.writeOp("", "f")
}

// stroke writes S.
func (cs *contentStream) stroke() { cs.writeOp("", "S") }

// clip intersects the clip with the path and ends it (W n or W* n).
func (cs *contentStream) clip(evenOdd bool) {
	if evenOdd {
		cs.writeOp("", "W*")
	} else {
		cs.writeOp("", "W")
	}
	cs.writeOp("", "n")
}

// fillRGB sets the nonstroking color (rg).
func (cs *contentStream) fillRGB(c gg.RGBA) {
	cs.writeOp(nums(unit(c.R), unit(c.G), unit(c.B)), "rg")
}

// strokeRGB sets the stroking color (RG).
func (cs *contentStream) strokeRGB(c gg.RGBA) {
	cs.writeOp(nums(unit(c.R), unit(c.G), unit(c.B)), "RG")
}

// fillPattern selects a shading pattern for nonstroking operations.
func (cs *contentStream) fillPattern(name string) {
	cs.writeOp("/Pattern", "cs")
	cs.writeOp("/"+name, "scn")
}

// strokePattern selects a shading pattern for stroking operations.
func (cs *contentStream) strokePattern(name string) {
	cs.writeOp("/Pattern", "CS")
	cs.writeOp("/"+name, "SCN")
}

// graphicsState applies a named ExtGState (gs).
func (cs *contentStream) graphicsState(name string) {
	cs.writeOp("/"+name, "gs")
}

// lineWidth writes w.
func (cs *contentStream) lineWidth(w float64) { cs.writeOp(nums(w), "w") }

// lineCap writes J. Recording caps share PDF's numbering.
func (cs *contentStream) lineCap(c int) { cs.writeOp(nums(float64(c)), "J") }

// lineJoin writes j. Recording joins share PDF's numbering.
func (cs *contentStream) lineJoin(j int) { cs.writeOp(nums(float64(j)), "j") }

// miterLimit writes M.
func (cs *contentStream) miterLimit(m float64) { cs.writeOp(nums(m), "M") }

// dash writes d.
func (cs *contentStream) dash(pattern []float64, phase float64) {
	cs.writeOp("["+nums(pattern...)+"] "+vector.Num(phase), "d")
}

// xObject paints a named XObject (Do).
func (cs *contentStream) xObject(name string) { cs.writeOp("/"+name, "Do") }

// text shows s in font at size with the given render mode and text matrix.
func (cs *contentStream) text(font string, size float64, mode int, tm [6]float64, s string) {
	cs.writeOp("", "BT")
	cs.writeOp("/"+font+" "+vector.Num(size), "Tf")
	if mode != 0 {
		cs.writeOp(nums(float64(mode)), "Tr")
	}
	cs.writeOp(nums(tm[:]...), "Tm")
	cs.writeOp(literal(s), "Tj")
	cs.writeOp("", "ET")
}

// compressed returns the stream Flate-encoded.
func (cs *contentStream) compressed() ([]byte, error) {
	return deflate(cs.buf.Bytes())
}

func deflate(data []byte) ([]byte, error) {
	var out bytes.Buffer
	zw := zlib.NewWriter(&out)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// literal encodes s as a PDF literal string in WinAnsi. Runes outside
// Latin-1 become '?'.
func literal(s string) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for _, r := range s {
		switch {
		case r == '(' || r == ')' || r == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(byte(r))
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r < 0x20 || r > 0xff:
			sb.WriteByte('?')
		default:
			sb.WriteByte(byte(r))
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

func unit(v float64) float64 { return min(max(v, 0), 1) }
