// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package vector holds helpers shared by the PDF and SVG writers: glyph
// outlines, gradient stop normalization, image cropping and number
// formatting.
//
// The writers themselves live in the pdf and svg subpackages and register
// with the gg recording registry on import:
//
//	import _ "github.com/gogpu/canvas/vector/pdf"
//
//	be, err := recording.NewBackend("pdf")
package vector

import (
	"image"
	"image/color"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/recording"
	"github.com/gogpu/gg/text"
)

// Num formats v with at most four decimals and no trailing zeros.
func Num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	v = math.Round(v*1e4) / 1e4
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PathData writes p as SVG path data with absolute commands.
func PathData(p *gg.Path) string {
	var sb strings.Builder
	p.Iterate(func(verb gg.PathVerb, c []float64) {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		switch verb {
		case gg.MoveTo:
			sb.WriteByte('M')
		case gg.LineTo:
			sb.WriteByte('L')
		case gg.QuadTo:
			sb.WriteByte('Q')
		case gg.CubicTo:
			sb.WriteByte('C')
		case gg.Close:
			sb.WriteByte('Z')
		}
		for _, v := range c {
			sb.WriteByte(' ')
			sb.WriteString(Num(v))
		}
	})
	return sb.String()
}

// GlyphPath returns the outlines of s shaped with face, with the baseline
// origin at (x, y). Glyphs without an outline are skipped.
func GlyphPath(face text.Face, s string, x, y float64) *gg.Path {
	path := gg.NewPath()
	if face == nil || face.Source() == nil {
		return path
	}
	ex := text.NewOutlineExtractor()
	parsed := face.Source().Parsed()
	for g := range face.Glyphs(s) {
		o, err := ex.ExtractOutline(parsed, g.GID, face.Size())
		if err != nil || o == nil {
			continue
		}
		open := false
		for _, seg := range o.Segments {
			pt := func(i int) (float64, float64) {
				return x + g.X + float64(seg.Points[i].X), y + g.Y + float64(seg.Points[i].Y)
			}
			switch seg.Op {
			case text.OutlineOpMoveTo:
				if open {
					path.Close()
				}
				px, py := pt(0)
				path.MoveTo(px, py)
				open = true
			case text.OutlineOpLineTo:
				px, py := pt(0)
				path.LineTo(px, py)
			case text.OutlineOpQuadTo:
				cx, cy := pt(0)
				px, py := pt(1)
				path.QuadraticTo(cx, cy, px, py)
			case text.OutlineOpCubicTo:
				c1x, c1y := pt(0)
				c2x, c2y := pt(1)
				px, py := pt(2)
				path.CubicTo(c1x, c1y, c2x, c2y, px, py)
			}
		}
		if open {
			path.Close()
		}
	}
	return path
}

// Stops returns the stops sorted by offset with offsets clamped to [0, 1]
// and the end colors repeated at 0 and 1 when missing.
func Stops(stops []recording.GradientStop) []recording.GradientStop {
	if len(stops) == 0 {
		return nil
	}
	out := slices.Clone(stops)
	slices.SortStableFunc(out, func(a, b recording.GradientStop) int {
		switch {
		case a.Offset < b.Offset:
			return -1
		case a.Offset > b.Offset:
			return 1
		}
		return 0
	})
	for i := range out {
		out[i].Offset = min(max(out[i].Offset, 0), 1)
	}
	if out[0].Offset > 0 {
		out = slices.Insert(out, 0, recording.GradientStop{Offset: 0, Color: out[0].Color})
	}
	if last := out[len(out)-1]; last.Offset < 1 {
		out = append(out, recording.GradientStop{Offset: 1, Color: last.Color})
	}
	return out
}

// MeanColor averages the stop colors weighted by the span each covers. It
// stands in for gradients a writer cannot express.
func MeanColor(stops []recording.GradientStop) gg.RGBA {
	stops = Stops(stops)
	switch len(stops) {
	case 0:
		return gg.Transparent
	case 1:
		return stops[0].Color
	}
	var sum gg.RGBA
	total := 0.0
	for i := 1; i < len(stops); i++ {
		w := stops[i].Offset - stops[i-1].Offset
		a, b := stops[i-1].Color, stops[i].Color
		sum.R += w * (a.R + b.R) / 2
		sum.G += w * (a.G + b.G) / 2
		sum.B += w * (a.B + b.B) / 2
		sum.A += w * (a.A + b.A) / 2
		total += w
	}
	if total == 0 {
		return stops[0].Color
	}
	return gg.RGBA{R: sum.R / total, G: sum.G / total, B: sum.B / total, A: sum.A / total}
}

// Crop returns the src rectangle of img with straight alpha. src is relative
// to the image origin; an empty src means the whole image.
func Crop(img image.Image, src recording.Rect) *image.NRGBA {
	b := img.Bounds()
	r := b
	if !src.IsEmpty() {
		r = image.Rect(
			b.Min.X+int(math.Floor(src.MinX)), b.Min.Y+int(math.Floor(src.MinY)),
			b.Min.X+int(math.Ceil(src.MaxX)), b.Min.Y+int(math.Ceil(src.MaxY)),
		).Intersect(b)
	}
	out := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			out.SetNRGBA(x-r.Min.X, y-r.Min.Y, color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA))
		}
	}
	return out
}

// Opaque reports whether every pixel of img is fully opaque.
func Opaque(img *image.NRGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0xff {
			return false
		}
	}
	return true
}
