// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package svg

import (
	"bytes"
	"encoding/xml"
	"errors"
	"image"
	"image/color"
	"io"
	"strings"
	"testing"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/recording"
)

func render(t *testing.T, draw func(w *Writer)) string {
	t.Helper()
	w := New()
	if err := w.Begin(100, 50); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	draw(w)
	if err := w.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	out := buf.String()
	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		if _, err := dec.Token(); err != nil {
			if !errors.Is(err, io.EOF) {
				t.Fatalf("invalid XML: %v\n%s", err, out)
			}
			break
		}
	}
	return out
}

func square() *gg.Path {
	p := gg.NewPath()
	p.MoveTo(10, 10)
	p.LineTo(20, 10)
	p.LineTo(20, 20)
	p.Close()
	return p
}

func TestRegistered(t *testing.T) {
	be, err := recording.NewBackend("svg")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	if _, ok := be.(recording.WriterBackend); !ok {
		t.Error("svg backend does not implement WriterBackend")
	}
}

func TestDocument(t *testing.T) {
	out := render(t, func(*Writer) {})
	for _, want := range []string{`width="100"`, `height="50"`, `viewBox="0 0 100 50"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in\n%s", want, out)
		}
	}
}

func TestFill(t *testing.T) {
	tests := []struct {
		name  string
		brush recording.Brush
		rule  recording.FillRule
		want  []string
		none  bool
	}{
		{
			name:  "solid",
			brush: recording.SolidBrush{Color: gg.RGBA{R: 1, A: 1}},
			want:  []string{`fill="#ff0000"`, `d="M 10 10 L 20 10 L 20 20 Z"`},
		},
		{
			name:  "translucent evenodd",
			brush: recording.SolidBrush{Color: gg.RGBA{G: 1, A: 0.5}},
			rule:  recording.FillRuleEvenOdd,
			want:  []string{`fill="#00ff00"`, `fill-opacity="0.5"`, `fill-rule="evenodd"`},
		},
		{
			name: "linear",
			brush: recording.LinearGradientBrush{
				Start: gg.Pt(0, 0), End: gg.Pt(100, 0),
				Stops: []recording.GradientStop{{Offset: 0, Color: gg.RGBA{A: 1}}, {Offset: 1, Color: gg.RGBA{R: 1, G: 1, B: 1, A: 1}}},
			},
			want: []string{`<linearGradient id="grad1"`, `x2="100"`, `fill="url(#grad1)"`, `<stop offset="1" stop-color="#ffffff"/>`},
		},
		{
			name: "radial reflect",
			brush: recording.RadialGradientBrush{
				Center: gg.Pt(50, 25), Focus: gg.Pt(50, 25), EndRadius: 20,
				Stops:  []recording.GradientStop{{Offset: 0.5, Color: gg.RGBA{B: 1, A: 1}}},
				Extend: recording.ExtendReflect,
			},
			want: []string{`<radialGradient id="grad1"`, `r="20"`, `spreadMethod="reflect"`},
		},
		{
			name:  "transparent",
			brush: recording.SolidBrush{Color: gg.Transparent},
			none:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, func(w *Writer) { w.FillPath(square(), tt.brush, tt.rule) })
			if tt.none {
				if strings.Contains(out, "<path") {
					t.Errorf("transparent fill emitted a path:\n%s", out)
				}
				return
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("missing %s in\n%s", want, out)
				}
			}
		})
	}
}

func TestStroke(t *testing.T) {
	out := render(t, func(w *Writer) {
		w.StrokePath(square(), recording.SolidBrush{Color: gg.RGBA{A: 1}}, recording.Stroke{
			Width: 3, Cap: recording.LineCapRound, Join: recording.LineJoinBevel,
			DashPattern: []float64{4, 2}, DashOffset: 1,
		})
	})
	for _, want := range []string{
		`fill="none"`, `stroke="#000000"`, `stroke-width="3"`, `stroke-linecap="round"`,
		`stroke-linejoin="bevel"`, `stroke-dasharray="4 2"`, `stroke-dashoffset="1"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in\n%s", want, out)
		}
	}
}

func TestClipGroups(t *testing.T) {
	out := render(t, func(w *Writer) {
		w.Save()
		w.SetClip(square(), recording.FillRuleNonZero)
		w.SetClip(square(), recording.FillRuleEvenOdd)
		w.FillRect(recording.NewRect(0, 0, 100, 50), recording.SolidBrush{Color: gg.RGBA{A: 1}})
		w.Restore()
		w.SetClip(square(), recording.FillRuleNonZero)
	})
	if n := strings.Count(out, "<clipPath"); n != 3 {
		t.Errorf("clipPath count = %d, want 3", n)
	}
	if open, closed := strings.Count(out, "<g "), strings.Count(out, "</g>"); open != closed {
		t.Errorf("unbalanced groups: %d open, %d closed", open, closed)
	}
	if !strings.Contains(out, `clip-rule="evenodd"`) {
		t.Error("even-odd clip rule lost")
	}
}

func TestImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	out := render(t, func(w *Writer) {
		w.DrawImage(img, recording.NewRect(0, 0, 2, 2), recording.NewRect(5, 5, 20, 20),
			recording.ImageOptions{Interpolation: recording.InterpolationNearest, Alpha: 1})
	})
	for _, want := range []string{`href="data:image/png;base64,`, `image-rendering="pixelated"`, `width="20"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in\n%s", want, out)
		}
	}
}

func TestTextEscaped(t *testing.T) {
	out := render(t, func(w *Writer) {
		w.DrawText(`a<b & "c"`, 5, 30, nil, recording.SolidBrush{Color: gg.RGBA{A: 1}})
	})
	if !strings.Contains(out, "a&lt;b &amp; &#34;c&#34;</text>") {
		t.Errorf("text not escaped:\n%s", out)
	}
}

func TestBeginResets(t *testing.T) {
	w := New()
	_ = w.Begin(10, 10)
	w.FillRect(recording.NewRect(0, 0, 5, 5), recording.SolidBrush{Color: gg.RGBA{A: 1}})
	_ = w.End()
	_ = w.Begin(20, 20)
	_ = w.End()
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "<rect") {
		t.Error("second Begin kept the first page's content")
	}
}
