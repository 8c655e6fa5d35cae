// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pdf

import (
	"bytes"
	"compress/zlib"
	"errors"
	"image"
	"image/color"
	"io"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/recording"
)

func square() *gg.Path {
	p := gg.NewPath()
	p.MoveTo(10, 10)
	p.LineTo(20, 10)
	p.QuadraticTo(20, 20, 10, 20)
	p.Close()
	return p
}

var black = recording.SolidBrush{Color: gg.RGBA{A: 1}}

func write(t *testing.T, w *Writer) string {
	t.Helper()
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	return buf.String()
}

// contents inflates every FlateDecode content stream in doc.
func contents(t *testing.T, doc string) []string {
	t.Helper()
	re := regexp.MustCompile(`(?s)<< /Filter /FlateDecode /Length (\d+) >>\nstream\n`)
	var out []string
	for _, m := range re.FindAllStringSubmatchIndex(doc, -1) {
		n, _ := strconv.Atoi(doc[m[2]:m[3]])
		zr, err := zlib.NewReader(strings.NewReader(doc[m[1] : m[1]+n]))
		if err != nil {
			t.Fatalf("zlib: %v", err)
		}
		data, err := io.ReadAll(zr)
		if err != nil {
			t.Fatalf("inflate: %v", err)
		}
		out = append(out, string(data))
	}
	return out
}

func TestRegistered(t *testing.T) {
	be, err := recording.NewBackend("pdf")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	if _, ok := be.(recording.WriterBackend); !ok {
		t.Error("pdf backend does not implement WriterBackend")
	}
}

func TestEmptyDocument(t *testing.T) {
	var buf bytes.Buffer
	if _, err := New().WriteTo(&buf); !errors.Is(err, ErrNoPages) {
		t.Errorf("WriteTo without pages = %v, want ErrNoPages", err)
	}
}

func TestPages(t *testing.T) {
	w := New()
	for _, size := range [][2]int{{100, 50}, {30, 40}, {0, 0}} {
		if err := w.Begin(size[0], size[1]); err != nil {
			t.Fatal(err)
		}
		w.FillPath(square(), black, recording.FillRuleNonZero)
		if err := w.End(); err != nil {
			t.Fatal(err)
		}
	}
	doc := write(t, w)
	if !strings.HasPrefix(doc, "%PDF-1.7\n") || !strings.HasSuffix(doc, "%%EOF\n") {
		t.Fatal("missing header or trailer")
	}
	for _, want := range []string{"/Count 3", "/MediaBox [0 0 100 50]", "/MediaBox [0 0 30 40]", "/MediaBox [0 0 1 1]"} {
		if !strings.Contains(doc, want) {
			t.Errorf("missing %s", want)
		}
	}
	streams := contents(t, doc)
	if len(streams) != 3 {
		t.Fatalf("content streams = %d, want 3", len(streams))
	}
	if !strings.HasPrefix(streams[0], "1 0 0 -1 0 50 cm\n") {
		t.Errorf("page 1 does not flip y:\n%s", streams[0])
	}
	if !strings.Contains(streams[0], "10 10 m\n20 10 l\n20 16.6667 16.6667 20 10 20 c\nh\nf\n") {
		t.Errorf("path not written as expected:\n%s", streams[0])
	}
}

func TestXrefOffsets(t *testing.T) {
	w := New()
	_ = w.Begin(10, 10)
	w.FillRect(recording.NewRect(0, 0, 5, 5), black)
	_ = w.End()
	doc := write(t, w)

	start := strings.LastIndex(doc, "startxref\n")
	xref, err := strconv.Atoi(strings.Fields(doc[start+len("startxref\n"):])[0])
	if err != nil || !strings.HasPrefix(doc[xref:], "xref\n") {
		t.Fatalf("startxref does not point at the xref table")
	}
	lines := strings.Split(doc[xref:], "\n")
	count, _ := strconv.Atoi(strings.Fields(lines[1])[1])
	for i := 1; i < count; i++ {
		off, _ := strconv.Atoi(strings.Fields(lines[2+i])[0])
		if want := strconv.Itoa(i) + " 0 obj\n"; !strings.HasPrefix(doc[off:], want) {
			t.Errorf("xref entry %d points at %q", i, doc[off:min(off+12, len(doc))])
		}
	}
}

func TestPaint(t *testing.T) {
	stops := []recording.GradientStop{
		{Offset: 0, Color: gg.RGBA{R: 1, A: 1}},
		{Offset: 0.5, Color: gg.RGBA{G: 1, A: 1}},
		{Offset: 1, Color: gg.RGBA{B: 1, A: 1}},
	}
	tests := []struct {
		name    string
		brush   recording.Brush
		content []string
		doc     []string
	}{
		{
			name:    "solid",
			brush:   recording.SolidBrush{Color: gg.RGBA{R: 1, A: 1}},
			content: []string{"1 0 0 rg\n"},
		},
		{
			name:    "alpha",
			brush:   recording.SolidBrush{Color: gg.RGBA{B: 1, A: 0.25}},
			content: []string{"/GS1 gs\n", "0 0 1 rg\n"},
			doc:     []string{"/GS1 << /Type /ExtGState /ca 0.25 /CA 1 >>"},
		},
		{
			name:    "linear",
			brush:   recording.LinearGradientBrush{Start: gg.Pt(0, 0), End: gg.Pt(10, 0), Stops: stops},
			content: []string{"/Pattern cs\n/P1 scn\n"},
			doc:     []string{"/ShadingType 2 /Coords [0 0 10 0]", "/FunctionType 3", "/Bounds [0.5]", "/Matrix [1 0 0 -1 0 40]"},
		},
		{
			name:    "radial",
			brush:   recording.RadialGradientBrush{Center: gg.Pt(5, 5), Focus: gg.Pt(5, 5), EndRadius: 5, Stops: stops[:2]},
			content: []string{"/P1 scn\n"},
			doc:     []string{"/ShadingType 3 /Coords [5 5 0 5 5 5]", "/FunctionType 2 /Domain [0 1] /C0 [1 0 0] /C1 [0 1 0]"},
		},
		{
			name:    "sweep",
			brush:   recording.SweepGradientBrush{Stops: stops[1:2]},
			content: []string{"0 1 0 rg\n"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New()
			_ = w.Begin(40, 40)
			w.FillPath(square(), tt.brush, recording.FillRuleEvenOdd)
			_ = w.End()
			doc := write(t, w)
			content := contents(t, doc)[0]
			if !strings.Contains(content, "f*\n") {
				t.Errorf("even-odd fill missing:\n%s", content)
			}
			for _, want := range tt.content {
				if !strings.Contains(content, want) {
					t.Errorf("content missing %q:\n%s", want, content)
				}
			}
			for _, want := range tt.doc {
				if !strings.Contains(doc, want) {
					t.Errorf("document missing %q", want)
				}
			}
		})
	}
}

func TestStrokeAndClip(t *testing.T) {
	w := New()
	_ = w.Begin(40, 40)
	w.Save()
	w.SetClip(square(), recording.FillRuleNonZero)
	w.StrokePath(square(), black, recording.Stroke{
		Width: 2, Cap: recording.LineCapSquare, Join: recording.LineJoinRound,
		MiterLimit: 10, DashPattern: []float64{3, 1}, DashOffset: 0.5,
	})
	w.Restore()
	_ = w.End()
	content := contents(t, write(t, w))[0]
	for _, want := range []string{"W\nn\n", "2 w\n", "2 J\n", "1 j\n", "10 M\n", "[3 1] 0.5 d\n", "S\n"} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q:\n%s", want, content)
		}
	}
	if q, Q := strings.Count(content, "q\n"), strings.Count(content, "Q\n"); q != Q {
		t.Errorf("unbalanced q/Q: %d vs %d", q, Q)
	}
}

func TestImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(1, 1, color.NRGBA{R: 255, A: 100})
	w := New()
	_ = w.Begin(40, 40)
	w.DrawImage(img, recording.NewRect(0, 0, 3, 2), recording.NewRect(4, 6, 30, 20), recording.DefaultImageOptions())
	_ = w.End()
	doc := write(t, w)
	for _, want := range []string{"/Width 3 /Height 2 /ColorSpace /DeviceRGB", "/ColorSpace /DeviceGray", "/SMask", "/Interpolate true", "/XObject << /Im1"} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
	if content := contents(t, doc)[0]; !strings.Contains(content, "30 0 0 -20 4 26 cm\n/Im1 Do\n") {
		t.Errorf("image placement wrong:\n%s", content)
	}
}

func TestTextWithoutFace(t *testing.T) {
	w := New()
	_ = w.Begin(40, 40)
	w.DrawText("a(b)", 5, 20, nil, black)
	_ = w.End()
	doc := write(t, w)
	if !strings.Contains(doc, "/BaseFont /Helvetica") {
		t.Error("font resource missing")
	}
	if content := contents(t, doc)[0]; !strings.Contains(content, `(a\(b\)) Tj`) {
		t.Errorf("text not escaped:\n%s", content)
	}
}

func TestLiteral(t *testing.T) {
	tests := []struct{ in, want string }{
		{"abc", "(abc)"},
		{`a\b`, `(a\\b)`},
		{"é", "(\xe9)"},
		{"日本", "(??)"},
		{"a\nb", `(a\nb)`},
	}
	for _, tt := range tests {
		if got := literal(tt.in); got != tt.want {
			t.Errorf("literal(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
