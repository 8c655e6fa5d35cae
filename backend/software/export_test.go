// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"bytes"
	"encoding/xml"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/canvas/engine"
)

// drawnPages returns a canvas with two 20x10 pages, the first red and the
// second holding a blue rectangle and a line of text.
func drawnPages(t *testing.T, opts ...Option) (*Engine, engine.Handle, []engine.Handle) {
	t.Helper()
	e, c, first := newTestPage(t, 20, 10, opts...)
	call(t, e, first, engine.OpSet, "fillStyle", "red")
	call(t, e, first, engine.OpFillRect, 0, 0, 20, 10)
	second, err := e.Alloc(engine.KindContext, "new", c, 20, 10)
	if err != nil {
		t.Fatal(err)
	}
	call(t, e, second, engine.OpSet, "fillStyle", "blue")
	call(t, e, second, engine.OpFillRect, 2, 2, 8, 6)
	call(t, e, second, engine.OpFillText, "ok", 12, 8)
	return e, c, []engine.Handle{first, second}
}

func TestExportPNG(t *testing.T) {
	e, c, pages := drawnPages(t)
	data, err := e.Export(c, pages, engine.Request{Format: "png"})
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Errorf("size = %v, want 20x10", b.Size())
	}
	if r, g, b, a := img.At(5, 5).RGBA(); r>>8 != 255 || g != 0 || b != 0 || a>>8 != 255 {
		t.Errorf("pixel = %d %d %d %d, want opaque red", r>>8, g>>8, b>>8, a>>8)
	}
}

func TestExportDensity(t *testing.T) {
	e, c, pages := drawnPages(t)
	data, err := e.Export(c, pages, engine.Request{Format: "png", Density: 2})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 40 || cfg.Height != 20 {
		t.Errorf("size = %dx%d, want 40x20", cfg.Width, cfg.Height)
	}
}

func TestExportJPEGMatte(t *testing.T) {
	e, c, pages := drawnPages(t)
	data, err := e.Export(c, pages[1:], engine.Request{Format: "jpg", Quality: 100, Matte: "white"})
	if err != nil {
		t.Fatal(err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	// The corner was transparent and now shows the matte.
	if r, g, b, _ := img.At(0, 0).RGBA(); r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("corner = %d %d %d, want white", r>>8, g>>8, b>>8)
	}
	if _, err := e.Export(c, pages, engine.Request{Format: "jpg", Matte: "no such color"}); !errors.Is(err, ErrColor) {
		t.Errorf("bad matte: err = %v, want ErrColor", err)
	}
}

func TestExportJPEGQualityFloor(t *testing.T) {
	e, c, pages := drawnPages(t)
	encode := func(q int) []byte {
		t.Helper()
		data, err := e.Export(c, pages[1:], engine.Request{Format: "jpg", Quality: q, Matte: "white"})
		if err != nil {
			t.Fatalf("quality %d: %v", q, err)
		}
		return data
	}
	zero, one, high := encode(0), encode(1), encode(92)
	if !bytes.Equal(zero, one) {
		t.Error("quality 0 should encode like quality 1")
	}
	if bytes.Equal(zero, high) {
		t.Error("quality 0 encoded like quality 92")
	}
}

func wellFormed(t *testing.T, data []byte) {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			t.Fatalf("malformed XML: %v\n%s", err, data)
		}
	}
}

func TestExportSVG(t *testing.T) {
	e, c, pages := drawnPages(t)
	data, err := e.Export(c, pages[1:], engine.Request{Format: "svg"})
	if err != nil {
		t.Fatal(err)
	}
	wellFormed(t, data)
	doc := string(data)
	for _, want := range []string{`width="20" height="10"`, `fill="#0000ff"`, `>ok</text>`} {
		if !strings.Contains(doc, want) {
			t.Errorf("document lacks %q:\n%s", want, doc)
		}
	}

	data, err = e.Export(c, pages[1:], engine.Request{Format: "svg", Outline: true})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "<text") {
		t.Error("outlined export kept a text element")
	}
}

func TestExportPDF(t *testing.T) {
	e, c, pages := drawnPages(t)
	data, err := e.Export(c, pages, engine.Request{Format: "pdf"})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-1.7")) {
		t.Errorf("header = %q", data[:min(len(data), 8)])
	}
	if n := bytes.Count(data, []byte("/Type /Page /Parent")); n != 2 {
		t.Errorf("pages = %d, want 2", n)
	}
	if !bytes.Contains(data, []byte("/Count 2")) {
		t.Error("page tree count is not 2")
	}
}

func TestExportWithoutRecording(t *testing.T) {
	e, c, pages := drawnPages(t, WithoutRecording())
	for _, format := range []string{"svg", "pdf"} {
		if _, err := e.Export(c, pages, engine.Request{Format: format}); !errors.Is(err, ErrUnsupported) {
			t.Errorf("%s: err = %v, want ErrUnsupported", format, err)
		}
	}
	if _, err := e.Export(c, pages, engine.Request{Format: "png"}); err != nil {
		t.Errorf("png: %v", err)
	}
}

func TestExportErrors(t *testing.T) {
	e, c, pages := drawnPages(t)
	if _, err := e.Export(c, pages, engine.Request{Format: "gif"}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("gif: err = %v, want ErrUnsupported", err)
	}
	if _, err := e.Export(c, nil, engine.Request{Format: "png"}); !errors.Is(err, ErrArgs) {
		t.Errorf("no pages: err = %v, want ErrArgs", err)
	}
	if _, err := e.Export(pages[0], pages, engine.Request{Format: "png"}); !errors.Is(err, engine.ErrBadHandle) {
		t.Errorf("page as canvas: err = %v, want ErrBadHandle", err)
	}
}

func TestExportSequenceFiles(t *testing.T) {
	e, c, pages := drawnPages(t)
	dir := t.TempDir()
	req := engine.Request{
		Format:   "png",
		Pattern:  filepath.Join(dir, "out", "page-{}.png"),
		Sequence: true,
		Padding:  2,
	}
	data, err := e.Export(c, pages, req)
	if err != nil {
		t.Fatal(err)
	}
	if data != nil {
		t.Errorf("file export returned %d bytes", len(data))
	}
	for _, name := range []string{"page-01.png", "page-02.png"} {
		f, err := os.Open(filepath.Join(dir, "out", name))
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		_, format, err := image.DecodeConfig(f)
		f.Close()
		if err != nil || format != "png" {
			t.Errorf("%s: format %q, err %v", name, format, err)
		}
	}
}

func TestExportSingleFile(t *testing.T) {
	e, c, pages := drawnPages(t)
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if _, err := e.Export(c, pages, engine.Request{Format: "pdf", Pattern: path}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("file is not a PDF")
	}
}

func TestExportAsync(t *testing.T) {
	e, c, pages := drawnPages(t)
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	e.ExportAsync(c, pages, engine.Request{Format: "png"}, func(b []byte, err error) {
		done <- result{b, err}
	})
	select {
	case r := <-done:
		if r.err != nil || len(r.data) == 0 {
			t.Errorf("async export: %d bytes, err %v", len(r.data), r.err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("async export never finished")
	}

	pages[0].Release()
	e.ExportAsync(c, pages, engine.Request{Format: "png"}, func(b []byte, err error) {
		done <- result{b, err}
	})
	if r := <-done; !errors.Is(r.err, engine.ErrBadHandle) {
		t.Errorf("released page: err = %v, want ErrBadHandle", r.err)
	}
}
