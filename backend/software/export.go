// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gogpu/gg/recording"
	"golang.org/x/image/draw"

	"github.com/gogpu/canvas/engine"

	// Vector writers used by PDF and SVG export.
	_ "github.com/gogpu/canvas/vector/pdf"
	_ "github.com/gogpu/canvas/vector/svg"
)

// Snapshot implements engine.Snapshotter. The image is premultiplied RGBA.
func (e *Engine) Snapshot(h engine.Handle) (image.Image, error) {
	p, ok := h.(*page)
	if !ok || p.dead() {
		return nil, engine.ErrBadHandle
	}
	return p.snapshot(), nil
}

// Export implements engine.Exporter. With a Pattern it writes files and
// returns nil; otherwise it returns the encoded bytes of the first page,
// or of every page for PDF.
func (e *Engine) Export(canvas engine.Handle, pages []engine.Handle, req engine.Request) ([]byte, error) {
	pgs, err := livePages(canvas, pages)
	if err != nil {
		return nil, err
	}
	return e.export(pgs, req)
}

// ExportAsync implements engine.Exporter. done runs on a new goroutine.
func (e *Engine) ExportAsync(canvas engine.Handle, pages []engine.Handle, req engine.Request, done func([]byte, error)) {
	pgs, err := livePages(canvas, pages)
	go func() {
		var b []byte
		if err == nil {
			b, err = e.export(pgs, req)
		}
		if err != nil {
			Logger().Warn("software: export failed", "format", req.Format, "pages", len(pages), "err", err)
		}
		done(b, err)
	}()
}

func livePages(canvas engine.Handle, pages []engine.Handle) ([]*page, error) {
	if c, ok := canvas.(*canvasHandle); !ok || c.dead() {
		return nil, engine.ErrBadHandle
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages to export", ErrArgs)
	}
	out := make([]*page, len(pages))
	for i, h := range pages {
		p, ok := h.(*page)
		if !ok || p.dead() {
			return nil, engine.ErrBadHandle
		}
		out[i] = p
	}
	return out, nil
}

func (e *Engine) export(pgs []*page, req engine.Request) ([]byte, error) {
	if req.Format == "pdf" {
		data, err := e.encodeVector(pgs, req)
		if err != nil {
			return nil, err
		}
		return deliver(data, req.Pattern)
	}
	if !req.Sequence {
		data, err := e.encodePage(pgs[0], req)
		if err != nil {
			return nil, err
		}
		return deliver(data, req.Pattern)
	}
	for i, p := range pgs {
		data, err := e.encodePage(p, req)
		if err != nil {
			return nil, err
		}
		if _, err := deliver(data, req.Path(i+1)); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// deliver writes data to path, creating parent directories, or returns it
// when path is empty.
func deliver(data []byte, path string) ([]byte, error) {
	if path == "" {
		return data, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, err
	}
	Logger().Debug("software: wrote export", "path", path, "bytes", len(data))
	return nil, nil
}

func (e *Engine) encodePage(p *page, req engine.Request) ([]byte, error) {
	switch req.Format {
	case "png", "jpg":
		return encodeRaster(p.snapshot(), req)
	case "svg":
		return e.encodeVector([]*page{p}, req)
	}
	return nil, fmt.Errorf("%w: format %q", ErrUnsupported, req.Format)
}

// encodeRaster applies density and matte, then encodes.
func encodeRaster(img *image.RGBA, req engine.Request) ([]byte, error) {
	if d := req.Density; d > 0 && d != 1 {
		b := img.Bounds()
		w := max(1, int(float64(b.Dx())*d+0.5))
		h := max(1, int(float64(b.Dy())*d+0.5))
		scaled := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, draw.Src, nil)
		img = scaled
	}
	if req.Matte != "" {
		c, err := parseColor(req.Matte)
		if err != nil {
			return nil, err
		}
		bg := image.NewRGBA(img.Bounds())
		draw.Draw(bg, bg.Bounds(), image.NewUniform(c.Color()), image.Point{}, draw.Src)
		draw.Draw(bg, bg.Bounds(), img, img.Bounds().Min, draw.Over)
		img = bg
	}

	var buf bytes.Buffer
	switch req.Format {
	case "jpg":
		// The encoder's scale starts at 1.
		q := min(max(req.Quality, 1), 100)
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return nil, err
		}
	default:
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// encodeVector replays the display lists of pgs into the writer registered
// for req.Format. PDF gets one page per entry.
func (e *Engine) encodeVector(pgs []*page, req engine.Request) ([]byte, error) {
	if !e.record {
		return nil, fmt.Errorf("%w: %s export needs recording", ErrUnsupported, req.Format)
	}
	be, err := recording.NewBackend(req.Format)
	if err != nil {
		return nil, err
	}
	wb, ok := be.(recording.WriterBackend)
	if !ok {
		return nil, fmt.Errorf("%w: %s writer cannot stream", ErrUnsupported, req.Format)
	}
	var matte *recording.SolidBrush
	if req.Matte != "" {
		c, err := parseColor(req.Matte)
		if err != nil {
			return nil, err
		}
		matte = &recording.SolidBrush{Color: c}
	}
	for _, p := range pgs {
		if err := p.replay(wb, req.Outline, matte); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if _, err := wb.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// replay plays the page's display list into be. Text draws take their face
// and outline from the page's text runs, in order; outline or transformed
// text is emitted as filled paths.
func (p *page) replay(be recording.Backend, outline bool, matte *recording.SolidBrush) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := be.Begin(p.w, p.h); err != nil {
		return err
	}
	if matte != nil {
		be.FillRect(recording.NewRect(0, 0, float64(p.w), float64(p.h)), *matte)
	}
	rec := p.rec.FinishRecording()
	res := rec.Resources()
	next := 0
	for _, cmd := range rec.Commands() {
		switch c := cmd.(type) {
		case recording.SaveCommand:
			be.Save()
		case recording.RestoreCommand:
			be.Restore()
		case recording.SetTransformCommand:
			be.SetTransform(c.Matrix)
		case recording.SetClipCommand:
			be.SetClip(res.GetPath(c.Path), c.Rule)
		case recording.ClearClipCommand:
			be.ClearClip()
		case recording.FillPathCommand:
			be.FillPath(res.GetPath(c.Path), res.GetBrush(c.Brush), c.Rule)
		case recording.StrokePathCommand:
			be.StrokePath(res.GetPath(c.Path), res.GetBrush(c.Brush), c.Stroke)
		case recording.FillRectCommand:
			be.FillRect(c.Rect, res.GetBrush(c.Brush))
		case recording.DrawImageCommand:
			be.DrawImage(res.GetImage(c.Image), c.SrcRect, c.DstRect, c.Options)
		case recording.DrawTextCommand:
			brush := res.GetBrush(c.Brush)
			if next >= len(p.texts) {
				be.DrawText(c.Text, c.X, c.Y, nil, brush)
				continue
			}
			run := p.texts[next]
			next++
			if outline || !run.upright {
				be.FillPath(run.outline, brush, recording.FillRuleNonZero)
				continue
			}
			be.DrawText(c.Text, c.X, c.Y, run.face, brush)
		}
	}
	return be.End()
}
