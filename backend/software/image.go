// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/canvas/engine"
)

// imageHandle holds decoded image pixels.
type imageHandle struct {
	base
	mu  sync.Mutex
	img image.Image
}

func (h *imageHandle) image() image.Image {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.img
}

func (h *imageHandle) call(_ *Engine, op engine.Op, a *args) (any, error) {
	if op != engine.OpSetData {
		return nil, unknownOp(h, op)
	}
	v := a.any()
	data, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: setData needs []byte, got %T", ErrArgs, v)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		Logger().Debug("software: image decode failed", "bytes", len(data), "err", err)
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	h.mu.Lock()
	h.img = img
	h.mu.Unlock()
	b := img.Bounds()
	return engine.ImageInfo{Width: b.Dx(), Height: b.Dy(), Format: format}, nil
}
