// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package engine

import (
	"errors"
	"image"
)

// Errors shared by engine implementations.
var (
	// ErrNotAvailable is returned by Default when no engine is registered.
	ErrNotAvailable = errors.New("engine: no engine available")

	// ErrUnknownVariant is returned by Alloc for a constructor the engine lacks.
	ErrUnknownVariant = errors.New("engine: unknown constructor variant")

	// ErrUnknownOp is returned by Call for an operation the handle does not support.
	ErrUnknownOp = errors.New("engine: unsupported operation")

	// ErrBadHandle is returned when a handle was not minted by the engine,
	// or has already been released.
	ErrBadHandle = errors.New("engine: invalid handle")
)

// Handle is an opaque token for engine-owned state.
//
// Release frees the state. Owners call it exactly once.
type Handle interface {
	Release()
}

// Kind selects the family of a constructor passed to Engine.Alloc.
type Kind uint8

// Resource kinds.
const (
	KindCanvas Kind = iota
	KindContext
	KindGradient
	KindPattern
	KindPath
	KindImage
	KindFontLibrary
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindCanvas:
		return "canvas"
	case KindContext:
		return "context"
	case KindGradient:
		return "gradient"
	case KindPattern:
		return "pattern"
	case KindPath:
		return "path"
	case KindImage:
		return "image"
	case KindFontLibrary:
		return "fontlibrary"
	default:
		return "unknown"
	}
}

// Engine allocates handles and runs named operations on them.
//
// Call returns the operation's result verbatim. Operations that mint a new
// resource (path boolean ops, Simplify) return a fresh Handle which the caller
// then owns.
type Engine interface {
	Alloc(kind Kind, variant string, args ...any) (Handle, error)
	Call(h Handle, op Op, args ...any) (any, error)
}

// Exporter encodes pages. Export blocks; ExportAsync returns immediately and
// invokes done exactly once from an engine goroutine.
//
// When req.Pattern is empty the encoded bytes are returned. Otherwise each
// page is written to req.Path(n) and the returned slice is nil.
type Exporter interface {
	Export(canvas Handle, pages []Handle, req Request) ([]byte, error)
	ExportAsync(canvas Handle, pages []Handle, req Request, done func([]byte, error))
}

// Snapshotter rasterizes a page so that hosts without direct engine access
// can present it.
type Snapshotter interface {
	Snapshot(page Handle) (image.Image, error)
}

// Rect is an axis-aligned rectangle in user space.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Width returns Right-Left.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns Bottom-Top.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Pixels is unpremultiplied RGBA data with a tight stride.
type Pixels struct {
	Width, Height int
	Data          []byte
}

// ImageInfo describes a decoded image.
type ImageInfo struct {
	Width, Height int
	Format        string
}
