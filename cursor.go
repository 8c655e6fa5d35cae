package canvas

import "github.com/gogpu/gpucontext"

// cursors maps CSS cursor keywords to the nearest native shape.
var cursors = map[string]gpucontext.CursorShape{
	"default":       gpucontext.CursorDefault,
	"auto":          gpucontext.CursorDefault,
	"none":          gpucontext.CursorNone,
	"context-menu":  gpucontext.CursorDefault,
	"help":          gpucontext.CursorDefault,
	"pointer":       gpucontext.CursorPointer,
	"progress":      gpucontext.CursorWait,
	"wait":          gpucontext.CursorWait,
	"cell":          gpucontext.CursorCrosshair,
	"crosshair":     gpucontext.CursorCrosshair,
	"text":          gpucontext.CursorText,
	"vertical-text": gpucontext.CursorText,
	"alias":         gpucontext.CursorPointer,
	"copy":          gpucontext.CursorPointer,
	"move":          gpucontext.CursorMove,
	"no-drop":       gpucontext.CursorNotAllowed,
	"not-allowed":   gpucontext.CursorNotAllowed,
	"grab":          gpucontext.CursorMove,
	"grabbing":      gpucontext.CursorMove,
	"all-scroll":    gpucontext.CursorMove,
	"col-resize":    gpucontext.CursorResizeEW,
	"row-resize":    gpucontext.CursorResizeNS,
	"n-resize":      gpucontext.CursorResizeNS,
	"s-resize":      gpucontext.CursorResizeNS,
	"ns-resize":     gpucontext.CursorResizeNS,
	"e-resize":      gpucontext.CursorResizeEW,
	"w-resize":      gpucontext.CursorResizeEW,
	"ew-resize":     gpucontext.CursorResizeEW,
	"ne-resize":     gpucontext.CursorResizeNESW,
	"sw-resize":     gpucontext.CursorResizeNESW,
	"nesw-resize":   gpucontext.CursorResizeNESW,
	"nw-resize":     gpucontext.CursorResizeNWSE,
	"se-resize":     gpucontext.CursorResizeNWSE,
	"nwse-resize":   gpucontext.CursorResizeNWSE,
	"zoom-in":       gpucontext.CursorCrosshair,
	"zoom-out":      gpucontext.CursorCrosshair,
}

// CursorShape returns the native shape for a CSS cursor keyword.
func CursorShape(css string) (gpucontext.CursorShape, bool) {
	s, ok := cursors[css]
	return s, ok
}
