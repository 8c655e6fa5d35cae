// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glfw

import (
	glfw3 "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gpucontext"
)

// standardCursor picks the GLFW cursor for a shape. GLFW 3.3 has no
// diagonal, wait or not-allowed cursors, so those use the closest shape.
func standardCursor(s gpucontext.CursorShape) glfw3.StandardCursor {
	switch s {
	case gpucontext.CursorPointer:
		return glfw3.HandCursor
	case gpucontext.CursorText:
		return glfw3.IBeamCursor
	case gpucontext.CursorCrosshair, gpucontext.CursorMove,
		gpucontext.CursorResizeNWSE, gpucontext.CursorResizeNESW:
		return glfw3.CrosshairCursor
	case gpucontext.CursorResizeNS:
		return glfw3.VResizeCursor
	case gpucontext.CursorResizeEW:
		return glfw3.HResizeCursor
	}
	return glfw3.ArrowCursor
}

// cursors caches standard cursors for one window.
type cursors struct {
	win     *glfw3.Window
	current gpucontext.CursorShape
	created map[glfw3.StandardCursor]*glfw3.Cursor
}

func newCursors(win *glfw3.Window) *cursors {
	return &cursors{win: win, created: make(map[glfw3.StandardCursor]*glfw3.Cursor)}
}

// set applies s when it differs from the current shape.
func (c *cursors) set(s gpucontext.CursorShape) {
	if s == c.current {
		return
	}
	c.current = s
	if s == gpucontext.CursorNone {
		c.win.SetInputMode(glfw3.CursorMode, glfw3.CursorHidden)
		return
	}
	c.win.SetInputMode(glfw3.CursorMode, glfw3.CursorNormal)
	std := standardCursor(s)
	cur, ok := c.created[std]
	if !ok {
		cur = glfw3.CreateStandardCursor(std)
		c.created[std] = cur
	}
	c.win.SetCursor(cur)
}

func (c *cursors) destroy() {
	for _, cur := range c.created {
		cur.Destroy()
	}
	clear(c.created)
}
