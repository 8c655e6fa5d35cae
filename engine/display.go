// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package engine

import "github.com/gogpu/gpucontext"

// Display runs a native window for a page.
//
// Display blocks until the window closes. The host calls dispatch once per
// batch of input events (and once with an empty Payload before the first
// frame), and animate once per tick while the returned FPS is non-zero. Both
// callbacks run on the goroutine that called Display.
type Display interface {
	Display(page Handle, background string, dispatch DispatchFunc, animate AnimateFunc) error
}

// DispatchFunc consumes one event batch and returns the live window state.
type DispatchFunc func(Payload) State

// AnimateFunc advances one animation frame.
type AnimateFunc func() FrameState

// Payload is one batch of window events. A nil field means that kind of
// event did not fire in this batch.
type Payload struct {
	Position   *Position
	Size       *Size
	Fullscreen *bool
	Input      *Input
	Key        *Key
	Mouse      *Mouse
	Wheel      *Wheel
}

// Empty reports whether no event fired.
func (p Payload) Empty() bool {
	return p.Position == nil && p.Size == nil && p.Fullscreen == nil &&
		p.Input == nil && p.Key == nil && p.Mouse == nil && p.Wheel == nil
}

// Position is the window origin in screen coordinates.
type Position struct{ X, Y int }

// Size is the window content size.
type Size struct{ Width, Height int }

// Input is committed text input.
type Input struct {
	Char      rune
	Modifiers gpucontext.Modifiers
}

// Key is a physical key transition.
type Key struct {
	// Event is "keydown" or "keyup".
	Event     string
	Key       string
	Code      string
	Repeat    bool
	Modifiers gpucontext.Modifiers
}

// Mouse lists pointer events sharing one position.
type Mouse struct {
	// Events are DOM names: mousemove, mousedown, mouseup, click, dblclick.
	Events    []string
	X, Y      float64
	Button    gpucontext.Button
	Modifiers gpucontext.Modifiers
}

// Wheel is a scroll delta.
type Wheel struct {
	DeltaX, DeltaY float64
}

// State is the window state pulled by the host after every dispatch.
type State struct {
	Page       Handle
	Title      string
	Active     bool
	Fullscreen bool
	// FPS is zero when the window is not animating.
	FPS           float64
	Width, Height int
	X, Y          int
	Cursor        gpucontext.CursorShape
}

// FrameState is returned by AnimateFunc.
type FrameState struct {
	Page   Handle
	Active bool
	FPS    float64
}
