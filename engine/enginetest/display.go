// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package enginetest

import (
	"github.com/gogpu/canvas/engine"
)

// Display is a scripted engine.Display. Display runs Script with the
// callbacks it was given and returns Err.
type Display struct {
	Script func(dispatch engine.DispatchFunc, animate engine.AnimateFunc)
	Err    error

	// Page and Background record the arguments of the last Display call.
	Page       engine.Handle
	Background string
	Opened     int
}

// Display implements engine.Display.
func (d *Display) Display(page engine.Handle, background string, dispatch engine.DispatchFunc, animate engine.AnimateFunc) error {
	d.Opened++
	d.Page = page
	d.Background = background
	if d.Script != nil {
		d.Script(dispatch, animate)
	}
	return d.Err
}

var _ engine.Display = (*Display)(nil)
