// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package software is the CPU rendering engine for canvas.
//
// Every page is painted twice as it is drawn: into a gg.Context for pixels
// and into a recording.Recorder for vector output. PNG and JPEG exports
// encode the pixels; PDF and SVG exports replay the recording into the
// vector backends registered under "pdf" and "svg".
//
// Importing the package registers the engine under the name "software":
//
//	import _ "github.com/gogpu/canvas/backend/software"
//
// All handles minted by the engine are safe for use from one goroutine at
// a time per page; export runs under the page lock and may proceed in the
// background while other pages are drawn.
package software
