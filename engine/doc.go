// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package engine defines the boundary between the canvas document model and
// the rendering engine that owns pixels, paths, fonts and codecs.
//
// The canvas package never inspects engine state. Every public object owns
// exactly one [Handle] and reaches the engine through two calls:
//
//	h, err := eng.Alloc(engine.KindPath, "from_svg", "M0 0 L10 10")
//	bounds, err := eng.Call(h, engine.OpBounds)
//
// Optional capabilities are separate interfaces discovered by type assertion:
//
//   - [Exporter]: encodes or writes pages (blocking and callback forms)
//   - [Snapshotter]: rasterizes a page for display hosts
//   - [Display]: runs a blocking window loop for a page
//
// # Matrices
//
// Transforms cross this boundary in engine basis: the six affine terms in
// column-major order [a c e b d f]. Engines may return nine terms (a trailing
// perspective row); callers keep the first six.
//
// # Registry
//
// Engines register themselves from init functions:
//
//	func init() {
//	    engine.Register("software", func() (engine.Engine, error) { return New(), nil })
//	}
//
// [Default] returns the highest priority registered engine.
package engine
