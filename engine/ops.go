// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package engine

// Op names an engine operation.
type Op string

// Property access. Args: name [, value].
const (
	OpGet Op = "get"
	OpSet Op = "set"
)

// Context state and transforms. Matrices are [6]float64 in engine basis;
// OpGetTransform returns []float64 with at least six terms.
const (
	OpSave           Op = "save"
	OpRestore        Op = "restore"
	OpReset          Op = "reset"
	OpResetSize      Op = "resetSize"
	OpTransform      Op = "transform"
	OpSetTransform   Op = "setTransform"
	OpGetTransform   Op = "getTransform"
	OpResetTransform Op = "resetTransform"
	OpTranslate      Op = "translate"
	OpScale          Op = "scale"
	OpRotate         Op = "rotate"
)

// Path construction, shared by contexts and paths.
const (
	OpBeginPath        Op = "beginPath"
	OpMoveTo           Op = "moveTo"
	OpLineTo           Op = "lineTo"
	OpBezierCurveTo    Op = "bezierCurveTo"
	OpQuadraticCurveTo Op = "quadraticCurveTo"
	OpArc              Op = "arc"
	OpArcTo            Op = "arcTo"
	OpEllipse          Op = "ellipse"
	OpRect             Op = "rect"
	OpRoundRect        Op = "roundRect"
	OpClosePath        Op = "closePath"
)

// Drawing on contexts. Path arguments are a Handle or nil for the current path.
const (
	OpFill            Op = "fill"
	OpStroke          Op = "stroke"
	OpClip            Op = "clip"
	OpIsPointInPath   Op = "isPointInPath"
	OpIsPointInStroke Op = "isPointInStroke"
	OpFillRect        Op = "fillRect"
	OpStrokeRect      Op = "strokeRect"
	OpClearRect       Op = "clearRect"
	OpFillText        Op = "fillText"
	OpStrokeText      Op = "strokeText"
	OpMeasureText     Op = "measureText"
	OpDrawImage       Op = "drawImage"
	OpGetImageData    Op = "getImageData"
	OpPutImageData    Op = "putImageData"
)

// Gradients and patterns.
const (
	OpAddColorStop Op = "addColorStop"
)

// Paths.
const (
	OpAddPath  Op = "addPath"
	OpBounds   Op = "bounds"
	OpContains Op = "contains"
	OpPathOp   Op = "op"
	OpSimplify Op = "simplify"
	OpSVG      Op = "svg"
)

// Images.
const (
	OpSetData Op = "setData"
)

// Font library.
const (
	OpFontUse      Op = "use"
	OpFontFamilies Op = "families"
	OpFontHas      Op = "has"
	OpFontFamily   Op = "family"
	OpFontReset    Op = "reset"
)

// Boolean path operation names passed with OpPathOp.
const (
	PathUnion      = "union"
	PathIntersect  = "intersect"
	PathDifference = "difference"
	PathXor        = "xor"
	PathComplement = "complement"
)
