// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package engine

// TextMetrics is the result of OpMeasureText. Distances are in user space
// relative to the text origin and the current baseline.
type TextMetrics struct {
	Width                    float64
	ActualBoundingBoxLeft    float64
	ActualBoundingBoxRight   float64
	ActualBoundingBoxAscent  float64
	ActualBoundingBoxDescent float64
	FontBoundingBoxAscent    float64
	FontBoundingBoxDescent   float64
	EmHeightAscent           float64
	EmHeightDescent          float64
	HangingBaseline          float64
	AlphabeticBaseline       float64
	IdeographicBaseline      float64
	Lines                    []TextLine
}

// TextLine describes one laid-out line of a measured string.
type TextLine struct {
	X, Y, Width, Height float64
	Baseline            float64
	StartIndex          int
	EndIndex            int
}

// FontInfo describes one registered font file.
type FontInfo struct {
	Family string
	Weight int
	Style  string
	Width  string
	File   string
}

// FontFamily summarizes the faces registered for a family.
type FontFamily struct {
	Family  string
	Weights []int
	Widths  []string
	Styles  []string
}
