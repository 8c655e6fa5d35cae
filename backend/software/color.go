// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/gg"
	"github.com/mazznoer/csscolorparser"
)

// ParseColor reads a CSS color value with straight alpha. Display hosts use
// it for window backgrounds.
func ParseColor(css string) (gg.RGBA, error) { return parseColor(css) }

// parseColor reads a CSS color: a keyword, "transparent", hex notation, or
// one of the rgb, hsl and hwb functions.
func parseColor(s string) (gg.RGBA, error) {
	if strings.TrimSpace(s) == "" {
		return gg.RGBA{}, fmt.Errorf("%w: empty color", ErrColor)
	}
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return gg.RGBA{}, fmt.Errorf("%w: %q", ErrColor, s)
	}
	return gg.RGBA{R: unit(c.R), G: unit(c.G), B: unit(c.B), A: unit(c.A)}, nil
}

func unit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// formatColor serializes c the way canvas getters report colors: #rrggbb
// when opaque, rgba() otherwise.
func formatColor(c gg.RGBA) string {
	r := uint8(math.Round(c.R * 255))
	g := uint8(math.Round(c.G * 255))
	b := uint8(math.Round(c.B * 255))
	if c.A >= 1 {
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
	a := strconv.FormatFloat(math.Round(c.A*1000)/1000, 'f', -1, 64)
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, a)
}

// withAlpha scales the alpha of c by a.
func withAlpha(c gg.RGBA, a float64) gg.RGBA {
	c.A *= a
	return c
}
