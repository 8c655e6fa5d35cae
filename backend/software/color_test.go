// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/gg"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want gg.RGBA
	}{
		{"red", gg.RGBA{R: 1, A: 1}},
		{"  Blue ", gg.RGBA{B: 1, A: 1}},
		{"transparent", gg.Transparent},
		{"#0f0", gg.RGBA{G: 1, A: 1}},
		{"#00ff0080", gg.RGBA{G: 1, A: 128.0 / 255}},
		{"rgb(255, 0, 0)", gg.RGBA{R: 1, A: 1}},
		{"rgba(0, 0, 255, 0.5)", gg.RGBA{B: 1, A: 0.5}},
		{"hsla(240, 100%, 50%, 0.25)", gg.RGBA{B: 1, A: 0.25}},
		{"rebeccapurple", gg.RGBA{R: 0x66 / 255.0, G: 0x33 / 255.0, B: 0x99 / 255.0, A: 1}},
		{"hsl(120, 100%, 50%)", gg.RGBA{G: 1, A: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseColor(tt.in)
			if err != nil {
				t.Fatalf("parseColor: %v", err)
			}
			if !closeRGBA(got, tt.want) {
				t.Errorf("parseColor(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseColorInvalid(t *testing.T) {
	for _, in := range []string{"", "#12", "#ggg", "rgb(1,2)", "chartreuse-ish", "hsl(a, b, c)"} {
		if _, err := parseColor(in); !errors.Is(err, ErrColor) {
			t.Errorf("parseColor(%q): err = %v, want ErrColor", in, err)
		}
	}
}

func TestFormatColor(t *testing.T) {
	tests := []struct {
		in   gg.RGBA
		want string
	}{
		{gg.RGBA{R: 1, A: 1}, "#ff0000"},
		{gg.RGBA{R: 1, G: 1, B: 1, A: 1}, "#ffffff"},
		{gg.RGBA{B: 1, A: 0.5}, "rgba(0, 0, 255, 0.5)"},
		{gg.Transparent, "rgba(0, 0, 0, 0)"},
	}
	for _, tt := range tests {
		if got := formatColor(tt.in); got != tt.want {
			t.Errorf("formatColor(%+v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func closeRGBA(a, b gg.RGBA) bool {
	const eps = 1e-3
	return math.Abs(a.R-b.R) < eps && math.Abs(a.G-b.G) < eps && math.Abs(a.B-b.B) < eps && math.Abs(a.A-b.A) < eps
}
