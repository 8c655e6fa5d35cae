// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package engine

import (
	"fmt"
	"regexp"
	"strconv"
)

// Request is a normalized export request. The canvas package builds it after
// validation; engines treat every field as already checked.
type Request struct {
	// Format is one of "png", "jpg", "pdf", "svg".
	Format string

	// Quality is 0-100. Only lossy formats use it.
	Quality int

	// Density is the pixel ratio applied to raster output.
	Density float64

	// Outline converts text to paths in vector output.
	Outline bool

	// Matte is a CSS color painted behind transparent pixels, or "".
	Matte string

	// Pattern is the destination filename. Empty for in-memory export.
	Pattern string

	// Sequence reports that Pattern holds a page number placeholder.
	Sequence bool

	// Padding is the zero-padded width of the page number.
	Padding int
}

var seqToken = regexp.MustCompile(`\{(\d*)\}`)

// SequenceToken reports whether name contains a "{}" style page placeholder
// and returns the padding it requests: the digit count inside the braces, or
// -1 for a bare "{}", which callers resolve to the digit count of the
// number of pages.
func SequenceToken(name string) (ok bool, padding int) {
	m := seqToken.FindStringSubmatch(name)
	if m == nil {
		return false, 0
	}
	if m[1] == "" {
		return true, -1
	}
	return true, len(m[1])
}

// Path returns the filename for the n-th exported page (1-based). Without a
// sequence it returns Pattern unchanged.
func (r Request) Path(n int) string {
	if !r.Sequence {
		return r.Pattern
	}
	num := strconv.Itoa(n)
	if r.Padding > 0 {
		num = fmt.Sprintf("%0*d", r.Padding, n)
	}
	done := false
	return seqToken.ReplaceAllStringFunc(r.Pattern, func(s string) string {
		if done {
			return s
		}
		done = true
		return num
	})
}

// Paths expands Path for count pages.
func (r Request) Paths(count int) []string {
	if !r.Sequence {
		return []string{r.Pattern}
	}
	out := make([]string, count)
	for i := range out {
		out[i] = r.Path(i + 1)
	}
	return out
}
