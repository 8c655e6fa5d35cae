// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-text/typesetting/font"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/cases"

	"github.com/gogpu/canvas/engine"
)

// fontFace is one registered font file.
type fontFace struct {
	info    engine.FontInfo
	src     *text.FontSource
	builtin bool
}

// fontLibrary maps CSS family names to font sources. The Go font family
// is always present and cannot be removed.
type fontLibrary struct {
	mu       sync.RWMutex
	faces    []*fontFace
	fallback *text.FontSource
}

// Generic CSS families resolve to the built-in faces.
var generic = map[string]string{
	"serif":      "go",
	"sans-serif": "go",
	"system-ui":  "go",
	"cursive":    "go",
	"fantasy":    "go",
	"monospace":  "go mono",
}

func newFontLibrary() (*fontLibrary, error) {
	lib := &fontLibrary{}
	for _, data := range [][]byte{goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF, gomono.TTF} {
		f, err := loadFace(data, "", "")
		if err != nil {
			return nil, err
		}
		f.builtin = true
		lib.faces = append(lib.faces, f)
	}
	lib.fallback = lib.faces[0].src
	return lib, nil
}

func (l *fontLibrary) setFallback(data []byte) error {
	src, err := text.NewFontSource(data)
	if err != nil {
		return fmt.Errorf("software: fallback font: %w", err)
	}
	l.mu.Lock()
	l.fallback = src
	l.mu.Unlock()
	return nil
}

// foldName normalizes a family name for comparison.
func foldName(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// loadFace parses a font file. alias, when set, replaces the family name
// the font declares.
func loadFace(data []byte, alias, file string) (*fontFace, error) {
	parsed, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	desc := parsed.Describe()
	src, err := text.NewFontSource(data)
	if err != nil {
		return nil, err
	}
	family := desc.Family
	if alias != "" {
		family = alias
	}
	style := "normal"
	if desc.Aspect.Style == font.StyleItalic {
		style = "italic"
	}
	return &fontFace{
		info: engine.FontInfo{
			Family: family,
			Weight: int(desc.Aspect.Weight),
			Style:  style,
			Width:  stretchName(desc.Aspect.Stretch),
			File:   file,
		},
		src: src,
	}, nil
}

var stretchNames = []struct {
	v    font.Stretch
	name string
}{
	{font.StretchUltraCondensed, "ultra-condensed"},
	{font.StretchExtraCondensed, "extra-condensed"},
	{font.StretchCondensed, "condensed"},
	{font.StretchSemiCondensed, "semi-condensed"},
	{font.StretchNormal, "normal"},
	{font.StretchSemiExpanded, "semi-expanded"},
	{font.StretchExpanded, "expanded"},
	{font.StretchExtraExpanded, "extra-expanded"},
	{font.StretchUltraExpanded, "ultra-expanded"},
}

func stretchName(s font.Stretch) string {
	best, dist := "normal", math.Inf(1)
	for _, n := range stretchNames {
		if d := math.Abs(float64(n.v - s)); d < dist {
			best, dist = n.name, d
		}
	}
	return best
}

// use registers font files under alias, or under their own family names
// when alias is empty. A face with the same family and aspect replaces
// the earlier registration.
func (l *fontLibrary) use(alias string, paths []string) ([]engine.FontInfo, error) {
	added := make([]*fontFace, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		f, err := loadFace(data, alias, path)
		if err != nil {
			return nil, fmt.Errorf("software: %s: %w", path, err)
		}
		added = append(added, f)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	infos := make([]engine.FontInfo, 0, len(added))
	for _, f := range added {
		l.faces = slices.DeleteFunc(l.faces, func(old *fontFace) bool {
			return !old.builtin && sameFace(old.info, f.info)
		})
		l.faces = append(l.faces, f)
		infos = append(infos, f.info)
		Logger().Debug("software: font registered", "family", f.info.Family, "weight", f.info.Weight, "style", f.info.Style, "file", f.info.File)
	}
	return infos, nil
}

func sameFace(a, b engine.FontInfo) bool {
	return foldName(a.Family) == foldName(b.Family) && a.Weight == b.Weight && a.Style == b.Style && a.Width == b.Width
}

func (l *fontLibrary) families() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, f := range l.faces {
		key := foldName(f.info.Family)
		if !seen[key] {
			seen[key] = true
			out = append(out, f.info.Family)
		}
	}
	sort.Strings(out)
	return out
}

func (l *fontLibrary) has(family string) bool {
	return l.family(family) != nil
}

// family summarizes the faces of a family, or returns nil.
func (l *fontLibrary) family(name string) *engine.FontFamily {
	key := foldName(name)
	l.mu.RLock()
	defer l.mu.RUnlock()
	var fam *engine.FontFamily
	for _, f := range l.faces {
		if foldName(f.info.Family) != key {
			continue
		}
		if fam == nil {
			fam = &engine.FontFamily{Family: f.info.Family}
		}
		if !slices.Contains(fam.Weights, f.info.Weight) {
			fam.Weights = append(fam.Weights, f.info.Weight)
		}
		if !slices.Contains(fam.Widths, f.info.Width) {
			fam.Widths = append(fam.Widths, f.info.Width)
		}
		if !slices.Contains(fam.Styles, f.info.Style) {
			fam.Styles = append(fam.Styles, f.info.Style)
		}
	}
	if fam != nil {
		sort.Ints(fam.Weights)
		sort.Strings(fam.Widths)
		sort.Strings(fam.Styles)
	}
	return fam
}

// reset drops every user registration.
func (l *fontLibrary) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.faces = slices.DeleteFunc(l.faces, func(f *fontFace) bool { return !f.builtin })
}

// match picks the face for a font request: the first listed family that
// is registered, then the closest style and weight within it.
func (l *fontLibrary) match(spec fontSpec) *text.FontSource {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, name := range append(slices.Clone(spec.families), "go") {
		key := foldName(name)
		if g, ok := generic[key]; ok {
			key = g
		}
		var (
			best  *fontFace
			score = math.Inf(1)
		)
		for _, f := range l.faces {
			if foldName(f.info.Family) != key {
				continue
			}
			s := math.Abs(float64(f.info.Weight - spec.weight))
			if (f.info.Style == "italic") != (spec.style != "normal") {
				s += 1000
			}
			if s < score {
				best, score = f, s
			}
		}
		if best != nil {
			return best.src
		}
	}
	return l.fallback
}

// fontSpec is a parsed CSS font shorthand.
type fontSpec struct {
	css      string
	style    string
	weight   int
	size     float64
	families []string
}

func defaultFont() fontSpec {
	return fontSpec{css: "10px sans-serif", style: "normal", weight: 400, size: 10, families: []string{"sans-serif"}}
}

var fontWeights = map[string]int{
	"normal": 400, "bold": 700, "bolder": 700, "lighter": 300,
}

var fontSizes = map[string]float64{
	"xx-small": 9, "x-small": 10, "small": 13, "medium": 16,
	"large": 18, "x-large": 24, "xx-large": 32, "xxx-large": 48,
}

// parseFont reads "[style] [variant] [weight] [stretch] size[/line-height]
// family[, family]...". It reports false for a malformed value, which
// canvas contexts ignore.
func parseFont(css string, em float64) (fontSpec, bool) {
	spec := fontSpec{css: strings.TrimSpace(css), style: "normal", weight: 400}
	rest := spec.css
	for rest != "" {
		tok, tail, _ := strings.Cut(rest, " ")
		lower := strings.ToLower(tok)
		switch {
		case lower == "italic" || lower == "oblique":
			spec.style = lower
		case lower == "normal" || lower == "small-caps" || strings.HasSuffix(lower, "condensed") || strings.HasSuffix(lower, "expanded"):
		case fontWeights[lower] != 0:
			spec.weight = fontWeights[lower]
		default:
			if w, err := strconv.Atoi(lower); err == nil && w >= 1 && w <= 1000 {
				spec.weight = w
				break
			}
			sizeTok, _, _ := strings.Cut(lower, "/")
			size, ok := parseFontSize(sizeTok, em)
			if !ok {
				return spec, false
			}
			spec.size = size
			for _, fam := range strings.Split(tail, ",") {
				fam = strings.Trim(strings.TrimSpace(fam), `"'`)
				if fam != "" {
					spec.families = append(spec.families, fam)
				}
			}
			return spec, len(spec.families) > 0
		}
		rest = strings.TrimLeft(tail, " ")
	}
	return spec, false
}

func parseFontSize(s string, em float64) (float64, bool) {
	if v, ok := fontSizes[s]; ok {
		return v, true
	}
	units := []struct {
		suffix string
		scale  float64
	}{{"px", 1}, {"pt", 4.0 / 3.0}, {"pc", 16}, {"in", 96}, {"cm", 96 / 2.54}, {"mm", 96 / 25.4}, {"rem", 16}, {"em", em}, {"%", em / 100}}
	for _, u := range units {
		if num, ok := strings.CutSuffix(s, u.suffix); ok {
			v, err := strconv.ParseFloat(num, 64)
			if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
				return 0, false
			}
			return v * u.scale, true
		}
	}
	return 0, false
}

// fontsHandle is a view of the engine's shared font library.
type fontsHandle struct {
	base
	lib *fontLibrary
}

func (h *fontsHandle) call(_ *Engine, op engine.Op, a *args) (any, error) {
	switch op {
	case engine.OpFontUse:
		alias := a.str()
		v := a.any()
		paths, ok := v.([]string)
		if !ok && a.err == nil {
			a.fail(v, "[]string")
		}
		if a.err != nil {
			return nil, a.err
		}
		return h.lib.use(alias, paths)
	case engine.OpFontFamilies:
		return h.lib.families(), nil
	case engine.OpFontHas:
		return h.lib.has(a.str()), nil
	case engine.OpFontFamily:
		return h.lib.family(a.str()), nil
	case engine.OpFontReset:
		h.lib.reset()
		return nil, nil
	}
	return nil, unknownOp(h, op)
}
