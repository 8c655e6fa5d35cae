package canvas

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/gogpu/canvas/engine"
)

const fontsFactory = "NewFontLibrary"

// FontInfo describes one registered font file.
type FontInfo = engine.FontInfo

// FontFamily summarizes the faces of a family.
type FontFamily = engine.FontFamily

// FontLibrary registers font files with the engine so pages can use them in
// SetFont.
type FontLibrary struct {
	resource
}

// NewFontLibrary returns the engine's font library. A nil engine selects
// engine.Default.
func NewFontLibrary(eng engine.Engine) (*FontLibrary, error) {
	eng, err := resolveEngine(eng)
	if err != nil {
		return nil, err
	}
	res, err := alloc(eng, engine.KindFontLibrary, "new", fontsFactory)
	if err != nil {
		return nil, err
	}
	lib := &FontLibrary{resource: res}
	track(lib, lib.resource)
	return lib, nil
}

// Register adds fonts under the family names stored in the files. Patterns
// may contain glob wildcards.
func (lib *FontLibrary) Register(patterns ...string) ([]FontInfo, error) {
	return lib.use("", patterns)
}

// RegisterFamily adds fonts under alias, regardless of their own names.
func (lib *FontLibrary) RegisterFamily(alias string, patterns ...string) ([]FontInfo, error) {
	if alias == "" {
		return nil, fmt.Errorf("%w: empty family alias", ErrInvalidArgument)
	}
	return lib.use(alias, patterns)
}

// RegisterMapping registers each alias with its patterns and returns the
// results per alias.
func (lib *FontLibrary) RegisterMapping(m map[string][]string) (map[string][]FontInfo, error) {
	aliases := make([]string, 0, len(m))
	for alias := range m {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	out := make(map[string][]FontInfo, len(m))
	for _, alias := range aliases {
		info, err := lib.RegisterFamily(alias, m[alias]...)
		if err != nil {
			return out, err
		}
		out[alias] = info
	}
	return out, nil
}

func (lib *FontLibrary) use(alias string, patterns []string) ([]FontInfo, error) {
	paths, err := expandGlobs(patterns)
	if err != nil {
		return nil, err
	}
	return as[[]FontInfo](lib.invoke(fontsFactory, engine.OpFontUse, alias, paths))
}

// expandGlobs resolves wildcard patterns. Patterns without wildcards are
// kept as given so the engine can report missing files.
func expandGlobs(patterns []string) ([]string, error) {
	var out []string
	for _, pat := range patterns {
		matches, err := filepath.Glob(pat)
		if err != nil {
			return nil, fmt.Errorf("%w: font pattern %q: %w", ErrInvalidArgument, pat, err)
		}
		if len(matches) == 0 {
			out = append(out, pat)
			continue
		}
		out = append(out, matches...)
	}
	return out, nil
}

// Families lists registered and system families.
func (lib *FontLibrary) Families() ([]string, error) {
	return as[[]string](lib.invoke(fontsFactory, engine.OpFontFamilies))
}

// Has reports whether family is available.
func (lib *FontLibrary) Has(family string) (bool, error) {
	return as[bool](lib.invoke(fontsFactory, engine.OpFontHas, family))
}

// Family describes family, or returns nil when it is unknown.
func (lib *FontLibrary) Family(family string) (*FontFamily, error) {
	return as[*FontFamily](lib.invoke(fontsFactory, engine.OpFontFamily, family))
}

// Reset removes every registered font.
func (lib *FontLibrary) Reset() error {
	_, err := lib.invoke(fontsFactory, engine.OpFontReset)
	return err
}
