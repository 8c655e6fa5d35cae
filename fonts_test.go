package canvas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/canvas/engine"
	"github.com/gogpu/canvas/engine/enginetest"
)

func TestFontLibraryRegister(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.ttf", "b.ttf", "c.otf"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	eng := enginetest.New()
	lib, err := NewFontLibrary(eng)
	if err != nil {
		t.Fatal(err)
	}

	infos, err := lib.Register(filepath.Join(dir, "*.ttf"), "/no/such/font.ttf")
	if err != nil {
		t.Fatalf("Register() = %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("Register() returned %d fonts, want 2 matches plus the literal path", len(infos))
	}
	if infos[2].File != "/no/such/font.ttf" {
		t.Errorf("literal pattern = %q", infos[2].File)
	}

	infos, err = lib.RegisterFamily("Body", filepath.Join(dir, "c.otf"))
	if err != nil || len(infos) != 1 || infos[0].Family != "Body" {
		t.Errorf("RegisterFamily() = %+v, %v", infos, err)
	}

	byAlias, err := lib.RegisterMapping(map[string][]string{
		"Zeta":  {filepath.Join(dir, "a.ttf")},
		"Alpha": {filepath.Join(dir, "b.ttf")},
	})
	if err != nil || len(byAlias) != 2 {
		t.Fatalf("RegisterMapping() = %v, %v", byAlias, err)
	}
	calls := eng.Calls(engine.OpFontUse)
	if calls[2].Args[0] != "Alpha" || calls[3].Args[0] != "Zeta" {
		t.Error("RegisterMapping did not register aliases in sorted order")
	}

	if _, err := lib.RegisterFamily(""); err == nil {
		t.Error("RegisterFamily with an empty alias succeeded")
	}
	if _, err := lib.Register("[bad"); err == nil {
		t.Error("Register with a malformed pattern succeeded")
	}
}

func TestFontLibraryQueries(t *testing.T) {
	lib, err := NewFontLibrary(enginetest.New())
	if err != nil {
		t.Fatal(err)
	}
	if fams, err := lib.Families(); err != nil || fams == nil {
		t.Errorf("Families() = %v, %v", fams, err)
	}
	if ok, err := lib.Has("Nope"); err != nil || ok {
		t.Errorf("Has() = %v, %v", ok, err)
	}
	if fam, err := lib.Family("Nope"); err != nil || fam != nil {
		t.Errorf("Family() = %v, %v", fam, err)
	}
	if err := lib.Reset(); err != nil {
		t.Errorf("Reset() = %v", err)
	}
}
