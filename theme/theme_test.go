package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette()
	if p.Name != "plasma" {
		t.Errorf("Name = %q", p.Name)
	}
	if len(p.Colors) != 15 {
		t.Fatalf("%d colors, want 15", len(p.Colors))
	}
	if p.Colors[0] != (RGB{13, 8, 135}) {
		t.Errorf("first color = %v", p.Colors[0])
	}
}

func TestParseGPL(t *testing.T) {
	text := "GIMP Palette\nName: two\nColumns: 2\n# comment\n0 0 0 black\n255 255 255\nbad line\n"
	p, err := ParseGPL(strings.NewReader(text))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "two" || len(p.Colors) != 2 {
		t.Fatalf("got %+v", p)
	}

	if _, err := ParseGPL(strings.NewReader("GIMP Palette\n")); err == nil {
		t.Error("expected error for empty palette")
	}
}

func TestLookup(t *testing.T) {
	p := &Palette{Colors: []RGB{{0, 0, 0}, {200, 100, 50}}}
	tests := []struct {
		norm float64
		want RGB
	}{
		{-1, RGB{0, 0, 0}},
		{0, RGB{0, 0, 0}},
		{0.5, RGB{100, 50, 25}},
		{1, RGB{200, 100, 50}},
		{2, RGB{200, 100, 50}},
	}
	for _, tt := range tests {
		if got := p.Lookup(tt.norm); got != tt.want {
			t.Errorf("Lookup(%v) = %v, want %v", tt.norm, got, tt.want)
		}
	}

	single := &Palette{Colors: []RGB{{1, 2, 3}}}
	if got := single.Lookup(0.5); got != (RGB{1, 2, 3}) {
		t.Errorf("single color Lookup = %v", got)
	}
}

func TestLoad(t *testing.T) {
	th, err := Load("")
	if err != nil || th.Palette.Name != "plasma" {
		t.Fatalf("Load(\"\") = %v, %v", th, err)
	}
	if got := string(th.Accent()); !strings.HasPrefix(got, "#") || len(got) != 7 {
		t.Errorf("Accent() = %q", got)
	}

	path := filepath.Join(t.TempDir(), "mono.gpl")
	os.WriteFile(path, []byte("GIMP Palette\nName: mono\n10 20 30\n"), 0644)
	th, err = Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(th.FG()) != "#0a141e" {
		t.Errorf("FG() = %q", th.FG())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.gpl")); err == nil {
		t.Error("expected error for missing file")
	}
}
