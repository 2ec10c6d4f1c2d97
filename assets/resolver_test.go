package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	return &Resolver{
		Dir:          t.TempDir(),
		ScaleFormat:  "XTLZ-%d.mp3",
		ChromaticDir: "piano",
		ChromaticExt: ".wav",
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestNoteNames(t *testing.T) {
	tests := []struct {
		key  int
		want string
	}{
		{0, "C3"},
		{1, "C#3"},
		{11, "B3"},
		{12, "C4"},
		{22, "A#4"},
		{35, "B5"},
	}
	for _, tt := range tests {
		got, err := NoteName(tt.key)
		if err != nil {
			t.Fatalf("NoteName(%d): %v", tt.key, err)
		}
		if got != tt.want {
			t.Errorf("NoteName(%d) = %q, want %q", tt.key, got, tt.want)
		}
		back, err := NoteKey(got)
		if err != nil || back != tt.key {
			t.Errorf("NoteKey(%q) = %d, %v", got, back, err)
		}
	}

	for _, key := range []int{-1, 36} {
		if _, err := NoteName(key); !errors.Is(err, ErrUnknownKey) {
			t.Errorf("NoteName(%d) err = %v, want ErrUnknownKey", key, err)
		}
	}
	if len(ChromaticNames()) != ChromaticKeys {
		t.Errorf("ChromaticNames has %d entries", len(ChromaticNames()))
	}
}

func TestResolveScale(t *testing.T) {
	r := newResolver(t)
	touch(t, filepath.Join(r.Dir, "XTLZ-3.mp3"))

	path, err := r.ResolveScale(3)
	if err != nil {
		t.Fatalf("ResolveScale(3): %v", err)
	}
	if path != filepath.Join(r.Dir, "XTLZ-3.mp3") {
		t.Errorf("path = %q", path)
	}

	// auto-play keys share the file of their degree
	neg, err := r.ResolveScale(-3)
	if err != nil || neg != path {
		t.Errorf("ResolveScale(-3) = %q, %v", neg, err)
	}

	if _, err := r.ResolveScale(4); !errors.Is(err, ErrMissing) {
		t.Errorf("ResolveScale(4) err = %v, want ErrMissing", err)
	}
	for _, key := range []int{0, 8, -8} {
		if _, err := r.ResolveScale(key); !errors.Is(err, ErrUnknownKey) {
			t.Errorf("ResolveScale(%d) err = %v, want ErrUnknownKey", key, err)
		}
	}
}

func TestResolveChromaticAndMissing(t *testing.T) {
	r := newResolver(t)
	for k := 0; k < ChromaticKeys; k++ {
		if k == 1 || k == 30 {
			continue
		}
		p, err := r.ChromaticPath(k)
		if err != nil {
			t.Fatal(err)
		}
		touch(t, p)
	}

	path, err := r.ResolveChromatic(12)
	if err != nil {
		t.Fatalf("ResolveChromatic(12): %v", err)
	}
	if path != filepath.Join(r.Dir, "piano", "C4.wav") {
		t.Errorf("path = %q", path)
	}
	if _, err := r.ResolveChromatic(1); !errors.Is(err, ErrMissing) {
		t.Errorf("ResolveChromatic(1) err = %v, want ErrMissing", err)
	}

	missing := r.MissingChromatic()
	if len(missing) != 2 || missing[0] != "C#3" || missing[1] != "F#5" {
		t.Errorf("MissingChromatic = %v", missing)
	}
}

func TestDirectoryIsNotAnAsset(t *testing.T) {
	r := newResolver(t)
	if err := os.MkdirAll(filepath.Join(r.Dir, "XTLZ-1.mp3"), 0755); err != nil {
		t.Fatal(err)
	}
	if _, err := r.ResolveScale(1); !errors.Is(err, ErrMissing) {
		t.Errorf("err = %v, want ErrMissing", err)
	}
}
