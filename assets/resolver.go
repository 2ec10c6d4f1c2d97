// Package assets maps note-keys onto the audio files that back them.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

var (
	// ErrMissing means the file for a note-key does not exist
	ErrMissing = errors.New("asset missing")
	// ErrUnknownKey means the note-key is outside the addressing scheme
	ErrUnknownKey = errors.New("unknown note-key")
)

// ChromaticKeys is the number of chromatic piano note-keys (C3..B5)
const ChromaticKeys = 36

// ScaleDegrees is the number of scale-mode note-keys
const ScaleDegrees = 7

const firstOctave = 3

var pitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName returns the canonical name of a chromatic note-key (0 = C3, 35 = B5)
func NoteName(key int) (string, error) {
	if key < 0 || key >= ChromaticKeys {
		return "", fmt.Errorf("chromatic key %d: %w", key, ErrUnknownKey)
	}
	return pitchClasses[key%12] + strconv.Itoa(firstOctave+key/12), nil
}

// NoteKey is the inverse of NoteName
func NoteKey(name string) (int, error) {
	for k := 0; k < ChromaticKeys; k++ {
		if n, _ := NoteName(k); n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("note %q: %w", name, ErrUnknownKey)
}

// ChromaticNames lists all 36 note names in key order
func ChromaticNames() []string {
	names := make([]string, ChromaticKeys)
	for k := range names {
		names[k], _ = NoteName(k)
	}
	return names
}

// Resolver builds file paths from note-keys and checks they exist
type Resolver struct {
	Dir          string // base directory
	ScaleFormat  string // printf format taking the scale degree, e.g. "XTLZ-%d.mp3"
	ChromaticDir string // subdirectory of Dir holding the generated piano set
	ChromaticExt string // extension of the generated files, e.g. ".wav"
}

// ScalePath returns the file path for a scale degree without checking it exists.
// Negative degrees address the same file as their positive counterpart.
func (r *Resolver) ScalePath(key int) (string, error) {
	degree := key
	if degree < 0 {
		degree = -degree
	}
	if degree < 1 || degree > ScaleDegrees {
		return "", fmt.Errorf("scale key %d: %w", key, ErrUnknownKey)
	}
	return filepath.Join(r.Dir, fmt.Sprintf(r.ScaleFormat, degree)), nil
}

// ChromaticPath returns the file path for a chromatic note-key without checking it exists
func (r *Resolver) ChromaticPath(key int) (string, error) {
	name, err := NoteName(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(r.Dir, r.ChromaticDir, name+r.ChromaticExt), nil
}

// ResolveScale returns the path for a scale-mode or auto-play note-key,
// or ErrMissing if the file does not exist.
func (r *Resolver) ResolveScale(key int) (string, error) {
	path, err := r.ScalePath(key)
	if err != nil {
		return "", err
	}
	return exists(path)
}

// ResolveChromatic returns the path for a chromatic note-key,
// or ErrMissing if the file does not exist.
func (r *Resolver) ResolveChromatic(key int) (string, error) {
	path, err := r.ChromaticPath(key)
	if err != nil {
		return "", err
	}
	return exists(path)
}

// MissingChromatic lists the note names whose generated file is absent
func (r *Resolver) MissingChromatic() []string {
	var missing []string
	for k := 0; k < ChromaticKeys; k++ {
		if _, err := r.ResolveChromatic(k); err != nil {
			name, _ := NoteName(k)
			missing = append(missing, name)
		}
	}
	return missing
}

func exists(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%s: %w", path, ErrMissing)
	}
	return path, nil
}
