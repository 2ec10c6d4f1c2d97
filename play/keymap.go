package play

import "xtlz-piano/assets"

// Mode selects the key map and note-key scheme
type Mode int

const (
	ModeScale Mode = iota
	ModeChromatic
)

func (m Mode) String() string {
	switch m {
	case ModeScale:
		return "scale"
	case ModeChromatic:
		return "piano"
	}
	return "unknown"
}

// Special keys, as bubbletea names them
const (
	KeyExit    = "esc"
	KeySustain = " "
)

// Chromatic layout, one row per octave, C to B.
// Lower row: tracker style on z/s row. Middle: q row with digits for sharps.
// Upper: the middle row shifted.
var chromaticRows = [3][12]string{
	{"z", "s", "x", "d", "c", "v", "g", "b", "h", "n", "j", "m"},
	{"q", "2", "w", "3", "e", "r", "5", "t", "6", "y", "7", "u"},
	{"Q", "@", "W", "#", "E", "R", "%", "T", "^", "Y", "&", "U"},
}

var (
	scaleKeys     = map[string]int{}
	chromaticKeys = map[string]int{}
)

func init() {
	for d := 1; d <= assets.ScaleDegrees; d++ {
		scaleKeys[string(rune('0'+d))] = d
	}
	for octave, row := range chromaticRows {
		for i, k := range row {
			chromaticKeys[k] = octave*12 + i
		}
	}
}

// KeyFor maps a key press to a note-key in the given mode
func KeyFor(mode Mode, key string) (int, bool) {
	var k int
	var ok bool
	switch mode {
	case ModeScale:
		k, ok = scaleKeys[key]
	case ModeChromatic:
		k, ok = chromaticKeys[key]
	}
	return k, ok
}

// Binding returns the key bound to a chromatic note-key
func Binding(noteKey int) string {
	if noteKey < 0 || noteKey >= assets.ChromaticKeys {
		return ""
	}
	return chromaticRows[noteKey/12][noteKey%12]
}

// MIDI note number of C3, chromatic note-key 0
const midiC3 = 48

// C major white keys from C4, one per scale degree
var scaleMIDI = [assets.ScaleDegrees]uint8{60, 62, 64, 65, 67, 69, 71}

// KeyForMIDINote maps a MIDI note number to a note-key in the given mode.
// Chromatic mode covers C3..B5; scale mode uses the white keys C4..B4.
func KeyForMIDINote(mode Mode, note uint8) (int, bool) {
	switch mode {
	case ModeChromatic:
		k := int(note) - midiC3
		if k >= 0 && k < assets.ChromaticKeys {
			return k, true
		}
	case ModeScale:
		for i, n := range scaleMIDI {
			if n == note {
				return i + 1, true
			}
		}
	}
	return 0, false
}
