package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PianoKey is one key of the on-screen keyboard
type PianoKey struct {
	Note   string // "C#4"
	Label  string // computer key bound to it
	Black  bool
	Active bool // currently sounding
}

// KeyStyles colours the on-screen keyboard
type KeyStyles struct {
	White  lipgloss.Style
	Black  lipgloss.Style
	Active lipgloss.Style
}

const cellWidth = 4

// RenderKeyboard lays keys out perRow to a row, two lines per row: note
// names over their bound keys. Sounding keys use the Active style.
func RenderKeyboard(keys []PianoKey, perRow int, styles KeyStyles) string {
	if perRow <= 0 {
		perRow = len(keys)
	}

	var rows []string
	for start := 0; start < len(keys); start += perRow {
		end := min(start+perRow, len(keys))

		var notes, labels strings.Builder
		for _, k := range keys[start:end] {
			style := styles.White
			if k.Black {
				style = styles.Black
			}
			if k.Active {
				style = styles.Active
			}
			notes.WriteString(style.Render(fmt.Sprintf("%-*s", cellWidth, k.Note)))
			labels.WriteString(style.Render(fmt.Sprintf("%-*s", cellWidth, k.Label)))
		}
		rows = append(rows, strings.TrimRight(notes.String(), " "), strings.TrimRight(labels.String(), " "))
	}
	return strings.Join(rows, "\n")
}
