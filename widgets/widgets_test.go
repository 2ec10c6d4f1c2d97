package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestRenderKeyHelp(t *testing.T) {
	got := RenderKeyHelp([]KeySection{
		{Title: "Play", Keys: []KeyBinding{{"1-7", "scale notes"}, {"esc", "back"}}},
		{Keys: []KeyBinding{{"space", "sustain"}}},
	})
	want := "Play\n  1-7          scale notes\n  esc          back\n  space        sustain"
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
}

func TestRenderKeyboard(t *testing.T) {
	keys := []PianoKey{
		{Note: "C4", Label: "q"},
		{Note: "C#4", Label: "2", Black: true},
		{Note: "D4", Label: "w", Active: true},
	}
	plain := KeyStyles{White: lipgloss.NewStyle(), Black: lipgloss.NewStyle(), Active: lipgloss.NewStyle()}

	got := RenderKeyboard(keys, 2, plain)
	lines := strings.Split(got, "\n")
	if len(lines) != 4 {
		t.Fatalf("%d lines, want 4:\n%s", len(lines), got)
	}
	if lines[0] != "C4  C#4" || lines[1] != "q   2" {
		t.Errorf("first row = %q / %q", lines[0], lines[1])
	}
	if lines[2] != "D4" || lines[3] != "w" {
		t.Errorf("second row = %q / %q", lines[2], lines[3])
	}

	if one := RenderKeyboard(keys, 0, plain); strings.Count(one, "\n") != 1 {
		t.Errorf("perRow 0 should give a single row:\n%s", one)
	}
}

func TestRenderLamp(t *testing.T) {
	if !strings.Contains(RenderLamp([3]uint8{1, 2, 3}, true), "■") {
		t.Error("lit lamp not solid")
	}
	if !strings.Contains(RenderLegendItem([3]uint8{}, false, "pedal", "sustain"), "□ pedal - sustain") {
		t.Error("legend item malformed")
	}
}
