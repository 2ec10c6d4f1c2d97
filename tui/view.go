package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"xtlz-piano/assets"
	"xtlz-piano/play"
	"xtlz-piano/theme"
	"xtlz-piano/widgets"
)

var solfege = [assets.ScaleDegrees]string{"do", "re", "mi", "fa", "sol", "la", "ti"}

var menuHelp = []widgets.KeySection{
	{Title: "Menu", Keys: []widgets.KeyBinding{
		{Key: "1", Desc: "scale mode (keys 1-7)"},
		{Key: "2", Desc: "piano mode (36 keys, C3-B5)"},
		{Key: "3", Desc: "auto-play a notation file"},
		{Key: "4 / q", Desc: "exit"},
	}},
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	th := m.opts.Theme

	// Styles
	headerStyle := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	statusStyle := lipgloss.NewStyle().Foreground(th.Success())
	warnStyle := lipgloss.NewStyle().Foreground(th.Warning())

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(headerStyle.Render(m.header()))
	out.WriteString("\n\n")

	switch m.screen {
	case ScreenMenu:
		out.WriteString(widgets.RenderKeyHelp(menuHelp))
	case ScreenPlay:
		out.WriteString(m.playView())
	case ScreenPrompt:
		out.WriteString("Notation file to auto-play (enter to start, esc to cancel)\n\n")
		out.WriteString(m.input.View())
	case ScreenAutoplay:
		out.WriteString(m.autoplayView())
	}
	out.WriteString("\n\n")

	if m.status != "" {
		out.WriteString(statusStyle.Render(m.status))
		out.WriteString("\n")
	}
	for _, line := range m.log {
		out.WriteString(warnStyle.Render(line))
		out.WriteString("\n")
	}
	out.WriteString(dimStyle.Render(m.help()))

	return out.String()
}

func (m Model) header() string {
	reg := m.opts.Registry
	th := m.opts.Theme

	name := "menu"
	switch m.screen {
	case ScreenPlay:
		if m.ctrl != nil {
			name = m.ctrl.Mode().String()
		}
	case ScreenPrompt, ScreenAutoplay:
		name = "auto-play"
	}

	midiStatus := "midi off"
	if m.opts.DeviceMgr != nil {
		midiStatus = fmt.Sprintf("midi:%d", len(m.devices))
	}

	return fmt.Sprintf("xtlz-piano  %-9s voices:%-3d sustain %s  %s",
		name, reg.Live(), widgets.RenderLamp(th.RGB(theme.RoleSuccess), reg.Sustain()), midiStatus)
}

func (m Model) playView() string {
	if m.ctrl == nil {
		return ""
	}
	th := m.opts.Theme
	active := map[int]bool{}
	for _, k := range m.opts.Registry.Active() {
		active[k] = true
	}

	styles := widgets.KeyStyles{
		White:  lipgloss.NewStyle().Foreground(th.FG()),
		Black:  lipgloss.NewStyle().Foreground(th.Muted()),
		Active: lipgloss.NewStyle().Foreground(th.BG()).Background(th.Active()).Bold(true),
	}

	var keys []widgets.PianoKey
	perRow := 12
	if m.ctrl.Mode() == play.ModeScale {
		perRow = assets.ScaleDegrees
		for d := 1; d <= assets.ScaleDegrees; d++ {
			keys = append(keys, widgets.PianoKey{
				Note:   solfege[d-1],
				Label:  strconv.Itoa(d),
				Active: active[d],
			})
		}
	} else {
		for k, name := range assets.ChromaticNames() {
			keys = append(keys, widgets.PianoKey{
				Note:   name,
				Label:  play.Binding(k),
				Black:  strings.Contains(name, "#"),
				Active: active[k],
			})
		}
	}

	var out strings.Builder
	if m.keymap != "" {
		out.WriteString(m.keymap)
		if !strings.HasSuffix(m.keymap, "\n") {
			out.WriteString("\n")
		}
		out.WriteString("\n")
	}
	out.WriteString(widgets.RenderKeyboard(keys, perRow, styles))
	return out.String()
}

func (m Model) autoplayView() string {
	sym := m.opts.Theme.Symbols

	var trail strings.Builder
	for _, st := range m.steps {
		switch {
		case st.Symbol.Rest:
			trail.WriteRune(sym.StepRest)
		case st.Played:
			trail.WriteRune(sym.StepNote)
		default:
			trail.WriteRune(sym.StepMissing)
		}
	}
	if m.running {
		trail.WriteRune(sym.StepPlayhead)
	}

	current := ""
	if n := len(m.steps); n > 0 {
		current = "  now: " + m.steps[n-1].Symbol.String()
	}
	return fmt.Sprintf("step %d/%d%s\n%s", len(m.steps), m.total, current, trail.String())
}

func (m Model) help() string {
	switch m.screen {
	case ScreenPlay:
		if m.ctrl != nil && m.ctrl.Mode() == play.ModeChromatic {
			return "z-m / q-u / Q-U: notes  space: sustain  esc: menu"
		}
		return "1-7: notes  esc: menu"
	case ScreenAutoplay:
		return "esc: stop"
	case ScreenPrompt:
		return "enter: play  esc: back"
	}
	return "ctrl+c: quit"
}
