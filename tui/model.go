package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"xtlz-piano/assets"
	"xtlz-piano/autoplay"
	"xtlz-piano/debug"
	"xtlz-piano/engine"
	"xtlz-piano/midi"
	"xtlz-piano/play"
	"xtlz-piano/theme"
)

// Screen is what the console is currently showing
type Screen int

const (
	ScreenMenu Screen = iota
	ScreenPlay
	ScreenPrompt
	ScreenAutoplay
)

const maxLog = 6

// Options wires the model to the rest of the program
type Options struct {
	Registry  *engine.Registry
	Resolver  *assets.Resolver
	DeviceMgr *midi.DeviceManager // nil when MIDI is disabled
	Theme     *theme.Theme
	Step      time.Duration

	KeymapFile   string // shown verbatim in piano mode if present
	NotationFile string // default answer for the auto-play prompt
	Notices      []string
}

type Model struct {
	opts     Options
	screen   Screen
	ctrl     *play.Controller
	input    textinput.Model
	keymap   string
	status   string
	log      []string
	devices  []string
	quitting bool

	// auto-play
	run     int
	cancel  context.CancelFunc
	stepCh  <-chan autoplay.Step
	steps   []autoplay.Step
	total   int
	running bool
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

type NoteMsg midi.Event

// StepMsg carries one processed notation symbol of auto-play run Run
type StepMsg struct {
	Run  int
	Step autoplay.Step
}

// AutoplayDoneMsg is sent when the scheduler of run Run returns
type AutoplayDoneMsg struct {
	Run   int
	Stats autoplay.Stats
}

func NewModel(opts Options) Model {
	in := textinput.New()
	in.Placeholder = "score.txt"
	in.Prompt = "file: "
	in.CharLimit = 512
	in.Width = 48

	m := Model{opts: opts, input: in}
	for _, n := range opts.Notices {
		m.logf("%s", n)
	}
	return m
}

// Screen returns the current screen
func (m Model) Screen() Screen {
	return m.screen
}

// Mode returns the play mode while on the play screen
func (m Model) Mode() (play.Mode, bool) {
	if m.screen != ScreenPlay || m.ctrl == nil {
		return 0, false
	}
	return m.ctrl.Mode(), true
}

func ListenForUpdates(reg *engine.Registry) tea.Cmd {
	return func() tea.Msg {
		<-reg.Updates()
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func ListenForNotes(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-deviceMgr.Notes()
		if !ok {
			return nil
		}
		return NoteMsg(ev)
	}
}

func listenForSteps(run int, ch <-chan autoplay.Step) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return nil
		}
		return StepMsg{Run: run, Step: st}
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.opts.Registry)}
	if m.opts.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.opts.DeviceMgr), ListenForNotes(m.opts.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		switch m.screen {
		case ScreenMenu:
			return m.updateMenu(msg)
		case ScreenPlay:
			return m.updatePlay(msg)
		case ScreenPrompt:
			return m.updatePrompt(msg)
		case ScreenAutoplay:
			if msg.String() == play.KeyExit {
				m.stopAutoplay()
				m.logf("auto-play stopped")
				m.screen = ScreenMenu
			}
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.opts.Registry)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		switch event.Type {
		case midi.DeviceConnected:
			m.devices = append(m.devices, event.ID)
			m.logf("MIDI connected: %s", event.ID)
		case midi.DeviceDisconnected:
			for i, id := range m.devices {
				if id == event.ID {
					m.devices = append(m.devices[:i:i], m.devices[i+1:]...)
					break
				}
			}
			m.logf("MIDI disconnected: %s", event.ID)
		}
		if m.opts.DeviceMgr == nil {
			return m, nil
		}
		return m, ListenForDevices(m.opts.DeviceMgr)

	case NoteMsg:
		m.handleNote(midi.Event(msg))
		if m.opts.DeviceMgr == nil {
			return m, nil
		}
		return m, ListenForNotes(m.opts.DeviceMgr)

	case StepMsg:
		if msg.Run != m.run {
			return m, nil
		}
		m.steps = append(m.steps, msg.Step)
		if msg.Step.Err != nil {
			m.logf("step %d: %v", msg.Step.Index+1, msg.Step.Err)
		}
		return m, listenForSteps(m.run, m.stepCh)

	case AutoplayDoneMsg:
		if msg.Run != m.run {
			return m, nil
		}
		m.running = false
		m.cancel = nil
		m.stepCh = nil
		// a note triggered just before cancellation was seen may still sound
		if m.screen != ScreenPlay {
			m.opts.Registry.StopAll()
		}
		if !msg.Stats.Cancelled {
			m.logf("auto-play done: %d notes, %d skipped", msg.Stats.Played, msg.Stats.Skipped)
			m.screen = ScreenMenu
		}
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "1":
		m.enterPlay(play.ModeScale)
	case "2":
		m.enterPlay(play.ModeChromatic)
	case "3":
		m.screen = ScreenPrompt
		m.input.SetValue(m.opts.NotationFile)
		m.input.CursorEnd()
		return m, m.input.Focus()
	case "4", "q":
		return m.quit()
	default:
		m.status = fmt.Sprintf("no menu entry %q", msg.String())
	}
	return m, nil
}

func (m *Model) enterPlay(mode play.Mode) {
	m.ctrl = play.New(m.opts.Registry, m.opts.Resolver, mode)
	m.screen = ScreenPlay
	m.status = ""
	m.keymap = ""
	if mode == play.ModeChromatic && m.opts.KeymapFile != "" {
		if data, err := os.ReadFile(m.opts.KeymapFile); err == nil {
			m.keymap = string(data)
		}
	}
	debug.Log("tui", "enter %s mode", mode)
}

func (m Model) updatePlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	out := m.ctrl.HandleKey(msg.String())
	m.report(out)
	if out.Action == play.ActionExit {
		m.ctrl = nil
		m.screen = ScreenMenu
	}
	return m, nil
}

func (m *Model) handleNote(ev midi.Event) {
	if m.screen != ScreenPlay {
		return
	}
	if is, down := ev.IsPedal(); is {
		m.report(m.ctrl.HandlePedal(down))
		return
	}
	if ev.Type == midi.NoteOn {
		m.report(m.ctrl.HandleNote(ev.Note, ev.Velocity))
	}
}

func (m *Model) report(out play.Outcome) {
	switch out.Action {
	case play.ActionPlay:
		m.status = "♪ " + out.Label
	case play.ActionSkipped:
		m.logf("%s: %v", out.Label, out.Err)
	case play.ActionSustain:
		if out.Sustain {
			m.status = "sustain on"
		} else {
			m.status = "sustain off"
		}
	case play.ActionInvalid:
		m.status = out.Err.Error()
	case play.ActionExit:
		m.status = ""
	}
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		m.screen = ScreenMenu
		return m, nil
	case tea.KeyEnter:
		m.input.Blur()
		return m.startAutoplay(m.input.Value())
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) startAutoplay(path string) (tea.Model, tea.Cmd) {
	seq, err := autoplay.Load(path)
	if err != nil {
		m.logf("%v", err)
		m.screen = ScreenMenu
		return m, nil
	}

	m.run++
	m.steps = nil
	m.total = seq.Len()
	m.running = true
	m.screen = ScreenAutoplay

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	// sized so the scheduler never waits on the UI
	steps := make(chan autoplay.Step, seq.Len())
	sched := autoplay.New(m.opts.Registry, m.opts.Resolver, m.opts.Step)
	sched.OnStep = func(st autoplay.Step) { steps <- st }

	m.stepCh = steps
	run := m.run
	debug.Log("tui", "auto-play run %d: %s (%d symbols)", run, path, seq.Len())
	return m, tea.Batch(
		func() tea.Msg {
			stats := sched.Run(ctx, seq)
			cancel()
			close(steps)
			return AutoplayDoneMsg{Run: run, Stats: stats}
		},
		listenForSteps(run, steps),
	)
}

func (m *Model) stopAutoplay() {
	if m.cancel != nil {
		m.cancel()
	}
	m.opts.Registry.StopAll()
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.stopAutoplay()
	m.quitting = true
	return m, tea.Quit
}

func (m *Model) logf(format string, args ...any) {
	m.log = append(m.log, fmt.Sprintf(format, args...))
	if len(m.log) > maxLog {
		m.log = m.log[len(m.log)-maxLog:]
	}
}
