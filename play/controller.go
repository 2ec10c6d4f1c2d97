// Package play turns key presses into note triggers on the voice registry.
package play

import (
	"errors"
	"fmt"
	"strconv"

	"xtlz-piano/assets"
	"xtlz-piano/debug"
	"xtlz-piano/engine"
)

// ErrInvalidKey is reported for key presses the current mode does not use
var ErrInvalidKey = errors.New("invalid key")

// Registry is the part of engine.Registry the controller drives
type Registry interface {
	Trigger(key int, path string) (engine.ID, error)
	StopAll() int
	SetSustain(on bool)
	ToggleSustain() bool
}

// Resolver finds the file behind a note-key
type Resolver interface {
	ResolveScale(key int) (string, error)
	ResolveChromatic(key int) (string, error)
}

// Action is what a key press did
type Action int

const (
	ActionNone    Action = iota // ignored silently
	ActionPlay                  // a voice was started
	ActionSkipped               // a note was hit but could not be played
	ActionSustain               // sustain pedal changed
	ActionExit                  // mode left, all voices stopped
	ActionInvalid               // unrecognized key
)

// Outcome describes the result of one input event
type Outcome struct {
	Action  Action
	Key     int    // note-key for ActionPlay / ActionSkipped
	Label   string // "3" in scale mode, "C#4" in piano mode
	Sustain bool   // pedal state after ActionSustain
	Err     error
}

// Controller is one manual play session in a fixed mode
type Controller struct {
	reg  Registry
	res  Resolver
	mode Mode
}

// New creates a controller for mode
func New(reg Registry, res Resolver, mode Mode) *Controller {
	return &Controller{reg: reg, res: res, mode: mode}
}

// Mode returns the controller's mode
func (c *Controller) Mode() Mode {
	return c.mode
}

// HandleKey classifies a key press and acts on it
func (c *Controller) HandleKey(key string) Outcome {
	switch {
	case key == KeyExit:
		return c.exit()
	case key == KeySustain && c.mode == ModeChromatic:
		on := c.reg.ToggleSustain()
		debug.Log("play", "sustain %v", on)
		return Outcome{Action: ActionSustain, Sustain: on}
	}

	k, ok := KeyFor(c.mode, key)
	if !ok {
		return Outcome{Action: ActionInvalid, Err: fmt.Errorf("%q: %w", key, ErrInvalidKey)}
	}
	return c.trigger(k)
}

// HandleNote plays a note from a MIDI keyboard. Note-offs and notes outside
// the mode's range are ignored.
func (c *Controller) HandleNote(note, velocity uint8) Outcome {
	if velocity == 0 {
		return Outcome{Action: ActionNone}
	}
	k, ok := KeyForMIDINote(c.mode, note)
	if !ok {
		return Outcome{Action: ActionNone}
	}
	return c.trigger(k)
}

// HandlePedal follows a MIDI sustain pedal (piano mode only)
func (c *Controller) HandlePedal(down bool) Outcome {
	if c.mode != ModeChromatic {
		return Outcome{Action: ActionNone}
	}
	c.reg.SetSustain(down)
	return Outcome{Action: ActionSustain, Sustain: down}
}

func (c *Controller) trigger(k int) Outcome {
	label := c.label(k)

	path, err := c.resolve(k)
	if err != nil {
		debug.Log("play", "skip %s: %v", label, err)
		return Outcome{Action: ActionSkipped, Key: k, Label: label, Err: err}
	}
	if _, err := c.reg.Trigger(k, path); err != nil {
		debug.Log("play", "skip %s: %v", label, err)
		return Outcome{Action: ActionSkipped, Key: k, Label: label, Err: err}
	}
	return Outcome{Action: ActionPlay, Key: k, Label: label}
}

// exit silences everything; leaving piano mode also lifts the pedal
func (c *Controller) exit() Outcome {
	n := c.reg.StopAll()
	if c.mode == ModeChromatic {
		c.reg.SetSustain(false)
	}
	debug.Log("play", "exit %s mode, stopped %d", c.mode, n)
	return Outcome{Action: ActionExit}
}

func (c *Controller) resolve(k int) (string, error) {
	if c.mode == ModeChromatic {
		return c.res.ResolveChromatic(k)
	}
	return c.res.ResolveScale(k)
}

func (c *Controller) label(k int) string {
	if c.mode == ModeChromatic {
		name, _ := assets.NoteName(k)
		return name
	}
	return strconv.Itoa(k)
}
