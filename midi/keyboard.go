package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"xtlz-piano/debug"
)

// KeyboardController handles a standard MIDI keyboard
type KeyboardController struct {
	id       string
	inPort   drivers.In
	stopFunc func()

	mu     sync.Mutex
	closed bool
	events chan Event
}

// NewKeyboardController creates a keyboard controller (input only)
func NewKeyboardController(id string, inPort drivers.In) (*KeyboardController, error) {
	kb := &KeyboardController{
		id:     id,
		inPort: inPort,
		events: make(chan Event, 64),
	}

	// Open input
	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			kb.handle(msg)
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		kb.stopFunc = stop
	}

	return kb, nil
}

// handle translates one raw message; anything but notes and CC is dropped
func (kb *KeyboardController) handle(msg gomidi.Message) {
	var channel, note, velocity, cc, value uint8
	var ev Event

	switch {
	case msg.GetNoteStart(&channel, &note, &velocity):
		ev = Event{Type: NoteOn, Channel: channel, Note: note, Velocity: velocity}
	case msg.GetNoteEnd(&channel, &note):
		ev = Event{Type: NoteOff, Channel: channel, Note: note}
	case msg.GetControlChange(&channel, &cc, &value):
		ev = Event{Type: CC, Channel: channel, Note: cc, Velocity: value}
	default:
		return
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()
	if kb.closed {
		return
	}
	select {
	case kb.events <- ev:
	default:
		debug.LogEvery(100, "midi", "%s: event buffer full, dropping %v", kb.id, msg)
	}
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) Type() ControllerType {
	return ControllerKeyboard
}

func (kb *KeyboardController) Events() <-chan Event {
	return kb.events
}

func (kb *KeyboardController) Close() error {
	if kb.stopFunc != nil {
		kb.stopFunc()
	}
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if !kb.closed {
		kb.closed = true
		close(kb.events)
	}
	return nil
}
