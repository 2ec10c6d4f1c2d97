package midi

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
	CC      uint8 = 0xB0
)

// SustainPedal is the damper pedal controller number
const SustainPedal uint8 = 64

// Event represents an input event from a keyboard.
// For CC events Note holds the controller number and Velocity its value.
type Event struct {
	Type     uint8 // NoteOn, NoteOff, CC
	Channel  uint8
	Note     uint8
	Velocity uint8
}

// IsPedal reports whether e is a sustain pedal change, and whether it is down
func (e Event) IsPedal() (is, down bool) {
	if e.Type != CC || e.Note != SustainPedal {
		return false, false
	}
	return true, e.Velocity >= 64
}
