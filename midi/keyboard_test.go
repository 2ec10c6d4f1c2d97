package midi

import (
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestKeyboardHandle(t *testing.T) {
	tests := []struct {
		name string
		msg  gomidi.Message
		want *Event
	}{
		{"note on", gomidi.NoteOn(0, 60, 100), &Event{Type: NoteOn, Note: 60, Velocity: 100}},
		{"note off", gomidi.NoteOff(2, 61), &Event{Type: NoteOff, Channel: 2, Note: 61}},
		{"zero velocity is note off", gomidi.NoteOn(0, 62, 0), &Event{Type: NoteOff, Note: 62}},
		{"pedal", gomidi.ControlChange(0, 64, 127), &Event{Type: CC, Note: 64, Velocity: 127}},
		{"pitch bend ignored", gomidi.Pitchbend(0, 100), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb, err := NewKeyboardController("test", nil)
			if err != nil {
				t.Fatal(err)
			}
			defer kb.Close()

			kb.handle(tt.msg)
			select {
			case ev := <-kb.Events():
				if tt.want == nil {
					t.Fatalf("got %+v, want nothing", ev)
				}
				if ev != *tt.want {
					t.Errorf("got %+v, want %+v", ev, *tt.want)
				}
			default:
				if tt.want != nil {
					t.Fatalf("no event, want %+v", *tt.want)
				}
			}
		})
	}
}

func TestKeyboardCloseIsIdempotent(t *testing.T) {
	kb, _ := NewKeyboardController("test", nil)
	kb.Close()
	kb.Close()

	// late messages after close are dropped, not sent on a closed channel
	kb.handle(gomidi.NoteOn(0, 60, 100))
	if _, ok := <-kb.Events(); ok {
		t.Error("event delivered after close")
	}
}

func TestKeyboardFullBufferDrops(t *testing.T) {
	kb, _ := NewKeyboardController("test", nil)
	defer kb.Close()
	for i := 0; i < cap(kb.events)+10; i++ {
		kb.handle(gomidi.NoteOn(0, 60, 100))
	}
	if n := len(kb.events); n != cap(kb.events) {
		t.Errorf("buffered %d events, want %d", n, cap(kb.events))
	}
}

func TestEventIsPedal(t *testing.T) {
	tests := []struct {
		ev       Event
		is, down bool
	}{
		{Event{Type: CC, Note: 64, Velocity: 127}, true, true},
		{Event{Type: CC, Note: 64, Velocity: 0}, true, false},
		{Event{Type: CC, Note: 1, Velocity: 127}, false, false},
		{Event{Type: NoteOn, Note: 64, Velocity: 127}, false, false},
	}
	for _, tt := range tests {
		is, down := tt.ev.IsPedal()
		if is != tt.is || down != tt.down {
			t.Errorf("%+v.IsPedal() = %v, %v", tt.ev, is, down)
		}
	}
}

func TestControllerType(t *testing.T) {
	kb, _ := NewKeyboardController("test", nil)
	defer kb.Close()
	if kb.Type() != ControllerKeyboard || kb.Type().String() != "keyboard" || kb.ID() != "test" {
		t.Errorf("got %s %q", kb.Type(), kb.ID())
	}
}
