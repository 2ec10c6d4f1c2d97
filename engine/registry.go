// Package engine tracks the voices that are currently sounding.
//
// A Registry is owned by a single goroutine (Run). Triggers, stops, sustain
// changes and voice completions all reach it as messages, so every change to
// the slot map happens in one place and in one order. The slot map holds at
// most one voice per note-key; voices displaced from their slot while the
// sustain pedal is down stay in the live set until they finish or are stopped.
package engine

import (
	"context"
	"errors"
	"sort"

	"xtlz-piano/debug"
)

// ErrClosed is returned once the registry's Run loop has exited
var ErrClosed = errors.New("registry closed")

// ID identifies one started voice. IDs are never reused.
type ID uint64

// Voice is a playing sound the registry can stop and watch
type Voice interface {
	Stop()
	Done() <-chan struct{}
}

// VoiceStarter begins playback of a file
type VoiceStarter interface {
	StartVoice(path string) (Voice, error)
}

// StarterFunc adapts a function to VoiceStarter
type StarterFunc func(path string) (Voice, error)

func (f StarterFunc) StartVoice(path string) (Voice, error) {
	return f(path)
}

type entry struct {
	id    ID
	key   int
	voice Voice
}

// state is only touched by the Run goroutine
type state struct {
	slots   map[int]*entry
	live    map[ID]*entry
	sustain bool
	nextID  ID
}

type op struct {
	fn   func(*state)
	done chan struct{}
}

// Registry maps note-keys to their sounding voice
type Registry struct {
	starter VoiceStarter

	ops  chan op
	quit chan struct{}

	// Notify UI of changes
	updates chan struct{}
}

// New creates a registry; call Run to start it
func New(starter VoiceStarter) *Registry {
	return &Registry{
		starter: starter,
		ops:     make(chan op),
		quit:    make(chan struct{}),
		updates: make(chan struct{}, 1),
	}
}

// Updates signals (coalesced) whenever the set of voices or sustain changes
func (r *Registry) Updates() <-chan struct{} {
	return r.updates
}

// Run owns the registry state until ctx is done (blocking - run in goroutine).
// On exit every live voice is stopped.
func (r *Registry) Run(ctx context.Context) {
	s := &state{
		slots: make(map[int]*entry),
		live:  make(map[ID]*entry),
	}

	for {
		select {
		case <-ctx.Done():
			n := r.stopAll(s)
			debug.Log("engine", "shutdown, stopped %d voices", n)
			close(r.quit)
			return
		case o := <-r.ops:
			o.fn(s)
			close(o.done)
		}
	}
}

// exec runs fn on the Run goroutine and waits for it
func (r *Registry) exec(fn func(*state)) error {
	o := op{fn: fn, done: make(chan struct{})}
	select {
	case r.ops <- o:
	case <-r.quit:
		return ErrClosed
	}
	<-o.done
	return nil
}

func (r *Registry) notify() {
	select {
	case r.updates <- struct{}{}:
	default:
	}
}

// Trigger starts a voice for key. Without sustain the voice currently in the
// key's slot is stopped first, like striking a real key again; with sustain
// the old voice keeps ringing and only loses the slot.
func (r *Registry) Trigger(key int, path string) (ID, error) {
	var (
		id  ID
		err error
	)
	if xerr := r.exec(func(s *state) {
		if old, ok := s.slots[key]; ok && !s.sustain {
			old.voice.Stop()
			delete(s.slots, key)
			delete(s.live, old.id)
			debug.Log("engine", "retrigger key=%d stop id=%d", key, old.id)
		}

		var v Voice
		v, err = r.starter.StartVoice(path)
		if err != nil {
			r.notify()
			return
		}

		s.nextID++
		e := &entry{id: s.nextID, key: key, voice: v}
		s.slots[key] = e
		s.live[e.id] = e
		id = e.id
		go r.watch(e.id, v)

		debug.Log("engine", "trigger key=%d id=%d sustain=%v live=%d", key, e.id, s.sustain, len(s.live))
		r.notify()
	}); xerr != nil {
		return 0, xerr
	}
	return id, err
}

// watch forwards a voice's completion to the Run goroutine
func (r *Registry) watch(id ID, v Voice) {
	select {
	case <-v.Done():
	case <-r.quit:
		return
	}
	r.exec(func(s *state) {
		r.remove(s, id)
	})
}

// remove drops a finished voice; the slot is cleared only if it still holds this voice
func (r *Registry) remove(s *state, id ID) {
	e, ok := s.live[id]
	if !ok {
		return
	}
	delete(s.live, id)
	if cur, ok := s.slots[e.key]; ok && cur.id == id {
		delete(s.slots, e.key)
	}
	debug.Log("engine", "finished key=%d id=%d live=%d", e.key, id, len(s.live))
	r.notify()
}

// Stop force-stops one voice by identity. A voice that already finished is ignored.
func (r *Registry) Stop(id ID) {
	r.exec(func(s *state) {
		if e, ok := s.live[id]; ok {
			e.voice.Stop()
			r.remove(s, id)
		}
	})
}

// StopAll stops every live voice, including sustained ones that lost their slot.
// Returns how many voices were stopped.
func (r *Registry) StopAll() int {
	var n int
	r.exec(func(s *state) {
		n = r.stopAll(s)
	})
	return n
}

func (r *Registry) stopAll(s *state) int {
	n := len(s.live)
	for id, e := range s.live {
		e.voice.Stop()
		delete(s.live, id)
	}
	clear(s.slots)
	if n > 0 {
		r.notify()
	}
	return n
}

// SetSustain engages or releases the sustain pedal
func (r *Registry) SetSustain(on bool) {
	r.exec(func(s *state) {
		if s.sustain != on {
			s.sustain = on
			r.notify()
		}
	})
}

// ToggleSustain flips the sustain pedal and returns the new state
func (r *Registry) ToggleSustain() bool {
	var on bool
	r.exec(func(s *state) {
		s.sustain = !s.sustain
		on = s.sustain
		r.notify()
	})
	return on
}

// Sustain reports whether the sustain pedal is engaged
func (r *Registry) Sustain() bool {
	var on bool
	r.exec(func(s *state) {
		on = s.sustain
	})
	return on
}

// Active returns the occupied note-keys in ascending order
func (r *Registry) Active() []int {
	var keys []int
	r.exec(func(s *state) {
		keys = make([]int, 0, len(s.slots))
		for k := range s.slots {
			keys = append(keys, k)
		}
	})
	sort.Ints(keys)
	return keys
}

// Live returns the number of voices still sounding, in a slot or not
func (r *Registry) Live() int {
	var n int
	r.exec(func(s *state) {
		n = len(s.live)
	})
	return n
}
