package audio

import (
	"fmt"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// Output is the device voices are mixed into.
// Lock/Unlock guard streamers that are currently being played.
type Output interface {
	Play(s ...beep.Streamer)
	Lock()
	Unlock()
	SampleRate() beep.SampleRate
}

// Speaker is the system audio device, via beep's speaker package
type Speaker struct {
	rate beep.SampleRate
}

// OpenSpeaker initializes the system output. Only one speaker may be open per process.
func OpenSpeaker(rate beep.SampleRate, buffer time.Duration) (*Speaker, error) {
	if err := speaker.Init(rate, rate.N(buffer)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	return &Speaker{rate: rate}, nil
}

func (s *Speaker) Play(st ...beep.Streamer) {
	speaker.Play(st...)
}

func (s *Speaker) Lock() {
	speaker.Lock()
}

func (s *Speaker) Unlock() {
	speaker.Unlock()
}

func (s *Speaker) SampleRate() beep.SampleRate {
	return s.rate
}

// Close drops everything still playing and releases the device
func (s *Speaker) Close() {
	speaker.Clear()
	speaker.Close()
}
