package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	wavfile "github.com/cwbudde/wav"
	goaudio "github.com/go-audio/audio"
	"github.com/gopxl/beep/v2"
)

// fakeOutput stands in for the speaker; drain plays everything to the end
// with the output locked, the way the speaker's mixer does.
type fakeOutput struct {
	mu      sync.Mutex
	rate    beep.SampleRate
	pending []beep.Streamer
}

func (o *fakeOutput) Play(s ...beep.Streamer) {
	o.mu.Lock()
	o.pending = append(o.pending, s...)
	o.mu.Unlock()
}

func (o *fakeOutput) Lock()                       { o.mu.Lock() }
func (o *fakeOutput) Unlock()                     { o.mu.Unlock() }
func (o *fakeOutput) SampleRate() beep.SampleRate { return o.rate }

func (o *fakeOutput) drain() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	frames := 0
	buf := make([][2]float64, 256)
	for _, s := range o.pending {
		for {
			n, ok := s.Stream(buf)
			frames += n
			if !ok {
				break
			}
		}
	}
	o.pending = nil
	return frames
}

func writeTone(t *testing.T, path string, rate, frames int) {
	t.Helper()
	data := make([]float32, frames*2)
	for i := 0; i < frames; i++ {
		v := float32(0.3 * math.Sin(2*math.Pi*440*float64(i)/float64(rate)))
		data[i*2] = v
		data[i*2+1] = v
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	enc := wavfile.NewEncoder(f, rate, 16, 2, 1)
	defer enc.Close()

	buf := &goaudio.Float32Buffer{
		Format: &goaudio.Format{
			SampleRate:  rate,
			NumChannels: 2,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
}

func waitDone(t *testing.T, v *Voice) {
	t.Helper()
	select {
	case <-v.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("voice was not released")
	}
}

func TestVoicePlaysToCompletion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "XTLZ-1.wav")
	writeTone(t, path, 8000, 800)

	out := &fakeOutput{rate: 8000}
	v, err := NewPlayer(out).Start(path)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-v.Done():
		t.Fatal("voice released before playing")
	default:
	}

	if frames := out.drain(); frames != 800 {
		t.Errorf("played %d frames, want 800", frames)
	}
	waitDone(t, v)

	// stopping after natural completion is a no-op
	v.Stop()
	v.Stop()
}

func TestVoiceStopSilencesAndCompletionIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "XTLZ-2.wav")
	writeTone(t, path, 8000, 8000)

	out := &fakeOutput{rate: 8000}
	v, err := NewPlayer(out).Start(path)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	v.Stop()
	waitDone(t, v)

	// the completion marker still fires when the mixer pulls the stopped voice
	if frames := out.drain(); frames != 0 {
		t.Errorf("stopped voice produced %d frames", frames)
	}
	v.Stop()
}

func TestVoiceStopRacesCompletion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "XTLZ-3.wav")
	writeTone(t, path, 8000, 400)

	for i := 0; i < 20; i++ {
		out := &fakeOutput{rate: 8000}
		v, err := NewPlayer(out).Start(path)
		if err != nil {
			t.Fatalf("Start: %v", err)
		}

		var wg sync.WaitGroup
		wg.Add(3)
		go func() { defer wg.Done(); out.drain() }()
		go func() { defer wg.Done(); v.Stop() }()
		go func() { defer wg.Done(); v.Stop() }()
		wg.Wait()
		waitDone(t, v)
	}
}

func TestVoiceResamplesToOutputRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "XTLZ-4.wav")
	writeTone(t, path, 11025, 1000)

	out := &fakeOutput{rate: 22050}
	v, err := NewPlayer(out).Start(path)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	frames := out.drain()
	if frames < 1900 || frames > 2100 {
		t.Errorf("resampled to %d frames, want about 2000", frames)
	}
	waitDone(t, v)
}

func TestStartUnreadable(t *testing.T) {
	dir := t.TempDir()

	garbage := filepath.Join(dir, "XTLZ-5.wav")
	if err := os.WriteFile(garbage, []byte("definitely not a riff header"), 0644); err != nil {
		t.Fatal(err)
	}
	unsupported := filepath.Join(dir, "XTLZ-6.ogg")
	if err := os.WriteFile(unsupported, []byte("OggS"), 0644); err != nil {
		t.Fatal(err)
	}

	out := &fakeOutput{rate: 8000}
	p := NewPlayer(out)

	_, err := p.Start(filepath.Join(dir, "missing.mp3"))
	if !errors.Is(err, ErrUnreadable) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file err = %v", err)
	}
	for _, path := range []string{garbage, unsupported} {
		if _, err := p.Start(path); !errors.Is(err, ErrUnreadable) {
			t.Errorf("Start(%s) err = %v, want ErrUnreadable", filepath.Base(path), err)
		}
	}
	if len(out.pending) != 0 {
		t.Errorf("failed starts queued %d streamers", len(out.pending))
	}
}
