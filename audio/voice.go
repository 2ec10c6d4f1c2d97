// Package audio plays single note files as independent voices.
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"

	"xtlz-piano/debug"
)

// ErrUnreadable means a file could not be opened or decoded
var ErrUnreadable = errors.New("asset unreadable")

// resampleQuality is passed to beep.Resample (1 = fastest, 64 = best)
const resampleQuality = 4

// Decode opens path and returns a decoder chosen by file extension
func Decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("%s: %w: %w", path, ErrUnreadable, err)
	}

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		s, format, err = mp3.Decode(f)
	case ".wav":
		s, format, err = wav.Decode(f)
	default:
		err = fmt.Errorf("unsupported format %q", ext)
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("%s: %w: %w", path, ErrUnreadable, err)
	}
	return s, format, nil
}

// Player starts voices on an output
type Player struct {
	out Output
}

// NewPlayer creates a player for out
func NewPlayer(out Output) *Player {
	return &Player{out: out}
}

// Voice is one playing instance of a note file.
// It owns its decoder and its slot on the output.
type Voice struct {
	Path string

	out    Output
	source beep.StreamSeekCloser
	ctrl   *beep.Ctrl

	once sync.Once
	done chan struct{}
}

// Start decodes path and begins playing it asynchronously
func (p *Player) Start(path string) (*Voice, error) {
	source, format, err := Decode(path)
	if err != nil {
		return nil, err
	}

	var s beep.Streamer = source
	if rate := p.out.SampleRate(); rate != 0 && format.SampleRate != rate {
		s = beep.Resample(resampleQuality, format.SampleRate, rate, s)
	}

	v := &Voice{
		Path:   path,
		out:    p.out,
		source: source,
		ctrl:   &beep.Ctrl{Streamer: s},
		done:   make(chan struct{}),
	}
	p.out.Play(beep.Seq(v.ctrl, beep.Callback(v.finished)))
	debug.Log("voice", "start %s (%d Hz)", path, format.SampleRate)
	return v, nil
}

// finished runs on the audio goroutine with the output locked, so the
// release has to happen elsewhere.
func (v *Voice) finished() {
	go v.release()
}

// Stop halts playback and releases the voice. Safe to call more than once
// and concurrently with natural completion.
func (v *Voice) Stop() {
	v.release()
}

// Done is closed once the voice has been released, by Stop or by reaching the end
func (v *Voice) Done() <-chan struct{} {
	return v.done
}

func (v *Voice) release() {
	v.once.Do(func() {
		v.out.Lock()
		v.ctrl.Streamer = nil
		v.out.Unlock()

		if err := v.source.Close(); err != nil {
			debug.Log("voice", "close %s: %v", v.Path, err)
		}
		close(v.done)
	})
}
