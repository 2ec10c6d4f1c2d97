// Package pitch generates and checks the chromatic piano sample set.
//
// The set is produced once from a single base recording: every note is the
// base resampled by 2^(semitones/12). Generation is idempotent, files that
// already exist are left alone.
package pitch

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	wavfile "github.com/cwbudde/wav"
	goaudio "github.com/go-audio/audio"
	"github.com/gopxl/beep/v2"

	"xtlz-piano/assets"
	"xtlz-piano/audio"
	"xtlz-piano/debug"
)

const resampleQuality = 6

// Options configures Prepare
type Options struct {
	Base     string // path of the base recording
	BaseNote string // pitch of the base recording, e.g. "C4"
	Resolver *assets.Resolver
}

// Report lists note names by outcome
type Report struct {
	Generated []string
	Skipped   []string // already present
	Missing   []string
	Invalid   []string // present but not a readable WAV
}

// OK reports whether every file is present and readable
func (r Report) OK() bool {
	return len(r.Missing) == 0 && len(r.Invalid) == 0
}

func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "generated %d, present %d", len(r.Generated), len(r.Skipped))
	if len(r.Missing) > 0 {
		fmt.Fprintf(&b, ", missing %d: %s", len(r.Missing), strings.Join(r.Missing, " "))
	}
	if len(r.Invalid) > 0 {
		fmt.Fprintf(&b, ", invalid %d: %s", len(r.Invalid), strings.Join(r.Invalid, " "))
	}
	return b.String()
}

// Prepare renders every chromatic note that does not exist yet
func Prepare(opts Options) (Report, error) {
	var rep Report

	baseKey, err := assets.NoteKey(opts.BaseNote)
	if err != nil {
		return rep, fmt.Errorf("base note: %w", err)
	}

	var base *beep.Buffer
	for k := 0; k < assets.ChromaticKeys; k++ {
		name, _ := assets.NoteName(k)
		path, err := opts.Resolver.ChromaticPath(k)
		if err != nil {
			return rep, err
		}
		if _, err := os.Stat(path); err == nil {
			rep.Skipped = append(rep.Skipped, name)
			continue
		}

		if base == nil {
			if base, err = load(opts.Base); err != nil {
				return rep, err
			}
		}
		if err := render(base, path, k-baseKey); err != nil {
			return rep, fmt.Errorf("render %s: %w", name, err)
		}
		debug.Log("pitch", "generated %s (%+d semitones)", path, k-baseKey)
		rep.Generated = append(rep.Generated, name)
	}

	return rep, nil
}

// load decodes the base recording into memory
func load(path string) (*beep.Buffer, error) {
	s, format, err := audio.Decode(path)
	if err != nil {
		return nil, fmt.Errorf("base sample: %w", err)
	}
	defer s.Close()

	buf := beep.NewBuffer(format)
	buf.Append(s)
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("base sample: %w", err)
	}
	return buf, nil
}

// render writes base shifted by semitones to path as 16-bit stereo WAV
func render(base *beep.Buffer, path string, semitones int) error {
	ratio := math.Pow(2, float64(semitones)/12)
	s := beep.ResampleRatio(resampleQuality, ratio, base.Streamer(0, base.Len()))

	var data []float32
	chunk := make([][2]float64, 1024)
	for {
		n, ok := s.Stream(chunk)
		for _, frame := range chunk[:n] {
			data = append(data, clamp(frame[0]), clamp(frame[1]))
		}
		if !ok {
			break
		}
	}

	return writeWAV(path, data, int(base.Format().SampleRate))
}

// writeWAV writes through a temp file so an interrupted run never leaves a
// truncated file that a later run would skip.
func writeWAV(path string, samples []float32, sampleRate int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), ".pitch-*.wav")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	enc := wavfile.NewEncoder(f, sampleRate, 16, 2, 1)
	buf := &goaudio.Float32Buffer{
		Format: &goaudio.Format{
			SampleRate:  sampleRate,
			NumChannels: 2,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func clamp(v float64) float32 {
	return float32(math.Max(-1, math.Min(1, v)))
}

// Validate checks that all 36 files exist and, for WAV sets, that their headers parse
func Validate(res *assets.Resolver) Report {
	var rep Report
	checkWAV := strings.EqualFold(res.ChromaticExt, ".wav")

	for k := 0; k < assets.ChromaticKeys; k++ {
		name, _ := assets.NoteName(k)
		path, err := res.ResolveChromatic(k)
		if err != nil {
			rep.Missing = append(rep.Missing, name)
			continue
		}
		if checkWAV && !validWAV(path) {
			rep.Invalid = append(rep.Invalid, name)
			continue
		}
		rep.Skipped = append(rep.Skipped, name)
	}
	return rep
}

func validWAV(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	return wavfile.NewDecoder(f).IsValidFile()
}
