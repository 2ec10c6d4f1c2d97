package autoplay

import (
	"context"
	"time"

	"xtlz-piano/debug"
	"xtlz-piano/engine"
)

// Registry is the part of engine.Registry the scheduler drives
type Registry interface {
	Trigger(key int, path string) (engine.ID, error)
	Stop(id engine.ID)
}

// Resolver finds the file for a scale degree
type Resolver interface {
	ResolveScale(key int) (string, error)
}

// Step reports one processed symbol
type Step struct {
	Index  int
	Symbol Symbol
	Key    int           // note-key used for notes (the negative degree)
	At     time.Duration // offset from the start of the run
	Played bool
	Err    error // why a note was not played
}

// Stats summarizes a run
type Stats struct {
	Steps     int
	Played    int
	Skipped   int
	Cancelled bool
}

// Scheduler plays a notation sequence at a fixed duration per symbol.
// Auto-play voices use negative note-keys so they never share a slot with
// the same degree played by hand.
type Scheduler struct {
	reg  Registry
	res  Resolver
	step time.Duration

	// OnStep is called after each symbol is processed (optional)
	OnStep func(Step)
}

// New creates a scheduler with duration step per symbol
func New(reg Registry, res Resolver, step time.Duration) *Scheduler {
	return &Scheduler{reg: reg, res: res, step: step}
}

// Run plays seq until it is exhausted or ctx is cancelled. Cancellation is
// checked before each symbol and during each wait; it is reported in the
// returned stats, not as an error. Notes still sounding when Run returns are
// cut by their own timers; callers wanting silence at once should StopAll.
func (s *Scheduler) Run(ctx context.Context, seq *Sequence) Stats {
	var stats Stats
	start := time.Now()

	for i := 0; ; i++ {
		if ctx.Err() != nil {
			stats.Cancelled = true
			break
		}
		sym, ok := seq.Next()
		if !ok {
			break
		}

		st := Step{Index: i, Symbol: sym, At: time.Since(start)}
		if !sym.Rest {
			s.play(&st)
			if st.Played {
				stats.Played++
			} else {
				stats.Skipped++
			}
		}
		stats.Steps++
		if s.OnStep != nil {
			s.OnStep(st)
		}

		// Wait for next symbol or cancellation
		timer := time.NewTimer(s.step)
		select {
		case <-ctx.Done():
			timer.Stop()
			stats.Cancelled = true
		case <-timer.C:
		}
		if stats.Cancelled {
			break
		}
	}

	debug.Log("autoplay", "run done steps=%d played=%d skipped=%d cancelled=%v", stats.Steps, stats.Played, stats.Skipped, stats.Cancelled)
	return stats
}

// play triggers one note and arms the timer that bounds it to one step
func (s *Scheduler) play(st *Step) {
	st.Key = -st.Symbol.Degree

	path, err := s.res.ResolveScale(st.Key)
	if err != nil {
		st.Err = err
		return
	}
	id, err := s.reg.Trigger(st.Key, path)
	if err != nil {
		st.Err = err
		return
	}
	st.Played = true

	time.AfterFunc(s.step, func() {
		s.reg.Stop(id)
	})
}
