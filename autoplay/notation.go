// Package autoplay parses simple digit notation and plays it back on a timer.
package autoplay

import (
	"fmt"
	"os"
	"strings"
)

// Symbol is one step of a notation sequence
type Symbol struct {
	Rest   bool
	Degree int // 1..7, zero for rests
}

func (s Symbol) String() string {
	if s.Rest {
		return "-"
	}
	return fmt.Sprintf("%d", s.Degree)
}

// Parse converts notation text into symbols. Digits 1-7 are notes, a space
// is a rest, anything else is skipped without taking a step.
func Parse(text string) []Symbol {
	var out []Symbol
	for _, r := range strings.TrimSpace(text) {
		switch {
		case r >= '1' && r <= '7':
			out = append(out, Symbol{Degree: int(r - '0')})
		case r == ' ':
			out = append(out, Symbol{Rest: true})
		}
	}
	return out
}

// Sequence is a single-use cursor over parsed notation
type Sequence struct {
	symbols []Symbol
	pos     int
}

// NewSequence parses text into a sequence
func NewSequence(text string) *Sequence {
	return &Sequence{symbols: Parse(text)}
}

// Load reads a notation file fully and parses it
func Load(path string) (*Sequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read notation: %w", err)
	}
	return NewSequence(string(data)), nil
}

// Next returns the next symbol, or false once the sequence is exhausted
func (s *Sequence) Next() (Symbol, bool) {
	if s.pos >= len(s.symbols) {
		return Symbol{}, false
	}
	sym := s.symbols[s.pos]
	s.pos++
	return sym, true
}

// Len returns the total number of symbols
func (s *Sequence) Len() int {
	return len(s.symbols)
}

// Remaining returns how many symbols have not been consumed
func (s *Sequence) Remaining() int {
	return len(s.symbols) - s.pos
}
