// Package amshaper turns an NRZI symbol stream into a continuous-time
// amplitude envelope: the transmit-side signal a sampler can read one time
// step at a time, suitable for multiplying against a carrier tone.
package amshaper

import (
	"errors"

	"github.com/cwbudde/amnrzi/internal/units"
	"github.com/cwbudde/amnrzi/nrzi"
)

// ErrUndersampled is returned by AdvanceWith when dt exceeds the
// transition width: the caller is stepping coarser than the shaper can
// represent a transition slope at.
var ErrUndersampled = errors.New("amshaper: undersampled")

// ErrFinished is returned once the underlying NRZI encoder has emitted its
// terminal Complete symbol.
var ErrFinished = errors.New("amshaper: finished")

// Shaper is a Signal (in the sense of having an AdvanceWith(dt) step
// method) that renders one NRZI symbol per baud interval as either a flat
// level or a linear transition slope between levels.
type Shaper struct {
	baudLength      units.Time
	transitionWidth units.Time
	high, low       units.Amplitude

	enc *nrzi.Encoder

	progress   units.Time
	levelHigh  bool
	current    nrzi.Symbol
	haveSymbol bool
	finished   bool
}

// NewShaper builds a shaper over enc, a baudrate, and a transition-width
// proportion of one baud period (e.g. 0.25 means the line takes a quarter
// of a baud to swing between levels), rendering between the given high and
// low amplitudes.
func NewShaper(baudrate units.Frequency, transitionWidth units.Proportion, high, low units.Amplitude, enc *nrzi.Encoder) *Shaper {
	baudLength := baudrate.CycleTime()
	s := &Shaper{
		baudLength:      baudLength,
		transitionWidth: transitionWidth.ScaleTime(baudLength),
		high:            high,
		low:             low,
		enc:             enc,
	}
	s.current, s.haveSymbol = enc.Next()
	return s
}

func (s *Shaper) levelAmplitude(high bool) units.Amplitude {
	if high {
		return s.high
	}
	return s.low
}

// transitions reports whether the current symbol causes a level flip at
// the current line level.
func (s *Shaper) transitions() bool {
	if !s.haveSymbol {
		return false
	}
	return s.current.Transition(s.levelHigh)
}

func (s *Shaper) currentValue() units.Amplitude {
	if !s.transitions() {
		return s.levelAmplitude(s.levelHigh)
	}
	progress := units.Proportion(float64(s.progress) / float64(s.transitionWidth)).Clamp01()
	from := s.levelAmplitude(s.levelHigh)
	to := s.levelAmplitude(!s.levelHigh)
	delta := to - from
	return from + units.Amplitude(float64(progress)*float64(delta))
}

// Finished reports whether the shaper has already emitted every sample of
// the frame (the underlying encoder has reached Complete).
func (s *Shaper) Finished() bool {
	return s.finished
}

// AdvanceWith returns the amplitude at the current point in time and then
// steps the shaper forward by dt.
func (s *Shaper) AdvanceWith(dt units.Time) (units.Amplitude, error) {
	if s.finished {
		return 0, ErrFinished
	}
	if dt > s.transitionWidth {
		return 0, ErrUndersampled
	}

	result := s.currentValue()

	s.progress += dt
	if s.progress >= s.baudLength {
		s.progress -= s.baudLength
		if s.transitions() {
			s.levelHigh = !s.levelHigh
		}
		s.current, s.haveSymbol = s.enc.Next()
	}

	if s.current.IsComplete() {
		s.finished = true
	}

	return result, nil
}
