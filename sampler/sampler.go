// Package sampler turns continuous-time waves and signals into discrete
// sample buffers at a fixed sampling rate, and lets two sampled streams be
// combined (e.g. a carrier tone amplitude-modulated by an envelope) without
// either side knowing about the other.
package sampler

import (
	"errors"
	"math"

	"github.com/cwbudde/amnrzi/internal/units"
)

// ErrFinished marks a Signal that has nothing further to produce; a
// SignalSampler treats it as silence rather than propagating the error.
var ErrFinished = errors.New("sampler: finished")

// Sampleable fills out with amplitude samples at the given rate, advancing
// whatever internal state it wraps by one sample per slot.
type Sampleable interface {
	SampleInto(out []float64, rate units.SamplingRate)
}

// Wave is a continuous-time, phase-stateful waveform: it can report its
// value at an offset from its current phase and shift that phase forward.
type Wave interface {
	ValueAt(t units.Time) units.Amplitude
	ShiftMut(offset units.Time)
}

// Signal is a discrete-step process: each call advances it by dt and
// returns the amplitude at the point just stepped over, or ErrFinished
// once it has nothing further to produce (mirrored by amshaper.Shaper and
// any other AdvanceWith-based generator).
type Signal interface {
	AdvanceWith(dt units.Time) (units.Amplitude, error)
}

// Sine is a fixed-frequency, fixed-amplitude tone with a running phase
// offset that wraps modulo one cycle every time it's shifted, so repeated
// small shifts don't accumulate floating-point drift over a long run.
type Sine struct {
	freq        units.Frequency
	phaseOffset units.Time
	amplitude   units.Amplitude
}

// NewSine builds a Sine wave at freq and amplitude, starting at phaseOffset.
func NewSine(freq units.Frequency, phaseOffset units.Time, amplitude units.Amplitude) *Sine {
	return &Sine{freq: freq, phaseOffset: phaseOffset, amplitude: amplitude}
}

// ShiftMut advances the wave's phase by offset, wrapping to within one
// cycle.
func (s *Sine) ShiftMut(offset units.Time) {
	base := s.phaseOffset + offset
	cycleTime := s.freq.CycleTime()
	wholePhases := math.Floor(float64(base) / float64(cycleTime))
	s.phaseOffset = base - units.Time(float64(cycleTime)*wholePhases)
}

// ValueAt returns the wave's amplitude t past the current phase.
func (s *Sine) ValueAt(t units.Time) units.Amplitude {
	offsetT := s.phaseOffset + t
	angle := float64(offsetT) * 2.0 * math.Pi * float64(s.freq)
	return units.Amplitude(math.Sin(angle) * float64(s.amplitude))
}

// WaveSampler adapts a Wave into a Sampleable by evaluating it once per
// sample step and then shifting its phase forward by the whole buffer
// length in one call, rather than once per sample.
type WaveSampler struct {
	wave Wave
}

// NewWaveSampler wraps wave.
func NewWaveSampler(wave Wave) *WaveSampler {
	return &WaveSampler{wave: wave}
}

// SampleInto fills out by evaluating the wave at each sample offset and
// then advances the wave's phase by the total duration sampled.
func (w *WaveSampler) SampleInto(out []float64, rate units.SamplingRate) {
	increment := rate.SampleStep()
	for i := range out {
		out[i] = float64(w.wave.ValueAt(increment * units.Time(i)))
	}
	w.wave.ShiftMut(rate.Duration(units.SampleCount(len(out))))
}

// SignalSampler adapts a Signal into a Sampleable, advancing it one sample
// step at a time and substituting silence once it reports ErrFinished.
type SignalSampler struct {
	signal Signal
}

// NewSignalSampler wraps signal.
func NewSignalSampler(signal Signal) *SignalSampler {
	return &SignalSampler{signal: signal}
}

// SampleInto fills out by stepping the signal forward one sample interval
// at a time.
func (s *SignalSampler) SampleInto(out []float64, rate units.SamplingRate) {
	increment := rate.SampleStep()
	for i := range out {
		v, err := s.signal.AdvanceWith(increment)
		if err != nil {
			out[i] = 0
			continue
		}
		out[i] = float64(v)
	}
}

// CompositeSampler combines two Sampleables sample-by-sample through a
// compositor function, the way an AM transmitter multiplies a carrier tone
// by an envelope.
type CompositeSampler struct {
	a, b       Sampleable
	compositor func(a, b float64) float64
	bufA, bufB []float64
}

// NewCompositeSampler builds a CompositeSampler over a and b, combining
// their per-sample outputs with compositor.
func NewCompositeSampler(a, b Sampleable, compositor func(a, b float64) float64) *CompositeSampler {
	return &CompositeSampler{a: a, b: b, compositor: compositor}
}

// SampleInto samples both underlying streams into internal scratch buffers
// and writes the composed result into out.
func (c *CompositeSampler) SampleInto(out []float64, rate units.SamplingRate) {
	if len(c.bufA) != len(out) {
		c.bufA = make([]float64, len(out))
		c.bufB = make([]float64, len(out))
	}
	c.a.SampleInto(c.bufA, rate)
	c.b.SampleInto(c.bufB, rate)
	for i := range out {
		out[i] = c.compositor(c.bufA[i], c.bufB[i])
	}
}
