// Package units provides distinct scalar types for the quantities the modem
// reasons about, so that a frequency can never silently be added to a time or
// a sample count. Each type wraps a float64 or int and exposes only the
// operations that make dimensional sense.
package units

import "math"

// Time is a duration in seconds.
type Time float64

// Frequency is a rate in Hertz.
type Frequency float64

// Amplitude is a signed, typically unit-scaled signal magnitude.
type Amplitude float64

// Proportion is a dimensionless ratio, usually but not necessarily in [0,1].
type Proportion float64

// SampleCount is a count of discrete samples.
type SampleCount int

// SamplingRate is a sampling frequency in Hz.
type SamplingRate int

// RationalFraction is an exact integer ratio, for arithmetic where repeated
// float division would accumulate rounding error. No other package in this
// module uses it.
type RationalFraction struct {
	Num int
	Den int
}

// Reduce divides out the greatest common divisor.
func (r RationalFraction) Reduce() RationalFraction {
	if r.Den == 0 {
		return r
	}
	a, b := r.Num, r.Den
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return r
	}
	return RationalFraction{Num: r.Num / a, Den: r.Den / a}
}

// Float64 evaluates the fraction.
func (r RationalFraction) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Cycles returns how many cycles of f elapse over t.
func (t Time) Cycles(f Frequency) float64 {
	return float64(t) * float64(f)
}

// CycleTime returns the period of f.
func (f Frequency) CycleTime() Time {
	if f == 0 {
		return Time(math.Inf(1))
	}
	return Time(1.0 / float64(f))
}

// MaxFrequency returns the Nyquist frequency for this sampling rate.
func (r SamplingRate) MaxFrequency() Frequency {
	return Frequency(r) / 2
}

// Samples converts a duration to a sample count at this sampling rate,
// rounding up so that a requested duration is never under-covered.
func (r SamplingRate) Samples(t Time) SampleCount {
	return SampleCount(math.Ceil(float64(t) * float64(r)))
}

// Duration converts a sample count to a duration at this sampling rate.
func (r SamplingRate) Duration(n SampleCount) Time {
	if r == 0 {
		return 0
	}
	return Time(float64(n) / float64(r))
}

// SampleStep is the duration of a single sample.
func (r SamplingRate) SampleStep() Time {
	if r == 0 {
		return 0
	}
	return Time(1.0 / float64(r))
}

// relativeEpsilon guards against division by an exactly-zero reference
// amplitude, mirroring the original implementation's use of a machine
// epsilon in place of zero.
const relativeEpsilon = 1.1920929e-7 // float32 epsilon, matched to source

// RelativeTo expresses a as a proportion of other, treating a zero
// denominator as a small epsilon rather than panicking or returning Inf.
func (a Amplitude) RelativeTo(other Amplitude) Proportion {
	denom := float64(other)
	if denom == 0 {
		denom = relativeEpsilon
	}
	return Proportion(float64(a) / denom)
}

// Abs returns the absolute value.
func (a Amplitude) Abs() Amplitude {
	if a < 0 {
		return -a
	}
	return a
}

// ScaleUsize scales n by the proportion, truncating toward zero.
func (p Proportion) ScaleUsize(n int) int {
	return int(float64(p) * float64(n))
}

// ScaleTime scales a duration by the proportion.
func (p Proportion) ScaleTime(t Time) Time {
	return Time(float64(p) * float64(t))
}

// Clamp01 clamps the proportion to [0, 1].
func (p Proportion) Clamp01() Proportion {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

// BandwidthSteps returns how many frequency bins of the given step size fit
// in half of this frequency's span, rounded to the nearest integer.
func (f Frequency) BandwidthSteps(step Frequency) int {
	if step == 0 {
		return 0
	}
	return int(math.Round(float64(f) / 2 / float64(step)))
}
