// Package fft provides a process-wide cached real-to-complex FFT facade and
// a DFT view with narrow-band amplitude and filtering helpers, used by the
// carrier-amplitude pipeline to pull the energy at one frequency out of a
// window of real audio samples.
package fft

import (
	"errors"
	"fmt"
	"math/cmplx"
	"sync"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/amnrzi/internal/units"
)

// ErrFrequencyOutOfBounds is returned when a requested band falls outside
// the Nyquist-limited set of frequency steps a transform of this length can
// represent.
var ErrFrequencyOutOfBounds = errors.New("fft: frequency out of bounds")

// plan wraps algo-fft's real-valued forward/inverse transforms, preferring
// the package's fast specialized plan and falling back to the always-
// available safe plan when the fast path can't be built for this length —
// the same preference order the piano engine's spectral comparison uses.
type plan struct {
	mu   sync.Mutex
	n    int
	fast *algofft.FastPlanReal64
	safe *algofft.PlanRealT[float64, complex128]
}

var planCache sync.Map // map[int]*plan

func getPlan(n int) (*plan, error) {
	if v, ok := planCache.Load(n); ok {
		return v.(*plan), nil
	}

	p := &plan{n: n}

	fast, err := algofft.NewFastPlanReal64(n)
	if err == nil {
		p.fast = fast
	} else if !errors.Is(err, algofft.ErrNotImplemented) {
		// Fall through to the safe plan; a fast-plan setup failure for
		// reasons other than "not implemented for this length" is not
		// itself fatal as long as the safe plan builds.
	}

	safe, err := algofft.NewPlanReal64(n)
	if err != nil {
		if p.fast == nil {
			return nil, err
		}
	} else {
		p.safe = safe
	}

	actual, _ := planCache.LoadOrStore(n, p)
	return actual.(*plan), nil
}

func (p *plan) forward(dst []complex128, src []float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fast != nil {
		p.fast.Forward(dst, src)
		return nil
	}
	if p.safe != nil {
		return p.safe.Forward(dst, src)
	}
	return errors.New("fft: missing forward plan")
}

func (p *plan) inverse(dst []float64, src []complex128) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fast != nil {
		p.fast.Inverse(dst, src)
		return nil
	}
	if p.safe != nil {
		return p.safe.Inverse(dst, src)
	}
	return errors.New("fft: missing inverse plan")
}

// Transform runs a forward real FFT over signal at the given sampling rate
// and returns a DFT view over the resulting half-spectrum.
func Transform(signal []float64, rate units.SamplingRate) (*DFT, error) {
	p, err := getPlan(len(signal))
	if err != nil {
		return nil, fmt.Errorf("fft: building plan for length %d: %w", len(signal), err)
	}
	spectrum := make([]complex128, len(signal)/2+1)
	if err := p.forward(spectrum, signal); err != nil {
		return nil, err
	}
	return &DFT{spectrum: spectrum, length: len(signal), rate: rate}, nil
}

// DFT is a view over the complex spectrum of a fixed-length real signal.
type DFT struct {
	spectrum []complex128
	length   int
	rate     units.SamplingRate
}

// FrequencySteps returns the number of usable frequency bins (the
// half-spectrum, excluding the Nyquist/DC duplication).
func (d *DFT) FrequencySteps() int {
	return len(d.spectrum) - 1
}

// Step returns the frequency spacing between adjacent bins.
func (d *DFT) Step() units.Frequency {
	steps := d.FrequencySteps()
	if steps == 0 {
		return 0
	}
	return d.rate.MaxFrequency() / units.Frequency(steps)
}

// BandSteps returns the bin index range [lo, hi) covering freq ± k*Step(),
// clamped to the valid bin range.
func (d *DFT) BandSteps(freq units.Frequency, k int) (lo, hi int, err error) {
	step := d.Step()
	if step == 0 {
		return 0, 0, ErrFrequencyOutOfBounds
	}
	center := int(float64(freq) / float64(step))
	lo = center - k
	hi = center + k + 1
	if lo < 0 {
		lo = 0
	}
	if hi > d.FrequencySteps()+1 {
		hi = d.FrequencySteps() + 1
	}
	if lo >= hi {
		return 0, 0, ErrFrequencyOutOfBounds
	}
	return lo, hi, nil
}

// Band returns the spectrum bins covering freq with the given one-sided
// bandwidth.
func (d *DFT) Band(freq units.Frequency, bandwidth units.Frequency) ([]complex128, error) {
	step := d.Step()
	if step == 0 {
		return nil, ErrFrequencyOutOfBounds
	}
	k := int(float64(bandwidth) / float64(step))
	lo, hi, err := d.BandSteps(freq, k)
	if err != nil {
		return nil, err
	}
	return d.spectrum[lo:hi], nil
}

// AbsoluteAmplitudeAverageAt returns the mean magnitude of the bins in the
// band around freq. This is the carrier-detection primitive: a clean tone
// at freq produces one dominant bin, so averaging a narrow band around it
// is robust to the tone landing slightly off a bin center.
func (d *DFT) AbsoluteAmplitudeAverageAt(freq units.Frequency, bandwidth units.Frequency) (units.Amplitude, error) {
	band, err := d.Band(freq, bandwidth)
	if err != nil {
		return 0, err
	}
	return averageMagnitude(band), nil
}

// AbsoluteAmplitudeAverageAtSteps is the BandSteps-indexed equivalent of
// AbsoluteAmplitudeAverageAt, used by the carrier pipeline which already
// works in bin-step units rather than frequency.
func (d *DFT) AbsoluteAmplitudeAverageAtSteps(freq units.Frequency, k int) (units.Amplitude, error) {
	lo, hi, err := d.BandSteps(freq, k)
	if err != nil {
		return 0, err
	}
	return averageMagnitude(d.spectrum[lo:hi]), nil
}

func averageMagnitude(band []complex128) units.Amplitude {
	if len(band) == 0 {
		return 0
	}
	var sum float64
	for _, c := range band {
		sum += cmplx.Abs(c)
	}
	return units.Amplitude(sum / float64(len(band)))
}

// FilterBand zeroes every bin outside [freq-bandwidth, freq+bandwidth] and
// inverse-transforms the result back into the time domain, band-passing
// the original signal around a carrier frequency.
func (d *DFT) FilterBand(freq units.Frequency, bandwidth units.Frequency) ([]float64, error) {
	step := d.Step()
	if step == 0 {
		return nil, ErrFrequencyOutOfBounds
	}
	k := int(float64(bandwidth) / float64(step))
	lo, hi, err := d.BandSteps(freq, k)
	if err != nil {
		return nil, err
	}

	filtered := make([]complex128, len(d.spectrum))
	copy(filtered[lo:hi], d.spectrum[lo:hi])

	p, err := getPlan(d.length)
	if err != nil {
		return nil, err
	}
	out := make([]float64, d.length)
	if err := p.inverse(out, filtered); err != nil {
		return nil, err
	}
	return out, nil
}
