// Package decode turns a stream of carrier amplitude samples into a frame
// of decoded payload bytes: it finds rising/falling edges via a gated
// step-convolution search, feeds them through a two-phase
// searching/synchronized state machine that reconstructs the canonical
// NRZI transition stream, and hands that stream to nrzi.Decode.
package decode

import (
	"github.com/cwbudde/amnrzi/dsp"
	"github.com/cwbudde/amnrzi/internal/units"
	"github.com/cwbudde/amnrzi/nrzi"
)

// StepKernel builds the [-1, 0, ..., 0, 1] convolution kernel used to
// detect a transition of the given width: convolving it against a flat
// signal is near zero, but a step response peaks at one end and troughs at
// the other. A trapezoidal kernel with a flat plateau between its ramps is
// not implemented; this step kernel is the only one.
func StepKernel(transitionWidth int) []units.Amplitude {
	k := make([]units.Amplitude, transitionWidth)
	if transitionWidth == 0 {
		return k
	}
	k[0] = -1
	k[transitionWidth-1] = 1
	return k
}

// SearchParams are the fixed parameters governing one transition search:
// the step kernel, the SNR gate, and the window geometry used to turn a
// hit index back into sample offsets.
type SearchParams struct {
	Kernel          []units.Amplitude
	WindowWidth     int
	HalfWindowWidth int
	MonitorWidth    int
	MinSNR          units.Proportion
}

// NewSearchParams derives SearchParams the way the decode pipeline's
// transition search is configured: from a kernel width (in windows) and a
// window width (in windows) used both to decide how far to look ahead for
// the next transition and to convert a hit offset into a transitionless
// window count.
func NewSearchParams(transitionWidth, windowWidth int, minSNR units.Proportion) SearchParams {
	return SearchParams{
		Kernel:          StepKernel(transitionWidth),
		WindowWidth:     windowWidth,
		HalfWindowWidth: windowWidth / 2,
		MonitorWidth:    windowWidth * 2,
		MinSNR:          minSNR,
	}
}

// Result is what a successful Search reports: which edge was found, where
// it sits in the searched signal, how confident the detection was, and how
// many windows preceded it with no transition at all.
type Result struct {
	Transition                nrzi.Transition
	SigBeginOffset            int
	MidTransitionWindowOffset int
	TransitionlessWindows     int
	SNR                       units.Proportion
	NoiseLevel                units.Amplitude
	SignalsLen                int
}

// Search convolves signals with the step kernel and scans for the first
// SNR-gated, non-maximum-suppressed peak matching searchFor's polarity
// (Rising looks for a positive peak, Falling for a negative one). When
// refNoiseLevel is non-nil it is used as the noise floor instead of the
// noise level computed from this call's own convolution, letting a caller
// hold the floor steady across repeated searches over a sliding window.
// Search returns (nil, nil) when no qualifying transition is found.
func Search(params SearchParams, signals []units.Amplitude, searchFor nrzi.Transition, refNoiseLevel *units.Amplitude) (*Result, error) {
	if len(signals) < len(params.Kernel) {
		return nil, nil
	}
	conv := make([]units.Amplitude, dsp.ValidResultLength(len(signals), len(params.Kernel)))
	if err := dsp.ConvValid(signals, params.Kernel, conv); err != nil {
		return nil, err
	}

	var sumAbs units.Amplitude
	for _, c := range conv {
		sumAbs += c.Abs()
	}
	calculatedNoiseLevel := sumAbs / units.Amplitude(len(signals))

	noiseLevel := calculatedNoiseLevel
	if refNoiseLevel != nil {
		noiseLevel = *refNoiseLevel
	}

	for idx := 0; idx+2 < len(conv); idx++ {
		a, mid, c := conv[idx], conv[idx+1], conv[idx+2]
		var hit bool
		switch {
		case searchFor.IsRising():
			hit = mid.RelativeTo(noiseLevel) > params.MinSNR && dsp.NMS(a, mid, c)
		case searchFor.IsFalling():
			hit = mid.RelativeTo(noiseLevel) < -params.MinSNR && dsp.NMS(a, mid, c)
		}
		if !hit {
			continue
		}

		sigBeginOffset := idx + 1
		return &Result{
			Transition:                searchFor,
			SigBeginOffset:            sigBeginOffset,
			MidTransitionWindowOffset: sigBeginOffset + params.HalfWindowWidth,
			TransitionlessWindows:     sigBeginOffset / params.WindowWidth,
			SNR:                       mid.Abs().RelativeTo(noiseLevel),
			NoiseLevel:                calculatedNoiseLevel,
			SignalsLen:                len(signals),
		}, nil
	}

	return nil, nil
}
