// Package carrier derives the decoder's fixed parameters from the channel's
// carrier frequency, baudrate and sampling rate, and turns a stream of raw
// audio samples into a stream of per-window carrier amplitudes.
package carrier

import "github.com/cwbudde/amnrzi/internal/units"

// Parameters are the fixed, derived quantities the decode pipeline needs:
// how many samples make up one FFT analysis window, how many windows make
// up a baud, and the convolution kernel width for transition search.
type Parameters struct {
	CarrierFrequency units.Frequency
	SamplingRate     units.SamplingRate

	// FFTWindowSC is how many raw samples are consumed per carrier
	// amplitude sample.
	FFTWindowSC int

	// TransitionWidth is the step-kernel width, in windows.
	TransitionWidth int

	// WindowWidth is how many windows make up one baud's worth of search
	// granularity (the transition_window_movement_divisor).
	WindowWidth int

	// MaxTransitionlessWindows bounds how many consecutive silent windows
	// the decode state machine tolerates before giving up and declaring
	// Noise.
	MaxTransitionlessWindows int

	MinSNR units.Proportion
}

// NewParameters derives Parameters the way the transmit/receive contract
// requires: one baud period is divided into transitionWindowMovementDivisor
// windows, each analyzed via one FFT of fftWindowSC samples.
func NewParameters(
	carrierFrequency units.Frequency,
	baudrate units.Frequency,
	transitionWidthProportion units.Proportion,
	maxTransitionlessWindows int,
	samplingRate units.SamplingRate,
	transitionWindowMovementDivisor int,
	minSNR units.Proportion,
) Parameters {
	baudLength := baudrate.CycleTime()
	transitionWindowSampleCount := int(samplingRate.Samples(baudLength))
	fftWindowSC := transitionWindowSampleCount / transitionWindowMovementDivisor

	return Parameters{
		CarrierFrequency:         carrierFrequency,
		SamplingRate:             samplingRate,
		FFTWindowSC:              fftWindowSC,
		TransitionWidth:          transitionWidthProportion.ScaleUsize(transitionWindowMovementDivisor),
		WindowWidth:              transitionWindowMovementDivisor,
		MaxTransitionlessWindows: maxTransitionlessWindows,
		MinSNR:                   minSNR,
	}
}
