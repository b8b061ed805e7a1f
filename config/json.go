// Package config loads the modem's channel parameters from a JSON file,
// the way the piano engine's preset package loads instrument parameters:
// every field is optional in the file and only overrides a sensible
// default, so a config file only needs to mention what it changes.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cwbudde/amnrzi/internal/units"
)

// Params are the fixed channel parameters shared by the encode and decode
// sides: both ends of a link must agree on these or the line code won't
// line up.
type Params struct {
	CarrierFrequency                units.Frequency
	Baudrate                        units.Frequency
	TransitionWidthProportion       units.Proportion
	MaxTransitionlessWindows        int
	SamplingRate                    units.SamplingRate
	TransitionWindowMovementDivisor int
	MinSNR                          units.Proportion
	StuffBitAfter                   int
	HighAmplitude                   units.Amplitude
	LowAmplitude                    units.Amplitude
}

// NewDefaultParams returns the parameters used throughout this repo's own
// tests and examples: a 20kHz carrier, 100 baud, a quarter-baud transition
// width, at 44.1kHz sampling.
func NewDefaultParams() *Params {
	return &Params{
		CarrierFrequency:                units.Frequency(20000),
		Baudrate:                        units.Frequency(100),
		TransitionWidthProportion:       units.Proportion(0.25),
		MaxTransitionlessWindows:        5,
		SamplingRate:                    units.SamplingRate(44100),
		TransitionWindowMovementDivisor: 8,
		MinSNR:                          units.Proportion(5.0),
		StuffBitAfter:                   4,
		HighAmplitude:                   units.Amplitude(1.0),
		LowAmplitude:                    units.Amplitude(0.0),
	}
}

// File is the JSON schema for a channel parameters file: every field is a
// pointer so a missing key leaves the corresponding default untouched.
type File struct {
	CarrierFrequency                *float64 `json:"carrier_frequency"`
	Baudrate                        *float64 `json:"baudrate"`
	TransitionWidthProportion       *float64 `json:"transition_width_proportion"`
	MaxTransitionlessWindows        *int     `json:"max_transitionless_windows"`
	SamplingRate                    *int     `json:"sampling_rate"`
	TransitionWindowMovementDivisor *int     `json:"transition_window_movement_divisor"`
	MinSNR                          *float64 `json:"min_snr"`
	StuffBitAfter                   *int     `json:"stuff_bit_after"`
	HighAmplitude                   *float64 `json:"high_amplitude"`
	LowAmplitude                    *float64 `json:"low_amplitude"`
}

// LoadJSON reads a channel parameters file from path and applies it on top
// of the default parameters.
func LoadJSON(path string) (*Params, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	p := NewDefaultParams()
	if err := ApplyFile(p, &f); err != nil {
		return nil, err
	}
	return p, nil
}

// ApplyFile applies a parsed file onto an existing Params, validating each
// field as it's set.
func ApplyFile(dst *Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("config: nil destination params")
	}
	if f == nil {
		return nil
	}

	if f.CarrierFrequency != nil {
		if *f.CarrierFrequency <= 0 {
			return fmt.Errorf("config: carrier_frequency must be > 0")
		}
		dst.CarrierFrequency = units.Frequency(*f.CarrierFrequency)
	}
	if f.Baudrate != nil {
		if *f.Baudrate <= 0 {
			return fmt.Errorf("config: baudrate must be > 0")
		}
		dst.Baudrate = units.Frequency(*f.Baudrate)
	}
	if f.TransitionWidthProportion != nil {
		if *f.TransitionWidthProportion <= 0 || *f.TransitionWidthProportion >= 1 {
			return fmt.Errorf("config: transition_width_proportion must be in (0,1)")
		}
		dst.TransitionWidthProportion = units.Proportion(*f.TransitionWidthProportion)
	}
	if f.MaxTransitionlessWindows != nil {
		if *f.MaxTransitionlessWindows < 1 {
			return fmt.Errorf("config: max_transitionless_windows must be >= 1")
		}
		dst.MaxTransitionlessWindows = *f.MaxTransitionlessWindows
	}
	if f.SamplingRate != nil {
		if *f.SamplingRate <= 0 {
			return fmt.Errorf("config: sampling_rate must be > 0")
		}
		dst.SamplingRate = units.SamplingRate(*f.SamplingRate)
	}
	if f.TransitionWindowMovementDivisor != nil {
		if *f.TransitionWindowMovementDivisor < 1 {
			return fmt.Errorf("config: transition_window_movement_divisor must be >= 1")
		}
		dst.TransitionWindowMovementDivisor = *f.TransitionWindowMovementDivisor
	}
	if f.MinSNR != nil {
		if *f.MinSNR <= 0 {
			return fmt.Errorf("config: min_snr must be > 0")
		}
		dst.MinSNR = units.Proportion(*f.MinSNR)
	}
	if f.StuffBitAfter != nil {
		if *f.StuffBitAfter < 1 {
			return fmt.Errorf("config: stuff_bit_after must be >= 1")
		}
		dst.StuffBitAfter = *f.StuffBitAfter
	}
	if f.HighAmplitude != nil {
		dst.HighAmplitude = units.Amplitude(*f.HighAmplitude)
	}
	if f.LowAmplitude != nil {
		dst.LowAmplitude = units.Amplitude(*f.LowAmplitude)
	}
	if dst.HighAmplitude <= dst.LowAmplitude {
		return fmt.Errorf("config: high_amplitude must be greater than low_amplitude")
	}
	return nil
}
