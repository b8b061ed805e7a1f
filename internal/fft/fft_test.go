package fft

import (
	"math"
	"testing"

	"github.com/cwbudde/amnrzi/internal/units"
)

func TestTransformDetectsTone(t *testing.T) {
	const rate = units.SamplingRate(8000)
	const n = 256
	const toneHz = 1000.0

	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * toneHz * float64(i) / float64(rate))
	}

	d, err := Transform(signal, rate)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	onTone, err := d.AbsoluteAmplitudeAverageAt(units.Frequency(toneHz), units.Frequency(50))
	if err != nil {
		t.Fatalf("AbsoluteAmplitudeAverageAt(tone): %v", err)
	}
	offTone, err := d.AbsoluteAmplitudeAverageAt(units.Frequency(3000), units.Frequency(50))
	if err != nil {
		t.Fatalf("AbsoluteAmplitudeAverageAt(off): %v", err)
	}
	if onTone <= offTone*4 {
		t.Fatalf("expected strong separation between tone and off-tone energy: on=%v off=%v", onTone, offTone)
	}
}

func TestBandStepsOutOfBounds(t *testing.T) {
	const rate = units.SamplingRate(8000)
	signal := make([]float64, 128)
	d, err := Transform(signal, rate)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if _, _, err := d.BandSteps(units.Frequency(100000), 1); err != ErrFrequencyOutOfBounds {
		t.Fatalf("expected ErrFrequencyOutOfBounds, got %v", err)
	}
}

func TestFilterBandIsolatesTone(t *testing.T) {
	const rate = units.SamplingRate(8000)
	const n = 256
	signal := make([]float64, n)
	for i := range signal {
		t := float64(i) / float64(rate)
		signal[i] = math.Sin(2*math.Pi*1000*t) + 0.8*math.Sin(2*math.Pi*3000*t)
	}

	d, err := Transform(signal, rate)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	filtered, err := d.FilterBand(units.Frequency(1000), units.Frequency(75))
	if err != nil {
		t.Fatalf("FilterBand: %v", err)
	}
	if len(filtered) != n {
		t.Fatalf("len(filtered) = %d, want %d", len(filtered), n)
	}

	fd, err := Transform(filtered, rate)
	if err != nil {
		t.Fatalf("Transform(filtered): %v", err)
	}
	remaining3k, err := fd.AbsoluteAmplitudeAverageAt(units.Frequency(3000), units.Frequency(50))
	if err != nil {
		t.Fatalf("AbsoluteAmplitudeAverageAt: %v", err)
	}
	remaining1k, err := fd.AbsoluteAmplitudeAverageAt(units.Frequency(1000), units.Frequency(50))
	if err != nil {
		t.Fatalf("AbsoluteAmplitudeAverageAt: %v", err)
	}
	if remaining3k >= remaining1k {
		t.Fatalf("expected the 3kHz component to be suppressed relative to 1kHz: 1k=%v 3k=%v", remaining1k, remaining3k)
	}
}
