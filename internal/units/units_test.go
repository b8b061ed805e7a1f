package units

import (
	"math"
	"testing"
)

func TestFrequencyCycleTime(t *testing.T) {
	f := Frequency(100)
	got := f.CycleTime()
	want := Time(0.01)
	if math.Abs(float64(got-want)) > 1e-12 {
		t.Fatalf("CycleTime(100Hz) = %v, want %v", got, want)
	}
}

func TestSamplingRateSamples(t *testing.T) {
	r := SamplingRate(44100)
	got := r.Samples(Time(1.0))
	if got != 44100 {
		t.Fatalf("Samples(1s) = %d, want 44100", got)
	}
	// Rounds up on fractional samples.
	got = r.Samples(Time(1.0 / 44100.0 * 1.5))
	if got != 2 {
		t.Fatalf("Samples(1.5 sample durations) = %d, want 2", got)
	}
}

func TestAmplitudeRelativeTo(t *testing.T) {
	a := Amplitude(2.0)
	b := Amplitude(4.0)
	got := a.RelativeTo(b)
	if math.Abs(float64(got-0.5)) > 1e-9 {
		t.Fatalf("RelativeTo = %v, want 0.5", got)
	}

	// Zero denominator must not panic or produce NaN/Inf.
	got = a.RelativeTo(0)
	if got == 0 || float64(got) != float64(got) {
		t.Fatalf("RelativeTo(0) produced unusable value %v", got)
	}
}

func TestProportionScaleUsize(t *testing.T) {
	p := Proportion(0.25)
	if got := p.ScaleUsize(10); got != 2 {
		t.Fatalf("ScaleUsize(10) = %d, want 2 (truncated from 2.5)", got)
	}
}

func TestFrequencyBandwidthSteps(t *testing.T) {
	f := Frequency(1000)
	step := Frequency(10)
	if got := f.BandwidthSteps(step); got != 50 {
		t.Fatalf("BandwidthSteps = %d, want 50", got)
	}
}

func TestRationalFractionReduce(t *testing.T) {
	r := RationalFraction{Num: 6, Den: 8}.Reduce()
	if r.Num != 3 || r.Den != 4 {
		t.Fatalf("Reduce() = %+v, want {3 4}", r)
	}
}
