package decode

import (
	"bytes"
	"testing"

	"github.com/cwbudde/amnrzi/carrier"
	"github.com/cwbudde/amnrzi/internal/units"
	"github.com/cwbudde/amnrzi/nrzi"
)

// traceSymbols turns an NRZI symbol stream into a carrier-amplitude trace:
// samplesPerBaud amplitude samples per symbol, square-edged (no ramp) since
// the step kernel only needs a one-sample difference to register a clean
// edge. A run of leadInSamples Low samples is prepended so the very first
// Rising edge has context to be detected against, mirroring a channel's
// silence before transmission begins, and a long flat tail is appended so
// the decoder's own give-up logic can close out the frame once the
// transmission ends.
func traceSymbols(symbols []nrzi.Symbol, samplesPerBaud, leadInSamples, tailSamples int, low, high units.Amplitude) []units.Amplitude {
	out := make([]units.Amplitude, 0, leadInSamples+len(symbols)*samplesPerBaud+tailSamples)
	for i := 0; i < leadInSamples; i++ {
		out = append(out, low)
	}

	levelHigh := false
	for _, sym := range symbols {
		if sym.IsComplete() {
			continue
		}
		if sym.Transition(levelHigh) {
			levelHigh = !levelHigh
		}
		level := low
		if levelHigh {
			level = high
		}
		for i := 0; i < samplesPerBaud; i++ {
			out = append(out, level)
		}
	}

	tailLevel := low
	if levelHigh {
		tailLevel = high
	}
	for i := 0; i < tailSamples; i++ {
		out = append(out, tailLevel)
	}
	return out
}

func TestDecoderRecoversFrameFromCarrierTrace(t *testing.T) {
	cases := []struct {
		name          string
		payload       []byte
		stuffBitAfter int
	}{
		{"ABCD", []byte("ABCD"), 5},
		{"single byte ending in a full zero run", []byte{0b1001_1000}, 3},
	}

	const (
		windowWidth    = 6
		transitionW    = 2
		maxTransWin    = 2
		samplesPerBaud = windowWidth
	)

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			enc := nrzi.NewEncoder(c.payload, c.stuffBitAfter)
			var symbols []nrzi.Symbol
			for {
				sym, ok := enc.Next()
				if !ok {
					break
				}
				symbols = append(symbols, sym)
				if sym.IsComplete() {
					break
				}
			}

			trace := traceSymbols(symbols, samplesPerBaud, windowWidth*2, windowWidth*8, units.Amplitude(0), units.Amplitude(1))

			params := carrier.Parameters{
				CarrierFrequency:         0,
				SamplingRate:             0,
				FFTWindowSC:              1,
				TransitionWidth:          transitionW,
				WindowWidth:              windowWidth,
				MaxTransitionlessWindows: maxTransWin,
				MinSNR:                   units.Proportion(0.3),
			}

			d := NewDecoder(params)
			d.SeedCarrierAmplitudes(trace)
			if err := d.Parse(); err != nil {
				t.Fatalf("Parse: %v", err)
			}

			transitions := d.Transitions()
			if len(transitions) == 0 || !transitions[0].IsRising() {
				t.Fatalf("expected the reconstructed stream to start with Rising, got %v", transitions)
			}

			got, _, err := d.DecodeFrame(c.stuffBitAfter)
			if err != nil {
				t.Fatalf("DecodeFrame: %v (transitions=%v)", err, transitions)
			}
			if !bytes.Equal(got, c.payload) {
				t.Fatalf("DecodeFrame() = %v, want %v", got, c.payload)
			}
		})
	}
}
