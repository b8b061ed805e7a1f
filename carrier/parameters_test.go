package carrier

import (
	"testing"

	"github.com/cwbudde/amnrzi/internal/units"
)

func TestNewParametersFFTWindowSC(t *testing.T) {
	cases := []struct {
		name            string
		baudrate        units.Frequency
		divisor         int
		wantFFTWindowSC int
		wantTransWidth  int
	}{
		{"baudrate 100Hz, divisor 8", 100, 8, 55, 2},
		{"baudrate 1000Hz, divisor 32", 1000, 32, 1, 8},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := NewParameters(
				units.Frequency(20000),
				c.baudrate,
				units.Proportion(0.25),
				5,
				units.SamplingRate(44100),
				c.divisor,
				units.Proportion(5.0),
			)
			if p.FFTWindowSC != c.wantFFTWindowSC {
				t.Fatalf("FFTWindowSC = %d, want %d", p.FFTWindowSC, c.wantFFTWindowSC)
			}
			if p.TransitionWidth != c.wantTransWidth {
				t.Fatalf("TransitionWidth = %d, want %d", p.TransitionWidth, c.wantTransWidth)
			}
			if p.WindowWidth != c.divisor {
				t.Fatalf("WindowWidth = %d, want %d", p.WindowWidth, c.divisor)
			}
		})
	}
}
