// Command amnrzi-encode renders a payload message as an AM-NRZI encoded
// WAV file: a carrier tone amplitude-modulated by the NRZI line code, the
// same way amshaper.Shaper and sampler.CompositeSampler compose a signal
// and a wave into one sample stream.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/amnrzi/amshaper"
	"github.com/cwbudde/amnrzi/config"
	"github.com/cwbudde/amnrzi/internal/units"
	"github.com/cwbudde/amnrzi/internal/wavio"
	"github.com/cwbudde/amnrzi/nrzi"
	"github.com/cwbudde/amnrzi/sampler"
)

func main() {
	var (
		text       = flag.String("text", "", "payload message to encode (required)")
		out        = flag.String("out", "out.wav", "output WAV path")
		configPath = flag.String("config", "", "optional channel parameters JSON file")
		leadIn     = flag.Float64("lead-in", 0.005, "seconds of silence before the frame")
		leadOut    = flag.Float64("lead-out", 0.5, "seconds of silence after the frame")
	)
	flag.Parse()

	if *text == "" {
		fmt.Fprintln(os.Stderr, "amnrzi-encode: -text is required")
		os.Exit(2)
	}

	params := config.NewDefaultParams()
	if *configPath != "" {
		var err error
		params, err = config.LoadJSON(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "amnrzi-encode: loading config: %v\n", err)
			os.Exit(1)
		}
	}

	if err := run(*text, *out, *leadIn, *leadOut, params); err != nil {
		fmt.Fprintf(os.Stderr, "amnrzi-encode: %v\n", err)
		os.Exit(1)
	}
}

func run(text, out string, leadIn, leadOut float64, params *config.Params) error {
	enc := nrzi.NewEncoder([]byte(text), params.StuffBitAfter)
	shaper := amshaper.NewShaper(params.Baudrate, params.TransitionWidthProportion, params.HighAmplitude, params.LowAmplitude, enc)

	envelope := sampler.NewSignalSampler(shaper)
	carrier := sampler.NewWaveSampler(sampler.NewSine(params.CarrierFrequency, 0, units.Amplitude(1.0)))
	am := sampler.NewCompositeSampler(envelope, carrier, func(e, c float64) float64 { return e * c })

	const chunk = 1024
	buf := make([]float64, chunk)

	var out64 []float64
	leadInSamples := int(params.SamplingRate.Samples(units.Time(leadIn)))
	out64 = append(out64, make([]float64, leadInSamples)...)

	for !shaper.Finished() {
		am.SampleInto(buf, params.SamplingRate)
		out64 = append(out64, buf...)
	}

	leadOutSamples := int(params.SamplingRate.Samples(units.Time(leadOut)))
	out64 = append(out64, make([]float64, leadOutSamples)...)

	out32 := make([]float32, len(out64))
	for i, v := range out64 {
		out32[i] = float32(v)
	}

	return wavio.WriteMono(out, out32, int(params.SamplingRate))
}
