// Command amnrzi-decode recovers a payload message from a WAV file carrying
// an AM-NRZI encoded signal: the received-audio counterpart to
// amnrzi-encode. It resamples the input to the decoder's configured
// sampling rate if the file was captured at a different one, feeds it
// through decode.Decoder in chunks, and reports the decoded payload bytes
// and how many recovered transitions the frame consumed.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/amnrzi/carrier"
	"github.com/cwbudde/amnrzi/config"
	"github.com/cwbudde/amnrzi/decode"
	"github.com/cwbudde/amnrzi/internal/wavio"
)

func main() {
	var (
		in         = flag.String("in", "", "received WAV file (required)")
		configPath = flag.String("config", "", "optional channel parameters JSON file")
	)
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "amnrzi-decode: -in is required")
		os.Exit(2)
	}

	params := config.NewDefaultParams()
	if *configPath != "" {
		var err error
		params, err = config.LoadJSON(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "amnrzi-decode: loading config: %v\n", err)
			os.Exit(1)
		}
	}

	payload, n, err := run(*in, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "amnrzi-decode: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("decoded %d bytes from %d transitions consumed: %q\n", len(payload), n, payload)
}

func run(in string, params *config.Params) ([]byte, int, error) {
	samples, rate, err := wavio.ReadMono(in)
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", in, err)
	}

	samples, err = wavio.ResampleIfNeeded(samples, rate, int(params.SamplingRate))
	if err != nil {
		return nil, 0, fmt.Errorf("resampling: %w", err)
	}

	carrierParams := carrier.NewParameters(
		params.CarrierFrequency,
		params.Baudrate,
		params.TransitionWidthProportion,
		params.MaxTransitionlessWindows,
		params.SamplingRate,
		params.TransitionWindowMovementDivisor,
		params.MinSNR,
	)
	dec := decode.NewDecoder(carrierParams)

	const chunk = 4096
	for off := 0; off < len(samples); off += chunk {
		end := off + chunk
		if end > len(samples) {
			end = len(samples)
		}
		dec.AppendSamples(samples[off:end])
		if err := dec.Process(); err != nil {
			return nil, 0, fmt.Errorf("processing: %w", err)
		}
	}

	return dec.DecodeFrame(params.StuffBitAfter)
}
