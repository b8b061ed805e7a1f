// Command amnrzi-fit searches the channel parameters that most affect
// decode margin — min_snr and transition_width_proportion — the same way
// the teacher repo's piano-fit tools drove an evolutionary mayfly.Config
// search over instrument-body knobs against a fitness function. Here the
// fitness function is decode correctness: for each trial, a synthetic
// AM-NRZI signal is rendered for a reference payload, Gaussian noise with
// a configured standard deviation is injected, and the candidate
// parameters are scored by the fraction of several noisy trials that fail
// to round-trip bit-exact.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sync"

	"github.com/cwbudde/mayfly"

	"github.com/cwbudde/amnrzi/amshaper"
	"github.com/cwbudde/amnrzi/carrier"
	"github.com/cwbudde/amnrzi/config"
	"github.com/cwbudde/amnrzi/decode"
	"github.com/cwbudde/amnrzi/internal/units"
	"github.com/cwbudde/amnrzi/nrzi"
	"github.com/cwbudde/amnrzi/sampler"
)

// knobDef bounds one searched parameter and its mapping between the
// mayfly [0,1]-normalized optimizer space and its physical range.
type knobDef struct {
	name     string
	min, max float64
}

var knobs = []knobDef{
	{name: "min_snr", min: 2.0, max: 15.0},
	{name: "transition_width_proportion", min: 0.05, max: 0.45},
}

func fromNormalized(pos []float64) (minSNR, transitionWidthProportion float64) {
	vals := make([]float64, len(knobs))
	for i, k := range knobs {
		x := clamp(pos[i], 0, 1)
		vals[i] = k.min + x*(k.max-k.min)
	}
	return vals[0], vals[1]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func main() {
	var (
		configPath = flag.String("config", "", "base channel parameters JSON file")
		payload    = flag.String("payload", "ABCD", "reference payload to round-trip during fitting")
		noiseSigma = flag.Float64("noise-sigma", 0.05, "stddev of injected Gaussian noise")
		trials     = flag.Int("trials", 8, "noisy trials per candidate evaluation")
		pop        = flag.Int("pop", 20, "mayfly population size")
		iters      = flag.Int("iters", 40, "mayfly iteration count")
		seed       = flag.Int64("seed", 1, "PRNG seed")
		out        = flag.String("out", "", "optional path to write the fitted config JSON")
	)
	flag.Parse()

	base := config.NewDefaultParams()
	if *configPath != "" {
		var err error
		base, err = config.LoadJSON(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "amnrzi-fit: loading config: %v\n", err)
			os.Exit(1)
		}
	}

	best, bestScore, err := fit(base, []byte(*payload), *noiseSigma, *trials, *pop, *iters, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "amnrzi-fit: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("best score=%.4f min_snr=%.3f transition_width_proportion=%.3f\n",
		bestScore, float64(best.MinSNR), float64(best.TransitionWidthProportion))

	if *out != "" {
		b, err := json.MarshalIndent(toFile(best), "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "amnrzi-fit: marshaling result: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, b, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "amnrzi-fit: writing %s: %v\n", *out, err)
			os.Exit(1)
		}
	}
}

// fit runs the mayfly search and returns the best-scoring candidate
// parameters (score is the fraction of noisy trials that failed to
// round-trip bit-exact; 0 is a perfect score).
func fit(base *config.Params, payload []byte, noiseSigma float64, trials, pop, iters int, seed int64) (*config.Params, float64, error) {
	state := &fitState{bestScore: math.Inf(1)}

	cfg := mayfly.NewDefaultConfig()
	cfg.ProblemSize = len(knobs)
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	cfg.NC = 2 * pop
	cfg.NM = maxInt(1, int(math.Round(0.05*float64(pop))))
	cfg.Rand = rand.New(rand.NewSource(seed))
	cfg.ObjectiveFunc = func(pos []float64) float64 {
		minSNR, transitionWidthProportion := fromNormalized(pos)
		candidate := cloneParams(base)
		candidate.MinSNR = units.Proportion(minSNR)
		candidate.TransitionWidthProportion = units.Proportion(transitionWidthProportion)

		score := evaluate(candidate, payload, noiseSigma, trials, rand.New(rand.NewSource(seed^0x5bd1e995)))

		state.mu.Lock()
		if score < state.bestScore {
			state.bestScore = score
			state.best = candidate
		}
		state.mu.Unlock()

		return score
	}

	if _, err := mayfly.Optimize(cfg); err != nil {
		return nil, 0, fmt.Errorf("mayfly: %w", err)
	}
	if state.best == nil {
		return base, math.Inf(1), nil
	}
	return state.best, state.bestScore, nil
}

type fitState struct {
	mu        sync.Mutex
	best      *config.Params
	bestScore float64
}

// evaluate renders payload through the AM-NRZI pipeline under candidate,
// injects trials worth of Gaussian noise, decodes each, and returns the
// fraction that failed to recover payload exactly.
func evaluate(candidate *config.Params, payload []byte, noiseSigma float64, trials int, rng *rand.Rand) float64 {
	carrierParams := carrier.NewParameters(
		candidate.CarrierFrequency,
		candidate.Baudrate,
		candidate.TransitionWidthProportion,
		candidate.MaxTransitionlessWindows,
		candidate.SamplingRate,
		candidate.TransitionWindowMovementDivisor,
		candidate.MinSNR,
	)

	clean := renderClean(candidate, payload)

	failures := 0
	for t := 0; t < trials; t++ {
		noisy := addNoise(clean, noiseSigma, rng)

		dec := decode.NewDecoder(carrierParams)
		const chunk = 4096
		ok := true
		for off := 0; off < len(noisy); off += chunk {
			end := off + chunk
			if end > len(noisy) {
				end = len(noisy)
			}
			dec.AppendSamples(noisy[off:end])
			if err := dec.Process(); err != nil {
				ok = false
				break
			}
		}
		if !ok {
			failures++
			continue
		}

		got, _, err := dec.DecodeFrame(candidate.StuffBitAfter)
		if err != nil || string(got) != string(payload) {
			failures++
		}
	}
	return float64(failures) / float64(trials)
}

func renderClean(params *config.Params, payload []byte) []float64 {
	enc := nrzi.NewEncoder(payload, params.StuffBitAfter)
	shaper := amshaper.NewShaper(params.Baudrate, params.TransitionWidthProportion, params.HighAmplitude, params.LowAmplitude, enc)

	envelope := sampler.NewSignalSampler(shaper)
	carrierWave := sampler.NewWaveSampler(sampler.NewSine(params.CarrierFrequency, 0, units.Amplitude(1.0)))
	am := sampler.NewCompositeSampler(envelope, carrierWave, func(e, c float64) float64 { return e * c })

	const chunk = 1024
	buf := make([]float64, chunk)
	var out []float64
	for !shaper.Finished() {
		am.SampleInto(buf, params.SamplingRate)
		out = append(out, buf...)
	}
	return out
}

func addNoise(in []float64, sigma float64, rng *rand.Rand) []float64 {
	if sigma <= 0 {
		return in
	}
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = v + sigma*rng.NormFloat64()
	}
	return out
}

func cloneParams(p *config.Params) *config.Params {
	cp := *p
	return &cp
}

func toFile(p *config.Params) config.File {
	carrierFrequency := float64(p.CarrierFrequency)
	baudrate := float64(p.Baudrate)
	transitionWidthProportion := float64(p.TransitionWidthProportion)
	maxTransitionlessWindows := p.MaxTransitionlessWindows
	samplingRate := int(p.SamplingRate)
	transitionWindowMovementDivisor := p.TransitionWindowMovementDivisor
	minSNR := float64(p.MinSNR)
	stuffBitAfter := p.StuffBitAfter
	highAmplitude := float64(p.HighAmplitude)
	lowAmplitude := float64(p.LowAmplitude)
	return config.File{
		CarrierFrequency:                &carrierFrequency,
		Baudrate:                        &baudrate,
		TransitionWidthProportion:       &transitionWidthProportion,
		MaxTransitionlessWindows:        &maxTransitionlessWindows,
		SamplingRate:                    &samplingRate,
		TransitionWindowMovementDivisor: &transitionWindowMovementDivisor,
		MinSNR:                          &minSNR,
		StuffBitAfter:                   &stuffBitAfter,
		HighAmplitude:                   &highAmplitude,
		LowAmplitude:                    &lowAmplitude,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
