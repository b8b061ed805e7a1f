package decode

import (
	"github.com/cwbudde/amnrzi/carrier"
	"github.com/cwbudde/amnrzi/dsp"
	"github.com/cwbudde/amnrzi/internal/units"
	"github.com/cwbudde/amnrzi/nrzi"
)

// Decoder is the full receive-side pipeline: raw samples in, a
// reconstructed transition stream (and, once enough of it has arrived, a
// decoded payload) out. It owns a carrier.Pipeline for the FFT-amplitude
// stage, a StateMachine for the searching/synchronized transition logic,
// and a rolling noise floor estimate shared across successive searches.
type Decoder struct {
	params       carrier.Parameters
	searchParams SearchParams
	pipeline     *carrier.Pipeline
	sm           *StateMachine
	noiseLevel   *dsp.WindowedWeightedAverage
}

// NewDecoder builds a Decoder over the given derived carrier parameters.
// The initial noise floor estimate is seeded at zero with an internal
// weight of 8 * maxTransitionlessWindows * transitionWidth windows, giving
// the early searches a generously slow-adapting floor until enough real
// signal has been observed to trust it.
func NewDecoder(params carrier.Parameters) *Decoder {
	searchParams := NewSearchParams(params.TransitionWidth, params.WindowWidth, params.MinSNR)
	noiseWindow := float64(8 * params.MaxTransitionlessWindows * params.TransitionWidth)
	return &Decoder{
		params:       params,
		searchParams: searchParams,
		pipeline:     carrier.NewPipeline(params),
		sm:           NewStateMachine(),
		noiseLevel:   dsp.NewWindowedWeightedAverage(0, units.Amplitude(noiseWindow)),
	}
}

// AppendSamples enqueues newly captured raw audio samples.
func (d *Decoder) AppendSamples(samples []float64) {
	d.pipeline.AppendSamples(samples)
}

// SeedCarrierAmplitudes injects a precomputed carrier-amplitude trace
// directly, bypassing the raw-sample-to-FFT stage entirely.
func (d *Decoder) SeedCarrierAmplitudes(amps []units.Amplitude) {
	d.pipeline.AppendCarrierAmplitudes(amps)
}

// Process moves any whole windows now available in the realtime backlog
// into the carrier-amplitude pipeline and then reconstructs as much of the
// transition stream as the available carrier amplitudes allow.
func (d *Decoder) Process() error {
	d.pipeline.DequeueRealtimeSamples()
	if err := d.pipeline.SampleBacklogToCarrierAmplitudes(); err != nil {
		return err
	}
	return d.Parse()
}

// Parse drives the searching/synchronized state machine forward over the
// currently buffered carrier amplitudes until there isn't enough left to
// make further progress.
func (d *Decoder) Parse() error {
	for d.pipeline.Len() > d.searchParams.WindowWidth {
		before := d.pipeline.Len()

		expected, synced := d.sm.Synchronized()
		var err error
		if synced {
			err = d.nextBaud(expected)
		} else {
			err = d.search()
		}
		if err != nil {
			return err
		}

		if d.pipeline.Len() == before {
			// No progress possible until more samples arrive (e.g. a
			// synchronized hold window is still shorter than the full
			// give-up budget); stop rather than spin.
			break
		}
	}
	return nil
}

// search runs one Searching-phase step: look across the entire buffered
// carrier amplitude stream for a clean rising edge. Finding one
// synchronizes the state machine; finding nothing discards everything but
// a trailing half-window, so a transition straddling the search boundary
// is never missed on the next call.
func (d *Decoder) search() error {
	signals := d.pipeline.Peek(d.pipeline.Len())
	res, err := Search(d.searchParams, signals, nrzi.Rising(), nil)
	if err != nil {
		return err
	}
	if res != nil {
		d.sm.ParseTransition(nrzi.Rising())
		d.pipeline.Drain(res.MidTransitionWindowOffset)
		d.noiseLevel.Acc(res.NoiseLevel, units.Amplitude(res.SignalsLen))
		return nil
	}

	keep := d.searchParams.HalfWindowWidth
	if d.pipeline.Len() > keep {
		d.pipeline.Drain(d.pipeline.Len() - keep)
	}
	return nil
}

// nextBaud runs one Synchronized-phase step: search a bounded hold window
// for the expected edge polarity against the rolling noise floor. A hit
// within the transitionless-window budget pushes a Hold run followed by
// the edge; a hit past the budget is treated as Noise; no hit at all
// within the full hold-window budget is a give-up (Hold to the budget,
// then Noise), while no hit with a still-growing window simply waits.
func (d *Decoder) nextBaud(searchFor nrzi.Transition) error {
	holdWindowSize := d.searchParams.WindowWidth*(d.params.MaxTransitionlessWindows+1) + len(d.searchParams.Kernel) + 2
	holdWindow := d.pipeline.Peek(holdWindowSize)

	refNoise := d.noiseLevel.Value()
	res, err := Search(d.searchParams, holdWindow, searchFor, &refNoise)
	if err != nil {
		return err
	}

	if res != nil {
		if res.TransitionlessWindows <= d.params.MaxTransitionlessWindows {
			d.sm.ParseTransition(nrzi.Hold(res.TransitionlessWindows))
			d.sm.ParseTransition(res.Transition)
		} else {
			d.sm.ParseTransition(nrzi.Noise(1))
		}
		d.pipeline.Drain(res.MidTransitionWindowOffset)
		d.noiseLevel.Acc(res.NoiseLevel, units.Amplitude(res.SignalsLen))
		return nil
	}

	if len(holdWindow) >= holdWindowSize {
		d.sm.ParseTransition(nrzi.Hold(d.params.MaxTransitionlessWindows))
		d.sm.ParseTransition(nrzi.Noise(1))
	}
	return nil
}

// Transitions returns the reconstructed transition stream accumulated so
// far.
func (d *Decoder) Transitions() []nrzi.Transition {
	return d.sm.Transitions()
}

// DecodeFrame attempts to decode a full payload frame out of the
// transition stream reconstructed so far.
func (d *Decoder) DecodeFrame(stuffBitAfter int) ([]byte, int, error) {
	return nrzi.Decode(d.sm.Transitions(), stuffBitAfter)
}
