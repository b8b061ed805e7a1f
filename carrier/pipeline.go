package carrier

import (
	"sync"

	"github.com/cwbudde/amnrzi/internal/fft"
	"github.com/cwbudde/amnrzi/internal/units"
)

// Pipeline turns a live stream of raw audio samples into a stream of
// carrier-amplitude samples, one per FFT analysis window. It is safe for
// one writer goroutine (AppendSamples) and one processing goroutine
// (Process) to use concurrently: realtime samples land in a small
// realtime-locked queue and are only moved into the window-aligned
// processing backlog in whole-window chunks, so a partial window is never
// split across two FFT calls.
type Pipeline struct {
	params Parameters

	realtimeMu      sync.Mutex
	realtimeBacklog []float64

	backlogMu sync.Mutex
	backlog   []float64

	carrierMu         sync.Mutex
	carrierAmplitudes []units.Amplitude
}

// NewPipeline builds a Pipeline for the given derived parameters.
func NewPipeline(params Parameters) *Pipeline {
	return &Pipeline{params: params}
}

// AppendSamples enqueues newly captured samples onto the realtime backlog.
func (p *Pipeline) AppendSamples(samples []float64) {
	p.realtimeMu.Lock()
	defer p.realtimeMu.Unlock()
	p.realtimeBacklog = append(p.realtimeBacklog, samples...)
}

// DequeueRealtimeSamples moves the largest whole-window-aligned prefix of
// the realtime backlog into the processing backlog, leaving any partial
// window in place for the next call.
func (p *Pipeline) DequeueRealtimeSamples() {
	p.realtimeMu.Lock()
	n := (len(p.realtimeBacklog) / p.params.FFTWindowSC) * p.params.FFTWindowSC
	moved := append([]float64(nil), p.realtimeBacklog[:n]...)
	p.realtimeBacklog = p.realtimeBacklog[n:]
	p.realtimeMu.Unlock()

	if len(moved) == 0 {
		return
	}
	p.backlogMu.Lock()
	p.backlog = append(p.backlog, moved...)
	p.backlogMu.Unlock()
}

// SampleBacklogToCarrierAmplitudes drains every whole window currently
// sitting in the processing backlog, runs one FFT per window, and appends
// the carrier-band amplitude average onto the carrier amplitude stream.
func (p *Pipeline) SampleBacklogToCarrierAmplitudes() error {
	for {
		p.backlogMu.Lock()
		if len(p.backlog) < p.params.FFTWindowSC {
			p.backlogMu.Unlock()
			return nil
		}
		window := append([]float64(nil), p.backlog[:p.params.FFTWindowSC]...)
		p.backlog = p.backlog[p.params.FFTWindowSC:]
		p.backlogMu.Unlock()

		dft, err := fft.Transform(window, p.params.SamplingRate)
		if err != nil {
			return err
		}
		amp, err := dft.AbsoluteAmplitudeAverageAtSteps(p.params.CarrierFrequency, 0)
		if err != nil {
			return err
		}

		p.carrierMu.Lock()
		p.carrierAmplitudes = append(p.carrierAmplitudes, amp)
		p.carrierMu.Unlock()
	}
}

// AppendCarrierAmplitudes seeds the carrier amplitude stream directly,
// bypassing the raw-sample-to-FFT stage. This is the entry point for a
// caller that already has a precomputed carrier envelope (a recorded
// carrier-amplitude trace, or a test fixture) rather than raw audio.
func (p *Pipeline) AppendCarrierAmplitudes(amps []units.Amplitude) {
	p.carrierMu.Lock()
	defer p.carrierMu.Unlock()
	p.carrierAmplitudes = append(p.carrierAmplitudes, amps...)
}

// CarrierAmplitudes returns a snapshot copy of the accumulated carrier
// amplitude stream.
func (p *Pipeline) CarrierAmplitudes() []units.Amplitude {
	p.carrierMu.Lock()
	defer p.carrierMu.Unlock()
	out := make([]units.Amplitude, len(p.carrierAmplitudes))
	copy(out, p.carrierAmplitudes)
	return out
}

// Len reports how many carrier amplitude samples are currently buffered.
func (p *Pipeline) Len() int {
	p.carrierMu.Lock()
	defer p.carrierMu.Unlock()
	return len(p.carrierAmplitudes)
}

// Drain removes and returns the first n carrier amplitude samples.
func (p *Pipeline) Drain(n int) []units.Amplitude {
	p.carrierMu.Lock()
	defer p.carrierMu.Unlock()
	if n > len(p.carrierAmplitudes) {
		n = len(p.carrierAmplitudes)
	}
	out := append([]units.Amplitude(nil), p.carrierAmplitudes[:n]...)
	p.carrierAmplitudes = p.carrierAmplitudes[n:]
	return out
}

// Peek returns a copy of the first n carrier amplitude samples (or fewer,
// if that many aren't yet available) without removing them.
func (p *Pipeline) Peek(n int) []units.Amplitude {
	p.carrierMu.Lock()
	defer p.carrierMu.Unlock()
	if n > len(p.carrierAmplitudes) {
		n = len(p.carrierAmplitudes)
	}
	return append([]units.Amplitude(nil), p.carrierAmplitudes[:n]...)
}
