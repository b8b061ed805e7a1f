package nrzi

import (
	"bytes"
	"testing"
)

// collectSymbols drains an Encoder into a slice, including the trailing
// Complete marker.
func collectSymbols(e *Encoder) []Symbol {
	var out []Symbol
	for {
		sym, ok := e.Next()
		if !ok {
			break
		}
		out = append(out, sym)
		if sym.IsComplete() {
			break
		}
	}
	return out
}

// symbolsToTransitions walks the symbol stream and turns each into a
// Transition the way an ideal (noiseless) AM shaper + transition search
// would: a flip becomes Rising/Falling depending on the level before the
// flip, anything else becomes a one-window Hold.
func symbolsToTransitions(symbols []Symbol) []Transition {
	level := false // starts Low
	var out []Transition
	for _, sym := range symbols {
		if sym.IsComplete() {
			continue
		}
		if sym.Transition(level) {
			if level {
				out = append(out, Falling())
			} else {
				out = append(out, Rising())
			}
			level = !level
		} else {
			out = append(out, Hold(1))
		}
	}
	// Simulate the decoder eventually seeing silence after the frame ends.
	out = append(out, Noise(1))
	return out
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name          string
		payload       []byte
		stuffBitAfter int
	}{
		{"ABCD", []byte("ABCD"), 5},
		{"null byte no stuffing needed", []byte{0x00}, 9},
		{"null byte with stuffing", []byte{0x00}, 4},
		{"single 1001_1000 byte", []byte{0b1001_1000}, 3},
		{"single 1000_0100 byte", []byte{0b1000_0100}, 2},
		{"two bytes", []byte{0b1000_0100, 0b0000_0001}, 3},
		{"longer message", []byte("Nagyon szeretlek angyalom! <3"), 5},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			enc := NewEncoder(c.payload, c.stuffBitAfter)
			symbols := collectSymbols(enc)
			if !symbols[0].IsStartOfFrame() {
				t.Fatalf("first symbol must be StartOfFrame, got %v", symbols[0])
			}
			if !symbols[len(symbols)-1].IsComplete() {
				t.Fatalf("last symbol must be Complete, got %v", symbols[len(symbols)-1])
			}

			transitions := symbolsToTransitions(symbols)
			got, consumed, err := Decode(transitions, c.stuffBitAfter)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !bytes.Equal(got, c.payload) {
				t.Fatalf("Decode() = %v, want %v", got, c.payload)
			}
			if consumed > len(transitions) {
				t.Fatalf("consumed %d transitions, only had %d", consumed, len(transitions))
			}
		})
	}
}

func TestEncoderInsertsStuffBitAfterLongZeroRun(t *testing.T) {
	// A byte with more than stuffBitAfter consecutive zero bits must
	// contain at least one StuffBit before the run completes.
	enc := NewEncoder([]byte{0x00}, 3)
	symbols := collectSymbols(enc)

	sawStuff := false
	for _, s := range symbols {
		if s.IsStuffBit() {
			sawStuff = true
		}
	}
	if !sawStuff {
		t.Fatalf("expected at least one StuffBit symbol for a long zero run, got %v", symbols)
	}
}

func TestEncoderNoStuffBitWhenRunsAreShort(t *testing.T) {
	// 0b1001_1000 has zero runs of length 2 and 3; with stuffBitAfter=5
	// no run reaches the threshold, so no stuff bit should appear.
	enc := NewEncoder([]byte{0b1001_1000}, 5)
	symbols := collectSymbols(enc)

	for _, s := range symbols {
		if s.IsStuffBit() {
			t.Fatalf("did not expect a stuff bit with short zero runs, got %v", symbols)
		}
	}
}

func TestDecodeRejectsBadStartOfFrame(t *testing.T) {
	_, _, err := Decode([]Transition{Falling()}, 5)
	if err != ErrIncorrectStartOfFrame {
		t.Fatalf("expected ErrIncorrectStartOfFrame, got %v", err)
	}
}

func TestDecodeToleratesLeadingNoise(t *testing.T) {
	transitions := []Transition{Noise(3), Rising(), Falling(), Hold(5), Noise(5)}
	_, consumed, err := Decode(transitions, 5)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if consumed != 5 {
		t.Fatalf("consumed = %d, want 5", consumed)
	}
}

func TestDecodeRejectsOverlongHold(t *testing.T) {
	transitions := []Transition{Rising(), Hold(10)}
	_, _, err := Decode(transitions, 3)
	if err != ErrIncorrectBitStuffingInTransitions {
		t.Fatalf("expected ErrIncorrectBitStuffingInTransitions, got %v", err)
	}
}

func TestDecodeRejectsPrematureNoise(t *testing.T) {
	transitions := []Transition{Rising(), Noise(1)}
	_, _, err := Decode(transitions, 5)
	if err != ErrIncompleteFrame {
		t.Fatalf("expected ErrIncompleteFrame, got %v", err)
	}
}
