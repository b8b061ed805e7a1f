package nrzi

import (
	"errors"

	"github.com/cwbudde/amnrzi/internal/bitpack"
)

// ErrIncorrectStartOfFrame is returned when the first non-Noise transition
// observed is not a Rising edge.
var ErrIncorrectStartOfFrame = errors.New("nrzi: incorrect start of frame")

// ErrIncorrectBitStuffingInTransitions is returned when a Hold run grows
// past stuffBitAfter+1, or when an edge follows more than stuffBitAfter
// holds.
var ErrIncorrectBitStuffingInTransitions = errors.New("nrzi: incorrect bit stuffing in transitions")

// ErrIncompleteFrame is returned when Noise arrives before enough zero bits
// have accumulated to plausibly be the end-of-frame trailer.
var ErrIncompleteFrame = errors.New("nrzi: incomplete frame")

type decodeState int

const (
	decodeBegin decodeState = iota
	decodeBit
	decodeDone
)

// Decode turns a transition stream into payload bytes. It tolerates
// leading Noise (a decoder that hasn't yet locked onto a carrier), requires
// the frame to start with a single Rising edge, and stops as soon as a
// Noise run arrives after stuffBitAfter or stuffBitAfter+1 consecutive
// holds — the end-of-frame trailer. The trailer's held zeros and the
// trailing incomplete byte are dropped from the payload.
//
// It returns the decoded payload and the number of transitions consumed
// from transitions to reach the end of the frame.
func Decode(transitions []Transition, stuffBitAfter int) ([]byte, int, error) {
	var out bitpack.BitVec
	state := decodeBegin
	holdCount := 0

	for i, tr := range transitions {
		switch state {
		case decodeBegin:
			if _, ok := tr.IsNoise(); ok {
				continue
			}
			if !tr.IsRising() {
				return nil, 0, ErrIncorrectStartOfFrame
			}
			state = decodeBit
			holdCount = 0

		case decodeBit:
			// Held zero bits stay pending until the next edge confirms
			// they are payload; a run of stuffBitAfter+1 holds can only be
			// the end-of-frame trailer.
			if h, ok := tr.IsHold(); ok {
				if holdCount+h > stuffBitAfter+1 {
					return nil, 0, ErrIncorrectBitStuffingInTransitions
				}
				holdCount += h
				continue
			}
			if _, ok := tr.IsNoise(); ok {
				if holdCount < stuffBitAfter {
					return nil, 0, ErrIncompleteFrame
				}
				// The pending zeros belong to the trailer and are dropped.
				out.TruncateLastIncompleteByte()
				state = decodeDone
				return out.Bytes(), i + 1, nil
			}
			if holdCount > stuffBitAfter {
				return nil, 0, ErrIncorrectBitStuffingInTransitions
			}
			for k := 0; k < holdCount; k++ {
				out.Push(false)
			}
			// Any other transition (edge) is either a payload one-bit or
			// the stuff bit, depending on how many holds preceded it.
			if holdCount < stuffBitAfter {
				out.Push(true)
			}
			holdCount = 0

		case decodeDone:
			return out.Bytes(), i, nil
		}
	}

	if state != decodeDone {
		return nil, 0, ErrIncompleteFrame
	}
	return out.Bytes(), len(transitions), nil
}
