package nrzi

type encoderState int

const (
	stateStart encoderState = iota
	statePayload
	stateEndOfFrame
	stateComplete
	stateDone
)

// Encoder turns a payload byte slice into a stream of NRZI Symbols,
// inserting a stuff bit after every run of stuffBitAfter consecutive zero
// payload bits so the decoder can always find a transition to resynchronize
// on, and appending an end-of-frame trailer long enough that the decoder
// can unambiguously tell payload/stuffing zeros from the frame boundary.
type Encoder struct {
	payload       []byte
	stuffBitAfter int

	state         encoderState
	byteIdx       int
	bitOffset     int // 0 = MSB of payload[byteIdx]
	zeroRun       int
	endOfFrameIdx int
}

// NewEncoder creates an encoder over payload, emitting a stuff bit after
// every stuffBitAfter consecutive zero bits.
func NewEncoder(payload []byte, stuffBitAfter int) *Encoder {
	return &Encoder{
		payload:       payload,
		stuffBitAfter: stuffBitAfter,
		state:         stateStart,
	}
}

// Next returns the next symbol in the stream, or (Symbol{}, false) once the
// encoder has already emitted Complete.
func (e *Encoder) Next() (Symbol, bool) {
	switch e.state {
	case stateStart:
		e.state = statePayload
		return StartOfFrame(), true

	case statePayload:
		// Exhausting the payload always wins over a pending stuff-bit
		// obligation: a zero run that happens to reach the threshold on
		// the very last payload bit does not get an extra stuff bit of
		// its own, it falls straight into the end-of-frame trailer
		// (which restarts its own zero-run counter from scratch).
		if e.byteIdx >= len(e.payload) {
			e.state = stateEndOfFrame
			return e.Next()
		}
		if e.zeroRun >= e.stuffBitAfter {
			e.zeroRun = 0
			return StuffBit(), true
		}
		mask := byte(1) << uint(7-e.bitOffset)
		bit := e.payload[e.byteIdx]&mask != 0
		e.advance()
		if bit {
			e.zeroRun = 0
		} else {
			e.zeroRun++
		}
		return Bit(bit), true

	case stateEndOfFrame:
		sym := EndOfFrame(e.endOfFrameIdx)
		e.endOfFrameIdx++
		if e.endOfFrameIdx > e.stuffBitAfter+1 {
			e.state = stateComplete
		}
		return sym, true

	case stateComplete:
		return Complete(), e.completeEmitted()

	default:
		return Symbol{}, false
	}
}

// completeEmitted allows exactly one Complete symbol to be returned before
// the stream is exhausted.
func (e *Encoder) completeEmitted() bool {
	if e.state != stateComplete {
		return false
	}
	e.state = stateDone
	return true
}

func (e *Encoder) advance() {
	e.bitOffset++
	if e.bitOffset == 8 {
		e.bitOffset = 0
		e.byteIdx++
	}
}
