package decode

import "github.com/cwbudde/amnrzi/nrzi"

type machinePhase int

const (
	phaseSearching machinePhase = iota
	phaseSynchronized
)

// StateMachine reconstructs the canonical (already merged and
// noise-downgraded) transition stream from individual search hits. Before
// the first clean rising edge is found it stays Searching; once
// synchronized it tracks which edge polarity it expects next, flipping
// after each genuine edge and falling back to Searching if a same-polarity
// repeat or an explicit give-up gets downgraded to noise.
type StateMachine struct {
	phase       machinePhase
	expected    nrzi.Transition // valid only when phase == phaseSynchronized
	transitions []nrzi.Transition
}

// NewStateMachine starts a state machine in the Searching phase.
func NewStateMachine() *StateMachine {
	return &StateMachine{phase: phaseSearching}
}

// Transitions returns the accumulated, already-merged transition stream.
func (m *StateMachine) Transitions() []nrzi.Transition {
	return m.transitions
}

// Synchronized reports whether the machine has locked onto a bit stream
// and, if so, which edge it expects next.
func (m *StateMachine) Synchronized() (nrzi.Transition, bool) {
	return m.expected, m.phase == phaseSynchronized
}

// pushTransition appends t to the transition stream, merging it into the
// previous entry when both are runs of the same kind (Hold+Hold,
// Noise+Noise), or downgrading it to a fresh Noise(1) when it repeats the
// previous entry's edge polarity (two Risings in a row can't both be real:
// the first swallowed the previous edge state, so this one doesn't resolve
// into the stream it would normally open). It returns the transition
// actually left at the back of the stream, which may differ from t.
func (m *StateMachine) pushTransition(t nrzi.Transition) nrzi.Transition {
	if n, ok := t.IsNoise(); ok && n == 0 {
		return m.backOrSelf(t)
	}
	if n, ok := t.IsHold(); ok && n == 0 {
		return m.backOrSelf(t)
	}

	if len(m.transitions) == 0 {
		m.transitions = append(m.transitions, t)
		return t
	}

	last := &m.transitions[len(m.transitions)-1]
	if _, lok := last.IsNoise(); lok {
		if _, tok := t.IsNoise(); tok {
			*last = last.MergeNoise(t)
			return *last
		}
	}
	if _, lok := last.IsHold(); lok {
		if _, tok := t.IsHold(); tok {
			*last = last.MergeHold(t)
			return *last
		}
	}
	if last.SameEdgeAs(t) {
		down := nrzi.Noise(1)
		m.transitions = append(m.transitions, down)
		return down
	}

	m.transitions = append(m.transitions, t)
	return t
}

func (m *StateMachine) backOrSelf(t nrzi.Transition) nrzi.Transition {
	if len(m.transitions) > 0 {
		return m.transitions[len(m.transitions)-1]
	}
	return t
}

// ParseTransition feeds one observed transition (a clean edge, a Hold run,
// or a Noise run) through the phase logic, updating the reconstructed
// transition stream and the current phase/expected-polarity state.
func (m *StateMachine) ParseTransition(t nrzi.Transition) {
	switch m.phase {
	case phaseSearching:
		if t.IsRising() {
			m.pushTransition(t)
			m.phase = phaseSynchronized
			m.expected = nrzi.Falling()
			return
		}
		if _, ok := t.IsNoise(); ok {
			return
		}
		panic("decode: unexpected transition while searching: " + t.String())

	case phaseSynchronized:
		if n, ok := t.IsHold(); ok && n == 0 {
			return
		}
		result := m.pushTransition(t)
		if _, ok := result.IsNoise(); ok {
			m.phase = phaseSearching
			return
		}
		if _, ok := result.IsHold(); ok {
			return
		}
		m.expected = m.expected.Opposite()
	}
}
