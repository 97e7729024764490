package coin

import "iter"

// DefaultLastOutcome is the face shown before any flip and after a reset.
const DefaultLastOutcome = Tails

// State is the cumulative tally of one session. The zero value is the
// initial state: no flips, last outcome Tails.
type State struct {
	HeadsCount  uint64  `json:"heads"`
	TailsCount  uint64  `json:"tails"`
	LastOutcome Outcome `json:"last_outcome"`
}

// NewState returns a fresh State.
func NewState() *State {
	return &State{LastOutcome: DefaultLastOutcome}
}

// TotalFlips is HeadsCount + TailsCount.
func (s *State) TotalFlips() uint64 {
	return s.HeadsCount + s.TailsCount
}

// Record folds outcomes into the counts and remembers the final outcome.
// An empty slice leaves the state untouched.
func (s *State) Record(outcomes []Outcome) {
	if len(outcomes) == 0 {
		return
	}
	heads, tails := Count(outcomes)
	s.HeadsCount += heads
	s.TailsCount += tails
	s.LastOutcome = outcomes[len(outcomes)-1]
}

// RecordSeq consumes seq and records every outcome it yields. It returns the
// number of outcomes consumed.
func (s *State) RecordSeq(seq iter.Seq[Outcome]) uint64 {
	var n uint64
	for o := range seq {
		if o == Heads {
			s.HeadsCount++
		} else {
			s.TailsCount++
		}
		s.LastOutcome = o
		n++
	}
	return n
}

// Proportions returns heads/total and tails/total, or (0, 0) before the
// first flip.
func (s *State) Proportions() (pHeads, pTails float64) {
	total := s.TotalFlips()
	if total == 0 {
		return 0, 0
	}
	return float64(s.HeadsCount) / float64(total), float64(s.TailsCount) / float64(total)
}

// Reset returns the state to its initial values.
func (s *State) Reset() {
	*s = State{LastOutcome: DefaultLastOutcome}
}

// Clone returns an independent copy.
func (s *State) Clone() *State {
	c := *s
	return &c
}
