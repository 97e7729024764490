package coin

import (
	"fmt"
	"strings"
)

// Outcome is the result of a single flip. The zero value is Tails, which is
// also the default last outcome of a fresh State.
type Outcome uint8

const (
	Tails Outcome = iota
	Heads
)

// String returns the single-letter face shown on the coin.
func (o Outcome) String() string {
	if o == Heads {
		return "H"
	}
	return "T"
}

// Name returns the long form, "HEADS" or "TAILS".
func (o Outcome) Name() string {
	if o == Heads {
		return "HEADS"
	}
	return "TAILS"
}

// MarshalText encodes the outcome as "H" or "T".
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText accepts any spelling ParseOutcome accepts.
func (o *Outcome) UnmarshalText(text []byte) error {
	parsed, err := ParseOutcome(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ParseOutcome parses h, heads, t or tails, ignoring case and surrounding space.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h", "heads":
		return Heads, nil
	case "t", "tails":
		return Tails, nil
	}
	return Tails, fmt.Errorf("unknown outcome %q", s)
}

// Count returns the number of heads and tails in outcomes.
func Count(outcomes []Outcome) (heads, tails uint64) {
	for _, o := range outcomes {
		if o == Heads {
			heads++
		} else {
			tails++
		}
	}
	return heads, tails
}
