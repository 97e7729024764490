package orchestration

import (
	"fmt"

	"github.com/agbru/coinsim/internal/coin"
	"github.com/agbru/coinsim/internal/stats"
)

// CommandKind enumerates what a Command does.
type CommandKind int

const (
	KindFlipOnce CommandKind = iota
	KindFlipBatch
	KindFlipN
	KindReset
)

// Command is one user intent addressed to a Session.
type Command struct {
	Kind CommandKind
	// N is the number of flips for KindFlipN and ignored otherwise.
	N int
}

// FlipOnce flips a single coin.
func FlipOnce() Command { return Command{Kind: KindFlipOnce} }

// FlipBatch flips the session's configured batch size.
func FlipBatch() Command { return Command{Kind: KindFlipBatch} }

// FlipN flips n coins.
func FlipN(n int) Command { return Command{Kind: KindFlipN, N: n} }

// Reset clears the tally.
func Reset() Command { return Command{Kind: KindReset} }

// Name is the stable identifier used in logs, spans, metrics and history.
func (c Command) Name() string {
	switch c.Kind {
	case KindFlipOnce:
		return "flip"
	case KindFlipBatch:
		return "batch"
	case KindFlipN:
		return "flip_n"
	case KindReset:
		return "reset"
	default:
		return fmt.Sprintf("unknown(%d)", int(c.Kind))
	}
}

// MaxSnapshotOutcomes bounds how many individual outcomes a Snapshot keeps.
// Larger commands report only their counts.
const MaxSnapshotOutcomes = 1000

// Snapshot is an immutable view of a session after a command, ready to be
// rendered by any front-end.
type Snapshot struct {
	SessionID string     `json:"session_id"`
	Command   string     `json:"command,omitempty"`
	State     coin.State `json:"state"`
	// Outcomes holds the outcomes produced by the command when there are at
	// most MaxSnapshotOutcomes of them.
	Outcomes []coin.Outcome `json:"outcomes,omitempty"`
	// Heads and Tails count what the command produced.
	Heads   uint64        `json:"flipped_heads"`
	Tails   uint64        `json:"flipped_tails"`
	Summary stats.Summary `json:"summary"`
}

// Flipped is the number of coins the command produced.
func (s Snapshot) Flipped() uint64 { return s.Heads + s.Tails }
