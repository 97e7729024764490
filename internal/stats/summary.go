// Package stats interprets an aggregate tally: observed versus theoretical
// proportions, the expected sampling error and a Wilson confidence band.
package stats

import (
	"math"

	"github.com/agbru/coinsim/internal/coin"
)

// DefaultConfidence is the confidence level used when none is configured.
const DefaultConfidence = 0.95

// Summary is a read-only view of a State against the theoretical coin.
type Summary struct {
	Heads      uint64  `json:"heads"`
	Tails      uint64  `json:"tails"`
	Total      uint64  `json:"total"`
	PHeads     float64 `json:"p_heads"`
	PTails     float64 `json:"p_tails"`
	TheoHeads  float64 `json:"theoretical_heads"`
	TheoTails  float64 `json:"theoretical_tails"`
	Deviation  float64 `json:"deviation"`
	StdError   float64 `json:"std_error"`
	Confidence float64 `json:"confidence"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	// Consistent is true when the theoretical heads probability lies inside
	// the Wilson interval. Always true before the first flip.
	Consistent bool `json:"consistent"`
}

// Summarize builds a Summary for s against heads probability p.
func Summarize(s *coin.State, p, confidence float64) Summary {
	pHeads, pTails := s.Proportions()
	theoHeads, theoTails := coin.Theoretical(p)
	total := s.TotalFlips()

	sum := Summary{
		Heads:      s.HeadsCount,
		Tails:      s.TailsCount,
		Total:      total,
		PHeads:     pHeads,
		PTails:     pTails,
		TheoHeads:  theoHeads,
		TheoTails:  theoTails,
		Confidence: confidence,
		Consistent: true,
	}
	if total == 0 {
		return sum
	}

	sum.Deviation = math.Abs(pHeads - theoHeads)
	sum.StdError = math.Sqrt(p * (1 - p) / float64(total))
	sum.Lower, sum.Upper = WilsonInterval(s.HeadsCount, total, confidence)
	sum.Consistent = theoHeads >= sum.Lower && theoHeads <= sum.Upper
	return sum
}
