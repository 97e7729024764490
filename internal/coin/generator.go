package coin

import (
	"errors"
	"iter"
	"math"

	apperrors "github.com/agbru/coinsim/internal/errors"
)

// ErrInvalidArgument is the cause of every validation failure raised by the
// generator. Match it with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// FairProbability is the probability of heads for a fair coin.
const FairProbability = 0.5

// Generator draws independent Bernoulli trials from a Source. It keeps no
// state between calls besides the source itself.
type Generator struct {
	src Source
}

// NewGenerator returns a Generator over src. A nil src falls back to
// GlobalSource.
func NewGenerator(src Source) *Generator {
	if src == nil {
		src = GlobalSource
	}
	return &Generator{src: src}
}

// Validate checks the trial count and heads probability.
func Validate(n int, p float64) error {
	if n < 0 {
		return apperrors.ValidationError{Field: "n", Message: "trial count must be non-negative", Cause: ErrInvalidArgument}
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return apperrors.ValidationError{Field: "p", Message: "probability must be within [0, 1]", Cause: ErrInvalidArgument}
	}
	return nil
}

// Trials returns a lazy sequence of n outcomes. Each step draws u from the
// source and yields Heads iff u < p. A draw equal to p is Tails.
func (g *Generator) Trials(n int, p float64) (iter.Seq[Outcome], error) {
	if err := Validate(n, p); err != nil {
		return nil, err
	}
	return func(yield func(Outcome) bool) {
		for range n {
			if !yield(g.flip(p)) {
				return
			}
		}
	}, nil
}

// Generate draws n outcomes eagerly.
func (g *Generator) Generate(n int, p float64) ([]Outcome, error) {
	seq, err := g.Trials(n, p)
	if err != nil {
		return nil, err
	}
	outcomes := make([]Outcome, 0, n)
	for o := range seq {
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

func (g *Generator) flip(p float64) Outcome {
	if g.src.Float64() < p {
		return Heads
	}
	return Tails
}

// Theoretical returns the heads and tails probabilities for a coin with heads
// probability p.
func Theoretical(p float64) (pHeads, pTails float64) {
	return p, 1 - p
}
