package coin_test

import (
	"fmt"

	"github.com/agbru/coinsim/internal/coin"
)

func ExampleGenerator_Generate() {
	draws := []float64{0.1, 0.7, 0.5, 0.2}
	i := 0
	src := coin.SourceFunc(func() float64 {
		u := draws[i]
		i++
		return u
	})

	outcomes, _ := coin.NewGenerator(src).Generate(len(draws), coin.FairProbability)
	fmt.Println(outcomes)
	// Output: [H T T H]
}

func ExampleState_Proportions() {
	s := coin.NewState()
	s.Record([]coin.Outcome{coin.Heads, coin.Heads, coin.Heads})
	s.Record([]coin.Outcome{coin.Tails, coin.Tails, coin.Tails, coin.Tails, coin.Tails, coin.Tails, coin.Tails})

	h, t := s.Proportions()
	fmt.Printf("%.1f %.1f total=%d last=%s\n", h, t, s.TotalFlips(), s.LastOutcome)
	// Output: 0.3 0.7 total=10 last=T
}
