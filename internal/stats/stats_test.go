package stats

import (
	"math"
	"testing"

	"github.com/agbru/coinsim/internal/coin"
)

func TestWilsonInterval(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		successes  uint64
		trials     uint64
		confidence float64
		wantLower  float64
		wantUpper  float64
	}{
		{"no trials", 0, 0, 0.95, 0, 0},
		{"half of 100", 50, 100, 0.95, 0.4038, 0.5962},
		{"zero successes", 0, 10, 0.95, 0, 0.2775},
		{"all successes", 10, 10, 0.95, 0.7225, 1},
		{"3 of 10", 3, 10, 0.95, 0.1078, 0.6032},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			lo, hi := WilsonInterval(tt.successes, tt.trials, tt.confidence)
			if math.Abs(lo-tt.wantLower) > 1e-3 || math.Abs(hi-tt.wantUpper) > 1e-3 {
				t.Errorf("WilsonInterval(%d, %d) = (%.4f, %.4f), want (%.4f, %.4f)",
					tt.successes, tt.trials, lo, hi, tt.wantLower, tt.wantUpper)
			}
			if lo < 0 || hi > 1 || lo > hi {
				t.Errorf("interval out of bounds: (%v, %v)", lo, hi)
			}
		})
	}
}

func TestZScore(t *testing.T) {
	t.Parallel()
	tests := []struct {
		confidence float64
		want       float64
	}{
		{0.90, 1.645},
		{0.95, 1.96},
		{0.99, 2.576},
		{0.98, 2.3263},
		{0.50, 0.6745},
	}
	for _, tt := range tests {
		if got := ZScore(tt.confidence); math.Abs(got-tt.want) > 1e-3 {
			t.Errorf("ZScore(%v) = %v, want %v", tt.confidence, got, tt.want)
		}
	}
}

func TestInverseNormal_Tails(t *testing.T) {
	t.Parallel()
	if !math.IsInf(inverseNormal(0), -1) || !math.IsInf(inverseNormal(1), 1) {
		t.Error("expected infinities at the boundaries")
	}
	if got := inverseNormal(0.01); math.Abs(got+2.3263) > 1e-3 {
		t.Errorf("inverseNormal(0.01) = %v", got)
	}
	if got := inverseNormal(0.99); math.Abs(got-2.3263) > 1e-3 {
		t.Errorf("inverseNormal(0.99) = %v", got)
	}
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()
	sum := Summarize(coin.NewState(), 0.5, DefaultConfidence)
	if sum.Total != 0 || sum.PHeads != 0 || sum.PTails != 0 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if sum.TheoHeads != 0.5 || sum.TheoTails != 0.5 {
		t.Errorf("unexpected theoretical values %+v", sum)
	}
	if !sum.Consistent {
		t.Error("empty tally should be consistent")
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name           string
		heads, tails   uint64
		p              float64
		wantDeviation  float64
		wantConsistent bool
	}{
		{"balanced", 50, 50, 0.5, 0, true},
		{"slightly off", 55, 45, 0.5, 0.05, true},
		{"heavily biased", 900, 100, 0.5, 0.4, false},
		{"matches biased coin", 300, 700, 0.3, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := &coin.State{HeadsCount: tt.heads, TailsCount: tt.tails}
			sum := Summarize(s, tt.p, DefaultConfidence)
			if math.Abs(sum.Deviation-tt.wantDeviation) > 1e-9 {
				t.Errorf("Deviation = %v, want %v", sum.Deviation, tt.wantDeviation)
			}
			if sum.Consistent != tt.wantConsistent {
				t.Errorf("Consistent = %v, want %v (interval [%v, %v])",
					sum.Consistent, tt.wantConsistent, sum.Lower, sum.Upper)
			}
			wantSE := math.Sqrt(tt.p * (1 - tt.p) / float64(tt.heads+tt.tails))
			if math.Abs(sum.StdError-wantSE) > 1e-12 {
				t.Errorf("StdError = %v, want %v", sum.StdError, wantSE)
			}
		})
	}
}

func TestSummarize_DegenerateCoin(t *testing.T) {
	t.Parallel()
	for _, n := range []uint64{1, 100, 12345, 1_000_000} {
		heads := Summarize(&coin.State{HeadsCount: n}, 1, DefaultConfidence)
		if heads.Upper != 1 || !heads.Consistent {
			t.Errorf("p=1 n=%d: upper=%v consistent=%v", n, heads.Upper, heads.Consistent)
		}
		tails := Summarize(&coin.State{TailsCount: n}, 0, DefaultConfidence)
		if tails.Lower != 0 || !tails.Consistent {
			t.Errorf("p=0 n=%d: lower=%v consistent=%v", n, tails.Lower, tails.Consistent)
		}
	}
}

func TestHistogram(t *testing.T) {
	t.Parallel()
	bins := Histogram([]float64{0, 0.1, 0.49, 0.5, 0.99, 1, 1.5, -0.2}, 2)
	if len(bins) != 2 {
		t.Fatalf("expected 2 bins, got %d", len(bins))
	}
	if bins[0].Count != 4 || bins[1].Count != 4 {
		t.Errorf("unexpected counts %+v", bins)
	}
	if bins[0].Low != 0 || bins[1].High != 1 {
		t.Errorf("unexpected bounds %+v", bins)
	}

	if got := Histogram(nil, 0); len(got) != 1 || got[0].Count != 0 {
		t.Errorf("expected a single empty bin, got %+v", got)
	}
}

func TestMeanStdDev(t *testing.T) {
	t.Parallel()
	mean, sd := MeanStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if mean != 5 || sd != 2 {
		t.Errorf("MeanStdDev = (%v, %v), want (5, 2)", mean, sd)
	}
	if m, s := MeanStdDev(nil); m != 0 || s != 0 {
		t.Errorf("empty input gave (%v, %v)", m, s)
	}
}
