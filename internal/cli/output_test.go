package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/agbru/coinsim/internal/coin"
	"github.com/agbru/coinsim/internal/orchestration"
	"github.com/agbru/coinsim/internal/stats"
	"github.com/agbru/coinsim/internal/store"
)

func snapshotOf(heads, tails uint64, outcomes []coin.Outcome, p float64) orchestration.Snapshot {
	state := &coin.State{HeadsCount: heads, TailsCount: tails}
	if len(outcomes) > 0 {
		state.LastOutcome = outcomes[len(outcomes)-1]
	}
	return orchestration.Snapshot{
		SessionID: "s",
		Command:   "flip_n",
		State:     *state,
		Outcomes:  outcomes,
		Heads:     heads,
		Tails:     tails,
		Summary:   stats.Summarize(state, p, stats.DefaultConfidence),
	}
}

func TestFormatQuietResult(t *testing.T) {
	t.Parallel()
	tests := []struct {
		state coin.State
		want  string
	}{
		{coin.State{}, "0 0"},
		{coin.State{HeadsCount: 3, TailsCount: 7}, "3 7"},
		{coin.State{HeadsCount: 1_000_000}, "1000000 0"},
	}
	for _, tt := range tests {
		if got := FormatQuietResult(tt.state); got != tt.want {
			t.Errorf("FormatQuietResult(%+v) = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestFormatOutcomes(t *testing.T) {
	t.Parallel()
	outcomes := []coin.Outcome{coin.Heads, coin.Tails, coin.Heads}
	if got := FormatOutcomes(outcomes, 10); got != "H T H" {
		t.Errorf("FormatOutcomes = %q", got)
	}
	if got := FormatOutcomes(outcomes, 2); got != "H T …" {
		t.Errorf("truncated FormatOutcomes = %q", got)
	}
	if got := FormatOutcomes(nil, 2); got != "" {
		t.Errorf("empty FormatOutcomes = %q", got)
	}
}

func TestFormatBar(t *testing.T) {
	t.Parallel()
	tests := []struct {
		v      float64
		filled int
	}{
		{0, 0},
		{0.5, 5},
		{1, 10},
		{1.5, 10},
	}
	for _, tt := range tests {
		bar := FormatBar(tt.v, 10)
		if n := strings.Count(bar, "█"); n != tt.filled {
			t.Errorf("FormatBar(%v) has %d filled cells, want %d", tt.v, n, tt.filled)
		}
		if n := strings.Count(bar, "█") + strings.Count(bar, "░"); n != 10 {
			t.Errorf("FormatBar(%v) has width %d", tt.v, n)
		}
	}
}

func TestDisplayFlip(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		snap     orchestration.Snapshot
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name:     "nothing flipped",
			snap:     snapshotOf(0, 0, nil, 0.5),
			contains: []string{"No coins flipped."},
		},
		{
			name:     "single heads",
			snap:     snapshotOf(1, 0, []coin.Outcome{coin.Heads}, 0.5),
			contains: []string{"Flipped: HEADS"},
		},
		{
			name:     "single tails",
			snap:     snapshotOf(0, 1, []coin.Outcome{coin.Tails}, 0.5),
			contains: []string{"Flipped: TAILS"},
		},
		{
			name:     "many, terse",
			snap:     snapshotOf(2, 1, []coin.Outcome{coin.Heads, coin.Tails, coin.Heads}, 0.5),
			contains: []string{"Flipped 3 coins: 2 heads, 1 tails."},
			excludes: []string{"H T H"},
		},
		{
			name:     "many, verbose",
			snap:     snapshotOf(2, 1, []coin.Outcome{coin.Heads, coin.Tails, coin.Heads}, 0.5),
			verbose:  true,
			contains: []string{"H T H"},
		},
		{
			name:     "thousands separators",
			snap:     snapshotOf(600_000, 400_000, nil, 0.5),
			contains: []string{"Flipped 1,000,000 coins: 600,000 heads, 400,000 tails."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			DisplayFlip(&buf, tt.snap, tt.verbose)
			out := buf.String()
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("output %q does not contain %q", out, s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(out, s) {
					t.Errorf("output %q unexpectedly contains %q", out, s)
				}
			}
		})
	}
}

func TestDisplaySummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	DisplaySummary(&buf, snapshotOf(3, 7, nil, 0.5).Summary)
	out := buf.String()
	for _, s := range []string{"Total flips:  10", "Heads:        3 (30.00%)", "Tails:        7 (70.00%)", "Deviation:    0.2000", "95% interval", "consistent with p"} {
		if !strings.Contains(out, s) {
			t.Errorf("summary %q does not contain %q", out, s)
		}
	}

	buf.Reset()
	DisplaySummary(&buf, snapshotOf(900, 100, nil, 0.5).Summary)
	if !strings.Contains(buf.String(), "p outside the interval") {
		t.Errorf("biased tally not flagged: %q", buf.String())
	}

	buf.Reset()
	DisplaySummary(&buf, snapshotOf(0, 0, nil, 0.5).Summary)
	if strings.Contains(buf.String(), "interval") {
		t.Errorf("empty tally should not show an interval: %q", buf.String())
	}
}

func TestDisplayCharts(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	DisplayCharts(&buf, snapshotOf(3, 7, nil, 0.5).Summary)
	out := buf.String()

	for _, s := range []string{"Observed frequency", "Theoretical probability", "0.30", "0.70", "0.50"} {
		if !strings.Contains(out, s) {
			t.Errorf("charts %q do not contain %q", out, s)
		}
	}
	if !strings.Contains(out, strings.Repeat("█", 12)+strings.Repeat("░", 28)) {
		t.Errorf("observed heads bar not scaled to 0.30: %q", out)
	}
}

func TestDisplayResult(t *testing.T) {
	t.Parallel()
	snap := snapshotOf(4, 6, nil, 0.5)

	var quiet bytes.Buffer
	DisplayResult(&quiet, snap, OutputConfig{Quiet: true})
	if quiet.String() != "4 6\n" {
		t.Errorf("quiet output = %q", quiet.String())
	}

	var full bytes.Buffer
	DisplayResult(&full, snap, OutputConfig{})
	for _, s := range []string{"Flipped 10 coins", "Summary", "Observed frequency"} {
		if !strings.Contains(full.String(), s) {
			t.Errorf("full output does not contain %q", s)
		}
	}
}

func TestDisplayHistory(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	DisplayHistory(&buf, nil)
	if !strings.Contains(buf.String(), "No history") {
		t.Errorf("unexpected empty history output %q", buf.String())
	}

	buf.Reset()
	DisplayHistory(&buf, []store.Command{
		{Name: "batch", Heads: 1234, Tails: 766, CreatedAt: time.Now()},
		{Name: "reset", CreatedAt: time.Now()},
	})
	out := buf.String()
	for _, s := range []string{"Command", "batch", "1,234", "reset"} {
		if !strings.Contains(out, s) {
			t.Errorf("history %q does not contain %q", out, s)
		}
	}
}

func TestDisplayExperiment(t *testing.T) {
	t.Parallel()
	res := orchestration.ExperimentResult{
		Config:         orchestration.ExperimentConfig{Runs: 4, Flips: 100, Probability: 0.5, Confidence: 0.95},
		Proportions:    []float64{0.45, 0.5, 0.5, 0.55},
		Mean:           0.5,
		StdDev:         0.0354,
		ExpectedStdDev: 0.05,
		Covered:        3,
		Histogram:      stats.Histogram([]float64{0.45, 0.5, 0.5, 0.55}, 20),
		Duration:       time.Millisecond,
	}

	var buf bytes.Buffer
	DisplayExperiment(&buf, res)
	out := buf.String()
	for _, s := range []string{"4 runs of 100 flips", "Mean proportion", "0.5000", "Expected std. dev.", "0.0500", "95% coverage", "75.00%", "[0.50, 0.55)"} {
		if !strings.Contains(out, s) {
			t.Errorf("experiment output %q does not contain %q", out, s)
		}
	}
	if strings.Contains(out, "[0.00, 0.05)") {
		t.Error("leading empty buckets should be skipped")
	}
	if !strings.Contains(out, strings.Repeat("█", HistogramBarWidth)+" 2") {
		t.Errorf("tallest bucket should span the full width: %q", out)
	}
}

func TestDisplayHistogram_Empty(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	DisplayHistogram(&buf, stats.Histogram(nil, 5))
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
