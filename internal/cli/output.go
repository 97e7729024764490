// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//     Examples: [DisplayResult], [DisplayQuietResult], [DisplayProgress].
//
//   - Format* functions return a formatted string without performing I/O.
//     They are pure functions suitable for composition.
//     Examples: [FormatQuietResult], [FormatBar].

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/agbru/coinsim/internal/coin"
	"github.com/agbru/coinsim/internal/format"
	"github.com/agbru/coinsim/internal/orchestration"
	"github.com/agbru/coinsim/internal/stats"
	"github.com/agbru/coinsim/internal/store"
	"github.com/agbru/coinsim/internal/ui"
)

const (
	// ChartBarWidth is the width in characters of a full (1.0) chart bar.
	ChartBarWidth = 40
	// HistogramBarWidth is the width of the tallest histogram bucket.
	HistogramBarWidth = 50
	// MaxDisplayedOutcomes caps the outcomes echoed after a flip.
	MaxDisplayedOutcomes = 100
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// Quiet prints only "heads tails".
	Quiet bool
	// Verbose echoes individual outcomes when they are available.
	Verbose bool
}

// FormatQuietResult formats a tally for scripts: "heads tails".
func FormatQuietResult(s coin.State) string {
	return fmt.Sprintf("%d %d", s.HeadsCount, s.TailsCount)
}

// DisplayQuietResult writes the quiet form of a tally.
func DisplayQuietResult(out io.Writer, s coin.State) {
	fmt.Fprintln(out, FormatQuietResult(s))
}

// FormatOutcomes renders outcomes as colored H/T letters, at most limit of
// them, followed by an ellipsis when truncated.
func FormatOutcomes(outcomes []coin.Outcome, limit int) string {
	var b strings.Builder
	for i, o := range outcomes {
		if i == limit {
			b.WriteString(" …")
			break
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(ui.Paint(ui.OutcomeColor(o == coin.Heads), o.String()))
	}
	return b.String()
}

// FormatBar renders a horizontal bar for v in [0, 1] over width cells.
func FormatBar(v float64, width int) string {
	return format.ProgressBar(v, width)
}

// DisplayFlip writes the outcome of a flip command.
func DisplayFlip(out io.Writer, snap orchestration.Snapshot, verbose bool) {
	n := snap.Flipped()
	switch {
	case n == 0:
		fmt.Fprintln(out, "No coins flipped.")
	case n == 1:
		face := snap.State.LastOutcome
		fmt.Fprintf(out, "Flipped: %s\n",
			ui.Paint(ui.ColorBold()+ui.OutcomeColor(face == coin.Heads), face.Name()))
	default:
		fmt.Fprintf(out, "Flipped %s coins: %s heads, %s tails.\n",
			format.FormatCount(n),
			ui.Paint(ui.OutcomeColor(true), format.FormatCount(snap.Heads)),
			ui.Paint(ui.OutcomeColor(false), format.FormatCount(snap.Tails)))
		if verbose && len(snap.Outcomes) > 0 {
			fmt.Fprintf(out, "  %s\n", FormatOutcomes(snap.Outcomes, MaxDisplayedOutcomes))
		}
	}
}

// DisplaySummary writes the summary statistics of a tally.
func DisplaySummary(out io.Writer, sum stats.Summary) {
	fmt.Fprintf(out, "\n%sSummary%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(out, "  Total flips:  %s\n", ui.Paint(ui.ColorCyan(), format.FormatCount(sum.Total)))
	fmt.Fprintf(out, "  Heads:        %s (%s)\n",
		ui.Paint(ui.OutcomeColor(true), format.FormatCount(sum.Heads)), format.FormatPercent(sum.PHeads))
	fmt.Fprintf(out, "  Tails:        %s (%s)\n",
		ui.Paint(ui.OutcomeColor(false), format.FormatCount(sum.Tails)), format.FormatPercent(sum.PTails))
	if sum.Total == 0 {
		return
	}
	fmt.Fprintf(out, "  Deviation:    %.4f (std. error %.4f)\n", sum.Deviation, sum.StdError)
	verdict := ui.Paint(ui.ColorGreen(), "consistent with p")
	if !sum.Consistent {
		verdict = ui.Paint(ui.ColorYellow(), "p outside the interval")
	}
	fmt.Fprintf(out, "  %.0f%% interval: [%s, %s], %s\n", sum.Confidence*100,
		format.FormatProportion(sum.Lower), format.FormatProportion(sum.Upper), verdict)
}

// DisplayCharts writes the observed frequencies and the theoretical
// probabilities as two horizontal bar charts.
func DisplayCharts(out io.Writer, sum stats.Summary) {
	displayChart(out, "Observed frequency", sum.PHeads, sum.PTails)
	displayChart(out, "Theoretical probability", sum.TheoHeads, sum.TheoTails)
}

func displayChart(out io.Writer, title string, heads, tails float64) {
	fmt.Fprintf(out, "\n%s%s%s\n", ui.ColorBold(), title, ui.ColorReset())
	for _, row := range []struct {
		label string
		value float64
		heads bool
	}{
		{"Heads", heads, true},
		{"Tails", tails, false},
	} {
		fmt.Fprintf(out, "  %-6s %s %s\n", row.label,
			ui.Paint(ui.OutcomeColor(row.heads), FormatBar(row.value, ChartBarWidth)),
			format.FormatProportion(row.value))
	}
}

// DisplayResult writes the final tally of a one-shot run.
func DisplayResult(out io.Writer, snap orchestration.Snapshot, cfg OutputConfig) {
	if cfg.Quiet {
		DisplayQuietResult(out, snap.State)
		return
	}
	DisplayFlip(out, snap, cfg.Verbose)
	DisplaySummary(out, snap.Summary)
	DisplayCharts(out, snap.Summary)
}

// DisplayHistory writes the latest commands of a session.
func DisplayHistory(out io.Writer, history []store.Command) {
	if len(history) == 0 {
		fmt.Fprintln(out, "No history recorded for this session.")
		return
	}
	fmt.Fprintf(out, "%s%-20s %-8s %12s %12s%s\n", ui.ColorUnderline(), "Time", "Command", "Heads", "Tails", ui.ColorReset())
	for _, c := range history {
		fmt.Fprintf(out, "%-20s %-8s %12s %12s\n",
			c.CreatedAt.Local().Format("2006-01-02 15:04:05"), c.Name,
			format.FormatCount(c.Heads), format.FormatCount(c.Tails))
	}
}

// DisplayExperiment writes the aggregate of an experiment and a histogram
// of the per-run heads proportions.
func DisplayExperiment(out io.Writer, res orchestration.ExperimentResult) {
	cfg := res.Config
	fmt.Fprintf(out, "\n%sExperiment%s: %s runs of %s flips, p = %s (%s)\n",
		ui.ColorBold(), ui.ColorReset(),
		format.FormatCount(uint64(cfg.Runs)), format.FormatCount(uint64(cfg.Flips)),
		format.FormatProportion(cfg.Probability), format.FormatExecutionDuration(res.Duration))

	rows := []struct{ label, value string }{
		{"Mean proportion", fmt.Sprintf("%.4f", res.Mean)},
		{"Std. deviation", fmt.Sprintf("%.4f", res.StdDev)},
		{"Expected std. dev.", fmt.Sprintf("%.4f", res.ExpectedStdDev)},
		{fmt.Sprintf("%.0f%% coverage", cfg.Confidence*100), format.FormatPercent(res.Coverage())},
	}
	for _, r := range rows {
		fmt.Fprintf(out, "  %-20s %s\n", r.label, ui.Paint(ui.ColorCyan(), r.value))
	}

	DisplayHistogram(out, res.Histogram)
}

// DisplayHistogram writes one line per non-empty bucket, plus the empty
// buckets between them.
func DisplayHistogram(out io.Writer, bins []stats.Bin) {
	first, last, peak := -1, -1, 0
	for i, b := range bins {
		if b.Count == 0 {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
		peak = max(peak, b.Count)
	}
	if first < 0 {
		return
	}

	fmt.Fprintf(out, "\n%sHeads proportion per run%s\n", ui.ColorBold(), ui.ColorReset())
	for _, b := range bins[first : last+1] {
		width := b.Count * HistogramBarWidth / peak
		fmt.Fprintf(out, "  [%s, %s) %s %d\n",
			format.FormatProportion(b.Low), format.FormatProportion(b.High),
			ui.Paint(ui.ColorBlue(), strings.Repeat("█", width)), b.Count)
	}
}
