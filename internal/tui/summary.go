package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/coinsim/internal/format"
	"github.com/agbru/coinsim/internal/metrics"
	"github.com/agbru/coinsim/internal/stats"
	"github.com/agbru/coinsim/internal/sysmon"
)

// SummaryModel displays the tally statistics and a few runtime figures.
type SummaryModel struct {
	summary stats.Summary
	rate    float64
	mem     metrics.MemorySnapshot
	sys     sysmon.Stats
	width   int
	height  int
}

// NewSummaryModel creates a summary panel.
func NewSummaryModel() SummaryModel {
	return SummaryModel{}
}

// SetSize updates dimensions.
func (m *SummaryModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetSummary updates the statistics.
func (m *SummaryModel) SetSummary(s stats.Summary) {
	m.summary = s
}

// SetRate updates the flips per second figure.
func (m *SummaryModel) SetRate(r float64) {
	m.rate = r
}

// UpdateMemory updates the runtime memory figures.
func (m *SummaryModel) UpdateMemory(s metrics.MemorySnapshot) {
	m.mem = s
}

// UpdateSystem updates the host and process figures.
func (m *SummaryModel) UpdateSystem(s sysmon.Stats) {
	m.sys = s
}

// View renders the summary panel.
func (m SummaryModel) View() string {
	s := m.summary
	colWidth := max((m.width-4)/2, 0)

	verdict := consistentStyle.Render("yes")
	if !s.Consistent {
		verdict = inconsistentStyle.Render("no")
	}
	interval := "n/a"
	if s.Total > 0 {
		interval = fmt.Sprintf("[%s, %s]", format.FormatProportion(s.Lower), format.FormatProportion(s.Upper))
	}

	left := []string{
		formatMetricCol("Total:", format.FormatCount(s.Total), colWidth),
		formatMetricCol("Heads:", fmt.Sprintf("%s (%s)", format.FormatCount(s.Heads), format.FormatPercent(s.PHeads)), colWidth),
		formatMetricCol("Tails:", fmt.Sprintf("%s (%s)", format.FormatCount(s.Tails), format.FormatPercent(s.PTails)), colWidth),
		formatMetricCol("Rate:", fmt.Sprintf("%.0f flips/s", m.rate), colWidth),
		formatMetricCol("CPU:", fmt.Sprintf("%.1f%%", m.sys.CPUPercent), colWidth),
	}
	right := []string{
		formatMetricCol("Deviation:", fmt.Sprintf("%.4f", s.Deviation), colWidth),
		formatMetricCol(fmt.Sprintf("CI %.0f%%:", s.Confidence*100), interval, colWidth),
		formatMetricCol("Matches p:", verdict, colWidth),
		formatMetricCol("Heap:", formatBytes(m.mem.HeapAlloc), colWidth),
		formatMetricCol("RSS:", fmt.Sprintf("%s (mem %.0f%%)", formatBytes(m.sys.ProcessRSS), m.sys.MemPercent), colWidth),
	}

	var rows strings.Builder
	rows.WriteString(panelTitleStyle.Render("Summary"))
	for i := range left {
		rows.WriteString("\n")
		rows.WriteString(left[i])
		rows.WriteString(right[i])
	}

	return panelStyle.
		Width(max(m.width-2, 0)).
		Height(max(m.height-2, 0)).
		Render(rows.String())
}

func formatMetricCol(label, value string, colWidth int) string {
	cell := fmt.Sprintf(" %s %s",
		metricLabelStyle.Render(fmt.Sprintf("%-11s", label)),
		metricValueStyle.Render(value))
	if visible := lipgloss.Width(cell); visible < colWidth {
		cell += strings.Repeat(" ", colWidth-visible)
	}
	return cell
}

func formatBytes(b uint64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
