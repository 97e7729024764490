package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/coinsim/internal/format"
)

// barFill renders partial cells from 1/8 to 7/8 of a row.
var barFill = [8]rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇'}

const (
	barWidth    = 5
	axisWidth   = 5
	chartMargin = 2
)

// Bar is one column of a bar chart.
type Bar struct {
	Label string
	Value float64
	Heads bool
}

// RenderBars draws vertical bars for values in [0, 1] over rows lines,
// with a 0..1 axis on the left and the value above each bar. It returns
// plain lines without styles, so callers can color them.
func RenderBars(bars []Bar, rows int) []string {
	if rows < 1 {
		rows = 1
	}
	lines := make([]string, 0, rows+2)

	var values strings.Builder
	values.WriteString(strings.Repeat(" ", axisWidth))
	for _, b := range bars {
		values.WriteString(center(format.FormatProportion(b.Value), barWidth+chartMargin))
	}
	lines = append(lines, values.String())

	for r := range rows {
		fromBottom := rows - 1 - r
		var line strings.Builder
		line.WriteString(axisLabel(r, rows))
		for _, b := range bars {
			line.WriteString(" ")
			line.WriteString(strings.Repeat(string(barCell(b.Value, rows, fromBottom)), barWidth))
			line.WriteString(" ")
		}
		lines = append(lines, line.String())
	}

	var labels strings.Builder
	labels.WriteString(strings.Repeat(" ", axisWidth))
	for _, b := range bars {
		labels.WriteString(center(b.Label, barWidth+chartMargin))
	}
	lines = append(lines, labels.String())
	return lines
}

// barCell returns the character of a bar of height v at row index i
// counted from the bottom.
func barCell(v float64, rows, i int) rune {
	if math.IsNaN(v) {
		v = 0
	}
	filled := math.Min(1, math.Max(0, v)) * float64(rows)
	switch {
	case filled >= float64(i+1):
		return '█'
	case filled > float64(i):
		return barFill[int((filled-float64(i))*8)]
	default:
		return ' '
	}
}

// axisLabel labels the top, middle and bottom rows of the y axis.
func axisLabel(r, rows int) string {
	switch {
	case r == 0:
		return "1.0 ┤"
	case r == rows-1:
		return "0.0 ┤"
	case rows >= 5 && r == rows/2:
		return "0.5 ┤"
	default:
		return "    │"
	}
}

func center(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}

// ChartModel shows the observed frequencies next to the theoretical
// probabilities.
type ChartModel struct {
	observedHeads float64
	observedTails float64
	theoHeads     float64
	theoTails     float64
	width         int
	height        int
}

// NewChartModel creates the chart panel for heads probability p.
func NewChartModel(p float64) ChartModel {
	return ChartModel{theoHeads: p, theoTails: 1 - p}
}

// SetSize updates dimensions.
func (c *ChartModel) SetSize(w, h int) {
	c.width = w
	c.height = h
}

// SetObserved updates the observed proportions.
func (c *ChartModel) SetObserved(heads, tails float64) {
	c.observedHeads = heads
	c.observedTails = tails
}

// SetTheoretical updates the theoretical proportions.
func (c *ChartModel) SetTheoretical(heads, tails float64) {
	c.theoHeads = heads
	c.theoTails = tails
}

// View renders both charts side by side.
func (c ChartModel) View() string {
	rows := max(c.height-2-4, 1)
	observed := c.renderChart("Observed frequency", c.observedHeads, c.observedTails, rows)
	theoretical := c.renderChart("Theoretical probability", c.theoHeads, c.theoTails, rows)
	body := lipgloss.JoinHorizontal(lipgloss.Top, observed, "   ", theoretical)
	return panelStyle.
		Width(max(c.width-2, 0)).
		Height(max(c.height-2, 0)).
		Render(body)
}

func (c ChartModel) renderChart(title string, heads, tails float64, rows int) string {
	bars := []Bar{
		{Label: "Heads", Value: heads, Heads: true},
		{Label: "Tails", Value: tails},
	}
	lines := RenderBars(bars, rows)
	styled := make([]string, 0, len(lines)+1)
	styled = append(styled, panelTitleStyle.Render(title))
	for i, l := range lines {
		if i == 0 || i == len(lines)-1 {
			styled = append(styled, metricValueStyle.Render(l))
			continue
		}
		styled = append(styled, colorBars(l, bars))
	}
	return strings.Join(styled, "\n")
}

// colorBars styles the axis and each bar column of a chart line.
func colorBars(line string, bars []Bar) string {
	runes := []rune(line)
	if len(runes) < axisWidth {
		return line
	}
	var b strings.Builder
	b.WriteString(axisStyle.Render(string(runes[:axisWidth])))
	pos := axisWidth
	for _, bar := range bars {
		end := min(pos+barWidth+chartMargin, len(runes))
		b.WriteString(outcomeStyle(bar.Heads).Render(string(runes[pos:end])))
		pos = end
	}
	return b.String()
}
