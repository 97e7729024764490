package tui

import (
	"fmt"
	"strings"

	"github.com/agbru/coinsim/internal/format"
)

const trendHistory = 512

// TrendModel plots the observed heads proportion after each command
// against the theoretical probability.
type TrendModel struct {
	history *RingBuffer
	target  float64
	width   int
	height  int
}

// NewTrendModel creates a convergence panel for heads probability p.
func NewTrendModel(p float64) TrendModel {
	return TrendModel{history: NewRingBuffer(trendHistory), target: p}
}

// SetSize updates dimensions and keeps two samples per plotted cell.
func (t *TrendModel) SetSize(w, h int) {
	t.width = w
	t.height = h
	if cells := w - 4; cells > 0 {
		t.history.Resize(max(cells*2, trendHistory))
	}
}

// Add records the heads proportion after a command.
func (t *TrendModel) Add(pHeads float64) {
	t.history.Push(pHeads)
}

// Reset clears the history.
func (t *TrendModel) Reset() {
	t.history.Reset()
}

// View renders the panel. Panels too short for the braille chart fall
// back to a one-line sparkline.
func (t TrendModel) View() string {
	innerW := max(t.width-4, 1)
	rows := t.height - 4

	title := panelTitleStyle.Render("Convergence") +
		metricLabelStyle.Render(fmt.Sprintf("  p̂ %s → p %s",
			format.FormatProportion(t.history.Last()), format.FormatProportion(t.target)))

	values := t.history.Slice()
	var body string
	if rows >= 2 {
		body = trendStyle.Render(strings.Join(RenderBrailleChart(values, t.target, innerW, rows), "\n"))
	} else {
		if len(values) > innerW {
			values = values[len(values)-innerW:]
		}
		body = trendStyle.Render(RenderSparkline(values))
	}

	return panelStyle.
		Width(max(t.width-2, 0)).
		Height(max(t.height-2, 0)).
		Render(title + "\n" + body)
}
