package tui

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBarCell(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		rows int
		i    int
		want rune
	}{
		{"full row", 1, 4, 3, '█'},
		{"empty row", 0, 4, 0, ' '},
		{"half of one row", 0.125, 4, 0, '▄'},
		{"below fill", 0.5, 4, 1, '█'},
		{"above fill", 0.5, 4, 2, ' '},
		{"clamped", 1.5, 2, 1, '█'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := barCell(tt.v, tt.rows, tt.i); got != tt.want {
				t.Errorf("barCell(%v, %d, %d) = %q, want %q", tt.v, tt.rows, tt.i, got, tt.want)
			}
		})
	}
}

func TestRenderBars(t *testing.T) {
	lines := RenderBars([]Bar{
		{Label: "Heads", Value: 0.3, Heads: true},
		{Label: "Tails", Value: 0.7},
	}, 10)

	if len(lines) != 12 {
		t.Fatalf("expected 12 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "0.30") || !strings.Contains(lines[0], "0.70") {
		t.Errorf("values line = %q", lines[0])
	}
	if !strings.Contains(lines[11], "Heads") || !strings.Contains(lines[11], "Tails") {
		t.Errorf("labels line = %q", lines[11])
	}
	if !strings.HasPrefix(lines[1], "1.0") || !strings.HasPrefix(lines[10], "0.0") {
		t.Error("expected axis labels on the first and last bar rows")
	}

	count := func(line string) int { return strings.Count(line, "█") }
	heads, tails := 0, 0
	for _, l := range lines[1:11] {
		r := []rune(l)
		heads += count(string(r[axisWidth : axisWidth+barWidth+chartMargin]))
		tails += count(string(r[axisWidth+barWidth+chartMargin:]))
	}
	if heads != 3*barWidth || tails != 7*barWidth {
		t.Errorf("filled cells = (%d, %d), want (%d, %d)", heads, tails, 3*barWidth, 7*barWidth)
	}

	width := utf8.RuneCountInString(lines[1])
	for i, l := range lines[1:11] {
		if n := utf8.RuneCountInString(l); n != width {
			t.Errorf("row %d width %d, want %d", i, n, width)
		}
	}
}

func TestChartModel_View(t *testing.T) {
	c := NewChartModel(0.5)
	c.SetSize(70, 16)
	c.SetObserved(0.61, 0.39)

	view := c.View()
	for _, want := range []string{"Observed frequency", "Theoretical probability", "0.61", "0.39", "0.50"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSummaryModel_View(t *testing.T) {
	m := sized(NewModel(t.Context(), newTestSession(t), "dev"))
	m = press(t, m, runes("b"))

	view := m.summary.View()
	for _, want := range []string{"Total:", "10", "Heads:", "Tails:", "CI 95%", "Matches p:"} {
		if !strings.Contains(view, want) {
			t.Errorf("summary missing %q", want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{5 << 20, "5.0 MB"},
		{3 << 30, "3.0 GB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCoinModel_View(t *testing.T) {
	c := NewCoinModel()
	c.SetSize(CoinPanelWidth, 12)
	if !strings.Contains(c.View(), "no flips yet") {
		t.Error("expected the blank coin before the first flip")
	}
	c.Show(1, true)
	if !strings.Contains(c.View(), "HEADS") {
		t.Error("expected HEADS")
	}
	c.Show(0, true)
	if !strings.Contains(c.View(), "TAILS") {
		t.Error("expected TAILS")
	}
}
