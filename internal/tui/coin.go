package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/coinsim/internal/coin"
)

var (
	headsGlyph = []string{
		"█   █",
		"█   █",
		"█████",
		"█   █",
		"█   █",
	}
	tailsGlyph = []string{
		"█████",
		"  █  ",
		"  █  ",
		"  █  ",
		"  █  ",
	}
	blankGlyph = []string{
		"     ",
		"     ",
		" ─── ",
		"     ",
		"     ",
	}
)

// CoinModel shows the face of the last flipped coin.
type CoinModel struct {
	face    coin.Outcome
	flipped bool
	width   int
	height  int
}

// NewCoinModel creates a coin panel showing no face yet.
func NewCoinModel() CoinModel {
	return CoinModel{}
}

// SetSize updates dimensions.
func (c *CoinModel) SetSize(w, h int) {
	c.width = w
	c.height = h
}

// Show displays face. Before the first flip the panel shows a blank coin.
func (c *CoinModel) Show(face coin.Outcome, flipped bool) {
	c.face = face
	c.flipped = flipped
}

// View renders the coin panel.
func (c CoinModel) View() string {
	glyph, caption := blankGlyph, "no flips yet"
	style := metricLabelStyle
	if c.flipped {
		glyph, caption = tailsGlyph, coin.Tails.Name()
		if c.face == coin.Heads {
			glyph, caption = headsGlyph, coin.Heads.Name()
		}
		style = outcomeStyle(c.face == coin.Heads)
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		panelTitleStyle.Render("Last flip"),
		"",
		style.Render(strings.Join(glyph, "\n")),
		"",
		style.Render(caption),
	)
	innerW := max(c.width-2, 0)
	innerH := max(c.height-2, 0)
	return panelStyle.
		Width(innerW).
		Height(innerH).
		Render(lipgloss.Place(innerW, innerH, lipgloss.Center, lipgloss.Center, body))
}
