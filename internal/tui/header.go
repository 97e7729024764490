package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/coinsim/internal/format"
)

// HeaderModel renders the top bar: title, version, session and elapsed time.
type HeaderModel struct {
	startTime   time.Time
	version     string
	session     string
	probability float64
	width       int
}

// NewHeaderModel creates a new header.
func NewHeaderModel(version, session string, p float64) HeaderModel {
	return HeaderModel{
		startTime:   time.Now(),
		version:     version,
		session:     session,
		probability: p,
	}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "Coin Flip Monitor"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	pipe := versionStyle.Render(" | ")

	left := titleStyle.Render(titleText) + pipe +
		sessionStyle.Render("session "+h.session) + pipe +
		versionStyle.Render(fmt.Sprintf("p=%s", format.FormatProportion(h.probability)))
	right := elapsedStyle.Render("Elapsed: " + format.FormatExecutionDuration(time.Since(h.startTime).Truncate(time.Second)))

	gap := h.width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	row := left + strings.Repeat(" ", max(gap, 1)) + right
	return headerStyle.Width(h.width).Render(row)
}
