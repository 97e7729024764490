package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/coinsim/internal/ui"
)

// Style variables for the TUI dashboard.
// Initialized from the ui theme system via initTUIStyles().
var (
	panelStyle        lipgloss.Style
	panelTitleStyle   lipgloss.Style
	headerStyle       lipgloss.Style
	titleStyle        lipgloss.Style
	versionStyle      lipgloss.Style
	elapsedStyle      lipgloss.Style
	sessionStyle      lipgloss.Style
	headsStyle        lipgloss.Style
	tailsStyle        lipgloss.Style
	axisStyle         lipgloss.Style
	metricLabelStyle  lipgloss.Style
	metricValueStyle  lipgloss.Style
	consistentStyle   lipgloss.Style
	inconsistentStyle lipgloss.Style
	trendStyle        lipgloss.Style
	footerKeyStyle    lipgloss.Style
	footerDescStyle   lipgloss.Style
	statusReadyStyle  lipgloss.Style
	statusBusyStyle   lipgloss.Style
	statusErrorStyle  lipgloss.Style
	helpOverlayStyle  lipgloss.Style
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds all TUI styles from the current ui theme.
// Called at package init and again from Run() after InitTheme has been invoked.
func initTUIStyles() {
	t := ui.GetCurrentTUITheme()

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Foreground(t.Text)

	panelTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent)

	versionStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	elapsedStyle = lipgloss.NewStyle().
		Foreground(t.Accent)

	sessionStyle = lipgloss.NewStyle().
		Foreground(t.Info)

	headsStyle = lipgloss.NewStyle().
		Foreground(t.Heads).
		Bold(true)

	tailsStyle = lipgloss.NewStyle().
		Foreground(t.Tails).
		Bold(true)

	axisStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	metricLabelStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	metricValueStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	consistentStyle = lipgloss.NewStyle().
		Foreground(t.Success).
		Bold(true)

	inconsistentStyle = lipgloss.NewStyle().
		Foreground(t.Warning).
		Bold(true)

	trendStyle = lipgloss.NewStyle().
		Foreground(t.Heads)


	footerKeyStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	footerDescStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	statusReadyStyle = lipgloss.NewStyle().
		Foreground(t.Success).
		Bold(true)

	statusBusyStyle = lipgloss.NewStyle().
		Foreground(t.Warning).
		Bold(true)

	statusErrorStyle = lipgloss.NewStyle().
		Foreground(t.Error).
		Bold(true)

	helpOverlayStyle = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(t.Accent).
		Padding(1, 3)
}

// outcomeStyle returns the style used for heads or tails.
func outcomeStyle(heads bool) lipgloss.Style {
	if heads {
		return headsStyle
	}
	return tailsStyle
}
