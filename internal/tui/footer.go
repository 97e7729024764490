package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// FooterModel renders key hints and the command status.
type FooterModel struct {
	keymap  KeyMap
	busy    bool
	pending int
	err     error
	width   int
}

// NewFooterModel creates a footer for keymap.
func NewFooterModel(keymap KeyMap) FooterModel {
	return FooterModel{keymap: keymap}
}

// SetWidth updates the available width.
func (f *FooterModel) SetWidth(w int) {
	f.width = w
}

// SetBusy records whether a command is running and how many are queued.
func (f *FooterModel) SetBusy(busy bool, pending int) {
	f.busy = busy
	f.pending = pending
}

// SetError shows err in the status area until the next successful command.
func (f *FooterModel) SetError(err error) {
	f.err = err
}

// View renders the footer.
func (f FooterModel) View() string {
	hints := make([]string, 0, len(f.keymap.ShortHelp()))
	for _, b := range f.keymap.ShortHelp() {
		h := b.Help()
		hints = append(hints, footerKeyStyle.Render(h.Key)+" "+footerDescStyle.Render(h.Desc))
	}
	left := " " + strings.Join(hints, "  ")

	var status string
	switch {
	case f.err != nil:
		status = statusErrorStyle.Render("Error: " + f.err.Error())
	case f.busy && f.pending > 0:
		status = statusBusyStyle.Render("Flipping... (+" + strconv.Itoa(f.pending) + " queued)")
	case f.busy:
		status = statusBusyStyle.Render("Flipping...")
	default:
		status = statusReadyStyle.Render("Ready")
	}

	gap := f.width - lipgloss.Width(left) - lipgloss.Width(status) - 1
	return left + strings.Repeat(" ", max(gap, 1)) + status
}
