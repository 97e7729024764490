// Package ui provides theme and color support for the coinsim front-ends.
// It defines ANSI color schemes for the REPL and one-shot output and
// lipgloss palettes for the dashboard, and honors NO_COLOR.
package ui
