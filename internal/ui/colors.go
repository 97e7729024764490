package ui

// Color accessors return the escape code for a role of the active theme.
// They are functions rather than constants so --no-color takes effect
// everywhere once InitTheme has run.

func ColorReset() string     { return GetCurrentTheme().Reset }
func ColorBold() string      { return GetCurrentTheme().Bold }
func ColorUnderline() string { return GetCurrentTheme().Underline }
func ColorRed() string       { return GetCurrentTheme().Error }
func ColorGreen() string     { return GetCurrentTheme().Success }
func ColorYellow() string    { return GetCurrentTheme().Warning }
func ColorBlue() string      { return GetCurrentTheme().Primary }
func ColorMagenta() string   { return GetCurrentTheme().Tails }
func ColorCyan() string      { return GetCurrentTheme().Info }
func ColorGrey() string      { return GetCurrentTheme().Secondary }

// OutcomeColor returns the escape code for heads or tails.
func OutcomeColor(heads bool) string {
	t := GetCurrentTheme()
	if heads {
		return t.Heads
	}
	return t.Tails
}

// Paint wraps s in color and a reset. With colors disabled it returns s.
func Paint(color, s string) string {
	if color == "" {
		return s
	}
	return color + s + GetCurrentTheme().Reset
}
