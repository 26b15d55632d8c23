package output

import (
	"github.com/fatih/color"
)

// ColorScheme defines the colors used for different elements in the output
type ColorScheme struct {
	Rule      *color.Color
	Title     *color.Color
	Value     *color.Color
	Success   *color.Color
	Warning   *color.Color
	Error     *color.Color
	Highlight *color.Color
}

// DefaultColorScheme returns the default color scheme
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Rule:      color.New(color.FgCyan),
		Title:     color.New(color.Bold),
		Value:     color.New(color.FgCyan),
		Success:   color.New(color.FgGreen, color.Bold),
		Warning:   color.New(color.FgYellow, color.Bold),
		Error:     color.New(color.FgRed, color.Bold),
		Highlight: color.New(color.FgMagenta, color.Bold),
	}
}

// NoColorScheme returns a color scheme with all colors disabled
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()
	for _, c := range scheme.all() {
		c.DisableColor()
	}
	return scheme
}

// ForcedColorScheme returns the default colors enabled regardless of the
// package-level color.NoColor, which fatih/color sets when stdout is not a
// terminal.
func ForcedColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()
	for _, c := range scheme.all() {
		c.EnableColor()
	}
	return scheme
}

// SchemeFor returns ForcedColorScheme when useColors is set and
// NoColorScheme otherwise. The caller has already decided; the terminal
// check fatih/color makes on its own is not consulted.
func SchemeFor(useColors bool) *ColorScheme {
	if useColors {
		return ForcedColorScheme()
	}
	return NoColorScheme()
}

func (s *ColorScheme) all() []*color.Color {
	return []*color.Color{s.Rule, s.Title, s.Value, s.Success, s.Warning, s.Error, s.Highlight}
}

// SuccessIcon returns a checkmark symbol with appropriate color
func SuccessIcon(noColor bool) string {
	return icon("✓", color.FgGreen, noColor)
}

// ErrorIcon returns an X symbol with appropriate color
func ErrorIcon(noColor bool) string {
	return icon("✗", color.FgRed, noColor)
}

func icon(symbol string, fg color.Attribute, noColor bool) string {
	if noColor {
		return symbol
	}
	c := color.New(fg)
	c.EnableColor()
	return c.Sprint(symbol)
}
