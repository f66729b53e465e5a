package render

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	ThemeBright = "bright"
	ThemeDim    = "dim"
)

// Palette names the colors the rows use.
type Palette struct {
	Blue    lipgloss.Color
	Cyan    lipgloss.Color
	Purple  lipgloss.Color
	Magenta lipgloss.Color
	Green   lipgloss.Color
	Orange  lipgloss.Color
	Teal    lipgloss.Color
	Gray    lipgloss.Color
	Red     lipgloss.Color
	Sep     lipgloss.Color
}

var brightPalette = Palette{
	Blue:    lipgloss.Color("#7aa2f7"),
	Cyan:    lipgloss.Color("#7dcfff"),
	Purple:  lipgloss.Color("#bb9af7"),
	Magenta: lipgloss.Color("#9d7cd8"),
	Green:   lipgloss.Color("#9ece6a"),
	Orange:  lipgloss.Color("#ff9e64"),
	Teal:    lipgloss.Color("#2ac3de"),
	Gray:    lipgloss.Color("#788cb4"),
	Red:     lipgloss.Color("#f7768e"),
	Sep:     lipgloss.Color("#565f89"),
}

// Muted variant for light terminals and low-contrast setups.
var dimPalette = Palette{
	Blue:    lipgloss.Color("#5a79b8"),
	Cyan:    lipgloss.Color("#5a9ab8"),
	Purple:  lipgloss.Color("#8c73b8"),
	Magenta: lipgloss.Color("#765ca3"),
	Green:   lipgloss.Color("#73994d"),
	Orange:  lipgloss.Color("#c2774b"),
	Teal:    lipgloss.Color("#2392a6"),
	Gray:    lipgloss.Color("#5c6a87"),
	Red:     lipgloss.Color("#b85a6b"),
	Sep:     lipgloss.Color("#3b4261"),
}

// PaletteFor returns the named palette, falling back to bright.
func PaletteFor(name string) Palette {
	if name == ThemeDim {
		return dimPalette
	}
	return brightPalette
}

// Theme paints text for a fixed color profile. The status line is never
// written to a terminal directly, so the profile is forced instead of
// detected.
type Theme struct {
	renderer *lipgloss.Renderer
	palette  Palette
	links    bool
}

// NewTheme builds a true-color theme, or a plain one without escapes or
// hyperlinks when noColor is set.
func NewTheme(name string, noColor bool) *Theme {
	r := lipgloss.NewRenderer(io.Discard)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	} else {
		r.SetColorProfile(termenv.TrueColor)
	}
	return &Theme{renderer: r, palette: PaletteFor(name), links: !noColor}
}

func (t *Theme) paint(c lipgloss.Color, text string) string {
	return t.renderer.NewStyle().Foreground(c).Render(text)
}

// link wraps text in an OSC 8 hyperlink when url is known.
func (t *Theme) link(url, text string) string {
	if !t.links || url == "" {
		return text
	}
	return termenv.Hyperlink(url, text)
}

func (t *Theme) sep() string {
	return t.paint(t.palette.Sep, " • ")
}
