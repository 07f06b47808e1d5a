package main

import "github.com/charmbracelet/lipgloss"

// -- Colors ---------------------------------------------------------------
// All colors use AdaptiveColor for dark/light terminal support.
// Light values: ANSI 0-15 for accents (palette-adaptive), 256-color for grays
// (predictable). ANSI 7/15 (white) are invisible on light backgrounds, so
// never use them for Light values.
// Dark values: ANSI 256-color codes tuned for dark backgrounds.
//
// | Name          | Light | Dark  | Light desc    | Dark desc      |
// |---------------|-------|-------|---------------|----------------|
// | TextPrimary   |   "0" | "252" | black         | light gray     |
// | TextSecondary |   "8" | "245" | ANSI dk gray  | gray           |
// | TextDim       | "242" | "243" | medium gray   | gray           |
// | TextMuted     | "245" | "240" | med-lt gray   | dark gray      |
// | Accent        |   "4" |  "75" | blue          | blue           |
// | Error         |   "1" | "196" | red           | red            |
// | Border        | "250" |  "60" | subtle gray   | muted blue     |
// | Live          |   "2" |  "76" | green         | green          |

var (
	// Text hierarchy
	ColorTextPrimary   = ac("0", "252")
	ColorTextSecondary = ac("8", "245")
	ColorTextDim       = ac("242", "243")
	ColorTextMuted     = ac("245", "240")

	// Accents
	ColorAccent = ac("4", "75")
	ColorError  = ac("1", "196")

	// Tail indicator
	ColorLive = ac("2", "76")
)

// -- Semantic text styles -----------------------------------------------------

var (
	StylePrimaryBold = lipgloss.NewStyle().Bold(true).Foreground(ColorTextPrimary)
	StyleSecondary   = lipgloss.NewStyle().Foreground(ColorTextSecondary)
	StyleDim         = lipgloss.NewStyle().Foreground(ColorTextDim)
	StyleMuted       = lipgloss.NewStyle().Foreground(ColorTextMuted)
	StyleErrorBold   = lipgloss.NewStyle().Bold(true).Foreground(ColorError)
	StyleLiveBadge   = lipgloss.NewStyle().Bold(true).Foreground(ColorLive)
	StyleCursor      = lipgloss.NewStyle().Foreground(ColorAccent)
)

// ac is a shorthand constructor for lipgloss.AdaptiveColor.
func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}
