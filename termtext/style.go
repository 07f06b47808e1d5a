package termtext

import (
	"fmt"
	"strconv"
	"strings"
)

// SGR codes understood by ParseSegments and produced by the emitters.
const (
	CodeReset           = 0
	CodeBold            = 1
	CodeDim             = 2
	CodeItalic          = 3
	CodeUnderline       = 4
	CodeStrikethrough   = 9
	CodeNormalIntensity = 22 // clears bold and dim together
	CodeNoItalic        = 23
	CodeNoUnderline     = 24
	CodeNoStrikethrough = 29
	CodeFgBase          = 30
	CodeFgExtended      = 38
	CodeFgDefault       = 39
	CodeFgBrightBase    = 90

	codeBgExtended = 48
)

// Reset is the full SGR reset sequence.
const Reset = "\x1b[0m"

// colorNames are the eight ANSI foreground colors in code order.
var colorNames = [8]string{"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white"}

// Color is either one of the eight ANSI color names or a "#rrggbb" hex value.
// The zero value means the terminal's default foreground.
type Color string

// Named ANSI colors.
const (
	Black   Color = "black"
	Red     Color = "red"
	Green   Color = "green"
	Yellow  Color = "yellow"
	Blue    Color = "blue"
	Magenta Color = "magenta"
	Cyan    Color = "cyan"
	White   Color = "white"
)

// Hex builds a 24-bit color.
func Hex(r, g, b int) Color {
	return Color(fmt.Sprintf("#%02x%02x%02x", clampByte(r), clampByte(g), clampByte(b)))
}

// IsHex reports whether c is a 24-bit color.
func (c Color) IsHex() bool {
	return len(c) == 7 && c[0] == '#'
}

// codes returns the SGR parameters selecting c, or nil for unknown names and
// the default color.
func (c Color) codes() []string {
	if c == "" {
		return nil
	}
	if c.IsHex() {
		v, err := strconv.ParseUint(string(c[1:]), 16, 32)
		if err != nil {
			return nil
		}
		return []string{
			strconv.Itoa(CodeFgExtended), "2",
			strconv.Itoa(int(v >> 16 & 0xff)),
			strconv.Itoa(int(v >> 8 & 0xff)),
			strconv.Itoa(int(v & 0xff)),
		}
	}
	for i, name := range colorNames {
		if string(c) == name {
			return []string{strconv.Itoa(CodeFgBase + i)}
		}
	}
	return nil
}

// Style is the accumulated SGR state applied to a run of text.
type Style struct {
	Color         Color
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
	Dim           bool
}

// IsZero reports whether s applies no styling at all.
func (s Style) IsZero() bool {
	return s == Style{}
}

// Sequence returns the SGR sequence that turns s on from a reset state.
// The zero style yields "".
func (s Style) Sequence() string {
	return sgr(s.onCodes())
}

func (s Style) onCodes() []string {
	var codes []string
	if s.Bold {
		codes = append(codes, strconv.Itoa(CodeBold))
	}
	if s.Dim {
		codes = append(codes, strconv.Itoa(CodeDim))
	}
	if s.Italic {
		codes = append(codes, strconv.Itoa(CodeItalic))
	}
	if s.Underline {
		codes = append(codes, strconv.Itoa(CodeUnderline))
	}
	if s.Strikethrough {
		codes = append(codes, strconv.Itoa(CodeStrikethrough))
	}
	return append(codes, s.Color.codes()...)
}

// Emit wraps text in the sequence for style and a trailing reset. Empty text
// or a zero style returns text unchanged.
func Emit(style Style, text string) string {
	if text == "" || style.IsZero() {
		return text
	}
	return style.Sequence() + text + Reset
}

// Transition returns the shortest sequence this package emits to move the
// terminal from style from to style to. Turning off bold or dim goes through
// code 22, which clears both, so the surviving attribute is switched back on.
func Transition(from, to Style) string {
	if from == to {
		return ""
	}
	var codes []string
	bold, dim := from.Bold, from.Dim
	if (from.Bold && !to.Bold) || (from.Dim && !to.Dim) {
		codes = append(codes, strconv.Itoa(CodeNormalIntensity))
		bold, dim = false, false
	}
	if to.Bold && !bold {
		codes = append(codes, strconv.Itoa(CodeBold))
	}
	if to.Dim && !dim {
		codes = append(codes, strconv.Itoa(CodeDim))
	}
	codes = append(codes, toggle(from.Italic, to.Italic, CodeItalic, CodeNoItalic)...)
	codes = append(codes, toggle(from.Underline, to.Underline, CodeUnderline, CodeNoUnderline)...)
	codes = append(codes, toggle(from.Strikethrough, to.Strikethrough, CodeStrikethrough, CodeNoStrikethrough)...)
	if from.Color != to.Color {
		if c := to.Color.codes(); c != nil {
			codes = append(codes, c...)
		} else {
			codes = append(codes, strconv.Itoa(CodeFgDefault))
		}
	}
	return sgr(codes)
}

func toggle(from, to bool, on, off int) []string {
	switch {
	case to && !from:
		return []string{strconv.Itoa(on)}
	case from && !to:
		return []string{strconv.Itoa(off)}
	}
	return nil
}

// SGR builds an escape sequence from numeric codes.
func SGR(codes ...int) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = strconv.Itoa(c)
	}
	return sgr(parts)
}

func sgr(codes []string) string {
	if len(codes) == 0 {
		return ""
	}
	return "\x1b[" + strings.Join(codes, ";") + "m"
}

func clampByte(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return v
}
