package termtext

import (
	"strconv"
	"strings"
)

// Segment is a maximal run of text sharing one style.
type Segment struct {
	Text  string
	Style Style
}

// ParseSegments splits s at every SGR sequence, tracking the style those
// sequences build up. Unknown codes are ignored and runs of zero length are
// dropped, so a trailing reset yields no segment.
func ParseSegments(s string) []Segment {
	var segs []Segment
	var style Style
	for len(s) > 0 {
		at, n := nextSGR(s)
		if at < 0 {
			segs = appendSegment(segs, s, style)
			break
		}
		segs = appendSegment(segs, s[:at], style)
		style = style.apply(s[at+2 : at+n-1])
		s = s[at+n:]
	}
	return segs
}

func appendSegment(segs []Segment, text string, style Style) []Segment {
	if text == "" {
		return segs
	}
	return append(segs, Segment{Text: text, Style: style})
}

// String re-emits the segments as escaped text.
func String(segs []Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		b.WriteString(Emit(seg.Style, seg.Text))
	}
	return b.String()
}

// apply folds one SGR parameter list into s. An empty list means reset.
func (s Style) apply(params string) Style {
	fields := strings.Split(params, ";")
	for i := 0; i < len(fields); i++ {
		code := atoi(fields[i])
		switch {
		case code == CodeReset:
			s = Style{}
		case code == CodeBold:
			s.Bold = true
		case code == CodeDim:
			s.Dim = true
		case code == CodeItalic:
			s.Italic = true
		case code == CodeUnderline:
			s.Underline = true
		case code == CodeStrikethrough:
			s.Strikethrough = true
		case code == CodeNormalIntensity:
			s.Bold = false
			s.Dim = false
		case code == CodeNoItalic:
			s.Italic = false
		case code == CodeNoUnderline:
			s.Underline = false
		case code == CodeNoStrikethrough:
			s.Strikethrough = false
		case code >= CodeFgBase && code <= CodeFgBase+7:
			s.Color = Color(colorNames[code-CodeFgBase])
		case code >= CodeFgBrightBase && code <= CodeFgBrightBase+7:
			s.Color = Color(colorNames[code-CodeFgBrightBase])
		case code == CodeFgDefault:
			s.Color = ""
		case code == CodeFgExtended:
			if i+1 >= len(fields) {
				continue
			}
			switch fields[i+1] {
			case "2":
				var rgb [3]int
				for k := range rgb {
					if j := i + 2 + k; j < len(fields) {
						rgb[k] = max(atoi(fields[j]), 0)
					}
				}
				s.Color = Hex(rgb[0], rgb[1], rgb[2])
				i = min(i+4, len(fields)-1)
			case "5":
				// 256-color palette entries have no representation here.
				i = min(i+2, len(fields)-1)
			}
		case code == codeBgExtended:
			// Backgrounds are not tracked, but their arguments must not be
			// read as codes of their own.
			if i+1 < len(fields) {
				switch fields[i+1] {
				case "2":
					i = min(i+4, len(fields)-1)
				case "5":
					i = min(i+2, len(fields)-1)
				}
			}
		}
	}
	return s
}

// atoi parses an SGR parameter. An empty parameter reads as 0 (reset); one
// that does not parse, such as an out-of-range number, is -1 and matches no
// code.
func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

// StyleAfter returns the style in effect at the end of s when s starts in
// style from.
func StyleAfter(from Style, s string) Style {
	for {
		at, n := nextSGR(s)
		if at < 0 {
			return from
		}
		from = from.apply(s[at+2 : at+n-1])
		s = s[at+n:]
	}
}
