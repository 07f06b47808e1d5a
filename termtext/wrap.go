package termtext

import "strings"

// DefaultEllipsis is appended by TruncateDefault.
const DefaultEllipsis = "..."

// Wrap breaks s into lines no wider than maxWidth columns. Characters are
// packed greedily; a character that would overflow starts a new line. SGR
// sequences stay attached to the line being built and are never split. A
// single character wider than maxWidth gets a line of its own. maxWidth <= 0
// disables wrapping.
func Wrap(s string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{s}
	}
	var lines []string
	var cur strings.Builder
	curWidth := 0
	scan(s, func(tok string, w int, escape bool) bool {
		if !escape && curWidth > 0 && curWidth+w > maxWidth {
			lines = append(lines, cur.String())
			cur.Reset()
			curWidth = 0
		}
		cur.WriteString(tok)
		curWidth += w
		return true
	})
	return append(lines, cur.String())
}

// WrapStyled is Wrap for display: each line after the first reopens the
// style left active by the line before it, and any line ending with a style
// still active is closed with a reset. Every returned line is self-contained.
func WrapStyled(s string, maxWidth int) []string {
	lines := Wrap(s, maxWidth)
	if len(lines) == 1 {
		return lines
	}
	var carry Style
	for i, line := range lines {
		end := StyleAfter(carry, line)
		prefix := carry.Sequence()
		if !end.IsZero() {
			line += Reset
		}
		lines[i] = prefix + line
		carry = end
	}
	return lines
}

// WrapCount returns len(Wrap(s, maxWidth)) without building the lines.
func WrapCount(s string, maxWidth int) int {
	if maxWidth <= 0 {
		return 1
	}
	count, curWidth := 1, 0
	scan(s, func(_ string, w int, escape bool) bool {
		if !escape && curWidth > 0 && curWidth+w > maxWidth {
			count++
			curWidth = 0
		}
		curWidth += w
		return true
	})
	return count
}

// WrapLines splits s on newlines and wraps every source line to maxWidth.
func WrapLines(s string, maxWidth int) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		out = append(out, Wrap(line, maxWidth)...)
	}
	return out
}

// Truncate shortens s to at most maxWidth columns, ending it with ellipsis.
// s is returned unchanged when it already fits. When maxWidth leaves no room
// beyond the ellipsis, a prefix of the ellipsis itself is returned.
func Truncate(s string, maxWidth int, ellipsis string) string {
	if VisualWidth(s) <= maxWidth {
		return s
	}
	ew := VisualWidth(ellipsis)
	if maxWidth <= ew {
		return prefix(ellipsis, maxWidth)
	}
	return prefix(s, maxWidth-ew) + ellipsis
}

// TruncateDefault is Truncate with DefaultEllipsis.
func TruncateDefault(s string, maxWidth int) string {
	return Truncate(s, maxWidth, DefaultEllipsis)
}

// prefix keeps characters of s while the running width stays within budget.
func prefix(s string, budget int) string {
	var b strings.Builder
	width := 0
	scan(s, func(tok string, w int, escape bool) bool {
		if !escape && width+w > budget {
			return false
		}
		b.WriteString(tok)
		width += w
		return true
	})
	return b.String()
}
