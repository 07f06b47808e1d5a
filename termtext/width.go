// Package termtext measures, wraps and truncates terminal text that may carry
// SGR escape sequences, and converts between styled text and escape codes.
//
// Only well-formed SGR sequences (ESC [ <digits and ;> m) are treated as
// escapes. Everything else, including truncated or non-SGR sequences, is
// ordinary text.
package termtext

import (
	"strings"

	"github.com/rivo/uniseg"
)

const escByte = '\x1b'

// sgrLen returns the byte length of the SGR sequence at the start of s, or 0
// when s does not start with one.
func sgrLen(s string) int {
	if len(s) < 3 || s[0] != escByte || s[1] != '[' {
		return 0
	}
	for i := 2; i < len(s); i++ {
		c := s[i]
		switch {
		case c == 'm':
			return i + 1
		case c == ';' || (c >= '0' && c <= '9'):
		default:
			return 0
		}
	}
	return 0
}

// nextSGR returns the index of the first SGR sequence in s and its length,
// or (-1, 0) when s has none.
func nextSGR(s string) (int, int) {
	off := 0
	for {
		i := strings.IndexByte(s[off:], escByte)
		if i < 0 {
			return -1, 0
		}
		i += off
		if n := sgrLen(s[i:]); n > 0 {
			return i, n
		}
		off = i + 1
	}
}

// scan walks s as a sequence of tokens: whole SGR sequences (escape=true,
// width 0) and grapheme clusters with their display width. Iteration stops
// when fn returns false.
func scan(s string, fn func(tok string, width int, escape bool) bool) {
	for len(s) > 0 {
		at, n := nextSGR(s)
		run := s
		if at >= 0 {
			run = s[:at]
		}
		state := -1
		for len(run) > 0 {
			var cluster string
			var width int
			cluster, run, width, state = uniseg.FirstGraphemeClusterInString(run, state)
			if !fn(cluster, width, false) {
				return
			}
		}
		if at < 0 {
			return
		}
		if !fn(s[at:at+n], 0, true) {
			return
		}
		s = s[at+n:]
	}
}

// VisualWidth returns the number of terminal columns s occupies. SGR
// sequences count zero; combining marks count zero; wide characters and
// emoji count two.
func VisualWidth(s string) int {
	total := 0
	scan(s, func(_ string, w int, _ bool) bool {
		total += w
		return true
	})
	return total
}

// Strip removes every SGR sequence from s.
func Strip(s string) string {
	if strings.IndexByte(s, escByte) < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for len(s) > 0 {
		at, n := nextSGR(s)
		if at < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:at])
		s = s[at+n:]
	}
	return b.String()
}
