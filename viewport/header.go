package viewport

import (
	"strings"

	"github.com/kylesnowschwartz/tail-agent/parser"
	"github.com/kylesnowschwartz/tail-agent/termtext"
)

const (
	chevronExpanded  = "▾"
	chevronCollapsed = "▸"
	headerSep        = " · "
)

var (
	styleLabel   = termtext.Style{Bold: true}
	styleMeta    = termtext.Style{Dim: true}
	styleError   = termtext.Style{Color: termtext.Red}
	styleSuccess = termtext.Style{Color: termtext.Green}
	styleWarning = termtext.Style{Color: termtext.Yellow}
	styleRunning = termtext.Style{Color: termtext.Cyan}
	styleInput   = termtext.Style{Bold: true}
)

// statusGlyphs pairs each status variant with its glyph and color.
var statusGlyphs = map[parser.StatusVariant]struct {
	glyph string
	style termtext.Style
}{
	parser.StatusError:   {"✕", styleError},
	parser.StatusSuccess: {"✓", styleSuccess},
	parser.StatusWarning: {"⚠", styleWarning},
}

func chevron(collapsed bool) string {
	if collapsed {
		return chevronCollapsed
	}
	return chevronExpanded
}

func toolGroupHeader(b *parser.ToolGroupBlock, collapsed bool, width int) string {
	var sb strings.Builder
	sb.WriteString(termtext.Emit(styleMeta, chevron(collapsed)))
	sb.WriteString(" ")
	sb.WriteString(termtext.Emit(styleLabel, "Tools"))
	sb.WriteString(termtext.Emit(styleMeta, headerSep+plural(b.Count, "call")))
	if b.ErrorCount > 0 {
		sb.WriteString(termtext.Emit(styleMeta, headerSep))
		sb.WriteString(termtext.Emit(styleError, plural(b.ErrorCount, "error")))
	}
	return fit(sb.String(), width)
}

func subagentHeader(b *parser.SubagentBlock, collapsed bool, width int) string {
	var sb strings.Builder
	sb.WriteString(termtext.Emit(styleMeta, chevron(collapsed)))
	sb.WriteString(" ")
	sb.WriteString(termtext.Emit(styleLabel, b.SubagentType))
	sb.WriteString(termtext.Emit(styleMeta, headerSep))
	if b.Status == parser.SubagentRunning {
		sb.WriteString(termtext.Emit(styleRunning, "running"))
	} else {
		sb.WriteString(termtext.Emit(styleSuccess, "done"))
	}
	sb.WriteString(termtext.Emit(styleMeta, headerSep+plural(len(b.Output), "line")))
	if s := b.Stats; s != nil {
		var parts []string
		if d := s.Duration(); d > 0 {
			parts = append(parts, formatDuration(d))
		}
		if s.InputTokens > 0 || s.OutputTokens > 0 {
			parts = append(parts, formatTokens(s.InputTokens)+" in / "+formatTokens(s.OutputTokens)+" out")
		}
		if s.ToolCallCount > 0 {
			parts = append(parts, plural(s.ToolCallCount, "tool call"))
		}
		for _, p := range parts {
			sb.WriteString(termtext.Emit(styleMeta, headerSep+p))
		}
	}
	return fit(sb.String(), width)
}

func statusLine(b *parser.StatusBlock, width int) string {
	g, ok := statusGlyphs[b.Variant]
	if !ok {
		g = statusGlyphs[parser.StatusWarning]
	}
	return termtext.Emit(g.style, fitPlain(g.glyph+" "+b.Line, width))
}

func userInputLine(b *parser.UserInputBlock, width int) string {
	return termtext.Emit(styleInput, fitPlain("> "+b.Text, width))
}

// fit truncates styled text to width, closing any style cut off mid-span.
func fit(s string, width int) string {
	if width <= 0 || termtext.VisualWidth(s) <= width {
		return s
	}
	return termtext.TruncateDefault(s, width) + termtext.Reset
}

// fitPlain truncates unstyled text to width.
func fitPlain(s string, width int) string {
	if width <= 0 {
		return s
	}
	return termtext.TruncateDefault(s, width)
}
