package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/colorprofile"
)

// jsonHL syntax-highlights JSON payloads in tool call lines.
// Constructed once with hasDarkBg; chroma objects are safe for reuse.
type jsonHL struct {
	lexer     chroma.Lexer
	formatter chroma.Formatter
	style     *chroma.Style
}

// newJSONHL creates a highlighter for the detected background and
// terminal color profile.
func newJSONHL(hasDarkBg bool) *jsonHL {
	styleName := "github"
	if hasDarkBg {
		styleName = "dracula"
	}
	profile := colorprofile.Detect(os.Stderr, os.Environ())
	return newJSONHLWithProfile(styleName, profile)
}

func newJSONHLWithProfile(styleName string, profile colorprofile.Profile) *jsonHL {
	return &jsonHL{
		lexer:     chroma.Coalesce(lexers.Get("json")),
		formatter: formatters.Get(chromaFormatter(profile)),
		style:     styles.Get(styleName),
	}
}

// highlight compacts s onto one line and returns it syntax-highlighted.
// Returns ("", false) for non-JSON input so the caller can fall back to
// plain rendering.
func (h *jsonHL) highlight(s string) (string, bool) {
	raw := []byte(s)
	if !json.Valid(raw) {
		return "", false
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", false
	}

	iterator, err := h.lexer.Tokenise(nil, buf.String())
	if err != nil {
		return "", false
	}

	var out bytes.Buffer
	if err := h.formatter.Format(&out, h.style, iterator); err != nil {
		return "", false
	}
	// Compact JSON has no raw newlines; any left came from the lexer.
	return strings.ReplaceAll(out.String(), "\n", ""), true
}

// maxPayloadStarts bounds how many '{' or '[' positions styleToolLine tries.
const maxPayloadStarts = 4

// styleToolLine highlights the JSON argument payload of a tool call line:
// the suffix from the first '{' or '[' that parses. The tag brackets such
// as "[●]" never parse, so the search moves past them. Lines without a
// payload pass through.
func (h *jsonHL) styleToolLine(line string) string {
	off := 0
	for range maxPayloadStarts {
		i := strings.IndexAny(line[off:], "{[")
		if i < 0 {
			return line
		}
		i += off
		if hl, ok := h.highlight(strings.TrimSpace(line[i:])); ok {
			return line[:i] + hl
		}
		off = i + 1
	}
	return line
}

// chromaFormatter maps colorprofile profiles to chroma terminal formatter names.
func chromaFormatter(profile colorprofile.Profile) string {
	switch profile {
	case colorprofile.TrueColor:
		return "terminal16m"
	case colorprofile.ANSI256:
		return "terminal256"
	case colorprofile.ANSI:
		return "terminal16"
	default:
		return "noop"
	}
}
