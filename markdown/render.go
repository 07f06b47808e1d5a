// Package markdown renders markdown to ANSI-styled terminal text.
//
// Output is not wrapped; callers wrap the result to the terminal width.
// Rendering is best effort: any internal failure yields the input unchanged.
package markdown

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/kylesnowschwartz/tail-agent/termtext"
)

// Rule width bounds for horizontal rules and code box borders.
const (
	DefaultRuleWidth = 40
	MaxRuleWidth     = 80
)

// md is immutable after construction; each Parse call allocates its own state.
var md = goldmark.New(goldmark.WithExtensions(
	extension.Table,
	extension.Strikethrough,
	extension.TaskList,
))

// Render converts markdown to ANSI text using the default rule width.
func Render(src string) string {
	return RenderWidth(src, 0)
}

// RenderWidth converts markdown to ANSI text. width sets the length of
// horizontal rules; values <= 0 use DefaultRuleWidth and larger values are
// capped at MaxRuleWidth.
func RenderWidth(src string, width int) string {
	out, err := TryRender(src, width)
	if err != nil {
		return src
	}
	return out
}

// TryRender is RenderWidth with the failure exposed. On error the returned
// string is src.
func TryRender(src string, width int) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = src, fmt.Errorf("render markdown: %v", r)
		}
	}()

	var b strings.Builder
	body := src
	if front, rest, ok := splitFrontmatter(src); ok {
		for _, line := range front {
			b.WriteString(termtext.Emit(dimStyle, line))
			b.WriteByte('\n')
		}
		body = rest
	}

	rc := newRenderContext([]byte(body), ruleWidth(width))
	rc.renderBlock(md.Parser().Parse(text.NewReader(rc.src)))
	b.WriteString(rc.out.String())

	return strings.TrimRight(b.String(), "\n"), nil
}

func ruleWidth(width int) int {
	switch {
	case width <= 0:
		return DefaultRuleWidth
	case width > MaxRuleWidth:
		return MaxRuleWidth
	}
	return width
}

// splitFrontmatter detects a leading "---" block closed by another "---"
// line. front holds both delimiters and everything between them.
func splitFrontmatter(src string) (front []string, rest string, ok bool) {
	lines := strings.Split(src, "\n")
	if len(lines) < 2 || !isDelimiter(lines[0]) {
		return nil, src, false
	}
	for i := 1; i < len(lines); i++ {
		if isDelimiter(lines[i]) {
			return lines[:i+1], strings.Join(lines[i+1:], "\n"), true
		}
	}
	return nil, src, false
}

func isDelimiter(line string) bool {
	return strings.TrimRight(line, "\r") == "---"
}
