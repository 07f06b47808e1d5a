package markdown

import (
	"strings"
	"testing"

	"github.com/kylesnowschwartz/tail-agent/termtext"
)

func TestRenderInline(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"bold", "Hello **world**", "Hello \x1b[1mworld\x1b[22m"},
		{"italic", "*hi*", "\x1b[3mhi\x1b[23m"},
		{"strikethrough", "~~gone~~", "\x1b[9mgone\x1b[29m"},
		{"inline code", "use `go test` now", "use \x1b[33mgo test\x1b[39m now"},
		{"link keeps url", "[docs](https://x.dev)", "\x1b[34m[docs](https://x.dev)\x1b[39m"},
		{"bold inside link", "[**a**](u)", "\x1b[34m[\x1b[1ma\x1b[22m](u)\x1b[39m"},
		{"nested emphasis", "**a *b***", "\x1b[1ma \x1b[3mb\x1b[23m\x1b[22m"},
		{"soft break", "line one\nline two", "line one\nline two"},
		{"style reopened per line", "**a\nb**", "\x1b[1ma\x1b[22m\n\x1b[1mb\x1b[22m"},
		{"entity", "Tom &amp; Jerry", "Tom & Jerry"},
		{"plain", "just text", "just text"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.src); got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestRenderBoldHasNoMarkers(t *testing.T) {
	got := Render("Hello **world**")
	if !strings.Contains(got, "\x1b[1m") || !strings.Contains(got, "\x1b[22m") {
		t.Errorf("missing bold on/off codes: %q", got)
	}
	if strings.Contains(got, "**") {
		t.Errorf("markers leaked: %q", got)
	}
}

func TestRenderHeadings(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"h1 underlined with two blank lines", "# Title\nbody", "\x1b[1;4;35mTitle\x1b[22;24;39m\n\n\nbody"},
		{"h2", "## Sub\nbody", "\x1b[1;36mSub\x1b[22;39m\n\nbody"},
		{"h3", "### Third", "\x1b[1;34mThird\x1b[22;39m"},
		{"h4", "#### Four", "\x1b[1mFour\x1b[22m"},
		{"h6 matches h4", "###### Six", "\x1b[1mSix\x1b[22m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.src); got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestRenderHeadingIsNotWrapped(t *testing.T) {
	long := "# " + strings.Repeat("word ", 40)
	got := Render(long)
	if strings.Count(got, "\n") != 0 {
		t.Errorf("heading was broken across lines: %q", got)
	}
}

func TestRenderLists(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"bullets", "- item one\n- item two", "• item one\n• item two"},
		{"ordered", "1. a\n2. b", "1. a\n2. b"},
		{"ordered start", "3. a\n4. b", "3. a\n4. b"},
		{"nested", "- a\n  - b\n    - c\n- d", "• a\n  • b\n    • c\n• d"},
		{"nested ordered", "1. a\n   1. b\n2. c", "1. a\n  1. b\n2. c"},
		{"inline styles", "- **x** and *y*", "• \x1b[1mx\x1b[22m and \x1b[3my\x1b[23m"},
		{"tasks", "- [x] done\n- [ ] todo", "• [x] done\n• [ ] todo"},
		{"continuation paragraph", "1. first\n\n   second para\n2. next", "1. first\n   second para\n2. next"},
		{"list then paragraph", "- a\n\nafter", "• a\n\nafter"},
		{"lazy continuation", "- first line\n  continued line", "• first line\n  continued line"},
		{"nested lazy continuation", "- a\n  - b\n    more\n- c", "• a\n  • b\n    more\n• c"},
		{"ordered lazy continuation", "1. one\ntwo", "1. one\n   two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.src); got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestRenderListLinesStartWithBullet(t *testing.T) {
	got := Render("- item one\n- item two")
	for _, line := range strings.Split(got, "\n") {
		if !strings.HasPrefix(line, "• ") {
			t.Errorf("line %q does not start with a bullet", line)
		}
	}
}

func TestRenderBlockquote(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"single", "> quoted", "│ quoted"},
		{"two lines", "> a\n> b", "│ a\n│ b"},
		{"nested", "> a\n>> b", "│ a\n│\n│ │ b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.src)
			if plain := termtext.Strip(got); plain != tt.want {
				t.Errorf("Render(%q) stripped = %q, want %q", tt.src, plain, tt.want)
			}
			if !strings.HasPrefix(got, "\x1b[2m│") {
				t.Errorf("quote marker not dimmed: %q", got)
			}
		})
	}
}

func TestRenderCodeBox(t *testing.T) {
	got := Render("```go\nfmt.Println(1)\n\n```")
	lines := strings.Split(termtext.Strip(got), "\n")
	want := []string{
		"┌─ go " + strings.Repeat("─", 34),
		"│ fmt.Println(1)",
		"│ ",
		"└" + strings.Repeat("─", 39),
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines %q, want %d", len(lines), lines, len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
	if !strings.Contains(got, "\x1b[2m│ fmt.Println(1)\x1b[0m") {
		t.Errorf("code line not dimmed: %q", got)
	}
	if termtext.VisualWidth(lines[0]) != DefaultRuleWidth {
		t.Errorf("top border width = %d", termtext.VisualWidth(lines[0]))
	}
}

func TestRenderCodeBoxLabels(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"no language", "```\nx\n```", "┌─ code "},
		{"indented", "    x := 1", "┌─ code "},
		{"language", "```python\nx\n```", "┌─ python "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := termtext.Strip(Render(tt.src))
			if !strings.HasPrefix(got, tt.want) {
				t.Errorf("Render(%q) = %q, want prefix %q", tt.src, got, tt.want)
			}
			if strings.Contains(got, "**") || strings.Contains(got, "\x1b[33m") {
				t.Errorf("code content was styled: %q", got)
			}
		})
	}
}

func TestRenderCodeIsNotMarkdown(t *testing.T) {
	got := Render("```\n**not bold**\n```")
	if strings.Contains(got, "\x1b[1m") {
		t.Errorf("code block content rendered as markdown: %q", got)
	}
	if !strings.Contains(termtext.Strip(got), "│ **not bold**") {
		t.Errorf("code content not verbatim: %q", got)
	}
}

func TestRenderTable(t *testing.T) {
	got := Render("| a | bb |\n|---|---|\n| ccc | d |")
	want := []string{
		"a   │ bb",
		"────┼───",
		"ccc │ d",
	}
	lines := strings.Split(termtext.Strip(got), "\n")
	if len(lines) != len(want) {
		t.Fatalf("got %q", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
	if !strings.HasPrefix(got, "\x1b[1ma\x1b[22m") {
		t.Errorf("header not bold: %q", got)
	}
}

func TestRenderTableAlignment(t *testing.T) {
	got := termtext.Strip(Render("| n | name |\n|--:|:-:|\n| 1 | x |\n| 100 | abcd |"))
	lines := strings.Split(got, "\n")
	if len(lines) != 4 {
		t.Fatalf("got %q", lines)
	}
	if lines[2] != "  1 │  x" {
		t.Errorf("aligned row = %q", lines[2])
	}
}

func TestRenderHorizontalRule(t *testing.T) {
	tests := []struct {
		width int
		want  int
	}{
		{0, DefaultRuleWidth},
		{-5, DefaultRuleWidth},
		{10, 10},
		{200, MaxRuleWidth},
	}
	for _, tt := range tests {
		got := RenderWidth("a\n\n---\n\nb", tt.width)
		want := "a\n\n" + strings.Repeat("─", tt.want) + "\n\nb"
		if plain := termtext.Strip(got); plain != want {
			t.Errorf("RenderWidth(width=%d) = %q, want %q", tt.width, plain, want)
		}
	}
}

func TestRenderFrontmatter(t *testing.T) {
	t.Run("closed", func(t *testing.T) {
		got := Render("---\ntitle: **x**\n---\n# H")
		wantPrefix := "\x1b[2m---\x1b[0m\n\x1b[2mtitle: **x**\x1b[0m\n\x1b[2m---\x1b[0m\n"
		if !strings.HasPrefix(got, wantPrefix) {
			t.Fatalf("got %q, want prefix %q", got, wantPrefix)
		}
		if rest := strings.TrimPrefix(got, wantPrefix); rest != "\x1b[1;4;35mH\x1b[22;24;39m" {
			t.Errorf("body after frontmatter = %q", rest)
		}
	})
	t.Run("unclosed is markdown", func(t *testing.T) {
		got := Render("---\ntitle: **x**\n# H")
		if strings.Contains(got, "**") {
			t.Errorf("unclosed frontmatter kept verbatim: %q", got)
		}
		if !strings.Contains(termtext.Strip(got), strings.Repeat("─", DefaultRuleWidth)) {
			t.Errorf("leading --- not rendered as a rule: %q", got)
		}
	})
	t.Run("only frontmatter", func(t *testing.T) {
		got := termtext.Strip(Render("---\na: 1\n---"))
		if got != "---\na: 1\n---" {
			t.Errorf("got %q", got)
		}
	})
}

func TestRenderStripsTrailingNewlines(t *testing.T) {
	for _, src := range []string{"para\n\n\n", "- a\n", "```\nx\n```\n", "> q\n\n"} {
		if got := Render(src); strings.HasSuffix(got, "\n") {
			t.Errorf("Render(%q) = %q ends with newline", src, got)
		}
	}
}

func TestRenderHTMLVerbatim(t *testing.T) {
	got := Render("<div>\nhi\n</div>")
	if got != "<div>\nhi\n</div>" {
		t.Errorf("got %q", got)
	}
}

func TestTryRender(t *testing.T) {
	out, err := TryRender("**x**", 0)
	if err != nil {
		t.Fatalf("TryRender: %v", err)
	}
	if out != "\x1b[1mx\x1b[22m" {
		t.Errorf("out = %q", out)
	}
}

func TestRenderOutputSegmentsRoundTrip(t *testing.T) {
	segs := termtext.ParseSegments(Render("a **b** *c* `d`"))
	want := []termtext.Segment{
		{Text: "a "},
		{Text: "b", Style: termtext.Style{Bold: true}},
		{Text: " "},
		{Text: "c", Style: termtext.Style{Italic: true}},
		{Text: " "},
		{Text: "d", Style: termtext.Style{Color: termtext.Yellow}},
	}
	if len(segs) != len(want) {
		t.Fatalf("segments = %+v", segs)
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, segs[i], want[i])
		}
	}
}
