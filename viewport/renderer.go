// Package viewport turns blocks into wrapped terminal lines and renders any
// window of them without materializing the rest.
//
// Collapsible blocks (tool groups and subagents) render a header line
// followed by their content wrapped at Width-ContentIndent; a collapsed block
// is its header alone. Messages render as markdown wrapped at Width with no
// header. Status and user-input blocks are a single truncated line.
package viewport

import (
	"strings"

	"github.com/kylesnowschwartz/tail-agent/markdown"
	"github.com/kylesnowschwartz/tail-agent/parser"
	"github.com/kylesnowschwartz/tail-agent/termtext"
)

// ContentIndent is the column budget reserved left of collapsible block
// content. Lines marked Indented should be painted that far in.
const ContentIndent = 4

// MarkdownFunc renders a markdown document for a terminal width.
type MarkdownFunc func(src string, width int) string

// RenderedLine is one wrapped line ready to paint.
type RenderedLine struct {
	Content   string
	BlockID   string
	BlockType parser.BlockType
	IsHeader  bool
	Indented  bool
	// SourceLineIndex is the block content line this was wrapped from, or
	// -1 for headers and single-line blocks.
	SourceLineIndex int
}

// Renderer computes line counts and windows over a block sequence.
// Width and Collapsed are read on every call; change them between calls
// as the terminal resizes or the user toggles blocks.
type Renderer struct {
	Width int
	// Collapsed holds ids of folded blocks. Only tool groups and subagents
	// honor it.
	Collapsed map[string]bool
	Markdown  MarkdownFunc
	// ToolLineStyler, when set, decorates each tool group line before it is
	// measured and wrapped.
	ToolLineStyler func(string) string

	cache *renderCache
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMarkdown replaces the markdown engine.
func WithMarkdown(f MarkdownFunc) Option {
	return func(r *Renderer) { r.Markdown = f }
}

// WithToolLineStyler sets the tool line decorator.
func WithToolLineStyler(f func(string) string) Option {
	return func(r *Renderer) { r.ToolLineStyler = f }
}

// WithCollapsed sets the initial collapsed id set.
func WithCollapsed(ids map[string]bool) Option {
	return func(r *Renderer) { r.Collapsed = ids }
}

// New returns a Renderer for the given terminal width. Markdown defaults to
// markdown.RenderWidth.
func New(width int, opts ...Option) *Renderer {
	r := &Renderer{
		Width:     width,
		Collapsed: make(map[string]bool),
		Markdown:  markdown.RenderWidth,
		cache:     newRenderCache(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Invalidate drops all memoized content. Call it after swapping Markdown or
// ToolLineStyler.
func (r *Renderer) Invalidate() {
	r.cache.reset()
}

// Retain forgets memoized content for blocks not in blocks.
func (r *Renderer) Retain(blocks []parser.Block) {
	r.cache.retain(blocks)
}

// IsCollapsed reports whether b renders as its header alone.
func (r *Renderer) IsCollapsed(b parser.Block) bool {
	return b.Type().Collapsible() && r.Collapsed[b.ID()]
}

// LineCount is the number of wrapped lines b occupies when collapsed is
// its fold state.
func (r *Renderer) LineCount(b parser.Block, collapsed bool) int {
	switch b.Type() {
	case parser.BlockStatus, parser.BlockUserInput:
		return 1
	case parser.BlockMessages:
		return r.content(b).total()
	}
	if collapsed {
		return 1
	}
	return 1 + r.content(b).total()
}

// Lines is LineCount using the renderer's collapsed set.
func (r *Renderer) Lines(b parser.Block) int {
	return r.LineCount(b, r.IsCollapsed(b))
}

// TotalLines is the wrapped height of the whole sequence.
func (r *Renderer) TotalLines(blocks []parser.Block) int {
	n := 0
	for _, b := range blocks {
		n += r.Lines(b)
	}
	return n
}

// Offsets returns the first wrapped line of each block.
func (r *Renderer) Offsets(blocks []parser.Block) []int {
	offsets := make([]int, len(blocks))
	n := 0
	for i, b := range blocks {
		offsets[i] = n
		n += r.Lines(b)
	}
	return offsets
}

// Render returns at most maxLines wrapped lines starting skip lines into the
// sequence. Only blocks that intersect the window are rendered, and within
// them only the source lines that produce visible wrapped lines. A window
// past the end yields no lines.
func (r *Renderer) Render(blocks []parser.Block, skip, maxLines int) []RenderedLine {
	if maxLines <= 0 {
		return nil
	}
	if skip < 0 {
		skip = 0
	}
	var out []RenderedLine
	take := maxLines
	for _, b := range blocks {
		if take == 0 {
			break
		}
		n := r.Lines(b)
		if skip >= n {
			skip -= n
			continue
		}
		lines := r.renderBlock(b, skip, take)
		out = append(out, lines...)
		take -= len(lines)
		skip = 0
	}
	return out
}

func (r *Renderer) renderBlock(b parser.Block, skip, take int) []RenderedLine {
	switch b := b.(type) {
	case *parser.StatusBlock:
		return []RenderedLine{r.single(b, statusLine(b, r.Width))}
	case *parser.UserInputBlock:
		return []RenderedLine{r.single(b, userInputLine(b, r.Width))}
	case *parser.MessagesBlock:
		return r.renderContent(b, r.content(b), skip, take, false)
	}

	collapsed := r.IsCollapsed(b)
	var out []RenderedLine
	if skip == 0 {
		out = append(out, RenderedLine{
			Content:         r.header(b, collapsed),
			BlockID:         b.ID(),
			BlockType:       b.Type(),
			IsHeader:        true,
			SourceLineIndex: -1,
		})
		take--
	} else {
		skip--
	}
	if collapsed || take == 0 {
		return out
	}
	return append(out, r.renderContent(b, r.content(b), skip, take, true)...)
}

func (r *Renderer) single(b parser.Block, line string) RenderedLine {
	return RenderedLine{
		Content:         line,
		BlockID:         b.ID(),
		BlockType:       b.Type(),
		SourceLineIndex: -1,
	}
}

func (r *Renderer) header(b parser.Block, collapsed bool) string {
	switch b := b.(type) {
	case *parser.ToolGroupBlock:
		return toolGroupHeader(b, collapsed, r.Width)
	case *parser.SubagentBlock:
		return subagentHeader(b, collapsed, r.Width)
	}
	return ""
}

// renderContent wraps only the source lines covering the window.
func (r *Renderer) renderContent(b parser.Block, c *content, skip, take int, indented bool) []RenderedLine {
	first, last, ok := c.window(skip, take)
	if !ok {
		return nil
	}
	out := make([]RenderedLine, 0, take)
	drop := skip - c.counts[first]
	for i := first; i <= last && len(out) < take; i++ {
		wrapped := termtext.WrapStyled(c.lines[i], c.wrapWidth)
		if i == first {
			wrapped = wrapped[drop:]
		}
		for _, w := range wrapped {
			if len(out) == take {
				break
			}
			out = append(out, RenderedLine{
				Content:         w,
				BlockID:         b.ID(),
				BlockType:       b.Type(),
				Indented:        indented,
				SourceLineIndex: i,
			})
		}
	}
	return out
}

// content returns the memoized display lines of b at the current width.
func (r *Renderer) content(b parser.Block) *content {
	width := r.Width
	switch b := b.(type) {
	case *parser.MessagesBlock:
		h := hashLines(b.Lines)
		return r.cache.get(b.ID(), h, width, func() *content {
			rendered := b.Markdown()
			if r.Markdown != nil {
				rendered = r.Markdown(rendered, width)
			}
			return newContent(h, width, width, strings.Split(rendered, "\n"))
		})
	case *parser.ToolGroupBlock:
		h := hashLines(b.Lines)
		return r.cache.get(b.ID(), h, width, func() *content {
			lines := make([]string, len(b.Lines))
			for i, l := range b.Lines {
				lines[i] = r.styleToolLine(l)
			}
			return newContent(h, width, contentWidth(width), lines)
		})
	case *parser.SubagentBlock:
		h := hashOutput(b.Output)
		return r.cache.get(b.ID(), h, width, func() *content {
			lines := make([]string, len(b.Output))
			for i, l := range b.Output {
				lines[i] = l.Text
			}
			return newContent(h, width, contentWidth(width), lines)
		})
	}
	return newContent(0, width, width, nil)
}

func (r *Renderer) styleToolLine(line string) string {
	if strings.HasPrefix(line, parser.ErrorAnnotationPrefix) {
		return termtext.Emit(styleError, line)
	}
	if r.ToolLineStyler != nil {
		return r.ToolLineStyler(line)
	}
	return line
}

// contentWidth is the wrap width for indented content. A terminal no wider
// than the indent leaves content unwrapped.
func contentWidth(width int) int {
	return width - ContentIndent
}
