package markdown

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/kylesnowschwartz/tail-agent/termtext"
)

var (
	dimStyle    = termtext.Style{Dim: true}
	codeStyle   = termtext.Style{Color: termtext.Yellow}
	linkStyle   = termtext.Style{Color: termtext.Blue}
	quoteMarker = termtext.Emit(dimStyle, "│")
	bullet      = "• "
)

// headingStyles is indexed by level-1; levels 4-6 share the last entry.
var headingStyles = [...]termtext.Style{
	{Bold: true, Underline: true, Color: termtext.Magenta},
	{Bold: true, Color: termtext.Cyan},
	{Bold: true, Color: termtext.Blue},
	{Bold: true},
}

type listFrame struct {
	ordered bool
	counter int
}

// renderContext carries all state of one render call: the open list frames,
// the active inline style stack and the output being built.
type renderContext struct {
	src       []byte
	out       *strings.Builder
	lists     []listFrame
	styles    []termtext.Style
	ruleWidth int
	// indent starts every line after a break inside the current list item
	// paragraph.
	indent string
}

func newRenderContext(src []byte, ruleWidth int) *renderContext {
	return &renderContext{src: src, out: &strings.Builder{}, ruleWidth: ruleWidth}
}

// sub returns a context that renders into its own buffer, used for content
// that gets prefixed or measured before it is written.
func (r *renderContext) sub() *renderContext {
	return newRenderContext(r.src, r.ruleWidth)
}

func (r *renderContext) style() termtext.Style {
	if len(r.styles) == 0 {
		return termtext.Style{}
	}
	return r.styles[len(r.styles)-1]
}

func (r *renderContext) push(f func(termtext.Style) termtext.Style) {
	cur := r.style()
	next := f(cur)
	r.out.WriteString(termtext.Transition(cur, next))
	r.styles = append(r.styles, next)
}

func (r *renderContext) pop() {
	cur := r.style()
	r.styles = r.styles[:len(r.styles)-1]
	r.out.WriteString(termtext.Transition(cur, r.style()))
}

// newline ends the current line. Active styles are closed before the break
// and reopened after it so every line carries its own escapes.
func (r *renderContext) newline() {
	cur := r.style()
	r.out.WriteString(termtext.Transition(cur, termtext.Style{}))
	r.out.WriteByte('\n')
	r.out.WriteString(r.indent)
	r.out.WriteString(termtext.Transition(termtext.Style{}, cur))
}

// writeText writes text that may contain line breaks.
func (r *renderContext) writeText(s string) {
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			r.newline()
		}
		r.out.WriteString(line)
	}
}

func (r *renderContext) inList() bool {
	return len(r.lists) > 0
}

func (r *renderContext) renderChildren(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		r.renderBlock(c)
	}
}

func (r *renderContext) renderBlock(n ast.Node) {
	switch n := n.(type) {
	case *ast.Document:
		r.renderChildren(n)
	case *ast.Paragraph, *ast.TextBlock:
		r.renderInlines(n)
		r.out.WriteString("\n\n")
	case *ast.Heading:
		r.renderHeading(n)
	case *ast.List:
		r.renderList(n)
	case *ast.Blockquote:
		r.renderBlockquote(n)
	case *ast.FencedCodeBlock:
		label := string(n.Language(r.src))
		if label == "" {
			label = "code"
		}
		r.renderCodeBox(label, n.Lines())
	case *ast.CodeBlock:
		r.renderCodeBox("code", n.Lines())
	case *ast.ThematicBreak:
		r.out.WriteString(termtext.Emit(dimStyle, strings.Repeat("─", r.ruleWidth)))
		r.out.WriteString("\n\n")
	case *ast.HTMLBlock:
		r.renderLines(n.Lines())
		if n.HasClosure() {
			r.out.Write(n.ClosureLine.Value(r.src))
		}
		r.out.WriteString("\n")
	case *east.Table:
		r.renderTable(n)
	default:
		r.renderChildren(n)
	}
}

func (r *renderContext) renderHeading(n *ast.Heading) {
	level := min(max(n.Level, 1), len(headingStyles))
	hs := headingStyles[level-1]
	r.push(func(termtext.Style) termtext.Style { return hs })
	r.renderInlines(n)
	r.pop()
	if n.Level == 1 {
		r.out.WriteString("\n\n\n")
		return
	}
	r.out.WriteString("\n\n")
}

func (r *renderContext) renderList(n *ast.List) {
	r.lists = append(r.lists, listFrame{ordered: n.IsOrdered(), counter: n.Start})
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		r.renderListItem(item)
	}
	r.lists = r.lists[:len(r.lists)-1]
	if !r.inList() {
		r.out.WriteString("\n")
	}
}

func (r *renderContext) renderListItem(item ast.Node) {
	frame := &r.lists[len(r.lists)-1]
	marker := bullet
	if frame.ordered {
		marker = strconv.Itoa(frame.counter) + ". "
		frame.counter++
	}
	indent := strings.Repeat("  ", len(r.lists)-1)
	cont := indent + strings.Repeat(" ", termtext.VisualWidth(marker))

	rest := item.FirstChild()
	switch rest.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		r.out.WriteString(indent + marker)
		outer := r.indent
		r.indent = cont
		r.renderInlines(rest)
		r.indent = outer
		r.out.WriteString("\n")
		rest = rest.NextSibling()
	default:
		r.out.WriteString(strings.TrimRight(indent+marker, " ") + "\n")
	}

	for c := rest; c != nil; c = c.NextSibling() {
		if l, ok := c.(*ast.List); ok {
			r.renderList(l)
			continue
		}
		sub := r.sub()
		sub.renderBlock(c)
		body := strings.TrimRight(sub.out.String(), "\n")
		for _, line := range strings.Split(body, "\n") {
			if line != "" {
				r.out.WriteString(cont)
			}
			r.out.WriteString(line)
			r.out.WriteString("\n")
		}
	}
}

func (r *renderContext) renderBlockquote(n *ast.Blockquote) {
	sub := r.sub()
	sub.renderChildren(n)
	body := strings.TrimRight(sub.out.String(), "\n")
	for _, line := range strings.Split(body, "\n") {
		r.out.WriteString(quoteMarker)
		if line != "" {
			r.out.WriteString(" " + line)
		}
		r.out.WriteString("\n")
	}
	r.out.WriteString("\n")
}

func (r *renderContext) renderCodeBox(label string, lines *text.Segments) {
	dashes := max(3, r.ruleWidth-termtext.VisualWidth(label)-4)
	r.out.WriteString(termtext.Emit(dimStyle, "┌─ ") + label + " " + termtext.Emit(dimStyle, strings.Repeat("─", dashes)))
	r.out.WriteString("\n")
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(r.src)), "\r\n")
		r.out.WriteString(termtext.Emit(dimStyle, "│ "+line))
		r.out.WriteString("\n")
	}
	r.out.WriteString(termtext.Emit(dimStyle, "└"+strings.Repeat("─", max(3, r.ruleWidth-1))))
	r.out.WriteString("\n\n")
}

func (r *renderContext) renderLines(lines *text.Segments) {
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		r.out.Write(seg.Value(r.src))
	}
}

func (r *renderContext) renderInlines(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		r.renderInline(c)
	}
}

func (r *renderContext) renderInline(n ast.Node) {
	switch n := n.(type) {
	case *ast.Text:
		v := n.Segment.Value(r.src)
		if !n.IsRaw() {
			v = unescape(v)
		}
		r.writeText(string(v))
		if n.SoftLineBreak() || n.HardLineBreak() {
			r.newline()
		}
	case *ast.String:
		v := n.Value
		if !n.IsRaw() {
			v = unescape(v)
		}
		r.writeText(string(v))
	case *ast.Emphasis:
		r.push(func(s termtext.Style) termtext.Style {
			if n.Level >= 2 {
				s.Bold = true
			} else {
				s.Italic = true
			}
			return s
		})
		r.renderInlines(n)
		r.pop()
	case *east.Strikethrough:
		r.push(func(s termtext.Style) termtext.Style {
			s.Strikethrough = true
			return s
		})
		r.renderInlines(n)
		r.pop()
	case *ast.CodeSpan:
		r.push(withColor(codeStyle.Color))
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				v := t.Segment.Value(r.src)
				r.out.Write(bytes.ReplaceAll(bytes.TrimSuffix(v, []byte("\n")), []byte("\n"), []byte(" ")))
				if bytes.HasSuffix(v, []byte("\n")) {
					r.out.WriteByte(' ')
				}
			}
		}
		r.pop()
	case *ast.Link:
		r.push(withColor(linkStyle.Color))
		r.out.WriteString("[")
		r.renderInlines(n)
		r.out.WriteString("](")
		r.out.Write(n.Destination)
		r.out.WriteString(")")
		r.pop()
	case *ast.Image:
		r.push(withColor(linkStyle.Color))
		r.out.WriteString("![")
		r.renderInlines(n)
		r.out.WriteString("](")
		r.out.Write(n.Destination)
		r.out.WriteString(")")
		r.pop()
	case *ast.AutoLink:
		r.push(withColor(linkStyle.Color))
		r.out.Write(n.Label(r.src))
		r.pop()
	case *ast.RawHTML:
		r.renderLines(n.Segments)
	case *east.TaskCheckBox:
		if n.IsChecked {
			r.out.WriteString("[x]")
		} else {
			r.out.WriteString("[ ]")
		}
		if t, ok := n.NextSibling().(*ast.Text); !ok || !bytes.HasPrefix(t.Segment.Value(r.src), []byte(" ")) {
			r.out.WriteByte(' ')
		}
	default:
		r.renderInlines(n)
	}
}

func withColor(c termtext.Color) func(termtext.Style) termtext.Style {
	return func(s termtext.Style) termtext.Style {
		s.Color = c
		return s
	}
}

// unescape resolves backslash escapes and character references.
func unescape(v []byte) []byte {
	v = util.UnescapePunctuations(v)
	v = util.ResolveNumericReferences(v)
	return util.ResolveEntityNames(v)
}
