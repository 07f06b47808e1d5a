package markdown

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"

	"github.com/kylesnowschwartz/tail-agent/termtext"
)

const (
	cellSeparator = " │ "
	ruleJoint     = "─┼─"
)

// renderTable lays cells out in columns padded to the widest cell. The header
// row is bold and followed by a rule.
func (r *renderContext) renderTable(n *east.Table) {
	var rows [][]string
	header := -1
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		_, isHeader := row.(*east.TableHeader)
		if isHeader {
			header = len(rows)
		}
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, r.renderCell(cell, isHeader))
		}
		rows = append(rows, cells)
	}

	var widths []int
	for _, cells := range rows {
		for i, c := range cells {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], termtext.VisualWidth(c))
		}
	}

	for i, cells := range rows {
		padded := make([]string, len(widths))
		for j := range widths {
			var c string
			if j < len(cells) {
				c = cells[j]
			}
			padded[j] = pad(c, widths[j], alignment(n, j))
		}
		r.out.WriteString(strings.TrimRight(strings.Join(padded, cellSeparator), " "))
		r.out.WriteString("\n")
		if i == header {
			rule := make([]string, len(widths))
			for j, w := range widths {
				rule[j] = strings.Repeat("─", w)
			}
			r.out.WriteString(strings.Join(rule, ruleJoint))
			r.out.WriteString("\n")
		}
	}
	r.out.WriteString("\n")
}

func (r *renderContext) renderCell(cell ast.Node, header bool) string {
	sub := r.sub()
	if header {
		sub.push(func(s termtext.Style) termtext.Style {
			s.Bold = true
			return s
		})
	}
	sub.renderInlines(cell)
	if header {
		sub.pop()
	}
	return strings.TrimSpace(sub.out.String())
}

func alignment(n *east.Table, col int) east.Alignment {
	if col < len(n.Alignments) {
		return n.Alignments[col]
	}
	return east.AlignNone
}

func pad(s string, width int, align east.Alignment) string {
	gap := width - termtext.VisualWidth(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case east.AlignRight:
		return strings.Repeat(" ", gap) + s
	case east.AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	}
	return s + strings.Repeat(" ", gap)
}
