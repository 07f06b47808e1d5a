package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kylesnowschwartz/tail-agent/termtext"
	"github.com/kylesnowschwartz/tail-agent/viewport"
)

// contentIndent is painted before lines the renderer marks Indented.
var contentIndent = strings.Repeat(" ", viewport.ContentIndent)

// selectionIndicator returns the gutter for a line of the selected block.
func selectionIndicator(selected bool) string {
	if selected {
		return StyleCursor.Render(IconSelected) + " "
	}
	return "  "
}

// paintLine lays out one rendered line without the gutter.
func paintLine(l viewport.RenderedLine) string {
	if l.Indented {
		return contentIndent + l.Content
	}
	return l.Content
}

// spaceBetween lays out left and right strings with gap-fill spacing to span width.
func spaceBetween(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	viewHeight := m.viewHeight()

	var cursorID string
	if m.cursor < len(m.blocks) {
		cursorID = m.blocks[m.cursor].ID()
	}

	// Only the visible window is rendered.
	lines := m.renderer.Render(m.blocks, m.scroll, viewHeight)

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(selectionIndicator(l.BlockID == cursorID))
		b.WriteString(paintLine(l))
		b.WriteByte('\n')
	}
	for range viewHeight - len(lines) {
		b.WriteByte('\n')
	}
	b.WriteString(m.renderStatusBar())
	b.WriteByte('\n')
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// renderStatusBar shows the tail badge and file on the left and the
// position on the right.
func (m model) renderStatusBar() string {
	sep := " " + StyleDim.Render(IconDot) + " "

	var left []string
	if m.watching {
		left = append(left, StyleLiveBadge.Render(IconLive+" LIVE"))
	}
	if m.path != "" {
		left = append(left, StylePrimaryBold.Render(filepath.Base(m.path)))
	}
	left = append(left, StyleSecondary.Render(fmt.Sprintf("%d blocks", len(m.blocks))))
	if m.lastErr != nil {
		left = append(left, StyleErrorBold.Render(termtext.TruncateDefault(m.lastErr.Error(), 40)))
	}

	followIcon := IconPaused
	if m.follow {
		followIcon = IconFollow
	}
	right := StyleMuted.Render(fmt.Sprintf("%s %d/%d", followIcon, m.lastVisibleLine(), m.totalLines))

	return spaceBetween(strings.Join(left, sep), right, m.width)
}

// lastVisibleLine is the 1-based wrapped line at the bottom of the view.
func (m model) lastVisibleLine() int {
	return min(m.scroll+m.viewHeight(), m.totalLines)
}

// dump writes every wrapped line of the transcript to w.
func (m model) dump(w io.Writer) error {
	total := m.renderer.TotalLines(m.blocks)
	for _, l := range m.renderer.Render(m.blocks, 0, total) {
		if _, err := fmt.Fprintln(w, paintLine(l)); err != nil {
			return err
		}
	}
	return nil
}
