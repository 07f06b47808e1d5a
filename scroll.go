package main

import "github.com/charmbracelet/lipgloss"

// gutterWidth is the column budget of the cursor gutter left of every line.
const gutterWidth = 2

// statusBarHeight is the number of rows the status line occupies.
const statusBarHeight = 1

// renderWidth is the width blocks are wrapped to: the terminal width, capped
// by maxWidth, minus the gutter.
func (m model) renderWidth() int {
	w := m.width
	if m.maxWidth > 0 && w > m.maxWidth {
		w = m.maxWidth
	}
	return max(w-gutterWidth, 1)
}

// viewHeight is the number of transcript rows available above the footer.
func (m model) viewHeight() int {
	footer := statusBarHeight + lipgloss.Height(m.help.View(m.keys))
	return max(m.height-footer, 1)
}

// layout applies the current terminal size to the renderer and recomputes
// scroll state.
func (m *model) layout() {
	if w := m.renderWidth(); w != m.renderer.Width {
		m.renderer.Width = w
	}
	m.computeLineOffsets()
	if m.follow {
		m.scrollToBottom()
		return
	}
	m.ensureCursorVisible()
	m.clampScroll()
}

// computeLineOffsets records the first wrapped line of each block. Counts
// come from the renderer, so they always agree with what View paints.
func (m *model) computeLineOffsets() {
	if m.width == 0 || len(m.blocks) == 0 {
		m.lineOffsets = nil
		m.totalLines = 0
		return
	}
	m.lineOffsets = m.renderer.Offsets(m.blocks)
	last := len(m.blocks) - 1
	m.totalLines = m.lineOffsets[last] + m.renderer.Lines(m.blocks[last])
}

// maxScroll is the largest scroll offset that still fills the view.
func (m model) maxScroll() int {
	return max(m.totalLines-m.viewHeight(), 0)
}

// atBottom reports whether the last line is on screen.
func (m model) atBottom() bool {
	return m.scroll >= m.maxScroll()
}

// ensureCursorVisible adjusts scroll so the cursor's block is within the
// visible viewport. Blocks taller than the view show their first line.
func (m *model) ensureCursorVisible() {
	if len(m.lineOffsets) == 0 || m.height == 0 {
		return
	}
	viewHeight := m.viewHeight()

	cursorStart := m.lineOffsets[m.cursor]
	cursorEnd := cursorStart + m.renderer.Lines(m.blocks[m.cursor]) - 1

	if cursorEnd >= m.scroll+viewHeight {
		m.scroll = cursorEnd - viewHeight + 1
	}
	if cursorStart < m.scroll {
		m.scroll = cursorStart
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}

// clampScroll caps the scroll offset so it can't exceed the content.
func (m *model) clampScroll() {
	m.scroll = max(min(m.scroll, m.maxScroll()), 0)
}

// scrollToBottom selects the last block and shows the end of the transcript.
func (m *model) scrollToBottom() {
	if len(m.blocks) > 0 {
		m.cursor = len(m.blocks) - 1
	}
	m.scroll = m.maxScroll()
}
