package main

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// mouseScrollLines is how far one wheel notch scrolls.
const mouseScrollLines = 3

// updateKeys handles key events.
func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.watcher != nil {
			m.watcher.stop()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.blocks)-1 {
			m.cursor++
		}
		m.ensureCursorVisible()
		m.follow = m.cursor == len(m.blocks)-1 && m.atBottom()
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.ensureCursorVisible()
		m.follow = false
	case key.Matches(msg, m.keys.HalfDown):
		m.scroll += m.viewHeight() / 2
		m.clampScroll()
		m.follow = m.atBottom()
	case key.Matches(msg, m.keys.HalfUp):
		m.scroll -= m.viewHeight() / 2
		m.clampScroll()
		m.follow = false
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		m.scroll = 0
		m.follow = false
	case key.Matches(msg, m.keys.Bottom):
		m.follow = true
		m.scrollToBottom()
	case key.Matches(msg, m.keys.Follow):
		m.follow = !m.follow
		if m.follow {
			m.scrollToBottom()
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.cursor < len(m.blocks) {
			b := m.blocks[m.cursor]
			if b.Type().Collapsible() {
				m.renderer.Collapsed[b.ID()] = !m.renderer.Collapsed[b.ID()]
			}
		}
		m.reflow()
	case key.Matches(msg, m.keys.ExpandAll):
		m.setAllCollapsed(false)
		m.reflow()
	case key.Matches(msg, m.keys.CollapseAll):
		m.setAllCollapsed(true)
		m.reflow()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.reflow()
	}
	return m, nil
}

// reflow recomputes offsets after fold state or footer height changed,
// keeping the cursor's block on screen.
func (m *model) reflow() {
	m.computeLineOffsets()
	if m.follow {
		m.scroll = m.maxScroll()
		return
	}
	m.clampScroll()
	m.ensureCursorVisible()
}

func (m *model) setAllCollapsed(collapsed bool) {
	for _, b := range m.blocks {
		if b.Type().Collapsible() {
			m.renderer.Collapsed[b.ID()] = collapsed
		}
	}
}

// updateMouse scrolls the view on wheel events. The cursor follows the
// block at the top of the view so key navigation resumes from there.
func (m model) updateMouse(msg tea.MouseMsg) model {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.scroll -= mouseScrollLines
		m.follow = false
	case tea.MouseButtonWheelDown:
		m.scroll += mouseScrollLines
	default:
		return m
	}
	m.clampScroll()
	if msg.Button == tea.MouseButtonWheelDown {
		m.follow = m.atBottom()
	}
	m.cursor = m.blockAt(m.scroll)
	return m
}

// blockAt returns the index of the block covering wrapped line n.
func (m model) blockAt(n int) int {
	i := 0
	for j, off := range m.lineOffsets {
		if off > n {
			break
		}
		i = j
	}
	return i
}
