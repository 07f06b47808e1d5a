package main

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"pkt.systems/pslog"

	"github.com/kylesnowschwartz/tail-agent/parser"
	"github.com/kylesnowschwartz/tail-agent/viewport"
)

// model is the Bubble Tea model for the transcript viewer. The cursor
// selects a block; scroll is measured in wrapped lines.
type model struct {
	transcript *parser.Transcript
	blocks     []parser.Block
	renderer   *viewport.Renderer
	maxLines   int

	cursor int // selected block index
	width  int
	height int
	scroll int
	follow bool // pin the view to the newest block as lines arrive

	lineOffsets []int // first wrapped line of each block
	totalLines  int

	// maxWidth caps the render width; 0 uses the terminal width.
	maxWidth      int
	collapseTools bool            // fold tool groups when they first appear
	seen          map[string]bool // block ids that already got a default fold state

	keys keyMap
	help help.Model
	log  pslog.Logger

	// Live tailing state
	path     string
	watching bool
	watcher  *transcriptWatcher
	tailSub  chan tailUpdateMsg
	tailErrc chan error
	lastErr  error
}

// modelOptions carries the configuration initialModel needs.
type modelOptions struct {
	maxLines      int
	maxWidth      int
	collapseTools bool
	markdown      viewport.MarkdownFunc
	toolStyler    func(string) string
	log           pslog.Logger
}

func initialModel(t *parser.Transcript, opts modelOptions) model {
	var ropts []viewport.Option
	if opts.markdown != nil {
		ropts = append(ropts, viewport.WithMarkdown(opts.markdown))
	}
	if opts.toolStyler != nil {
		ropts = append(ropts, viewport.WithToolLineStyler(opts.toolStyler))
	}
	m := model{
		transcript:    t,
		renderer:      viewport.New(0, ropts...),
		maxLines:      opts.maxLines,
		maxWidth:      opts.maxWidth,
		collapseTools: opts.collapseTools,
		seen:          make(map[string]bool),
		follow:        true,
		keys:          defaultKeyMap(),
		help:          help.New(),
		log:           opts.log,
	}
	m.refreshBlocks()
	if len(m.blocks) > 0 {
		m.cursor = len(m.blocks) - 1
	}
	return m
}

func (m model) Init() tea.Cmd {
	if !m.watching {
		return nil
	}
	return tea.Batch(waitForTailUpdate(m.tailSub), waitForWatcherErr(m.tailErrc))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKeys(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg), nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case tailUpdateMsg:
		m.applyUpdate(msg)
		return m, waitForTailUpdate(m.tailSub)

	case watcherErrMsg:
		m.lastErr = msg.err
		m.log.Warn("tail error", "err", msg.err)
		return m, waitForWatcherErr(m.tailErrc)
	}
	return m, nil
}

// applyUpdate folds newly read lines into the transcript and regroups.
// The cursor stays on the same block id when it survives; with follow on
// it moves to the newest block.
func (m *model) applyUpdate(u tailUpdateMsg) {
	var cursorID string
	if m.cursor < len(m.blocks) {
		cursorID = m.blocks[m.cursor].ID()
	}

	if u.reset {
		m.transcript = parser.NewTranscript(m.maxLines)
		m.renderer.Invalidate()
		m.seen = make(map[string]bool)
		clear(m.renderer.Collapsed)
	}
	for _, st := range u.stats {
		m.transcript.SetStats(st.SubagentID, st.Stats)
	}
	if evicted := m.transcript.Append(u.lines...); evicted > 0 {
		m.log.Debug("evicted transcript lines", "count", evicted, "total", m.transcript.Evicted())
	}
	m.lastErr = nil

	m.refreshBlocks()
	m.renderer.Retain(m.blocks)

	switch i, ok := m.indexOf(cursorID); {
	case m.follow || u.reset:
		m.cursor = max(len(m.blocks)-1, 0)
	case ok:
		m.cursor = i
	default:
		m.cursor = max(min(m.cursor, len(m.blocks)-1), 0)
	}
	m.computeLineOffsets()
	if m.follow {
		m.scrollToBottom()
	} else {
		m.clampScroll()
	}
}

// refreshBlocks regroups the transcript and assigns default fold state to
// blocks seen for the first time. State for blocks that are gone is dropped.
func (m *model) refreshBlocks() {
	m.blocks = m.transcript.Blocks()
	live := make(map[string]bool, len(m.blocks))
	for _, b := range m.blocks {
		id := b.ID()
		live[id] = true
		if m.seen[id] {
			continue
		}
		m.seen[id] = true
		if m.collapseTools && b.Type() == parser.BlockToolGroup {
			m.renderer.Collapsed[id] = true
		}
	}
	for id := range m.seen {
		if !live[id] {
			delete(m.seen, id)
			delete(m.renderer.Collapsed, id)
		}
	}
}

// indexOf returns the index of the block with id.
func (m model) indexOf(id string) (int, bool) {
	for i, b := range m.blocks {
		if b.ID() == id {
			return i, true
		}
	}
	return 0, false
}
