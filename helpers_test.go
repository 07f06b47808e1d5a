package main

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"pkt.systems/pslog"

	"github.com/kylesnowschwartz/tail-agent/parser"
)

// keyPress constructs a tea.KeyMsg from a string like "j", "tab", "enter", "ctrl+c".
// Single-character strings are mapped to KeyRunes; named keys get their
// corresponding KeyType constant.
func keyPress(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// mouseScroll constructs a tea.MouseMsg for wheel events.
func mouseScroll(button tea.MouseButton) tea.MouseMsg {
	return tea.MouseMsg{Button: button}
}

// asModel extracts the model from an Update return value.
// Panics when the type assertion fails, which is a test bug.
func asModel(t tea.Model) model {
	return t.(model)
}

// isQuit returns true when cmd is the Quit command.
func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func testLogger() pslog.Logger {
	return pslog.NewWithOptions(io.Discard, pslog.Options{
		Mode:     pslog.ModeStructured,
		NoColor:  true,
		MinLevel: pslog.DebugLevel,
	})
}

// plainMarkdown leaves prose untouched so line counts are predictable.
func plainMarkdown(src string, _ int) string { return src }

func lines(texts ...string) []parser.OutputLine {
	out := make([]parser.OutputLine, len(texts))
	for i, t := range texts {
		out[i] = parser.OutputLine{Text: t}
	}
	return out
}

func newTestModel(opts modelOptions, texts ...string) model {
	if opts.markdown == nil {
		opts.markdown = plainMarkdown
	}
	if opts.log == nil {
		opts.log = testLogger()
	}
	t := parser.NewTranscript(opts.maxLines)
	t.Append(lines(texts...)...)
	m := initialModel(t, opts)
	m.width = 80
	m.height = 24
	m.help.Width = 80
	m.layout()
	return m
}

// testModel returns a model with five blocks at width 80, height 24:
//
//	0 msg-0     1 line
//	1 tools-1   3 lines (header + 2 calls)
//	2 status-3  1 line
//	3 input-4   1 line
//	4 msg-5     1 line
func testModel() model {
	return newTestModel(modelOptions{},
		"first message",
		"[●] Read a.go",
		"[●] Read b.go",
		"[✓] ok",
		"[>] continue",
		"second message",
	)
}

// tallModel alternates n messages with n single-call tool groups, giving
// 2n blocks and 3n wrapped lines.
func tallModel(n int) model {
	var texts []string
	for i := range n {
		texts = append(texts, fmt.Sprintf("message %d", i), fmt.Sprintf("[●] tool %d", i))
	}
	return newTestModel(modelOptions{}, texts...)
}
