package parser

import "strings"

// OutputLine is one unit of agent or tool activity as produced by the
// output-streaming layer. Lines are immutable once appended.
type OutputLine struct {
	Text         string `json:"text"`
	IsSubagent   bool   `json:"isSubagent,omitempty"`
	SubagentID   string `json:"subagentId,omitempty"`
	SubagentType string `json:"subagentType,omitempty"`
	ToolError    string `json:"toolError,omitempty"`
}

// LineKind is the typed form of a line's tag prefix.
type LineKind int

const (
	KindMessage LineKind = iota
	KindSubagentStart
	KindSubagentEnd
	KindToolCall
	KindUserInput
	KindError
	KindSuccess
	KindWarning
)

var kindNames = [...]string{
	KindMessage:       "message",
	KindSubagentStart: "subagent-start",
	KindSubagentEnd:   "subagent-end",
	KindToolCall:      "tool-call",
	KindUserInput:     "user-input",
	KindError:         "error",
	KindSuccess:       "success",
	KindWarning:       "warning",
}

func (k LineKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Tag prefixes written by the output-streaming layer.
const (
	TagSubagentStart = "[→]"
	TagSubagentEnd   = "[←]"
	TagToolCall      = "[●]"
	TagUserInput     = "[>]"
	TagError         = "[x]"
	TagErrorAlt      = "[✗]"
	TagSuccess       = "[✓]"
	TagWarning       = "[!]"
)

// subagentStartLabel precedes the subagent type on a start line.
const subagentStartLabel = "Starting subagent:"

var tags = []struct {
	prefix string
	kind   LineKind
}{
	{TagSubagentStart, KindSubagentStart},
	{TagSubagentEnd, KindSubagentEnd},
	{TagToolCall, KindToolCall},
	{TagUserInput, KindUserInput},
	{TagError, KindError},
	{TagErrorAlt, KindError},
	{TagSuccess, KindSuccess},
	{TagWarning, KindWarning},
}

// ClassifyLine maps a line's tag prefix to its kind and returns the text
// after the tag. One space following the tag belongs to the tag. Lines
// without a recognized tag are messages and are returned unchanged.
func ClassifyLine(text string) (LineKind, string) {
	for _, t := range tags {
		if rest, ok := strings.CutPrefix(text, t.prefix); ok {
			return t.kind, strings.TrimPrefix(rest, " ")
		}
	}
	return KindMessage, text
}

// Tag returns the canonical prefix for kind, or "" for messages.
func Tag(kind LineKind) string {
	for _, t := range tags {
		if t.kind == kind {
			return t.prefix
		}
	}
	return ""
}

// subagentType extracts the declared type from a start line, preferring the
// structured field.
func subagentType(line OutputLine, rest string) string {
	if line.SubagentType != "" {
		return line.SubagentType
	}
	if after, ok := strings.CutPrefix(strings.TrimSpace(rest), subagentStartLabel); ok {
		if t := strings.TrimSpace(after); t != "" {
			return t
		}
	}
	return "subagent"
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
