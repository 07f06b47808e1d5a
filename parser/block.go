package parser

import (
	"strings"
	"time"
)

// BlockType names a Block variant.
type BlockType string

const (
	BlockMessages  BlockType = "messages"
	BlockToolGroup BlockType = "toolGroup"
	BlockSubagent  BlockType = "subagent"
	BlockStatus    BlockType = "status"
	BlockUserInput BlockType = "userInput"
)

// Collapsible reports whether blocks of this type can be folded to a header.
func (t BlockType) Collapsible() bool {
	return t == BlockToolGroup || t == BlockSubagent
}

// Block is a contiguous group of output lines sharing one category. The set
// of implementations is closed to this package.
type Block interface {
	// ID is stable for as long as the block's first line stays in the
	// transcript.
	ID() string
	Type() BlockType
	block()
}

type blockID string

func (id blockID) ID() string { return string(id) }
func (blockID) block()        {}

// MessagesBlock holds consecutive plain lines, rendered as one markdown
// document.
type MessagesBlock struct {
	blockID
	Lines []string
}

func (*MessagesBlock) Type() BlockType { return BlockMessages }

// Markdown joins the block's lines into the document to render.
func (b *MessagesBlock) Markdown() string {
	return strings.Join(b.Lines, "\n")
}

// ToolCall is one tool-call line and the error it reported, if any.
type ToolCall struct {
	Text  string
	Error string
}

// ToolGroupBlock holds consecutive tool-call lines. Lines is the display
// content: each call followed by its error annotation when it failed.
type ToolGroupBlock struct {
	blockID
	Count      int
	ErrorCount int
	Lines      []string
	Calls      []ToolCall
}

func (*ToolGroupBlock) Type() BlockType { return BlockToolGroup }

// SubagentStatus is the lifecycle state of a subagent section.
type SubagentStatus string

const (
	SubagentRunning   SubagentStatus = "running"
	SubagentCompleted SubagentStatus = "completed"
)

// SubagentStats is the usage summary the host reports for a finished
// subagent.
type SubagentStats struct {
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	InputTokens   int       `json:"inputTokens"`
	OutputTokens  int       `json:"outputTokens"`
	ToolCallCount int       `json:"toolCallCount"`
}

// Duration is the wall time between start and end, or 0 when either is
// unknown.
func (s SubagentStats) Duration() time.Duration {
	if s.StartTime.IsZero() || s.EndTime.IsZero() || s.EndTime.Before(s.StartTime) {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// SubagentBlock is the output of one nested agent between its start and end
// markers.
type SubagentBlock struct {
	blockID
	SubagentID   string
	SubagentType string
	Status       SubagentStatus
	Output       []OutputLine
	Stats        *SubagentStats
	StartText    string
	EndText      string
}

func (*SubagentBlock) Type() BlockType { return BlockSubagent }

// StatusVariant is the flavor of a status line.
type StatusVariant string

const (
	StatusError   StatusVariant = "error"
	StatusSuccess StatusVariant = "success"
	StatusWarning StatusVariant = "warning"
)

// StatusBlock is a single annotated line. Prefix is the tag as it appeared
// in the source, Line the text after it.
type StatusBlock struct {
	blockID
	Line    string
	Variant StatusVariant
	Prefix  string
}

func (*StatusBlock) Type() BlockType { return BlockStatus }

// UserInputBlock is an echoed user message.
type UserInputBlock struct {
	blockID
	Text   string
	Prefix string
}

func (*UserInputBlock) Type() BlockType { return BlockUserInput }
