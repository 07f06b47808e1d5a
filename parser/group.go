package parser

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// BuildBlocks groups a line sequence into blocks. See BuildBlocksFrom.
func BuildBlocks(lines []OutputLine, stats map[string]SubagentStats) []Block {
	return BuildBlocksFrom(0, lines, stats)
}

// BuildBlocksFrom groups lines into blocks in a single pass. base is the
// absolute position of lines[0] in the full stream; block ids derive from
// absolute positions so they survive eviction of older lines.
//
// Blank lines are dropped. Consecutive plain lines form a messages block and
// consecutive tool calls a tool group; the two never interleave. Status and
// user-input lines are single-line blocks. Everything between a subagent's
// start and end markers belongs to that subagent; a section still open at
// the end of the input is reported as running. stats is consulted when a
// subagent closes, keyed by subagent id and then by block id.
//
// The result depends only on the arguments.
func BuildBlocksFrom(base int, lines []OutputLine, stats map[string]SubagentStats) []Block {
	var blocks []Block
	var msgs *MessagesBlock
	var tools *ToolGroupBlock
	var sub *SubagentBlock

	flushMessages := func() {
		if msgs != nil {
			blocks = append(blocks, msgs)
			msgs = nil
		}
	}
	flushTools := func() {
		if tools != nil {
			blocks = append(blocks, tools)
			tools = nil
		}
	}
	closeSubagent := func(status SubagentStatus, endText string) {
		sub.Status = status
		sub.EndText = endText
		if status == SubagentCompleted {
			sub.Stats = lookupStats(stats, sub)
		}
		blocks = append(blocks, sub)
		sub = nil
	}

	for i, line := range lines {
		if isBlank(line.Text) {
			continue
		}
		pos := base + i

		if sub != nil && line.IsSubagent {
			sub.Output = append(sub.Output, line)
			continue
		}

		kind, rest := ClassifyLine(line.Text)
		if sub != nil && kind != KindSubagentStart && kind != KindSubagentEnd {
			sub.Output = append(sub.Output, line)
			continue
		}

		switch kind {
		case KindSubagentStart:
			flushMessages()
			flushTools()
			if sub != nil {
				closeSubagent(SubagentRunning, "")
			}
			sub = &SubagentBlock{
				blockID:      blockID(subagentBlockID(line.SubagentID, pos)),
				SubagentID:   line.SubagentID,
				SubagentType: subagentType(line, rest),
				Status:       SubagentRunning,
				StartText:    line.Text,
			}

		case KindSubagentEnd:
			if sub == nil {
				// No open section to close; keep the line as text.
				flushTools()
				msgs = appendMessage(msgs, pos, line.Text)
				continue
			}
			closeSubagent(SubagentCompleted, line.Text)

		case KindToolCall:
			flushMessages()
			if tools == nil {
				tools = &ToolGroupBlock{blockID: blockID("tools-" + strconv.Itoa(pos))}
			}
			tools.Count++
			tools.Lines = append(tools.Lines, line.Text)
			tools.Calls = append(tools.Calls, ToolCall{Text: line.Text, Error: line.ToolError})
			if line.ToolError != "" {
				tools.ErrorCount++
				tools.Lines = append(tools.Lines, errorAnnotation(line.ToolError))
			}

		case KindUserInput:
			flushMessages()
			flushTools()
			blocks = append(blocks, &UserInputBlock{
				blockID: blockID("input-" + strconv.Itoa(pos)),
				Text:    rest,
				Prefix:  line.Text[:len(line.Text)-len(rest)],
			})

		case KindError, KindSuccess, KindWarning:
			flushMessages()
			flushTools()
			blocks = append(blocks, &StatusBlock{
				blockID: blockID("status-" + strconv.Itoa(pos)),
				Line:    rest,
				Variant: statusVariant(kind),
				Prefix:  line.Text[:len(line.Text)-len(rest)],
			})

		default:
			flushTools()
			msgs = appendMessage(msgs, pos, line.Text)
		}
	}

	flushMessages()
	flushTools()
	if sub != nil {
		closeSubagent(SubagentRunning, "")
	}
	return blocks
}

func appendMessage(msgs *MessagesBlock, pos int, text string) *MessagesBlock {
	if msgs == nil {
		msgs = &MessagesBlock{blockID: blockID("msg-" + strconv.Itoa(pos))}
	}
	msgs.Lines = append(msgs.Lines, text)
	return msgs
}

// ErrorAnnotationPrefix starts the display line added under a failed tool
// call.
const ErrorAnnotationPrefix = "  ↳ error: "

func errorAnnotation(msg string) string {
	return ErrorAnnotationPrefix + strings.Join(strings.Fields(msg), " ")
}

func statusVariant(kind LineKind) StatusVariant {
	switch kind {
	case KindError:
		return StatusError
	case KindWarning:
		return StatusWarning
	}
	return StatusSuccess
}

// subagentBlockID derives a block id from the subagent's own id and the
// absolute position of its start line, so a reused subagent id still yields
// distinct ids and none depends on which earlier lines are retained. Lines
// without an id get a name-based UUID of their position.
func subagentBlockID(subagentID string, pos int) string {
	if subagentID == "" {
		name := "subagent:" + strconv.Itoa(pos)
		return "subagent-" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
	}
	return "subagent-" + subagentID + "-" + strconv.Itoa(pos)
}

func lookupStats(stats map[string]SubagentStats, sub *SubagentBlock) *SubagentStats {
	if stats == nil {
		return nil
	}
	key := sub.SubagentID
	if key == "" {
		key = sub.ID()
	}
	s, ok := stats[key]
	if !ok {
		return nil
	}
	return &s
}
